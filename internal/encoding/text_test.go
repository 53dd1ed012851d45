package encoding

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPDFDocEncode(t *testing.T) {
	testCases := map[string]struct {
		input string
		want  []byte
		ok    bool
	}{
		"empty":      {input: "", want: []byte{}, ok: true},
		"ascii":      {input: "Hello", want: []byte("Hello"), ok: true},
		"latin1":     {input: "Grüße", want: []byte{'G', 'r', 0xfc, 0xdf, 'e'}, ok: true},
		"combining":  {input: "Gru\u0308n", want: []byte{'G', 'r', 0xfc, 'n'}, ok: true},
		"euro":       {input: "5€", want: []byte{'5', 0xa0}, ok: true},
		"quotes":     {input: "“hi”", want: []byte{0x8d, 'h', 'i', 0x8e}, ok: true},
		"ligature":   {input: "ﬁ", want: []byte{0x93}, ok: true},
		"cyrillic":   {input: "пароль", ok: false},
		"control":    {input: "a\x01", ok: false},
		"soft hyph":  {input: "\u00ad", ok: false},
		"delete":     {input: "\x7f", ok: false},
		"U+FFFD":     {input: "\ufffd", ok: false},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, ok := PDFDocEncode(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok = %t, want %t", ok, tc.ok)
			}
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Error("encoded bytes did not match:", diff)
			}
		})
	}
}

func TestPDFDocTableIsInjective(t *testing.T) {
	seen := map[rune]int{}
	for i, r := range pdfDocEncoding {
		if r == NoRune {
			continue
		}
		if j, dup := seen[r]; dup {
			t.Errorf("U+%04X appears at %#x and %#x", r, j, i)
		}
		seen[r] = i
	}
}
