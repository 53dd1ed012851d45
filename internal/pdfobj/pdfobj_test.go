package pdfobj

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ScriptRock/stdsec/internal/types"
)

func TestParse(t *testing.T) {
	testCases := map[string]struct {
		input string
		want  types.Object
	}{
		"integer":  {"-44", int64(-44)},
		"real":     {"1.5", 1.5},
		"bool":     {"true", true},
		"null":     {"null", nil},
		"name":     {"/Standard", types.Name("Standard")},
		"name hex": {"/A#20B", types.Name("A B")},
		"hex":      {"<0aFF 10>", "\x0a\xff\x10"},
		"odd hex":  {"<123>", "\x12\x30"},
		"literal":  {`(a\(b\)\n\101)`, "a(b)\nA"},
		"nested":   {"(a(b)c)", "a(b)c"},
		"array":    {"[1 /N (x)]", types.Array{int64(1), types.Name("N"), "x"}},
		"comment":  {"% leading\n/X % trailing", types.Name("X")},
		"dict": {
			"<</Filter/Standard /V 5 /CF <</StdCF <</CFM /AESV3>>>> /EncryptMetadata false>>",
			types.Dict{
				"Filter":          types.Name("Standard"),
				"V":               int64(5),
				"CF":              types.Dict{"StdCF": types.Dict{"CFM": types.Name("AESV3")}},
				"EncryptMetadata": false,
			},
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := Parse([]byte(tc.input))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Error("object did not match:", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for name, input := range map[string]string{
		"empty":        "",
		"open dict":    "<< /A 1",
		"open array":   "[1 2",
		"open string":  "(abc",
		"bad hex":      "<12x4>",
		"non-name key": "<< 1 2 >>",
		"trailing":     "/A /B",
		"keyword":      "obj",
		"delimiter":    ")",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(input)); !errors.Is(err, ErrSyntax) {
				t.Errorf("err = %v, want ErrSyntax", err)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	d := types.Dict{
		"R":      int64(6),
		"Filter": types.Name("Standard"),
		"O":      "\x01\xab",
		"ID":     types.Array{"\xff", true},
		"Odd":    types.Name("a b#"),
	}
	want := "<< /Filter /Standard /ID [<ff> true] /O <01ab> /Odd /a#20b#23 /R 6 >>"
	if diff := cmp.Diff(Format(d), want); diff != "" {
		t.Error(diff)
	}

	back, err := Parse([]byte(want))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(back, types.Object(d)); diff != "" {
		t.Error("parsed output did not match:", diff)
	}
}
