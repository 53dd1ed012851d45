package hashes

import (
	"encoding/hex"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSum(t *testing.T) {
	testCases := map[string]struct {
		kind  Kind
		parts []string
		want  string
	}{
		"md5 empty": {
			kind: MD5,
			want: "d41d8cd98f00b204e9800998ecf8427e",
		},
		"md5 abc split": {
			kind:  MD5,
			parts: []string{"a", "bc"},
			want:  "900150983cd24fb0d6963f7d28e17f72",
		},
		"sha256 abc": {
			kind:  SHA256,
			parts: []string{"abc"},
			want:  "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
		"sha384 abc": {
			kind:  SHA384,
			parts: []string{"ab", "c"},
			want:  "cb00753f45a35e8bb5a03d699ac65007272c32ab0eded1631a8b605a43ff5bed8086072ba1e7cc2358baeca134c825a7",
		},
		"sha512 abc": {
			kind:  SHA512,
			parts: []string{"abc"},
			want:  "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var parts [][]byte
			for _, p := range tc.parts {
				parts = append(parts, []byte(p))
			}
			got := hex.EncodeToString(tc.kind.Sum(nil, parts...))
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Error("digest did not match:", diff)
			}
			if len(got) != 2*tc.kind.Size() {
				t.Errorf("%s: digest length %d, Size() %d", tc.kind, len(got)/2, tc.kind.Size())
			}
		})
	}
}

func TestForRemainder(t *testing.T) {
	got := []Kind{ForRemainder(0), ForRemainder(1), ForRemainder(2)}
	want := []Kind{SHA256, SHA384, SHA512}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Error("hash selection did not match:", diff)
	}
}
