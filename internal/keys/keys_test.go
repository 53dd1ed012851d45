package keys

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ScriptRock/stdsec/internal/crypt"
	"github.com/ScriptRock/stdsec/internal/password"
	"github.com/ScriptRock/stdsec/internal/types"
)

// seqSource produces start, start+1, ... so that salts are reproducible.
type seqSource struct {
	next byte
}

func (s *seqSource) FillRandom(p []byte) error {
	for i := range p {
		p[i] = s.next
		s.next++
	}
	return nil
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func seq(from, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(from + i)
	}
	return b
}

func TestLegacyVectors(t *testing.T) {
	testCases := map[string]struct {
		id              []byte
		user, owner     string
		p               int32
		keyBits, rev    int
		encryptMetadata bool

		wantO, wantKey, wantU string
	}{
		"R2 40 bit": {
			id: seq(0x10, 16), user: "user", owner: "owner", p: -64,
			keyBits: 40, rev: 2, encryptMetadata: true,
			wantO:   "94e8094419662a774442fb072e3d9f19e9d130ec09a4d0061e78fe920f7ab62f",
			wantKey: "c1fb289a88",
			wantU:   "f849f2da3c6be536cec30f71bb55a96401e45471ca01be9b0fb4d52fea84094c",
		},
		"R3 128 bit empty user": {
			id: seq(0x10, 16), user: "", owner: "Hello", p: -44,
			keyBits: 128, rev: 3, encryptMetadata: true,
			wantO:   "60d93b79f60cf50b9ff92ca147ef6f785168fafb73a10d2037b3ca12567f9f2d",
			wantKey: "8f4202cc497e1cf950260e80b919291b",
			wantU:   "30ef551bec10e76a64eb4905c08d9070" + "00000000000000000000000000000000",
		},
		"R4 unencrypted metadata": {
			id: seq(0x10, 16), user: "abc", owner: "xyz", p: -3904,
			keyBits: 128, rev: 4, encryptMetadata: false,
			wantO:   "cb63724d9e43ca9ca151379dc0f620d954a48d6e0ab168fec0f734ad0870479f",
			wantKey: "6e4c35b0c073e662671e4a3878c78132",
			wantU:   "41dc95b5dbe642e00d74b1b593bb3a44" + "00000000000000000000000000000000",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			userPad := password.PadLegacy([]byte(tc.user))
			ownerPad := password.PadLegacy([]byte(tc.owner))

			o := ComputeOwnerKey(&userPad, &ownerPad, tc.keyBits, tc.rev, false)
			if diff := cmp.Diff(hex.EncodeToString(o[:]), tc.wantO); diff != "" {
				t.Error("O did not match:", diff)
			}

			par := &LegacyParams{
				ID:              tc.id,
				O:               o,
				P:               tc.p,
				KeyBits:         tc.keyBits,
				Revision:        tc.rev,
				EncryptMetadata: tc.encryptMetadata,
			}
			key, u := ComputeEncryptionKey(par, &userPad)
			if diff := cmp.Diff(hex.EncodeToString(key), tc.wantKey); diff != "" {
				t.Error("file key did not match:", diff)
			}
			if diff := cmp.Diff(hex.EncodeToString(u[:]), tc.wantU); diff != "" {
				t.Error("U did not match:", diff)
			}

			// the owner password recovers the padded user password
			back := ComputeOwnerKey(&o, &ownerPad, tc.keyBits, tc.rev, true)
			if back != userPad {
				t.Errorf("inverted O = %x, want %x", back, userPad)
			}
		})
	}
}

// Test vector from a file produced by a third-party writer.
func TestLegacyR4Document(t *testing.T) {
	id := mustHex(t, "acac29b4192fd923c24fe6042479b2a9")
	pad := password.PadLegacy([]byte("test"))

	o := ComputeOwnerKey(&pad, &pad, 128, 4, false)
	wantO := mustHex(t, "badad1e86442699427116d3e5d5271bc80a27814fc5e80f815efeef839354c5f")
	if !bytes.Equal(o[:], wantO) {
		t.Errorf("O = %x, want %x", o, wantO)
	}

	par := &LegacyParams{ID: id, O: o, P: -4, KeyBits: 128, Revision: 4, EncryptMetadata: true}
	_, u := ComputeEncryptionKey(par, &pad)
	wantU := mustHex(t, "a5b5fc1fcc399c6845fedcdfac82027c")
	if !bytes.Equal(u[:16], wantU) {
		t.Errorf("U = %x, want %x", u[:16], wantU)
	}
	if !bytes.Equal(u[16:], make([]byte, 16)) {
		t.Errorf("U tail = %x, want zeros", u[16:])
	}
}

func TestLegacyDeterministic(t *testing.T) {
	userPad := password.PadLegacy([]byte("same"))
	ownerPad := password.PadLegacy([]byte("input"))
	a := ComputeOwnerKey(&userPad, &ownerPad, 96, 3, false)
	b := ComputeOwnerKey(&userPad, &ownerPad, 96, 3, false)
	if a != b {
		t.Error("ComputeOwnerKey is not deterministic")
	}

	par := &LegacyParams{ID: seq(0, 16), O: a, P: -1, KeyBits: 96, Revision: 3}
	k1, u1 := ComputeEncryptionKey(par, &userPad)
	k2, u2 := ComputeEncryptionKey(par, &userPad)
	if !bytes.Equal(k1, k2) || u1 != u2 {
		t.Error("ComputeEncryptionKey is not deterministic")
	}
	if len(k1) != 12 {
		t.Errorf("key length = %d, want 12", len(k1))
	}
}

func TestObjectKey(t *testing.T) {
	testCases := map[string]struct {
		fileKey string
		ref     types.Objptr
		aes     bool
		want    string
	}{
		"rc4 128": {
			fileKey: "8f4202cc497e1cf950260e80b919291b",
			ref:     types.Objptr{ID: 7},
			want:    "ecd2dfa686be1cfedb9404c2f25bfca3",
		},
		"aes 128": {
			fileKey: "8f4202cc497e1cf950260e80b919291b",
			ref:     types.Objptr{ID: 7},
			aes:     true,
			want:    "cb941d8b423d50887c49ed103123585c",
		},
		"rc4 40": {
			fileKey: "c1fb289a88",
			ref:     types.Objptr{ID: 12, Gen: 3},
			want:    "1482435832b0f50ba960",
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got := ObjectKey(mustHex(t, tc.fileKey), tc.ref, tc.aes)
			if diff := cmp.Diff(hex.EncodeToString(got), tc.want); diff != "" {
				t.Error(diff)
			}
		})
	}

	// RC4 with the object key above
	key := ObjectKey(mustHex(t, "8f4202cc497e1cf950260e80b919291b"), types.Objptr{ID: 7}, false)
	out := make([]byte, 12)
	crypt.XORRC4(key, out, []byte("Hello, World"))
	if got := hex.EncodeToString(out); got != "9ad0835200c12308ba3d21a2" {
		t.Errorf("ciphertext = %s", got)
	}
}

func TestObjectKeyIgnoresHighBits(t *testing.T) {
	key := seq(1, 16)
	a := ObjectKey(key, types.Objptr{ID: 0x00123456, Gen: 1}, false)
	b := ObjectKey(key, types.Objptr{ID: 0xff123456, Gen: 1}, false)
	if !bytes.Equal(a, b) {
		t.Error("object numbers beyond 24 bits changed the key")
	}
}

func TestHashV5(t *testing.T) {
	salt := seq(1, 8)
	testCases := map[string]struct {
		rev   int
		pw    string
		extra []byte
		want  string
	}{
		"R6 user": {
			rev: 6, pw: "user1",
			want: "5f4585f72a19a45e88e8bb017ce6197846e7831c194924ff9bdf48fb85cfd416",
		},
		"R6 owner": {
			rev: 6, pw: "owner1", extra: seq(0x30, 48),
			want: "bd00a5f4168ece0fd794062a965ce53b8a9555df54976dfba92af96d155ee8b3",
		},
		"R6 empty": {
			rev: 6, pw: "",
			want: "8d1efb4f1bdbb651341704c2139de4f6be05d6d4609af56916b21646ed74825c",
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got := HashV5(tc.rev, []byte(tc.pw), salt, tc.extra)
			if diff := cmp.Diff(hex.EncodeToString(got[:]), tc.want); diff != "" {
				t.Error(diff)
			}
		})
	}

	t.Run("R5 is plain SHA-256", func(t *testing.T) {
		extra := seq(0x30, 48)
		got := HashV5(5, []byte("owner1"), salt, extra)
		want := sha256.Sum256(append(append([]byte("owner1"), salt...), extra...))
		if got != want {
			t.Errorf("got %x, want %x", got, want)
		}
	})
}

func TestComputeUandOE(t *testing.T) {
	fileKey := seq(0xa0, 32)

	u, ue, err := ComputeUandUE(6, &seqSource{next: 1}, []byte("user1"), fileKey)
	if err != nil {
		t.Fatal(err)
	}
	wantHash := "5f4585f72a19a45e88e8bb017ce6197846e7831c194924ff9bdf48fb85cfd416"
	if diff := cmp.Diff(hex.EncodeToString(u[:32]), wantHash); diff != "" {
		t.Error("U hash did not match:", diff)
	}
	if diff := cmp.Diff(u[32:], seq(1, 16)); diff != "" {
		t.Error("U salts did not match:", diff)
	}
	kek := HashV5(6, []byte("user1"), u[40:48], nil)
	got, err := crypt.UnwrapKey(kek[:], ue[:])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, fileKey) {
		t.Errorf("UE unwrapped to %x", got)
	}

	fakeU := [48]byte(seq(0x30, 48))
	o, oe, err := ComputeOandOE(6, &seqSource{next: 1}, []byte("owner1"), fileKey, &fakeU)
	if err != nil {
		t.Fatal(err)
	}
	wantHash = "bd00a5f4168ece0fd794062a965ce53b8a9555df54976dfba92af96d155ee8b3"
	if diff := cmp.Diff(hex.EncodeToString(o[:32]), wantHash); diff != "" {
		t.Error("O hash did not match:", diff)
	}
	kek = HashV5(6, []byte("owner1"), o[40:48], fakeU[:])
	got, err = crypt.UnwrapKey(kek[:], oe[:])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, fileKey) {
		t.Errorf("OE unwrapped to %x", got)
	}
}

func TestComputePerms(t *testing.T) {
	fileKey := seq(0, 32)
	perms, err := ComputePerms(&seqSource{next: 1}, fileKey, -44, true)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(hex.EncodeToString(perms[:]), "c808327624f2dff7fa8f23012574f9d1"); diff != "" {
		t.Error(diff)
	}

	if err := crypt.DecryptBlock(fileKey, &perms); err != nil {
		t.Fatal(err)
	}
	want := PermsPrefix(-44, true)
	if !bytes.Equal(perms[:12], want[:]) {
		t.Errorf("decrypted Perms = %x", perms)
	}
	if !bytes.Equal(perms[12:], []byte{1, 2, 3, 4}) {
		t.Errorf("random tail = %x", perms[12:])
	}
}

func TestPermsPrefix(t *testing.T) {
	got := PermsPrefix(-3904, false)
	want := []byte{0xc0, 0xf0, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 'F', 'a', 'd', 'b'}
	if diff := cmp.Diff(got[:], want); diff != "" {
		t.Error(diff)
	}
}
