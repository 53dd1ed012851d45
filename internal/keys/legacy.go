// Package keys implements the key derivation algorithms of the PDF standard
// security handler: Algorithms 2 to 5 (revisions 2 to 4, MD5 and RC4) and
// Algorithms 2.A, 2.B, 8, 9 and 10 (revisions 5 and 6, SHA-2 and AES-256).
package keys

import (
	"encoding/binary"

	"github.com/ScriptRock/stdsec/internal/crypt"
	"github.com/ScriptRock/stdsec/internal/hashes"
	"github.com/ScriptRock/stdsec/internal/password"
	"github.com/ScriptRock/stdsec/internal/types"
)

// stretch applies the 50 extra MD5 rounds used by revision 3 and later.
// Each round hashes only the first n bytes of the previous digest.
func stretch(sum []byte, n int) []byte {
	h := hashes.MD5.New()
	for i := 0; i < 50; i++ {
		h.Reset()
		h.Write(sum[:n])
		sum = h.Sum(sum[:0])
	}
	return sum
}

// rc4Key returns the RC4 key derived from the owner password for Algorithm 3.
func rc4Key(ownerPad *[32]byte, keyBytes, rev int) []byte {
	sum := hashes.MD5.Sum(nil, ownerPad[:])
	if rev >= 3 {
		sum = stretch(sum, keyBytes)
		return sum[:keyBytes]
	}
	return sum[:5]
}

// ComputeOwnerKey implements Algorithm 3, the computation of the O entry,
// for revisions 2 to 4.
//
// With invert set, the rounds run backwards and in is a stored O value; the
// result is then the padded user password which the owner password unlocks
// (step b of Algorithm 7).
func ComputeOwnerKey(in, ownerPad *[32]byte, keyBits, rev int, invert bool) [32]byte {
	key := rc4Key(ownerPad, keyBits/8, rev)
	defer crypt.Wipe(key)

	out := *in
	if rev < 3 {
		crypt.XORRC4(key, out[:], out[:])
		return out
	}

	tmp := make([]byte, len(key))
	defer crypt.Wipe(tmp)
	for i := 0; i < 20; i++ {
		x := byte(i)
		if invert {
			x = byte(19 - i)
		}
		for j := range tmp {
			tmp[j] = key[j] ^ x
		}
		crypt.XORRC4(tmp, out[:], out[:])
	}
	return out
}

// LegacyParams holds the inputs of Algorithm 2 which do not depend on the
// password.
type LegacyParams struct {
	ID              []byte
	O               [32]byte
	P               int32
	KeyBits         int
	Revision        int
	EncryptMetadata bool
}

// ComputeEncryptionKey implements Algorithm 2 and returns the file
// encryption key together with the U value (Algorithm 4 or 5) which this key
// implies.
func ComputeEncryptionKey(par *LegacyParams, userPad *[32]byte) ([]byte, [32]byte) {
	n := par.KeyBits / 8
	if par.Revision < 3 {
		n = 5
	}

	h := hashes.MD5.New()
	h.Write(userPad[:])
	h.Write(par.O[:])
	var p [4]byte
	binary.LittleEndian.PutUint32(p[:], uint32(par.P))
	h.Write(p[:])
	h.Write(par.ID)
	if par.Revision >= 4 && !par.EncryptMetadata {
		h.Write([]byte{0xff, 0xff, 0xff, 0xff})
	}
	sum := h.Sum(nil)
	if par.Revision >= 3 {
		sum = stretch(sum, n)
	}

	key := make([]byte, n)
	copy(key, sum)
	crypt.Wipe(sum)

	return key, ComputeU(key, par.ID, par.Revision)
}

// ComputeU implements Algorithm 4 (revision 2) and Algorithm 5 (revisions 3
// and 4).  For revisions 3 and 4 only the first 16 bytes are significant; the
// remaining bytes are zero.
func ComputeU(key, id []byte, rev int) [32]byte {
	var u [32]byte
	if rev < 3 {
		crypt.XORRC4(key, u[:], password.Pad[:])
		return u
	}

	sum := hashes.MD5.Sum(nil, password.Pad[:], id)
	crypt.XORRC4(key, sum, sum)
	tmp := make([]byte, len(key))
	for i := byte(1); i <= 19; i++ {
		for j := range tmp {
			tmp[j] = key[j] ^ i
		}
		crypt.XORRC4(tmp, sum, sum)
	}
	crypt.Wipe(tmp)
	copy(u[:16], sum)
	return u
}

// ObjectKey implements Algorithm 1: the key for the string or stream data of
// a single object.  AES-128 keys include the "sAlT" suffix.
func ObjectKey(fileKey []byte, ref types.Objptr, aes bool) []byte {
	h := hashes.MD5.New()
	h.Write(fileKey)
	h.Write([]byte{
		byte(ref.ID), byte(ref.ID >> 8), byte(ref.ID >> 16),
		byte(ref.Gen), byte(ref.Gen >> 8)})
	if aes {
		h.Write([]byte("sAlT"))
	}
	n := min(len(fileKey)+5, 16)
	return h.Sum(nil)[:n]
}
