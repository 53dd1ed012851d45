package keys

import (
	"encoding/binary"

	"github.com/ScriptRock/stdsec/internal/crypt"
	"github.com/ScriptRock/stdsec/internal/hashes"
	"github.com/ScriptRock/stdsec/internal/random"
)

// HashV5 computes the password hash of revisions 5 and 6.  Revision 5 uses a
// single SHA-256 (Algorithm 2.A), revision 6 the iterated hash of Algorithm
// 2.B.  The extra argument is the 48-byte U value when the owner password is
// involved, and empty otherwise.
func HashV5(rev int, pw, salt, extra []byte) [32]byte {
	k := hashes.SHA256.Sum(make([]byte, 0, 64), pw, salt, extra)

	if rev >= 6 {
		k1 := make([]byte, 0, 64*(len(pw)+64+len(extra)))
		for round := 0; ; {
			k1 = k1[:0]
			for j := 0; j < 64; j++ {
				k1 = append(k1, pw...)
				k1 = append(k1, k...)
				k1 = append(k1, extra...)
			}

			// The length of k1 is a multiple of 64.
			if err := crypt.CBCNoPad(k[:16], k[16:32], k1, k1); err != nil {
				panic(err)
			}

			// 256 = 1 (mod 3), so the big-endian value of the first
			// 16 bytes is congruent to the sum of the bytes.
			rem := 0
			for _, b := range k1[:16] {
				rem += int(b)
			}
			k = hashes.ForRemainder(rem%3).Sum(k[:0], k1)

			round++
			if round >= 64 && int(k1[len(k1)-1]) <= round-32 {
				break
			}
		}
		crypt.Wipe(k1[:cap(k1)])
	}

	var out [32]byte
	copy(out[:], k)
	crypt.Wipe(k[:cap(k)])
	return out
}

// ComputeUandUE implements Algorithm 8.  It draws fresh validation and key
// salts from rnd.
func ComputeUandUE(rev int, rnd random.Source, pw, fileKey []byte) (u [48]byte, ue [32]byte, err error) {
	return wrapFileKey(rev, rnd, pw, nil, fileKey)
}

// ComputeOandOE implements Algorithm 9.  The U value must already be known.
func ComputeOandOE(rev int, rnd random.Source, pw, fileKey []byte, u *[48]byte) (o [48]byte, oe [32]byte, err error) {
	return wrapFileKey(rev, rnd, pw, u[:], fileKey)
}

func wrapFileKey(rev int, rnd random.Source, pw, extra, fileKey []byte) (val [48]byte, wrapped [32]byte, err error) {
	salts := val[32:48]
	if err = rnd.FillRandom(salts); err != nil {
		return val, wrapped, err
	}

	hash := HashV5(rev, pw, salts[:8], extra)
	copy(val[:32], hash[:])

	kek := HashV5(rev, pw, salts[8:], extra)
	defer crypt.Wipe(kek[:])
	w, err := crypt.WrapKey(kek[:], fileKey)
	if err != nil {
		return val, wrapped, err
	}
	copy(wrapped[:], w)
	return val, wrapped, nil
}

// PermsPrefix returns the first 12 bytes of the plaintext Perms block:
// P (little endian), four 0xFF bytes, 'T' or 'F', and "adb".
func PermsPrefix(p int32, encryptMetadata bool) [12]byte {
	var buf [12]byte
	binary.LittleEndian.PutUint32(buf[:4], uint32(p))
	buf[4], buf[5], buf[6], buf[7] = 0xff, 0xff, 0xff, 0xff
	if encryptMetadata {
		buf[8] = 'T'
	} else {
		buf[8] = 'F'
	}
	copy(buf[9:], "adb")
	return buf
}

// ComputePerms implements Algorithm 10.
func ComputePerms(rnd random.Source, fileKey []byte, p int32, encryptMetadata bool) ([16]byte, error) {
	var block [16]byte
	prefix := PermsPrefix(p, encryptMetadata)
	copy(block[:], prefix[:])
	if err := rnd.FillRandom(block[12:]); err != nil {
		return block, err
	}
	if err := crypt.EncryptBlock(fileKey, &block); err != nil {
		return block, err
	}
	return block, nil
}
