// Package hashes exposes the digest functions used by the standard security
// handler under a single small type, so that callers can select a hash at
// run time (the revision 6 key stretching loop does this every round).
package hashes

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
)

type Kind int

const (
	MD5 Kind = iota
	SHA256
	SHA384
	SHA512
)

// New returns a fresh streaming hash of the given kind.
func (k Kind) New() hash.Hash {
	switch k {
	case MD5:
		return md5.New()
	case SHA256:
		return sha256.New()
	case SHA384:
		return sha512.New384()
	case SHA512:
		return sha512.New()
	}
	panic(fmt.Sprintf("hashes: unknown kind %d", int(k)))
}

// Size is the digest length in bytes.
func (k Kind) Size() int {
	switch k {
	case MD5:
		return md5.Size
	case SHA256:
		return sha256.Size
	case SHA384:
		return sha512.Size384
	case SHA512:
		return sha512.Size
	}
	return 0
}

func (k Kind) String() string {
	switch k {
	case MD5:
		return "MD5"
	case SHA256:
		return "SHA-256"
	case SHA384:
		return "SHA-384"
	case SHA512:
		return "SHA-512"
	}
	return fmt.Sprintf("hash#%d", int(k))
}

// Sum hashes the concatenation of parts and appends the digest to dst.
func (k Kind) Sum(dst []byte, parts ...[]byte) []byte {
	h := k.New()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(dst)
}

// ForRemainder maps the value of the first 16 bytes of a block, reduced
// modulo 3, to the hash used for the next round of Algorithm 2.B.
func ForRemainder(rem int) Kind {
	switch rem {
	case 0:
		return SHA256
	case 1:
		return SHA384
	default:
		return SHA512
	}
}
