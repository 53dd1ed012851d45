// Package crypt implements the ciphers of the standard security handler:
// RC4 for the legacy revisions and for wrapping derived keys, AES-CBC with an
// IV prefix for document content, and the fixed-size AES transforms used
// internally by revisions 5 and 6.
package crypt

import (
	"bytes"
	"crypto/rc4"
)

// RC4 applies the RC4 keystream.  The key schedule of the most recent key is
// kept, so that consecutive calls with the same key skip the permutation
// setup.  The zero value is ready to use.
//
// An RC4 must not be used from more than one goroutine at a time.
type RC4 struct {
	key   []byte
	state rc4.Cipher
	valid bool
}

// XORKeyStream XORs src with the keystream for key and writes the result to
// dst.  RC4 is its own inverse, so the same call encrypts and decrypts.
// Dst and src must overlap entirely or not at all.
func (r *RC4) XORKeyStream(key, dst, src []byte) error {
	if !r.valid || !bytes.Equal(key, r.key) {
		c, err := rc4.NewCipher(key)
		if err != nil {
			return err
		}
		Wipe(r.key)
		r.key = append(r.key[:0], key...)
		r.state = *c
		*c = rc4.Cipher{}
		r.valid = true
	}
	c := r.state
	c.XORKeyStream(dst, src)
	return nil
}

// Close discards the cached key schedule.
func (r *RC4) Close() {
	Wipe(r.key)
	r.key = r.key[:0]
	r.state = rc4.Cipher{}
	r.valid = false
}

// XORRC4 is a one-shot RC4 transform without caching.  The key must be
// between 1 and 256 bytes long.
func XORRC4(key, dst, src []byte) {
	c, err := rc4.NewCipher(key)
	if err != nil {
		panic(err)
	}
	c.XORKeyStream(dst, src)
	*c = rc4.Cipher{}
}
