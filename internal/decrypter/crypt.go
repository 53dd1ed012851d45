// Package decrypter applies a file encryption key to the strings and streams
// of individual objects, and recovers that key from a password.
package decrypter

import (
	"crypto/cipher"
	"crypto/rc4"
	"fmt"
	"io"

	"github.com/ScriptRock/stdsec/internal/crypt"
	"github.com/ScriptRock/stdsec/internal/keys"
	"github.com/ScriptRock/stdsec/internal/random"
	"github.com/ScriptRock/stdsec/internal/types"
)

// Method is a crypt filter method, named after the CFM values of the
// encryption dictionary.
type Method int

const (
	V2    Method = iota // RC4 with per-object keys
	AESV2               // AES-128 with per-object keys
	AESV3               // AES-256 with the file key
)

func (m Method) String() string {
	switch m {
	case V2:
		return "V2"
	case AESV2:
		return "AESV2"
	case AESV3:
		return "AESV3"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Decrypter encrypts and decrypts object data under one file encryption
// key.  A Decrypter must not be used from more than one goroutine at a time.
type Decrypter struct {
	key    []byte
	method Method
	rnd    random.Source
	rc4    crypt.RC4
}

// New returns a Decrypter for key.  The key is copied.  The random source is
// only used for AES initialization vectors.
func New(key []byte, m Method, rnd random.Source) *Decrypter {
	return &Decrypter{
		key:    append([]byte(nil), key...),
		method: m,
		rnd:    rnd,
	}
}

func (d *Decrypter) aes() bool { return d.method != V2 }

// cryptKey returns a fresh copy of the key for the given object.  The
// caller wipes it after use.
func (d *Decrypter) cryptKey(ptr types.Objptr) []byte {
	if d.method == AESV3 {
		return append([]byte(nil), d.key...)
	}
	return keys.ObjectKey(d.key, ptr, d.method == AESV2)
}

// Encrypt returns the stored form of data, which belongs to the object ptr.
func (d *Decrypter) Encrypt(ptr types.Objptr, data []byte) ([]byte, error) {
	key := d.cryptKey(ptr)
	defer crypt.Wipe(key)

	if d.aes() {
		return crypt.EncryptCBC(key, d.rnd, data)
	}
	out := make([]byte, len(data))
	if err := d.rc4.XORKeyStream(key, out, data); err != nil {
		return nil, err
	}
	return out, nil
}

// Decrypt reverses Encrypt.
func (d *Decrypter) Decrypt(ptr types.Objptr, data []byte) ([]byte, error) {
	key := d.cryptKey(ptr)
	defer crypt.Wipe(key)

	if d.aes() {
		return crypt.DecryptCBC(key, data)
	}
	out := make([]byte, len(data))
	if err := d.rc4.XORKeyStream(key, out, data); err != nil {
		return nil, err
	}
	return out, nil
}

// EncryptStream returns a writer which encrypts stream data for ptr and
// writes it to w.  Closing the returned writer closes w.
func (d *Decrypter) EncryptStream(ptr types.Objptr, w io.WriteCloser) (io.WriteCloser, error) {
	key := d.cryptKey(ptr)
	defer crypt.Wipe(key)

	if d.aes() {
		return crypt.NewCBCWriter(key, d.rnd, w)
	}
	c, err := rc4.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("bad RC4 key: %w", err)
	}
	return cipher.StreamWriter{S: c, W: w}, nil
}

// DecryptStream returns a reader for the plain text of the stream data rd.
func (d *Decrypter) DecryptStream(ptr types.Objptr, rd io.Reader) (io.Reader, error) {
	key := d.cryptKey(ptr)
	defer crypt.Wipe(key)

	if d.aes() {
		return crypt.NewCBCReader(key, rd)
	}
	c, err := rc4.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("bad RC4 key: %w", err)
	}
	return &cipher.StreamReader{S: c, R: rd}, nil
}

// EncryptedLength returns the stored length of n bytes of object data.
func (d *Decrypter) EncryptedLength(n int) int {
	if d.aes() {
		return crypt.EncryptedLength(n)
	}
	return n
}

// PrefixLength is the number of bytes which precede the encrypted data,
// i.e. the length of the AES initialization vector.
func (d *Decrypter) PrefixLength() int {
	if d.aes() {
		return crypt.BlockSize
	}
	return 0
}

// Close wipes the file key and the cached RC4 state.
func (d *Decrypter) Close() {
	crypt.Wipe(d.key)
	d.rc4.Close()
}

// Key returns a copy of the file encryption key.
func (d *Decrypter) Key() []byte {
	return append([]byte(nil), d.key...)
}
