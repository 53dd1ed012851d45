// Package random provides the byte source used for salts, initialization
// vectors and fresh file encryption keys.
package random

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20"
)

// Source fills p with unpredictable bytes.
type Source interface {
	FillRandom(p []byte) error
}

const blockSize = 64

// ChaCha is a keystream generator.  Output is the ChaCha20 keystream for a
// key and nonce drawn once from an entropy source.
//
// A ChaCha must not be used from more than one goroutine at a time.
// Counter exhaustion is not handled; 2^32 blocks are 256 GiB of output.
type ChaCha struct {
	key     [chacha20.KeySize]byte
	nonce   [chacha20.NonceSize]byte
	counter uint32
	buf     [blockSize]byte
	pos     int

	c *chacha20.Cipher
}

// NewChaCha seeds a generator from entropy.
func NewChaCha(entropy io.Reader) (*ChaCha, error) {
	g := &ChaCha{pos: blockSize}
	if _, err := io.ReadFull(entropy, g.key[:]); err != nil {
		return nil, fmt.Errorf("random: reading key: %w", err)
	}
	if _, err := io.ReadFull(entropy, g.nonce[:]); err != nil {
		return nil, fmt.Errorf("random: reading nonce: %w", err)
	}
	c, err := chacha20.NewUnauthenticatedCipher(g.key[:], g.nonce[:])
	if err != nil {
		return nil, err
	}
	g.c = c
	return g, nil
}

// Default returns a generator seeded from the operating system.
func Default() (*ChaCha, error) {
	return NewChaCha(rand.Reader)
}

// FillRandom implements Source.
func (g *ChaCha) FillRandom(p []byte) error {
	for len(p) > 0 {
		if g.pos == blockSize {
			g.refill()
		}
		n := copy(p, g.buf[g.pos:])
		clear(g.buf[g.pos : g.pos+n])
		g.pos += n
		p = p[n:]
	}
	return nil
}

func (g *ChaCha) refill() {
	clear(g.buf[:])
	g.c.SetCounter(g.counter)
	g.c.XORKeyStream(g.buf[:], g.buf[:])
	g.counter++
	g.pos = 0
}

// Reader adapts an io.Reader, for example crypto/rand.Reader, to a Source.
type Reader struct {
	R io.Reader
}

// FillRandom implements Source.
func (r Reader) FillRandom(p []byte) error {
	_, err := io.ReadFull(r.R, p)
	return err
}
