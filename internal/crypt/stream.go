package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"io"

	"github.com/ScriptRock/stdsec/internal/random"
)

const chunkSize = 256 * BlockSize

// NewCBCWriter returns a writer which encrypts to w in the format of
// EncryptCBC.  The IV is written immediately.  Close writes the padding
// block and closes w.
func NewCBCWriter(key []byte, rnd random.Source, w io.WriteCloser) (io.WriteCloser, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, BlockSize)
	if err := rnd.FillRandom(iv); err != nil {
		return nil, err
	}
	if _, err := w.Write(iv); err != nil {
		return nil, err
	}

	return &cbcWriter{
		w:   w,
		cbc: cipher.NewCBCEncrypter(c, iv),
		buf: iv,
	}, nil
}

type cbcWriter struct {
	w   io.WriteCloser
	cbc cipher.BlockMode
	buf []byte // one block
	pos int
}

func (w *cbcWriter) Write(p []byte) (int, error) {
	n := 0
	for len(p) > 0 {
		k := copy(w.buf[w.pos:], p)
		n += k
		w.pos += k
		p = p[k:]

		if w.pos == len(w.buf) {
			w.cbc.CryptBlocks(w.buf, w.buf)
			if _, err := w.w.Write(w.buf); err != nil {
				return n, err
			}
			w.pos = 0
		}
	}
	return n, nil
}

func (w *cbcWriter) Close() error {
	nPad := BlockSize - w.pos
	for i := w.pos; i < len(w.buf); i++ {
		w.buf[i] = byte(nPad)
	}
	w.cbc.CryptBlocks(w.buf, w.buf)
	if _, err := w.w.Write(w.buf); err != nil {
		return err
	}
	return w.w.Close()
}

// NewCBCReader returns a reader which decrypts data in the format of
// EncryptCBC read from rd.  The IV is read immediately.
func NewCBCReader(key []byte, rd io.Reader) (io.Reader, error) {
	iv := make([]byte, BlockSize)
	_, err := io.ReadFull(rd, iv)
	if err == io.EOF {
		return eofReader{}, nil
	} else if errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, ErrCiphertext
	} else if err != nil {
		return nil, err
	}

	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &cbcReader{
		cbc: cipher.NewCBCDecrypter(c, iv),
		rd:  rd,
		buf: make([]byte, BlockSize+chunkSize),
	}, nil
}

type cbcReader struct {
	cbc  cipher.BlockMode
	rd   io.Reader
	buf  []byte
	pend []byte

	// The last decrypted block is withheld until we know whether it is the
	// padding block at the end of the stream.
	hold [BlockSize]byte
	held bool
	done bool
}

func (r *cbcReader) Read(p []byte) (int, error) {
	for len(r.pend) == 0 {
		if r.done {
			return 0, io.EOF
		}
		if err := r.fill(); err != nil {
			return 0, err
		}
	}
	n := copy(p, r.pend)
	r.pend = r.pend[n:]
	return n, nil
}

func (r *cbcReader) fill() error {
	k := 0
	if r.held {
		k = copy(r.buf, r.hold[:])
	}

	n, err := io.ReadFull(r.rd, r.buf[k:k+chunkSize])
	eof := false
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		eof = true
	} else if err != nil {
		return err
	}
	if n%BlockSize != 0 {
		return ErrCiphertext
	}
	r.cbc.CryptBlocks(r.buf[k:k+n], r.buf[k:k+n])
	total := k + n

	if !eof {
		copy(r.hold[:], r.buf[total-BlockSize:total])
		r.held = true
		r.pend = r.buf[:total-BlockSize]
		return nil
	}

	r.done = true
	r.held = false
	if total == 0 {
		return nil
	}
	nPad := int(r.buf[total-1])
	if nPad < 1 || nPad > BlockSize {
		return ErrPadding
	}
	r.pend = r.buf[:total-nPad]
	return nil
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
