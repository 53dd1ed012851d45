package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/ScriptRock/stdsec/internal/random"
)

const BlockSize = aes.BlockSize

var (
	// ErrCiphertext is returned when AES data is not a whole number of blocks.
	ErrCiphertext = errors.New("AES ciphertext is not a multiple of the block size")

	// ErrPadding is returned when the final block carries invalid padding.
	ErrPadding = errors.New("invalid AES padding")
)

// EncryptedLength is the stored length of n plaintext bytes: the IV, the
// data, and between 1 and 16 bytes of padding.
func EncryptedLength(n int) int {
	return BlockSize + (n/BlockSize+1)*BlockSize
}

// EncryptCBC encrypts plain with AES-CBC under a fresh random IV.  The
// result is IV | E(plain | padding), where every padding byte holds the
// padding length.
func EncryptCBC(key []byte, rnd random.Source, plain []byte) ([]byte, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	n := len(plain)
	nPad := BlockSize - n%BlockSize
	out := make([]byte, EncryptedLength(n))
	iv := out[:BlockSize]
	if err := rnd.FillRandom(iv); err != nil {
		return nil, err
	}

	body := out[BlockSize:]
	copy(body, plain)
	for i := n; i < len(body); i++ {
		body[i] = byte(nPad)
	}
	cipher.NewCBCEncrypter(c, iv).CryptBlocks(body, body)
	return out, nil
}

// DecryptCBC reverses EncryptCBC.  Empty input, and input consisting of an
// IV only, decrypt to an empty result.
func DecryptCBC(key []byte, data []byte) ([]byte, error) {
	if len(data)%BlockSize != 0 {
		return nil, ErrCiphertext
	}
	if len(data) <= BlockSize {
		return []byte{}, nil
	}
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(data)-BlockSize)
	cipher.NewCBCDecrypter(c, data[:BlockSize]).CryptBlocks(out, data[BlockSize:])

	nPad := int(out[len(out)-1])
	if nPad < 1 || nPad > BlockSize {
		Wipe(out)
		return nil, ErrPadding
	}
	return out[:len(out)-nPad], nil
}

// CBCNoPad encrypts src into dst with AES-CBC, without padding.  The length
// of src must be a multiple of the block size.
func CBCNoPad(key, iv, dst, src []byte) error {
	if len(src)%BlockSize != 0 {
		return ErrCiphertext
	}
	c, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	cipher.NewCBCEncrypter(c, iv).CryptBlocks(dst, src)
	return nil
}

var zeroIV [BlockSize]byte

// WrapKey encrypts a 32-byte file encryption key with AES-256-CBC, zero IV
// and no padding, as used for the OE and UE entries.
func WrapKey(kek, fileKey []byte) ([]byte, error) {
	out := make([]byte, len(fileKey))
	if err := CBCNoPad(kek, zeroIV[:], out, fileKey); err != nil {
		return nil, err
	}
	return out, nil
}

// UnwrapKey reverses WrapKey.
func UnwrapKey(kek, wrapped []byte) ([]byte, error) {
	if len(wrapped)%BlockSize != 0 {
		return nil, ErrCiphertext
	}
	c, err := aes.NewCipher(kek)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(wrapped))
	cipher.NewCBCDecrypter(c, zeroIV[:]).CryptBlocks(out, wrapped)
	return out, nil
}

// EncryptBlock encrypts exactly one block (AES-ECB).
func EncryptBlock(key []byte, block *[BlockSize]byte) error {
	c, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	c.Encrypt(block[:], block[:])
	return nil
}

// DecryptBlock decrypts exactly one block (AES-ECB).
func DecryptBlock(key []byte, block *[BlockSize]byte) error {
	c, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	c.Decrypt(block[:], block[:])
	return nil
}
