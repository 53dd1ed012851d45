// Package password converts user supplied passwords into the byte strings
// which the key derivation algorithms consume.
package password

import (
	"errors"
	"fmt"

	"github.com/xdg-go/stringprep"

	"github.com/ScriptRock/stdsec/internal/encoding"
)

// ErrNormalization is returned when SASLprep rejects a password for
// revision 5 or 6, for example because it contains prohibited characters.
var ErrNormalization = errors.New("password cannot be prepared with SASLprep")

// MaxV5 is the maximum length of a prepared revision 5/6 password, in bytes.
const MaxV5 = 127

// Pad is the padding string of Algorithm 2 in ISO 32000.
var Pad = [32]byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41,
	0x64, 0x00, 0x4E, 0x56, 0xFF, 0xFA, 0x01, 0x08,
	0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80,
	0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

// PadLegacy returns the first 32 bytes of pw, filled up with bytes from Pad.
func PadLegacy(pw []byte) [32]byte {
	var padded [32]byte
	n := copy(padded[:], pw)
	copy(padded[n:], Pad[:])
	return padded
}

// LegacyBytes converts a password for revisions 2 to 4.  Passwords are
// stored in PDFDocEncoding where possible.  Other passwords are used as raw
// UTF-8.
func LegacyBytes(pw string) []byte {
	if buf, ok := encoding.PDFDocEncode(pw); ok {
		return buf
	}
	return []byte(pw)
}

// PrepareV5 applies SASLprep to pw and truncates the UTF-8 result to
// MaxV5 bytes.
func PrepareV5(pw string) ([]byte, error) {
	prepped, err := stringprep.SASLprep.Prepare(pw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNormalization, err)
	}
	buf := []byte(prepped)
	if len(buf) > MaxV5 {
		buf = buf[:MaxV5]
	}
	return buf, nil
}
