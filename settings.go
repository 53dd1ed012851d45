package stdsec

import (
	"fmt"

	"github.com/ScriptRock/stdsec/internal/decrypter"
)

// Revision is the R entry of the encryption dictionary.
type Revision int

const (
	R2 Revision = 2 // RC4, 40-bit key
	R3 Revision = 3 // RC4, 40 to 128-bit key
	R4 Revision = 4 // AES-128
	R5 Revision = 5 // AES-256, deprecated Adobe extension level 3
	R6 Revision = 6 // AES-256, PDF 2.0
)

func (r Revision) String() string {
	return fmt.Sprintf("R%d", int(r))
}

// Settings describe the encryption of one document.  Use NewSettings to
// obtain valid Settings; the zero value is rejected everywhere.
type Settings struct {
	rev             Revision
	keyBits         int
	p               int32
	encryptMetadata bool
}

// NewSettings checks that the revision and key length form a supported pair.
// Revision 2 requires 40 bits, revision 3 a multiple of 8 between 40 and 128,
// revision 4 128 bits and revisions 5 and 6 256 bits.
//
// P is the permission mask and is stored as is.  EncryptMetadata selects
// whether XMP metadata streams are encrypted; it enters the key derivation of
// revision 4 and later.
func NewSettings(r Revision, keyBits int, p int32, encryptMetadata bool) (Settings, error) {
	ok := false
	switch r {
	case R2:
		ok = keyBits == 40
	case R3:
		ok = keyBits >= 40 && keyBits <= 128 && keyBits%8 == 0
	case R4:
		ok = keyBits == 128
	case R5, R6:
		ok = keyBits == 256
	}
	if !ok {
		return Settings{}, fmt.Errorf("%w: %s with a %d-bit key", ErrUnsupported, r, keyBits)
	}
	return Settings{rev: r, keyBits: keyBits, p: p, encryptMetadata: encryptMetadata}, nil
}

func (s Settings) Revision() Revision    { return s.rev }
func (s Settings) KeyBits() int          { return s.keyBits }
func (s Settings) KeyBytes() int         { return s.keyBits / 8 }
func (s Settings) P() int32              { return s.p }
func (s Settings) EncryptMetadata() bool { return s.encryptMetadata }

// V returns the V entry of the encryption dictionary.
func (s Settings) V() int {
	switch s.rev {
	case R2:
		return 1
	case R3:
		return 2
	case R4:
		return 4
	default:
		return 5
	}
}

// Permission bits of P, numbered from 1 as in ISO 32000.
const (
	PermPrint = 1 << 2
	PermCopy  = 1 << 4
)

// allowsImport reports whether P grants printing and copying.
func (s Settings) allowsImport() bool {
	return s.p&PermPrint != 0 && s.p&PermCopy != 0
}

func (s Settings) method() decrypter.Method {
	switch s.rev {
	case R2, R3:
		return decrypter.V2
	case R4:
		return decrypter.AESV2
	default:
		return decrypter.AESV3
	}
}

func (s Settings) scheme() (scheme, error) {
	switch s.rev {
	case R2:
		return legacyV2{}, nil
	case R3, R4:
		return legacyV3V4{}, nil
	case R5, R6:
		return aesV5V6{}, nil
	}
	return nil, fmt.Errorf("%w: uninitialized Settings", ErrUnsupported)
}
