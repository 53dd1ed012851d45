package stdsec

import (
	"errors"
	"fmt"

	"github.com/ScriptRock/stdsec/internal/password"
)

var (
	// ErrUnsupported is returned by NewSettings for a revision and key
	// length combination which the standard security handler does not
	// define.
	ErrUnsupported = errors.New("unsupported security handler configuration")

	// ErrCorrupt is matched by every *MalformedError.
	ErrCorrupt = errors.New("corrupt security handler data")

	// ErrNormalization is returned when SASLprep rejects a revision 5 or 6
	// password.
	ErrNormalization = password.ErrNormalization

	// ErrPermissionDenied is returned by Authenticate when import
	// permissions are required but the user password does not grant them.
	ErrPermissionDenied = errors.New("document permissions do not allow printing and copying")
)

// MalformedError indicates that stored credentials or encrypted data are
// damaged.  errors.Is(err, ErrCorrupt) reports true for every MalformedError.
type MalformedError struct {
	Field string
	Err   error
}

func (e *MalformedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("malformed PDF: invalid %s", e.Field)
	}
	return fmt.Sprintf("malformed PDF: %s: %v", e.Field, e.Err)
}

func (e *MalformedError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCorrupt}
	}
	return []error{ErrCorrupt, e.Err}
}
