package crypt

import "crypto/subtle"

// Wipe overwrites each buffer with zeros.  The copy goes through
// subtle.ConstantTimeCopy so that the compiler cannot elide it.
//
// The garbage collector may still hold older copies of the data, so this
// narrows the window in which secrets are readable; it does not close it.
func Wipe(bufs ...[]byte) {
	for _, b := range bufs {
		if len(b) == 0 {
			continue
		}
		subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
	}
}
