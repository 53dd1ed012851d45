package decrypter

import (
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/ScriptRock/stdsec/internal/crypt"
	"github.com/ScriptRock/stdsec/internal/keys"
	"github.com/ScriptRock/stdsec/internal/password"
)

var (
	ErrInvalidPassword = errors.New("encrypted PDF: invalid password")

	// ErrPerms is returned when a password matches but the Perms entry
	// does not decrypt to the expected permissions.
	ErrPerms = errors.New("encrypted PDF: Perms entry does not match P and EncryptMetadata")
)

// Result is the outcome of a successful authentication.
type Result struct {
	Key   []byte
	Owner bool // the owner password was supplied
}

// AuthenticateLegacy implements Algorithms 6 and 7 for revisions 2 to 4.
// The password is tried as the user password first, then as the owner
// password.  U is the stored U value.
func AuthenticateLegacy(par *keys.LegacyParams, u *[32]byte, pw string) (*Result, error) {
	n := 32
	if par.Revision >= 3 {
		n = 16
	}

	pwb := password.LegacyBytes(pw)
	pad := password.PadLegacy(pwb)
	defer crypt.Wipe(pwb, pad[:])

	key, want := keys.ComputeEncryptionKey(par, &pad)
	if subtle.ConstantTimeCompare(want[:n], u[:n]) == 1 {
		slog.Debug("legacy user password accepted", slog.Int("revision", par.Revision))
		return &Result{Key: key}, nil
	}
	crypt.Wipe(key)

	userPad := keys.ComputeOwnerKey(&par.O, &pad, par.KeyBits, par.Revision, true)
	defer crypt.Wipe(userPad[:])
	key, want = keys.ComputeEncryptionKey(par, &userPad)
	if subtle.ConstantTimeCompare(want[:n], u[:n]) == 1 {
		slog.Debug("legacy owner password accepted", slog.Int("revision", par.Revision))
		return &Result{Key: key, Owner: true}, nil
	}
	crypt.Wipe(key)

	return nil, ErrInvalidPassword
}

// V5Params holds the stored credentials of revisions 5 and 6.
type V5Params struct {
	Revision        int
	O, U            [48]byte
	OE, UE          [32]byte
	Perms           [16]byte
	P               int32
	EncryptMetadata bool
}

// AuthenticateV5 implements Algorithm 2.A for revisions 5 and 6 together
// with the Perms check of Algorithm 13.  The password is tried as the owner
// password first.  A SASLprep failure is returned as an error wrapping
// password.ErrNormalization.
func AuthenticateV5(par *V5Params, pw string) (*Result, error) {
	pwb, err := password.PrepareV5(pw)
	if err != nil {
		return nil, err
	}
	defer crypt.Wipe(pwb)

	var key []byte
	owner := false
	if ok, k, err := tryV5(par.Revision, pwb, &par.O, par.U[:], &par.OE); err != nil {
		return nil, err
	} else if ok {
		key, owner = k, true
	} else if ok, k, err := tryV5(par.Revision, pwb, &par.U, nil, &par.UE); err != nil {
		return nil, err
	} else if ok {
		key = k
	} else {
		return nil, ErrInvalidPassword
	}

	if err := checkPerms(par, key); err != nil {
		crypt.Wipe(key)
		return nil, err
	}
	slog.Debug("password accepted", slog.Int("revision", par.Revision), slog.Bool("owner", owner))
	return &Result{Key: key, Owner: owner}, nil
}

// tryV5 checks pw against a stored O or U value and, on a match, unwraps the
// file key from the corresponding OE or UE value.
func tryV5(rev int, pw []byte, val *[48]byte, extra []byte, wrapped *[32]byte) (bool, []byte, error) {
	hash := keys.HashV5(rev, pw, val[32:40], extra)
	match := subtle.ConstantTimeCompare(hash[:], val[:32]) == 1
	crypt.Wipe(hash[:])
	if !match {
		return false, nil, nil
	}

	kek := keys.HashV5(rev, pw, val[40:48], extra)
	defer crypt.Wipe(kek[:])
	key, err := crypt.UnwrapKey(kek[:], wrapped[:])
	if err != nil {
		return false, nil, err
	}
	return true, key, nil
}

func checkPerms(par *V5Params, key []byte) error {
	block := par.Perms
	if err := crypt.DecryptBlock(key, &block); err != nil {
		return err
	}
	want := keys.PermsPrefix(par.P, par.EncryptMetadata)
	if subtle.ConstantTimeCompare(block[:12], want[:]) != 1 {
		return ErrPerms
	}
	return nil
}
