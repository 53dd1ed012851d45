package stdsec

import (
	"errors"

	"github.com/ScriptRock/stdsec/internal/crypt"
	"github.com/ScriptRock/stdsec/internal/decrypter"
	"github.com/ScriptRock/stdsec/internal/keys"
	"github.com/ScriptRock/stdsec/internal/password"
	"github.com/ScriptRock/stdsec/internal/random"
)

// A scheme is one family of the standard security handler.
type scheme interface {
	// deriveKeys computes fresh credentials for the given passwords.  It
	// returns the credentials and the file encryption key.
	deriveKeys(s Settings, id []byte, user, owner string, rnd random.Source) (*Credentials, []byte, error)

	// authenticate recovers the file encryption key from a password.  A
	// wrong password gives decrypter.ErrInvalidPassword.  The credentials
	// have been validated.
	authenticate(s Settings, id []byte, cred *Credentials, pw string) (*decrypter.Result, error)
}

// legacyV2 is revision 2: 40-bit RC4, U is the encrypted padding string.
type legacyV2 struct{}

func (legacyV2) deriveKeys(s Settings, id []byte, user, owner string, _ random.Source) (*Credentials, []byte, error) {
	return deriveLegacy(s, id, user, owner)
}

func (legacyV2) authenticate(s Settings, id []byte, cred *Credentials, pw string) (*decrypter.Result, error) {
	return authenticateLegacy(s, id, cred, pw)
}

// legacyV3V4 is revisions 3 and 4: stretched MD5 keys, RC4 or AES-128
// content encryption, and a U value with 16 significant bytes.
type legacyV3V4 struct{}

func (legacyV3V4) deriveKeys(s Settings, id []byte, user, owner string, _ random.Source) (*Credentials, []byte, error) {
	return deriveLegacy(s, id, user, owner)
}

func (legacyV3V4) authenticate(s Settings, id []byte, cred *Credentials, pw string) (*decrypter.Result, error) {
	return authenticateLegacy(s, id, cred, pw)
}

func legacyParams(s Settings, id []byte) *keys.LegacyParams {
	return &keys.LegacyParams{
		ID:              id,
		P:               s.p,
		KeyBits:         s.keyBits,
		Revision:        int(s.rev),
		EncryptMetadata: s.encryptMetadata,
	}
}

// deriveLegacy implements Algorithms 3, 2 and 4/5 in that order.  The file
// key depends only on the passwords and the document ID.
func deriveLegacy(s Settings, id []byte, user, owner string) (*Credentials, []byte, error) {
	userPw := password.LegacyBytes(user)
	ownerPw := password.LegacyBytes(owner)
	userPad := password.PadLegacy(userPw)
	ownerPad := password.PadLegacy(ownerPw)
	defer crypt.Wipe(userPw, ownerPw, userPad[:], ownerPad[:])

	par := legacyParams(s, id)
	par.O = keys.ComputeOwnerKey(&userPad, &ownerPad, s.keyBits, int(s.rev), false)
	key, u := keys.ComputeEncryptionKey(par, &userPad)

	cred := &Credentials{
		O: append([]byte(nil), par.O[:]...),
		U: append([]byte(nil), u[:]...),
	}
	return cred, key, nil
}

func authenticateLegacy(s Settings, id []byte, cred *Credentials, pw string) (*decrypter.Result, error) {
	par := legacyParams(s, id)
	copy(par.O[:], cred.O)
	var u [32]byte
	copy(u[:], cred.U)
	return decrypter.AuthenticateLegacy(par, &u, pw)
}

// aesV5V6 is revisions 5 and 6: a random 256-bit file key, wrapped once
// for each password, and an encrypted Perms block.
type aesV5V6 struct{}

func (aesV5V6) deriveKeys(s Settings, _ []byte, user, owner string, rnd random.Source) (*Credentials, []byte, error) {
	userPw, err := password.PrepareV5(user)
	if err != nil {
		return nil, nil, err
	}
	defer crypt.Wipe(userPw)
	ownerPw, err := password.PrepareV5(owner)
	if err != nil {
		return nil, nil, err
	}
	defer crypt.Wipe(ownerPw)

	rev := int(s.rev)
	key := make([]byte, 32)
	if err := rnd.FillRandom(key); err != nil {
		return nil, nil, err
	}

	u, ue, err := keys.ComputeUandUE(rev, rnd, userPw, key)
	if err != nil {
		crypt.Wipe(key)
		return nil, nil, err
	}
	o, oe, err := keys.ComputeOandOE(rev, rnd, ownerPw, key, &u)
	if err != nil {
		crypt.Wipe(key)
		return nil, nil, err
	}
	perms, err := keys.ComputePerms(rnd, key, s.p, s.encryptMetadata)
	if err != nil {
		crypt.Wipe(key)
		return nil, nil, err
	}

	cred := &Credentials{
		O:     o[:],
		U:     u[:],
		OE:    oe[:],
		UE:    ue[:],
		Perms: perms[:],
	}
	return cred, key, nil
}

func (aesV5V6) authenticate(s Settings, _ []byte, cred *Credentials, pw string) (*decrypter.Result, error) {
	par := &decrypter.V5Params{
		Revision:        int(s.rev),
		P:               s.p,
		EncryptMetadata: s.encryptMetadata,
	}
	copy(par.O[:], cred.O)
	copy(par.U[:], cred.U)
	copy(par.OE[:], cred.OE)
	copy(par.UE[:], cred.UE)
	copy(par.Perms[:], cred.Perms)

	res, err := decrypter.AuthenticateV5(par, pw)
	if errors.Is(err, decrypter.ErrPerms) {
		return nil, &MalformedError{Field: "Perms entry", Err: err}
	}
	return res, err
}
