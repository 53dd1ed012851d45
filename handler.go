// Package stdsec implements the standard security handler of PDF: the
// password based encryption of documents.
//
// # Overview
//
// A document is protected by a user password, which is needed to open it,
// and an owner password, which grants full access.  From these passwords the
// handler derives a file encryption key and a handful of values which are
// stored in the encryption dictionary of the file (see Credentials).  The file
// key then encrypts every string and stream of the document, each under a key
// specific to its object.
//
// Five revisions are supported.  Revisions 2 to 4 derive keys with MD5 and
// RC4, and encrypt content with RC4 or AES-128.  Revisions 5 and 6 use a random
// 256-bit key, SHA-2 based password hashes and AES-256.
//
// To encrypt a new document, call GenerateCredentials and store the returned
// Credentials alongside the Settings.  To open an encrypted document, call
// Authenticate with the stored values and a password.  Both return a Handler
// which encrypts and decrypts object data.
package stdsec

import (
	"errors"
	"io"
	"log/slog"

	"github.com/ScriptRock/stdsec/internal/crypt"
	"github.com/ScriptRock/stdsec/internal/decrypter"
	"github.com/ScriptRock/stdsec/internal/random"
	"github.com/ScriptRock/stdsec/internal/types"
)

// RandomSource fills p with unpredictable bytes.  Tests substitute
// deterministic sources.
type RandomSource interface {
	FillRandom(p []byte) error
}

// Options control GenerateCredentials and Authenticate.  A nil *Options
// selects the defaults.
type Options struct {
	// Random supplies salts, initialization vectors and file keys.  If nil,
	// a ChaCha20 generator seeded from crypto/rand is used.
	Random RandomSource

	// RequireImportPermissions makes Authenticate fail with
	// ErrPermissionDenied when the user password matched but P does not
	// grant both printing and copying.
	RequireImportPermissions bool
}

func (opt *Options) source() (random.Source, error) {
	if opt != nil && opt.Random != nil {
		return opt.Random, nil
	}
	return random.Default()
}

// NewDocumentIdentifier returns 16 random bytes for use as the first element
// of the ID array of a new document.  If rnd is nil, a fresh ChaCha20
// generator is used.
func NewDocumentIdentifier(rnd RandomSource) ([]byte, error) {
	var src random.Source = rnd
	if rnd == nil {
		g, err := random.Default()
		if err != nil {
			return nil, err
		}
		src = g
	}
	id := make([]byte, 16)
	if err := src.FillRandom(id); err != nil {
		return nil, err
	}
	return id, nil
}

// Handler holds the file encryption key of one document.
//
// A Handler must not be used from more than one goroutine at a time.
type Handler struct {
	settings Settings
	cred     *Credentials
	owner    bool
	d        *decrypter.Decrypter
}

// GenerateCredentials computes the credentials of a new document.  The
// document ID is only used by revisions 2 to 4.  An empty owner password
// selects the user password.
func GenerateCredentials(s Settings, id []byte, userPwd, ownerPwd string, opt *Options) (*Handler, error) {
	sch, err := s.scheme()
	if err != nil {
		return nil, err
	}
	rnd, err := opt.source()
	if err != nil {
		return nil, err
	}
	if ownerPwd == "" {
		ownerPwd = userPwd
	}

	cred, key, err := sch.deriveKeys(s, id, userPwd, ownerPwd, rnd)
	if err != nil {
		return nil, err
	}
	defer crypt.Wipe(key)

	slog.Debug("generated credentials",
		slog.String("revision", s.rev.String()),
		slog.Int("keyBits", s.keyBits))
	return &Handler{
		settings: s,
		cred:     cred,
		owner:    true,
		d:        decrypter.New(key, s.method(), rnd),
	}, nil
}

// Authenticate recovers the file encryption key of an existing document
// from a user or owner password.  A wrong password gives ok == false and a
// nil error.  Damaged credentials give an error matching ErrCorrupt, and a
// password which SASLprep rejects gives ErrNormalization.
func Authenticate(s Settings, id []byte, cred *Credentials, pwd string, opt *Options) (*Handler, bool, error) {
	sch, err := s.scheme()
	if err != nil {
		return nil, false, err
	}
	if err := cred.Validate(s.rev); err != nil {
		return nil, false, err
	}

	res, err := sch.authenticate(s, id, cred, pwd)
	if errors.Is(err, decrypter.ErrInvalidPassword) {
		slog.Debug("password rejected", slog.String("revision", s.rev.String()))
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	defer crypt.Wipe(res.Key)

	if opt != nil && opt.RequireImportPermissions && !res.Owner && !s.allowsImport() {
		return nil, false, ErrPermissionDenied
	}

	rnd, err := opt.source()
	if err != nil {
		return nil, false, err
	}
	return &Handler{
		settings: s,
		cred:     cred.Clone(),
		owner:    res.Owner,
		d:        decrypter.New(res.Key, s.method(), rnd),
	}, true, nil
}

// Settings returns the settings the handler was created with.
func (h *Handler) Settings() Settings { return h.settings }

// Credentials returns a copy of the stored credentials.
func (h *Handler) Credentials() *Credentials { return h.cred.Clone() }

// Key returns a copy of the file encryption key.
func (h *Handler) Key() []byte { return h.d.Key() }

// OwnerAuthenticated reports whether the handler was opened with the owner
// password, or created by GenerateCredentials.
func (h *Handler) OwnerAuthenticated() bool { return h.owner }

// Encrypt encrypts a string or stream of object num, generation gen.
func (h *Handler) Encrypt(num uint32, gen uint16, data []byte) ([]byte, error) {
	return h.d.Encrypt(types.Objptr{ID: num, Gen: gen}, data)
}

// Decrypt reverses Encrypt.
func (h *Handler) Decrypt(num uint32, gen uint16, data []byte) ([]byte, error) {
	out, err := h.d.Decrypt(types.Objptr{ID: num, Gen: gen}, data)
	if err != nil {
		return nil, dataError(err)
	}
	return out, nil
}

// EncryptStream is the streaming form of Encrypt.  The output is identical
// to that of Encrypt for the same random bytes.  Closing the returned writer
// closes w.
func (h *Handler) EncryptStream(num uint32, gen uint16, w io.WriteCloser) (io.WriteCloser, error) {
	return h.d.EncryptStream(types.Objptr{ID: num, Gen: gen}, w)
}

// DecryptStream is the streaming form of Decrypt.
func (h *Handler) DecryptStream(num uint32, gen uint16, r io.Reader) (io.Reader, error) {
	rd, err := h.d.DecryptStream(types.Objptr{ID: num, Gen: gen}, r)
	if err != nil {
		return nil, dataError(err)
	}
	return &dataReader{rd}, nil
}

// EncryptedLength returns the stored length of n plaintext bytes.
func (h *Handler) EncryptedLength(n int) int { return h.d.EncryptedLength(n) }

// EncryptedPrefixLength returns the number of bytes in front of the
// encrypted data: 16 for the AES initialization vector, 0 for RC4.
func (h *Handler) EncryptedPrefixLength() int { return h.d.PrefixLength() }

// Close wipes the file encryption key.  The handler must not be used
// afterwards.
func (h *Handler) Close() { h.d.Close() }

func dataError(err error) error {
	if errors.Is(err, crypt.ErrCiphertext) || errors.Is(err, crypt.ErrPadding) {
		return &MalformedError{Field: "encrypted data", Err: err}
	}
	return err
}

type dataReader struct {
	r io.Reader
}

func (r *dataReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && err != io.EOF {
		err = dataError(err)
	}
	return n, err
}
