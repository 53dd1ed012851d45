package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ScriptRock/stdsec"
)

func newIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "id",
		Short: "Print a random document identifier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := stdsec.NewDocumentIdentifier(nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(id))
			return nil
		},
	}
}

// defaultKeyBits is the key length used when --key-bits is not given.
func defaultKeyBits(r stdsec.Revision) int {
	switch r {
	case stdsec.R2:
		return 40
	case stdsec.R3, stdsec.R4:
		return 128
	}
	return 256
}

func newGenerateCmd() *cobra.Command {
	var (
		rev         int
		keyBits     int
		perms       int32
		noMetadata  bool
		idHex       string
		userPwd     string
		ownerPwd    string
		passwordsIn bool
		outPath     string
		format      string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate credentials for a new document",
		Long: `Generate the O, U, OE, UE and Perms entries for a new document and print
the encryption dictionary as JSON or in PDF syntax.  The other commands accept
both formats.

If no passwords are given on the command line, they are read from stdin: the
user password first, then the owner password.  An empty owner password means
that the owner password equals the user password.

Examples:
  # AES-256, prompts for both passwords
  stdsec generate -o dict.json

  # 128-bit RC4 with an empty user password
  stdsec generate -r 3 -u "" --owner-password secret`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatJSON && format != formatPDF {
				return fmt.Errorf("unknown format %q", format)
			}
			r := stdsec.Revision(rev)
			if keyBits == 0 {
				keyBits = defaultKeyBits(r)
			}
			s, err := stdsec.NewSettings(r, keyBits, perms, !noMetadata)
			if err != nil {
				return err
			}

			var id []byte
			if idHex != "" {
				id, err = hex.DecodeString(idHex)
				if err != nil {
					return fmt.Errorf("invalid --id: %w", err)
				}
			} else {
				id, err = stdsec.NewDocumentIdentifier(nil)
				if err != nil {
					return err
				}
			}

			p := newPrompter(cmd)
			if passwordsIn || !cmd.Flags().Changed("user-password") {
				if userPwd, err = p.readNew("User password: "); err != nil {
					return err
				}
			}
			if passwordsIn || !cmd.Flags().Changed("owner-password") {
				if ownerPwd, err = p.readNew("Owner password: "); err != nil {
					return err
				}
			}
			warnWeak(cmd.ErrOrStderr(), "user", userPwd)
			warnWeak(cmd.ErrOrStderr(), "owner", ownerPwd)

			h, err := stdsec.GenerateCredentials(s, id, userPwd, ownerPwd, nil)
			if err != nil {
				return err
			}
			defer h.Close()

			out, closeOut, err := openOutput(cmd, outPath)
			if err != nil {
				return err
			}
			if err := writeDict(out, newEncryptDict(h, id), format); err != nil {
				closeOut()
				return err
			}
			return closeOut()
		},
	}

	f := cmd.Flags()
	f.IntVarP(&rev, "revision", "r", 6, "Security handler revision (2-6)")
	f.IntVarP(&keyBits, "key-bits", "k", 0, "Key length in bits (default depends on the revision)")
	f.Int32Var(&perms, "permissions", -4, "Permission mask P")
	f.BoolVar(&noMetadata, "no-encrypt-metadata", false, "Leave metadata streams unencrypted")
	f.StringVar(&idHex, "id", "", "Document identifier in hex (default random)")
	f.StringVarP(&userPwd, "user-password", "u", "", "User password")
	f.StringVar(&ownerPwd, "owner-password", "", "Owner password")
	f.BoolVarP(&passwordsIn, "password-stdin", "P", false, "Read both passwords from stdin")
	f.StringVarP(&outPath, "output", "o", "-", "Output file, - for stdout")
	f.StringVarP(&format, "format", "f", formatJSON, "Output format: json, or pdf for the Encrypt and ID trailer entries")
	return cmd
}

// authFlags are the flags shared by the commands which open a document.
type authFlags struct {
	dictPath      string
	password      string
	passwordStdin bool
	requireImport bool
}

func (a *authFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&a.dictPath, "dict", "d", "", "Encryption dictionary written by generate")
	f.StringVarP(&a.password, "password", "p", "", "User or owner password")
	f.BoolVarP(&a.passwordStdin, "password-stdin", "P", false, "Read the password from stdin")
	f.BoolVar(&a.requireImport, "require-import", false, "Fail unless the permissions allow printing and copying")
	_ = cmd.MarkFlagRequired("dict")
}

var errRejected = errors.New("password rejected")

// open authenticates against the dictionary file.  If the password is not
// given on the command line it is read from stdin, unless stdin carries the
// data.
func (a *authFlags) open(cmd *cobra.Command, stdinBusy bool) (*stdsec.Handler, error) {
	d, err := readDict(a.dictPath)
	if err != nil {
		return nil, err
	}
	s, err := d.settings()
	if err != nil {
		return nil, err
	}

	pw := a.password
	if a.passwordStdin || !cmd.Flags().Changed("password") {
		if stdinBusy {
			return nil, ErrStdinConflict
		}
		if pw, err = newPrompter(cmd).read("Password: "); err != nil {
			return nil, err
		}
	}

	opt := &stdsec.Options{RequireImportPermissions: a.requireImport}
	h, ok, err := stdsec.Authenticate(s, d.ID, d.credentials(), pw, opt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errRejected
	}
	return h, nil
}

func newCheckCmd() *cobra.Command {
	var a authFlags
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a password against an encryption dictionary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.open(cmd, false)
			if err != nil {
				return err
			}
			defer h.Close()

			kind := "user"
			if h.OwnerAuthenticated() {
				kind = "owner"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s password accepted\n", kind)
			return nil
		},
	}
	a.register(cmd)
	return cmd
}

// newCryptCmd returns the encrypt command, or the decrypt command if
// encrypt is false.
func newCryptCmd(encrypt bool) *cobra.Command {
	var (
		a       authFlags
		object  uint32
		gen     uint16
		inPath  string
		outPath string
	)
	use, short := "decrypt", "Decrypt the data of one object"
	if encrypt {
		use, short = "encrypt", "Encrypt the data of one object"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.open(cmd, inPath == "-")
			if err != nil {
				return err
			}
			defer h.Close()

			in := cmd.InOrStdin()
			if inPath != "-" {
				f, err := os.Open(inPath)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			out, closeOut, err := openOutput(cmd, outPath)
			if err != nil {
				return err
			}

			if encrypt {
				w, err := h.EncryptStream(object, gen, nopCloser{out})
				if err != nil {
					closeOut()
					return err
				}
				if _, err := io.Copy(w, in); err != nil {
					closeOut()
					return err
				}
				if err := w.Close(); err != nil {
					closeOut()
					return err
				}
				return closeOut()
			}

			r, err := h.DecryptStream(object, gen, in)
			if err != nil {
				closeOut()
				return err
			}
			if _, err := io.Copy(out, r); err != nil {
				closeOut()
				return err
			}
			return closeOut()
		},
	}
	a.register(cmd)
	f := cmd.Flags()
	f.Uint32Var(&object, "object", 0, "Object number")
	f.Uint16Var(&gen, "generation", 0, "Generation number")
	f.StringVarP(&inPath, "input", "i", "-", "Input file, - for stdin")
	f.StringVarP(&outPath, "output", "o", "-", "Output file, - for stdout")
	return cmd
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// openOutput returns the writer for path and a function which closes it.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
