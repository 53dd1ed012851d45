package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Picocrypt/zxcvbn-go"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrStdinConflict    = errors.New("cannot read both the password and the data from stdin")
)

// minScore is the lowest zxcvbn score (0-4) accepted without a warning.
const minScore = 2

// prompter reads passwords from the command's stdin.  A terminal is read
// without echo; piped input is read line by line.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
	tty bool
}

func newPrompter(cmd *cobra.Command) *prompter {
	p := &prompter{
		in:  bufio.NewReader(cmd.InOrStdin()),
		out: cmd.ErrOrStderr(),
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.tty = true
	}
	return p
}

func (p *prompter) read(prompt string) (string, error) {
	if p.tty {
		fmt.Fprint(p.out, prompt)
		pw, err := term.ReadPassword(p.fd)
		fmt.Fprintln(p.out) // newline after hidden input
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(pw), nil
	}

	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading password: %w", err)
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

// readNew asks for a new password twice when reading from a terminal.
func (p *prompter) readNew(prompt string) (string, error) {
	pw, err := p.read(prompt)
	if err != nil || !p.tty {
		return pw, err
	}
	again, err := p.read("Confirm " + strings.ToLower(prompt))
	if err != nil {
		return "", err
	}
	if pw != again {
		return "", ErrPasswordMismatch
	}
	return pw, nil
}

// warnWeak prints a warning when zxcvbn rates a non-empty password as easy
// to guess.
func warnWeak(w io.Writer, label, pw string) {
	if pw == "" {
		return
	}
	if score := zxcvbn.PasswordStrength(pw, nil).Score; score < minScore {
		fmt.Fprintf(w, "Warning: the %s password is weak (score %d of 4)\n", label, score)
	}
}
