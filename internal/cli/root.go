// Package cli implements the stdsec command line tool, which generates and
// checks standard security handler credentials and encrypts or decrypts the
// data of single objects.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version is set by main.go
var Version = "dev"

func newRootCmd() *cobra.Command {
	var debug bool
	root := &cobra.Command{
		Use:   "stdsec",
		Short: "PDF standard security handler tool",
		Long: `stdsec derives and checks the password credentials of encrypted PDF
documents, as stored in the encryption dictionary:
  - revisions 2 to 4: MD5 and RC4 key derivation, RC4 or AES-128 content
  - revisions 5 and 6: SHA-2 password hashes, AES-256 content

Credentials are read and written as JSON with hex encoded strings.`,
		Version: Version,

		// errors are printed by Execute
		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				h := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})
				slog.SetDefault(slog.New(h))
			}
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Log authentication steps to stderr")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		newIDCmd(),
		newGenerateCmd(),
		newCheckCmd(),
		newCryptCmd(true),
		newCryptCmd(false),
	)
	return root
}

// Execute runs the command line tool and returns the process exit code.
func Execute(version string) int {
	Version = version
	root := newRootCmd()
	root.Version = version
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
