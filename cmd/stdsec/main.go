// Command stdsec generates and checks the credentials of the PDF standard
// security handler.
package main

import (
	"os"

	"github.com/ScriptRock/stdsec/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
