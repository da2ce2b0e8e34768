// This program performs administrative tasks for the dating ledger.
package main

import (
	"os"

	"github.com/MichaelGiresi/cuneos/app/tooling/admin/commands"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {
	if err := commands.NewRoot(build).Execute(); err != nil {
		os.Exit(1)
	}
}
