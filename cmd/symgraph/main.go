// symgraph inspects symbol table snapshots: declarations, references and
// the reference graph between them.
package main

import (
	"os"

	"github.com/hupe1980/symgraph/cmd/symgraph/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
