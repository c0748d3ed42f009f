// Command macrokit expands macro directives in Go template files.
//
// A template is a Go file guarded by the macrokit build tag. Its directives
// (//macro:name args and //macro:derive Name) are expanded by the macros
// registered in the binary, and the result is written next to the template
// as <name>_expanded.go.
package main

import (
	"os"

	"github.com/spf13/afero"

	_ "macrokit/macros"
)

func main() {
	if err := newRootCmd(afero.NewOsFs()).Execute(); err != nil {
		os.Exit(1)
	}
}
