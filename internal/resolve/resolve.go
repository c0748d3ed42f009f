package resolve

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"

	"github.com/spf13/afero"

	"macrokit/internal/diagnostic"
	"macrokit/macro"
)

// Path returns the conventional location of the implementation of target.
func Path(dir, implsModule, target string) string {
	return filepath.Join(dir, implsModule, target, target+".go")
}

// Resolve reads and parses the implementation file of target relative to
// the invocation directory. Positions are recorded in env.Fset.
func Resolve(env *macro.Env, implsModule, target string) *ast.File {
	lg := env.Logr.WithCode(diagnostic.CodeResolution)
	path := Path(env.Dir, implsModule, target)

	src, err := afero.ReadFile(env.FS, path)
	if err != nil {
		lg.AbortCallSite(fmt.Sprintf("cannot read implementation of macro %q at %s: %v", target, path, err))
	}

	fset := env.Fset
	if fset == nil {
		fset = token.NewFileSet()
	}

	file, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err != nil {
		lg.AbortCallSite(fmt.Sprintf(
			"cannot parse implementation of macro %q at %s: %v (this may be a transient editor or tooling artifact; check that the project still builds with `go build ./...`)",
			target, path, err))
	}

	return file
}
