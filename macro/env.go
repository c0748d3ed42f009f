package macro

import (
	"go/ast"
	"go/token"

	"github.com/spf13/afero"

	"macrokit/logr"
)

// CallSite is the lexical context of one directive.
type CallSite struct {
	// ModulePath is the import path of the package holding the directive.
	ModulePath string
	// Dir is the directory of the file holding the directive.
	Dir string
	// Pos is the position of the directive.
	Pos token.Position
	// Fset and File are the parsed template file.
	Fset *token.FileSet
	File *ast.File
	// FS is the file system implementation files are read from.
	FS afero.Fs
	// Sink receives recoverable diagnostics.
	Sink logr.Sink
}

// Env is the execution environment of a single macro invocation.
// It is built by NewEnv for every invocation and never shared.
type Env struct {
	ModulePath   string
	ImplsModule  string
	ArgsIdent    string
	ExecFnModule string

	Dir  string
	Fset *token.FileSet
	File *ast.File
	FS   afero.Fs

	Logr *logr.Logr
}

// NewEnv builds the environment of an invocation of the macro implemented in
// <implsModule>/<execFnModule>. The Logr prefix is ModulePath.ExecFnModule.
func NewEnv(site CallSite, implsModule, argsIdent, execFnModule string) *Env {
	fs := site.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}

	fset := site.Fset
	if fset == nil {
		fset = token.NewFileSet()
	}

	return &Env{
		ModulePath:   site.ModulePath,
		ImplsModule:  implsModule,
		ArgsIdent:    argsIdent,
		ExecFnModule: execFnModule,
		Dir:          site.Dir,
		Fset:         fset,
		File:         site.File,
		FS:           fs,
		Logr:         logr.New(Prefix(site.ModulePath, execFnModule), site.Pos, site.Sink),
	}
}

// Prefix is the diagnostic label of a macro instance.
func Prefix(modulePath, execFnModule string) string {
	if modulePath == "" {
		return execFnModule
	}

	return modulePath + "." + execFnModule
}

// Position resolves p against the environment's file set.
func (e *Env) Position(p token.Pos) token.Position {
	return e.Fset.Position(p)
}

// PackageName is the name of the package being expanded.
func (e *Env) PackageName() string {
	if e.File == nil || e.File.Name == nil {
		return ""
	}

	return e.File.Name.Name
}
