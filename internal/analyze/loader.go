package analyze

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/build"
	"go/build/constraint"
	"go/parser"
	"go/token"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName | packages.NeedFiles

// Loader finds template files.
type Loader struct {
	// Dir is the directory patterns are resolved in.
	Dir string
	// Tag is the build tag that marks template files.
	Tag string
	// Include restricts templates to file names matching one of these
	// doublestar patterns, relative to the package directory. Empty means all.
	Include []string
	// FS is the file system templates are read from.
	FS afero.Fs

	fset *token.FileSet
}

// NewLoader creates a Loader reading from fs.
func NewLoader(dir, tag string, fs afero.Fs) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &Loader{Dir: dir, Tag: tag, FS: fs, fset: token.NewFileSet()}
}

// Fset returns the file set shared by every loaded template.
func (l *Loader) Fset() *token.FileSet {
	return l.fset
}

// Load returns the template files of the packages matching patterns.
// Patterns are standard Go package patterns (e.g., "./...", "macrokit/macros").
func (l *Loader) Load(ctx context.Context, patterns ...string) ([]*Template, error) {
	cfg := &packages.Config{
		Context:    ctx,
		Mode:       LoadMode,
		Dir:        l.Dir,
		BuildFlags: []string{"-tags=" + l.Tag},
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	// Check for package errors
	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	var out []*Template
	for _, pkg := range pkgs {
		tmpls, err := l.templates(pkg)
		if err != nil {
			return nil, fmt.Errorf("failed to process package %s: %w", pkg.PkgPath, err)
		}

		out = append(out, tmpls...)
	}

	return out, nil
}

func (l *Loader) templates(pkg *packages.Package) ([]*Template, error) {
	var out []*Template
	for _, path := range pkg.GoFiles {
		if !l.included(path) {
			continue
		}

		tmpl, err := l.LoadFile(pkg.PkgPath, path)
		if err != nil {
			return nil, err
		}

		if tmpl != nil {
			out = append(out, tmpl)
		}
	}

	return out, nil
}

func (l *Loader) included(path string) bool {
	if len(l.Include) == 0 {
		return true
	}

	name := filepath.ToSlash(filepath.Base(path))
	for _, pattern := range l.Include {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}

	return false
}

// LoadFile parses path and returns it as a template of pkgPath, or nil when
// its build constraint does not require the template tag.
func (l *Loader) LoadFile(pkgPath, path string) (*Template, error) {
	src, err := afero.ReadFile(l.FS, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	file, err := parser.ParseFile(l.fset, path, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if !RequiresTag(file, l.Tag) {
		return nil, nil
	}

	return &Template{
		PkgPath: pkgPath,
		PkgName: file.Name.Name,
		Path:    path,
		Fset:    l.fset,
		File:    file,
		Src:     src,
	}, nil
}

// RequiresTag reports whether the //go:build constraint of file is only
// satisfied when tag is set. Other tags are evaluated against the default
// build context.
func RequiresTag(file *ast.File, tag string) bool {
	expr := BuildConstraint(file)
	if expr == nil {
		return false
	}

	with := expr.Eval(func(t string) bool { return t == tag || contextTag(t) })
	without := expr.Eval(contextTag)

	return with && !without
}

// contextTag reports whether t is satisfied by the default build context.
func contextTag(t string) bool {
	ctx := build.Default

	switch t {
	case ctx.GOOS, ctx.GOARCH, runtime.Compiler:
		return true
	case "cgo":
		return ctx.CgoEnabled
	}

	return slices.Contains(ctx.ReleaseTags, t) || slices.Contains(ctx.BuildTags, t) ||
		slices.Contains(ctx.ToolTags, t)
}

// BuildConstraint returns the //go:build expression of file, if any.
func BuildConstraint(file *ast.File) constraint.Expr {
	for _, cg := range file.Comments {
		if cg.Pos() >= file.Package {
			break
		}

		for _, c := range cg.List {
			if !constraint.IsGoBuild(c.Text) {
				continue
			}

			expr, err := constraint.Parse(c.Text)
			if err != nil {
				return nil
			}

			return expr
		}
	}

	return nil
}
