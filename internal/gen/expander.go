package gen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/build/constraint"
	"go/format"
	"go/parser"
	"go/token"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/ast/astutil"

	"macrokit/internal/analyze"
	"macrokit/internal/diagnostic"
	"macrokit/internal/logger"
	"macrokit/internal/match"
	"macrokit/logr"
	"macrokit/macro"
)

// GeneratedHeader marks expanded files.
const GeneratedHeader = "// Code generated by macrokit. DO NOT EDIT."

// Config holds configuration for expansion.
type Config struct {
	// Impls is the directory, relative to a template, of implementation modules.
	Impls string
	// ArgsIdent is the configuration record name in implementation files.
	ArgsIdent string
	// OutputSuffix replaces ".go" in expanded file names.
	OutputSuffix string
	// Jobs bounds the number of files expanded in parallel.
	Jobs int
	// Registry resolves directive names; nil means macro.Default.
	Registry *macro.Registry
	// FS is the file system macros read from and results are written to.
	FS afero.Fs
}

// DefaultConfig returns the default expansion configuration.
func DefaultConfig() Config {
	return Config{
		Impls:        "impls",
		ArgsIdent:    "Args",
		OutputSuffix: "_expanded.go",
		Jobs:         1,
	}
}

// Result is the expansion of one template.
type Result struct {
	Template   *analyze.Template
	OutputPath string
	// Output is the formatted expanded file, nil when expansion failed.
	Output []byte
	// Unformatted holds the expanded text when it could not be formatted.
	Unformatted []byte
	Diagnostics diagnostic.Diagnostics
	Invocations int
}

// OK reports whether the result can be written.
func (r *Result) OK() bool {
	return r.Output != nil && !r.Diagnostics.HasErrors()
}

// Expander expands template files.
type Expander struct {
	config Config
}

// NewExpander creates an Expander, filling unset fields from DefaultConfig.
func NewExpander(config Config) *Expander {
	def := DefaultConfig()
	if config.Impls == "" {
		config.Impls = def.Impls
	}

	if config.ArgsIdent == "" {
		config.ArgsIdent = def.ArgsIdent
	}

	if config.OutputSuffix == "" {
		config.OutputSuffix = def.OutputSuffix
	}

	if config.Jobs < 1 {
		config.Jobs = def.Jobs
	}

	if config.Registry == nil {
		config.Registry = macro.Default
	}

	if config.FS == nil {
		config.FS = afero.NewOsFs()
	}

	return &Expander{config: config}
}

// Expand expands every template, config.Jobs at a time. The first fatal
// error cancels the remaining files and is returned with the partial results.
func (e *Expander) Expand(ctx context.Context, tmpls []*analyze.Template) ([]*Result, error) {
	results := make([]*Result, len(tmpls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Jobs)

	for i, tmpl := range tmpls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res, err := e.ExpandFile(ctx, tmpl)
			results[i] = res

			return err
		})
	}

	err := g.Wait()

	return results, err
}

// ExpandFile expands the directives of one template. Configuration errors
// are recorded in the result; an abort stops the file and is returned.
func (e *Expander) ExpandFile(ctx context.Context, tmpl *analyze.Template) (*Result, error) {
	log := logger.FromContext(ctx).With("file", tmpl.Path)

	res := &Result{
		Template:   tmpl,
		OutputPath: filepath.Join(tmpl.Dir(), tmpl.Base()+e.config.OutputSuffix),
	}

	x := &fileExpansion{
		config:   e.config,
		tmpl:     tmpl,
		res:      res,
		attrDone: make(map[ast.Decl]bool),
	}

	directives := Scan(tmpl.File)
	log.Debug("expanding template", "directives", len(directives))

	if len(directives) == 0 {
		res.Diagnostics.AddWarning(diagnostic.CodeConfiguration, "template has no macro directives",
			token.Position{Filename: tmpl.Path})
	}

	for _, d := range directives {
		if err := x.directive(d); err != nil {
			log.Error("expansion aborted", "error", err)
			return res, err
		}
	}

	x.removeBuildConstraint()

	if res.Diagnostics.HasErrors() {
		log.Warn("configuration errors", "count", len(res.Diagnostics.Errors))
		return res, nil
	}

	src := applyEdits(tmpl.Src, x.edits)

	out, err := finalize(src, x.imports, tmpl.PkgPath)
	if err != nil {
		res.Unformatted = src
		res.Diagnostics.AddError(diagnostic.CodeUnsupported,
			fmt.Sprintf("expanded source does not format: %v", err),
			token.Position{Filename: res.OutputPath})

		return res, nil
	}

	res.Output = append([]byte(GeneratedHeader+"\n\n"), out...)

	return res, nil
}

type edit struct {
	start, end int
	text       string
}

type fileExpansion struct {
	config   Config
	tmpl     *analyze.Template
	res      *Result
	edits    []edit
	imports  []macro.Import
	attrDone map[ast.Decl]bool
	// removed marks directive comments already deleted.
	removed map[*ast.Comment]bool
}

func (x *fileExpansion) offset(p token.Pos) int {
	return x.tmpl.Fset.Position(p).Offset
}

func (x *fileExpansion) position(p token.Pos) token.Position {
	return x.tmpl.Fset.Position(p)
}

func (x *fileExpansion) hostLogr(d Directive) *logr.Logr {
	return logr.New(x.tmpl.PkgPath, x.position(d.Comment.Pos()), &x.res.Diagnostics).
		WithCode(diagnostic.CodeConfiguration)
}

func (x *fileExpansion) directive(d Directive) error {
	if d.Name == DeriveDirective {
		return x.derives(d)
	}

	lg := x.hostLogr(d)

	reg, ok := x.config.Registry.Lookup(d.Name)
	if !ok {
		lg.EmitCallSiteError(fmt.Sprintf("unknown macro %q", d.Name) + match.Hint(d.Name, x.config.Registry.Names()))
		return nil
	}

	switch reg.Kind {
	case macro.Func:
		frag, err := x.invoke(d, reg, nil)
		if err != nil || frag == nil {
			return err
		}

		if d.Decl == nil {
			x.replace(d.Comment.Pos(), d.Comment.End(), frag.String())
		} else {
			x.insert(d.Doc.Pos(), frag.String()+"\n\n")
			x.removeLine(d.Comment)
		}
	case macro.Attr:
		if d.Decl == nil {
			lg.EmitCallSiteError(fmt.Sprintf("attribute macro %q must decorate a declaration", d.Name))
			return nil
		}

		if x.attrDone[d.Decl] {
			lg.EmitCallSiteError(fmt.Sprintf("attribute macro %q: only one attribute macro per declaration", d.Name))
			return nil
		}

		x.attrDone[d.Decl] = true

		frag, err := x.invoke(d, reg, d.Decl)
		if err != nil || frag == nil {
			return err
		}

		x.replace(d.Decl.Pos(), d.Decl.End(), frag.String())
		x.removeLine(d.Comment)
	case macro.Derive:
		lg.EmitCallSiteError(fmt.Sprintf("derive macro %q must be invoked with %s%s %s",
			d.Name, DirectivePrefix, DeriveDirective, d.Name))
	}

	return nil
}

func (x *fileExpansion) derives(d Directive) error {
	lg := x.hostLogr(d)

	if d.Decl == nil {
		lg.EmitCallSiteError("derive directive must decorate a type declaration")
		return nil
	}

	x.removeLine(d.Comment)

	names := d.DeriveNames()
	if len(names) == 0 {
		lg.EmitCallSiteError("derive directive names no macro")
		return nil
	}

	var frags []macro.Fragment
	for _, name := range names {
		reg, ok := x.config.Registry.Lookup(name)
		if !ok || reg.Kind != macro.Derive {
			lg.EmitCallSiteError(fmt.Sprintf("unknown derive macro %q", name) + match.Hint(name, x.config.Registry.Names()))
			continue
		}

		frag, err := x.invoke(d, reg, d.Decl)
		if err != nil {
			return err
		}

		if frag != nil {
			frags = append(frags, *frag)
		}
	}

	if joined := macro.Join(frags...); !joined.Empty() {
		x.insert(d.Decl.End(), "\n\n"+joined.String())
	}

	return nil
}

// invoke runs one macro entry point with a fresh environment. It returns
// nil when the invocation reported configuration errors, and an error
// only when it aborted.
func (x *fileExpansion) invoke(d Directive, reg macro.Registration, decl ast.Decl) (*macro.Fragment, error) {
	x.res.Invocations++

	env := macro.NewEnv(macro.CallSite{
		ModulePath: x.tmpl.PkgPath,
		Dir:        x.tmpl.Dir(),
		Pos:        x.position(d.Comment.Pos()),
		Fset:       x.tmpl.Fset,
		File:       x.tmpl.File,
		FS:         x.config.FS,
		Sink:       &x.res.Diagnostics,
	}, x.config.Impls, x.config.ArgsIdent, reg.Ident)

	frag, err := call(reg, d.Args, decl, env)
	if err == nil {
		x.imports = append(x.imports, frag.Imports...)
		return &frag, nil
	}

	var abort *logr.Abort
	if errors.As(err, &abort) {
		x.res.Diagnostics.Add(abort.Diagnostic)
		return nil, fmt.Errorf("%s: %w", x.tmpl.Path, abort)
	}

	lg := env.Logr.WithCode(diagnostic.CodeConfiguration)

	var cerr *macro.ConfigError
	if !errors.As(err, &cerr) {
		lg.EmitCallSiteError(err.Error())
		return nil, nil
	}

	for _, v := range cerr.Violations {
		if v.Offset < 0 {
			lg.EmitCallSiteError(v.Message)
			continue
		}

		lg.EmitError(x.position(d.ArgsPos+token.Pos(v.Offset)), v.Message)
	}

	return nil, nil
}

func call(reg macro.Registration, args string, decl ast.Decl, env *macro.Env) (frag macro.Fragment, err error) {
	defer logr.Catch(&err)

	switch reg.Kind {
	case macro.Func:
		return reg.Func(args, env)
	case macro.Attr:
		return reg.Attr(args, decl, env)
	case macro.Derive:
		return reg.Derive(decl, env)
	default:
		return macro.Fragment{}, fmt.Errorf("macro %s has invalid kind %s", reg.Name, reg.Kind)
	}
}

func (x *fileExpansion) replace(from, to token.Pos, text string) {
	x.edits = append(x.edits, edit{start: x.offset(from), end: x.offset(to), text: text})
}

func (x *fileExpansion) insert(at token.Pos, text string) {
	off := x.offset(at)
	x.edits = append(x.edits, edit{start: off, end: off, text: text})
}

// removeLine deletes the source line holding c.
func (x *fileExpansion) removeLine(c *ast.Comment) {
	if x.removed == nil {
		x.removed = make(map[*ast.Comment]bool)
	}

	if x.removed[c] {
		return
	}

	x.removed[c] = true

	start, end := lineBounds(x.tmpl.Src, x.offset(c.Pos()), x.offset(c.End()))
	x.edits = append(x.edits, edit{start: start, end: end})
}

// removeBuildConstraint deletes the //go:build and // +build lines that
// precede the package clause.
func (x *fileExpansion) removeBuildConstraint() {
	file := x.tmpl.File
	for _, cg := range file.Comments {
		if cg.Pos() >= file.Package {
			break
		}

		for _, c := range cg.List {
			if constraint.IsGoBuild(c.Text) || constraint.IsPlusBuild(c.Text) {
				x.removeLine(c)
			}
		}
	}
}

func lineBounds(src []byte, start, end int) (int, int) {
	for start > 0 && src[start-1] != '\n' {
		start--
	}

	if i := bytes.IndexByte(src[end:], '\n'); i >= 0 {
		end += i + 1
	} else {
		end = len(src)
	}

	return start, end
}

// applyEdits applies non-overlapping edits back to front. At equal starts
// the wider edit is applied first so insertions land before deletions.
// Insertions at the same offset keep the order they were recorded in.
func applyEdits(src []byte, edits []edit) []byte {
	sorted := make([]edit, len(edits))
	for i, e := range edits {
		sorted[len(edits)-1-i] = e
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].start != sorted[j].start {
			return sorted[i].start > sorted[j].start
		}

		return sorted[i].end > sorted[j].end
	})

	out := append([]byte(nil), src...)
	for _, e := range sorted {
		tail := append([]byte(e.text), out[e.end:]...)
		out = append(out[:e.start], tail...)
	}

	return out
}

// finalize adds imports to src and formats it.
func finalize(src []byte, imports []macro.Import, selfPath string) ([]byte, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, "", src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parsing expanded source: %w", err)
	}

	for _, imp := range imports {
		if imp.Path == selfPath {
			continue
		}

		astutil.AddNamedImport(fset, file, imp.Name, imp.Path)
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, fmt.Errorf("formatting expanded source: %w", err)
	}

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting expanded source: %w", err)
	}

	return out, nil
}

// Summary is a one-line description of a pass.
func Summary(results []*Result) string {
	var files, invocations, failed int
	for _, r := range results {
		if r == nil {
			continue
		}

		files++
		invocations += r.Invocations

		if !r.OK() {
			failed++
		}
	}

	return fmt.Sprintf("%d template(s), %d invocation(s), %d failed", files, invocations, failed)
}
