package main

import (
	"errors"
	"fmt"
	"go/token"
	"path"

	"github.com/spf13/cobra"

	"macrokit/internal/analyze"
	"macrokit/internal/diagnostic"
	"macrokit/internal/docs"
	"macrokit/internal/resolve"
	"macrokit/logr"
	"macrokit/macro"
)

func newDocCmd(a *app) *cobra.Command {
	var (
		kind string
		dir  string
	)

	cmd := &cobra.Command{
		Use:   "doc <name>",
		Short: "Show the documentation of a macro",
		Long: `Doc prints the documentation of a registered macro. With --dir it renders the
documentation of the implementation module <dir>/<impls>/<name> instead, which
need not be registered yet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				reg, ok := macro.Default.Lookup(args[0])
				if !ok {
					return fmt.Errorf("macro %q is not registered (use --dir to document an implementation module)", args[0])
				}

				fmt.Fprintln(cmd.OutOrStdout(), reg.Doc)

				return nil
			}

			k, err := macro.ParseKind(kind)
			if err != nil {
				return err
			}

			block, err := a.document(cmd, dir, args[0], k)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), block.String())

			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "Func", "macro kind when documenting a module (Func|Attr|Derive)")
	cmd.Flags().StringVar(&dir, "dir", "", "directory holding the implementation modules' parent package")

	return cmd
}

// document renders the documentation of the implementation module name
// found under dir.
func (a *app) document(cmd *cobra.Command, dir, name string, kind macro.Kind) (docs.Block, error) {
	diags := &diagnostic.Diagnostics{}
	env := macro.NewEnv(macro.CallSite{
		Dir:  dir,
		Pos:  token.Position{Filename: dir},
		Fset: token.NewFileSet(),
		FS:   a.fs,
		Sink: diags,
	}, a.cfg.Impls, a.cfg.ArgsIdent, name)

	var block docs.Block

	err := logr.Run(func() {
		file := resolve.Resolve(env, a.cfg.Impls, name)
		fields := analyze.ExtractFields(env.Fset, file, a.cfg.ArgsIdent, path.Join(a.cfg.Impls, name), env.Logr)
		block = docs.Render(name, kind, fields)
	})
	if err != nil {
		var abort *logr.Abort
		if errors.As(err, &abort) {
			diags.Add(abort.Diagnostic)
		}

		if perr := diagnostic.Fprint(cmd.ErrOrStderr(), *diags); perr != nil {
			return block, perr
		}

		return block, fmt.Errorf("documenting %s: %w", name, err)
	}

	return block, nil
}
