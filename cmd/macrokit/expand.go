package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"macrokit/internal/analyze"
	"macrokit/internal/diagnostic"
	"macrokit/internal/gen"
)

func newExpandCmd(a *app) *cobra.Command {
	var (
		dryRun bool
		jobs   int
	)

	cmd := &cobra.Command{
		Use:   "expand [packages...]",
		Short: "Expand the templates of the given packages",
		Long: `Expand loads the given packages (default ./...) with the template build tag,
expands every template file and writes the results next to them. Files with
errors are not written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"./..."}
			}

			return a.expand(cmd, args, dryRun, jobs)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print expanded files instead of writing them")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "files expanded in parallel (default from config)")

	return cmd
}

func (a *app) expand(cmd *cobra.Command, patterns []string, dryRun bool, jobs int) error {
	ctx := cmd.Context()

	loader := analyze.NewLoader(".", a.cfg.BuildTag, a.fs)
	loader.Include = a.cfg.Include

	tmpls, err := loader.Load(ctx, patterns...)
	if err != nil {
		return err
	}

	if len(tmpls) == 0 {
		a.log.Warn("no templates found", "tag", a.cfg.BuildTag, "patterns", patterns)
		return nil
	}

	if jobs == 0 {
		jobs = a.cfg.Jobs
	}

	expander := gen.NewExpander(gen.Config{
		Impls:        a.cfg.Impls,
		ArgsIdent:    a.cfg.ArgsIdent,
		OutputSuffix: a.cfg.OutputSuffix,
		Jobs:         jobs,
		FS:           a.fs,
	})

	results, expandErr := expander.Expand(ctx, tmpls)

	written := 0
	if expandErr == nil && !dryRun {
		var err error
		if written, err = gen.WriteResults(a.fs, results); err != nil {
			return err
		}
	}

	pass, failed := collect(results)
	if err := diagnostic.Fprint(cmd.ErrOrStderr(), pass); err != nil {
		return err
	}

	if expandErr != nil {
		return expandErr
	}

	summary := gen.Summary(results)

	if dryRun {
		for _, res := range results {
			if res == nil || !res.OK() {
				continue
			}

			fmt.Fprintf(cmd.OutOrStdout(), "// %s\n%s\n", res.OutputPath, res.Output)
		}

		a.log.Info("dry run finished", "summary", summary)
	} else {
		a.log.Info("expansion finished", "summary", summary, "written", written)
	}

	if err := pass.Error(); err != nil {
		return fmt.Errorf("%d template(s) failed to expand: %w", failed, err)
	}

	return nil
}

// collect merges the diagnostics of every result into one pass-level bag
// and counts the results that cannot be written.
func collect(results []*gen.Result) (diagnostic.Diagnostics, int) {
	var (
		pass   diagnostic.Diagnostics
		failed int
	)

	for _, res := range results {
		if res == nil {
			continue
		}

		pass.Merge(res.Diagnostics)

		if !res.OK() {
			failed++
		}
	}

	return pass, failed
}
