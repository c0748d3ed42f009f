package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"macrokit/internal/config"
)

func newInitCmd(a *app) *cobra.Command {
	var (
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var name string

			switch config.Format(format) {
			case config.FormatYAML:
				name = "macrokit.yaml"
			case config.FormatTOML:
				name = "macrokit.toml"
			default:
				return fmt.Errorf("unsupported format %q (must be yaml or toml)", format)
			}

			exists, err := afero.Exists(a.fs, name)
			if err != nil {
				return err
			}

			if exists && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", name)
			}

			if err := config.WriteFile(a.fs, config.Default(), name); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", name)

			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", string(config.FormatYAML), "file format (yaml|toml)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}
