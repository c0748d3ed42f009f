package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"macrokit/internal/config"
	"macrokit/internal/logger"
)

// app is the state shared by the subcommands.
type app struct {
	fs afero.Fs

	configPath string
	logLevel   string
	logJSON    bool
	color      string

	cfg *config.Config
	log logger.Logger
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs}

	cmd := &cobra.Command{
		Use:   "macrokit",
		Short: "Expand macro directives in Go templates",
		Long: `macrokit expands //macro: directives in Go files guarded by the macrokit
build tag, writing the result next to each template.`,
		Version:      buildVersion(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "configuration file (default: macrokit.yaml or macrokit.toml found upwards)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	pf.BoolVar(&a.logJSON, "log-json", false, "log as JSON")
	pf.StringVar(&a.color, "color", "auto", "colorize output (auto|always|never)")

	cmd.AddCommand(
		newExpandCmd(a),
		newDocCmd(a),
		newListCmd(a),
		newInitCmd(a),
		newVersionCmd(),
	)

	return cmd
}

// setup loads the configuration, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	switch a.color {
	case "auto":
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		return fmt.Errorf("unsupported color mode %q (must be auto, always or never)", a.color)
	}

	cfg, err := config.Load(a.fs, a.configPath, ".")
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}

	if flags.Changed("log-json") {
		cfg.Log.JSON = a.logJSON
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.log = logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.Log.Level),
		Output: cmd.ErrOrStderr(),
		JSON:   cfg.Log.JSON,
	})

	cmd.SetContext(logger.ContextWithLogger(cmd.Context(), a.log))

	return nil
}
