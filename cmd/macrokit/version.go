package main

import (
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = ""
	commit  = ""
	date    = ""
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

func buildVersion() string {
	if v := strings.TrimSpace(version); v != "" {
		return v
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	return "dev"
}

func newVersionCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show macrokit build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload := versionPayload{
				Tool:      "macrokit",
				Version:   buildVersion(),
				GitCommit: strings.TrimSpace(commit),
				BuildDate: strings.TrimSpace(date),
			}

			switch strings.ToLower(format) {
			case "pretty":
				fmt.Fprintf(cmd.OutOrStdout(), "macrokit %s\n", payload.Version)
				if payload.GitCommit != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", payload.GitCommit)
				}

				if payload.BuildDate != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "built:  %s\n", payload.BuildDate)
				}

				return nil
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")

				return enc.Encode(payload)
			default:
				return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")

	return cmd
}
