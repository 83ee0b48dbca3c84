package main

import (
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/git-pkgs/alpmdb"
)

var versionColor = color.New(color.FgGreen, color.Bold)

type versionPayload struct {
	Tool      string   `json:"tool"`
	Version   string   `json:"version"`
	GoVersion string   `json:"go_version,omitempty"`
	Formats   []string `json:"formats"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the alpmdb version and supported formats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}
		payload := versionPayload{
			Tool:    "alpmdb",
			Version: version,
			Formats: alpmdb.SupportedFormats(),
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			payload.GoVersion = info.GoVersion
		}

		out := cmd.OutOrStdout()
		switch strings.ToLower(format) {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		case "pretty":
			fmt.Fprintf(out, "%s %s\n", payload.Tool, versionColor.Sprint(payload.Version))
			if payload.GoVersion != "" {
				fmt.Fprintf(out, "built with %s\n", payload.GoVersion)
			}
			fmt.Fprintf(out, "formats: %s\n", strings.Join(payload.Formats, ", "))
			return nil
		default:
			return fmt.Errorf("unknown version format %q (want pretty or json)", format)
		}
	},
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}
