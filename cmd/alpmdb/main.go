// Command alpmdb reads pacman repository databases.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	_ "github.com/git-pkgs/alpmdb/all"
	"github.com/git-pkgs/alpmdb/internal/config"
)

// Set at build time via -ldflags.
var version = "dev"

var (
	cfg config.Config

	warnColor  = color.New(color.FgYellow, color.Bold)
	errorColor = color.New(color.FgRed, color.Bold)
)

var rootCmd = &cobra.Command{
	Use:           "alpmdb",
	Short:         "Read pacman repository databases",
	Long:          `alpmdb decodes pacman sync and local databases, filters packages and fetches databases from mirrors`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := cmd.Root().PersistentFlags().GetString("config")
		if err != nil {
			return err
		}
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
		if err != nil {
			return err
		}
		switch colorFlag {
		case "on":
			color.NoColor = false
		case "off":
			color.NoColor = true
		case "auto":
			color.NoColor = !isTerminal(os.Stdout)
		default:
			return fmt.Errorf("--color must be auto, on or off, got %q", colorFlag)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(licensesCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "config file (default $XDG_CONFIG_HOME/alpmdb/config.toml)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress warnings")
}

func main() {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorColor.Sprint("error:"), err)
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// warnFunc returns the decoder warning sink for cmd. --quiet discards
// warnings.
func warnFunc(cmd *cobra.Command) func(format string, args ...any) {
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if quiet {
		return func(string, ...any) {}
	}
	return func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, "%s %s\n", warnColor.Sprint("warning:"), fmt.Sprintf(format, args...))
	}
}

// stringFlag returns the value of a string flag, or fallback when the flag
// was not set on the command line.
func stringFlag(cmd *cobra.Command, name, fallback string) (string, error) {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", err
	}
	if !cmd.Flags().Changed(name) && fallback != "" {
		return fallback, nil
	}
	return v, nil
}
