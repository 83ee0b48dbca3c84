package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/git-pkgs/alpmdb"
	"github.com/git-pkgs/alpmdb/internal/output"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] <db>...",
	Short: "Decode databases and print their packages",
	Long: `Decode one or more pacman databases (compressed archives or extracted
directories) and print the packages that match the search`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("repo", "", "repository name for every record (default: derived from the database file name)")
	parseCmd.Flags().String("format", "sync", "database format (sync|local)")
	parseCmd.Flags().String("search", "", "regular expression records must match")
	parseCmd.Flags().String("field", "", "field or token the search applies to (default: the format's header)")
	parseCmd.Flags().String("output", "plain", "output format (json|plain|msgpack)")
	parseCmd.Flags().StringSlice("fields", nil, "only print these fields")
	parseCmd.Flags().String("purl", "", "only print the package this pkg:alpm URL names")
	parseCmd.Flags().String("purl-distro", "", "add a PURL field for this distribution")
	parseCmd.Flags().Bool("human", false, "print sizes in binary units (plain output)")
}

func runParse(cmd *cobra.Command, args []string) error {
	repo, err := cmd.Flags().GetString("repo")
	if err != nil {
		return err
	}
	formatName, err := stringFlag(cmd, "format", cfg.Defaults.Format)
	if err != nil {
		return err
	}
	pattern, err := cmd.Flags().GetString("search")
	if err != nil {
		return err
	}
	fieldName, err := cmd.Flags().GetString("field")
	if err != nil {
		return err
	}
	outputName, err := stringFlag(cmd, "output", cfg.Defaults.Output)
	if err != nil {
		return err
	}
	fieldNames, err := cmd.Flags().GetStringSlice("fields")
	if err != nil {
		return err
	}
	purlStr, err := cmd.Flags().GetString("purl")
	if err != nil {
		return err
	}
	distro, err := cmd.Flags().GetString("purl-distro")
	if err != nil {
		return err
	}
	human, err := cmd.Flags().GetBool("human")
	if err != nil {
		return err
	}

	format, err := alpmdb.LookupFormat(formatName)
	if err != nil {
		return err
	}

	opts := []alpmdb.DecoderOption{alpmdb.WithWarnFunc(warnFunc(cmd))}
	if pattern != "" || fieldName != "" {
		search, err := alpmdb.CompileSearch(pattern, resolveLabel(format.Catalog, fieldName))
		if err != nil {
			return err
		}
		opts = append(opts, alpmdb.WithSearch(search))
	}
	dec, err := format.NewDecoder(opts...)
	if err != nil {
		return err
	}

	var purl *alpmdb.AlpmPURL
	if purlStr != "" {
		if purl, err = alpmdb.ParseAlpmPURL(purlStr); err != nil {
			return err
		}
	}

	labels := make([]string, len(fieldNames))
	for i, name := range fieldNames {
		labels[i] = resolveLabel(format.Catalog, name)
	}

	stdout := bufio.NewWriter(cmd.OutOrStdout())
	defer func() { _ = stdout.Flush() }()

	w, err := output.New(outputName, stdout, output.Options{
		Fields:     labels,
		PURLDistro: distro,
		HumanSizes: human,
	})
	if err != nil {
		return err
	}

	total := 0
	for i, path := range args {
		src := alpmdb.SourceFor(path)
		if repo != "" {
			src.Repository = repo
		}
		final := i == len(args)-1
		n, err := decodeFile(dec, src, func(rec *alpmdb.Record, ordinal int, isLast bool) error {
			if rec != nil && purl != nil && !purl.Matches(rec) {
				rec = nil
			}
			isLast = isLast && final
			if rec == nil && !isLast {
				return nil
			}
			return w.Handle(rec, ordinal, isLast)
		})
		if err != nil {
			return err
		}
		total += n
	}
	if err := w.Finish(total); err != nil {
		return err
	}
	return stdout.Flush()
}

func decodeFile(dec *alpmdb.Decoder, src alpmdb.Source, h alpmdb.Handler) (int, error) {
	rc, err := alpmdb.Open(src.Path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rc.Close() }()

	n, err := dec.Decode(rc, src, h)
	if err != nil {
		return n, fmt.Errorf("decoding %s: %w", src.Path, err)
	}
	return n, nil
}

// resolveLabel maps a token or label given on the command line to its
// catalog label. Unknown names are kept so fields decoded under a fallback
// label can still be addressed.
func resolveLabel(c *alpmdb.Catalog, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if spec, ok := c.Resolve(strings.Trim(name, "%")); ok {
		return spec.Label
	}
	return name
}
