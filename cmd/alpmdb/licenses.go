package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/git-pkgs/alpmdb"
)

var licensesCmd = &cobra.Command{
	Use:   "licenses [flags] <db>...",
	Short: "Report packages whose licenses are not valid SPDX expressions",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLicenses,
}

func init() {
	licensesCmd.Flags().String("format", "sync", "database format (sync|local)")
	licensesCmd.Flags().Int("jobs", 4, "databases to decode in parallel")
}

type licenseProblem struct {
	repo, name string
	invalid    []string
}

func runLicenses(cmd *cobra.Command, paths []string) error {
	formatName, err := stringFlag(cmd, "format", cfg.Defaults.Format)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}

	dec, err := alpmdb.New(formatName, alpmdb.WithWarnFunc(warnFunc(cmd)))
	if err != nil {
		return err
	}

	var problems []licenseProblem
	counts, err := alpmdb.BulkDecodeWithConcurrency(cmd.Context(), dec, paths, func(src alpmdb.Source, rec *alpmdb.Record, _ int) error {
		if ok, invalid := alpmdb.CheckLicenses(rec); !ok {
			problems = append(problems, licenseProblem{repo: src.Repository, name: rec.Name(), invalid: invalid})
		}
		return nil
	}, jobs)
	if err != nil {
		return err
	}

	sort.Slice(problems, func(i, j int) bool {
		if problems[i].repo != problems[j].repo {
			return problems[i].repo < problems[j].repo
		}
		return problems[i].name < problems[j].name
	})

	out := cmd.OutOrStdout()
	for _, p := range problems {
		fmt.Fprintf(out, "%s/%s: %s\n", p.repo, p.name, strings.Join(p.invalid, ", "))
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d of %d packages have invalid license expressions", len(problems), total)
	}
	fmt.Fprintf(out, "%d packages checked, all licenses valid\n", total)
	return nil
}
