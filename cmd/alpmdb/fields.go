package main

import (
	"fmt"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/git-pkgs/alpmdb"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the attributes a database format knows",
	Args:  cobra.NoArgs,
	RunE:  runFields,
}

func init() {
	fieldsCmd.Flags().String("format", "sync", "database format (sync|local)")
	fieldsCmd.Flags().Bool("labels", false, "print only the sorted field labels")
}

func runFields(cmd *cobra.Command, _ []string) error {
	formatName, err := stringFlag(cmd, "format", cfg.Defaults.Format)
	if err != nil {
		return err
	}
	labelsOnly, err := cmd.Flags().GetBool("labels")
	if err != nil {
		return err
	}

	format, err := alpmdb.LookupFormat(formatName)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if labelsOnly {
		for _, l := range format.Catalog.Labels() {
			fmt.Fprintln(out, l)
		}
		return nil
	}

	specs := format.Catalog.Specs()
	width := 0
	for _, s := range specs {
		width = max(width, runewidth.StringWidth(s.Token)+2)
	}
	for _, s := range specs {
		token := "%" + s.Token + "%"
		if s.Token == format.Header {
			token = warnColor.Sprint(runewidth.FillRight(token, width))
		} else {
			token = runewidth.FillRight(token, width)
		}
		fmt.Fprintf(out, "%s  %-7s  %s\n", token, s.Kind, s.Label)
	}
	return nil
}
