package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"oui/mac"
)

var searchCmd = &cobra.Command{
	Use:   "search vendor",
	Short: "List the prefixes registered to vendors matching a substring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := parseConfig(cmd)
		if err != nil {
			return err
		}
		db, err := loadDB(c)
		if err != nil {
			return err
		}

		es := db.Index().Search(args[0])
		if len(es) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No match")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, e := range es {
			fmt.Fprintf(tw, "%s/%d\t%s\t%s\n", mac.Format(e.Prefix, e.Bits), e.Bits, e.Vendor, e.Comment)
		}
		return tw.Flush()
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Summarise the loaded registry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := parseConfig(cmd)
		if err != nil {
			return err
		}
		db, err := loadDB(c)
		if err != nil {
			return err
		}

		idx := db.Index()
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "DB: %s\n", db.Path())
		fmt.Fprintf(w, "Entries: %d\n", idx.Len())

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "MASK\tENTRIES\t")
		for _, bits := range idx.Masks() {
			fmt.Fprintf(tw, "/%d\t%d\t\n", bits, idx.Count(bits))
		}
		return tw.Flush()
	},
}
