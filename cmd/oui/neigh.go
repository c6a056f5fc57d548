package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"oui/manuf"
	"oui/neigh"
)

var neighCmd = &cobra.Command{
	Use:   "neigh",
	Short: "Show the vendors of hosts in the kernel neighbour table",
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

		es, err := neigh.Table()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "INTERFACE\tIP\tMAC\tSTATE\tVENDOR")
		for _, n := range neigh.Annotate(db.Index(), es) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", n.Interface, n.IP, n.HardwareAddr, n.State, vendor(n.Result))
		}
		return tw.Flush()
	},
}

func vendor(r manuf.Result) string {
	if !r.Found {
		return "-"
	}
	return r.Entry.Vendor
}
