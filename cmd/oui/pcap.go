package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"oui/capture"
)

var pcapCmd = &cobra.Command{
	Use:   "pcap file",
	Short: "Show the vendors of stations seen in an ethernet capture",
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

		var r io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}

		ss, err := capture.Read(r, db.Index())
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "MAC\tFRAMES\tVENDOR")
		for _, s := range ss {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", s.Addr, s.Frames, vendor(s.Result))
		}
		return tw.Flush()
	},
}
