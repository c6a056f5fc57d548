package main

import (
	"bufio"
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"oui"
	"oui/cert"
	"oui/manuf"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup mac...",
	Short: "Resolve MAC addresses or prefixes, - reads them from stdin",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := parseConfig(cmd)
		if err != nil {
			return err
		}
		asJSON, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}
		server, err := cmd.Flags().GetString("server")
		if err != nil {
			return err
		}
		caFile, err := cmd.Flags().GetString("ca")
		if err != nil {
			return err
		}

		qs, err := queries(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		// Resolve against a running server or the local registry
		var lookup func(ctx context.Context, q string) (manuf.Result, error)
		if server != "" {
			var roots *x509.CertPool
			if caFile != "" {
				if roots, err = cert.Pool(caFile); err != nil {
					return err
				}
			}
			client := oui.NewClient(server, cert.Client(c.Timeout, roots))
			lookup = client.Lookup
		} else {
			db, err := loadDB(c)
			if err != nil {
				return err
			}
			lookup = func(_ context.Context, q string) (manuf.Result, error) {
				return db.Lookup(q), nil
			}
		}

		w := cmd.OutOrStdout()
		for i, q := range qs {
			r, err := lookup(cmd.Context(), q)
			if err != nil {
				return err
			}
			if asJSON {
				fmt.Fprintln(w, oui.ResultValue(r))
				continue
			}
			if len(qs) > 1 {
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "%s\n", q)
			}
			writeResult(w, r)
		}
		return nil
	},
}

func init() {
	lookupCmd.Flags().Bool("json", false, "print results as JSON, one per line")
	lookupCmd.Flags().String("server", "", "query the lookup API at this base URL instead of the local registry")
	lookupCmd.Flags().String("ca", "", "PEM certificates to trust when querying the server")
}

// queries expands "-" into the non-blank lines of r.
func queries(r io.Reader, args []string) ([]string, error) {
	qs := make([]string, 0, len(args))
	for _, a := range args {
		if a != "-" {
			qs = append(qs, a)
			continue
		}

		sc := bufio.NewScanner(r)
		for sc.Scan() {
			if q := strings.TrimSpace(sc.Text()); q != "" {
				qs = append(qs, q)
			}
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	}
	return qs, nil
}

func writeResult(w io.Writer, r manuf.Result) {
	if !r.Found {
		fmt.Fprintln(w, "No match")
		return
	}
	fmt.Fprintf(w, "Vendor: %s\n", r.Entry.Vendor)
	fmt.Fprintf(w, "Prefix: %s/%d\n", r.Prefix, r.Entry.Bits)
	if r.Entry.Comment != "" {
		fmt.Fprintf(w, "Comment: %s\n", r.Entry.Comment)
	}
}
