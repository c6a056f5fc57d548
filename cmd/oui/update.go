package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"oui"
	"oui/store"
	"oui/update"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Download the registry and record the refresh",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := parseConfig(cmd)
		if err != nil {
			return err
		}
		verify, err := cmd.Flags().GetBool("verify")
		if err != nil {
			return err
		}

		ctx, stop := done()
		defer stop()

		f := update.NewFetcher(update.NewHTTP(c.Timeout), update.File{})
		res, err := update.Download(ctx, f, c.URL, c.DB, update.Options{Verify: verify})
		if err != nil {
			return fmt.Errorf("update failed: %w", err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Updated DB: %s\n", c.DB)
		fmt.Fprintf(w, "Bytes: %d\n", res.Bytes)
		fmt.Fprintf(w, "Transport: %s\n", res.Transport)
		if verify {
			fmt.Fprintf(w, "Entries: %d\n", res.Entries)
		}

		// The download already succeeded so history
		// failures are only logged
		prev, err := record(c, res)
		if err != nil {
			slog.Error("failed to record refresh", slog.String("history", c.History), slog.Any("err", err))
			return nil
		}
		if prev.Digest == res.Digest {
			fmt.Fprintf(w, "Unchanged since %s (%s)\n", prev.Time().Format("2006-01-02 15:04:05"), res.Digest.Short())
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded registry refreshes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := parseConfig(cmd)
		if err != nil {
			return err
		}
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}

		if _, err := os.Stat(c.History); err != nil {
			return fmt.Errorf("no refresh history: %w", err)
		}
		s, err := store.NewStore(c.History)
		if err != nil {
			return err
		}
		defer s.Close()

		rs, err := s.List(limit)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tFETCHED\tTRANSPORT\tBYTES\tDIGEST\tPATH")
		for _, r := range rs {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
				r.ID, r.Time().Format("2006-01-02 15:04:05"), r.Transport, r.Bytes, r.Digest.Short(), r.Path)
		}
		return tw.Flush()
	},
}

func init() {
	def := oui.DefaultConfig()
	updateCmd.Flags().String("url", def.URL, "registry source URL, file:// and local paths work too")
	updateCmd.Flags().Bool("verify", false, "reject downloads that contain no registry entries")
	updateCmd.Flags().Duration("timeout", def.Timeout, "HTTP timeout")

	historyCmd.Flags().Int("limit", 10, "number of refreshes to list")
}

// record stores the refresh in the history database and returns the
// previous refresh of the same path, if any.
func record(c oui.Config, res update.Result) (store.Refresh, error) {
	if err := os.MkdirAll(filepath.Dir(c.History), 0o755); err != nil {
		return store.Refresh{}, err
	}
	s, err := store.NewStore(c.History)
	if err != nil {
		return store.Refresh{}, err
	}
	defer s.Close()

	prev, err := s.Latest(c.DB)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return store.Refresh{}, err
	}

	_, err = s.Put(store.Refresh{
		URL:       c.URL,
		Path:      c.DB,
		Transport: res.Transport,
		Bytes:     int64(res.Bytes),
		Digest:    res.Digest,
	})
	return prev, err
}
