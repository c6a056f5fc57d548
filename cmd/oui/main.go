package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"oui"
	"oui/manuf"
)

var rootCmd = &cobra.Command{
	Use:               "oui",
	Short:             "Resolve MAC addresses to the vendors that own them",
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return err
		}
		setupLogging(verbose)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(neighCmd)
	rootCmd.AddCommand(pcapCmd)

	rootCmd.PersistentFlags().StringP("db", "d", oui.DefaultConfig().DB, "registry path, .gz optional")
	rootCmd.PersistentFlags().StringP("file", "f", "", "JSON configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})))
}

// parseConfig layers explicitly set flags on top of the config file and
// environment.
func parseConfig(cmd *cobra.Command) (oui.Config, error) {
	configPath, err := cmd.Flags().GetString("file")
	if err != nil {
		return oui.Config{}, err
	}
	c, err := oui.LoadConfig(configPath)
	if err != nil {
		return oui.Config{}, err
	}

	fs := cmd.Flags()
	if fs.Changed("db") {
		if c.DB, err = fs.GetString("db"); err != nil {
			return oui.Config{}, err
		}
	}
	if f := fs.Lookup("url"); f != nil && f.Changed {
		c.URL = f.Value.String()
	}
	if f := fs.Lookup("timeout"); f != nil && f.Changed {
		if c.Timeout, err = fs.GetDuration("timeout"); err != nil {
			return oui.Config{}, err
		}
	}
	if f := fs.Lookup("host"); f != nil && f.Changed {
		c.Host = f.Value.String()
	}
	if f := fs.Lookup("port"); f != nil && f.Changed {
		if c.Port, err = fs.GetUint16("port"); err != nil {
			return oui.Config{}, err
		}
	}
	if f := fs.Lookup("reload"); f != nil && f.Changed {
		if c.Reload, err = fs.GetDuration("reload"); err != nil {
			return oui.Config{}, err
		}
	}
	if f := fs.Lookup("rate"); f != nil && f.Changed {
		if c.Rate, err = fs.GetFloat64("rate"); err != nil {
			return oui.Config{}, err
		}
	}
	if f := fs.Lookup("tls-cert"); f != nil && f.Changed {
		c.TLSCert = f.Value.String()
	}
	if f := fs.Lookup("tls-key"); f != nil && f.Changed {
		c.TLSKey = f.Value.String()
	}

	return c, nil
}

// loadDB loads the configured registry, failing the command if it can't.
func loadDB(c oui.Config) (*manuf.DB, error) {
	db := manuf.NewDB()
	if res := db.Load(c.DB); !res.OK {
		return nil, fmt.Errorf("load registry: %s", res.Message)
	}
	return db, nil
}

// done is cancelled on SIGINT or SIGTERM.
func done() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
