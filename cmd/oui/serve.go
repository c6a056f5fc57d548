package main

import (
	"crypto/tls"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"oui"
	"oui/cert"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the lookup page and JSON API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := parseConfig(cmd)
		if err != nil {
			return err
		}

		db, err := loadDB(c)
		if err != nil {
			return fmt.Errorf("%w (run `oui update` first)", err)
		}
		slog.Info("registry loaded",
			slog.String("db", db.Path()),
			slog.Int("entries", db.Index().Len()))

		var tlsConfig *tls.Config
		if c.TLSCert != "" || c.TLSKey != "" {
			if tlsConfig, err = cert.Config(c.TLSCert, c.TLSKey); err != nil {
				return err
			}
		}

		ctx, stop := done()
		defer stop()
		return oui.NewServer(db, c, tlsConfig).Run(ctx)
	},
}

func init() {
	def := oui.DefaultConfig()
	serveCmd.Flags().String("host", def.Host, "address to listen on")
	serveCmd.Flags().Uint16("port", def.Port, "port to listen on")
	serveCmd.Flags().Duration("reload", def.Reload, "registry reload interval, 0 disables")
	serveCmd.Flags().Float64("rate", def.Rate, "API requests per second, 0 disables")
	serveCmd.Flags().String("tls-cert", "", "TLS certificate, enables HTTPS")
	serveCmd.Flags().String("tls-key", "", "TLS private key")
}
