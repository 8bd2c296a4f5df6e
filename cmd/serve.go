package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/coexnet/internal/analysis"
	"github.com/KaramelBytes/coexnet/internal/metrics"
	"github.com/KaramelBytes/coexnet/internal/server"
)

var (
	serveAddr       string
	serveNoEntities bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload/process/download HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		st, err := openStore(c)
		if err != nil {
			return err
		}
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		rec := metrics.New(reg)
		svc, err := newService(c, st, rec, !serveNoEntities)
		if err != nil {
			return err
		}
		load := analysis.DefaultLoadOptions()
		load.Format = numberFormat(c)
		addr := c.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		srv := server.New(server.Config{
			Addr:           addr,
			AllowedOrigins: c.AllowedOrigins,
			MaxUploadBytes: int64(c.MaxUploadMB) << 20,
			PreviewRows:    c.PreviewRows,
			Load:           load,
			Gatherer:       reg,
			Metrics:        rec,
		}, st, svc, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config listen_addr)")
	serveCmd.Flags().BoolVar(&serveNoEntities, "no-entities", false, "skip the named-entity bonus (faster, no model load)")
}
