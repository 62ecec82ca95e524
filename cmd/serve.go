package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fzft/go-resp/internal/config"
	"github.com/fzft/go-resp/log"
	"github.com/fzft/go-resp/node"
)

var (
	// Overrides of the loaded config, ignored when empty
	serveAddr        string
	serveMetricsAddr string
)

func init() {
	flags := ServeCmd.Flags()
	flags.StringVarP(&serveAddr, "addr", "a", "", "Address to listen for RESP clients on")
	flags.StringVar(&serveMetricsAddr, "metrics-addr", "", "Address to serve /metrics on")
}

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a RESP echo server",
	Long: `Run a RESP echo server

Every frame a client sends is decoded and written back unchanged. A malformed
frame is answered with a protocol error and the connection is closed.

Usage
	respctl serve --addr 127.0.0.1:6380 --metrics-addr :9121
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		conf, err := config.Load(ctx, configFile)
		if err != nil {
			return err
		}
		if serveAddr != "" {
			conf.Addr = serveAddr
		}
		if serveMetricsAddr != "" {
			conf.MetricsAddr = serveMetricsAddr
		}
		if logLevel == "" {
			if err := log.InitLogger(conf.LogLevel); err != nil {
				return err
			}
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		s := node.NewServer(node.Options{
			Addr:      conf.Addr,
			ReusePort: conf.ReusePort,
			ReadChunk: conf.ReadChunk,
			Limits:    conf.Limits,
			Metrics:   node.NewMetrics(reg),
		})

		log.Logger.Info("starting",
			zap.String("addr", conf.Addr),
			zap.String("metricsAddr", conf.MetricsAddr),
			zap.Int("maxBulkLen", conf.Limits.MaxBulkLen),
			zap.Int("maxElements", conf.Limits.MaxElements))

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return s.Run(ctx)
		})
		if conf.MetricsAddr != "" {
			g.Go(func() error {
				return node.ServeMetrics(ctx, conf.MetricsAddr, reg)
			})
		}

		err = g.Wait()
		log.Logger.Info("stopped", zap.Error(err))
		return err
	},
}
