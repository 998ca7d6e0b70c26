package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"seahorse/internal/domain"
	"seahorse/internal/registry"
	"seahorse/internal/util/logging"
)

type options struct {
	listen    string
	data      string
	logLevel  string
	logFormat string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:          "registry",
		Short:        "Run the Seahorse friend registry",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.NewTo(cmd.ErrOrStderr(), o.logLevel, o.logFormat)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, o, log)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.listen, "listen", ":8080", "listen address")
	f.StringVar(&o.data, "data", "", "Badger data directory (empty keeps state in memory)")
	f.StringVar(&o.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	f.StringVar(&o.logFormat, "log-format", "text", "log format (text or json)")
	return cmd
}

func run(ctx context.Context, o options, log *logrus.Logger) error {
	var backend domain.Registry
	if o.data == "" {
		backend = registry.NewMemory()
		log.Warn("no --data given, state is kept in memory")
	} else {
		db, err := registry.OpenBadger(o.data, log)
		if err != nil {
			return err
		}
		defer db.Close()
		backend = db
	}

	prom, err := newMetricsRegistry()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              o.listen,
		Handler:           registry.NewServer(backend, registry.WithServerLogger(log), registry.WithPrometheus(prom)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", o.listen).Info("registry listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newMetricsRegistry returns the registry served on /metrics, carrying the
// runtime and build collectors next to the server's own metrics.
func newMetricsRegistry() (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
