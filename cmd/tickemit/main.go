package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/romshark/tickemit"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tickemit",
		Short:        "Virtual clock event emitter",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

type runFlags struct {
	schedule    string
	interval    time.Duration
	ticks       int64
	metricsAddr string
	debug       bool
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an emitter logging the events of a schedule",
		Long: "Run advances the virtual clock on every tick and logs the " +
			"message of every scheduled event that fires. It runs until " +
			"interrupted or until the clock reaches --ticks.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.schedule, "schedule", "s", "", "path to the YAML schedule file")
	fl.DurationVarP(&f.interval, "interval", "i", tickemit.DefaultInterval, "wall-clock duration of one tick")
	fl.Int64VarP(&f.ticks, "ticks", "n", 0, "stop once the clock reaches this time (0 runs until interrupted)")
	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fl.BoolVar(&f.debug, "debug", false, "enable debug logging")
	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, f runFlags) error {
	log, err := newLogger(f.debug)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	s := new(Schedule)
	if f.schedule != "" {
		if s, err = LoadSchedule(f.schedule); err != nil {
			return err
		}
	}

	interval := f.interval
	if s.Interval > 0 && !cmd.Flags().Changed("interval") {
		interval = s.Interval
	}

	opts := []tickemit.Option{tickemit.WithLogger(log)}
	if f.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, tickemit.WithMetrics(tickemit.NewMetrics(reg)))
		srv := &http.Server{
			Addr:              f.metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			err := srv.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("serving metrics", zap.Error(err))
			}
		}()
		defer srv.Close()
	}

	e := tickemit.New(opts...)
	s.Apply(e, log)

	done := make(chan struct{})
	if f.ticks > 0 {
		e.At(f.ticks, func(int64) {
			e.Destroy()
			close(done)
		})
	}

	log.Info("running",
		zap.Duration("interval", interval),
		zap.Int("events", len(s.Events)))
	e.Start(interval)

	select {
	case <-ctx.Done():
	case <-done:
	}
	e.Destroy()
	log.Info("stopped", zap.Int64("time", e.Now()))
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
