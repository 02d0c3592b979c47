package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/GustavoMelloGit/qwik/internal/config"
	"github.com/GustavoMelloGit/qwik/pkg/qrl"
	"github.com/GustavoMelloGit/qwik/pkg/qwik"
	"github.com/GustavoMelloGit/qwik/pkg/server"
	"github.com/GustavoMelloGit/qwik/pkg/store"
)

func serveCmd() *cobra.Command {
	var (
		address string
		debug   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the demo render server",
		Long: `Start an HTTP server hosting the demo counter component.

Each GET /render request executes the component's tasks in a fresh
container on the server platform and returns the resulting state as
JSON. Query parameters seed the initial store.

Examples:
  qwik serve
  qwik serve --address=0.0.0.0:8080
  qwik serve --debug
  curl 'localhost:3000/render?count=21'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(address, debug)
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", "", "Listen address (default from qwik.json)")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Debug logging and the /debug/events stream")

	return cmd
}

func runServe(address string, debug bool) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	if address != "" {
		cfg.Address = address
	}
	if debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	printBanner()
	info("serving on http://%s", cfg.Address)
	if cfg.Metrics.Enabled {
		info("metrics at /metrics")
	}
	if cfg.Debug {
		info("event stream at /debug/events")
	}

	srv := server.New(cfg, logger, demoSetup)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// demoSetup declares the demo counter component: a server mount seeds the
// count, a watch keeps "doubled" derived from it.
func demoSetup(ctx context.Context, ic *qwik.InvokeContext, st *store.Store) error {
	mountRef := qrl.FromFunc("demo_mount", qwik.MountFn(func(ctx context.Context) error {
		if st.Peek("count") == nil {
			st.Set("count", "0")
		}
		return nil
	}))
	if _, err := qwik.UseServerMount(ctx, ic, mountRef); err != nil {
		return err
	}

	doublerRef := qrl.FromFunc("demo_doubler", qwik.TaskFn(func(ctx context.Context, track qwik.Tracker) (qwik.CleanupFn, error) {
		raw, _ := track(st, "count").(string)
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		st.Set("doubled", strconv.Itoa(n*2))
		return nil, nil
	}))
	qwik.UseTask(ic, doublerRef)

	return nil
}
