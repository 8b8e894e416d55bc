package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"kitchencalc/internal/api"
	"kitchencalc/internal/auth"
	"kitchencalc/internal/config"
	"kitchencalc/internal/notifier"
	"kitchencalc/internal/timer"
)

func newServeCmd(a *app) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the companion HTTP API for phones and tablets on the counter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				port = a.cfg.HTTPPort
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default "+config.DefaultHTTPPort+" or "+config.EnvHTTPPort+")")
	return cmd
}

func (a *app) serve(ctx context.Context, port string) error {
	runner := timer.NewRunner(timer.New(a.cfg.TimerName, nil), a.cfg.TickInterval)
	defer runner.Close()

	chime := notifier.NewChime(notifier.NewBellPlayer(os.Stdout))
	defer chime.Unload()
	n := notifier.New(chime, notifier.WithWindow(a.cfg.NotifyWindow))
	go n.Listen(ctx, runner.Subscribe())

	authenticator := auth.New(a.cfg.APISecret)
	addr := ":" + port
	if !authenticator.Enabled() {
		// без секрета API открыт, поэтому только loopback
		addr = "127.0.0.1:" + port
		log.Printf("ВНИМАНИЕ: %s не задан, API доступен только с localhost", config.EnvAPISecret)
	}

	h := api.NewHandler(api.Deps{
		Session:   a.session,
		Runner:    runner,
		Notifier:  n,
		Catalog:   a.catalog,
		Overrides: a.overrides,
		Auth:      authenticator,
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.SetupRouter(h),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Сервер запущен на http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("Останавливаем сервер")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
