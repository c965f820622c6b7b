package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mubench-review/internal/api"
	"mubench-review/internal/logger"
	"mubench-review/internal/services"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sobe o servidor HTTP da API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer env.close()
		defer logger.GetLogger().Sync()

		app := api.NewApp(services.NewDataProcessor(env.store), env.store)
		srv := &http.Server{
			Addr:         env.cfg.HTTPAddr,
			Handler:      app.Handler(),
			ReadTimeout:  env.cfg.ReadTimeout,
			WriteTimeout: env.cfg.WriteTimeout,
		}
		return runServer(ctx, srv)
	},
}

// runServer serve até ctx ser cancelado e então faz o shutdown gracioso.
func runServer(ctx context.Context, srv *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Log.Infof("Escutando em %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("Encerrando servidor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
