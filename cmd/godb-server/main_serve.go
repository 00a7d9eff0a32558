package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"goDBDriver/internal/logger"
	"goDBDriver/internal/server"
)

type cmdServe struct {
	global *cmdGlobal

	flagListen string
}

// Command generates the command definition.
func (c *cmdServe) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "serve"
	cmd.Short = "Serve an in-memory engine over HTTP"
	cmd.Long = `Description:
  Serve an in-memory engine over HTTP

  The REST API is rooted at /1.0. Session defaults from the configuration
  file apply to every statement that does not set them itself.
`
	cmd.RunE = c.Run
	cmd.Flags().StringVarP(&c.flagListen, "listen", "l", "", "Address to listen on (overrides the configuration file)")

	return cmd
}

// Run runs the actual command logic.
func (c *cmdServe) Run(cmd *cobra.Command, args []string) error {
	// Quick checks.
	exit, err := c.global.CheckArgs(cmd, args, 0, 0)
	if exit {
		return err
	}

	conf, log, err := c.global.loadConfig()
	if err != nil {
		return err
	}

	if c.flagListen != "" {
		conf.Listen = c.flagListen
		err = conf.Validate()
		if err != nil {
			return err
		}
	}

	svc, err := server.NewEmbedded(server.WithLogger(log), server.WithConfDefaults(conf.Session.Defaults))
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, conf.Listen, server.NewHandler(svc, log), log)
}

// serve runs the HTTP server until ctx is done, then shuts it down.
func serve(ctx context.Context, addr string, handler http.Handler, log logger.Logger) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "Failed to listen on %s", addr)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Serving", logger.Ctx{"address": listener.Addr().String()})
		err := srv.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
