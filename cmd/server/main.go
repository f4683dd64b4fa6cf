package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"ohhell/config"
	"ohhell/server"
)

func main() {
	envFile := flag.String("env", ".env", "Optional dotenv file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create hub and game server
	hub := server.NewHub(log)
	gameServer := server.NewGameServer(hub, log, server.Options{
		ClearDelay: cfg.ClearDelay,
		MaxPlayers: cfg.MaxPlayers,
	})
	hub.Handler = gameServer

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Router(hub, gameServer, server.NewUpgrader(cfg.AllowedOrigins), cfg.StaticDir, log),
		ReadHeaderTimeout: 15 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		log.WithFields(logrus.Fields{
			"addr":        cfg.Addr,
			"max_players": cfg.MaxPlayers,
			"clear_delay": cfg.ClearDelay,
		}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
