package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/saulo-duarte/taskbridge/internal/config"
	"github.com/saulo-duarte/taskbridge/internal/container"
	"github.com/saulo-duarte/taskbridge/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Error("Invalid configuration")
		os.Exit(1)
	}

	c := container.New(cfg)
	log := logrus.StandardLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.WithField("signal", sig.String()).Info("Shutting down")
		cancel()
	}()

	var srv *http.Server
	if cfg.StatusAddr != "" {
		srv = &http.Server{
			Addr:    cfg.StatusAddr,
			Handler: router.New(router.RouterConfig{StatusHandler: c.StatusHandler}),
		}
		go func() {
			log.WithField("addr", cfg.StatusAddr).Info("Status server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Status server failed")
			}
		}()
	}

	c.SyncerContainer.Loop.Run(ctx)

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Status server shutdown failed")
		}
	}
}
