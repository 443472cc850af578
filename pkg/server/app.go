package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Astrolabe/pkg/config"
	xhttp "Astrolabe/pkg/http"
	pkgkafka "Astrolabe/pkg/kafka"
	applogger "Astrolabe/pkg/logger"
)

const janitorInterval = time.Minute

type janitor struct {
	name string
	run  func() int
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg      *config.Config
	log      *applogger.Logger
	http     *xhttp.Server
	consumer *pkgkafka.Consumer
	handler  pkgkafka.MessageHandler
	janitors []janitor
}

// New creates a new App serving srv.
func New(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server) *App {
	return &App{cfg: cfg, log: l, http: srv}
}

// WithConsumer runs consumer with h registered alongside the HTTP server.
func (a *App) WithConsumer(consumer *pkgkafka.Consumer, h pkgkafka.MessageHandler) {
	a.consumer = consumer
	a.handler = h
}

// WithJanitor runs fn every minute. fn returns how many entries it removed.
func (a *App) WithJanitor(name string, fn func() int) {
	a.janitors = append(a.janitors, janitor{name: name, run: fn})
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.consumer != nil && a.handler != nil {
		a.consumer.RegisterHandler(a.handler)
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.handler.Topic()))
	}

	if len(a.janitors) > 0 {
		go a.sweep(ctx)
	}

	if err := a.http.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) sweep(ctx context.Context) {
	t := time.NewTicker(janitorInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			for _, j := range a.janitors {
				if n := j.run(); n > 0 {
					a.log.Debug("janitor swept entries", applogger.String("janitor", j.name), applogger.Int("removed", n))
				}
			}
		}
	}
}

// shutdown stops intake first so in-flight work can finish.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.http.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	a.log.Info("shutdown complete")
	return nil
}
