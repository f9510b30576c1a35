package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notifysync/internal/config"
	"notifysync/internal/queue"
	"notifysync/internal/service/notify"
	"notifysync/internal/sse"
)

const consumerMaxBackoff = time.Minute

type App struct {
	cfg      *config.Config
	hub      *sse.Hub
	svc      *notify.Service
	consumer queue.Consumer
	server   *http.Server
	logger   *zap.Logger
	wg       sync.WaitGroup

	// restartPolicy paces consumer restarts. Polling never uses it.
	restartPolicy func() backoff.BackOff
}

func NewApp(cfg *config.Config, hub *sse.Hub, svc *notify.Service, consumer queue.Consumer, router *gin.Engine, logger *zap.Logger) *App {
	return &App{
		cfg:      cfg,
		hub:      hub,
		svc:      svc,
		consumer: consumer,
		server: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
		restartPolicy: func() backoff.BackOff {
			policy := backoff.NewExponentialBackOff()
			policy.MaxInterval = consumerMaxBackoff
			policy.MaxElapsedTime = 0
			return policy
		},
	}
}

func (a *App) Run(ctx context.Context) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.hub.Run(ctx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.svc.Run(ctx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.runConsumer(ctx)
	}()

	// Request contexts end with ctx so open SSE streams return on shutdown.
	a.server.BaseContext = func(net.Listener) context.Context { return ctx }

	a.logger.Info("http server listening", zap.String("addr", a.cfg.HTTPAddr))
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// runConsumer keeps the refresh consumer alive, restarting it with
// exponential backoff until ctx is done.
func (a *App) runConsumer(ctx context.Context) {
	op := func() error {
		err := a.consumer.Start(ctx)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}
	onRetry := func(err error, wait time.Duration) {
		a.logger.Warn("consumer stopped, restarting", zap.Error(err), zap.Duration("backoff", wait))
	}
	err := backoff.RetryNotify(op, backoff.WithContext(a.restartPolicy(), ctx), onRetry)
	if err != nil && ctx.Err() == nil {
		a.logger.Error("consumer stopped", zap.Error(err))
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("graceful shutdown started")
	shutdownErr := a.server.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("graceful shutdown completed")
		return shutdownErr
	case <-ctx.Done():
		if shutdownErr != nil {
			return shutdownErr
		}
		return ctx.Err()
	}
}

func (a *App) Config() *config.Config {
	return a.cfg
}

func (a *App) Logger() *zap.Logger {
	return a.logger
}
