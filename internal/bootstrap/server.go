package bootstrap

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultShutdownTimeout = 10 * time.Second

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// StartHTTPServer listens on cfg.Port and serves until ctx is cancelled.
func StartHTTPServer(ctx context.Context, handler http.Handler, cfg ServerConfig, audit AuditLogger) error {
	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return err
	}
	return Serve(ctx, ln, handler, cfg, audit)
}

// Serve runs handler on ln. When ctx ends, in-flight requests get
// cfg.ShutdownTimeout to finish.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, cfg ServerConfig, audit AuditLogger) error {
	log := zap.L().Named("bootstrap.server")
	server := &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", zap.String("addr", ln.Addr().String()))
		audit.Log(gctx, AuditLog{
			Action:  "SERVER_START",
			Message: "Server is accepting requests",
			Meta:    map[string]any{"addr": ln.Addr().String()},
		})
		if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		audit.Log(context.WithoutCancel(ctx), AuditLog{
			Action:  "SERVER_SHUTDOWN",
			Message: "Server is shutting down",
		})

		timeout := cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("forced shutdown", zap.Error(err))
			return err
		}
		log.Info("http server stopped")
		return nil
	})

	return g.Wait()
}
