package node

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/SystemBuilders/StripeKey/internal/config"
	"github.com/rs/zerolog"
)

// shutdownTimeout bounds the wait for in-flight requests on shutdown.
const shutdownTimeout = 10 * time.Second

// Start begins the node's operation as a http server. It returns when ctx
// is cancelled and the server has shut down, or when serving fails.
func Start(ctx context.Context, log zerolog.Logger, cfg config.Config, handler http.Handler) error {
	if err := config.CheckValidPort(cfg.Port()); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(cfg.IP(), cfg.Port()))
	if err != nil {
		return err
	}
	return Serve(ctx, log, ln, handler)
}

// Serve serves handler on ln until ctx is cancelled.
func Serve(ctx context.Context, log zerolog.Logger, ln net.Listener, handler http.Handler) error {
	server := &http.Server{
		Handler: handler,
	}

	done := make(chan error, 1)
	go func() {
		done <- gracefulShutdown(ctx, log, server)
	}()

	log.Info().Str("addr", ln.Addr().String()).Msg("starting server")
	if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}

// gracefulShutdown shuts down the server once ctx is done.
func gracefulShutdown(ctx context.Context, log zerolog.Logger, server *http.Server) error {
	<-ctx.Done()

	// Create a deadline to wait for currently serving items.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Msg("shutting down")
	return server.Shutdown(shutdownCtx)
}
