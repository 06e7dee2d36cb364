// Command devstack runs local stand-ins for the identity provider, the model
// listing API and the event stream, so the console can be exercised without
// the real backends.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"synapse-console/src/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	identityAddr := flag.String("identity", ":8080", "identity provider listen address")
	modelsAddr := flag.String("models", ":9000", "model API listen address")
	streamAddr := flag.String("stream", ":8086", "event stream listen address")
	users := flag.String("users", "testuser:password", "comma separated user:password pairs")
	symbols := flag.String("symbols", "AAPL,MSFT,VOD.L", "comma separated symbols to simulate")
	interval := flag.Duration("interval", time.Second, "tick interval")
	logLevel := flag.String("log-level", "INFO", "log level")
	flag.Parse()

	appLogger := logger.NewLogger(*logLevel, "devstack")
	defer appLogger.Sync()
	gin.SetMode(gin.ReleaseMode)

	tokens := newTokenIssuer(parseUsers(*users))
	feed := newFeed(strings.Split(*symbols, ","), tokens, appLogger)

	servers := []*http.Server{
		{Addr: *identityAddr, Handler: identityRouter(tokens)},
		{Addr: *modelsAddr, Handler: modelsRouter(tokens)},
		{Addr: *streamAddr, Handler: feed.router()},
	}
	for _, srv := range servers {
		go func(srv *http.Server) {
			appLogger.Info("Listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.Critical("server %s failed: %v", srv.Addr, err)
			}
		}(srv)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go feed.run(ctx, *interval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	for _, srv := range servers {
		srv.Shutdown(shutdownCtx)
	}
}

// -----------------------------------------------------------------------------

func parseUsers(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		user, pass, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if ok && user != "" {
			out[user] = pass
		}
	}
	return out
}
