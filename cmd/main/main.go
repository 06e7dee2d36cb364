package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"synapse-console/src/config"
	"synapse-console/src/logger"
)

// -----------------------------------------------------------------------------

func main() {

	// 1. Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file, relative to the repository root")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf.LogLevel, conf.Name)
	defer appLogger.Sync()

	loc, err := conf.Location()
	if err != nil {
		appLogger.Critical("Invalid timezone: %v", err)
	}

	// 4. Setup Components
	tokens := setupStorage(conf.MConfig, appLogger)
	defer tokens.Close()

	core := setupCore(conf.MConfig, loc, tokens, appLogger)

	// 5. Start Servers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	servers := startServers(conf.MConfig, core, appLogger)

	// 6. Resume stored session, or log in with env credentials
	core.controller.Start(ctx)
	autoLogin(ctx, conf.MConfig, core, appLogger)

	// 7. Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	core.controller.Shutdown()
	servers.Stop(shutdownCtx)
	appLogger.Info("Shutdown complete.")
}
