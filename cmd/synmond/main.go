package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TLimoges33/Syn-OS-sub017/internal/api"
	"github.com/TLimoges33/Syn-OS-sub017/internal/gate"
	"github.com/TLimoges33/Syn-OS-sub017/internal/monitor"
	"github.com/spf13/cobra"
)

var (
	configFile    string
	apiEnabled    bool
	apiPort       int
	apiHost       string
	logCapacity   int
	eventCapacity int
	minLogLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "synmond",
		Short: "SynOS health monitor - track component liveness, health scores, and system events",
		Run:   runMonitor,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().IntVar(&logCapacity, "log-capacity", 0, "Override log ring capacity")
	rootCmd.PersistentFlags().IntVar(&eventCapacity, "event-capacity", 0, "Override event journal capacity")
	rootCmd.PersistentFlags().StringVar(&minLogLevel, "log-level", "", "Minimum accepted log level")

	rootCmd.PersistentFlags().BoolVar(&apiEnabled, "api", true, "Enable the API server")
	rootCmd.PersistentFlags().IntVar(&apiPort, "api-port", 8090, "API server port")
	rootCmd.PersistentFlags().StringVar(&apiHost, "api-host", "localhost", "API server host")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runMonitor(cmd *cobra.Command, args []string) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	config := monitor.DefaultConfig()
	if configFile != "" {
		loaded, err := monitor.LoadConfig(configFile)
		if err != nil {
			logger.Error("failed to load configuration", "path", configFile, "error", err)
			os.Exit(1)
		}
		config = loaded
		logger.Info("loaded configuration", "path", configFile)
	}

	// Flag overrides win over the file.
	if logCapacity > 0 {
		config.LogCapacity = logCapacity
	}
	if eventCapacity > 0 {
		config.EventCapacity = eventCapacity
	}
	if minLogLevel != "" {
		config.MinLogLevel = minLogLevel
	}

	if err := config.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	mon := monitor.New(config, logger)
	gateway := gate.New(mon, logger)

	var apiServer *api.API
	if apiEnabled {
		apiServer = api.NewAPI(mon, gateway, logger, apiPort, apiHost)
	}

	if err := mon.Start(); err != nil {
		logger.Error("failed to start monitor", "error", err)
		os.Exit(1)
	}

	if apiServer != nil {
		go func() {
			logger.Info("starting API server", "host", apiHost, "port", apiPort)
			if err := apiServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("API server error", "error", err)
			}
		}()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	logger.Info("shutting down")

	if apiServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := apiServer.Stop(ctx); err != nil {
			logger.Error("API server shutdown error", "error", err)
		}
	}

	// Join the sweep goroutine before state goes away.
	mon.Stop()

	logger.Info("shutdown complete")
}
