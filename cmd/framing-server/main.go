package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/tftframe/framing-server/internal/config"
	"github.com/tftframe/framing-server/internal/logging"
	"github.com/tftframe/framing-server/internal/metrics"
	"github.com/tftframe/framing-server/internal/pipeline"
)

const version = "0.1.0"

var (
	cfgFile  string
	logLevel string
)

var log = logging.L("main")

var rootCmd = &cobra.Command{
	Use:   "framing-server",
	Short: "Multi-pipeline RGB565 framing server",
	Long:  "Captures or synthesizes images per pipeline, diffs them, and streams dirty regions to embedded display clients over TCP.",
	Run: func(cmd *cobra.Command, args []string) {
		if err := run(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("framing-server v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/framing-server/framing-server.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logging.Init(cfg.LogFormat, cfg.LogLevel, os.Stdout)

	registry := prometheus.NewRegistry()
	metricsRegistry := metrics.NewRegistry(registry)

	var httpServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		httpServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			log.Info("metrics endpoint listening", "addr", cfg.MetricsAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server failed", "error", err)
			}
		}()
	}

	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("received shutdown signal")
		close(stop)
	}()

	bindFailures := make(chan error, len(cfg.Pipelines))
	var wg sync.WaitGroup
	for _, pcfg := range cfg.Pipelines {
		pcfg := pcfg
		mgr := pipeline.NewManager(pcfg, metricsRegistry.ForPipeline(pcfg.Name))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := mgr.Run(stop); err != nil {
				log.Error("pipeline failed to start", "pipeline", pcfg.Name, "error", err)
				bindFailures <- err
			}
		}()
	}
	wg.Wait()

	if httpServer != nil {
		_ = httpServer.Close()
	}

	if len(bindFailures) == len(cfg.Pipelines) {
		return fmt.Errorf("no pipeline could bind its listening port")
	}

	log.Info("framing-server shut down cleanly")
	return nil
}
