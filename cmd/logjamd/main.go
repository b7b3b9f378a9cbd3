package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/logjamd/logjamd/pkg/auth"
	"github.com/logjamd/logjamd/pkg/cliargs"
	"github.com/logjamd/logjamd/pkg/config"
	"github.com/logjamd/logjamd/pkg/hostapi"
	"github.com/logjamd/logjamd/pkg/index"
	"github.com/logjamd/logjamd/pkg/log"
	"github.com/logjamd/logjamd/pkg/metrics"
	"github.com/logjamd/logjamd/pkg/registry"
	"github.com/logjamd/logjamd/pkg/server"
	"github.com/logjamd/logjamd/pkg/vault"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode)
	}
}

// exitCode lets runServer report 1 (fatal init failure) or 2
// (bind/listen failure) to main without cobra swallowing the
// distinction in its own error-reporting path.
var exitCode = 1

var rootCmd = &cobra.Command{
	Use:   "logjamd [port] [directory]",
	Short: "logjamd - a scriptable document store",
	Long: `logjamd is a network-accessible document store: documents are
self-describing binary trees, vaults are named collections with
secondary indexes, and a Lua host API drives reads and writes over a
length-prefixed binary wire protocol or a minimal HTTP adapter.`,
	Version: Version,
	Args:    cobra.MaximumNArgs(2),
	RunE:    runServer,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"logjamd version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "Address for the /metrics, /health, /ready, /live endpoints")
	rootCmd.Flags().StringArray("vault", nil, "Vault name to autoload at startup (repeatable)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return cliargs.WrapParseError(err)
	})

	cobra.OnInitialize(initLogging)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

// runServer implements the single `[port] [directory]` entry point:
// positional args override the persisted configuration's
// server/port and server/directory, mirroring the original's own
// "argc > 2 overrides the defaults" behavior.
func runServer(cmd *cobra.Command, args []string) error {
	directory := "."
	if len(args) > 1 {
		directory = args[1]
	}

	cfg, err := config.Load(directory)
	if err != nil {
		exitCode = 1
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg.Directory = directory
	if len(args) > 0 {
		port, err := strconv.Atoi(args[0])
		if err != nil {
			exitCode = 1
			return fmt.Errorf("invalid port %q: %w", args[0], err)
		}
		cfg.Port = port
	}
	if cfg.ServerID == "" {
		cfg.ServerID = "logjamd-1"
	}
	if vaults, err := cmd.Flags().GetStringArray("vault"); err == nil {
		cfg.StorageAutoload = append(cfg.StorageAutoload, vaults...)
	}
	if err := cfg.Save(); err != nil {
		exitCode = 1
		return fmt.Errorf("save configuration: %w", err)
	}

	reg, err := registry.Open(cfg.Directory)
	if err != nil {
		exitCode = 1
		return fmt.Errorf("open registry: %w", err)
	}
	defer reg.Close()

	for _, name := range cfg.StorageAutoload {
		if _, err := reg.Produce(name); err != nil {
			log.Logger.Warn().Str("vault", name).Err(err).Msg("autoload failed")
		}
	}
	if len(cfg.StorageAutoload) == 0 {
		if _, err := reg.Produce("default"); err != nil {
			log.Logger.Warn().Err(err).Msg("default vault setup failed")
		} else if _, err := reg.Configure("default", func(dc *vault.Config) {
			for _, spec := range dc.Indexes {
				if spec.Name == "by_clock" {
					return
				}
			}
			dc.Indexes = append(dc.Indexes, vault.IndexSpec{
				Name: "by_clock", Kind: index.Ordered, Path: "__clock/" + cfg.ServerID, Comparator: index.Int64,
			})
		}); err != nil {
			log.Logger.Warn().Err(err).Msg("default vault setup failed")
		}
	}

	authReg := auth.NewRegistry()
	local := auth.NewLocalProvider()
	authReg.Register(local)

	runtime := hostapi.NewRuntime(reg, cfg.Mode, cfg.ServerID)

	srv := &server.Server{
		Registry:      authReg,
		Executor:      runtime,
		AnonymousHTTP: auth.AnonymousHTTP,
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	listener, err := srv.Listen(addr)
	if err != nil {
		exitCode = 2
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	fmt.Printf("logjamd listening on %s (data directory %s, mode %v)\n", listener.Addr(), cfg.Directory, cfg.Mode)

	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	metrics.RegisterComponent("listener", true, "accepting connections")
	metrics.RegisterComponent("storage", true, "registry open")
	metrics.RegisterComponent("auth", true, "local provider registered")
	metrics.SetVersion(Version)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", metrics.HealthHandler())
		mux.Handle("/ready", metrics.ReadyHandler())
		mux.Handle("/live", metrics.LivenessHandler())
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Logger.Warn().Err(err).Msg("metrics server stopped")
		}
	}()
	fmt.Printf("metrics endpoint: http://%s/metrics\n", metricsAddr)

	collector := metrics.NewCollector(reg)
	collector.Start()
	defer collector.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	fmt.Println("shutting down...")

	if err := listener.Shutdown(); err != nil {
		log.Logger.Warn().Err(err).Msg("listener shutdown reported an error")
	}
	fmt.Println("shutdown complete")
	exitCode = 0
	return nil
}
