// Package main provides the Valory bot entry point. Valory relays chat
// messages from registered users to a locally supervised AI backend and
// records every exchange.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lPotatoUwUl/discordbot-valory/internal/backend"
	"github.com/lPotatoUwUl/discordbot-valory/internal/config"
	"github.com/lPotatoUwUl/discordbot-valory/internal/dispatch"
	"github.com/lPotatoUwUl/discordbot-valory/internal/gateway"
	"github.com/lPotatoUwUl/discordbot-valory/internal/logger"
	"github.com/lPotatoUwUl/discordbot-valory/internal/onboarding"
	"github.com/lPotatoUwUl/discordbot-valory/internal/relay"
	"github.com/lPotatoUwUl/discordbot-valory/internal/store"
	"github.com/lPotatoUwUl/discordbot-valory/internal/supervisor"
)

var (
	logLevel string
	logFile  string
	version  = "0.1.0" // Set at build time
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "valory",
	Short: "Valory - AI chat relay bot",
	Long: `Valory gates access to a locally run AI backend behind a per-user
onboarding flow, supervises the backend process, and relays chat messages
while persisting conversation history.`,
	Run: runBot,
}

// runCmd represents the run command (explicit version of default behavior)
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bot",
	Long:  `Run the bot against the console gateway until interrupted.`,
	Run:   runBot,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version of Valory.`,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("Valory v%s\n", version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")

	if err := viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-level flag: %v\n", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-file flag: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func runBot(_ *cobra.Command, _ []string) {
	if err := logger.Configure(logLevel, logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	users, err := buildStore(cfg)
	if err != nil {
		logger.Fatal("failed to connect to user store", "error", err)
	}

	channelID := cfg.ChatChannelID
	if channelID == "" {
		channelID = "console"
	}
	console := gateway.NewConsole(os.Stdin, os.Stdout, "console-user", channelID)

	backendClient := backend.NewClient(cfg.BackendURL, cfg.RequestTimeout, cfg.ProbeTimeout)
	procs := supervisor.New(cfg.PythonBin, cfg.BackendScript, cfg.StopGrace)
	pipeline := relay.NewPipeline(backendClient, users, console, cfg.RelayWorkers)
	dispatcher := dispatch.New(channelID, onboarding.NewService(users), pipeline, procs, console)

	pipeline.Start(ctx)
	logger.Info("bot is running", "channel", channelID, "backend", cfg.BackendURL)

	if err := console.Run(ctx, dispatcher); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("gateway loop ended", "error", err)
	}

	if err := pipeline.Shutdown(); err != nil {
		logger.Error("relay pipeline shutdown failed", "error", err)
	}
	if err := procs.Stop(); err != nil && !errors.Is(err, supervisor.ErrNotRunning) {
		logger.Error("failed to stop backend process", "error", err)
	}
}

func buildStore(cfg *config.Config) (store.UserStore, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory user store, records are lost on restart")
		return store.NewMemoryStore(), nil
	default:
		return store.NewDynamoStore(context.Background(), store.DynamoConfig{
			Table:    cfg.Store.Table,
			Region:   cfg.Store.Region,
			Endpoint: cfg.Store.Endpoint,
		})
	}
}
