package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/michaelscutari/gridassets/internal/catalog"
	"github.com/michaelscutari/gridassets/internal/logger"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gridassets",
	Short: "Download flag and team logo images for the dashboard",
	Long: `gridassets downloads nationality flags and team logos into the
dashboard's public directory. Logos are scaled to fit and centered on a
transparent canvas so every team renders at the same size.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogger,
}

var (
	logLevel string
	logJSON  bool

	log logger.Logger = logger.NewLogger(nil)

	// loadCatalog supplies the flag and logo tables to every subcommand.
	loadCatalog = catalog.Default
)

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit logs as JSON")

	rootCmd.AddCommand(flagsCmd)
	rootCmd.AddCommand(logosCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(listCmd)
}

func setupLogger(cmd *cobra.Command, args []string) error {
	cfg := logger.DefaultConfig()
	cfg.Level = logger.ParseLevel(logLevel)
	cfg.JSON = logJSON
	log = logger.NewLogger(cfg)
	return nil
}

// signalContext is canceled on the first SIGINT/SIGTERM. A second signal
// exits immediately.
func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}
		fmt.Fprintln(os.Stderr, "\nCanceling... (press Ctrl+C again to force)")
		cancel()
		<-sigCh
		os.Exit(130)
	}()
	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}
