package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ridepool/app"
	"github.com/kilianp07/ridepool/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "ridepool",
	Short:        "Pooled ride dispatch and routing service",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// withService loads the configuration and runs fn with a service that is
// closed afterwards.
func withService(fn func(ctx context.Context, svc *app.Service) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(ctx, svc)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
