package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ridepool/app"
	"github.com/kilianp07/ridepool/core/dispatch"
	"github.com/kilianp07/ridepool/core/model"
)

var matchCmd = &cobra.Command{
	Use:   "match <request-id>",
	Short: "Find a driver for a stored ride request",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatch,
}

var routePath string

var refreshCmd = &cobra.Command{
	Use:   "refresh <driver-id>",
	Short: "Reorder the pending stops of a driver",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefresh,
}

func init() {
	refreshCmd.Flags().StringVar(&routePath, "route", "", "JSON file with the route stops")
	_ = refreshCmd.MarkFlagRequired("route")
	rootCmd.AddCommand(matchCmd, refreshCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	return withService(func(ctx context.Context, svc *app.Service) error {
		m, err := svc.Pipeline.Match(ctx, args[0])
		if errors.Is(err, dispatch.ErrNoDriver) {
			return printJSON(cmd.OutOrStdout(), map[string]any{"request_id": args[0], "driver_id": nil})
		}
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), m)
	})
}

func runRefresh(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(routePath)
	if err != nil {
		return err
	}
	var stops model.Route
	if err := json.Unmarshal(data, &stops); err != nil {
		return fmt.Errorf("parse route %s: %w", routePath, err)
	}
	return withService(func(ctx context.Context, svc *app.Service) error {
		out, err := svc.Pipeline.Refresh(ctx, args[0], stops)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	})
}
