package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ridepool/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Answer match and refresh requests received over MQTT",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			return svc.Run(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
