package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ridepool/app"
	"github.com/kilianp07/ridepool/core/dispatch/logging"
	"github.com/kilianp07/ridepool/pkg/export"
)

var auditFlags struct {
	kind    string
	driver  string
	request string
	since   time.Duration
	format  string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Export recorded match and refresh decisions",
	Args:  cobra.NoArgs,
	RunE:  runAudit,
}

func init() {
	f := auditCmd.Flags()
	f.StringVar(&auditFlags.kind, "kind", "", "match or refresh")
	f.StringVar(&auditFlags.driver, "driver", "", "driver id, selected or evaluated")
	f.StringVar(&auditFlags.request, "request", "", "request id")
	f.DurationVar(&auditFlags.since, "since", 0, "only records newer than this duration")
	f.StringVar(&auditFlags.format, "format", "json", "json or csv")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, _ []string) error {
	write := export.WriteJSON
	switch auditFlags.format {
	case "json":
	case "csv":
		write = export.WriteCSV
	default:
		return fmt.Errorf("unknown format %q", auditFlags.format)
	}
	q := logging.LogQuery{
		Kind:      logging.Kind(auditFlags.kind),
		DriverID:  auditFlags.driver,
		RequestID: auditFlags.request,
	}
	if auditFlags.since > 0 {
		q.Start = time.Now().Add(-auditFlags.since)
	}
	return withService(func(ctx context.Context, svc *app.Service) error {
		recs, err := svc.Audit().Query(ctx, q)
		if err != nil {
			return err
		}
		return write(cmd.OutOrStdout(), recs)
	})
}
