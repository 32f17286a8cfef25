// Package export writes audit records for offline analysis.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/ridepool/core/dispatch/logging"
)

var csvHeader = []string{
	"timestamp", "kind", "request_id", "location_id", "driver_id",
	"bucket", "outcome", "profile", "degraded", "candidates", "stops", "duration_ms", "error",
}

// WriteJSON writes one record per line.
func WriteJSON(w io.Writer, recs []logging.LogRecord) error {
	enc := json.NewEncoder(w)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV writes the records without their routes; the stops column holds
// the route length.
func WriteCSV(w io.Writer, recs []logging.LogRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range recs {
		rec := []string{
			r.Timestamp.UTC().Format(time.RFC3339),
			string(r.Kind),
			r.RequestID,
			r.LocationID,
			r.DriverID,
			strconv.Itoa(r.Bucket),
			r.Outcome,
			r.Profile,
			strconv.FormatBool(r.Degraded),
			strings.Join(r.Candidates, ";"),
			strconv.Itoa(len(r.Route)),
			strconv.FormatInt(r.DurationMS, 10),
			r.Error,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
