// Package googlemaps implements matrix.Provider with the Google Distance
// Matrix API.
package googlemaps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"github.com/kilianp07/ridepool/core/factory"
	"github.com/kilianp07/ridepool/core/matrix"
	"github.com/kilianp07/ridepool/core/model"
)

const (
	maxPoints   = 25
	maxElements = 100
)

var modes = map[string]maps.Mode{
	"car":         maps.TravelModeDriving,
	"small_truck": maps.TravelModeDriving,
	"scooter":     maps.TravelModeDriving,
	"driving":     maps.TravelModeDriving,
	"bike":        maps.TravelModeBicycling,
	"bicycling":   maps.TravelModeBicycling,
	"foot":        maps.TravelModeWalking,
	"walking":     maps.TravelModeWalking,
}

func init() {
	_ = matrix.RegisterProvider("googlemaps", func(conf map[string]any) (matrix.Provider, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return New(c)
	})
}

type Config struct {
	Key string `json:"key"`
	// BaseURL overrides the API host.
	BaseURL           string `json:"base_url"`
	RequestsPerSecond int    `json:"requests_per_second"`
}

// Provider answers matrix requests in chunks of origins so that no call
// exceeds the element quota.
type Provider struct {
	client *maps.Client
}

// New builds a provider. Without a key every call fails with
// matrix.ErrNoCredentials.
func New(cfg Config) (*Provider, error) {
	if cfg.Key == "" {
		return &Provider{}, nil
	}
	opts := []maps.ClientOption{maps.WithAPIKey(cfg.Key)}
	if cfg.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(cfg.BaseURL))
	}
	if cfg.RequestsPerSecond > 0 {
		opts = append(opts, maps.WithRateLimit(cfg.RequestsPerSecond))
	}
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Provider{client: client}, nil
}

func (p *Provider) Matrix(ctx context.Context, points []model.Point, profile string) (matrix.Matrix, error) {
	if p.client == nil {
		return matrix.Matrix{}, matrix.ErrNoCredentials
	}
	mode, ok := modes[profile]
	if !ok {
		return matrix.Matrix{}, &matrix.Error{Kind: matrix.KindProfile, Message: "no travel mode for profile", Profile: profile}
	}
	n := len(points)
	if n > maxPoints {
		return matrix.Matrix{}, &matrix.Error{Kind: matrix.KindOther, Message: fmt.Sprintf("%d points exceed %d", n, maxPoints), Profile: profile}
	}
	locs := make([]string, n)
	for i, pt := range points {
		locs[i] = fmt.Sprintf("%f,%f", pt.Lat, pt.Lon)
	}
	out := matrix.Matrix{Distances: make([][]float64, n), Times: make([][]float64, n), Profile: profile}
	rows := max(1, maxElements/max(n, 1))
	for from := 0; from < n; from += rows {
		to := min(from+rows, n)
		resp, err := p.client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
			Origins:      locs[from:to],
			Destinations: locs,
			Mode:         mode,
		})
		if err != nil {
			return matrix.Matrix{}, classify(err, profile)
		}
		if len(resp.Rows) != to-from {
			return matrix.Matrix{}, &matrix.Error{Kind: matrix.KindOther, Message: fmt.Sprintf("got %d rows, want %d", len(resp.Rows), to-from), Profile: profile}
		}
		for i, row := range resp.Rows {
			dist, times := make([]float64, n), make([]float64, n)
			for j, el := range row.Elements {
				if j >= n {
					break
				}
				if el.Status != "OK" && from+i != j {
					return matrix.Matrix{}, &matrix.Error{Kind: matrix.KindUncomputable, Message: fmt.Sprintf("element %d,%d: %s", from+i, j, el.Status), Profile: profile}
				}
				dist[j] = float64(el.Distance.Meters)
				times[j] = el.Duration.Seconds()
			}
			out.Distances[from+i], out.Times[from+i] = dist, times
		}
	}
	return out, nil
}

func classify(err error, profile string) *matrix.Error {
	msg := err.Error()
	kind := matrix.KindOther
	switch {
	case strings.Contains(msg, "OVER_QUERY_LIMIT"), strings.Contains(msg, "OVER_DAILY_LIMIT"):
		kind = matrix.KindRateLimited
	case strings.Contains(msg, "UNKNOWN_ERROR"):
		kind = matrix.KindServer
	case strings.Contains(msg, "MAX_ELEMENTS_EXCEEDED"), strings.Contains(msg, "INVALID_REQUEST"):
		kind = matrix.KindUncomputable
	}
	return &matrix.Error{Kind: kind, Message: msg, Profile: profile}
}
