// Package graphhopper implements matrix.Provider with the GraphHopper
// Matrix API.
package graphhopper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kilianp07/ridepool/core/factory"
	"github.com/kilianp07/ridepool/core/matrix"
	"github.com/kilianp07/ridepool/core/model"
	"github.com/kilianp07/ridepool/infra/logger"
)

const (
	DefaultURL     = "https://graphhopper.com/api/1"
	DefaultTimeout = 30 * time.Second
)

var rateHeaders = []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "X-RateLimit-Credits"}

func init() {
	_ = matrix.RegisterProvider("graphhopper", func(conf map[string]any) (matrix.Provider, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewClient(c), nil
	})
}

// Config holds the API settings. An empty Key disables the client.
type Config struct {
	URL               string  `json:"url"`
	Key               string  `json:"key"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	Burst             int     `json:"burst"`
}

// Client calls POST /matrix. It is safe for concurrent use.
type Client struct {
	base    string
	key     string
	http    *http.Client
	limiter *rate.Limiter
	log     logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its timeout is kept as is.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient builds a client. Without RequestsPerSecond the limiter lets
// every request through.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	timeout := DefaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	c := &Client{
		base:    strings.TrimRight(cfg.URL, "/"),
		key:     cfg.Key,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, cfg.Burst),
		log:     logger.New("graphhopper"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type matrixRequest struct {
	FromPoints [][2]float64 `json:"from_points"`
	ToPoints   [][2]float64 `json:"to_points"`
	OutArrays  []string     `json:"out_arrays"`
	Vehicle    string       `json:"vehicle"`
}

type matrixResponse struct {
	Distances [][]float64     `json:"distances"`
	Times     [][]float64     `json:"times"`
	Message   string          `json:"message"`
	Hints     json.RawMessage `json:"hints"`
}

// Matrix returns the distance and time matrices between points for the
// given vehicle profile.
func (c *Client) Matrix(ctx context.Context, points []model.Point, profile string) (matrix.Matrix, error) {
	if c.key == "" {
		return matrix.Matrix{}, matrix.ErrNoCredentials
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return matrix.Matrix{}, err
	}
	pts := make([][2]float64, len(points))
	for i, p := range points {
		pts[i] = [2]float64{p.Lon, p.Lat}
	}
	body, err := json.Marshal(matrixRequest{
		FromPoints: pts,
		ToPoints:   pts,
		OutArrays:  []string{"times", "distances"},
		Vehicle:    profile,
	})
	if err != nil {
		return matrix.Matrix{}, err
	}
	endpoint := c.base + "/matrix?" + url.Values{"key": {c.key}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return matrix.Matrix{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return matrix.Matrix{}, &matrix.Error{Kind: matrix.KindOther, Message: err.Error(), Profile: profile}
	}
	defer resp.Body.Close()
	c.logCredits(resp.Header, profile)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return matrix.Matrix{}, &matrix.Error{Kind: matrix.KindOther, Status: resp.StatusCode, Message: err.Error(), Profile: profile}
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return matrix.Matrix{}, &matrix.Error{Kind: matrix.KindRateLimited, Status: resp.StatusCode, Message: string(raw), Profile: profile}
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return matrix.Matrix{}, &matrix.Error{Kind: matrix.KindServer, Status: resp.StatusCode, Message: string(raw), Profile: profile}
	}
	var out matrixResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return matrix.Matrix{}, &matrix.Error{Kind: matrix.KindOther, Status: resp.StatusCode, Message: fmt.Sprintf("decode: %v", err), Profile: profile}
	}
	if resp.StatusCode != http.StatusOK {
		return matrix.Matrix{}, classify(resp.StatusCode, out, profile)
	}
	return matrix.Matrix{Distances: out.Distances, Times: out.Times, Profile: profile}, nil
}

func classify(status int, out matrixResponse, profile string) *matrix.Error {
	kind := matrix.KindOther
	if status == http.StatusBadRequest {
		switch {
		case strings.Contains(out.Message, "profile"):
			kind = matrix.KindProfile
		case len(out.Hints) > 0:
			kind = matrix.KindUncomputable
		}
	}
	return &matrix.Error{Kind: kind, Status: status, Message: out.Message, Profile: profile}
}

func (c *Client) logCredits(h http.Header, profile string) {
	fields := map[string]any{"vehicle": profile}
	for _, k := range rateHeaders {
		if v := h.Get(k); v != "" {
			fields[k] = v
		}
	}
	if len(fields) > 1 {
		c.log.Infow("graphhopper request credits", fields)
	}
}
