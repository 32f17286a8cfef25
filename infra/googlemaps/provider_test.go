package googlemaps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridepool/core/matrix"
	"github.com/kilianp07/ridepool/core/model"
)

var pts = []model.Point{{Lat: 40.0, Lon: -73.99}, {Lat: 40.01, Lon: -73.98}}

const okBody = `{"status":"OK","origin_addresses":["a","b"],"destination_addresses":["a","b"],"rows":[
{"elements":[{"status":"OK","distance":{"text":"","value":0},"duration":{"text":"","value":0}},{"status":"OK","distance":{"text":"","value":1500},"duration":{"text":"","value":120}}]},
{"elements":[{"status":"OK","distance":{"text":"","value":1400},"duration":{"text":"","value":110}},{"status":"OK","distance":{"text":"","value":0},"duration":{"text":"","value":0}}]}]}`

func newTestProvider(t *testing.T, h http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	p, err := New(Config{Key: "secret", BaseURL: srv.URL})
	require.NoError(t, err)
	return p
}

func TestMatrix(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "driving", r.URL.Query().Get("mode"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okBody))
	})
	m, err := p.Matrix(context.Background(), pts, "scooter")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1500.0, m.Distances[0][1])
	assert.Equal(t, 110.0, m.Times[1][0])
	assert.NoError(t, m.Validate(2))
}

func TestMatrix_UnknownProfile(t *testing.T) {
	p := newTestProvider(t, func(http.ResponseWriter, *http.Request) {})
	_, err := p.Matrix(context.Background(), pts, "hovercraft")
	assert.Equal(t, matrix.KindProfile, matrix.KindOf(err))
}

func TestMatrix_RateLimited(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OVER_QUERY_LIMIT","error_message":"quota"}`))
	})
	_, err := p.Matrix(context.Background(), pts, "car")
	assert.Equal(t, matrix.KindRateLimited, matrix.KindOf(err))
}

func TestMatrix_NoKey(t *testing.T) {
	p, err := New(Config{})
	require.NoError(t, err)
	_, err = p.Matrix(context.Background(), pts, "car")
	assert.ErrorIs(t, err, matrix.ErrNoCredentials)
}
