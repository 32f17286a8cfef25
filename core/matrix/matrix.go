// Package matrix defines the contract of travel time and distance matrix
// providers.
package matrix

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/ridepool/core/model"
)

// Matrix holds square travel matrices in meters and seconds.
type Matrix struct {
	Distances [][]float64
	Times     [][]float64
	// Profile is the routing profile that produced the matrix.
	Profile string
}

// Provider computes travel matrices between points.
type Provider interface {
	Matrix(ctx context.Context, points []model.Point, profile string) (Matrix, error)
}

// Kind classifies provider failures.
type Kind int

const (
	KindOther Kind = iota
	KindRateLimited
	KindServer
	KindProfile
	KindUncomputable
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindServer:
		return "server_error"
	case KindProfile:
		return "unsupported_profile"
	case KindUncomputable:
		return "uncomputable"
	default:
		return "default"
	}
}

// ErrNoCredentials is returned by providers configured without an API key.
var ErrNoCredentials = errors.New("matrix provider has no credentials")

// Error is a classified provider failure.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Profile string
}

func (e *Error) Error() string {
	return fmt.Sprintf("matrix %s (status %d, profile %s): %s", e.Kind, e.Status, e.Profile, e.Message)
}

// KindOf returns the kind of err, KindOther when err is not an *Error.
func KindOf(err error) Kind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return KindOther
}

// Retryable reports whether a second attempt with the fallback profile may
// succeed.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindServer, KindProfile, KindUncomputable:
		return true
	}
	return false
}

// Validate checks the matrix shape against n points.
func (m Matrix) Validate(n int) error {
	if len(m.Distances) != n || len(m.Times) != n {
		return &Error{Kind: KindOther, Message: fmt.Sprintf("expected %dx%d matrices", n, n), Profile: m.Profile}
	}
	for i := 0; i < n; i++ {
		if len(m.Distances[i]) != n || len(m.Times[i]) != n {
			return &Error{Kind: KindOther, Message: fmt.Sprintf("row %d has wrong length", i), Profile: m.Profile}
		}
	}
	return nil
}
