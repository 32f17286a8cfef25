package dispatch

import (
	"context"
	"errors"

	"github.com/kilianp07/ridepool/core/model"
)

var (
	ErrRequestNotFound  = errors.New("request not found")
	ErrDriverNotFound   = errors.New("driver not found")
	ErrLocationNotFound = errors.New("location not found")
	// ErrNoDriver is returned by Match when no bucket yields a driver.
	ErrNoDriver = errors.New("no driver available")
	// ErrInternal wraps unexpected faults reported at the entrypoints.
	ErrInternal = errors.New("internal dispatch error")
)

// Store is the read-only view of requests, drivers and location settings.
// Implementations return the sentinel errors above when a record is
// missing.
type Store interface {
	Request(ctx context.Context, id string) (model.Request, error)
	// CandidateDrivers returns the available drivers of the request
	// location with their active rides and route.
	CandidateDrivers(ctx context.Context, req model.Request) ([]model.Driver, error)
	// DriverVehicle returns a driver with its vehicle, rides and position.
	DriverVehicle(ctx context.Context, driverID string) (model.Driver, error)
	Location(ctx context.Context, id string) (model.LocationConfig, error)
	Settings(ctx context.Context) (model.Settings, error)
}
