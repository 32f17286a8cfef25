package datamodel

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/kilianp07/ridepool/core/logger"
	"github.com/kilianp07/ridepool/core/matrix"
	"github.com/kilianp07/ridepool/core/model"
	"github.com/kilianp07/ridepool/core/monitoring"
	"github.com/kilianp07/ridepool/core/route"
	"github.com/kilianp07/ridepool/core/trace"
	infralogger "github.com/kilianp07/ridepool/infra/logger"
)

const (
	// MaxFixedStopsPerRide bounds the fixed stops a rider may pass through.
	MaxFixedStopsPerRide = 3
	// ProximityRadius is the distance in meters under which a pickup is
	// considered next to a dropoff.
	ProximityRadius = 30.0

	// ProfileGeodesic labels distance mode models.
	ProfileGeodesic = "euclidean_dist"
	// ProfileSynthetic labels time matrices derived from straight lines.
	ProfileSynthetic = "euclidean"

	DefaultProfile         = "scooter"
	DefaultFallbackProfile = "scooter"

	syntheticSpeed = 40000.0 / 3600.0 // m/s
	feetToMeters   = 0.3048
)

// ErrNoCurrentLocation is returned when the first stop is not the vehicle
// position.
var ErrNoCurrentLocation = errors.New("first stop must be the current location")

// Input gathers everything needed to build one model.
type Input struct {
	// Stops starts with the current location.
	Stops model.Route
	Mode  Mode
	// Prefix holds the completed stops of the vehicle route.
	Prefix   model.Route
	Location model.LocationConfig
	Capacity model.Capacity
	// Profile and FallbackProfile default to the builder's profiles.
	Profile         string
	FallbackProfile string
}

// Builder builds data models. It is safe for concurrent use. Once the
// provider reports a rate limit, every later time model built by this
// Builder is synthetic; the flag lives as long as the Builder.
type Builder struct {
	provider        matrix.Provider
	log             logger.Logger
	profile         string
	fallbackProfile string
	limited         atomic.Bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the builder logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// WithDefaultProfiles overrides the profiles used when a vehicle has none.
func WithDefaultProfiles(profile, fallback string) Option {
	return func(b *Builder) {
		if profile != "" {
			b.profile = profile
		}
		if fallback != "" {
			b.fallbackProfile = fallback
		}
	}
}

// NewBuilder returns a Builder backed by provider. A nil provider always
// yields synthetic time matrices.
func NewBuilder(provider matrix.Provider, opts ...Option) *Builder {
	b := &Builder{
		provider:        provider,
		log:             infralogger.NopLogger{},
		profile:         DefaultProfile,
		fallbackProfile: DefaultFallbackProfile,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// RateLimited reports whether the provider answered with a rate limit.
func (b *Builder) RateLimited() bool { return b.limited.Load() }

// Build computes the matrices and constraint tables of in.
func (b *Builder) Build(ctx context.Context, in Input) (*DataModel, error) {
	if len(in.Stops) == 0 || in.Stops[0].Type != model.StopCurrentLocation {
		return nil, ErrNoCurrentLocation
	}
	dm := &DataModel{Nodes: in.Stops.Clone(), Mode: in.Mode}
	pts := points(dm.Nodes)

	switch in.Mode {
	case ModeDistance:
		dm.Distance = GeodesicMatrix(pts)
		dm.Profile = ProfileGeodesic
	case ModeTime:
		profile, fallback := in.Profile, in.FallbackProfile
		if profile == "" {
			profile = b.profile
		}
		if fallback == "" {
			fallback = b.fallbackProfile
		}
		dm.Distance, dm.Time, dm.Profile, dm.Degraded = b.timeMatrix(ctx, pts, in.Location.ID, profile, fallback)
	default:
		return nil, fmt.Errorf("unknown mode %d", in.Mode)
	}
	// tours are open: going back to the current location is free
	zeroReturn(dm.Distance)
	zeroReturn(dm.Time)

	g := route.GroupPickupDeliveries(dm.Nodes, nil)
	dm.Pairs, dm.PickupOf, dm.Lone = g.Pairs, g.PickupOf, g.Lone
	dm.OnboardPassengers, dm.OnboardADA = g.OnboardPassengers, g.OnboardADA
	dm.DropoffLimits = DropoffLimitsFor(in.Prefix, g.Lone)
	dm.CloseGroups = CloseGroupsFor(dm.Nodes, dm.Distance, dm.PickupOf)

	dm.RideCapacity = in.Location.ConcurrentRideLimit
	dm.PassengerCapacity, dm.ADACapacity = in.Capacity.Available()
	if len(dm.Nodes) > 1 {
		dm.KeepFirstStop = dm.Distance[0][1] <= float64(in.Location.InversionRangeFeet)*feetToMeters
	}
	return dm, nil
}

// timeMatrix asks the provider for the primary profile then, on a
// retryable failure, for the fallback profile. Any other outcome yields a
// synthetic matrix flagged as degraded.
func (b *Builder) timeMatrix(ctx context.Context, pts []model.Point, location, profile, fallback string) (dist, times [][]float64, used string, degraded bool) {
	if b.provider != nil {
		for attempt, p := range []string{profile, fallback} {
			if b.limited.Load() || ctx.Err() != nil {
				break
			}
			span := trace.Start(b.log, "matrix", map[string]any{"location_id": location, "profile": p, "points": len(pts)})
			m, err := b.provider.Matrix(ctx, pts, p)
			if err == nil {
				err = m.Validate(len(pts))
			}
			span.Stop(map[string]any{"ok": err == nil})
			if err == nil {
				if m.Profile != "" {
					p = m.Profile
				}
				return copySquare(m.Distances), copySquare(m.Times), p, false
			}
			if errors.Is(err, matrix.ErrNoCredentials) {
				b.log.Debugf("matrix provider disabled: %v", err)
				break
			}
			kind := matrix.KindOf(err)
			if kind == matrix.KindRateLimited {
				b.limited.Store(true)
			}
			b.log.Warnf("matrix request failed for profile %s: %v", p, err)
			monitoring.Capture(err, map[string]string{
				"location_id": location,
				"vehicle":     p,
				"error_type":  kind.String(),
			}, map[string]any{"points": len(pts), "attempt": attempt})
			if attempt > 0 || !matrix.Retryable(err) {
				break
			}
		}
	}
	dist = GeodesicMatrix(pts)
	return dist, SyntheticTimes(dist), ProfileSynthetic, true
}
