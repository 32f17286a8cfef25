package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kilianp07/ridepool/core/dispatch"
	"github.com/kilianp07/ridepool/core/model"
)

// Schema creates the tables read by Postgres.
const Schema = `
CREATE TABLE IF NOT EXISTS locations (
	id text PRIMARY KEY,
	cancel_time int NOT NULL DEFAULT 0,
	queue_time_limit int NOT NULL DEFAULT 0,
	inversion_range_feet int NOT NULL DEFAULT 0,
	eta_increase_limit int NOT NULL DEFAULT 0,
	concurrent_ride_limit int NOT NULL DEFAULT 0,
	fleet_enabled boolean NOT NULL DEFAULT false,
	is_ada boolean NOT NULL DEFAULT false
);
CREATE TABLE IF NOT EXISTS ride_requests (
	id text PRIMARY KEY,
	location_id text NOT NULL,
	passengers int NOT NULL,
	is_ada boolean NOT NULL DEFAULT false,
	pickup_lat double precision NOT NULL,
	pickup_lon double precision NOT NULL,
	dropoff_lat double precision NOT NULL,
	dropoff_lon double precision NOT NULL,
	pickup_fixed_stop_id text NOT NULL DEFAULT '',
	dropoff_fixed_stop_id text NOT NULL DEFAULT '',
	pickup_zone text NOT NULL DEFAULT '',
	dropoff_zone text NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS drivers (
	id text PRIMARY KEY,
	location_id text NOT NULL,
	available boolean NOT NULL DEFAULT false,
	is_ada boolean NOT NULL DEFAULT false,
	lat double precision NOT NULL,
	lon double precision NOT NULL,
	vehicle jsonb,
	active_rides jsonb NOT NULL DEFAULT '[]',
	active_route jsonb NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS drivers_location_idx ON drivers (location_id) WHERE available;
CREATE TABLE IF NOT EXISTS settings (
	name text PRIMARY KEY,
	value jsonb NOT NULL
);
`

const driverColumns = `id, location_id, available, is_ada, lat, lon, vehicle, active_rides, active_route`

// Postgres reads dispatch records through a pgx pool. It never writes
// dispatch decisions.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPool parses dsn, tunes the pool and checks connectivity.
func NewPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres parse dsn: %w", err)
	}
	pcfg.ConnConfig.ConnectTimeout = 5 * time.Second
	pcfg.HealthCheckPeriod = 30 * time.Second
	pcfg.MaxConnIdleTime = 5 * time.Minute
	if maxConns > 0 {
		pcfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate applies Schema.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, Schema)
	return err
}

func (p *Postgres) Close() { p.pool.Close() }

func (p *Postgres) Request(ctx context.Context, id string) (model.Request, error) {
	var r model.Request
	err := p.pool.QueryRow(ctx, `
		SELECT id, location_id, passengers, is_ada, pickup_lat, pickup_lon, dropoff_lat, dropoff_lon,
		       pickup_fixed_stop_id, dropoff_fixed_stop_id, pickup_zone, dropoff_zone
		FROM ride_requests WHERE id = $1`, id).Scan(
		&r.ID, &r.LocationID, &r.Passengers, &r.IsADA,
		&r.Pickup.Lat, &r.Pickup.Lon, &r.Dropoff.Lat, &r.Dropoff.Lon,
		&r.PickupFixedStopID, &r.DropoffFixedStopID, &r.PickupZone, &r.DropoffZone)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Request{}, fmt.Errorf("%w: %s", dispatch.ErrRequestNotFound, id)
	}
	if err != nil {
		return model.Request{}, fmt.Errorf("query request %s: %w", id, err)
	}
	return r, nil
}

// CandidateDrivers loads the available drivers of the request location and
// keeps the eligible ones, closest first.
func (p *Postgres) CandidateDrivers(ctx context.Context, req model.Request) ([]model.Driver, error) {
	loc, err := p.Location(ctx, req.LocationID)
	if errors.Is(err, dispatch.ErrLocationNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx, `SELECT `+driverColumns+`
		FROM drivers WHERE location_id = $1 AND available ORDER BY id`, req.LocationID)
	if err != nil {
		return nil, fmt.Errorf("query drivers: %w", err)
	}
	drivers, err := pgx.CollectRows(rows, scanDriver)
	if err != nil {
		return nil, fmt.Errorf("scan drivers: %w", err)
	}
	return dispatch.Eligible(drivers, req, loc), nil
}

func (p *Postgres) DriverVehicle(ctx context.Context, driverID string) (model.Driver, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1`, driverID)
	if err != nil {
		return model.Driver{}, fmt.Errorf("query driver %s: %w", driverID, err)
	}
	d, err := pgx.CollectExactlyOneRow(rows, scanDriver)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Driver{}, fmt.Errorf("%w: %s", dispatch.ErrDriverNotFound, driverID)
	}
	if err != nil {
		return model.Driver{}, fmt.Errorf("scan driver %s: %w", driverID, err)
	}
	return d, nil
}

func scanDriver(row pgx.CollectableRow) (model.Driver, error) {
	var (
		d       model.Driver
		vehicle []byte
	)
	err := row.Scan(&d.ID, &d.LocationID, &d.Available, &d.IsADA, &d.Position.Lat, &d.Position.Lon,
		&vehicle, &d.ActiveRides, &d.ActiveRoute)
	if err != nil {
		return d, err
	}
	if len(vehicle) > 0 {
		var v model.Vehicle
		if err := json.Unmarshal(vehicle, &v); err != nil {
			return d, fmt.Errorf("decode vehicle of %s: %w", d.ID, err)
		}
		d.Vehicle = &v
	}
	return d, nil
}

func (p *Postgres) Location(ctx context.Context, id string) (model.LocationConfig, error) {
	var l model.LocationConfig
	err := p.pool.QueryRow(ctx, `
		SELECT id, cancel_time, queue_time_limit, inversion_range_feet, eta_increase_limit,
		       concurrent_ride_limit, fleet_enabled, is_ada
		FROM locations WHERE id = $1`, id).Scan(
		&l.ID, &l.CancelTime, &l.QueueTimeLimit, &l.InversionRangeFeet, &l.ETAIncreaseLimit,
		&l.ConcurrentRideLimit, &l.FleetEnabled, &l.IsADA)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.LocationConfig{}, fmt.Errorf("%w: %s", dispatch.ErrLocationNotFound, id)
	}
	if err != nil {
		return model.LocationConfig{}, fmt.Errorf("query location %s: %w", id, err)
	}
	return l, nil
}

// Settings reads the "dispatch" row; a missing row yields the defaults.
func (p *Postgres) Settings(ctx context.Context) (model.Settings, error) {
	var s model.Settings
	err := p.pool.QueryRow(ctx, `SELECT value FROM settings WHERE name = 'dispatch'`).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("query settings: %w", err)
	}
	return s, nil
}
