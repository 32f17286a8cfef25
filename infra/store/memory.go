// Package store provides dispatch.Store implementations: an in-memory
// store loaded from YAML fixtures, a Postgres store and a Redis
// read-through cache.
package store

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/ridepool/core/dispatch"
	"github.com/kilianp07/ridepool/core/model"
)

// Fixtures is the YAML document read by LoadFixtures.
type Fixtures struct {
	Settings  *model.Settings        `yaml:"settings"`
	Locations []model.LocationConfig `yaml:"locations"`
	Requests  []model.Request        `yaml:"requests"`
	Drivers   []model.Driver         `yaml:"drivers"`
}

// Memory keeps every record in maps. It is safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	settings  *model.Settings
	locations map[string]model.LocationConfig
	requests  map[string]model.Request
	drivers   map[string]model.Driver
}

func NewMemory() *Memory {
	return &Memory{
		locations: make(map[string]model.LocationConfig),
		requests:  make(map[string]model.Request),
		drivers:   make(map[string]model.Driver),
	}
}

// LoadFixtures reads a YAML fixtures file into a new Memory store.
func LoadFixtures(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	m := NewMemory()
	m.Load(f)
	return m, nil
}

// Load adds or replaces the records of f.
func (m *Memory) Load(f Fixtures) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.Settings != nil {
		s := *f.Settings
		m.settings = &s
	}
	for _, l := range f.Locations {
		m.locations[l.ID] = l
	}
	for _, r := range f.Requests {
		m.requests[r.ID] = r
	}
	for _, d := range f.Drivers {
		m.drivers[d.ID] = d
	}
}

func (m *Memory) PutRequest(r model.Request) { m.Load(Fixtures{Requests: []model.Request{r}}) }
func (m *Memory) PutDriver(d model.Driver)   { m.Load(Fixtures{Drivers: []model.Driver{d}}) }

func (m *Memory) Request(_ context.Context, id string) (model.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return model.Request{}, fmt.Errorf("%w: %s", dispatch.ErrRequestNotFound, id)
	}
	return r, nil
}

// CandidateDrivers returns the eligible drivers of the request location,
// closest first. Requests in an unknown location have no candidates.
func (m *Memory) CandidateDrivers(_ context.Context, req model.Request) ([]model.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loc, ok := m.locations[req.LocationID]
	if !ok {
		return nil, nil
	}
	pool := make([]model.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		if d.LocationID == req.LocationID {
			pool = append(pool, d.Clone())
		}
	}
	// map iteration order is random; Eligible keeps ties stable
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	return dispatch.Eligible(pool, req, loc), nil
}

func (m *Memory) DriverVehicle(_ context.Context, driverID string) (model.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drivers[driverID]
	if !ok {
		return model.Driver{}, fmt.Errorf("%w: %s", dispatch.ErrDriverNotFound, driverID)
	}
	return d.Clone(), nil
}

func (m *Memory) Location(_ context.Context, id string) (model.LocationConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.locations[id]
	if !ok {
		return model.LocationConfig{}, fmt.Errorf("%w: %s", dispatch.ErrLocationNotFound, id)
	}
	return l, nil
}

// Settings returns the stored settings or the defaults.
func (m *Memory) Settings(context.Context) (model.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return model.DefaultSettings(), nil
	}
	return *m.settings, nil
}
