package factory

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"
)

// ErrUnknownModule is returned by Create for unregistered module types.
var ErrUnknownModule = errors.New("unknown module type")

// ModuleConfig names a pluggable module and carries its raw settings.
type ModuleConfig struct {
	Type string         `json:"type" yaml:"type"`
	Conf map[string]any `json:"conf" yaml:"conf"`
}

// Factory constructs an implementation of T from raw settings.
type Factory[T any] func(map[string]any) (T, error)

// Registry stores factories keyed by module type.
type Registry[T any] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

// NewRegistry returns an empty factory registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{factories: make(map[string]Factory[T])}
}

// Register adds a factory for the given type name.
func (r *Registry[T]) Register(name string, f Factory[T]) error {
	if f == nil {
		return fmt.Errorf("factory nil for %s", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("factory already registered for %s", name)
	}
	r.factories[name] = f
	return nil
}

// MustRegister is Register for package init functions.
func (r *Registry[T]) MustRegister(name string, f Factory[T]) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Names lists the registered module types in lexical order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Create instantiates the module described by cfg.
func (r *Registry[T]) Create(cfg ModuleConfig) (T, error) {
	r.mu.RLock()
	f, ok := r.factories[cfg.Type]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w %q", ErrUnknownModule, cfg.Type)
	}
	return f(cfg.Conf)
}

// Decode fills out using the json tags of its fields. Strings such as
// "30s" are accepted for time.Duration fields and numeric strings for
// numbers, so settings coming from environment variables decode as well.
func Decode(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}
