package matrix

import "github.com/kilianp07/ridepool/core/factory"

// Synthetic selects straight-line estimates without any provider.
const Synthetic = "euclidean"

var providerRegistry = factory.NewRegistry[Provider]()

// RegisterProvider adds a provider factory identified by name.
func RegisterProvider(name string, f factory.Factory[Provider]) error {
	return providerRegistry.Register(name, f)
}

// NewProvider creates the provider described by cfg. The synthetic type
// yields a nil Provider.
func NewProvider(cfg factory.ModuleConfig) (Provider, error) {
	if cfg.Type == "" || cfg.Type == Synthetic {
		return nil, nil
	}
	return providerRegistry.Create(cfg)
}
