// Package factory instantiates pluggable modules (matrix providers,
// metrics sinks) from configuration. A module is a type name plus a map of
// raw settings that the registered factory decodes with Decode.
//
//	reg := factory.NewRegistry[matrix.Provider]()
//	reg.Register("graphhopper", func(conf map[string]any) (matrix.Provider, error) {
//		var c graphhopper.Config
//		if err := factory.Decode(conf, &c); err != nil {
//			return nil, err
//		}
//		return graphhopper.New(c)
//	})
//	p, err := reg.Create(factory.ModuleConfig{Type: "graphhopper", Conf: map[string]any{"key": "..."}})
package factory
