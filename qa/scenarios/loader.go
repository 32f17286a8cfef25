package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/ridepool/core/model"
	"github.com/kilianp07/ridepool/infra/store"
)

// Step is one entrypoint call. Exactly one of Match or Refresh is set.
type Step struct {
	Match   string       `yaml:"match,omitempty"`
	Refresh *RefreshStep `yaml:"refresh,omitempty"`
	Expect  Expected     `yaml:"expect"`
}

type RefreshStep struct {
	Driver string      `yaml:"driver"`
	Route  model.Route `yaml:"route"`
}

// Expected describes the outcome of a step. An empty Driver on a match
// step means no driver must be found.
type Expected struct {
	Driver  string `yaml:"driver,omitempty"`
	Stops   int    `yaml:"stops,omitempty"`
	Outcome string `yaml:"outcome,omitempty"`
	Error   bool   `yaml:"error,omitempty"`
}

type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Fixtures    store.Fixtures `yaml:"fixtures"`
	Steps       []Step         `yaml:"steps"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	for i, st := range sc.Steps {
		if (st.Match == "") == (st.Refresh == nil) {
			return nil, fmt.Errorf("%s step %d: set exactly one of match or refresh", path, i)
		}
	}
	return &sc, nil
}
