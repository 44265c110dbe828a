// Package scenario loads named simulation parameter sets from YAML files.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/power-sandbox/internal/dynamics"
)

// Scenario is a named parameter set for one run.
type Scenario struct {
	Name   string          `yaml:"name"`
	Params dynamics.Params `yaml:"params"`
}

// Default returns the baseline scenario: an even individual/corporate split
// with a smaller state share, moderate regulation, and a strong innovation
// dividend.
func Default() Scenario {
	return Scenario{
		Name: "baseline",
		Params: dynamics.Params{
			InitialIndividualShare: 0.4,
			InitialCorporateShare:  0.4,
			InitialStateShare:      0.2,
			InitialPetAdoption:     0.3,
			Timesteps:              150,
			StepSize:               0.05,
			RegulationStrength:     0.3,
			SecurityPressure:       0.2,
			InnovationDividend:     0.6,
			PetEfficiency:          0.8,
		},
	}
}

// Load reads a scenario from a YAML file. Fields absent from the file keep
// their Default values, so a scenario only has to name the dials it changes.
// The loaded parameters are validated before being returned.
func Load(path string) (Scenario, error) {
	sc := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	if err := yaml.Unmarshal(b, &sc); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := sc.Params.Validate(); err != nil {
		return Scenario{}, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}
