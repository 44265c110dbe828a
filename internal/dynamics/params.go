package dynamics

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameter marks parameter bundles the simulator refuses to run:
// a negative timestep count or a non-positive/non-finite step size. Everything
// else is clamped into range rather than rejected.
var ErrInvalidParameter = errors.New("invalid parameter")

// Params is the immutable input bundle for one simulation run. Shares and
// dial values are expected in [0, 1]; out-of-range values are clamped, and
// the three initial shares are normalized onto the simplex before use.
type Params struct {
	InitialIndividualShare float64 `json:"initial_individual_share" yaml:"initial_individual_share"`
	InitialCorporateShare  float64 `json:"initial_corporate_share" yaml:"initial_corporate_share"`
	InitialStateShare      float64 `json:"initial_state_share" yaml:"initial_state_share"`
	InitialPetAdoption     float64 `json:"initial_pet_adoption" yaml:"initial_pet_adoption"`

	Timesteps int     `json:"timesteps" yaml:"timesteps"`
	StepSize  float64 `json:"step_size" yaml:"step_size"` // Dynamics speed per step.

	// The four policy dials, each held constant for the whole run.
	RegulationStrength float64 `json:"regulation_strength" yaml:"regulation_strength"`
	SecurityPressure   float64 `json:"security_pressure" yaml:"security_pressure"`
	InnovationDividend float64 `json:"innovation_dividend" yaml:"innovation_dividend"`
	PetEfficiency      float64 `json:"pet_efficiency" yaml:"pet_efficiency"`
}

// Validate fails fast on inputs that would make the run meaningless: a
// negative timestep count, or a step size that is zero, negative, or
// non-finite. Returns an error wrapping ErrInvalidParameter.
func (p Params) Validate() error {
	if p.Timesteps < 0 {
		return fmt.Errorf("%w: timesteps must be >= 0, got %d", ErrInvalidParameter, p.Timesteps)
	}
	if math.IsNaN(p.StepSize) || math.IsInf(p.StepSize, 0) || p.StepSize <= 0 {
		return fmt.Errorf("%w: step size must be positive and finite, got %v", ErrInvalidParameter, p.StepSize)
	}
	return nil
}

// sanitized returns a copy with every share and dial clamped into [0, 1].
// Timesteps and StepSize pass through untouched; Validate owns those.
func (p Params) sanitized() Params {
	p.InitialIndividualShare = clamp(p.InitialIndividualShare, 0, 1)
	p.InitialCorporateShare = clamp(p.InitialCorporateShare, 0, 1)
	p.InitialStateShare = clamp(p.InitialStateShare, 0, 1)
	p.InitialPetAdoption = clamp(p.InitialPetAdoption, 0, 1)
	p.RegulationStrength = clamp(p.RegulationStrength, 0, 1)
	p.SecurityPressure = clamp(p.SecurityPressure, 0, 1)
	p.InnovationDividend = clamp(p.InnovationDividend, 0, 1)
	p.PetEfficiency = clamp(p.PetEfficiency, 0, 1)
	return p
}

// normalizedShares maps the initial shares onto the probability simplex.
// When all three are zero there is nothing to normalize, so the run starts
// from the near-uniform 0.34/0.33/0.33 split instead.
func (p Params) normalizedShares() (individual, corporate, state float64) {
	individual = p.InitialIndividualShare
	corporate = p.InitialCorporateShare
	state = p.InitialStateShare

	total := individual + corporate + state
	if total == 0 {
		return 0.34, 0.33, 0.33
	}
	return individual / total, corporate / total, state / total
}
