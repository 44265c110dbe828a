// Package dynamics implements the three-actor power transfer model: decision
// power shifts between Individuals, Corporations, and the State under four
// constant policy dials, while privacy-enhancing-technology (PET) adoption
// drifts in response. The update rule is a deterministic discrete-time
// recurrence; one run is a pure function of its parameters.
package dynamics

// Coupling weights of the update rule. Power deltas move share between the
// actors; PET deltas move the adoption level.
const (
	regulationCorporateDrag = 0.4 // Regulation strength suppressing corporate gains.
	securityCorporateDrag   = 0.3 // Security pressure suppressing corporate gains.
	securityStateGain       = 0.6 // Security pressure feeding state power.
	regulationStateGain     = 0.4 // Regulation strength feeding state power.
	petStateDrag            = 0.1 // PET adoption eroding state surveillance leverage.
	regulationPetGain       = 0.5 // Regulation pushing PET adoption up.
	sharePetCoupling        = 0.3 // Individual share pushes PET up; corporate share pulls it down.
	innovationPetDrag       = 0.2 // Innovation dividend discouraging PET adoption.
	securityPetDrag         = 0.2 // Security pressure discouraging PET adoption.
)

// Metric identifies one of the four emitted time series.
type Metric string

const (
	IndividualPower Metric = "IndividualPower"
	CorporatePower  Metric = "CorporatePower"
	StatePower      Metric = "StatePower"
	PetAdoption     Metric = "PetAdoption"
)

// Metrics lists all series in emission order.
var Metrics = [4]Metric{IndividualPower, CorporatePower, StatePower, PetAdoption}

// Point is one sample of one metric at one timestep. A run emits the four
// metrics per timestep in Metrics order, timesteps ascending.
type Point struct {
	Timestep int     `json:"timestep"`
	Metric   Metric  `json:"metric"`
	Value    float64 `json:"value"`
}

// Snapshot is the state of a run at a single timestep.
type Snapshot struct {
	Timestep   int     `json:"timestep"`
	Individual float64 `json:"individual_power"`
	Corporate  float64 `json:"corporate_power"`
	State      float64 `json:"state_power"`
	Pet        float64 `json:"pet_adoption"`
}

// Stepper holds the mutable state of a single run: the three power shares
// (summing to 1 after every step), the PET adoption level, and the timestep
// counter. Each run owns its Stepper exclusively; independent runs may step
// concurrently.
type Stepper struct {
	params Params

	individual float64
	corporate  float64
	state      float64
	pet        float64
	tick       int
}

// NewStepper validates and sanitizes the parameters and seeds the run state
// from them. Initial shares are normalized onto the simplex; all dial values
// are clamped into [0, 1].
func NewStepper(p Params) (*Stepper, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = p.sanitized()
	individual, corporate, state := p.normalizedShares()
	return &Stepper{
		params:     p,
		individual: individual,
		corporate:  corporate,
		state:      state,
		pet:        p.InitialPetAdoption,
	}, nil
}

// Params returns the (sanitized) parameters the run was seeded with.
func (st *Stepper) Params() Params { return st.params }

// Tick returns the number of steps applied so far.
func (st *Stepper) Tick() int { return st.tick }

// Snapshot returns the current state without advancing it.
func (st *Stepper) Snapshot() Snapshot {
	return Snapshot{
		Timestep:   st.tick,
		Individual: st.individual,
		Corporate:  st.corporate,
		State:      st.state,
		Pet:        st.pet,
	}
}

// Step applies one update of the recurrence.
//
// The three power deltas are zero-sum by construction, but each share is
// clamped to [0, 1] independently, which can break the zero-sum property at
// the boundaries; renormalizing afterwards restores the simplex. This
// clamp-then-normalize ordering is part of the model's reference behavior,
// not an accident. When every share saturates at zero the renormalization is
// skipped and the zeros propagate until the pressures reverse.
func (st *Stepper) Step() {
	p := st.params

	deltaCorporate := (p.InnovationDividend*(1-st.pet*p.PetEfficiency) -
		p.RegulationStrength*regulationCorporateDrag -
		p.SecurityPressure*securityCorporateDrag) * p.StepSize

	deltaState := (p.SecurityPressure*securityStateGain +
		p.RegulationStrength*regulationStateGain -
		st.pet*petStateDrag) * p.StepSize

	deltaIndividual := -deltaCorporate - deltaState

	corporate := clamp(st.corporate+deltaCorporate, 0, 1)
	state := clamp(st.state+deltaState, 0, 1)
	individual := clamp(st.individual+deltaIndividual, 0, 1)

	if total := individual + corporate + state; total > 0 {
		individual /= total
		corporate /= total
		state /= total
	}

	// PET adoption reacts to this step's shares, not the previous step's.
	deltaPet := (p.RegulationStrength*regulationPetGain +
		individual*sharePetCoupling -
		p.InnovationDividend*innovationPetDrag -
		p.SecurityPressure*securityPetDrag -
		corporate*sharePetCoupling) * p.StepSize

	st.individual = individual
	st.corporate = corporate
	st.state = state
	st.pet = clamp(st.pet+deltaPet, 0, 1)
	st.tick++
}

// emit appends the four metric points for the current state.
func (st *Stepper) emit(points []Point) []Point {
	return append(points,
		Point{Timestep: st.tick, Metric: IndividualPower, Value: st.individual},
		Point{Timestep: st.tick, Metric: CorporatePower, Value: st.corporate},
		Point{Timestep: st.tick, Metric: StatePower, Value: st.state},
		Point{Timestep: st.tick, Metric: PetAdoption, Value: st.pet},
	)
}

// Simulate runs the full recurrence and returns the tidy point series:
// exactly 4*(timesteps+1) points, where the quadruple at timestep 0 is the
// normalized initial condition and the quadruple at timestep t reflects t
// applied updates (each snapshot is emitted before that iteration's update).
// The function is pure; identical parameters yield identical output.
func Simulate(p Params) ([]Point, error) {
	st, err := NewStepper(p)
	if err != nil {
		return nil, err
	}

	points := make([]Point, 0, 4*(p.Timesteps+1))
	for t := 0; t <= p.Timesteps; t++ {
		points = st.emit(points)
		st.Step()
	}
	return points, nil
}

// FinalSnapshot extracts the last timestep's quadruple from a point series
// produced by Simulate. The zero Snapshot is returned for an empty series.
func FinalSnapshot(points []Point) Snapshot {
	if len(points) < 4 {
		return Snapshot{}
	}
	last := points[len(points)-4:]
	snap := Snapshot{Timestep: last[0].Timestep}
	for _, pt := range last {
		switch pt.Metric {
		case IndividualPower:
			snap.Individual = pt.Value
		case CorporatePower:
			snap.Corporate = pt.Value
		case StatePower:
			snap.State = pt.Value
		case PetAdoption:
			snap.Pet = pt.Value
		}
	}
	return snap
}
