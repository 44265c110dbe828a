package dynamics

import (
	"errors"
	"math"
	"testing"
)

func baseParams() Params {
	return Params{
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
	}
}

func TestSimulatePointCount(t *testing.T) {
	for _, timesteps := range []int{0, 1, 10, 150, 400} {
		p := baseParams()
		p.Timesteps = timesteps
		points, err := Simulate(p)
		if err != nil {
			t.Fatalf("Simulate(timesteps=%d): %v", timesteps, err)
		}
		if want := 4 * (timesteps + 1); len(points) != want {
			t.Errorf("timesteps=%d: got %d points, want %d", timesteps, len(points), want)
		}
	}
}

func TestSimulateEmissionOrder(t *testing.T) {
	p := baseParams()
	p.Timesteps = 5
	points, err := Simulate(p)
	if err != nil {
		t.Fatal(err)
	}

	for i, pt := range points {
		wantTimestep := i / 4
		wantMetric := Metrics[i%4]
		if pt.Timestep != wantTimestep {
			t.Fatalf("point %d: timestep = %d, want %d", i, pt.Timestep, wantTimestep)
		}
		if pt.Metric != wantMetric {
			t.Fatalf("point %d: metric = %q, want %q", i, pt.Metric, wantMetric)
		}
	}
}

func TestSimulateSimplexInvariant(t *testing.T) {
	p := baseParams()
	p.Timesteps = 400

	points, err := Simulate(p)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < len(points); i += 4 {
		sum := points[i].Value + points[i+1].Value + points[i+2].Value
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("timestep %d: share sum = %.15f, want 1", points[i].Timestep, sum)
		}
	}
}

func TestSimulateBounds(t *testing.T) {
	// Sweep extreme dial corners; every emitted value must stay in [0, 1].
	dials := []float64{0, 1}
	for _, reg := range dials {
		for _, sec := range dials {
			for _, innov := range dials {
				for _, eff := range dials {
					p := baseParams()
					p.Timesteps = 200
					p.RegulationStrength = reg
					p.SecurityPressure = sec
					p.InnovationDividend = innov
					p.PetEfficiency = eff

					points, err := Simulate(p)
					if err != nil {
						t.Fatal(err)
					}
					for _, pt := range points {
						if pt.Value < 0 || pt.Value > 1 {
							t.Fatalf("dials (%.0f,%.0f,%.0f,%.0f): %s at t=%d out of range: %v",
								reg, sec, innov, eff, pt.Metric, pt.Timestep, pt.Value)
						}
					}
				}
			}
		}
	}
}

func TestSimulateDeterministic(t *testing.T) {
	p := baseParams()

	first, err := Simulate(p)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Simulate(p)
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("point %d differs between identical runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSimulateZeroTimesteps(t *testing.T) {
	p := baseParams()
	p.Timesteps = 0

	points, err := Simulate(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 4 {
		t.Fatalf("got %d points, want 4", len(points))
	}

	// No update applied: the quadruple is the normalized initial condition.
	want := []float64{0.4, 0.4, 0.2, 0.3}
	for i, pt := range points {
		if pt.Timestep != 0 {
			t.Errorf("point %d: timestep = %d, want 0", i, pt.Timestep)
		}
		if math.Abs(pt.Value-want[i]) > 1e-12 {
			t.Errorf("%s = %v, want %v", pt.Metric, pt.Value, want[i])
		}
	}
}

// TestSimulateSingleStep pins the reference trajectory for one update:
// deltaCorporate = (0.6*(1-0.3*0.8) - 0.3*0.4 - 0.2*0.3) * 0.05 = 0.0138,
// deltaState = (0.2*0.6 + 0.3*0.4 - 0.3*0.1) * 0.05 = 0.0105, and
// deltaIndividual is their negated sum; no clamp triggers, so the shares at
// t=1 are (0.3757, 0.4138, 0.2105) with PET drifting to 0.2989285.
func TestSimulateSingleStep(t *testing.T) {
	p := baseParams()
	p.Timesteps = 1

	points, err := Simulate(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 8 {
		t.Fatalf("got %d points, want 8", len(points))
	}

	want := []struct {
		metric Metric
		value  float64
	}{
		{IndividualPower, 0.4},
		{CorporatePower, 0.4},
		{StatePower, 0.2},
		{PetAdoption, 0.3},
		{IndividualPower, 0.3757},
		{CorporatePower, 0.4138},
		{StatePower, 0.2105},
		{PetAdoption, 0.2989285},
	}
	for i, w := range want {
		if points[i].Metric != w.metric {
			t.Fatalf("point %d: metric = %q, want %q", i, points[i].Metric, w.metric)
		}
		if math.Abs(points[i].Value-w.value) > 1e-9 {
			t.Errorf("t=%d %s = %.10f, want %.10f", points[i].Timestep, w.metric, points[i].Value, w.value)
		}
	}
}

// TestStepAllSharesSaturatedAtZero exercises the degenerate branch directly:
// when every share sits at zero and nothing moves them, renormalization must
// be skipped — dividing by the zero total would turn every share into NaN —
// and the zeros carry forward step after step. All dials and PET adoption
// must be zero too: any nonzero PET level drags state power and hands the
// negated delta to individuals, which would lift the total off zero.
func TestStepAllSharesSaturatedAtZero(t *testing.T) {
	st := &Stepper{
		params: Params{Timesteps: 10, StepSize: 0.05},
	}

	for i := 0; i < 3; i++ {
		st.Step()
		snap := st.Snapshot()
		if snap.Individual != 0 || snap.Corporate != 0 || snap.State != 0 {
			t.Fatalf("step %d: shares = (%v, %v, %v), want all zero",
				i+1, snap.Individual, snap.Corporate, snap.State)
		}
		if math.IsNaN(snap.Pet) || snap.Pet != 0 {
			t.Fatalf("step %d: pet = %v, want 0", i+1, snap.Pet)
		}
	}
}

// TestStepRecoversFromZeroTotal: once any pressure pushes a share off zero,
// renormalization resumes and the simplex is restored.
func TestStepRecoversFromZeroTotal(t *testing.T) {
	// PET adoption at 1 drags state power down, which hands the (negated)
	// delta to individuals: the only nonzero share after the step.
	st := &Stepper{
		params: Params{Timesteps: 10, StepSize: 0.05},
		pet:    1,
	}

	st.Step()
	snap := st.Snapshot()
	if math.Abs(snap.Individual-1) > 1e-12 {
		t.Errorf("individual share = %v, want 1 after renormalization", snap.Individual)
	}
	if snap.Corporate != 0 || snap.State != 0 {
		t.Errorf("corporate/state = (%v, %v), want zero", snap.Corporate, snap.State)
	}
}

func TestSimulateInvalidParams(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"negative timesteps", func(p *Params) { p.Timesteps = -1 }},
		{"zero step size", func(p *Params) { p.StepSize = 0 }},
		{"negative step size", func(p *Params) { p.StepSize = -0.05 }},
		{"NaN step size", func(p *Params) { p.StepSize = math.NaN() }},
		{"infinite step size", func(p *Params) { p.StepSize = math.Inf(1) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := baseParams()
			tc.mutate(&p)
			points, err := Simulate(p)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("Simulate() error = %v, want ErrInvalidParameter", err)
			}
			if points != nil {
				t.Errorf("got partial output (%d points) alongside error", len(points))
			}
		})
	}
}

func TestFinalSnapshot(t *testing.T) {
	p := baseParams()
	p.Timesteps = 1

	points, err := Simulate(p)
	if err != nil {
		t.Fatal(err)
	}

	snap := FinalSnapshot(points)
	if snap.Timestep != 1 {
		t.Errorf("timestep = %d, want 1", snap.Timestep)
	}
	if math.Abs(snap.Individual-0.3757) > 1e-9 ||
		math.Abs(snap.Corporate-0.4138) > 1e-9 ||
		math.Abs(snap.State-0.2105) > 1e-9 {
		t.Errorf("final shares = (%v, %v, %v)", snap.Individual, snap.Corporate, snap.State)
	}

	if got := (FinalSnapshot(nil)); got != (Snapshot{}) {
		t.Errorf("FinalSnapshot(nil) = %+v, want zero", got)
	}
}
