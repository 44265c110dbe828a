package main

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/talgya/power-sandbox/internal/dynamics"
)

func samplePoints(t *testing.T) []dynamics.Point {
	t.Helper()
	points, err := dynamics.Simulate(dynamics.Params{
		InitialIndividualShare: 0.4,
		InitialCorporateShare:  0.4,
		InitialStateShare:      0.2,
		InitialPetAdoption:     0.3,
		Timesteps:              2,
		StepSize:               0.05,
		RegulationStrength:     0.3,
		SecurityPressure:       0.2,
		InnovationDividend:     0.6,
		PetEfficiency:          0.8,
	})
	if err != nil {
		t.Fatal(err)
	}
	return points
}

func TestWriteSeriesJSON(t *testing.T) {
	points := samplePoints(t)
	path := filepath.Join(t.TempDir(), "series.json")

	if err := writeSeries(path, points); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got []dynamics.Point
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != len(points) {
		t.Fatalf("got %d points, want %d", len(got), len(points))
	}
	if got[0] != points[0] || got[len(got)-1] != points[len(points)-1] {
		t.Errorf("series roundtrip mismatch")
	}
}

func TestWriteSeriesCSV(t *testing.T) {
	points := samplePoints(t)
	path := filepath.Join(t.TempDir(), "series.csv")

	if err := writeSeries(path, points); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != len(points)+1 {
		t.Fatalf("got %d rows, want %d (header + points)", len(records), len(points)+1)
	}
	header := records[0]
	if header[0] != "timestep" || header[1] != "metric" || header[2] != "value" {
		t.Errorf("header = %v", header)
	}
	if records[1][0] != "0" || records[1][1] != string(dynamics.IndividualPower) {
		t.Errorf("first row = %v", records[1])
	}
}
