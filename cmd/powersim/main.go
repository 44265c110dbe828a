// Command powersim runs the three-actor power dynamics sandbox: a one-shot
// simulation written to JSON or CSV, or a live run served over HTTP.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/power-sandbox/internal/api"
	"github.com/talgya/power-sandbox/internal/dynamics"
	"github.com/talgya/power-sandbox/internal/engine"
	"github.com/talgya/power-sandbox/internal/persistence"
	"github.com/talgya/power-sandbox/internal/scenario"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var scenarioPath, presetName, dbPath, outPath string
	var serve bool
	var port int
	flag.StringVar(&scenarioPath, "scenario", "", "scenario YAML file")
	flag.StringVar(&presetName, "preset", "", "load parameters from a stored preset")
	flag.StringVar(&dbPath, "db", "data/power.db", "preset database path")
	flag.StringVar(&outPath, "out", "", "write the point series to this file (.json or .csv)")
	flag.BoolVar(&serve, "serve", false, "serve the HTTP API with a live run")
	flag.IntVar(&port, "port", 8080, "HTTP API port")
	flag.Parse()

	if presetName != "" && scenarioPath != "" {
		slog.Error("use either -preset or -scenario, not both")
		os.Exit(1)
	}

	// ── Preset store ─────────────────────────────────────────────────
	// Opened lazily: one-shot runs from a scenario file don't need it.
	var store *persistence.Store
	openStore := func() *persistence.Store {
		if store != nil {
			return store
		}
		var err error
		store, err = openPresetStore(dbPath)
		if err != nil {
			slog.Error("failed to open preset database", "error", err, "path", dbPath)
			os.Exit(1)
		}
		return store
	}

	// ── Parameters ───────────────────────────────────────────────────
	sc := scenario.Default()
	switch {
	case presetName != "":
		params, err := openStore().GetPreset(presetName)
		if err != nil {
			slog.Error("failed to load preset", "error", err, "name", presetName)
			os.Exit(1)
		}
		sc = scenario.Scenario{Name: presetName, Params: params}
	case scenarioPath != "":
		var err error
		sc, err = scenario.Load(scenarioPath)
		if err != nil {
			slog.Error("failed to load scenario", "error", err, "path", scenarioPath)
			os.Exit(1)
		}
	}

	slog.Info("scenario ready",
		"name", sc.Name,
		"timesteps", sc.Params.Timesteps,
		"step_size", sc.Params.StepSize,
		"regulation", sc.Params.RegulationStrength,
		"security", sc.Params.SecurityPressure,
		"innovation", sc.Params.InnovationDividend,
		"pet_efficiency", sc.Params.PetEfficiency,
	)

	if serve {
		runServer(sc, openStore(), port)
		return
	}
	runOnce(sc, outPath)
}

// openPresetStore creates the database directory if needed and opens the
// preset store.
func openPresetStore(dbPath string) (*persistence.Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dir, err)
		}
	}
	return persistence.Open(dbPath)
}

// runOnce executes the scenario and reports the final power distribution.
func runOnce(sc scenario.Scenario, outPath string) {
	points, err := dynamics.Simulate(sc.Params)
	if err != nil {
		if errors.Is(err, dynamics.ErrInvalidParameter) {
			slog.Error("invalid parameters", "error", err)
		} else {
			slog.Error("simulation failed", "error", err)
		}
		os.Exit(1)
	}

	if outPath != "" {
		if err := writeSeries(outPath, points); err != nil {
			slog.Error("failed to write series", "error", err, "path", outPath)
			os.Exit(1)
		}
		slog.Info("series written", "path", outPath, "points", len(points))
	}

	final := dynamics.FinalSnapshot(points)
	fmt.Printf("Simulated %s timesteps (%s points).\n",
		humanize.Comma(int64(sc.Params.Timesteps)), humanize.Comma(int64(len(points))))
	fmt.Printf("Final distribution at t=%d:\n", final.Timestep)
	fmt.Printf("  Individual power: %.4f\n", final.Individual)
	fmt.Printf("  Corporate power:  %.4f\n", final.Corporate)
	fmt.Printf("  State power:      %.4f\n", final.State)
	fmt.Printf("  PET adoption:     %.4f\n", final.Pet)
}

// runServer hosts the HTTP API around a live run seeded from the scenario.
func runServer(sc scenario.Scenario, store *persistence.Store, port int) {
	defer store.Close()

	st, err := dynamics.NewStepper(sc.Params)
	if err != nil {
		slog.Error("invalid parameters", "error", err)
		os.Exit(1)
	}

	adminKey := os.Getenv("POWERSIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("POWERSIM_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}

	eng := engine.New(st)
	apiServer := &api.Server{
		Eng:      eng,
		Store:    store,
		Port:     port,
		AdminKey: adminKey,
	}
	apiServer.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("power-sandbox live: scenario %q stepping every %s.\n", sc.Name, eng.Interval)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", port)
	fmt.Println("Running... (Ctrl+C to stop)")

	eng.Run()
}
