package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/talgya/power-sandbox/internal/dynamics"
	"github.com/talgya/power-sandbox/internal/persistence"
)

// SimulateResponse is the reply to POST /api/v1/simulate: the tidy point
// series plus the last timestep's quadruple for summary views. The run id
// only identifies the response; runs are never stored.
type SimulateResponse struct {
	RunID  string            `json:"run_id"`
	Points []dynamics.Point  `json:"points"`
	Final  dynamics.Snapshot `json:"final"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var params dynamics.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	points, err := dynamics.Simulate(params)
	if err != nil {
		if errors.Is(err, dynamics.ErrInvalidParameter) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("simulation failed", "error", err)
		http.Error(w, "simulation failed", http.StatusInternalServerError)
		return
	}

	runID := uuid.NewString()
	slog.Info("simulation served",
		"run_id", runID,
		"timesteps", params.Timesteps,
		"points", len(points),
	)
	writeJSON(w, SimulateResponse{
		RunID:  runID,
		Points: points,
		Final:  dynamics.FinalSnapshot(points),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Eng.Snapshot()
	writeJSON(w, map[string]any{
		"name":             "power-sandbox",
		"tick":             snap.Timestep,
		"individual_power": snap.Individual,
		"corporate_power":  snap.Corporate,
		"state_power":      snap.State,
		"pet_adoption":     snap.Pet,
		"speed":            s.Eng.Speed(),
		"running":          s.Eng.Running(),
	})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var params dynamics.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := s.Eng.Reset(params); err != nil {
		if errors.Is(err, dynamics.ErrInvalidParameter) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "reset failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, s.Eng.Snapshot())
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "preset store not available", http.StatusServiceUnavailable)
		return
	}

	names, err := s.Store.ListPresets()
	if err != nil {
		slog.Error("list presets failed", "error", err)
		http.Error(w, "list presets failed", http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, names)
}

func (s *Server) handlePresetDetail(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "preset store not available", http.StatusServiceUnavailable)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/v1/preset/")
	if name == "" {
		http.Error(w, "missing preset name", http.StatusBadRequest)
		return
	}

	params, err := s.Store.GetPreset(name)
	if err != nil {
		if errors.Is(err, persistence.ErrPresetNotFound) {
			http.Error(w, "preset not found", http.StatusNotFound)
			return
		}
		slog.Error("get preset failed", "error", err, "name", name)
		http.Error(w, "get preset failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"name": name, "params": params})
}

func (s *Server) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	if s.Store == nil {
		http.Error(w, "preset store not available", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Name   string          `json:"name"`
		Params dynamics.Params `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := s.Store.SavePreset(req.Name, req.Params); err != nil {
		if errors.Is(err, dynamics.ErrInvalidParameter) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("preset saved", "name", req.Name)
	writeJSON(w, map[string]string{"saved": req.Name})
}
