package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/talgya/power-sandbox/internal/dynamics"
)

// writeSeries writes the tidy point series to path. The format follows the
// file extension: .csv for a timestep/metric/value table, anything else JSON.
func writeSeries(path string, points []dynamics.Point) error {
	if filepath.Ext(path) == ".csv" {
		return writeCSV(path, points)
	}
	return writeJSON(path, points)
}

func writeJSON(path string, points []dynamics.Point) error {
	b, err := json.MarshalIndent(points, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal series: %w", err)
	}
	return os.WriteFile(path, b, 0644)
}

func writeCSV(path string, points []dynamics.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestep", "metric", "value"}); err != nil {
		return err
	}
	for _, pt := range points {
		record := []string{
			strconv.Itoa(pt.Timestep),
			string(pt.Metric),
			strconv.FormatFloat(pt.Value, 'g', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
