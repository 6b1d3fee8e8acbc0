// Package status generates the last-run status file for moebuild.
//
// After every pipeline run the CLI writes a JSON summary next to the build
// outputs. Editors and CI steps read it to show what failed without parsing
// the tool logs.
package status

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/corey/moebuild/internal/ports"
)

// StatusFile is the filename within build/moe where status JSON is written.
const StatusFile = "last-run.json"

// StatusData is the JSON payload written after a run.
type StatusData struct {
	RunID      string             `json:"run_id"`
	Module     string             `json:"module"`
	StartedAt  time.Time          `json:"started_at"`
	DurationMs int64              `json:"duration_ms"`
	Variant    string             `json:"variant"`
	Succeeded  bool               `json:"succeeded"`
	ExitCode   int                `json:"exit_code"`
	FailedTask string             `json:"failed_task,omitempty"`
	Error      string             `json:"error,omitempty"`
	Summary    string             `json:"summary"`
	Tasks      []ports.TaskRecord `json:"tasks"`
}

// Generate produces a StatusData from a finished run.
func Generate(rec *ports.RunRecord) *StatusData {
	sd := &StatusData{
		RunID:      rec.ID,
		Module:     rec.ModulePath,
		StartedAt:  rec.StartedAt,
		DurationMs: rec.DurationMs,
		Variant:    rec.Mode + "-" + rec.Platform + " (" + rec.ProductType + ")",
		Succeeded:  rec.Succeeded(),
		ExitCode:   rec.ExitCode,
		Error:      rec.Error,
		Tasks:      rec.Tasks,
	}

	ok := 0
	for _, tr := range rec.Tasks {
		switch tr.Status {
		case ports.TaskSucceeded:
			ok++
		case ports.TaskFailed:
			if sd.FailedTask == "" {
				sd.FailedTask = tr.Name
			}
		}
	}
	sd.Summary = fmt.Sprintf("%d/%d tasks ok", ok, len(rec.Tasks))
	return sd
}

// WriteJSON writes the status data as indented JSON. The file is replaced
// atomically so readers never see a partial write.
func WriteJSON(path string, data *StatusData) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".last-run-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(append(b, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadJSON loads a status file written by WriteJSON.
func ReadJSON(path string) (*StatusData, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sd StatusData
	if err := json.Unmarshal(b, &sd); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &sd, nil
}
