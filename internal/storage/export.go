package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/xpbd2d/internal/sim"
)

type ExportData struct {
	Run      RunMetadata `json:"run"`
	Steps    int         `json:"steps"`
	Times    []float64   `json:"times"`
	Energy   []float64   `json:"energy"`
	Residual []float64   `json:"residual"`
	States   [][]float64 `json:"states"`
}

func newExportData(meta *RunMetadata, frames []sim.Frame) ExportData {
	data := ExportData{
		Run:      *meta,
		Steps:    len(frames),
		Times:    make([]float64, len(frames)),
		Energy:   make([]float64, len(frames)),
		Residual: make([]float64, len(frames)),
		States:   make([][]float64, len(frames)),
	}
	for i, f := range frames {
		data.Times[i] = f.Time
		data.Energy[i] = f.Energy
		data.Residual[i] = f.Residual
		data.States[i] = f.State
	}
	return data
}

// Export writes a stored run's metadata and trace as one JSON document.
func (s *Store) Export(out io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadStates(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(meta, frames))
}

// ExportFile is Export into a newly created file at path.
func (s *Store) ExportFile(path, runID string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Export(file, runID); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
