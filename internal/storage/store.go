package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/xpbd2d/internal/config"
	"github.com/san-kum/xpbd2d/internal/scene"
	"github.com/san-kum/xpbd2d/internal/sim"
	"github.com/san-kum/xpbd2d/internal/world"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	sceneFile    = "scene.json"

	fixedColumns = 3 // time, energy, residual
)

var ErrMalformedStates = errors.New("storage: malformed states.csv")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Scene       string             `json:"scene"`
	Timestamp   time.Time          `json:"timestamp"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Substeps    int                `json:"substeps"`
	Pipeline    string             `json:"pipeline"`
	Gravity     float64            `json:"gravity"`
	Damping     float64            `json:"damping"`
	Bodies      int                `json:"bodies"`
	Constraints int                `json:"constraints"`
	Steps       int                `json:"steps"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding metadata.json, states.csv with one
// row per recorded frame, and scene.json with the final world.
func (s *Store) Save(cfg *config.Config, w *world.World, result *sim.Result) (string, error) {
	runID, runDir, err := s.newRunDir(cfg.Scene)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Scene:       cfg.Scene,
		Timestamp:   time.Now(),
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		Substeps:    cfg.Substeps,
		Pipeline:    cfg.Pipeline,
		Gravity:     cfg.Gravity,
		Damping:     cfg.Damping,
		Bodies:      len(w.Bodies),
		Constraints: len(w.Constraints),
		Steps:       result.StepsTaken,
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, statesFile), result.Frames); err != nil {
		return "", err
	}
	if err := scene.Save(filepath.Join(runDir, sceneFile), w); err != nil {
		return "", err
	}

	return runID, nil
}

// newRunDir creates a fresh directory named after the scene and the current
// second, adding a counter when two runs land in the same second.
func (s *Store) newRunDir(name string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	runID := base
	for i := 2; ; i++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, i)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStates(path string, frames []sim.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	bodies := 0
	if len(frames) > 0 {
		bodies = frames[0].State.Bodies()
	}
	header := []string{"time", "energy", "residual"}
	for i := 0; i < bodies; i++ {
		header = append(header, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i), fmt.Sprintf("theta%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, fr := range frames {
		row := []string{
			strconv.FormatFloat(fr.Time, 'f', 6, 64),
			strconv.FormatFloat(fr.Energy, 'g', 10, 64),
			strconv.FormatFloat(fr.Residual, 'g', 6, 64),
		}
		for _, val := range fr.State {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first. Directories without a
// valid metadata.json are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadScene rebuilds the final world of a run.
func (s *Store) LoadScene(runID string) (*world.World, error) {
	return scene.Load(filepath.Join(s.baseDir, runID, sceneFile))
}

// LoadStates reads states.csv back into frames.
func (s *Store) LoadStates(runID string) ([]sim.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []sim.Frame{}, nil
	}
	if (len(records[0])-fixedColumns)%sim.PoseDim != 0 {
		return nil, fmt.Errorf("%w: %d columns", ErrMalformedStates, len(records[0]))
	}

	frames := make([]sim.Frame, 0, len(records)-1)
	for i, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedStates, i+1, err)
			}
			vals[j] = v
		}
		frames = append(frames, sim.Frame{
			Time:     vals[0],
			Energy:   vals[1],
			Residual: vals[2],
			State:    sim.State(vals[fixedColumns:]),
		})
	}

	return frames, nil
}
