package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/xpbd2d/internal/config"
	"github.com/san-kum/xpbd2d/internal/scene"
	"github.com/san-kum/xpbd2d/internal/sim"
	"github.com/san-kum/xpbd2d/internal/world"
)

func runScene(t *testing.T, name string) (*config.Config, *world.World, *sim.Result) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Scene = name
	cfg.Duration = 0.1

	w, err := scene.NewRegistry().Build(name)
	if err != nil {
		t.Fatal(err)
	}
	p, err := cfg.Params()
	if err != nil {
		t.Fatal(err)
	}
	simCfg := sim.DefaultConfig()
	simCfg.Dt = cfg.Dt
	simCfg.Duration = cfg.Duration
	simCfg.Params = p

	result, err := sim.New().Run(context.Background(), w, simCfg)
	if err != nil {
		t.Fatal(err)
	}
	result.Metrics["energy_drift"] = result.EnergyDrift
	return cfg, w, result
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	cfg, w, result := runScene(t, "pendulum")
	runID, err := st.Save(cfg, w, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Scene != "pendulum" {
		t.Errorf("expected scene 'pendulum', got '%s'", meta.Scene)
	}
	if meta.Bodies != 3 || meta.Steps != 12 {
		t.Errorf("bodies = %d, steps = %d", meta.Bodies, meta.Steps)
	}
	if _, ok := meta.Metrics["energy_drift"]; !ok {
		t.Error("metrics not saved")
	}

	frames, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(frames) != len(result.Frames) {
		t.Fatalf("expected %d frames, got %d", len(result.Frames), len(frames))
	}
	last := frames[len(frames)-1]
	if last.State.Bodies() != 3 {
		t.Errorf("expected 3 poses per row, got %d", last.State.Bodies())
	}
	want := result.Frames[len(result.Frames)-1]
	if d := last.State.Sub(want.State).Norm(); d > 1e-5 {
		t.Errorf("saved poses differ by %g", d)
	}

	loaded, err := st.LoadScene(runID)
	if err != nil {
		t.Fatalf("load scene failed: %v", err)
	}
	if len(loaded.Bodies) != len(w.Bodies) || len(loaded.Constraints) != len(w.Constraints) {
		t.Error("scene.json does not match the final world")
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	cfg, w, result := runScene(t, "springs")
	first, err := st.Save(cfg, w, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := st.Save(cfg, w, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if first == second {
		t.Errorf("two saves share run id %s", first)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	cfg, w, result := runScene(t, "soft-chain")
	runID, err := st.Save(cfg, w, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "states.csv", "scene.json"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestLoadStatesRejectsBadRows(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	runDir := filepath.Join(tmpDir, "broken")
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	csv := "time,energy,residual,x0,y0,theta0\n0.0,1,0,abc,0,0\n"
	if err := os.WriteFile(filepath.Join(runDir, "states.csv"), []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadStates("broken"); !errors.Is(err, ErrMalformedStates) {
		t.Errorf("err = %v, want ErrMalformedStates", err)
	}
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	cfg, w, result := runScene(t, "pendulum")
	runID, err := st.Save(cfg, w, result)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.Export(&buf, runID); err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.Run.ID != runID {
		t.Errorf("run id = %s", data.Run.ID)
	}
	if data.Steps != len(result.Frames) || len(data.States) != data.Steps {
		t.Errorf("steps = %d, states = %d", data.Steps, len(data.States))
	}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := st.ExportFile(path, runID); err != nil {
		t.Fatal(err)
	}
}
