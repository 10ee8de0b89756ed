package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/xpbd2d/internal/body"
	"github.com/san-kum/xpbd2d/internal/config"
	"github.com/spf13/cobra"
)

func newStepCmd(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addStepFlags(cmd)
	return cmd
}

func TestResolveConfigDefaults(t *testing.T) {
	cmd := newStepCmd(t)
	cfg, err := resolveConfig(cmd, []string{"pendulum"})
	if err != nil {
		t.Fatal(err)
	}
	want := config.DefaultConfig()
	want.Scene = "pendulum"
	if *cfg != *want {
		t.Errorf("got %+v, want %+v", cfg, want)
	}
}

func TestResolveConfigFlagsOverridePreset(t *testing.T) {
	cmd := newStepCmd(t)
	for name, value := range map[string]string{"preset": "coarse", "gravity": "3.5"} {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatal(err)
		}
	}

	cfg, err := resolveConfig(cmd, []string{"pendulum"})
	if err != nil {
		t.Fatal(err)
	}
	p := config.GetPreset("pendulum", "coarse")
	if cfg.Substeps != p.Substeps || cfg.Dt != p.Dt {
		t.Errorf("preset not applied: %+v", cfg)
	}
	if cfg.Gravity != 3.5 {
		t.Errorf("gravity = %v, want 3.5", cfg.Gravity)
	}
}

func TestResolveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("scene: pile\nsubsteps: 4\npipeline: sat\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newStepCmd(t)
	if err := cmd.Flags().Set("config", path); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("substeps", "7"); err != nil {
		t.Fatal(err)
	}

	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scene != "pile" || cfg.Pipeline != "sat" {
		t.Errorf("file values lost: %+v", cfg)
	}
	if cfg.Substeps != 7 {
		t.Errorf("substeps = %d, want flag value 7", cfg.Substeps)
	}
}

func TestResolveConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		flag string
		val  string
	}{
		{"unknown preset", "preset", "nope"},
		{"bad substeps", "substeps", "0"},
		{"bad pipeline", "pipeline", "octree"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newStepCmd(t)
			if err := cmd.Flags().Set(tt.flag, tt.val); err != nil {
				t.Fatal(err)
			}
			if _, err := resolveConfig(cmd, []string{"ragdoll"}); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseShape(t *testing.T) {
	tests := []struct {
		in    string
		kind  body.Kind
		x, y  float64
		theta float64
	}{
		{"disc:0.5@1,2", body.KindDisc, 1, 2, 0},
		{"rect:1x0.5@0.8,0.1,0.3", body.KindRect, 0.8, 0.1, 0.3},
		{"poly:0,0;1,0;0,1@-1,0", body.KindPolygon, -1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			b, err := parseShape(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if b.Geometry.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", b.Geometry.Kind, tt.kind)
			}
			if b.Pos[0] != tt.x || b.Pos[1] != tt.y || math.Abs(b.Theta-tt.theta) > 1e-12 {
				t.Errorf("pose = %v %v", b.Pos, b.Theta)
			}
		})
	}
}

func TestParseShapeErrors(t *testing.T) {
	for _, in := range []string{
		"disc",
		"disc:0.5",
		"disc:abc@0,0",
		"disc:0.5@0",
		"rect:1@0,0",
		"poly:0,0;1@0,0",
		"capsule:1@0,0",
		"disc:-1@0,0",
	} {
		if _, err := parseShape(in); err == nil {
			t.Errorf("parseShape(%q): expected error", in)
		}
	}
}

func TestParseComponent(t *testing.T) {
	for i, name := range componentNames {
		got, err := parseComponent(name)
		if err != nil || got != i {
			t.Errorf("parseComponent(%q) = %d, %v", name, got, err)
		}
	}
	if _, err := parseComponent("z"); err == nil {
		t.Error("expected error for z")
	}
}

func TestParseGrid(t *testing.T) {
	names, ranges, err := parseGrid([]string{"substeps=2,5,10", "contact_compliance=0,1e-4"})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "substeps" || names[1] != "contact_compliance" {
		t.Fatalf("names = %v", names)
	}
	if len(ranges[0]) != 3 || ranges[0][2] != 10 || ranges[1][1] != 1e-4 {
		t.Errorf("ranges = %v", ranges)
	}

	for _, bad := range []string{"substeps", "=1,2", "substeps=a,b"} {
		if _, _, err := parseGrid([]string{bad}); err == nil {
			t.Errorf("parseGrid(%q): expected error", bad)
		}
	}
}
