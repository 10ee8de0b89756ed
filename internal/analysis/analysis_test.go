package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/xpbd2d/internal/sim"
)

func sine(freq, dt float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 3 + math.Sin(2*math.Pi*freq*float64(i)*dt)
	}
	return out
}

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		freq float64
		dt   float64
		n    int
	}{
		{2, 1.0 / 120, 1200},
		{0.5, 1.0 / 60, 1000},
		{10, 0.001, 4096},
	}

	for _, tt := range tests {
		got := DominantFrequency(sine(tt.freq, tt.dt, tt.n), tt.dt)
		// One bin of the padded transform.
		bin := 1 / (float64(nextPow2(tt.n)) * tt.dt)
		if math.Abs(got-tt.freq) > bin {
			t.Errorf("f=%v: got %v (bin %v)", tt.freq, got, bin)
		}
	}
}

func TestPowerSpectrumEdgeCases(t *testing.T) {
	if PowerSpectrum(nil) != nil {
		t.Error("expected nil spectrum for empty input")
	}
	if DominantFrequency([]float64{1, 1, 1, 1}, 0.1) != 0 {
		t.Error("constant series should have no dominant frequency")
	}
	if got := len(PowerSpectrum(make([]float64, 100))); got != 64 {
		t.Errorf("spectrum length = %d, want 64", got)
	}
}

func TestExtractTrajectoryAndSeries(t *testing.T) {
	frames := []sim.Frame{
		{Time: 0, State: sim.State{0, 0, 0, 5, 6, 0.1}},
		{Time: 1, State: sim.State{1, 0, 0, 5, 5, 0.2}},
	}

	pts := ExtractTrajectory(frames, 1)
	if len(pts) != 2 || pts[1] != (Point{5, 5}) {
		t.Errorf("trajectory = %v", pts)
	}
	if got := ExtractTrajectory(frames, 7); len(got) != 0 {
		t.Errorf("out-of-range body gave %v", got)
	}

	theta := Series(frames, 1, 2)
	if len(theta) != 2 || theta[1] != 0.2 {
		t.Errorf("theta series = %v", theta)
	}
}

func TestTrajectoryToASCII(t *testing.T) {
	pts := []Point{{-1, 1}, {0, 0.5}, {1, 1}}
	out := TrajectoryToASCII(pts, 20, 10)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("rows = %d, want 10", len(lines))
	}
	if !strings.ContainsRune(out, 'o') || !strings.ContainsRune(out, 'x') {
		t.Error("missing start or end marker")
	}
	if TrajectoryToASCII(nil, 20, 10) != "" {
		t.Error("empty path should render nothing")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{1, 2, 3, 4})
	if s.Min != 1 || s.Max != 4 || s.Mean != 2.5 {
		t.Errorf("summary = %+v", s)
	}
	if math.Abs(s.Std-math.Sqrt(1.25)) > 1e-12 {
		t.Errorf("std = %v", s.Std)
	}
	if Summarize(nil) != (Summary{}) {
		t.Error("empty summary should be zero")
	}
}
