package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/xpbd2d/internal/sim"
)

type Point struct{ X, Y float64 }

// ExtractTrajectory pulls body i's centre out of recorded frames. Frames
// that do not hold body i are skipped.
func ExtractTrajectory(frames []sim.Frame, i int) []Point {
	pts := make([]Point, 0, len(frames))
	for _, f := range frames {
		if i < 0 || i >= f.State.Bodies() {
			continue
		}
		x, y, _ := f.State.Pose(i)
		pts = append(pts, Point{X: x, Y: y})
	}
	return pts
}

// Series extracts one column (0 = x, 1 = y, 2 = θ) of body i.
func Series(frames []sim.Frame, i, component int) []float64 {
	out := make([]float64, 0, len(frames))
	for _, f := range frames {
		k := sim.PoseDim*i + component
		if k < 0 || k >= len(f.State) {
			continue
		}
		out = append(out, f.State[k])
	}
	return out
}

// TrajectoryToASCII draws a path on a width×height character grid with equal
// scale on both axes, so circles stay round.
func TrajectoryToASCII(pts []Point, width, height int) string {
	if len(pts) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := pts[0].X, pts[0].X
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	span *= 1.2
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	minX, minY = cx-span/2, cy-span/2

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	// Floor and wall axes when they are in view.
	if minY <= 0 && minY+span >= 0 {
		row := height - 1 - int(-minY/span*float64(height-1))
		for col := range canvas[row] {
			canvas[row][col] = '─'
		}
	}
	if minX <= 0 && minX+span >= 0 {
		col := int(-minX / span * float64(width-1))
		for row := range canvas {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}

	for i, p := range pts {
		col := int((p.X - minX) / span * float64(width-1))
		row := height - 1 - int((p.Y-minY)/span*float64(height-1))
		if row < 0 || row >= height || col < 0 || col >= width {
			continue
		}
		switch i {
		case 0:
			canvas[row][col] = 'o'
		case len(pts) - 1:
			canvas[row][col] = 'x'
		default:
			if canvas[row][col] != 'o' {
				canvas[row][col] = '•'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

type Summary struct {
	Min, Max, Mean, Std float64
}

func Summarize(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}
	s := Summary{Min: data[0], Max: data[0]}
	for _, v := range data {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		s.Mean += v
	}
	s.Mean /= float64(len(data))
	for _, v := range data {
		d := v - s.Mean
		s.Std += d * d
	}
	s.Std = math.Sqrt(s.Std / float64(len(data)))
	return s
}
