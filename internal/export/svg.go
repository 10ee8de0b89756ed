package export

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/san-kum/xpbd2d/internal/analysis"
	"github.com/san-kum/xpbd2d/internal/constraint"
	"github.com/san-kum/xpbd2d/internal/vec"
	"github.com/san-kum/xpbd2d/internal/viz"
	"github.com/san-kum/xpbd2d/internal/world"
)

const (
	background  = "#0a0a0a"
	bodyStroke  = "#00ff88"
	jointColor  = "#ffaa00"
	trailStroke = "#00ffff"
)

// svgCamera is viz.Camera without the rounding to whole sub-pixels.
type svgCamera struct{ viz.Camera }

func (c svgCamera) point(p vec.Vec2) (float64, float64) {
	d := p.Sub(c.Center).Mul(c.Scale)
	return float64(c.W)/2 + d.X(), float64(c.H)/2 - d.Y()
}

// WorldToSVG draws every body outline, joint anchors and offset links. Each
// trail is drawn as a polyline underneath the bodies; the frame fits both.
func WorldToSVG(w *world.World, trails [][]analysis.Point, width, height int) string {
	lo, hi := viz.Bounds(w)
	for _, t := range trails {
		for _, p := range t {
			lo = vec.New(math.Min(lo.X(), p.X), math.Min(lo.Y(), p.Y))
			hi = vec.New(math.Max(hi.X(), p.X), math.Max(hi.Y(), p.Y))
		}
	}
	cam := svgCamera{viz.FitCamera(lo, hi, width, height)}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	for _, t := range trails {
		if len(t) < 2 {
			continue
		}
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1" stroke-opacity="0.6" d="`, trailStroke)
		for i, p := range t {
			x, y := cam.point(vec.New(p.X, p.Y))
			if i == 0 {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	fmt.Fprintf(&sb, "<g fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\">\n", bodyStroke)
	for i := range w.Bodies {
		b := &w.Bodies[i]
		if b.Geometry.IsDisc() {
			cx, cy := cam.point(b.Pos)
			ex, ey := cam.point(b.LocalToWorld(vec.New(b.Geometry.Radius, 0)))
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, b.Geometry.Radius*cam.Scale)
			fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n", cx, cy, ex, ey)
			continue
		}
		sb.WriteString(`<polygon points="`)
		for j, v := range b.Vertices() {
			x, y := cam.point(v)
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		}
		sb.WriteString("\"/>\n")
	}
	sb.WriteString("</g>\n")

	fmt.Fprintf(&sb, "<g fill=\"%s\" stroke=\"%s\">\n", jointColor, jointColor)
	for i := range w.Constraints {
		k := &w.Constraints[i]
		switch k.Kind {
		case constraint.KindOffsetLink:
			x0, y0 := cam.point(w.Bodies[k.Body1].LocalToWorld(k.R1))
			x1, y1 := cam.point(w.Bodies[k.Body2].LocalToWorld(k.R2))
			fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n", x0, y0, x1, y1)
		case constraint.KindRevolute, constraint.KindPrismaticPoint, constraint.KindPrismaticLine:
			x, y := cam.point(w.Bodies[k.Body1].LocalToWorld(k.R1))
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"2.5\"/>\n", x, y)
		}
	}
	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// TrajectoryToSVG draws a single path scaled to fill the image.
func TrajectoryToSVG(points []analysis.Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := math.Max(maxX-minX, 1e-9)
	rangeY := math.Max(maxY-minY, 1e-9)
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor)

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}

	sb.WriteString(`"/>
</svg>
`)
	return sb.String()
}

// WriteFile writes an SVG document produced by one of the renderers.
func WriteFile(path, svg string) error {
	return os.WriteFile(path, []byte(svg), 0644)
}
