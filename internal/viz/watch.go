package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/xpbd2d/internal/collision"
	"github.com/san-kum/xpbd2d/internal/world"
)

const (
	canvasWidth     = 60
	canvasHeight    = 20
	historyCapacity = 300
	maxSubsteps     = 200
)

type TickMsg time.Time

// Model is the bubbletea model behind `watch`. It owns the world it steps;
// the initial scene is kept as a clone for reset.
type Model struct {
	name    string
	initial *world.World
	world   *world.World
	params  world.Params
	dt      float64
	t       float64
	steps   int
	running bool
	err     error

	canvas *Canvas
	camera Camera

	energy   []float64
	residual []float64
}

func NewModel(name string, w *world.World, p world.Params, dt float64) Model {
	m := Model{
		name:    name,
		initial: w.Clone(),
		world:   w,
		params:  p,
		dt:      dt,
		running: true,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
	}
	m.frame()
	m.sample()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "s":
			if !m.running {
				m.step()
			}
		case "+", "=":
			m.params.Substeps = min(m.params.Substeps*2, maxSubsteps)
		case "-", "_":
			m.params.Substeps = max(m.params.Substeps/2, 1)
		case "p":
			if m.params.Pipeline == collision.PipelineGJK {
				m.params.Pipeline = collision.PipelineSAT
			} else {
				m.params.Pipeline = collision.PipelineGJK
			}
		case "u":
			if _, err := m.world.RemoveMostRecent(); err == nil {
				m.frame()
			}
		}
	case tea.MouseMsg:
		m.mouse(msg)
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

// mouse drives the pointer spring. Cell coordinates are offset by the panel
// border and padding.
func (m *Model) mouse(msg tea.MouseMsg) {
	x, y := (msg.X-2)*2+1, (msg.Y-1)*4+2
	p := m.camera.ToWorld(x, y)
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.world.Grab(p)
	case msg.Action == tea.MouseActionMotion:
		m.world.MovePointer(p)
	case msg.Action == tea.MouseActionRelease:
		m.world.Release()
	}
}

func (m *Model) step() {
	if err := m.world.Step(m.dt, m.params); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.t += m.dt
	m.steps++
	if !m.world.IsFinite() {
		m.err = fmt.Errorf("state diverged at t=%.3f", m.t)
		m.running = false
	}
	m.sample()
}

func (m *Model) sample() {
	m.energy = appendCapped(m.energy, m.world.TotalEnergy(m.params))
	m.residual = appendCapped(m.residual, m.world.ConstraintResidualNorm())
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// frame fits the camera to the current scene. It is only called on reset
// so the view stays still while bodies move.
func (m *Model) frame() {
	lo, hi := Bounds(m.world)
	w, h := m.canvas.PixelSize()
	m.camera = FitCamera(lo, hi, w, h)
}

func (m *Model) reset() {
	m.world = m.initial.Clone()
	m.t = 0
	m.steps = 0
	m.err = nil
	m.energy = m.energy[:0]
	m.residual = m.residual[:0]
	m.frame()
	m.sample()
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusError.Render("ERROR")
	case m.running:
		return StatusRunning.Render("RUNNING")
	default:
		return StatusPaused.Render("PAUSED")
	}
}

func (m Model) View() string {
	m.canvas.Clear()
	DrawWorld(m.canvas, m.camera, m.world)
	canvasView := Panel.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(Title.Render(strings.ToUpper(m.name)) + "  " + m.status() + "\n\n")

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.t))
	row("Steps", fmt.Sprintf("%d", m.steps))
	row("Substeps", fmt.Sprintf("%d", m.params.Substeps))
	row("Pipeline", m.params.Pipeline.String())
	row("Bodies", fmt.Sprintf("%d", len(m.world.Bodies)))
	row("Constraints", fmt.Sprintf("%d", len(m.world.Constraints)))
	if len(m.energy) > 0 {
		row("Energy", fmt.Sprintf("%.4f", m.energy[len(m.energy)-1]))
		row("Residual", fmt.Sprintf("%.2e", m.residual[len(m.residual)-1]))
	}
	if m.err != nil {
		s.WriteString("\n" + StatusError.Render(m.err.Error()) + "\n")
	}

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(5), asciigraph.Width(32), asciigraph.Caption("Energy"))
		s.WriteString("\n" + chart + "\n")
	}
	s.WriteString("\n" + Sparkline(m.residual, 32) + "\n" + Subtle.Render("residual") + "\n")

	s.WriteString("\n" + Separator(34) + "\n")
	s.WriteString(KeyHint.Render("space pause  s step  r reset  q quit\n+/- substeps  p pipeline  u undo\nmouse drag grabs a body"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, "  ", s.String())
}
