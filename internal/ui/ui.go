// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-telescope/internal/input"
	"github.com/litescript/ls-telescope/internal/logging"
	"github.com/litescript/ls-telescope/internal/milestone"
	"github.com/litescript/ls-telescope/internal/present"
	"github.com/litescript/ls-telescope/internal/starfield"
	"github.com/litescript/ls-telescope/internal/state"
	"github.com/litescript/ls-telescope/internal/telescope"
)

const (
	// Trigger labels
	labelIdle        = "Focus Telescope"
	labelCalculating = "Calculating..."

	healthInterval = 30 * time.Second
	footerLines    = 1
	historyShown   = 3
)

// Msg types for Bubble Tea
type (
	// FrameMsg advances the starfield by one frame.
	FrameMsg time.Time

	// healthTickMsg schedules the next health check.
	healthTickMsg time.Time

	// calcDoneMsg carries a finished calculation back to the update loop.
	calcDoneMsg struct {
		Outcome telescope.Outcome
	}

	// healthMsg is the result of a health check.
	healthMsg struct {
		status string
		err    error
	}

	// MilestonesLoadedMsg delivers a reloaded milestone catalog.
	MilestonesLoadedMsg struct {
		Milestones []milestone.Milestone
		Err        error
	}
)

// Options carries the model's dependencies.
type Options struct {
	Context       context.Context
	Client        *telescope.Client
	State         *state.Manager
	Presenter     *present.Presenter
	Collector     *input.Collector
	Milestones    []milestone.Milestone
	Field         *starfield.Field
	FrameInterval time.Duration
	Logger        *logging.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	ctx       context.Context
	client    *telescope.Client
	state     *state.Manager
	presenter *present.Presenter
	collector *input.Collector
	logger    *logging.Logger

	// Background
	field         *starfield.Field
	canvas        *starfield.Canvas
	frameInterval time.Duration
	frame         int

	// UI state
	width  int
	height int
	ready  bool

	form         FormModel
	milestones   []milestone.Milestone
	milestoneIdx int
	calculating  bool
	view         present.ResultView
	resultsFocus bool
	alert        string
	statusMsg    string
	health       string
	healthErr    error
}

// New creates a new root UI model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	field := opts.Field
	if field == nil {
		field = starfield.NewField()
	}
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	collector := opts.Collector
	if collector == nil {
		collector = input.NewCollector(telescope.VariantSimple, time.Now())
	}
	ms := opts.Milestones
	if ms == nil {
		ms = milestone.Defaults(collector.Variant)
	}

	return Model{
		ctx:           ctx,
		client:        opts.Client,
		state:         opts.State,
		presenter:     opts.Presenter,
		collector:     collector,
		logger:        logger,
		field:         field,
		canvas:        starfield.NewCanvas(0, 0, starfield.DefaultCellWidth, starfield.DefaultCellHeight),
		frameInterval: interval,
		form:          NewFormModel(collector),
		milestones:    ms,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.frameCmd(),
		m.healthCmd(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()

	case FrameMsg:
		cmds = append(cmds, m.frameCmd())
		m.frame++
		m.field.Step()
		m.field.Draw(m.canvas)

	case healthTickMsg:
		cmds = append(cmds, m.healthCmd())

	case healthMsg:
		m.health = msg.status
		m.healthErr = msg.err
		cmds = append(cmds, healthTick())

	case calcDoneMsg:
		m.handleOutcome(msg.Outcome)

	case MilestonesLoadedMsg:
		if msg.Err != nil {
			m.statusMsg = "Milestones not reloaded: " + msg.Err.Error()
			break
		}
		m.milestones = msg.Milestones
		if m.milestoneIdx >= len(m.milestones) {
			m.milestoneIdx = 0
		}
		m.statusMsg = fmt.Sprintf("Loaded %d milestones", len(m.milestones))

	default:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	// The alert is modal: nothing else reacts until it is dismissed.
	if m.alert != "" {
		switch msg.String() {
		case "enter", "esc", " ":
			m.alert = ""
		}
		return nil
	}

	var cmd tea.Cmd
	switch msg.String() {
	case "tab":
		m.resultsFocus = false
		m.form, cmd = m.form.Next()
		return cmd
	case "shift+tab":
		m.resultsFocus = false
		m.form, cmd = m.form.Prev()
		return cmd
	case "enter":
		if m.form.OnMilestones() {
			return m.triggerMilestone(m.milestoneIdx)
		}
		return m.startCalculation()
	}

	if m.form.OnMilestones() {
		switch msg.String() {
		case "up", "k":
			if m.milestoneIdx > 0 {
				m.milestoneIdx--
			}
		case "down", "j":
			if m.milestoneIdx < len(m.milestones)-1 {
				m.milestoneIdx++
			}
		case "q", "esc":
			return tea.Quit
		}
		return nil
	}

	if m.form.OnTrigger() {
		switch msg.String() {
		case " ":
			return m.startCalculation()
		case "q", "esc":
			return tea.Quit
		}
		return nil
	}

	m.form, cmd = m.form.Update(msg)
	return cmd
}

// startCalculation validates the form and issues a request. While a
// request is running the trigger is disabled.
func (m *Model) startCalculation() tea.Cmd {
	if m.calculating {
		m.statusMsg = "Calculation already in progress"
		return nil
	}

	m.form.Store(m.collector)
	sel, err := m.collector.Collect()
	if err != nil {
		m.showAlert(err)
		return nil
	}

	m.calculating = true
	m.statusMsg = ""
	m.state.Begin()
	m.logger.Debug("calculating for %+v", sel)

	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		return calcDoneMsg{Outcome: client.Calculate(ctx, sel)}
	}
}

// triggerMilestone fills the form from a milestone and calculates.
func (m *Model) triggerMilestone(idx int) tea.Cmd {
	if idx < 0 || idx >= len(m.milestones) {
		return nil
	}
	ms := m.milestones[idx]
	m.form.Store(m.collector)
	if err := m.collector.Apply(ms); err != nil {
		m.showAlert(err)
		return nil
	}
	m.form.Load(m.collector)
	m.logger.Info("milestone %q selected", ms.Name)
	return m.startCalculation()
}

// handleOutcome is the single completion path. The trigger is re-enabled
// before anything else so no branch can leave it stuck.
func (m *Model) handleOutcome(out telescope.Outcome) {
	m.calculating = false

	switch {
	case errors.Is(out.Error, telescope.ErrBusy):
		m.state.Cancel()
		m.statusMsg = "Calculation already in progress"

	case out.Generation != m.client.Latest():
		m.logger.Debug("dropping stale calculation %d (latest %d)", out.Generation, m.client.Latest())

	case errors.Is(out.Error, context.Canceled):
		m.state.Cancel()

	case out.Error != nil:
		m.state.Fail(out.Generation, out.Duration, out.Error)
		m.showAlert(out.Error)

	default:
		view := m.presenter.Present(out.Result, out.Selection)
		ok := m.state.Complete(state.Entry{
			RequestID:  out.RequestID,
			Generation: out.Generation,
			Duration:   out.Duration,
			Selection:  out.Selection,
			Result:     out.Result,
			View:       view,
		})
		if !ok {
			m.logger.Debug("state rejected calculation %d", out.Generation)
			return
		}
		m.view = view
		m.resultsFocus = view.Focus
		m.statusMsg = fmt.Sprintf("Done in %s", out.Duration.Round(time.Millisecond))
	}
}

// showAlert opens the modal. Form problems are shown as written, other
// failures carry an "Error: " prefix.
func (m *Model) showAlert(err error) {
	var verr *input.ValidationError
	if errors.As(err, &verr) {
		m.alert = verr.Message
		return
	}
	m.alert = "Error: " + err.Error()
}

// resize rebuilds the canvas and regenerates the field for the new size.
func (m *Model) resize() {
	rows := m.height - footerLines
	if rows < 0 {
		rows = 0
	}
	m.canvas = starfield.NewCanvas(m.width, rows, starfield.DefaultCellWidth, starfield.DefaultCellHeight)
	m.field.Resize(m.canvas.PixelSize())
	m.field.Draw(m.canvas)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	rows := m.composite(m.renderPanel(), m.canvas.Rows())
	return strings.Join(rows, "\n") + "\n" + m.renderFooter()
}

// composite centers fg over the starfield. Stars stay visible on both sides
// of every foreground line.
func (m Model) composite(fg string, rows int) []string {
	lines := strings.Split(fg, "\n")
	if len(lines) > rows {
		lines = lines[:rows]
	}

	fgWidth := 0
	for _, l := range lines {
		if w := lipgloss.Width(l); w > fgWidth {
			fgWidth = w
		}
	}

	top := (rows - len(lines)) / 2
	left := (m.width - fgWidth) / 2
	if left < 0 {
		left = 0
	}

	out := make([]string, rows)
	for y := 0; y < rows; y++ {
		i := y - top
		if i < 0 || i >= len(lines) {
			out[y] = m.canvas.RenderRow(y, 0, m.width)
			continue
		}
		line := lines[i]
		out[y] = m.canvas.RenderRow(y, 0, left) + line + m.canvas.RenderRow(y, left+lipgloss.Width(line), m.width)
	}
	return out
}

// Calculating reports whether a request is outstanding.
func (m Model) Calculating() bool {
	return m.calculating
}

// Alert returns the open alert message, if any.
func (m Model) Alert() string {
	return m.alert
}

// TriggerLabel returns the trigger's current label.
func (m Model) TriggerLabel() string {
	if m.calculating {
		return labelCalculating
	}
	return labelIdle
}

// Results returns the current results view.
func (m Model) Results() present.ResultView {
	return m.view
}

func (m Model) frameCmd() tea.Cmd {
	return tea.Tick(m.frameInterval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

func healthTick() tea.Cmd {
	return tea.Tick(healthInterval, func(t time.Time) tea.Msg {
		return healthTickMsg(t)
	})
}

func (m Model) healthCmd() tea.Cmd {
	client, ctx := m.client, m.ctx
	if client == nil {
		return nil
	}
	return func() tea.Msg {
		status, err := client.Health(ctx)
		return healthMsg{status: status, err: err}
	}
}

// SendMilestones creates a command that delivers a reloaded catalog.
func SendMilestones(ms []milestone.Milestone, err error) tea.Cmd {
	return func() tea.Msg {
		return MilestonesLoadedMsg{Milestones: ms, Err: err}
	}
}
