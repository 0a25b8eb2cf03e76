package ui

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"

	"github.com/litescript/ls-telescope/internal/input"
	"github.com/litescript/ls-telescope/internal/milestone"
	"github.com/litescript/ls-telescope/internal/present"
	"github.com/litescript/ls-telescope/internal/starfield"
	"github.com/litescript/ls-telescope/internal/state"
	"github.com/litescript/ls-telescope/internal/telescope"
)

const resultJSON = `{"light_years":56.25,"kilometers":532150000000000,"miles":330660000000000,` +
	`"travel_time_voyager":"970,000 years","nearest_landmark":{"name":"Aldebaran","object_type":"Star",` +
	`"description":"The eye of Taurus.","distance_ly":"65.3"}}`

func newTestServer(t *testing.T, status int, body string) *telescope.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == telescope.HealthPath {
			io.WriteString(w, `{"status":"healthy"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return telescope.NewClient(telescope.WithBaseURL(srv.URL), telescope.WithTimeout(5*time.Second))
}

func newTestModel(t *testing.T, client *telescope.Client, v telescope.Variant) Model {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return New(Options{
		Context:   context.Background(),
		Client:    client,
		State:     state.NewManager(state.DefaultConfig()),
		Presenter: present.New(language.English),
		Collector: input.NewCollector(v, now),
		Field:     starfield.NewField(starfield.WithSeed(1)),
	})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTrigger_SuccessShowsResults(t *testing.T) {
	m := newTestModel(t, newTestServer(t, http.StatusOK, resultJSON), telescope.VariantSimple)

	m, cmd := update(t, m, key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("enter on the date field should start a calculation")
	}
	if !m.Calculating() || m.TriggerLabel() != labelCalculating {
		t.Errorf("calculating = %v, label = %q", m.Calculating(), m.TriggerLabel())
	}

	// A second trigger while in flight sends nothing.
	m, again := update(t, m, key(tea.KeyEnter))
	if again != nil {
		t.Error("trigger should be disabled while calculating")
	}

	m, _ = update(t, m, cmd())

	if m.Calculating() || m.TriggerLabel() != labelIdle {
		t.Errorf("after completion calculating = %v, label = %q", m.Calculating(), m.TriggerLabel())
	}
	view := m.Results()
	if !view.ResultsVisible || !view.LandmarkVisible {
		t.Fatalf("visibility = %v/%v, want both", view.ResultsVisible, view.LandmarkVisible)
	}
	if view.LightYears != "56.250000" {
		t.Errorf("LightYears = %q", view.LightYears)
	}
	if view.Landmark.Name != "Aldebaran" || view.Landmark.Distance != "65.3" {
		t.Errorf("landmark = %+v", view.Landmark)
	}
	if !m.resultsFocus {
		t.Error("results should take focus after a success")
	}
	if !m.state.HasResult() {
		t.Error("state should record the result")
	}
}

func TestTrigger_ServerErrorAlerts(t *testing.T) {
	m := newTestModel(t, newTestServer(t, http.StatusBadRequest, `{"error":"Date out of range"}`), telescope.VariantSimple)

	m, cmd := update(t, m, key(tea.KeyEnter))
	m, _ = update(t, m, cmd())

	if m.Alert() != "Error: Date out of range" {
		t.Errorf("alert = %q", m.Alert())
	}
	if m.Calculating() || m.TriggerLabel() != labelIdle {
		t.Error("trigger should be re-enabled after a failure")
	}
	if m.Results().ResultsVisible {
		t.Error("results should stay hidden after a failure")
	}
	if m.state.Snapshot().LastError == nil {
		t.Error("state should record the error")
	}
}

func TestTrigger_ValidationAlertSendsNothing(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	m := newTestModel(t, telescope.NewClient(telescope.WithBaseURL(srv.URL)), telescope.VariantSimple)
	m.form.inputs[0].SetValue("")

	m, cmd := update(t, m, key(tea.KeyEnter))

	if cmd != nil {
		t.Error("no request should be issued for an empty date")
	}
	if m.Alert() != "Please select a target date." {
		t.Errorf("alert = %q", m.Alert())
	}
	if m.Calculating() {
		t.Error("calculating should stay false")
	}
	if hits != 0 {
		t.Errorf("server hits = %d, want 0", hits)
	}
}

func TestTrigger_ExtendedFieldError(t *testing.T) {
	m := newTestModel(t, newTestServer(t, http.StatusOK, resultJSON), telescope.VariantExtended)
	m.form.inputs[1].SetValue("March")

	m, cmd := update(t, m, key(tea.KeyEnter))

	if cmd != nil {
		t.Error("no request should be issued for a bad month")
	}
	if !strings.Contains(m.Alert(), "month") {
		t.Errorf("alert = %q, want it to name the month field", m.Alert())
	}
}

func TestAlert_IsModal(t *testing.T) {
	m := newTestModel(t, newTestServer(t, http.StatusOK, resultJSON), telescope.VariantSimple)
	m.alert = "Error: boom"

	m, _ = update(t, m, key(tea.KeyTab))
	if !m.form.OnInput() {
		t.Error("tab should not move focus while the alert is open")
	}
	before := m.form.Values()[0]
	m, _ = update(t, m, runes("x"))
	if got := m.form.Values()[0]; got != before {
		t.Errorf("field = %q, typing should not reach the form while the alert is open", got)
	}

	m, _ = update(t, m, key(tea.KeyEnter))
	if m.Alert() != "" {
		t.Errorf("alert = %q after enter, want dismissed", m.Alert())
	}
}

func TestMilestone_AppliesAndCalculates(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = string(b)
		io.WriteString(w, resultJSON)
	}))
	defer srv.Close()

	m := newTestModel(t, telescope.NewClient(telescope.WithBaseURL(srv.URL)), telescope.VariantExtended)

	// Fields, then trigger, then the milestone list.
	for i := 0; i < 5; i++ {
		m, _ = update(t, m, key(tea.KeyTab))
	}
	if !m.form.OnMilestones() {
		t.Fatal("focus should be on the milestone list")
	}
	m, _ = update(t, m, key(tea.KeyDown)) // Founding of Rome

	m, cmd := update(t, m, key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("choosing a milestone should start a calculation")
	}

	want := []string{"-753", "4", "21", "12:00"}
	for i, v := range m.form.Values() {
		if v != want[i] {
			t.Errorf("field %d = %q, want %q", i, v, want[i])
		}
	}

	m, _ = update(t, m, cmd())
	if !strings.Contains(got, `"year":-753`) {
		t.Errorf("request body = %s", got)
	}
	if m.Results().DisplayDate != "April 21, 753 BCE at 12:00" {
		t.Errorf("DisplayDate = %q", m.Results().DisplayDate)
	}
}

func TestMilestone_BCEIntoSimpleFormAlerts(t *testing.T) {
	m := newTestModel(t, newTestServer(t, http.StatusOK, resultJSON), telescope.VariantSimple)
	m.milestones = milestone.Defaults(telescope.VariantExtended)

	cmd := m.triggerMilestone(0)

	if cmd != nil {
		t.Error("a BCE milestone cannot be calculated from the simple form")
	}
	if !strings.Contains(m.Alert(), "Great Pyramid") {
		t.Errorf("alert = %q", m.Alert())
	}
}

func TestOutcome_StaleGenerationDropped(t *testing.T) {
	client := newTestServer(t, http.StatusOK, resultJSON)
	sel := telescope.SelectionParts(1969, 7, 20, 20, 17)
	first := client.Calculate(context.Background(), sel)
	second := client.Calculate(context.Background(), sel)

	m := newTestModel(t, client, telescope.VariantSimple)
	m.calculating = true

	m, _ = update(t, m, calcDoneMsg{Outcome: first})
	if m.Calculating() {
		t.Error("trigger should be re-enabled even for a stale outcome")
	}
	if m.Results().ResultsVisible {
		t.Error("stale outcome should not be shown")
	}

	m, _ = update(t, m, calcDoneMsg{Outcome: second})
	if !m.Results().ResultsVisible {
		t.Error("latest outcome should be shown")
	}
}

func TestOutcome_BusyAndCanceled(t *testing.T) {
	client := newTestServer(t, http.StatusOK, resultJSON)
	m := newTestModel(t, client, telescope.VariantSimple)

	m.calculating = true
	m, _ = update(t, m, calcDoneMsg{Outcome: telescope.Outcome{Error: telescope.ErrBusy}})
	if m.Calculating() || m.Alert() != "" {
		t.Errorf("busy: calculating = %v, alert = %q", m.Calculating(), m.Alert())
	}
	if !strings.Contains(m.statusMsg, "in progress") {
		t.Errorf("status = %q", m.statusMsg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := client.Calculate(ctx, telescope.SelectionParts(2000, 1, 1, 0, 0))
	if !errors.Is(out.Error, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", out.Error)
	}

	m.calculating = true
	m, _ = update(t, m, calcDoneMsg{Outcome: out})
	if m.Calculating() || m.Alert() != "" {
		t.Errorf("canceled: calculating = %v, alert = %q", m.Calculating(), m.Alert())
	}
}

func TestMilestonesLoaded(t *testing.T) {
	m := newTestModel(t, newTestServer(t, http.StatusOK, resultJSON), telescope.VariantSimple)
	m.milestoneIdx = 5

	ms := []milestone.Milestone{{Name: "Launch day", Date: "2021-12-25T12:20"}}
	m, _ = update(t, m, MilestonesLoadedMsg{Milestones: ms})

	if len(m.milestones) != 1 || m.milestoneIdx != 0 {
		t.Errorf("milestones = %d, idx = %d", len(m.milestones), m.milestoneIdx)
	}

	m, _ = update(t, m, MilestonesLoadedMsg{Err: errors.New("bad json")})
	if len(m.milestones) != 1 {
		t.Error("a failed reload should keep the current catalog")
	}
	if !strings.Contains(m.statusMsg, "bad json") {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestFrame_AdvancesAndReschedules(t *testing.T) {
	m := newTestModel(t, newTestServer(t, http.StatusOK, resultJSON), telescope.VariantSimple)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	before := m.field.Stars()

	m, cmd := update(t, m, FrameMsg(time.Now()))

	if cmd == nil {
		t.Error("frame should schedule the next frame")
	}
	if m.frame != 1 {
		t.Errorf("frame = %d, want 1", m.frame)
	}
	after := m.field.Stars()
	moved := false
	for i := range before {
		if before[i].Y != after[i].Y {
			moved = true
			break
		}
	}
	if !moved {
		t.Error("no star moved")
	}
}

func TestView_CompositesOverStarfield(t *testing.T) {
	m := newTestModel(t, newTestServer(t, http.StatusOK, resultJSON), telescope.VariantSimple)
	if m.View() != "Initializing..." {
		t.Error("view before the first size message")
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, healthMsg{status: "healthy"})
	out := m.View()

	lines := strings.Split(out, "\n")
	if len(lines) != 40 {
		t.Errorf("lines = %d, want 40", len(lines))
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w > 120 {
			t.Errorf("line %d width = %d, exceeds terminal", i, w)
		}
	}
	for _, want := range []string{"Focus Telescope", "Target date", "Milestones", "server healthy"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestView_StackedResultsMoveIntoView(t *testing.T) {
	m := newTestModel(t, newTestServer(t, http.StatusOK, resultJSON), telescope.VariantSimple)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 60})

	m, cmd := update(t, m, key(tea.KeyEnter))
	m, _ = update(t, m, cmd())

	out := m.View()
	results := strings.Index(out, "Light emitted")
	trigger := strings.Index(out, "Focus Telescope")
	if results < 0 || trigger < 0 || results > trigger {
		t.Errorf("results at %d, trigger at %d: results should come first", results, trigger)
	}

	m, _ = update(t, m, key(tea.KeyTab))
	out = m.View()
	if strings.Index(out, "Light emitted") < strings.Index(out, "Focus Telescope") {
		t.Error("results should return below the form once focus moves")
	}
}

func TestView_AlertShown(t *testing.T) {
	m := newTestModel(t, newTestServer(t, http.StatusOK, resultJSON), telescope.VariantSimple)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m.alert = "Error: Failed to calculate"

	out := m.View()
	if !strings.Contains(out, "Failed to calculate") || !strings.Contains(out, "enter: dismiss") {
		t.Error("alert and its help should be rendered")
	}
}

func TestHealth_Unreachable(t *testing.T) {
	m := newTestModel(t, newTestServer(t, http.StatusOK, resultJSON), telescope.VariantSimple)
	m, cmd := update(t, m, healthMsg{err: errors.New("connection refused")})
	if cmd == nil {
		t.Error("health result should schedule the next check")
	}
	if !strings.Contains(m.renderFooter(), "unreachable") {
		t.Error("footer should report the server as unreachable")
	}
}

func TestHealthCmd_QueriesServer(t *testing.T) {
	m := newTestModel(t, newTestServer(t, http.StatusOK, resultJSON), telescope.VariantSimple)
	msg := m.healthCmd()()
	hm, ok := msg.(healthMsg)
	if !ok || hm.err != nil || hm.status != "healthy" {
		t.Errorf("health msg = %+v", msg)
	}
}
