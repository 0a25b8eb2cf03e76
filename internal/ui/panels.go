package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-telescope/internal/version"
)

const (
	// Two columns side by side above this width, stacked below it.
	wideLayout  = 100
	columnWidth = 46
)

var (
	accent    = lipgloss.Color("#9D4EDD")
	accentDim = lipgloss.Color("#7B2CBF")
	muted     = lipgloss.Color("60")
	errColor  = lipgloss.Color("#E84A27")
	okColor   = lipgloss.Color("#4ADE80")
	textColor = lipgloss.Color("#E0E0FF")

	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accentDim).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(muted)
	valueStyle = lipgloss.NewStyle().Foreground(textColor).Bold(true)
)

// renderPanel builds the foreground stamped over the starfield.
func (m Model) renderPanel() string {
	if m.alert != "" {
		return m.renderAlert()
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		m.renderFormBox(),
		m.renderTrigger(),
		m.renderMilestones(),
	)

	var right []string
	if m.view.ResultsVisible {
		right = append(right, m.renderResults())
		if m.view.LandmarkVisible {
			right = append(right, m.renderLandmark())
		}
		if h := m.renderHistory(); h != "" {
			right = append(right, h)
		}
	}
	if len(right) == 0 {
		return left
	}
	rightCol := lipgloss.JoinVertical(lipgloss.Left, right...)

	if m.width >= wideLayout {
		return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", rightCol)
	}
	// Stacked: fresh results move to the top until focus returns to the form.
	if m.resultsFocus {
		return lipgloss.JoinVertical(lipgloss.Left, rightCol, left)
	}
	return lipgloss.JoinVertical(lipgloss.Left, left, rightCol)
}

func (m Model) renderTitle() string {
	title := "✦ LS-TELESCOPE ✦"
	runes := []rune(title)

	var b strings.Builder
	for i, r := range runes {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradientColor(i, len(runes)))).Bold(true)
		b.WriteString(style.Render(string(r)))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("How far has the light traveled?"))
	return b.String()
}

// gradientColor returns a hex color along the blue -> purple -> pink title
// gradient.
func gradientColor(col, width int) string {
	x := 0.0
	if width > 1 {
		x = float64(col) / float64(width-1)
	}

	var r, g, b float64
	if x < 0.5 {
		t := x / 0.5
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	} else {
		t := (x - 0.5) / 0.5
		r = 139 + t*(236-139)
		g = 92 + t*(72-92)
		b = 246 + t*(153-246)
	}
	return fmt.Sprintf("#%02X%02X%02X", int(r), int(g), int(b))
}

func (m Model) renderFormBox() string {
	return boxStyle.Width(columnWidth).Render(m.form.View())
}

// renderTrigger draws the calculate button. It is dimmed while a request
// is running.
func (m Model) renderTrigger() string {
	label := m.TriggerLabel()
	style := lipgloss.NewStyle().
		Padding(0, 2).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(accentDim)

	switch {
	case m.calculating:
		style = style.Foreground(muted).Background(lipgloss.Color("236"))
	case m.form.OnTrigger():
		style = style.Background(accent).Bold(true)
	}
	return " " + style.Render("[ "+label+" ]")
}

func (m Model) renderMilestones() string {
	header := titleStyle.Render("Milestones")
	if !m.form.OnMilestones() {
		header = dimStyle.Render("Milestones")
	}

	lines := []string{header}
	if len(m.milestones) == 0 {
		lines = append(lines, dimStyle.Render("  none"))
	}
	for i, ms := range m.milestones {
		name := fmt.Sprintf("%-21s", truncate(ms.Name, 21))
		when := dimStyle.Render(ms.Describe())
		if i == m.milestoneIdx && m.form.OnMilestones() {
			lines = append(lines, titleStyle.Render("▶ "+name)+" "+when)
			continue
		}
		lines = append(lines, "  "+name+" "+when)
	}
	return boxStyle.Width(columnWidth).Render(strings.Join(lines, "\n"))
}

func (m Model) renderResults() string {
	v := m.view
	row := func(label, value string) string {
		return dimStyle.Render(fmt.Sprintf("%-16s", label)) + valueStyle.Render(value)
	}

	lines := []string{
		titleStyle.Render("Light emitted on " + v.DisplayDate),
		"",
		row("Light-years", v.LightYears),
		row("Kilometers", v.Kilometers),
		row("Miles", v.Miles),
	}
	if v.YearsAgo != "" {
		lines = append(lines, row("Years ago", v.YearsAgo))
	}
	if v.TravelTimeVoyager != "" {
		lines = append(lines, row("Voyager 1 time", v.TravelTimeVoyager))
	}

	style := boxStyle.Width(columnWidth)
	if m.resultsFocus {
		style = style.BorderForeground(accent)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m Model) renderLandmark() string {
	lm := m.view.Landmark
	if lm == nil {
		return ""
	}

	lines := []string{
		titleStyle.Render("Nearest landmark"),
		valueStyle.Render(lm.Name) + dimStyle.Render(" ("+lm.ObjectType+")"),
	}
	if lm.Distance != "" {
		lines = append(lines, dimStyle.Render("Distance: ")+lm.Distance+" light-years")
	}
	if lm.Description != "" {
		lines = append(lines, lipgloss.NewStyle().Width(columnWidth-2).Render(lm.Description))
	}
	return boxStyle.Width(columnWidth).Render(strings.Join(lines, "\n"))
}

// renderHistory lists earlier calculations, newest first.
func (m Model) renderHistory() string {
	if m.state == nil {
		return ""
	}
	recent := m.state.Recent(historyShown + 1)
	if len(recent) < 2 {
		return ""
	}
	// The newest entry is already on screen.
	recent = recent[:len(recent)-1]

	lines := []string{dimStyle.Render("Earlier")}
	for i := len(recent) - 1; i >= 0; i-- {
		e := recent[i]
		lines = append(lines, fmt.Sprintf("  %s  %s ly",
			truncate(e.View.DisplayDate, 28), e.View.LightYearsSummary))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
}

func (m Model) renderAlert() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(errColor).
		Padding(1, 3).
		Width(columnWidth)

	body := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Foreground(errColor).Bold(true).Render(m.alert),
		"",
		dimStyle.Render("[enter] OK"),
	)
	return style.Render(body)
}

func (m Model) renderFooter() string {
	errorStyle := lipgloss.NewStyle().Foreground(errColor)
	accentStyle := lipgloss.NewStyle().Foreground(accentDim)

	// Animated spinner frames
	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

	var status string
	switch {
	case m.calculating:
		spinner := spinnerFrames[(m.frame/2)%len(spinnerFrames)]
		status = accentStyle.Render(spinner) + dimStyle.Render(" "+labelCalculating)
	case m.statusMsg != "":
		status = dimStyle.Render(m.statusMsg)
	default:
		status = dimStyle.Render("v" + version.Version)
	}

	var server string
	switch {
	case m.healthErr != nil:
		server = errorStyle.Render("● server unreachable")
	case m.health != "":
		server = lipgloss.NewStyle().Foreground(okColor).Render("●") + dimStyle.Render(" server "+m.health)
	default:
		server = dimStyle.Render("○ server ?")
	}

	var help string
	switch {
	case m.alert != "":
		help = "enter: dismiss"
	case m.form.OnMilestones():
		help = "↑↓: choose | enter: observe | tab: next | q: quit"
	case m.form.OnTrigger():
		help = "enter: observe | tab: next | q: quit"
	default:
		help = "enter: observe | tab: next field | ctrl+c: quit"
	}

	footer := "  " + server + "  " + dimStyle.Render("|") + "  " + status + "  " + dimStyle.Render("|") + "  " + dimStyle.Render(help)
	return lipgloss.NewStyle().MaxWidth(m.width).Render(footer)
}

// truncate shortens s to n display cells with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
