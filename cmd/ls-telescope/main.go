// Command ls-telescope shows how far light emitted at a chosen moment has traveled.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-telescope/internal/config"
	"github.com/litescript/ls-telescope/internal/input"
	"github.com/litescript/ls-telescope/internal/logging"
	"github.com/litescript/ls-telescope/internal/milestone"
	"github.com/litescript/ls-telescope/internal/present"
	"github.com/litescript/ls-telescope/internal/starfield"
	"github.com/litescript/ls-telescope/internal/state"
	"github.com/litescript/ls-telescope/internal/telescope"
	"github.com/litescript/ls-telescope/internal/ui"
	"github.com/litescript/ls-telescope/internal/version"
)

// CLI flags for headless mode
var (
	dateFlag       string
	yearFlag       int
	monthFlag      int
	dayFlag        int
	timeFlag       string
	milestoneFlag  string
	listMilestones bool
	jsonMode       bool
	exportPath     string
	beepMode       bool
)

func main() {
	cfg := config.Load()

	// Flags default to the environment, so anything given here wins.
	flag.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "Calculation API base URL")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Request timeout (e.g., 10s)")
	flag.StringVar(&cfg.Variant, "variant", cfg.Variant, "Date form: simple or extended")
	flag.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale for numbers and dates (e.g., en-US, de)")
	flag.StringVar(&cfg.MilestonesFile, "milestones", cfg.MilestonesFile, "JSON milestones file (reloaded on change)")
	flag.DurationVar(&cfg.FrameInterval, "frame-interval", cfg.FrameInterval, "Starfield frame interval")
	flag.Float64Var(&cfg.StarDensity, "density", cfg.StarDensity, "Virtual pixels² per star")
	flag.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Write logs to a rotated file")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	flag.StringVar(&dateFlag, "date", "", "Calculate for a date-time (2006-01-02T15:04) and exit")
	flag.IntVar(&yearFlag, "year", 0, "Calculate for a year (negative for BCE) and exit")
	flag.IntVar(&monthFlag, "month", 1, "Month for --year")
	flag.IntVar(&dayFlag, "day", 1, "Day for --year")
	flag.StringVar(&timeFlag, "time", input.DefaultTime, "Time (HH:MM) for --year")
	flag.StringVar(&milestoneFlag, "milestone", "", "Calculate for a named milestone and exit")
	flag.BoolVar(&listMilestones, "list-milestones", false, "List milestones and exit")
	flag.BoolVar(&jsonMode, "json", false, "Print JSON instead of a text summary")
	flag.StringVar(&exportPath, "export", "", "Also write the JSON result to a file")
	flag.BoolVar(&beepMode, "beep", false, "Beep when the result arrives (TTY only)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ls-telescope %s\n", version.Version)
		return
	}

	yearSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "year" {
			yearSet = true
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	variant, err := telescope.ParseVariant(cfg.Variant)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	presenter, err := present.NewForLocale(cfg.Locale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	headless := dateFlag != "" || yearSet || milestoneFlag != "" || listMilestones
	if !headless && !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: no terminal; use --date, --year or --milestone for headless mode")
		os.Exit(2)
	}

	// Set up logging. The TUI owns the terminal, so it only logs to a file.
	level := logging.ParseLevel(cfg.LogLevel)
	var logger *logging.Logger
	switch {
	case cfg.LogFile != "":
		logger = logging.NewFile(level, cfg.LogFile)
	case headless:
		logger = logging.New(level)
	default:
		logger = logging.Discard()
	}
	defer logger.Close()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// Initialize components
	client := telescope.NewClient(
		telescope.WithBaseURL(cfg.APIURL),
		telescope.WithTimeout(cfg.Timeout),
		telescope.WithLogger(logger),
		telescope.WithUserAgent(version.UserAgent),
	)
	stateMgr := state.NewManager(state.DefaultConfig())

	milestones := milestone.Defaults(variant)
	if cfg.MilestonesFile != "" {
		loaded, err := milestone.Load(cfg.MilestonesFile)
		if err != nil {
			logger.Warn("using built-in milestones: %v", err)
		} else {
			milestones = loaded
		}
	}

	if headless {
		code := runHeadless(ctx, client, stateMgr, presenter, variant, milestones, logger)
		logger.Close()
		os.Exit(code)
	}

	model := ui.New(ui.Options{
		Context:       ctx,
		Client:        client,
		State:         stateMgr,
		Presenter:     presenter,
		Collector:     input.NewCollector(variant, time.Now()),
		Milestones:    milestones,
		Field:         starfield.NewField(starfield.WithDensity(cfg.StarDensity)),
		FrameInterval: cfg.FrameInterval,
		Logger:        logger,
	})

	// Create Bubble Tea program
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if cfg.MilestonesFile != "" {
		w := milestone.NewWatcher(cfg.MilestonesFile, logger)
		err := w.Start(ctx, func(ms []milestone.Milestone, err error) {
			p.Send(ui.MilestonesLoadedMsg{Milestones: ms, Err: err})
		})
		if err != nil {
			logger.Warn("milestone hot reload disabled: %v", err)
		}
	}

	logger.Info("ls-telescope %s using %s", version.Version, client.BaseURL())

	// Run TUI (blocks until quit)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		logger.Close()
		os.Exit(1)
	}
}

// runHeadless performs one calculation and prints it. It returns the exit code.
func runHeadless(ctx context.Context, client *telescope.Client, stateMgr *state.Manager,
	presenter *present.Presenter, variant telescope.Variant, milestones []milestone.Milestone,
	logger *logging.Logger) int {

	if listMilestones {
		writeMilestones(os.Stdout, milestones)
		return 0
	}

	sel, err := headlessSelection(variant, milestones, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	stateMgr.Begin()
	out := client.Calculate(ctx, sel)
	if out.Error != nil {
		stateMgr.Fail(out.Generation, out.Duration, out.Error)
		fmt.Fprintf(os.Stderr, "Error: %v\n", out.Error)
		return 1
	}

	view := presenter.Present(out.Result, out.Selection)
	stateMgr.Complete(state.Entry{
		RequestID:  out.RequestID,
		Generation: out.Generation,
		Duration:   out.Duration,
		Selection:  out.Selection,
		Result:     out.Result,
		View:       view,
	})
	logger.Debug("headless calculation %s took %v", out.RequestID, out.Duration)

	export := present.NewExport(out, view, time.Now())
	if jsonMode {
		if err := export.WriteJSON(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: write JSON to stdout: %v\n", err)
			return 1
		}
	} else {
		present.WriteSummary(os.Stdout, view)
	}

	if exportPath != "" {
		f, err := os.Create(exportPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: create export file: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := export.WriteJSON(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error: write JSON to file: %v\n", err)
			return 1
		}
	}

	if beepMode && term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Print("\a")
	}
	return 0
}

// headlessSelection builds the selection from --milestone, --date or --year,
// in that order of precedence.
func headlessSelection(variant telescope.Variant, milestones []milestone.Milestone, now time.Time) (telescope.DateSelection, error) {
	c := input.NewCollector(variant, now)

	switch {
	case milestoneFlag != "":
		m, ok := findMilestone(milestones, milestoneFlag)
		if !ok {
			return telescope.DateSelection{}, fmt.Errorf("unknown milestone %q (see --list-milestones)", milestoneFlag)
		}
		// Structured dates may fall outside the calendar the simple form accepts.
		c.Variant = telescope.VariantSimple
		if !m.IsLiteral() {
			c.Variant = telescope.VariantExtended
		}
		if err := c.Apply(m); err != nil {
			return telescope.DateSelection{}, err
		}

	case dateFlag != "":
		c.Variant = telescope.VariantSimple
		c.Simple = input.SimpleForm{DateTime: dateFlag}

	default:
		c.Variant = telescope.VariantExtended
		c.Extended = input.ExtendedForm{
			Year:  strconv.Itoa(yearFlag),
			Month: strconv.Itoa(monthFlag),
			Day:   strconv.Itoa(dayFlag),
			Time:  timeFlag,
		}
	}

	return c.Collect()
}

// findMilestone matches a name case-insensitively, then by prefix.
func findMilestone(ms []milestone.Milestone, name string) (milestone.Milestone, bool) {
	name = strings.TrimSpace(name)
	for _, m := range ms {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	lower := strings.ToLower(name)
	for _, m := range ms {
		if strings.HasPrefix(strings.ToLower(m.Name), lower) {
			return m, true
		}
	}
	return milestone.Milestone{}, false
}

func writeMilestones(w io.Writer, ms []milestone.Milestone) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, m := range ms {
		fmt.Fprintf(tw, "%s\t%s\n", m.Name, m.Describe())
	}
	tw.Flush()
}
