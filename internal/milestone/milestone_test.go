package milestone

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/litescript/ls-telescope/internal/telescope"
)

func TestDefaults(t *testing.T) {
	simple := Defaults(telescope.VariantSimple)
	if len(simple) == 0 {
		t.Fatal("no simple defaults")
	}
	for _, m := range simple {
		if !m.IsLiteral() {
			t.Errorf("simple default %q is not literal", m.Name)
		}
		if err := m.Validate(); err != nil {
			t.Errorf("simple default invalid: %v", err)
		}
	}

	extended := Defaults(telescope.VariantExtended)
	hasBCE := false
	for _, m := range extended {
		if m.IsLiteral() {
			t.Errorf("extended default %q is literal", m.Name)
		}
		if err := m.Validate(); err != nil {
			t.Errorf("extended default invalid: %v", err)
		}
		if m.Parts.Year < 0 {
			hasBCE = true
		}
	}
	if !hasBCE {
		t.Error("extended defaults should include a BCE date")
	}
}

func TestDefaults_ReturnsCopies(t *testing.T) {
	a := Defaults(telescope.VariantExtended)
	a[0].Parts.Year = 9999
	b := Defaults(telescope.VariantExtended)
	if b[0].Parts.Year == 9999 {
		t.Error("Defaults shares Parts between calls")
	}
}

func TestParse(t *testing.T) {
	data := []byte(`[
		{"name": "Moon Landing", "date": "1969-07-20T20:17"},
		{"name": "Founding of Rome", "parts": {"year": -753, "month": 4, "day": 21, "time": "12:00"}}
	]`)

	ms, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(ms) != 2 {
		t.Fatalf("len = %d, want 2", len(ms))
	}
	if ms[0].Date != "1969-07-20T20:17" {
		t.Errorf("ms[0].Date = %q", ms[0].Date)
	}
	if ms[1].Parts == nil || ms[1].Parts.Year != -753 || ms[1].Parts.Time != "12:00" {
		t.Errorf("ms[1].Parts = %+v", ms[1].Parts)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"no name", `[{"date": "2000-01-01T00:00"}]`},
		{"no date", `[{"name": "x"}]`},
		{"both", `[{"name": "x", "date": "2000-01-01T00:00", "parts": {"year": 1, "month": 1, "day": 1}}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		m    Milestone
		want string
	}{
		{Milestone{Name: "a", Date: "1969-07-20T20:17"}, "1969-07-20 20:17"},
		{Milestone{Name: "b", Parts: &Parts{Year: -753, Month: 4, Day: 21, Time: "12:00"}}, "753 BCE-04-21 12:00"},
		{Milestone{Name: "c", Parts: &Parts{Year: 1054, Month: 7, Day: 4}}, "1054 CE-07-04"},
	}

	for _, tt := range tests {
		if got := tt.m.Describe(); got != tt.want {
			t.Errorf("Describe(%s) = %q, want %q", tt.m.Name, got, tt.want)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "milestones.json")
	if err := os.WriteFile(path, []byte(`[{"name":"one","date":"2000-01-01T00:00"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan []Milestone, 4)
	w := NewWatcher(path, nil)
	w.debounce = 20 * time.Millisecond
	if err := w.Start(ctx, func(ms []Milestone, err error) {
		if err != nil {
			return
		}
		select {
		case got <- ms:
		default:
		}
	}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	updated := `[{"name":"one","date":"2000-01-01T00:00"},{"name":"two","date":"2010-01-01T00:00"}]`
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ms := <-got:
			if len(ms) == 2 && ms[1].Name == "two" {
				return
			}
		case <-deadline:
			t.Fatal("watcher did not deliver the updated milestones")
		}
	}
}

func TestWatcher_EmptyPath(t *testing.T) {
	w := NewWatcher("", nil)
	if err := w.Start(context.Background(), func([]Milestone, error) {}); err == nil {
		t.Error("expected error for empty path")
	}
}
