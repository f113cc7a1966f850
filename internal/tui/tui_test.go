package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Joseda-hg/bildschema/internal/export"
	"github.com/Joseda-hg/bildschema/internal/model"
	"github.com/Joseda-hg/bildschema/internal/schedule"
	"github.com/jesseduffield/gocui"
)

type recordingSpeaker struct {
	texts []string
}

func (s *recordingSpeaker) Speak(text, _ string) {
	s.texts = append(s.texts, text)
}

func newTestUI(t *testing.T, activities []model.Activity) (*UI, *recordingSpeaker) {
	t.Helper()
	speaker := &recordingSpeaker{}
	now := time.Date(2024, 3, 5, 8, 0, 0, 0, time.Local)
	controller := schedule.New(activities, schedule.Deps{
		Exporter: export.New(export.Config{Version: "1.0", Now: func() time.Time { return now }}),
		Speaker:  speaker,
		Language: "sv",
	})
	ui := newUI(controller, Options{ExportDir: t.TempDir(), Now: func() time.Time { return now }})
	return ui, speaker
}

func TestToggleDoneUsesSelection(t *testing.T) {
	ui, _ := newTestUI(t, []model.Activity{model.NewActivity("Breakfast"), model.NewActivity("School")})
	ui.selected = 1

	if err := ui.toggleDone(nil, nil); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	activity, _ := ui.controller.Activity(1)
	if !activity.Done {
		t.Fatalf("expected selected activity to be done")
	}
	if first, _ := ui.controller.Activity(0); first.Done {
		t.Fatalf("expected other activity untouched")
	}
}

func TestMoveStaysInBounds(t *testing.T) {
	ui, _ := newTestUI(t, []model.Activity{model.NewActivity("A"), model.NewActivity("B")})

	_ = ui.moveUp(nil, nil)
	if ui.selected != 0 {
		t.Fatalf("expected selection to stay at 0, got %d", ui.selected)
	}
	_ = ui.moveDown(nil, nil)
	_ = ui.moveDown(nil, nil)
	if ui.selected != 1 {
		t.Fatalf("expected selection to stop at last row, got %d", ui.selected)
	}
}

func TestAddFormFlow(t *testing.T) {
	ui, _ := newTestUI(t, []model.Activity{model.NewActivity("Breakfast")})

	if err := ui.openAddForm(nil, nil); err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, ch := range "Lunch" {
		ui.form.name = editLine(ui.form.name, 0, ch, gocui.ModNone)
	}
	if ui.form.name != "Lunch" {
		t.Fatalf("expected typed name, got %q", ui.form.name)
	}
	if err := ui.submitAddForm(nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ui.form != nil {
		t.Fatalf("expected form to close")
	}
	if ui.controller.Len() != 2 || ui.selected != 1 {
		t.Fatalf("expected new activity selected, len=%d selected=%d", ui.controller.Len(), ui.selected)
	}
	added, _ := ui.controller.Activity(1)
	if added.Name != "Lunch" || added.Minutes != 15 {
		t.Fatalf("unexpected activity %+v", added)
	}
}

func TestBlankAddIsIgnored(t *testing.T) {
	ui, _ := newTestUI(t, nil)
	_ = ui.openAddForm(nil, nil)
	ui.form.name = "   "
	_ = ui.submitAddForm(nil, nil)
	if ui.controller.Len() != 0 {
		t.Fatalf("expected blank name to be ignored")
	}
}

func TestKeysIgnoredWhileDialogOpen(t *testing.T) {
	ui, speaker := newTestUI(t, []model.Activity{model.NewActivity("Breakfast")})
	_ = ui.openAddForm(nil, nil)

	_ = ui.toggleDone(nil, nil)
	_ = ui.speak(nil, nil)
	if activity, _ := ui.controller.Activity(0); activity.Done {
		t.Fatalf("expected toggle to be ignored while form is open")
	}
	if len(speaker.texts) != 0 {
		t.Fatalf("expected speech to be ignored while form is open")
	}

	_ = ui.cancelAddForm(nil, nil)
	if ui.form != nil {
		t.Fatalf("expected form to close")
	}
}

func TestSpeakSelected(t *testing.T) {
	ui, speaker := newTestUI(t, []model.Activity{model.NewActivity("Breakfast"), model.NewActivity("School")})
	ui.selected = 1
	_ = ui.speak(nil, nil)
	if len(speaker.texts) != 1 || speaker.texts[0] != "School" {
		t.Fatalf("unexpected speech %v", speaker.texts)
	}
}

func TestExportDialogWritesCSV(t *testing.T) {
	ui, _ := newTestUI(t, model.SampleActivities())

	_ = ui.openExport(nil, nil)
	ui.chooseExportFormat('c')
	if ui.export.format != export.FormatCSV {
		t.Fatalf("expected csv format, got %q", ui.export.format)
	}
	want := filepath.Join(ui.exportDir, "bildschema_20240305.csv")
	if ui.export.path != want {
		t.Fatalf("expected default path %q, got %q", want, ui.export.path)
	}

	if err := ui.submitExport(nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ui.export != nil {
		t.Fatalf("expected dialog to close")
	}
	if ui.controller.Status() != "Exported CSV" {
		t.Fatalf("unexpected status %q", ui.controller.Status())
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(data), "Activity,Duration (min),Completed") {
		t.Fatalf("unexpected csv header %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

func TestOpeningDialogClearsStatus(t *testing.T) {
	ui, _ := newTestUI(t, model.SampleActivities())
	_ = ui.openExport(nil, nil)
	ui.chooseExportFormat('c')
	_ = ui.submitExport(nil, nil)
	if ui.controller.Status() == "" {
		t.Fatalf("expected export status")
	}

	_ = ui.openAddForm(nil, nil)
	if status := ui.controller.Status(); status != "" {
		t.Fatalf("expected status cleared by new dialog, got %q", status)
	}
}

func TestExportDialogIgnoresUnknownKey(t *testing.T) {
	ui, _ := newTestUI(t, model.SampleActivities())
	_ = ui.openExport(nil, nil)
	ui.chooseExportFormat('z')
	if ui.export.format != "" {
		t.Fatalf("expected no format for unknown key")
	}
	if err := ui.submitExport(nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ui.export == nil {
		t.Fatalf("expected dialog to stay open without a format")
	}
}

func TestCancelExportIsSilent(t *testing.T) {
	ui, _ := newTestUI(t, model.SampleActivities())
	_ = ui.openExport(nil, nil)
	ui.chooseExportFormat('j')
	if err := ui.cancelExport(nil, nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if ui.export != nil {
		t.Fatalf("expected dialog to close")
	}
	if ui.controller.Status() != "" {
		t.Fatalf("expected no status after cancel, got %q", ui.controller.Status())
	}
}

func TestToggleHelp(t *testing.T) {
	ui, _ := newTestUI(t, nil)
	_ = ui.toggleHelp(nil, nil)
	if !ui.helpActive || !ui.inputActive() {
		t.Fatalf("expected help open")
	}
	_ = ui.closeHelp(nil, nil)
	if ui.helpActive {
		t.Fatalf("expected help closed")
	}
}

func TestFormatCard(t *testing.T) {
	activity := model.Activity{Name: "Breakfast", Minutes: 20, Done: true, Icon: "🍳", Pictogram: "/tmp/p.png"}
	card := formatCard(activity)
	if !strings.HasPrefix(card, "[x] 🍳  Breakfast") {
		t.Fatalf("unexpected card %q", card)
	}
	if !strings.Contains(card, "  20 min") || !strings.HasSuffix(card, "[pictogram]") {
		t.Fatalf("unexpected card %q", card)
	}

	plain := formatCard(model.Activity{Name: "Play", Minutes: 5})
	if !strings.HasPrefix(plain, "[ ] 📋") || strings.Contains(plain, "[pictogram]") {
		t.Fatalf("unexpected card %q", plain)
	}
}

func TestProgressBar(t *testing.T) {
	if bar := progressBar(0, 0, "0/0 completed", 40); bar != "" {
		t.Fatalf("expected empty bar, got %q", bar)
	}
	bar := progressBar(1, 2, "1/2 completed", 30)
	if !strings.HasSuffix(bar, " 1/2 completed") {
		t.Fatalf("unexpected label in %q", bar)
	}
	filled := strings.Count(bar, "█")
	empty := strings.Count(bar, "░")
	if filled != empty || filled == 0 {
		t.Fatalf("expected half filled bar, got %d/%d", filled, empty)
	}
}

func TestEditLine(t *testing.T) {
	value := editLine("ab", 0, 'c', gocui.ModNone)
	value = editLine(value, gocui.KeySpace, 0, gocui.ModNone)
	value = editLine(value, gocui.KeyBackspace2, 0, gocui.ModNone)
	if value != "abc" {
		t.Fatalf("unexpected value %q", value)
	}
	if editLine("åäö", gocui.KeyBackspace, 0, gocui.ModNone) != "åä" {
		t.Fatalf("expected rune-aware backspace")
	}
	if editLine("abc", gocui.KeyCtrlU, 0, gocui.ModNone) != "" {
		t.Fatalf("expected ctrl-u to clear")
	}
}

type stubProvider struct {
	paths map[string]string
}

func (p stubProvider) Resolve(_ context.Context, term, _ string, _ int) (string, bool, error) {
	path, ok := p.paths[term]
	return path, ok, nil
}

func TestPictogramRequestsResolveThroughProvider(t *testing.T) {
	ui, _ := newTestUI(t, model.SampleActivities())
	ui.pictograms = stubProvider{paths: map[string]string{"breakfast": "/cache/breakfast.png"}}

	requests := ui.controller.PictogramRequests()
	if len(requests) == 0 {
		t.Fatalf("expected sample activities to request pictograms")
	}
	for _, req := range requests {
		path, ok, err := ui.pictograms.Resolve(context.Background(), req.Term, ui.pictogramLang, ui.resolution)
		if err != nil || !ok {
			continue
		}
		ui.controller.Update(schedule.PictogramResolved{Index: req.Index, Term: req.Term, Path: path})
	}

	found := false
	for _, activity := range ui.controller.Snapshot() {
		if activity.Pictogram == "/cache/breakfast.png" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected breakfast pictogram attached")
	}
}
