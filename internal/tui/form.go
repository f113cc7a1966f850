package tui

import (
	"path/filepath"
	"time"

	"github.com/Joseda-hg/bildschema/internal/export"
	"github.com/jesseduffield/gocui"
)

type addForm struct {
	name string
}

// exportDialog is the save dialog: pick a format, then confirm a path.
type exportDialog struct {
	format export.Format
	path   string
}

func formatForKey(ch rune) (export.Format, bool) {
	switch ch {
	case 'c', 'C':
		return export.FormatCSV, true
	case 'j', 'J':
		return export.FormatJSON, true
	case 'p', 'P':
		return export.FormatPDF, true
	case 'x', 'X':
		return export.FormatXLSX, true
	default:
		return "", false
	}
}

func defaultExportPath(dir string, format export.Format, now time.Time) string {
	name := export.DefaultFilename(format, now)
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// editLine applies a key press to a single-line text value.
func editLine(value string, key gocui.Key, ch rune, mod gocui.Modifier) string {
	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(value)
		if len(runes) > 0 {
			value = string(runes[:len(runes)-1])
		}
		return value
	case gocui.KeySpace:
		return value + " "
	case gocui.KeyCtrlU:
		return ""
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		value += string(ch)
	}
	return value
}

type addEditor struct {
	ui *UI
}

func (e *addEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil || view == nil {
		return false
	}
	ui.form.name = editLine(ui.form.name, key, ch, mod)
	ui.renderAddForm(view)
	return true
}

type exportEditor struct {
	ui *UI
}

func (e *exportEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.export == nil || view == nil {
		return false
	}
	if ui.export.format == "" {
		ui.chooseExportFormat(ch)
	} else {
		ui.export.path = editLine(ui.export.path, key, ch, mod)
	}
	ui.renderExport(view)
	return true
}
