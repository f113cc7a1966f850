package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Joseda-hg/bildschema/internal/model"
)

const nameColumnWidth = 24

func formatCard(activity model.Activity) string {
	check := "[ ]"
	if activity.Done {
		check = "[x]"
	}

	name := activity.Name
	if pad := nameColumnWidth - utf8.RuneCountInString(name); pad > 0 {
		name += strings.Repeat(" ", pad)
	}

	picto := ""
	if activity.Pictogram != "" {
		picto = "  [pictogram]"
	}

	return fmt.Sprintf("%s %s  %s %4d min%s", check, activity.DisplayIcon(), name, activity.Minutes, picto)
}

// progressBar renders a bar of the given width followed by label. An empty
// schedule renders nothing.
func progressBar(done, total int, label string, width int) string {
	if total <= 0 {
		return ""
	}
	label = " " + label
	barWidth := max(width-utf8.RuneCountInString(label), 0)
	filled := done * barWidth / total
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + label
}

func helpText() string {
	return strings.Join([]string{
		"Schedule:",
		"  j/k or arrows move selection",
		"  space/x toggle done",
		"  s read the activity aloud",
		"  mouse click to select",
		"",
		"Actions:",
		"  a add activity",
		"  e export (c CSV | j JSON | p PDF | x XLSX)",
		"  enter save (dialogs) | esc cancel",
		"",
		"Other:",
		"  ? help | esc/q close help | q quit",
	}, "\n")
}
