package export

import (
	"errors"
	"fmt"
	"os"

	"github.com/Joseda-hg/bildschema/internal/model"
)

// A4 in points.
const (
	PageWidth  = 595.0
	PageHeight = 842.0

	rowHeight    = 50.0
	firstRowY    = 100.0
	nextPageY    = 40.0
	bottomMargin = 40.0
	marginX      = 40.0
	textX        = 80.0
	checkX       = 520.0
	iconSize     = 30.0
)

var ErrBackendUnavailable = errors.New("pdf backend unavailable")

type Color struct {
	R, G, B float64
}

var (
	colorInk     = Color{0, 0, 0}
	colorMuted   = Color{0.5, 0.5, 0.5}
	colorDone    = Color{0.6, 0.6, 0.6}
	colorCheck   = Color{0.18, 0.76, 0.49}
	colorDivider = Color{0.85, 0.85, 0.85}
)

// Canvas is the drawing surface the schedule layout is written against.
// Coordinates are points from the top-left corner; Text y is the baseline.
type Canvas interface {
	AddPage()
	SetFontSize(size float64)
	SetTextColor(c Color)
	Text(x, y float64, text string)
	Image(path string, x, y, w, h float64)
	Line(x1, y1, x2, y2, width float64, c Color)
	Save(path string) error
}

// Backend opens canvases. It returns ErrBackendUnavailable when the runtime
// cannot draw PDFs at all.
type Backend interface {
	NewCanvas(width, height float64) (Canvas, error)
}

// PDF writes the schedule to path. A false result with a nil error means no
// backend is available and nothing was written.
func (e *Exporter) PDF(activities []model.Activity, path string) (bool, error) {
	canvas, err := e.backend.NewCanvas(PageWidth, PageHeight)
	if errors.Is(err, ErrBackendUnavailable) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open pdf canvas: %w", err)
	}

	e.drawSchedule(canvas, model.CloneSchedule(activities))

	if err := canvas.Save(path); err != nil {
		return false, fmt.Errorf("write pdf: %w", err)
	}
	return true, nil
}

func (e *Exporter) drawSchedule(canvas Canvas, activities []model.Activity) {
	date := e.now().Local().Format("2006-01-02")

	canvas.AddPage()
	canvas.SetFontSize(24)
	canvas.SetTextColor(colorInk)
	canvas.Text(marginX, 50, "Daily Schedule")

	canvas.SetFontSize(12)
	canvas.SetTextColor(colorMuted)
	canvas.Text(marginX, 70, date)
	canvas.SetTextColor(colorInk)

	y := firstRowY
	for _, activity := range activities {
		if y+rowHeight > PageHeight-bottomMargin {
			canvas.AddPage()
			y = nextPageY
		}
		drawRow(canvas, activity, y)
		y += rowHeight
	}

	canvas.SetFontSize(9)
	canvas.SetTextColor(colorMuted)
	canvas.Text(marginX, PageHeight-20, fmt.Sprintf("%s — %s", e.Credit(), date))
}

func drawRow(canvas Canvas, activity model.Activity, y float64) {
	if activity.Pictogram != "" && fileExists(activity.Pictogram) {
		canvas.Image(activity.Pictogram, marginX, y+8, iconSize, iconSize)
	} else {
		canvas.SetFontSize(20)
		canvas.SetTextColor(colorInk)
		canvas.Text(marginX, y+30, activity.DisplayIcon())
	}

	canvas.SetFontSize(16)
	if activity.Done {
		canvas.SetTextColor(colorDone)
	} else {
		canvas.SetTextColor(colorInk)
	}
	canvas.Text(textX, y+25, activity.Name)

	canvas.SetFontSize(11)
	canvas.SetTextColor(colorMuted)
	canvas.Text(textX, y+42, fmt.Sprintf("%d min", activity.Minutes))

	if activity.Done {
		canvas.SetTextColor(colorCheck)
		canvas.SetFontSize(18)
		canvas.Text(checkX, y+28, "✓")
	}

	canvas.Line(marginX, y+rowHeight-2, PageWidth-marginX, y+rowHeight-2, 0.5, colorDivider)
	canvas.SetTextColor(colorInk)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
