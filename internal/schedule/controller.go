// Package schedule owns the in-memory schedule and applies user actions to it.
// A Controller is not safe for concurrent use; the UI event loop is its only
// caller.
package schedule

import (
	"fmt"
	"os"

	"github.com/Joseda-hg/bildschema/internal/export"
	"github.com/Joseda-hg/bildschema/internal/model"
	"github.com/Joseda-hg/bildschema/internal/speech"
	"go.uber.org/zap"
)

const (
	StatusPDFExported       = "PDF exported"
	StatusPDFUnavailable    = "PDF export requires a Unicode TrueType font"
	statusExportedFormat    = "Exported %s"
	statusExportErrorFormat = "Export error: %s"
)

type Deps struct {
	Exporter *export.Exporter
	Speaker  speech.Speaker
	// Language is the speech language tag, "sv" when empty.
	Language string
	Logger   *zap.Logger
}

type Controller struct {
	activities []model.Activity
	status     string

	exporter *export.Exporter
	speaker  speech.Speaker
	language string
	logger   *zap.Logger
}

// PictogramRequest names an activity whose pictogram still needs resolving.
type PictogramRequest struct {
	Index int
	Term  string
}

func New(activities []model.Activity, deps Deps) *Controller {
	c := &Controller{
		activities: model.CloneSchedule(activities),
		exporter:   deps.Exporter,
		speaker:    deps.Speaker,
		language:   deps.Language,
		logger:     deps.Logger,
	}
	if c.activities == nil {
		c.activities = []model.Activity{}
	}
	if c.exporter == nil {
		c.exporter = export.New(export.Config{})
	}
	if c.speaker == nil {
		c.speaker = speech.Nop{}
	}
	if c.language == "" {
		c.language = "sv"
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

func (c *Controller) Update(msg Msg) {
	switch msg := msg.(type) {
	case AddActivity:
		c.addActivity(msg.Name)
	case ToggleDone:
		if c.valid(msg.Index) {
			c.activities[msg.Index].Done = !c.activities[msg.Index].Done
		}
	case SetDone:
		if c.valid(msg.Index) {
			c.activities[msg.Index].Done = msg.Done
		}
	case Speak:
		if c.valid(msg.Index) {
			c.speaker.Speak(c.activities[msg.Index].Name, c.language)
		}
	case PictogramResolved:
		if c.valid(msg.Index) && c.activities[msg.Index].Term == msg.Term {
			c.activities[msg.Index].Pictogram = msg.Path
		}
	case Export:
		c.export(msg.Format, msg.Path)
	case ExportCancelled:
	default:
		c.logger.Warn("unhandled schedule message", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (c *Controller) addActivity(name string) {
	activity := model.NewActivity(name)
	if activity.Name == "" {
		return
	}
	c.activities = append(c.activities, activity)
}

func (c *Controller) export(format export.Format, path string) {
	snapshot := c.Snapshot()

	if format == export.FormatPDF {
		ok, err := c.exporter.PDF(snapshot, path)
		switch {
		case err != nil:
			c.exportFailed(format, path, err)
		case !ok:
			c.logger.Warn("pdf backend unavailable", zap.String("path", path))
			c.status = StatusPDFUnavailable
		default:
			c.logger.Info("schedule exported", zap.String("format", string(format)), zap.String("path", path))
			c.status = StatusPDFExported
		}
		return
	}

	data, err := c.exporter.Encode(format, snapshot)
	if err != nil {
		c.exportFailed(format, path, err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.exportFailed(format, path, err)
		return
	}
	c.logger.Info("schedule exported", zap.String("format", string(format)), zap.String("path", path))
	c.status = fmt.Sprintf(statusExportedFormat, format.Label())
}

func (c *Controller) exportFailed(format export.Format, path string, err error) {
	c.logger.Error("export failed", zap.String("format", string(format)), zap.String("path", path), zap.Error(err))
	c.status = fmt.Sprintf(statusExportErrorFormat, err)
}

func (c *Controller) valid(index int) bool {
	return index >= 0 && index < len(c.activities)
}

// Snapshot returns a copy the caller may keep.
func (c *Controller) Snapshot() []model.Activity {
	return model.CloneSchedule(c.activities)
}

func (c *Controller) Len() int {
	return len(c.activities)
}

func (c *Controller) Activity(index int) (model.Activity, bool) {
	if !c.valid(index) {
		return model.Activity{}, false
	}
	return c.activities[index], true
}

func (c *Controller) Progress() (done, total int) {
	return model.CountDone(c.activities), len(c.activities)
}

func (c *Controller) ProgressLabel() string {
	done, total := c.Progress()
	return fmt.Sprintf("%d/%d completed", done, total)
}

func (c *Controller) Status() string {
	return c.status
}

func (c *Controller) ClearStatus() {
	c.status = ""
}

func (c *Controller) PictogramRequests() []PictogramRequest {
	var requests []PictogramRequest
	for i, activity := range c.activities {
		if activity.Term != "" && activity.Pictogram == "" {
			requests = append(requests, PictogramRequest{Index: i, Term: activity.Term})
		}
	}
	return requests
}
