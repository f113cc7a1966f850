package schedule

import "github.com/Joseda-hg/bildschema/internal/export"

// Msg is an input to Controller.Update.
type Msg interface {
	isMsg()
}

// AddActivity appends a new activity. Blank names are ignored.
type AddActivity struct {
	Name string
}

type ToggleDone struct {
	Index int
}

type SetDone struct {
	Index int
	Done  bool
}

// Speak reads the activity name aloud.
type Speak struct {
	Index int
}

// PictogramResolved attaches a downloaded pictogram. It is dropped when the
// activity at Index no longer carries Term.
type PictogramResolved struct {
	Index int
	Term  string
	Path  string
}

// Export writes the current schedule to Path once the save dialog confirmed it.
type Export struct {
	Format export.Format
	Path   string
}

// ExportCancelled is sent when the save dialog is dismissed.
type ExportCancelled struct{}

func (AddActivity) isMsg()       {}
func (ToggleDone) isMsg()        {}
func (SetDone) isMsg()           {}
func (Speak) isMsg()             {}
func (PictogramResolved) isMsg() {}
func (Export) isMsg()            {}
func (ExportCancelled) isMsg()   {}
