package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/bildschema/internal/pictogram"
	"github.com/Joseda-hg/bildschema/internal/schedule"
	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
	"go.uber.org/zap"
)

const (
	viewHeader   = "header"
	viewSchedule = "schedule"
	viewProgress = "progress"
	viewFooter   = "footer"
	viewForm     = "form"
	viewExport   = "export"
	viewHelp     = "help"
)

type Options struct {
	// Pictograms is optional; without it cards keep their emoji.
	Pictograms    pictogram.Provider
	PictogramLang string
	Resolution    int
	ExportDir     string
	Logger        *zap.Logger
	Now           func() time.Time
}

type UI struct {
	controller *schedule.Controller
	gui        *gocui.Gui

	pictograms    pictogram.Provider
	pictogramLang string
	resolution    int
	exportDir     string
	logger        *zap.Logger
	now           func() time.Time

	selected     int
	form         *addForm
	export       *exportDialog
	helpActive   bool
	addEditor    *addEditor
	exportEditor *exportEditor
}

func newUI(controller *schedule.Controller, opts Options) *UI {
	ui := &UI{
		controller:    controller,
		pictograms:    opts.Pictograms,
		pictogramLang: opts.PictogramLang,
		resolution:    opts.Resolution,
		exportDir:     opts.ExportDir,
		logger:        opts.Logger,
		now:           opts.Now,
	}
	if ui.logger == nil {
		ui.logger = zap.NewNop()
	}
	if ui.now == nil {
		ui.now = time.Now
	}
	if ui.pictogramLang == "" {
		ui.pictogramLang = "en"
	}
	if ui.resolution == 0 {
		ui.resolution = 300
	}
	ui.addEditor = &addEditor{ui: ui}
	ui.exportEditor = &exportEditor{ui: ui}
	return ui
}

func Run(controller *schedule.Controller, opts Options) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(controller, opts)
	ui.gui = gui
	gui.Mouse = true

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go ui.tickClock(ctx)
	if ui.pictograms != nil {
		go ui.resolvePictograms(ctx, controller.PictogramRequests())
	}

	if err := gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	if err := gui.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, u.quit); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSchedule, 'q', gocui.ModNone, u.quit); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSchedule, gocui.KeyArrowDown, gocui.ModNone, u.moveDown); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSchedule, 'j', gocui.ModNone, u.moveDown); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSchedule, gocui.KeyArrowUp, gocui.ModNone, u.moveUp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSchedule, 'k', gocui.ModNone, u.moveUp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSchedule, gocui.KeySpace, gocui.ModNone, u.toggleDone); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSchedule, 'x', gocui.ModNone, u.toggleDone); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSchedule, 's', gocui.ModNone, u.speak); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSchedule, 'a', gocui.ModNone, u.openAddForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSchedule, 'e', gocui.ModNone, u.openExport); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSchedule, '?', gocui.ModNone, u.toggleHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEnter, gocui.ModNone, u.submitAddForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEsc, gocui.ModNone, u.cancelAddForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewExport, gocui.KeyEnter, gocui.ModNone, u.submitExport); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewExport, gocui.KeyEsc, gocui.ModNone, u.cancelExport); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, gocui.KeyEsc, gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, 'q', gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, '?', gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: viewSchedule, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
		return u.onListClick(gui, opts)
	}}); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSchedule, gocui.MouseWheelUp, gocui.ModNone, u.scrollUp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSchedule, gocui.MouseWheelDown, gocui.ModNone, u.scrollDown); err != nil {
		return err
	}
	return nil
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	u.renderHeader(headerView, maxX)

	footerY1 := max(maxY-1, 2)
	footerY0 := max(footerY1-2, 1)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	u.renderFooter(footerView)

	progressY1 := footerY0 - 1
	progressY0 := progressY1 - 2
	listY0 := 1
	listY1 := progressY0 - 1
	if listY1 <= listY0 {
		return nil
	}

	listView, err := gui.SetView(viewSchedule, 0, listY0, maxX-1, listY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		listView.Title = "Visual Schedule"
	}
	applyViewStyle(listView, !u.inputActive())
	u.renderSchedule(listView, !u.inputActive())

	progressView, err := gui.SetView(viewProgress, 0, progressY0, maxX-1, progressY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		progressView.Title = "Progress"
		progressView.FgColor = gocui.ColorGreen
	}
	u.renderProgress(progressView, maxX-2)

	if u.form != nil {
		if err := u.showAddForm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewForm)
	}

	if u.export != nil {
		if err := u.showExport(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewExport)
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if !u.inputActive() {
		if current := gui.CurrentView(); current == nil || current.Name() != viewSchedule {
			_, _ = gui.SetCurrentView(viewSchedule)
		}
	}

	gui.Cursor = u.form != nil || u.export != nil
	return nil
}

func (u *UI) renderHeader(view *gocui.View, width int) {
	view.Clear()
	title := "Bildschema"
	clock := u.now().Format("2006-01-02 15:04:05")
	gap := max(width-len(title)-len(clock)-1, 1)
	fmt.Fprint(view, title+strings.Repeat(" ", gap)+clock)
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	fmt.Fprintln(view, "space done | s speak | a add | e export | j/k move | ? help | q quit")
	if status := u.controller.Status(); status != "" {
		fmt.Fprint(view, status)
	}
}

func (u *UI) renderSchedule(view *gocui.View, focused bool) {
	view.Clear()
	activities := u.controller.Snapshot()
	if len(activities) == 0 {
		fmt.Fprint(view, "No activities. Press a to add one.")
		return
	}
	for i, activity := range activities {
		prefix := " "
		if i == u.selected {
			if focused {
				prefix = ">"
			} else {
				prefix = "*"
			}
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatCard(activity))
	}
	if focused {
		view.SetCursor(0, min(u.selected, len(activities)-1))
	}
}

func (u *UI) renderProgress(view *gocui.View, width int) {
	view.Clear()
	done, total := u.controller.Progress()
	fmt.Fprint(view, progressBar(done, total, u.controller.ProgressLabel(), width))
}

func (u *UI) onListClick(gui *gocui.Gui, opts gocui.ViewMouseBindingOpts) error {
	if u.inputActive() {
		return nil
	}
	view, err := gui.View(viewSchedule)
	if err != nil {
		return nil
	}

	_, y0, _, _ := view.Dimensions()
	_, oy := view.Origin()
	row := max(opts.Y-y0-1+oy, 0)
	u.selected = max(min(row, u.controller.Len()-1), 0)
	return nil
}

func (u *UI) scrollUp(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() || view == nil {
		return nil
	}
	view.ScrollUp(1)
	return nil
}

func (u *UI) scrollDown(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() || view == nil {
		return nil
	}
	view.ScrollDown(1)
	return nil
}

func (u *UI) moveDown(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.selected < u.controller.Len()-1 {
		u.selected++
	}
	return nil
}

func (u *UI) moveUp(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.selected > 0 {
		u.selected--
	}
	return nil
}

func (u *UI) toggleDone(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.controller.Update(schedule.ToggleDone{Index: u.selected})
	return nil
}

func (u *UI) speak(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.controller.Update(schedule.Speak{Index: u.selected})
	return nil
}

func (u *UI) openAddForm(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.controller.ClearStatus()
	u.form = &addForm{}
	return nil
}

func (u *UI) showAddForm(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(40, maxX/3)
	height := 3
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewForm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Add Activity"
		view.Wrap = true
	}
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.addEditor
	u.renderAddForm(view)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

func (u *UI) renderAddForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	label := "Activity name: "
	fmt.Fprint(view, label+u.form.name)
	view.SetCursor(len([]rune(label))+len([]rune(u.form.name)), 0)
}

func (u *UI) submitAddForm(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil {
		return nil
	}
	before := u.controller.Len()
	u.controller.Update(schedule.AddActivity{Name: u.form.name})
	if u.controller.Len() > before {
		u.selected = u.controller.Len() - 1
	}
	u.form = nil
	u.closeView(gui, viewForm)
	return nil
}

func (u *UI) cancelAddForm(gui *gocui.Gui, _ *gocui.View) error {
	u.form = nil
	u.closeView(gui, viewForm)
	return nil
}

func (u *UI) openExport(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.controller.ClearStatus()
	u.export = &exportDialog{}
	return nil
}

func (u *UI) chooseExportFormat(ch rune) {
	if u.export == nil || u.export.format != "" {
		return
	}
	format, ok := formatForKey(ch)
	if !ok {
		return
	}
	u.export.format = format
	u.export.path = defaultExportPath(u.exportDir, format, u.now())
}

func (u *UI) showExport(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := 4
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewExport, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
	}
	view.Title = "Export Schedule"
	if u.export.format != "" {
		view.Title = "Save " + u.export.format.Label()
	}
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.exportEditor
	u.renderExport(view)
	_, _ = gui.SetCurrentView(viewExport)
	return nil
}

func (u *UI) renderExport(view *gocui.View) {
	if u.export == nil || view == nil {
		return
	}
	view.Clear()
	if u.export.format == "" {
		fmt.Fprintln(view, "Choose export format:")
		fmt.Fprint(view, "c CSV | j JSON | p PDF | x XLSX | esc cancel")
		return
	}
	label := "Save as: "
	fmt.Fprintln(view, label+u.export.path)
	fmt.Fprint(view, "enter save | esc cancel")
	view.SetCursor(len([]rune(label))+len([]rune(u.export.path)), 0)
}

func (u *UI) submitExport(gui *gocui.Gui, _ *gocui.View) error {
	if u.export == nil || u.export.format == "" {
		return nil
	}
	path := strings.TrimSpace(u.export.path)
	if path == "" {
		return nil
	}
	format := u.export.format
	u.export = nil
	u.closeView(gui, viewExport)
	u.controller.Update(schedule.Export{Format: format, Path: path})
	return nil
}

func (u *UI) cancelExport(gui *gocui.Gui, _ *gocui.View) error {
	if u.export == nil {
		return nil
	}
	u.export = nil
	u.closeView(gui, viewExport)
	u.controller.Update(schedule.ExportCancelled{})
	return nil
}

func (u *UI) toggleHelp(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() && !u.helpActive {
		return nil
	}
	u.helpActive = !u.helpActive
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	u.closeView(gui, viewHelp)
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(50, maxX/2)
	height := 14
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewHelp, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Help"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

// closeView drops a dialog view. Handlers run without a gui in tests.
func (u *UI) closeView(gui *gocui.Gui, name string) {
	if gui == nil {
		return
	}
	_ = gui.DeleteView(name)
	_, _ = gui.SetCurrentView(viewSchedule)
}

func (u *UI) inputActive() bool {
	return u.form != nil || u.export != nil || u.helpActive
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func (u *UI) tickClock(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			u.gui.Update(func(*gocui.Gui) error { return nil })
		}
	}
}

// resolvePictograms looks up each term in turn and hands results to the
// event loop. The controller is only touched from inside gui.Update.
func (u *UI) resolvePictograms(ctx context.Context, requests []schedule.PictogramRequest) {
	for _, req := range requests {
		path, ok, err := u.pictograms.Resolve(ctx, req.Term, u.pictogramLang, u.resolution)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			u.logger.Warn("pictogram lookup failed", zap.String("term", req.Term), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		msg := schedule.PictogramResolved{Index: req.Index, Term: req.Term, Path: path}
		u.gui.Update(func(*gocui.Gui) error {
			u.controller.Update(msg)
			return nil
		})
	}
}

func applyViewStyle(view *gocui.View, focused bool) {
	view.Frame = true
	view.Highlight = focused
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	view.InactiveViewSelBgColor = gocui.ColorDefault
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}
