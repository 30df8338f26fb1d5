// Package mainwindow hosts the editor canvas, side panels, menus and
// shortcuts in one fyne window.
package mainwindow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"site-mapper/internal/app"
	"site-mapper/internal/background"
	"site-mapper/internal/editor"
	"site-mapper/internal/project"
	"site-mapper/internal/version"
	"site-mapper/pkg/geometry"
	"site-mapper/ui/canvas"
	"site-mapper/ui/panels"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const prefKeyLastDir = "lastDirectory"

// MainWindow owns the fyne window for one Session.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	session   *app.Session
	canvas    *canvas.EditorCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label

	exportDir string

	// Menu items that need state tracking
	autoSaveItem *fyne.MenuItem
}

// New creates a new main window. exportDir is the initial location of
// export dialogs.
func New(fyneApp fyne.App, session *app.Session, exportDir string) *MainWindow {
	win := fyneApp.NewWindow(title(session))

	mw := &MainWindow{
		Window:    win,
		app:       fyneApp,
		session:   session,
		exportDir: exportDir,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupShortcuts()
	mw.setupEventHandlers()

	return mw
}

func title(s *app.Session) string {
	site := s.Site()
	if site.Name == "" {
		return "Site Mapper"
	}
	return "Site Mapper - " + site.Name
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewEditorCanvas(mw.session)
	mw.canvas.OnTextRequested(mw.promptText)
	mw.canvas.OnError(func(err error) { mw.updateStatus(err.Error()) })

	mw.sidePanel = panels.NewSidePanel(mw.session)
	mw.sidePanel.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel("Ready")

	canvasArea := container.NewBorder(
		mw.createToolbar(), // top
		nil,                // bottom
		nil,                // left
		nil,                // right
		container.NewScroll(mw.canvas),
	)

	split := container.NewHSplit(mw.sidePanel.Container(), canvasArea)
	split.SetOffset(0.2)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)

	mw.SetContent(content)
}

// createToolbar creates the toolbar with history and zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	return widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentSaveIcon(), mw.onSave),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), func() { mw.dispatch(editor.Undo{}) }),
		widget.NewToolbarAction(theme.ContentRedoIcon(), func() { mw.dispatch(editor.Redo{}) }),
		widget.NewToolbarAction(theme.DeleteIcon(), func() { mw.dispatch(editor.DeleteSelected{}) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomOutIcon(), mw.canvas.ZoomOut),
		widget.NewToolbarAction(theme.ZoomInIcon(), mw.canvas.ZoomIn),
		widget.NewToolbarAction(theme.ZoomFitIcon(), func() { mw.dispatch(editor.ResetView{}) }),
		widget.NewToolbarAction(theme.GridIcon(), func() { mw.dispatch(editor.ToggleGrid{}) }),
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		fyne.NewMenuItem("Save Project As...", mw.onSaveProjectAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Upload Background...", mw.onUploadBackground),
		fyne.NewMenuItem("Reload Satellite Image", mw.onReloadSatellite),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Site Map", mw.onSave),
		fyne.NewMenuItem("Export PNG...", func() { mw.onExport(".png") }),
		fyne.NewMenuItem("Export PDF...", func() { mw.onExport(".pdf") }),
	)

	mw.autoSaveItem = fyne.NewMenuItem("Auto-save", mw.onToggleAutoSave)
	mw.autoSaveItem.Checked = mw.session.AutoSaveEnabled()

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", func() { mw.dispatch(editor.Undo{}) }),
		fyne.NewMenuItem("Redo", func() { mw.dispatch(editor.Redo{}) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Delete Selected", func() { mw.dispatch(editor.DeleteSelected{}) }),
		fyne.NewMenuItem("Clear All", mw.onClearAll),
		fyne.NewMenuItemSeparator(),
		mw.autoSaveItem,
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Reset View", func() { mw.dispatch(editor.ResetView{}) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Toggle Grid", func() { mw.dispatch(editor.ToggleGrid{}) }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu))
}

// setupShortcuts maps Ctrl/Cmd+Z, Y and S onto editor key presses. The
// editor decides what they do.
func (mw *MainWindow) setupShortcuts() {
	for _, key := range []fyne.KeyName{fyne.KeyZ, fyne.KeyY, fyne.KeyS} {
		for _, mod := range []fyne.KeyModifier{fyne.KeyModifierControl, fyne.KeyModifierSuper} {
			press := editor.KeyPress{
				Key:  strings.ToLower(string(key)),
				Ctrl: mod == fyne.KeyModifierControl,
				Meta: mod == fyne.KeyModifierSuper,
			}
			mw.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: mod}, func(fyne.Shortcut) {
				mw.dispatch(press)
			})
		}
	}
	// Keys typed while no widget has focus.
	mw.Canvas().SetOnTypedKey(mw.canvas.TypedKey)
}

// setupEventHandlers registers for session and editor events.
func (mw *MainWindow) setupEventHandlers() {
	mw.session.On(app.EventProjectLoaded, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle(title(mw.session) + " (" + filepath.Base(path) + ")")
			mw.updateStatus("Project loaded: " + path)
		}
	})

	mw.session.On(app.EventProjectSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateStatus("Project saved: " + path)
		}
	})

	mw.session.On(app.EventModified, func(data interface{}) {
		t := mw.Title()
		modified, _ := data.(bool)
		switch {
		case modified && !strings.HasSuffix(t, " *"):
			mw.SetTitle(t + " *")
		case !modified:
			mw.SetTitle(strings.TrimSuffix(t, " *"))
		}
	})

	mw.session.On(app.EventSaved, func(data interface{}) {
		if at, ok := data.(time.Time); ok {
			mw.updateStatus("Saved at " + at.Format("15:04:05"))
		}
	})

	mw.session.On(app.EventBackgroundLoaded, func(data interface{}) {
		if src, ok := data.(background.Source); ok {
			mw.updateStatus("Background: " + src.String())
		}
	})

	mw.session.Editor.On(editor.EventToolChanged, func(data interface{}) {
		if t, ok := data.(editor.Tool); ok {
			mw.updateStatus("Tool: " + t.String())
		}
	})

	mw.session.Editor.On(editor.EventViewportChanged, func(interface{}) {
		mw.updateStatus(fmt.Sprintf("Zoom %.0f%%", mw.session.Editor.Viewport().Zoom*100))
	})
}

func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) dispatch(ev editor.Event) {
	if err := mw.session.Editor.Dispatch(ev); err != nil {
		mw.updateStatus(err.Error())
	}
}

// LoadBackground loads the initial background without blocking the UI.
func (mw *MainWindow) LoadBackground() {
	go func() {
		if err := mw.session.LoadBackground(context.Background()); err != nil {
			mw.updateStatus("Background unavailable: " + err.Error())
		}
	}()
}

// promptText asks for the content of a text annotation at a canvas point.
// Cancelling or entering nothing places nothing.
func (mw *MainWindow) promptText(at geometry.Point2D) {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Label text")
	dialog.ShowForm("Add Text", "Add", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Text", entry)},
		func(ok bool) {
			if ok {
				mw.dispatch(editor.PlaceText{At: at, Content: entry.Text})
			}
		}, mw.Window)
	mw.Canvas().Focus(entry)
}

// getLastDir falls back to the export directory when nothing was picked yet.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.app.Preferences().String(prefKeyLastDir)
	if path == "" {
		path = mw.exportDir
	}
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

func (mw *MainWindow) saveLastDir(filePath string) {
	mw.app.Preferences().SetString(prefKeyLastDir, filepath.Dir(filePath))
}

func (mw *MainWindow) onSave() {
	mw.updateStatus("Saving...")
	go func() {
		// Failures alert through the session.
		_ = mw.session.Save(context.Background())
	}()
}

func (mw *MainWindow) onToggleAutoSave() {
	on := !mw.session.AutoSaveEnabled()
	mw.session.SetAutoSave(on)
	mw.autoSaveItem.Checked = on
	mw.MainMenu().Refresh()
}

func (mw *MainWindow) onClearAll() {
	n := len(mw.session.Editor.Annotations())
	if n == 0 {
		return
	}
	dialog.ShowConfirm("Clear All", fmt.Sprintf("Remove all %d annotations? This can be undone.", n),
		func(ok bool) {
			if ok {
				mw.dispatch(editor.ClearAll{})
			}
		}, mw.Window)
}

// pickOpen shows an open dialog filtered to exts and hands the chosen path
// to fn. Errors from fn are shown in a dialog.
func (mw *MainWindow) pickOpen(exts []string, fn func(path string) error) {
	fd := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil || r == nil {
			return
		}
		r.Close()
		path := r.URI().Path()
		mw.saveLastDir(path)
		if err := fn(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(exts))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// pickSave is pickOpen for a new file; the path always ends in ext.
func (mw *MainWindow) pickSave(fallback, ext string, fn func(path string) error) {
	fd := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil || w == nil {
			return
		}
		w.Close()
		path := w.URI().Path()
		if !strings.EqualFold(filepath.Ext(path), ext) {
			path += ext
		}
		mw.saveLastDir(path)
		if err := fn(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	name := mw.session.Site().ID
	if name == "" {
		name = fallback
	}
	fd.SetFileName(name + ext)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onOpenProject() {
	mw.pickOpen([]string{project.Extension}, mw.session.OpenProject)
}

func (mw *MainWindow) onSaveProjectAs() {
	mw.pickSave("site", project.Extension, mw.session.SaveProject)
}

func (mw *MainWindow) onUploadBackground() {
	mw.pickOpen(background.SupportedFormats(), mw.session.UploadBackground)
}

func (mw *MainWindow) onReloadSatellite() {
	mw.updateStatus("Fetching satellite image...")
	go func() {
		if err := mw.session.ReloadSatellite(context.Background()); err != nil {
			mw.updateStatus("Satellite image unavailable: " + err.Error())
			return
		}
		mw.updateStatus("Satellite image loaded")
	}()
}

func (mw *MainWindow) onExport(ext string) {
	mw.pickSave("site-map", ext, func(path string) error {
		if err := mw.session.ExportFile(path); err != nil {
			return err
		}
		mw.updateStatus("Exported " + path)
		return nil
	})
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Site Mapper",
		"Site Mapper "+version.String()+"\n\n"+
			"Annotate site maps with areas, features and notes.",
		mw.Window)
}
