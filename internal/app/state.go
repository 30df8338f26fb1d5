// Package app ties an editor to its background, persistence and exports for
// one site map editing session.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"sync"
	"time"

	"site-mapper/internal/annotation"
	"site-mapper/internal/background"
	"site-mapper/internal/editor"
	"site-mapper/internal/export"
	"site-mapper/internal/georef"
	"site-mapper/internal/persist"
	"site-mapper/internal/project"
	"site-mapper/internal/render"
	"site-mapper/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNoBackground is returned when there is neither map data nor an address
// to fetch a satellite image for.
var ErrNoBackground = errors.New("no background source")

// SaveFunc persists a payload for site. (*store.Store).Save implements it.
type SaveFunc func(ctx context.Context, site store.Site, p persist.Payload) error

// Fetcher downloads a satellite background for an address.
// *satellite.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, address string) (*background.Background, error)
}

// Options are the inputs supplied by the host.
type Options struct {
	Site store.Site

	// InitialMapData is a previously saved base map as a PNG data URL. When
	// empty the background is fetched by address through Fetcher.
	InitialMapData string

	// InitialAnnotations is restored verbatim as history entry 0.
	InitialAnnotations annotation.List

	// OnSave receives every save, addressed to the session's current site.
	// Without it saving fails and auto-save stays off.
	OnSave  SaveFunc
	Fetcher Fetcher
	Alert   func(msg string)

	AutoSave      bool
	AutoSaveDelay time.Duration
	MoveInterval  time.Duration
	GridSpacing   float64

	Logger zerolog.Logger
}

// EventType identifies session events.
type EventType int

const (
	// EventLoadingChanged carries the loading flag (bool).
	EventLoadingChanged EventType = iota
	// EventBackgroundLoaded carries the background.Source now shown.
	EventBackgroundLoaded
	// EventSaved carries the save time (time.Time).
	EventSaved
	EventProjectLoaded
	EventProjectSaved
	// EventModified carries the modified flag (bool).
	EventModified
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Session is one editing session of a site map.
type Session struct {
	Editor *editor.Editor

	bridge *persist.Bridge
	auto   *persist.AutoSaver
	fetch  Fetcher
	onSave SaveFunc
	opts   render.Options
	log    zerolog.Logger

	mu          sync.RWMutex
	site        store.Site
	mapData     string
	loading     bool
	source      background.Source
	geo         *georef.Georef
	project     *project.File
	projectPath string
	modified    bool

	listeners map[EventType][]EventListener
}

// NewSession creates a session and wires the editor to persistence.
// The background is not loaded until LoadBackground is called.
func NewSession(o Options) (*Session, error) {
	s := &Session{
		fetch:     o.Fetcher,
		onSave:    o.OnSave,
		opts:      render.DefaultOptions(),
		log:       o.Logger.With().Str("component", "session").Logger(),
		site:      o.Site,
		mapData:   o.InitialMapData,
		listeners: make(map[EventType][]EventListener),
	}
	if o.GridSpacing > 0 {
		s.opts.GridSpacing = o.GridSpacing
	}
	if s.onSave != nil && s.site.ID == "" {
		s.site.ID = uuid.NewString()
		s.log.Info().Str("site", s.site.ID).Msg("no site id given, saving as a new site")
	}

	edOpts := []editor.Option{
		editor.WithAnnotations(o.InitialAnnotations),
		editor.WithLogger(o.Logger),
		editor.WithCanvasSize(float64(s.opts.Width), float64(s.opts.Height)),
	}
	if o.MoveInterval > 0 {
		edOpts = append(edOpts, editor.WithMoveInterval(o.MoveInterval))
	}
	s.Editor = editor.New(edOpts...)

	alert := o.Alert
	if alert == nil {
		alert = func(string) {}
	}
	var save persist.SaveFunc
	if s.onSave != nil {
		save = s.saveToSite
	}
	bridge, err := persist.NewBridge(s.Editor, save,
		persist.WithAlert(alert),
		persist.WithLogger(o.Logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create persistence bridge: %w", err)
	}
	s.bridge = bridge
	s.auto = persist.NewAutoSaver(autoSaveSink{s}, o.AutoSaveDelay)
	s.auto.SetEnabled(o.AutoSave && s.onSave != nil)

	s.Editor.On(editor.EventSceneChanged, func(data interface{}) {
		count, _ := data.(int)
		s.SetModified(true)
		s.auto.Notify(count)
	})
	// Off the input goroutine, like the toolbar save.
	s.Editor.On(editor.EventSaveRequested, func(interface{}) {
		go func() { _ = s.Save(context.Background()) }()
	})

	return s, nil
}

// saveToSite hands p to the host for the site the session shows now, which
// changes when a project is opened.
func (s *Session) saveToSite(ctx context.Context, p persist.Payload) error {
	return s.onSave(ctx, s.Site(), p)
}

// autoSaveSink routes debounced saves through the session so listeners see
// EventSaved.
type autoSaveSink struct{ s *Session }

func (a autoSaveSink) Save(ctx context.Context, silent bool) error {
	return a.s.save(ctx, silent)
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the session as modified and emits an event.
func (s *Session) SetModified(modified bool) {
	s.mu.Lock()
	changed := s.modified != modified
	s.modified = modified
	s.mu.Unlock()
	if changed {
		s.Emit(EventModified, modified)
	}
}

func (s *Session) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
	s.Emit(EventLoadingChanged, loading)
}

// LoadBackground loads the initial map data, or fetches a satellite image
// for the site address when there is none. On failure the editor keeps a
// blank background and the error is logged and returned.
func (s *Session) LoadBackground(ctx context.Context) error {
	s.mu.RLock()
	data := s.mapData
	s.mu.RUnlock()
	return s.loadBackground(ctx, data)
}

// ReloadSatellite fetches a fresh satellite image for the site address,
// ignoring any saved map data. On failure the current background is kept.
func (s *Session) ReloadSatellite(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	address := s.Site().Address
	if s.fetch == nil || address == "" {
		return ErrNoBackground
	}
	bg, err := s.fetch.Fetch(ctx, address)
	if err != nil {
		s.log.Warn().Err(err).Str("address", address).Msg("satellite reload failed")
		return err
	}
	s.setBackground(bg)
	s.SetModified(true)
	return nil
}

func (s *Session) loadBackground(ctx context.Context, data string) error {
	s.setLoading(true)
	defer s.setLoading(false)

	address := s.Site().Address

	var (
		bg  *background.Background
		err error
	)
	switch {
	case data != "":
		bg, err = background.FromDataURL(data, s.opts.Width, s.opts.Height)
	case s.fetch != nil && address != "":
		bg, err = s.fetch.Fetch(ctx, address)
	default:
		err = ErrNoBackground
	}
	if err != nil {
		s.log.Warn().Err(err).Str("address", address).Msg("background unavailable, continuing blank")
		s.setBackground(&background.Background{Source: background.SourceNone})
		return err
	}

	s.setBackground(bg)
	return nil
}

// UploadBackground replaces the background with an image file.
func (s *Session) UploadBackground(path string) error {
	bg, err := background.Load(path, s.opts.Width, s.opts.Height)
	if err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("background upload failed")
		return err
	}
	s.setBackground(bg)
	s.SetModified(true)
	return nil
}

func (s *Session) setBackground(bg *background.Background) {
	s.mu.Lock()
	s.source = bg.Source
	s.mu.Unlock()
	_ = s.Editor.Dispatch(editor.SetBackground{Image: bg.Image})
	s.Emit(EventBackgroundLoaded, bg.Source)
}

// Save saves the scene through the host callback, alerting on failure.
func (s *Session) Save(ctx context.Context) error {
	return s.save(ctx, false)
}

func (s *Session) save(ctx context.Context, silent bool) error {
	if err := s.bridge.Save(ctx, silent); err != nil {
		return err
	}
	s.SetModified(false)
	s.Emit(EventSaved, s.bridge.LastSaved())
	return nil
}

// SetAutoSave enables or disables auto-save. It stays off without a save
// function.
func (s *Session) SetAutoSave(on bool) {
	s.auto.SetEnabled(on && s.onSave != nil)
}

func (s *Session) AutoSaveEnabled() bool {
	return s.auto.Enabled()
}

// OpenProject replaces the session with a project file.
func (s *Session) OpenProject(path string) error {
	proj, err := project.Load(path)
	if err != nil {
		return err
	}

	bg := &background.Background{Source: background.SourceNone}
	switch {
	case proj.BaseMapData != "":
		bg, err = background.FromDataURL(proj.BaseMapData, s.opts.Width, s.opts.Height)
	case proj.BackgroundPath != "":
		bg, err = background.Load(proj.GetBackgroundPath(path), s.opts.Width, s.opts.Height)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("project", path).Msg("project background unavailable")
		bg = &background.Background{Source: background.SourceNone}
	}

	g, ok, err := proj.Georef()
	if err != nil {
		s.log.Warn().Err(err).Str("project", path).Msg("ignoring invalid georeference")
	}

	s.mu.Lock()
	site := proj.Site
	if site.ID == "" {
		site.ID = s.site.ID
	}
	s.site = site
	s.mapData = proj.BaseMapData
	s.project = proj
	s.projectPath = path
	s.geo = nil
	if ok {
		s.geo = &g
	}
	s.mu.Unlock()

	s.setBackground(bg)
	if proj.Settings.Color != "" {
		if err := s.Editor.Dispatch(editor.SetColor{Color: proj.Settings.Color}); err != nil {
			s.log.Warn().Err(err).Msg("ignoring project color")
		}
	}
	if s.Editor.GridVisible() != proj.Settings.GridVisible {
		_ = s.Editor.Dispatch(editor.ToggleGrid{})
	}
	if err := s.Editor.Dispatch(editor.LoadScene{Annotations: proj.Annotations}); err != nil {
		return err
	}

	s.SetModified(false)
	s.Emit(EventProjectLoaded, path)
	return nil
}

// SaveProject writes the session to a project file. The background is
// embedded as a data URL.
func (s *Session) SaveProject(path string) error {
	path = project.WithExtension(path)

	s.mu.RLock()
	proj := project.New(s.site)
	if s.project != nil {
		proj.Created = s.project.Created
		proj.StaticMap = s.project.StaticMap
		proj.ControlPoints = s.project.ControlPoints
	}
	s.mu.RUnlock()

	if img := s.Editor.Background(); img != nil {
		data, err := background.EncodeDataURL(img)
		if err != nil {
			return fmt.Errorf("failed to encode background: %w", err)
		}
		proj.BaseMapData = data
	}
	proj.Annotations = s.Editor.Annotations()
	proj.Settings = project.Settings{
		GridVisible: s.Editor.GridVisible(),
		Color:       s.Editor.Color(),
	}

	if err := proj.Save(path); err != nil {
		return err
	}

	s.mu.Lock()
	s.project = proj
	s.projectPath = path
	s.mu.Unlock()

	s.SetModified(false)
	s.Emit(EventProjectSaved, path)
	return nil
}

// SetGeoref sets the georeference used for polygon areas; nil clears it.
func (s *Session) SetGeoref(g *georef.Georef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geo = g
}

// Render rasterizes what the screen should show.
func (s *Session) Render() *image.RGBA {
	return render.Render(s.Editor.Frame(), s.opts)
}

// WritePNG writes the saved scene as PNG.
func (s *Session) WritePNG(w io.Writer) error {
	return export.WritePNG(w, render.Render(s.Editor.SaveFrame(), s.opts))
}

// WritePDF writes the saved scene as a PDF report.
func (s *Session) WritePDF(w io.Writer, generated time.Time) error {
	s.mu.RLock()
	doc := export.Document{
		Title:       "Site Map",
		SiteName:    s.site.Name,
		SiteAddress: s.site.Address,
		Generated:   generated,
		Georef:      s.geo,
	}
	s.mu.RUnlock()

	f := s.Editor.SaveFrame()
	doc.Image = render.Render(f, s.opts)
	doc.Annotations = f.Annotations
	doc.Legend = annotation.LegendItems()
	return export.WritePDF(w, doc)
}

// ExportFile writes the scene to path as PNG or PDF, chosen by extension.
func (s *Session) ExportFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	switch format := export.FormatFor(path); format {
	case export.FormatPDF:
		err = s.WritePDF(file, time.Now())
	default:
		err = s.WritePNG(file)
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	s.log.Info().Str("path", path).Msg("exported")
	return nil
}

// Site returns the site being edited.
func (s *Session) Site() store.Site {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.site
}

// Loading reports whether a background load is in progress.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) BackgroundSource() background.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

func (s *Session) Modified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

func (s *Session) ProjectPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projectPath
}

func (s *Session) Georef() *georef.Georef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.geo
}

// LastSaved returns the time of the last successful save.
func (s *Session) LastSaved() time.Time {
	return s.bridge.LastSaved()
}

// RenderOptions returns the raster options of the session canvas.
func (s *Session) RenderOptions() render.Options {
	return s.opts
}

// Close stops pending auto-saves.
func (s *Session) Close() {
	s.auto.Stop()
}
