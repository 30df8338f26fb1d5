// Package main provides the entry point for the Site Mapper application.
package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"site-mapper/internal/app"
	"site-mapper/internal/config"
	"site-mapper/internal/logging"
	"site-mapper/internal/satellite"
	"site-mapper/internal/store"
	"site-mapper/internal/version"
	"site-mapper/ui/mainwindow"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
)

const appID = "io.sitemapper.editor"

func main() {
	configDir := flag.String("config", ".", "Directory containing site-mapper.cfg.json")
	siteID := flag.String("site", "", "Site ID")
	siteName := flag.String("name", "", "Site name")
	siteAddress := flag.String("address", "", "Site address, used to fetch a satellite image")
	flag.Parse()

	if err := config.Load(*configDir); err != nil {
		log := logging.New("info", os.Stderr)
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log := logging.New(config.LogLevel(), os.Stderr)
	log.Info().Str("version", version.String()).Msg("starting Site Mapper")

	st, err := store.Open(config.StorePath(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()

	site := store.Site{ID: *siteID, Name: *siteName, Address: *siteAddress}
	opts := sessionOptions(st, site)
	opts.Logger = log

	sat := config.Satellite()
	opts.Fetcher = satellite.NewClient(sat.APIKey,
		satellite.WithURLTemplate(sat.URLTemplate),
		satellite.WithTimeout(sat.Timeout),
		satellite.WithZoom(sat.Zoom),
	)

	ed := config.Editor()
	opts.AutoSave = ed.AutoSave
	opts.AutoSaveDelay = ed.AutoSaveDelay
	opts.MoveInterval = ed.MoveInterval
	opts.GridSpacing = ed.GridSpacing

	// The window does not exist yet; alerts go through this indirection.
	var win *mainwindow.MainWindow
	opts.Alert = func(msg string) {
		if win != nil {
			dialog.ShowError(errors.New(msg), win.Window)
		}
	}

	session, err := app.NewSession(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session")
	}
	defer session.Close()

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.SiteMapperTheme{})

	win = mainwindow.New(fyneApp, session, config.ExportDir())

	// Handle command line arguments
	if flag.NArg() > 0 {
		projectPath := flag.Arg(0)
		if err := session.OpenProject(projectPath); err != nil {
			log.Error().Err(err).Str("project", projectPath).Msg("failed to open project")
		}
	} else {
		win.LoadBackground()
	}

	win.ShowAndRun()
}

// sessionOptions restores the stored map of site, if any. Missing name and
// address are filled from the stored record. Without a site id the session
// saves under a fresh one.
func sessionOptions(st *store.Store, site store.Site) app.Options {
	opts := app.Options{Site: site, OnSave: st.Save}
	if site.ID == "" {
		return opts
	}

	rec, err := st.Load(context.Background(), site.ID)
	if err != nil {
		return opts
	}
	if site.Name == "" {
		site.Name = rec.Site.Name
	}
	if site.Address == "" {
		site.Address = rec.Site.Address
	}
	opts.Site = site
	opts.InitialMapData = rec.InitialMapData()
	opts.InitialAnnotations = rec.Annotations
	return opts
}
