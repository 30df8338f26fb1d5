package main

import (
	"context"

	"site-mapper/internal/app"
	"site-mapper/internal/config"
	"site-mapper/internal/store"

	"github.com/rs/zerolog"
)

func fromProject(path string, log zerolog.Logger) (*app.Session, error) {
	session, err := app.NewSession(app.Options{
		Logger:      log,
		GridSpacing: config.Editor().GridSpacing,
	})
	if err != nil {
		return nil, err
	}
	if err := session.OpenProject(path); err != nil {
		session.Close()
		return nil, err
	}
	return session, nil
}

func fromStore(ctx context.Context, siteID string, log zerolog.Logger) (*app.Session, error) {
	st, err := store.Open(config.StorePath(), log)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	rec, err := st.Load(ctx, siteID)
	if err != nil {
		return nil, err
	}

	session, err := app.NewSession(app.Options{
		Site:               rec.Site,
		InitialMapData:     rec.InitialMapData(),
		InitialAnnotations: rec.Annotations,
		Logger:             log,
		GridSpacing:        config.Editor().GridSpacing,
	})
	if err != nil {
		return nil, err
	}
	// A map saved without a background exports over blank canvas.
	_ = session.LoadBackground(ctx)
	return session, nil
}
