package store

import (
	"context"
	"path/filepath"
	"testing"

	"site-mapper/internal/annotation"
	"site-mapper/internal/persist"
	"site-mapper/pkg/geometry"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open("", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func payload(list annotation.List) persist.Payload {
	return persist.Payload{
		BaseMapData: "data:image/png;base64,AAAA",
		Annotations: list,
		LegendItems: annotation.LegendItems(),
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	site := Site{ID: "site-1", Name: "North Depot", Address: "1 Depot Rd"}
	list := annotation.List{
		annotation.Polygon{ID: "p", Category: "parking", Label: "Parking Area", Color: "#3B82F6",
			Points: []geometry.Point2D{geometry.Pt(0, 0), geometry.Pt(10, 0), geometry.Pt(10, 10)}},
		annotation.Text{ID: "t", Color: "#000000", Position: geometry.Pt(5, 5), Content: "Gate", FontSize: 16},
	}

	require.NoError(t, s.Save(ctx, site, payload(list)))

	rec, err := s.Load(ctx, "site-1")
	require.NoError(t, err)
	assert.Equal(t, site, rec.Site)
	assert.Equal(t, list, rec.Annotations)
	assert.Equal(t, "data:image/png;base64,AAAA", rec.BaseMapData)
	assert.Equal(t, "data:image/png;base64,AAAA", rec.InitialMapData())
	assert.Equal(t, annotation.LegendItems(), rec.LegendItems)
	assert.False(t, rec.UpdatedAt.IsZero())
}

func TestStore_SaveReplaces(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	site := Site{ID: "site-1", Name: "Depot"}

	require.NoError(t, s.Save(ctx, site, payload(annotation.List{annotation.Circle{ID: "a"}})))
	site.Name = "Depot (renamed)"
	require.NoError(t, s.Save(ctx, site, payload(nil)))

	rec, err := s.Load(ctx, "site-1")
	require.NoError(t, err)
	assert.Equal(t, "Depot (renamed)", rec.Site.Name)
	assert.Empty(t, rec.Annotations)

	sites, err := s.Sites(ctx)
	require.NoError(t, err)
	assert.Len(t, sites, 1)
}

func TestStore_NotFound(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	_, err := s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)
	assert.Error(t, s.Save(ctx, Site{}, payload(nil)))
}

func TestStore_Delete(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, Site{ID: "x"}, payload(nil)))

	require.NoError(t, s.Delete(ctx, "x"))
	_, err := s.Load(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maps.db")
	ctx := context.Background()

	s, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, Site{ID: "f"}, payload(annotation.List{annotation.Circle{ID: "c", Radius: 3}})))
	require.NoError(t, s.Close())

	s, err = Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()
	rec, err := s.Load(ctx, "f")
	require.NoError(t, err)
	assert.Len(t, rec.Annotations, 1)
}

func TestStore_KeepsBareBackground(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	site := Site{ID: "site-2"}

	p := payload(nil)
	p.BackgroundData = "data:image/png;base64,BBBB"
	require.NoError(t, s.Save(ctx, site, p))

	rec, err := s.Load(ctx, "site-2")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,BBBB", rec.Background)
	assert.Equal(t, "data:image/png;base64,BBBB", rec.InitialMapData())
	assert.Empty(t, rec.Annotations)
}
