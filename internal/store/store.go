// Package store keeps saved site maps in a local SQLite database.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"site-mapper/internal/annotation"
	"site-mapper/internal/persist"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when no map is stored for a site.
var ErrNotFound = errors.New("site map not found")

// Site identifies the site a map belongs to.
type Site struct {
	ID      string `json:"site_id"`
	Name    string `json:"site_name"`
	Address string `json:"site_address"`
}

// SiteMap is the persisted row. Annotations and legend are kept in their
// wire form.
type SiteMap struct {
	ID          uint           `gorm:"primarykey;autoIncrement;"`
	SiteID      string         `gorm:"uniqueIndex;size:64;not null"`
	SiteName    string         `gorm:"size:255"`
	SiteAddress string         `gorm:"size:512"`
	BaseMapData string         `gorm:"type:text"`
	Background  string         `gorm:"type:text"`
	Annotations datatypes.JSON `gorm:"default:'[]'"`
	LegendItems datatypes.JSON `gorm:"default:'[]'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Record is a decoded site map.
type Record struct {
	Site        Site
	BaseMapData string
	Background  string // bare background, empty for maps saved without one
	Annotations annotation.List
	LegendItems []annotation.LegendItem
	UpdatedAt   time.Time
}

// InitialMapData returns the image to reopen the map over: the bare
// background when one was stored, else the flattened base map.
func (r *Record) InitialMapData() string {
	if r.Background != "" {
		return r.Background
	}
	return r.BaseMapData
}

// Store wraps the database handle.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open opens (and migrates) the database at path. An empty path opens a
// private in-memory database.
func Open(path string, log zerolog.Logger) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if err := db.AutoMigrate(&SiteMap{}); err != nil {
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}

	log = log.With().Str("component", "store").Logger()
	if path == "" {
		log.Debug().Msg("using in-memory store")
	} else {
		log.Debug().Str("path", path).Msg("using sqlite store")
	}
	return &Store{db: db, log: log}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save inserts or replaces the map of site.
func (s *Store) Save(ctx context.Context, site Site, p persist.Payload) error {
	if site.ID == "" {
		return errors.New("site id is required")
	}
	list := p.Annotations
	if list == nil {
		list = annotation.List{}
	}
	annotations, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode annotations: %w", err)
	}
	legend, err := json.Marshal(p.LegendItems)
	if err != nil {
		return fmt.Errorf("failed to encode legend: %w", err)
	}

	row := SiteMap{
		SiteID:      site.ID,
		SiteName:    site.Name,
		SiteAddress: site.Address,
		BaseMapData: p.BaseMapData,
		Background:  p.BackgroundData,
		Annotations: datatypes.JSON(annotations),
		LegendItems: datatypes.JSON(legend),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "site_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"site_name", "site_address", "base_map_data", "background", "annotations", "legend_items", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save site map %s: %w", site.ID, err)
	}

	s.log.Debug().Str("site", site.ID).Int("annotations", len(list)).Msg("site map stored")
	return nil
}

// Load returns the stored map of a site.
func (s *Store) Load(ctx context.Context, siteID string) (*Record, error) {
	var row SiteMap
	err := s.db.WithContext(ctx).Where("site_id = ?", siteID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", siteID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load site map %s: %w", siteID, err)
	}
	return row.decode()
}

// Sites lists every site with a stored map, most recently updated first.
func (s *Store) Sites(ctx context.Context) ([]Site, error) {
	var rows []SiteMap
	err := s.db.WithContext(ctx).
		Select("site_id", "site_name", "site_address", "updated_at").
		Order("updated_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list site maps: %w", err)
	}

	sites := make([]Site, 0, len(rows))
	for _, r := range rows {
		sites = append(sites, Site{ID: r.SiteID, Name: r.SiteName, Address: r.SiteAddress})
	}
	return sites, nil
}

// Delete removes the map of a site.
func (s *Store) Delete(ctx context.Context, siteID string) error {
	res := s.db.WithContext(ctx).Where("site_id = ?", siteID).Delete(&SiteMap{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete site map %s: %w", siteID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", siteID, ErrNotFound)
	}
	return nil
}

func (row SiteMap) decode() (*Record, error) {
	rec := &Record{
		Site:        Site{ID: row.SiteID, Name: row.SiteName, Address: row.SiteAddress},
		BaseMapData: row.BaseMapData,
		Background:  row.Background,
		Annotations: annotation.List{},
		UpdatedAt:   row.UpdatedAt,
	}
	if len(row.Annotations) > 0 {
		if err := json.Unmarshal(row.Annotations, &rec.Annotations); err != nil {
			return nil, fmt.Errorf("site map %s: %w", row.SiteID, err)
		}
	}
	if len(row.LegendItems) > 0 {
		if err := json.Unmarshal(row.LegendItems, &rec.LegendItems); err != nil {
			return nil, fmt.Errorf("site map %s legend: %w", row.SiteID, err)
		}
	}
	return rec, nil
}
