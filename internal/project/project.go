// Package project provides site map project file handling.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"site-mapper/internal/annotation"
	"site-mapper/internal/georef"
	"site-mapper/internal/store"
)

// Extension is the file extension of project files.
const Extension = ".sitemap"

// CurrentVersion is written by Save.
const CurrentVersion = 1

// File represents a site map project file (.sitemap).
type File struct {
	Version  int        `json:"version"`
	Site     store.Site `json:"site"`
	Created  time.Time  `json:"created"`
	Modified time.Time  `json:"modified"`

	// Background: an embedded snapshot wins over an image path (relative
	// to the project file).
	BaseMapData    string `json:"base_map_data,omitempty"`
	BackgroundPath string `json:"background,omitempty"`

	Annotations annotation.List `json:"annotations"`

	// Georeference
	StaticMap     *georef.StaticMap     `json:"static_map,omitempty"`
	ControlPoints []georef.ControlPoint `json:"control_points,omitempty"`

	// User settings
	Settings Settings `json:"settings"`
}

// Settings holds editor preferences saved with the project.
type Settings struct {
	GridVisible bool   `json:"grid_visible"`
	Color       string `json:"color,omitempty"`
}

// New creates a new project file for a site.
func New(site store.Site) *File {
	now := time.Now()
	return &File{
		Version:     CurrentVersion,
		Site:        site,
		Created:     now,
		Modified:    now,
		Annotations: annotation.List{},
	}
}

// Load loads a project from a .sitemap file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("failed to parse project %s: %w", path, err)
	}
	if proj.Version > CurrentVersion {
		return nil, fmt.Errorf("project %s has unsupported version %d", path, proj.Version)
	}
	if proj.Annotations == nil {
		proj.Annotations = annotation.List{}
	}

	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Version = CurrentVersion
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SetBackgroundImage sets the background image path (relative to project).
func (p *File) SetBackgroundImage(projectPath, imagePath string) {
	rel, err := filepath.Rel(filepath.Dir(projectPath), imagePath)
	if err != nil {
		p.BackgroundPath = imagePath
	} else {
		p.BackgroundPath = rel
	}
	p.Modified = time.Now()
}

// GetBackgroundPath returns the absolute path to the background image.
func (p *File) GetBackgroundPath(projectPath string) string {
	if p.BackgroundPath == "" {
		return ""
	}
	if filepath.IsAbs(p.BackgroundPath) {
		return p.BackgroundPath
	}
	return filepath.Join(filepath.Dir(projectPath), p.BackgroundPath)
}

// Georef returns the project's georeference: fitted control points when
// there are enough, otherwise the static map frame. ok is false when the
// project has neither.
func (p *File) Georef() (g georef.Georef, ok bool, err error) {
	if len(p.ControlPoints) >= 3 {
		g, err = georef.Fit(p.ControlPoints)
		return g, err == nil, err
	}
	if p.StaticMap != nil {
		g, err = georef.FromStaticMap(*p.StaticMap)
		return g, err == nil, err
	}
	return georef.Georef{}, false, nil
}

// WithExtension returns path with the project extension appended if missing.
func WithExtension(path string) string {
	if strings.EqualFold(filepath.Ext(path), Extension) {
		return path
	}
	return path + Extension
}
