// Package persist packages the scene for the host's save function and runs
// the debounced auto-save.
package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"site-mapper/internal/annotation"
	"site-mapper/internal/background"
	"site-mapper/internal/render"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// FailureMessage is shown to the user when a non-silent save fails.
const FailureMessage = "Failed to save site map. Please try again."

// ErrNoSaveFunc is returned when the bridge has no destination.
var ErrNoSaveFunc = errors.New("no save function configured")

// Payload is the map handed to the host. Field names are the persisted keys.
// BaseMapData is the flattened scene; BackgroundData is the bare background
// so a reopened map does not show its annotations twice.
type Payload struct {
	BaseMapData    string                  `json:"base_map_data"`
	Annotations    annotation.List         `json:"annotations"`
	LegendItems    []annotation.LegendItem `json:"legend_items"`
	BackgroundData string                  `json:"background_data,omitempty"`
}

// SaveFunc persists a payload. It owns any network or disk I/O.
type SaveFunc func(ctx context.Context, p Payload) error

// FrameSource supplies the canonical scene to save.
type FrameSource interface {
	SaveFrame() render.Frame
}

// BuildPayload rasterizes f and packages it with its annotations and the legend.
func BuildPayload(f render.Frame, opts render.Options) (Payload, error) {
	img := render.Render(f, opts)
	data, err := background.EncodeDataURL(img)
	if err != nil {
		return Payload{}, fmt.Errorf("failed to encode base map: %w", err)
	}
	p := Payload{
		BaseMapData: data,
		Annotations: f.Annotations.Clone(),
		LegendItems: annotation.LegendItems(),
	}
	if f.Background != nil {
		p.BackgroundData, err = background.EncodeDataURL(f.Background)
		if err != nil {
			return Payload{}, fmt.Errorf("failed to encode background: %w", err)
		}
	}
	return p, nil
}

// Bridge connects an editor to the host save function.
type Bridge struct {
	src   FrameSource
	save  SaveFunc
	alert func(msg string)
	opts  render.Options
	log   zerolog.Logger
	now   func() time.Time

	mu        sync.RWMutex
	lastSaved time.Time

	saves    metric.Int64Counter
	failures metric.Int64Counter
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithAlert sets the function used to tell the user a save failed.
func WithAlert(fn func(msg string)) BridgeOption {
	return func(b *Bridge) { b.alert = fn }
}

// WithRenderOptions overrides the raster size of the saved base map.
func WithRenderOptions(opts render.Options) BridgeOption {
	return func(b *Bridge) { b.opts = opts }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) BridgeOption {
	return func(b *Bridge) { b.log = l }
}

// WithNow replaces time.Now for LastSaved.
func WithNow(now func() time.Time) BridgeOption {
	return func(b *Bridge) { b.now = now }
}

// NewBridge creates a bridge saving src through save.
func NewBridge(src FrameSource, save SaveFunc, opts ...BridgeOption) (*Bridge, error) {
	b := &Bridge{
		src:   src,
		save:  save,
		alert: func(string) {},
		opts:  render.DefaultOptions(),
		log:   zerolog.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.With().Str("component", "persist").Logger()

	// Meter from the global OTel provider is a no-op unless one is installed.
	m := meter()
	var err error
	b.saves, err = m.Int64Counter(
		"sitemap.saves",
		metric.WithDescription("Site map saves attempted"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating saves counter: %w", err)
	}
	b.failures, err = m.Int64Counter(
		"sitemap.save.failures",
		metric.WithDescription("Site map saves that failed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failures counter: %w", err)
	}
	return b, nil
}

// Save packages the current scene and hands it to the save function. A
// failure alerts the user unless silent; it is logged and returned either way.
func (b *Bridge) Save(ctx context.Context, silent bool) error {
	kind := attribute.Bool("silent", silent)
	b.saves.Add(ctx, 1, metric.WithAttributes(kind))

	err := b.save0(ctx)
	if err != nil {
		b.failures.Add(ctx, 1, metric.WithAttributes(kind))
		if silent {
			b.log.Warn().Err(err).Msg("auto-save failed")
		} else {
			b.log.Error().Err(err).Msg("save failed")
			b.alert(FailureMessage)
		}
		return err
	}

	b.mu.Lock()
	b.lastSaved = b.now()
	b.mu.Unlock()
	b.log.Info().Bool("silent", silent).Msg("site map saved")
	return nil
}

func (b *Bridge) save0(ctx context.Context) error {
	if b.save == nil {
		return ErrNoSaveFunc
	}
	p, err := BuildPayload(b.src.SaveFrame(), b.opts)
	if err != nil {
		return err
	}
	if err := b.save(ctx, p); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// LastSaved returns the time of the last successful save, or the zero time.
func (b *Bridge) LastSaved() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastSaved
}
