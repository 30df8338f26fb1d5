package annotation

// Glyph selects the vector symbol drawn for a feature icon.
type Glyph int

const (
	GlyphDot Glyph = iota
	GlyphDrain
	GlyphHazard
	GlyphAccessibility
	GlyphHydrant
	GlyphArrow
)

// AreaCategory describes a polygon area type.
type AreaCategory struct {
	ID    string
	Label string
	Color string
}

// IconCategory describes a feature icon type.
type IconCategory struct {
	ID    string
	Label string
	Color string
	Glyph Glyph
}

// LegendKind distinguishes icon and area entries of the legend.
type LegendKind string

const (
	LegendIcon LegendKind = "icon"
	LegendArea LegendKind = "area"
)

// LegendItem is one category descriptor of the persisted legend.
type LegendItem struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Color string     `json:"color"`
	Kind  LegendKind `json:"kind"`
}

// AreaCategories is the fixed set of polygon area types, in palette order.
var AreaCategories = []AreaCategory{
	{ID: "parking", Label: "Parking Area", Color: "#3B82F6"},
	{ID: "no_parking", Label: "No Parking Zone", Color: "#EF4444"},
	{ID: "loading_zone", Label: "Loading Zone", Color: "#F59E0B"},
	{ID: "fire_lane", Label: "Fire Lane", Color: "#DC2626"},
	{ID: "pedestrian", Label: "Pedestrian Walkway", Color: "#10B981"},
	{ID: "landscaping", Label: "Landscaping", Color: "#22C55E"},
	{ID: "work_zone", Label: "Work Zone", Color: "#F97316"},
	{ID: "restricted", Label: "Restricted Area", Color: "#7C3AED"},
}

// IconCategories is the fixed set of feature icon types, in palette order.
var IconCategories = []IconCategory{
	{ID: "drain", Label: "Storm Drain", Color: "#2563EB", Glyph: GlyphDrain},
	{ID: "hazard", Label: "Hazard", Color: "#EAB308", Glyph: GlyphHazard},
	{ID: "accessibility", Label: "Accessible Parking", Color: "#1D4ED8", Glyph: GlyphAccessibility},
	{ID: "hydrant", Label: "Fire Hydrant", Color: "#DC2626", Glyph: GlyphHydrant},
	{ID: "arrow", Label: "Traffic Direction", Color: "#111827", Glyph: GlyphArrow},
	{ID: "entrance", Label: "Entrance", Color: "#059669", Glyph: GlyphArrow},
	{ID: "electrical", Label: "Electrical Panel", Color: "#F59E0B", Glyph: GlyphDot},
	{ID: "water_shutoff", Label: "Water Shutoff", Color: "#0EA5E9", Glyph: GlyphDot},
	{ID: "light", Label: "Light Pole", Color: "#FACC15", Glyph: GlyphDot},
	{ID: "camera", Label: "Security Camera", Color: "#6B7280", Glyph: GlyphDot},
}

// LookupArea returns the area category with the given id.
func LookupArea(id string) (AreaCategory, bool) {
	for _, c := range AreaCategories {
		if c.ID == id {
			return c, true
		}
	}
	return AreaCategory{}, false
}

// LookupIcon returns the icon category with the given id.
func LookupIcon(id string) (IconCategory, bool) {
	for _, c := range IconCategories {
		if c.ID == id {
			return c, true
		}
	}
	return IconCategory{}, false
}

// GlyphFor returns the glyph of an icon category, or GlyphDot if unknown.
func GlyphFor(category string) Glyph {
	if c, ok := LookupIcon(category); ok {
		return c.Glyph
	}
	return GlyphDot
}

// LegendItems enumerates every icon category followed by every area category.
func LegendItems() []LegendItem {
	items := make([]LegendItem, 0, len(IconCategories)+len(AreaCategories))
	for _, c := range IconCategories {
		items = append(items, LegendItem{ID: c.ID, Label: c.Label, Color: c.Color, Kind: LegendIcon})
	}
	for _, c := range AreaCategories {
		items = append(items, LegendItem{ID: c.ID, Label: c.Label, Color: c.Color, Kind: LegendArea})
	}
	return items
}
