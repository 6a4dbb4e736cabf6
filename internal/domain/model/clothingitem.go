package model

import (
	"strings"
	"time"
)

// Category classifies a clothing item into one of the wardrobe buckets
// recognized by the styling backend.
type Category string

const (
	CategoryTop       Category = "Top"
	CategoryBottom    Category = "Bottom"
	CategoryDress     Category = "Dress"
	CategoryOuterwear Category = "Outerwear"
	CategoryShoes     Category = "Shoes"
	CategoryAccessory Category = "Accessory"
)

var categories = [...]Category{
	CategoryTop, CategoryBottom, CategoryDress,
	CategoryOuterwear, CategoryShoes, CategoryAccessory,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory maps a category name to its canonical form, ignoring case.
// The backend is not consistent about casing on the wire, so every inbound
// category goes through here. Unknown names are returned as-is with ok false.
func ParseCategory(s string) (Category, bool) {
	for _, known := range categories {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}
	return Category(s), false
}

// ClothingItem is a single garment in the user's wardrobe. RemoteID is the
// backend's identifier; ID is the local cache row id and is zero for items
// that have not been persisted locally.
type ClothingItem struct {
	ID        int64
	RemoteID  string
	Name      string
	Category  Category
	Color     string
	Tags      []string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AnalyzeConfig carries per-upload analysis options. It is serialized into
// the "config" part of the multipart analyze request.
type AnalyzeConfig struct {
	Locale string   `json:"locale,omitempty"`
	Hint   Category `json:"hint,omitempty"`
}

// AnalysisResult is what the backend's image analysis returns for a garment
// photo: a category guess plus descriptive attributes.
type AnalysisResult struct {
	Category    Category
	Color       string
	Tags        []string
	Description string
}

// DefaultAnalysis returns the fallback analysis used when the backend cannot
// classify an image. Top is the least-wrong default for a garment photo.
func DefaultAnalysis() AnalysisResult {
	return AnalysisResult{Category: CategoryTop}
}
