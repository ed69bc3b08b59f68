// Package valuation contains the regulatory battery rate table and the
// engine that converts a declared battery manifest into money and weight.
package valuation

// CategoryKey identifies one battery category in the published rate table.
// The set of keys is closed: manifests are validated against it at the
// boundary, never treated as an open dictionary.
type CategoryKey string

// Piece-rated portable categories (RON per piece).
const (
	PortablePastila  CategoryKey = "portable_pastila"
	Portable0to50    CategoryKey = "portable_0_50"
	Portable51to150  CategoryKey = "portable_51_150"
	Portable151to250 CategoryKey = "portable_151_250"
	Portable251to500 CategoryKey = "portable_251_500"
	Portable501to750 CategoryKey = "portable_501_750"
	Portable751to1k  CategoryKey = "portable_751_1000"
	PortableOver1k   CategoryKey = "portable_1000_plus"
)

// Weight-rated automotive and industrial categories (RON per kilogram).
const (
	Auto3a       CategoryKey = "auto_3a"
	Auto3b       CategoryKey = "auto_3b"
	Auto3c       CategoryKey = "auto_3c"
	Industrial4a CategoryKey = "industrial_4a"
	Industrial4b CategoryKey = "industrial_4b"
	Industrial4c CategoryKey = "industrial_4c"
)

// PortableKeys lists the piece-rated categories in display order.
var PortableKeys = []CategoryKey{
	PortablePastila,
	Portable0to50,
	Portable51to150,
	Portable151to250,
	Portable251to500,
	Portable501to750,
	Portable751to1k,
	PortableOver1k,
}

// WeightKeys lists the kilogram-rated categories in display order.
var WeightKeys = []CategoryKey{
	Auto3a,
	Auto3b,
	Auto3c,
	Industrial4a,
	Industrial4b,
	Industrial4c,
}

// AllKeys lists every category key in display order. Invoice lines and
// valuation results follow this order so output is stable across runs.
var AllKeys = append(append([]CategoryKey{}, PortableKeys...), WeightKeys...)

// Labels maps category keys to their Romanian display labels, matching the
// published tariff table.
var Labels = map[CategoryKey]string{
	PortablePastila:  "Pastila",
	Portable0to50:    "0-50 g",
	Portable51to150:  "51-150 g",
	Portable151to250: "151-250 g",
	Portable251to500: "251-500 g",
	Portable501to750: "501-750 g",
	Portable751to1k:  "751-1000 g",
	PortableOver1k:   "> 1000 g",
	Auto3a:           "Auto 3a - Plumb acid",
	Auto3b:           "Auto 3b - Nichel cadmiu (NiCd)",
	Auto3c:           "Auto 3c - Altele",
	Industrial4a:     "Industrial 4a - Plumb acid",
	Industrial4b:     "Industrial 4b - Nichel cadmiu (NiCd)",
	Industrial4c:     "Industrial 4c - Altele",
}

// String returns the string representation of the category key
func (k CategoryKey) String() string {
	return string(k)
}

// Label returns the display label for the category key
func (k CategoryKey) Label() string {
	if label, ok := Labels[k]; ok {
		return label
	}
	return string(k)
}

// IsValid checks if the key is part of the published table
func (k CategoryKey) IsValid() bool {
	_, ok := Labels[k]
	return ok
}

// IsPieceRated returns true for portable categories priced per piece
func (k CategoryKey) IsPieceRated() bool {
	for _, pk := range PortableKeys {
		if k == pk {
			return true
		}
	}
	return false
}
