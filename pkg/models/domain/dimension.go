package domain

// Dimension identifies a ranked fact dimension. The value doubles as
// the URL segment and the cache category suffix.
type Dimension string

const (
	DimensionDepartments Dimension = "departments"
	DimensionRegions     Dimension = "regions"
	DimensionCountries   Dimension = "countries"
	DimensionAgeBands    Dimension = "age_bands"
	DimensionSegments    Dimension = "segments"
)

// Dimensions lists the ranked dimensions in dashboard order.
func Dimensions() []Dimension {
	return []Dimension{
		DimensionDepartments,
		DimensionRegions,
		DimensionCountries,
		DimensionAgeBands,
		DimensionSegments,
	}
}

// ParseDimension validates a caller-supplied dimension name.
func ParseDimension(s string) (Dimension, bool) {
	d := Dimension(s)
	switch d {
	case DimensionDepartments, DimensionRegions, DimensionCountries,
		DimensionAgeBands, DimensionSegments:
		return d, true
	}
	return "", false
}

// DefaultLimit returns the ranked row count a dimension renders with:
// a wide table for departments, short tables for countries and regions,
// three-way splits for age bands and socio-economic segments.
func (d Dimension) DefaultLimit() int {
	switch d {
	case DimensionDepartments:
		return 15
	case DimensionRegions, DimensionCountries:
		return 5
	default:
		return 3
	}
}

// VisitorCategory selects the fact population being ranked.
type VisitorCategory string

const (
	CategoryTourist    VisitorCategory = "tourist"
	CategoryDayTripper VisitorCategory = "daytripper"
)

// ParseVisitorCategory validates a caller-supplied category name.
func ParseVisitorCategory(s string) (VisitorCategory, bool) {
	c := VisitorCategory(s)
	if c == CategoryTourist || c == CategoryDayTripper {
		return c, true
	}
	return "", false
}
