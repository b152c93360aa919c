package store

import "time"

// DimensionRow is one aggregated member of a ranked dimension, decoded
// at the store boundary so the ranking layer stays dimension-agnostic.
type DimensionRow struct {
	Member string
	Volume int64
}

// FactQuery scopes one aggregation over a dimension's fact table.
type FactQuery struct {
	Table        string
	Start        time.Time
	End          time.Time
	ZoneID       int64
	CategoryID   int64
	ProvenanceID int64
}

// DailyQuery scopes a day-level series aggregation. Local visitors are
// excluded by provenance rather than selected, since day-visit activity
// spans every non-local provenance.
type DailyQuery struct {
	Start               time.Time
	End                 time.Time
	ZoneID              int64
	CategoryID          int64
	ExcludeProvenanceID int64
}

// FactRow is one pre-aggregated measurement as ingested: a volume for a
// specific date, zone, visitor category, provenance and member.
type FactRow struct {
	Date       time.Time
	Zone       string
	Category   string
	Provenance string
	Member     string
	Volume     int64
}

// DayVolume is one day of a fact series.
type DayVolume struct {
	Date   time.Time
	Volume int64
}
