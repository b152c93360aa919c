package api

import "time"

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

type ResolvedPeriod struct {
	Current  DateRange `json:"current"`
	Previous DateRange `json:"previous"`
}

// ComparisonRow is one rendered ranking line. Rank is null on the
// residual "others" row and on padding rows.
type ComparisonRow struct {
	Rank             *int     `json:"rank"`
	Member           string   `json:"member"`
	Current          int64    `json:"current"`
	Previous         int64    `json:"previous"`
	DeltaPct         *float64 `json:"delta_pct"`
	ShareCurrentPct  float64  `json:"share_current_pct"`
	SharePreviousPct float64  `json:"share_previous_pct"`
	Other            bool     `json:"other"`
}

type DimensionReport struct {
	Dimension string          `json:"dimension"`
	Category  string          `json:"category"`
	Zone      string          `json:"zone"`
	Year      int             `json:"year"`
	Period    string          `json:"period"`
	Resolved  ResolvedPeriod  `json:"resolved"`
	Rows      []ComparisonRow `json:"rows"`
}

type Dashboard struct {
	Zone     string                     `json:"zone"`
	Year     int                        `json:"year"`
	Period   string                     `json:"period"`
	Category string                     `json:"category"`
	Resolved ResolvedPeriod             `json:"resolved"`
	Blocks   map[string][]ComparisonRow `json:"blocks"`
}

type DayVolume struct {
	Date   time.Time `json:"date"`
	Volume int64     `json:"volume"`
}

type ActivitySummary struct {
	Zone          string         `json:"zone"`
	Year          int            `json:"year"`
	Period        string         `json:"period"`
	Resolved      ResolvedPeriod `json:"resolved"`
	Total         int64          `json:"total"`
	TotalPrevious int64          `json:"total_previous"`
	TotalDeltaPct *float64       `json:"total_delta_pct"`
	Peak          *DayVolume     `json:"peak"`
	PeakPrevious  *DayVolume     `json:"peak_previous"`
	PeakDeltaPct  *float64       `json:"peak_delta_pct"`
}

type PeriodOption struct {
	Code  string    `json:"code"`
	Label string    `json:"label"`
	Range DateRange `json:"range"`
}

type Zone struct {
	Id    string `json:"id"`
	Label string `json:"label"`
}

type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}
