package domain

import "time"

// DateRange is an inclusive calendar window. Start carries day
// precision, End carries end-of-day precision.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of calendar days the range spans.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// CustomRange is a caller-supplied explicit window that overrides a
// symbolic period code.
type CustomRange struct {
	Start time.Time
	End   time.Time
}

// ResolvedPeriod is the pair of windows a comparison runs over.
type ResolvedPeriod struct {
	Current  DateRange
	Previous DateRange
}

// ComparisonRow is one line of a ranked year-over-year comparison.
// DeltaPct is nil when no comparison is meaningful (previous volume
// unknown, or zero with a positive current).
type ComparisonRow struct {
	Rank             int
	Member           string
	Current          int64
	Previous         int64
	DeltaPct         *float64
	ShareCurrentPct  float64
	SharePreviousPct float64
	Other            bool
}

// ReportRequest carries the caller parameters for one comparison report.
type ReportRequest struct {
	Year      int
	Period    string
	Zone      string
	Dimension Dimension
	Category  VisitorCategory
	Limit     int
	Custom    *CustomRange
}

// DimensionReport is a single-dimension comparison together with the
// windows that were actually used.
type DimensionReport struct {
	Dimension Dimension
	Category  VisitorCategory
	Zone      string
	Year      int
	Period    string
	Resolved  ResolvedPeriod
	Rows      []ComparisonRow
}

// Dashboard groups one block per ranked dimension.
type Dashboard struct {
	Zone     string
	Year     int
	Period   string
	Category VisitorCategory
	Resolved ResolvedPeriod
	Blocks   map[Dimension][]ComparisonRow
}

// DayVolume is one day of an activity series.
type DayVolume struct {
	Date   time.Time
	Volume int64
}

// ActivitySummary is the daytripper totals and peak-day block.
type ActivitySummary struct {
	Zone          string
	Year          int
	Period        string
	Resolved      ResolvedPeriod
	Total         int64
	TotalPrevious int64
	TotalDeltaPct *float64
	Peak          *DayVolume
	PeakPrevious  *DayVolume
	PeakDeltaPct  *float64
}

// PeriodOption is one selectable symbolic period resolved for a year.
type PeriodOption struct {
	Code  string
	Label string
	Range DateRange
}

// Zone is a displayable observation zone.
type Zone struct {
	Canonical string
	Display   string
}
