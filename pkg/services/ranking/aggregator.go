// Package ranking turns two period-scoped row sets into a ranked
// top-N comparison with a residual bucket.
package ranking

import (
	"math"
	"sort"

	"github.com/obs-tools/visit-atlas/pkg/apperrors"
	"github.com/obs-tools/visit-atlas/pkg/models/domain"
	"github.com/obs-tools/visit-atlas/pkg/models/store"
)

const (
	// OtherMember labels the residual row summarizing unranked members.
	OtherMember = "Autres"
	// PlaceholderMember labels padding rows emitted when fewer members
	// exist than the requested limit; fixed-layout displays rely on a
	// constant row count.
	PlaceholderMember = "no data"
)

// Compare ranks the current rows by volume, matches previous-period
// volumes by member, and emits exactly limit ranked rows (padded if
// needed) plus one trailing residual row. The emitted volumes sum to
// the true period totals on both sides.
func Compare(current, previous []store.DimensionRow, limit int) ([]domain.ComparisonRow, error) {
	if limit <= 0 {
		return nil, apperrors.Newf(apperrors.KindInvalidParams, "limit must be positive, got %d", limit)
	}
	if err := checkVolumes(current); err != nil {
		return nil, err
	}
	if err := checkVolumes(previous); err != nil {
		return nil, err
	}

	prevByMember := make(map[string]int64, len(previous))
	var totalPrevious int64
	for _, row := range previous {
		prevByMember[row.Member] += row.Volume
		totalPrevious += row.Volume
	}

	sorted := make([]store.DimensionRow, len(current))
	copy(sorted, current)
	// Stable keeps the incoming order for equal volumes.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Volume > sorted[j].Volume
	})

	var totalCurrent int64
	for _, row := range sorted {
		totalCurrent += row.Volume
	}

	rows := make([]domain.ComparisonRow, 0, limit+1)
	var topCurrent, topPrevious int64

	for i, row := range sorted {
		if i >= limit {
			break
		}
		prev := prevByMember[row.Member]
		topCurrent += row.Volume
		topPrevious += prev
		rows = append(rows, domain.ComparisonRow{
			Rank:             i + 1,
			Member:           row.Member,
			Current:          row.Volume,
			Previous:         prev,
			DeltaPct:         Delta(row.Volume, prev),
			ShareCurrentPct:  share(row.Volume, totalCurrent),
			SharePreviousPct: share(prev, totalPrevious),
		})
	}

	for len(rows) < limit {
		rows = append(rows, domain.ComparisonRow{
			Rank:   len(rows) + 1,
			Member: PlaceholderMember,
		})
	}

	otherCurrent := totalCurrent - topCurrent
	otherPrevious := totalPrevious - topPrevious
	if otherCurrent < 0 {
		otherCurrent = 0
	}
	if otherPrevious < 0 {
		otherPrevious = 0
	}
	rows = append(rows, domain.ComparisonRow{
		Rank:             0,
		Member:           OtherMember,
		Current:          otherCurrent,
		Previous:         otherPrevious,
		DeltaPct:         Delta(otherCurrent, otherPrevious),
		ShareCurrentPct:  share(otherCurrent, totalCurrent),
		SharePreviousPct: share(otherPrevious, totalPrevious),
		Other:            true,
	})

	return rows, nil
}

// Delta is the project-wide year-over-year percentage rule: both zero
// compares flat, growth from zero has no meaningful percentage and
// yields nil.
func Delta(current, previous int64) *float64 {
	if previous == 0 {
		if current == 0 {
			return ptr(0)
		}
		return nil
	}
	return ptr(round1(100 * float64(current-previous) / float64(previous)))
}

// DeltaNullable applies the same rule when either side may be genuinely
// unavailable, which is distinct from zero.
func DeltaNullable(current, previous *int64) *float64 {
	if current == nil || previous == nil {
		return nil
	}
	return Delta(*current, *previous)
}

func checkVolumes(rows []store.DimensionRow) error {
	for _, row := range rows {
		if row.Volume < 0 {
			return apperrors.Newf(apperrors.KindInvariant,
				"negative volume %d for member %q", row.Volume, row.Member)
		}
	}
	return nil
}

func share(volume, total int64) float64 {
	if total == 0 {
		return 0
	}
	return round1(100 * float64(volume) / float64(total))
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func ptr(f float64) *float64 { return &f }
