// Package period resolves symbolic period codes and custom windows into
// the pair of date ranges a year-over-year comparison runs on.
package period

import (
	"sort"
	"time"

	"github.com/obs-tools/visit-atlas/pkg/apperrors"
	"github.com/obs-tools/visit-atlas/pkg/models/domain"
	"github.com/obs-tools/visit-atlas/pkg/normalize"
)

type Resolver struct {
	byCode map[string]rule
}

func NewResolver() *Resolver {
	byCode := make(map[string]rule, len(rules))
	for _, r := range rules {
		byCode[r.code] = r
	}
	return &Resolver{byCode: byCode}
}

// Resolve returns the current and previous-year windows for a request.
// A custom range overrides the symbolic code entirely; its previous
// window is the same span shifted back one calendar year. A symbolic
// previous window is recomputed from the rule for year-1, because feast
// windows do not shift by a fixed number of days. Unknown codes fall
// back to the full calendar year.
func (rs *Resolver) Resolve(year int, code string, custom *domain.CustomRange) (domain.ResolvedPeriod, error) {
	if custom != nil {
		if custom.End.Before(custom.Start) {
			return domain.ResolvedPeriod{}, apperrors.New(apperrors.KindInvalidParams,
				"custom range end precedes start")
		}
		current := domain.DateRange{
			Start: dayStart(custom.Start),
			End:   dayEnd(custom.End),
		}
		return domain.ResolvedPeriod{
			Current: current,
			Previous: domain.DateRange{
				Start: shiftYears(current.Start, -1),
				End:   shiftYears(current.End, -1),
			},
		}, nil
	}

	r := rs.lookup(code)
	return domain.ResolvedPeriod{
		Current:  r.rangeFor(year),
		Previous: r.rangeFor(year - 1),
	}, nil
}

// Options lists the symbolic periods resolved for a year, ordered by
// window start.
func (rs *Resolver) Options(year int) []domain.PeriodOption {
	opts := make([]domain.PeriodOption, 0, len(rules))
	for _, r := range rules {
		opts = append(opts, domain.PeriodOption{
			Code:  r.code,
			Label: r.label,
			Range: r.rangeFor(year),
		})
	}
	sort.Slice(opts, func(i, j int) bool {
		return opts[i].Range.Start.Before(opts[j].Range.Start)
	})
	return opts
}

// Known reports whether a code resolves to a rule rather than the
// full-year fallback.
func (rs *Resolver) Known(code string) bool {
	_, ok := rs.byCode[canonicalCode(code)]
	return ok
}

func (rs *Resolver) lookup(code string) rule {
	if r, ok := rs.byCode[canonicalCode(code)]; ok {
		return r
	}
	return rs.byCode[CodeFullYear]
}

func canonicalCode(code string) string {
	c := normalize.Code(code)
	if mapped, ok := synonyms[c]; ok {
		return mapped
	}
	// Codes arrive both as "may_bridge" and "may bridge".
	return joinCode(c)
}

func joinCode(c string) string {
	out := make([]rune, 0, len(c))
	for _, r := range c {
		if r == ' ' {
			r = '_'
		}
		out = append(out, r)
	}
	return string(out)
}

func (r rule) rangeFor(year int) domain.DateRange {
	if r.feast {
		easter := easterSunday(year)
		return domain.DateRange{
			Start: easter.AddDate(0, 0, r.feastFrom),
			End:   dayEnd(easter.AddDate(0, 0, r.feastTo)),
		}
	}
	return domain.DateRange{
		Start: time.Date(year+r.start.yearOffset, r.start.month, r.start.day, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year+r.end.yearOffset, r.end.month, r.end.day, 23, 59, 59, 0, time.UTC),
	}
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}

// shiftYears moves a date by whole calendar years, clamping the day to
// the target month's length so Feb 29 maps to Feb 28 rather than
// rolling into March.
func shiftYears(t time.Time, years int) time.Time {
	y := t.Year() + years
	m := t.Month()
	d := t.Day()
	if last := daysIn(y, m); d > last {
		d = last
	}
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
