// Package report orchestrates the year-over-year comparison reports:
// it resolves periods and zones, pulls pre-aggregated facts, ranks
// them and memoizes the result.
package report

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/obs-tools/visit-atlas/pkg/apperrors"
	"github.com/obs-tools/visit-atlas/pkg/cache"
	"github.com/obs-tools/visit-atlas/pkg/models/domain"
	"github.com/obs-tools/visit-atlas/pkg/models/store"
	"github.com/obs-tools/visit-atlas/pkg/services/period"
	"github.com/obs-tools/visit-atlas/pkg/services/ranking"
	"github.com/obs-tools/visit-atlas/pkg/services/zone"
	"github.com/obs-tools/visit-atlas/pkg/store/duckdb/facts"
)

// Dimension table names in dim_visitor_categories / dim_provenances.
const (
	storeCategoryTourist    = "TOURIST"
	storeCategoryDayTripper = "DAYTRIPPER"

	provenanceLocal    = "LOCAL"
	provenanceNonLocal = "NONLOCAL"
	provenanceForeign  = "FOREIGN"
)

// Cache categories, one namespace per report family so they can be
// purged independently.
const (
	cacheCategoryDashboard = "dashboard"
	cacheCategoryActivity  = "activity"
	cacheCategoryReport    = "report_"
)

// FactStore is the slice of the fact schema the report service reads.
type FactStore interface {
	FetchDimension(ctx context.Context, q store.FactQuery) ([]store.DimensionRow, error)
	DailyTotal(ctx context.Context, q store.DailyQuery) (int64, error)
	DailyPeak(ctx context.Context, q store.DailyQuery) (*store.DayVolume, error)
	CategoryID(ctx context.Context, name string) (int64, error)
	ProvenanceID(ctx context.Context, name string) (int64, error)
}

type Service struct {
	periods *period.Resolver
	zones   *zone.Resolver
	facts   FactStore
	cache   *cache.QueryCache
	timeout time.Duration
}

// NewService wires the comparison pipeline. timeout bounds each store
// query; zero disables the bound.
func NewService(periods *period.Resolver, zones *zone.Resolver, factStore FactStore, qc *cache.QueryCache, timeout time.Duration) *Service {
	return &Service{
		periods: periods,
		zones:   zones,
		facts:   factStore,
		cache:   qc,
		timeout: timeout,
	}
}

// DimensionReport builds one ranked comparison block for a single
// dimension, serving repeats from the query cache.
func (s *Service) DimensionReport(ctx context.Context, req domain.ReportRequest) (*domain.DimensionReport, error) {
	req, err := s.normalize(req, true)
	if err != nil {
		return nil, err
	}

	category := cacheCategoryReport + string(req.Dimension)
	payload, _, err := s.cache.GetOrCompute(ctx, category, cacheParams(req), func(ctx context.Context) (any, error) {
		return s.buildDimensionReport(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	report, ok := payload.(*domain.DimensionReport)
	if !ok {
		return nil, apperrors.Newf(apperrors.KindInvariant, "unexpected cache payload %T", payload)
	}
	return report, nil
}

func (s *Service) buildDimensionReport(ctx context.Context, req domain.ReportRequest) (*domain.DimensionReport, error) {
	resolved := s.resolvePeriod(ctx, req)

	zoneID, catID, err := s.lookupScope(ctx, req)
	if err != nil {
		return nil, err
	}
	provID, err := s.facts.ProvenanceID(ctx, provenanceFor(req.Dimension))
	if err != nil {
		return nil, err
	}

	rows, err := s.buildBlock(ctx, req.Dimension, resolved, zoneID, catID, provID, req.Limit)
	if err != nil {
		return nil, err
	}

	return &domain.DimensionReport{
		Dimension: req.Dimension,
		Category:  req.Category,
		Zone:      s.zones.Display(req.Zone),
		Year:      req.Year,
		Period:    req.Period,
		Resolved:  resolved,
		Rows:      rows,
	}, nil
}

// Dashboard assembles the full board: one ranked block per dimension
// over the same resolved windows, each at its dimension's own depth.
func (s *Service) Dashboard(ctx context.Context, req domain.ReportRequest) (*domain.Dashboard, error) {
	req, err := s.normalize(req, false)
	if err != nil {
		return nil, err
	}

	payload, _, err := s.cache.GetOrCompute(ctx, cacheCategoryDashboard, cacheParams(req), func(ctx context.Context) (any, error) {
		return s.buildDashboard(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	board, ok := payload.(*domain.Dashboard)
	if !ok {
		return nil, apperrors.Newf(apperrors.KindInvariant, "unexpected cache payload %T", payload)
	}
	return board, nil
}

func (s *Service) buildDashboard(ctx context.Context, req domain.ReportRequest) (*domain.Dashboard, error) {
	resolved := s.resolvePeriod(ctx, req)

	zoneID, catID, err := s.lookupScope(ctx, req)
	if err != nil {
		return nil, err
	}
	nonLocalID, err := s.facts.ProvenanceID(ctx, provenanceNonLocal)
	if err != nil {
		return nil, err
	}
	foreignID, err := s.facts.ProvenanceID(ctx, provenanceForeign)
	if err != nil {
		return nil, err
	}

	blocks := make(map[domain.Dimension][]domain.ComparisonRow, len(domain.Dimensions()))
	for _, dim := range domain.Dimensions() {
		provID := nonLocalID
		if dim == domain.DimensionCountries {
			provID = foreignID
		}
		rows, err := s.buildBlock(ctx, dim, resolved, zoneID, catID, provID, dim.DefaultLimit())
		if err != nil {
			return nil, err
		}
		blocks[dim] = rows
	}

	return &domain.Dashboard{
		Zone:     s.zones.Display(req.Zone),
		Year:     req.Year,
		Period:   req.Period,
		Category: req.Category,
		Resolved: resolved,
		Blocks:   blocks,
	}, nil
}

// ActivitySummary reports the day-visit totals and peak day for the
// resolved windows. Day visits are a daytripper measure, so the
// caller's category is ignored and local provenance is excluded.
func (s *Service) ActivitySummary(ctx context.Context, req domain.ReportRequest) (*domain.ActivitySummary, error) {
	req.Category = domain.CategoryDayTripper
	req, err := s.normalize(req, false)
	if err != nil {
		return nil, err
	}

	payload, _, err := s.cache.GetOrCompute(ctx, cacheCategoryActivity, cacheParams(req), func(ctx context.Context) (any, error) {
		return s.buildActivitySummary(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	summary, ok := payload.(*domain.ActivitySummary)
	if !ok {
		return nil, apperrors.Newf(apperrors.KindInvariant, "unexpected cache payload %T", payload)
	}
	return summary, nil
}

func (s *Service) buildActivitySummary(ctx context.Context, req domain.ReportRequest) (*domain.ActivitySummary, error) {
	resolved := s.resolvePeriod(ctx, req)

	zoneID, catID, err := s.lookupScope(ctx, req)
	if err != nil {
		return nil, err
	}
	localID, err := s.facts.ProvenanceID(ctx, provenanceLocal)
	if err != nil {
		return nil, err
	}

	query := func(window domain.DateRange) store.DailyQuery {
		return store.DailyQuery{
			Start:               window.Start,
			End:                 window.End,
			ZoneID:              zoneID,
			CategoryID:          catID,
			ExcludeProvenanceID: localID,
		}
	}

	qctx, cancel := s.queryCtx(ctx)
	defer cancel()

	total, err := s.facts.DailyTotal(qctx, query(resolved.Current))
	if err != nil {
		return nil, err
	}
	totalPrev, err := s.facts.DailyTotal(qctx, query(resolved.Previous))
	if err != nil {
		return nil, err
	}
	peak, err := s.facts.DailyPeak(qctx, query(resolved.Current))
	if err != nil {
		return nil, err
	}
	peakPrev, err := s.facts.DailyPeak(qctx, query(resolved.Previous))
	if err != nil {
		return nil, err
	}

	summary := &domain.ActivitySummary{
		Zone:          s.zones.Display(req.Zone),
		Year:          req.Year,
		Period:        req.Period,
		Resolved:      resolved,
		Total:         total,
		TotalPrevious: totalPrev,
		TotalDeltaPct: ranking.Delta(total, totalPrev),
		Peak:          (*domain.DayVolume)(peak),
		PeakPrevious:  (*domain.DayVolume)(peakPrev),
	}
	if peak != nil && peakPrev != nil {
		summary.PeakDeltaPct = ranking.Delta(peak.Volume, peakPrev.Volume)
	}
	return summary, nil
}

// Periods lists the selectable symbolic periods resolved for a year.
func (s *Service) Periods(year int) ([]domain.PeriodOption, error) {
	if year <= 0 {
		return nil, apperrors.Newf(apperrors.KindInvalidParams, "year %d out of range", year)
	}
	return s.periods.Options(year), nil
}

// Zones lists the selectable observation zones for the active epoch.
func (s *Service) Zones() []domain.Zone {
	return s.zones.Zones()
}

// buildBlock runs the current/previous fetch pair and ranks them.
func (s *Service) buildBlock(
	ctx context.Context,
	dim domain.Dimension,
	resolved domain.ResolvedPeriod,
	zoneID, catID, provID int64,
	limit int,
) ([]domain.ComparisonRow, error) {
	table, ok := facts.TableFor(dim)
	if !ok {
		return nil, apperrors.Newf(apperrors.KindInvalidParams, "unknown dimension %q", dim)
	}

	current, err := s.fetchWindow(ctx, table, dim, resolved.Current, zoneID, catID, provID)
	if err != nil {
		return nil, err
	}
	previous, err := s.fetchWindow(ctx, table, dim, resolved.Previous, zoneID, catID, provID)
	if err != nil {
		return nil, err
	}
	return ranking.Compare(current, previous, limit)
}

func (s *Service) fetchWindow(
	ctx context.Context,
	table string,
	dim domain.Dimension,
	window domain.DateRange,
	zoneID, catID, provID int64,
) ([]store.DimensionRow, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.facts.FetchDimension(qctx, store.FactQuery{
		Table:        table,
		Start:        window.Start,
		End:          window.End,
		ZoneID:       zoneID,
		CategoryID:   catID,
		ProvenanceID: provID,
	})
	if err != nil {
		return nil, err
	}
	if dim == domain.DimensionSegments {
		rows = groupSegments(rows)
	}
	return rows, nil
}

// lookupScope maps the request's zone and visitor category to their
// dimension-table ids.
func (s *Service) lookupScope(ctx context.Context, req domain.ReportRequest) (zoneID, catID int64, err error) {
	zoneID, err = s.zones.ResolveID(ctx, req.Zone)
	if err != nil {
		return 0, 0, err
	}
	catID, err = s.facts.CategoryID(ctx, storeCategory(req.Category))
	if err != nil {
		return 0, 0, err
	}
	return zoneID, catID, nil
}

// resolvePeriod resolves the comparison windows. A malformed custom
// range is recoverable: it falls back to the symbolic period and logs
// the rejection instead of failing the report.
func (s *Service) resolvePeriod(ctx context.Context, req domain.ReportRequest) domain.ResolvedPeriod {
	resolved, err := s.periods.Resolve(req.Year, req.Period, req.Custom)
	if err == nil {
		return resolved
	}

	zerolog.Ctx(ctx).Warn().
		Err(err).
		Int("year", req.Year).
		Str("period", req.Period).
		Msg("custom range rejected, falling back to symbolic period")

	resolved, _ = s.periods.Resolve(req.Year, req.Period, nil)
	return resolved
}

// normalize validates the request and fills defaults. Dimension and
// limit only apply to single-dimension reports.
func (s *Service) normalize(req domain.ReportRequest, withDimension bool) (domain.ReportRequest, error) {
	if req.Year < 2000 || req.Year > 2100 {
		return req, apperrors.Newf(apperrors.KindInvalidParams, "year %d out of range", req.Year)
	}
	if strings.TrimSpace(req.Zone) == "" {
		return req, apperrors.New(apperrors.KindInvalidParams, "zone is required")
	}
	req.Zone = s.zones.Canonical(req.Zone)

	if req.Period == "" {
		req.Period = period.CodeFullYear
	}
	if req.Category == "" {
		req.Category = domain.CategoryTourist
	}
	if _, ok := domain.ParseVisitorCategory(string(req.Category)); !ok {
		return req, apperrors.Newf(apperrors.KindInvalidParams, "unknown visitor category %q", req.Category)
	}

	if withDimension {
		if _, ok := facts.TableFor(req.Dimension); !ok {
			return req, apperrors.Newf(apperrors.KindInvalidParams, "unknown dimension %q", req.Dimension)
		}
		if req.Limit == 0 {
			req.Limit = req.Dimension.DefaultLimit()
		}
		if req.Limit < 0 {
			return req, apperrors.Newf(apperrors.KindInvalidParams, "limit %d must be positive", req.Limit)
		}
	}
	return req, nil
}

func (s *Service) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// cacheParams is the canonical parameter set a report is keyed on.
// The zone is already canonical here, so aliases share one entry.
func cacheParams(req domain.ReportRequest) map[string]any {
	p := map[string]any{
		"year":     req.Year,
		"period":   req.Period,
		"zone":     req.Zone,
		"category": string(req.Category),
		"limit":    req.Limit,
	}
	if req.Custom != nil {
		p["start"] = req.Custom.Start
		p["end"] = req.Custom.End
	}
	return p
}

func storeCategory(c domain.VisitorCategory) string {
	if c == domain.CategoryDayTripper {
		return storeCategoryDayTripper
	}
	return storeCategoryTourist
}

// provenanceFor picks the provenance slice a dimension ranks over:
// origin-country rankings only make sense for foreign visitors, the
// rest cover every non-local visitor.
func provenanceFor(d domain.Dimension) string {
	if d == domain.DimensionCountries {
		return provenanceForeign
	}
	return provenanceNonLocal
}
