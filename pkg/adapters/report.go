package adapters

import (
	"github.com/obs-tools/visit-atlas/pkg/models/api"
	"github.com/obs-tools/visit-atlas/pkg/models/domain"
)

func MapDateRangeDomainToApi(r domain.DateRange) api.DateRange {
	return api.DateRange{
		Start: r.Start,
		End:   r.End,
		Days:  r.Days(),
	}
}

func MapResolvedPeriodDomainToApi(p domain.ResolvedPeriod) api.ResolvedPeriod {
	return api.ResolvedPeriod{
		Current:  MapDateRangeDomainToApi(p.Current),
		Previous: MapDateRangeDomainToApi(p.Previous),
	}
}

func MapComparisonRowDomainToApi(r domain.ComparisonRow) api.ComparisonRow {
	row := api.ComparisonRow{
		Member:           r.Member,
		Current:          r.Current,
		Previous:         r.Previous,
		DeltaPct:         r.DeltaPct,
		ShareCurrentPct:  r.ShareCurrentPct,
		SharePreviousPct: r.SharePreviousPct,
		Other:            r.Other,
	}
	if r.Rank > 0 {
		rank := r.Rank
		row.Rank = &rank
	}
	return row
}

func MapComparisonRowsDomainToApi(rows []domain.ComparisonRow) []api.ComparisonRow {
	res := make([]api.ComparisonRow, 0, len(rows))
	for _, r := range rows {
		res = append(res, MapComparisonRowDomainToApi(r))
	}
	return res
}

func MapDimensionReportDomainToApi(r domain.DimensionReport) api.DimensionReport {
	return api.DimensionReport{
		Dimension: string(r.Dimension),
		Category:  string(r.Category),
		Zone:      r.Zone,
		Year:      r.Year,
		Period:    r.Period,
		Resolved:  MapResolvedPeriodDomainToApi(r.Resolved),
		Rows:      MapComparisonRowsDomainToApi(r.Rows),
	}
}

func MapDashboardDomainToApi(d domain.Dashboard) api.Dashboard {
	res := api.Dashboard{
		Zone:     d.Zone,
		Year:     d.Year,
		Period:   d.Period,
		Category: string(d.Category),
		Resolved: MapResolvedPeriodDomainToApi(d.Resolved),
		Blocks:   make(map[string][]api.ComparisonRow, len(d.Blocks)),
	}
	for dim, rows := range d.Blocks {
		res.Blocks[string(dim)] = MapComparisonRowsDomainToApi(rows)
	}
	return res
}

func MapDayVolumeDomainToApi(v *domain.DayVolume) *api.DayVolume {
	if v == nil {
		return nil
	}
	return &api.DayVolume{Date: v.Date, Volume: v.Volume}
}

func MapActivitySummaryDomainToApi(s domain.ActivitySummary) api.ActivitySummary {
	return api.ActivitySummary{
		Zone:          s.Zone,
		Year:          s.Year,
		Period:        s.Period,
		Resolved:      MapResolvedPeriodDomainToApi(s.Resolved),
		Total:         s.Total,
		TotalPrevious: s.TotalPrevious,
		TotalDeltaPct: s.TotalDeltaPct,
		Peak:          MapDayVolumeDomainToApi(s.Peak),
		PeakPrevious:  MapDayVolumeDomainToApi(s.PeakPrevious),
		PeakDeltaPct:  s.PeakDeltaPct,
	}
}

func MapPeriodOptionDomainToApi(o domain.PeriodOption) api.PeriodOption {
	return api.PeriodOption{
		Code:  o.Code,
		Label: o.Label,
		Range: MapDateRangeDomainToApi(o.Range),
	}
}

func MapZoneDomainToApi(z domain.Zone) api.Zone {
	return api.Zone{
		Id:    z.Canonical,
		Label: z.Display,
	}
}
