package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/obs-tools/visit-atlas/pkg/apperrors"
	"github.com/obs-tools/visit-atlas/pkg/cache"
	"github.com/obs-tools/visit-atlas/pkg/models/domain"
	"github.com/obs-tools/visit-atlas/pkg/models/store"
	"github.com/obs-tools/visit-atlas/pkg/services/period"
	"github.com/obs-tools/visit-atlas/pkg/services/ranking"
	"github.com/obs-tools/visit-atlas/pkg/services/zone"
)

type mockFactStore struct {
	mock.Mock
}

func (m *mockFactStore) FetchDimension(ctx context.Context, q store.FactQuery) ([]store.DimensionRow, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.DimensionRow), args.Error(1)
}

func (m *mockFactStore) DailyTotal(ctx context.Context, q store.DailyQuery) (int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockFactStore) DailyPeak(ctx context.Context, q store.DailyQuery) (*store.DayVolume, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.DayVolume), args.Error(1)
}

func (m *mockFactStore) CategoryID(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockFactStore) ProvenanceID(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

type stubZoneStore struct {
	ids map[string]int64
}

func (s *stubZoneStore) ZoneID(_ context.Context, name string) (int64, error) {
	if id, ok := s.ids[name]; ok {
		return id, nil
	}
	return 0, apperrors.Newf(apperrors.KindZoneNotResolvable, "zone %q not found", name)
}

func newFixture(t *testing.T) (*Service, *mockFactStore) {
	t.Helper()
	facts := &mockFactStore{}
	zones := zone.NewResolver(zone.EpochLegacy, &stubZoneStore{ids: map[string]int64{"CABA": 7}})
	svc := NewService(period.NewResolver(), zones, facts, cache.New(cache.Config{}), 0)
	return svc, facts
}

func windowIn(year int) any {
	return mock.MatchedBy(func(q store.FactQuery) bool {
		return q.Start.Year() == year
	})
}

func TestService_DimensionReport(t *testing.T) {
	svc, facts := newFixture(t)
	ctx := context.Background()

	facts.On("CategoryID", mock.Anything, "TOURIST").Return(int64(1), nil)
	facts.On("ProvenanceID", mock.Anything, "NONLOCAL").Return(int64(2), nil)
	facts.On("FetchDimension", mock.Anything, windowIn(2024)).
		Return([]store.DimensionRow{
			{Member: "Allier", Volume: 100},
			{Member: "Corrèze", Volume: 40},
		}, nil)
	facts.On("FetchDimension", mock.Anything, windowIn(2023)).
		Return([]store.DimensionRow{{Member: "Allier", Volume: 80}}, nil)

	rep, err := svc.DimensionReport(ctx, domain.ReportRequest{
		Year:      2024,
		Period:    "year",
		Zone:      "Pays d'Aurillac",
		Dimension: domain.DimensionDepartments,
		Limit:     3,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.DimensionDepartments, rep.Dimension)
	assert.Equal(t, domain.CategoryTourist, rep.Category, "category defaults to tourist")
	assert.Equal(t, "PAYS D'AURILLAC", rep.Zone, "zone is rendered in display form")
	assert.Equal(t, 2024, rep.Year)

	require.Len(t, rep.Rows, 4)
	assert.Equal(t, "Allier", rep.Rows[0].Member)
	assert.Equal(t, int64(80), rep.Rows[0].Previous)
	assert.Equal(t, ranking.PlaceholderMember, rep.Rows[2].Member)
	assert.True(t, rep.Rows[3].Other)

	t.Run("repeat request is served from cache", func(t *testing.T) {
		_, err := svc.DimensionReport(ctx, domain.ReportRequest{
			Year:      2024,
			Period:    "year",
			Zone:      "CABA", // alias of the cached zone
			Dimension: domain.DimensionDepartments,
			Limit:     3,
		})
		require.NoError(t, err)
		facts.AssertNumberOfCalls(t, "FetchDimension", 2)
	})
}

func TestService_DimensionReport_DefaultLimit(t *testing.T) {
	svc, facts := newFixture(t)

	facts.On("CategoryID", mock.Anything, "TOURIST").Return(int64(1), nil)
	facts.On("ProvenanceID", mock.Anything, "NONLOCAL").Return(int64(2), nil)
	facts.On("FetchDimension", mock.Anything, mock.Anything).Return([]store.DimensionRow{}, nil)

	rep, err := svc.DimensionReport(context.Background(), domain.ReportRequest{
		Year:      2024,
		Zone:      "CABA",
		Dimension: domain.DimensionDepartments,
	})
	require.NoError(t, err)
	assert.Len(t, rep.Rows, domain.DimensionDepartments.DefaultLimit()+1)
}

func TestService_DimensionReport_CountriesUseForeignProvenance(t *testing.T) {
	svc, facts := newFixture(t)

	facts.On("CategoryID", mock.Anything, "TOURIST").Return(int64(1), nil)
	facts.On("ProvenanceID", mock.Anything, "FOREIGN").Return(int64(3), nil)
	facts.On("FetchDimension", mock.Anything, mock.MatchedBy(func(q store.FactQuery) bool {
		return q.ProvenanceID == 3 && q.Table == "fact_nights_countries"
	})).Return([]store.DimensionRow{}, nil)

	_, err := svc.DimensionReport(context.Background(), domain.ReportRequest{
		Year:      2024,
		Zone:      "CABA",
		Dimension: domain.DimensionCountries,
	})
	require.NoError(t, err)
	facts.AssertExpectations(t)
}

func TestService_DimensionReport_GroupsSegments(t *testing.T) {
	svc, facts := newFixture(t)

	facts.On("CategoryID", mock.Anything, "TOURIST").Return(int64(1), nil)
	facts.On("ProvenanceID", mock.Anything, "NONLOCAL").Return(int64(2), nil)
	facts.On("FetchDimension", mock.Anything, windowIn(2024)).
		Return([]store.DimensionRow{
			{Member: "URBAIN DYNAMIQUE", Volume: 50},
			{Member: "RURAL DYNAMIQUE", Volume: 30},
			{Member: "POPULAIRE", Volume: 20},
			{Member: "RESIDENCE SECONDAIRE", Volume: 10},
		}, nil)
	facts.On("FetchDimension", mock.Anything, windowIn(2023)).
		Return([]store.DimensionRow{}, nil)

	rep, err := svc.DimensionReport(context.Background(), domain.ReportRequest{
		Year:      2024,
		Zone:      "CABA",
		Dimension: domain.DimensionSegments,
	})
	require.NoError(t, err)

	require.Len(t, rep.Rows, 4)
	assert.Equal(t, "CSP +", rep.Rows[0].Member)
	assert.Equal(t, int64(80), rep.Rows[0].Current)
	assert.Equal(t, "Populaire", rep.Rows[1].Member)
	assert.Equal(t, int64(20), rep.Rows[1].Current)
	assert.Equal(t, "CSP en croissance", rep.Rows[2].Member)
	assert.Equal(t, int64(10), rep.Rows[2].Current)
}

func TestService_DimensionReport_Validation(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  domain.ReportRequest
	}{
		{"year out of range", domain.ReportRequest{Year: 1800, Zone: "CABA", Dimension: domain.DimensionRegions}},
		{"missing zone", domain.ReportRequest{Year: 2024, Dimension: domain.DimensionRegions}},
		{"unknown dimension", domain.ReportRequest{Year: 2024, Zone: "CABA", Dimension: "planets"}},
		{"negative limit", domain.ReportRequest{Year: 2024, Zone: "CABA", Dimension: domain.DimensionRegions, Limit: -1}},
		{"unknown category", domain.ReportRequest{Year: 2024, Zone: "CABA", Dimension: domain.DimensionRegions, Category: "pilgrim"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.DimensionReport(ctx, tt.req)
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidParams))
		})
	}
}

func TestService_DimensionReport_UnresolvableZone(t *testing.T) {
	svc, facts := newFixture(t)
	facts.On("CategoryID", mock.Anything, mock.Anything).Return(int64(1), nil)

	_, err := svc.DimensionReport(context.Background(), domain.ReportRequest{
		Year:      2024,
		Zone:      "Atlantis",
		Dimension: domain.DimensionRegions,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindZoneNotResolvable))
}

func TestService_DimensionReport_MalformedCustomFallsBack(t *testing.T) {
	svc, facts := newFixture(t)

	facts.On("CategoryID", mock.Anything, "TOURIST").Return(int64(1), nil)
	facts.On("ProvenanceID", mock.Anything, "NONLOCAL").Return(int64(2), nil)
	facts.On("FetchDimension", mock.Anything, mock.Anything).Return([]store.DimensionRow{}, nil)

	rep, err := svc.DimensionReport(context.Background(), domain.ReportRequest{
		Year:      2024,
		Period:    "summer",
		Zone:      "CABA",
		Dimension: domain.DimensionRegions,
		Custom: &domain.CustomRange{
			Start: time.Date(2024, time.July, 20, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err, "an inverted custom range degrades to the symbolic period")
	assert.Equal(t, time.Date(2024, time.June, 21, 0, 0, 0, 0, time.UTC), rep.Resolved.Current.Start)
}

func TestService_Dashboard(t *testing.T) {
	svc, facts := newFixture(t)

	facts.On("CategoryID", mock.Anything, "TOURIST").Return(int64(1), nil)
	facts.On("ProvenanceID", mock.Anything, "NONLOCAL").Return(int64(2), nil)
	facts.On("ProvenanceID", mock.Anything, "FOREIGN").Return(int64(3), nil)
	facts.On("FetchDimension", mock.Anything, mock.Anything).Return([]store.DimensionRow{
		{Member: "X", Volume: 10},
	}, nil)

	board, err := svc.Dashboard(context.Background(), domain.ReportRequest{
		Year: 2024,
		Zone: "CABA",
	})
	require.NoError(t, err)

	require.Len(t, board.Blocks, len(domain.Dimensions()))
	for _, dim := range domain.Dimensions() {
		assert.Len(t, board.Blocks[dim], dim.DefaultLimit()+1, "block %s", dim)
	}

	// Two fetches per dimension, current and previous.
	facts.AssertNumberOfCalls(t, "FetchDimension", 2*len(domain.Dimensions()))

	t.Run("served from cache on repeat", func(t *testing.T) {
		_, err := svc.Dashboard(context.Background(), domain.ReportRequest{Year: 2024, Zone: "CABA"})
		require.NoError(t, err)
		facts.AssertNumberOfCalls(t, "FetchDimension", 2*len(domain.Dimensions()))
	})
}

func TestService_ActivitySummary(t *testing.T) {
	svc, facts := newFixture(t)

	peakDay := time.Date(2024, time.August, 15, 0, 0, 0, 0, time.UTC)
	prevPeakDay := time.Date(2023, time.August, 12, 0, 0, 0, 0, time.UTC)

	facts.On("CategoryID", mock.Anything, "DAYTRIPPER").Return(int64(4), nil)
	facts.On("ProvenanceID", mock.Anything, "LOCAL").Return(int64(5), nil)

	currentWindow := mock.MatchedBy(func(q store.DailyQuery) bool {
		return q.Start.Year() == 2024 && q.ExcludeProvenanceID == 5
	})
	previousWindow := mock.MatchedBy(func(q store.DailyQuery) bool {
		return q.Start.Year() == 2023 && q.ExcludeProvenanceID == 5
	})

	facts.On("DailyTotal", mock.Anything, currentWindow).Return(int64(1200), nil)
	facts.On("DailyTotal", mock.Anything, previousWindow).Return(int64(1000), nil)
	facts.On("DailyPeak", mock.Anything, currentWindow).Return(&store.DayVolume{Date: peakDay, Volume: 300}, nil)
	facts.On("DailyPeak", mock.Anything, previousWindow).Return(&store.DayVolume{Date: prevPeakDay, Volume: 240}, nil)

	summary, err := svc.ActivitySummary(context.Background(), domain.ReportRequest{
		Year:   2024,
		Period: "year",
		Zone:   "CABA",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1200), summary.Total)
	assert.Equal(t, int64(1000), summary.TotalPrevious)
	require.NotNil(t, summary.TotalDeltaPct)
	assert.Equal(t, 20.0, *summary.TotalDeltaPct)

	require.NotNil(t, summary.Peak)
	assert.Equal(t, peakDay, summary.Peak.Date)
	require.NotNil(t, summary.PeakDeltaPct)
	assert.Equal(t, 25.0, *summary.PeakDeltaPct)
}

func TestService_ActivitySummary_NoPeakData(t *testing.T) {
	svc, facts := newFixture(t)

	facts.On("CategoryID", mock.Anything, "DAYTRIPPER").Return(int64(4), nil)
	facts.On("ProvenanceID", mock.Anything, "LOCAL").Return(int64(5), nil)
	facts.On("DailyTotal", mock.Anything, mock.Anything).Return(int64(0), nil)
	facts.On("DailyPeak", mock.Anything, mock.Anything).Return(nil, nil)

	summary, err := svc.ActivitySummary(context.Background(), domain.ReportRequest{
		Year: 2024,
		Zone: "CABA",
	})
	require.NoError(t, err)

	assert.Nil(t, summary.Peak)
	assert.Nil(t, summary.PeakDeltaPct)
	require.NotNil(t, summary.TotalDeltaPct)
	assert.Equal(t, 0.0, *summary.TotalDeltaPct)
}

func TestService_StoreErrorsPropagate(t *testing.T) {
	svc, facts := newFixture(t)

	facts.On("CategoryID", mock.Anything, "TOURIST").Return(int64(1), nil)
	facts.On("ProvenanceID", mock.Anything, "NONLOCAL").Return(int64(2), nil)
	facts.On("FetchDimension", mock.Anything, mock.Anything).
		Return(nil, apperrors.New(apperrors.KindStoreUnavailable, "query departments"))

	_, err := svc.DimensionReport(context.Background(), domain.ReportRequest{
		Year:      2024,
		Zone:      "CABA",
		Dimension: domain.DimensionDepartments,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindStoreUnavailable))

	t.Run("failures are not cached", func(t *testing.T) {
		_, err := svc.DimensionReport(context.Background(), domain.ReportRequest{
			Year:      2024,
			Zone:      "CABA",
			Dimension: domain.DimensionDepartments,
		})
		require.Error(t, err)
		facts.AssertNumberOfCalls(t, "FetchDimension", 2)
	})
}

func TestService_Periods(t *testing.T) {
	svc, _ := newFixture(t)

	opts, err := svc.Periods(2024)
	require.NoError(t, err)
	assert.NotEmpty(t, opts)

	_, err = svc.Periods(0)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidParams))
}

func TestService_Zones(t *testing.T) {
	svc, _ := newFixture(t)
	zones := svc.Zones()
	assert.NotEmpty(t, zones)
}
