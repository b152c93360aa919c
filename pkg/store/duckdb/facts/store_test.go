package facts

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obs-tools/visit-atlas/pkg/apperrors"
	"github.com/obs-tools/visit-atlas/pkg/models/domain"
	"github.com/obs-tools/visit-atlas/pkg/models/store"
	"github.com/obs-tools/visit-atlas/pkg/store/duckdb"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)

	s, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{db: db, store: s}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedDepartments(t *testing.T, f *fixture) {
	ctx := context.Background()
	rows := []store.FactRow{
		{Date: day(2024, 7, 10), Zone: "CABA", Category: "TOURIST", Provenance: "NONLOCAL", Member: "Allier", Volume: 60},
		{Date: day(2024, 7, 11), Zone: "CABA", Category: "TOURIST", Provenance: "NONLOCAL", Member: "Allier", Volume: 40},
		{Date: day(2024, 7, 10), Zone: "CABA", Category: "TOURIST", Provenance: "NONLOCAL", Member: "Corrèze", Volume: 30},
		{Date: day(2024, 7, 10), Zone: "CABA", Category: "TOURIST", Provenance: "NONLOCAL", Member: "CUMUL", Volume: 130},
		// Different scope axes, must never leak into the query below.
		{Date: day(2024, 7, 10), Zone: "CANTAL", Category: "TOURIST", Provenance: "NONLOCAL", Member: "Allier", Volume: 999},
		{Date: day(2024, 7, 10), Zone: "CABA", Category: "DAYTRIPPER", Provenance: "NONLOCAL", Member: "Allier", Volume: 999},
		{Date: day(2024, 7, 10), Zone: "CABA", Category: "TOURIST", Provenance: "FOREIGN", Member: "Allier", Volume: 999},
		{Date: day(2023, 7, 10), Zone: "CABA", Category: "TOURIST", Provenance: "NONLOCAL", Member: "Allier", Volume: 999},
	}
	require.NoError(t, f.store.AddFacts(ctx, domain.DimensionDepartments, rows))
}

func TestFactStore_FetchDimension(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	seedDepartments(t, f)

	zoneID, err := f.store.ZoneID(ctx, "CABA")
	require.NoError(t, err)
	catID, err := f.store.CategoryID(ctx, "TOURIST")
	require.NoError(t, err)
	provID, err := f.store.ProvenanceID(ctx, "NONLOCAL")
	require.NoError(t, err)

	rows, err := f.store.FetchDimension(ctx, store.FactQuery{
		Table:        "fact_nights_departments",
		Start:        day(2024, 7, 1),
		End:          day(2024, 7, 31),
		ZoneID:       zoneID,
		CategoryID:   catID,
		ProvenanceID: provID,
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Summed per member, ordered by volume, rollup rows excluded.
	assert.Equal(t, store.DimensionRow{Member: "Allier", Volume: 100}, rows[0])
	assert.Equal(t, store.DimensionRow{Member: "Corrèze", Volume: 30}, rows[1])
}

func TestFactStore_FetchDimension_UnknownTable(t *testing.T) {
	f := setupFixture(t)

	_, err := f.store.FetchDimension(context.Background(), store.FactQuery{Table: "fact_nights_bogus"})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvariant))
}

func TestFactStore_DailySeries(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	rows := []store.FactRow{
		{Date: day(2024, 7, 10), Zone: "CABA", Category: "DAYTRIPPER", Provenance: "NONLOCAL", Volume: 120},
		{Date: day(2024, 7, 11), Zone: "CABA", Category: "DAYTRIPPER", Provenance: "FOREIGN", Volume: 80},
		{Date: day(2024, 7, 11), Zone: "CABA", Category: "DAYTRIPPER", Provenance: "NONLOCAL", Volume: 70},
		// Local visitors are excluded from activity reporting.
		{Date: day(2024, 7, 12), Zone: "CABA", Category: "DAYTRIPPER", Provenance: "LOCAL", Volume: 500},
	}
	require.NoError(t, f.store.AddDailyVisits(ctx, rows))

	zoneID, err := f.store.ZoneID(ctx, "CABA")
	require.NoError(t, err)
	catID, err := f.store.CategoryID(ctx, "DAYTRIPPER")
	require.NoError(t, err)
	localID, err := f.store.ProvenanceID(ctx, "LOCAL")
	require.NoError(t, err)

	q := store.DailyQuery{
		Start:               day(2024, 7, 1),
		End:                 day(2024, 7, 31),
		ZoneID:              zoneID,
		CategoryID:          catID,
		ExcludeProvenanceID: localID,
	}

	total, err := f.store.DailyTotal(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, int64(270), total)

	peak, err := f.store.DailyPeak(ctx, q)
	require.NoError(t, err)
	require.NotNil(t, peak)
	assert.Equal(t, day(2024, 7, 11), peak.Date)
	assert.Equal(t, int64(150), peak.Volume)

	t.Run("empty window", func(t *testing.T) {
		empty := q
		empty.Start = day(2023, 7, 1)
		empty.End = day(2023, 7, 31)

		total, err := f.store.DailyTotal(ctx, empty)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)

		peak, err := f.store.DailyPeak(ctx, empty)
		require.NoError(t, err)
		assert.Nil(t, peak)
	})
}

func TestFactStore_DimensionLookups(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	seedDepartments(t, f)

	t.Run("ids are stable across batches", func(t *testing.T) {
		before, err := f.store.ZoneID(ctx, "CABA")
		require.NoError(t, err)

		more := []store.FactRow{
			{Date: day(2024, 8, 1), Zone: "CABA", Category: "TOURIST", Provenance: "NONLOCAL", Member: "Lot", Volume: 5},
		}
		require.NoError(t, f.store.AddFacts(ctx, domain.DimensionDepartments, more))

		after, err := f.store.ZoneID(ctx, "CABA")
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("unknown zone", func(t *testing.T) {
		_, err := f.store.ZoneID(ctx, "ATLANTIS")
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindZoneNotResolvable))
	})

	t.Run("unseeded category", func(t *testing.T) {
		_, err := f.store.CategoryID(ctx, "PILGRIM")
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindStoreUnavailable))
	})
}

func TestFactStore_AddFacts_UnknownDimension(t *testing.T) {
	f := setupFixture(t)

	err := f.store.AddFacts(context.Background(), domain.Dimension("planets"), []store.FactRow{
		{Date: day(2024, 1, 1), Zone: "Z", Category: "C", Provenance: "P", Member: "M", Volume: 1},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidParams))
}

func TestFactStore_IngestInTransaction(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	tx, err := f.db.BeginTx(ctx, nil)
	require.NoError(t, err)
	txCtx := duckdb.WithTransaction(ctx, tx)

	rows := []store.FactRow{
		{Date: day(2024, 7, 10), Zone: "CABA", Category: "TOURIST", Provenance: "NONLOCAL", Member: "Allier", Volume: 10},
	}
	require.NoError(t, f.store.AddFacts(txCtx, domain.DimensionDepartments, rows))
	require.NoError(t, tx.Commit())

	var count int
	require.NoError(t, f.db.QueryRow("SELECT COUNT(*) FROM fact_nights_departments").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestTableFor(t *testing.T) {
	for _, dim := range domain.Dimensions() {
		table, ok := TableFor(dim)
		assert.True(t, ok)
		assert.NotEmpty(t, table)
	}

	_, ok := TableFor(domain.Dimension("planets"))
	assert.False(t, ok)
}
