// Package facts reads and ingests the star-schema fact tables backing
// the comparison reports.
package facts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/obs-tools/visit-atlas/pkg/apperrors"
	"github.com/obs-tools/visit-atlas/pkg/models/domain"
	"github.com/obs-tools/visit-atlas/pkg/models/store"
	"github.com/obs-tools/visit-atlas/pkg/store/duckdb"
)

// DailyVisitsTable is the day-level series backing the activity summary.
const DailyVisitsTable = "fact_daily_visits"

// cumulMember is the rollup pseudo-member some exports carry; it is
// never ranked.
const cumulMember = "CUMUL"

var dimensionTables = map[domain.Dimension]string{
	domain.DimensionDepartments: "fact_nights_departments",
	domain.DimensionRegions:     "fact_nights_regions",
	domain.DimensionCountries:   "fact_nights_countries",
	domain.DimensionAgeBands:    "fact_nights_age_bands",
	domain.DimensionSegments:    "fact_nights_segments",
}

// TableFor maps a ranked dimension to its fact table.
func TableFor(d domain.Dimension) (string, bool) {
	t, ok := dimensionTables[d]
	return t, ok
}

// Store supports both read (Fetch*, *ID) and ingestion (Add*)
// operations against the fact schema.
type Store interface {
	FetchDimension(ctx context.Context, q store.FactQuery) ([]store.DimensionRow, error)
	DailyTotal(ctx context.Context, q store.DailyQuery) (int64, error)
	DailyPeak(ctx context.Context, q store.DailyQuery) (*store.DayVolume, error)
	ZoneID(ctx context.Context, name string) (int64, error)
	CategoryID(ctx context.Context, name string) (int64, error)
	ProvenanceID(ctx context.Context, name string) (int64, error)
	AddFacts(ctx context.Context, dimension domain.Dimension, rows []store.FactRow) error
	AddDailyVisits(ctx context.Context, rows []store.FactRow) error
}

type factStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &factStore{db: db}, nil
}

func (s *factStore) FetchDimension(ctx context.Context, q store.FactQuery) ([]store.DimensionRow, error) {
	if !validTable(q.Table) {
		return nil, apperrors.Newf(apperrors.KindInvariant, "unknown fact table %q", q.Table)
	}

	query := fmt.Sprintf(`
		SELECT member, CAST(SUM(volume) AS BIGINT) AS volume
		FROM %s
		WHERE date BETWEEN ? AND ?
		AND id_zone = ?
		AND id_category = ?
		AND id_provenance = ?
		AND member <> ?
		GROUP BY member
		ORDER BY volume DESC, member
	`, q.Table)

	rows, err := s.db.QueryContext(ctx, query,
		q.Start, q.End, q.ZoneID, q.CategoryID, q.ProvenanceID, cumulMember)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindStoreUnavailable,
			fmt.Sprintf("query %s", q.Table))
	}
	defer rows.Close()

	result := make([]store.DimensionRow, 0)
	for rows.Next() {
		var r store.DimensionRow
		if err := rows.Scan(&r.Member, &r.Volume); err != nil {
			return nil, apperrors.Wrap(err, apperrors.KindStoreUnavailable, "scan dimension row")
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindStoreUnavailable, "iterate dimension rows")
	}
	return result, nil
}

func (s *factStore) DailyTotal(ctx context.Context, q store.DailyQuery) (int64, error) {
	query := `
		SELECT CAST(COALESCE(SUM(volume), 0) AS BIGINT)
		FROM fact_daily_visits
		WHERE date BETWEEN ? AND ?
		AND id_zone = ?
		AND id_category = ?
		AND id_provenance <> ?
	`
	var total int64
	err := s.db.QueryRowContext(ctx, query,
		q.Start, q.End, q.ZoneID, q.CategoryID, q.ExcludeProvenanceID).Scan(&total)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.KindStoreUnavailable, "query daily total")
	}
	return total, nil
}

func (s *factStore) DailyPeak(ctx context.Context, q store.DailyQuery) (*store.DayVolume, error) {
	query := `
		SELECT date, CAST(SUM(volume) AS BIGINT) AS volume
		FROM fact_daily_visits
		WHERE date BETWEEN ? AND ?
		AND id_zone = ?
		AND id_category = ?
		AND id_provenance <> ?
		GROUP BY date
		ORDER BY volume DESC, date
		LIMIT 1
	`
	var peak store.DayVolume
	err := s.db.QueryRowContext(ctx, query,
		q.Start, q.End, q.ZoneID, q.CategoryID, q.ExcludeProvenanceID).Scan(&peak.Date, &peak.Volume)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindStoreUnavailable, "query daily peak")
	}
	return &peak, nil
}

func (s *factStore) ZoneID(ctx context.Context, name string) (int64, error) {
	id, err := s.lookupID(ctx, "dim_zones", "id_zone", name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperrors.Newf(apperrors.KindZoneNotResolvable, "zone %q not found", name)
	}
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.KindStoreUnavailable, "lookup zone id")
	}
	return id, nil
}

func (s *factStore) CategoryID(ctx context.Context, name string) (int64, error) {
	id, err := s.lookupID(ctx, "dim_visitor_categories", "id_category", name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperrors.Newf(apperrors.KindStoreUnavailable, "visitor category %q not seeded", name)
	}
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.KindStoreUnavailable, "lookup category id")
	}
	return id, nil
}

func (s *factStore) ProvenanceID(ctx context.Context, name string) (int64, error) {
	id, err := s.lookupID(ctx, "dim_provenances", "id_provenance", name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperrors.Newf(apperrors.KindStoreUnavailable, "provenance %q not seeded", name)
	}
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.KindStoreUnavailable, "lookup provenance id")
	}
	return id, nil
}

func (s *factStore) lookupID(ctx context.Context, table, idColumn, name string) (int64, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE name = ?", idColumn, table)
	var id int64
	err := s.db.QueryRowContext(ctx, query, name).Scan(&id)
	return id, err
}

func (s *factStore) AddFacts(ctx context.Context, dimension domain.Dimension, rows []store.FactRow) error {
	table, ok := TableFor(dimension)
	if !ok {
		return apperrors.Newf(apperrors.KindInvalidParams, "unknown dimension %q", dimension)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (date, id_zone, id_category, id_provenance, member, volume)
		VALUES (?, ?, ?, ?, ?, ?)`, table)
	return s.insertFacts(ctx, query, rows, true)
}

func (s *factStore) AddDailyVisits(ctx context.Context, rows []store.FactRow) error {
	query := `
		INSERT INTO fact_daily_visits (date, id_zone, id_category, id_provenance, volume)
		VALUES (?, ?, ?, ?, ?)`
	return s.insertFacts(ctx, query, rows, false)
}

func (s *factStore) insertFacts(ctx context.Context, query string, rows []store.FactRow, withMember bool) error {
	if len(rows) == 0 {
		return nil
	}

	tx := duckdb.GetTransaction(ctx)

	var stmt *sql.Stmt
	var err error
	if tx == nil {
		stmt, err = s.db.PrepareContext(ctx, query)
	} else {
		stmt, err = tx.PrepareContext(ctx, query)
	}
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	ids := newDimCache(s, ctx)
	for _, row := range rows {
		zoneID, categoryID, provenanceID, err := ids.resolve(row)
		if err != nil {
			return err
		}
		if withMember {
			_, err = stmt.ExecContext(ctx, row.Date, zoneID, categoryID, provenanceID, row.Member, row.Volume)
		} else {
			_, err = stmt.ExecContext(ctx, row.Date, zoneID, categoryID, provenanceID, row.Volume)
		}
		if err != nil {
			return fmt.Errorf("insert fact row: %w", err)
		}
	}
	return nil
}

// dimCache memoizes dimension ids during one ingestion batch, creating
// missing zone/category/provenance rows on first sight.
type dimCache struct {
	store *factStore
	ctx   context.Context
	ids   map[string]int64
}

func newDimCache(s *factStore, ctx context.Context) *dimCache {
	return &dimCache{store: s, ctx: ctx, ids: map[string]int64{}}
}

func (c *dimCache) resolve(row store.FactRow) (zoneID, categoryID, provenanceID int64, err error) {
	if zoneID, err = c.ensure("dim_zones", "id_zone", row.Zone); err != nil {
		return
	}
	if categoryID, err = c.ensure("dim_visitor_categories", "id_category", row.Category); err != nil {
		return
	}
	provenanceID, err = c.ensure("dim_provenances", "id_provenance", row.Provenance)
	return
}

func (c *dimCache) ensure(table, idColumn, name string) (int64, error) {
	key := table + "\x00" + name
	if id, ok := c.ids[key]; ok {
		return id, nil
	}

	id, err := c.store.lookupID(c.ctx, table, idColumn, name)
	if errors.Is(err, sql.ErrNoRows) {
		insert := fmt.Sprintf("INSERT INTO %s (name) VALUES (?)", table)
		if _, err := c.store.db.ExecContext(c.ctx, insert, name); err != nil {
			return 0, fmt.Errorf("insert %s %q: %w", table, name, err)
		}
		id, err = c.store.lookupID(c.ctx, table, idColumn, name)
	}
	if err != nil {
		return 0, fmt.Errorf("resolve %s %q: %w", table, name, err)
	}

	c.ids[key] = id
	return id, nil
}

func validTable(table string) bool {
	if table == DailyVisitsTable {
		return true
	}
	for _, t := range dimensionTables {
		if t == table {
			return true
		}
	}
	return false
}
