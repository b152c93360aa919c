package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

// Star schema: one dimension table per scoping axis and one fact table
// per ranked dimension, each fact row a pre-aggregated volume keyed by
// date, zone, visitor category, provenance and member.

const dimensionTables = `
	CREATE SEQUENCE IF NOT EXISTS seq_zone;
	CREATE SEQUENCE IF NOT EXISTS seq_category;
	CREATE SEQUENCE IF NOT EXISTS seq_provenance;

	CREATE TABLE IF NOT EXISTS dim_zones (
		id_zone INTEGER PRIMARY KEY DEFAULT nextval('seq_zone'),
		name VARCHAR NOT NULL UNIQUE
	);
	CREATE TABLE IF NOT EXISTS dim_visitor_categories (
		id_category INTEGER PRIMARY KEY DEFAULT nextval('seq_category'),
		name VARCHAR NOT NULL UNIQUE
	);
	CREATE TABLE IF NOT EXISTS dim_provenances (
		id_provenance INTEGER PRIMARY KEY DEFAULT nextval('seq_provenance'),
		name VARCHAR NOT NULL UNIQUE
	);
`

const factTables = `
	CREATE TABLE IF NOT EXISTS fact_nights_departments (
		date TIMESTAMP NOT NULL,
		id_zone INTEGER NOT NULL,
		id_category INTEGER NOT NULL,
		id_provenance INTEGER NOT NULL,
		member VARCHAR NOT NULL,
		volume BIGINT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS fact_nights_regions (
		date TIMESTAMP NOT NULL,
		id_zone INTEGER NOT NULL,
		id_category INTEGER NOT NULL,
		id_provenance INTEGER NOT NULL,
		member VARCHAR NOT NULL,
		volume BIGINT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS fact_nights_countries (
		date TIMESTAMP NOT NULL,
		id_zone INTEGER NOT NULL,
		id_category INTEGER NOT NULL,
		id_provenance INTEGER NOT NULL,
		member VARCHAR NOT NULL,
		volume BIGINT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS fact_nights_age_bands (
		date TIMESTAMP NOT NULL,
		id_zone INTEGER NOT NULL,
		id_category INTEGER NOT NULL,
		id_provenance INTEGER NOT NULL,
		member VARCHAR NOT NULL,
		volume BIGINT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS fact_nights_segments (
		date TIMESTAMP NOT NULL,
		id_zone INTEGER NOT NULL,
		id_category INTEGER NOT NULL,
		id_provenance INTEGER NOT NULL,
		member VARCHAR NOT NULL,
		volume BIGINT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS fact_daily_visits (
		date TIMESTAMP NOT NULL,
		id_zone INTEGER NOT NULL,
		id_category INTEGER NOT NULL,
		id_provenance INTEGER NOT NULL,
		volume BIGINT NOT NULL
	);
`

var bootQueries = []string{
	dimensionTables,
	factTables,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
