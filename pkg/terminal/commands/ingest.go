package commands

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/obs-tools/visit-atlas/pkg/models/domain"
	"github.com/obs-tools/visit-atlas/pkg/models/store"
	"github.com/obs-tools/visit-atlas/pkg/store/duckdb"
)

const ingestDateLayout = "2006-01-02"

// IngestCmd loads one CSV export into a fact table. Dimension files
// carry date,zone,category,provenance,member,volume; the daily series
// drops the member column.
type IngestCmd struct {
	configPath string
	file       string
	dimension  string
	daily      bool
}

func NewIngestCmd() *cobra.Command {
	ic := &IngestCmd{}
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load a CSV fact export into the store",
		RunE:  ic.run,
	}

	cmd.Flags().StringVar(&ic.configPath, "config", "", "Path to the configuration file")
	cmd.Flags().StringVar(&ic.file, "file", "", "Path to the CSV export")
	cmd.Flags().StringVar(&ic.dimension, "dimension", "", "Target dimension (e.g. departments)")
	cmd.Flags().BoolVar(&ic.daily, "daily", false, "Load into the daily visit series instead of a dimension")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (ic *IngestCmd) run(cmd *cobra.Command, _ []string) error {
	var dim domain.Dimension
	if !ic.daily {
		var ok bool
		dim, ok = domain.ParseDimension(ic.dimension)
		if !ok {
			return fmt.Errorf("unknown dimension %q, supported: %v", ic.dimension, domain.Dimensions())
		}
	}

	rows, err := ic.readRows()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing to ingest")
		return nil
	}

	d, err := buildDeps(ic.configPath)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	ctx = duckdb.WithTransaction(ctx, tx)

	if ic.daily {
		err = d.facts.AddDailyVisits(ctx, rows)
	} else {
		err = d.facts.AddFacts(ctx, dim, rows)
	}
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to ingest rows: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ingestion: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "ingested %d rows from %s\n", len(rows), ic.file)
	return nil
}

func (ic *IngestCmd) readRows() ([]store.FactRow, error) {
	f, err := os.Open(ic.file)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", ic.file, err)
	}
	defer f.Close()

	wantFields := 6
	if ic.daily {
		wantFields = 5
	}

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = wantFields

	var rows []store.FactRow
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", ic.file, err)
		}
		line++

		date, err := time.Parse(ingestDateLayout, record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad date %q: %w", line, record[0], err)
		}

		row := store.FactRow{
			Date:       date,
			Zone:       record[1],
			Category:   record[2],
			Provenance: record[3],
		}

		volumeField := record[4]
		if !ic.daily {
			row.Member = record[4]
			volumeField = record[5]
		}
		row.Volume, err = strconv.ParseInt(volumeField, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad volume %q: %w", line, volumeField, err)
		}
		if row.Volume < 0 {
			return nil, fmt.Errorf("line %d: negative volume %d", line, row.Volume)
		}

		rows = append(rows, row)
	}
	return rows, nil
}
