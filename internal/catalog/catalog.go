// Package catalog maintains a sqlite index of raw datasets and their frame
// grids, so that collections of experiment directories can be queried
// without re-parsing metadata files. Each ingest run is tagged with a UUID
// for provenance.
package catalog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mcgill-femto/rawdata/dataset"
)

// Catalog wraps the sqlite index database.
type Catalog struct {
	db *sql.DB
}

// Open opens (or creates) the catalog database at path and applies any
// pending schema migrations.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}
	c := &Catalog{db: db}
	if err := c.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error { return c.db.Close() }

// DatasetRecord is one indexed dataset directory.
type DatasetRecord struct {
	ID              int64
	RunID           string
	Path            string
	Adapter         string
	DisplayName     string
	Energy          sql.NullFloat64
	Fluence         sql.NullFloat64
	Temperature     sql.NullFloat64
	Exposure        sql.NullFloat64
	PumpWavelength  sql.NullFloat64
	AcquisitionDate string
	Notes           string
	ScanCount       int
	TimePointCount  int
	IndexedAt       time.Time
}

// FrameRecord is one frame of a dataset's acquisition grid.
type FrameRecord struct {
	DatasetID int64
	Scan      int
	TimeDelay float64
	RelPath   string
	Timestamp sql.NullFloat64
	ECount    sql.NullFloat64
}

// framePather is implemented by adapters whose frame paths can be
// constructed directly from the grid coordinates.
type framePather interface {
	FramePath(timedelay float64, scan int) string
}

// framePatterner is implemented by adapters that resolve frames by glob.
type framePatterner interface {
	FramePattern(timedelay float64, scan int) string
}

// timestampTabler is implemented by adapters carrying a per-frame
// timestamp table.
type timestampTabler interface {
	Timestamps() map[string]float64
}

// ecountTabler is implemented by adapters carrying a per-frame
// electron-count table.
type ecountTabler interface {
	ElectronCounts() map[string]float64
}

// IngestDataset records a dataset and its full frame grid under a fresh
// run ID, replacing any previous index entry for the same path. The
// returned ID identifies the dataset row.
func (c *Catalog) IngestDataset(adapter, source string, ds dataset.RawDataset) (int64, error) {
	meta := ds.Metadata()
	runID := uuid.New().String()

	tx, err := c.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting ingest transaction: %w", err)
	}
	defer tx.Rollback()

	// Re-ingesting a path replaces its previous rows.
	if _, err := tx.Exec(`DELETE FROM frames WHERE dataset_id IN (SELECT id FROM datasets WHERE path = ?)`, source); err != nil {
		return 0, fmt.Errorf("clearing stale frames: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM datasets WHERE path = ?`, source); err != nil {
		return 0, fmt.Errorf("clearing stale dataset: %w", err)
	}

	res, err := tx.Exec(`
		INSERT INTO datasets (
			run_id, path, adapter, display_name,
			energy, fluence, temperature, exposure, pump_wavelength,
			acquisition_date, notes, scan_count, time_point_count, indexed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, source, adapter, ds.DisplayName(),
		nullIfMissing(meta.Energy), nullIfMissing(meta.Fluence),
		nullIfMissing(meta.Temperature), nullIfMissing(meta.Exposure),
		nullIfMissing(meta.PumpWavelength),
		meta.AcquisitionDate, meta.Notes,
		len(meta.Scans), len(meta.TimePoints),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting dataset %s: %w", source, err)
	}
	datasetID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading dataset id: %w", err)
	}

	var timestamps, ecounts map[string]float64
	if tt, ok := ds.(timestampTabler); ok {
		timestamps = tt.Timestamps()
	}
	if et, ok := ds.(ecountTabler); ok {
		ecounts = et.ElectronCounts()
	}

	stmt, err := tx.Prepare(`
		INSERT INTO frames (dataset_id, scan, timedelay, rel_path, timestamp, ecount)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing frame insert: %w", err)
	}
	defer stmt.Close()

	for _, scan := range meta.Scans {
		for _, td := range meta.TimePoints {
			rel := frameRel(ds, td, scan)
			var ts, ec interface{}
			if v, ok := timestamps[rel]; ok {
				ts = v
			}
			if v, ok := ecounts[rel]; ok {
				ec = v
			}
			if _, err := stmt.Exec(datasetID, scan, td, rel, ts, ec); err != nil {
				return 0, fmt.Errorf("inserting frame (%v, %d): %w", td, scan, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing ingest: %w", err)
	}
	return datasetID, nil
}

// frameRel returns the best available source-relative identifier for a
// frame: a direct path, a glob pattern, or empty when the adapter exposes
// neither.
func frameRel(ds dataset.RawDataset, td float64, scan int) string {
	switch a := ds.(type) {
	case framePather:
		return a.FramePath(td, scan)
	case framePatterner:
		return a.FramePattern(td, scan)
	}
	return ""
}

func nullIfMissing(v float64) interface{} {
	if dataset.IsMissing(v) {
		return nil
	}
	return v
}

// ListDatasets returns every indexed dataset, most recently indexed first.
func (c *Catalog) ListDatasets() ([]DatasetRecord, error) {
	rows, err := c.db.Query(`
		SELECT id, run_id, path, adapter, display_name,
		       energy, fluence, temperature, exposure, pump_wavelength,
		       acquisition_date, notes, scan_count, time_point_count, indexed_at
		FROM datasets ORDER BY indexed_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying datasets: %w", err)
	}
	defer rows.Close()

	var records []DatasetRecord
	for rows.Next() {
		var r DatasetRecord
		var indexedAt string
		if err := rows.Scan(
			&r.ID, &r.RunID, &r.Path, &r.Adapter, &r.DisplayName,
			&r.Energy, &r.Fluence, &r.Temperature, &r.Exposure, &r.PumpWavelength,
			&r.AcquisitionDate, &r.Notes, &r.ScanCount, &r.TimePointCount, &indexedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning dataset row: %w", err)
		}
		r.IndexedAt, _ = time.Parse(time.RFC3339, indexedAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Frames returns the frame grid of one dataset ordered by scan then
// time-delay.
func (c *Catalog) Frames(datasetID int64) ([]FrameRecord, error) {
	rows, err := c.db.Query(`
		SELECT dataset_id, scan, timedelay, rel_path, timestamp, ecount
		FROM frames WHERE dataset_id = ?
		ORDER BY scan, timedelay`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("querying frames: %w", err)
	}
	defer rows.Close()

	var records []FrameRecord
	for rows.Next() {
		var r FrameRecord
		if err := rows.Scan(&r.DatasetID, &r.Scan, &r.TimeDelay, &r.RelPath, &r.Timestamp, &r.ECount); err != nil {
			return nil, fmt.Errorf("scanning frame row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
