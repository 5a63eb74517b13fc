// Package datastore persists calculation results in an embedded SQLite
// database: realizations, sampled events, ground-motion values, and the
// derived hazard curves and maps. One database file serves one
// calculation.
//
// SQLite allows a single writer at a time; all write methods serialize
// through a weighted semaphore so computation workers can call them
// concurrently.
package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/semaphore"
	_ "modernc.org/sqlite"

	"github.com/specialistvlad/hazgridgo/internal/curves"
	"github.com/specialistvlad/hazgridgo/internal/gmf"
	"github.com/specialistvlad/hazgridgo/internal/logictree"
	"github.com/specialistvlad/hazgridgo/internal/ses"
)

// Store wraps the calculation database.
type Store struct {
	db       *sql.DB
	writeSem *semaphore.Weighted
}

// Calculation is the metadata row written once per run.
type Calculation struct {
	ID                string
	JobPath           string
	Seed              int64
	InvestigationTime float64
	SESPerPath        int
}

// CurveRecord is one stored hazard curve. Kind is "rlz" for a single
// realization, "mean" or "quantile" for statistics; Ordinal is -1 and
// Quantile 0 where they do not apply.
type CurveRecord struct {
	Kind     string
	Ordinal  int
	Quantile float64
	IMT      string
	Site     int
	Curve    curves.Curve
}

// MapRecord is one hazard-map cell: the intensity level exceeded with
// probability PoE at one site. Quantile is 0 unless Kind is "quantile".
type MapRecord struct {
	Kind     string
	Quantile float64
	PoE      float64
	IMT      string
	Site     int
	IML      float64
	Clamped  bool
}

const schema = `
CREATE TABLE IF NOT EXISTS calculation (
	id TEXT PRIMARY KEY,
	job_path TEXT NOT NULL,
	seed INTEGER NOT NULL,
	investigation_time REAL NOT NULL,
	ses_per_path INTEGER NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS realization (
	calc_id TEXT NOT NULL,
	ordinal INTEGER NOT NULL,
	sm_path TEXT NOT NULL,
	gmpes TEXT NOT NULL,
	weight REAL NOT NULL,
	seed INTEGER NOT NULL,
	PRIMARY KEY (calc_id, ordinal)
);
CREATE TABLE IF NOT EXISTS event (
	id TEXT PRIMARY KEY,
	calc_id TEXT NOT NULL,
	realization INTEGER NOT NULL,
	ses INTEGER NOT NULL,
	source_id TEXT NOT NULL,
	mag REAL NOT NULL,
	seed INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_event_rlz ON event(calc_id, realization);
CREATE TABLE IF NOT EXISTS gmf_value (
	event_id TEXT NOT NULL,
	imt TEXT NOT NULL,
	site INTEGER NOT NULL,
	value REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_gmf_event ON gmf_value(event_id, imt);
CREATE TABLE IF NOT EXISTS curve (
	calc_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	ordinal INTEGER NOT NULL,
	quantile REAL NOT NULL,
	imt TEXT NOT NULL,
	site INTEGER NOT NULL,
	imls TEXT NOT NULL,
	poes TEXT NOT NULL,
	PRIMARY KEY (calc_id, kind, ordinal, quantile, imt, site)
);
CREATE TABLE IF NOT EXISTS hazard_map (
	calc_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	quantile REAL NOT NULL,
	poe REAL NOT NULL,
	imt TEXT NOT NULL,
	site INTEGER NOT NULL,
	iml REAL NOT NULL,
	clamped INTEGER NOT NULL,
	PRIMARY KEY (calc_id, kind, quantile, poe, imt, site)
);
`

// Open creates or opens the calculation database at path, creating the
// parent directory and the schema as needed.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating datastore directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening datastore %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db, writeSem: semaphore.NewWeighted(1)}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// WriteCalculation records the calculation metadata.
func (s *Store) WriteCalculation(ctx context.Context, calc Calculation) error {
	if err := s.writeSem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.writeSem.Release(1)

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO calculation (id, job_path, seed, investigation_time, ses_per_path) VALUES (?, ?, ?, ?, ?)",
		calc.ID, calc.JobPath, calc.Seed, calc.InvestigationTime, calc.SESPerPath)
	if err != nil {
		return fmt.Errorf("writing calculation %s: %w", calc.ID, err)
	}
	return nil
}

// WriteRealizations stores the sampled or enumerated logic-tree
// realizations of the calculation.
func (s *Store) WriteRealizations(ctx context.Context, calcID string, rlzs []logictree.Realization) error {
	if err := s.writeSem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.writeSem.Release(1)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO realization (calc_id, ordinal, sm_path, gmpes, weight, seed) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rlz := range rlzs {
		gmpes, err := json.Marshal(rlz.GMPEByTRT)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			calcID, rlz.Ordinal, rlz.PathKey(), string(gmpes), rlz.Weight, rlz.Seed); err != nil {
			return fmt.Errorf("writing realization %d: %w", rlz.Ordinal, err)
		}
	}
	return tx.Commit()
}

// WriteEvents stores one realization's sampled events in a single
// transaction.
func (s *Store) WriteEvents(ctx context.Context, calcID string, events []*ses.Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := s.writeSem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.writeSem.Release(1)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO event (id, calc_id, realization, ses, source_id, mag, seed) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.ExecContext(ctx,
			ev.ID.String(), calcID, ev.Realization, ev.SES, ev.Rupture.SourceID, ev.Rupture.Mag, ev.Seed); err != nil {
			return fmt.Errorf("writing event %s: %w", ev.ID, err)
		}
	}
	return tx.Commit()
}

// WriteFields stores simulated ground-motion values, one row per site.
func (s *Store) WriteFields(ctx context.Context, fields []gmf.Field) error {
	if len(fields) == 0 {
		return nil
	}
	if err := s.writeSem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.writeSem.Release(1)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO gmf_value (event_id, imt, site, value) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range fields {
		id := f.EventID.String()
		imt := f.IMT.String()
		for i, siteIdx := range f.SiteIndices {
			if _, err := stmt.ExecContext(ctx, id, imt, siteIdx, f.Values[i]); err != nil {
				return fmt.Errorf("writing gmf for event %s: %w", id, err)
			}
		}
	}
	return tx.Commit()
}

// WriteCurves stores hazard curves; the level and probability vectors
// are kept as JSON arrays.
func (s *Store) WriteCurves(ctx context.Context, calcID string, records []CurveRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := s.writeSem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.writeSem.Release(1)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO curve (calc_id, kind, ordinal, quantile, imt, site, imls, poes) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		imls, err := json.Marshal(rec.Curve.IMLs)
		if err != nil {
			return err
		}
		poes, err := json.Marshal(rec.Curve.PoEs)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			calcID, rec.Kind, rec.Ordinal, rec.Quantile, rec.IMT, rec.Site,
			string(imls), string(poes)); err != nil {
			return fmt.Errorf("writing curve %s/%s site %d: %w", rec.Kind, rec.IMT, rec.Site, err)
		}
	}
	return tx.Commit()
}

// WriteMaps stores hazard-map cells.
func (s *Store) WriteMaps(ctx context.Context, calcID string, records []MapRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := s.writeSem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.writeSem.Release(1)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO hazard_map (calc_id, kind, quantile, poe, imt, site, iml, clamped) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		clamped := 0
		if rec.Clamped {
			clamped = 1
		}
		if _, err := stmt.ExecContext(ctx,
			calcID, rec.Kind, rec.Quantile, rec.PoE, rec.IMT, rec.Site, rec.IML, clamped); err != nil {
			return fmt.Errorf("writing map cell %s/%v/%s site %d: %w", rec.Kind, rec.PoE, rec.IMT, rec.Site, err)
		}
	}
	return tx.Commit()
}

// ReadCurves returns the stored curves of one kind for one intensity
// measure type, ordered by ordinal and site.
func (s *Store) ReadCurves(ctx context.Context, calcID, kind, imt string) ([]CurveRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT kind, ordinal, quantile, imt, site, imls, poes FROM curve WHERE calc_id = ? AND kind = ? AND imt = ? ORDER BY ordinal, quantile, site",
		calcID, kind, imt)
	if err != nil {
		return nil, fmt.Errorf("reading %s curves: %w", kind, err)
	}
	defer rows.Close()

	var out []CurveRecord
	for rows.Next() {
		var rec CurveRecord
		var imls, poes string
		if err := rows.Scan(&rec.Kind, &rec.Ordinal, &rec.Quantile, &rec.IMT, &rec.Site, &imls, &poes); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(imls), &rec.Curve.IMLs); err != nil {
			return nil, fmt.Errorf("decoding curve levels: %w", err)
		}
		if err := json.Unmarshal([]byte(poes), &rec.Curve.PoEs); err != nil {
			return nil, fmt.Errorf("decoding curve probabilities: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ReadMaps returns the stored hazard-map cells of one kind, ordered by
// probability, intensity measure type, and site.
func (s *Store) ReadMaps(ctx context.Context, calcID, kind string) ([]MapRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT kind, quantile, poe, imt, site, iml, clamped FROM hazard_map WHERE calc_id = ? AND kind = ? ORDER BY quantile, poe, imt, site",
		calcID, kind)
	if err != nil {
		return nil, fmt.Errorf("reading %s maps: %w", kind, err)
	}
	defer rows.Close()

	var out []MapRecord
	for rows.Next() {
		var rec MapRecord
		var clamped int
		if err := rows.Scan(&rec.Kind, &rec.Quantile, &rec.PoE, &rec.IMT, &rec.Site, &rec.IML, &clamped); err != nil {
			return nil, err
		}
		rec.Clamped = clamped != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountEvents returns how many events the calculation stored, total or
// for one realization when ordinal >= 0.
func (s *Store) CountEvents(ctx context.Context, calcID string, ordinal int) (int, error) {
	query := "SELECT COUNT(*) FROM event WHERE calc_id = ?"
	args := []any{calcID}
	if ordinal >= 0 {
		query += " AND realization = ?"
		args = append(args, ordinal)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return n, nil
}

// CurveIMTs lists the distinct intensity measure types with stored
// curves of the given kind.
func (s *Store) CurveIMTs(ctx context.Context, calcID, kind string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT imt FROM curve WHERE calc_id = ? AND kind = ? ORDER BY imt", calcID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var imt string
		if err := rows.Scan(&imt); err != nil {
			return nil, err
		}
		out = append(out, imt)
	}
	return out, rows.Err()
}

func curveFileName(kind string, rec CurveRecord) string {
	imt := strings.ReplaceAll(rec.IMT, "(", "_")
	imt = strings.ReplaceAll(imt, ")", "")
	switch kind {
	case "quantile":
		return fmt.Sprintf("quantile_curves-%v-%s.csv", rec.Quantile, imt)
	case "rlz":
		return fmt.Sprintf("hazard_curves-rlz%03d-%s.csv", rec.Ordinal, imt)
	default:
		return fmt.Sprintf("%s_curves-%s.csv", kind, imt)
	}
}
