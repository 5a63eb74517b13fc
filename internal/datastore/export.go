package datastore

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/specialistvlad/hazgridgo/internal/geo"
)

// ExportCurves writes the stored curves of one kind to CSV, one file
// per (curve, intensity measure type) pair. Each row is one site:
// lon, lat, then the exceedance probability at every intensity level.
// Returns the written file paths.
func (s *Store) ExportCurves(ctx context.Context, dir, calcID, kind string, sites []geo.Point) ([]string, error) {
	imts, err := s.CurveIMTs(ctx, calcID, kind)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, imt := range imts {
		records, err := s.ReadCurves(ctx, calcID, kind, imt)
		if err != nil {
			return nil, err
		}

		// Statistics store one curve set per IMT; realization curves
		// store one per ordinal, quantiles one per fractile.
		groups := map[string][]CurveRecord{}
		for _, rec := range records {
			groups[curveFileName(kind, rec)] = append(groups[curveFileName(kind, rec)], rec)
		}
		names := make([]string, 0, len(groups))
		for name := range groups {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			path := filepath.Join(dir, name)
			if err := writeCurveFile(path, groups[name], sites); err != nil {
				return nil, err
			}
			written = append(written, path)
		}
	}
	return written, nil
}

func writeCurveFile(path string, records []CurveRecord, sites []geo.Point) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"lon", "lat"}
	for _, iml := range records[0].Curve.IMLs {
		header = append(header, "poe-"+formatFloat(iml))
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		if rec.Site < 0 || rec.Site >= len(sites) {
			return fmt.Errorf("curve references unknown site %d", rec.Site)
		}
		loc := sites[rec.Site]
		row := []string{formatFloat(loc.Lon), formatFloat(loc.Lat)}
		for _, poe := range rec.Curve.PoEs {
			row = append(row, formatFloat(poe))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ExportMaps writes the stored hazard maps of one kind to CSV, one file
// per (probability, intensity measure type) pair. Each row is one site:
// lon, lat, the interpolated intensity level, and whether the requested
// probability fell outside the curve and was clamped.
func (s *Store) ExportMaps(ctx context.Context, dir, calcID, kind string, sites []geo.Point) ([]string, error) {
	records, err := s.ReadMaps(ctx, calcID, kind)
	if err != nil {
		return nil, err
	}

	groups := map[string][]MapRecord{}
	for _, rec := range records {
		groups[mapFileName(kind, rec)] = append(groups[mapFileName(kind, rec)], rec)
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	var written []string
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := writeMapFile(path, groups[name], sites); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeMapFile(path string, records []MapRecord, sites []geo.Point) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"lon", "lat", "iml", "clamped"}); err != nil {
		return err
	}
	for _, rec := range records {
		if rec.Site < 0 || rec.Site >= len(sites) {
			return fmt.Errorf("map cell references unknown site %d", rec.Site)
		}
		loc := sites[rec.Site]
		row := []string{
			formatFloat(loc.Lon),
			formatFloat(loc.Lat),
			formatFloat(rec.IML),
			strconv.FormatBool(rec.Clamped),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func mapFileName(kind string, rec MapRecord) string {
	imt := strings.ReplaceAll(rec.IMT, "(", "_")
	imt = strings.ReplaceAll(imt, ")", "")
	if kind == "quantile" {
		return fmt.Sprintf("hazard_map-quantile%s-poe%s-%s.csv", formatFloat(rec.Quantile), formatFloat(rec.PoE), imt)
	}
	return fmt.Sprintf("hazard_map-%s-poe%s-%s.csv", kind, formatFloat(rec.PoE), imt)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
