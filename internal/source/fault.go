package source

import (
	"fmt"
	"math"

	"github.com/specialistvlad/hazgridgo/internal/geo"
	"github.com/specialistvlad/hazgridgo/internal/mfd"
	"github.com/specialistvlad/hazgridgo/internal/msr"
)

// SimpleFaultSource models a fault as a surface built by extending a
// surface trace down dip between the seismogenic depths. Ruptures are
// rectangular patches floated over the fault mesh; the rate of each
// magnitude bin is split evenly over the float positions.
type SimpleFaultSource struct {
	id          string
	trt         string
	Trace       []geo.Point
	Dip         float64
	Rake        float64
	UpperDepth  float64
	LowerDepth  float64
	MFD         *mfd.TruncatedGR
	Scaling     msr.MSR
	AspectRatio float64
	MeshSpacing float64

	mesh  [][]geo.Point // rows down dip, columns along strike
	nRows int
	nCols int
}

// NewSimpleFaultSource validates the geometry and builds the fault mesh.
func NewSimpleFaultSource(id, trt string, trace []geo.Point, dip, rake, upper, lower float64,
	dist *mfd.TruncatedGR, scaling msr.MSR, aspect, meshSpacing float64) (*SimpleFaultSource, error) {
	if len(trace) < 2 {
		return nil, fmt.Errorf("source %s: fault trace needs at least 2 points", id)
	}
	if dip <= 0 || dip > 90 {
		return nil, fmt.Errorf("source %s: dip %v out of range (0, 90]", id, dip)
	}
	if upper < 0 || lower <= upper {
		return nil, fmt.Errorf("source %s: seismogenic depths must satisfy 0 <= upper < lower", id)
	}
	if aspect <= 0 {
		return nil, fmt.Errorf("source %s: rupture aspect ratio must be positive", id)
	}
	if meshSpacing <= 0 {
		meshSpacing = 5
	}

	s := &SimpleFaultSource{
		id: id, trt: trt, Trace: trace, Dip: dip, Rake: rake,
		UpperDepth: upper, LowerDepth: lower, MFD: dist, Scaling: scaling,
		AspectRatio: aspect, MeshSpacing: meshSpacing,
	}
	s.buildMesh()
	return s, nil
}

// traceLength returns the along-strike length of the fault trace in km.
func (s *SimpleFaultSource) traceLength() float64 {
	total := 0.0
	for i := 1; i < len(s.Trace); i++ {
		total += s.Trace[i-1].HorizontalDistance(s.Trace[i])
	}
	return total
}

// faultWidth returns the down-dip width of the fault plane in km.
func (s *SimpleFaultSource) faultWidth() float64 {
	return (s.LowerDepth - s.UpperDepth) / math.Sin(s.Dip*math.Pi/180)
}

// interpolateTrace resamples the trace into n evenly spaced points.
func (s *SimpleFaultSource) interpolateTrace(n int) []geo.Point {
	total := s.traceLength()
	points := make([]geo.Point, 0, n)
	for i := 0; i < n; i++ {
		target := total * float64(i) / float64(n-1)
		walked := 0.0
		pt := s.Trace[len(s.Trace)-1]
		for j := 1; j < len(s.Trace); j++ {
			seg := s.Trace[j-1].HorizontalDistance(s.Trace[j])
			if walked+seg >= target-1e-9 {
				az := s.Trace[j-1].Azimuth(s.Trace[j])
				pt = s.Trace[j-1].Shift(az, target-walked, 0)
				break
			}
			walked += seg
		}
		points = append(points, pt)
	}
	return points
}

// buildMesh discretizes the fault plane: the trace is resampled along
// strike and each column is extended down dip from the upper to the
// lower seismogenic depth.
func (s *SimpleFaultSource) buildMesh() {
	length := s.traceLength()
	width := s.faultWidth()

	s.nCols = int(math.Round(length/s.MeshSpacing)) + 1
	if s.nCols < 2 {
		s.nCols = 2
	}
	s.nRows = int(math.Round(width/s.MeshSpacing)) + 1
	if s.nRows < 2 {
		s.nRows = 2
	}

	top := s.interpolateTrace(s.nCols)
	strike := s.Trace[0].Azimuth(s.Trace[len(s.Trace)-1])
	dipAz := math.Mod(strike+90, 360)
	cosDip := math.Cos(s.Dip * math.Pi / 180)
	sinDip := math.Sin(s.Dip * math.Pi / 180)

	s.mesh = make([][]geo.Point, s.nRows)
	for r := 0; r < s.nRows; r++ {
		w := width * float64(r) / float64(s.nRows-1)
		row := make([]geo.Point, s.nCols)
		for c := 0; c < s.nCols; c++ {
			p := top[c]
			p.Depth = s.UpperDepth
			row[c] = p.Shift(dipAz, w*cosDip, w*sinDip)
		}
		s.mesh[r] = row
	}
}

// ID implements Source.
func (s *SimpleFaultSource) ID() string { return s.id }

// TRT implements Source.
func (s *SimpleFaultSource) TRT() string { return s.trt }

// Footprint implements Source.
func (s *SimpleFaultSource) Footprint() *geo.Mesh {
	points := make([]geo.Point, 0, s.nRows*s.nCols)
	for _, row := range s.mesh {
		for _, p := range row {
			points = append(points, geo.Point{Lon: p.Lon, Lat: p.Lat})
		}
	}
	return &geo.Mesh{Points: points}
}

// ruptureCells returns the rupture window size in mesh cells for one
// magnitude, plus the number of float positions.
func (s *SimpleFaultSource) ruptureCells(mag float64) (rows, cols, positions int) {
	length, width := ruptureDims(s.Scaling, mag, s.Rake, s.AspectRatio, s.Dip, s.UpperDepth, s.LowerDepth)
	if length > s.traceLength() {
		length = s.traceLength()
	}
	if width > s.faultWidth() {
		width = s.faultWidth()
	}

	colSpacing := s.traceLength() / float64(s.nCols-1)
	rowSpacing := s.faultWidth() / float64(s.nRows-1)

	cols = int(math.Round(length/colSpacing)) + 1
	if cols < 2 {
		cols = 2
	}
	if cols > s.nCols {
		cols = s.nCols
	}
	rows = int(math.Round(width/rowSpacing)) + 1
	if rows < 2 {
		rows = 2
	}
	if rows > s.nRows {
		rows = s.nRows
	}
	positions = (s.nCols - cols + 1) * (s.nRows - rows + 1)
	return rows, cols, positions
}

// CountRuptures implements Source.
func (s *SimpleFaultSource) CountRuptures() int {
	n := 0
	for _, bin := range s.MFD.Bins() {
		_, _, positions := s.ruptureCells(bin.Mag)
		n += positions
	}
	return n
}

// Ruptures implements Source.
func (s *SimpleFaultSource) Ruptures() ([]*Rupture, error) {
	var ruptures []*Rupture
	for _, bin := range s.MFD.Bins() {
		rows, cols, positions := s.ruptureCells(bin.Mag)
		rate := bin.Rate / float64(positions)

		for r0 := 0; r0 <= s.nRows-rows; r0++ {
			for c0 := 0; c0 <= s.nCols-cols; c0++ {
				points := make([]geo.Point, 0, rows*cols)
				for r := r0; r < r0+rows; r++ {
					points = append(points, s.mesh[r][c0:c0+cols]...)
				}
				hypo := s.mesh[r0+rows/2][c0+cols/2]
				ruptures = append(ruptures, &Rupture{
					SourceID:   s.id,
					TRT:        s.trt,
					Mag:        bin.Mag,
					Rake:       s.Rake,
					Hypocenter: hypo,
					Surface:    &geo.Mesh{Points: points},
					Rate:       rate,
				})
			}
		}
	}
	return ruptures, nil
}
