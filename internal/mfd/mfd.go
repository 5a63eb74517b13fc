// Package mfd implements magnitude-frequency distributions: the models
// that assign annual occurrence rates to earthquake magnitude bins.
package mfd

import (
	"fmt"
	"math"
)

// Bin is one magnitude bin of a discretized distribution. Mag is the bin
// center and Rate the annual rate of earthquakes with magnitude inside
// the bin.
type Bin struct {
	Mag  float64
	Rate float64
}

// TruncatedGR is a doubly-truncated Gutenberg-Richter distribution:
// log10(N(>=m)) = a - b*m, restricted to [MinMag, MaxMag].
type TruncatedGR struct {
	AVal     float64
	BVal     float64
	MinMag   float64
	MaxMag   float64
	BinWidth float64
}

// NewTruncatedGR validates the distribution parameters.
func NewTruncatedGR(a, b, minMag, maxMag, binWidth float64) (*TruncatedGR, error) {
	if b <= 0 {
		return nil, fmt.Errorf("gutenberg-richter b value must be positive, got %v", b)
	}
	if minMag >= maxMag {
		return nil, fmt.Errorf("min_mag %v must be below max_mag %v", minMag, maxMag)
	}
	if binWidth <= 0 {
		return nil, fmt.Errorf("bin_width must be positive, got %v", binWidth)
	}
	return &TruncatedGR{AVal: a, BVal: b, MinMag: minMag, MaxMag: maxMag, BinWidth: binWidth}, nil
}

// cumulativeRate returns the annual rate of events with magnitude >= m
// under the untruncated relationship.
func (d *TruncatedGR) cumulativeRate(m float64) float64 {
	return math.Pow(10, d.AVal-d.BVal*m)
}

// Bins discretizes the distribution into evenly spaced bins whose
// centers start at MinMag + BinWidth/2. The last bin may be narrower if
// the magnitude range is not a multiple of the bin width; its rate
// covers the remainder up to MaxMag.
func (d *TruncatedGR) Bins() []Bin {
	n := int(math.Ceil((d.MaxMag - d.MinMag) / d.BinWidth))
	if n < 1 {
		n = 1
	}
	bins := make([]Bin, 0, n)
	for i := 0; i < n; i++ {
		lo := d.MinMag + float64(i)*d.BinWidth
		hi := math.Min(lo+d.BinWidth, d.MaxMag)
		bins = append(bins, Bin{
			Mag:  (lo + hi) / 2,
			Rate: d.cumulativeRate(lo) - d.cumulativeRate(hi),
		})
	}
	return bins
}

// TotalRate returns the annual rate of all events in [MinMag, MaxMag].
func (d *TruncatedGR) TotalRate() float64 {
	return d.cumulativeRate(d.MinMag) - d.cumulativeRate(d.MaxMag)
}

// WithAdjustments returns a copy with the b value shifted by deltaB and,
// when maxMag > 0, the maximum magnitude replaced. The a value is kept,
// matching the bGRRelative / maxMagGRAbsolute logic-tree uncertainties.
func (d *TruncatedGR) WithAdjustments(deltaB, maxMag float64) (*TruncatedGR, error) {
	newMax := d.MaxMag
	if maxMag > 0 {
		newMax = maxMag
	}
	return NewTruncatedGR(d.AVal, d.BVal+deltaB, d.MinMag, newMax, d.BinWidth)
}
