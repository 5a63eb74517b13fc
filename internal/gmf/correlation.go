package gmf

import (
	"fmt"
	"math"

	"github.com/specialistvlad/hazgridgo/internal/gmpe"
	"github.com/specialistvlad/hazgridgo/internal/site"
)

// CorrelationModel yields the correlation of intra-event residuals
// between two sites for a given intensity measure.
type CorrelationModel interface {
	Correlation(a, b site.Site, imt gmpe.IMT) float64
}

// JB2009 is the Jayaram & Baker (2009) exponential correlation model,
// corr(h) = exp(-3h / b(T)), with the correlation range b depending on
// the spectral period and on whether vs30 values show clustering.
type JB2009 struct {
	Vs30Clustered bool
}

// rangeKm returns the correlation range b(T) in km.
func (m JB2009) rangeKm(imt gmpe.IMT) float64 {
	period := imt.Period // PGA behaves as zero period
	if period >= 1 {
		return 22.0 + 3.7*period
	}
	if m.Vs30Clustered {
		return 40.7 - 15.0*period
	}
	return 8.5 + 17.2*period
}

// Correlation implements CorrelationModel.
func (m JB2009) Correlation(a, b site.Site, imt gmpe.IMT) float64 {
	h := a.Location.HorizontalDistance(b.Location)
	return math.Exp(-3 * h / m.rangeKm(imt))
}

// NewCorrelationModel resolves the configured model name. An empty name
// or "none" disables spatial correlation.
func NewCorrelationModel(name string, vs30Clustered bool) (CorrelationModel, error) {
	switch name {
	case "", "none":
		return nil, nil
	case "jb2009":
		return JB2009{Vs30Clustered: vs30Clustered}, nil
	default:
		return nil, fmt.Errorf("unknown ground motion correlation model %q (want none or jb2009)", name)
	}
}
