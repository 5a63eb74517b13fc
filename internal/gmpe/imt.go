package gmpe

import (
	"fmt"
	"strconv"
	"strings"
)

// IMT is an intensity measure type: either peak ground acceleration or
// 5%-damped spectral acceleration at a period in seconds. Values are in
// units of g.
type IMT struct {
	Kind   string // "PGA" or "SA"
	Period float64
}

// PGA is the peak ground acceleration intensity measure.
var PGA = IMT{Kind: "PGA"}

// SA returns the spectral acceleration measure at the given period.
func SA(period float64) IMT { return IMT{Kind: "SA", Period: period} }

// ParseIMT parses configuration spellings like "PGA", "SA(0.2)".
func ParseIMT(s string) (IMT, error) {
	s = strings.TrimSpace(s)
	if s == "PGA" {
		return PGA, nil
	}
	if strings.HasPrefix(s, "SA(") && strings.HasSuffix(s, ")") {
		period, err := strconv.ParseFloat(s[3:len(s)-1], 64)
		if err != nil || period <= 0 {
			return IMT{}, fmt.Errorf("invalid spectral period in %q", s)
		}
		return SA(period), nil
	}
	return IMT{}, fmt.Errorf("unknown intensity measure type %q (want PGA or SA(<period>))", s)
}

// String renders the canonical spelling, e.g. "SA(0.2)".
func (i IMT) String() string {
	if i.Kind == "PGA" {
		return "PGA"
	}
	return fmt.Sprintf("SA(%g)", i.Period)
}
