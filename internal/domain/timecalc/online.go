// Package timecalc computes the tempo-online percentage. The scaled
// availability field shows up in three magnitudes across historical exports
// (unit fractions, percents, basis points); the median of the slice is used
// as a robust band detector before averaging.
package timecalc

import (
	"math"
	"sort"

	"github.com/mbaleato/rota/internal/domain/dataset"
)

// Band identifies the detected magnitude of the scaled availability values.
type Band int

const (
	BandUnknown Band = iota
	BandUnit         // 0..1
	BandPercent      // 0..100
	BandBasisPoints  // 0..10000
)

func (b Band) String() string {
	switch b {
	case BandUnit:
		return "unit"
	case BandPercent:
		return "percent"
	case BandBasisPoints:
		return "basis_points"
	default:
		return "unknown"
	}
}

// Result carries the online percentage plus diagnostics.
type Result struct {
	Pct     float64 // [0, 100], one decimal
	Band    Band
	Samples int // rows that survived sentinel and threshold gating
}

// Online computes the online percentage for the slice.
func Online(ds dataset.Dataset) Result {
	return OnlineRows(ds.Rows())
}

// OnlineRows is Online over a bare row slice, for callers that already hold
// a sub-group.
func OnlineRows(rows []dataset.Row) Result {
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		if !r.ValidShift() || !r.HasScaled {
			continue
		}
		values = append(values, r.ScaledAvailable)
	}
	if len(values) == 0 {
		return Result{Band: BandUnknown}
	}

	med := median(values)
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var pct float64
	var band Band
	switch {
	case med <= 1.0:
		pct, band = mean*100, BandUnit
	case med <= 100:
		pct, band = mean, BandPercent
	default:
		pct, band = mean/100, BandBasisPoints
	}
	pct = math.Max(0, math.Min(100, pct))
	pct = math.Round(pct*10) / 10
	return Result{Pct: pct, Band: band, Samples: len(values)}
}

// median returns the middle value of vs without mutating the input.
func median(vs []float64) float64 {
	sorted := make([]float64, len(vs))
	copy(sorted, vs)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
