// Package aggregate rolls the dataset up into KPIs and per-person tables.
// Every ratio guards against a zero denominator by returning 0; an empty
// slice yields a zeroed value, never an error.
package aggregate

import (
	"math"

	"github.com/mbaleato/rota/internal/domain/dataset"
)

// KPI is the composed roll-up of a slice.
type KPI struct {
	Offered    int     `json:"offered"`
	Accepted   int     `json:"accepted"`
	Rejected   int     `json:"rejected"`
	Completed  int     `json:"completed"`
	AbsSeconds float64 `json:"abs_seconds"`
	Hours      float64 `json:"hours"`

	AcceptancePct float64 `json:"acceptance_pct"` // accepted / offered
	RejectionPct  float64 `json:"rejection_pct"`  // rejected / offered
	CompletionPct float64 `json:"completion_pct"` // completed / accepted

	ActivePeople int `json:"active_people"`
}

// KPIs computes the roll-up for the slice.
func KPIs(ds dataset.Dataset) KPI {
	var k KPI
	active := make(map[string]struct{})
	for _, r := range ds.Rows() {
		k.Offered += r.Offered
		k.Accepted += r.Accepted
		k.Rejected += r.Rejected
		k.Completed += r.Completed
		k.AbsSeconds += r.AbsSeconds
		if r.AbsSeconds > 0 || r.Offered > 0 || r.Accepted > 0 || r.Completed > 0 {
			active[personKey(r)] = struct{}{}
		}
	}
	k.Hours = k.AbsSeconds / 3600
	k.AcceptancePct = Ratio(float64(k.Accepted), float64(k.Offered))
	k.RejectionPct = Ratio(float64(k.Rejected), float64(k.Offered))
	k.CompletionPct = Ratio(float64(k.Completed), float64(k.Accepted))
	k.ActivePeople = len(active)
	return k
}

// Ratio is num/den expressed as a percentage rounded to two decimals and
// clamped to [0, 100]; 0 when the denominator is 0. Source counters are not
// guaranteed to conserve (accepted can exceed offered across split exports),
// so the clamp keeps derived percentages in range.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	pct := num / den * 100
	if pct <= 0 {
		return 0
	}
	if pct >= 100 {
		return 100
	}
	return Round2(pct)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

// personKey groups by the folded name, matching the per-person table, and
// falls back to the uuid for nameless rows.
func personKey(r dataset.Row) string {
	if r.NameKey != "" {
		return r.NameKey
	}
	return r.PersonUUID
}
