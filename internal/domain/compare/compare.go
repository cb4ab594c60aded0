// Package compare produces signed percentage deltas between two disjoint
// period slices: month over month, week over week, or same weekday.
package compare

import (
	"time"

	"github.com/mbaleato/rota/internal/domain/aggregate"
	"github.com/mbaleato/rota/internal/domain/dataset"
	"github.com/mbaleato/rota/internal/domain/filter"
)

// ComparisonKPI pairs the roll-ups of two slices with their deltas. A delta
// is nil when the base is 0 and the current value is positive (no
// meaningful percentage exists) and 0 when both sides are 0.
type ComparisonKPI struct {
	A aggregate.KPI `json:"a"`
	B aggregate.KPI `json:"b"`

	DeltaOfferedPct    *float64 `json:"delta_offered_pct"`
	DeltaAcceptedPct   *float64 `json:"delta_accepted_pct"`
	DeltaRejectedPct   *float64 `json:"delta_rejected_pct"`
	DeltaCompletedPct  *float64 `json:"delta_completed_pct"`
	DeltaHoursPct      *float64 `json:"delta_hours_pct"`
	DeltaAcceptancePct *float64 `json:"delta_acceptance_pct"`
	DeltaCompletionPct *float64 `json:"delta_completion_pct"`
}

// KPIs compares two already-narrowed slices.
func KPIs(a, b dataset.Dataset) ComparisonKPI {
	ka, kb := aggregate.KPIs(a), aggregate.KPIs(b)
	return ComparisonKPI{
		A:                  ka,
		B:                  kb,
		DeltaOfferedPct:    Delta(float64(ka.Offered), float64(kb.Offered)),
		DeltaAcceptedPct:   Delta(float64(ka.Accepted), float64(kb.Accepted)),
		DeltaRejectedPct:   Delta(float64(ka.Rejected), float64(kb.Rejected)),
		DeltaCompletedPct:  Delta(float64(ka.Completed), float64(kb.Completed)),
		DeltaHoursPct:      Delta(ka.Hours, kb.Hours),
		DeltaAcceptancePct: Delta(ka.AcceptancePct, kb.AcceptancePct),
		DeltaCompletionPct: Delta(ka.CompletionPct, kb.CompletionPct),
	}
}

// Delta computes (a-b)/b*100 rounded to two decimals, nil when b = 0 and
// a > 0, and 0 when both are 0.
func Delta(a, b float64) *float64 {
	switch {
	case a == 0 && b == 0:
		zero := 0.0
		return &zero
	case b == 0:
		return nil
	default:
		d := aggregate.Round2((a - b) / b * 100)
		return &d
	}
}

// Range is an inclusive date interval.
type Range struct {
	From time.Time
	To   time.Time
}

// Selection converts the range into a filter selection.
func (r Range) Selection() filter.Selection {
	from, to := dataset.DateOnly(r.From), dataset.DateOnly(r.To)
	return filter.Selection{DateFrom: &from, DateTo: &to}
}

// MonthOverMonth pairs the month containing ref with the previous month.
func MonthOverMonth(ref time.Time) (a, b Range) {
	start := dataset.MonthStart(ref)
	a = Range{From: start, To: start.AddDate(0, 1, -1)}
	prev := start.AddDate(0, -1, 0)
	b = Range{From: prev, To: start.AddDate(0, 0, -1)}
	return a, b
}

// WeekOverWeek pairs the ISO week containing ref with the previous week.
func WeekOverWeek(ref time.Time) (a, b Range) {
	d := dataset.DateOnly(ref)
	offset := (int(d.Weekday()) + 6) % 7 // Monday start
	start := d.AddDate(0, 0, -offset)
	a = Range{From: start, To: start.AddDate(0, 0, 6)}
	b = Range{From: start.AddDate(0, 0, -7), To: start.AddDate(0, 0, -1)}
	return a, b
}

// SameWeekday pairs the day containing ref with the same weekday one week
// earlier.
func SameWeekday(ref time.Time) (a, b Range) {
	d := dataset.DateOnly(ref)
	a = Range{From: d, To: d}
	prev := d.AddDate(0, 0, -7)
	b = Range{From: prev, To: prev}
	return a, b
}
