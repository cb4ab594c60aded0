// Package adherence measures how much of the contracted shift capacity was
// filled by delivery people who were meaningfully present.
package adherence

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mbaleato/rota/internal/domain/aggregate"
	"github.com/mbaleato/rota/internal/domain/dataset"
)

// UnknownShift is the synthetic label used when the slice carries no shift
// column.
const UnknownShift = "(unknown)"

// excessTag excludes above-quota lines from adherence, case-insensitively.
const excessTag = "excess"

// DefaultMinPresenceSeconds is the presence threshold for a person to count
// toward a group.
const DefaultMinPresenceSeconds = 600

// GroupRow is the adherence roll-up of one (date, area, shift) group.
type GroupRow struct {
	Date  time.Time `json:"date"`
	Area  string    `json:"area"`
	Shift string    `json:"shift"`

	Unique   int     `json:"unique"`   // people at or above the presence threshold
	Capacity int     `json:"capacity"` // max contracted capacity seen in the group
	RatePct  float64 `json:"rate_pct"`

	// CapacityInconsistent flags groups whose rows disagree on capacity;
	// the max wins.
	CapacityInconsistent bool `json:"capacity_inconsistent,omitempty"`
}

// Result is the full adherence table plus the aggregate rate.
type Result struct {
	Groups           []GroupRow `json:"groups"`
	TotalUnique      int        `json:"total_unique"`
	TotalCapacity    int        `json:"total_capacity"`
	AggregateRatePct float64    `json:"aggregate_rate_pct"`
}

// Compute builds the adherence table. Sentinel rows stay in group
// membership with zero seconds; rows tagged EXCESS are excluded entirely.
// Groups without any capacity value use the unique count as capacity, which
// makes their rate the neutral 100%.
func Compute(ctx context.Context, ds dataset.Dataset, minPresenceSeconds float64) (Result, error) {
	if minPresenceSeconds <= 0 {
		minPresenceSeconds = DefaultMinPresenceSeconds
	}

	type group struct {
		row     GroupRow
		seconds map[string]float64 // per-person clipped seconds
		capMin  int
		capMax  int
		hasCap  bool
		anon    int // id-less rows get a distinct bucket each
	}
	groups := make(map[string]*group)

	for _, r := range ds.Rows() {
		if strings.Contains(strings.ToLower(r.Tag), excessTag) {
			continue
		}
		shift := r.Shift
		if shift == "" {
			shift = UnknownShift
		}
		key := fmt.Sprintf("%s|%s|%s", r.Date.Format("2006-01-02"), dataset.FoldKey(r.Area), dataset.FoldKey(shift))
		g, ok := groups[key]
		if !ok {
			g = &group{
				row:     GroupRow{Date: r.Date, Area: r.Area, Shift: shift},
				seconds: make(map[string]float64),
			}
			groups[key] = g
		}

		person := r.PersonUUID
		if person == "" {
			// No cross-row identity without an id: every such row is its
			// own bucket.
			g.anon++
			person = fmt.Sprintf("\x00anon-%d", g.anon)
		}
		g.seconds[person] += r.AbsSeconds

		if r.HasCapacity {
			if !g.hasCap {
				g.capMin, g.capMax = r.CrewMinCapacity, r.CrewMinCapacity
				g.hasCap = true
			} else {
				if r.CrewMinCapacity < g.capMin {
					g.capMin = r.CrewMinCapacity
				}
				if r.CrewMinCapacity > g.capMax {
					g.capMax = r.CrewMinCapacity
				}
			}
		}
	}

	var res Result
	res.Groups = make([]GroupRow, 0, len(groups))
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("%w: %v", dataset.ErrCancelled, err)
		}
		for _, secs := range g.seconds {
			if secs >= minPresenceSeconds {
				g.row.Unique++
			}
		}
		switch {
		case g.hasCap:
			g.row.Capacity = g.capMax
			g.row.CapacityInconsistent = g.capMin != g.capMax
		default:
			// Neutral element: an unquoted group adheres to itself.
			g.row.Capacity = g.row.Unique
		}
		if g.row.Capacity > 0 {
			g.row.RatePct = aggregate.Ratio(float64(g.row.Unique), float64(g.row.Capacity))
		}
		res.TotalUnique += g.row.Unique
		res.TotalCapacity += g.row.Capacity
		res.Groups = append(res.Groups, g.row)
	}

	sort.Slice(res.Groups, func(i, j int) bool {
		a, b := res.Groups[i], res.Groups[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Area != b.Area {
			return a.Area < b.Area
		}
		return a.Shift < b.Shift
	})
	if res.TotalCapacity > 0 {
		res.AggregateRatePct = aggregate.Ratio(float64(res.TotalUnique), float64(res.TotalCapacity))
	}
	return res, nil
}
