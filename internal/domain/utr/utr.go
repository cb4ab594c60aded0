// Package utr computes the utilization ratio (offered rides per supply
// hour) under two definitions: Absolute (sum over sum) and Means (mean of
// per-bucket ratios), plus daily/weekly/monthly series over either.
package utr

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mbaleato/rota/internal/domain/aggregate"
	"github.com/mbaleato/rota/internal/domain/dataset"
)

// Mode selects the UTR definition.
type Mode int

const (
	Absolute Mode = iota // sum(offered) / sum(hours)
	Means                // mean of per-bucket offered/hours
)

func (m Mode) String() string {
	if m == Means {
		return "means"
	}
	return "absolute"
}

// ParseMode resolves a textual mode; unknown values default to Absolute.
func ParseMode(s string) Mode {
	if s == "means" {
		return Means
	}
	return Absolute
}

// Grain selects the series bucket size.
type Grain int

const (
	GrainDay Grain = iota
	GrainWeek
	GrainMonth
)

// ParseGrain resolves a textual grain; unknown values default to day.
func ParseGrain(s string) Grain {
	switch s {
	case "week":
		return GrainWeek
	case "month":
		return GrainMonth
	default:
		return GrainDay
	}
}

// Point is one series entry.
type Point struct {
	Period time.Time `json:"period"` // bucket start
	Label  string    `json:"label"`
	Value  float64   `json:"value"`
}

// Value computes the UTR of the whole slice under the requested mode,
// rounded to two decimals. Slices with no hours yield 0.
func Value(ds dataset.Dataset, mode Mode) float64 {
	return valueRows(ds.Rows(), mode)
}

func valueRows(rows []dataset.Row, mode Mode) float64 {
	if mode == Means {
		return meansValue(rows)
	}
	var offered, hours float64
	for _, r := range rows {
		offered += float64(r.Offered)
		hours += r.Hours()
	}
	if hours == 0 {
		return 0
	}
	return aggregate.Round2(offered / hours)
}

// meansValue averages per-(person, shift, date) ratios. Buckets without
// hours never appear.
func meansValue(rows []dataset.Row) float64 {
	type bucket struct {
		offered float64
		hours   float64
	}
	buckets := make(map[string]*bucket)
	for _, r := range rows {
		key := fmt.Sprintf("%s|%s|%s", bucketPerson(r), r.Shift, r.Date.Format("2006-01-02"))
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.offered += float64(r.Offered)
		b.hours += r.Hours()
	}
	var sum float64
	var n int
	for _, b := range buckets {
		if b.hours <= 0 {
			continue
		}
		sum += b.offered / b.hours
		n++
	}
	if n == 0 {
		return 0
	}
	return aggregate.Round2(sum / float64(n))
}

func bucketPerson(r dataset.Row) string {
	if r.PersonUUID != "" {
		return r.PersonUUID
	}
	return r.NameKey
}

// Series buckets the slice by grain and computes the per-bucket UTR under
// the requested mode. Points are sorted by period start; the deadline is
// checked between buckets.
func Series(ctx context.Context, ds dataset.Dataset, grain Grain, mode Mode) ([]Point, error) {
	groups := make(map[time.Time][]dataset.Row)
	for _, r := range ds.Rows() {
		start := bucketStart(r.Date, grain)
		groups[start] = append(groups[start], r)
	}

	out := make([]Point, 0, len(groups))
	for start, rows := range groups {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", dataset.ErrCancelled, err)
		}
		out = append(out, Point{
			Period: start,
			Label:  bucketLabel(start, grain),
			Value:  valueRows(rows, mode),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.Before(out[j].Period) })
	return out, nil
}

// bucketStart truncates a date to its bucket start: the day itself, the
// Monday of its ISO week, or the first of its month.
func bucketStart(d time.Time, grain Grain) time.Time {
	switch grain {
	case GrainWeek:
		offset := (int(d.Weekday()) + 6) % 7 // Monday start
		return d.AddDate(0, 0, -offset)
	case GrainMonth:
		return dataset.MonthStart(d)
	default:
		return d
	}
}

func bucketLabel(start time.Time, grain Grain) string {
	switch grain {
	case GrainWeek:
		year, week := start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case GrainMonth:
		return start.Format("2006-01")
	default:
		return start.Format("2006-01-02")
	}
}
