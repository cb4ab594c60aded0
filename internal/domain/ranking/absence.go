package ranking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mbaleato/rota/internal/domain/dataset"
)

// Default absence alert policy.
const (
	DefaultAbsenceLookbackDays = 15
	DefaultAbsenceMinStreak    = 4
)

// Alert flags a person who has been absent for a run of consecutive days
// ending yesterday.
type Alert struct {
	Name       string    `json:"name"`
	LastActive time.Time `json:"last_active"`
	Streak     int       `json:"streak"` // consecutive absent days ending yesterday
	Since      time.Time `json:"since"`  // first day of the streak
}

// AbsenceAlerts scans people with any activity inside the lookback window
// and emits an alert when the run of days with no presence ending yesterday
// reaches minStreak.
func AbsenceAlerts(ctx context.Context, ds dataset.Dataset, today time.Time, lookbackDays, minStreak int) ([]Alert, error) {
	if lookbackDays <= 0 {
		lookbackDays = DefaultAbsenceLookbackDays
	}
	if minStreak <= 0 {
		minStreak = DefaultAbsenceMinStreak
	}
	today = dataset.DateOnly(today)
	windowStart := today.AddDate(0, 0, -lookbackDays)

	type presence struct {
		name string
		days map[time.Time]struct{}
		last time.Time
	}
	byPerson := make(map[string]*presence)
	for _, r := range ds.Rows() {
		if r.NameKey == "" {
			continue
		}
		p, ok := byPerson[r.NameKey]
		if !ok {
			p = &presence{name: r.PersonName, days: make(map[time.Time]struct{})}
			byPerson[r.NameKey] = p
		}
		p.days[r.Date] = struct{}{}
		if r.Date.After(p.last) {
			p.last = r.Date
		}
	}

	var out []Alert
	yesterday := today.AddDate(0, 0, -1)
	for _, p := range byPerson {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", dataset.ErrCancelled, err)
		}
		// Only people seen inside the window are worth alerting on.
		if p.last.Before(windowStart) {
			continue
		}
		// The streak never exceeds the window it was observed in.
		streak := 0
		for d := yesterday; streak < lookbackDays; d = d.AddDate(0, 0, -1) {
			if _, present := p.days[d]; present {
				break
			}
			streak++
		}
		if streak >= minStreak {
			out = append(out, Alert{
				Name:       p.name,
				LastActive: p.last,
				Streak:     streak,
				Since:      yesterday.AddDate(0, 0, -(streak - 1)),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Streak != out[j].Streak {
			return out[i].Streak > out[j].Streak
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
