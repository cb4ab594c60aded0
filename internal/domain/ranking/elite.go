// Package ranking produces the ranked outputs: elite-of-month membership,
// the promotion leaderboard, per-shift bonus eligibility and payouts, and
// consecutive-absence alerts. Money is carried as decimal reais derived
// from the cent-denominated source field.
package ranking

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mbaleato/rota/internal/domain/dataset"
)

// DefaultEliteTarget is the monthly accepted-and-completed count that earns
// the elite badge.
const DefaultEliteTarget = 300

// EliteRow is one person's standing against the elite target.
type EliteRow struct {
	Name            string  `json:"name"`
	Value           int     `json:"value"` // accepted-and-completed in the month
	Member          bool    `json:"member"`
	MissingToTarget int     `json:"missing_to_target"`
	Progress        float64 `json:"progress"` // 0..1
}

// Elite ranks every person active in the month against the target. The
// month is identified by its first day.
func Elite(ctx context.Context, ds dataset.Dataset, month time.Time, target int) ([]EliteRow, error) {
	if target <= 0 {
		target = DefaultEliteTarget
	}
	month = dataset.MonthStart(month)

	type acc struct {
		name  string
		value int
	}
	byPerson := make(map[string]*acc)
	for _, r := range ds.Rows() {
		if !r.MesAno.Equal(month) || r.NameKey == "" {
			continue
		}
		a, ok := byPerson[r.NameKey]
		if !ok {
			a = &acc{name: r.PersonName}
			byPerson[r.NameKey] = a
		}
		a.value += r.AcceptedCompleted
	}

	out := make([]EliteRow, 0, len(byPerson))
	for _, a := range byPerson {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", dataset.ErrCancelled, err)
		}
		row := EliteRow{
			Name:            a.name,
			Value:           a.value,
			Member:          a.value >= target,
			MissingToTarget: max(0, target-a.value),
			Progress:        math.Min(1, float64(a.value)/float64(target)),
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
