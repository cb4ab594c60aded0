package ranking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mbaleato/rota/internal/domain/aggregate"
	"github.com/mbaleato/rota/internal/domain/dataset"
	"github.com/mbaleato/rota/internal/domain/timecalc"
)

// Default per-shift bonus policy.
const DefaultBonusMinAcceptancePct = 70

// DefaultHourlyBonusValue is the hourly bonus rate in reais.
var DefaultHourlyBonusValue = decimal.RequireFromString("2.15")

// BonusRow is the bonus judgment for one (person, date, shift).
type BonusRow struct {
	Name  string    `json:"name"`
	Date  time.Time `json:"date"`
	Shift string    `json:"shift"`

	AcceptancePct float64 `json:"acceptance_pct"`
	OnlinePct     float64 `json:"online_pct"`
	Hours         float64 `json:"hours"`

	Eligible bool            `json:"eligible"`
	Payout   decimal.Decimal `json:"payout"`
}

// ShiftBonus judges every (person, date, shift) bucket: eligible iff the
// acceptance percentage reaches minAcceptancePct and the online percentage
// is positive. Eligible buckets pay rate x hours, rounded to cents;
// ineligible buckets pay zero.
func ShiftBonus(ctx context.Context, ds dataset.Dataset, minAcceptancePct float64, rate decimal.Decimal) ([]BonusRow, error) {
	if minAcceptancePct <= 0 {
		minAcceptancePct = DefaultBonusMinAcceptancePct
	}
	if rate.IsZero() {
		rate = DefaultHourlyBonusValue
	}

	type bucket struct {
		name  string
		date  time.Time
		shift string
		rows  []dataset.Row
	}
	buckets := make(map[string]*bucket)
	for _, r := range ds.Rows() {
		if r.NameKey == "" {
			continue
		}
		key := fmt.Sprintf("%s|%s|%s", r.NameKey, r.Date.Format("2006-01-02"), dataset.FoldKey(r.Shift))
		b, ok := buckets[key]
		if !ok {
			b = &bucket{name: r.PersonName, date: r.Date, shift: r.Shift}
			buckets[key] = b
		}
		b.rows = append(b.rows, r)
	}

	out := make([]BonusRow, 0, len(buckets))
	for _, b := range buckets {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", dataset.ErrCancelled, err)
		}
		var offered, accepted int
		var hours float64
		for _, r := range b.rows {
			offered += r.Offered
			accepted += r.Accepted
			hours += r.Hours()
		}
		row := BonusRow{
			Name:          b.name,
			Date:          b.date,
			Shift:         b.shift,
			AcceptancePct: aggregate.Ratio(float64(accepted), float64(offered)),
			OnlinePct:     timecalc.OnlineRows(b.rows).Pct,
			Hours:         hours,
			Payout:        decimal.Zero,
		}
		row.Eligible = row.AcceptancePct >= minAcceptancePct && row.OnlinePct > 0
		if row.Eligible {
			row.Payout = rate.Mul(decimal.NewFromFloat(hours)).Round(2)
		}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Shift < b.Shift
	})
	return out, nil
}
