package ranking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mbaleato/rota/internal/domain/aggregate"
	"github.com/mbaleato/rota/internal/domain/dataset"
)

// PromotionConfig carries the campaign window and eligibility gates.
type PromotionConfig struct {
	Start time.Time // inclusive
	End   time.Time // inclusive

	MinAcceptancePct float64
	MinCompletionPct float64
}

// DefaultPromotionConfig returns the current campaign parameters.
func DefaultPromotionConfig() PromotionConfig {
	return PromotionConfig{
		Start:            time.Date(2025, 12, 8, 0, 0, 0, 0, time.UTC),
		End:              time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		MinAcceptancePct: 75,
		MinCompletionPct: 95,
	}
}

// PromotionRow is one leaderboard entry. Fees is reais; the source field is
// cents and is scaled exactly once, here.
type PromotionRow struct {
	Rank     int             `json:"rank"`
	Name     string          `json:"name"`
	Fees     decimal.Decimal `json:"fees"`
	FeeCents int64           `json:"fee_cents"`
	Accepted int             `json:"accepted"`

	AcceptancePct float64 `json:"acceptance_pct"`
	CompletionPct float64 `json:"completion_pct"`
	Eligible      bool    `json:"eligible"`
}

var centsPerReal = decimal.NewFromInt(100)

// Promotion ranks people by accepted-ride fees over the campaign window,
// descending, with ties broken by fee then accepted count then name. The
// eligibility flag is informative; ineligible people keep their rank.
func Promotion(ctx context.Context, ds dataset.Dataset, cfg PromotionConfig) ([]PromotionRow, error) {
	type acc struct {
		name      string
		feeCents  int64
		offered   int
		accepted  int
		completed int
	}
	byPerson := make(map[string]*acc)
	for _, r := range ds.Rows() {
		if r.Date.Before(cfg.Start) || r.Date.After(cfg.End) || r.NameKey == "" {
			continue
		}
		a, ok := byPerson[r.NameKey]
		if !ok {
			a = &acc{name: r.PersonName}
			byPerson[r.NameKey] = a
		}
		a.feeCents += r.FeeCents
		a.offered += r.Offered
		a.accepted += r.Accepted
		a.completed += r.Completed
	}

	out := make([]PromotionRow, 0, len(byPerson))
	for _, a := range byPerson {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", dataset.ErrCancelled, err)
		}
		row := PromotionRow{
			Name:          a.name,
			Fees:          decimal.NewFromInt(a.feeCents).Div(centsPerReal),
			FeeCents:      a.feeCents,
			Accepted:      a.accepted,
			AcceptancePct: aggregate.Ratio(float64(a.accepted), float64(a.offered)),
			CompletionPct: aggregate.Ratio(float64(a.completed), float64(a.accepted)),
		}
		row.Eligible = row.AcceptancePct >= cfg.MinAcceptancePct && row.CompletionPct >= cfg.MinCompletionPct
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].FeeCents != out[j].FeeCents {
			return out[i].FeeCents > out[j].FeeCents
		}
		if out[i].Accepted != out[j].Accepted {
			return out[i].Accepted > out[j].Accepted
		}
		return out[i].Name < out[j].Name
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}
