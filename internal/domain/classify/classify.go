// Package classify assigns delivery people to engagement categories by
// multi-criterion thresholds over monthly supply hours, acceptance, and
// completion. Tiers are evaluated strictly in order: Premium, Conectado,
// Casual, then Flutuante as the catch-all.
package classify

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mbaleato/rota/internal/domain/aggregate"
	"github.com/mbaleato/rota/internal/domain/dataset"
)

// Category is the engagement tier of a person for a month.
type Category string

const (
	Premium   Category = "Premium"
	Conectado Category = "Conectado"
	Casual    Category = "Casual"
	Flutuante Category = "Flutuante"
)

// Thresholds parameterize the tier gates so callers and tests can vary them
// without code changes.
type Thresholds struct {
	PremiumSH         float64
	PremiumAcceptance float64
	PremiumCompletion float64

	ConectadoSH         float64
	ConectadoAcceptance float64
	ConectadoCompletion float64

	CasualSH         float64
	CasualAcceptance float64
}

// DefaultThresholds returns the operational tier gates.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PremiumSH: 120, PremiumAcceptance: 80, PremiumCompletion: 95,
		ConectadoSH: 60, ConectadoAcceptance: 70, ConectadoCompletion: 90,
		CasualSH: 20, CasualAcceptance: 60,
	}
}

// Option applies a configuration option to Classify.
type Option func(*config)

type config struct {
	projectTo time.Time // zero disables projection
}

// WithProjection enables linear partial-month SH projection for the month
// containing today: projected = current * days_in_month / days_elapsed.
// The formula is naive by admission and only applies to the in-progress
// month.
func WithProjection(today time.Time) Option {
	return func(c *config) { c.projectTo = dataset.DateOnly(today) }
}

// PersonClass is one classified person-month.
type PersonClass struct {
	Name   string    `json:"name"`
	MesAno time.Time `json:"mes_ano"`

	SH            float64 `json:"sh"` // supply hours
	AcceptancePct float64 `json:"acceptance_pct"`
	CompletionPct float64 `json:"completion_pct"`
	ValidShifts   int     `json:"valid_shifts"`

	Category Category `json:"category"`

	// CriteriaMet counts how many of the three Premium-tier dimensions the
	// person clears, for traceability.
	CriteriaMet int `json:"criteria_met"`

	// ProjectedSH is the linear full-month estimate; nil unless projection
	// was requested and the month is in progress.
	ProjectedSH *float64 `json:"projected_sh,omitempty"`
}

// Classify buckets the slice per (person, month) and assigns categories.
// month and year narrow the evaluation; zero means the whole history. The
// deadline is checked between person-month groups.
func Classify(ctx context.Context, ds dataset.Dataset, month, year int, th Thresholds, opts ...Option) ([]PersonClass, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	type acc struct {
		name        string
		mesAno      time.Time
		absSeconds  float64
		offered     int
		accepted    int
		completed   int
		validShifts int
	}
	byKey := make(map[string]*acc)
	for _, r := range ds.Rows() {
		if month != 0 && r.Mes() != month {
			continue
		}
		if year != 0 && r.Ano() != year {
			continue
		}
		if r.NameKey == "" {
			continue
		}
		key := r.NameKey + "|" + r.MesAno.Format("2006-01")
		a, ok := byKey[key]
		if !ok {
			a = &acc{name: r.PersonName, mesAno: r.MesAno}
			byKey[key] = a
		}
		a.absSeconds += r.AbsSeconds
		a.offered += r.Offered
		a.accepted += r.Accepted
		a.completed += r.Completed
		if r.ValidShift() {
			a.validShifts++
		}
	}

	out := make([]PersonClass, 0, len(byKey))
	for _, a := range byKey {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", dataset.ErrCancelled, err)
		}
		pc := PersonClass{
			Name:          a.name,
			MesAno:        a.mesAno,
			SH:            aggregate.Round2(a.absSeconds / 3600),
			AcceptancePct: aggregate.Ratio(float64(a.accepted), float64(a.offered)),
			CompletionPct: aggregate.Ratio(float64(a.completed), float64(a.accepted)),
			ValidShifts:   a.validShifts,
		}
		pc.Category = assign(pc, th)
		pc.CriteriaMet = criteriaMet(pc, th)
		if p, ok := projectSH(pc, cfg.projectTo); ok {
			pc.ProjectedSH = &p
		}
		out = append(out, pc)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].MesAno.Equal(out[j].MesAno) {
			return out[i].MesAno.Before(out[j].MesAno)
		}
		if out[i].SH != out[j].SH {
			return out[i].SH > out[j].SH
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// assign walks the tiers in strict order; the first tier whose every gate
// passes wins.
func assign(p PersonClass, th Thresholds) Category {
	switch {
	case p.SH >= th.PremiumSH && p.AcceptancePct >= th.PremiumAcceptance && p.CompletionPct >= th.PremiumCompletion:
		return Premium
	case p.SH >= th.ConectadoSH && p.AcceptancePct >= th.ConectadoAcceptance && p.CompletionPct >= th.ConectadoCompletion:
		return Conectado
	case p.SH >= th.CasualSH && p.AcceptancePct >= th.CasualAcceptance:
		return Casual
	default:
		return Flutuante
	}
}

// criteriaMet counts the Premium-tier dimensions cleared, 0 through 3.
func criteriaMet(p PersonClass, th Thresholds) int {
	n := 0
	if p.SH >= th.PremiumSH {
		n++
	}
	if p.AcceptancePct >= th.PremiumAcceptance {
		n++
	}
	if p.CompletionPct >= th.PremiumCompletion {
		n++
	}
	return n
}

// projectSH estimates the full-month SH for the month containing today.
func projectSH(p PersonClass, today time.Time) (float64, bool) {
	if today.IsZero() || !dataset.MonthStart(today).Equal(p.MesAno) {
		return 0, false
	}
	elapsed := today.Day()
	if elapsed == 0 {
		return 0, false
	}
	daysInMonth := p.MesAno.AddDate(0, 1, -1).Day()
	return aggregate.Round2(p.SH * float64(daysInMonth) / float64(elapsed)), true
}
