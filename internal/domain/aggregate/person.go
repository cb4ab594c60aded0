package aggregate

import (
	"context"
	"fmt"
	"sort"

	"github.com/mbaleato/rota/internal/domain/dataset"
)

// Option applies a configuration option to PerPerson.
type Option func(*personConfig)

type personConfig struct {
	rawRowCounts bool
}

// WithRawRowCounts makes Shifts count every row instead of valid shifts
// only. Callers that need the legacy all-rows semantics must ask for it
// explicitly.
func WithRawRowCounts() Option {
	return func(c *personConfig) { c.rawRowCounts = true }
}

// PersonRow is the per-person roll-up.
type PersonRow struct {
	Name string `json:"name"`
	UUID string `json:"uuid,omitempty"`

	Shifts  int `json:"shifts"` // valid shifts per the seconds rule
	RawRows int `json:"raw_rows"`

	Offered    int     `json:"offered"`
	Accepted   int     `json:"accepted"`
	Rejected   int     `json:"rejected"`
	Completed  int     `json:"completed"`
	AbsSeconds float64 `json:"abs_seconds"`
	Hours      float64 `json:"hours"`

	AcceptancePct float64 `json:"acceptance_pct"`
	RejectionPct  float64 `json:"rejection_pct"`
	CompletionPct float64 `json:"completion_pct"`
}

// PerPerson groups the slice by person name. The deadline is checked
// between group-level steps; expiry fails with ErrCancelled.
func PerPerson(ctx context.Context, ds dataset.Dataset, opts ...Option) ([]PersonRow, error) {
	var cfg personConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	byPerson := make(map[string]*PersonRow)
	for _, r := range ds.Rows() {
		key := personKey(r)
		if key == "" {
			continue
		}
		p, ok := byPerson[key]
		if !ok {
			p = &PersonRow{Name: r.PersonName, UUID: r.PersonUUID}
			byPerson[key] = p
		}
		if p.UUID == "" && r.PersonUUID != "" {
			p.UUID = r.PersonUUID
		}
		p.RawRows++
		if r.ValidShift() {
			p.Shifts++
		}
		p.Offered += r.Offered
		p.Accepted += r.Accepted
		p.Rejected += r.Rejected
		p.Completed += r.Completed
		p.AbsSeconds += r.AbsSeconds
	}

	out := make([]PersonRow, 0, len(byPerson))
	for _, p := range byPerson {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", dataset.ErrCancelled, err)
		}
		if cfg.rawRowCounts {
			p.Shifts = p.RawRows
		}
		p.Hours = p.AbsSeconds / 3600
		p.AcceptancePct = Ratio(float64(p.Accepted), float64(p.Offered))
		p.RejectionPct = Ratio(float64(p.Rejected), float64(p.Offered))
		p.CompletionPct = Ratio(float64(p.Completed), float64(p.Accepted))
		out = append(out, *p)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Shifts != out[j].Shifts {
			return out[i].Shifts > out[j].Shifts
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
