package app

import (
	"context"
	"fmt"
	"time"

	"github.com/mbaleato/rota/internal/domain/adherence"
	"github.com/mbaleato/rota/internal/domain/aggregate"
	"github.com/mbaleato/rota/internal/domain/classify"
	"github.com/mbaleato/rota/internal/domain/compare"
	"github.com/mbaleato/rota/internal/domain/dataset"
	"github.com/mbaleato/rota/internal/domain/filter"
	"github.com/mbaleato/rota/internal/domain/ranking"
	"github.com/mbaleato/rota/internal/domain/timecalc"
	"github.com/mbaleato/rota/internal/domain/utr"
	"github.com/mbaleato/rota/pkg/metrics"
)

// Engine is the pure functional surface of the analytics core. All methods
// take the dataset by value-view and return fresh values; independent
// requests may run concurrently against the same dataset.
type Engine struct {
	policy  Policy
	metrics *metrics.Manager
	now     func() time.Time
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithPolicy overrides the default policy.
func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithMetrics attaches a metrics manager; nil disables instrumentation.
func WithMetrics(m *metrics.Manager) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the time source, for tests and for the projection
// and absence operations that depend on "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine constructs an Engine with the default policy.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{policy: DefaultPolicy(), now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the policy carried by this engine.
func (e *Engine) Policy() Policy { return e.policy }

// Now returns the engine's current time, honoring WithClock.
func (e *Engine) Now() time.Time { return e.now() }

// track times one engine operation; the returned func records it when
// metrics are attached.
func (e *Engine) track(op string) func(error) {
	start := time.Now()
	return func(err error) {
		if e.metrics != nil {
			e.metrics.ObserveEngineOp(op, time.Since(start), err == nil)
		}
	}
}

// Canonicalize normalizes raw rows to the typed schema.
func (e *Engine) Canonicalize(ctx context.Context, raw []dataset.RawRow) (ds dataset.Dataset, warns []dataset.Warning, err error) {
	done := e.track("canonicalize")
	defer func() { done(err) }()
	if err = ctx.Err(); err != nil {
		return dataset.Dataset{}, nil, fmt.Errorf("%w: %v", dataset.ErrCancelled, err)
	}
	return dataset.Canonicalize(raw)
}

// Filter narrows the dataset. The policy area scope applies when the
// selection does not name one.
func (e *Engine) Filter(ctx context.Context, ds dataset.Dataset, sel filter.Selection) (out dataset.Dataset, warns []dataset.Warning, err error) {
	done := e.track("filter")
	defer func() { done(err) }()
	if err = ctx.Err(); err != nil {
		return dataset.Dataset{}, nil, fmt.Errorf("%w: %v", dataset.ErrCancelled, err)
	}
	if sel.AreaScope == "" {
		sel.AreaScope = e.policy.AreaScope
	}
	return filter.Apply(ds, sel)
}

// OnlinePct computes the tempo-online percentage with band diagnostics.
func (e *Engine) OnlinePct(ctx context.Context, ds dataset.Dataset) (res timecalc.Result, err error) {
	done := e.track("online_pct")
	defer func() { done(err) }()
	if err = ctx.Err(); err != nil {
		return timecalc.Result{}, fmt.Errorf("%w: %v", dataset.ErrCancelled, err)
	}
	return timecalc.Online(ds), nil
}

// KPIs computes the composed roll-up of the slice.
func (e *Engine) KPIs(ctx context.Context, ds dataset.Dataset) (k aggregate.KPI, err error) {
	done := e.track("kpis")
	defer func() { done(err) }()
	if err = ctx.Err(); err != nil {
		return aggregate.KPI{}, fmt.Errorf("%w: %v", dataset.ErrCancelled, err)
	}
	return aggregate.KPIs(ds), nil
}

// PerPerson groups the slice by person.
func (e *Engine) PerPerson(ctx context.Context, ds dataset.Dataset, opts ...aggregate.Option) (rows []aggregate.PersonRow, err error) {
	done := e.track("per_person")
	defer func() { done(err) }()
	return aggregate.PerPerson(ctx, ds, opts...)
}

// UTR computes the utilization ratio under the requested definition.
func (e *Engine) UTR(ctx context.Context, ds dataset.Dataset, mode utr.Mode) (v float64, err error) {
	done := e.track("utr")
	defer func() { done(err) }()
	if err = ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", dataset.ErrCancelled, err)
	}
	return utr.Value(ds, mode), nil
}

// UTRSeries buckets the slice by grain and computes per-bucket UTR.
func (e *Engine) UTRSeries(ctx context.Context, ds dataset.Dataset, grain utr.Grain, mode utr.Mode) (pts []utr.Point, err error) {
	done := e.track("utr_series")
	defer func() { done(err) }()
	return utr.Series(ctx, ds, grain, mode)
}

// Adherence builds the capacity adherence table.
func (e *Engine) Adherence(ctx context.Context, ds dataset.Dataset) (res adherence.Result, err error) {
	done := e.track("adherence")
	defer func() { done(err) }()
	return adherence.Compute(ctx, ds, e.policy.MinPresenceSeconds)
}

// Classify assigns categories per person-month. month and year may be zero.
func (e *Engine) Classify(ctx context.Context, ds dataset.Dataset, month, year int) (rows []classify.PersonClass, err error) {
	done := e.track("classify")
	defer func() { done(err) }()
	var opts []classify.Option
	if e.policy.ProjectionEnabled {
		opts = append(opts, classify.WithProjection(e.now()))
	}
	return classify.Classify(ctx, ds, month, year, e.policy.Classifier, opts...)
}

// Elite ranks a month against the badge target.
func (e *Engine) Elite(ctx context.Context, ds dataset.Dataset, month time.Time) (rows []ranking.EliteRow, err error) {
	done := e.track("elite")
	defer func() { done(err) }()
	return ranking.Elite(ctx, ds, month, e.policy.EliteTarget)
}

// Promotion ranks the campaign window by accepted-ride fees.
func (e *Engine) Promotion(ctx context.Context, ds dataset.Dataset) (rows []ranking.PromotionRow, err error) {
	done := e.track("promotion")
	defer func() { done(err) }()
	return ranking.Promotion(ctx, ds, e.policy.Promotion)
}

// ShiftBonus judges per-shift bonus eligibility and payouts.
func (e *Engine) ShiftBonus(ctx context.Context, ds dataset.Dataset) (rows []ranking.BonusRow, err error) {
	done := e.track("shift_bonus")
	defer func() { done(err) }()
	return ranking.ShiftBonus(ctx, ds, e.policy.BonusMinAcceptancePct, e.policy.HourlyBonusValue)
}

// AbsenceAlerts flags consecutive-absence streaks ending yesterday.
func (e *Engine) AbsenceAlerts(ctx context.Context, ds dataset.Dataset, today time.Time) (alerts []ranking.Alert, err error) {
	done := e.track("absence_alerts")
	defer func() { done(err) }()
	if today.IsZero() {
		today = e.now()
	}
	return ranking.AbsenceAlerts(ctx, ds, today, e.policy.AbsenceLookbackDays, e.policy.AbsenceMinStreak)
}

// Compare narrows the dataset to two ranges and diffs their KPIs.
func (e *Engine) Compare(ctx context.Context, ds dataset.Dataset, a, b compare.Range) (res compare.ComparisonKPI, err error) {
	done := e.track("compare")
	defer func() { done(err) }()
	sliceA, _, err := e.Filter(ctx, ds, a.Selection())
	if err != nil {
		return compare.ComparisonKPI{}, err
	}
	sliceB, _, err := e.Filter(ctx, ds, b.Selection())
	if err != nil {
		return compare.ComparisonKPI{}, err
	}
	return compare.KPIs(sliceA, sliceB), nil
}
