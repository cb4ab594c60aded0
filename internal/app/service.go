package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mbaleato/rota/internal/adapters/batch"
	"github.com/mbaleato/rota/internal/adapters/repository"
	"github.com/mbaleato/rota/internal/config"
	"github.com/mbaleato/rota/internal/domain/adherence"
	"github.com/mbaleato/rota/internal/domain/aggregate"
	"github.com/mbaleato/rota/internal/domain/classify"
	"github.com/mbaleato/rota/internal/domain/compare"
	"github.com/mbaleato/rota/internal/domain/dataset"
	"github.com/mbaleato/rota/internal/domain/filter"
	"github.com/mbaleato/rota/internal/domain/ranking"
	"github.com/mbaleato/rota/internal/domain/timecalc"
	"github.com/mbaleato/rota/internal/domain/utr"
	"github.com/mbaleato/rota/pkg/logger"
	"github.com/mbaleato/rota/pkg/metrics"
)

// Service binds the engine to the active dataset snapshot and implements
// the dependency surface the HTTP API consumes. Every method narrows the
// snapshot with the request selection before computing.
type Service struct {
	engine  *Engine
	store   repository.Store
	runner  *batch.Runner
	log     logger.Logger
	metrics *metrics.Manager

	mu        sync.RWMutex
	loadWarns []dataset.Warning
}

// ServiceOption applies a configuration option to the Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the service logger.
func WithServiceLogger(l logger.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithServiceMetrics attaches a metrics manager.
func WithServiceMetrics(m *metrics.Manager) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithRunner overrides the batch runner used by Summary.
func WithRunner(r *batch.Runner) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.runner = r
		}
	}
}

// NewService wires a Service around an engine and a snapshot store.
func NewService(engine *Engine, store repository.Store, opts ...ServiceOption) *Service {
	s := &Service{
		engine: engine,
		store:  store,
		runner: batch.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load canonicalizes raw rows and installs them as the active snapshot.
// Canonicalization warnings are retained for the stats surface.
func (s *Service) Load(ctx context.Context, raw []dataset.RawRow) error {
	ds, warns, err := s.engine.Canonicalize(ctx, raw)
	if err != nil {
		return fmt.Errorf("canonicalize: %w", err)
	}
	s.store.Swap(ds)
	s.mu.Lock()
	s.loadWarns = warns
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SetDataset(ds.Len(), s.store.LoadedAt())
	}
	if s.log != nil {
		s.log.Info(ctx, "dataset snapshot installed",
			logger.Int("rows", ds.Len()), logger.Int("warnings", len(warns)))
	}
	return nil
}

// Warnings returns the canonicalization warnings of the active snapshot.
func (s *Service) Warnings() []dataset.Warning {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadWarns
}

// Now exposes the engine clock so transport layers derive default reference
// dates from the same source the engine uses.
func (s *Service) Now() time.Time { return s.engine.Now() }

// slice narrows the active snapshot with the request selection.
func (s *Service) slice(ctx context.Context, sel filter.Selection) (dataset.Dataset, []dataset.Warning, error) {
	return s.engine.Filter(ctx, s.store.Current(), sel)
}

// KPIs computes the roll-up of the selected slice.
func (s *Service) KPIs(ctx context.Context, sel filter.Selection) (aggregate.KPI, []dataset.Warning, error) {
	ds, warns, err := s.slice(ctx, sel)
	if err != nil {
		return aggregate.KPI{}, nil, err
	}
	k, err := s.engine.KPIs(ctx, ds)
	return k, warns, err
}

// Online computes the tempo-online percentage of the selected slice.
func (s *Service) Online(ctx context.Context, sel filter.Selection) (timecalc.Result, []dataset.Warning, error) {
	ds, warns, err := s.slice(ctx, sel)
	if err != nil {
		return timecalc.Result{}, nil, err
	}
	res, err := s.engine.OnlinePct(ctx, ds)
	return res, warns, err
}

// PerPerson computes the per-person table of the selected slice.
func (s *Service) PerPerson(ctx context.Context, sel filter.Selection, rawRows bool) ([]aggregate.PersonRow, []dataset.Warning, error) {
	ds, warns, err := s.slice(ctx, sel)
	if err != nil {
		return nil, nil, err
	}
	var opts []aggregate.Option
	if rawRows {
		opts = append(opts, aggregate.WithRawRowCounts())
	}
	rows, err := s.engine.PerPerson(ctx, ds, opts...)
	return rows, warns, err
}

// UTR computes the utilization ratio of the selected slice.
func (s *Service) UTR(ctx context.Context, sel filter.Selection, mode utr.Mode) (float64, []dataset.Warning, error) {
	ds, warns, err := s.slice(ctx, sel)
	if err != nil {
		return 0, nil, err
	}
	v, err := s.engine.UTR(ctx, ds, mode)
	return v, warns, err
}

// UTRSeries computes the utilization time series of the selected slice.
func (s *Service) UTRSeries(ctx context.Context, sel filter.Selection, grain utr.Grain, mode utr.Mode) ([]utr.Point, []dataset.Warning, error) {
	ds, warns, err := s.slice(ctx, sel)
	if err != nil {
		return nil, nil, err
	}
	pts, err := s.engine.UTRSeries(ctx, ds, grain, mode)
	return pts, warns, err
}

// Adherence computes the adherence table of the selected slice.
func (s *Service) Adherence(ctx context.Context, sel filter.Selection) (adherence.Result, []dataset.Warning, error) {
	ds, warns, err := s.slice(ctx, sel)
	if err != nil {
		return adherence.Result{}, nil, err
	}
	res, err := s.engine.Adherence(ctx, ds)
	return res, warns, err
}

// Classify assigns categories over the selected slice.
func (s *Service) Classify(ctx context.Context, sel filter.Selection, month, year int) ([]classify.PersonClass, []dataset.Warning, error) {
	ds, warns, err := s.slice(ctx, sel)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.engine.Classify(ctx, ds, month, year)
	return rows, warns, err
}

// Elite ranks the given month of the selected slice.
func (s *Service) Elite(ctx context.Context, sel filter.Selection, month time.Time) ([]ranking.EliteRow, []dataset.Warning, error) {
	ds, warns, err := s.slice(ctx, sel)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.engine.Elite(ctx, ds, month)
	return rows, warns, err
}

// Promotion ranks the campaign window of the selected slice.
func (s *Service) Promotion(ctx context.Context, sel filter.Selection) ([]ranking.PromotionRow, []dataset.Warning, error) {
	ds, warns, err := s.slice(ctx, sel)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.engine.Promotion(ctx, ds)
	return rows, warns, err
}

// ShiftBonus judges bonus eligibility over the selected slice.
func (s *Service) ShiftBonus(ctx context.Context, sel filter.Selection) ([]ranking.BonusRow, []dataset.Warning, error) {
	ds, warns, err := s.slice(ctx, sel)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.engine.ShiftBonus(ctx, ds)
	return rows, warns, err
}

// Absences flags consecutive-absence streaks over the selected slice.
func (s *Service) Absences(ctx context.Context, sel filter.Selection, today time.Time) ([]ranking.Alert, []dataset.Warning, error) {
	ds, warns, err := s.slice(ctx, sel)
	if err != nil {
		return nil, nil, err
	}
	alerts, err := s.engine.AbsenceAlerts(ctx, ds, today)
	return alerts, warns, err
}

// Compare diffs two ranges of the selected slice.
func (s *Service) Compare(ctx context.Context, sel filter.Selection, a, b compare.Range) (compare.ComparisonKPI, []dataset.Warning, error) {
	ds, warns, err := s.slice(ctx, sel)
	if err != nil {
		return compare.ComparisonKPI{}, nil, err
	}
	res, err := s.engine.Compare(ctx, ds, a, b)
	return res, warns, err
}

// Summary bundles the headline numbers of a slice. The independent
// computations fan out over the batch runner; the snapshot is immutable so
// they share it without locking.
type Summary struct {
	KPI          aggregate.KPI   `json:"kpi"`
	Online       timecalc.Result `json:"online"`
	UTRAbsolute  float64         `json:"utr_absolute"`
	UTRMeans     float64         `json:"utr_means"`
	AdherencePct float64         `json:"adherence_pct"`
}

// Summarize computes a Summary for the selected slice.
func (s *Service) Summarize(ctx context.Context, sel filter.Selection) (Summary, []dataset.Warning, error) {
	ds, warns, err := s.slice(ctx, sel)
	if err != nil {
		return Summary{}, nil, err
	}

	var (
		out Summary
		adh adherence.Result
	)
	tasks := []batch.Task{
		func(ctx context.Context) error {
			var err error
			out.KPI, err = s.engine.KPIs(ctx, ds)
			return err
		},
		func(ctx context.Context) error {
			var err error
			out.Online, err = s.engine.OnlinePct(ctx, ds)
			return err
		},
		func(ctx context.Context) error {
			var err error
			out.UTRAbsolute, err = s.engine.UTR(ctx, ds, utr.Absolute)
			return err
		},
		func(ctx context.Context) error {
			var err error
			out.UTRMeans, err = s.engine.UTR(ctx, ds, utr.Means)
			return err
		},
		func(ctx context.Context) error {
			var err error
			adh, err = s.engine.Adherence(ctx, ds)
			return err
		},
	}
	if err := s.runner.Run(ctx, tasks); err != nil {
		return Summary{}, nil, err
	}
	out.AdherencePct = adh.AggregateRatePct
	return out, warns, nil
}

// Stats describes the active snapshot for the stats surface.
type Stats struct {
	Rows     int       `json:"rows"`
	LoadedAt time.Time `json:"loaded_at"`
	Warnings int       `json:"warnings"`
}

// Stats reports the active snapshot shape.
func (s *Service) Stats(_ context.Context) Stats {
	return Stats{
		Rows:     s.store.Current().Len(),
		LoadedAt: s.store.LoadedAt(),
		Warnings: len(s.Warnings()),
	}
}

// PolicyFromConfig overlays configured knobs on the default policy.
func PolicyFromConfig(cfg *config.Config) (Policy, error) {
	pol := DefaultPolicy()
	if cfg.AreaScope != "" {
		pol.AreaScope = cfg.AreaScope
	}
	if cfg.MinPresenceSeconds > 0 {
		pol.MinPresenceSeconds = cfg.MinPresenceSeconds
	}
	if cfg.EliteTarget > 0 {
		pol.EliteTarget = cfg.EliteTarget
	}
	if cfg.BonusMinAcceptance > 0 {
		pol.BonusMinAcceptancePct = cfg.BonusMinAcceptance
	}
	if cfg.HourlyBonusValue != "" {
		v, err := decimal.NewFromString(cfg.HourlyBonusValue)
		if err != nil {
			return Policy{}, fmt.Errorf("hourly_bonus_value: %w", err)
		}
		pol.HourlyBonusValue = v
	}
	if cfg.PromotionStart != "" {
		t, err := time.Parse("2006-01-02", cfg.PromotionStart)
		if err != nil {
			return Policy{}, fmt.Errorf("promotion_start: %w", err)
		}
		pol.Promotion.Start = t
	}
	if cfg.PromotionEnd != "" {
		t, err := time.Parse("2006-01-02", cfg.PromotionEnd)
		if err != nil {
			return Policy{}, fmt.Errorf("promotion_end: %w", err)
		}
		pol.Promotion.End = t
	}
	if cfg.PromotionMinAccept > 0 {
		pol.Promotion.MinAcceptancePct = cfg.PromotionMinAccept
	}
	if cfg.PromotionMinComplete > 0 {
		pol.Promotion.MinCompletionPct = cfg.PromotionMinComplete
	}
	if cfg.AbsenceLookbackDays > 0 {
		pol.AbsenceLookbackDays = cfg.AbsenceLookbackDays
	}
	if cfg.AbsenceMinStreak > 0 {
		pol.AbsenceMinStreak = cfg.AbsenceMinStreak
	}
	pol.ProjectionEnabled = cfg.ProjectionEnabled
	return pol, nil
}
