// Package api declares the read-only HTTP surface over the analytics
// engine. Handlers parse a selection from query parameters, delegate to the
// service, and never hold state of their own.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/mbaleato/rota/internal/app"
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

// Dependencies bundles the service operations the handlers need. Using an
// interface keeps the handler layer loosely coupled to the app package.
type Dependencies interface {
	KPIs(ctx context.Context, sel filter.Selection) (aggregate.KPI, []dataset.Warning, error)
	Online(ctx context.Context, sel filter.Selection) (timecalc.Result, []dataset.Warning, error)
	PerPerson(ctx context.Context, sel filter.Selection, rawRows bool) ([]aggregate.PersonRow, []dataset.Warning, error)
	UTR(ctx context.Context, sel filter.Selection, mode utr.Mode) (float64, []dataset.Warning, error)
	UTRSeries(ctx context.Context, sel filter.Selection, grain utr.Grain, mode utr.Mode) ([]utr.Point, []dataset.Warning, error)
	Adherence(ctx context.Context, sel filter.Selection) (adherence.Result, []dataset.Warning, error)
	Classify(ctx context.Context, sel filter.Selection, month, year int) ([]classify.PersonClass, []dataset.Warning, error)
	Elite(ctx context.Context, sel filter.Selection, month time.Time) ([]ranking.EliteRow, []dataset.Warning, error)
	Promotion(ctx context.Context, sel filter.Selection) ([]ranking.PromotionRow, []dataset.Warning, error)
	ShiftBonus(ctx context.Context, sel filter.Selection) ([]ranking.BonusRow, []dataset.Warning, error)
	Absences(ctx context.Context, sel filter.Selection, today time.Time) ([]ranking.Alert, []dataset.Warning, error)
	Compare(ctx context.Context, sel filter.Selection, a, b compare.Range) (compare.ComparisonKPI, []dataset.Warning, error)
	Summarize(ctx context.Context, sel filter.Selection) (app.Summary, []dataset.Warning, error)
	Stats(ctx context.Context) app.Stats
	Now() time.Time
}

// Server wires the HTTP routes for the analytics API.
type Server struct {
	deps    Dependencies
	metrics *metrics.Manager
}

// NewServer creates an API server. metrics may be nil.
func NewServer(deps Dependencies, m *metrics.Manager) *Server {
	return &Server{deps: deps, metrics: m}
}

// Register attaches all routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(path string, h http.HandlerFunc) {
		mux.HandleFunc(path, s.middleware(h, path))
	}
	route("/healthz", s.handleHealth)
	route("/stats", s.handleStats)
	route("/kpis", s.handleKPIs)
	route("/online", s.handleOnline)
	route("/per-person", s.handlePerPerson)
	route("/utr", s.handleUTR)
	route("/utr/series", s.handleUTRSeries)
	route("/adherence", s.handleAdherence)
	route("/classify", s.handleClassify)
	route("/elite", s.handleElite)
	route("/promotion", s.handlePromotion)
	route("/bonus", s.handleBonus)
	route("/absences", s.handleAbsences)
	route("/compare", s.handleCompare)
	route("/summary", s.handleSummary)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
}
