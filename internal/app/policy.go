// Package app wires the pure analytics engine: a Policy record carried with
// every request plus a facade over the domain packages. The engine performs
// no I/O, keeps no cross-request state, and never mutates a dataset.
package app

import (
	"github.com/shopspring/decimal"

	"github.com/mbaleato/rota/internal/domain/adherence"
	"github.com/mbaleato/rota/internal/domain/classify"
	"github.com/mbaleato/rota/internal/domain/filter"
	"github.com/mbaleato/rota/internal/domain/ranking"
)

// Policy bundles every operational threshold so tests and deployments can
// vary them without code changes.
type Policy struct {
	// AreaScope is the main area LIVRE subarea selections resolve against.
	AreaScope string

	// MinPresenceSeconds gates adherence eligibility per person per group.
	MinPresenceSeconds float64

	// EliteTarget is the monthly accepted-and-completed badge target.
	EliteTarget int

	// BonusMinAcceptancePct and HourlyBonusValue parameterize the
	// per-shift bonus.
	BonusMinAcceptancePct float64
	HourlyBonusValue      decimal.Decimal

	Promotion  ranking.PromotionConfig
	Classifier classify.Thresholds

	AbsenceLookbackDays int
	AbsenceMinStreak    int

	// ProjectionEnabled turns on the linear partial-month SH projection.
	ProjectionEnabled bool
}

// DefaultPolicy returns the operational defaults.
func DefaultPolicy() Policy {
	return Policy{
		AreaScope:             filter.DefaultAreaScope,
		MinPresenceSeconds:    adherence.DefaultMinPresenceSeconds,
		EliteTarget:           ranking.DefaultEliteTarget,
		BonusMinAcceptancePct: ranking.DefaultBonusMinAcceptancePct,
		HourlyBonusValue:      ranking.DefaultHourlyBonusValue,
		Promotion:             ranking.DefaultPromotionConfig(),
		Classifier:            classify.DefaultThresholds(),
		AbsenceLookbackDays:   ranking.DefaultAbsenceLookbackDays,
		AbsenceMinStreak:      ranking.DefaultAbsenceMinStreak,
	}
}
