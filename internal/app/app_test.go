package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mbaleato/rota/internal/adapters/repository"
	"github.com/mbaleato/rota/internal/app"
	"github.com/mbaleato/rota/internal/config"
	"github.com/mbaleato/rota/internal/domain/compare"
	"github.com/mbaleato/rota/internal/domain/dataset"
	"github.com/mbaleato/rota/internal/domain/filter"
	"github.com/mbaleato/rota/internal/domain/utr"
)

func rawRow(date, person, sub string, offered, accepted string, raw, scaled string) dataset.RawRow {
	return dataset.RawRow{
		dataset.ColData:          date,
		dataset.ColPeriodo:       "almoco",
		dataset.ColPessoa:        person,
		dataset.ColPraca:         "SAO PAULO",
		dataset.ColSubPraca:      sub,
		dataset.ColOfertadas:     offered,
		dataset.ColAceitas:       accepted,
		dataset.ColTempoAbsoluto: raw,
		dataset.ColTempoEscalado: scaled,
	}
}

func loadedService(t *testing.T) *app.Service {
	t.Helper()
	svc := app.NewService(app.NewEngine(), repository.New())
	raw := []dataset.RawRow{
		rawRow("2026-01-10", "Ana", "centro", "10", "8", "7200", "0.9"),
		rawRow("2026-01-10", "Bruno", "centro", "10", "6", "3600", "0.5"),
		rawRow("2026-01-11", "Ana", "zona sul", "5", "5", "3600", "0.7"),
	}
	if err := svc.Load(context.Background(), raw); err != nil {
		t.Fatalf("load: %v", err)
	}
	return svc
}

func TestEngine(t *testing.T) {
	ctx := context.Background()

	Convey("Given an engine with the default policy", t, func() {
		e := app.NewEngine()

		Convey("When canonicalizing raw rows", func() {
			ds, warns, err := e.Canonicalize(ctx, []dataset.RawRow{rawRow("2026-01-10", "Ana", "centro", "10", "8", "7200", "0.9")})

			Convey("Then the typed dataset comes back clean", func() {
				So(err, ShouldBeNil)
				So(warns, ShouldBeEmpty)
				So(ds.Len(), ShouldEqual, 1)
			})
		})

		Convey("When filtering without an explicit area scope", func() {
			ds, _, err := e.Canonicalize(ctx, []dataset.RawRow{
				rawRow("2026-01-10", "Ana", "", "10", "8", "7200", "0.9"),
			})
			So(err, ShouldBeNil)
			out, _, err := e.Filter(ctx, ds, filter.Selection{SubAreas: []string{filter.Livre}})

			Convey("Then the policy scope backs the LIVRE match", func() {
				So(err, ShouldBeNil)
				So(out.Len(), ShouldEqual, 1)
			})
		})

		Convey("When the deadline has expired", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, _, err := e.Canonicalize(cancelled, nil)

			Convey("Then the cancelled kind surfaces", func() {
				So(errors.Is(err, dataset.ErrCancelled), ShouldBeTrue)
			})
		})
	})
}

func TestService(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with a loaded snapshot", t, func() {
		svc := loadedService(t)

		Convey("Then stats describe the snapshot", func() {
			st := svc.Stats(ctx)
			So(st.Rows, ShouldEqual, 3)
			So(st.LoadedAt.IsZero(), ShouldBeFalse)
		})

		Convey("When computing KPIs over everything", func() {
			k, warns, err := svc.KPIs(ctx, filter.Selection{})

			Convey("Then the roll-up covers all rows", func() {
				So(err, ShouldBeNil)
				So(warns, ShouldBeEmpty)
				So(k.Offered, ShouldEqual, 25)
				So(k.Accepted, ShouldEqual, 19)
				So(k.ActivePeople, ShouldEqual, 2)
			})
		})

		Convey("When narrowing to one subarea", func() {
			k, _, err := svc.KPIs(ctx, filter.Selection{SubAreas: []string{"CENTRO"}})

			Convey("Then the match is case-insensitive", func() {
				So(err, ShouldBeNil)
				So(k.Offered, ShouldEqual, 20)
			})
		})

		Convey("When naming an unknown subarea strictly", func() {
			_, _, err := svc.KPIs(ctx, filter.Selection{SubAreas: []string{"nowhere"}, Strict: true})

			Convey("Then the invalid-selection kind surfaces", func() {
				So(errors.Is(err, dataset.ErrInvalidSelection), ShouldBeTrue)
			})
		})

		Convey("When computing the utilization ratio", func() {
			v, _, err := svc.UTR(ctx, filter.Selection{}, utr.Absolute)

			Convey("Then it divides offered by hours", func() {
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 6.25) // 25 offered over 4h
			})
		})

		Convey("When summarizing", func() {
			sum, _, err := svc.Summarize(ctx, filter.Selection{})

			Convey("Then the fan-out agrees with the single calls", func() {
				So(err, ShouldBeNil)
				So(sum.KPI.Offered, ShouldEqual, 25)
				So(sum.UTRAbsolute, ShouldEqual, 6.25)
				So(sum.Online.Pct, ShouldEqual, 70.0) // mean of 0.9, 0.5, 0.7
				So(sum.AdherencePct, ShouldEqual, 100.0)
			})
		})

		Convey("When comparing two single days", func() {
			day := time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC)
			a := compare.Range{From: day, To: day}
			b := compare.Range{From: day.AddDate(0, 0, -1), To: day.AddDate(0, 0, -1)}
			res, _, err := svc.Compare(ctx, filter.Selection{}, a, b)

			Convey("Then both sides and the deltas line up", func() {
				So(err, ShouldBeNil)
				So(res.A.Offered, ShouldEqual, 5)
				So(res.B.Offered, ShouldEqual, 20)
				So(*res.DeltaOfferedPct, ShouldEqual, -75.0)
			})
		})
	})

	Convey("Given a service before the first load", t, func() {
		svc := app.NewService(app.NewEngine(), repository.New())

		Convey("Then requests see an empty snapshot, not a failure", func() {
			k, _, err := svc.KPIs(ctx, filter.Selection{})
			So(err, ShouldBeNil)
			So(k.Offered, ShouldEqual, 0)
		})
	})
}

func TestPolicyFromConfig(t *testing.T) {
	Convey("Given a config overriding a few knobs", t, func() {
		cfg := config.New()
		cfg.AreaScope = "RIO DE JANEIRO"
		cfg.EliteTarget = 250
		cfg.HourlyBonusValue = "3.10"
		cfg.PromotionStart = "2026-02-01"

		pol, err := app.PolicyFromConfig(cfg)
		So(err, ShouldBeNil)

		Convey("Then overridden knobs change and the rest keep defaults", func() {
			So(pol.AreaScope, ShouldEqual, "RIO DE JANEIRO")
			So(pol.EliteTarget, ShouldEqual, 250)
			So(pol.HourlyBonusValue.String(), ShouldEqual, "3.1")
			So(pol.Promotion.Start, ShouldEqual, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
			So(pol.Promotion.MinAcceptancePct, ShouldEqual, 75.0)
			So(pol.MinPresenceSeconds, ShouldEqual, 600.0)
		})
	})

	Convey("Given a malformed bonus value", t, func() {
		cfg := config.New()
		cfg.HourlyBonusValue = "two fifteen"
		_, err := app.PolicyFromConfig(cfg)

		Convey("Then the overlay fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
