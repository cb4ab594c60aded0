package aggregate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mbaleato/rota/internal/domain/aggregate"
	"github.com/mbaleato/rota/internal/domain/dataset"
)

func row(name string, offered, accepted, rejected, completed int, rawSeconds float64) dataset.Row {
	return dataset.Row{
		Date:          time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		PersonName:    name,
		NameKey:       dataset.FoldKey(name),
		Offered:       offered,
		Accepted:      accepted,
		Rejected:      rejected,
		Completed:     completed,
		AbsSecondsRaw: rawSeconds,
		AbsSeconds:    max(rawSeconds, 0),
	}
}

func TestKPIs(t *testing.T) {
	Convey("Given a mixed slice", t, func() {
		ds := dataset.FromRows([]dataset.Row{
			row("Ana", 10, 7, 3, 6, 3600),
			row("Bruno", 10, 7, 3, 6, 7200),
		})
		k := aggregate.KPIs(ds)

		Convey("Then sums and ratios compose", func() {
			So(k.Offered, ShouldEqual, 20)
			So(k.Accepted, ShouldEqual, 14)
			So(k.Hours, ShouldEqual, 3.0)
			So(k.AcceptancePct, ShouldEqual, 70.0)
			So(k.RejectionPct, ShouldEqual, 30.0)
			So(k.CompletionPct, ShouldEqual, 85.71)
			So(k.ActivePeople, ShouldEqual, 2)
		})

		Convey("Then percentages stay within bounds", func() {
			So(k.AcceptancePct, ShouldBeLessThanOrEqualTo, 100.0)
			So(k.RejectionPct, ShouldBeLessThanOrEqualTo, 100.0)
		})
	})

	Convey("Given counters that do not conserve", t, func() {
		// Split exports can report more accepted rides than offered ones;
		// nothing upstream asserts offered >= accepted + rejected.
		k := aggregate.KPIs(dataset.FromRows([]dataset.Row{row("Ana", 10, 20, 15, 25, 3600)}))

		Convey("Then derived percentages are clamped to 100", func() {
			So(k.AcceptancePct, ShouldEqual, 100.0)
			So(k.RejectionPct, ShouldEqual, 100.0)
			So(k.CompletionPct, ShouldEqual, 100.0)
		})

		Convey("And the raw counters are untouched", func() {
			So(k.Offered, ShouldEqual, 10)
			So(k.Accepted, ShouldEqual, 20)
		})
	})

	Convey("Given a slice with zero offered rides", t, func() {
		k := aggregate.KPIs(dataset.FromRows([]dataset.Row{row("Ana", 0, 0, 0, 0, 3600)}))

		Convey("Then ratios over the zero denominator are zero", func() {
			So(k.AcceptancePct, ShouldEqual, 0.0)
			So(k.RejectionPct, ShouldEqual, 0.0)
		})
	})

	Convey("Given an empty slice", t, func() {
		k := aggregate.KPIs(dataset.FromRows(nil))

		Convey("Then the neutral KPI comes back", func() {
			So(k, ShouldResemble, aggregate.KPI{})
		})
	})

	Convey("Given a person with no activity at all", t, func() {
		k := aggregate.KPIs(dataset.FromRows([]dataset.Row{
			row("Ana", 5, 5, 0, 5, 3600),
			row("Fantasma", 0, 0, 0, 0, 0),
		}))

		Convey("Then only active people are counted", func() {
			So(k.ActivePeople, ShouldEqual, 1)
		})
	})
}

func TestPerPerson(t *testing.T) {
	ctx := context.Background()

	Convey("Given rows with sentinel and sub-threshold lines", t, func() {
		ds := dataset.FromRows([]dataset.Row{
			row("Ana", 10, 8, 2, 7, 3600),
			row("Ana", 5, 4, 1, 4, -600), // sentinel: not a valid shift
			row("Ana", 3, 2, 1, 2, 400),  // below threshold
			row("Bruno", 6, 6, 0, 6, 7200),
		})

		Convey("When rolled up per person", func() {
			rows, err := aggregate.PerPerson(ctx, ds)
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 2)

			Convey("Then shift counts follow the valid-shift rule", func() {
				var ana aggregate.PersonRow
				for _, r := range rows {
					if r.Name == "Ana" {
						ana = r
					}
				}
				So(ana.Shifts, ShouldEqual, 1)
				So(ana.RawRows, ShouldEqual, 3)
				So(ana.Offered, ShouldEqual, 18)
			})
		})

		Convey("When raw-row counting is requested explicitly", func() {
			rows, err := aggregate.PerPerson(ctx, ds, aggregate.WithRawRowCounts())
			So(err, ShouldBeNil)

			Convey("Then every row counts as a shift", func() {
				var ana aggregate.PersonRow
				for _, r := range rows {
					if r.Name == "Ana" {
						ana = r
					}
				}
				So(ana.Shifts, ShouldEqual, 3)
			})
		})
	})

	Convey("Given tied shift counts", t, func() {
		ds := dataset.FromRows([]dataset.Row{
			row("Carla", 1, 1, 0, 1, 3600),
			row("Ana", 1, 1, 0, 1, 3600),
		})
		rows, err := aggregate.PerPerson(ctx, ds)

		Convey("Then name ascending breaks the tie", func() {
			So(err, ShouldBeNil)
			So(rows[0].Name, ShouldEqual, "Ana")
			So(rows[1].Name, ShouldEqual, "Carla")
		})
	})

	Convey("Given an expired deadline", t, func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := aggregate.PerPerson(cancelled, dataset.FromRows([]dataset.Row{row("Ana", 1, 1, 0, 1, 3600)}))

		Convey("Then the request fails with the cancelled kind", func() {
			So(errors.Is(err, dataset.ErrCancelled), ShouldBeTrue)
		})
	})
}
