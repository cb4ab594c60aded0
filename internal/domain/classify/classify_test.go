package classify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mbaleato/rota/internal/domain/classify"
	"github.com/mbaleato/rota/internal/domain/dataset"
)

// monthRow spreads hours over a single January 2026 row with the given
// counter profile.
func monthRow(name string, day int, hours float64, offered, accepted, completed int) dataset.Row {
	d := time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC)
	return dataset.Row{
		Date:          d,
		MesAno:        dataset.MonthStart(d),
		PersonName:    name,
		NameKey:       dataset.FoldKey(name),
		Offered:       offered,
		Accepted:      accepted,
		Completed:     completed,
		AbsSecondsRaw: hours * 3600,
		AbsSeconds:    hours * 3600,
	}
}

func TestClassify(t *testing.T) {
	ctx := context.Background()
	th := classify.DefaultThresholds()

	classOf := func(rows ...dataset.Row) classify.PersonClass {
		out, err := classify.Classify(ctx, dataset.FromRows(rows), 1, 2026, th)
		So(err, ShouldBeNil)
		So(len(out), ShouldEqual, 1)
		return out[0]
	}

	Convey("Given a person clearing every Premium gate", t, func() {
		pc := classOf(monthRow("Ana", 5, 130, 100, 85, 82))

		Convey("Then Premium is assigned with all criteria met", func() {
			So(pc.Category, ShouldEqual, classify.Premium)
			So(pc.CriteriaMet, ShouldEqual, 3)
		})
	})

	Convey("Given a person exactly at the Premium boundaries", t, func() {
		// SH 120, acceptance 80%, completion 95%.
		pc := classOf(monthRow("Ana", 5, 120, 100, 80, 76))

		Convey("Then boundaries are inclusive", func() {
			So(pc.Category, ShouldEqual, classify.Premium)
		})
	})

	Convey("Given Premium hours but Conectado quality", t, func() {
		pc := classOf(monthRow("Ana", 5, 130, 100, 75, 70))

		Convey("Then the first fully-passed tier wins", func() {
			So(pc.Category, ShouldEqual, classify.Conectado)
			So(pc.CriteriaMet, ShouldEqual, 1) // only the SH dimension
		})
	})

	Convey("Given Casual hours and acceptance", t, func() {
		pc := classOf(monthRow("Ana", 5, 25, 100, 65, 30))

		Convey("Then completion does not gate Casual", func() {
			So(pc.Category, ShouldEqual, classify.Casual)
		})
	})

	Convey("Given nearly no activity", t, func() {
		pc := classOf(monthRow("Ana", 5, 5, 10, 2, 1))

		Convey("Then the catch-all applies", func() {
			So(pc.Category, ShouldEqual, classify.Flutuante)
		})
	})

	Convey("Given rows in another month", t, func() {
		feb := monthRow("Ana", 5, 130, 100, 85, 82)
		feb.Date = time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
		feb.MesAno = dataset.MonthStart(feb.Date)
		out, err := classify.Classify(ctx, dataset.FromRows([]dataset.Row{feb}), 1, 2026, th)

		Convey("Then the month filter drops them", func() {
			So(err, ShouldBeNil)
			So(out, ShouldBeEmpty)
		})
	})

	Convey("Given a whole-history request", t, func() {
		jan := monthRow("Ana", 5, 130, 100, 85, 82)
		feb := monthRow("Ana", 5, 10, 10, 2, 1)
		feb.Date = time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
		feb.MesAno = dataset.MonthStart(feb.Date)
		out, err := classify.Classify(ctx, dataset.FromRows([]dataset.Row{jan, feb}), 0, 0, th)

		Convey("Then each person-month classifies independently in order", func() {
			So(err, ShouldBeNil)
			So(len(out), ShouldEqual, 2)
			So(out[0].Category, ShouldEqual, classify.Premium)
			So(out[1].Category, ShouldEqual, classify.Flutuante)
		})
	})

	Convey("Given projection for an in-progress month", t, func() {
		today := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
		out, err := classify.Classify(ctx, dataset.FromRows([]dataset.Row{monthRow("Ana", 5, 40, 100, 85, 82)}),
			1, 2026, th, classify.WithProjection(today))
		So(err, ShouldBeNil)

		Convey("Then the linear estimate scales by elapsed days", func() {
			So(out[0].ProjectedSH, ShouldNotBeNil)
			So(*out[0].ProjectedSH, ShouldEqual, 124.0) // 40 * 31 / 10
		})
	})

	Convey("Given projection when the month is already over", t, func() {
		today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
		out, err := classify.Classify(ctx, dataset.FromRows([]dataset.Row{monthRow("Ana", 5, 40, 100, 85, 82)}),
			1, 2026, th, classify.WithProjection(today))
		So(err, ShouldBeNil)

		Convey("Then no estimate is attached", func() {
			So(out[0].ProjectedSH, ShouldBeNil)
		})
	})

	Convey("Given an expired deadline", t, func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := classify.Classify(cancelled, dataset.FromRows([]dataset.Row{monthRow("Ana", 5, 40, 100, 85, 82)}), 1, 2026, th)

		Convey("Then the request fails with the cancelled kind", func() {
			So(errors.Is(err, dataset.ErrCancelled), ShouldBeTrue)
		})
	})
}
