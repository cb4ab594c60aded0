package compare_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mbaleato/rota/internal/domain/compare"
	"github.com/mbaleato/rota/internal/domain/dataset"
)

func row(day time.Time, offered, accepted int, hours float64) dataset.Row {
	return dataset.Row{
		Date:          day,
		PersonName:    "Ana",
		NameKey:       "ana",
		Offered:       offered,
		Accepted:      accepted,
		AbsSecondsRaw: hours * 3600,
		AbsSeconds:    hours * 3600,
	}
}

func TestDelta(t *testing.T) {
	Convey("Given the delta edge cases", t, func() {
		Convey("Then a regular pair yields a signed percentage", func() {
			d := compare.Delta(110, 100)
			So(d, ShouldNotBeNil)
			So(*d, ShouldEqual, 10.0)

			d = compare.Delta(80, 100)
			So(*d, ShouldEqual, -20.0)
		})

		Convey("Then growth from zero has no percentage", func() {
			So(compare.Delta(5, 0), ShouldBeNil)
		})

		Convey("Then zero against zero is a flat zero", func() {
			d := compare.Delta(0, 0)
			So(d, ShouldNotBeNil)
			So(*d, ShouldEqual, 0.0)
		})
	})
}

func TestKPIs(t *testing.T) {
	day := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	Convey("Given two period slices", t, func() {
		a := dataset.FromRows([]dataset.Row{row(day, 120, 90, 10)})
		b := dataset.FromRows([]dataset.Row{row(day.AddDate(0, -1, 0), 100, 80, 8)})
		cmp := compare.KPIs(a, b)

		Convey("Then both roll-ups and their deltas travel together", func() {
			So(cmp.A.Offered, ShouldEqual, 120)
			So(cmp.B.Offered, ShouldEqual, 100)
			So(*cmp.DeltaOfferedPct, ShouldEqual, 20.0)
			So(*cmp.DeltaHoursPct, ShouldEqual, 25.0)
			So(*cmp.DeltaAcceptancePct, ShouldEqual, -6.25) // 75% vs 80%
		})
	})

	Convey("Given an empty base period", t, func() {
		a := dataset.FromRows([]dataset.Row{row(day, 120, 90, 10)})
		cmp := compare.KPIs(a, dataset.FromRows(nil))

		Convey("Then count deltas are nil, not infinite", func() {
			So(cmp.DeltaOfferedPct, ShouldBeNil)
			So(cmp.DeltaHoursPct, ShouldBeNil)
		})
	})
}

func TestRanges(t *testing.T) {
	Convey("Given a reference day mid-January", t, func() {
		ref := time.Date(2026, 1, 15, 13, 45, 0, 0, time.UTC)

		Convey("Then month over month pairs full calendar months", func() {
			a, b := compare.MonthOverMonth(ref)
			So(a.From, ShouldEqual, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
			So(a.To, ShouldEqual, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))
			So(b.From, ShouldEqual, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
			So(b.To, ShouldEqual, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
		})

		Convey("Then week over week pairs Monday-start weeks", func() {
			a, b := compare.WeekOverWeek(ref) // Thursday
			So(a.From, ShouldEqual, time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC))
			So(a.To, ShouldEqual, time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC))
			So(b.From, ShouldEqual, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
			So(b.To, ShouldEqual, time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC))
		})

		Convey("Then same weekday pairs single days a week apart", func() {
			a, b := compare.SameWeekday(ref)
			So(a.From, ShouldEqual, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
			So(a.To, ShouldEqual, a.From)
			So(b.From, ShouldEqual, time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC))
		})

		Convey("Then a range converts to an inclusive selection", func() {
			a, _ := compare.SameWeekday(ref)
			sel := a.Selection()
			So(sel.DateFrom, ShouldNotBeNil)
			So(*sel.DateFrom, ShouldEqual, a.From)
			So(*sel.DateTo, ShouldEqual, a.To)
		})
	})
}
