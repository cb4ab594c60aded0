package timecalc_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mbaleato/rota/internal/domain/dataset"
	"github.com/mbaleato/rota/internal/domain/timecalc"
)

func row(rawSeconds, scaled float64) dataset.Row {
	return dataset.Row{
		Date:            time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		AbsSecondsRaw:   rawSeconds,
		AbsSeconds:      max(rawSeconds, 0),
		ScaledAvailable: scaled,
		HasScaled:       true,
	}
}

func TestOnline(t *testing.T) {
	Convey("Given values on the 0-1 band", t, func() {
		ds := dataset.FromRows([]dataset.Row{row(3600, 0.4), row(3600, 0.6), row(3600, 0.8)})
		res := timecalc.Online(ds)

		Convey("Then the mean is scaled to a percentage", func() {
			So(res.Pct, ShouldEqual, 60.0)
			So(res.Band, ShouldEqual, timecalc.BandUnit)
			So(res.Samples, ShouldEqual, 3)
		})
	})

	Convey("Given values on the basis-points band", t, func() {
		ds := dataset.FromRows([]dataset.Row{row(3600, 4000), row(3600, 5000), row(3600, 6000)})
		res := timecalc.Online(ds)

		Convey("Then the mean is divided by 100", func() {
			So(res.Pct, ShouldEqual, 50.0)
			So(res.Band, ShouldEqual, timecalc.BandBasisPoints)
		})
	})

	Convey("Given sentinel and sub-threshold rows mixed in", t, func() {
		ds := dataset.FromRows([]dataset.Row{row(-600, 9999), row(400, 9999), row(3600, 70)})
		res := timecalc.Online(ds)

		Convey("Then only the valid row counts", func() {
			So(res.Pct, ShouldEqual, 70.0)
			So(res.Band, ShouldEqual, timecalc.BandPercent)
			So(res.Samples, ShouldEqual, 1)
		})
	})

	Convey("Given no usable values", t, func() {
		Convey("Then an empty slice yields zero", func() {
			res := timecalc.Online(dataset.FromRows(nil))
			So(res.Pct, ShouldEqual, 0.0)
			So(res.Band, ShouldEqual, timecalc.BandUnknown)
		})

		Convey("And a slice of only sentinels yields zero", func() {
			res := timecalc.Online(dataset.FromRows([]dataset.Row{row(-600, 0.9)}))
			So(res.Pct, ShouldEqual, 0.0)
		})

		Convey("And valid rows without a scaled value yield zero", func() {
			r := row(3600, 0)
			r.HasScaled = false
			res := timecalc.Online(dataset.FromRows([]dataset.Row{r}))
			So(res.Pct, ShouldEqual, 0.0)
		})
	})

	Convey("Given increasing availability within one band", t, func() {
		low := timecalc.Online(dataset.FromRows([]dataset.Row{row(3600, 0.2), row(3600, 0.3)}))
		high := timecalc.Online(dataset.FromRows([]dataset.Row{row(3600, 0.5), row(3600, 0.6)}))

		Convey("Then the percentage never decreases", func() {
			So(high.Pct, ShouldBeGreaterThanOrEqualTo, low.Pct)
		})
	})

	Convey("Given values above 100 percent equivalents", t, func() {
		res := timecalc.Online(dataset.FromRows([]dataset.Row{row(3600, 1.4), row(3600, 0.9), row(3600, 0.95)}))

		Convey("Then the output is clamped to 100", func() {
			So(res.Pct, ShouldBeLessThanOrEqualTo, 100.0)
		})
	})
}
