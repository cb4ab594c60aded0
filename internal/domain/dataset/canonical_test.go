package dataset_test

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mbaleato/rota/internal/domain/dataset"
)

func TestCanonicalize(t *testing.T) {
	Convey("Given raw rows with the canonical columns", t, func() {
		raw := []dataset.RawRow{
			{
				"data":                         "2026-01-05",
				"periodo":                      "MANHA",
				"praca":                        "SAO PAULO",
				"sub_praca":                    "CENTRO",
				"pessoa_entregadora":           "João da Conceição",
				"id_da_pessoa_entregadora":     "6BA7B810-9DAD-11D1-80B4-00C04FD430C8",
				"numero_de_corridas_ofertadas": "12",
				"numero_de_corridas_aceitas":   "10",
				"tempo_disponivel_absoluto":    "3600",
				"tempo_disponivel_escalado":    "0.8",
				"soma_das_taxas_das_corridas_aceitas": "1250",
			},
		}

		Convey("When canonicalized", func() {
			ds, warns, err := dataset.Canonicalize(raw)

			So(err, ShouldBeNil)
			So(warns, ShouldBeEmpty)
			So(ds.Len(), ShouldEqual, 1)

			r := ds.Rows()[0]
			Convey("Then dates, keys, and numerics are normalized", func() {
				So(r.Date, ShouldEqual, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
				So(r.MesAno, ShouldEqual, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
				So(r.Mes(), ShouldEqual, 1)
				So(r.Ano(), ShouldEqual, 2026)
				So(r.NameKey, ShouldEqual, "joao da conceicao")
				So(r.PersonUUID, ShouldEqual, "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
				So(r.Offered, ShouldEqual, 12)
				So(r.Accepted, ShouldEqual, 10)
				So(r.AbsSecondsRaw, ShouldEqual, 3600)
				So(r.AbsSeconds, ShouldEqual, 3600)
				So(r.HasScaled, ShouldBeTrue)
				So(r.ScaledAvailable, ShouldEqual, 0.8)
				So(r.FeeCents, ShouldEqual, 1250)
			})
		})

		Convey("When canonicalized twice", func() {
			ds1, _, err1 := dataset.Canonicalize(raw)
			So(err1, ShouldBeNil)
			ds2, warns2, err2 := dataset.Canonicalize(ds1.Raw())

			Convey("Then the second pass is the identity", func() {
				So(err2, ShouldBeNil)
				So(warns2, ShouldBeEmpty)
				So(ds2.Rows(), ShouldResemble, ds1.Rows())
			})
		})
	})

	Convey("Given a row with the -600 sentinel", t, func() {
		ds, _, err := dataset.Canonicalize([]dataset.RawRow{
			{"data": "2026-01-05", "tempo_disponivel_absoluto": "-600"},
		})
		So(err, ShouldBeNil)

		Convey("Then the raw value is preserved and the clipped value is zero", func() {
			r := ds.Rows()[0]
			So(r.AbsSecondsRaw, ShouldEqual, -600)
			So(r.AbsSeconds, ShouldEqual, 0)
			So(r.ValidShift(), ShouldBeFalse)
			So(dataset.ClassifySeconds(r.AbsSecondsRaw), ShouldEqual, dataset.SecondsSentinel)
		})
	})

	Convey("Given rows around the validity threshold", t, func() {
		ds, _, err := dataset.Canonicalize([]dataset.RawRow{
			{"data": "2026-01-05", "tempo_disponivel_absoluto": "598"},
			{"data": "2026-01-05", "tempo_disponivel_absoluto": "599"},
		})
		So(err, ShouldBeNil)

		Convey("Then 598 is invalid and 599 is valid", func() {
			So(ds.Rows()[0].ValidShift(), ShouldBeFalse)
			So(dataset.ClassifySeconds(598), ShouldEqual, dataset.SecondsBelowThreshold)
			So(ds.Rows()[1].ValidShift(), ShouldBeTrue)
		})
	})

	Convey("Given rows without any recognizable date column", t, func() {
		_, _, err := dataset.Canonicalize([]dataset.RawRow{
			{"pessoa_entregadora": "Maria", "numero_de_corridas_ofertadas": "3"},
		})

		Convey("Then canonicalization fails with the schema kind", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, dataset.ErrSchemaMissing), ShouldBeTrue)
		})
	})

	Convey("Given malformed numerics and durations", t, func() {
		ds, warns, err := dataset.Canonicalize([]dataset.RawRow{
			{
				"data":                         "2026-01-05",
				"numero_de_corridas_ofertadas": "abc",
				"tempo_disponivel_absoluto":    "borked",
			},
		})
		So(err, ShouldBeNil)

		Convey("Then values degrade to zero and warnings surface", func() {
			So(ds.Rows()[0].Offered, ShouldEqual, 0)
			So(ds.Rows()[0].AbsSecondsRaw, ShouldEqual, 0)
			So(len(warns), ShouldEqual, 2)
		})
	})

	Convey("Given aliased and accented headers", t, func() {
		ds, _, err := dataset.Canonicalize([]dataset.RawRow{
			{"DATA": "2026-01-05", "Praça": "SAO PAULO", "corridas ofertadas": "7"},
		})

		Convey("Then the resolver maps them to canonical columns", func() {
			So(err, ShouldBeNil)
			So(ds.Rows()[0].Area, ShouldEqual, "SAO PAULO")
			So(ds.Rows()[0].Offered, ShouldEqual, 7)
		})
	})

	Convey("Given an empty input", t, func() {
		ds, warns, err := dataset.Canonicalize(nil)

		Convey("Then the neutral dataset comes back", func() {
			So(err, ShouldBeNil)
			So(warns, ShouldBeEmpty)
			So(ds.Len(), ShouldEqual, 0)
		})
	})
}

func TestParseDurationSeconds(t *testing.T) {
	Convey("Given the accepted duration spellings", t, func() {
		cases := []struct {
			in   string
			want float64
			ok   bool
		}{
			{"01:30:00", 5400, true},
			{"01:30", 5400, true},
			{"3600", 3600, true},
			{"-600", -600, true},
			{"-01:00:00", -3600, true},
			{"1234,5", 1234.5, true},
			{"", 0, false},
			{"1:2:3:4", 0, false},
			{"abc", 0, false},
		}
		for _, c := range cases {
			got, ok := dataset.ParseDurationSeconds(c.in)
			So(ok, ShouldEqual, c.ok)
			So(got, ShouldEqual, c.want)
		}
	})
}

func TestFoldKey(t *testing.T) {
	Convey("Given accented, cased, and padded names", t, func() {
		So(dataset.FoldKey("  João da Conceição "), ShouldEqual, "joao da conceicao")
		So(dataset.FoldKey("JOAO DA CONCEICAO"), ShouldEqual, "joao da conceicao")
		So(dataset.FoldKey("Verônica Araújo"), ShouldEqual, dataset.FoldKey("VERONICA ARAUJO"))
	})
}
