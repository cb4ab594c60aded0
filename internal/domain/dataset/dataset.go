// Package dataset holds the canonical tabular model of the delivery
// operations export: one Row per delivery person, date, and shift slot.
//
// Conventions:
// - Rows are immutable once canonicalized; operations return new views.
// - Money is carried in cents; seconds keep both the raw value (with the
//   -600 sentinel) and the clipped value.
package dataset

import "time"

// Canonical column identifiers recognized by the schema resolver. These are
// the exact field names of the source export.
const (
	ColData              = "data"
	ColDataDoPeriodo     = "data_do_periodo"
	ColPeriodo           = "periodo"
	ColPessoa            = "pessoa_entregadora"
	ColPessoaID          = "id_da_pessoa_entregadora"
	ColPraca             = "praca"
	ColSubPraca          = "sub_praca"
	ColOfertadas         = "numero_de_corridas_ofertadas"
	ColAceitas           = "numero_de_corridas_aceitas"
	ColRejeitadas        = "numero_de_corridas_rejeitadas"
	ColCompletadas       = "numero_de_corridas_completadas"
	ColAceitasConcluidas = "numero_de_pedidos_aceitos_e_concluidos"
	ColTempoAbsoluto     = "tempo_disponivel_absoluto"
	ColTempoEscalado     = "tempo_disponivel_escalado"
	ColDuracaoPeriodo    = "duracao_do_periodo"
	ColCapacidadeMinima  = "numero_minimo_de_entregadores_regulares_na_escala"
	ColTag               = "tag"
	ColSomaTaxas         = "soma_das_taxas_das_corridas_aceitas"
)

// Seconds sentinels and thresholds intrinsic to the source data.
const (
	// SentinelSeconds marks a line whose availability must be ignored for
	// validity but kept for group membership.
	SentinelSeconds = -600

	// MinValidShiftSeconds is the inclusive lower bound for a row to count
	// as a worked shift.
	MinValidShiftSeconds = 599
)

// SecondsKind classifies the raw absolute-seconds field. Each consumer
// declares which kinds it accepts.
type SecondsKind int

const (
	SecondsSentinel SecondsKind = iota
	SecondsBelowThreshold
	SecondsValid
)

// ClassifySeconds buckets a raw absolute-seconds value.
func ClassifySeconds(raw float64) SecondsKind {
	switch {
	case raw == SentinelSeconds:
		return SecondsSentinel
	case raw < MinValidShiftSeconds:
		return SecondsBelowThreshold
	default:
		return SecondsValid
	}
}

// Row is one canonicalized observation.
type Row struct {
	Date  time.Time // date-only, UTC
	Shift string    // shift slot label (periodo); may be empty
	Area  string    // praca
	Sub   string    // sub_praca; empty when absent

	PersonName string
	NameKey    string // accent-folded, lowercased identity key
	PersonUUID string // canonical id; empty when the source carries none

	Offered            int
	Accepted           int
	Rejected           int
	Completed          int
	AcceptedCompleted  int // numero_de_pedidos_aceitos_e_concluidos
	AbsSecondsRaw      float64
	AbsSeconds         float64 // max(AbsSecondsRaw, 0)
	ScaledAvailable    float64
	HasScaled          bool
	PeriodDurationSecs float64
	Tag                string
	CrewMinCapacity    int
	HasCapacity        bool
	FeeCents           int64

	MesAno time.Time // first day of Date's month
}

// ValidShift reports whether the row counts as a worked shift: the raw
// seconds are not the sentinel and reach the minimum.
func (r Row) ValidShift() bool {
	return ClassifySeconds(r.AbsSecondsRaw) == SecondsValid
}

// Hours converts the clipped seconds to supply hours.
func (r Row) Hours() float64 { return r.AbsSeconds / 3600 }

// Mes returns the 1-based month of the observation.
func (r Row) Mes() int { return int(r.Date.Month()) }

// Ano returns the year of the observation.
func (r Row) Ano() int { return r.Date.Year() }

// Dataset is an immutable view over canonicalized rows. The zero value is an
// empty dataset.
type Dataset struct {
	rows []Row
}

// FromRows wraps rows in a Dataset. The slice is owned by the dataset after
// the call.
func FromRows(rows []Row) Dataset { return Dataset{rows: rows} }

// Len returns the number of rows in the view.
func (d Dataset) Len() int { return len(d.rows) }

// Rows exposes the underlying rows. Callers must treat the slice as
// read-only.
func (d Dataset) Rows() []Row { return d.rows }

// Select returns a new view holding the rows for which keep returns true.
func (d Dataset) Select(keep func(Row) bool) Dataset {
	out := make([]Row, 0, len(d.rows))
	for _, r := range d.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return Dataset{rows: out}
}

// MonthStart truncates t to the first day of its month in UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
