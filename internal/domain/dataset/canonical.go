package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// RawRow is one heterogeneous source record. Keys may be absent and values
// arrive as text.
type RawRow map[string]string

// Warning records a non-fatal canonicalization defect. The affected value
// degrades to its neutral element instead of failing the request.
type Warning struct {
	Row     int
	Column  string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("row %d, column %s: %s", w.Row, w.Column, w.Message)
}

// Canonicalize normalizes raw rows to the typed schema. Dates are resolved
// to date-only values, counters to non-negative integers, and the seconds
// sentinel is preserved on AbsSecondsRaw while AbsSeconds is clipped to
// zero. Rows whose date cannot be parsed are skipped with a warning; an
// unresolvable date column fails with ErrSchemaMissing.
func Canonicalize(raw []RawRow) (Dataset, []Warning, error) {
	if len(raw) == 0 {
		return Dataset{}, nil, nil
	}
	schema, err := ResolveSchema(raw)
	if err != nil {
		return Dataset{}, nil, err
	}

	rows := make([]Row, 0, len(raw))
	var warns []Warning
	warn := func(i int, col, msg string) {
		warns = append(warns, Warning{Row: i, Column: col, Message: msg})
	}

	for i, rec := range raw {
		get := func(canonical string) (string, bool) {
			key := schema.RawKey(canonical)
			if key == "" {
				return "", false
			}
			v, ok := rec[key]
			return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
		}

		dateText, _ := rec[schema.DateKey()]
		date, ok := parseDate(dateText)
		if !ok {
			warn(i, schema.DateKey(), "unparseable date, row skipped")
			continue
		}

		r := Row{Date: date, MesAno: MonthStart(date)}
		if v, ok := get(ColPeriodo); ok {
			r.Shift = v
		}
		if v, ok := get(ColPraca); ok {
			r.Area = v
		}
		if v, ok := get(ColSubPraca); ok {
			r.Sub = v
		}
		if v, ok := get(ColPessoa); ok {
			r.PersonName = v
			r.NameKey = FoldKey(v)
		}
		if v, ok := get(ColPessoaID); ok {
			r.PersonUUID = canonicalUUID(v)
		}

		r.Offered = coerceCount(i, ColOfertadas, get, warn)
		r.Accepted = coerceCount(i, ColAceitas, get, warn)
		r.Rejected = coerceCount(i, ColRejeitadas, get, warn)
		r.Completed = coerceCount(i, ColCompletadas, get, warn)
		r.AcceptedCompleted = coerceCount(i, ColAceitasConcluidas, get, warn)

		if v, ok := get(ColTempoAbsoluto); ok {
			secs, parsed := ParseDurationSeconds(v)
			if !parsed {
				warn(i, ColTempoAbsoluto, "unparseable duration, using 0")
			}
			r.AbsSecondsRaw = secs
		}
		r.AbsSeconds = math.Max(r.AbsSecondsRaw, 0)

		if v, ok := get(ColTempoEscalado); ok {
			if f, parsed := parseNumber(v); parsed {
				r.ScaledAvailable = f
				r.HasScaled = true
			} else {
				warn(i, ColTempoEscalado, "unparseable number, dropping value")
			}
		}
		if v, ok := get(ColDuracaoPeriodo); ok {
			if secs, parsed := ParseDurationSeconds(v); parsed {
				r.PeriodDurationSecs = secs
			} else {
				warn(i, ColDuracaoPeriodo, "unparseable duration, using 0")
			}
		}
		if v, ok := get(ColTag); ok {
			r.Tag = v
		}
		if v, ok := get(ColCapacidadeMinima); ok {
			if f, parsed := parseNumber(v); parsed && f >= 0 {
				r.CrewMinCapacity = int(math.Round(f))
				r.HasCapacity = true
			} else {
				warn(i, ColCapacidadeMinima, "unparseable capacity, dropping value")
			}
		}
		if v, ok := get(ColSomaTaxas); ok {
			if f, parsed := parseNumber(v); parsed {
				r.FeeCents = int64(math.Round(f))
			} else {
				warn(i, ColSomaTaxas, "unparseable fee, using 0")
			}
		}

		rows = append(rows, r)
	}
	return Dataset{rows: rows}, warns, nil
}

// coerceCount parses a ride counter: missing or malformed values degrade to
// zero, negatives are clipped.
func coerceCount(i int, col string, get func(string) (string, bool), warn func(int, string, string)) int {
	v, ok := get(col)
	if !ok {
		return 0
	}
	f, parsed := parseNumber(v)
	if !parsed {
		warn(i, col, "unparseable count, using 0")
		return 0
	}
	if f < 0 {
		warn(i, col, "negative count, using 0")
		return 0
	}
	return int(math.Round(f))
}

// canonicalUUID coerces the source person id to a stable string. Values
// that parse as UUIDs are normalized to their lowercase form; anything else
// is kept verbatim so identity still works for non-UUID id schemes.
func canonicalUUID(s string) string {
	if u, err := uuid.Parse(s); err == nil {
		return u.String()
	}
	return s
}

// Raw exports the dataset back to canonical raw rows. Canonicalizing the
// result reproduces the dataset exactly.
func (d Dataset) Raw() []RawRow {
	out := make([]RawRow, 0, len(d.rows))
	for _, r := range d.rows {
		rec := RawRow{
			ColData:              r.Date.Format("2006-01-02"),
			ColOfertadas:         strconv.Itoa(r.Offered),
			ColAceitas:           strconv.Itoa(r.Accepted),
			ColRejeitadas:        strconv.Itoa(r.Rejected),
			ColCompletadas:       strconv.Itoa(r.Completed),
			ColAceitasConcluidas: strconv.Itoa(r.AcceptedCompleted),
			ColTempoAbsoluto:     strconv.FormatFloat(r.AbsSecondsRaw, 'f', -1, 64),
			ColSomaTaxas:         strconv.FormatInt(r.FeeCents, 10),
		}
		if r.Shift != "" {
			rec[ColPeriodo] = r.Shift
		}
		if r.Area != "" {
			rec[ColPraca] = r.Area
		}
		if r.Sub != "" {
			rec[ColSubPraca] = r.Sub
		}
		if r.PersonName != "" {
			rec[ColPessoa] = r.PersonName
		}
		if r.PersonUUID != "" {
			rec[ColPessoaID] = r.PersonUUID
		}
		if r.HasScaled {
			rec[ColTempoEscalado] = strconv.FormatFloat(r.ScaledAvailable, 'f', -1, 64)
		}
		if r.PeriodDurationSecs != 0 {
			rec[ColDuracaoPeriodo] = strconv.FormatFloat(r.PeriodDurationSecs, 'f', -1, 64)
		}
		if r.Tag != "" {
			rec[ColTag] = r.Tag
		}
		if r.HasCapacity {
			rec[ColCapacidadeMinima] = strconv.Itoa(r.CrewMinCapacity)
		}
		out = append(out, rec)
	}
	return out
}
