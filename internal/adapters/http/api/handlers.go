package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mbaleato/rota/internal/domain/compare"
	"github.com/mbaleato/rota/internal/domain/dataset"
	"github.com/mbaleato/rota/internal/domain/utr"
)

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	k, warns, err := s.deps.KPIs(r.Context(), sel)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, k, warns)
}

func (s *Server) handleOnline(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	res, warns, err := s.deps.Online(r.Context(), sel)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, struct {
		Pct     float64 `json:"pct"`
		Band    string  `json:"band"`
		Samples int     `json:"samples"`
	}{res.Pct, res.Band.String(), res.Samples}, warns)
}

func (s *Server) handlePerPerson(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	q := r.URL.Query()
	sel, err := parseSelection(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	rows, warns, err := s.deps.PerPerson(r.Context(), sel, parseBool(q.Get("raw_rows")))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, rows, warns)
}

func (s *Server) handleUTR(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	q := r.URL.Query()
	sel, err := parseSelection(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	mode := utr.ParseMode(q.Get("mode"))
	v, warns, err := s.deps.UTR(r.Context(), sel, mode)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, struct {
		Mode  string  `json:"mode"`
		Value float64 `json:"value"`
	}{mode.String(), v}, warns)
}

func (s *Server) handleUTRSeries(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	q := r.URL.Query()
	sel, err := parseSelection(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	pts, warns, err := s.deps.UTRSeries(r.Context(), sel, utr.ParseGrain(q.Get("grain")), utr.ParseMode(q.Get("mode")))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, pts, warns)
}

func (s *Server) handleAdherence(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	res, warns, err := s.deps.Adherence(r.Context(), sel)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, res, warns)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	q := r.URL.Query()
	sel, err := parseSelection(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	month, err := parseOptionalInt(q.Get("month"), 1, 12)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	year, err := parseOptionalInt(q.Get("year"), 2000, 2100)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	rows, warns, err := s.deps.Classify(r.Context(), sel, month, year)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, rows, warns)
}

func (s *Server) handleElite(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	q := r.URL.Query()
	sel, err := parseSelection(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	month, err := parseMonth(q.Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	rows, warns, err := s.deps.Elite(r.Context(), sel, month)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, rows, warns)
}

func (s *Server) handlePromotion(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	rows, warns, err := s.deps.Promotion(r.Context(), sel)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, rows, warns)
}

func (s *Server) handleBonus(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	rows, warns, err := s.deps.ShiftBonus(r.Context(), sel)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, rows, warns)
}

func (s *Server) handleAbsences(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	q := r.URL.Query()
	sel, err := parseSelection(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	var today time.Time
	if v := q.Get("today"); v != "" {
		today, err = time.Parse(dateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
	}
	alerts, warns, err := s.deps.Absences(r.Context(), sel, today)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, alerts, warns)
}

// handleCompare diffs two periods derived from mode and ref: mom (month
// over month), wow (week over week), or weekday (same weekday one week
// back).
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	q := r.URL.Query()
	sel, err := parseSelection(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	ref := dataset.DateOnly(s.deps.Now().UTC())
	if v := q.Get("ref"); v != "" {
		ref, err = time.Parse(dateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
	}
	var a, b compare.Range
	switch q.Get("mode") {
	case "", "mom":
		a, b = compare.MonthOverMonth(ref)
	case "wow":
		a, b = compare.WeekOverWeek(ref)
	case "weekday":
		a, b = compare.SameWeekday(ref)
	default:
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	res, warns, err := s.deps.Compare(r.Context(), sel, a, b)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, res, warns)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	sum, warns, err := s.deps.Summarize(r.Context(), sel)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeData(w, sum, warns)
}

func parseOptionalInt(s string, lo, hi int) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, ErrBadRequest
	}
	return n, nil
}
