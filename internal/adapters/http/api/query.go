package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mbaleato/rota/internal/domain/filter"
)

const dateLayout = "2006-01-02"

// parseSelection builds a filter selection from query parameters:
// from/to (inclusive range), dates, subareas (may include LIVRE), shifts,
// persons, area_scope, strict.
func parseSelection(q url.Values) (filter.Selection, error) {
	var sel filter.Selection
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return sel, fmt.Errorf("%w: from: %v", ErrBadRequest, err)
		}
		sel.DateFrom = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return sel, fmt.Errorf("%w: to: %v", ErrBadRequest, err)
		}
		sel.DateTo = &t
	}
	for _, v := range splitList(q.Get("dates")) {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return sel, fmt.Errorf("%w: dates: %v", ErrBadRequest, err)
		}
		sel.Dates = append(sel.Dates, t)
	}
	sel.SubAreas = splitList(q.Get("subareas"))
	sel.Shifts = splitList(q.Get("shifts"))
	sel.Persons = splitList(q.Get("persons"))
	sel.AreaScope = q.Get("area_scope")
	sel.Strict = parseBool(q.Get("strict"))
	return sel, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

// parseMonth resolves a YYYY-MM value to the first day of the month.
func parseMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month: %v", ErrBadRequest, err)
	}
	return t, nil
}
