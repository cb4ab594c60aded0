// Package filter narrows a dataset by subarea, shift, person, and date
// selections. Selections are soft masks: values the dataset does not carry
// are dropped silently unless strict mode is requested.
package filter

import (
	"fmt"
	"time"

	"github.com/mbaleato/rota/internal/domain/dataset"
)

// Livre is the pseudo-subarea meaning "subarea unspecified within the
// designated area".
const Livre = "LIVRE"

// DefaultAreaScope is the main area that enables Livre semantics.
const DefaultAreaScope = "SAO PAULO"

// Selection describes the rows a request wants. Zero-value fields select
// everything.
type Selection struct {
	DateFrom *time.Time  // inclusive
	DateTo   *time.Time  // inclusive
	Dates    []time.Time // specific dates; membership test when non-empty

	SubAreas []string // may contain Livre
	Shifts   []string
	Persons  []string // matched on folded name keys

	// AreaScope is the main area Livre resolves against. Empty means
	// DefaultAreaScope.
	AreaScope string

	// Strict turns unknown selection values into ErrInvalidSelection
	// instead of warnings.
	Strict bool
}

// Apply returns a narrowed view of ds. Unknown subarea values produce
// warnings (or ErrInvalidSelection in strict mode); the same schema is
// preserved.
func Apply(ds dataset.Dataset, sel Selection) (dataset.Dataset, []dataset.Warning, error) {
	warns, err := checkKnownValues(ds, sel)
	if err != nil {
		return dataset.Dataset{}, nil, err
	}

	scope := dataset.FoldKey(sel.AreaScope)
	if scope == "" {
		scope = dataset.FoldKey(DefaultAreaScope)
	}
	subWant, livre := foldSet(sel.SubAreas)
	shiftWant, _ := foldSet(sel.Shifts)
	personWant, _ := foldSet(sel.Persons)
	dateWant := make(map[time.Time]struct{}, len(sel.Dates))
	for _, d := range sel.Dates {
		dateWant[dataset.DateOnly(d)] = struct{}{}
	}

	out := ds.Select(func(r dataset.Row) bool {
		if sel.DateFrom != nil && r.Date.Before(dataset.DateOnly(*sel.DateFrom)) {
			return false
		}
		if sel.DateTo != nil && r.Date.After(dataset.DateOnly(*sel.DateTo)) {
			return false
		}
		if len(dateWant) > 0 {
			if _, ok := dateWant[r.Date]; !ok {
				return false
			}
		}
		if len(subWant) > 0 || livre {
			if !matchSub(r, subWant, livre, scope) {
				return false
			}
		}
		if len(shiftWant) > 0 {
			if _, ok := shiftWant[dataset.FoldKey(r.Shift)]; !ok {
				return false
			}
		}
		if len(personWant) > 0 {
			if _, ok := personWant[r.NameKey]; !ok {
				return false
			}
		}
		return true
	})
	return out, warns, nil
}

// matchSub implements the Livre rule: a row with no subarea matches when its
// area folds to the configured scope.
func matchSub(r dataset.Row, want map[string]struct{}, livre bool, scope string) bool {
	if _, ok := want[dataset.FoldKey(r.Sub)]; ok && r.Sub != "" {
		return true
	}
	if livre && r.Sub == "" && dataset.FoldKey(r.Area) == scope {
		return true
	}
	return false
}

// checkKnownValues compares selected subareas against the dataset and
// reports the ones it does not carry.
func checkKnownValues(ds dataset.Dataset, sel Selection) ([]dataset.Warning, error) {
	if len(sel.SubAreas) == 0 {
		return nil, nil
	}
	known := make(map[string]struct{})
	for _, r := range ds.Rows() {
		if r.Sub != "" {
			known[dataset.FoldKey(r.Sub)] = struct{}{}
		}
	}
	var warns []dataset.Warning
	for _, s := range sel.SubAreas {
		key := dataset.FoldKey(s)
		if key == dataset.FoldKey(Livre) {
			continue
		}
		if _, ok := known[key]; !ok {
			if sel.Strict {
				return nil, fmt.Errorf("%w: unknown subarea %q", dataset.ErrInvalidSelection, s)
			}
			warns = append(warns, dataset.Warning{Column: dataset.ColSubPraca, Message: fmt.Sprintf("unknown subarea %q ignored", s)})
		}
	}
	return warns, nil
}

// foldSet folds values into a membership set, reporting whether Livre was
// among them.
func foldSet(values []string) (map[string]struct{}, bool) {
	set := make(map[string]struct{}, len(values))
	livre := false
	for _, v := range values {
		key := dataset.FoldKey(v)
		if key == dataset.FoldKey(Livre) {
			livre = true
			continue
		}
		set[key] = struct{}{}
	}
	return set, livre
}
