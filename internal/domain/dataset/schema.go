package dataset

import "fmt"

// headerAliases maps folded header spellings seen in historical exports to
// the canonical column set. Canonical names map to themselves.
var headerAliases = map[string]string{
	ColData:              ColData,
	ColDataDoPeriodo:     ColDataDoPeriodo,
	ColPeriodo:           ColPeriodo,
	ColPessoa:            ColPessoa,
	ColPessoaID:          ColPessoaID,
	ColPraca:             ColPraca,
	ColSubPraca:          ColSubPraca,
	ColOfertadas:         ColOfertadas,
	ColAceitas:           ColAceitas,
	ColRejeitadas:        ColRejeitadas,
	ColCompletadas:       ColCompletadas,
	ColAceitasConcluidas: ColAceitasConcluidas,
	ColTempoAbsoluto:     ColTempoAbsoluto,
	ColTempoEscalado:     ColTempoEscalado,
	ColDuracaoPeriodo:    ColDuracaoPeriodo,
	ColCapacidadeMinima:  ColCapacidadeMinima,
	ColTag:               ColTag,
	ColSomaTaxas:         ColSomaTaxas,

	// Spellings seen in the wild.
	"turno":                  ColPeriodo,
	"entregador":             ColPessoa,
	"nome_entregador":        ColPessoa,
	"id_entregador":          ColPessoaID,
	"uuid":                   ColPessoaID,
	"corridas_ofertadas":     ColOfertadas,
	"corridas_aceitas":       ColAceitas,
	"corridas_rejeitadas":    ColRejeitadas,
	"corridas_completadas":   ColCompletadas,
	"tempo_absoluto":         ColTempoAbsoluto,
	"tempo_escalado":         ColTempoEscalado,
	"capacidade_minima":      ColCapacidadeMinima,
	"soma_taxas":             ColSomaTaxas,
	"taxas_corridas_aceitas": ColSomaTaxas,
}

// dateCandidates lists the columns that may carry the observation date, in
// resolution order.
var dateCandidates = []string{ColData, ColDataDoPeriodo}

// Schema maps canonical column names to the raw keys that carry them for a
// given batch of rows.
type Schema struct {
	byCanonical map[string]string
	dateKey     string
}

// RawKey returns the raw key holding the canonical column, or "" when the
// column is absent from the batch.
func (s Schema) RawKey(canonical string) string { return s.byCanonical[canonical] }

// DateKey returns the raw key resolved as the observation date.
func (s Schema) DateKey() string { return s.dateKey }

// Has reports whether the canonical column is present.
func (s Schema) Has(canonical string) bool { return s.byCanonical[canonical] != "" }

// ResolveSchema inspects the union of keys across raw rows and maps them to
// the canonical column set. It fails with ErrSchemaMissing when no date
// column is found.
func ResolveSchema(rows []RawRow) (Schema, error) {
	s := Schema{byCanonical: make(map[string]string)}
	for _, row := range rows {
		for key := range row {
			canonical, ok := headerAliases[foldHeader(key)]
			if !ok {
				continue
			}
			if _, taken := s.byCanonical[canonical]; !taken {
				s.byCanonical[canonical] = key
			}
		}
	}
	for _, c := range dateCandidates {
		if key, ok := s.byCanonical[c]; ok {
			s.dateKey = key
			break
		}
	}
	if s.dateKey == "" {
		return Schema{}, fmt.Errorf("%w: tried %v", ErrSchemaMissing, dateCandidates)
	}
	return s, nil
}
