// Package ingest decodes operational CSV exports into raw rows for the
// canonicalizer. Ingestion is a collaborator of the engine: the engine
// itself never touches files.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/mbaleato/rota/internal/domain/dataset"
)

// Sentinel kinds for ingest errors.
var (
	ErrEmptyFile = errors.New("empty csv file")
)

// record is the typed fast path for exports that already carry the
// canonical headers.
type record struct {
	Data              string `csv:"data"`
	Periodo           string `csv:"periodo"`
	Pessoa            string `csv:"pessoa_entregadora"`
	PessoaID          string `csv:"id_da_pessoa_entregadora"`
	Praca             string `csv:"praca"`
	SubPraca          string `csv:"sub_praca"`
	Ofertadas         string `csv:"numero_de_corridas_ofertadas"`
	Aceitas           string `csv:"numero_de_corridas_aceitas"`
	Rejeitadas        string `csv:"numero_de_corridas_rejeitadas"`
	Completadas       string `csv:"numero_de_corridas_completadas"`
	AceitasConcluidas string `csv:"numero_de_pedidos_aceitos_e_concluidos"`
	TempoAbsoluto     string `csv:"tempo_disponivel_absoluto"`
	TempoEscalado     string `csv:"tempo_disponivel_escalado"`
	DuracaoPeriodo    string `csv:"duracao_do_periodo"`
	CapacidadeMinima  string `csv:"numero_minimo_de_entregadores_regulares_na_escala"`
	Tag               string `csv:"tag"`
	SomaTaxas         string `csv:"soma_das_taxas_das_corridas_aceitas"`
}

// ReadFile decodes one CSV export from disk.
func ReadFile(path string) ([]dataset.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a CSV export. The delimiter (comma or semicolon) is sniffed
// from the header line. Exports with the canonical header set take the
// typed gocsv path; anything else falls back to a generic header-mapped
// decode so the schema resolver can handle aliases.
func Read(r io.Reader) ([]dataset.RawRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}
	comma := sniffDelimiter(data)

	if hasCanonicalHeader(data, comma) {
		rows, err := readTyped(data, comma)
		if err == nil {
			return rows, nil
		}
		// Malformed quoting or width; the generic path reports better.
	}
	return readGeneric(data, comma)
}

// sniffDelimiter picks ';' when the header line carries more semicolons
// than commas, mirroring the export variants seen in production.
func sniffDelimiter(data []byte) rune {
	head, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(head, []byte(";")) > bytes.Count(head, []byte(",")) {
		return ';'
	}
	return ','
}

// hasCanonicalHeader reports whether the header line is exactly the
// canonical column spelling, in any order.
func hasCanonicalHeader(data []byte, comma rune) bool {
	head, _, _ := bytes.Cut(data, []byte("\n"))
	fields := strings.Split(strings.TrimRight(string(head), "\r"), string(comma))
	seenDate := false
	for _, f := range fields {
		switch strings.TrimSpace(f) {
		case dataset.ColData:
			seenDate = true
		case dataset.ColPeriodo, dataset.ColPessoa, dataset.ColPessoaID,
			dataset.ColPraca, dataset.ColSubPraca, dataset.ColOfertadas,
			dataset.ColAceitas, dataset.ColRejeitadas, dataset.ColCompletadas,
			dataset.ColAceitasConcluidas, dataset.ColTempoAbsoluto,
			dataset.ColTempoEscalado, dataset.ColDuracaoPeriodo,
			dataset.ColCapacidadeMinima, dataset.ColTag, dataset.ColSomaTaxas:
		default:
			return false
		}
	}
	return seenDate
}

func readTyped(data []byte, comma rune) ([]dataset.RawRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	var records []record
	if err := gocsv.UnmarshalCSV(reader, &records); err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	rows := make([]dataset.RawRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, dataset.RawRow{
			dataset.ColData:              rec.Data,
			dataset.ColPeriodo:           rec.Periodo,
			dataset.ColPessoa:            rec.Pessoa,
			dataset.ColPessoaID:          rec.PessoaID,
			dataset.ColPraca:             rec.Praca,
			dataset.ColSubPraca:          rec.SubPraca,
			dataset.ColOfertadas:         rec.Ofertadas,
			dataset.ColAceitas:           rec.Aceitas,
			dataset.ColRejeitadas:        rec.Rejeitadas,
			dataset.ColCompletadas:       rec.Completadas,
			dataset.ColAceitasConcluidas: rec.AceitasConcluidas,
			dataset.ColTempoAbsoluto:     rec.TempoAbsoluto,
			dataset.ColTempoEscalado:     rec.TempoEscalado,
			dataset.ColDuracaoPeriodo:    rec.DuracaoPeriodo,
			dataset.ColCapacidadeMinima:  rec.CapacidadeMinima,
			dataset.ColTag:               rec.Tag,
			dataset.ColSomaTaxas:         rec.SomaTaxas,
		})
	}
	return rows, nil
}

// readGeneric maps every cell to its raw header so the schema resolver can
// work out aliased column names.
func readGeneric(data []byte, comma rune) ([]dataset.RawRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var rows []dataset.RawRow
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		row := make(dataset.RawRow, len(header))
		for i, h := range header {
			if i < len(cells) {
				row[strings.TrimSpace(h)] = cells[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
