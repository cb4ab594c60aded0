// Package seed generates deterministic synthetic delivery datasets for
// local runs and load tests. Output mirrors the production export: the
// canonical header set, semicolon-delimited, with the quirks the engine has
// to survive (the -600 sentinel, mixed scaled-availability magnitudes,
// EXCESS tags, missing subareas).
package seed

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
)

// Record is one synthetic export line. Tags match the canonical headers.
type Record struct {
	Data              string `csv:"data"`
	Periodo           string `csv:"periodo"`
	Pessoa            string `csv:"pessoa_entregadora"`
	PessoaID          string `csv:"id_da_pessoa_entregadora"`
	Praca             string `csv:"praca"`
	SubPraca          string `csv:"sub_praca"`
	Ofertadas         int    `csv:"numero_de_corridas_ofertadas"`
	Aceitas           int    `csv:"numero_de_corridas_aceitas"`
	Rejeitadas        int    `csv:"numero_de_corridas_rejeitadas"`
	Completadas       int    `csv:"numero_de_corridas_completadas"`
	AceitasConcluidas int    `csv:"numero_de_pedidos_aceitos_e_concluidos"`
	TempoAbsoluto     string `csv:"tempo_disponivel_absoluto"`
	TempoEscalado     string `csv:"tempo_disponivel_escalado"`
	DuracaoPeriodo    string `csv:"duracao_do_periodo"`
	CapacidadeMinima  string `csv:"numero_minimo_de_entregadores_regulares_na_escala"`
	Tag               string `csv:"tag"`
	SomaTaxas         int64  `csv:"soma_das_taxas_das_corridas_aceitas"`
}

// Options shape the generated dataset.
type Options struct {
	People int
	Days   int
	Start  time.Time
	Seed   int64
}

var (
	firstNames = []string{"João", "Maria", "José", "Ana", "António", "Conceição", "Luís", "Fátima", "Sérgio", "Verônica"}
	lastNames  = []string{"Silva", "Santos", "Oliveira", "Souza", "Gonçalves", "Araújo", "Pereira", "Ribeiro"}
	shifts     = []string{"MANHA", "TARDE", "NOITE"}
	subareas   = []string{"CENTRO", "ZONA SUL", "ZONA LESTE", ""}
)

// Generate produces a deterministic synthetic dataset.
func Generate(opts Options) []Record {
	if opts.People <= 0 {
		opts.People = 40
	}
	if opts.Days <= 0 {
		opts.Days = 30
	}
	if opts.Start.IsZero() {
		opts.Start = time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	type person struct {
		name string
		id   string
	}
	people := make([]person, opts.People)
	for i := range people {
		people[i] = person{
			name: fmt.Sprintf("%s %s", firstNames[rng.Intn(len(firstNames))], lastNames[rng.Intn(len(lastNames))]),
			id:   uuid.NewSHA1(uuid.NameSpaceOID, []byte(strconv.Itoa(i))).String(),
		}
	}

	var out []Record
	for day := 0; day < opts.Days; day++ {
		date := opts.Start.AddDate(0, 0, day).Format("2006-01-02")
		for _, p := range people {
			// Not everyone works every day.
			if rng.Float64() < 0.25 {
				continue
			}
			shift := shifts[rng.Intn(len(shifts))]
			offered := rng.Intn(40)
			accepted := 0
			if offered > 0 {
				accepted = rng.Intn(offered + 1)
			}
			completed := 0
			if accepted > 0 {
				completed = rng.Intn(accepted + 1)
			}
			rec := Record{
				Data:              date,
				Periodo:           shift,
				Pessoa:            p.name,
				PessoaID:          p.id,
				Praca:             "SAO PAULO",
				SubPraca:          subareas[rng.Intn(len(subareas))],
				Ofertadas:         offered,
				Aceitas:           accepted,
				Rejeitadas:        offered - accepted,
				Completadas:       completed,
				AceitasConcluidas: completed,
				SomaTaxas:         int64(completed) * int64(350+rng.Intn(400)), // cents
			}
			switch {
			case rng.Float64() < 0.05:
				rec.TempoAbsoluto = "-600" // sentinel line
			case rng.Float64() < 0.05:
				rec.TempoAbsoluto = strconv.Itoa(rng.Intn(599)) // below threshold
			default:
				secs := 3600 + rng.Intn(5*3600)
				rec.TempoAbsoluto = strconv.Itoa(secs)
			}
			// The scaled field shows up in three magnitudes historically;
			// emit one band per third of the date range.
			frac := 0.3 + rng.Float64()*0.7
			switch day * 3 / opts.Days {
			case 0:
				rec.TempoEscalado = strconv.FormatFloat(frac, 'f', 3, 64)
			case 1:
				rec.TempoEscalado = strconv.FormatFloat(frac*100, 'f', 1, 64)
			default:
				rec.TempoEscalado = strconv.FormatFloat(frac*10000, 'f', 0, 64)
			}
			rec.DuracaoPeriodo = "06:00:00"
			if rng.Float64() < 0.9 {
				rec.CapacidadeMinima = strconv.Itoa(10 + rng.Intn(10))
			}
			if rng.Float64() < 0.04 {
				rec.Tag = "EXCESS"
			}
			out = append(out, rec)
		}
	}
	return out
}

// WriteCSV emits the records in the production export format.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	cw.UseCRLF = true
	return gocsv.MarshalCSV(&records, cw)
}
