// Command seed writes a deterministic synthetic delivery dataset in the
// production export format.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mbaleato/rota/internal/seed"
)

func main() {
	var (
		out    = flag.String("out", "dataset.csv", "output CSV path")
		people = flag.Int("people", 40, "number of delivery people")
		days   = flag.Int("days", 30, "number of days")
		start  = flag.String("start", "2025-12-01", "first date (YYYY-MM-DD)")
		seedV  = flag.Int64("seed", 42, "rng seed")
	)
	flag.Parse()

	startDate, err := time.Parse("2006-01-02", *start)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid -start:", err)
		os.Exit(1)
	}

	records := seed.Generate(seed.Options{
		People: *people,
		Days:   *days,
		Start:  startDate,
		Seed:   *seedV,
	})

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintln(os.Stderr, "create output:", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := seed.WriteCSV(f, records); err != nil {
		fmt.Fprintln(os.Stderr, "write csv:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d rows to %s\n", len(records), *out)
}
