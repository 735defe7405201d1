// Command earliest lists, for each wind threshold from 35 to 160 kt, the
// calendar-earliest HURDAT2 observation reaching it.
//
// Usage:
//
//	go run ./cmd/earliest -file hurdat2-1851-2020-052921.txt
//	go run ./cmd/earliest -file hurdat2.txt -format yaml
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/storm-bulletin-etl/internal/hurdat"
	"github.com/couchcryptid/storm-bulletin-etl/internal/report"
)

func main() {
	if err := run(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "earliest:", err)
		os.Exit(1)
	}
}

func run(out io.Writer) error {
	file := flag.String("file", "", "HURDAT2 best-track file")
	format := flag.String("format", "table", "output format: table, json or yaml")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -file")
	}
	outFormat, err := report.ParseFormat(*format)
	if err != nil {
		return err
	}

	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	obs, err := hurdat.Parse(f)
	if err != nil {
		return fmt.Errorf("%s: %w", *file, err)
	}
	results := hurdat.EarliestByThreshold(obs, hurdat.DefaultThresholds())

	switch outFormat {
	case report.FormatJSON:
		return report.WriteJSON(out, results)
	case report.FormatYAML:
		return report.WriteYAML(out, results)
	default:
		return report.WriteThresholdTable(out, results)
	}
}
