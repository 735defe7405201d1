// Command genmock regenerates the golden forecast fixtures from the bulletin
// text fixtures. It runs the real domain parser and converter under a frozen
// clock so the output is reproducible.
//
// Usage:
//
//	go run ./cmd/genmock -dir internal/domain/testdata
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-bulletin-etl/internal/domain"
)

// frozenTime stamps FetchedAt and ProcessedAt in every fixture.
var frozenTime = time.Date(2021, time.May, 22, 16, 10, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dir := flag.String("dir", "internal/domain/testdata", "directory holding bulletin .txt fixtures")
	flag.Parse()

	paths, err := filepath.Glob(filepath.Join(*dir, "*.txt"))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no .txt fixtures in %s", *dir)
	}

	domain.SetClock(clockwork.NewFakeClockAt(frozenTime))
	defer domain.SetClock(nil)

	for _, path := range paths {
		out, storms, err := generate(path)
		if err != nil {
			return fmt.Errorf("processing %s: %w", filepath.Base(path), err)
		}
		log.Printf("wrote %s (%d storms: %s)", out, len(storms), strings.Join(storms, ", "))
	}
	return nil
}

func generate(path string) (string, []string, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}

	f, err := domain.BuildForecast(domain.NewRawBulletin(filepath.Base(path), string(text), frozenTime))
	if err != nil {
		return "", nil, err
	}

	out := strings.TrimSuffix(path, ".txt") + ".golden.json"
	if err := writeJSON(out, f); err != nil {
		return "", nil, err
	}
	return out, f.Storms.Names(), nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
