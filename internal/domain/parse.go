package domain

import (
	"strconv"
	"strings"
)

// stormPrefixes are the words that open a storm block.
var stormPrefixes = map[string]bool{
	"TROPICAL":   true,
	"STORM":      true,
	"DEPRESSION": true,
	"HURRICANE":  true,
}

// stormDataMarkers are the first words of lines that belong to the storm
// block being read.
var stormDataMarkers = map[string]bool{
	"":               true,
	"ATCF":           true,
	"LEAD":           true,
	"VERIFYING":      true,
	"--------------": true,
	"1200UTC":        true,
	"0000UTC":        true,
}

const (
	footerWord    = "THIS"
	separatorWord = "FORECAST"
	unnamedWord   = "NEW"
	unnamedPrefix = "NEW_"
)

type scanState int

const (
	scanIdle scanState = iota
	scanInStorm
)

// scanner holds the state of one ParseBulletin call.
type scanner struct {
	state   scanState
	name    string
	record  StormRecord
	unnamed int
	result  ParseResult
}

// ParseBulletin scans bulletin lines into per-storm records. Blank lines are
// skipped. Scanning stops at the "THIS ..." footer; a storm still open at the
// end of input is kept.
func ParseBulletin(lines []string) (ParseResult, error) {
	s := &scanner{}
	for i, raw := range lines {
		words := strings.Fields(raw)
		if len(words) == 0 {
			continue
		}
		done, err := s.step(i+1, raw, words)
		if err != nil {
			return ParseResult{}, err
		}
		if done {
			return s.result, nil
		}
	}

	if s.state == scanInStorm {
		if err := s.finalize(); err != nil {
			return ParseResult{}, err
		}
	}
	return s.result, nil
}

// step dispatches one non-blank line. It reports done once the footer is seen.
func (s *scanner) step(lineNo int, raw string, words []string) (bool, error) {
	switch s.state {
	case scanIdle:
		if stormPrefixes[words[0]] {
			return false, s.begin(lineNo, raw, words)
		}
		return false, nil

	case scanInStorm:
		if stormDataMarkers[words[0]] {
			s.readData(words)
			return false, nil
		}
		switch words[0] {
		case separatorWord:
			return false, nil
		case footerWord:
			return true, s.finalize()
		}
		if err := s.finalize(); err != nil {
			return false, err
		}
		return false, s.begin(lineNo, raw, words)
	}
	return false, nil
}

// begin opens a new storm block from a storm-start line.
func (s *scanner) begin(lineNo int, raw string, words []string) error {
	name, err := s.extractName(lineNo, raw, words)
	if err != nil {
		return err
	}
	s.name = name
	s.record = newStormRecord()
	s.state = scanInStorm
	return nil
}

// extractName returns the first word that is not a storm-type prefix,
// synthesizing NEW_<n> for systems forecast to develop.
func (s *scanner) extractName(lineNo int, raw string, words []string) (string, error) {
	for _, w := range words {
		if stormPrefixes[w] {
			continue
		}
		if w == unnamedWord {
			s.unnamed++
			return unnamedPrefix + strconv.Itoa(s.unnamed), nil
		}
		return w, nil
	}
	return "", &ExtractionError{Line: lineNo, Text: strings.TrimSpace(raw)}
}

// finalize stores the open record under the current storm name.
func (s *scanner) finalize() error {
	if err := s.record.validate(s.name); err != nil {
		return err
	}
	s.result.put(s.name, s.record)
	return nil
}

// readData applies a storm-data line to the open record.
func (s *scanner) readData(words []string) {
	if words[0] == "ATCF" {
		if len(words) > 3 && s.record.ID == "" {
			s.record.ID = words[3]
		}
		return
	}
	if !strings.Contains(words[0], "UTC") {
		return
	}

	for i, w := range words {
		f := Field(i)
		if f >= numFields {
			break
		}
		switch {
		case f == FieldLat && (w == "POST-TROPICAL" || w == "CEASED"):
			if n := len(s.record.LeadTime); n > 0 {
				s.record.LeadTime = s.record.LeadTime[:n-1]
			}
			s.record.TerminalRows++
		case f == FieldLon && w == "TRACKING":
		default:
			col := s.record.column(f)
			*col = append(*col, w)
		}
	}
}
