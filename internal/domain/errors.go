package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrExtraction is matched by every *ExtractionError.
	ErrExtraction = errors.New("storm name extraction failed")

	// ErrMalformedRecord is matched by every *MalformedRecordError.
	ErrMalformedRecord = errors.New("malformed storm record")

	// ErrConversion is returned when a raw token cannot be converted to a number.
	ErrConversion = errors.New("storm record conversion failed")
)

// ExtractionError reports a storm-start line that contains nothing but
// storm-type prefixes, so no name can be taken from it.
type ExtractionError struct {
	Line int // 1-based line number in the bulletin
	Text string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("line %d: no storm name in %q", e.Line, e.Text)
}

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// MalformedRecordError reports a finalized record whose field sequences have
// different lengths after accounting for dissipation rows.
type MalformedRecordError struct {
	Storm   string
	Lengths map[string]int
}

func (e *MalformedRecordError) Error() string {
	names := make([]string, 0, len(e.Lengths))
	for name := range e.Lengths {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, e.Lengths[name]))
	}
	return fmt.Sprintf("storm %s: ragged fields (%s)", e.Storm, strings.Join(parts, " "))
}

func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }
