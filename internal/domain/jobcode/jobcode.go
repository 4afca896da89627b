// Package jobcode generates and parses the human-facing business
// identifier assigned to every project: WK{YY}-{SSSS}-{MMDD}. The
// sequence segment comes from a year-scoped atomic allocator, so codes
// never collide or skip under concurrent creation.
package jobcode

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/port"
)

// Prefix is the fixed company prefix of every job code.
const Prefix = "WK"

// ErrInvalidCode is returned when an identifier cannot be parsed.
var ErrInvalidCode = errors.New("invalid job code")

// ValidationError carries the rejected input and the reason.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid job code %q: %s", e.Input, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidCode
}

// Code is a parsed job code.
type Code struct {
	Year     int
	Sequence int64
	Month    time.Month
	Day      int
}

// String formats the code as WK{YY}-{SSSS}-{MMDD}.
func (c Code) String() string {
	return fmt.Sprintf("%s%02d-%04d-%02d%02d", Prefix, c.Year%100, c.Sequence, int(c.Month), c.Day)
}

var codePattern = regexp.MustCompile(`^` + Prefix + `(\d{2})-(\d{4,})-(\d{2})(\d{2})$`)

// Parse is the exact inverse of Generate for any code it produced.
// Malformed input yields a *ValidationError wrapping ErrInvalidCode.
func Parse(s string) (Code, error) {
	m := codePattern.FindStringSubmatch(s)
	if m == nil {
		return Code{}, &ValidationError{Input: s, Reason: "must match " + Prefix + "YY-SSSS-MMDD"}
	}

	yy, _ := strconv.Atoi(m[1])
	seq, _ := strconv.ParseInt(m[2], 10, 64)
	month, _ := strconv.Atoi(m[3])
	day, _ := strconv.Atoi(m[4])

	if seq < 1 {
		return Code{}, &ValidationError{Input: s, Reason: "sequence must be positive"}
	}
	if month < 1 || month > 12 {
		return Code{}, &ValidationError{Input: s, Reason: "month out of range"}
	}
	if day < 1 || day > 31 {
		return Code{}, &ValidationError{Input: s, Reason: "day out of range"}
	}

	return Code{
		Year:     2000 + yy,
		Sequence: seq,
		Month:    time.Month(month),
		Day:      day,
	}, nil
}

// Generator allocates new job codes against a sequence allocator.
type Generator struct {
	sequences port.SequenceAllocator
}

// NewGenerator creates a new job code generator
func NewGenerator(sequences port.SequenceAllocator) *Generator {
	return &Generator{sequences: sequences}
}

// Generate allocates the next sequence number in the year scope derived
// from date and formats the identifier. The first call of a new year
// starts that year's counter at 1.
func (g *Generator) Generate(ctx context.Context, date time.Time) (string, error) {
	scope := strconv.Itoa(date.Year())

	seq, err := g.sequences.Next(ctx, scope)
	if err != nil {
		return "", fmt.Errorf("allocate job code sequence: %w", err)
	}

	code := Code{
		Year:     date.Year(),
		Sequence: seq,
		Month:    date.Month(),
		Day:      date.Day(),
	}
	return code.String(), nil
}
