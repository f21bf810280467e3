package ingestion

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"sales-analytics/internal/domain"
)

// FieldCount is the fixed column count of the input format:
// transaction_id, date, region, customer, product, quantity, unit_price, line_total.
const FieldCount = 8

// DefaultDelimiter separates fields on an input line.
const DefaultDelimiter = "|"

// ParseError describes why a line could not be parsed into a Candidate.
// Every parse failure maps to the MALFORMED_ROW rejection reason.
type ParseError struct {
	Line  string
	Field string
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed row: %s", e.Msg)
	}
	return fmt.Sprintf("malformed row: field %s: %s", e.Field, e.Msg)
}

// Parser splits raw delimited lines into Candidates.
// Pure: no state, no side effects.
type Parser struct {
	delimiter  string
	fieldCount int
}

// NewParser creates a parser for the given delimiter and expected field count.
func NewParser(delimiter string, fieldCount int) *Parser {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	if fieldCount <= 0 {
		fieldCount = FieldCount
	}
	return &Parser{delimiter: delimiter, fieldCount: fieldCount}
}

// Parse turns one raw line into a Candidate, or a *ParseError when the
// field count does not match or a numeric field is not a plausible
// number after removing thousands-separator commas. All Candidate
// fields stay in raw string form; cleaning belongs to the Validator.
func (p *Parser) Parse(line string) (*domain.Candidate, error) {
	fields := strings.Split(line, p.delimiter)
	if len(fields) != p.fieldCount {
		return nil, &ParseError{
			Line: line,
			Msg:  fmt.Sprintf("expected %d fields, got %d", p.fieldCount, len(fields)),
		}
	}

	c := &domain.Candidate{
		Line:          line,
		TransactionID: strings.TrimSpace(fields[0]),
		Date:          strings.TrimSpace(fields[1]),
		Region:        strings.TrimSpace(fields[2]),
		Customer:      strings.TrimSpace(fields[3]),
		Product:       strings.TrimSpace(fields[4]),
		Quantity:      strings.TrimSpace(fields[5]),
		UnitPrice:     strings.TrimSpace(fields[6]),
		LineTotal:     strings.TrimSpace(fields[7]),
	}

	// Numeric fields must at least tokenize as numbers.
	for _, f := range []struct{ name, value string }{
		{"quantity", c.Quantity},
		{"unit_price", c.UnitPrice},
		{"line_total", c.LineTotal},
	} {
		if !plausibleNumber(f.value) {
			return nil, &ParseError{
				Line:  line,
				Field: f.name,
				Msg:   fmt.Sprintf("%q is not a number", f.value),
			}
		}
	}

	return c, nil
}

// plausibleNumber reports whether s parses as a decimal number once
// thousands-separator commas are removed. Sign is allowed here: a
// negative quantity is a well-formed number that the Validator rejects
// with its own reason code.
func plausibleNumber(s string) bool {
	s = StripThousands(s)
	if s == "" {
		return false
	}
	_, err := decimal.NewFromString(s)
	return err == nil
}

// StripThousands removes thousands-separator commas from numeric text.
func StripThousands(s string) string {
	return strings.ReplaceAll(s, ",", "")
}
