package ingestion

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParser_ValidLine(t *testing.T) {
	p := NewParser(DefaultDelimiter, FieldCount)

	c, err := p.Parse("T1|2026-01-01|North|Alice|Widget,Pro|2|10.00|20.00")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if c.TransactionID != "T1" {
		t.Errorf("expected transaction id T1, got %q", c.TransactionID)
	}
	if c.Product != "Widget,Pro" {
		t.Errorf("expected raw product %q, got %q", "Widget,Pro", c.Product)
	}
	if c.Quantity != "2" || c.UnitPrice != "10.00" || c.LineTotal != "20.00" {
		t.Errorf("unexpected numeric fields: %q %q %q", c.Quantity, c.UnitPrice, c.LineTotal)
	}
	if c.Line == "" {
		t.Error("expected raw line to be preserved")
	}
}

func TestParser_FieldCountMismatch(t *testing.T) {
	p := NewParser(DefaultDelimiter, FieldCount)

	_, err := p.Parse("T1|2026-01-01|North|Alice|Widget|2|10.00")
	if err == nil {
		t.Fatal("expected error for 7 fields")
	}

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
}

func TestParser_NonNumericField(t *testing.T) {
	p := NewParser(DefaultDelimiter, FieldCount)

	cases := []string{
		"T1|2026-01-01|North|Alice|Widget|two|10.00|20.00",
		"T1|2026-01-01|North|Alice|Widget|2|ten|20.00",
		"T1|2026-01-01|North|Alice|Widget|2|10.00|",
	}
	for _, line := range cases {
		if _, err := p.Parse(line); err == nil {
			t.Errorf("expected error for line %q", line)
		}
	}
}

func TestParser_ThousandsSeparators(t *testing.T) {
	p := NewParser(DefaultDelimiter, FieldCount)

	c, err := p.Parse("T1|2026-01-01|North|Alice|Widget|1,200|1,050.50|1,260,600.00")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	// Raw form survives; cleaning happens in validation.
	if c.Quantity != "1,200" {
		t.Errorf("expected raw quantity %q, got %q", "1,200", c.Quantity)
	}
}

func TestParser_NegativeNumbersParse(t *testing.T) {
	// A negative quantity is a well-formed number; the validator
	// rejects it with its own reason code.
	p := NewParser(DefaultDelimiter, FieldCount)

	if _, err := p.Parse("T2|2026-01-01|South|Bob|Gadget|-1|5.00|-5.00"); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
}

func TestParser_CustomDelimiter(t *testing.T) {
	p := NewParser(";", FieldCount)

	c, err := p.Parse("T1;2026-01-01;North;Alice;Widget;2;10.00;20.00")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if c.Region != "North" {
		t.Errorf("expected region North, got %q", c.Region)
	}
}

func TestStripThousands(t *testing.T) {
	if got := StripThousands("1,234,567.89"); got != "1234567.89" {
		t.Errorf("expected 1234567.89, got %q", got)
	}
}

func TestReadLines_SkipsHeaderAndBlanks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.txt")
	content := "transaction_id|date|region|customer|product|quantity|unit_price|line_total\r\n" +
		"T1|2026-01-01|North|Alice|Widget|2|10.00|20.00\r\n" +
		"\n" +
		"T2|2026-01-02|South|Bob|Gadget|1|5.00|5.00\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 data lines, got %d", len(lines))
	}
	if lines[0] != "T1|2026-01-01|North|Alice|Widget|2|10.00|20.00" {
		t.Errorf("unexpected first line: %q", lines[0])
	}
}

func TestReadLines_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}

	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines failed: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("expected no lines, got %d", len(lines))
	}
}

func TestReadLines_MissingFile(t *testing.T) {
	if _, err := ReadLines(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
