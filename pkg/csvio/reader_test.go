package csvio

import (
	"errors"
	"strings"
	"testing"
)

func TestReadRowsSemicolon(t *testing.T) {
	input := "model;from_node;relationship;to_node;experiment\n" +
		"m1;a;calls;b;exp1\n" +
		"m1;b;calls;c;exp2\n"

	rows, err := ReadRows(strings.NewReader(input), DefaultDelimiter)
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	if rows[0]["model"] != "m1" || rows[0]["from_node"] != "a" || rows[0]["experiment"] != "exp1" {
		t.Errorf("Unexpected first row: %v", rows[0])
	}
	if rows[1]["to_node"] != "c" {
		t.Errorf("Unexpected second row: %v", rows[1])
	}
}

func TestReadRowsCustomDelimiter(t *testing.T) {
	input := "model,from_node\nm1,a\n"

	rows, err := ReadRows(strings.NewReader(input), ',')
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(rows) != 1 || rows[0]["from_node"] != "a" {
		t.Errorf("Unexpected rows: %v", rows)
	}
}

func TestReadRowsShortRecord(t *testing.T) {
	// Rows may have fewer fields than the header; missing columns are
	// simply absent from the map.
	input := "model;from_node;relationship\nm1;a\n"

	rows, err := ReadRows(strings.NewReader(input), DefaultDelimiter)
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if _, exists := rows[0]["relationship"]; exists {
		t.Error("Did not expect a value for the missing column")
	}
}

func TestReadRowsEmptyInput(t *testing.T) {
	rows, err := ReadRows(strings.NewReader(""), DefaultDelimiter)
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected no rows, got %d", len(rows))
	}
}

func TestReadRowsHeaderOnly(t *testing.T) {
	rows, err := ReadRows(strings.NewReader("model;from_node\n"), DefaultDelimiter)
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected no rows, got %d", len(rows))
	}
}

func TestReadRowsMalformed(t *testing.T) {
	// An unterminated quote is a structural error, not a droppable row
	input := "model;from_node\nm1;\"broken\n"

	_, err := ReadRows(strings.NewReader(input), DefaultDelimiter)
	if err == nil {
		t.Fatal("Expected parse error")
	}
	if !errors.Is(err, ErrParse) {
		t.Errorf("Expected ErrParse, got %v", err)
	}
}
