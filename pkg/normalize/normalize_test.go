package normalize

import (
	"testing"

	"github.com/ritzau/graph-explorer/pkg/model"
)

func row(modelName, from, rel, to, experiment string) model.RawRow {
	return model.RawRow{
		"model":        modelName,
		"from_node":    from,
		"relationship": rel,
		"to_node":      to,
		"experiment":   experiment,
	}
}

func TestRowComplete(t *testing.T) {
	candidate, ok := Row(row("sys", "a", "calls", "b", "exp1"), model.DefaultHeaders())
	if !ok {
		t.Fatal("complete row was rejected")
	}

	if candidate.Source != "sys:a" {
		t.Errorf("Expected source sys:a, got %s", candidate.Source)
	}
	if candidate.Target != "sys:b" {
		t.Errorf("Expected target sys:b, got %s", candidate.Target)
	}
	if candidate.Relationship != "calls" {
		t.Errorf("Expected relationship calls, got %s", candidate.Relationship)
	}
	if candidate.Experiment != "exp1" {
		t.Errorf("Expected experiment exp1, got %s", candidate.Experiment)
	}
}

func TestRowMissingRequiredField(t *testing.T) {
	tests := []struct {
		name string
		row  model.RawRow
	}{
		{"missing model", row("", "a", "calls", "b", "exp1")},
		{"missing from_node", row("sys", "", "calls", "b", "exp1")},
		{"missing relationship", row("sys", "a", "", "b", "exp1")},
		{"missing to_node", row("sys", "a", "calls", "", "exp1")},
		{"absent columns", model.RawRow{"model": "sys"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := Row(tt.row, model.DefaultHeaders()); ok {
				t.Errorf("Expected row %v to be rejected", tt.row)
			}
		})
	}
}

func TestRowEmptyExperiment(t *testing.T) {
	candidate, ok := Row(row("sys", "a", "calls", "b", ""), model.DefaultHeaders())
	if !ok {
		t.Fatal("row with empty experiment was rejected")
	}
	if candidate.Experiment != model.UndefinedExperiment {
		t.Errorf("Expected experiment %q, got %q", model.UndefinedExperiment, candidate.Experiment)
	}
}

func TestRowSeparatorInNodeName(t *testing.T) {
	// The separator may appear inside node names; it must survive into
	// the derived id unchanged.
	candidate, ok := Row(row("sys", "a:b", "calls", "c", "exp1"), model.DefaultHeaders())
	if !ok {
		t.Fatal("row was rejected")
	}
	if candidate.Source != "sys:a:b" {
		t.Errorf("Expected source sys:a:b, got %s", candidate.Source)
	}
}

func TestRowCustomHeaders(t *testing.T) {
	headers := model.HeaderConfig{
		Model:        "m",
		FromNode:     "src",
		Relationship: "rel",
		ToNode:       "dst",
		Experiment:   "exp",
	}
	raw := model.RawRow{"m": "sys", "src": "a", "rel": "calls", "dst": "b", "exp": "exp1"}

	candidate, ok := Row(raw, headers)
	if !ok {
		t.Fatal("row was rejected")
	}
	if candidate.Source != "sys:a" || candidate.Target != "sys:b" {
		t.Errorf("Unexpected candidate %+v", candidate)
	}
}

func TestRowsDropsInvalidKeepsValid(t *testing.T) {
	rows := []model.RawRow{
		row("sys", "a", "calls", "b", "exp1"),
		row("", "a", "calls", "b", "exp1"), // rejected
		row("sys", "b", "calls", "c", ""),
	}

	candidates := Rows(rows, model.DefaultHeaders())
	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Source != "sys:a" || candidates[1].Source != "sys:b" {
		t.Errorf("Candidates out of order: %+v", candidates)
	}
}

func TestRowsAllInvalid(t *testing.T) {
	rows := []model.RawRow{
		row("", "a", "calls", "b", ""),
		row("sys", "", "", "", ""),
	}

	candidates := Rows(rows, model.DefaultHeaders())
	if len(candidates) != 0 {
		t.Errorf("Expected no candidates, got %d", len(candidates))
	}
}
