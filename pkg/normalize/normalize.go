// Package normalize validates raw CSV rows and maps them to edge
// candidates. A row missing any required field is dropped with a
// diagnostic; dropped rows never abort a batch.
package normalize

import (
	"github.com/ritzau/graph-explorer/pkg/logging"
	"github.com/ritzau/graph-explorer/pkg/model"
)

// Row maps one raw row to an edge candidate using the configured header
// names. The second return value is false when the row was rejected.
//
// Node ids are derived as model + ":" + node name. A separator inside
// the node name is kept; only label reconstruction splits on the first
// separator.
func Row(row model.RawRow, headers model.HeaderConfig) (model.EdgeCandidate, bool) {
	modelName := row[headers.Model]
	from := row[headers.FromNode]
	to := row[headers.ToNode]
	relationship := row[headers.Relationship]

	if modelName == "" || from == "" || to == "" || relationship == "" {
		logging.Warn("dropping incomplete row",
			"model", modelName,
			"from", from,
			"to", to,
			"relationship", relationship,
		)
		return model.EdgeCandidate{}, false
	}

	experiment := row[headers.Experiment]
	if experiment == "" {
		experiment = model.UndefinedExperiment
	}

	return model.EdgeCandidate{
		Source:       modelName + model.IDSeparator + from,
		Target:       modelName + model.IDSeparator + to,
		Relationship: relationship,
		Experiment:   experiment,
	}, true
}

// Rows runs Row over every raw row and returns the survivors in input
// order. A batch where every row is rejected yields an empty slice, not
// an error.
func Rows(rows []model.RawRow, headers model.HeaderConfig) []model.EdgeCandidate {
	candidates := make([]model.EdgeCandidate, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		candidate, ok := Row(row, headers)
		if !ok {
			dropped++
			continue
		}
		candidates = append(candidates, candidate)
	}
	if dropped > 0 {
		logging.Info("dropped incomplete rows", "dropped", dropped, "kept", len(candidates))
	}
	return candidates
}
