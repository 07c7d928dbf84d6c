// Package csvio parses delimited text into header-mapped rows.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/ritzau/graph-explorer/pkg/logging"
	"github.com/ritzau/graph-explorer/pkg/model"
)

// DefaultDelimiter separates fields in the expected dataset format.
const DefaultDelimiter = ';'

// ErrParse marks structural CSV errors. A parse failure aborts the
// whole load; no partial row set is returned.
var ErrParse = errors.New("malformed csv")

// ReadRows parses the input into rows keyed by the names of the header
// row. Empty lines are skipped and rows may have fewer fields than the
// header; completeness is checked downstream per row. Input with no
// header row yields no rows.
func ReadRows(r io.Reader, delimiter rune) ([]model.RawRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrParse, err)
	}
	columns := append([]string(nil), header...)

	var rows []model.RawRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}

		row := make(model.RawRow, len(columns))
		for i, name := range columns {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}

	logging.Debug("parsed csv", "rows", len(rows), "columns", len(columns))
	return rows, nil
}
