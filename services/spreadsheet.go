package services

import (
	"errors"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrEmptySheet = errors.New("spreadsheet has no data rows")

// ReadSheetRows reads the first sheet of an xlsx file and maps each data
// row onto the header row. The first non-empty row is taken as the header;
// rows with no non-empty cell are skipped. Validation of the resulting
// values happens downstream (flattening, dedup), not here.
func ReadSheetRows(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	var headers []string
	out := []Row{}
	for _, cells := range rows {
		trimmed := make([]string, len(cells))
		empty := true
		for i, c := range cells {
			trimmed[i] = strings.TrimSpace(c)
			if trimmed[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		if headers == nil {
			headers = trimmed
			continue
		}

		row := Row{}
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(trimmed) {
				row[h] = trimmed[i]
			} else {
				row[h] = ""
			}
		}
		out = append(out, row)
	}

	if headers == nil {
		return nil, ErrEmptySheet
	}
	return out, nil
}
