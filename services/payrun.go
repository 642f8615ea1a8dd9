package services

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"opsdesk/models"
)

// Payrun amount columns are named like "PR-12 (2024-01-31)". Everything
// else is treated as an identity column.
var payrunColumnRe = regexp.MustCompile(`^(PR-\d+)\s*\((.+)\)$`)

const payrunCurrency = "AED"

var payrunDateLayouts = []string{
	time.DateOnly,
	"02/01/2006",
	"2 Jan 2006",
}

func parsePayrunDate(fragment string) *time.Time {
	fragment = strings.TrimSpace(fragment)
	for _, layout := range payrunDateLayouts {
		if d, err := time.Parse(layout, fragment); err == nil {
			return &d
		}
	}
	return nil
}

func parsePayrunAmount(raw string) (float64, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0, false
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || amount == 0 {
		return 0, false
	}
	return amount, true
}

// FlattenPayrunMatrix converts a wide payrun sheet (one column per payrun
// date) into normalized long-form entries. Rows missing Employer, Employee
// or Paytype Item are dropped entirely; within a kept row, unparseable or
// zero amounts are skipped silently. Unparseable dates yield a nil payrun
// date rather than aborting the row. RowNumber aligns with the sheet's
// visible numbering (header row + 1-based index).
func FlattenPayrunMatrix(rows []Row) []models.TempPayrunEntry {
	out := []models.TempPayrunEntry{}
	for idx, row := range rows {
		employer := strings.TrimSpace(row["Employer"])
		employee := strings.TrimSpace(row["Employee"])
		paytype := strings.TrimSpace(row["Paytype Item"])
		if employer == "" || employee == "" || paytype == "" {
			continue
		}

		columns := make([]string, 0, len(row))
		for column := range row {
			columns = append(columns, column)
		}
		sort.Strings(columns)

		for _, column := range columns {
			m := payrunColumnRe.FindStringSubmatch(strings.TrimSpace(column))
			if m == nil {
				continue
			}
			amount, ok := parsePayrunAmount(row[column])
			if !ok {
				continue
			}
			out = append(out, models.TempPayrunEntry{
				EmployerID:      employer,
				EmployeeID:      employee,
				TempPaytypeName: paytype,
				PayrunCode:      m[1],
				TempPayrunDate:  parsePayrunDate(m[2]),
				Amount:          amount,
				Currency:        payrunCurrency,
				RowNumber:       idx + 2,
			})
		}
	}
	return out
}
