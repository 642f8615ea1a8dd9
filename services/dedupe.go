package services

import (
	"strings"
	"time"

	"opsdesk/models"
)

// Row is one spreadsheet row keyed by header name. Values arrive as strings
// from the sheet reader; normalization happens when signatures are built.
type Row map[string]string

const (
	// Employee rows without an employer association must dedupe among
	// themselves, not collide with rows whose other fields happen to be
	// empty too. Hence a dedicated sentinel for employer_id.
	sentinelNoEmployer = "NO_EMPLOYER"
	sentinelEmpty      = "EMPTY"

	employerIDKey = "employer_id"
)

// RowSignature builds the composite duplicate-detection key for a row:
// the values of uniqueKeys, lower-cased and pipe-joined, in key order.
// A missing or empty employer_id maps to NO_EMPLOYER; any other missing
// or empty field maps to EMPTY.
func RowSignature(row Row, uniqueKeys []string) string {
	parts := make([]string, 0, len(uniqueKeys))
	for _, key := range uniqueKeys {
		val := strings.TrimSpace(row[key])
		if val == "" {
			if key == employerIDKey {
				parts = append(parts, sentinelNoEmployer)
			} else {
				parts = append(parts, sentinelEmpty)
			}
			continue
		}
		parts = append(parts, strings.ToLower(val))
	}
	return strings.Join(parts, "|")
}

// DuplicateRow is a rejected incoming row together with its
// spreadsheet-visible row number (header + 1-based index).
type DuplicateRow struct {
	Row       Row    `json:"row"`
	RowNumber int    `json:"row_number"`
	Signature string `json:"signature"`
}

// DedupeResult partitions an incoming batch: every row ends up in exactly
// one of the two slices.
type DedupeResult struct {
	Duplicates []DuplicateRow `json:"duplicates"`
	Unique     []Row          `json:"unique"`
}

// CheckForDuplicates classifies rows against an existing reference set by
// composite signature. Single pass over each input, set membership only.
func CheckForDuplicates(rows []Row, existing []Row, uniqueKeys []string) DedupeResult {
	seen := make(map[string]struct{}, len(existing))
	for _, row := range existing {
		seen[RowSignature(row, uniqueKeys)] = struct{}{}
	}

	result := DedupeResult{
		Duplicates: []DuplicateRow{},
		Unique:     []Row{},
	}
	for idx, row := range rows {
		sig := RowSignature(row, uniqueKeys)
		if _, ok := seen[sig]; ok {
			result.Duplicates = append(result.Duplicates, DuplicateRow{
				Row:       row,
				RowNumber: idx + 2,
				Signature: sig,
			})
			continue
		}
		result.Unique = append(result.Unique, row)
	}
	return result
}

// payrunUniqueKeys is the composite key for temp payrun entries.
var payrunUniqueKeys = []string{employerIDKey, "employee_id", "temp_paytype_name", "payrun_code", "temp_payrun_date"}

func payrunEntryRow(e models.TempPayrunEntry) Row {
	date := ""
	if e.TempPayrunDate != nil {
		date = e.TempPayrunDate.Format(time.DateOnly)
	}
	return Row{
		employerIDKey:       e.EmployerID,
		"employee_id":       e.EmployeeID,
		"temp_paytype_name": e.TempPaytypeName,
		"payrun_code":       e.PayrunCode,
		"temp_payrun_date":  date,
	}
}

// PayrunDuplicate is a rejected payrun entry with its source row number.
type PayrunDuplicate struct {
	Entry     models.TempPayrunEntry `json:"entry"`
	RowNumber int                    `json:"row_number"`
}

// PayrunDedupeResult partitions a flattened payrun batch.
type PayrunDedupeResult struct {
	Duplicates []PayrunDuplicate        `json:"duplicates"`
	Unique     []models.TempPayrunEntry `json:"unique"`
}

// CheckForTempPayrunDuplicates classifies flattened payrun entries against
// the already-stored set, keyed on
// (employer_id, employee_id, temp_paytype_name, payrun_code, temp_payrun_date).
func CheckForTempPayrunDuplicates(entries []models.TempPayrunEntry, existing []models.TempPayrunEntry) PayrunDedupeResult {
	seen := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		seen[RowSignature(payrunEntryRow(e), payrunUniqueKeys)] = struct{}{}
	}

	result := PayrunDedupeResult{
		Duplicates: []PayrunDuplicate{},
		Unique:     []models.TempPayrunEntry{},
	}
	for _, e := range entries {
		if _, ok := seen[RowSignature(payrunEntryRow(e), payrunUniqueKeys)]; ok {
			result.Duplicates = append(result.Duplicates, PayrunDuplicate{Entry: e, RowNumber: e.RowNumber})
			continue
		}
		result.Unique = append(result.Unique, e)
	}
	return result
}
