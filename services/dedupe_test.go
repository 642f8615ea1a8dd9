package services

import (
	"testing"
	"time"

	"opsdesk/models"
)

func TestRowSignature(t *testing.T) {
	keys := []string{"employer_id", "employee_id", "payrun_code"}

	tests := []struct {
		name string
		row  Row
		want string
	}{
		{
			name: "all fields present lowercased",
			row:  Row{"employer_id": "E1", "employee_id": "P1", "payrun_code": "PR-1"},
			want: "e1|p1|pr-1",
		},
		{
			name: "missing employer gets sentinel",
			row:  Row{"employee_id": "P1", "payrun_code": "PR-1"},
			want: "NO_EMPLOYER|p1|pr-1",
		},
		{
			name: "empty employer gets sentinel",
			row:  Row{"employer_id": "  ", "employee_id": "P1", "payrun_code": "PR-1"},
			want: "NO_EMPLOYER|p1|pr-1",
		},
		{
			name: "other missing fields get EMPTY",
			row:  Row{"employer_id": "E1"},
			want: "e1|EMPTY|EMPTY",
		},
		{
			name: "values trimmed before lowercasing",
			row:  Row{"employer_id": " E1 ", "employee_id": "P1", "payrun_code": "PR-1"},
			want: "e1|p1|pr-1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := RowSignature(tc.row, keys)
			if got != tc.want {
				t.Errorf("RowSignature() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRowSignatureCaseInsensitive(t *testing.T) {
	keys := []string{"employer_id", "employee_id"}
	a := Row{"employer_id": "ACME", "employee_id": "Jane"}
	b := Row{"employer_id": "acme", "employee_id": "JANE"}
	if RowSignature(a, keys) != RowSignature(b, keys) {
		t.Errorf("signatures differ for case-variant rows: %q vs %q",
			RowSignature(a, keys), RowSignature(b, keys))
	}
}

func TestCheckForDuplicatesPartition(t *testing.T) {
	keys := []string{"Number", "Customer"}
	existing := []Row{
		{"Number": "Q-100", "Customer": "Acme"},
	}
	incoming := []Row{
		{"Number": "Q-100", "Customer": "acme"}, // dup of existing, case-insensitive
		{"Number": "Q-101", "Customer": "Acme"},
		{"Number": "Q-102", "Customer": "Globex"},
	}

	result := CheckForDuplicates(incoming, existing, keys)

	if len(result.Duplicates)+len(result.Unique) != len(incoming) {
		t.Fatalf("partition lost rows: %d dup + %d unique != %d in",
			len(result.Duplicates), len(result.Unique), len(incoming))
	}
	if len(result.Duplicates) != 1 {
		t.Fatalf("expected 1 duplicate, got %d", len(result.Duplicates))
	}
	if result.Duplicates[0].RowNumber != 2 {
		t.Errorf("first data row should be row_number 2, got %d", result.Duplicates[0].RowNumber)
	}
	if len(result.Unique) != 2 {
		t.Fatalf("expected 2 unique rows, got %d", len(result.Unique))
	}
}

func TestCheckForDuplicatesBatchInternalDupsPass(t *testing.T) {
	// Dedup is against the existing set only; two identical rows inside
	// one batch both come back as unique.
	keys := []string{"Number"}
	incoming := []Row{
		{"Number": "Q-1"},
		{"Number": "Q-1"},
	}
	result := CheckForDuplicates(incoming, nil, keys)
	if len(result.Unique) != 2 || len(result.Duplicates) != 0 {
		t.Errorf("expected both rows unique, got %d unique / %d dup",
			len(result.Unique), len(result.Duplicates))
	}
}

func TestCheckForDuplicatesIdempotent(t *testing.T) {
	keys := []string{"Number", "Customer"}
	incoming := []Row{
		{"Number": "Q-200", "Customer": "Acme"},
		{"Number": "Q-201", "Customer": "Globex"},
	}

	first := CheckForDuplicates(incoming, nil, keys)
	if len(first.Unique) != 2 {
		t.Fatalf("first pass should accept all rows, got %d", len(first.Unique))
	}

	// Re-importing the same batch against the now-stored rows rejects all.
	second := CheckForDuplicates(incoming, first.Unique, keys)
	if len(second.Unique) != 0 {
		t.Errorf("second pass should reject all rows, got %d unique", len(second.Unique))
	}
	if len(second.Duplicates) != 2 {
		t.Errorf("second pass should flag all rows, got %d duplicates", len(second.Duplicates))
	}
}

func TestCheckForTempPayrunDuplicates(t *testing.T) {
	date := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	otherDate := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)

	existing := []models.TempPayrunEntry{
		{EmployerID: "E1", EmployeeID: "P1", TempPaytypeName: "Basic", PayrunCode: "PR-1", TempPayrunDate: &date},
	}
	entries := []models.TempPayrunEntry{
		{EmployerID: "E1", EmployeeID: "P1", TempPaytypeName: "Basic", PayrunCode: "PR-1", TempPayrunDate: &date, RowNumber: 2},
		{EmployerID: "E1", EmployeeID: "P1", TempPaytypeName: "Basic", PayrunCode: "PR-1", TempPayrunDate: &otherDate, RowNumber: 2},
		{EmployerID: "", EmployeeID: "P1", TempPaytypeName: "Basic", PayrunCode: "PR-1", TempPayrunDate: &date, RowNumber: 3},
	}

	result := CheckForTempPayrunDuplicates(entries, existing)

	if len(result.Duplicates) != 1 {
		t.Fatalf("expected 1 duplicate, got %d", len(result.Duplicates))
	}
	if result.Duplicates[0].RowNumber != 2 {
		t.Errorf("duplicate should carry its source row number, got %d", result.Duplicates[0].RowNumber)
	}
	// A different payrun date is a different entry, and a missing employer
	// dedupes under its own sentinel rather than colliding.
	if len(result.Unique) != 2 {
		t.Fatalf("expected 2 unique entries, got %d", len(result.Unique))
	}
}

func TestPayrunEntryRowNilDate(t *testing.T) {
	entry := models.TempPayrunEntry{
		EmployerID: "E1", EmployeeID: "P1", TempPaytypeName: "Basic", PayrunCode: "PR-9",
	}
	row := payrunEntryRow(entry)
	if row["temp_payrun_date"] != "" {
		t.Errorf("nil date should map to empty string, got %q", row["temp_payrun_date"])
	}
	sig := RowSignature(row, payrunUniqueKeys)
	if sig != "e1|p1|basic|pr-9|EMPTY" {
		t.Errorf("unexpected signature for nil-date entry: %q", sig)
	}
}
