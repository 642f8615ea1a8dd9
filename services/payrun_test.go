package services

import (
	"testing"
	"time"
)

func TestFlattenPayrunMatrix(t *testing.T) {
	rows := []Row{
		{
			"Employer":          "E1",
			"Employee":          "P1",
			"Paytype Item":      "Basic",
			"PR-1 (2024-01-31)": "100",
		},
	}

	entries := FlattenPayrunMatrix(rows)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.EmployerID != "E1" || e.EmployeeID != "P1" || e.TempPaytypeName != "Basic" {
		t.Errorf("identity fields wrong: %+v", e)
	}
	if e.PayrunCode != "PR-1" {
		t.Errorf("PayrunCode = %q, want PR-1", e.PayrunCode)
	}
	if e.Amount != 100 {
		t.Errorf("Amount = %v, want 100", e.Amount)
	}
	if e.Currency != "AED" {
		t.Errorf("Currency = %q, want AED", e.Currency)
	}
	if e.RowNumber != 2 {
		t.Errorf("RowNumber = %d, want 2 (first data row)", e.RowNumber)
	}
	want := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	if e.TempPayrunDate == nil || !e.TempPayrunDate.Equal(want) {
		t.Errorf("TempPayrunDate = %v, want %v", e.TempPayrunDate, want)
	}
}

func TestFlattenPayrunMatrixDropsIncompleteRows(t *testing.T) {
	tests := []struct {
		name string
		row  Row
	}{
		{"missing employer", Row{"Employee": "P1", "Paytype Item": "Basic", "PR-1 (2024-01-31)": "100"}},
		{"missing employee", Row{"Employer": "E1", "Paytype Item": "Basic", "PR-1 (2024-01-31)": "100"}},
		{"missing paytype", Row{"Employer": "E1", "Employee": "P1", "PR-1 (2024-01-31)": "100"}},
		{"whitespace only employer", Row{"Employer": "  ", "Employee": "P1", "Paytype Item": "Basic", "PR-1 (2024-01-31)": "100"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FlattenPayrunMatrix([]Row{tc.row}); len(got) != 0 {
				t.Errorf("expected row to be dropped, got %d entries", len(got))
			}
		})
	}
}

func TestFlattenPayrunMatrixSkipsBadAmounts(t *testing.T) {
	rows := []Row{
		{
			"Employer":          "E1",
			"Employee":          "P1",
			"Paytype Item":      "Basic",
			"PR-1 (2024-01-31)": "0",
			"PR-2 (2024-02-29)": "abc",
			"PR-3 (2024-03-31)": "",
			"PR-4 (2024-04-30)": "1,250.50",
		},
	}

	entries := FlattenPayrunMatrix(rows)
	if len(entries) != 1 {
		t.Fatalf("expected only the parseable amount to survive, got %d entries", len(entries))
	}
	if entries[0].PayrunCode != "PR-4" {
		t.Errorf("PayrunCode = %q, want PR-4", entries[0].PayrunCode)
	}
	if entries[0].Amount != 1250.50 {
		t.Errorf("Amount = %v, want 1250.50 (thousands separator stripped)", entries[0].Amount)
	}
}

func TestFlattenPayrunMatrixUnparseableDate(t *testing.T) {
	rows := []Row{
		{
			"Employer":         "E1",
			"Employee":         "P1",
			"Paytype Item":     "Basic",
			"PR-7 (sometime)":  "50",
			"Extra Notes":      "ignored",
			"PR9 (2024-01-31)": "75", // no dash, not a payrun column
		},
	}

	entries := FlattenPayrunMatrix(rows)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].PayrunCode != "PR-7" {
		t.Errorf("PayrunCode = %q, want PR-7", entries[0].PayrunCode)
	}
	if entries[0].TempPayrunDate != nil {
		t.Errorf("unparseable date should yield nil, got %v", entries[0].TempPayrunDate)
	}
}

func TestFlattenPayrunMatrixDateLayouts(t *testing.T) {
	tests := []struct {
		column string
		want   time.Time
	}{
		{"PR-1 (2024-01-31)", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)},
		{"PR-2 (31/01/2024)", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)},
		{"PR-3 (31 Jan 2024)", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range tests {
		t.Run(tc.column, func(t *testing.T) {
			rows := []Row{{
				"Employer": "E1", "Employee": "P1", "Paytype Item": "Basic",
				tc.column: "10",
			}}
			entries := FlattenPayrunMatrix(rows)
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}
			if entries[0].TempPayrunDate == nil || !entries[0].TempPayrunDate.Equal(tc.want) {
				t.Errorf("date = %v, want %v", entries[0].TempPayrunDate, tc.want)
			}
		})
	}
}

func TestFlattenPayrunMatrixDeterministicOrder(t *testing.T) {
	rows := []Row{
		{
			"Employer":          "E1",
			"Employee":          "P1",
			"Paytype Item":      "Basic",
			"PR-2 (2024-02-29)": "200",
			"PR-1 (2024-01-31)": "100",
		},
	}

	for i := 0; i < 10; i++ {
		entries := FlattenPayrunMatrix(rows)
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].PayrunCode != "PR-1" || entries[1].PayrunCode != "PR-2" {
			t.Fatalf("entries out of order on run %d: %s then %s",
				i, entries[0].PayrunCode, entries[1].PayrunCode)
		}
	}
}

func TestFlattenPayrunMatrixRowNumbers(t *testing.T) {
	rows := []Row{
		{"Employee": "P1"}, // dropped, but still occupies sheet row 2
		{
			"Employer": "E1", "Employee": "P2", "Paytype Item": "Basic",
			"PR-1 (2024-01-31)": "300",
		},
	}

	entries := FlattenPayrunMatrix(rows)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].RowNumber != 3 {
		t.Errorf("RowNumber = %d, want 3 (dropped rows keep their slot)", entries[0].RowNumber)
	}
}
