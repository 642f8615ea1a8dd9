package services

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildSheet(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, cells := range rows {
		for j, v := range cells {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf
}

func TestReadSheetRows(t *testing.T) {
	buf := buildSheet(t, [][]any{
		{"Employer", "Employee", "Paytype Item", "PR-1 (2024-01-31)"},
		{"E1", "P1", "Basic", "100"},
		{}, // blank row, skipped
		{"E2", "P2", "Overtime", ""},
	})

	rows, err := ReadSheetRows(buf)
	if err != nil {
		t.Fatalf("ReadSheetRows returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(rows))
	}
	if rows[0]["Employer"] != "E1" || rows[0]["PR-1 (2024-01-31)"] != "100" {
		t.Errorf("first row mapped wrong: %v", rows[0])
	}
	if rows[1]["PR-1 (2024-01-31)"] != "" {
		t.Errorf("short row should backfill empty cells, got %q", rows[1]["PR-1 (2024-01-31)"])
	}
}

func TestReadSheetRowsTrimsCells(t *testing.T) {
	buf := buildSheet(t, [][]any{
		{" Number ", "Customer"},
		{"  Q-1  ", " Acme "},
	})

	rows, err := ReadSheetRows(buf)
	if err != nil {
		t.Fatalf("ReadSheetRows returned error: %v", err)
	}
	if rows[0]["Number"] != "Q-1" {
		t.Errorf("cell not trimmed: %v", rows[0])
	}
	if rows[0]["Customer"] != "Acme" {
		t.Errorf("cell not trimmed: %v", rows[0])
	}
}

func TestReadSheetRowsEmptyWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	if _, err := ReadSheetRows(buf); !errors.Is(err, ErrEmptySheet) {
		t.Errorf("expected ErrEmptySheet, got %v", err)
	}
}

func TestReadSheetRowsNotAnXlsx(t *testing.T) {
	if _, err := ReadSheetRows(bytes.NewReader([]byte("not a workbook"))); err == nil {
		t.Error("expected error for non-xlsx input")
	}
}
