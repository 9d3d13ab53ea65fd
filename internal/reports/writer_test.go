package reports

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func sampleRows() []LeadRow {
	email := "jordan@example.com"
	owner := "Sam Rivera"
	lastActivity := time.Date(2026, time.February, 3, 14, 30, 0, 0, time.UTC)
	return []LeadRow{
		{
			ID:             "6b1f0f6e-0000-0000-0000-000000000001",
			FirstName:      "Jordan",
			LastName:       "Avery",
			Email:          &email,
			Source:         "Website",
			Status:         "Contacted",
			Score:          45,
			LifecycleStage: "engaged",
			AssignedTo:     &owner,
			LastActivity:   &lastActivity,
			CreatedAt:      time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:             "6b1f0f6e-0000-0000-0000-000000000002",
			FirstName:      "Casey",
			LastName:       "Nguyen",
			Source:         "Walk-in",
			Status:         "New",
			Score:          40,
			LifecycleStage: "new",
			CreatedAt:      time.Date(2026, time.January, 20, 11, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteLeadBookCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLeadBookCSV(&buf, sampleRows()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "ID,First Name,Last Name") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "Jordan,Avery,jordan@example.com") {
		t.Errorf("first row missing expected fields: %s", lines[1])
	}
	if !strings.Contains(lines[1], "45,engaged,Sam Rivera,2026-02-03T14:30:00Z") {
		t.Errorf("first row missing score and activity fields: %s", lines[1])
	}
	if !strings.Contains(lines[2], "Casey,Nguyen,,") {
		t.Errorf("missing contact fields should be empty: %s", lines[2])
	}
}

func TestWriteLeadBookCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLeadBookCSV(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected header only, got %d lines", len(lines))
	}
}

func TestWriteLeadBookXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLeadBookXLSX(&buf, sampleRows()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// XLSX files are zip archives.
	if buf.Len() == 0 || !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Errorf("expected a zip-framed workbook, got %d bytes", buf.Len())
	}
}
