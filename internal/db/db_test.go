package db

import (
	"path/filepath"
	"testing"
)

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	tables := []string{"conversation_states", "attendances", "leads", "notifications", "audit_entries"}
	for _, table := range tables {
		var count int
		err := d.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate() error: %v", err)
	}
}

func TestOpenInDirCreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	d, err := OpenInDir(dir)
	if err != nil {
		t.Fatalf("OpenInDir() error: %v", err)
	}
	defer d.Close()

	if d.Path() != filepath.Join(dir, FileName) {
		t.Errorf("Path() = %q", d.Path())
	}
	if _, err := d.Exec(`INSERT INTO conversation_states (identity) VALUES ('a@b.co-1')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
}

func TestAttendanceStatusConstraint(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	_, err = d.Exec(`INSERT INTO attendances (id, lead_name, lead_email, lead_phone, category, status)
		VALUES ('ATD-1', 'Maria', 'm@x.co', '1', 'AUTO', 'archived')`)
	if err == nil {
		t.Error("expected CHECK constraint failure for unknown status")
	}
}
