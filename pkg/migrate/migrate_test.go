package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations invalid: %v", err)
	}
}

func TestEmbeddedMatchesDisk(t *testing.T) {
	if err := ValidateFS(Embedded()); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
	onDisk, err := latestVersion(Source("migrations"))
	if err != nil {
		t.Fatalf("scan disk: %v", err)
	}
	inBinary, err := latestVersion(Embedded())
	if err != nil {
		t.Fatalf("scan embedded: %v", err)
	}
	if onDisk != inBinary {
		t.Fatalf("embedded latest %d differs from disk %d", inBinary, onDisk)
	}
}

func TestLedgerMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_ledger_entries.sql")
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS ledger_entries",
		"CHECK (entity_model IN ('supplier', 'logistics_company'))",
		"CHECK (debit >= 0 AND credit >= 0)",
		"ux_ledger_entries_purchase_reference",
		"DROP TABLE IF EXISTS ledger_entries",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestLedgerSequenceMigrationBackfillsAndIndexes(t *testing.T) {
	content := readMigration(t, "*_ledger_entries_sequence.sql")
	for _, sub := range []string{
		"ADD COLUMN IF NOT EXISTS sequence bigint NOT NULL",
		"row_number() OVER (PARTITION BY entity_model, entity_id ORDER BY created_at, date, id)",
		"ux_ledger_entries_party_sequence",
		"DROP COLUMN IF EXISTS sequence",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestDispatchMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_dispatch_orders.sql")
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS dispatch_orders",
		"CREATE TABLE IF NOT EXISTS dispatch_order_items",
		"CREATE TABLE IF NOT EXISTS dispatch_order_returns",
		"FOREIGN KEY (dispatch_order_id) REFERENCES dispatch_orders(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"'pending_approval'",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	path, err := CreateSQLMigration(dir, "Add Party Notes!", now)
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if filepath.Base(path) != "20260501100000_add_party_notes.sql" {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}

	// Same clock reading must not collide or sort before the first file.
	second, err := CreateSQLMigration(dir, "backfill notes", now)
	if err != nil {
		t.Fatalf("create second migration: %v", err)
	}
	if filepath.Base(second) != "20260501100001_backfill_notes.sql" {
		t.Fatalf("expected bumped version, got %s", second)
	}

	if _, err := CreateSQLMigration(dir, " !! ", now); err == nil {
		t.Fatalf("expected empty name error")
	}
}

func TestValidateFSRejectsBrokenAnnotations(t *testing.T) {
	cases := map[string]string{
		"down first":   "-- +goose Down\n-- +goose Up\n",
		"unterminated": "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n",
		"stray end":    "-- +goose Up\n-- +goose StatementEnd\n-- +goose Down\n",
		"no down":      "-- +goose Up\nSELECT 1;\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			fsys := fstest.MapFS{"20260101000000_case.sql": &fstest.MapFile{Data: []byte(body)}}
			if err := ValidateFS(fsys); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatalf("expected invalid filename error")
	}
	if err := ValidateDir(t.TempDir()); err == nil {
		t.Fatalf("expected empty dir error")
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	return string(data)
}
