package sqlitemigrate

import (
	"database/sql"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", t.TempDir()+"/test.db")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func TestApplyRunsMigrationsInOrder(t *testing.T) {
	sqlDB := openTestDB(t)
	migrations := fstest.MapFS{
		"002_add_column.sql": &fstest.MapFile{Data: []byte("ALTER TABLE items ADD COLUMN label TEXT;")},
		"001_create.sql":     &fstest.MapFile{Data: []byte("CREATE TABLE items (id INTEGER PRIMARY KEY);")},
	}

	if err := Apply(sqlDB, migrations); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	if _, err := sqlDB.Exec("INSERT INTO items (id, label) VALUES (1, 'a')"); err != nil {
		t.Fatalf("insert into migrated table: %v", err)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	sqlDB := openTestDB(t)
	migrations := fstest.MapFS{
		"001_create.sql": &fstest.MapFile{Data: []byte("CREATE TABLE items (id INTEGER PRIMARY KEY);")},
	}

	if err := Apply(sqlDB, migrations); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := Apply(sqlDB, migrations); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	var count int
	if err := sqlDB.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count applied migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("applied migrations = %d, want 1", count)
	}
}

func TestApplyRejectsInvalidSQL(t *testing.T) {
	sqlDB := openTestDB(t)
	migrations := fstest.MapFS{
		"001_broken.sql": &fstest.MapFile{Data: []byte("CREATE NONSENSE;")},
	}

	if err := Apply(sqlDB, migrations); err == nil {
		t.Fatal("expected error for invalid migration SQL")
	}
}
