package gormrepo

import (
	"testing"
	"testing/fstest"

	"forager/db/migrations"

	"github.com/google/go-cmp/cmp"
)

func TestMigrationFiles_SortsSQLOnly(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_index.sql":   {Data: []byte("SELECT 1;")},
		"0001_init.sql":    {Data: []byte("SELECT 1;")},
		"README.md":        {Data: []byte("notes")},
		"archive/0000.sql": {Data: []byte("SELECT 1;")},
	}
	got, err := migrationFiles(fsys)
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}
	if diff := cmp.Diff([]string{"0001_init.sql", "0002_index.sql"}, got); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestMigrationFiles_EmbeddedSchema(t *testing.T) {
	got, err := migrationFiles(migrations.FS)
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}
	if diff := cmp.Diff([]string{"0001_init.sql", "0002_episode_cost.sql"}, got); diff != "" {
		t.Fatalf("embedded migrations mismatch (-want +got):\n%s", diff)
	}
}
