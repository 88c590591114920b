package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"forager/db/migrations"
	"forager/internal/adapter/trace"
	worldruntime "forager/internal/adapter/world/runtime"

	"github.com/google/go-cmp/cmp"
)

func TestOverrideWorldConfig_UsesEnv(t *testing.T) {
	t.Setenv("FORAGER_WORLD_SEED", "42")
	t.Setenv("FORAGER_WORLD_HEIGHT", "12")
	t.Setenv("FORAGER_WORLD_WIDTH", "not-a-number")
	t.Setenv("FORAGER_WORLD_OBSTACLE_RATIO", "0.25")
	t.Setenv("FORAGER_WORLD_RESOURCES", " apple, ,berry ")
	t.Setenv("FORAGER_WORLD_EMERGENT", "")

	base := worldruntime.Config{Seed: 1, Height: 8, Width: 9, Resources: []string{"x"}, Emergent: []string{"y"}}
	got := overrideWorldConfig(base)
	want := worldruntime.Config{
		Seed:          42,
		Height:        12,
		Width:         9,
		ObstacleRatio: 0.25,
		Resources:     []string{"apple", "berry"},
		Emergent:      []string{"y"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestOverrideWorldConfig_LayoutIgnoresEnv(t *testing.T) {
	t.Setenv("FORAGER_WORLD_HEIGHT", "12")
	base := worldruntime.Config{Layout: []string{"S.a"}, Height: 1, Width: 3}
	if got := overrideWorldConfig(base); got.Height != 1 {
		t.Fatalf("height=%d want 1", got.Height)
	}
}

func TestBuildTracer(t *testing.T) {
	if got := buildTracer("  "); got != nil {
		t.Fatalf("blank dir should disable tracing, got %#v", got)
	}
	got, ok := buildTracer("/tmp/traces").(trace.Tracer)
	if !ok || got.Dir != "/tmp/traces" {
		t.Fatalf("unexpected tracer %#v", got)
	}
}

func TestStringEnv(t *testing.T) {
	t.Setenv("FORAGER_HTTP_ADDR", "")
	if got := stringEnv("FORAGER_HTTP_ADDR", ":8080"); got != ":8080" {
		t.Fatalf("stringEnv()=%q want %q", got, ":8080")
	}
	t.Setenv("FORAGER_HTTP_ADDR", " :9090 ")
	if got := stringEnv("FORAGER_HTTP_ADDR", ":8080"); got != ":9090" {
		t.Fatalf("stringEnv()=%q want %q", got, ":9090")
	}
}

func TestMigrationsFS(t *testing.T) {
	if got := migrationsFS(""); got != fs.FS(migrations.FS) {
		t.Fatalf("blank dir should use the embedded schema")
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "0009_extra.sql"), []byte("SELECT 1;"), 0o644); err != nil {
		t.Fatalf("write migration: %v", err)
	}
	if _, err := fs.Stat(migrationsFS(dir), "0009_extra.sql"); err != nil {
		t.Fatalf("dir migrations not visible: %v", err)
	}
}
