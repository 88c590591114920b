package main

import (
	"context"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"forager/db/migrations"
	httpadapter "forager/internal/adapter/http"
	metricsinmem "forager/internal/adapter/metrics/inmemory"
	gormrepo "forager/internal/adapter/repo/gorm"
	"forager/internal/adapter/repo/memory"
	"forager/internal/adapter/trace"
	worldruntime "forager/internal/adapter/world/runtime"
	"forager/internal/app/episode"
	"forager/internal/app/ports"
	"forager/internal/app/replay"
	"forager/internal/app/status"

	"github.com/cloudwego/hertz/pkg/app/server"
)

type repos struct {
	episodes ports.EpisodeRepository
	events   ports.EventRepository
	tx       ports.TxManager
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	r := mustBuildRepos()
	worldProvider := mustBuildWorldProvider()
	kpiRecorder := metricsinmem.NewRecorder()

	h := httpadapter.Handler{
		EpisodeUC: episode.UseCase{
			TxManager: r.tx,
			Episodes:  r.episodes,
			Events:    r.events,
			Worlds:    worldProvider,
			Metrics:   kpiRecorder,
			Tracer:    buildTracer(os.Getenv("FORAGER_TRACE_DIR")),
			Logger:    logger,
			Now:       time.Now,
		},
		StatusUC: status.UseCase{Episodes: r.episodes},
		ReplayUC: replay.UseCase{Events: r.events},
		KPI:      kpiRecorder,
	}

	addr := stringEnv("FORAGER_HTTP_ADDR", ":8080")
	s := server.Default(server.WithHostPorts(addr))
	h.RegisterRoutes(s)

	log.Printf("forager server listening on %s", addr)
	s.Spin()
}

func mustBuildRepos() repos {
	dsn := strings.TrimSpace(os.Getenv("FORAGER_DB_DSN"))
	if dsn == "" {
		log.Println("FORAGER_DB_DSN not set, keeping episodes in memory")
		store := memory.NewStore()
		return repos{
			episodes: memory.NewEpisodeRepo(store),
			events:   memory.NewEventRepo(store),
			tx:       memory.NewTxManager(store),
		}
	}
	db, err := gormrepo.OpenPostgres(dsn)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	applied, err := gormrepo.ApplyMigrations(context.Background(), db, migrationsFS(os.Getenv("FORAGER_MIGRATIONS_DIR")))
	if err != nil {
		log.Fatalf("apply migrations: %v", err)
	}
	if len(applied) > 0 {
		log.Printf("applied migrations %s", strings.Join(applied, ", "))
	}
	return repos{
		episodes: gormrepo.NewEpisodeRepo(db),
		events:   gormrepo.NewEventRepo(db),
		tx:       gormrepo.NewTxManager(db),
	}
}

// migrationsFS is the embedded schema unless dir points at a directory to use instead.
func migrationsFS(dir string) fs.FS {
	if dir = strings.TrimSpace(dir); dir != "" {
		return os.DirFS(dir)
	}
	return migrations.FS
}

func mustBuildWorldProvider() worldruntime.Provider {
	cfg, err := worldruntime.LoadConfig(os.Getenv("FORAGER_WORLD_CONFIG"))
	if err != nil {
		log.Fatalf("load world config: %v", err)
	}
	return worldruntime.NewProvider(overrideWorldConfig(cfg))
}

// overrideWorldConfig applies the FORAGER_WORLD_* variables to a generated world.
// A layout world ignores them.
func overrideWorldConfig(cfg worldruntime.Config) worldruntime.Config {
	if len(cfg.Layout) > 0 {
		return cfg
	}
	cfg.Seed = int64(intEnv("FORAGER_WORLD_SEED", int(cfg.Seed)))
	cfg.Height = intEnv("FORAGER_WORLD_HEIGHT", cfg.Height)
	cfg.Width = intEnv("FORAGER_WORLD_WIDTH", cfg.Width)
	cfg.ObstacleRatio = floatEnv("FORAGER_WORLD_OBSTACLE_RATIO", cfg.ObstacleRatio)
	if ids := listEnv("FORAGER_WORLD_RESOURCES"); len(ids) > 0 {
		cfg.Resources = ids
	}
	if ids := listEnv("FORAGER_WORLD_EMERGENT"); len(ids) > 0 {
		cfg.Emergent = ids
	}
	return cfg
}

func buildTracer(dir string) ports.Tracer {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil
	}
	return trace.Tracer{Dir: dir}
}

func stringEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func floatEnv(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func listEnv(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			out = append(out, id)
		}
	}
	return out
}
