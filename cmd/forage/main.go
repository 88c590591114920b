// Command forage plays episodes against simulated worlds from the command line
// and writes a CSV summary of the outcomes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"

	"forager/internal/adapter/metrics/inmemory"
	"forager/internal/adapter/repo/memory"
	"forager/internal/adapter/summary"
	"forager/internal/adapter/trace"
	worldruntime "forager/internal/adapter/world/runtime"
	"forager/internal/app/episode"
	"forager/internal/app/ports"
	"forager/internal/domain/world"
)

func main() {
	logger := log.New(os.Stdout, "[forage] ", log.LstdFlags)
	if err := run(context.Background(), os.Args[1:], logger); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.Fatalf("%v", err)
	}
}

type options struct {
	config    string
	seed      int64
	episodes  int
	height    int
	width     int
	ratio     float64
	resources string
	emergent  string
	targets   string
	speed     string
	traceDir  string
	outDir    string
	verbose   bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("forage", flag.ContinueOnError)
	fs.StringVar(&o.config, "config", "", "world config yaml (defaults when empty)")
	fs.Int64Var(&o.seed, "seed", 0, "first world seed (config seed when 0)")
	fs.IntVar(&o.episodes, "episodes", 1, "number of episodes, one seed each")
	fs.IntVar(&o.height, "height", 0, "grid height override")
	fs.IntVar(&o.width, "width", 0, "grid width override")
	fs.Float64Var(&o.ratio, "ratio", 0, "obstacle ratio override")
	fs.StringVar(&o.resources, "resources", "", "comma separated resource ids")
	fs.StringVar(&o.emergent, "emergent", "", "comma separated emergent resource ids")
	fs.StringVar(&o.targets, "targets", "", "comma separated targets (all resources when empty)")
	fs.StringVar(&o.speed, "speed", string(world.SpeedNormal), "move speed: slow, normal or fast")
	fs.StringVar(&o.traceDir, "trace", "", "directory for per-episode move traces")
	fs.StringVar(&o.outDir, "out", "", "directory for targets.csv and episodes.csv")
	fs.BoolVar(&o.verbose, "v", false, "log episode progress as JSON on stderr")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if o.episodes < 1 {
		return options{}, fmt.Errorf("-episodes must be at least 1, got %d", o.episodes)
	}
	return o, nil
}

func run(ctx context.Context, args []string, logger *log.Logger) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := worldruntime.LoadConfig(o.config)
	if err != nil {
		return err
	}
	spec := ports.WorldSpec{
		Seed:          o.seed,
		Height:        o.height,
		Width:         o.width,
		ObstacleRatio: o.ratio,
		Resources:     splitList(o.resources),
		Emergent:      splitList(o.emergent),
	}
	targets := splitList(o.targets)
	if len(targets) == 0 {
		targets = defaultTargets(cfg, spec)
	}

	store := memory.NewStore()
	recorder := inmemory.NewRecorder()
	uc := episode.UseCase{
		TxManager: memory.NewTxManager(store),
		Episodes:  memory.NewEpisodeRepo(store),
		Events:    memory.NewEventRepo(store),
		Worlds:    worldruntime.NewProvider(cfg),
		Metrics:   recorder,
	}
	if o.traceDir != "" {
		uc.Tracer = trace.Tracer{Dir: o.traceDir}
	}
	if o.verbose {
		uc.Logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}

	var csv *summary.Writer
	if o.outDir != "" {
		csv, err = summary.NewWriter(o.outDir)
		if err != nil {
			return err
		}
		defer csv.Close()
	}

	first := spec.Seed
	if first == 0 {
		first = cfg.Seed
	}
	for i := 0; i < o.episodes; i++ {
		spec.Seed = first + int64(i)
		resp, err := uc.Run(ctx, episode.Request{World: spec, Targets: targets, Speed: world.Speed(o.speed)})
		if err != nil {
			return fmt.Errorf("episode with seed %d: %w", spec.Seed, err)
		}
		r := resp.Report
		logger.Printf("%s seed=%d size=%dx%d collected=%d/%d moves=%d", r.EpisodeID, r.Seed, r.Size.Height, r.Size.Width, len(r.Collected), len(r.Targets), r.TotalMoves())
		if csv != nil {
			if err := csv.Append(r); err != nil {
				return err
			}
		}
	}

	snap := recorder.Snapshot()
	logger.Printf("episodes=%d collect_rate=%.3f moves_mean=%.1f moves_median=%.1f explore_share=%.3f",
		snap.EpisodeTotal, snap.CollectRate, snap.Moves.Mean, snap.Moves.Median, snap.Moves.ExploreShare)
	return nil
}

// defaultTargets is every resource the world will host, emergent ones included.
func defaultTargets(cfg worldruntime.Config, spec ports.WorldSpec) []string {
	if len(cfg.Layout) > 0 {
		out := make([]string, 0, len(cfg.Legend))
		for _, entry := range cfg.Legend {
			out = append(out, entry.ID)
		}
		sort.Strings(out)
		return out
	}
	resources, emergent := cfg.Resources, cfg.Emergent
	if len(spec.Resources) > 0 {
		resources = spec.Resources
	}
	if len(spec.Emergent) > 0 {
		emergent = spec.Emergent
	}
	return append(append([]string{}, resources...), emergent...)
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			out = append(out, id)
		}
	}
	return out
}
