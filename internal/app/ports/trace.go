package ports

// TracedArena records every body call made through it until closed.
type TracedArena interface {
	Arena
	Close() error
}

type Tracer interface {
	Trace(episodeID string, arena Arena) (TracedArena, error)
}
