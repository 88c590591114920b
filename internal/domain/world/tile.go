package world

type TileState uint8

const (
	TileUnknown TileState = iota
	TileBlocked
	TileOpen
)

func (s TileState) String() string {
	switch s {
	case TileBlocked:
		return "blocked"
	case TileOpen:
		return "open"
	default:
		return "unknown"
	}
}

type Resource struct {
	ID string `json:"id" yaml:"id"`
}

// Signal is the intensity of one resource's ambient emission at the sensing tile.
type Signal struct {
	ResourceID string  `json:"resource_id"`
	Intensity  float64 `json:"intensity"`
}

// Observation is what the agent senses on its current tile.
type Observation struct {
	Resources []Resource `json:"resources"`
	Signals   []Signal   `json:"signals"`
}

func (o Observation) Has(resourceID string) bool {
	for _, r := range o.Resources {
		if r.ID == resourceID {
			return true
		}
	}
	return false
}

// Intensity reports the reading for resourceID, or 0 when nothing is sensed.
func (o Observation) Intensity(resourceID string) (float64, bool) {
	for _, s := range o.Signals {
		if s.ResourceID == resourceID {
			return s.Intensity, true
		}
	}
	return 0, false
}

type Tile struct {
	State   TileState
	Content Observation
}

func (t Tile) Open() bool {
	return t.State == TileOpen
}
