package geo

// Bbox is an axis-aligned lng/lat rectangle. It is used both as an input
// filter for spatial queries and as a "what changed" descriptor handed to
// the renderer. Antimeridian wraparound is not modeled.
type Bbox struct {
	West  float64
	South float64
	East  float64
	North float64
}

func (b Bbox) Union(other Bbox) Bbox {
	return Bbox{
		West:  min(b.West, other.West),
		South: min(b.South, other.South),
		East:  max(b.East, other.East),
		North: max(b.North, other.North),
	}
}

func (b Bbox) Contains(lng, lat float64) bool {
	return lng >= b.West && lng <= b.East && lat >= b.South && lat <= b.North
}
