package domain

// Coord is a WGS-84 latitude/longitude pair.
type Coord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GazetteerEntry is one place definition from the rules file.
type GazetteerEntry struct {
	Name string
	Lat  float64
	Lng  float64
}

// Gazetteer is the fixed place-name to coordinate table. It preserves
// definition order because tier-1 resolution scans names in that order and
// returns the first substring hit.
type Gazetteer struct {
	names  []string
	coords map[string]Coord
}

// NewGazetteer builds a gazetteer from ordered entries. A repeated name keeps
// its first position in the scan order but takes the last definition's
// coordinates, matching the source dataset's known duplicate-key quirk.
func NewGazetteer(entries []GazetteerEntry) *Gazetteer {
	g := &Gazetteer{
		names:  make([]string, 0, len(entries)),
		coords: make(map[string]Coord, len(entries)),
	}
	for _, e := range entries {
		if _, seen := g.coords[e.Name]; !seen {
			g.names = append(g.names, e.Name)
		}
		g.coords[e.Name] = Coord{Lat: e.Lat, Lng: e.Lng}
	}
	return g
}

// Lookup returns the coordinates for an exact place name. Unknown names are
// not an error; the caller treats absence as "cannot build alert".
func (g *Gazetteer) Lookup(name string) (Coord, bool) {
	c, ok := g.coords[name]
	return c, ok
}

// Names returns place names in definition order. Callers must not mutate the
// returned slice.
func (g *Gazetteer) Names() []string {
	return g.names
}

// Len reports the number of distinct places.
func (g *Gazetteer) Len() int {
	return len(g.names)
}
