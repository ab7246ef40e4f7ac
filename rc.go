package aarc2rc

import (
	"encoding/json"
	"math"
	"sort"
)

// RCStation is one station of the route-chess output, positioned in the
// unit square.
type RCStation struct {
	ID    int
	NormX float64
	NormY float64
}

// RCLine is one enumerated service route: the stations a rider passes
// without changing trains.
type RCLine struct {
	ID         int
	StationIDs []int
	IsLoop     bool
}

// RCMap is the converter output.
type RCMap struct {
	Stations map[int]*RCStation
	Lines    []*RCLine
}

type rcLineJSON struct {
	ID        int   `json:"Id"`
	Stas      []int `json:"Stas"`
	IsNotLoop bool  `json:"IsNotLoop"`
}

// MarshalJSON renders the wire format: stations as [id, x, y] triples with
// coordinates scaled to 1/10000 of the unit square, lines in id order.
func (m *RCMap) MarshalJSON() ([]byte, error) {
	stationIDs := make([]int, 0, len(m.Stations))
	for id := range m.Stations {
		stationIDs = append(stationIDs, id)
	}
	sort.Ints(stationIDs)

	stations := make([][3]int, 0, len(stationIDs))
	for _, id := range stationIDs {
		s := m.Stations[id]
		stations = append(stations, [3]int{
			s.ID,
			int(math.Round(s.NormX * 10000)),
			int(math.Round(s.NormY * 10000)),
		})
	}

	lines := make([]rcLineJSON, 0, len(m.Lines))
	for _, l := range m.Lines {
		stas := l.StationIDs
		if stas == nil {
			stas = []int{}
		}
		lines = append(lines, rcLineJSON{ID: l.ID, Stas: stas, IsNotLoop: !l.IsLoop})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })

	return json.Marshal(struct {
		Stations [][3]int     `json:"Stations"`
		Lines    []rcLineJSON `json:"Lines"`
	}{Stations: stations, Lines: lines})
}
