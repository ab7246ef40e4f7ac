package aarc2rc

import (
	"sort"

	geojson "github.com/paulmach/go.geojson"
)

// PrepareGeoJSON returns the RC map as a GeoJSON feature collection:
// stations as Point features, routes as LineStrings through their station
// positions. Coordinates stay in the normalized unit square.
func PrepareGeoJSON(rcmap *RCMap) ([]byte, error) {
	fc := geojson.NewFeatureCollection()

	stationIDs := make([]int, 0, len(rcmap.Stations))
	for id := range rcmap.Stations {
		stationIDs = append(stationIDs, id)
	}
	sort.Ints(stationIDs)

	for _, id := range stationIDs {
		station := rcmap.Stations[id]
		f := geojson.NewPointFeature([]float64{station.NormX, station.NormY})
		f.SetProperty("id", station.ID)
		fc.AddFeature(f)
	}

	for _, line := range rcmap.Lines {
		coords := make([][]float64, 0, len(line.StationIDs))
		for _, sid := range line.StationIDs {
			station, ok := rcmap.Stations[sid]
			if !ok {
				continue
			}
			coords = append(coords, []float64{station.NormX, station.NormY})
		}
		if len(coords) < 2 {
			continue
		}
		f := geojson.NewLineStringFeature(coords)
		f.SetProperty("id", line.ID)
		f.SetProperty("isNotLoop", !line.IsLoop)
		fc.AddFeature(f)
	}

	return fc.MarshalJSON()
}
