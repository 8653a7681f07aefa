package reproject

import (
	geo "github.com/paulmach/go.geo"
)

// spherical mercator of go.geo, used for the EPSG:3857 <-> EPSG:4326 pair

func mercatorProject(lon, lat float64) (float64, float64) {
	mercPoint := geo.NewPoint(lon, lat)
	geo.Mercator.Project(mercPoint)
	return mercPoint.X(), mercPoint.Y()
}

func mercatorInverse(x, y float64) (float64, float64) {
	mercPoint := geo.NewPoint(x, y)
	geo.Mercator.Inverse(mercPoint)
	return mercPoint.X(), mercPoint.Y()
}
