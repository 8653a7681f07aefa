package vector

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPRJ = `PROJCS["Estonian_Coordinate_System_of_1997",GEOGCS["GCS_EST97",DATUM["D_Estonia_1997",SPHEROID["GRS_1980",6378137.0,298.257222101]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],PROJECTION["Lambert_Conformal_Conic"],UNIT["Meter",1.0]]`

func square(x, y, size float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y},
	}}
}

func donut() orb.Polygon {
	outer := square(0, 0, 100)[0]
	hole := square(25, 25, 50)[0]
	return orb.Polygon{outer, hole}
}

func TestUnsupportedFormat(t *testing.T) {
	_, _, err := ReadLines("lines.kml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, _, err = ReadPolygons("tiles.gpkg")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	err = WritePolygons(filepath.Join(t.TempDir(), "tiles.csv"), []orb.Polygon{square(0, 0, 1)}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestShapefileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiles.shp")

	polys := []orb.Polygon{square(0, 0, 100), donut(), square(200, 0, 10)}
	src := &Source{PRJ: testPRJ}

	require.NoError(t, WritePolygons(path, polys, src))

	for _, ext := range []string{".shp", ".shx", ".dbf", ".prj"} {
		_, err := os.Stat(filepath.Join(dir, "tiles"+ext))
		assert.NoError(t, err, ext)
	}

	features, got, err := ReadPolygons(path)
	require.NoError(t, err)
	require.Len(t, features, 3)
	assert.Equal(t, testPRJ, got.PRJ)

	wantAreas := []float64{10000, 7500, 100}
	for i, f := range features {
		assert.Equal(t, i, f.FID)
		assert.InDelta(t, wantAreas[i], f.Area(), 1e-6)

		area, err := strconv.ParseFloat(f.Properties["AREA"], 64)
		require.NoError(t, err)
		assert.InDelta(t, wantAreas[i], area, 1e-3)
	}

	// the donut keeps its hole
	require.Len(t, features[1].Geometry, 1)
	assert.Len(t, features[1].Geometry[0], 2)

	assert.Equal(t, orb.Bound{Min: orb.Point{200, 0}, Max: orb.Point{210, 10}}, features[2].Bound())
}

func TestShapefileLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corridor.shp")

	// polygon rings are usable as closed reference lines
	require.NoError(t, WritePolygons(path, []orb.Polygon{square(0, 0, 10)}, nil))

	lines, src, err := ReadLines(path)
	require.NoError(t, err)
	assert.Empty(t, src.PRJ)
	require.Len(t, lines, 1)
	assert.Len(t, lines[0], 5)
	assert.Equal(t, lines[0][0], lines[0][4])
}

func TestGeoJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "line.geojson")
	raw := `{
  "type": "FeatureCollection",
  "crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:EPSG::3301"}},
  "features": [
    {"type": "Feature", "properties": {}, "geometry": {"type": "LineString", "coordinates": [[0, 0], [100, 0]]}},
    {"type": "Feature", "properties": {}, "geometry": {"type": "MultiLineString", "coordinates": [[[100, 0], [200, 0]], [[200, 0]]]}},
    {"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [5, 5]}}
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	lines, src, err := ReadLines(path)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, orb.LineString{{0, 0}, {100, 0}}, lines[0])
	assert.Equal(t, orb.LineString{{100, 0}, {200, 0}}, lines[1])
	require.NotNil(t, src.CRS)
	assert.Equal(t, "name", src.CRS["type"])
}

func TestGeoJSONNoLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.geojson")
	raw := `{"type": "FeatureCollection", "features": [
    {"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [5, 5]}}
  ]}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	_, _, err := ReadLines(path)
	assert.ErrorIs(t, err, ErrNoLines)

	_, _, err = ReadPolygons(path)
	assert.ErrorIs(t, err, ErrNoPolygons)
}

func TestGeoJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiles.geojson")
	src := &Source{CRS: map[string]interface{}{
		"type":       "name",
		"properties": map[string]interface{}{"name": "EPSG:3301"},
	}}

	require.NoError(t, WritePolygons(path, []orb.Polygon{donut(), square(0, 0, 2)}, src))

	features, got, err := ReadPolygons(path)
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, "name", got.CRS["type"])

	assert.Equal(t, 0, features[0].FID)
	assert.InDelta(t, 7500, features[0].Area(), 1e-6)
	assert.Equal(t, orb.CCW, features[0].Geometry[0][0].Orientation())
	assert.Equal(t, orb.CW, features[0].Geometry[0][1].Orientation())

	assert.Equal(t, 1, features[1].FID)
	assert.Equal(t, "4", features[1].Properties["AREA"])
}

func TestOrientRings(t *testing.T) {
	open := orb.Polygon{orb.Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}}}

	got := orientRings(open, orb.CCW)
	require.Len(t, got[0], 5)
	assert.Equal(t, orb.CCW, got[0].Orientation())

	// input untouched
	assert.Len(t, open[0], 4)
}

func TestRingsToPolygons(t *testing.T) {
	outer := square(0, 0, 100)[0]
	outer.Reverse() // CW as in shapefiles
	hole := square(10, 10, 10)[0]
	other := square(500, 500, 10)[0]

	mp := ringsToPolygons([]orb.Ring{outer, hole, other}, orb.CW)
	require.Len(t, mp, 2)
	assert.Len(t, mp[0], 2)
	assert.Len(t, mp[1], 1)
}
