package pointcloud

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/godeepar/geoprep/reproject"
	"github.com/golang/geo/s2"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Manifest lists the cropped tiles of a run.
type Manifest struct {
	ID    string      `json:"id"`
	SRS   string      `json:"srs,omitempty"`
	Tiles []TileEntry `json:"tiles"`
}

// NewManifest starts an empty manifest with a fresh run id.
func NewManifest(srs string) *Manifest {
	return &Manifest{ID: uuid.NewString(), SRS: srs}
}

// TileEntry ...
type TileEntry struct {
	FID    int        `json:"fid"`
	File   string     `json:"file"`
	Points int        `json:"points"`
	Area   float64    `json:"area"`
	Bounds [4]float64 `json:"bounds"`
	Inputs []string   `json:"inputs"`
	S2     []string   `json:"s2,omitempty"`
}

// Write stores the manifest as indented JSON.
func (m *Manifest) Write(path string) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("[json.MarshalIndent] in pkg [pointcloud] encountered: %w", err)
	}

	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("[os.WriteFile] in pkg [pointcloud] encountered: %w", err)
	}

	return nil
}

func boundsOf(b orb.Bound) [4]float64 {
	return [4]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
}

// s2Covering finds the s2 tokens covering b once it is taken to EPSG:4326
// with toWGS84.
func s2Covering(b orb.Bound, toWGS84 reproject.Transform) ([]string, error) {
	geo, err := toWGS84.Bound(b)
	if err != nil {
		return nil, err
	}

	// counter-clockwise seen from outside the sphere
	pts := []s2.Point{
		s2.PointFromLatLng(s2.LatLngFromDegrees(geo.Min[1], geo.Min[0])),
		s2.PointFromLatLng(s2.LatLngFromDegrees(geo.Min[1], geo.Max[0])),
		s2.PointFromLatLng(s2.LatLngFromDegrees(geo.Max[1], geo.Max[0])),
		s2.PointFromLatLng(s2.LatLngFromDegrees(geo.Max[1], geo.Min[0])),
	}

	loop := s2.LoopFromPoints(pts)
	covering := loop.CellUnionBound()

	tokens := make([]string, 0, len(covering))
	for _, cellid := range covering {
		tokens = append(tokens, cellid.ToToken())
	}

	return tokens, nil
}
