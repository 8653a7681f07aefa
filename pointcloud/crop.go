package pointcloud

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/godeepar/geoprep"
	"github.com/godeepar/geoprep/config"
	"github.com/godeepar/geoprep/monitoring"
	"github.com/godeepar/geoprep/reproject"
	"github.com/godeepar/geoprep/vector"
	"github.com/hongping1224/lidario"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/tidwall/rtree"
)

type cloud struct {
	path   string
	bound  orb.Bound
	format byte
}

// Crop cuts the clouds of cfg.Input to every tile polygon of cfg.Tiles and
// writes one <FID>.las per tile that received points.
func Crop(cfg config.Crop) (*Manifest, *monitoring.Counter, error) {
	features, _, err := vector.ReadPolygons(cfg.Tiles)
	if err != nil {
		return nil, nil, fmt.Errorf("[ReadPolygons] in pkg [pointcloud] encountered: %w", err)
	}

	index, err := scanClouds(cfg.Input)
	if err != nil {
		return nil, nil, err
	}

	if err := geoprep.EnsureDir(cfg.Output); err != nil {
		return nil, nil, err
	}

	reproject.RegisterAll(cfg.CRS)

	var toWGS84 reproject.Transform
	if cfg.SRS != "" {
		toWGS84, err = reproject.NewTransform(cfg.SRS, reproject.WGS84)
		if err != nil {
			return nil, nil, fmt.Errorf("[NewTransform] in pkg [pointcloud] encountered: %w", err)
		}
	}

	manifest := NewManifest(cfg.SRS)
	counter := monitoring.NewCounter()
	counter.Set(geoprep.Processed, 0)

	for _, tile := range features {
		start := time.Now()
		bound := tile.Bound()

		candidates := candidatesFor(index, bound)
		for _, c := range candidates {
			monitoring.Logf("Processing file: %s for tile number %d", filepath.Base(c.path), tile.FID)
		}

		if len(candidates) == 0 {
			counter.Incr(geoprep.Skipped)
			continue
		}

		name := strconv.Itoa(tile.FID) + ".las"
		out := filepath.Join(cfg.Output, name)

		monitoring.Logf("Writing tile number %d", tile.FID)
		n, inputs, err := cropTile(out, tile.Geometry, candidates, cfg.Scale, cfg.Offset)
		if err != nil {
			monitoring.Logf("An error occurred for tile %d: %v", tile.FID, err)
			counter.Incr(geoprep.Failed)
			continue
		}

		if n == 0 {
			monitoring.NonFatal("tile %d received no points", tile.FID)
			counter.Incr(geoprep.Skipped)
			continue
		}

		entry := TileEntry{
			FID:    tile.FID,
			File:   name,
			Points: n,
			Area:   tile.Area(),
			Bounds: boundsOf(bound),
			Inputs: inputs,
		}
		if toWGS84 != nil {
			if entry.S2, err = s2Covering(bound, toWGS84); err != nil {
				monitoring.NonFatal("no s2 covering for tile %d: %v", tile.FID, err)
			}
		}
		manifest.Tiles = append(manifest.Tiles, entry)

		counter.Add("points", int64(n))
		counter.Incr(geoprep.Processed)
		monitoring.Logf("Finished writing tile %d. Time taken: %.2f seconds.", tile.FID, time.Since(start).Seconds())
	}

	if cfg.Manifest != "" {
		if err := manifest.Write(filepath.Join(cfg.Output, cfg.Manifest)); err != nil {
			return manifest, counter, err
		}
	}

	return manifest, counter, nil
}

// scanClouds indexes every .las file of dir by the extent in its header.
func scanClouds(dir string) (*rtree.RTreeG[cloud], error) {
	files, err := geoprep.ListFiles(dir, ".las")
	if err != nil {
		return nil, fmt.Errorf("[ListFiles] in pkg [pointcloud] encountered: %w", err)
	}

	var tr rtree.RTreeG[cloud]
	for _, path := range files {
		bound, format, err := headerBound(path)
		if err != nil {
			monitoring.NonFatal("%s read header fail: %v", path, err)
			continue
		}
		tr.Insert(bound.Min, bound.Max, cloud{path: path, bound: bound, format: format})
	}

	return &tr, nil
}

// candidatesFor returns the clouds whose extent touches b, in path order.
func candidatesFor(tr *rtree.RTreeG[cloud], b orb.Bound) []cloud {
	var out []cloud
	tr.Search(b.Min, b.Max, func(min, max [2]float64, c cloud) bool {
		out = append(out, c)
		return true
	})

	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out
}

// cropTile writes the points of candidates that fall inside area to out.
// Clouds whose point format differs from the first candidate are left out.
func cropTile(out string, area orb.MultiPolygon, candidates []cloud, scale, offset config.XYZ) (int, []string, error) {
	first, err := openCloud(candidates[0].path)
	if err != nil {
		return 0, nil, err
	}

	dst, err := createLike(out, first)
	if err != nil {
		first.Close()
		return 0, nil, err
	}
	setScale(&dst.Header, scale)
	setOffset(&dst.Header, offset)

	kept := 0
	var inputs []string

	for i, c := range candidates {
		if c.format != candidates[0].format {
			monitoring.NonFatal("%s has point format %d, tile uses %d. Skipping file.", c.path, c.format, candidates[0].format)
			continue
		}

		src := first
		if i > 0 {
			if src, err = openCloud(c.path); err != nil {
				monitoring.NonFatal("%v", err)
				continue
			}
		}

		n, err := copyInside(dst, src, area)
		src.Close()
		if err != nil {
			dst.Close()
			os.Remove(out)
			return 0, nil, err
		}

		if n > 0 {
			inputs = append(inputs, filepath.Base(c.path))
		}
		kept += n
	}

	if err := dst.Close(); err != nil {
		return 0, nil, fmt.Errorf("[Close] in pkg [pointcloud] encountered: %w", err)
	}

	if kept == 0 {
		os.Remove(out)
	}

	return kept, inputs, nil
}

func copyInside(dst, src *lidario.LasFile, area orb.MultiPolygon) (int, error) {
	kept := 0

	for i := 0; i < src.Header.NumberPoints; i++ {
		p, err := src.LasPoint(i)
		if err != nil {
			return kept, fmt.Errorf("[LasPoint] in pkg [pointcloud] encountered: %w", err)
		}

		pd := p.PointData()
		if !planar.MultiPolygonContains(area, orb.Point{pd.X, pd.Y}) {
			continue
		}

		if err := dst.AddLasPoint(p); err != nil {
			return kept, fmt.Errorf("[AddLasPoint] in pkg [pointcloud] encountered: %w", err)
		}
		kept++
	}

	return kept, nil
}
