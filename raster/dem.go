package raster

import (
	"fmt"
	"path/filepath"

	"github.com/godeepar/geoprep"
	"github.com/godeepar/geoprep/config"
	"github.com/godeepar/geoprep/monitoring"
	"github.com/godeepar/geoprep/reproject"
)

// Dataset is an open source raster.
type Dataset interface {
	GeoTransform() (GeoTransform, error)
	Size() (width, height int)
	Close()
}

// Driver opens rasters and warps them to new files.
type Driver interface {
	Open(path string) (Dataset, error)
	Warp(dst string, src Dataset, args []string) error
}

// RunDEM reprojects every .tif of cfg.Input into cfg.Output. Files that do
// not open are skipped; a failed warp is counted and the batch continues.
func RunDEM(cfg config.ReprojectDEM, driver Driver) (*monitoring.Counter, error) {
	reproject.RegisterAll(cfg.CRS)
	tr, err := reproject.NewTransform(cfg.SrcSRS, cfg.DstSRS)
	if err != nil {
		return nil, fmt.Errorf("[NewTransform] in pkg [raster] encountered: %w", err)
	}

	files, err := geoprep.ListFiles(cfg.Input, ".tif", ".tiff")
	if err != nil {
		return nil, err
	}

	if err := geoprep.EnsureDir(cfg.Output); err != nil {
		return nil, err
	}

	// GDAL handles are not shared between goroutines
	counter := geoprep.ForEach(files, 1, func(path string) error {
		ds, err := driver.Open(path)
		if err != nil {
			return geoprep.Skip(fmt.Sprintf("Unable to open %s", filepath.Base(path)))
		}
		defer ds.Close()

		gt, err := ds.GeoTransform()
		if err != nil {
			return geoprep.Skip(err.Error())
		}

		w, h := ds.Size()
		bounds, err := OutputBounds(gt.Extent(w, h), tr)
		if err != nil {
			return err
		}

		out := geoprep.OutputPath(cfg.Output, path, "")
		if err := driver.Warp(out, ds, warpOptions(cfg, bounds).Args()); err != nil {
			return fmt.Errorf("reprojection failed for %s: %w", filepath.Base(path), err)
		}

		monitoring.Logf("Reprojection succeeded for %s", filepath.Base(path))
		return nil
	})

	return counter, nil
}
