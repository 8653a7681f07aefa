// Command geoprep runs the geospatial batch utilities, one subcommand each.
package main

import (
	"fmt"
	"os"

	"github.com/godeepar/geoprep/config"
	"github.com/godeepar/geoprep/imagery"
	"github.com/godeepar/geoprep/imagery/video"
	"github.com/godeepar/geoprep/internal/cli"
	"github.com/godeepar/geoprep/monitoring"
	"github.com/godeepar/geoprep/pointcloud"
	"github.com/godeepar/geoprep/raster"
	"github.com/godeepar/geoprep/raster/gdal"
	"github.com/godeepar/geoprep/tiling"
	"github.com/godeepar/geoprep/vector"
	"gopkg.in/alecthomas/kingpin.v2"
)

func main() {
	app := kingpin.New("geoprep", "Batch utilities for preparing geospatial data.")
	app.HelpFlag.Short('h')

	commands := map[string]*cli.Command{}
	for _, c := range []*cli.Command{
		tileCommand(app),
		cropCommand(app),
		shiftCommand(app),
		correctCommand(app),
		filterCommand(app),
		reprojectCloudCommand(app),
		reprojectDEMCommand(app),
		maskCommand(app),
		equirectCommand(app),
		cutoutCommand(app),
	} {
		commands[c.Name] = c
	}

	selected := kingpin.MustParse(app.Parse(os.Args[1:]))
	kingpin.FatalIfError(commands[selected].Run(os.Stdout), "%s", selected)
}

func tileCommand(app *kingpin.Application) *cli.Command {
	cfg := config.DefaultTile()
	c := cli.New(app, "tile", "Cut the buffer of a reference line into tiles.", &cfg)

	c.Flags.String("input", "reference line (.shp or .geojson)", &cfg.Input)
	c.Flags.String("output", "tile polygons (.shp or .geojson)", &cfg.Output)
	c.Flags.String("preview", "optional PNG/SVG/PDF preview of the tiles", &cfg.Preview)
	c.Flags.Float("width", "buffer distance on each side of the line", &cfg.Width)
	c.Flags.Float("spacing", "distance between cuts along the line", &cfg.Spacing)
	c.Flags.Float("min-area", "fragments at or below this area are dropped (0: width*spacing/2)", &cfg.MinArea)
	c.Flags.Int("quad-segments", "segments per quarter circle of the buffer", &cfg.QuadSegments)
	c.Flags.Float("tolerance", "distance at which a sample counts as on a segment", &cfg.Tolerance)

	c.Execute = func() (*monitoring.Counter, error) {
		line, src, err := vector.ReadLines(cfg.Input)
		if err != nil {
			return nil, err
		}

		res, err := tiling.Tile(line, tiling.Options{
			Width:        cfg.Width,
			Spacing:      cfg.Spacing,
			MinArea:      cfg.MinArea,
			QuadSegments: cfg.QuadSegments,
			Tolerance:    cfg.Tolerance,
		})
		if err != nil {
			return nil, err
		}

		if err := vector.WritePolygons(cfg.Output, res.Tiles, src); err != nil {
			return nil, err
		}
		monitoring.Logf("%d tiles written to %s (%d fragments discarded, %d cutters skipped)",
			len(res.Tiles), cfg.Output, res.Discarded, res.SkippedCutters)

		if cfg.Preview != "" {
			if err := tiling.WritePreview(cfg.Preview, res, line); err != nil {
				return nil, err
			}
			monitoring.Logf("Preview saved to %s", cfg.Preview)
		}

		counter := monitoring.NewCounter()
		counter.Set("tiles", int64(len(res.Tiles)))
		counter.Set("discarded", int64(res.Discarded))
		counter.Set("cutters", int64(res.Cutters))
		counter.Set("skipped_cutters", int64(res.SkippedCutters))
		return counter, nil
	}
	return c
}

func cropCommand(app *kingpin.Application) *cli.Command {
	cfg := config.DefaultCrop()
	c := cli.New(app, "crop", "Cut point clouds to tile polygons.", &cfg)

	c.Flags.String("input", "directory of .las point clouds", &cfg.Input)
	c.Flags.String("tiles", "tile polygons (.shp or .geojson)", &cfg.Tiles)
	c.Flags.String("output", "directory for the cropped clouds", &cfg.Output)
	c.Flags.String("srs", "CRS of tiles and clouds, enables S2 tokens in the manifest", &cfg.SRS)
	c.Flags.String("manifest", "manifest file name inside the output directory", &cfg.Manifest)

	c.Execute = func() (*monitoring.Counter, error) {
		_, counter, err := pointcloud.Crop(cfg)
		return counter, err
	}
	return c
}

func shiftCommand(app *kingpin.Application) *cli.Command {
	cfg := config.DefaultShift()
	c := cli.New(app, "shift", "Shift point clouds by a constant offset.", &cfg)

	c.Flags.String("input", "directory of .las point clouds", &cfg.Input)
	c.Flags.String("output", "directory for the shifted clouds", &cfg.Output)
	c.Flags.Float("x", "shift along x", &cfg.Shift.X)
	c.Flags.Float("y", "shift along y", &cfg.Shift.Y)
	c.Flags.Float("z", "shift along z", &cfg.Shift.Z)
	c.Flags.Int("workers", "files processed at once", &cfg.Workers)

	c.Execute = func() (*monitoring.Counter, error) {
		return pointcloud.RunShift(cfg)
	}
	return c
}

func correctCommand(app *kingpin.Application) *cli.Command {
	cfg := config.DefaultCorrect()
	c := cli.New(app, "correct", "Apply GPS time interpolated shifts to point clouds.", &cfg)

	c.Flags.String("input", "directory of .las point clouds", &cfg.Input)
	c.Flags.String("output", "directory for the corrected clouds", &cfg.Output)
	c.Flags.Int("workers", "files processed at once", &cfg.Workers)

	c.Execute = func() (*monitoring.Counter, error) {
		return pointcloud.RunCorrect(cfg)
	}
	return c
}

func filterCommand(app *kingpin.Application) *cli.Command {
	cfg := config.DefaultFilter()
	c := cli.New(app, "filter", "Keep points whose dimension lies within a range.", &cfg)

	c.Flags.String("input", "directory of .las point clouds", &cfg.Input)
	c.Flags.String("output", "directory for the filtered clouds", &cfg.Output)
	c.Flags.String("dimension", fmt.Sprintf("one of %v", pointcloud.Dimensions()), &cfg.Dimension)
	c.Flags.Float("min", "lowest value kept", &cfg.Min)
	c.Flags.Float("max", "highest value kept", &cfg.Max)
	c.Flags.Int("workers", "files processed at once", &cfg.Workers)

	c.Execute = func() (*monitoring.Counter, error) {
		return pointcloud.RunFilter(cfg)
	}
	return c
}

func reprojectCloudCommand(app *kingpin.Application) *cli.Command {
	cfg := config.DefaultReprojectCloud()
	c := cli.New(app, "reproject-pc", "Reproject point clouds.", &cfg)

	c.Flags.String("input", "directory of .las point clouds", &cfg.Input)
	c.Flags.String("output", "directory for the reprojected clouds", &cfg.Output)
	c.Flags.String("src-srs", "source CRS (EPSG:<code> or proj4)", &cfg.SrcSRS)
	c.Flags.String("dst-srs", "target CRS (EPSG:<code> or proj4)", &cfg.DstSRS)
	c.Flags.String("prefix", "prepended to output file names", &cfg.Prefix)
	c.Flags.Int("workers", "files processed at once", &cfg.Workers)

	c.Execute = func() (*monitoring.Counter, error) {
		return pointcloud.RunReproject(cfg)
	}
	return c
}

func reprojectDEMCommand(app *kingpin.Application) *cli.Command {
	cfg := config.DefaultReprojectDEM()
	c := cli.New(app, "reproject-dem", "Reproject DEM GeoTIFFs with GDAL.", &cfg)

	c.Flags.String("input", "directory of GeoTIFF DEMs", &cfg.Input)
	c.Flags.String("output", "directory for the reprojected DEMs", &cfg.Output)
	c.Flags.String("src-srs", "source CRS (EPSG:<code> or proj4)", &cfg.SrcSRS)
	c.Flags.String("dst-srs", "target CRS (EPSG:<code> or proj4)", &cfg.DstSRS)
	c.Flags.String("resampling", "gdalwarp resampling method", &cfg.Resampling)

	c.Execute = func() (*monitoring.Counter, error) {
		var driver raster.Driver = gdal.New()
		return raster.RunDEM(cfg, driver)
	}
	return c
}

func maskCommand(app *kingpin.Application) *cli.Command {
	cfg := config.DefaultMask()
	c := cli.New(app, "mask", "Multiply images by a black and white mask.", &cfg)

	c.Flags.String("input", "directory of images", &cfg.Input)
	c.Flags.String("mask", "mask image, same size as the inputs", &cfg.Mask)
	c.Flags.String("output", "directory for the masked images", &cfg.Output)

	c.Execute = func() (*monitoring.Counter, error) {
		return imagery.RunMask(cfg)
	}
	return c
}

func equirectCommand(app *kingpin.Application) *cli.Command {
	cfg := config.DefaultEquirect()
	c := cli.New(app, "equirect", "Pad panoramas to a 2:1 equirectangular canvas.", &cfg)

	c.Flags.String("input", "directory of panoramas", &cfg.Input)
	c.Flags.String("output", "directory for the padded panoramas", &cfg.Output)
	c.Flags.Int("quality", "JPEG quality", &cfg.Quality)

	c.Execute = func() (*monitoring.Counter, error) {
		return imagery.RunEquirect(cfg)
	}
	return c
}

func cutoutCommand(app *kingpin.Application) *cli.Command {
	cfg := config.DefaultCutout()
	c := cli.New(app, "cutout", "Cut a view out of equirectangular frames and make a video.", &cfg)

	c.Flags.String("input", "directory of equirectangular frames", &cfg.Input)
	c.Flags.String("output", "directory for the frames and the video", &cfg.Output)
	c.Flags.Float("fps", "frames per second of the video", &cfg.FPS)
	c.Flags.Float("hfov", "horizontal field of view in degrees", &cfg.HFOV)
	c.Flags.Float("vfov", "vertical field of view in degrees", &cfg.VFOV)
	c.Flags.Float("rotation", "yaw of the view in degrees", &cfg.Rotation)
	c.Flags.Int("width", "output frame width", &cfg.OutputWidth)
	c.Flags.Int("height", "output frame height", &cfg.OutputHeight)
	c.Flags.Bool("video", "assemble the frames into an mp4", &cfg.Video)

	c.Execute = func() (*monitoring.Counter, error) {
		return imagery.RunCutout(cfg, video.Open)
	}
	return c
}
