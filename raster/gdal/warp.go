package gdal

// #include <stdlib.h>
// #include "gdal.h"
// #include "gdal_utils.h"
// #include "cpl_string.h"
// #cgo pkg-config: gdal
import "C"

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/godeepar/geoprep/raster"
)

var (
	// ErrOpen is returned when GDAL cannot open a dataset.
	ErrOpen = errors.New("gdal could not open dataset")

	// ErrNoGeoTransform is returned for rasters without georeferencing.
	ErrNoGeoTransform = errors.New("dataset has no geotransform")

	// ErrWarp is returned when gdalwarp produces no output.
	ErrWarp = errors.New("gdal warp failed")
)

// Driver ...
type Driver struct{}

// New initialises GDAL and returns a driver.
func New() *Driver {
	InitGdal()
	return &Driver{}
}

type dataset struct {
	h C.GDALDatasetH
}

// Open ...
func (d *Driver) Open(path string) (raster.Dataset, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	ds := C.GDALOpen(cPath, C.GA_ReadOnly)
	if ds == nil {
		return nil, fmt.Errorf("%w: %s", ErrOpen, path)
	}

	return &dataset{h: ds}, nil
}

func (ds *dataset) GeoTransform() (raster.GeoTransform, error) {
	var gt [6]C.double
	if C.GDALGetGeoTransform(ds.h, &gt[0]) != C.CE_None {
		return raster.GeoTransform{}, ErrNoGeoTransform
	}

	var out raster.GeoTransform
	for i := range gt {
		out[i] = float64(gt[i])
	}
	return out, nil
}

func (ds *dataset) Size() (int, int) {
	return int(C.GDALGetRasterXSize(ds.h)), int(C.GDALGetRasterYSize(ds.h))
}

func (ds *dataset) Close() {
	if ds.h != nil {
		C.GDALClose(ds.h)
		ds.h = nil
	}
}

// Warp runs gdalwarp with args from src into a new file at dst.
func (d *Driver) Warp(dst string, src raster.Dataset, args []string) error {
	ds, ok := src.(*dataset)
	if !ok || ds.h == nil {
		return fmt.Errorf("%w: dataset not opened by this driver", ErrWarp)
	}

	var cArgs **C.char
	for _, arg := range args {
		cArg := C.CString(arg)
		cArgs = C.CSLAddString(cArgs, cArg)
		C.free(unsafe.Pointer(cArg))
	}
	defer C.CSLDestroy(cArgs)

	opts := C.GDALWarpAppOptionsNew(cArgs, nil)
	if opts == nil {
		return fmt.Errorf("%w: invalid options %v", ErrWarp, args)
	}
	defer C.GDALWarpAppOptionsFree(opts)

	cDst := C.CString(dst)
	defer C.free(unsafe.Pointer(cDst))

	srcs := []C.GDALDatasetH{ds.h}
	var usageError C.int

	out := C.GDALWarp(cDst, nil, 1, &srcs[0], opts, &usageError)
	if out == nil {
		return fmt.Errorf("%w: %s", ErrWarp, C.GoString(C.CPLGetLastErrorMsg()))
	}
	C.GDALClose(out)

	return nil
}
