// Package gdal implements raster.Driver on top of the GDAL C library.
package gdal

// #include "gdal.h"
// #include "gdal_frmts.h"
// #cgo pkg-config: gdal
import "C"

import (
	"os"
	"path/filepath"
	"sync"
)

var initOnce sync.Once

// InitGdal sets the GDAL defaults the warps rely on and registers the
// drivers, GTiff first. It is safe to call more than once.
func InitGdal() {
	initOnce.Do(func() {
		setDefaultEnv("GDAL_PAM_ENABLED", "NO")
		setDefaultEnv("GDAL_DISABLE_READDIR_ON_OPEN", "EMPTY_DIR")
		setDefaultEnv("GDAL_MAX_DATASET_POOL_SIZE", "10")

		exeFilePath, err := os.Executable()
		if err == nil {
			setDefaultEnv("GDAL_DRIVER_PATH", filepath.Dir(exeFilePath))
		}

		registerGDALDrivers()
	})
}

func setDefaultEnv(envVar string, defaultVal string) {
	if _, ok := os.LookupEnv(envVar); !ok {
		os.Setenv(envVar, defaultVal)
	}
}

func registerGDALDrivers() {
	var haveGTiff bool

	// find out which drivers are present
	C.GDALAllRegister()

	for i := 0; i < int(C.GDALGetDriverCount()); i++ {
		driver := C.GDALGetDriver(C.int(i))
		if C.GoString(C.GDALGetDriverShortName(driver)) == "GTiff" {
			haveGTiff = true
		}
	}

	// drivers are tried in order when opening, so put GTiff in front
	for C.GDALGetDriverCount() > 0 {
		C.GDALDeregisterDriver(C.GDALGetDriver(0))
	}

	if haveGTiff {
		C.GDALRegister_GTiff()
	}

	C.GDALAllRegister()
}
