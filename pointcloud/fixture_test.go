package pointcloud

import (
	"os"
	"testing"

	"github.com/godeepar/geoprep/monitoring"
	"github.com/hongping1224/lidario"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

type testPoint struct {
	X, Y, Z   float64
	Intensity uint16
	Class     byte
	GPSTime   float64
}

// writeCloud creates a LAS file at path holding pts in the given point
// format (0 or 1) with millimetre scale.
func writeCloud(t *testing.T, path string, format byte, pts []testPoint) {
	t.Helper()

	las, err := lidario.NewLasFile(path, "w")
	require.NoError(t, err)

	header := lidario.LasHeader{
		VersionMajor:  1,
		VersionMinor:  2,
		PointFormatID: format,
		XScaleFactor:  0.001,
		YScaleFactor:  0.001,
		ZScaleFactor:  0.001,
	}
	require.NoError(t, las.AddHeader(header))

	for _, p := range pts {
		rec := &lidario.PointRecord0{
			X:             p.X,
			Y:             p.Y,
			Z:             p.Z,
			Intensity:     p.Intensity,
			BitField:      lidario.PointBitField{Value: 0x09},
			ClassBitField: lidario.ClassificationBitField{Value: p.Class},
		}

		var point lidario.LasPointer = rec
		if format == 1 {
			point = &lidario.PointRecord1{PointRecord0: rec, GPSTime: p.GPSTime}
		}
		require.NoError(t, las.AddLasPoint(point))
	}

	require.NoError(t, las.Close())
}

func readCloud(t *testing.T, path string) (*lidario.LasHeader, []lidario.LasPointer) {
	t.Helper()

	las, err := openCloud(path)
	require.NoError(t, err)
	defer las.Close()

	points := make([]lidario.LasPointer, las.Header.NumberPoints)
	for i := range points {
		points[i], err = las.LasPoint(i)
		require.NoError(t, err)
	}

	header := las.Header
	return &header, points
}

func samplePoints() []testPoint {
	return []testPoint{
		{X: 100, Y: 200, Z: 10, Intensity: 1, Class: 2, GPSTime: 1000},
		{X: 150, Y: 250, Z: 11, Intensity: 50, Class: 2, GPSTime: 1500},
		{X: 199, Y: 299, Z: 12, Intensity: 120, Class: 6, GPSTime: 2000},
	}
}
