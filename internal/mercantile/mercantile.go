// Package mercantile holds the spherical mercator tile math used to place chart tiles.
// Rows follow the TMS convention: row 0 is the southernmost row and rows increase to the north.
package mercantile

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// MaxLatitude is the latitude limit of the square mercator world.
const MaxLatitude = 85.05112877980659

// Bbox a bounding box in degrees
type Bbox struct {
	Left   float64
	Bottom float64
	Right  float64
	Top    float64
}

// Projection is the result of one projection call, corners and center in lon/lat.
type Projection struct {
	UpperLeft  orb.Point
	UpperRight orb.Point
	LowerLeft  orb.Point
	LowerRight orb.Point
	Center     orb.Point
	Col        int
	Row        int
	Zoom       float64
}

// Mercator projects points and tile indices, it carries no state and is safe for concurrent use.
type Mercator struct{}

// Project returns the projection of the tile containing the point at the given zoom.
func (Mercator) Project(lon, lat, zoom float64) Projection {
	col, row := LonLatToTile(lon, lat, zoom)
	return tileProjection(col, row, zoom)
}

// ProjectTile returns the projection of the tile with the given indices.
// Indices outside of the grid are projected anyway, the corners then lie outside of the world.
func (Mercator) ProjectTile(col, row int, zoom float64) Projection {
	return tileProjection(col, row, zoom)
}

// LonLatToTile returns the TMS column and row containing the point.
func LonLatToTile(lon, lat, zoom float64) (col, row int) {
	n := math.Exp2(zoom)
	lon = clamp(lon, 180.0)
	lat = clamp(lat, MaxLatitude)
	latRad := lat * math.Pi / 180.0
	fx := (lon + 180.0) / 360.0 * n
	fy := (1.0 + math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n
	col = int(math.Floor(fx))
	row = int(math.Floor(fy))

	// the upper border belongs to the last tile
	maxTile := max(int(math.Ceil(n))-1, 0)
	return min(max(col, 0), maxTile), min(max(row, 0), maxTile)
}

// clamp limits v to [-limit, limit], NaN becomes 0
func clamp(v, limit float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(math.Min(v, limit), -limit)
}

// Bound returns the corners as an orb bound.
func (p Projection) Bound() orb.Bound {
	return orb.MultiPoint{p.UpperLeft, p.UpperRight, p.LowerLeft, p.LowerRight}.Bound()
}

// XYZ converts into the slippy map tile of the same area. ok is false for
// fractional zoom levels and for tiles outside of the grid.
func (p Projection) XYZ() (tile maptile.Tile, ok bool) {
	z := math.Floor(p.Zoom)
	if z != p.Zoom || z < 0 || z > 32 || p.Col < 0 || p.Row < 0 {
		return tile, false
	}
	maxTile := 1 << uint(z)
	if p.Col >= maxTile || p.Row >= maxTile {
		return tile, false
	}
	return maptile.New(uint32(p.Col), uint32(maxTile-1-p.Row), maptile.Zoom(z)), true
}

func (p Projection) String() string {
	return fmt.Sprintf("zoom: %g, col: %d, row: %d, center: %.6f/%.6f", p.Zoom, p.Col, p.Row, p.Center.Lon(), p.Center.Lat())
}

func tileProjection(col, row int, zoom float64) Projection {
	n := math.Exp2(zoom)
	west := tileLon(float64(col), n)
	east := tileLon(float64(col+1), n)
	south := tileLat(float64(row), n)
	north := tileLat(float64(row+1), n)
	return Projection{
		UpperLeft:  orb.Point{west, north},
		UpperRight: orb.Point{east, north},
		LowerLeft:  orb.Point{west, south},
		LowerRight: orb.Point{east, south},
		Center:     orb.Point{tileLon(float64(col)+0.5, n), tileLat(float64(row)+0.5, n)},
		Col:        col,
		Row:        row,
		Zoom:       zoom,
	}
}

func tileLon(x, n float64) float64 {
	return x/n*360.0 - 180.0
}

// tileLat latitude of the southern edge of row y
func tileLat(y, n float64) float64 {
	return math.Atan(math.Sinh(math.Pi*(2.0*y/n-1.0))) * 180.0 / math.Pi
}
