// Package tiles holds the geometry and the naming of chart tiles.
//
// A Tile is built once from a projection of a point or of grid indices and never changes
// afterwards, so tiles can be shared between goroutines without locking.
package tiles

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/willie68/go_charttiles/internal/mercantile"
)

const (
	// DefaultZoom zoom level of the point lookups, also the base of the display zoom inversion
	DefaultZoom = 10.0

	// CanvasWidth nominal bitmap width the renderer positions overlays on
	CanvasWidth = 512
	// CanvasHeight nominal bitmap height the renderer positions overlays on
	CanvasHeight = 512
)

// Corner index into the corners of a tile
type Corner int

const (
	UpperLeft Corner = iota
	UpperRight
	LowerLeft
	LowerRight
)

// Projector the coordinate projection service
type Projector interface {
	Project(lon, lat, zoom float64) mercantile.Projection
	ProjectTile(col, row int, zoom float64) mercantile.Projection
}

// Context the chart settings a tile is built for
type Context struct {
	ChartType      string `yaml:"charttype"`
	CycleAdjust    int    `yaml:"cycleadjust"`
	ImageExtension string `yaml:"extension"`
	Width          int    `yaml:"width"`
	Height         int    `yaml:"height"`
}

// DefaultContext sectional charts, png tiles at the nominal canvas size
func DefaultContext() Context {
	return Context{
		ChartType:      "sectional",
		ImageExtension: ".png",
		Width:          CanvasWidth,
		Height:         CanvasHeight,
	}
}

// Tile geometry of one tile of the chart pyramid
type Tile struct {
	corners [4]orb.Point
	center  orb.Point
	width   float64
	height  float64
	col     int
	row     int
	zoom    float64
	proj    mercantile.Projection
	ctx     Context
	pr      Projector
}

func newTile(ctx Context, pr Projector, zoom float64, p mercantile.Projection) *Tile {
	return &Tile{
		corners: [4]orb.Point{p.UpperLeft, p.UpperRight, p.LowerLeft, p.LowerRight},
		center:  p.Center,
		width:   float64(max(ctx.Width, 0)),
		height:  float64(max(ctx.Height, 0)),
		col:     p.Col,
		row:     p.Row,
		zoom:    zoom,
		proj:    p,
		ctx:     ctx,
		pr:      pr,
	}
}

// Neighbor returns the tile at the given offset. A positive row offset moves
// to the row below, rows of the grid count upwards.
func (t *Tile) Neighbor(col, row int) *Tile {
	c, r := t.NeighborIndices(col, row)
	return newTile(t.ctx, t.pr, t.zoom, t.pr.ProjectTile(c, r, t.zoom))
}

// NeighborIndices grid indices of the tile at the given offset
func (t *Tile) NeighborIndices(col, row int) (int, int) {
	return t.col + col, t.row - row
}

// Within checks if the location is inside of the tile. The tile is treated as a
// rectangle in lon/lat, every corner has to agree.
func (t *Tile) Within(lon, lat float64) bool {
	ul, ur, ll, lr := t.corners[UpperLeft], t.corners[UpperRight], t.corners[LowerLeft], t.corners[LowerRight]
	return ul.Lon() <= lon && ll.Lon() <= lon && ur.Lon() >= lon && lr.Lon() >= lon &&
		ul.Lat() >= lat && ur.Lat() >= lat && ll.Lat() <= lat && lr.Lat() <= lat
}

// PixelScaleX degrees of longitude per pixel, averaged over the upper and lower edge.
// A tile without width has no scale.
func (t *Tile) PixelScaleX() float64 {
	if t.width == 0 {
		return 0
	}
	ul, ur, ll, lr := t.corners[UpperLeft], t.corners[UpperRight], t.corners[LowerLeft], t.corners[LowerRight]
	return -((ul.Lon() - ur.Lon()) + (ll.Lon() - lr.Lon())) / (t.width * 2)
}

// PixelScaleY degrees of latitude per pixel, averaged over the left and right edge.
// The value is negative as pixel rows grow southwards.
func (t *Tile) PixelScaleY() float64 {
	if t.height == 0 {
		return 0
	}
	ul, ur, ll, lr := t.corners[UpperLeft], t.corners[UpperRight], t.corners[LowerLeft], t.corners[LowerRight]
	return -((ul.Lat() - ll.Lat()) + (ur.Lat() - lr.Lat())) / (t.height * 2)
}

// OffsetTopX pixel offset of the longitude from the left edge
func (t *Tile) OffsetTopX(lon float64) float64 {
	px := t.PixelScaleX()
	if px == 0 {
		return 0
	}
	return (lon - t.corners[UpperLeft].Lon()) / px
}

// OffsetTopY pixel offset of the latitude from the top edge
func (t *Tile) OffsetTopY(lat float64) float64 {
	py := t.PixelScaleY()
	if py == 0 {
		return 0
	}
	return (lat - t.corners[UpperLeft].Lat()) / py
}

// OffsetX pixel offset of the longitude from the center, corrected by the
// difference of the tile width to the canvas width
func (t *Tile) OffsetX(lon float64) float64 {
	px := t.PixelScaleX()
	if px == 0 {
		return 0
	}
	return (lon-t.center.Lon())/px - (CanvasWidth/2.0 - t.width/2)
}

// OffsetY pixel offset of the latitude from the center, corrected by the
// difference of the tile height to the canvas height
func (t *Tile) OffsetY(lat float64) float64 {
	py := t.PixelScaleY()
	if py == 0 {
		return 0
	}
	return (lat-t.center.Lat())/py - (CanvasHeight/2.0 - t.height/2)
}

// Longitude of the tile center
func (t *Tile) Longitude() float64 {
	return t.center.Lon()
}

// Latitude of the tile center
func (t *Tile) Latitude() float64 {
	return t.center.Lat()
}

func (t *Tile) Center() orb.Point {
	return t.center
}

func (t *Tile) Corner(c Corner) orb.Point {
	return t.corners[c]
}

// Bound the smallest lon/lat box containing all corners
func (t *Tile) Bound() orb.Bound {
	return orb.MultiPoint(t.corners[:]).Bound()
}

func (t *Tile) Col() int {
	return t.col
}

func (t *Tile) Row() int {
	return t.row
}

func (t *Tile) Zoom() float64 {
	return t.zoom
}

func (t *Tile) Width() float64 {
	return t.width
}

func (t *Tile) Height() float64 {
	return t.height
}

func (t *Tile) Context() Context {
	return t.ctx
}

func (t *Tile) Projection() mercantile.Projection {
	return t.proj
}

func (t *Tile) String() string {
	return fmt.Sprintf("Chart: %s, Z:%g, Col:%d, Row:%d", t.ctx.ChartType, t.zoom, t.col, t.row)
}
