package provider

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/i0tool5/mbtiles-go"
	"github.com/pkg/errors"
	"github.com/samber/do/v2"

	"github.com/willie68/go_charttiles/internal/logging"
	"github.com/willie68/go_charttiles/internal/mercantile"
	"github.com/willie68/go_charttiles/internal/tiles"
)

type metadata struct {
	Name    string
	Format  string
	Maxzoom int
	Minzoom int
	BBox    *mercantile.Bbox
}

// mbtilesProvider reads chart tiles from a mbtiles database. mbtiles rows count
// from the south like the rows of the chart grid, no flipping needed.
type mbtilesProvider struct {
	log  *slog.Logger
	db   *mbtiles.MBtiles
	fb   string
	meta metadata
	inj  do.Injector
}

func NewMBTilesProvider(chart string, config Config, inj do.Injector) *mbtilesProvider {
	log := logging.New(fmt.Sprintf("mbtiles: %s", chart))
	mbt := &mbtilesProvider{
		log: log,
		fb:  config.Fallback,
		inj: inj,
	}
	db, err := mbtiles.Open(config.Path)
	if err != nil {
		log.Error(fmt.Sprintf("failed to open mbtiles database %s: %v", config.Path, err))
		return mbt
	}
	mbt.db = db
	log.Info(fmt.Sprintf("mbtiles format: %s", db.GetTileFormat().String()))
	meta, err := db.ReadMetadata()
	if err != nil {
		log.Error(fmt.Sprintf("failed to read mbtiles metadata: %v", err))
	}
	mbt.parseMetadata(meta)
	return mbt
}

// maxFallbacks number of fallback hops a tile request may take
const maxFallbacks = 8

func (s *mbtilesProvider) Tile(tile *tiles.Tile) (io.ReadCloser, error) {
	return s.tile(tile, 0)
}

func (s *mbtilesProvider) tile(tile *tiles.Tile, hops int) (io.ReadCloser, error) {
	if s.db == nil {
		return s.fallback(tile, hops, errors.New("mbtiles database not available"))
	}
	z, ok := intZoom(tile)
	if !ok {
		return s.fallback(tile, hops, fmt.Errorf("zoom level %g not supported", tile.Zoom()))
	}
	if s.meta.Maxzoom > 0 && (z < s.meta.Minzoom || z > s.meta.Maxzoom) {
		return s.fallback(tile, hops, fmt.Errorf("zoom level %d out of bounds (%d - %d)", z, s.meta.Minzoom, s.meta.Maxzoom))
	}
	if s.meta.BBox != nil {
		tbox := tile.Bound()
		if tbox.Left() > s.meta.BBox.Right || tbox.Right() < s.meta.BBox.Left || tbox.Top() < s.meta.BBox.Bottom || tbox.Bottom() > s.meta.BBox.Top {
			return s.fallback(tile, hops, fmt.Errorf("tile %d/%d/%d out of bounds", z, tile.Col(), tile.Row()))
		}
	}
	var data []byte
	err := s.db.ReadTile(int64(z), int64(tile.Col()), int64(tile.Row()), &data)
	if err != nil || len(data) == 0 {
		if err == nil {
			err = ErrTileNotFound
		}
		return s.fallback(tile, hops, errors.Wrapf(err, "failed to read tile %d/%d/%d", z, tile.Col(), tile.Row()))
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *mbtilesProvider) fallback(tile *tiles.Tile, hops int, cause error) (io.ReadCloser, error) {
	if s.fb == "" {
		return nil, cause
	}
	if hops >= maxFallbacks {
		return nil, errors.Wrapf(ErrFallbackLoop, "%s after %d fallbacks: %v", tile.String(), hops, cause)
	}
	s.log.Debug(fmt.Sprintf("using fallback %s: %v", s.fb, cause))
	ts, err := do.InvokeNamed[Service](s.inj, s.fb)
	if err != nil {
		s.log.Error(fmt.Sprintf("System error: %v", err))
		return nil, err
	}
	if mp, ok := ts.(*mbtilesProvider); ok {
		return mp.tile(tile, hops+1)
	}
	return ts.Tile(tile)
}

func (s *mbtilesProvider) parseMetadata(meta map[string]any) {
	s.meta.Name, _ = meta["name"].(string)
	s.meta.Format, _ = meta["format"].(string)
	if maxzoom, ok := meta["maxzoom"].(int); ok {
		s.meta.Maxzoom = maxzoom
	}
	if minzoom, ok := meta["minzoom"].(int); ok {
		s.meta.Minzoom = minzoom
	}
	if bbox, ok := meta["bounds"].([]float64); ok {
		if len(bbox) == 4 {
			s.meta.BBox = &mercantile.Bbox{Left: bbox[0], Bottom: bbox[1], Right: bbox[2], Top: bbox[3]}
		}
	}
}

func (s *mbtilesProvider) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// intZoom the zoom level of tile databases, negative zooms have no tiles
func intZoom(tile *tiles.Tile) (int, bool) {
	z := int(math.Floor(tile.Zoom()))
	return z, z >= 0
}
