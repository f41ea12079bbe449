package provider

import (
	"bytes"
	"database/sql"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/willie68/go_charttiles/internal/mercantile"
	"github.com/willie68/go_charttiles/internal/tiles"
	_ "modernc.org/sqlite"
)

type mbtile struct {
	z, col, row int
	data        []byte
}

func pngTile(t *testing.T, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, c)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("can't encode png: %v", err)
	}
	return buf.Bytes()
}

func writeMBTiles(t *testing.T, fn string, meta map[string]string, tls []mbtile) {
	db, err := sql.Open("sqlite", fn)
	if err != nil {
		t.Fatalf("can't create mbtiles: %v", err)
	}
	defer db.Close()
	for _, stmt := range []string{
		"CREATE TABLE metadata (name text, value text)",
		"CREATE TABLE tiles (zoom_level integer, tile_column integer, tile_row integer, tile_data blob)",
		"CREATE UNIQUE INDEX tile_index ON tiles (zoom_level, tile_column, tile_row)",
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("can't create schema: %v", err)
		}
	}
	for k, v := range meta {
		if _, err := db.Exec("INSERT INTO metadata (name, value) VALUES (?, ?)", k, v); err != nil {
			t.Fatalf("can't write metadata: %v", err)
		}
	}
	for _, tl := range tls {
		if _, err := db.Exec("INSERT INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (?, ?, ?, ?)", tl.z, tl.col, tl.row, tl.data); err != nil {
			t.Fatalf("can't write tile: %v", err)
		}
	}
}

func TestMBTilesProvider(t *testing.T) {
	ast := assert.New(t)
	root := t.TempDir()
	f := tiles.NewFactory(tiles.DefaultContext(), mercantile.Mercator{})

	// bounds from the center of tile 10/20 to the center of tile 11/20 at zoom 5
	west, east := f.Tile(10, 20, 5).Center(), f.Tile(11, 20, 5).Center()
	bounds := fmt.Sprintf("%f,%f,%f,%f", west.Lon(), west.Lat()-0.1, east.Lon(), west.Lat()+0.1)

	north := pngTile(t, color.RGBA{R: 255, A: 255})
	south := pngTile(t, color.RGBA{B: 255, A: 255})
	fn := filepath.Join(root, "sectional.mbtiles")
	writeMBTiles(t, fn, map[string]string{
		"name":    "sectional",
		"format":  "png",
		"minzoom": "5",
		"maxzoom": "5",
		"bounds":  bounds,
	}, []mbtile{
		{z: 5, col: 10, row: 20, data: north},
		// the xyz row of 10/20, must not be read for TMS row 20
		{z: 5, col: 10, row: 11, data: south},
	})

	backup := filepath.Join(root, "backup")
	writeTile(t, backup, 5, 11, 20, "backup 5/11/20")
	writeTile(t, backup, 5, 20, 20, "backup 5/20/20")
	writeTile(t, backup, 6, 20, 40, "backup 6/20/40")

	inj := do.New()
	do.ProvideValue(inj, &testConfig{cm: ConfigMap{
		"sectional": {Type: "mbtiles", Path: fn, Fallback: "backup"},
		"backup":    {Type: "files", Path: backup},
	}})
	Init(inj)
	pf := do.MustInvoke[*pFactory](inj)
	defer pf.Close()

	p, err := pf.Provider("sectional")
	ast.NoError(err)
	mp, ok := p.(*mbtilesProvider)
	ast.True(ok)
	ast.Equal(5, mp.meta.Minzoom)
	ast.Equal(5, mp.meta.Maxzoom)
	ast.NotNil(mp.meta.BBox)

	tt := []struct {
		name string
		tile *tiles.Tile
		exp  string
	}{
		{"hit, tms row", f.Tile(10, 20, 5), string(north)},
		{"missing in database", f.Tile(11, 20, 5), "backup 5/11/20"},
		{"outside of the bounds", f.Tile(20, 20, 5), "backup 5/20/20"},
		{"outside of the zoom levels", f.Tile(20, 40, 6), "backup 6/20/40"},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			ast := assert.New(t)
			rd, err := p.Tile(tc.tile)
			ast.NoError(err)
			if err == nil {
				ast.Equal(tc.exp, readAll(t, rd))
			}
		})
	}

	_, err = p.Tile(f.Tile(21, 40, 6))
	ast.ErrorIs(err, ErrTileNotFound)
}
