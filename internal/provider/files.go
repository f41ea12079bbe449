package provider

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/willie68/go_charttiles/internal/tiles"
	"github.com/willie68/go_charttiles/pkg/fileutils"
)

// filesProvider reads tiles from a directory tree <path>/<zoom>/<col>/<row><ext>
type filesProvider struct {
	log    *slog.Logger
	config Config
}

func (s *filesProvider) Tile(tile *tiles.Tile) (io.ReadCloser, error) {
	fn := s.filename(tile)
	if !fileutils.FileExists(fn) {
		return nil, errors.Wrap(ErrTileNotFound, tile.String())
	}
	s.log.Debug("reading tile", "file", fn)
	f, err := os.Open(fn)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open tile file %s", fn)
	}
	return f, nil
}

func (s *filesProvider) filename(tile *tiles.Tile) string {
	z, ok := intZoom(tile)
	if !ok {
		return ""
	}
	return filepath.Join(s.config.Path, strconv.Itoa(z), strconv.Itoa(tile.Col()), strconv.Itoa(tile.Row())+tile.Context().ImageExtension)
}
