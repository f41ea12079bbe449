// Package tileservice delivers tile images, from the cache if possible, otherwise from
// the provider of the chart type.
package tileservice

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/samber/do/v2"
	"github.com/willie68/go_charttiles/internal/logging"
	"github.com/willie68/go_charttiles/internal/provider"
	"github.com/willie68/go_charttiles/internal/tiles"
	"github.com/willie68/go_charttiles/internal/utils/measurement"
)

type providerFactory interface {
	HasProvider(chartType string) bool
	IsCached(chartType string) bool
	Provider(chartType string) (provider.Service, error)
}

type tileCache interface {
	Has(name string) bool
	Tile(name string) (io.ReadCloser, bool)
	Save(name string, data io.Reader) error
	IsActive() bool
	Names(prefix string) ([]string, error)
}

type namer interface {
	TileName(t *tiles.Tile) string
	Prefix(ctx tiles.Context) string
}

type Service struct {
	log     *slog.Logger
	cache   tileCache
	pf      providerFactory
	names   namer
	metrics *measurement.Service
}

func Init(inj do.Injector) {
	do.ProvideValue(inj, New(
		do.MustInvokeAs[tileCache](inj),
		do.MustInvokeAs[providerFactory](inj),
		do.MustInvoke[*tiles.Namer](inj),
		do.MustInvoke[*measurement.Service](inj),
	))
}

func New(cache tileCache, pf providerFactory, names namer, metrics *measurement.Service) *Service {
	return &Service{
		log:     logging.New("tileservice"),
		cache:   cache,
		pf:      pf,
		names:   names,
		metrics: metrics,
	}
}

// Cached checks if the image of the tile is in the cache
func (s *Service) Cached(tile *tiles.Tile) bool {
	return s.cache.Has(s.names.TileName(tile))
}

// CachedNames the names of all cached tiles of the chart context
func (s *Service) CachedNames(ctx tiles.Context) ([]string, error) {
	return s.cache.Names(s.names.Prefix(ctx))
}

// Image returns the image of the tile
func (s *Service) Image(tile *tiles.Tile) (io.ReadCloser, error) {
	chart := tile.Context().ChartType
	if !s.pf.HasProvider(chart) {
		return nil, provider.ErrNotFound
	}
	name := s.names.TileName(tile)
	cached := s.pf.IsCached(chart) && s.cache.IsActive()

	if cached {
		td := s.metrics.Start("getTileFromCache")
		tr, ok := s.cache.Tile(name)
		td.Stop()
		if ok {
			s.log.Debug(fmt.Sprintf("tile found in cache: %s", name))
			return tr, nil
		}
	}

	ts, err := s.pf.Provider(chart)
	if err != nil {
		s.log.Error(fmt.Sprintf("System error: %v", err))
		return nil, err
	}

	td := s.metrics.Start("getTileFromProvider")
	tsd := s.metrics.Start(fmt.Sprintf("getTileFromProvider:%s", chart))
	rd, err := ts.Tile(tile)
	if err != nil {
		tsd.Fail()
		td.Fail()
		s.log.Debug(fmt.Sprintf("error getting tile %s from provider: %v", name, err))
		return nil, err
	}
	tsd.Stop()
	td.Stop()
	if !cached {
		return rd, nil
	}

	defer rd.Close()
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	sd := s.metrics.Start("saveTileToCache")
	if err := s.cache.Save(name, bytes.NewReader(data)); err != nil {
		sd.Fail()
		s.log.Error(fmt.Sprintf("error saving tile to cache: %v", err))
	} else {
		sd.Stop()
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
