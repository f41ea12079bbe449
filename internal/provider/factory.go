package provider

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/samber/do/v2"
	"github.com/willie68/go_charttiles/internal/logging"
	"github.com/willie68/go_charttiles/internal/tiles"
	"github.com/willie68/go_charttiles/pkg/fileutils"
)

// Service delivers the tile images of one chart type
type Service interface {
	Tile(tile *tiles.Tile) (io.ReadCloser, error)
}

// ConfigMap provider configs keyed by chart type
type ConfigMap map[string]Config

type Config struct {
	Type     string `yaml:"type"` // mbtiles, files
	Path     string `yaml:"path"`
	NoCached bool   `yaml:"nocache"`
	Fallback string `yaml:"fallback"` // chart type to ask for tiles this provider doesn't have
}

type pFactory struct {
	log      *slog.Logger
	configs  ConfigMap
	services []string
	inj      do.Injector
}

var (
	ErrNotFound     = errors.New("provider not found")
	ErrTileNotFound = errors.New("tile not found")
	ErrFallbackLoop = errors.New("fallback chain too long")
)

type providerConfig interface {
	GetProviderConfig() ConfigMap
}

func Init(inj do.Injector) {
	sf := &pFactory{
		log:      logging.New("factory"),
		configs:  maps.Clone(do.MustInvokeAs[providerConfig](inj).GetProviderConfig()),
		services: make([]string, 0),
		inj:      inj,
	}
	if sf.configs == nil {
		sf.configs = make(ConfigMap)
	}
	sf.dropFallbackCycles()
	do.ProvideValue(inj, sf)
	for chart, config := range sf.configs {
		var s Service
		switch config.Type {
		case "mbtiles":
			s = NewMBTilesProvider(chart, config, inj)
		case "files":
			if !fileutils.IsDir(config.Path) {
				sf.log.Warn(fmt.Sprintf("tile directory %q of chart %s not found", config.Path, chart))
			}
			s = &filesProvider{
				log:    logging.New(fmt.Sprintf("files: %s", chart)),
				config: config,
			}
		default:
			sf.log.Error(fmt.Sprintf("unknown provider type %q for chart %s", config.Type, chart))
			continue
		}
		do.ProvideNamedValue(inj, chart, s)
		sf.services = append(sf.services, chart)
	}
}

// dropFallbackCycles removes the fallback of a chart whose fallback chain leads back to a chart already visited
func (f *pFactory) dropFallbackCycles() {
	for _, chart := range slices.Sorted(maps.Keys(f.configs)) {
		seen := map[string]bool{chart: true}
		for fb := f.configs[chart].Fallback; fb != ""; fb = f.configs[fb].Fallback {
			if seen[fb] {
				f.log.Error(fmt.Sprintf("fallback of chart %s to %s ends in a cycle, fallback disabled", chart, f.configs[chart].Fallback))
				c := f.configs[chart]
				c.Fallback = ""
				f.configs[chart] = c
				break
			}
			seen[fb] = true
		}
	}
}

func (f *pFactory) HasProvider(chartType string) bool {
	_, ok := f.configs[chartType]
	return ok
}

func (f *pFactory) IsCached(chartType string) bool {
	config, ok := f.configs[chartType]
	if !ok {
		return false
	}
	return !config.NoCached
}

// Provider returns the provider of the chart type
func (f *pFactory) Provider(chartType string) (Service, error) {
	if !f.HasProvider(chartType) {
		return nil, ErrNotFound
	}
	return do.InvokeNamed[Service](f.inj, chartType)
}

// Close closes all providers holding resources
func (f *pFactory) Close() {
	for _, chart := range f.services {
		s, err := do.InvokeNamed[Service](f.inj, chart)
		if err != nil {
			continue
		}
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
