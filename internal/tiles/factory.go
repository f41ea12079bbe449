package tiles

import (
	"github.com/samber/do/v2"
	"github.com/willie68/go_charttiles/internal/mercantile"
)

// Factory builds tiles for one chart context
type Factory struct {
	ctx Context
	pr  Projector
}

// NewFactory creates a factory, the projector has to be safe for concurrent use
// if the factory is shared.
func NewFactory(ctx Context, pr Projector) *Factory {
	return &Factory{
		ctx: ctx,
		pr:  pr,
	}
}

// Init registers a factory for the configured chart context and the mercator projection
func Init(inj do.Injector) {
	ctx := do.MustInvoke[*Context](inj)
	do.ProvideValue(inj, NewFactory(*ctx, mercantile.Mercator{}))
}

// At returns the tile containing the point at the default zoom, used for elevation lookups.
func (f *Factory) At(lon, lat float64) *Tile {
	return f.project(lon, lat, DefaultZoom)
}

// AtLevel returns the tile containing the point for a display zoom. Display and
// projection zoom run in opposite directions, the projection gets 10 - zoom.
func (f *Factory) AtLevel(lon, lat, zoom float64) *Tile {
	return f.project(lon, lat, DefaultZoom-zoom)
}

// Tile returns the tile with the given grid indices at a projection zoom
func (f *Factory) Tile(col, row int, zoom float64) *Tile {
	return newTile(f.ctx, f.pr, zoom, f.pr.ProjectTile(col, row, zoom))
}

// WithChart returns a factory for another chart type sharing the projector
func (f *Factory) WithChart(chartType string) *Factory {
	ctx := f.ctx
	ctx.ChartType = chartType
	return NewFactory(ctx, f.pr)
}

func (f *Factory) Context() Context {
	return f.ctx
}

func (f *Factory) project(lon, lat, zoom float64) *Tile {
	return newTile(f.ctx, f.pr, zoom, f.pr.Project(lon, lat, zoom))
}
