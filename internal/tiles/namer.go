package tiles

import (
	"math"
	"strconv"
	"strings"

	"github.com/samber/do/v2"
)

// Versioner resolves the cache version tag for a cycle adjustment
type Versioner interface {
	Version(cycleAdjust int) string
}

// VersionFunc adapts a function to a Versioner
type VersionFunc func(cycleAdjust int) string

func (f VersionFunc) Version(cycleAdjust int) string {
	return f(cycleAdjust)
}

// Namer builds the resource paths of tiles. The path is the key of the tile
// in the cache and the path on the tile server, so it must not change for the same tile.
type Namer struct {
	versions Versioner
}

func NewNamer(versions Versioner) *Namer {
	return &Namer{versions: versions}
}

// InitNamer registers a namer using the registered Versioner
func InitNamer(inj do.Injector) {
	do.ProvideValue(inj, NewNamer(do.MustInvokeAs[Versioner](inj)))
}

// Name returns the path of the tile at the offset of t:
// tiles/<version>/<chart type>/all/<zoom>/<col>/<row><ext>
func (n *Namer) Name(t *Tile, col, row int) string {
	c, r := t.NeighborIndices(col, row)
	ctx := t.Context()

	var sb strings.Builder
	sb.WriteString(n.Prefix(ctx))
	sb.WriteString("all/")
	sb.WriteString(strconv.Itoa(int(math.Floor(t.Zoom()))))
	sb.WriteString("/")
	sb.WriteString(strconv.Itoa(c))
	sb.WriteString("/")
	sb.WriteString(strconv.Itoa(r))
	sb.WriteString(ctx.ImageExtension)
	return sb.String()
}

// Prefix the common start of all tile names of the chart context: tiles/<version>/<chart type>/
func (n *Namer) Prefix(ctx Context) string {
	return "tiles/" + n.versions.Version(ctx.CycleAdjust) + "/" + ctx.ChartType + "/"
}

// TileName the name of the tile itself
func (n *Namer) TileName(t *Tile) string {
	return n.Name(t, 0, 0)
}
