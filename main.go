package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/samber/do/v2"
	flag "github.com/spf13/pflag"
	"github.com/willie68/go_charttiles/configs"
	"github.com/willie68/go_charttiles/internal"
	"github.com/willie68/go_charttiles/internal/config"
	"github.com/willie68/go_charttiles/internal/logging"
	"github.com/willie68/go_charttiles/internal/prefetch"
	"github.com/willie68/go_charttiles/internal/tiles"
	"github.com/willie68/go_charttiles/internal/tileservice"
	"github.com/willie68/go_charttiles/internal/utils/measurement"
	"github.com/willie68/go_charttiles/pkg/extstrgutils"
	"github.com/willie68/go_charttiles/pkg/fileutils"
)

var (
	log         *slog.Logger
	configFile  string
	showVersion bool
	initConfig  bool
	lon, lat    float64
	zoom        float64
	radius      int
	charts      string
	cycleAdjust int
	doPrefetch  bool
	metrics     bool
)

func init() {
	flag.BoolVarP(&initConfig, "init", "i", false, "init config, writes out a default config.")
	flag.BoolVarP(&showVersion, "version", "v", false, "showing the version")
	flag.StringVarP(&configFile, "config", "c", "config.yaml", "this is the path and filename to the config file")
	flag.Float64Var(&lon, "lon", 0, "longitude of the position")
	flag.Float64Var(&lat, "lat", 0, "latitude of the position")
	flag.Float64VarP(&zoom, "zoom", "z", -1, "display zoom, if not set the tiles of the default zoom are used")
	flag.IntVarP(&radius, "radius", "r", 1, "number of neighbour tiles in every direction")
	flag.StringVarP(&charts, "charts", "t", "", "chart types, csv if more than one needed, default is the chart of the config")
	flag.IntVar(&cycleAdjust, "cycle", 0, "overwrite the cycle adjust of the config, -1 previous, 1 next cycle")
	flag.BoolVarP(&doPrefetch, "prefetch", "p", false, "load the tiles of the grid into the tile cache")
	flag.BoolVarP(&metrics, "metrics", "m", false, "print the metrics at the end")
	flag.Usage = func() {
		fmt.Printf("Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("examples:")
		fmt.Println("print the tile names around a position:")
		fmt.Printf("%s -c config.yaml --lon -104.67 --lat 39.86\n", os.Args[0])
		fmt.Println("print the tiles of two charts at display zoom 3 and put them into the cache:")
		fmt.Printf("%s -c config.yaml --lon -104.67 --lat 39.86 -z 3 -t sectional,ifrlow -p\n", os.Args[0])
	}
}

func main() {
	flag.Parse()
	if showVersion {
		fmt.Println(config.NewVersion().String())
		os.Exit(0)
	}
	if initConfig {
		fmt.Println(configs.ConfigFile)
		os.Exit(0)
	}
	if !fileutils.FileExists(configFile) {
		fmt.Fprint(os.Stderr, "no config given or dosn't exists.\r\n\r\n")
		flag.Usage()
		os.Exit(1)
	}
	err := config.Load(configFile)
	if err != nil {
		panic(err)
	}
	cts := extstrgutils.SplitUniqueValues(charts)
	opts := []config.Option{config.WithMetrics(metrics)}
	if len(cts) > 0 {
		opts = append(opts, config.WithChartType(cts[0]))
	}
	if flag.CommandLine.Changed("cycle") {
		opts = append(opts, config.WithCycleAdjust(cycleAdjust))
	}
	config.SetParameter(opts...)

	inj := do.New()
	internal.Init(inj)
	log = logging.New("main")
	log.Debug(fmt.Sprintf("Config:\n%s", config.JSON()))

	f := do.MustInvoke[*tiles.Factory](inj)
	n := do.MustInvoke[*tiles.Namer](inj)
	ts := do.MustInvoke[*tileservice.Service](inj)

	if len(cts) == 0 {
		cts = []string{f.Context().ChartType}
	}
	for _, ct := range cts {
		cf := f.WithChart(ct)
		var center *tiles.Tile
		if flag.CommandLine.Changed("zoom") {
			center = cf.AtLevel(lon, lat, zoom)
		} else {
			center = cf.At(lon, lat)
		}
		if doPrefetch {
			res := prefetch.Prefetch(ts, center, radius)
			fmt.Printf("prefetch %s: %s\r\n", ct, res.String())
		}
		printGrid(n, ts, center)
		if names, err := ts.CachedNames(center.Context()); err == nil {
			fmt.Printf("cached tiles of chart %s: %d\r\n", ct, len(names))
		} else {
			log.Error(fmt.Sprintf("can't list cached tiles: %v", err))
		}
	}

	if metrics {
		do.MustInvoke[*measurement.Service](inj).Report(os.Stdout)
	}
	internal.Stop(inj)
}

func printGrid(n *tiles.Namer, ts *tileservice.Service, center *tiles.Tile) {
	fmt.Printf("chart: %s, zoom: %g, center tile: %d/%d\r\n", center.Context().ChartType, center.Zoom(), center.Col(), center.Row())
	if xyz, ok := center.Projection().XYZ(); ok {
		fmt.Printf("slippy tile: %d/%d/%d, quadkey: %d\r\n", xyz.Z, xyz.X, xyz.Y, xyz.Quadkey())
	}
	fmt.Printf("position %.6f/%.6f within: %t, offset top left: %.1f/%.1f, offset center: %.1f/%.1f\r\n",
		lon, lat, center.Within(lon, lat),
		center.OffsetTopX(lon), center.OffsetTopY(lat),
		center.OffsetX(lon), center.OffsetY(lat))
	for _, t := range prefetch.Grid(center, radius) {
		mark := " "
		if ts.Cached(t) {
			mark = "*"
		}
		fmt.Printf("%s %s\r\n", mark, n.TileName(t))
	}
}
