// Package prefetch fills the tile cache with the neighbourhood of a tile.
package prefetch

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/willie68/go_charttiles/internal/logging"
	"github.com/willie68/go_charttiles/internal/tiles"
)

const numWorkers = 8

var log = logging.New("prefetch")

type imageService interface {
	Cached(tile *tiles.Tile) bool
	Image(tile *tiles.Tile) (io.ReadCloser, error)
}

// Result counts of one prefetch run
type Result struct {
	Total   int
	Cached  int
	Fetched int
	Failed  int
}

func (r Result) String() string {
	return fmt.Sprintf("tiles: %d, already cached: %d, fetched: %d, failed: %d", r.Total, r.Cached, r.Fetched, r.Failed)
}

// Grid returns the tiles around center, radius tiles in every direction, row by row from the top
func Grid(center *tiles.Tile, radius int) []*tiles.Tile {
	radius = max(radius, 0)
	grid := make([]*tiles.Tile, 0, (2*radius+1)*(2*radius+1))
	for row := -radius; row <= radius; row++ {
		for col := -radius; col <= radius; col++ {
			grid = append(grid, center.Neighbor(col, row))
		}
	}
	return grid
}

// Prefetch loads all tiles of the grid around center which are not cached yet
func Prefetch(is imageService, center *tiles.Tile, radius int) Result {
	grid := Grid(center, radius)
	jobs := make(chan *tiles.Tile, len(grid))
	var fetched, failed atomic.Int64
	wg := sync.WaitGroup{}

	for range numWorkers {
		wg.Go(func() {
			for t := range jobs {
				rd, err := is.Image(t)
				if err != nil {
					log.Debug(fmt.Sprintf("error getting tile %s: %v", t.String(), err))
					failed.Add(1)
					continue
				}
				_, err = io.Copy(io.Discard, rd)
				rd.Close()
				if err != nil {
					log.Error(fmt.Sprintf("error reading tile %s: %v", t.String(), err))
					failed.Add(1)
					continue
				}
				fetched.Add(1)
			}
		})
	}

	res := Result{Total: len(grid)}
	for _, t := range grid {
		if is.Cached(t) {
			res.Cached++
			continue
		}
		jobs <- t
	}
	close(jobs)
	wg.Wait()

	res.Fetched = int(fetched.Load())
	res.Failed = int(failed.Load())
	log.Info(fmt.Sprintf("prefetch %s done, %s", center.String(), res.String()))
	return res
}
