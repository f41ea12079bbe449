package tilecache

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tileName = "tiles/42/sectional/all/5/101/201.png"

func TestInactive(t *testing.T) {
	ast := assert.New(t)
	c, err := New(Config{Active: false})
	ast.NoError(err)
	ast.False(c.IsActive())

	ast.NoError(c.Save(tileName, bytes.NewReader([]byte("png"))))
	ast.False(c.Has(tileName))
	_, ok := c.Tile(tileName)
	ast.False(ok)
	ast.NoError(c.Close())
}

func TestSaveAndRead(t *testing.T) {
	ast := assert.New(t)
	c, err := New(Config{Active: true, MaxAge: 1})
	ast.NoError(err)
	defer c.Close()
	ast.True(c.IsActive())

	ast.False(c.Has(tileName))
	ast.NoError(c.Save(tileName, bytes.NewReader([]byte("first"))))
	ast.True(c.Has(tileName))

	// an existing tile is not overwritten
	ast.NoError(c.Save(tileName, bytes.NewReader([]byte("second"))))

	rd, ok := c.Tile(tileName)
	ast.True(ok)
	data, err := io.ReadAll(rd)
	ast.NoError(err)
	ast.NoError(rd.Close())
	ast.Equal("first", string(data))

	_, ok = c.Tile("tiles/42/sectional/all/5/101/202.png")
	ast.False(ok)
}

func TestNames(t *testing.T) {
	ast := assert.New(t)
	c, err := New(Config{Active: true})
	ast.NoError(err)
	defer c.Close()

	for _, n := range []string{
		"tiles/42/sectional/all/5/1/1.png",
		"tiles/42/sectional/all/5/1/2.png",
		"tiles/42/ifrlow/all/5/1/1.png",
	} {
		ast.NoError(c.Save(n, bytes.NewReader([]byte(n))))
	}
	names, err := c.Names("tiles/42/sectional/")
	ast.NoError(err)
	ast.Equal([]string{"tiles/42/sectional/all/5/1/1.png", "tiles/42/sectional/all/5/1/2.png"}, names)
}

func TestPersistent(t *testing.T) {
	ast := assert.New(t)
	path := t.TempDir()
	c, err := New(Config{Active: true, Path: path})
	ast.NoError(err)
	ast.NoError(c.Save(tileName, bytes.NewReader([]byte("png"))))
	ast.NoError(c.Close())
	ast.False(c.IsActive())

	c, err = New(Config{Active: true, Path: path})
	ast.NoError(err)
	defer c.Close()
	ast.True(c.Has(tileName))
}

func TestCloseWhileInUse(t *testing.T) {
	ast := assert.New(t)
	c, err := New(Config{Active: true})
	ast.NoError(err)
	ast.NoError(c.Save(tileName, bytes.NewReader([]byte("png"))))

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			<-start
			for j := range 50 {
				name := fmt.Sprintf("tiles/42/sectional/all/5/%d/%d.png", i, j)
				_ = c.Save(name, bytes.NewReader([]byte(name)))
				c.Has(name)
				if rd, ok := c.Tile(tileName); ok {
					_, _ = io.ReadAll(rd)
				}
				_, _ = c.Names("tiles/42/")
			}
		})
	}
	wg.Go(func() {
		<-start
		ast.NoError(c.Close())
	})
	close(start)
	wg.Wait()

	ast.False(c.IsActive())
	ast.False(c.Has(tileName))
	_, ok := c.Tile(tileName)
	ast.False(ok)
	ast.NoError(c.Save(tileName, bytes.NewReader([]byte("png"))))
	ast.NoError(c.Close())
}
