package tilecache

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/samber/do/v2"
	"github.com/willie68/go_charttiles/internal/logging"
)

// TileCache stores tile images under their tile names
type TileCache interface {
	Has(name string) bool
	Tile(name string) (io.ReadCloser, bool)
	Save(name string, data io.Reader) error
	IsActive() bool
}

type Config struct {
	Path   string `yaml:"path"` // empty for an in memory cache
	Active bool   `yaml:"active"`
	MaxAge int    `yaml:"maxage"` // in hours
}

type Cache struct {
	log    *slog.Logger
	maxage time.Duration

	// mu guards db and active, Close waits for running reads and writes
	mu     sync.RWMutex
	db     *badger.DB
	active bool

	stop chan struct{}
	once sync.Once
}

var _ TileCache = (*Cache)(nil)

func Init(inj do.Injector) {
	cfg := do.MustInvoke[*Config](inj)
	c, err := New(*cfg)
	if err != nil {
		c.log.Error(fmt.Sprintf("can't open tile cache, caching disabled: %v", err))
	}
	do.ProvideValue(inj, c)
}

// New opens the cache, an inactive cache is returned on errors.
func New(cfg Config) (*Cache, error) {
	c := &Cache{
		log:    logging.New("tilecache"),
		active: false,
		maxage: time.Duration(cfg.MaxAge) * time.Hour,
		stop:   make(chan struct{}),
	}
	if !cfg.Active {
		return c, nil
	}
	opts := badger.DefaultOptions(cfg.Path).WithLogger(&badgerLogger{log: c.log})
	if cfg.Path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return c, errors.Wrapf(err, "can't open badger db at %q", cfg.Path)
	}
	c.db = db
	c.active = true
	if cfg.Path != "" {
		c.startGCJob()
	}
	return c, nil
}

func (c *Cache) startGCJob() {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				c.runGC()
			}
		}
	}()
}

func (c *Cache) runGC() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.active {
		return
	}
	err := c.db.RunValueLogGC(0.5)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		c.log.Error(fmt.Sprintf("cache gc error: %v", err))
		return
	}
	c.log.Debug("cache gc completed")
}

func (c *Cache) IsActive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

func (c *Cache) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.has(name)
}

func (c *Cache) has(name string) bool {
	if !c.active {
		return false
	}
	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(name))
		return err
	})
	return err == nil
}

func (c *Cache) Tile(name string) (io.ReadCloser, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.active {
		return nil, false
	}
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.log.Error(fmt.Sprintf("error reading tile %s: %v", name, err))
		}
		return nil, false
	}
	return io.NopCloser(bytes.NewReader(data)), true
}

// Save stores the tile, tiles already in the cache are kept.
func (c *Cache) Save(name string, data io.Reader) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.active {
		return nil
	}
	if c.has(name) {
		return nil
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return errors.Wrapf(err, "can't read tile %s", name)
	}
	e := badger.NewEntry([]byte(name), buf)
	if c.maxage > 0 {
		e = e.WithTTL(c.maxage)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(e)
	})
}

// Names lists the names of all cached tiles with the prefix
func (c *Cache) Names(prefix string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0)
	if !c.active {
		return names, nil
	}
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return names, err
}

func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return nil
	}
	c.once.Do(func() { close(c.stop) })
	c.active = false
	return c.db.Close()
}

// badgerLogger routes the badger messages into the service logging
type badgerLogger struct {
	log *slog.Logger
}

func (b *badgerLogger) Errorf(format string, args ...interface{}) {
	b.log.Error(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Warningf(format string, args ...interface{}) {
	b.log.Warn(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Infof(format string, args ...interface{}) {
	b.log.Debug(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Debugf(format string, args ...interface{}) {
	b.log.Debug(fmt.Sprintf(format, args...))
}
