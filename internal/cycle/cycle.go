// Package cycle resolves the cache version tags of the chart data cycles.
package cycle

import (
	"fmt"
	"math"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/pkg/errors"
	"github.com/samber/do/v2"
	"github.com/willie68/go_charttiles/internal/logging"
)

const (
	// Length of one chart cycle
	Length = 28 * 24 * time.Hour

	// DefaultEpoch effective date of cycle 2001
	DefaultEpoch = "2020-01-02"
)

type Config struct {
	Static string `yaml:"static"` // fixed tag, disables the cycle calculation
	Epoch  string `yaml:"epoch"`  // effective date of any known cycle, yyyy-mm-dd
	TTL    int    `yaml:"ttl"`    // in minutes
}

// Service calculates the tag of the cycle effective now, shifted by a number of cycles.
// Tags are YYNN, NN is the number of the cycle in its year starting with 01.
type Service struct {
	static string
	epoch  time.Time
	now    func() time.Time
	tags   *ttlcache.Cache[int, string]
}

func Init(inj do.Injector) {
	cfg := do.MustInvoke[*Config](inj)
	s, err := New(*cfg)
	if err != nil {
		logging.New("cycle").Error(fmt.Sprintf("invalid cycle config, using defaults: %v", err))
		s, _ = New(Config{Static: cfg.Static, TTL: cfg.TTL})
	}
	do.ProvideValue(inj, s)
}

func New(cfg Config) (*Service, error) {
	return newService(cfg, time.Now)
}

func newService(cfg Config, now func() time.Time) (*Service, error) {
	es := cfg.Epoch
	if es == "" {
		es = DefaultEpoch
	}
	epoch, err := time.Parse(time.DateOnly, es)
	if err != nil {
		return nil, errors.Wrapf(err, "can't parse cycle epoch %q", es)
	}
	ttl := time.Duration(cfg.TTL) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}
	s := &Service{
		static: cfg.Static,
		epoch:  epoch,
		now:    now,
	}
	loader := ttlcache.LoaderFunc[int, string](
		func(c *ttlcache.Cache[int, string], adjust int) *ttlcache.Item[int, string] {
			return c.Set(adjust, s.Tag(s.now(), adjust), ttlcache.DefaultTTL)
		},
	)
	s.tags = ttlcache.New(
		ttlcache.WithTTL[int, string](ttl),
		ttlcache.WithLoader[int, string](loader),
	)
	return s, nil
}

// Version returns the tag of the current cycle shifted by adjust cycles
func (s *Service) Version(adjust int) string {
	if s.static != "" {
		return s.static
	}
	return s.tags.Get(adjust).Value()
}

// Tag returns the tag of the cycle effective at t shifted by adjust cycles
func (s *Service) Tag(t time.Time, adjust int) string {
	eff := s.Effective(t, adjust)
	return fmt.Sprintf("%02d%02d", eff.Year()%100, (eff.YearDay()-1)/28+1)
}

// Effective returns the effective date of the cycle active at t shifted by adjust cycles
func (s *Service) Effective(t time.Time, adjust int) time.Time {
	n := int(math.Floor(float64(t.Sub(s.epoch)) / float64(Length)))
	return s.epoch.Add(time.Duration(n+adjust) * Length)
}
