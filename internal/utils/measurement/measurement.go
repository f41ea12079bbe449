// Package measurement collects timings of named measure points.
package measurement

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/samber/do/v2"
)

// Service holds the measure points of the process
type Service struct {
	active bool
	mu     sync.Mutex
	points map[string]*Point
}

type Data struct {
	Name      string `json:"name"`
	Min       int64  `json:"min"`
	Max       int64  `json:"max"`
	Average   int64  `json:"average"`
	Total     int64  `json:"total"`
	Count     int    `json:"count"`
	Errors    int    `json:"errors"`
	MaxActive int    `json:"maxActive"`
}

type metricsConfig interface {
	MetricsActive() bool
}

// Init registers the service, measuring is only active if the config says so
func Init(inj do.Injector) {
	active := false
	if mc, err := do.InvokeAs[metricsConfig](inj); err == nil {
		active = mc.MetricsActive()
	}
	do.ProvideValue(inj, New(active))
}

func New(active bool) *Service {
	return &Service{
		active: active,
		points: make(map[string]*Point),
	}
}

func (s *Service) Active() bool {
	return s.active
}

// Start starts a timer for the point, nil if measuring is inactive
func (s *Service) Start(name string) *Timer {
	if s == nil || !s.active {
		return nil
	}
	return newTimer(s.Point(name))
}

// Point returns the point with the name, creating it on first use
func (s *Service) Point(name string) *Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.points[name]
	if !ok {
		p = newPoint(name)
		s.points[name] = p
	}
	return p
}

// Datas the data of all points sorted by name
func (s *Service) Datas() []Data {
	s.mu.Lock()
	datas := make([]Data, 0, len(s.points))
	for _, p := range s.points {
		datas = append(datas, p.Data())
	}
	s.mu.Unlock()
	slices.SortFunc(datas, func(d1, d2 Data) int {
		return strings.Compare(d1.Name, d2.Name)
	})
	return datas
}

// Report writes a table of all points with at least one measurement
func (s *Service) Report(w io.Writer) {
	fmt.Fprintf(w, "%-36s %8s %8s %8s %8s %8s %6s\r\n", "point", "count", "errors", "min ms", "avg ms", "max ms", "max #")
	for _, d := range s.Datas() {
		if d.Count == 0 && d.Errors == 0 {
			continue
		}
		fmt.Fprintf(w, "%-36s %8d %8d %8d %8d %8d %6d\r\n", d.Name, d.Count, d.Errors, d.Min, d.Average, d.Max, d.MaxActive)
	}
}
