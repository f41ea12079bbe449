package measurement

import (
	"sync"
	"time"
)

// stats of the finished runs of a point
type stats struct {
	runs     int
	failures int
	total    time.Duration
	fastest  time.Duration
	slowest  time.Duration
	inFlight int
	peak     int
}

// Point collects the runs of one named operation, e.g. reading a tile from a provider
type Point struct {
	name string
	mu   sync.Mutex
	st   stats
}

func newPoint(name string) *Point {
	return &Point{name: name}
}

func (p *Point) Name() string {
	return p.name
}

func (p *Point) enter() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.st.inFlight++
	p.st.peak = max(p.st.peak, p.st.inFlight)
}

func (p *Point) leave(d time.Duration, failed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.st.inFlight = max(p.st.inFlight-1, 0)
	if failed {
		p.st.failures++
		return
	}
	p.st.runs++
	p.st.total += d
	if p.st.runs == 1 || d < p.st.fastest {
		p.st.fastest = d
	}
	p.st.slowest = max(p.st.slowest, d)
}

// Data snapshot of the point, durations in milliseconds
func (p *Point) Data() Data {
	p.mu.Lock()
	st := p.st
	p.mu.Unlock()
	var avg time.Duration
	if st.runs > 0 {
		avg = st.total / time.Duration(st.runs)
	}
	return Data{
		Name:      p.name,
		Min:       st.fastest.Milliseconds(),
		Max:       st.slowest.Milliseconds(),
		Average:   avg.Milliseconds(),
		Total:     st.total.Milliseconds(),
		Count:     st.runs,
		Errors:    st.failures,
		MaxActive: st.peak,
	}
}
