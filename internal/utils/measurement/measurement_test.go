package measurement

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const pointName = "getTileFromProvider"

func TestInactive(t *testing.T) {
	ast := assert.New(t)
	s := New(false)
	ast.False(s.Active())

	tm := s.Start(pointName)
	ast.Nil(tm)
	ast.False(tm.Running())
	ast.Equal(time.Duration(0), tm.Stop())
	tm.Fail()
	ast.Empty(s.Datas())

	var ns *Service
	ast.Nil(ns.Start(pointName))
}

func TestTimer(t *testing.T) {
	ast := assert.New(t)
	s := New(true)

	for range 2 {
		tm := s.Start(pointName)
		ast.True(tm.Running())
		time.Sleep(50 * time.Millisecond)
		d := tm.Stop()
		ast.GreaterOrEqual(d, 50*time.Millisecond)
		ast.False(tm.Running())
		ast.Equal(d, tm.Stop())
	}
	s.Start(pointName).Fail()

	dat := s.Point(pointName).Data()
	ast.Equal(2, dat.Count)
	ast.Equal(1, dat.Errors)
	ast.GreaterOrEqual(dat.Min, int64(50))
	ast.GreaterOrEqual(dat.Average, int64(50))
	ast.GreaterOrEqual(dat.Max, dat.Min)
	ast.GreaterOrEqual(dat.Total, int64(100))
	ast.Equal(1, dat.MaxActive)
}

func TestParallel(t *testing.T) {
	ast := assert.New(t)
	s := New(true)
	start := make(chan struct{})
	var running, wg sync.WaitGroup
	for range 4 {
		running.Add(1)
		wg.Go(func() {
			tm := s.Start(pointName)
			running.Done()
			<-start
			tm.Stop()
		})
	}
	running.Wait()
	close(start)
	wg.Wait()

	dat := s.Point(pointName).Data()
	ast.Equal(4, dat.Count)
	ast.Equal(4, dat.MaxActive)
}

func TestReport(t *testing.T) {
	ast := assert.New(t)
	s := New(true)
	s.Start("b").Stop()
	s.Start("a").Stop()
	s.Point("unused")

	var buf bytes.Buffer
	s.Report(&buf)
	out := buf.String()
	ast.Contains(out, "point")
	ast.NotContains(out, "unused")
	ast.Less(bytes.Index(buf.Bytes(), []byte("\na ")), bytes.Index(buf.Bytes(), []byte("\nb ")))
}
