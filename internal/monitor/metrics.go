package monitor

import (
	"math"
	"runtime"
	"sync/atomic"
	"time"
)

// OperationType names a timed operation
type OperationType string

const (
	OperationRun     OperationType = "run"
	OperationAnalyze OperationType = "analyze"
)

// MemoryMetrics holds memory-related runtime metrics
type MemoryMetrics struct {
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapInuse  uint64 `json:"heap_inuse"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"num_gc"`
	Goroutines int    `json:"goroutines"`
}

// OperationMetrics summarizes one timed operation
type OperationMetrics struct {
	Operation    OperationType `json:"operation"`
	Count        int64         `json:"count"`
	ErrorCount   int64         `json:"error_count"`
	SuccessCount int64         `json:"success_count"`
	MinTime      time.Duration `json:"min_time_ns"`
	MaxTime      time.Duration `json:"max_time_ns"`
	AvgTime      time.Duration `json:"avg_time_ns"`
}

// Counter is a thread-safe monotonic counter
type Counter struct {
	value atomic.Int64
}

// Inc increments the counter by 1
func (c *Counter) Inc() {
	c.value.Add(1)
}

// Get returns the current counter value
func (c *Counter) Get() int64 {
	return c.value.Load()
}

// Gauge is a thread-safe level that can go up and down
type Gauge struct {
	value atomic.Int64
}

// Inc raises the gauge by 1
func (g *Gauge) Inc() {
	g.value.Add(1)
}

// Dec lowers the gauge by 1
func (g *Gauge) Dec() {
	g.value.Add(-1)
}

// Get returns the current gauge value
func (g *Gauge) Get() int64 {
	return g.value.Load()
}

// noMin marks a Timer with no recorded measurement
const noMin = math.MaxInt64

// Timer is a thread-safe duration summary
type Timer struct {
	count     atomic.Int64
	totalTime atomic.Int64
	minTime   atomic.Int64
	maxTime   atomic.Int64
}

// NewTimer creates an empty timer
func NewTimer() *Timer {
	t := &Timer{}
	t.minTime.Store(noMin)
	return t
}

// Record adds one measurement
func (t *Timer) Record(duration time.Duration) {
	nanos := duration.Nanoseconds()

	t.count.Add(1)
	t.totalTime.Add(nanos)

	for {
		current := t.minTime.Load()
		if nanos >= current || t.minTime.CompareAndSwap(current, nanos) {
			break
		}
	}
	for {
		current := t.maxTime.Load()
		if nanos <= current || t.maxTime.CompareAndSwap(current, nanos) {
			break
		}
	}
}

// Count returns the number of recorded measurements
func (t *Timer) Count() int64 {
	return t.count.Load()
}

// MinTime returns the shortest measurement, or 0 when empty
func (t *Timer) MinTime() time.Duration {
	if v := t.minTime.Load(); v != noMin {
		return time.Duration(v)
	}
	return 0
}

// MaxTime returns the longest measurement
func (t *Timer) MaxTime() time.Duration {
	return time.Duration(t.maxTime.Load())
}

// AvgTime returns the mean measurement, or 0 when empty
func (t *Timer) AvgTime() time.Duration {
	count := t.count.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(t.totalTime.Load() / count)
}

// CollectMemory reads memory statistics from the Go runtime
func CollectMemory() MemoryMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MemoryMetrics{
		HeapAlloc:  m.HeapAlloc,
		HeapInuse:  m.HeapInuse,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
	}
}
