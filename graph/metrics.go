package graph

import (
	"runtime"
	"strings"
	"sync"
	"time"
)

// AppMetrics records operational counters for the HTTP app: requests,
// processed export files, commits, and questions answered.
type AppMetrics interface {
	RecordRequest(method, path string, status int, latencyMS int64)
	RecordFile(fileType RecordType, rows int)
	RecordCommit(latencyMS int64, err error)
	RecordQuery(latencyMS int64, rowCount int, err error)
	Snapshot() MetricsSnapshot
}

type RouteStats struct {
	Count        int64 `json:"count"`
	ErrorCount   int64 `json:"error_count"`
	LatencySumMS int64 `json:"latency_sum_ms"`
	LatencyMinMS int64 `json:"latency_min_ms"`
	LatencyMaxMS int64 `json:"latency_max_ms"`
}

type FileStats struct {
	Count     int64 `json:"count"`
	TotalRows int64 `json:"total_rows"`
}

type CommitStats struct {
	Count        int64 `json:"count"`
	ErrorCount   int64 `json:"error_count"`
	LatencySumMS int64 `json:"latency_sum_ms"`
	LatencyMaxMS int64 `json:"latency_max_ms"`
}

type QueryStats struct {
	Count        int64 `json:"count"`
	ErrorCount   int64 `json:"error_count"`
	LatencySumMS int64 `json:"latency_sum_ms"`
	LatencyMaxMS int64 `json:"latency_max_ms"`
	TotalRows    int64 `json:"total_rows"`
}

type RuntimeStats struct {
	HeapAllocBytes uint64 `json:"heap_alloc_bytes"`
	Goroutines     int    `json:"goroutines"`
	NumGC          uint32 `json:"num_gc"`
}

type MetricsSnapshot struct {
	RouteStats    map[string]RouteStats `json:"route_stats"`
	FileStats     map[string]FileStats  `json:"file_stats"`
	CommitStats   CommitStats           `json:"commit_stats"`
	QueryStats    QueryStats            `json:"query_stats"`
	Runtime       RuntimeStats          `json:"runtime"`
	UptimeSeconds int64                 `json:"uptime_seconds"`
	StartTime     time.Time             `json:"start_time"`
}

// noop implementation: used when metrics are disabled.
type NoopAppMetrics struct{}

func (NoopAppMetrics) RecordRequest(method, path string, status int, latencyMS int64) {}

func (NoopAppMetrics) RecordFile(fileType RecordType, rows int) {}

func (NoopAppMetrics) RecordCommit(latencyMS int64, err error) {}

func (NoopAppMetrics) RecordQuery(latencyMS int64, rowCount int, err error) {}

func (NoopAppMetrics) Snapshot() MetricsSnapshot { return MetricsSnapshot{} }

// in-memory implementation: records counters into local maps.
type InMemAppMetrics struct {
	mu sync.Mutex

	routeStats  map[string]RouteStats
	fileStats   map[string]FileStats
	commitStats CommitStats
	queryStats  QueryStats

	startTime time.Time
}

func NewInMemAppMetrics() *InMemAppMetrics {
	return &InMemAppMetrics{
		routeStats: make(map[string]RouteStats),
		fileStats:  make(map[string]FileStats),
		startTime:  time.Now().UTC(),
	}
}

func (m *InMemAppMetrics) RecordRequest(method, path string, status int, latencyMS int64) {
	if m == nil {
		return
	}
	method = strings.TrimSpace(strings.ToUpper(method))
	path = strings.TrimSpace(path)
	if method == "" {
		method = "UNKNOWN"
	}
	if path == "" {
		path = "/"
	}
	if latencyMS < 0 {
		latencyMS = 0
	}
	key := method + " " + path

	m.mu.Lock()
	defer m.mu.Unlock()

	v := m.routeStats[key]
	v.Count++
	if status >= 400 {
		v.ErrorCount++
	}
	v.LatencySumMS += latencyMS
	if v.Count == 1 || latencyMS < v.LatencyMinMS {
		v.LatencyMinMS = latencyMS
	}
	if latencyMS > v.LatencyMaxMS {
		v.LatencyMaxMS = latencyMS
	}
	m.routeStats[key] = v
}

func (m *InMemAppMetrics) RecordFile(fileType RecordType, rows int) {
	if m == nil {
		return
	}
	if rows < 0 {
		rows = 0
	}
	key := string(fileType)
	if key == "" {
		key = "UNKNOWN"
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.fileStats[key]
	v.Count++
	v.TotalRows += int64(rows)
	m.fileStats[key] = v
}

func (m *InMemAppMetrics) RecordCommit(latencyMS int64, err error) {
	if m == nil {
		return
	}
	if latencyMS < 0 {
		latencyMS = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitStats.Count++
	if err != nil {
		m.commitStats.ErrorCount++
	}
	m.commitStats.LatencySumMS += latencyMS
	if latencyMS > m.commitStats.LatencyMaxMS {
		m.commitStats.LatencyMaxMS = latencyMS
	}
}

func (m *InMemAppMetrics) RecordQuery(latencyMS int64, rowCount int, err error) {
	if m == nil {
		return
	}
	if latencyMS < 0 {
		latencyMS = 0
	}
	if rowCount < 0 {
		rowCount = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryStats.Count++
	if err != nil {
		m.queryStats.ErrorCount++
	}
	m.queryStats.LatencySumMS += latencyMS
	if latencyMS > m.queryStats.LatencyMaxMS {
		m.queryStats.LatencyMaxMS = latencyMS
	}
	m.queryStats.TotalRows += int64(rowCount)
}

func (m *InMemAppMetrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	m.mu.Lock()
	defer m.mu.Unlock()

	routes := make(map[string]RouteStats, len(m.routeStats))
	for k, v := range m.routeStats {
		routes[k] = v
	}
	files := make(map[string]FileStats, len(m.fileStats))
	for k, v := range m.fileStats {
		files[k] = v
	}
	return MetricsSnapshot{
		RouteStats:  routes,
		FileStats:   files,
		CommitStats: m.commitStats,
		QueryStats:  m.queryStats,
		Runtime: RuntimeStats{
			HeapAllocBytes: mem.HeapAlloc,
			Goroutines:     runtime.NumGoroutine(),
			NumGC:          mem.NumGC,
		},
		UptimeSeconds: int64(time.Since(m.startTime).Seconds()),
		StartTime:     m.startTime,
	}
}
