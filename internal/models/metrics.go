package models

import "time"

// SystemMetrics is an instrumentation snapshot returned by the metrics summary endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	AvailabilityChecks       uint64    `json:"availability_checks"`
	ConflictsDetected        uint64    `json:"conflicts_detected"`
	Publishes                uint64    `json:"publishes"`
	StatusToggles            uint64    `json:"status_toggles"`
	IndexedSessions          int       `json:"indexed_sessions"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
