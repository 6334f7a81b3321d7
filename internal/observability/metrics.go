// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dakku_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dakku_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// StorageUploadsTotal counts image uploads by result.
	StorageUploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dakku_storage_uploads_total",
		Help: "Total number of image uploads by result",
	}, []string{"result"})

	// StorageUploadLatency records object storage upload latency.
	StorageUploadLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dakku_storage_upload_latency_seconds",
		Help:    "Object storage upload latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// PostsCreatedTotal counts created posts.
	PostsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dakku_posts_created_total",
		Help: "Total number of posts created",
	})

	// CommentsCreatedTotal counts created comments.
	CommentsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dakku_comments_created_total",
		Help: "Total number of comments created",
	})

	// LikeTogglesTotal counts like toggles by resulting state.
	LikeTogglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dakku_like_toggles_total",
		Help: "Total number of like toggles by resulting state",
	}, []string{"state"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

// ObserveUpload records the outcome and latency of an object storage upload.
func ObserveUpload(start time.Time, err error) {
	StorageUploadLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		StorageUploadsTotal.WithLabelValues("failure").Inc()
		return
	}
	StorageUploadsTotal.WithLabelValues("success").Inc()
}
