// Package metrics содержит метрики сервиса сокращения ссылок в формате Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tinyurl"

// Операции, для которых собираются метрики.
const (
	OpShorten = "shorten"
	OpExpand  = "expand"
	OpDelete  = "delete"
)

// Metrics содержит счетчики работы кеша и хранилища.
type Metrics struct {
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
	Coalesced   *prometheus.CounterVec
	StoreErrors *prometheus.CounterVec
	Collisions  prometheus.Counter
	registerer  prometheus.Registerer
}

// New создает метрики и регистрирует их в registerer.
func New(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Number of lookups served from the cache.",
		}, []string{"op"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Number of lookups that missed the cache.",
		}, []string{"op"}),
		Coalesced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coalesced_total",
			Help:      "Number of callers that shared an in-flight resolution.",
		}, []string{"op"}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Number of resolutions failed by the store.",
		}, []string{"op"}),
		Collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collisions_total",
			Help:      "Number of short code collisions.",
		}),
		registerer: registerer,
	}

	registerer.MustRegister(m.CacheHits, m.CacheMisses, m.Coalesced, m.StoreErrors, m.Collisions)
	return m
}

// NewNop создает метрики, которые нигде не экспортируются.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// RegisterCacheSize регистрирует метрику с текущим количеством записей в кеше.
func (m *Metrics) RegisterCacheSize(size func() int) {
	m.registerer.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cache_entries",
		Help:      "Number of entries currently held by the cache.",
	}, func() float64 {
		return float64(size())
	}))
}
