// Пакет metrics - Prometheus метрики сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gmao_http_requests_total",
			Help: "Общее количество HTTP-запросов",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gmao_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// result: ok | not_found | failed
	EquipmentDeletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gmao_equipment_deletions_total",
			Help: "Удаления оборудования по результату",
		},
		[]string{"result"},
	)

	// kind: document | part | group
	OrphansDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gmao_orphans_deleted_total",
			Help: "Удалённые осиротевшие документы, запчасти и группы",
		},
		[]string{"kind"},
	)

	DescriptionPropagationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gmao_description_propagations_total",
		Help: "Сколько раз описание группы скопировано в оборудование",
	})

	ResolveCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gmao_resolve_cache_hits_total",
		Help: "Попадания в кэш выборок документов/запчастей",
	})

	ResolveCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gmao_resolve_cache_misses_total",
		Help: "Промахи кэша выборок документов/запчастей",
	})
)
