package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
)

// ShopMetrics содержит метрики каталога, журнала заказов, хранилища и HTTP.
// Все методы безопасны для nil-получателя.
type ShopMetrics struct {
	ordersCreated  prometheus.Counter
	ordersRejected *prometheus.CounterVec
	catalogChanges *prometheus.CounterVec

	storageState    *prometheus.GaugeVec
	connectAttempts *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var storageStates = []domain.ConnectionState{
	domain.StateDisconnected,
	domain.StateConnecting,
	domain.StateConnected,
}

// NewShopMetrics регистрирует метрики в DefaultRegisterer.
func NewShopMetrics() *ShopMetrics {
	return NewShopMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewShopMetricsWithRegisterer регистрирует метрики в переданном registerer.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewShopMetricsWithRegisterer(registerer prometheus.Registerer) *ShopMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ShopMetrics{
		ordersCreated: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "titan_orders_created_total",
			Help: "Total number of orders written to the ledger",
		})),
		ordersRejected: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "titan_orders_rejected_total",
			Help: "Total number of rejected order requests grouped by reason",
		}, []string{"reason"})),
		catalogChanges: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "titan_catalog_changes_total",
			Help: "Total number of catalog mutations grouped by operation",
		}, []string{"operation"})),
		storageState: register(registerer, prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "titan_storage_connection_state",
			Help: "Current storage connection state (1 for the active state)",
		}, []string{"state"})),
		connectAttempts: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "titan_storage_connect_attempts_total",
			Help: "Total number of storage connection attempts grouped by result",
		}, []string{"result"})),
		httpRequests: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "titan_http_requests_total",
			Help: "Total number of HTTP requests grouped by method, route and status",
		}, []string{"method", "route", "status"})),
		httpDuration: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "titan_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "route"})),
	}
}

func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) C {
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(C)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type: %T", alreadyRegistered.ExistingCollector))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *ShopMetrics) RecordOrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// RecordOrderRejected учитывает отклонённый заказ (validation, unknown_product, storage, ...).
func (m *ShopMetrics) RecordOrderRejected(reason string) {
	if m == nil {
		return
	}
	m.ordersRejected.WithLabelValues(reason).Inc()
}

// RecordCatalogChange учитывает изменение каталога (create, update, delete, seed).
func (m *ShopMetrics) RecordCatalogChange(operation string) {
	if m == nil {
		return
	}
	m.catalogChanges.WithLabelValues(operation).Inc()
}

// SetStorageState выставляет 1 для текущего состояния и 0 для остальных.
func (m *ShopMetrics) SetStorageState(state domain.ConnectionState) {
	if m == nil {
		return
	}
	for _, s := range storageStates {
		value := 0.0
		if s == state {
			value = 1
		}
		m.storageState.WithLabelValues(string(s)).Set(value)
	}
}

// RecordConnectAttempt учитывает попытку подключения к хранилищу.
func (m *ShopMetrics) RecordConnectAttempt(result string) {
	if m == nil {
		return
	}
	m.connectAttempts.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest записывает запрос и его длительность.
func (m *ShopMetrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, fmt.Sprintf("%d", status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
