package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ShopMetrics records transaction outcomes and timings.
type ShopMetrics struct {
	duration     *prometheus.HistogramVec
	purchases    *prometheus.CounterVec
	reservations *prometheus.CounterVec
}

// NewShopMetrics registers the shop metrics on the provided registerer.
func NewShopMetrics(reg prometheus.Registerer) *ShopMetrics {
	if reg == nil {
		return &ShopMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shop_transaction_duration_seconds",
		Help:    "Duration of shop transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	purchases := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_purchases_total",
		Help: "Purchase attempts by outcome.",
	}, []string{"outcome"})
	reservations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_reservations_total",
		Help: "Reservation attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, purchases, reservations)
	return &ShopMetrics{
		duration:     duration,
		purchases:    purchases,
		reservations: reservations,
	}
}

// ObserveDuration records the duration for the named operation.
func (s *ShopMetrics) ObserveDuration(operation string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncPurchase increments the purchase counter for an outcome label.
func (s *ShopMetrics) IncPurchase(outcome string) {
	if s == nil || s.purchases == nil {
		return
	}
	s.purchases.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncReservation increments the reservation counter for an outcome label.
func (s *ShopMetrics) IncReservation(outcome string) {
	if s == nil || s.reservations == nil {
		return
	}
	s.reservations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
