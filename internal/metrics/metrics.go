// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filterRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "servo",
		Name:      "catalog_filter_requests_total",
		Help:      "Visible-subset computations per collection.",
	}, []string{"collection"})

	visibleItems = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "servo",
		Name:      "catalog_visible_items",
		Help:      "Number of items left after filtering.",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
	}, []string{"collection"})

	submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "servo",
		Name:      "reservation_submissions_total",
		Help:      "Reservation submit attempts by outcome (invalid, Succeeded, Failed).",
	}, []string{"form", "outcome"})

	prefills = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "servo",
		Name:      "reservation_prefills_total",
		Help:      "Forms prefilled from the stored identity or the remote profile.",
	}, []string{"form", "source"})

	geocodeLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "servo",
		Name:      "geocode_lookups_total",
		Help:      "Geocoder calls by kind and result.",
	}, []string{"kind", "result"})
)

func ObserveFilter(collection string, visible int) {
	filterRequests.WithLabelValues(collection).Inc()
	visibleItems.WithLabelValues(collection).Observe(float64(visible))
}

func ObserveSubmission(form, outcome string) {
	submissions.WithLabelValues(form, outcome).Inc()
}

func ObservePrefill(form, source string) {
	prefills.WithLabelValues(form, source).Inc()
}

func ObserveGeocode(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	geocodeLookups.WithLabelValues(kind, result).Inc()
}
