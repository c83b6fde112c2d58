package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Drop reasons used as the "reason" label of FramesDropped.
const (
	DropDecode    = "decode"
	DropRadiotap  = "radiotap"
	DropTruncated = "truncated"
	DropVersion   = "version"
)

var (
	// FramesCaptured counts frames read from the capture source
	FramesCaptured = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nearby",
			Name:      "frames_captured_total",
			Help:      "Total number of frames read from the capture source",
		},
		[]string{"source"},
	)

	// FramesDecoded counts frames that decoded and reached the mapper
	FramesDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nearby",
			Name:      "frames_decoded_total",
			Help:      "Total number of frames decoded and mapped",
		},
		[]string{"type"},
	)

	// FramesDropped counts frames skipped because they could not be decoded
	FramesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nearby",
			Name:      "frames_dropped_total",
			Help:      "Total number of frames dropped",
		},
		[]string{"reason"},
	)

	AccessPoints = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "nearby",
			Name:      "access_points",
			Help:      "Number of access points in the current topology",
		},
	)

	People = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "nearby",
			Name:      "people",
			Help:      "Number of phones detected in people mode",
		},
	)

	// VendorLookups counts OUI resolutions by outcome (hit, miss, randomized, invalid, error)
	VendorLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nearby",
			Name:      "vendor_lookups_total",
			Help:      "Total number of MAC vendor lookups",
		},
		[]string{"result"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// It is idempotent.
func InitMetrics() {
	once.Do(func() {
		// Ignore AlreadyRegistered so tests that share the default registry do not panic.
		prometheus.DefaultRegisterer.Register(FramesCaptured)
		prometheus.DefaultRegisterer.Register(FramesDecoded)
		prometheus.DefaultRegisterer.Register(FramesDropped)
		prometheus.DefaultRegisterer.Register(AccessPoints)
		prometheus.DefaultRegisterer.Register(People)
		prometheus.DefaultRegisterer.Register(VendorLookups)
	})
}

// ObserveVendorLookup is a fingerprint.Resolver observer that feeds VendorLookups.
func ObserveVendorLookup(result string) {
	VendorLookups.WithLabelValues(result).Inc()
}
