package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"guest_beer/internal/domain"
)

const namespace = "guestbeer"

// Menu loads hit a file, MySQL or one remote GET; anything past 10s is
// already a timeout.
var loadBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests served."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request duration seconds.", Buckets: prometheus.DefBuckets},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "external_requests_total", Help: "Requests to the master data endpoint."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "external_request_duration_seconds", Help: "Master data request duration seconds.", Buckets: loadBuckets},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Menu cache events."},
		[]string{"cache", "event"}, // event: hit|miss|set|del|error
	)
	MenuLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "menu_loads_total", Help: "Menu source loads by result."},
		[]string{"source", "result"}, // result: ok|unavailable|malformed|other
	)
	MenuLoadLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "menu_load_duration_seconds", Help: "Menu source load duration seconds.", Buckets: loadBuckets},
		[]string{"source"},
	)
	MenuBeers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: namespace, Name: "menu_beers", Help: "Beer records in the last successful load."},
		[]string{"source"},
	)
)

// Serve exposes reg on a separate listener when addr is set.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		HTTPRequests, HTTPLatency,
		ExternalRequests, ExternalLatency,
		CacheEvents,
		MenuLoads, MenuLoadLatency, MenuBeers,
	)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

// ObserveExternal records one outbound call; status 0 means no response.
func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) {
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveMenuLoad(source string, records int, dur time.Duration, err error) {
	MenuLoadLatency.WithLabelValues(source).Observe(dur.Seconds())
	MenuLoads.WithLabelValues(source, ErrorKind(err)).Inc()
	if err == nil {
		MenuBeers.WithLabelValues(source).Set(float64(records))
	}
}

// ErrorKind maps err onto a small fixed label set.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrSourceUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrMalformedPayload), errors.Is(err, domain.ErrMalformedRecord):
		return "malformed"
	default:
		return "other"
	}
}
