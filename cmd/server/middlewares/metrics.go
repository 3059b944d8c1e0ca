package middlewares

import (
	"strconv"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HubStats is the part of the event hub the metrics read.
type HubStats interface {
	Stats() (subscribers int, delivered, dropped uint64)
}

// Metrics records domain counters next to the HTTP collectors.
type Metrics struct {
	registrations *prometheus.CounterVec
}

// ObserveRegistration counts one bidder registration attempt by outcome
// ("ok", "full", "closed", "busy", ...). Safe on a nil receiver.
func (m *Metrics) ObserveRegistration(outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

// normalizeRoutePath returns the route template to prevent high cardinality
// in metrics labels. Returns the actual path for unmatched routes (404s).
func normalizeRoutePath(c *fiber.Ctx) string {
	if route := c.Route(); route != nil {
		return route.Path // already the template (e.g., "/api/products/:id")
	}
	return c.Path()
}

// normalizeStatus buckets status codes: 2xx, 4xx, 5xx, anything else verbatim
func normalizeStatus(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return strconv.Itoa(status)
}

// AttachMetrics gives the supplied Fiber app its own Prometheus registry and
// wires a /metrics endpoint, request-timing middleware, websocket hub gauges
// (when hub is non-nil) and the registration outcome counter.
func AttachMetrics(app *fiber.App, hub HubStats) *Metrics {
	reg := prometheus.NewRegistry()

	reqDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	reqTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	registrations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auction_registrations_total",
			Help: "Bidder registration attempts by outcome",
		},
		[]string{"outcome"},
	)

	reg.MustRegister(reqDuration, reqTotal, registrations)

	if hub != nil {
		reg.MustRegister(
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: "product_stream_subscribers",
				Help: "Open product event stream connections",
			}, func() float64 {
				subs, _, _ := hub.Stats()
				return float64(subs)
			}),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "product_stream_events_delivered_total",
				Help: "Product events queued to stream connections",
			}, func() float64 {
				_, delivered, _ := hub.Stats()
				return float64(delivered)
			}),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "product_stream_events_dropped_total",
				Help: "Product events dropped because a connection outbox was full",
			}, func() float64 {
				_, _, dropped := hub.Stats()
				return float64(dropped)
			}),
		)
	}

	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		dur := time.Since(start).Seconds()

		method := c.Method()
		path := normalizeRoutePath(c)
		status := normalizeStatus(c.Response().StatusCode())

		reqDuration.WithLabelValues(method, path, status).Observe(dur)
		reqTotal.WithLabelValues(method, path, status).Inc()
		return err
	})

	// /metrics handler (uses *this* registry)
	app.Get("/metrics", adaptor.HTTPHandler(
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	)

	return &Metrics{registrations: registrations}
}
