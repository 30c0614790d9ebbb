package prom

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	xhttp "github.com/realhub/condo-api/pkg/http"
	"github.com/realhub/condo-api/pkg/logger"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	SystemPayments      = "payments"
	SystemNotifications = "notifications"
)

const (
	MetricPaymentsCreated        = "created_total"
	MetricPaymentsBulkCreated    = "bulk_created_total"
	MetricProofSubmitted         = "proof_submitted_total"
	MetricNotificationsPublished = "published_total"
	MetricNotificationsDelivered = "delivered_total"
	MetricNotificationsFailed    = "failed_total"
	MetricDeliveryDuration       = "delivery_duration_seconds"
)

var (
	mu        sync.Mutex
	namespace = "none"
	enabled   = false

	counters      = make(map[string]prometheus.Counter)
	counterVecs   = make(map[string]*prometheus.CounterVec)
	histogramVecs = make(map[string]*prometheus.HistogramVec)
)

func Create(host, env, nameSpace string) error {
	mu.Lock()
	defer mu.Unlock()
	namespace = nameSpace
	enabled = true

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	hasError(createCounter(SystemPayments, MetricPaymentsCreated))
	hasError(createCounter(SystemPayments, MetricPaymentsBulkCreated))
	hasError(createCounter(SystemPayments, MetricProofSubmitted))
	hasError(createCounter(SystemNotifications, MetricNotificationsPublished))
	hasError(createCounterVec(SystemNotifications, MetricNotificationsDelivered, []string{"channel"}))
	hasError(createCounterVec(SystemNotifications, MetricNotificationsFailed, []string{"channel"}))
	hasError(createHistogramVec(SystemNotifications, MetricDeliveryDuration, []string{"channel"}))

	return err
}

func createCounter(subsystem, name string) error {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
	})
	if err := prometheus.Register(c); err != nil {
		return err
	}
	counters[subsystem+"_"+name] = c
	return nil
}

func createCounterVec(subsystem, name string, labels []string) error {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
	}, labels)
	if err := prometheus.Register(c); err != nil {
		return err
	}
	counterVecs[subsystem+"_"+name] = c
	return nil
}

func createHistogramVec(subsystem, name string, labels []string) error {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Buckets:   prometheus.DefBuckets,
	}, labels)
	if err := prometheus.Register(h); err != nil {
		return err
	}
	histogramVecs[subsystem+"_"+name] = h
	return nil
}

func Inc(subsystem, name string) {
	if !enabled {
		return
	}
	if c, ok := counters[subsystem+"_"+name]; ok {
		c.Inc()
	}
}

func IncWithLabels(subsystem, name string, labels prometheus.Labels) {
	if !enabled {
		return
	}
	if c, ok := counterVecs[subsystem+"_"+name]; ok {
		c.With(labels).Inc()
	}
}

func Observe(subsystem, name string, value float64, labels prometheus.Labels) {
	if !enabled {
		return
	}
	if h, ok := histogramVecs[subsystem+"_"+name]; ok {
		h.With(labels).Observe(value)
	}
}

// ListenAndServe exposes the metrics endpoint on its own listener.
func ListenAndServe(addr string, url string) {
	hh := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.GET(url, hh)
	go func() {
		if err := s.ListenAndServe(addr); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	logger.Info(fmt.Sprintf("metrics available on %s%s", addr, url))
}
