// Package metrics exports the NordVPN session as Prometheus metrics.
// Every scrape runs "nordvpn status" once; concurrent scrapes wait for
// each other so at most one process is running.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yllada/nordvpn-manager/common"
	"github.com/yllada/nordvpn-manager/nordvpn"
)

// StatusSource reports the current session, nil when disconnected.
// *nordvpn.Client implements it.
type StatusSource interface {
	Status(ctx context.Context) (*nordvpn.Status, error)
}

// statusCollector implements prometheus.Collector, querying the tool on each scrape.
type statusCollector struct {
	source  StatusSource
	timeout time.Duration
	mu      sync.Mutex

	up        *prometheus.Desc
	connected *prometheus.Desc
	received  *prometheus.Desc
	sent      *prometheus.Desc
	uptime    *prometheus.Desc
	info      *prometheus.Desc
}

func newStatusCollector(source StatusSource, timeout time.Duration) *statusCollector {
	return &statusCollector{
		source:  source,
		timeout: timeout,

		up: prometheus.NewDesc(
			"nordvpn_up",
			"Whether the last status query succeeded.",
			nil, nil,
		),
		connected: prometheus.NewDesc(
			"nordvpn_connected",
			"Whether a VPN session is active.",
			nil, nil,
		),
		received: prometheus.NewDesc(
			"nordvpn_transfer_received_bytes",
			"Bytes received in the current session.",
			nil, nil,
		),
		sent: prometheus.NewDesc(
			"nordvpn_transfer_sent_bytes",
			"Bytes sent in the current session.",
			nil, nil,
		),
		uptime: prometheus.NewDesc(
			"nordvpn_uptime_seconds",
			"Age of the current session.",
			nil, nil,
		),
		info: prometheus.NewDesc(
			"nordvpn_connection_info",
			"Current server details; always 1.",
			[]string{"hostname", "country", "city", "ip", "technology", "protocol"}, nil,
		),
	}
}

func (c *statusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.up
	ch <- c.connected
	ch <- c.received
	ch <- c.sent
	ch <- c.uptime
	ch <- c.info
}

func (c *statusCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	status, err := c.source.Status(ctx)
	if err != nil {
		common.LogWarn("metrics: status query failed: %v", err)
		ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 0)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 1)

	if status == nil {
		ch <- prometheus.MustNewConstMetric(c.connected, prometheus.GaugeValue, 0)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.connected, prometheus.GaugeValue, 1)
	ch <- prometheus.MustNewConstMetric(c.received, prometheus.GaugeValue, float64(status.Transfer.Received))
	ch <- prometheus.MustNewConstMetric(c.sent, prometheus.GaugeValue, float64(status.Transfer.Sent))
	ch <- prometheus.MustNewConstMetric(c.uptime, prometheus.GaugeValue, status.Uptime.Seconds())
	ch <- prometheus.MustNewConstMetric(c.info, prometheus.GaugeValue, 1,
		status.Hostname,
		status.Country,
		status.City,
		status.IP.String(),
		status.Technology.String(),
		status.Protocol.String(),
	)
}

// NewRegistry returns a registry holding the status collector.
func NewRegistry(source StatusSource, timeout time.Duration) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(newStatusCollector(source, timeout))
	return registry
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(registry *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return mux
}

// Serve exposes /metrics on addr and blocks until ctx is cancelled.
func Serve(ctx context.Context, addr string, source StatusSource, timeout time.Duration) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           Handler(NewRegistry(source, timeout)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		common.LogInfo("Metrics listening on http://%s/metrics", addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), common.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
