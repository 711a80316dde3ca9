// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"net/http"

	"github.com/diffeo/go-cape/agent"
	"github.com/diffeo/go-cape/memserver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var recordsDesc = prometheus.NewDesc(
	"cape_memserver_records",
	"Records held by each in-memory collection",
	[]string{"resource"},
	nil,
)

// recordCollector reports the size of a server's collections each
// time it is scraped.
type recordCollector struct {
	server *memserver.Server
}

func (r recordCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- recordsDesc
}

func (r recordCollector) Collect(ch chan<- prometheus.Metric) {
	for name, count := range r.server.Summarize() {
		ch <- prometheus.MustNewConstMetric(recordsDesc, prometheus.GaugeValue, float64(count), name)
	}
}

// serveHandler returns the handler of the serve command: the
// server's resources plus /metrics.
func serveHandler(s *memserver.Server) (http.Handler, error) {
	registry := prometheus.NewRegistry()
	if err := registry.Register(recordCollector{server: s}); err != nil {
		return nil, err
	}
	if err := agent.RegisterMetrics(registry); err != nil {
		return nil, err
	}
	s.Router().Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return s.Handler(), nil
}
