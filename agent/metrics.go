// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package agent

import (
	"strconv"
	"time"

	"github.com/diffeo/go-cape/restclient"
	"github.com/prometheus/client_golang/prometheus"
)

var requestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cape",
		Subsystem: "agent",
		Name:      "requests_total",
		Help:      "Requests issued by resource agents",
	},
	[]string{
		"method",
		"code",
	},
)

var requestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "cape",
		Subsystem: "agent",
		Name:      "request_duration_seconds",
		Help:      "Time from issuing a request to receiving its response",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{
		"method",
	},
)

// RegisterMetrics registers the agent request metrics with r.  Agents
// record metrics whether or not they are registered.
func RegisterMetrics(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{requestsTotal, requestDuration} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// statusCode returns the metrics label for the outcome of a request.
func statusCode(resp *restclient.Response, err error) string {
	if err != nil || resp == nil {
		return "error"
	}
	return strconv.Itoa(resp.StatusCode)
}

func observe(method string, resp *restclient.Response, err error, elapsed time.Duration) {
	requestsTotal.WithLabelValues(method, statusCode(resp, err)).Inc()
	requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}
