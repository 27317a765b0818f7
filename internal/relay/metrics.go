package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sale_ledger",
		Subsystem: "relay",
		Name:      "events_published_total",
		Help:      "Ledger events delivered to the broker",
	})
	mPublishRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sale_ledger",
		Subsystem: "relay",
		Name:      "publish_retries_total",
		Help:      "Publish attempts that failed and were retried",
	})
	mPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sale_ledger",
		Subsystem: "relay",
		Name:      "publish_failures_total",
		Help:      "Events whose publish retries were exhausted",
	})
)
