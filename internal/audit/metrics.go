package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var mFindings = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "sale_ledger",
	Subsystem: "audit",
	Name:      "violation",
	Help:      "1 when the latest run of a check failed",
}, []string{"check", "token"})
