package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/feral-file/ff-sale-ledger/internal/domain"
)

var (
	mOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sale_ledger",
		Subsystem: "engine",
		Name:      "operations_total",
		Help:      "Ledger operations by name and outcome",
	}, []string{"op", "outcome"})
	mEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sale_ledger",
		Subsystem: "engine",
		Name:      "events_total",
		Help:      "Journaled ledger events by type",
	}, []string{"type"})
)

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if le, ok := domain.AsLedgerError(err); ok {
		return le.Code
	}
	return "error"
}
