package ledger

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var operations = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ctoken",
	Subsystem: "ledger",
	Name:      "operations_total",
	Help:      "Ledger operations by outcome.",
}, []string{"operation", "result"})

// RegisterMetrics registers the ledger collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	if err := reg.Register(operations); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return err
		}
	}
	return nil
}
