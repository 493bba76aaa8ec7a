package ctoken

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	assemblyDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ctoken",
		Subsystem: "assembler",
		Name:      "duration_seconds",
		Help:      "Time spent assembling a proof bundle.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"operation"})

	assemblyFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ctoken",
		Subsystem: "assembler",
		Name:      "failures_total",
		Help:      "Proof bundle assemblies that returned an error.",
	}, []string{"operation", "reason"})
)

// RegisterMetrics registers the assembler collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{assemblyDuration, assemblyFailures} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return err
			}
		}
	}
	return nil
}

var failureReasons = []struct {
	err    error
	reason string
}{
	{ErrInsufficientFunds, "insufficient_funds"},
	{ErrIllegalAmountBitLength, "bit_length"},
	{ErrFeeCalculation, "fee"},
	{ErrCiphertextExtraction, "extraction"},
	{ErrMalformedCiphertext, "malformed"},
	{ErrDecryption, "decryption"},
	{ErrProofGeneration, "proof"},
}

func failureReason(err error) string {
	for _, r := range failureReasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "other"
}

func observeAssembly(op string, start time.Time, err error) {
	if err != nil {
		assemblyFailures.WithLabelValues(op, failureReason(err)).Inc()
		return
	}
	assemblyDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
