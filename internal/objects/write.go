package objects

import (
	"github.com/SystemBuilders/StripeKey/internal/metrics"
	"github.com/SystemBuilders/StripeKey/internal/storage"
	"github.com/rs/zerolog"
)

// HintedWriter writes small objects with the new-object hint set.
type HintedWriter struct {
	log zerolog.Logger
	ops storage.WriteOpFactory
}

// NewHintedWriter returns a HintedWriter building operations with ops.
func NewHintedWriter(log zerolog.Logger, ops storage.WriteOpFactory) *HintedWriter {
	return &HintedWriter{
		log: log,
		ops: ops,
	}
}

// WriteNew writes data to oid at offset 0 in a single operation flagged
// with storage.FlagNewObject. The status of the operation is returned
// unchanged; nothing is retried.
func (w *HintedWriter) WriteNew(oid string, data []byte) error {
	if oid == "" {
		return storage.ErrEmptyOid
	}

	op := w.ops.CreateWriteOp()
	defer op.Release()

	op.Write(data, 0)
	op.SetFlags(storage.FlagNewObject)
	err := op.Operate(oid)

	metrics.HintedWrites.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		metrics.HintedWriteBytes.Observe(float64(len(data)))
	}
	w.
		log.
		Debug().
		Str("object", oid).
		Int("size", len(data)).
		Err(err).
		Msg("hinted write")
	return err
}
