package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/MoonrakerAI/coliving-backend/internal/metrics"
	"github.com/MoonrakerAI/coliving-backend/internal/models"
)

// AuditWorker decouples audit writes from the request path: handlers enqueue
// entries and a single goroutine persists them. Request latency is never
// affected by audit-store slowness.
type AuditWorker struct {
	recorder AuditRecorder
	log      *logrus.Logger
	jobs     chan models.AuditInput
}

// NewAuditWorker creates an AuditWorker with the given queue capacity.
func NewAuditWorker(recorder AuditRecorder, log *logrus.Logger, queueSize int) *AuditWorker {
	if queueSize <= 0 {
		queueSize = 1000
	}
	return &AuditWorker{
		recorder: recorder,
		log:      log,
		jobs:     make(chan models.AuditInput, queueSize),
	}
}

// Enqueue adds an audit entry. Non-blocking; drops the entry if the queue is
// full (audit logging is best-effort by contract).
func (w *AuditWorker) Enqueue(in models.AuditInput) {
	select {
	case w.jobs <- in:
		metrics.AuditQueueDepth.Set(float64(len(w.jobs)))
	default:
		metrics.AuditDroppedTotal.Inc()
		w.log.WithField("action", in.Action).Warn("audit queue full, dropping entry")
	}
}

// Run processes audit entries until the context is cancelled, then drains
// whatever remains in the queue.
func (w *AuditWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case in := <-w.jobs:
			w.process(in)
		}
	}
}

func (w *AuditWorker) drain() {
	for {
		select {
		case in := <-w.jobs:
			w.process(in)
		default:
			return
		}
	}
}

func (w *AuditWorker) process(in models.AuditInput) {
	metrics.AuditQueueDepth.Set(float64(len(w.jobs)))

	if _, err := w.recorder.RecordAudit(context.Background(), in); err != nil {
		w.log.WithError(err).Warn("audit record failed")
	}
}
