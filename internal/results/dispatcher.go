package results

import (
	"context"
	"sync"
	"time"

	"github.com/codewithmorais/quiz-session-service/internal/utils"
)

const (
	defaultQueueSize   = 256
	defaultMaxAttempts = 4
	defaultBaseBackoff = 250 * time.Millisecond
	deliveryTimeout    = 10 * time.Second
)

// Dispatcher delivers RecordRequests to a Sink off the caller's critical
// path. Enqueue never blocks the quiz flow: delivery happens on a worker
// goroutine with bounded retries and doubling backoff, and a failure after
// the last retry is logged and dropped. Local session state stays
// authoritative either way; the sink's idempotency key tolerates the
// duplicate deliveries retries can produce.
type Dispatcher struct {
	sink   Sink
	logger utils.Logger

	queue       chan RecordRequest
	wg          sync.WaitGroup
	closeOnce   sync.Once
	maxAttempts int
	baseBackoff time.Duration
}

// NewDispatcher starts a dispatcher with a single delivery worker.
func NewDispatcher(sink Sink, logger utils.Logger) *Dispatcher {
	d := &Dispatcher{
		sink:        sink,
		logger:      logger,
		queue:       make(chan RecordRequest, defaultQueueSize),
		maxAttempts: defaultMaxAttempts,
		baseBackoff: defaultBaseBackoff,
	}
	d.wg.Add(1)
	go d.worker()
	return d
}

// Enqueue hands a record to the worker. If the queue is full the record is
// dropped with an error log rather than blocking submission handling.
func (d *Dispatcher) Enqueue(req RecordRequest) {
	select {
	case d.queue <- req:
	default:
		d.logger.Error("Result queue full, dropping record",
			"session_id", req.SessionID,
			"question_id", req.QuestionID,
			"attempt", req.AttemptNumber)
	}
}

// Close stops accepting records and waits for queued deliveries to finish.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for req := range d.queue {
		d.deliver(req)
	}
}

func (d *Dispatcher) deliver(req RecordRequest) {
	backoff := d.baseBackoff
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		receipt, err := d.sink.Record(ctx, req)
		cancel()

		if err == nil {
			d.logger.Debug("Answer result recorded",
				"session_id", req.SessionID,
				"question_id", req.QuestionID,
				"attempt", req.AttemptNumber,
				"applied", receipt.Applied)
			return
		}

		if attempt == d.maxAttempts {
			d.logger.Error("Giving up on answer result after retries",
				"session_id", req.SessionID,
				"question_id", req.QuestionID,
				"attempt", req.AttemptNumber,
				"tries", attempt,
				"error", err)
			return
		}

		d.logger.Warn("Answer result delivery failed, retrying",
			"session_id", req.SessionID,
			"question_id", req.QuestionID,
			"try", attempt,
			"backoff", backoff.String(),
			"error", err)
		time.Sleep(backoff)
		backoff *= 2
	}
}
