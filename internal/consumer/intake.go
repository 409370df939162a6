package consumer

import (
	"context"
	"sync"
	"sync/atomic"

	"motionsafe/internal/models"

	"go.uber.org/zap"
)

// Intake is the single hand-off point between the frame producer and
// the decision core: a one-slot buffer with newest-frame-wins
// semantics. Offer never blocks; if the core has not consumed the
// previous frame it is overwritten and counted as dropped. Safety
// signals about a stale frame are meaningless, so dropping the older
// unprocessed frame is the correct backpressure policy.
type Intake struct {
	mu     sync.Mutex
	frame  *models.FrameInput
	closed bool
	notify chan struct{}

	dropped uint64
	logger  *zap.Logger
}

func NewIntake(logger *zap.Logger) *Intake {
	return &Intake{
		notify: make(chan struct{}, 1),
		logger: logger,
	}
}

// Offer publishes a frame, replacing any unconsumed one. Safe for
// concurrent producers; returns immediately.
func (in *Intake) Offer(frame models.FrameInput) {
	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()
		return
	}
	if in.frame != nil {
		atomic.AddUint64(&in.dropped, 1)
	}
	f := frame
	in.frame = &f
	in.mu.Unlock()

	select {
	case in.notify <- struct{}{}:
	default:
	}
}

// Next blocks until a frame is available, the intake is closed, or the
// context is cancelled. Implements session.FrameSource.
func (in *Intake) Next(ctx context.Context) (models.FrameInput, bool) {
	for {
		in.mu.Lock()
		if in.frame != nil {
			f := *in.frame
			in.frame = nil
			in.mu.Unlock()
			return f, true
		}
		closed := in.closed
		in.mu.Unlock()
		if closed {
			return models.FrameInput{}, false
		}

		select {
		case <-ctx.Done():
			return models.FrameInput{}, false
		case <-in.notify:
		}
	}
}

// Close stops the intake. A frame already in the slot is discarded;
// subsequent Offer calls are ignored.
func (in *Intake) Close() {
	in.mu.Lock()
	in.closed = true
	in.frame = nil
	in.mu.Unlock()

	select {
	case in.notify <- struct{}{}:
	default:
	}
}

// Dropped reports frames overwritten before the core consumed them.
func (in *Intake) Dropped() uint64 {
	return atomic.LoadUint64(&in.dropped)
}
