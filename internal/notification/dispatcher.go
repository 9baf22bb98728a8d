package notification

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"preventa/internal/domain"
)

// DefaultQueueSize bounds the messages kept for a disconnected subscriber.
const DefaultQueueSize = 50

const broadcastConcurrency = 16

var ErrClosed = errors.New("notification dispatcher closed")

// Sink is one live push connection. Send must be safe to call concurrently
// with Close.
type Sink interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

// Target identifies a subscriber.
type Target struct {
	Role   domain.Role
	UserID int64
}

type Message struct {
	ID      string           `json:"id"`
	Type    domain.EventType `json:"type"`
	Payload any              `json:"payload"`
	SentAt  time.Time        `json:"sentAt"`
}

type Stats struct {
	Connections map[domain.Role]int `json:"connections"`
	Queued      int                 `json:"queued"`
}

// Dispatcher keeps at most one session per Target. Messages for a target
// that is not connected are queued in memory and flushed on its next
// Connect; nothing survives a restart.
type Dispatcher struct {
	mu        sync.Mutex
	sessions  map[Target]Sink
	flushing  map[Target]Sink
	queued    map[Target][]Message
	queueSize int
	closed    bool
	logger    *zap.Logger
}

func NewDispatcher(queueSize int, logger *zap.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Dispatcher{
		sessions:  make(map[Target]Sink),
		flushing:  make(map[Target]Sink),
		queued:    make(map[Target][]Message),
		queueSize: queueSize,
		logger:    logger,
	}
}

// Connect registers sink for t, closing any session t already had, and
// flushes what was queued while t was away. While the backlog drains the
// session is flushing: messages published for t meanwhile are queued behind
// the backlog and go out in order before the session turns live.
func (d *Dispatcher) Connect(ctx context.Context, t Target, sink Sink) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		_ = sink.Close()
		return ErrClosed
	}
	previous, ok := d.sessions[t]
	if !ok {
		previous = d.flushing[t]
	}
	delete(d.sessions, t)
	d.flushing[t] = sink
	d.mu.Unlock()

	if previous != nil {
		d.logger.Info("replacing notification session", zap.String("role", string(t.Role)), zap.Int64("userId", t.UserID))
		_ = previous.Close()
	}

	flushed := 0
	for {
		d.mu.Lock()
		if d.closed || d.flushing[t] != sink {
			// replaced or disconnected mid-flush; the queue is left to the next session
			d.mu.Unlock()
			return nil
		}
		backlog := d.queued[t]
		if len(backlog) == 0 {
			delete(d.flushing, t)
			d.sessions[t] = sink
			d.mu.Unlock()
			break
		}
		delete(d.queued, t)
		d.mu.Unlock()

		for i, msg := range backlog {
			if err := sink.Send(ctx, msg); err != nil {
				d.logger.Warn("flushing queued notifications failed",
					zap.String("role", string(t.Role)),
					zap.Int64("userId", t.UserID),
					zap.Int("remaining", len(backlog)-i),
					zap.Error(err),
				)
				d.drop(t, sink)
				d.requeue(t, backlog[i:])
				return nil
			}
			flushed++
		}
	}

	d.logger.Debug("notification session connected",
		zap.String("role", string(t.Role)),
		zap.Int64("userId", t.UserID),
		zap.Int("flushed", flushed),
	)
	return nil
}

// Disconnect forgets sink if it is still the session registered for t. A
// session replaced by a newer Connect is left alone.
func (d *Dispatcher) Disconnect(t Target, sink Sink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sessions[t] == sink {
		delete(d.sessions, t)
	}
	if d.flushing[t] == sink {
		delete(d.flushing, t)
	}
}

// Publish delivers to the connected session of t or queues the message for
// it. Delivery failures are logged and never returned: the business
// operation that produced the event has already committed.
func (d *Dispatcher) Publish(ctx context.Context, eventType domain.EventType, payload any, t Target) {
	msg := newMessage(eventType, payload)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	sink, ok := d.sessions[t]
	if !ok {
		d.enqueueLocked(t, msg)
		d.mu.Unlock()
		d.logger.Debug("notification queued", zap.String("role", string(t.Role)), zap.Int64("userId", t.UserID), zap.String("type", string(eventType)))
		return
	}
	d.mu.Unlock()

	if err := sink.Send(ctx, msg); err != nil {
		d.logger.Warn("notification delivery failed, queueing",
			zap.String("role", string(t.Role)),
			zap.Int64("userId", t.UserID),
			zap.String("type", string(eventType)),
			zap.Error(err),
		)
		d.drop(t, sink)
		d.enqueue(t, msg)
	}
}

// BroadcastToRole sends to every connected session of role and returns how
// many received the message. Nothing is queued for absent subscribers.
func (d *Dispatcher) BroadcastToRole(ctx context.Context, role domain.Role, eventType domain.EventType, payload any) int {
	msg := newMessage(eventType, payload)

	d.mu.Lock()
	recipients := make(map[Target]Sink)
	for t, sink := range d.sessions {
		if t.Role == role {
			recipients[t] = sink
		}
	}
	d.mu.Unlock()

	var delivered atomic.Int64
	p := pool.New().WithMaxGoroutines(broadcastConcurrency)
	for t, sink := range recipients {
		p.Go(func() {
			if err := sink.Send(ctx, msg); err != nil {
				d.logger.Warn("broadcast delivery failed",
					zap.String("role", string(role)),
					zap.Int64("userId", t.UserID),
					zap.Error(err),
				)
				d.drop(t, sink)
				return
			}
			delivered.Add(1)
		})
	}
	p.Wait()

	return int(delivered.Load())
}

func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := Stats{Connections: make(map[domain.Role]int)}
	for t := range d.sessions {
		stats.Connections[t.Role]++
	}
	for t := range d.flushing {
		stats.Connections[t.Role]++
	}
	for _, q := range d.queued {
		stats.Queued += len(q)
	}
	return stats
}

// Close disconnects every session and discards queued messages.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	sessions := make([]Sink, 0, len(d.sessions)+len(d.flushing))
	for _, sink := range d.sessions {
		sessions = append(sessions, sink)
	}
	for _, sink := range d.flushing {
		sessions = append(sessions, sink)
	}
	d.sessions = make(map[Target]Sink)
	d.flushing = make(map[Target]Sink)
	d.queued = make(map[Target][]Message)
	d.mu.Unlock()

	var errs []error
	for _, sink := range sessions {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	d.logger.Info("notification dispatcher closed", zap.Int("sessions", len(sessions)))
	return errors.Join(errs...)
}

// drop closes a failed sink and unregisters it.
func (d *Dispatcher) drop(t Target, sink Sink) {
	d.Disconnect(t, sink)
	_ = sink.Close()
}

func (d *Dispatcher) enqueue(t Target, msgs ...Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.enqueueLocked(t, msgs...)
}

// requeue puts undelivered messages back ahead of anything queued since.
func (d *Dispatcher) requeue(t Target, msgs []Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	later := d.queued[t]
	delete(d.queued, t)
	d.enqueueLocked(t, append(append([]Message(nil), msgs...), later...)...)
}

// enqueueLocked appends and keeps only the newest queueSize messages.
func (d *Dispatcher) enqueueLocked(t Target, msgs ...Message) {
	q := append(d.queued[t], msgs...)
	if over := len(q) - d.queueSize; over > 0 {
		q = append([]Message(nil), q[over:]...)
	}
	d.queued[t] = q
}

func newMessage(eventType domain.EventType, payload any) Message {
	return Message{
		ID:      uuid.NewString(),
		Type:    eventType,
		Payload: payload,
		SentAt:  time.Now().UTC(),
	}
}
