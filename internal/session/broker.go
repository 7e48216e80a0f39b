package session

import (
	"context"
	"sync"

	"quickfirstaid/internal/models"

	"go.uber.org/zap"
)

// Sink mirrors session events outside the process.
type Sink interface {
	Name() string
	Publish(ctx context.Context, ev models.SessionEvent) error
}

// Broker owns the authoritative in-process session and fans session events out
// to subscribers. Session state is only changed by the auth flow after the auth
// collaborator answered; the stored email marker never restores it.
type Broker struct {
	mu      sync.RWMutex
	current *models.Session
	subs    map[int]chan models.SessionEvent
	nextID  int
	sinks   []Sink
	logger  *zap.Logger
}

func NewBroker(logger *zap.Logger, sinks ...Sink) *Broker {
	return &Broker{
		subs:   map[int]chan models.SessionEvent{},
		sinks:  sinks,
		logger: logger,
	}
}

// Subscribe returns a channel of future events and a cancel func that closes it.
func (b *Broker) Subscribe(buffer int) (<-chan models.SessionEvent, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan models.SessionEvent, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Current returns the live session, if any.
func (b *Broker) Current() (models.Session, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.current == nil {
		return models.Session{}, false
	}
	return *b.current, true
}

// SignedIn stores sess and publishes a signed_in event.
func (b *Broker) SignedIn(ctx context.Context, sess models.Session, ev models.SessionEvent) {
	b.mu.Lock()
	b.current = &sess
	b.mu.Unlock()
	b.publish(ctx, ev)
}

// Replace swaps in renewed credentials for the signed-in user without an event.
// It reports false when nobody, or a different user, is signed in.
func (b *Broker) Replace(sess models.Session) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil || b.current.UserID != sess.UserID {
		return false
	}
	b.current = &sess
	return true
}

// SignedOut drops the session and publishes a signed_out event.
func (b *Broker) SignedOut(ctx context.Context, ev models.SessionEvent) {
	b.mu.Lock()
	b.current = nil
	b.mu.Unlock()
	b.publish(ctx, ev)
}

// publish never blocks on a slow subscriber; a full buffer drops the event.
func (b *Broker) publish(ctx context.Context, ev models.SessionEvent) {
	b.mu.RLock()
	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.logger.Warn("Dropping session event for slow subscriber",
				zap.Int("subscriber", id),
				zap.String("event", string(ev.Type)),
			)
		}
	}
	b.mu.RUnlock()

	for _, sink := range b.sinks {
		if err := sink.Publish(ctx, ev); err != nil {
			b.logger.Warn("Session sink publish failed",
				zap.String("sink", sink.Name()),
				zap.String("event", string(ev.Type)),
				zap.Error(err),
			)
		}
	}
}
