package events

import (
	"context"
	"sync"
	"time"
)

// Bus is the in-process session event stream. Publish assigns strictly
// increasing per-session sequence numbers under a single writer lock.
// Subscribers read from the retained event log through a cursor, so a slow
// subscriber delays only itself and no event is ever dropped.
type Bus struct {
	mu       sync.Mutex
	sessions map[string]*sessionStream
}

type sessionStream struct {
	mu     sync.Mutex
	cond   *sync.Cond
	events []Event
	next   int64
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{sessions: make(map[string]*sessionStream)}
}

func (b *Bus) stream(sessionID string) *sessionStream {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[sessionID]
	if !ok {
		s = &sessionStream{next: 1}
		s.cond = sync.NewCond(&s.mu)
		b.sessions[sessionID] = s
	}
	return s
}

// Publish appends an event to the session stream and returns it with its
// assigned sequence number. Publishing to a closed stream is a no-op that
// returns a zero event.
func (b *Bus) Publish(sessionID, eventType string, payload any) Event {
	s := b.stream(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Event{}
	}
	evt := Event{
		Seq:       s.next,
		SessionID: sessionID,
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	s.next++
	s.events = append(s.events, evt)
	s.cond.Broadcast()
	return evt
}

// Events returns the retained events with Seq > sinceSeq, in order.
func (b *Bus) Events(sessionID string, sinceSeq int64) []Event {
	s := b.stream(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, 0, len(s.events))
	for _, evt := range s.events {
		if evt.Seq > sinceSeq {
			out = append(out, evt)
		}
	}
	return out
}

// Subscribe delivers the retained events with Seq > sinceSeq followed by all
// future events, in order, until ctx is done or the session stream is closed
// and drained. The returned channel is closed afterwards.
func (b *Bus) Subscribe(ctx context.Context, sessionID string, sinceSeq int64) <-chan Event {
	s := b.stream(sessionID)
	out := make(chan Event)

	// Wake the cursor goroutine when the subscriber goes away.
	go func() {
		<-ctx.Done()
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
	}()

	go func() {
		defer close(out)
		cursor := sinceSeq
		for {
			s.mu.Lock()
			for !s.closed && ctx.Err() == nil && !s.hasAfterLocked(cursor) {
				s.cond.Wait()
			}
			pending := s.afterLocked(cursor)
			closed := s.closed
			s.mu.Unlock()

			for _, evt := range pending {
				select {
				case out <- evt:
					cursor = evt.Seq
				case <-ctx.Done():
					return
				}
			}
			if ctx.Err() != nil || (closed && len(pending) == 0) {
				return
			}
		}
	}()
	return out
}

// CloseSession marks a session stream terminal. Subscribers drain the
// remaining events and their channels close.
func (b *Bus) CloseSession(sessionID string) {
	s := b.stream(sessionID)
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

// Remove discards the retained log for a session. Call after the session's
// consumers are gone.
func (b *Bus) Remove(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, sessionID)
}

// LastSeq returns the highest assigned sequence number for the session, or
// zero when nothing was published.
func (b *Bus) LastSeq(sessionID string) int64 {
	s := b.stream(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next - 1
}

func (s *sessionStream) hasAfterLocked(seq int64) bool {
	return len(s.events) > 0 && s.events[len(s.events)-1].Seq > seq
}

func (s *sessionStream) afterLocked(seq int64) []Event {
	for i, evt := range s.events {
		if evt.Seq > seq {
			pending := make([]Event, len(s.events)-i)
			copy(pending, s.events[i:])
			return pending
		}
	}
	return nil
}
