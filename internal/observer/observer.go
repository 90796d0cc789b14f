// Package observer implements the non-authoritative telemetry sink (C13):
// a best-effort publisher of note events onto a Redis pub/sub channel for
// dashboards and operational tooling. It is never consulted by the scanner
// for correctness — recorded balance and nullifier state live only in
// scanner.Scanner — and it is allowed to drop events under backpressure,
// unlike the scanner's own never-drop event channel.
package observer

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// Publisher abstracts the Redis operation Sink uses, so tests can swap in a
// recording fake instead of a live *redis.Client.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) error
}

// NoteEvent is the JSON payload published for every note the scanner
// records or retires.
type NoteEvent struct {
	Kind        string `json:"kind"` // "recorded" or "spent"
	Nullifier   string `json:"nullifier"`
	TweakedAddr string `json:"tweaked_addr,omitempty"`
	Amount      uint64 `json:"amount"`
	ObservedAt  int64  `json:"observed_at_unix_ms"`
}

// Sink buffers NoteEvents and flushes them to Redis from a dedicated
// goroutine, so a slow or unavailable Redis never backpressures the
// scanner's note pipeline. The buffer drops the event under sustained
// backpressure rather than blocking — telemetry loss here never affects
// recorded balance, which lives entirely in the scanner.
type Sink struct {
	client  Publisher
	channel string
	buf     chan NoteEvent

	mu      sync.Mutex
	dropped uint64
}

// New creates a Sink publishing onto channel via client. Call Run to start
// the flush goroutine.
func New(client Publisher, channel string) *Sink {
	return &Sink{
		client:  client,
		channel: channel,
		buf:     make(chan NoteEvent, 1024),
	}
}

// Recorded enqueues a "recorded" event for a newly discovered UTXO.
func (s *Sink) Recorded(nullifier [32]byte, tweakedAddr [32]byte, amount uint64) {
	s.enqueue(NoteEvent{
		Kind:        "recorded",
		Nullifier:   hex.EncodeToString(nullifier[:]),
		TweakedAddr: hex.EncodeToString(tweakedAddr[:]),
		Amount:      amount,
		ObservedAt:  time.Now().UnixMilli(),
	})
}

// Spent enqueues a "spent" event for a nullifier retired by a Spend call.
func (s *Sink) Spent(nullifier [32]byte, amount uint64) {
	s.enqueue(NoteEvent{
		Kind:       "spent",
		Nullifier:  hex.EncodeToString(nullifier[:]),
		Amount:     amount,
		ObservedAt: time.Now().UnixMilli(),
	})
}

func (s *Sink) enqueue(ev NoteEvent) {
	select {
	case s.buf <- ev:
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
	}
}

// Dropped reports how many events have been dropped for backpressure since
// the Sink was created.
func (s *Sink) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Run flushes buffered events to Redis until ctx is cancelled.
func (s *Sink) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.buf:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			// Best effort: a publish error is dropped telemetry, not a
			// scanner-visible failure.
			_ = s.client.Publish(ctx, s.channel, payload)
		}
	}
}
