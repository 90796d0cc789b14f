package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// TailConfig holds tunable parameters for a TailSource, mirroring the
// resilient websocket client pattern used for low-latency feeds elsewhere
// in this codebase's lineage: exponential-backoff reconnect plus a
// heartbeat-timeout-triggered redial.
type TailConfig struct {
	URL string

	ReadBufferSize  int
	WriteBufferSize int

	HeartbeatTimeout time.Duration

	BackoffInitial time.Duration
	BackoffMax     time.Duration
	BackoffFactor  float64

	Headers http.Header
}

// DefaultTailConfig returns sensible defaults for tailing a block stream.
func DefaultTailConfig(url string) TailConfig {
	return TailConfig{
		URL:              url,
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
		HeartbeatTimeout: 30 * time.Second,
		BackoffInitial:   200 * time.Millisecond,
		BackoffMax:       30 * time.Second,
		BackoffFactor:    2.0,
	}
}

// wireTransaction is the JSON shape a tailing endpoint emits per message;
// hex-encoded fixed-width fields are decoded into Transaction.
type wireTransaction struct {
	Sender           string   `json:"sender"`
	FirstValid       uint64   `json:"first_valid"`
	LastValid        uint64   `json:"last_valid"`
	Lease            string   `json:"lease"`
	GenesisHash      string   `json:"genesis_hash"`
	AppID            uint64   `json:"app_id"`
	AppArgs          []string `json:"app_args"`
	ConfirmedRound   uint64   `json:"confirmed_round"`
	IntraRoundOffset uint64   `json:"intra_round_offset"`
}

// TailSource is a reconnecting websocket client that tails a live block
// feed and decodes each message into a Transaction. Unlike a market-data
// fan-out that drops slow subscribers, TailSource has exactly one consumer
// (the scanner's event channel) and never drops a decoded transaction: a
// full channel blocks the read loop rather than discarding.
type TailSource struct {
	cfg TailConfig

	mu   sync.RWMutex
	conn *websocket.Conn

	onReconnect func() // testing hook
}

// NewTailSource creates a tailing source. Call Run to start.
func NewTailSource(cfg TailConfig) *TailSource {
	return &TailSource{cfg: cfg}
}

// Run dials the endpoint and streams decoded transactions onto out until ctx
// is cancelled.
func (t *TailSource) Run(ctx context.Context, out chan<- Transaction) error {
	if err := t.dial(ctx); err != nil {
		return fmt.Errorf("ledger: initial dial: %w", err)
	}
	defer func() {
		t.mu.Lock()
		if t.conn != nil {
			t.conn.Close()
		}
		t.mu.Unlock()
	}()

	for {
		t.mu.RLock()
		c := t.conn
		t.mu.RUnlock()

		c.SetReadDeadline(time.Now().Add(t.cfg.HeartbeatTimeout))
		_, msg, err := c.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("ledger: tail read error (reconnecting): %v", err)
			c.Close()
			if !t.reconnect(ctx) {
				return ctx.Err()
			}
			continue
		}

		txn, err := decodeWireTransaction(msg)
		if err != nil {
			log.Printf("ledger: dropping malformed tail message: %v", err)
			continue
		}

		select {
		case out <- txn:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (t *TailSource) dial(ctx context.Context) error {
	dialer := websocket.Dialer{
		ReadBufferSize:  t.cfg.ReadBufferSize,
		WriteBufferSize: t.cfg.WriteBufferSize,
		NetDialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			d := net.Dialer{}
			conn, err := d.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			if tc, ok := conn.(*net.TCPConn); ok {
				tc.SetNoDelay(true)
			}
			return conn, nil
		},
	}

	conn, _, err := dialer.DialContext(ctx, t.cfg.URL, t.cfg.Headers)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()
	return nil
}

func (t *TailSource) reconnect(ctx context.Context) bool {
	delay := t.cfg.BackoffInitial
	for {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}

		if err := t.dial(ctx); err != nil {
			log.Printf("ledger: reconnect failed: %v (retry in %v)", err, delay)
			delay = time.Duration(math.Min(
				float64(delay)*t.cfg.BackoffFactor,
				float64(t.cfg.BackoffMax),
			))
			continue
		}

		if t.onReconnect != nil {
			t.onReconnect()
		}
		return true
	}
}

func decodeWireTransaction(msg []byte) (Transaction, error) {
	var w wireTransaction
	if err := json.Unmarshal(msg, &w); err != nil {
		return Transaction{}, fmt.Errorf("decode tail message: %w", err)
	}
	return w.transaction()
}

func (w wireTransaction) transaction() (Transaction, error) {
	var out Transaction
	if err := decodeHex32(w.Sender, &out.Sender); err != nil {
		return out, fmt.Errorf("sender: %w", err)
	}
	if err := decodeHex32(w.Lease, &out.Lease); err != nil {
		return out, fmt.Errorf("lease: %w", err)
	}
	if err := decodeHex32(w.GenesisHash, &out.GenesisHash); err != nil {
		return out, fmt.Errorf("genesis_hash: %w", err)
	}
	out.FirstValid = w.FirstValid
	out.LastValid = w.LastValid
	out.AppID = w.AppID
	out.ConfirmedRound = w.ConfirmedRound
	out.IntraRoundOffset = w.IntraRoundOffset

	out.AppArgs = make([][]byte, len(w.AppArgs))
	for i, arg := range w.AppArgs {
		b, err := decodeHex(arg)
		if err != nil {
			return out, fmt.Errorf("app_args[%d]: %w", i, err)
		}
		out.AppArgs[i] = b
	}
	return out, nil
}
