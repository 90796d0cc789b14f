// Package scanner implements the chain scanner (C8): the stateful worker
// that consumes a ledger.Source's transaction stream, classifies each
// application call, and runs the note pipeline against a wallet's own keys
// to maintain a local view of owned, unspent UTXOs.
package scanner

import (
	"context"
	"crypto/ed25519"
	"sync"
	"sync/atomic"

	"github.com/mithras-protocol/mithras/internal/discovery"
	"github.com/mithras-protocol/mithras/internal/envelope"
	mhpke "github.com/mithras-protocol/mithras/internal/hpke"
	"github.com/mithras-protocol/mithras/internal/keys"
	"github.com/mithras-protocol/mithras/internal/ledger"
	"github.com/mithras-protocol/mithras/internal/mimc"
	"github.com/mithras-protocol/mithras/internal/utxo"
)

// Scanner holds a wallet's crypto material and the recorded-UTXO state a
// single worker goroutine mutates as it drains a ledger.Source. Balance,
// RecordedCount, and Addrs are safe to call concurrently with Run; Run
// itself must only ever be driven by one goroutine at a time.
type Scanner struct {
	spendSeed *keys.SpendSeed
	discovery *keys.DiscoveryKeypair
	appID     uint64

	// recordedUtxosMu guards recordedUtxos. addrsMu guards addrs. When both
	// are needed in the same operation, recordedUtxosMu is always taken
	// first, to rule out a lock-order deadlock against any future caller
	// that needs the reverse order.
	recordedUtxosMu sync.Mutex
	recordedUtxos   map[[32]byte]uint64 // nullifier -> amount

	addrsMu sync.Mutex
	addrs   [][32]byte // tweaked pubkeys, in discovery order

	amount atomic.Int64

	telemetry Telemetry
}

// Telemetry receives best-effort notification of recorded and spent notes.
// A Scanner with no Telemetry set runs unaffected; implementations must not
// block, since they are called from the note-pipeline goroutine.
type Telemetry interface {
	Recorded(nullifier [32]byte, tweakedAddr [32]byte, amount uint64)
	Spent(nullifier [32]byte, amount uint64)
}

// SetTelemetry attaches a non-authoritative observer. It is not
// synchronized against Run and must be called before Run starts.
func (s *Scanner) SetTelemetry(t Telemetry) {
	s.telemetry = t
}

// New builds a scanner bound to a wallet's long-lived keys and the
// application id every incoming transaction is checked against. The
// network a note is bound to is not configured here: per transaction it is
// always Custom(txn.GenesisHash), since a scanner must follow whatever
// chain it is actually pointed at rather than trust a statically
// configured label (see DESIGN.md).
func New(spendSeed *keys.SpendSeed, discovery *keys.DiscoveryKeypair, appID uint64) *Scanner {
	return &Scanner{
		spendSeed:     spendSeed,
		discovery:     discovery,
		appID:         appID,
		recordedUtxos: make(map[[32]byte]uint64),
	}
}

// Balance returns the sum of all currently recorded, unspent UTXO amounts.
func (s *Scanner) Balance() int64 {
	return s.amount.Load()
}

// RecordedCount returns the number of distinct unspent UTXOs currently
// tracked.
func (s *Scanner) RecordedCount() int {
	s.recordedUtxosMu.Lock()
	defer s.recordedUtxosMu.Unlock()
	return len(s.recordedUtxos)
}

// Addrs returns a snapshot copy of every tweaked pubkey the scanner has ever
// recorded a note under, in discovery order.
func (s *Scanner) Addrs() [][32]byte {
	s.addrsMu.Lock()
	defer s.addrsMu.Unlock()
	out := make([][32]byte, len(s.addrs))
	copy(out, s.addrs)
	return out
}

// Run drives source to completion, processing every delivered transaction
// in order on the calling goroutine. The subscription driver (source.Run)
// runs concurrently on its own goroutine and is the only part of the
// pipeline that performs I/O; this loop — the worker — is purely
// computational and never blocks on anything but the channel itself and
// ctx.
func (s *Scanner) Run(ctx context.Context, source ledger.Source) error {
	events := make(chan ledger.Transaction, 4096)
	driverErr := make(chan error, 1)

	go func() {
		driverErr <- source.Run(ctx, events)
		close(events)
	}()

	for {
		select {
		case txn, ok := <-events:
			if !ok {
				return <-driverErr
			}
			s.processTransaction(txn)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Scanner) processTransaction(txn ledger.Transaction) {
	if txn.AppID != s.appID {
		return
	}

	classified, ok := Classify(txn.AppArgs)
	if !ok {
		return
	}

	meta := mhpke.TransactionMetadata{
		Sender:     ed25519.PublicKey(txn.Sender[:]),
		FirstValid: txn.FirstValid,
		LastValid:  txn.LastValid,
		Lease:      txn.Lease,
		Network:    mhpke.Custom(txn.GenesisHash),
		AppID:      s.appID,
	}

	switch classified.Method {
	case MethodDeposit:
		s.processNote(meta, classified.Envelopes[0], [][32]byte{classified.Commitment0})

	case MethodSpend:
		s.recordedUtxosMu.Lock()
		recordedAmount, known := s.recordedUtxos[classified.Nullifier]
		if known {
			delete(s.recordedUtxos, classified.Nullifier)
		}
		s.recordedUtxosMu.Unlock()

		if known {
			s.amount.Add(-int64(recordedAmount))
			if s.telemetry != nil {
				s.telemetry.Spent(classified.Nullifier, recordedAmount)
			}
			return
		}

		candidates := [][32]byte{classified.Commitment0, classified.Commitment1}
		for _, envBytes := range classified.Envelopes {
			s.processNote(meta, envBytes, candidates)
		}
	}
}

// processNote runs the full note pipeline against a single envelope: decode,
// discovery check, HPKE open, commitment verification against candidates,
// duplicate-nullifier check, one-time-key reconstruction, and finally
// insertion into recorded state. Any failure at any step drops the note
// silently — malformed or foreign envelopes are expected, routine traffic.
func (s *Scanner) processNote(meta mhpke.TransactionMetadata, envBytes []byte, candidates [][32]byte) {
	env, err := envelope.Decode(envBytes)
	if err != nil {
		return
	}

	sharedSecret, err := discovery.SharedSecret(s.discovery.Private(), env.DiscoveryEphemeral)
	if err != nil {
		return
	}

	var sender [32]byte
	copy(sender[:], meta.Sender)
	if err := discovery.Check(sharedSecret, sender, meta.FirstValid, meta.LastValid, meta.Lease, env.DiscoveryTag); err != nil {
		return
	}

	secrets, err := utxo.Open(env, s.discovery, meta)
	if err != nil {
		return
	}

	amountBE := utxo.AmountBE32(secrets.Amount)
	var tweakedPubkey [32]byte
	copy(tweakedPubkey[:], secrets.TweakedPubkey)
	commitment := mimc.Commitment(secrets.SpendingSecret, secrets.NullifierSecret, amountBE, tweakedPubkey)

	matched := false
	for _, c := range candidates {
		if commitment == c {
			matched = true
			break
		}
	}
	if !matched {
		return
	}

	nullifier := mimc.Nullifier(commitment, secrets.NullifierSecret)

	s.recordedUtxosMu.Lock()
	_, exists := s.recordedUtxos[nullifier]
	s.recordedUtxosMu.Unlock()
	if exists {
		return
	}

	signer, err := keys.NewTweakedSigner(s.spendSeed, secrets.TweakScalar)
	if err != nil {
		return
	}
	if !ed25519.PublicKey(signer.PublicKey()).Equal(secrets.TweakedPubkey) {
		return
	}

	s.recordedUtxosMu.Lock()
	s.recordedUtxos[nullifier] = secrets.Amount
	s.recordedUtxosMu.Unlock()

	s.addrsMu.Lock()
	s.addrs = append(s.addrs, tweakedPubkey)
	s.addrsMu.Unlock()

	s.amount.Add(int64(secrets.Amount))

	if s.telemetry != nil {
		s.telemetry.Recorded(nullifier, tweakedPubkey, secrets.Amount)
	}
}
