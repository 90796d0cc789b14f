package scanner

import (
	"context"
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/mithras-protocol/mithras/internal/address"
	mhpke "github.com/mithras-protocol/mithras/internal/hpke"
	"github.com/mithras-protocol/mithras/internal/keys"
	"github.com/mithras-protocol/mithras/internal/ledger"
	"github.com/mithras-protocol/mithras/internal/mimc"
	"github.com/mithras-protocol/mithras/internal/utxo"
)

// fixedSource replays a fixed set of transactions then returns nil.
type fixedSource struct {
	txns []ledger.Transaction
}

func (f fixedSource) Run(ctx context.Context, out chan<- ledger.Transaction) error {
	for _, txn := range f.txns {
		select {
		case out <- txn:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func buildDepositTxn(t *testing.T, appID uint64, genesisHash [32]byte, receiver address.MithrasAddr) (ledger.Transaction, utxo.Inputs) {
	t.Helper()

	var sender, lease [32]byte
	copy(sender[:], "a sender address padded to 32b.")

	meta := mhpke.TransactionMetadata{
		Sender:     ed25519.PublicKey(sender[:]),
		FirstValid: 10,
		LastValid:  20,
		Lease:      lease,
		Network:    mhpke.Custom(genesisHash),
		AppID:      appID,
	}

	inputs, err := utxo.Generate(meta, 777, receiver)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	amountBE := utxo.AmountBE32(inputs.Secrets.Amount)
	var tweakedPubkey [32]byte
	copy(tweakedPubkey[:], inputs.Secrets.TweakedPubkey)
	commitment := mimc.Commitment(inputs.Secrets.SpendingSecret, inputs.Secrets.NullifierSecret, amountBE, tweakedPubkey)

	envBytes := inputs.Envelope.Encode()

	txn := ledger.Transaction{
		Sender:      sender,
		FirstValid:  meta.FirstValid,
		LastValid:   meta.LastValid,
		Lease:       lease,
		GenesisHash: genesisHash,
		AppID:       appID,
		AppArgs: [][]byte{
			depositSelector[:],
			commitment[:],
			[]byte("proof-placeholder"),
			envBytes[:],
		},
	}
	return txn, inputs
}

func TestScannerRecordsDeposit(t *testing.T) {
	spendSeed, err := keys.NewSpendSeed()
	if err != nil {
		t.Fatalf("NewSpendSeed: %v", err)
	}
	discoveryKeypair, err := keys.NewDiscoveryKeypair()
	if err != nil {
		t.Fatalf("NewDiscoveryKeypair: %v", err)
	}
	receiver := address.New(1, mhpke.Testnet(), mhpke.Base25519Sha512ChaCha20Poly1305, spendSeed.PublicKey(), discoveryKeypair.Public())

	var genesisHash [32]byte
	copy(genesisHash[:], "genesis hash padded to 32 bytes")
	const appID = uint64(99)

	txn, inputs := buildDepositTxn(t, appID, genesisHash, receiver)

	sc := New(spendSeed, discoveryKeypair, appID)
	source := fixedSource{txns: []ledger.Transaction{txn}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sc.Run(ctx, source); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := sc.Balance(); got != int64(inputs.Secrets.Amount) {
		t.Fatalf("Balance = %d, want %d", got, inputs.Secrets.Amount)
	}
	if got := sc.RecordedCount(); got != 1 {
		t.Fatalf("RecordedCount = %d, want 1", got)
	}
	addrs := sc.Addrs()
	if len(addrs) != 1 {
		t.Fatalf("len(Addrs()) = %d, want 1", len(addrs))
	}
}

func TestScannerIgnoresOtherAppID(t *testing.T) {
	spendSeed, err := keys.NewSpendSeed()
	if err != nil {
		t.Fatalf("NewSpendSeed: %v", err)
	}
	discoveryKeypair, err := keys.NewDiscoveryKeypair()
	if err != nil {
		t.Fatalf("NewDiscoveryKeypair: %v", err)
	}
	receiver := address.New(1, mhpke.Testnet(), mhpke.Base25519Sha512ChaCha20Poly1305, spendSeed.PublicKey(), discoveryKeypair.Public())

	var genesisHash [32]byte
	copy(genesisHash[:], "genesis hash padded to 32 bytes")

	txn, _ := buildDepositTxn(t, 99, genesisHash, receiver)

	sc := New(spendSeed, discoveryKeypair, 100) // different app id
	source := fixedSource{txns: []ledger.Transaction{txn}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sc.Run(ctx, source); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := sc.Balance(); got != 0 {
		t.Fatalf("Balance = %d, want 0 for a foreign app id", got)
	}
}

func TestScannerSpendKnownNullifierRetiresBalance(t *testing.T) {
	spendSeed, err := keys.NewSpendSeed()
	if err != nil {
		t.Fatalf("NewSpendSeed: %v", err)
	}
	discoveryKeypair, err := keys.NewDiscoveryKeypair()
	if err != nil {
		t.Fatalf("NewDiscoveryKeypair: %v", err)
	}
	receiver := address.New(1, mhpke.Testnet(), mhpke.Base25519Sha512ChaCha20Poly1305, spendSeed.PublicKey(), discoveryKeypair.Public())

	var genesisHash [32]byte
	copy(genesisHash[:], "genesis hash padded to 32 bytes")
	const appID = uint64(99)

	depositTxn, inputs := buildDepositTxn(t, appID, genesisHash, receiver)

	amountBE := utxo.AmountBE32(inputs.Secrets.Amount)
	var tweakedPubkey [32]byte
	copy(tweakedPubkey[:], inputs.Secrets.TweakedPubkey)
	commitment := mimc.Commitment(inputs.Secrets.SpendingSecret, inputs.Secrets.NullifierSecret, amountBE, tweakedPubkey)
	nullifier := mimc.Nullifier(commitment, inputs.Secrets.NullifierSecret)

	var sender, lease [32]byte
	copy(sender[:], "a sender address padded to 32b.")
	spendArgs := make([]byte, 128)
	copy(spendArgs[0:32], commitment[:])
	// commitment1 (unused here) left zero
	copy(spendArgs[96:128], nullifier[:])

	spendTxn := ledger.Transaction{
		Sender:      sender,
		FirstValid:  30,
		LastValid:   40,
		Lease:       lease,
		GenesisHash: genesisHash,
		AppID:       appID,
		AppArgs: [][]byte{
			spendSelector[:],
			spendArgs,
			[]byte("proof-placeholder"),
			[]byte{}, // unknown-nullifier envelopes never inspected here
			[]byte{},
		},
	}

	sc := New(spendSeed, discoveryKeypair, appID)
	source := fixedSource{txns: []ledger.Transaction{depositTxn, spendTxn}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sc.Run(ctx, source); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := sc.Balance(); got != 0 {
		t.Fatalf("Balance = %d, want 0 after spend", got)
	}
	if got := sc.RecordedCount(); got != 0 {
		t.Fatalf("RecordedCount = %d, want 0 after spend", got)
	}
	if got := len(sc.Addrs()); got != 1 {
		t.Fatalf("len(Addrs()) = %d, want 1 (addrs is never pruned on spend)", got)
	}
}
