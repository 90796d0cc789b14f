// Command mithrasdemo is a non-core debug CLI that walks the full
// sender/receiver note flow against an in-memory fixture — no ledger, no
// custody, no config — to exercise the crypto core end to end: generate a
// wallet identity, build a note to its own address, open the resulting
// envelope, and verify the one-time signer reconstructs the right key.
package main

import (
	"crypto/ed25519"
	"fmt"
	"os"

	"github.com/mithras-protocol/mithras/internal/address"
	mhpke "github.com/mithras-protocol/mithras/internal/hpke"
	"github.com/mithras-protocol/mithras/internal/keys"
	"github.com/mithras-protocol/mithras/internal/mimc"
	"github.com/mithras-protocol/mithras/internal/utxo"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mithrasdemo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	spendSeed, err := keys.NewSpendSeed()
	if err != nil {
		return fmt.Errorf("spend seed: %w", err)
	}
	discoveryKeypair, err := keys.NewDiscoveryKeypair()
	if err != nil {
		return fmt.Errorf("discovery keypair: %w", err)
	}

	addr := address.New(1, mhpke.Testnet(), mhpke.Base25519Sha512ChaCha20Poly1305, spendSeed.PublicKey(), discoveryKeypair.Public())
	encoded, err := addr.Encode()
	if err != nil {
		return fmt.Errorf("encode address: %w", err)
	}
	fmt.Printf("wallet address: %s\n", encoded)

	decoded, err := address.Decode(encoded)
	if err != nil {
		return fmt.Errorf("decode address: %w", err)
	}
	if !ed25519.PublicKey(decoded.Spend).Equal(spendSeed.PublicKey()) {
		return fmt.Errorf("decoded address spend key does not round-trip")
	}

	var sender [32]byte
	copy(sender[:], spendSeed.PublicKey())
	var lease [32]byte

	meta := mhpke.TransactionMetadata{
		Sender:     ed25519.PublicKey(sender[:]),
		FirstValid: 1000,
		LastValid:  1010,
		Lease:      lease,
		Network:    mhpke.Testnet(),
		AppID:      42,
	}

	const amount = uint64(1_000_000)
	inputs, err := utxo.Generate(meta, amount, decoded)
	if err != nil {
		return fmt.Errorf("generate note: %w", err)
	}
	fmt.Printf("sealed a %d-unit note into a %d-byte envelope\n", amount, len(inputs.Envelope.Encode()))

	opened, err := utxo.Open(inputs.Envelope, discoveryKeypair, meta)
	if err != nil {
		return fmt.Errorf("open note: %w", err)
	}
	if opened.Amount != amount {
		return fmt.Errorf("round-tripped amount mismatch: got %d, want %d", opened.Amount, amount)
	}

	amountBE := utxo.AmountBE32(opened.Amount)
	var tweakedPubkey [32]byte
	copy(tweakedPubkey[:], opened.TweakedPubkey)
	commitment := mimc.Commitment(opened.SpendingSecret, opened.NullifierSecret, amountBE, tweakedPubkey)
	nullifier := mimc.Nullifier(commitment, opened.NullifierSecret)
	fmt.Printf("commitment: %x\n", commitment)
	fmt.Printf("nullifier:  %x\n", nullifier)

	signer, err := keys.NewTweakedSigner(spendSeed, opened.TweakScalar)
	if err != nil {
		return fmt.Errorf("reconstruct signer: %w", err)
	}
	if !ed25519.PublicKey(signer.PublicKey()).Equal(opened.TweakedPubkey) {
		return fmt.Errorf("tweaked signer public key does not match note")
	}

	sig := signer.Sign(commitment[:])
	if !ed25519.Verify(signer.PublicKey(), commitment[:], sig) {
		return fmt.Errorf("tweaked signature failed to verify")
	}
	fmt.Println("one-time signer reconstructed and verified a spend signature")

	return nil
}
