package utxo

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/mithras-protocol/mithras/internal/address"
	mhpke "github.com/mithras-protocol/mithras/internal/hpke"
	"github.com/mithras-protocol/mithras/internal/keys"
)

func testMetadata() mhpke.TransactionMetadata {
	var sender, lease [32]byte
	copy(sender[:], "sender public key padded to 32.")
	return mhpke.TransactionMetadata{
		Sender:     ed25519.PublicKey(sender[:]),
		FirstValid: 10,
		LastValid:  20,
		Lease:      lease,
		Network:    mhpke.Testnet(),
		AppID:      7,
	}
}

func TestGenerateOpenRoundTrip(t *testing.T) {
	spendSeed, err := keys.NewSpendSeed()
	if err != nil {
		t.Fatalf("NewSpendSeed: %v", err)
	}
	discoveryKeypair, err := keys.NewDiscoveryKeypair()
	if err != nil {
		t.Fatalf("NewDiscoveryKeypair: %v", err)
	}

	receiver := address.New(1, mhpke.Testnet(), mhpke.Base25519Sha512ChaCha20Poly1305, spendSeed.PublicKey(), discoveryKeypair.Public())

	meta := testMetadata()
	const amount = uint64(500)

	inputs, err := Generate(meta, amount, receiver)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	opened, err := Open(inputs.Envelope, discoveryKeypair, meta)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if opened.Amount != amount {
		t.Fatalf("Amount = %d, want %d", opened.Amount, amount)
	}
	if opened.SpendingSecret != inputs.Secrets.SpendingSecret {
		t.Fatalf("spending secret did not round-trip")
	}
	if opened.NullifierSecret != inputs.Secrets.NullifierSecret {
		t.Fatalf("nullifier secret did not round-trip")
	}
	if !ed25519.PublicKey(opened.TweakedPubkey).Equal(inputs.Secrets.TweakedPubkey) {
		t.Fatalf("tweaked pubkey did not round-trip")
	}

	signer, err := keys.NewTweakedSigner(spendSeed, opened.TweakScalar)
	if err != nil {
		t.Fatalf("NewTweakedSigner: %v", err)
	}
	if !ed25519.PublicKey(signer.PublicKey()).Equal(opened.TweakedPubkey) {
		t.Fatalf("reconstructed signer public key does not match opened note")
	}
}

func TestOpenFailsForWrongRecipient(t *testing.T) {
	spendSeed, err := keys.NewSpendSeed()
	if err != nil {
		t.Fatalf("NewSpendSeed: %v", err)
	}
	discoveryKeypair, err := keys.NewDiscoveryKeypair()
	if err != nil {
		t.Fatalf("NewDiscoveryKeypair: %v", err)
	}
	receiver := address.New(1, mhpke.Testnet(), mhpke.Base25519Sha512ChaCha20Poly1305, spendSeed.PublicKey(), discoveryKeypair.Public())

	meta := testMetadata()
	inputs, err := Generate(meta, 500, receiver)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	other, err := keys.NewDiscoveryKeypair()
	if err != nil {
		t.Fatalf("NewDiscoveryKeypair: %v", err)
	}
	if _, err := Open(inputs.Envelope, other, meta); err == nil {
		t.Fatalf("Open succeeded under the wrong discovery key")
	}
}

func TestSecretsEncodeDecodeRoundTrip(t *testing.T) {
	spendSeed, err := keys.NewSpendSeed()
	if err != nil {
		t.Fatalf("NewSpendSeed: %v", err)
	}
	var discoverySecret [32]byte
	if _, err := rand.Read(discoverySecret[:]); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	h, err := keys.DeriveTweakScalar(discoverySecret)
	if err != nil {
		t.Fatalf("DeriveTweakScalar: %v", err)
	}
	tweakedPubkey, err := keys.DeriveTweakedPubkey(spendSeed.PublicKey(), h)
	if err != nil {
		t.Fatalf("DeriveTweakedPubkey: %v", err)
	}

	var spending, nullifier [32]byte
	copy(spending[:], "spending secret padded to 32by.")
	copy(nullifier[:], "nullifier secret padded to 32b.")

	secrets := Secrets{
		SpendingSecret:  spending,
		NullifierSecret: nullifier,
		Amount:          12345,
		TweakScalar:     h,
		TweakedPubkey:   tweakedPubkey,
	}

	encoded, err := secrets.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(encoded) != SecretSize {
		t.Fatalf("encoded length = %d, want %d", len(encoded), SecretSize)
	}

	decoded, err := Decode(encoded[:])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Amount != secrets.Amount {
		t.Fatalf("decoded amount = %d, want %d", decoded.Amount, secrets.Amount)
	}
	if decoded.TweakScalar.Equal(h) != 1 {
		t.Fatalf("decoded tweak scalar does not match")
	}
	if !ed25519.PublicKey(decoded.TweakedPubkey).Equal(tweakedPubkey) {
		t.Fatalf("decoded tweaked pubkey does not match")
	}
}
