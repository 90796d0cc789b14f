// Package custody holds a wallet's long-lived key material at rest and in
// memory: the spend seed and discovery private key are sealed together
// under a KMS customer master key for storage, and held in a memguard
// enclave once unsealed so they never sit in the Go heap in the clear
// longer than a single access needs them.
package custody

import (
	"context"
	"fmt"
	"sync"

	"github.com/awnumar/memguard"

	"github.com/mithras-protocol/mithras/internal/keys"
	"github.com/mithras-protocol/mithras/internal/kms"
)

// seedEnvelopeSize is the plaintext KMS seals: a 32-byte Ed25519 spend seed
// followed by a 32-byte X25519 discovery private scalar.
const seedEnvelopeSize = 64

// Seal encrypts a wallet's spend seed and discovery private key together
// under keyID, producing the blob a wallet config persists at rest.
func Seal(ctx context.Context, client *kms.Client, keyID string, spendSeed *keys.SpendSeed, discoveryPrivate [32]byte) ([]byte, error) {
	plaintext := make([]byte, 0, seedEnvelopeSize)
	seedBytes := spendSeed.Bytes()
	plaintext = append(plaintext, seedBytes[:]...)
	plaintext = append(plaintext, discoveryPrivate[:]...)
	defer memguard.WipeBytes(plaintext)

	ciphertext, err := client.Encrypt(ctx, keyID, plaintext)
	if err != nil {
		return nil, fmt.Errorf("custody: seal: %w", err)
	}
	return ciphertext, nil
}

// Vault holds the unsealed key material behind a memguard enclave. A Vault
// starts empty; Unlock must be called once before Spend or Discovery.
type Vault struct {
	mu      sync.RWMutex
	enclave *memguard.Enclave
}

// New returns an empty, locked Vault.
func New() *Vault {
	return &Vault{}
}

// Unlock decrypts an envelope produced by Seal via KMS and locks the
// resulting key material behind a memguard enclave. It is safe to call at
// most once per Vault lifetime; a second call replaces the prior enclave.
func (v *Vault) Unlock(ctx context.Context, client *kms.Client, ciphertext []byte) error {
	plaintext, err := client.Decrypt(ctx, ciphertext)
	if err != nil {
		return fmt.Errorf("custody: unlock: %w", err)
	}
	defer memguard.WipeBytes(plaintext)

	if len(plaintext) != seedEnvelopeSize {
		return fmt.Errorf("custody: unlock: seed envelope is %d bytes, want %d", len(plaintext), seedEnvelopeSize)
	}

	enclave := memguard.NewEnclave(plaintext)

	v.mu.Lock()
	v.enclave = enclave
	v.mu.Unlock()
	return nil
}

// UnlockPlaintext is the non-KMS counterpart to Unlock, for tests: it locks
// an already-decrypted seed envelope straight into the enclave without a
// decryption round trip.
func (v *Vault) UnlockPlaintext(spendSeed *keys.SpendSeed, discoveryPrivate [32]byte) {
	plaintext := make([]byte, 0, seedEnvelopeSize)
	seedBytes := spendSeed.Bytes()
	plaintext = append(plaintext, seedBytes[:]...)
	plaintext = append(plaintext, discoveryPrivate[:]...)
	defer memguard.WipeBytes(plaintext)

	enclave := memguard.NewEnclave(plaintext)

	v.mu.Lock()
	v.enclave = enclave
	v.mu.Unlock()
}

// open decrypts the enclave into a locked buffer. Callers must Destroy the
// returned buffer as soon as they are done extracting what they need.
func (v *Vault) open() (*memguard.LockedBuffer, error) {
	v.mu.RLock()
	enclave := v.enclave
	v.mu.RUnlock()

	if enclave == nil {
		return nil, fmt.Errorf("custody: vault is locked")
	}
	return enclave.Open()
}

// Spend extracts the wallet's spend seed.
func (v *Vault) Spend() (*keys.SpendSeed, error) {
	buf, err := v.open()
	if err != nil {
		return nil, err
	}
	defer buf.Destroy()

	var seed [32]byte
	copy(seed[:], buf.Bytes()[:32])
	return keys.SpendSeedFromBytes(seed), nil
}

// Discovery extracts the wallet's discovery keypair.
func (v *Vault) Discovery() (*keys.DiscoveryKeypair, error) {
	buf, err := v.open()
	if err != nil {
		return nil, err
	}
	defer buf.Destroy()

	var priv [32]byte
	copy(priv[:], buf.Bytes()[32:64])
	return keys.DiscoveryKeypairFromBytes(priv)
}

// Destroy discards the enclave, rendering the Vault locked again. Callers
// should invoke this on graceful shutdown.
func (v *Vault) Destroy() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.enclave != nil {
		// memguard.Enclave has no explicit destroy; dropping the only
		// reference lets the GC reclaim it, and memguard.Purge() at process
		// exit wipes all core-guarded pages regardless.
		v.enclave = nil
	}
}
