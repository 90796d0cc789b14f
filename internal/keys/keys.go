// Package keys implements the long-lived key material and the one-time
// tweaked signer at the core of the stealth-address scheme: a SpendSeed
// (Ed25519) and a DiscoveryKeypair (X25519) are expanded and combined with a
// per-note tweak scalar to produce a signer whose public key a sender can
// reproduce without ever learning the corresponding private scalar.
package keys

import (
	"crypto/ecdh"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/mithras-protocol/mithras/internal/mithraserr"
)

const (
	tweakScalarDomain  = "mithras-tweak-scalar"
	tweakedPrefixDomain = "mithras-tweaked-prefix"
)

// SpendSeed is the 32-byte secret a long-lived Ed25519 identity is expanded
// from. It is immutable once created and is consumed only to build
// TweakedSigners.
type SpendSeed struct {
	seed [32]byte
}

// NewSpendSeed draws a fresh SpendSeed from the system CSPRNG.
func NewSpendSeed() (*SpendSeed, error) {
	var s SpendSeed
	if _, err := rand.Read(s.seed[:]); err != nil {
		return nil, fmt.Errorf("%w: spend seed: %v", mithraserr.ErrRandomGeneration, err)
	}
	return &s, nil
}

// SpendSeedFromBytes wraps an existing 32-byte secret, e.g. recovered from
// custody.
func SpendSeedFromBytes(b [32]byte) *SpendSeed {
	return &SpendSeed{seed: b}
}

// Bytes returns the raw 32-byte seed.
func (s *SpendSeed) Bytes() [32]byte { return s.seed }

// Zero overwrites the seed in place. Call this when the wallet holding the
// seed shuts down.
func (s *SpendSeed) Zero() {
	for i := range s.seed {
		s.seed[i] = 0
	}
}

// expand computes (a, prefix) = SHA-512(seed), with a clamped and reduced to
// a scalar mod the group order per RFC 8032 §5.1.5.
func (s *SpendSeed) expand() (*edwards25519.Scalar, [32]byte) {
	h := sha512.Sum512(s.seed[:])

	a, err := new(edwards25519.Scalar).SetBytesWithClamping(h[:32])
	if err != nil {
		// SetBytesWithClamping only fails on wrong input length; h[:32] is
		// always exactly 32 bytes.
		panic("mithras: clamping failed on fixed-size input: " + err.Error())
	}

	var prefix [32]byte
	copy(prefix[:], h[32:])
	return a, prefix
}

// PublicKey returns A = a·G, the standard Ed25519 verifying key.
func (s *SpendSeed) PublicKey() ed25519.PublicKey {
	a, _ := s.expand()
	A := new(edwards25519.Point).ScalarBaseMult(a)
	return ed25519.PublicKey(A.Bytes())
}

// DiscoveryKeypair is an X25519 static keypair used both for a wallet's
// long-lived discovery identity and for a sender's short-lived ephemerals.
type DiscoveryKeypair struct {
	private *ecdh.PrivateKey
}

// NewDiscoveryKeypair draws a fresh X25519 keypair.
func NewDiscoveryKeypair() (*DiscoveryKeypair, error) {
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: discovery keypair: %v", mithraserr.ErrRandomGeneration, err)
	}
	return &DiscoveryKeypair{private: priv}, nil
}

// DiscoveryKeypairFromBytes wraps a 32-byte X25519 scalar.
func DiscoveryKeypairFromBytes(b [32]byte) (*DiscoveryKeypair, error) {
	priv, err := ecdh.X25519().NewPrivateKey(b[:])
	if err != nil {
		return nil, fmt.Errorf("%w: discovery private key: %v", mithraserr.ErrCurvePoint, err)
	}
	return &DiscoveryKeypair{private: priv}, nil
}

// Private returns the underlying X25519 private key.
func (d *DiscoveryKeypair) Private() *ecdh.PrivateKey { return d.private }

// Public returns the X25519 public key bytes, D = d·Base.
func (d *DiscoveryKeypair) Public() [32]byte {
	var out [32]byte
	copy(out[:], d.private.PublicKey().Bytes())
	return out
}

// Zero discards the held private key reference. Go's crypto/ecdh keys are
// not in-place zeroable; callers holding the source bytes used to construct
// this keypair are responsible for zeroing those separately.
func (d *DiscoveryKeypair) Zero() {
	d.private = nil
}

// scalarModOrder reduces a 32-byte little-endian integer modulo the group
// order without clamping, matching curve25519-dalek's
// Scalar::from_bytes_mod_order. filippo.io/edwards25519 only exposes wide
// (64-byte) reduction via SetUniformBytes, so the 32-byte value is
// zero-extended at the high end (it is little-endian, so padding follows
// the value) before reduction; this yields the identical residue.
func scalarModOrder(b32 []byte) (*edwards25519.Scalar, error) {
	wide := make([]byte, 64)
	copy(wide, b32)
	return new(edwards25519.Scalar).SetUniformBytes(wide)
}

// DeriveTweakScalar computes h = SHA-512("mithras-tweak-scalar" ‖ s) mod ℓ
// from a 32-byte shared discovery secret.
func DeriveTweakScalar(discoverySecret [32]byte) (*edwards25519.Scalar, error) {
	h := sha512.New()
	h.Write([]byte(tweakScalarDomain))
	h.Write(discoverySecret[:])
	digest := h.Sum(nil)

	scalar, err := scalarModOrder(digest[:32])
	if err != nil {
		return nil, fmt.Errorf("%w: tweak scalar: %v", mithraserr.ErrDataConversion, err)
	}
	return scalar, nil
}

// DeriveTweakedPubkey computes A' = A + h·G, the sender-side reconstruction
// of a recipient's one-time spend key.
func DeriveTweakedPubkey(spendPub ed25519.PublicKey, h *edwards25519.Scalar) (ed25519.PublicKey, error) {
	A, err := new(edwards25519.Point).SetBytes(spendPub)
	if err != nil {
		return nil, fmt.Errorf("%w: spend public key: %v", mithraserr.ErrCurvePoint, err)
	}
	hG := new(edwards25519.Point).ScalarBaseMult(h)
	Aprime := new(edwards25519.Point).Add(A, hG)
	return ed25519.PublicKey(Aprime.Bytes()), nil
}

// TweakedSigner is the receiver-side one-time signer: a' = a+h mod ℓ,
// prefix' derived from the base prefix and the locked public A', and A'
// itself recomputed from a' (never trusted blindly) to guard against
// domain-separation faults.
type TweakedSigner struct {
	aPrime      *edwards25519.Scalar
	prefixPrime [32]byte
	publicKey   ed25519.PublicKey
}

// NewTweakedSigner derives the receiver's one-time signer from the wallet's
// SpendSeed and a tweak scalar recovered via discovery.
func NewTweakedSigner(seed *SpendSeed, h *edwards25519.Scalar) (*TweakedSigner, error) {
	a, prefix := seed.expand()

	aPrime := new(edwards25519.Scalar).Add(a, h)
	Aprime := new(edwards25519.Point).ScalarBaseMult(aPrime)
	publicKey := ed25519.PublicKey(Aprime.Bytes())

	hasher := sha512.New()
	hasher.Write([]byte(tweakedPrefixDomain))
	hasher.Write(prefix[:])
	hasher.Write(publicKey)
	digest := hasher.Sum(nil)

	var prefixPrime [32]byte
	copy(prefixPrime[:], digest[32:])

	return &TweakedSigner{
		aPrime:      aPrime,
		prefixPrime: prefixPrime,
		publicKey:   publicKey,
	}, nil
}

// PublicKey returns A', the one-time verifying key.
func (t *TweakedSigner) PublicKey() ed25519.PublicKey { return t.publicKey }

// Sign produces a standard Ed25519 signature over msg using the tweaked
// expanded secret key (a', prefix'), recomputing A' = a'·G before hashing so
// the folded public key always matches what was derived at construction
// time. Verifies under crypto/ed25519.Verify(t.PublicKey(), msg, sig).
func (t *TweakedSigner) Sign(msg []byte) []byte {
	// Defend against a faulted aPrime/publicKey pairing by recomputing A'
	// from a' immediately before use, per the tweaked-signer contract.
	Aprime := new(edwards25519.Point).ScalarBaseMult(t.aPrime)
	publicKey := Aprime.Bytes()

	rHash := sha512.New()
	rHash.Write(t.prefixPrime[:])
	rHash.Write(msg)
	rDigest := rHash.Sum(nil)

	r, err := new(edwards25519.Scalar).SetUniformBytes(rDigest)
	if err != nil {
		panic("mithras: sha512 output is not 64 bytes: " + err.Error())
	}

	R := new(edwards25519.Point).ScalarBaseMult(r)
	RBytes := R.Bytes()

	kHash := sha512.New()
	kHash.Write(RBytes)
	kHash.Write(publicKey)
	kHash.Write(msg)
	kDigest := kHash.Sum(nil)

	k, err := new(edwards25519.Scalar).SetUniformBytes(kDigest)
	if err != nil {
		panic("mithras: sha512 output is not 64 bytes: " + err.Error())
	}

	s := new(edwards25519.Scalar).MultiplyAdd(k, t.aPrime, r)

	sig := make([]byte, ed25519.SignatureSize)
	copy(sig[:32], RBytes)
	copy(sig[32:], s.Bytes())
	return sig
}
