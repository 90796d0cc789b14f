// Package hpke wraps the single supported HPKE suite (base mode,
// X25519-HKDF-SHA256 KEM, HKDF-SHA512 KDF, ChaCha20-Poly1305 AEAD) and the
// transaction metadata that every note is cryptographically bound to.
package hpke

import (
	"crypto/ecdh"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"github.com/cloudflare/circl/hpke"

	"github.com/mithras-protocol/mithras/internal/mithraserr"
)

// SupportedNetwork identifies the chain a note is bound to. Custom carries a
// 32-byte genesis-hash-style tag for non-named networks.
type SupportedNetwork struct {
	kind   networkKind
	custom [32]byte
}

type networkKind uint8

const (
	NetworkMainnet networkKind = iota
	NetworkTestnet
	NetworkBetanet
	NetworkDevnet
	NetworkCustom
)

func Mainnet() SupportedNetwork { return SupportedNetwork{kind: NetworkMainnet} }
func Testnet() SupportedNetwork { return SupportedNetwork{kind: NetworkTestnet} }
func Betanet() SupportedNetwork { return SupportedNetwork{kind: NetworkBetanet} }
func Devnet() SupportedNetwork  { return SupportedNetwork{kind: NetworkDevnet} }

// Custom builds a network tag from an arbitrary 32-byte value, typically a
// ledger's genesis hash.
func Custom(tag [32]byte) SupportedNetwork {
	return SupportedNetwork{kind: NetworkCustom, custom: tag}
}

// Kind reports the discriminant, for callers that need to persist or
// compare networks without string formatting.
func (n SupportedNetwork) Kind() uint8 { return uint8(n.kind) }

// String renders the network the same way it is folded into the HPKE info
// string: the lowercase name for named networks, or a hex array rendering
// of the tag for Custom (mirroring Rust's `{:x?}` debug format for a byte
// slice, e.g. "[ab, cd, ..]").
func (n SupportedNetwork) String() string {
	switch n.kind {
	case NetworkMainnet:
		return "mainnet"
	case NetworkTestnet:
		return "testnet"
	case NetworkBetanet:
		return "betanet"
	case NetworkDevnet:
		return "devnet"
	default:
		parts := make([]byte, 0, len(n.custom)*4)
		parts = append(parts, '[')
		for i, b := range n.custom {
			if i > 0 {
				parts = append(parts, ',', ' ')
			}
			parts = append(parts, []byte(fmt.Sprintf("%x", b))...)
		}
		parts = append(parts, ']')
		return string(parts)
	}
}

// SupportedHpkeSuite enumerates the HPKE suites Mithras understands. Only
// one is defined today; the type is extensible so that a future PQ suite
// can be added without breaking the wire encoding.
type SupportedHpkeSuite uint8

const (
	Base25519Sha512ChaCha20Poly1305 SupportedHpkeSuite = 0x00
)

// suite returns the concrete circl HPKE suite and KEM scheme for s. Only one
// suite is defined, so this never fails, but the signature stays
// (value, value, error) so adding a suite later doesn't change call sites.
func (s SupportedHpkeSuite) suite() (hpke.Suite, hpke.KEM, error) {
	switch s {
	case Base25519Sha512ChaCha20Poly1305:
		kem := hpke.KEM_X25519_HKDF_SHA256
		return hpke.NewSuite(kem, hpke.KDF_HKDF_SHA512, hpke.AEAD_ChaCha20Poly1305), kem, nil
	default:
		return hpke.Suite{}, 0, fmt.Errorf("%w: unknown hpke suite %d", mithraserr.ErrEnvelopeCodec, s)
	}
}

// TransactionMetadata is the immutable per-note context every envelope is
// cryptographically bound to: it drives both the HPKE info string (context
// binding) and the aad string (per-note binding).
type TransactionMetadata struct {
	Sender     ed25519.PublicKey
	FirstValid uint64
	LastValid  uint64
	Lease      [32]byte
	Network    SupportedNetwork
	AppID      uint64
}

// Info renders the HPKE info string: "mithras|network:<name>|app:<id>|v:1".
func (m TransactionMetadata) Info() []byte {
	return []byte(fmt.Sprintf("mithras|network:%s|app:%d|v:1", m.Network, m.AppID))
}

// AAD renders the HPKE associated data string:
// "txid:<hex(sender)>|fv:<d>|lv:<d>|lease:<hex(lease)>".
func (m TransactionMetadata) AAD() []byte {
	return []byte(fmt.Sprintf("txid:%s|fv:%d|lv:%d|lease:%s",
		hex.EncodeToString(m.Sender), m.FirstValid, m.LastValid, hex.EncodeToString(m.Lease[:])))
}

// Seal runs HPKE base-mode sender setup against the recipient's X25519
// public key and seals plaintext under aad. It returns the KEM encapsulated
// key alongside the ciphertext‖tag.
func Seal(suiteID SupportedHpkeSuite, recipientPublic [32]byte, info, aad, plaintext []byte) (encapsulatedKey [32]byte, ciphertext []byte, err error) {
	suite, kemID, err := suiteID.suite()
	if err != nil {
		return encapsulatedKey, nil, err
	}

	recipientKey, err := kemID.Scheme().UnmarshalBinaryPublicKey(recipientPublic[:])
	if err != nil {
		return encapsulatedKey, nil, fmt.Errorf("%w: hpke recipient key: %v", mithraserr.ErrCurvePoint, err)
	}

	sender, err := suite.NewSender(recipientKey, info)
	if err != nil {
		return encapsulatedKey, nil, fmt.Errorf("%w: hpke sender setup: %v", mithraserr.ErrHPKEOperation, err)
	}

	enc, sealer, err := sender.Setup(rand.Reader)
	if err != nil {
		return encapsulatedKey, nil, fmt.Errorf("%w: hpke sender setup: %v", mithraserr.ErrHPKEOperation, err)
	}
	if len(enc) != 32 {
		return encapsulatedKey, nil, fmt.Errorf("%w: unexpected encapsulated key length %d", mithraserr.ErrDataConversion, len(enc))
	}
	copy(encapsulatedKey[:], enc)

	ct, err := sealer.Seal(plaintext, aad)
	if err != nil {
		return encapsulatedKey, nil, fmt.Errorf("%w: hpke seal: %v", mithraserr.ErrHPKEOperation, err)
	}
	return encapsulatedKey, ct, nil
}

// Open runs HPKE base-mode receiver setup with the recipient's X25519
// private key and opens ciphertext under aad. Authentication failure is
// reported as mithraserr.ErrHPKEOperation.
func Open(suiteID SupportedHpkeSuite, recipientPrivate *ecdh.PrivateKey, encapsulatedKey [32]byte, info, aad, ciphertext []byte) ([]byte, error) {
	suite, kemID, err := suiteID.suite()
	if err != nil {
		return nil, err
	}

	skR, err := kemID.Scheme().UnmarshalBinaryPrivateKey(recipientPrivate.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: hpke recipient private key: %v", mithraserr.ErrCurvePoint, err)
	}

	receiver, err := suite.NewReceiver(skR, info)
	if err != nil {
		return nil, fmt.Errorf("%w: hpke receiver setup: %v", mithraserr.ErrHPKEOperation, err)
	}

	opener, err := receiver.Setup(encapsulatedKey[:])
	if err != nil {
		return nil, fmt.Errorf("%w: hpke receiver setup: %v", mithraserr.ErrHPKEOperation, err)
	}

	pt, err := opener.Open(ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: hpke open: %v", mithraserr.ErrHPKEOperation, err)
	}
	return pt, nil
}

// MethodSelector hashes an ABI signature string with SHA-512/256, returning
// the 32-byte method selector used to classify incoming application calls.
func MethodSelector(abiSignature string) [32]byte {
	return sha512.Sum512_256([]byte(abiSignature))
}
