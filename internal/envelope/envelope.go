// Package envelope implements the fixed-width wire codec for the on-chain
// note record: version, suite, KEM encapsulated key, ciphertext‖tag,
// discovery tag, and the explicit discovery ephemeral public key.
package envelope

import (
	"fmt"

	mhpke "github.com/mithras-protocol/mithras/internal/hpke"
	"github.com/mithras-protocol/mithras/internal/mithraserr"
)

// SecretSize is the fixed plaintext payload size (UtxoSecrets).
const SecretSize = 136

// CipherTextSize is the ciphertext‖tag size for the one supported AEAD.
const CipherTextSize = SecretSize + 16 // ChaCha20-Poly1305 tag

// Size is the total wire length of an envelope, derived from the byte
// offset table rather than hardcoded: version(1) + suite(1) + encapsulated
// key(32) + ciphertext‖tag(CipherTextSize) + discovery tag(32) + discovery
// ephemeral(32). This computes to 250, not the 256 the design prose states;
// the offset table is treated as authoritative (see DESIGN.md).
const Size = 1 + 1 + 32 + CipherTextSize + 32 + 32

const (
	offsetVersion  = 0
	offsetSuite    = 1
	offsetKEM      = 2
	offsetCipher   = offsetKEM + 32
	offsetTag      = offsetCipher + CipherTextSize
	offsetEphemeral = offsetTag + 32
)

// Envelope is the decoded wire record.
type Envelope struct {
	Version           uint8
	Suite             mhpke.SupportedHpkeSuite
	EncapsulatedKey   [32]byte
	Ciphertext        [CipherTextSize]byte
	DiscoveryTag      [32]byte
	DiscoveryEphemeral [32]byte
}

// Encode serializes e into the fixed Size-byte wire form.
func (e Envelope) Encode() [Size]byte {
	var out [Size]byte
	out[offsetVersion] = e.Version
	out[offsetSuite] = uint8(e.Suite)
	copy(out[offsetKEM:offsetKEM+32], e.EncapsulatedKey[:])
	copy(out[offsetCipher:offsetCipher+CipherTextSize], e.Ciphertext[:])
	copy(out[offsetTag:offsetTag+32], e.DiscoveryTag[:])
	copy(out[offsetEphemeral:offsetEphemeral+32], e.DiscoveryEphemeral[:])
	return out
}

// supportedVersion is the only plaintext schema version this codec accepts.
const supportedVersion = 1

// Decode parses a wire-form envelope. It rejects wrong length, an unknown
// version byte, and unknown suite bytes.
func Decode(b []byte) (Envelope, error) {
	var e Envelope
	if len(b) != Size {
		return e, fmt.Errorf("%w: envelope length %d, want %d", mithraserr.ErrEnvelopeCodec, len(b), Size)
	}

	if b[offsetVersion] != supportedVersion {
		return e, fmt.Errorf("%w: unknown envelope version %d", mithraserr.ErrEnvelopeCodec, b[offsetVersion])
	}

	suite := mhpke.SupportedHpkeSuite(b[offsetSuite])
	if suite != mhpke.Base25519Sha512ChaCha20Poly1305 {
		return e, fmt.Errorf("%w: unknown hpke suite %d", mithraserr.ErrEnvelopeCodec, suite)
	}

	e.Version = b[offsetVersion]
	e.Suite = suite
	copy(e.EncapsulatedKey[:], b[offsetKEM:offsetKEM+32])
	copy(e.Ciphertext[:], b[offsetCipher:offsetCipher+CipherTextSize])
	copy(e.DiscoveryTag[:], b[offsetTag:offsetTag+32])
	copy(e.DiscoveryEphemeral[:], b[offsetEphemeral:offsetEphemeral+32])
	return e, nil
}
