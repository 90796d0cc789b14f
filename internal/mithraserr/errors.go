// Package mithraserr defines the sentinel error kinds shared across the
// wallet core, following the taxonomy used by the protocol's error design:
// every cryptographic or codec failure is fatal to its immediate caller and
// identifiable via errors.Is, never a bare string.
package mithraserr

import "errors"

var (
	// ErrRandomGeneration marks a CSPRNG fill failure.
	ErrRandomGeneration = errors.New("mithras: random generation failed")

	// ErrCurvePoint marks an Edwards-Y decompression or Ed25519 key-parsing
	// rejection.
	ErrCurvePoint = errors.New("mithras: invalid curve point or key encoding")

	// ErrHPKEOperation marks an HPKE setup or seal/open failure, including
	// AEAD authentication failure.
	ErrHPKEOperation = errors.New("mithras: hpke operation failed")

	// ErrDataConversion marks a fixed-width slice or field-element
	// conversion that did not satisfy its declared shape.
	ErrDataConversion = errors.New("mithras: data conversion failed")

	// ErrAddressCodec marks a bech32, HRP, length, network, or suite
	// rejection while encoding/decoding a MithrasAddr.
	ErrAddressCodec = errors.New("mithras: address codec failed")

	// ErrEnvelopeCodec marks a wrong-size, unknown-version, or
	// unknown-suite rejection while encoding/decoding an HpkeEnvelope.
	ErrEnvelopeCodec = errors.New("mithras: envelope codec failed")

	// ErrNotMine marks a discovery-tag mismatch: the envelope was not
	// addressed to this recipient. Not a fault — the caller should treat
	// it as "skip, try the next envelope".
	ErrNotMine = errors.New("mithras: discovery tag does not match")
)
