package envelope

import (
	"testing"

	mhpke "github.com/mithras-protocol/mithras/internal/hpke"
)

func TestSizeIsDerivedNotHardcoded(t *testing.T) {
	if Size != 250 {
		t.Fatalf("Size = %d, want 250 (see DESIGN.md for the 256-vs-250 resolution)", Size)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var e Envelope
	e.Version = 1
	e.Suite = mhpke.Base25519Sha512ChaCha20Poly1305
	for i := range e.EncapsulatedKey {
		e.EncapsulatedKey[i] = byte(i)
	}
	for i := range e.Ciphertext {
		e.Ciphertext[i] = byte(i * 3)
	}
	for i := range e.DiscoveryTag {
		e.DiscoveryTag[i] = byte(i * 5)
	}
	for i := range e.DiscoveryEphemeral {
		e.DiscoveryEphemeral[i] = byte(i * 7)
	}

	wire := e.Encode()
	if len(wire) != Size {
		t.Fatalf("encoded length = %d, want %d", len(wire), Size)
	}

	decoded, err := Decode(wire[:])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != e {
		t.Fatalf("decoded envelope does not match original")
	}
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	if _, err := Decode(make([]byte, Size-1)); err == nil {
		t.Fatalf("Decode accepted a short buffer")
	}
	if _, err := Decode(make([]byte, Size+1)); err == nil {
		t.Fatalf("Decode accepted a long buffer")
	}
}

func TestDecodeRejectsUnknownSuite(t *testing.T) {
	wire := make([]byte, Size)
	wire[offsetVersion] = 1
	wire[offsetSuite] = 0xFF
	if _, err := Decode(wire); err == nil {
		t.Fatalf("Decode accepted an unknown suite byte")
	}
}
