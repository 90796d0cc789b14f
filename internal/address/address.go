// Package address implements the bech32m-wrapped external serialization of
// a wallet's long-lived (spend, discovery) public identity.
package address

import (
	"crypto/ed25519"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"

	mhpke "github.com/mithras-protocol/mithras/internal/hpke"
	"github.com/mithras-protocol/mithras/internal/mithraserr"
)

const hrp = "mith"

// payloadSize is version(1) + network(1) + suite(1) + spend(32) + disc(32).
const payloadSize = 67

// networkByte values per §4.5. Custom's 32-byte tag is not carried in the
// address; callers needing it must carry it out-of-band.
const (
	networkMainnet byte = 0x00
	networkTestnet byte = 0x01
	networkBetanet byte = 0x02
	networkDevnet  byte = 0x03
	networkCustom  byte = 0xFF
)

// MithrasAddr is a wallet's long-lived external identity.
type MithrasAddr struct {
	Version     uint8
	NetworkByte byte
	Suite       mhpke.SupportedHpkeSuite
	Spend       ed25519.PublicKey
	Discovery   [32]byte
}

func networkByteFor(n mhpke.SupportedNetwork) byte {
	switch n.Kind() {
	case 0:
		return networkMainnet
	case 1:
		return networkTestnet
	case 2:
		return networkBetanet
	case 3:
		return networkDevnet
	default:
		return networkCustom
	}
}

// New builds a MithrasAddr from key material and a network, collapsing any
// Custom network to its single-byte tag.
func New(version uint8, network mhpke.SupportedNetwork, suite mhpke.SupportedHpkeSuite, spend ed25519.PublicKey, discovery [32]byte) MithrasAddr {
	return MithrasAddr{
		Version:     version,
		NetworkByte: networkByteFor(network),
		Suite:       suite,
		Spend:       spend,
		Discovery:   discovery,
	}
}

// Encode renders a as bech32m with HRP "mith" over
// version‖network_byte‖suite_byte‖spend(32)‖disc(32).
func (a MithrasAddr) Encode() (string, error) {
	if len(a.Spend) != ed25519.PublicKeySize {
		return "", fmt.Errorf("%w: spend key length %d", mithraserr.ErrAddressCodec, len(a.Spend))
	}

	data := make([]byte, 0, payloadSize)
	data = append(data, a.Version, a.NetworkByte, uint8(a.Suite))
	data = append(data, a.Spend...)
	data = append(data, a.Discovery[:]...)

	converted, err := bech32.ConvertBits(data, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("%w: bit conversion: %v", mithraserr.ErrAddressCodec, err)
	}

	encoded, err := bech32.EncodeM(hrp, converted)
	if err != nil {
		return "", fmt.Errorf("%w: bech32m encode: %v", mithraserr.ErrAddressCodec, err)
	}
	return encoded, nil
}

// Decode parses a bech32m-encoded Mithras address, rejecting wrong HRP,
// wrong payload length, and unknown network or suite bytes.
func Decode(s string) (MithrasAddr, error) {
	var out MithrasAddr

	decodedHRP, data5, err := bech32.DecodeNoLimit(s)
	if err != nil {
		return out, fmt.Errorf("%w: bech32m decode: %v", mithraserr.ErrAddressCodec, err)
	}
	if decodedHRP != hrp {
		return out, fmt.Errorf("%w: unexpected hrp %q", mithraserr.ErrAddressCodec, decodedHRP)
	}

	data, err := bech32.ConvertBits(data5, 5, 8, false)
	if err != nil {
		return out, fmt.Errorf("%w: bit conversion: %v", mithraserr.ErrAddressCodec, err)
	}
	if len(data) != payloadSize {
		return out, fmt.Errorf("%w: payload length %d, want %d", mithraserr.ErrAddressCodec, len(data), payloadSize)
	}

	networkByte := data[1]
	switch networkByte {
	case networkMainnet, networkTestnet, networkBetanet, networkDevnet, networkCustom:
	default:
		return out, fmt.Errorf("%w: unknown network byte 0x%02x", mithraserr.ErrAddressCodec, networkByte)
	}

	suite := mhpke.SupportedHpkeSuite(data[2])
	if suite != mhpke.Base25519Sha512ChaCha20Poly1305 {
		return out, fmt.Errorf("%w: unknown suite byte 0x%02x", mithraserr.ErrAddressCodec, data[2])
	}

	spend := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(spend, data[3:35])
	var disc [32]byte
	copy(disc[:], data[35:67])

	out = MithrasAddr{
		Version:     data[0],
		NetworkByte: networkByte,
		Suite:       suite,
		Spend:       spend,
		Discovery:   disc,
	}
	return out, nil
}
