// Package utxo implements the fixed-layout UTXO secrets payload (C5) and the
// sender-side UtxoInputs builder that assembles a full note (C7): ephemeral
// generation, tweak/derivation, sealing, and envelope assembly.
package utxo

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/mithras-protocol/mithras/internal/address"
	"github.com/mithras-protocol/mithras/internal/discovery"
	"github.com/mithras-protocol/mithras/internal/envelope"
	mhpke "github.com/mithras-protocol/mithras/internal/hpke"
	"github.com/mithras-protocol/mithras/internal/keys"
	"github.com/mithras-protocol/mithras/internal/mithraserr"
)

// SecretSize is the fixed payload size: spending_secret(32) ‖
// nullifier_secret(32) ‖ amount(8, BE) ‖ tweak_scalar(32, canonical LE) ‖
// tweaked_pubkey(32).
const SecretSize = envelope.SecretSize

const (
	offsetSpending = 0
	offsetNullifier = 32
	offsetAmount    = 64
	offsetTweak     = 72
	offsetPubkey    = 104
)

// Secrets is the decoded UTXO payload.
type Secrets struct {
	SpendingSecret  [32]byte
	NullifierSecret [32]byte
	Amount          uint64
	TweakScalar     *edwards25519.Scalar
	TweakedPubkey   ed25519.PublicKey
}

// AmountBE32 widens a u64 amount to 32 bytes big-endian, right-aligned, the
// form MiMC commitment hashing requires.
func AmountBE32(amount uint64) [32]byte {
	var out [32]byte
	binary.BigEndian.PutUint64(out[24:], amount)
	return out
}

// Encode serializes s into the fixed 136-byte layout.
func (s Secrets) Encode() ([SecretSize]byte, error) {
	var out [SecretSize]byte
	if len(s.TweakedPubkey) != ed25519.PublicKeySize {
		return out, fmt.Errorf("%w: tweaked pubkey length %d", mithraserr.ErrDataConversion, len(s.TweakedPubkey))
	}

	copy(out[offsetSpending:offsetSpending+32], s.SpendingSecret[:])
	copy(out[offsetNullifier:offsetNullifier+32], s.NullifierSecret[:])
	binary.BigEndian.PutUint64(out[offsetAmount:offsetAmount+8], s.Amount)
	copy(out[offsetTweak:offsetTweak+32], s.TweakScalar.Bytes())
	copy(out[offsetPubkey:offsetPubkey+32], s.TweakedPubkey)
	return out, nil
}

// Decode parses the fixed 136-byte UtxoSecrets layout. The tweak scalar is
// reconstructed via scalar_from_bytes_mod_order; the tweaked pubkey must
// round-trip through Edwards-Y decompression.
func Decode(b []byte) (Secrets, error) {
	var out Secrets
	if len(b) != SecretSize {
		return out, fmt.Errorf("%w: secrets length %d, want %d", mithraserr.ErrDataConversion, len(b), SecretSize)
	}

	copy(out.SpendingSecret[:], b[offsetSpending:offsetSpending+32])
	copy(out.NullifierSecret[:], b[offsetNullifier:offsetNullifier+32])
	out.Amount = binary.BigEndian.Uint64(b[offsetAmount : offsetAmount+8])

	wide := make([]byte, 64)
	copy(wide, b[offsetTweak:offsetTweak+32])
	scalar, err := new(edwards25519.Scalar).SetUniformBytes(wide)
	if err != nil {
		return out, fmt.Errorf("%w: tweak scalar: %v", mithraserr.ErrDataConversion, err)
	}
	out.TweakScalar = scalar

	pub := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(pub, b[offsetPubkey:offsetPubkey+32])
	if _, err := new(edwards25519.Point).SetBytes(pub); err != nil {
		return out, fmt.Errorf("%w: tweaked pubkey: %v", mithraserr.ErrCurvePoint, err)
	}
	out.TweakedPubkey = pub

	return out, nil
}

// Open decrypts an on-chain envelope addressed (by discovery tag) to this
// wallet's DiscoveryKeypair, returning the decoded secrets. Callers run the
// discovery check themselves (it is cheaper and must short-circuit before
// this is ever called); Open always performs the HPKE open.
func Open(env envelope.Envelope, discKeypair *keys.DiscoveryKeypair, meta mhpke.TransactionMetadata) (Secrets, error) {
	var out Secrets

	pt, err := mhpke.Open(env.Suite, discKeypair.Private(), env.EncapsulatedKey, meta.Info(), meta.AAD(), env.Ciphertext[:])
	if err != nil {
		return out, err
	}
	if len(pt) != SecretSize {
		return out, fmt.Errorf("%w: plaintext length %d, want %d", mithraserr.ErrDataConversion, len(pt), SecretSize)
	}
	return Decode(pt)
}

// Inputs is the sender's assembled artifact: the secrets kept sender-side
// for record-keeping and ZK proving, and the envelope that goes on chain.
type Inputs struct {
	Secrets  Secrets
	Envelope envelope.Envelope
}

// Generate builds a complete note addressed to receiver: it draws an
// ephemeral X25519 keypair for discovery, derives the shared secret, tweak
// scalar, and tweaked pubkey, draws fresh random spending/nullifier
// secrets, and seals the assembled payload through HPKE.
func Generate(meta mhpke.TransactionMetadata, amount uint64, receiver address.MithrasAddr) (Inputs, error) {
	var out Inputs

	ephemeral, err := keys.NewDiscoveryKeypair()
	if err != nil {
		return out, err
	}

	sharedSecret, err := discovery.SharedSecret(ephemeral.Private(), receiver.Discovery)
	if err != nil {
		return out, err
	}

	tweakScalar, err := keys.DeriveTweakScalar(sharedSecret)
	if err != nil {
		return out, err
	}

	tweakedPubkey, err := keys.DeriveTweakedPubkey(receiver.Spend, tweakScalar)
	if err != nil {
		return out, err
	}

	if len(meta.Sender) != ed25519.PublicKeySize {
		return out, fmt.Errorf("%w: sender length %d", mithraserr.ErrDataConversion, len(meta.Sender))
	}
	var sender [32]byte
	copy(sender[:], meta.Sender)

	discoveryTag, err := discovery.Tag(sharedSecret, sender, meta.FirstValid, meta.LastValid, meta.Lease)
	if err != nil {
		return out, err
	}

	var spendingSecret, nullifierSecret [32]byte
	if _, err := rand.Read(spendingSecret[:]); err != nil {
		return out, fmt.Errorf("%w: spending secret: %v", mithraserr.ErrRandomGeneration, err)
	}
	if _, err := rand.Read(nullifierSecret[:]); err != nil {
		return out, fmt.Errorf("%w: nullifier secret: %v", mithraserr.ErrRandomGeneration, err)
	}

	secrets := Secrets{
		SpendingSecret:  spendingSecret,
		NullifierSecret: nullifierSecret,
		Amount:          amount,
		TweakScalar:     tweakScalar,
		TweakedPubkey:   tweakedPubkey,
	}

	payload, err := secrets.Encode()
	if err != nil {
		return out, err
	}

	encapsulatedKey, ciphertext, err := mhpke.Seal(receiver.Suite, receiver.Discovery, meta.Info(), meta.AAD(), payload[:])
	if err != nil {
		return out, err
	}

	env := envelope.Envelope{
		Version:         1,
		Suite:           receiver.Suite,
		EncapsulatedKey: encapsulatedKey,
		DiscoveryTag:    discoveryTag,
	}
	copy(env.Ciphertext[:], ciphertext)
	ephemeralPublic := ephemeral.Public()
	copy(env.DiscoveryEphemeral[:], ephemeralPublic[:])

	out = Inputs{Secrets: secrets, Envelope: env}
	return out, nil
}
