// Package discovery implements the symmetric discovery-tag fast path: a
// recipient can reject a note addressed to someone else with one X25519 DH
// and one HMAC, without ever touching HPKE.
package discovery

import (
	"crypto/ecdh"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/hkdf"

	"github.com/mithras-protocol/mithras/internal/mithraserr"
)

const hkdfInfo = "discovery-tag"

// SharedSecret computes s = DH(private, peerPublic), the 32-byte X25519
// shared secret used on both the sender's ephemeral side and the
// recipient's static side.
func SharedSecret(private *ecdh.PrivateKey, peerPublic [32]byte) ([32]byte, error) {
	var out [32]byte
	pub, err := ecdh.X25519().NewPublicKey(peerPublic[:])
	if err != nil {
		return out, fmt.Errorf("%w: discovery peer public key: %v", mithraserr.ErrCurvePoint, err)
	}
	shared, err := private.ECDH(pub)
	if err != nil {
		return out, fmt.Errorf("%w: x25519 ecdh: %v", mithraserr.ErrCurvePoint, err)
	}
	copy(out[:], shared)
	return out, nil
}

// Tag computes the discovery tag over a shared secret and the per-note
// metadata it binds to:
//
//	key = HKDF-SHA256-Expand(salt=∅, ikm=s, info="discovery-tag", L=32)
//	tag = HMAC-SHA256(key, sender ‖ LE64(first_valid) ‖ LE64(last_valid) ‖ lease)
func Tag(s [32]byte, sender [32]byte, firstValid, lastValid uint64, lease [32]byte) ([32]byte, error) {
	var out [32]byte

	kdf := hkdf.New(sha256.New, s[:], nil, []byte(hkdfInfo))
	key := make([]byte, 32)
	if _, err := kdf.Read(key); err != nil {
		return out, fmt.Errorf("%w: discovery tag key derivation: %v", mithraserr.ErrDataConversion, err)
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(sender[:])

	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], firstValid)
	mac.Write(le[:])
	binary.LittleEndian.PutUint64(le[:], lastValid)
	mac.Write(le[:])
	mac.Write(lease[:])

	copy(out[:], mac.Sum(nil))
	return out, nil
}

// Check recomputes the tag over the given shared secret and metadata and
// compares it in constant time against the envelope's discovery tag. It
// returns mithraserr.ErrNotMine on mismatch rather than a value-only bool so
// callers short-circuit on the usual error path.
func Check(s [32]byte, sender [32]byte, firstValid, lastValid uint64, lease [32]byte, wantTag [32]byte) error {
	got, err := Tag(s, sender, firstValid, lastValid, lease)
	if err != nil {
		return err
	}
	if hmac.Equal(got[:], wantTag[:]) {
		return nil
	}
	return mithraserr.ErrNotMine
}
