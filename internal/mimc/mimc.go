// Package mimc wraps the external circuit-field hash referenced by the
// protocol's commitment and nullifier construction. The hash itself is not
// part of the core design (it is consumed as an external primitive with a
// stated contract: deterministic, collision-resistant, canonical
// field-element inputs) — this package only supplies a concrete, real
// implementation of that contract using the scalar field MiMC permutation
// from gnark-crypto's bn254 curve, the same library and hash.Hash-style
// Write/Sum usage seen elsewhere in the retrieved pack's zero-knowledge
// note systems.
package mimc

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// Sum hashes the concatenation of xs, each reduced into the bn254 scalar
// field via fr.Element.SetBytes before being written. gnark-crypto's mimc
// digest rejects any 32-byte block that is not already a canonical field
// element rather than reducing it, so every input is reduced at this
// boundary instead of being trusted to arrive pre-reduced. This realizes
// mimc_sum from §6: deterministic, collision-resistant under the field's
// MiMC permutation.
func Sum(xs ...[]byte) [32]byte {
	h := mimc.NewMiMC()
	for _, x := range xs {
		var e fr.Element
		e.SetBytes(x)
		b := e.Bytes()
		if _, err := h.Write(b[:]); err != nil {
			panic("mimc: write of canonical field element rejected: " + err.Error())
		}
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Commitment computes commitment = MiMC(spending_secret, nullifier_secret,
// amount_be32, tweaked_pubkey), with amount widened to 32 bytes big-endian,
// right-aligned, before hashing.
func Commitment(spendingSecret, nullifierSecret [32]byte, amountBE32 [32]byte, tweakedPubkey [32]byte) [32]byte {
	return Sum(spendingSecret[:], nullifierSecret[:], amountBE32[:], tweakedPubkey[:])
}

// Nullifier computes nullifier = MiMC(commitment, nullifier_secret).
func Nullifier(commitment, nullifierSecret [32]byte) [32]byte {
	return Sum(commitment[:], nullifierSecret[:])
}
