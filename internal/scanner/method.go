package scanner

import mhpke "github.com/mithras-protocol/mithras/internal/hpke"

// ABI signature strings the two supported application-call methods hash to
// their selectors with SHA-512/256.
const (
	depositABISignature = "deposit(uint256[],(byte[96],byte[96],byte[96],byte[96],byte[96],byte[96],byte[96],byte[96],byte[96],uint256,uint256,uint256,uint256,uint256,uint256),byte[250],pay,txn)void"
	spendABISignature   = "spend(uint256[],(byte[96],byte[96],byte[96],byte[96],byte[96],byte[96],byte[96],byte[96],byte[96],uint256,uint256,uint256,uint256,uint256,uint256),byte[250],byte[250],txn)void"
)

var (
	depositSelector = mhpke.MethodSelector(depositABISignature)
	spendSelector   = mhpke.MethodSelector(spendABISignature)
)

// Method identifies which application call an event carries.
type Method uint8

const (
	MethodUnknown Method = iota
	MethodDeposit
	MethodSpend
)

// Classified is a decoded application-call argument set.
type Classified struct {
	Method      Method
	Commitment0 [32]byte
	Commitment1 [32]byte // Spend only
	Nullifier   [32]byte // Spend only
	Envelopes   [][]byte // raw wire-width envelope blobs, in argument order
}

// Classify inspects an application call's arguments and returns the decoded
// method, or ok=false for anything unrecognized (selector mismatch or
// argument-count mismatch), in which case the whole event must be skipped.
//
// Deposit requires 4 arguments (selector, commitments, proof, envelope).
// Spend requires 5: the fifth argument is a second envelope the original
// draft's len==4 check never accounted for — see DESIGN.md for the
// resolution of this spec open question.
func Classify(args [][]byte) (Classified, bool) {
	if len(args) < 1 || len(args[0]) != 32 {
		return Classified{}, false
	}

	var selector [32]byte
	copy(selector[:], args[0])

	switch {
	case selector == depositSelector && len(args) == 4:
		if len(args[1]) < 32 {
			return Classified{}, false
		}
		var commitment [32]byte
		copy(commitment[:], args[1][0:32])
		return Classified{
			Method:      MethodDeposit,
			Commitment0: commitment,
			Envelopes:   [][]byte{args[3]},
		}, true

	case selector == spendSelector && len(args) == 5:
		if len(args[1]) < 128 {
			return Classified{}, false
		}
		var c0, c1, nullifier [32]byte
		copy(c0[:], args[1][0:32])
		copy(c1[:], args[1][32:64])
		copy(nullifier[:], args[1][96:128])
		return Classified{
			Method:      MethodSpend,
			Commitment0: c0,
			Commitment1: c1,
			Nullifier:   nullifier,
			Envelopes:   [][]byte{args[3], args[4]},
		}, true

	default:
		return Classified{}, false
	}
}
