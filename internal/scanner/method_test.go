package scanner

import "testing"

func TestClassifyDeposit(t *testing.T) {
	var commitment [32]byte
	commitment[0] = 0xAB

	args := [][]byte{
		depositSelector[:],
		commitment[:],
		[]byte("proof"),
		[]byte("envelope-bytes"),
	}

	c, ok := Classify(args)
	if !ok {
		t.Fatalf("Classify rejected a well-formed deposit call")
	}
	if c.Method != MethodDeposit {
		t.Fatalf("Method = %v, want MethodDeposit", c.Method)
	}
	if c.Commitment0 != commitment {
		t.Fatalf("Commitment0 mismatch")
	}
	if len(c.Envelopes) != 1 {
		t.Fatalf("len(Envelopes) = %d, want 1", len(c.Envelopes))
	}
}

func TestClassifySpendRequiresFiveArgs(t *testing.T) {
	spendArgs := make([]byte, 128)
	spendArgs[0] = 0x01
	spendArgs[32] = 0x02
	spendArgs[96] = 0x03

	fourArgs := [][]byte{
		spendSelector[:],
		spendArgs,
		[]byte("proof"),
		[]byte("envelope0"),
	}
	if _, ok := Classify(fourArgs); ok {
		t.Fatalf("Classify accepted a 4-argument spend call (needs 5, per the envelope1 arg)")
	}

	fiveArgs := append(fourArgs, []byte("envelope1"))
	c, ok := Classify(fiveArgs)
	if !ok {
		t.Fatalf("Classify rejected a well-formed 5-argument spend call")
	}
	if c.Method != MethodSpend {
		t.Fatalf("Method = %v, want MethodSpend", c.Method)
	}
	if len(c.Envelopes) != 2 {
		t.Fatalf("len(Envelopes) = %d, want 2", len(c.Envelopes))
	}
}

func TestClassifyRejectsUnknownSelector(t *testing.T) {
	var junk [32]byte
	junk[0] = 0xFF
	args := [][]byte{junk[:], make([]byte, 128), []byte("proof"), []byte("e0"), []byte("e1")}
	if _, ok := Classify(args); ok {
		t.Fatalf("Classify accepted an unrecognized selector")
	}
}
