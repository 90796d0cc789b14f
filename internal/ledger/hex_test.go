package ledger

import "testing"

func TestDecodeHex32RoundTrip(t *testing.T) {
	var want [32]byte
	for i := range want {
		want[i] = byte(i)
	}
	s := "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

	var got [32]byte
	if err := decodeHex32(s, &got); err != nil {
		t.Fatalf("decodeHex32: %v", err)
	}
	if got != want {
		t.Fatalf("decodeHex32 = %x, want %x", got, want)
	}
}

func TestDecodeHex32RejectsWrongLength(t *testing.T) {
	var out [32]byte
	if err := decodeHex32("abcd", &out); err == nil {
		t.Fatalf("decodeHex32 accepted a short string")
	}
}

func TestDecodeHex32RejectsNonHex(t *testing.T) {
	var out [32]byte
	if err := decodeHex32("not hex at all, not even close!!", &out); err == nil {
		t.Fatalf("decodeHex32 accepted non-hex input")
	}
}

func TestWireTransactionDecode(t *testing.T) {
	w := wireTransaction{
		Sender:           "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
		FirstValid:       10,
		LastValid:        20,
		Lease:            "202122232425262728292a2b2c2d2e2f303132333435363738393a3b3c3d3e3f",
		GenesisHash:      "404142434445464748494a4b4c4d4e4f505152535455565758595a5b5c5d5e5f",
		AppID:            7,
		AppArgs:          []string{"deadbeef", ""},
		ConfirmedRound:   100,
		IntraRoundOffset: 1,
	}

	txn, err := w.transaction()
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if txn.Sender[0] != 0x00 || txn.Sender[31] != 0x1f {
		t.Fatalf("sender did not decode correctly: %x", txn.Sender)
	}
	if txn.AppID != 7 || txn.ConfirmedRound != 100 {
		t.Fatalf("scalar fields did not decode correctly: %+v", txn)
	}
	if len(txn.AppArgs) != 2 || len(txn.AppArgs[0]) != 4 {
		t.Fatalf("app args did not decode correctly: %+v", txn.AppArgs)
	}
}
