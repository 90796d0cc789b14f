package ledger

import (
	"encoding/hex"
	"fmt"
)

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

func decodeHex32(s string, out *[32]byte) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(b) != 32 {
		return fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return nil
}
