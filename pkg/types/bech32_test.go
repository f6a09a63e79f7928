package types

import (
	"bytes"
	"testing"
)

func TestBech32_Roundtrip(t *testing.T) {
	data := []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77}
	s, err := Bech32Encode("addr_test", data)
	if err != nil {
		t.Fatalf("Bech32Encode: %v", err)
	}

	hrp, decoded, err := Bech32Decode(s)
	if err != nil {
		t.Fatalf("Bech32Decode(%q): %v", s, err)
	}
	if hrp != "addr_test" {
		t.Errorf("hrp = %q, want addr_test", hrp)
	}
	if !bytes.Equal(decoded, data) {
		t.Errorf("roundtrip mismatch: %x vs %x", decoded, data)
	}
}

func TestBech32_ChecksumDetectsCorruption(t *testing.T) {
	s, err := Bech32Encode("addr", []byte{0xab, 0xcd, 0xef})
	if err != nil {
		t.Fatalf("Bech32Encode: %v", err)
	}

	// Flip one data character.
	b := []byte(s)
	last := len(b) - 1
	if b[last] == 'q' {
		b[last] = 'p'
	} else {
		b[last] = 'q'
	}
	if _, _, err := Bech32Decode(string(b)); err == nil {
		t.Error("corrupted string should fail checksum")
	}
}

func TestBech32_MixedCaseRejected(t *testing.T) {
	s, err := Bech32Encode("addr", []byte{0x01, 0x02})
	if err != nil {
		t.Fatalf("Bech32Encode: %v", err)
	}
	mixed := "A" + s[1:]
	if _, _, err := Bech32Decode(mixed); err == nil {
		t.Error("mixed-case string should be rejected")
	}
}

func TestBech32_NoSeparator(t *testing.T) {
	if _, _, err := Bech32Decode("noseparator"); err == nil {
		t.Error("string without separator should be rejected")
	}
}
