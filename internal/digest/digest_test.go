package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func TestBytes_KnownDigest(t *testing.T) {
	got, err := Bytes(strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got != want {
		t.Errorf("Bytes(hello) = %s, want %s", got, want)
	}
}

func TestBytes_EmptyInput(t *testing.T) {
	got, err := Bytes(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	// SHA-256 of zero bytes is well defined; an empty file is a valid
	// document even if an empty text extraction is not.
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Errorf("Bytes(empty) = %s, want %s", got, want)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "Hello World", "hello world"},
		{"collapse whitespace", "a\t\n  b", "a b"},
		{"strip punctuation", "grade: A+ (first class)!", "grade a first class"},
		{"trim ends", "  padded  ", "padded"},
		{"punctuation between words keeps collapsed spacing", "a - b", "a  b"},
		{"digits survive", "Reg No 12345", "reg no 12345"},
		{"only punctuation", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestText_Deterministic(t *testing.T) {
	a, err := Text("Transcript  of   Records\n2024")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	b, err := Text("transcript of records 2024")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if a != b {
		t.Errorf("normalization-equal inputs hashed differently: %s vs %s", a, b)
	}

	sum := sha256.Sum256([]byte("transcript of records 2024"))
	if want := hex.EncodeToString(sum[:]); a != want {
		t.Errorf("Text = %s, want %s", a, want)
	}
}

func TestText_EmptyContent(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n", "!?!."} {
		if _, err := Text(in); !errors.Is(err, ErrEmptyContent) {
			t.Errorf("Text(%q) error = %v, want ErrEmptyContent", in, err)
		}
	}
}

func TestValidHex(t *testing.T) {
	valid := strings.Repeat("ab", 32)
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"valid", valid, true},
		{"too short", valid[:62], false},
		{"too long", valid + "ff", false},
		{"uppercase rejected", strings.ToUpper(valid), false},
		{"non-hex char", valid[:63] + "g", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidHex(tt.in); got != tt.want {
				t.Errorf("ValidHex(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
