// Package types defines the primitive Cardano wire types shared across the
// module: hashes, key hashes, addresses and asset identifiers.
package types

import (
	"encoding/hex"
	"fmt"
)

// HashSize is the length of a transaction/aux-data hash in bytes (BLAKE2b-256).
const HashSize = 32

// KeyHashSize is the length of a credential key hash in bytes (BLAKE2b-224).
// Script hashes (policy IDs) have the same length.
const KeyHashSize = 28

// Hash is a 256-bit hash (transaction ID, auxiliary-data hash).
type Hash [HashSize]byte

// String returns the lowercase hex encoding.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// IsZero returns true if the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// HexToHash parses a 64-character hex string into a Hash.
func HexToHash(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != HashSize {
		return Hash{}, fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(b))
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

// KeyHash is a 224-bit credential hash: the BLAKE2b-224 digest of an
// Ed25519 verification key (payment/stake credential) or of a serialized
// native script (policy ID).
type KeyHash [KeyHashSize]byte

// String returns the lowercase hex encoding.
func (k KeyHash) String() string {
	return hex.EncodeToString(k[:])
}

// Bytes returns a copy of the key hash as a byte slice.
func (k KeyHash) Bytes() []byte {
	b := make([]byte, KeyHashSize)
	copy(b, k[:])
	return b
}

// IsZero returns true if the key hash is all zeros.
func (k KeyHash) IsZero() bool {
	return k == KeyHash{}
}

// HexToKeyHash parses a 56-character hex string into a KeyHash.
func HexToKeyHash(s string) (KeyHash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return KeyHash{}, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != KeyHashSize {
		return KeyHash{}, fmt.Errorf("key hash must be %d bytes, got %d", KeyHashSize, len(b))
	}
	var k KeyHash
	copy(k[:], b)
	return k, nil
}
