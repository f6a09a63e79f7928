// Package crypto provides the hash primitives used by Cardano wire
// structures: BLAKE2b-224 for credentials and policy IDs, BLAKE2b-256 for
// transaction and auxiliary-data hashes.
package crypto

import (
	"golang.org/x/crypto/blake2b"

	"github.com/educred-ke/educred-chain/pkg/types"
)

// Hash224 computes a BLAKE2b-224 digest.
func Hash224(data []byte) types.KeyHash {
	h, _ := blake2b.New(types.KeyHashSize, nil)
	h.Write(data)
	var out types.KeyHash
	copy(out[:], h.Sum(nil))
	return out
}

// Hash256 computes a BLAKE2b-256 digest.
func Hash256(data []byte) types.Hash {
	return blake2b.Sum256(data)
}

// KeyHash derives a credential hash from an Ed25519 verification key.
func KeyHash(verificationKey []byte) types.KeyHash {
	return Hash224(verificationKey)
}
