// Package tx implements the Cardano transaction envelope: CBOR wire types,
// the minting transaction builder, fee computation and witness handling.
package tx

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/educred-ke/educred-chain/pkg/crypto"
	"github.com/educred-ke/educred-chain/pkg/types"
)

// cborEnc is the deterministic encoding mode used for every wire structure.
// Canonical map ordering keeps hashes stable across rebuilds of the same
// transaction.
var cborEnc cbor.EncMode

func init() {
	em, err := cbor.EncOptions{Sort: cbor.SortCoreDeterministic}.EncMode()
	if err != nil {
		panic(err)
	}
	cborEnc = em
}

// Input references a UTXO being spent: [transaction id, output index].
type Input struct {
	_     struct{} `cbor:",toarray"`
	TxID  []byte
	Index uint32
}

// Output pays a value to an address: [address bytes, value].
type Output struct {
	_       struct{} `cbor:",toarray"`
	Address []byte
	Value   Value
}

// Body is the transaction body (CBOR map with integer keys).
type Body struct {
	Inputs      []Input    `cbor:"0,keyasint"`
	Outputs     []Output   `cbor:"1,keyasint"`
	Fee         uint64     `cbor:"2,keyasint"`
	TTL         uint64     `cbor:"3,keyasint,omitempty"`
	AuxDataHash []byte     `cbor:"7,keyasint,omitempty"`
	Mint        MintAssets `cbor:"9,keyasint,omitempty"`
}

// Transaction is the full envelope: [body, witness set, is_valid, aux data].
type Transaction struct {
	_             struct{} `cbor:",toarray"`
	Body          Body
	Witnesses     WitnessSet
	IsValid       bool
	AuxiliaryData AuxiliaryData
}

// ID computes the transaction hash: BLAKE2b-256 over the serialized body.
func (t *Transaction) ID() (types.Hash, error) {
	raw, err := cborEnc.Marshal(t.Body)
	if err != nil {
		return types.Hash{}, fmt.Errorf("serialize body: %w", err)
	}
	return crypto.Hash256(raw), nil
}

// Bytes serializes the transaction to its CBOR wire form.
func (t *Transaction) Bytes() ([]byte, error) {
	raw, err := cborEnc.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("serialize transaction: %w", err)
	}
	return raw, nil
}

// Hex serializes the transaction to lowercase hex (the CIP-30 wire form).
func (t *Transaction) Hex() (string, error) {
	raw, err := t.Bytes()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// FromHex decodes a hex-encoded transaction.
func FromHex(s string) (*Transaction, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction hex: %w", err)
	}
	var t Transaction
	if err := cbor.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return &t, nil
}
