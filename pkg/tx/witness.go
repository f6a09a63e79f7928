package tx

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// VKeyWitness is a verification-key witness: [vkey, signature].
type VKeyWitness struct {
	_         struct{} `cbor:",toarray"`
	VKey      []byte
	Signature []byte
}

// WitnessSet holds the proofs authorizing a transaction. This module only
// produces vkey witnesses (from the wallet) and native scripts (from the
// builder's mint instruction).
type WitnessSet struct {
	VKeys         []VKeyWitness  `cbor:"0,keyasint,omitempty"`
	NativeScripts []NativeScript `cbor:"1,keyasint,omitempty"`
}

// DecodeWitnessSetHex decodes a hex-encoded witness set, the form a CIP-30
// wallet returns from a partial-sign call.
func DecodeWitnessSetHex(s string) (*WitnessSet, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid witness set hex: %w", err)
	}
	var ws WitnessSet
	if err := cbor.Unmarshal(raw, &ws); err != nil {
		return nil, fmt.Errorf("decode witness set: %w", err)
	}
	return &ws, nil
}

// Hex serializes the witness set to lowercase hex.
func (w *WitnessSet) Hex() (string, error) {
	raw, err := cborEnc.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("serialize witness set: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// MergeWalletWitnesses installs the wallet's vkey witnesses into the
// unsigned transaction's witness set and reassembles the full envelope.
// The merge is additive: the script witness generated by the builder is
// never dropped or replaced, and the wallet's signatures are appended to
// whatever vkey witnesses were already present.
func MergeWalletWitnesses(unsigned *Transaction, walletWitnessHex string) (*Transaction, error) {
	if unsigned == nil {
		return nil, fmt.Errorf("nil transaction")
	}
	walletSet, err := DecodeWitnessSetHex(walletWitnessHex)
	if err != nil {
		return nil, fmt.Errorf("wallet witness: %w", err)
	}
	if len(walletSet.VKeys) == 0 {
		return nil, fmt.Errorf("wallet witness set contains no signatures")
	}

	merged := Transaction{
		Body:          unsigned.Body,
		Witnesses:     unsigned.Witnesses,
		IsValid:       true,
		AuxiliaryData: unsigned.AuxiliaryData,
	}
	merged.Witnesses.VKeys = append(append([]VKeyWitness(nil), unsigned.Witnesses.VKeys...), walletSet.VKeys...)
	return &merged, nil
}
