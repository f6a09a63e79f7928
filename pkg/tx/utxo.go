package tx

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// UTXO is an unspent output as reported by a wallet: the outpoint being
// spent plus the output it created.
type UTXO struct {
	Input   Input
	Address []byte
	Value   Value
}

// utxoWire is the CIP-30 wire shape: [[txid, index], output].
type utxoWire struct {
	_      struct{} `cbor:",toarray"`
	Input  Input
	Output cbor.RawMessage
}

// outputArray is the legacy (pre-Babbage) output form: [address, value].
type outputArray struct {
	_       struct{} `cbor:",toarray"`
	Address []byte
	Value   Value
}

// outputMap is the Babbage output form: {0: address, 1: value, ...}.
// Datum and script-ref fields are ignored; wallets never hand us script
// outputs as spendable UTXOs for simple payments.
type outputMap struct {
	Address []byte `cbor:"0,keyasint"`
	Value   Value  `cbor:"1,keyasint"`
}

// ParseUTXOHex decodes one hex-encoded UTXO from a wallet's UTXO listing.
// Both the legacy array-form and the Babbage map-form outputs are accepted,
// since deployed wallets emit either.
func ParseUTXOHex(s string) (*UTXO, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid UTXO hex: %w", err)
	}
	var wire utxoWire
	if err := cbor.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode UTXO: %w", err)
	}

	var arr outputArray
	if err := cbor.Unmarshal(wire.Output, &arr); err == nil && len(arr.Address) > 0 {
		return &UTXO{Input: wire.Input, Address: arr.Address, Value: arr.Value}, nil
	}
	var m outputMap
	if err := cbor.Unmarshal(wire.Output, &m); err != nil {
		return nil, fmt.Errorf("decode UTXO output: %w", err)
	}
	if len(m.Address) == 0 {
		return nil, fmt.Errorf("UTXO output has no address")
	}
	return &UTXO{Input: wire.Input, Address: m.Address, Value: m.Value}, nil
}

// EncodeHex serializes the UTXO back to the wallet wire form (array-form
// output). Used by wallet adapters and tests.
func (u *UTXO) EncodeHex() (string, error) {
	wire := struct {
		_      struct{} `cbor:",toarray"`
		Input  Input
		Output outputArray
	}{
		Input:  u.Input,
		Output: outputArray{Address: u.Address, Value: u.Value},
	}
	raw, err := cborEnc.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("serialize UTXO: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
