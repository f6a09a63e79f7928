package tx

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/educred-ke/educred-chain/pkg/crypto"
	"github.com/educred-ke/educred-chain/pkg/types"
)

// Native script variants. Only the single-signature form is constructed by
// this module; the others are recognized when decoding wallet data.
const (
	ScriptSig      uint8 = 0
	ScriptAll      uint8 = 1
	ScriptAny      uint8 = 2
	ScriptNOfK     uint8 = 3
	ScriptInvalBef uint8 = 4
	ScriptInvalAft uint8 = 5
)

// nativeScriptHashPrefix tags the serialized script before hashing so native
// and Plutus script hashes can never collide.
const nativeScriptHashPrefix = 0x00

// NativeScript is a minting policy rule. The single-signature variant
// requires the named key to witness the transaction; its hash is the
// permanent policy ID.
type NativeScript struct {
	Type    uint8
	KeyHash types.KeyHash
}

// NewSigScript builds a single-signature native script for the given
// payment key hash.
func NewSigScript(keyHash types.KeyHash) NativeScript {
	return NativeScript{Type: ScriptSig, KeyHash: keyHash}
}

// MarshalCBOR encodes the script as [type, keyhash].
func (s NativeScript) MarshalCBOR() ([]byte, error) {
	if s.Type != ScriptSig {
		return nil, fmt.Errorf("unsupported native script type %d", s.Type)
	}
	return cborEnc.Marshal([]interface{}{uint64(s.Type), s.KeyHash[:]})
}

// UnmarshalCBOR decodes a [type, keyhash] script.
func (s *NativeScript) UnmarshalCBOR(data []byte) error {
	var parts []cbor.RawMessage
	if err := cbor.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("decode native script: %w", err)
	}
	if len(parts) < 2 {
		return fmt.Errorf("native script has %d elements, want 2", len(parts))
	}
	var typ uint8
	if err := cbor.Unmarshal(parts[0], &typ); err != nil {
		return fmt.Errorf("decode script type: %w", err)
	}
	if typ != ScriptSig {
		return fmt.Errorf("unsupported native script type %d", typ)
	}
	var kh []byte
	if err := cbor.Unmarshal(parts[1], &kh); err != nil {
		return fmt.Errorf("decode script key hash: %w", err)
	}
	if len(kh) != types.KeyHashSize {
		return fmt.Errorf("script key hash must be %d bytes, got %d", types.KeyHashSize, len(kh))
	}
	s.Type = typ
	copy(s.KeyHash[:], kh)
	return nil
}

// Hash computes the policy ID: BLAKE2b-224 over the tagged serialized script.
func (s NativeScript) Hash() (types.PolicyID, error) {
	raw, err := s.MarshalCBOR()
	if err != nil {
		return types.PolicyID{}, err
	}
	buf := make([]byte, 0, len(raw)+1)
	buf = append(buf, nativeScriptHashPrefix)
	buf = append(buf, raw...)
	return crypto.Hash224(buf), nil
}
