package tx

import (
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"

	"github.com/educred-ke/educred-chain/pkg/types"
)

// MultiAsset maps policy ID bytes to asset name bytes to quantity.
// cbor.ByteString keys give us CBOR byte-string map keys, which Go's native
// []byte cannot provide.
type MultiAsset map[cbor.ByteString]map[cbor.ByteString]uint64

// MintAssets is the mint field shape: quantities are signed (negative burns).
type MintAssets map[cbor.ByteString]map[cbor.ByteString]int64

// Value is a transaction output value: lovelace, optionally with a
// multi-asset bundle. On the wire it is either a plain unsigned integer or
// the pair [coin, multiasset].
type Value struct {
	Coin   uint64
	Assets MultiAsset
}

// valueWithAssets is the two-element wire form.
type valueWithAssets struct {
	_      struct{} `cbor:",toarray"`
	Coin   uint64
	Assets MultiAsset
}

// MarshalCBOR encodes the compact form when no assets are present.
func (v Value) MarshalCBOR() ([]byte, error) {
	if len(v.Assets) == 0 {
		return cborEnc.Marshal(v.Coin)
	}
	return cborEnc.Marshal(valueWithAssets{Coin: v.Coin, Assets: v.Assets})
}

// UnmarshalCBOR accepts both wire forms.
func (v *Value) UnmarshalCBOR(data []byte) error {
	var coin uint64
	if err := cbor.Unmarshal(data, &coin); err == nil {
		v.Coin = coin
		v.Assets = nil
		return nil
	}
	var pair valueWithAssets
	if err := cbor.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	v.Coin = pair.Coin
	v.Assets = pair.Assets
	return nil
}

// Set records a quantity for (policy, name), replacing any previous entry.
func (m MultiAsset) Set(policy types.PolicyID, name types.AssetName, qty uint64) {
	pk := cbor.ByteString(policy[:])
	inner, ok := m[pk]
	if !ok {
		inner = make(map[cbor.ByteString]uint64)
		m[pk] = inner
	}
	inner[cbor.ByteString(name)] = qty
}

// Add accumulates another bundle into this one.
func (m MultiAsset) Add(other MultiAsset) error {
	for pk, inner := range other {
		dst, ok := m[pk]
		if !ok {
			dst = make(map[cbor.ByteString]uint64, len(inner))
			m[pk] = dst
		}
		for nk, qty := range inner {
			if dst[nk] > math.MaxUint64-qty {
				return fmt.Errorf("asset quantity overflow for policy %x", string(pk))
			}
			dst[nk] += qty
		}
	}
	return nil
}

// Sub removes another bundle from this one, deleting exhausted entries.
// Fails if other holds more of any asset than m does.
func (m MultiAsset) Sub(other MultiAsset) error {
	for pk, inner := range other {
		dst, ok := m[pk]
		if !ok {
			return fmt.Errorf("missing policy %x in minuend", string(pk))
		}
		for nk, qty := range inner {
			have := dst[nk]
			if have < qty {
				return fmt.Errorf("asset underflow for policy %x: have %d, need %d", string(pk), have, qty)
			}
			if have == qty {
				delete(dst, nk)
			} else {
				dst[nk] = have - qty
			}
		}
		if len(dst) == 0 {
			delete(m, pk)
		}
	}
	return nil
}

// Clone deep-copies the bundle.
func (m MultiAsset) Clone() MultiAsset {
	if m == nil {
		return nil
	}
	out := make(MultiAsset, len(m))
	for pk, inner := range m {
		c := make(map[cbor.ByteString]uint64, len(inner))
		for nk, qty := range inner {
			c[nk] = qty
		}
		out[pk] = c
	}
	return out
}

// IsEmpty reports whether the bundle holds no assets at all.
func (m MultiAsset) IsEmpty() bool {
	for _, inner := range m {
		if len(inner) > 0 {
			return false
		}
	}
	return true
}

// AsMultiAsset converts mint quantities to an unsigned bundle. Negative
// (burn) quantities are rejected: this module never burns.
func (m MintAssets) AsMultiAsset() (MultiAsset, error) {
	out := make(MultiAsset, len(m))
	for pk, inner := range m {
		dst := make(map[cbor.ByteString]uint64, len(inner))
		for nk, qty := range inner {
			if qty < 0 {
				return nil, fmt.Errorf("negative mint quantity %d for policy %x", qty, string(pk))
			}
			dst[nk] = uint64(qty)
		}
		out[pk] = dst
	}
	return out, nil
}
