package chainquery

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/educred-ke/educred-chain/internal/log"
	"github.com/educred-ke/educred-chain/pkg/tx"
)

// flexUint decodes a JSON number or numeric string. The parameter endpoint
// mixes both representations across fields and service versions.
type flexUint uint64

func (f *flexUint) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid numeric string %q: %w", s, err)
		}
		*f = flexUint(v)
		return nil
	}
	var n uint64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid number: %w", err)
	}
	*f = flexUint(n)
	return nil
}

// ProtocolParams is the subset of epoch parameters the builder consumes.
type ProtocolParams struct {
	MinFeeA          flexUint `json:"min_fee_a"`
	MinFeeB          flexUint `json:"min_fee_b"`
	PoolDeposit      flexUint `json:"pool_deposit"`
	KeyDeposit       flexUint `json:"key_deposit"`
	CoinsPerUTXOSize flexUint `json:"coins_per_utxo_size"`
	CoinsPerUTXOWord flexUint `json:"coins_per_utxo_word"`
	MaxTxSize        flexUint `json:"max_tx_size"`
	MaxValSize       flexUint `json:"max_val_size"`
}

// FallbackParams returns the hardcoded preprod parameter set used when the
// service is unreachable or unconfigured. These change rarely and err on
// the conservative side, so a degraded indexer does not block minting.
func FallbackParams() *ProtocolParams {
	return &ProtocolParams{
		MinFeeA:          44,
		MinFeeB:          155381,
		PoolDeposit:      500000000,
		KeyDeposit:       2000000,
		CoinsPerUTXOSize: 4310,
		MaxTxSize:        16384,
		MaxValSize:       5000,
	}
}

// BuilderConfig converts the parameters into the builder's configuration.
func (p *ProtocolParams) BuilderConfig() tx.BuilderConfig {
	coinsPerByte := uint64(p.CoinsPerUTXOSize)
	if coinsPerByte == 0 {
		// Older services report the per-word cost instead.
		coinsPerByte = uint64(p.CoinsPerUTXOWord)
	}
	if coinsPerByte == 0 {
		coinsPerByte = uint64(FallbackParams().CoinsPerUTXOSize)
	}
	maxTx := int(p.MaxTxSize)
	if maxTx == 0 {
		maxTx = int(FallbackParams().MaxTxSize)
	}
	maxVal := int(p.MaxValSize)
	if maxVal == 0 {
		maxVal = int(FallbackParams().MaxValSize)
	}
	return tx.BuilderConfig{
		LinearFee: tx.LinearFee{
			CoeffA: uint64(p.MinFeeA),
			ConstB: uint64(p.MinFeeB),
		},
		CoinsPerUTXOByte: coinsPerByte,
		KeyDeposit:       uint64(p.KeyDeposit),
		PoolDeposit:      uint64(p.PoolDeposit),
		MaxTxSize:        maxTx,
		MaxValueSize:     maxVal,
	}
}

// ProtocolParams fetches the current epoch's parameters.
func (c *Client) ProtocolParams(ctx context.Context) (*ProtocolParams, error) {
	var p ProtocolParams
	found, err := c.get(ctx, "/epochs/latest/parameters", &p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("protocol parameters not found")
	}
	return &p, nil
}

// ParamsOrFallback fetches live parameters, degrading to the hardcoded set
// when the service is unconfigured or unreachable. Minting stays functional
// when the indexer is down, at the cost of possibly stale fee estimates.
func (c *Client) ParamsOrFallback(ctx context.Context) *ProtocolParams {
	p, err := c.ProtocolParams(ctx)
	if err != nil {
		log.Query.Warn().Err(err).Msg("protocol parameter fetch failed, using fallback set")
		return FallbackParams()
	}
	return p
}
