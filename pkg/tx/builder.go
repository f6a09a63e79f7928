package tx

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/educred-ke/educred-chain/pkg/types"
)

// Builder errors.
var (
	ErrNoUTXOs           = errors.New("no UTXOs available")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoChangeAddress   = errors.New("no change address set")
	ErrTxTooLarge        = errors.New("transaction exceeds max size")
	ErrValueTooLarge     = errors.New("output value exceeds max size")
)

// BuilderConfig carries the protocol fee/size parameters the builder needs.
// Populate it from a live protocol-parameter lookup or a fallback set.
type BuilderConfig struct {
	LinearFee        LinearFee
	CoinsPerUTXOByte uint64
	KeyDeposit       uint64
	PoolDeposit      uint64
	MaxTxSize        int
	MaxValueSize     int
}

// Builder assembles a fee-correct transaction from explicit outputs, a mint
// instruction and wallet-supplied UTXOs. The zero value is not usable; use
// NewBuilder.
//
// The builder owns the unsigned envelope until Build hands it over; it is
// not safe for concurrent use.
type Builder struct {
	cfg        BuilderConfig
	outputs    []Output
	mint       MintAssets
	scripts    []NativeScript
	auxData    AuxiliaryData
	candidates []UTXO
	changeAddr []byte
}

// NewBuilder creates a builder configured with the given protocol parameters.
func NewBuilder(cfg BuilderConfig) *Builder {
	return &Builder{cfg: cfg, mint: make(MintAssets)}
}

// AddMintAsset registers a mint of qty units of the named asset under the
// given native script. The script is attached as a witness automatically;
// it needs no external signature beyond the key it names.
func (b *Builder) AddMintAsset(script NativeScript, name types.AssetName, qty int64) error {
	policy, err := script.Hash()
	if err != nil {
		return fmt.Errorf("hash mint script: %w", err)
	}
	pk := cbor.ByteString(policy[:])
	inner, ok := b.mint[pk]
	if !ok {
		inner = make(map[cbor.ByteString]int64)
		b.mint[pk] = inner
	}
	inner[cbor.ByteString(name)] += qty
	b.scripts = append(b.scripts, script)
	return nil
}

// SetAuxiliaryData attaches transaction metadata. The auxiliary-data hash is
// committed into the body at Build time.
func (b *Builder) SetAuxiliaryData(aux AuxiliaryData) {
	b.auxData = aux
}

// AddOutput appends an explicit output.
func (b *Builder) AddOutput(address []byte, value Value) {
	b.outputs = append(b.outputs, Output{Address: address, Value: value})
}

// AddInputCandidates supplies the UTXOs coin selection may draw from.
func (b *Builder) AddInputCandidates(utxos []UTXO) {
	b.candidates = append(b.candidates, utxos...)
}

// SetChangeAddress sets where leftover value is returned.
func (b *Builder) SetChangeAddress(address []byte) {
	b.changeAddr = append([]byte(nil), address...)
}

// Build selects inputs largest-first, converges the fee against the
// serialized size, adds a change output when leftover value remains, and
// returns the unsigned transaction carrying the script witnesses and
// auxiliary data. The fee/size/change loop reruns selection whenever the fee
// estimate grows, so the result is consistent by construction.
func (b *Builder) Build() (*Transaction, error) {
	if len(b.candidates) == 0 {
		return nil, ErrNoUTXOs
	}
	if len(b.outputs) == 0 {
		return nil, fmt.Errorf("no outputs")
	}
	if len(b.changeAddr) == 0 {
		return nil, ErrNoChangeAddress
	}

	for _, out := range b.outputs {
		if err := b.checkValueSize(out.Value); err != nil {
			return nil, err
		}
	}

	// Largest-first, multi-asset aware: order candidates by lovelace
	// descending so the fewest inputs cover the target; ties go to the
	// input carrying fewer foreign assets to keep change small.
	sorted := append([]UTXO(nil), b.candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Value.Coin != sorted[j].Value.Coin {
			return sorted[i].Value.Coin > sorted[j].Value.Coin
		}
		return len(sorted[i].Value.Assets) < len(sorted[j].Value.Assets)
	})

	var outCoin uint64
	outAssets := make(MultiAsset)
	for _, out := range b.outputs {
		outCoin += out.Value.Coin
		if err := outAssets.Add(out.Value.Assets); err != nil {
			return nil, err
		}
	}
	minted, err := b.mint.AsMultiAsset()
	if err != nil {
		return nil, err
	}

	fee := b.cfg.LinearFee.Fee(0)
	var assetChangeFloor uint64 // min-UTXO floor forced by asset-carrying change

	for iter := 0; iter < 10; iter++ {
		need := outCoin + fee + assetChangeFloor

		selected, selectedCoin, selErr := selectLargestFirst(sorted, need)
		if selErr != nil {
			return nil, selErr
		}

		inAssets := make(MultiAsset)
		for _, u := range selected {
			if err := inAssets.Add(u.Value.Assets); err != nil {
				return nil, err
			}
		}
		changeAssets := inAssets.Clone()
		if changeAssets == nil {
			changeAssets = make(MultiAsset)
		}
		if err := changeAssets.Add(minted); err != nil {
			return nil, err
		}
		if err := changeAssets.Sub(outAssets); err != nil {
			return nil, fmt.Errorf("outputs exceed inputs plus mint: %w", err)
		}

		changeCoin := selectedCoin - outCoin - fee
		hasChange := changeCoin > 0 || !changeAssets.IsEmpty()

		draft, err := b.assemble(selected, fee, changeCoin, changeAssets, hasChange)
		if err != nil {
			return nil, err
		}
		raw, err := draft.Bytes()
		if err != nil {
			return nil, err
		}
		size := len(raw) + estVKeyWitnessSize*countDistinctAddresses(selected)
		if size > b.cfg.MaxTxSize {
			return nil, fmt.Errorf("%w: %d > %d bytes", ErrTxTooLarge, size, b.cfg.MaxTxSize)
		}

		required := b.cfg.LinearFee.Fee(size)
		if required > fee {
			fee = required
			continue
		}

		if hasChange {
			changeOut := draft.Body.Outputs[len(draft.Body.Outputs)-1]
			minv, err := MinUTXOValue(changeOut, b.cfg.CoinsPerUTXOByte)
			if err != nil {
				return nil, err
			}
			if changeCoin < minv {
				if changeAssets.IsEmpty() {
					// Sub-minimum pure-lovelace change is folded into the fee
					// rather than producing an unspendable output.
					return b.assemble(selected, fee+changeCoin, 0, nil, false)
				}
				// Asset-carrying change cannot be dropped; force selection
				// of enough extra lovelace to meet its floor.
				assetChangeFloor = minv
				continue
			}
		}

		return draft, nil
	}

	return nil, fmt.Errorf("fee computation did not converge")
}

// assemble constructs the unsigned transaction for a given selection and fee.
func (b *Builder) assemble(selected []UTXO, fee, changeCoin uint64, changeAssets MultiAsset, hasChange bool) (*Transaction, error) {
	inputs := make([]Input, len(selected))
	for i, u := range selected {
		inputs[i] = u.Input
	}

	outputs := append([]Output(nil), b.outputs...)
	if hasChange {
		cv := Value{Coin: changeCoin}
		if !changeAssets.IsEmpty() {
			cv.Assets = changeAssets
		}
		if err := b.checkValueSize(cv); err != nil {
			return nil, err
		}
		outputs = append(outputs, Output{Address: b.changeAddr, Value: cv})
	}

	body := Body{
		Inputs:  inputs,
		Outputs: outputs,
		Fee:     fee,
	}
	if len(b.mint) > 0 {
		body.Mint = b.mint
	}
	if b.auxData != nil {
		h, err := b.auxData.Hash()
		if err != nil {
			return nil, err
		}
		body.AuxDataHash = h.Bytes()
	}

	return &Transaction{
		Body:          body,
		Witnesses:     WitnessSet{NativeScripts: append([]NativeScript(nil), b.scripts...)},
		IsValid:       true,
		AuxiliaryData: b.auxData,
	}, nil
}

// checkValueSize enforces the protocol's max serialized value size.
func (b *Builder) checkValueSize(v Value) error {
	if b.cfg.MaxValueSize <= 0 {
		return nil
	}
	raw, err := cborEnc.Marshal(v)
	if err != nil {
		return err
	}
	if len(raw) > b.cfg.MaxValueSize {
		return fmt.Errorf("%w: %d > %d bytes", ErrValueTooLarge, len(raw), b.cfg.MaxValueSize)
	}
	return nil
}

// selectLargestFirst accumulates pre-sorted candidates until target lovelace
// is covered.
func selectLargestFirst(sorted []UTXO, target uint64) ([]UTXO, uint64, error) {
	var selected []UTXO
	var total uint64
	for _, u := range sorted {
		selected = append(selected, u)
		total += u.Value.Coin
		if total >= target {
			return selected, total, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: have %d lovelace, need %d", ErrInsufficientFunds, total, target)
}

// countDistinctAddresses counts the unique input addresses; the wallet
// contributes roughly one vkey witness per distinct address it signs for.
func countDistinctAddresses(utxos []UTXO) int {
	seen := make(map[string]struct{}, len(utxos))
	for _, u := range utxos {
		seen[hex.EncodeToString(u.Address)] = struct{}{}
	}
	if len(seen) == 0 {
		return 1
	}
	return len(seen)
}
