package tx

// LinearFee holds the protocol's linear fee coefficients:
// fee = CoeffA * size + ConstB.
type LinearFee struct {
	CoeffA uint64 // per-byte coefficient (min_fee_a)
	ConstB uint64 // constant term (min_fee_b)
}

// Fee computes the minimum fee for a transaction of the given serialized size.
func (f LinearFee) Fee(sizeBytes int) uint64 {
	return f.CoeffA*uint64(sizeBytes) + f.ConstB
}

// minUTXOOverhead is the constant byte overhead added to an output's
// serialized size when computing its minimum lovelace (Babbage rule).
const minUTXOOverhead = 160

// MinUTXOValue returns the minimum lovelace an output must carry given the
// per-byte UTXO cost. Outputs below this are rejected by the ledger.
func MinUTXOValue(out Output, coinsPerUTXOByte uint64) (uint64, error) {
	raw, err := cborEnc.Marshal(out)
	if err != nil {
		return 0, err
	}
	return coinsPerUTXOByte * uint64(minUTXOOverhead+len(raw)), nil
}

// estVKeyWitnessSize is the serialized size allowance per expected vkey
// witness: 32-byte key + 64-byte signature + CBOR framing.
const estVKeyWitnessSize = 102
