package tx

import (
	"fmt"

	"github.com/educred-ke/educred-chain/pkg/crypto"
	"github.com/educred-ke/educred-chain/pkg/types"
)

// MetadataLabelNFT is the transaction metadata label for CIP-25 NFT
// metadata.
const MetadataLabelNFT = 721

// MaxMetadatumTextLen is the protocol ceiling on a single metadata text
// value in bytes. Longer values become ordered lists of chunks.
const MaxMetadatumTextLen = 64

// Metadatum is a transaction metadata value: a text string, a list
// ([]Metadatum) or a map (map[string]Metadatum).
type Metadatum interface{}

// AuxiliaryData maps metadata labels to metadata. A nil map encodes as CBOR
// null, the wire form for "no auxiliary data".
type AuxiliaryData map[uint64]Metadatum

// Hash computes the auxiliary-data hash committed in the transaction body.
func (a AuxiliaryData) Hash() (types.Hash, error) {
	raw, err := cborEnc.Marshal(a)
	if err != nil {
		return types.Hash{}, fmt.Errorf("serialize auxiliary data: %w", err)
	}
	return crypto.Hash256(raw), nil
}

// ChunkText splits s into chunks of at most MaxMetadatumTextLen bytes,
// never splitting inside a UTF-8 rune. Readers reassemble by concatenating
// the chunks in order.
func ChunkText(s string) []string {
	if len(s) <= MaxMetadatumTextLen {
		return []string{s}
	}
	var chunks []string
	cur := make([]byte, 0, MaxMetadatumTextLen)
	for _, r := range s {
		rb := string(r)
		if len(cur)+len(rb) > MaxMetadatumTextLen {
			chunks = append(chunks, string(cur))
			cur = cur[:0]
		}
		cur = append(cur, rb...)
	}
	if len(cur) > 0 {
		chunks = append(chunks, string(cur))
	}
	return chunks
}

// TextMetadatum encodes a text value, chunking it into an ordered list when
// it exceeds the per-value byte ceiling.
func TextMetadatum(s string) Metadatum {
	chunks := ChunkText(s)
	if len(chunks) == 1 {
		return chunks[0]
	}
	list := make([]Metadatum, len(chunks))
	for i, c := range chunks {
		list[i] = c
	}
	return list
}

// NFTMetadata assembles the nested CIP-25 structure
// {721: {policyId: {assetName: fields}}}. The double nesting is what lets
// third-party explorers locate and render the record.
func NFTMetadata(policy types.PolicyID, assetLabel string, fields map[string]string) AuxiliaryData {
	inner := make(map[string]Metadatum, len(fields))
	for k, v := range fields {
		inner[k] = TextMetadatum(v)
	}
	return AuxiliaryData{
		MetadataLabelNFT: map[string]Metadatum{
			policy.String(): map[string]Metadatum{
				assetLabel: inner,
			},
		},
	}
}
