// Package verify reconstructs credential records from chain-queried asset
// metadata and checks document fingerprints against them.
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/educred-ke/educred-chain/internal/chainquery"
	"github.com/educred-ke/educred-chain/internal/digest"
	"github.com/educred-ke/educred-chain/internal/log"
	"github.com/educred-ke/educred-chain/pkg/types"
)

// CredentialRecord is a decoded on-chain credential.
type CredentialRecord struct {
	AssetID     string
	DisplayName string
	Fields      map[string]string
}

// PolicySummary is one entry of a policy enumeration.
type PolicySummary struct {
	AssetID     string
	DisplayName string
}

// Fetcher is the chain access the verifier needs; the chain-query client
// satisfies it.
type Fetcher interface {
	AssetByID(ctx context.Context, assetID string) (*chainquery.Asset, error)
	AssetsByPolicy(ctx context.Context, policyID string) ([]chainquery.PolicyAsset, error)
}

// Service verifies credentials against chain state.
type Service struct {
	query Fetcher
}

// New creates a verification service.
func New(query Fetcher) *Service {
	return &Service{query: query}
}

// ByAsset fetches and decodes one credential. An unknown asset, or a token
// carrying no metadata at all, returns (nil, nil): absence is an expected
// outcome, not a fault.
func (s *Service) ByAsset(ctx context.Context, assetID string) (*CredentialRecord, error) {
	asset, err := s.query.AssetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, nil
	}

	raw := asset.OnchainMetadata
	if len(raw) == 0 || string(raw) == "null" {
		raw = asset.Metadata
	}
	if len(raw) == 0 || string(raw) == "null" {
		log.Verify.Debug().Str("asset", assetID).Msg("asset has no metadata")
		return nil, nil
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode asset metadata: %w", err)
	}

	return &CredentialRecord{
		AssetID:     assetID,
		DisplayName: displayName(assetID),
		Fields:      ReassembleFields(fields),
	}, nil
}

// ByPolicy enumerates the credentials minted under a policy. An unknown
// policy yields an empty list.
func (s *Service) ByPolicy(ctx context.Context, policyID string) ([]PolicySummary, error) {
	assets, err := s.query.AssetsByPolicy(ctx, policyID)
	if err != nil {
		return nil, err
	}
	out := make([]PolicySummary, 0, len(assets))
	for _, a := range assets {
		out = append(out, PolicySummary{
			AssetID:     a.Asset,
			DisplayName: displayName(a.Asset),
		})
	}
	return out, nil
}

// MatchesDocument reports whether the record's committed document hash
// equals the given digest. A malformed digest on either side is a
// data-integrity error, never a silent mismatch.
func (s *Service) MatchesDocument(rec *CredentialRecord, documentHashHex string) (bool, error) {
	if rec == nil {
		return false, fmt.Errorf("nil credential record")
	}
	if !digest.ValidHex(documentHashHex) {
		return false, fmt.Errorf("document hash must be %d lowercase hex characters", digest.HexLen)
	}
	committed, ok := rec.Fields["documentHash"]
	if !ok || committed == "" {
		return false, fmt.Errorf("credential record carries no document hash")
	}
	if !digest.ValidHex(committed) {
		return false, fmt.Errorf("on-chain document hash is malformed: %q", committed)
	}
	return committed == documentHashHex, nil
}

// ReassembleFields flattens decoded metadata values to text. Chunked values
// (lists written for the 64-byte ceiling) are concatenated in order.
func ReassembleFields(raw map[string]interface{}) map[string]string {
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		fields[k] = flatten(v)
	}
	return fields
}

func flatten(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []interface{}:
		var sb strings.Builder
		for _, item := range val {
			sb.WriteString(flatten(item))
		}
		return sb.String()
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return fmt.Sprintf("%t", val)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

// displayName decodes the asset-name portion of an asset ID for display,
// falling back to a hex preview for undecodable names.
func displayName(assetID string) string {
	_, nameHex, err := types.SplitAssetID(assetID)
	if err != nil {
		return assetID
	}
	return types.DecodeAssetName(nameHex)
}
