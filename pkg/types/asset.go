package types

import (
	"encoding/hex"
	"fmt"
	"regexp"
)

// MaxAssetNameLen is the hard protocol ceiling on asset name bytes.
const MaxAssetNameLen = 32

// PolicyID identifies a minting policy: the hash of its native script.
type PolicyID = KeyHash

// AssetName is the raw on-chain asset name (UTF-8 in our case, but the
// protocol treats it as opaque bytes).
type AssetName []byte

// NewAssetName validates the protocol length ceiling.
func NewAssetName(b []byte) (AssetName, error) {
	if len(b) > MaxAssetNameLen {
		return nil, fmt.Errorf("asset name is %d bytes, max %d", len(b), MaxAssetNameLen)
	}
	n := make(AssetName, len(b))
	copy(n, b)
	return n, nil
}

// Hex returns the hex encoding used in asset IDs and query endpoints.
func (n AssetName) Hex() string {
	return hex.EncodeToString(n)
}

// AssetID returns the chain-query asset identifier: policy ID hex
// concatenated with the asset name hex.
func AssetID(policy PolicyID, name AssetName) string {
	return policy.String() + name.Hex()
}

// safeDisplay matches names that are safe to render verbatim: word
// characters, spaces, hyphens and dots.
var safeDisplay = regexp.MustCompile(`^[\w\s\-.]+$`)

// DecodeAssetName hex-decodes an asset name for display. If the decoded
// bytes contain anything outside the safe display set the result falls back
// to a truncated hex preview, so corrupted or binary names never reach the
// renderer as-is.
func DecodeAssetName(nameHex string) string {
	preview := func() string {
		if len(nameHex) <= 16 {
			return nameHex
		}
		return nameHex[:10] + "..." + nameHex[len(nameHex)-6:]
	}
	b, err := hex.DecodeString(nameHex)
	if err != nil || len(b) == 0 {
		return preview()
	}
	s := string(b)
	if !safeDisplay.MatchString(s) {
		return preview()
	}
	return s
}

// SplitAssetID splits a full asset identifier into its policy ID and asset
// name hex components.
func SplitAssetID(assetID string) (policyHex, nameHex string, err error) {
	if len(assetID) < 2*KeyHashSize {
		return "", "", fmt.Errorf("asset ID too short: %d chars", len(assetID))
	}
	policyHex = assetID[:2*KeyHashSize]
	nameHex = assetID[2*KeyHashSize:]
	if _, err := hex.DecodeString(policyHex); err != nil {
		return "", "", fmt.Errorf("invalid policy ID hex: %w", err)
	}
	return policyHex, nameHex, nil
}
