// Package chainquery is a read-mostly HTTP client for a Blockfrost-style
// chain indexing service: asset lookups, policy enumeration, protocol
// parameters and transaction submission.
package chainquery

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/educred-ke/educred-chain/internal/log"
	"github.com/educred-ke/educred-chain/pkg/tx"
	"github.com/educred-ke/educred-chain/pkg/types"
)

// ErrNoAPIKey is returned by operations that have no safe fallback when the
// client was built without an API credential.
var ErrNoAPIKey = errors.New("chain query API key not configured")

// APIError carries the upstream status and body verbatim, so callers can
// tell a configuration problem (403) from a transient service error (5xx).
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chain query error %d: %s", e.Status, e.Body)
}

// Client queries a chain indexing service over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a client for the given service base URL and API credential.
// An empty key is allowed; key-requiring operations then fail with
// ErrNoAPIKey while parameter lookups degrade to fallbacks upstream.
func New(baseURL, apiKey string) *Client {
	return NewWithTimeout(baseURL, apiKey, 15*time.Second)
}

// NewWithTimeout creates a client with a custom HTTP timeout.
func NewWithTimeout(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// get performs an authenticated GET. found=false with a nil error means the
// resource does not exist, which is an expected outcome, not a fault.
func (c *Client) get(ctx context.Context, endpoint string, result interface{}) (bool, error) {
	if c.apiKey == "" {
		return false, ErrNoAPIKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("project_id", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return false, fmt.Errorf("decode response: %w", err)
		}
	}
	return true, nil
}

// Asset is the chain record for a single minted asset.
type Asset struct {
	Asset           string          `json:"asset"`
	PolicyID        string          `json:"policy_id"`
	AssetName       string          `json:"asset_name"`
	Quantity        string          `json:"quantity"`
	OnchainMetadata json.RawMessage `json:"onchain_metadata"`
	Metadata        json.RawMessage `json:"metadata"`
}

// AssetByID looks up a single asset. Absence maps to (nil, nil).
func (c *Client) AssetByID(ctx context.Context, assetID string) (*Asset, error) {
	var a Asset
	found, err := c.get(ctx, "/assets/"+assetID, &a)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &a, nil
}

// PolicyAsset is one entry in a policy's asset enumeration.
type PolicyAsset struct {
	Asset    string `json:"asset"`
	Quantity string `json:"quantity"`
}

// AssetsByPolicy enumerates every asset minted under a policy. An unknown
// policy yields an empty list, a valid non-error result.
func (c *Client) AssetsByPolicy(ctx context.Context, policyID string) ([]PolicyAsset, error) {
	var assets []PolicyAsset
	found, err := c.get(ctx, "/assets/policy/"+policyID, &assets)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return assets, nil
}

// UnitAmount is a (unit, quantity) pair from an address's holdings.
type UnitAmount struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

// AddressAssets returns the non-lovelace units held by an address.
func (c *Client) AddressAssets(ctx context.Context, bech32Addr string) ([]UnitAmount, error) {
	var info struct {
		Amount []UnitAmount `json:"amount"`
	}
	found, err := c.get(ctx, "/addresses/"+bech32Addr, &info)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	assets := make([]UnitAmount, 0, len(info.Amount))
	for _, a := range info.Amount {
		if a.Unit == "lovelace" {
			continue
		}
		assets = append(assets, a)
	}
	return assets, nil
}

// SubmitTx broadcasts a signed transaction and returns its hash. Rejections
// surface with the node's diagnostic detail intact.
func (c *Client) SubmitTx(ctx context.Context, signedTxHex string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}
	raw, err := hex.DecodeString(signedTxHex)
	if err != nil {
		return "", fmt.Errorf("invalid transaction hex: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tx/submit", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("project_id", c.apiKey)
	req.Header.Set("Content-Type", "application/cbor")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("transaction rejected by network: %w", &APIError{Status: resp.StatusCode, Body: string(body)})
	}

	var txHash string
	if err := json.Unmarshal(body, &txHash); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	return txHash, nil
}

// addressUTXO is the service's JSON shape for one unspent output.
type addressUTXO struct {
	TxHash      string       `json:"tx_hash"`
	OutputIndex uint32       `json:"output_index"`
	Amount      []UnitAmount `json:"amount"`
}

// UTXOsForAddress returns an address's unspent outputs re-encoded to the
// hex CBOR form wallets report, so the dev wallet and a browser wallet feed
// the builder identically. Individually malformed entries are skipped.
func (c *Client) UTXOsForAddress(ctx context.Context, bech32Addr string) ([]string, error) {
	var raw []addressUTXO
	found, err := c.get(ctx, "/addresses/"+bech32Addr+"/utxos", &raw)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	addr, err := types.ParseAddressBech32(bech32Addr)
	if err != nil {
		return nil, fmt.Errorf("parse address: %w", err)
	}

	out := make([]string, 0, len(raw))
	for _, u := range raw {
		encoded, err := encodeUTXO(addr, u)
		if err != nil {
			log.Query.Warn().Err(err).Str("tx_hash", u.TxHash).Msg("skipping malformed UTXO entry")
			continue
		}
		out = append(out, encoded)
	}
	return out, nil
}

// Submit lets the client stand in as a wallet chain backend.
func (c *Client) Submit(ctx context.Context, signedTxHex string) (string, error) {
	return c.SubmitTx(ctx, signedTxHex)
}

// encodeUTXO converts the JSON UTXO shape into wallet wire form.
func encodeUTXO(addr types.Address, u addressUTXO) (string, error) {
	txID, err := hex.DecodeString(u.TxHash)
	if err != nil {
		return "", fmt.Errorf("invalid tx hash: %w", err)
	}
	if len(txID) != types.HashSize {
		return "", fmt.Errorf("tx hash is %d bytes, want %d", len(txID), types.HashSize)
	}

	value := tx.Value{}
	for _, amt := range u.Amount {
		qty, err := strconv.ParseUint(amt.Quantity, 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid quantity %q: %w", amt.Quantity, err)
		}
		if amt.Unit == "lovelace" {
			value.Coin += qty
			continue
		}
		policyHex, nameHex, err := types.SplitAssetID(amt.Unit)
		if err != nil {
			return "", fmt.Errorf("invalid unit %q: %w", amt.Unit, err)
		}
		policy, err := types.HexToKeyHash(policyHex)
		if err != nil {
			return "", err
		}
		name, err := hex.DecodeString(nameHex)
		if err != nil {
			return "", fmt.Errorf("invalid asset name hex: %w", err)
		}
		if value.Assets == nil {
			value.Assets = make(tx.MultiAsset)
		}
		value.Assets.Set(policy, name, qty)
	}

	utxo := tx.UTXO{
		Input:   tx.Input{TxID: txID, Index: u.OutputIndex},
		Address: addr.Bytes(),
		Value:   value,
	}
	return utxo.EncodeHex()
}
