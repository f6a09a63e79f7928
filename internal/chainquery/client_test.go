package chainquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/educred-ke/educred-chain/pkg/tx"
	"github.com/educred-ke/educred-chain/pkg/types"
)

func testServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, New(srv.URL, "test-key")
}

func TestGet_SendsProjectID(t *testing.T) {
	var gotKey string
	_, c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("project_id")
		fmt.Fprint(w, `{"asset":"abc"}`)
	})

	if _, err := c.AssetByID(context.Background(), "abc"); err != nil {
		t.Fatalf("AssetByID: %v", err)
	}
	if gotKey != "test-key" {
		t.Errorf("project_id = %q, want test-key", gotKey)
	}
}

func TestAssetByID_NotFoundIsNil(t *testing.T) {
	_, c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status_code":404}`, http.StatusNotFound)
	})

	a, err := c.AssetByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("404 should not be an error, got %v", err)
	}
	if a != nil {
		t.Errorf("asset = %+v, want nil", a)
	}
}

func TestAssetByID_ServerErrorSurfaces(t *testing.T) {
	_, c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.AssetByID(context.Background(), "abc")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", apiErr.Status)
	}
}

func TestAssetByID_NoKey(t *testing.T) {
	c := New("http://localhost:1", "")
	if _, err := c.AssetByID(context.Background(), "abc"); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("error = %v, want ErrNoAPIKey", err)
	}
}

func TestAssetsByPolicy_EmptyPolicy(t *testing.T) {
	_, c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	assets, err := c.AssetsByPolicy(context.Background(), "deadbeef")
	if err != nil {
		t.Fatalf("AssetsByPolicy: %v", err)
	}
	if len(assets) != 0 {
		t.Errorf("assets = %v, want empty", assets)
	}
}

func TestAddressAssets_FiltersLovelace(t *testing.T) {
	_, c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"amount":[
			{"unit":"lovelace","quantity":"5000000"},
			{"unit":"aabb","quantity":"1"}
		]}`)
	})

	assets, err := c.AddressAssets(context.Background(), "addr_test1xyz")
	if err != nil {
		t.Fatalf("AddressAssets: %v", err)
	}
	if len(assets) != 1 || assets[0].Unit != "aabb" {
		t.Errorf("assets = %v, want the single non-lovelace unit", assets)
	}
}

func TestSubmitTx(t *testing.T) {
	_, c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tx/submit" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/cbor" {
			t.Errorf("content type = %q", ct)
		}
		fmt.Fprint(w, `"deadbeefhash"`)
	})

	hash, err := c.SubmitTx(context.Background(), "84a0")
	if err != nil {
		t.Fatalf("SubmitTx: %v", err)
	}
	if hash != "deadbeefhash" {
		t.Errorf("hash = %q", hash)
	}
}

func TestSubmitTx_RejectionDetailPreserved(t *testing.T) {
	_, c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "BadInputsUTxO", http.StatusBadRequest)
	})

	_, err := c.SubmitTx(context.Background(), "84a0")
	if err == nil {
		t.Fatal("rejection should surface as an error")
	}
	if !strings.Contains(err.Error(), "BadInputsUTxO") {
		t.Errorf("node diagnostic lost: %v", err)
	}
}

func TestUTXOsForAddress_WalletWireForm(t *testing.T) {
	addr := types.NewBaseAddress(types.TestnetNetwork, types.KeyHash{0x11}, types.KeyHash{0x22})
	bech32, err := addr.Bech32()
	if err != nil {
		t.Fatalf("Bech32: %v", err)
	}

	txHash := strings.Repeat("ab", 32)
	unit := strings.Repeat("cd", 28) + "436572742d31" // policy + "Cert-1"
	_, c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[
			{"tx_hash":"%s","output_index":3,"amount":[
				{"unit":"lovelace","quantity":"9000000"},
				{"unit":"%s","quantity":"1"}
			]},
			{"tx_hash":"tooshort","output_index":0,"amount":[]}
		]`, txHash, unit)
	})

	utxos, err := c.UTXOsForAddress(context.Background(), bech32)
	if err != nil {
		t.Fatalf("UTXOsForAddress: %v", err)
	}
	// The malformed second entry is skipped, not fatal.
	if len(utxos) != 1 {
		t.Fatalf("utxos = %d, want 1", len(utxos))
	}

	parsed, err := tx.ParseUTXOHex(utxos[0])
	if err != nil {
		t.Fatalf("re-encoded UTXO does not parse: %v", err)
	}
	if parsed.Input.Index != 3 {
		t.Errorf("index = %d, want 3", parsed.Input.Index)
	}
	if parsed.Value.Coin != 9_000_000 {
		t.Errorf("coin = %d, want 9000000", parsed.Value.Coin)
	}
	if parsed.Value.Assets.IsEmpty() {
		t.Error("asset bundle lost in re-encoding")
	}
}

func TestProtocolParams_FlexibleNumbers(t *testing.T) {
	_, c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"min_fee_a": 44,
			"min_fee_b": "155381",
			"key_deposit": "2000000",
			"pool_deposit": 500000000,
			"coins_per_utxo_size": "4310",
			"max_tx_size": 16384,
			"max_val_size": "5000"
		}`)
	})

	p, err := c.ProtocolParams(context.Background())
	if err != nil {
		t.Fatalf("ProtocolParams: %v", err)
	}
	cfg := p.BuilderConfig()
	if cfg.LinearFee.CoeffA != 44 || cfg.LinearFee.ConstB != 155381 {
		t.Errorf("fee params = %+v", cfg.LinearFee)
	}
	if cfg.CoinsPerUTXOByte != 4310 {
		t.Errorf("coins per byte = %d", cfg.CoinsPerUTXOByte)
	}
	if cfg.MaxTxSize != 16384 || cfg.MaxValueSize != 5000 {
		t.Errorf("size limits = %d / %d", cfg.MaxTxSize, cfg.MaxValueSize)
	}
}

func TestParamsOrFallback_DegradesGracefully(t *testing.T) {
	c := New("http://127.0.0.1:1", "") // unconfigured key, unreachable host
	p := c.ParamsOrFallback(context.Background())
	if p == nil {
		t.Fatal("fallback params should never be nil")
	}
	if uint64(p.MinFeeA) != 44 || uint64(p.MinFeeB) != 155381 {
		t.Errorf("fallback fee params = %d/%d", p.MinFeeA, p.MinFeeB)
	}
}

func TestBuilderConfig_CoinsPerWordFallback(t *testing.T) {
	p := &ProtocolParams{MinFeeA: 44, MinFeeB: 155381, CoinsPerUTXOWord: 34482}
	cfg := p.BuilderConfig()
	if cfg.CoinsPerUTXOByte != 34482 {
		t.Errorf("coins per byte = %d, want the per-word value", cfg.CoinsPerUTXOByte)
	}
	// Zero size limits fall back to the hardcoded set.
	if cfg.MaxTxSize != 16384 || cfg.MaxValueSize != 5000 {
		t.Errorf("size limits = %d / %d", cfg.MaxTxSize, cfg.MaxValueSize)
	}
}
