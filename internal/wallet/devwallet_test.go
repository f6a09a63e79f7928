package wallet

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/educred-ke/educred-chain/pkg/crypto"
	"github.com/educred-ke/educred-chain/pkg/tx"
	"github.com/educred-ke/educred-chain/pkg/types"
)

func testSeed() []byte {
	seed := make([]byte, SeedSize)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	return seed
}

func testDevWallet(t *testing.T, backend Backend) *DevWallet {
	t.Helper()
	w, err := NewDevWalletFromSeed(testSeed(), types.TestnetNetwork, backend)
	if err != nil {
		t.Fatalf("NewDevWalletFromSeed: %v", err)
	}
	return w
}

type fakeBackend struct {
	utxos     []string
	submitted string
}

func (f *fakeBackend) UTXOsForAddress(ctx context.Context, bech32Addr string) ([]string, error) {
	return f.utxos, nil
}

func (f *fakeBackend) Submit(ctx context.Context, signedTxHex string) (string, error) {
	f.submitted = signedTxHex
	return "txhash123", nil
}

func TestNewDevWalletFromSeed_WrongSize(t *testing.T) {
	if _, err := NewDevWalletFromSeed(make([]byte, 32), types.TestnetNetwork, nil); err == nil {
		t.Error("short seed should be rejected")
	}
}

func TestDevWallet_Deterministic(t *testing.T) {
	a := testDevWallet(t, nil)
	b := testDevWallet(t, nil)
	if a.Address().Hex() != b.Address().Hex() {
		t.Error("same seed should derive the same address")
	}
}

func TestDevWallet_BaseAddress(t *testing.T) {
	w := testDevWallet(t, nil)
	addr := w.Address()

	if !addr.IsBase() {
		t.Error("dev wallet address should be a base address")
	}
	if addr.Network() != types.TestnetNetwork {
		t.Errorf("network = %d, want testnet", addr.Network())
	}
	stake, err := addr.StakeKeyHash()
	if err != nil {
		t.Fatalf("StakeKeyHash: %v", err)
	}
	if stake != w.StakeKeyHash() {
		t.Error("address stake credential does not match wallet stake key")
	}
}

func TestDevWallet_SessionAddresses(t *testing.T) {
	w := testDevWallet(t, nil)
	ctx := context.Background()

	used, err := w.UsedAddresses(ctx)
	if err != nil || len(used) != 1 {
		t.Fatalf("UsedAddresses = %v, %v", used, err)
	}
	change, err := w.ChangeAddress(ctx)
	if err != nil {
		t.Fatalf("ChangeAddress: %v", err)
	}
	if used[0] != change || used[0] != w.Address().Hex() {
		t.Error("single-address wallet should report one address everywhere")
	}

	id, err := w.NetworkID(ctx)
	if err != nil || id != 0 {
		t.Errorf("NetworkID = %d, %v; want 0", id, err)
	}
}

func TestDevWallet_SignTxProducesValidWitness(t *testing.T) {
	w := testDevWallet(t, nil)

	unsigned := &tx.Transaction{
		Body: tx.Body{
			Inputs:  []tx.Input{{TxID: bytes.Repeat([]byte{0x01}, 32), Index: 0}},
			Outputs: []tx.Output{{Address: w.Address().Bytes(), Value: tx.Value{Coin: 1_000_000}}},
			Fee:     170_000,
		},
		IsValid: true,
	}
	unsignedHex, err := unsigned.Hex()
	if err != nil {
		t.Fatalf("encode tx: %v", err)
	}

	wsHex, err := w.SignTx(context.Background(), unsignedHex, true)
	if err != nil {
		t.Fatalf("SignTx: %v", err)
	}
	ws, err := tx.DecodeWitnessSetHex(wsHex)
	if err != nil {
		t.Fatalf("decode witness set: %v", err)
	}
	if len(ws.VKeys) != 1 {
		t.Fatalf("vkeys = %d, want 1", len(ws.VKeys))
	}

	txID, err := unsigned.ID()
	if err != nil {
		t.Fatalf("tx ID: %v", err)
	}
	vkey := ed25519.PublicKey(ws.VKeys[0].VKey)
	if !ed25519.Verify(vkey, txID.Bytes(), ws.VKeys[0].Signature) {
		t.Error("witness signature does not verify against the transaction ID")
	}

	// The signing key must be the payment credential the address commits to.
	payHash, err := w.Address().PaymentKeyHash()
	if err != nil {
		t.Fatalf("PaymentKeyHash: %v", err)
	}
	if crypto.KeyHash(vkey) != payHash {
		t.Error("witness vkey does not match the address payment credential")
	}
}

func TestDevWallet_NoBackend(t *testing.T) {
	w := testDevWallet(t, nil)
	ctx := context.Background()

	if _, err := w.UTXOs(ctx); !errors.Is(err, ErrNoBackend) {
		t.Errorf("UTXOs error = %v, want ErrNoBackend", err)
	}
	if _, err := w.SubmitTx(ctx, "84a0"); !errors.Is(err, ErrNoBackend) {
		t.Errorf("SubmitTx error = %v, want ErrNoBackend", err)
	}
}

func TestDevWallet_BackendDelegation(t *testing.T) {
	backend := &fakeBackend{utxos: []string{"cafe"}}
	w := testDevWallet(t, backend)
	ctx := context.Background()

	utxos, err := w.UTXOs(ctx)
	if err != nil || len(utxos) != 1 {
		t.Fatalf("UTXOs = %v, %v", utxos, err)
	}

	hash, err := w.SubmitTx(ctx, "84a0")
	if err != nil {
		t.Fatalf("SubmitTx: %v", err)
	}
	if hash != "txhash123" || backend.submitted != "84a0" {
		t.Error("submission not delegated to backend")
	}
}

func TestFirstAddress_PriorityOrder(t *testing.T) {
	usedAddr := types.NewBaseAddress(types.TestnetNetwork, types.KeyHash{0x01}, types.KeyHash{0x02})
	changeAddr := types.NewBaseAddress(types.TestnetNetwork, types.KeyHash{0x03}, types.KeyHash{0x04})

	tests := []struct {
		name    string
		session *scriptedSession
		want    string
		wantErr error
	}{
		{
			"used wins over change",
			&scriptedSession{used: []string{usedAddr.Hex()}, change: changeAddr.Hex()},
			usedAddr.Hex(),
			nil,
		},
		{
			"change when no used",
			&scriptedSession{change: changeAddr.Hex()},
			changeAddr.Hex(),
			nil,
		},
		{
			"unused as last resort",
			&scriptedSession{unused: []string{usedAddr.Hex()}},
			usedAddr.Hex(),
			nil,
		},
		{
			"errors tolerated when another source answers",
			&scriptedSession{usedErr: errors.New("locked"), change: changeAddr.Hex()},
			changeAddr.Hex(),
			nil,
		},
		{
			"nothing at all",
			&scriptedSession{},
			"",
			ErrNoAddress,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := FirstAddress(context.Background(), tt.session)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FirstAddress: %v", err)
			}
			if addr.Hex() != tt.want {
				t.Errorf("address = %s, want %s", addr.Hex(), tt.want)
			}
		})
	}
}

// scriptedSession drives FirstAddress through its fallback chain.
type scriptedSession struct {
	used    []string
	unused  []string
	change  string
	usedErr error
}

func (s *scriptedSession) NetworkID(ctx context.Context) (int, error) { return 0, nil }
func (s *scriptedSession) UsedAddresses(ctx context.Context) ([]string, error) {
	return s.used, s.usedErr
}
func (s *scriptedSession) UnusedAddresses(ctx context.Context) ([]string, error) {
	return s.unused, nil
}
func (s *scriptedSession) ChangeAddress(ctx context.Context) (string, error) {
	return s.change, nil
}
func (s *scriptedSession) UTXOs(ctx context.Context) ([]string, error) { return nil, nil }
func (s *scriptedSession) SignTx(ctx context.Context, h string, partial bool) (string, error) {
	return "", errors.New("not implemented")
}
func (s *scriptedSession) SubmitTx(ctx context.Context, h string) (string, error) {
	return "", errors.New("not implemented")
}
