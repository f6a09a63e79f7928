package wallet

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/educred-ke/educred-chain/pkg/crypto"
	"github.com/educred-ke/educred-chain/pkg/tx"
	"github.com/educred-ke/educred-chain/pkg/types"
)

// ErrNoBackend is returned by chain-touching operations on a wallet created
// without a backend.
var ErrNoBackend = errors.New("wallet has no chain backend")

// Backend is the chain access a DevWallet needs: UTXO discovery and
// transaction submission. The chain-query client satisfies it.
type Backend interface {
	// UTXOsForAddress returns the address's spendable outputs as
	// hex-encoded CBOR, the same form a browser wallet reports.
	UTXOsForAddress(ctx context.Context, bech32Addr string) ([]string, error)

	// Submit broadcasts a signed transaction and returns its hash.
	Submit(ctx context.Context, signedTxHex string) (string, error)
}

// DevWallet is a Session implementation backed by an in-process key pair.
// It exists for CLI and test use on test networks; it derives its keys
// directly from the BIP-39 seed halves rather than a hierarchical path, so
// it is not address-compatible with browser wallets restored from the same
// mnemonic.
type DevWallet struct {
	network    types.Network
	paymentKey ed25519.PrivateKey
	stakeKey   ed25519.PrivateKey
	address    types.Address
	backend    Backend
}

// NewDevWallet derives a wallet from a mnemonic and optional passphrase.
func NewDevWallet(mnemonic, passphrase string, network types.Network, backend Backend) (*DevWallet, error) {
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	return NewDevWalletFromSeed(seed, network, backend)
}

// NewDevWalletFromSeed builds a wallet from a 64-byte seed: the first half
// seeds the payment key, the second half the stake key.
func NewDevWalletFromSeed(seed []byte, network types.Network, backend Backend) (*DevWallet, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	paymentKey := ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize])
	stakeKey := ed25519.NewKeyFromSeed(seed[ed25519.SeedSize : 2*ed25519.SeedSize])

	payHash := crypto.KeyHash(paymentKey.Public().(ed25519.PublicKey))
	stakeHash := crypto.KeyHash(stakeKey.Public().(ed25519.PublicKey))

	return &DevWallet{
		network:    network,
		paymentKey: paymentKey,
		stakeKey:   stakeKey,
		address:    types.NewBaseAddress(network, payHash, stakeHash),
		backend:    backend,
	}, nil
}

// Address returns the wallet's base address.
func (w *DevWallet) Address() types.Address {
	return w.address
}

// StakeKeyHash returns the wallet's stake credential hash, the identity the
// authorization whitelist matches on.
func (w *DevWallet) StakeKeyHash() types.KeyHash {
	return crypto.KeyHash(w.stakeKey.Public().(ed25519.PublicKey))
}

// NetworkID implements Session.
func (w *DevWallet) NetworkID(ctx context.Context) (int, error) {
	return int(w.network), nil
}

// UsedAddresses implements Session. A single-address wallet reports its one
// address as used.
func (w *DevWallet) UsedAddresses(ctx context.Context) ([]string, error) {
	return []string{w.address.Hex()}, nil
}

// UnusedAddresses implements Session.
func (w *DevWallet) UnusedAddresses(ctx context.Context) ([]string, error) {
	return nil, nil
}

// ChangeAddress implements Session.
func (w *DevWallet) ChangeAddress(ctx context.Context) (string, error) {
	return w.address.Hex(), nil
}

// UTXOs implements Session by querying the chain backend.
func (w *DevWallet) UTXOs(ctx context.Context) ([]string, error) {
	if w.backend == nil {
		return nil, ErrNoBackend
	}
	bech32, err := w.address.Bech32()
	if err != nil {
		return nil, fmt.Errorf("encode address: %w", err)
	}
	return w.backend.UTXOsForAddress(ctx, bech32)
}

// SignTx implements Session: it signs the transaction ID with the payment
// key and returns a detached witness set, leaving any witnesses already in
// the transaction untouched.
func (w *DevWallet) SignTx(ctx context.Context, unsignedTxHex string, partial bool) (string, error) {
	unsigned, err := tx.FromHex(unsignedTxHex)
	if err != nil {
		return "", fmt.Errorf("parse transaction: %w", err)
	}
	txID, err := unsigned.ID()
	if err != nil {
		return "", fmt.Errorf("transaction ID: %w", err)
	}

	sig := ed25519.Sign(w.paymentKey, txID.Bytes())
	ws := tx.WitnessSet{
		VKeys: []tx.VKeyWitness{{
			VKey:      append([]byte(nil), w.paymentKey.Public().(ed25519.PublicKey)...),
			Signature: sig,
		}},
	}
	return ws.Hex()
}

// SubmitTx implements Session via the chain backend.
func (w *DevWallet) SubmitTx(ctx context.Context, signedTxHex string) (string, error) {
	if w.backend == nil {
		return "", ErrNoBackend
	}
	return w.backend.Submit(ctx, signedTxHex)
}
