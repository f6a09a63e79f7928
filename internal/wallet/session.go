// Package wallet defines the capability interface a connected wallet must
// implement, plus a file-backed implementation for CLI and test use.
package wallet

import (
	"context"
	"errors"

	"github.com/educred-ke/educred-chain/internal/log"
	"github.com/educred-ke/educred-chain/pkg/types"
)

// Session errors.
var (
	// ErrNoAddress is returned when a wallet reports no address at all.
	ErrNoAddress = errors.New("no address available from wallet")
)

// Session is the capability surface a connected wallet exposes. Adapters are
// selected explicitly at connect time; nothing probes wallet internals at
// call time. Address and UTXO strings are hex-encoded CBOR, the CIP-30 wire
// form.
type Session interface {
	// NetworkID reports the wallet's network: 0 for test networks, 1 for
	// mainnet.
	NetworkID(ctx context.Context) (int, error)

	// UsedAddresses lists addresses that have appeared on-chain.
	UsedAddresses(ctx context.Context) ([]string, error)

	// UnusedAddresses lists derived but unused addresses.
	UnusedAddresses(ctx context.Context) ([]string, error)

	// ChangeAddress returns the wallet's change address.
	ChangeAddress(ctx context.Context) (string, error)

	// UTXOs lists the wallet's spendable outputs.
	UTXOs(ctx context.Context) ([]string, error)

	// SignTx asks the wallet to sign the transaction. With partial set the
	// wallet must tolerate witnesses already present (our script witness)
	// and return only its own detached witness set, hex-encoded.
	SignTx(ctx context.Context, unsignedTxHex string, partial bool) (string, error)

	// SubmitTx submits a fully signed transaction and returns its hash.
	SubmitTx(ctx context.Context, signedTxHex string) (string, error)
}

// FirstAddress resolves the wallet's primary address, trying used, change
// and unused addresses in that priority order. Individual method failures
// are tolerated (some wallets error on empty lists); only a wallet that
// reports nothing at all yields ErrNoAddress.
func FirstAddress(ctx context.Context, s Session) (types.Address, error) {
	var rawHex string

	if used, err := s.UsedAddresses(ctx); err == nil && len(used) > 0 {
		rawHex = used[0]
	} else if err != nil {
		log.Wallet.Debug().Err(err).Msg("used addresses unavailable")
	}

	if rawHex == "" {
		if change, err := s.ChangeAddress(ctx); err == nil && change != "" {
			rawHex = change
		} else if err != nil {
			log.Wallet.Debug().Err(err).Msg("change address unavailable")
		}
	}

	if rawHex == "" {
		if unused, err := s.UnusedAddresses(ctx); err == nil && len(unused) > 0 {
			rawHex = unused[0]
		} else if err != nil {
			log.Wallet.Debug().Err(err).Msg("unused addresses unavailable")
		}
	}

	if rawHex == "" {
		return types.Address{}, ErrNoAddress
	}
	return types.ParseAddressHex(rawHex)
}
