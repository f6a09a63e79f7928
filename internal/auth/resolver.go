// Package auth decides whether a connected wallet may issue credentials.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/educred-ke/educred-chain/internal/log"
	"github.com/educred-ke/educred-chain/internal/wallet"
	"github.com/educred-ke/educred-chain/pkg/types"
)

// OpenModeLabel is the placeholder issuer label used when any wallet is
// accepted.
const OpenModeLabel = "Open Issuer (Any Wallet)"

// Issuer is one whitelist entry.
type Issuer struct {
	Label      string
	KeyHashHex string
}

// ParseIssuers parses label:keyhash-hex whitelist entries. Labels may
// contain colons; the key hash is everything after the last one.
func ParseIssuers(entries []string) ([]Issuer, error) {
	issuers := make([]Issuer, 0, len(entries))
	for i, entry := range entries {
		sep := strings.LastIndex(entry, ":")
		if sep <= 0 || sep == len(entry)-1 {
			return nil, fmt.Errorf("issuer entry %d: expected label:keyhash, got %q", i, entry)
		}
		label := strings.TrimSpace(entry[:sep])
		hashHex := strings.ToLower(strings.TrimSpace(entry[sep+1:]))
		if _, err := types.HexToKeyHash(hashHex); err != nil {
			return nil, fmt.Errorf("issuer entry %d (%s): %w", i, label, err)
		}
		issuers = append(issuers, Issuer{Label: label, KeyHashHex: hashHex})
	}
	return issuers, nil
}

// Config selects open or restricted mode and carries the whitelist. It is
// injected at construction; the resolver reads no ambient state.
type Config struct {
	OpenMode bool
	Issuers  []Issuer
}

// Decision is the outcome of an authorization check. It is recomputed on
// every wallet connection and never persisted.
type Decision struct {
	Authorized  bool
	IssuerLabel string
	OpenMode    bool
}

// Resolver maps a wallet session to an authorization decision.
type Resolver struct {
	cfg Config
}

// NewResolver builds a resolver from an explicit configuration.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve derives the wallet's credential hash and checks it against the
// whitelist. Wallet and address failures resolve to an unauthorized
// decision rather than an error: the caller always receives a usable
// decision object.
func (r *Resolver) Resolve(ctx context.Context, session wallet.Session) Decision {
	if r.cfg.OpenMode {
		return Decision{Authorized: true, IssuerLabel: OpenModeLabel, OpenMode: true}
	}

	hash, err := CredentialHash(ctx, session)
	if err != nil {
		log.Auth.Warn().Err(err).Msg("authorization check failed")
		return Decision{}
	}

	for _, issuer := range r.cfg.Issuers {
		want, err := types.HexToKeyHash(issuer.KeyHashHex)
		if err != nil {
			log.Auth.Warn().Str("label", issuer.Label).Msg("skipping whitelist entry with malformed key hash")
			continue
		}
		if want == hash {
			return Decision{Authorized: true, IssuerLabel: issuer.Label}
		}
	}

	log.Auth.Info().Str("key_hash", hash.String()).Msg("wallet not in issuer whitelist")
	return Decision{}
}

// CredentialHash extracts the wallet's identity credential: the stake key
// hash of its primary address, falling back to the payment key hash when the
// address carries no separable stake credential. Two wallets sharing a
// payment key but different stake keys collide under the fallback; the
// whitelist deployment accepts that trade for enterprise-address support.
func CredentialHash(ctx context.Context, session wallet.Session) (types.KeyHash, error) {
	addr, err := wallet.FirstAddress(ctx, session)
	if err != nil {
		return types.KeyHash{}, err
	}

	if hash, err := addr.StakeKeyHash(); err == nil {
		return hash, nil
	} else if !errors.Is(err, types.ErrNoStakeCredential) {
		log.Auth.Debug().Err(err).Msg("stake credential unavailable, trying payment credential")
	}

	hash, err := addr.PaymentKeyHash()
	if err != nil {
		return types.KeyHash{}, err
	}
	log.Auth.Debug().Str("key_hash", hash.String()).Msg("using payment key hash for authorization")
	return hash, nil
}
