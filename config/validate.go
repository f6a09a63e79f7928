package config

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const keyHashHexLen = 56

// Validate checks runtime config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	switch cfg.Network {
	case Mainnet, Preprod, Preview:
	default:
		return fmt.Errorf("network must be %q, %q, or %q", Mainnet, Preprod, Preview)
	}
	if cfg.ChainQuery.Endpoint == "" {
		return fmt.Errorf("chainquery.endpoint is required")
	}
	if !strings.HasPrefix(cfg.ChainQuery.Endpoint, "http://") &&
		!strings.HasPrefix(cfg.ChainQuery.Endpoint, "https://") {
		return fmt.Errorf("chainquery.endpoint must be an http(s) URL")
	}
	if cfg.ChainQuery.TimeoutSec < 0 {
		return fmt.Errorf("chainquery.timeout must not be negative")
	}

	if !cfg.Auth.OpenMode && len(cfg.Auth.Issuers) == 0 {
		return fmt.Errorf("restricted mode requires at least one auth.issuers entry")
	}
	if err := validateIssuers(cfg.Auth.Issuers); err != nil {
		return err
	}

	return nil
}

func validateIssuers(entries []string) error {
	seen := make(map[string]struct{}, len(entries))
	for i, entry := range entries {
		sep := strings.LastIndex(entry, ":")
		if sep <= 0 || sep == len(entry)-1 {
			return fmt.Errorf("auth.issuers[%d] must be label:keyhash, got %q", i, entry)
		}
		h := strings.ToLower(strings.TrimSpace(entry[sep+1:]))
		b, err := hex.DecodeString(h)
		if err != nil || len(b)*2 != keyHashHexLen {
			return fmt.Errorf("auth.issuers[%d] must end with a 28-byte hex key hash", i)
		}
		if _, ok := seen[h]; ok {
			return fmt.Errorf("auth.issuers has duplicate key hash %q", h)
		}
		seen[h] = struct{}{}
	}
	return nil
}
