package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadFile loads configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key = value
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets a config value by key.
func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	// Core
	case "network":
		cfg.Network = NetworkType(value)
	case "datadir":
		cfg.DataDir = value

	// Chain query
	case "chainquery.endpoint":
		cfg.ChainQuery.Endpoint = value
	case "chainquery.apikey":
		cfg.ChainQuery.APIKey = value
	case "chainquery.timeout":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.ChainQuery.TimeoutSec = n

	// Authorization
	case "auth.open":
		cfg.Auth.OpenMode = parseBool(value)
	case "auth.issuers":
		cfg.Auth.Issuers = parseStringList(value)

	// Wallet
	case "wallet.keystore":
		cfg.Wallet.KeystoreFile = value

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// parseStringList parses a comma-separated list.
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// WriteDefaultConfig writes a default configuration file.
func WriteDefaultConfig(path string, network NetworkType) error {
	content := `# Educred Chain Configuration

# Network: mainnet, preprod, or preview
network = ` + string(network) + `

# Data directory (default: ~/.educred)
# datadir = ~/.educred

# ============================================================================
# Chain Query Service
# ============================================================================

chainquery.endpoint = ` + Endpoint(network) + `

# Project API key for the chain query service
# chainquery.apikey = <your-project-id>

# Request timeout in seconds
chainquery.timeout = 15

# ============================================================================
# Issuer Authorization
# ============================================================================

# Open mode: any connected wallet may mint credentials.
# Disable and list issuers to restrict minting.
auth.open = true

# Authorized issuers (comma-separated label:keyhash-hex entries)
# auth.issuers = University of Nairobi:a1b2c3...,Strathmore:d4e5f6...

# ============================================================================
# Wallet
# ============================================================================

# Keystore file for the development wallet (relative paths resolve
# against the network data directory)
# wallet.keystore = keystore.json

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0644)
}
