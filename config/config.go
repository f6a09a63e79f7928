// Package config handles application configuration.
//
// Settings split into two categories:
//   - Network facts: endpoints and network magic that must match the chain
//   - Operator settings: issuer roster, wallet files, logging
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// NetworkType identifies mainnet or a test network.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Preprod NetworkType = "preprod"
	Preview NetworkType = "preview"
)

// Config holds runtime configuration.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Chain query service
	ChainQuery ChainQueryConfig

	// Issuer authorization
	Auth AuthConfig

	// Wallet
	Wallet WalletConfig

	// Logging
	Log LogConfig
}

// ChainQueryConfig holds chain query service settings.
type ChainQueryConfig struct {
	Endpoint   string `conf:"chainquery.endpoint"`
	APIKey     string `conf:"chainquery.apikey"`
	TimeoutSec int    `conf:"chainquery.timeout"`
}

// AuthConfig holds issuer authorization settings.
// Open mode lets any connected wallet mint; otherwise only wallets whose
// credential hash appears in the issuer roster are authorized.
type AuthConfig struct {
	OpenMode bool     `conf:"auth.open"`
	Issuers  []string `conf:"auth.issuers"` // label:keyhash-hex entries
}

// WalletConfig holds wallet settings.
type WalletConfig struct {
	KeystoreFile string `conf:"wallet.keystore"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.educred
//	macOS:   ~/Library/Application Support/Educred
//	Windows: %APPDATA%\Educred
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".educred"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Educred")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Educred")
		}
		return filepath.Join(home, "AppData", "Roaming", "Educred")
	default:
		return filepath.Join(home, ".educred")
	}
}

// NetworkDataDir returns the network-specific data directory.
func (c *Config) NetworkDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// KeystorePath returns the wallet keystore path, resolving a relative
// configured file against the network data directory.
func (c *Config) KeystorePath() string {
	if c.Wallet.KeystoreFile == "" {
		return filepath.Join(c.NetworkDataDir(), "keystore.json")
	}
	if filepath.IsAbs(c.Wallet.KeystoreFile) {
		return c.Wallet.KeystoreFile
	}
	return filepath.Join(c.NetworkDataDir(), c.Wallet.KeystoreFile)
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "educred.conf")
}
