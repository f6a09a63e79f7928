package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default(Preprod)
	if cfg.Network != Preprod {
		t.Errorf("network = %q", cfg.Network)
	}
	if cfg.ChainQuery.Endpoint != PreprodEndpoint {
		t.Errorf("endpoint = %q", cfg.ChainQuery.Endpoint)
	}
	if !cfg.Auth.OpenMode {
		t.Error("default should be open mode")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default preprod config should validate: %v", err)
	}

	m := Default(Mainnet)
	if m.ChainQuery.Endpoint != MainnetEndpoint {
		t.Errorf("mainnet endpoint = %q", m.ChainQuery.Endpoint)
	}
	if err := Validate(m); err != nil {
		t.Errorf("default mainnet config should validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "educred.conf")
	content := `# comment
network = preprod
chainquery.apikey = "quoted-key"
auth.open = false
auth.issuers = UoN:aa, Strathmore:bb

log.level = debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if values["network"] != "preprod" {
		t.Errorf("network = %q", values["network"])
	}
	if values["chainquery.apikey"] != "quoted-key" {
		t.Errorf("quotes not stripped: %q", values["chainquery.apikey"])
	}

	cfg := Default(Preprod)
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.Auth.OpenMode {
		t.Error("auth.open = false not applied")
	}
	if len(cfg.Auth.Issuers) != 2 || cfg.Auth.Issuers[1] != "Strathmore:bb" {
		t.Errorf("issuers = %v", cfg.Auth.Issuers)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "absent.conf"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("values = %v, want empty", values)
	}
}

func TestLoadFile_BadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.conf")
	if err := os.WriteFile(path, []byte("no equals sign here\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("malformed line should error")
	}
}

func TestValidate(t *testing.T) {
	goodHash := strings.Repeat("ab", 28)
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(c *Config) {}, false},
		{"bad network", func(c *Config) { c.Network = "devnet" }, true},
		{"empty endpoint", func(c *Config) { c.ChainQuery.Endpoint = "" }, true},
		{"non-http endpoint", func(c *Config) { c.ChainQuery.Endpoint = "ftp://x" }, true},
		{"negative timeout", func(c *Config) { c.ChainQuery.TimeoutSec = -1 }, true},
		{"restricted without issuers", func(c *Config) { c.Auth.OpenMode = false }, true},
		{
			"restricted with issuer",
			func(c *Config) {
				c.Auth.OpenMode = false
				c.Auth.Issuers = []string{"UoN:" + goodHash}
			},
			false,
		},
		{
			"issuer bad hash",
			func(c *Config) { c.Auth.Issuers = []string{"UoN:zz"} },
			true,
		},
		{
			"duplicate issuer hash",
			func(c *Config) {
				c.Auth.Issuers = []string{"A:" + goodHash, "B:" + goodHash}
			},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default(Preprod)
			tt.mutate(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestKeystorePath(t *testing.T) {
	cfg := Default(Preprod)
	cfg.DataDir = "/data"

	if got := cfg.KeystorePath(); got != filepath.Join("/data", "preprod", "keystore.json") {
		t.Errorf("default keystore path = %q", got)
	}

	cfg.Wallet.KeystoreFile = "mykeys.json"
	if got := cfg.KeystorePath(); got != filepath.Join("/data", "preprod", "mykeys.json") {
		t.Errorf("relative keystore path = %q", got)
	}

	cfg.Wallet.KeystoreFile = "/abs/keys.json"
	if got := cfg.KeystorePath(); got != "/abs/keys.json" {
		t.Errorf("absolute keystore path = %q", got)
	}
}

func TestExplorerURLs(t *testing.T) {
	if got := ExplorerTxURL(Preprod, "abc"); got != "https://preprod.cardanoscan.io/transaction/abc" {
		t.Errorf("tx URL = %q", got)
	}
	if got := ExplorerTokenURL(Mainnet, "xyz"); got != "https://cardanoscan.io/token/xyz" {
		t.Errorf("token URL = %q", got)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "educred.conf")
	if err := WriteDefaultConfig(path, Preprod); err != nil {
		t.Fatalf("WriteDefaultConfig: %v", err)
	}

	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	cfg := Default(Preprod)
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("generated file should apply cleanly: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("generated config should validate: %v", err)
	}
}
