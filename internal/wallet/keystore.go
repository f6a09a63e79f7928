package wallet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// keystoreVersion is bumped when the on-disk format changes.
const keystoreVersion = 1

// keystoreFile is the on-disk JSON format for an encrypted wallet seed.
type keystoreFile struct {
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	Network       string    `json:"network"`
	EncryptedSeed []byte    `json:"encrypted_seed"`
}

// SaveKeystore encrypts the seed with the password and writes it to path,
// creating parent directories as needed. The file is written 0600: it holds
// spending authority for whatever test funds the wallet controls.
func SaveKeystore(path string, seed, password []byte, network string) error {
	if len(seed) != SeedSize {
		return fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	encrypted, err := Encrypt(seed, password, DefaultParams())
	if err != nil {
		return fmt.Errorf("encrypt seed: %w", err)
	}

	ks := keystoreFile{
		Version:       keystoreVersion,
		CreatedAt:     time.Now().UTC(),
		Network:       network,
		EncryptedSeed: encrypted,
	}
	data, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal keystore: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create keystore dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write keystore: %w", err)
	}
	return nil
}

// LoadKeystore reads and decrypts a wallet seed from path.
func LoadKeystore(path string, password []byte) (seed []byte, network string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read keystore: %w", err)
	}

	var ks keystoreFile
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, "", fmt.Errorf("parse keystore: %w", err)
	}
	if ks.Version != keystoreVersion {
		return nil, "", fmt.Errorf("unsupported keystore version %d", ks.Version)
	}

	seed, err = Decrypt(ks.EncryptedSeed, password)
	if err != nil {
		return nil, "", fmt.Errorf("decrypt keystore (wrong password?): %w", err)
	}
	if len(seed) != SeedSize {
		return nil, "", fmt.Errorf("keystore seed is %d bytes, want %d", len(seed), SeedSize)
	}
	return seed, ks.Network, nil
}
