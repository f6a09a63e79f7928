package types

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// Network identifies which Cardano network an address belongs to.
type Network uint8

const (
	// TestnetNetwork covers the preprod/preview test networks (network id 0).
	TestnetNetwork Network = 0
	// MainnetNetwork is the production network (network id 1).
	MainnetNetwork Network = 1
)

// Address HRPs (human-readable parts) for bech32 encoding.
const (
	MainnetHRP = "addr"
	TestnetHRP = "addr_test"
)

// Shelley address header types (upper nibble of the first byte).
// Only the key-credential shapes are listed; script-credential addresses
// carry no extractable key hash and are treated as unsupported.
const (
	addrTypeBaseKeyKey    = 0x0 // payment key hash + stake key hash
	addrTypeEnterpriseKey = 0x6 // payment key hash only
	addrTypeRewardKey     = 0xe // stake key hash only
)

// Address errors.
var (
	// ErrUnsupportedAddress is returned when an address is not a standard
	// base address, so no credential key hash can be extracted from it.
	ErrUnsupportedAddress = errors.New("unsupported address shape")
	// ErrNoStakeCredential is returned when an address carries no separable
	// stake credential (e.g. an enterprise address).
	ErrNoStakeCredential = errors.New("address has no stake credential")
)

// Address is a parsed Shelley address.
type Address struct {
	raw []byte
}

// ParseAddressBytes parses raw Shelley address bytes (as reported by a
// wallet's address methods, hex-decoded).
func ParseAddressBytes(raw []byte) (Address, error) {
	if len(raw) == 0 {
		return Address{}, fmt.Errorf("empty address")
	}
	header := raw[0] >> 4
	switch header {
	case addrTypeBaseKeyKey, 0x1, 0x2, 0x3:
		// Base addresses: 1 header + 28 payment + 28 stake.
		if len(raw) != 1+2*KeyHashSize {
			return Address{}, fmt.Errorf("base address must be %d bytes, got %d", 1+2*KeyHashSize, len(raw))
		}
	case addrTypeEnterpriseKey, 0x7:
		if len(raw) != 1+KeyHashSize {
			return Address{}, fmt.Errorf("enterprise address must be %d bytes, got %d", 1+KeyHashSize, len(raw))
		}
	case addrTypeRewardKey, 0xf:
		if len(raw) != 1+KeyHashSize {
			return Address{}, fmt.Errorf("reward address must be %d bytes, got %d", 1+KeyHashSize, len(raw))
		}
	case 0x4, 0x5:
		// Pointer addresses have a variable-length tail; keep the bytes but
		// only the payment credential is addressable.
		if len(raw) < 1+KeyHashSize {
			return Address{}, fmt.Errorf("pointer address too short: %d bytes", len(raw))
		}
	default:
		return Address{}, fmt.Errorf("%w: header type 0x%x", ErrUnsupportedAddress, header)
	}
	a := Address{raw: make([]byte, len(raw))}
	copy(a.raw, raw)
	return a, nil
}

// ParseAddressHex parses a hex-encoded Shelley address (the CIP-30 wallet
// wire form).
func ParseAddressHex(s string) (Address, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address hex: %w", err)
	}
	return ParseAddressBytes(raw)
}

// ParseAddressBech32 parses a bech32-encoded address ("addr1..." / "addr_test1...").
func ParseAddressBech32(s string) (Address, error) {
	hrp, data, err := Bech32Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid bech32 address: %w", err)
	}
	if hrp != MainnetHRP && hrp != TestnetHRP {
		return Address{}, fmt.Errorf("%w: HRP %q", ErrUnsupportedAddress, hrp)
	}
	return ParseAddressBytes(data)
}

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte {
	b := make([]byte, len(a.raw))
	copy(b, a.raw)
	return b
}

// Hex returns the raw address bytes as lowercase hex.
func (a Address) Hex() string {
	return hex.EncodeToString(a.raw)
}

// Network returns the network id from the address header.
func (a Address) Network() Network {
	return Network(a.raw[0] & 0x0f)
}

// headerType returns the upper nibble of the header byte.
func (a Address) headerType() byte {
	return a.raw[0] >> 4
}

// IsBase reports whether this is a base address (payment + stake credential).
func (a Address) IsBase() bool {
	return a.headerType() <= 0x3
}

// PaymentKeyHash extracts the payment credential key hash. Fails for address
// shapes whose payment credential is a script or absent (reward addresses).
func (a Address) PaymentKeyHash() (KeyHash, error) {
	t := a.headerType()
	// Odd base/enterprise types have a script payment credential.
	if t == 0x1 || t == 0x3 || t == 0x7 || t >= 0xe {
		return KeyHash{}, fmt.Errorf("%w: payment credential is not a key", ErrUnsupportedAddress)
	}
	var k KeyHash
	copy(k[:], a.raw[1:1+KeyHashSize])
	return k, nil
}

// StakeKeyHash extracts the stake credential key hash from a base address
// (or the sole credential of a reward address). Returns ErrNoStakeCredential
// when the address carries none.
func (a Address) StakeKeyHash() (KeyHash, error) {
	t := a.headerType()
	switch {
	case t == addrTypeBaseKeyKey || t == 0x1:
		var k KeyHash
		copy(k[:], a.raw[1+KeyHashSize:1+2*KeyHashSize])
		return k, nil
	case t == addrTypeRewardKey:
		var k KeyHash
		copy(k[:], a.raw[1:1+KeyHashSize])
		return k, nil
	case t == 0x2 || t == 0x3 || t == 0xf:
		return KeyHash{}, fmt.Errorf("%w: stake credential is a script", ErrUnsupportedAddress)
	default:
		return KeyHash{}, ErrNoStakeCredential
	}
}

// Bech32 returns the bech32 encoding with the network-appropriate HRP.
func (a Address) Bech32() (string, error) {
	hrp := MainnetHRP
	if a.Network() == TestnetNetwork {
		hrp = TestnetHRP
	}
	return Bech32Encode(hrp, a.raw)
}

// String returns the bech32 encoding, falling back to hex if encoding fails.
func (a Address) String() string {
	s, err := a.Bech32()
	if err != nil {
		return a.Hex()
	}
	return s
}

// NewBaseAddress assembles a key/key base address from its credentials.
func NewBaseAddress(network Network, payment, stake KeyHash) Address {
	raw := make([]byte, 1+2*KeyHashSize)
	raw[0] = byte(addrTypeBaseKeyKey)<<4 | byte(network)&0x0f
	copy(raw[1:], payment[:])
	copy(raw[1+KeyHashSize:], stake[:])
	return Address{raw: raw}
}

// NewEnterpriseAddress assembles a key-credential enterprise address.
func NewEnterpriseAddress(network Network, payment KeyHash) Address {
	raw := make([]byte, 1+KeyHashSize)
	raw[0] = byte(addrTypeEnterpriseKey)<<4 | byte(network)&0x0f
	copy(raw[1:], payment[:])
	return Address{raw: raw}
}
