package wallet

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"
)

const (
	displayVersion = byte(0x00)
	checksumLength = 4
)

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// fingerprint computes Hash160 (RIPEMD160(SHA256(pubkey))), the same
// shortening step Bitcoin-style addresses use, purely to feed DisplayAddress.
func fingerprint(publicKey []byte) []byte {
	sum := sha256.Sum256(publicKey)
	hasher := ripemd160.New()
	hasher.Write(sum[:])
	return hasher.Sum(nil)
}

func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:checksumLength]
}

// DisplayAddress renders a Base58Check-encoded, operator-facing alias for
// the given hex public key: version byte + Hash160(pubkey) + a 4-byte
// double-SHA256 checksum, Base58 encoded.
//
// This is NOT the canonical account key — it exists for log lines and CLI
// banners only. Consensus, persistence keys, and balance lookups all use
// Address (hex(SHA256(pubkey))), never this form; nothing in the chain ever
// compares two DisplayAddress values for equality.
func DisplayAddress(publicKeyHex string) (string, error) {
	raw, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return "", fmt.Errorf("decode public key: %w", err)
	}
	hash := fingerprint(raw)
	versioned := append([]byte{displayVersion}, hash...)
	full := append(versioned, checksum(versioned)...)
	return base58.Encode(full), nil
}
