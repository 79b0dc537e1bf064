// Package wallet tracks local accounts: the address/public-key/private-key
// triples a node controls, and the per-address initial-balance overrides
// the balance index seeds from. Addresses and public keys are aliases for
// the same account (spec §9, "address vs public-key duality"); this
// package owns only the local mapping between them, never balances.
package wallet

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
)

// KeyPair is a freshly-generated, hex-encoded Ed25519 key pair plus the
// canonical address derived from the public key.
type KeyPair struct {
	Address    string
	PublicKey  string
	PrivateKey string
}

// Address derives an account's canonical identity from its hex public key:
// hex(SHA256(pubkey)) (GLOSSARY, "Account"). This is the only address form
// used for consensus-relevant comparisons, persistence keys, and balance
// lookups — see DisplayAddress for the separate, non-canonical display form.
func Address(publicKeyHex string) (string, error) {
	raw, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return "", fmt.Errorf("decode public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return "", fmt.Errorf("public key has wrong length: got %d, want %d", len(raw), ed25519.PublicKeySize)
	}
	return sha256Hex(raw), nil
}

// GenerateKeyPair creates a fresh Ed25519 key pair and its address.
func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("generate key pair: %w", err)
	}
	publicHex := hex.EncodeToString(pub)
	address, err := Address(publicHex)
	if err != nil {
		return nil, err
	}
	return &KeyPair{
		Address:    address,
		PublicKey:  publicHex,
		PrivateKey: hex.EncodeToString(priv),
	}, nil
}
