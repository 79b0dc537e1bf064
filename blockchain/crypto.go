package blockchain

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// CoinbaseSender is the literal sender string marking a mining-reward
// transaction. It never carries a signature and is never verified.
const CoinbaseSender = "COINBASE"

// Sha256Hex returns the lowercase hex SHA-256 digest of data.
func Sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// GenerateKeyPair creates a fresh Ed25519 key pair and returns both halves
// hex-encoded, ready to be stored in a wallet registry or signed over.
func GenerateKeyPair() (publicHex, privateHex string, err error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return "", "", fmt.Errorf("generate ed25519 key: %w", err)
	}
	return hex.EncodeToString(pub), hex.EncodeToString(priv), nil
}

// signHex signs message with the hex-encoded Ed25519 private key and returns
// a hex-encoded signature. Fails if privateHex is malformed or the wrong length.
func signHex(privateHex string, message []byte) (string, error) {
	raw, err := hex.DecodeString(privateHex)
	if err != nil {
		return "", fmt.Errorf("decode private key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return "", fmt.Errorf("private key has wrong length: got %d, want %d", len(raw), ed25519.PrivateKeySize)
	}
	sig := ed25519.Sign(ed25519.PrivateKey(raw), message)
	return hex.EncodeToString(sig), nil
}

// verifyHex reports whether signatureHex is a valid Ed25519 signature over
// message under the hex-encoded public key publicHex. Any malformed input
// returns false rather than an error, matching spec's verify()-returns-bool
// contract.
func verifyHex(publicHex string, message []byte, signatureHex string) bool {
	pub, err := hex.DecodeString(publicHex)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), message, sig)
}
