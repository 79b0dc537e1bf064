package wallet

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestAddressIsHexSha256OfPublicKey(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate key pair: %v", err)
	}
	raw, err := hex.DecodeString(kp.PublicKey)
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}
	sum := sha256.Sum256(raw)
	want := hex.EncodeToString(sum[:])
	if kp.Address != want {
		t.Fatalf("address = %s, want %s", kp.Address, want)
	}
}

func TestAddressRejectsMalformedPublicKey(t *testing.T) {
	if _, err := Address("not-hex"); err == nil {
		t.Fatal("expected error for non-hex public key")
	}
	if _, err := Address("aabb"); err == nil {
		t.Fatal("expected error for wrong-length public key")
	}
}

func TestGenerateKeyPairProducesDistinctAddresses(t *testing.T) {
	a, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if a.Address == b.Address {
		t.Fatal("two freshly generated key pairs should not collide")
	}
}
