package wallet

import "testing"

func TestDisplayAddressIsStableAndDistinctFromCanonicalAddress(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate key pair: %v", err)
	}
	display1, err := DisplayAddress(kp.PublicKey)
	if err != nil {
		t.Fatalf("display address: %v", err)
	}
	display2, err := DisplayAddress(kp.PublicKey)
	if err != nil {
		t.Fatalf("display address: %v", err)
	}
	if display1 != display2 {
		t.Fatal("display address must be deterministic for the same public key")
	}
	if display1 == kp.Address {
		t.Fatal("display address must not equal the canonical hex(SHA256(pubkey)) address")
	}
}

func TestDisplayAddressRejectsMalformedPublicKey(t *testing.T) {
	if _, err := DisplayAddress("not-hex"); err == nil {
		t.Fatal("expected error for non-hex public key")
	}
}
