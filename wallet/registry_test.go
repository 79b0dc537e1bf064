package wallet

import "testing"

func TestRegistryCreateStoresKeysByAddress(t *testing.T) {
	r := NewRegistry()
	kp, err := r.Create(50)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !r.Has(kp.Address) {
		t.Fatal("expected registry to know the newly created address")
	}
	priv, ok := r.PrivateKey(kp.Address)
	if !ok || priv != kp.PrivateKey {
		t.Fatal("expected stored private key to match")
	}
	pub, ok := r.PublicKey(kp.Address)
	if !ok || pub != kp.PublicKey {
		t.Fatal("expected stored public key to match")
	}
}

func TestRegistryAddressForPublicKey(t *testing.T) {
	r := NewRegistry()
	kp, err := r.Create(0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	addr, ok := r.AddressForPublicKey(kp.PublicKey)
	if !ok || addr != kp.Address {
		t.Fatal("expected to resolve public key back to its address")
	}
	if _, ok := r.AddressForPublicKey("unknown-key"); ok {
		t.Fatal("expected unknown public key to not resolve")
	}
}

func TestRegistryInitialBalanceDefaultsTo100ForKnownWallet(t *testing.T) {
	r := NewRegistry()
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate key pair: %v", err)
	}
	// A known wallet with no stored override for its address.
	r.Restore(Snapshot{
		PrivateKeys: map[string]string{kp.Address: kp.PrivateKey},
		PublicKeys:  map[string]string{kp.Address: kp.PublicKey},
	})
	if got := r.InitialBalance(kp.Address); got != DefaultInitialBalance {
		t.Fatalf("initial balance = %v, want %v", got, DefaultInitialBalance)
	}
	if got := r.InitialBalance("unknown-address"); got != 0 {
		t.Fatalf("initial balance for unknown address = %v, want 0", got)
	}
}

func TestRegistrySnapshotRestoreRoundTrip(t *testing.T) {
	r := NewRegistry()
	kp, err := r.Create(75)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	snap := r.Snapshot()

	r2 := NewRegistry()
	r2.Restore(snap)

	if !r2.Has(kp.Address) {
		t.Fatal("restored registry should know the original address")
	}
	if got := r2.InitialBalance(kp.Address); got != 75 {
		t.Fatalf("restored initial balance = %v, want 75", got)
	}
}

func TestRegistryImport(t *testing.T) {
	r := NewRegistry()
	r.Import("addr", "pub", "priv", 10)
	if !r.Has("addr") {
		t.Fatal("expected imported address to be known")
	}
	if got := r.InitialBalance("addr"); got != 10 {
		t.Fatalf("initial balance = %v, want 10", got)
	}
}
