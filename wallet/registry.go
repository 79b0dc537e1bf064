package wallet

import (
	"fmt"
	"sync"
)

// DefaultInitialBalance is what a newly created wallet seeds the balance
// index with absent an explicit override (spec §6, DEFAULT_WALLET_INITIAL).
const DefaultInitialBalance = 100.0

/*
Registry is the local wallet set spec §3 describes: address -> private key
hex, address -> public key hex, and address -> initial-balance override.
It is the only place private keys live; the chain manager reads them back
only through Snapshot, to persist them.
*/
type Registry struct {
	mu               sync.RWMutex
	privateKeys      map[string]string  // address -> private key hex
	publicKeys       map[string]string  // address -> public key hex
	initialBalances  map[string]float64 // address -> seed balance override
}

// NewRegistry creates an empty wallet registry.
func NewRegistry() *Registry {
	return &Registry{
		privateKeys:     make(map[string]string),
		publicKeys:      make(map[string]string),
		initialBalances: make(map[string]float64),
	}
}

// Create generates a fresh key pair, stores it keyed by its derived address,
// seeds its initial-balance override, and returns the new key pair.
func (r *Registry) Create(initialBalance float64) (*KeyPair, error) {
	kp, err := GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.privateKeys[kp.Address] = kp.PrivateKey
	r.publicKeys[kp.Address] = kp.PublicKey
	r.initialBalances[kp.Address] = initialBalance
	return kp, nil
}

// PrivateKey returns the private key hex stored for address, if any.
func (r *Registry) PrivateKey(address string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.privateKeys[address]
	return v, ok
}

// PublicKey returns the public key hex stored for address, if any.
func (r *Registry) PublicKey(address string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.publicKeys[address]
	return v, ok
}

// AddressForPublicKey scans the registry for the address whose stored
// public key equals publicKeyHex. This is the "resolve a public key back to
// a known local address" half of the address/public-key duality (spec §4.4
// step 3, §4.6).
func (r *Registry) AddressForPublicKey(publicKeyHex string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for addr, pub := range r.publicKeys {
		if pub == publicKeyHex {
			return addr, true
		}
	}
	return "", false
}

// InitialBalance returns the stored seed override for address, defaulting
// to DefaultInitialBalance when the address is known but carries no
// explicit override, and to 0 when the address is not a local wallet at all.
func (r *Registry) InitialBalance(address string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.initialBalances[address]; ok {
		return v
	}
	if _, known := r.privateKeys[address]; known {
		return DefaultInitialBalance
	}
	return 0
}

// Addresses returns every locally known wallet address.
func (r *Registry) Addresses() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.privateKeys))
	for addr := range r.privateKeys {
		out = append(out, addr)
	}
	return out
}

// Has reports whether address is a locally known wallet.
func (r *Registry) Has(address string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.privateKeys[address]
	return ok
}

// Snapshot is the load/save shape the persistence layer round-trips.
type Snapshot struct {
	PrivateKeys     map[string]string
	PublicKeys      map[string]string
	InitialBalances map[string]float64
}

// Snapshot copies the registry's current state out for persistence.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Snapshot{
		PrivateKeys:     copyStringMap(r.privateKeys),
		PublicKeys:      copyStringMap(r.publicKeys),
		InitialBalances: copyFloatMap(r.initialBalances),
	}
}

// Restore replaces the registry's contents with a previously saved snapshot.
func (r *Registry) Restore(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.privateKeys = copyStringMap(s.PrivateKeys)
	r.publicKeys = copyStringMap(s.PublicKeys)
	r.initialBalances = copyFloatMap(s.InitialBalances)
}

// Import adds a wallet whose key pair was generated elsewhere (e.g. restored
// from disk with a pre-existing address). Used by persistence on load.
func (r *Registry) Import(address, publicKeyHex, privateKeyHex string, initialBalance float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.privateKeys[address] = privateKeyHex
	r.publicKeys[address] = publicKeyHex
	r.initialBalances[address] = initialBalance
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyFloatMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
