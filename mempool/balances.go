// Package mempool holds the pending-transaction pool and the balance index
// derived from the chain (spec §3, §4.4, §4.6): two tightly coupled pieces
// of state, since admission checks a sender's balance against what the
// mempool already holds pending from that sender. The balance index itself
// is derived from the chain only; pending transactions do not change it.
package mempool

import (
	"sync"

	"github.com/kilimba-labs/ledgerchain/blockchain"
	"github.com/kilimba-labs/ledgerchain/wallet"
)

// Balances is the derived account->amount index (spec §3, "Balance index").
// It is fully reconstructible from the chain plus wallet initial-balance
// overrides, and is never read as authoritative across a chain mutation —
// callers always rebuild before trusting it.
type Balances struct {
	mu sync.RWMutex
	m  map[string]float64
}

// NewBalances creates an empty balance index.
func NewBalances() *Balances {
	return &Balances{m: make(map[string]float64)}
}

// Get returns the raw stored balance for key with no alias resolution,
// defaulting to 0 for an unknown key.
func (b *Balances) Get(key string) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.m[key]
}

// Snapshot returns a copy of the balance map, for persistence and tests.
func (b *Balances) Snapshot() map[string]float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]float64, len(b.m))
	for k, v := range b.m {
		out[k] = v
	}
	return out
}

// Restore replaces the balance index wholesale (used when loading
// persisted state before the first rebuild runs).
func (b *Balances) Restore(m map[string]float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.m = make(map[string]float64, len(m))
	for k, v := range m {
		b.m[k] = v
	}
}

// Lookup resolves key to a balance following spec §4.4's dual-form rule:
// a direct match wins; otherwise, if key is a known local address, its
// public key's stored balance is tried; otherwise, if key is a known public
// key, its address's stored balance is tried. An unresolvable key is 0.
func (b *Balances) Lookup(key string, registry *wallet.Registry) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if v, ok := b.m[key]; ok {
		return v
	}
	if pub, ok := registry.PublicKey(key); ok {
		if v, ok := b.m[pub]; ok {
			return v
		}
	}
	if addr, ok := registry.AddressForPublicKey(key); ok {
		if v, ok := b.m[addr]; ok {
			return v
		}
	}
	return 0
}

// ResolveAccountKey canonicalizes a raw sender/recipient string (which may
// be a public key, a local address, or an unmanaged string) to the key
// balances should be debited/credited under, per spec §4.6: a known public
// key resolves to its address; a known address is used as-is; anything
// else passes through unchanged.
func ResolveAccountKey(raw string, registry *wallet.Registry) string {
	if addr, ok := registry.AddressForPublicKey(raw); ok {
		return addr
	}
	return raw
}

// Rebuild implements spec §4.6 in full: clear, reseed every known wallet
// address with its initial-balance override, walk the chain crediting and
// debiting, then restore any wallet address the walk happened to miss back
// to its seed value.
func (b *Balances) Rebuild(chain []*blockchain.Block, registry *wallet.Registry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.m = make(map[string]float64)
	for _, addr := range registry.Addresses() {
		b.m[addr] = registry.InitialBalance(addr)
	}

	for _, block := range chain {
		for _, tx := range block.Transactions {
			if !tx.IsCoinbase() {
				senderKey := ResolveAccountKey(tx.Sender, registry)
				b.m[senderKey] -= tx.Amount
			}
			recipientKey := ResolveAccountKey(tx.Recipient, registry)
			b.m[recipientKey] += tx.Amount
		}
	}

	for _, addr := range registry.Addresses() {
		if _, ok := b.m[addr]; !ok {
			b.m[addr] = registry.InitialBalance(addr)
		}
	}
}
