package mempool

import (
	"sync"

	"github.com/kilimba-labs/ledgerchain/blockchain"
)

// Pool is the FIFO pending-transaction pool (spec §3, "Mempool"): ordered
// by insertion, no duplicate signatures.
type Pool struct {
	mu      sync.RWMutex
	order   []*blockchain.Transaction
	bySig   map[string]int // signature -> index into order, for O(1) dup checks
}

// NewPool creates an empty mempool.
func NewPool() *Pool {
	return &Pool{bySig: make(map[string]int)}
}

// Has reports whether a transaction with this signature is already pending.
func (p *Pool) Has(signature string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.bySig[signature]
	return ok
}

// Append adds tx to the end of the pool. Callers must have already checked
// Has(tx.Signature) — Append does not itself reject duplicates, to keep the
// admission pipeline's ordering explicit (spec §4.4 lists "no duplicates by
// signature" as a precondition the caller enforces, not Append's job).
func (p *Pool) Append(tx *blockchain.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.order = append(p.order, tx)
	p.bySig[tx.Signature] = len(p.order) - 1
}

// Oldest returns the first pending transaction in FIFO order, or nil if the
// pool is empty.
func (p *Pool) Oldest() *blockchain.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.order) == 0 {
		return nil
	}
	return p.order[0]
}

// Len returns the number of pending transactions.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.order)
}

// RemoveBySignature removes the pending transaction with the given
// signature, if present. Used when a block that carries it is appended
// (spec §4.5 step 7, §4.8): only the one mined/accepted transaction is
// removed, never the whole pool.
func (p *Pool) RemoveBySignature(signature string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx, ok := p.bySig[signature]
	if !ok {
		return
	}
	p.order = append(p.order[:idx], p.order[idx+1:]...)
	delete(p.bySig, signature)
	for sig, i := range p.bySig {
		if i > idx {
			p.bySig[sig] = i - 1
		}
	}
}

// PendingFromSameSender sums the amounts of every pending transaction whose
// resolved sender key equals senderKey. Used for the pending-pool
// double-spend check (spec §4.4 step 5).
func (p *Pool) PendingFromSameSender(senderKey string, resolve func(string) string) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var sum float64
	for _, tx := range p.order {
		if resolve(tx.Sender) == senderKey {
			sum += tx.Amount
		}
	}
	return sum
}

// Snapshot returns a copy of the pending transactions in FIFO order, for
// persistence.
func (p *Pool) Snapshot() []*blockchain.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*blockchain.Transaction, len(p.order))
	copy(out, p.order)
	return out
}

// Restore replaces the pool's contents wholesale (used on load).
func (p *Pool) Restore(txs []*blockchain.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.order = append([]*blockchain.Transaction(nil), txs...)
	p.bySig = make(map[string]int, len(txs))
	for i, tx := range txs {
		p.bySig[tx.Signature] = i
	}
}
