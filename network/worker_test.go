package network

import (
	"testing"
	"time"

	"github.com/kilimba-labs/ledgerchain/blockchain"
	"github.com/kilimba-labs/ledgerchain/ledger"
)

func TestWorkerTickDrainsQueuedTransaction(t *testing.T) {
	manager := ledger.NewManager(nil, 1_000_000)
	queue := NewQueue()
	peers := NewPeerSet()
	w := NewWorker(manager, peers, queue, NewClient())

	pub, priv, err := blockchain.GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate key pair: %v", err)
	}
	tx := blockchain.NewTransaction(pub, "recipient-pub", 1, 1_000_001)
	if err := tx.Sign(priv); err != nil {
		t.Fatalf("sign: %v", err)
	}
	queue.EnqueueTransaction(tx)

	w.tick()

	if !manager.Pool.Has(tx.Signature) {
		t.Fatal("expected the queued transaction to have been admitted by the worker's tick")
	}
}

func TestWorkerTickIsNoOpOnEmptyQueue(t *testing.T) {
	manager := ledger.NewManager(nil, 1_000_000)
	queue := NewQueue()
	peers := NewPeerSet()
	w := NewWorker(manager, peers, queue, NewClient())

	before := manager.Length()
	w.tick()
	if manager.Length() != before {
		t.Fatal("expected an empty queue to leave chain state unchanged")
	}
}

// A block that bypasses the HTTP layer's schema validation (e.g. pushed
// directly onto the queue) and carries a nil transaction entry must not
// crash the worker goroutine, let alone the process (spec §7, §4.8).
func TestWorkerTickRecoversFromPanicOnMalformedBlock(t *testing.T) {
	manager := ledger.NewManager(nil, 1_000_000)
	queue := NewQueue()
	peers := NewPeerSet()
	w := NewWorker(manager, peers, queue, NewClient())

	malformed := &blockchain.Block{
		Height:       1,
		PreviousHash: "0",
		Timestamp:    1_000_001,
		Difficulty:   1,
		MinedBy:      "miner",
		Transactions: []*blockchain.Transaction{nil},
		Hash:         "deadbeef",
	}
	queue.EnqueueBlock(malformed)

	w.tick() // must not panic

	if manager.Length() != 1 {
		t.Fatalf("chain length = %d, want unchanged at 1", manager.Length())
	}
}

func TestWorkerSyncChainNoOpWithoutPeers(t *testing.T) {
	manager := ledger.NewManager(nil, 1_000_000)
	queue := NewQueue()
	peers := NewPeerSet()
	w := NewWorker(manager, peers, queue, NewClient())

	// Must not panic or block when there are no peers to contact.
	w.syncChain()
}

func TestWorkerRunStopsCleanly(t *testing.T) {
	manager := ledger.NewManager(nil, 1_000_000)
	queue := NewQueue()
	peers := NewPeerSet()
	w := NewWorker(manager, peers, queue, NewClient())

	go w.Run()
	time.Sleep(10 * time.Millisecond)
	w.Stop()
}
