package network

import (
	"testing"

	"github.com/kilimba-labs/ledgerchain/blockchain"
)

func TestQueueEnqueueDrainTransaction(t *testing.T) {
	q := NewQueue()
	if got := q.DrainTransaction(); got != nil {
		t.Fatal("expected nil from an empty queue")
	}
	tx := blockchain.NewTransaction("alice", "bob", 1, 1)
	q.EnqueueTransaction(tx)
	if got := q.DrainTransaction(); got != tx {
		t.Fatal("expected to drain the enqueued transaction")
	}
	if got := q.DrainTransaction(); got != nil {
		t.Fatal("expected queue to be empty after draining its only item")
	}
}

func TestQueueEnqueueDrainBlock(t *testing.T) {
	q := NewQueue()
	block := blockchain.NewGenesisBlock(1000, 1)
	q.EnqueueBlock(block)
	if got := q.DrainBlock(); got != block {
		t.Fatal("expected to drain the enqueued block")
	}
}
