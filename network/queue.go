package network

import "github.com/kilimba-labs/ledgerchain/blockchain"

// Queue holds the inbound block and transaction events HTTP handlers
// produce and the background worker consumes (spec §4.8, §5: handlers
// "perform only cheap parsing and push parsed items into... queues; all
// state-mutating work is funneled through the background worker").
//
// Channels are given generous buffers rather than left truly unbounded —
// an HTTP handler that blocked forever on a full channel would defeat the
// point of keeping request goroutines cheap.
type Queue struct {
	blocks       chan *blockchain.Block
	transactions chan *blockchain.Transaction
}

const queueCapacity = 4096

// NewQueue creates an empty event queue.
func NewQueue() *Queue {
	return &Queue{
		blocks:       make(chan *blockchain.Block, queueCapacity),
		transactions: make(chan *blockchain.Transaction, queueCapacity),
	}
}

// EnqueueBlock pushes a parsed block for the worker to process. If the
// queue is saturated, the block is dropped rather than blocking the
// request goroutine; the sync loop's self-healing eventually recovers.
func (q *Queue) EnqueueBlock(b *blockchain.Block) {
	select {
	case q.blocks <- b:
	default:
	}
}

// EnqueueTransaction pushes a parsed transaction for the worker to process.
func (q *Queue) EnqueueTransaction(tx *blockchain.Transaction) {
	select {
	case q.transactions <- tx:
	default:
	}
}

// DrainBlock pops one pending block if present, or returns nil.
func (q *Queue) DrainBlock() *blockchain.Block {
	select {
	case b := <-q.blocks:
		return b
	default:
		return nil
	}
}

// DrainTransaction pops one pending transaction if present, or returns nil.
func (q *Queue) DrainTransaction() *blockchain.Transaction {
	select {
	case tx := <-q.transactions:
		return tx
	default:
		return nil
	}
}
