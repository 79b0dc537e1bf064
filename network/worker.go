package network

import (
	"time"

	"github.com/kilimba-labs/ledgerchain/internal/logging"
	"github.com/kilimba-labs/ledgerchain/ledger"
)

// workerTick is the background processor's loop interval (spec §6: "worker
// tick 100 ms").
const workerTick = 100 * time.Millisecond

// syncPeriod is how often the worker unconditionally resyncs against every
// peer, self-healing regardless of queue activity (spec §4.8 step 3).
const syncPeriod = 60 * time.Second

// Worker is the single background processor described in spec §4.8: it is
// the only goroutine that drives chain mutations on behalf of received
// peer events, giving the chain manager its single-writer discipline.
type Worker struct {
	manager *ledger.Manager
	peers   *PeerSet
	queue   *Queue
	client  *Client

	stop chan struct{}
	done chan struct{}
}

// NewWorker wires a worker to the given manager, peer set, queue, and
// outbound client.
func NewWorker(manager *ledger.Manager, peers *PeerSet, queue *Queue, client *Client) *Worker {
	return &Worker{
		manager: manager,
		peers:   peers,
		queue:   queue,
		client:  client,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Run drives the worker loop until Stop is called. Call it in its own
// goroutine.
func (w *Worker) Run() {
	defer close(w.done)

	ticker := time.NewTicker(workerTick)
	defer ticker.Stop()

	lastSync := time.Now()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.tick()
			if time.Since(lastSync) >= syncPeriod {
				w.syncChain()
				lastSync = time.Now()
			}
		}
	}
}

// Stop signals the worker to exit and waits for it to do so.
func (w *Worker) Stop() {
	close(w.stop)
	<-w.done
}

// tick runs one iteration of spec §4.8's background processor steps 1-2.
// Inbound blocks and transactions come from untrusted peers over the wire;
// malformed input here must never take the whole process down (spec §7,
// "Fatal: none by design... tolerates malformed peer input and corrupt
// local state"), so a panic anywhere in this iteration is recovered and
// logged rather than left to crash the worker goroutine.
func (w *Worker) tick() {
	defer func() {
		if r := recover(); r != nil {
			logging.Network.Error().Interface("panic", r).Msg("recovered panic in worker tick")
		}
	}()

	if block := w.queue.DrainBlock(); block != nil {
		appended, needsSync := w.manager.AcceptBlock(block)
		if needsSync {
			w.syncChain()
		} else if appended {
			logging.Network.Debug().Int("height", block.Height).Msg("worker appended queued block")
		}
	}

	if tx := w.queue.DrainTransaction(); tx != nil {
		if w.manager.AcceptRemoteTransaction(tx) {
			logging.Network.Debug().Msg("worker admitted queued transaction")
		}
	}
}

func (w *Worker) syncChain() {
	peers := w.peers.List()
	if len(peers) == 0 {
		return
	}
	if w.manager.SyncChain(peers, w.client.FetchChain) {
		logging.Network.Info().Msg("worker synced chain from peers")
	}
}
