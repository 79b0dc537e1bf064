// Command node starts a single proof-of-work blockchain node: it loads or
// creates chain state, binds the peer-gossip HTTP server, connects to any
// peers given on the command line, and runs until it receives SIGINT or
// SIGTERM (spec §6 "CLI").
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/vrecan/death/v3"

	"github.com/kilimba-labs/ledgerchain/internal/logging"
	"github.com/kilimba-labs/ledgerchain/ledger"
	"github.com/kilimba-labs/ledgerchain/network"
	"github.com/kilimba-labs/ledgerchain/persistence"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: node <port> [peer_port...]")
		fmt.Println("Example (first node):  node 5000")
		fmt.Println("Example (second node): node 5001 5000")
		os.Exit(1)
	}

	port, err := strconv.Atoi(os.Args[1])
	if err != nil {
		fmt.Printf("invalid port %q: %v\n", os.Args[1], err)
		os.Exit(1)
	}
	peerPorts := os.Args[2:]

	logging.Init("info")
	log := logging.Chain

	dataPath := fmt.Sprintf("blockchain_%d.json", port)
	store := persistence.NewStore(dataPath)

	var manager *ledger.Manager
	if snap, ok := store.Load(); ok {
		manager = ledger.LoadFromSnapshot(store, snap)
		log.Info().Int("height", manager.Length()-1).Msg("resumed node from persisted state")
	} else {
		manager = ledger.NewManager(store, time.Now().Unix())
		log.Info().Msg("starting node with a fresh genesis block")
	}

	sigIndexDir := filepath.Join("tmp", fmt.Sprintf("sigindex_%d", port))
	sigIndex := persistence.OpenSigIndex(sigIndexDir)
	manager.SetSigIndex(sigIndex)

	peers := network.NewPeerSet()
	for _, p := range peerPorts {
		peers.Add(fmt.Sprintf("http://127.0.0.1:%s", p))
	}

	queue := network.NewQueue()
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	server := network.NewServer(addr, manager, peers, queue)
	if err := server.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start network server")
	}
	log.Info().Str("addr", addr).Msg("node listening")

	client := network.NewClient()
	worker := network.NewWorker(manager, peers, queue, client)
	go worker.Run()

	d := death.NewDeath(syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	d.WaitForDeathWithFunc(func() {
		log.Info().Msg("shutting down")
		worker.Stop()
		if err := server.Stop(); err != nil {
			log.Warn().Err(err).Msg("error stopping network server")
		}
		if err := sigIndex.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing signature index")
		}
	})
}
