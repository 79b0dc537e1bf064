// Package network implements the node's peer-gossip surface (spec §4.8):
// the HTTP/JSON RPC endpoints, the outbound broadcast helpers, the peer
// set, and the single background worker that drains inbound blocks and
// transactions under the chain manager's lock.
package network

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/kilimba-labs/ledgerchain/blockchain"
	"github.com/kilimba-labs/ledgerchain/internal/logging"
	"github.com/kilimba-labs/ledgerchain/ledger"
)

const maxBodySize = 1 << 20 // 1 MiB

// Server is the node's HTTP/JSON RPC server (spec §6).
type Server struct {
	addr    string
	manager *ledger.Manager
	peers   *PeerSet
	queue   *Queue

	httpServer *http.Server
	ln         net.Listener
}

// NewServer builds a server bound to addr, serving the four endpoints spec
// §6 defines. Inbound blocks and transactions are parsed here and handed to
// queue; no state mutation happens on the request goroutine.
func NewServer(addr string, manager *ledger.Manager, peers *PeerSet, queue *Queue) *Server {
	s := &Server{
		addr:    addr,
		manager: manager,
		peers:   peers,
		queue:   queue,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/chain", s.handleGetChain)
	mux.HandleFunc("/transaction", s.handlePostTransaction)
	mux.HandleFunc("/block", s.handlePostBlock)
	mux.HandleFunc("/add_peer", s.handlePostAddPeer)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Start begins listening and serving in a background goroutine. It returns
// immediately after the listener is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("network: listen: %w", err)
	}
	s.ln = ln

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			logging.Network.Error().Err(err).Msg("http server error")
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

type chainResponse struct {
	Length int                  `json:"length"`
	Chain  []*blockchain.Block `json:"chain"`
}

func (s *Server) handleGetChain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	chain := s.manager.Chain()
	writeJSON(w, http.StatusOK, chainResponse{Length: len(chain), Chain: chain})
}

func (s *Server) handlePostTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var tx blockchain.Transaction
	if !decodeBody(w, r, &tx) {
		return
	}
	if err := blockchain.ValidateTransactionSchema(&tx); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.queue.EnqueueTransaction(&tx)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "transaction queued"})
}

func (s *Server) handlePostBlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var block blockchain.Block
	if !decodeBody(w, r, &block) {
		return
	}
	if block.Hash == "" {
		writeError(w, http.StatusBadRequest, "block hash is required")
		return
	}
	for i, tx := range block.Transactions {
		if tx == nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("transaction %d is null", i))
			return
		}
		if err := blockchain.ValidateTransactionSchema(tx); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("transaction %d: %s", i, err.Error()))
			return
		}
	}
	s.queue.EnqueueBlock(&block)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "block queued"})
}

type addPeerRequest struct {
	PeerURL string `json:"peer_url"`
}

func (s *Server) handlePostAddPeer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req addPeerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PeerURL == "" {
		writeError(w, http.StatusBadRequest, "peer_url is required")
		return
	}
	s.peers.Add(req.PeerURL)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "peer added",
		"peers":   s.peers.List(),
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if len(body) > maxBodySize {
		writeError(w, http.StatusBadRequest, "request body too large")
		return false
	}
	if err := json.Unmarshal(body, target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
