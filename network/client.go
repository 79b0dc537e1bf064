package network

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kilimba-labs/ledgerchain/blockchain"
	"github.com/kilimba-labs/ledgerchain/internal/logging"
)

// peerTimeout is the outbound RPC timeout spec §5/§6 fixes at ~5s.
const peerTimeout = 5 * time.Second

// Client issues outbound requests to peer nodes.
type Client struct {
	http *http.Client
}

// NewClient creates an outbound client with the spec-mandated peer timeout.
func NewClient() *Client {
	return &Client{http: &http.Client{Timeout: peerTimeout}}
}

// BroadcastTransaction POSTs tx to every peer's /transaction endpoint.
// Per-peer failures are logged and never block the remaining peers (spec
// §4.8 "Outbound").
func (c *Client) BroadcastTransaction(peers []string, tx *blockchain.Transaction) {
	body, _ := json.Marshal(tx)
	for _, peer := range peers {
		if err := c.post(peer+"/transaction", body); err != nil {
			logging.Network.Warn().Err(err).Str("peer", peer).Msg("broadcast transaction failed")
		}
	}
}

// BroadcastBlock POSTs block to every peer's /block endpoint.
func (c *Client) BroadcastBlock(peers []string, block *blockchain.Block) {
	body, _ := json.Marshal(block)
	for _, peer := range peers {
		if err := c.post(peer+"/block", body); err != nil {
			logging.Network.Warn().Err(err).Str("peer", peer).Msg("broadcast block failed")
		}
	}
}

func (c *Client) post(url string, body []byte) error {
	resp, err := c.http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("peer returned status %d", resp.StatusCode)
	}
	return nil
}

// FetchChain implements the ledger.ChainFetcher contract: GET peerURL/chain
// and decode its block list, returning the peer's self-reported length
// alongside the decoded chain so the caller can cross-check the two agree.
func (c *Client) FetchChain(peerURL string) ([]*blockchain.Block, int, error) {
	resp, err := c.http.Get(peerURL + "/chain")
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("peer returned status %d", resp.StatusCode)
	}

	var parsed chainResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("decode chain response: %w", err)
	}
	return parsed.Chain, parsed.Length, nil
}
