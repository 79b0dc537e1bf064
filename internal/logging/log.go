// Package logging provides structured, component-scoped logging for the node.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Component loggers. Each subsystem logs through its own logger so that log
// lines can be filtered by component without string matching.
var (
	Chain     zerolog.Logger
	Mempool   zerolog.Logger
	Network   zerolog.Logger
	Consensus zerolog.Logger
	Wallet    zerolog.Logger
	Storage   zerolog.Logger
)

func init() {
	Init("info")
}

// Init (re)configures every component logger at the given level
// ("debug", "info", "warn", "error"). Unknown levels fall back to "info".
func Init(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	base := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).Level(lvl).With().Timestamp()

	Chain = base.Str("component", "chain").Logger()
	Mempool = base.Str("component", "mempool").Logger()
	Network = base.Str("component", "network").Logger()
	Consensus = base.Str("component", "consensus").Logger()
	Wallet = base.Str("component", "wallet").Logger()
	Storage = base.Str("component", "storage").Logger()
}
