// Package strategy holds the pure buy/sell decision logic. Strategies never
// touch the ledger or any I/O; they look at a signal (and, for sells, the open
// position) and answer yes/no with a human-readable reason.
package strategy

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/autotrader/ledger"
	"github.com/rustyeddy/autotrader/market"
)

// Strategy decides whether to enter or exit a position.
type Strategy interface {
	Name() string
	DecideBuy(symbol string, sig market.Signal) (bool, string)
	DecideSell(symbol string, pos ledger.View, sig market.Signal) (bool, string)
}

// ByName returns one of the built-in strategies.
func ByName(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "conservative":
		return Conservative(), nil
	case "balanced", "":
		return Balanced(), nil
	case "aggressive":
		return Aggressive(), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: conservative, balanced, aggressive)", name)
	}
}

// Names lists the built-in strategy names.
func Names() []string {
	return []string{"conservative", "balanced", "aggressive"}
}
