// Package watchlist manages the pool of candidate symbols: watched stocks with
// entry context, organized into named groups, persisted as JSON. Backtests and
// live sessions draw their symbol pool from here.
package watchlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultGroup always exists and cannot be deleted.
const DefaultGroup = "default"

// Stock is one watched symbol with the context it was added under.
type Stock struct {
	Symbol     string          `json:"symbol"`
	Name       string          `json:"name"`
	AddedAt    time.Time       `json:"added_at"`
	AddedPrice decimal.Decimal `json:"added_price"`
	Notes      string          `json:"notes"`
	Group      string          `json:"group"`
}

// Group is a named bucket of watched stocks.
type Group struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type document struct {
	Groups []Group `json:"groups"`
	Stocks []Stock `json:"stocks"`
}

// Watchlist is an in-memory watchlist bound to a JSON file. Not safe for
// concurrent mutation.
type Watchlist struct {
	path   string
	groups map[string]Group
	stocks map[string]Stock
}

// Load reads the watchlist at path, or starts an empty one with just the
// default group when the file does not exist yet.
func Load(path string) (*Watchlist, error) {
	if path == "" {
		return nil, fmt.Errorf("watchlist: path is required")
	}

	w := &Watchlist{
		path:   path,
		groups: map[string]Group{DefaultGroup: {Name: DefaultGroup}},
		stocks: make(map[string]Stock),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return w, nil
	}
	if err != nil {
		return nil, fmt.Errorf("watchlist: read %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("watchlist: parse %s: %w", path, err)
	}
	for _, g := range doc.Groups {
		if g.Name == "" {
			continue
		}
		w.groups[g.Name] = g
	}
	for _, s := range doc.Stocks {
		if s.Symbol == "" {
			continue
		}
		if _, ok := w.groups[s.Group]; !ok {
			s.Group = DefaultGroup
		}
		w.stocks[s.Symbol] = s
	}
	return w, nil
}

// Save writes the watchlist atomically next to its path.
func (w *Watchlist) Save() error {
	doc := document{Groups: w.Groups()}
	for _, symbol := range w.Pool() {
		doc.Stocks = append(doc.Stocks, w.stocks[symbol])
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("watchlist: marshal: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("watchlist: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(w.path)+".*")
	if err != nil {
		return fmt.Errorf("watchlist: temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("watchlist: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("watchlist: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("watchlist: replace %s: %w", w.path, err)
	}
	return nil
}

// Add registers a stock. The symbol must be new and the group must exist;
// an empty group lands in the default group.
func (w *Watchlist) Add(s Stock) error {
	if s.Symbol == "" {
		return fmt.Errorf("watchlist: symbol is required")
	}
	if _, ok := w.stocks[s.Symbol]; ok {
		return fmt.Errorf("watchlist: %s already watched", s.Symbol)
	}
	if s.Group == "" {
		s.Group = DefaultGroup
	}
	if _, ok := w.groups[s.Group]; !ok {
		return fmt.Errorf("watchlist: unknown group %q", s.Group)
	}
	if s.AddedAt.IsZero() {
		s.AddedAt = time.Now().UTC()
	}
	w.stocks[s.Symbol] = s
	return nil
}

// Remove drops a symbol, reporting whether it was present.
func (w *Watchlist) Remove(symbol string) bool {
	_, ok := w.stocks[symbol]
	delete(w.stocks, symbol)
	return ok
}

// Get returns the watched stock for symbol, if present.
func (w *Watchlist) Get(symbol string) (Stock, bool) {
	s, ok := w.stocks[symbol]
	return s, ok
}

// Move reassigns a watched symbol to another existing group.
func (w *Watchlist) Move(symbol, group string) error {
	s, ok := w.stocks[symbol]
	if !ok {
		return fmt.Errorf("watchlist: %s not watched", symbol)
	}
	if _, ok := w.groups[group]; !ok {
		return fmt.Errorf("watchlist: unknown group %q", group)
	}
	s.Group = group
	w.stocks[symbol] = s
	return nil
}

// CreateGroup adds a new named group.
func (w *Watchlist) CreateGroup(name, description string) error {
	if name == "" {
		return fmt.Errorf("watchlist: group name is required")
	}
	if _, ok := w.groups[name]; ok {
		return fmt.Errorf("watchlist: group %q already exists", name)
	}
	w.groups[name] = Group{Name: name, Description: description}
	return nil
}

// DeleteGroup removes a group; its stocks fall back to the default group.
// The default group itself cannot be deleted.
func (w *Watchlist) DeleteGroup(name string) error {
	if name == DefaultGroup {
		return fmt.Errorf("watchlist: cannot delete the %s group", DefaultGroup)
	}
	if _, ok := w.groups[name]; !ok {
		return fmt.Errorf("watchlist: unknown group %q", name)
	}
	delete(w.groups, name)
	for symbol, s := range w.stocks {
		if s.Group == name {
			s.Group = DefaultGroup
			w.stocks[symbol] = s
		}
	}
	return nil
}

// Groups lists all groups sorted by name.
func (w *Watchlist) Groups() []Group {
	out := make([]Group, 0, len(w.groups))
	for _, g := range w.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Symbols lists watched symbols in a group, sorted. An empty group name lists
// every symbol.
func (w *Watchlist) Symbols(group string) []string {
	var out []string
	for symbol, s := range w.stocks {
		if group == "" || s.Group == group {
			out = append(out, symbol)
		}
	}
	sort.Strings(out)
	return out
}

// Pool returns every watched symbol sorted, the form runs consume.
func (w *Watchlist) Pool() []string {
	return w.Symbols("")
}

// Search matches symbols and names case-insensitively by substring, results
// sorted by symbol.
func (w *Watchlist) Search(query string) []Stock {
	q := strings.ToLower(query)
	var out []Stock
	for _, s := range w.stocks {
		if strings.Contains(strings.ToLower(s.Symbol), q) ||
			strings.Contains(strings.ToLower(s.Name), q) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
