package market

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

// WalkSource generates synthetic quotes and signals from a seeded random walk.
// It exists for demos and smoke tests when no real data provider is wired up;
// the same seed, symbols and date range always produce the same series, so
// runs against it stay reproducible. Weekends are non-trading days.
type WalkSource struct {
	quotes  map[string]map[string]Quote
	signals map[string]map[string]Signal
}

// NewWalkSource precomputes a walk for each symbol across [start, end].
func NewWalkSource(seed int64, symbols []string, start, end time.Time) *WalkSource {
	s := &WalkSource{
		quotes:  make(map[string]map[string]Quote),
		signals: make(map[string]map[string]Signal),
	}

	for _, symbol := range symbols {
		rng := rand.New(rand.NewSource(seed ^ symbolSeed(symbol)))

		// Base price in roughly the 10..110 range, per-symbol volatility.
		price := 10 + rng.Float64()*100
		vol := 0.01 + rng.Float64()*0.02

		for day := Day(start); !day.After(Day(end)); day = day.AddDate(0, 0, 1) {
			ret := rng.NormFloat64() * vol
			score := 30 + rng.Float64()*65

			if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
				continue
			}

			open := price
			price *= 1 + ret
			if price < 1 {
				price = 1
			}
			closePx := price
			high := math.Max(open, closePx) * (1 + rng.Float64()*0.01)
			low := math.Min(open, closePx) * (1 - rng.Float64()*0.01)

			key := day.Format("2006-01-02")
			if s.quotes[key] == nil {
				s.quotes[key] = make(map[string]Quote)
				s.signals[key] = make(map[string]Signal)
			}
			s.quotes[key][symbol] = Quote{
				Date:   day,
				Open:   decimal.NewFromFloat(open).Round(2),
				High:   decimal.NewFromFloat(high).Round(2),
				Low:    decimal.NewFromFloat(low).Round(2),
				Close:  decimal.NewFromFloat(closePx).Round(2),
				Volume: 100_000 + rng.Int63n(900_000),
			}
			s.signals[key][symbol] = Signal{
				Score:     score,
				Action:    walkAction(score),
				RiskLevel: walkRisk(vol),
			}
		}
	}
	return s
}

func symbolSeed(symbol string) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return int64(h.Sum64())
}

func walkAction(score float64) Action {
	switch {
	case score >= 70:
		return ActionBuy
	case score <= 40:
		return ActionSell
	default:
		return ActionHold
	}
}

func walkRisk(vol float64) RiskLevel {
	switch {
	case vol < 0.017:
		return RiskLow
	case vol < 0.024:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func (s *WalkSource) Quote(_ context.Context, symbol string, date time.Time) (Quote, error) {
	day := s.quotes[Day(date).Format("2006-01-02")]
	if day == nil {
		return Quote{}, ErrNoQuote
	}
	q, ok := day[symbol]
	if !ok {
		return Quote{}, ErrNoQuote
	}
	return q, nil
}

func (s *WalkSource) Signal(_ context.Context, symbol string, date time.Time) (Signal, error) {
	day := s.signals[Day(date).Format("2006-01-02")]
	if day == nil {
		return Signal{}, ErrNoSignal
	}
	sig, ok := day[symbol]
	if !ok {
		return Signal{}, ErrNoSignal
	}
	return sig, nil
}
