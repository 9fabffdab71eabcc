package market

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CSVSource replays daily quotes from a CSV file with rows of the form
//
//	date,symbol,open,high,low,close,volume
//
// A header row is detected and skipped. Dates are YYYY-MM-DD. The whole file
// is loaded up front so lookups are cheap and deterministic.
type CSVSource struct {
	quotes map[string]map[string]Quote // day -> symbol -> quote
}

// LoadCSVSource reads the given file into memory.
func LoadCSVSource(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open quotes csv: %w", err)
	}
	defer f.Close()

	s := &CSVSource{quotes: make(map[string]map[string]Quote)}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	line := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			return s, nil
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "date") {
			continue
		}
		if err := s.addRow(row); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
}

func (s *CSVSource) addRow(row []string) error {
	if len(row) < 7 {
		return fmt.Errorf("bad row (need date,symbol,open,high,low,close,volume): %v", row)
	}

	day, err := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
	if err != nil {
		return fmt.Errorf("bad date %q: %w", row[0], err)
	}
	symbol := strings.TrimSpace(row[1])

	var px [4]decimal.Decimal
	for i, name := range []string{"open", "high", "low", "close"} {
		d, err := decimal.NewFromString(strings.TrimSpace(row[2+i]))
		if err != nil {
			return fmt.Errorf("bad %s %q: %w", name, row[2+i], err)
		}
		px[i] = d
	}

	vol, err := strconv.ParseInt(strings.TrimSpace(row[6]), 10, 64)
	if err != nil {
		return fmt.Errorf("bad volume %q: %w", row[6], err)
	}

	key := day.Format("2006-01-02")
	if s.quotes[key] == nil {
		s.quotes[key] = make(map[string]Quote)
	}
	s.quotes[key][symbol] = Quote{
		Date:   Day(day),
		Open:   px[0],
		High:   px[1],
		Low:    px[2],
		Close:  px[3],
		Volume: vol,
	}
	return nil
}

func (s *CSVSource) Quote(_ context.Context, symbol string, date time.Time) (Quote, error) {
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

// CSVSignals replays recommendation signals from a CSV file with rows
//
//	date,symbol,score,action,risk
//
// so a backtest can be driven from recorded analyst output.
type CSVSignals struct {
	signals map[string]map[string]Signal
}

// LoadCSVSignals reads the given file into memory.
func LoadCSVSignals(path string) (*CSVSignals, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open signals csv: %w", err)
	}
	defer f.Close()

	s := &CSVSignals{signals: make(map[string]map[string]Signal)}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	line := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			return s, nil
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "date") {
			continue
		}
		if len(row) < 5 {
			return nil, fmt.Errorf("line %d: bad row (need date,symbol,score,action,risk): %v", line, row)
		}

		day, err := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad date %q: %w", line, row[0], err)
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad score %q: %w", line, row[2], err)
		}

		key := day.Format("2006-01-02")
		if s.signals[key] == nil {
			s.signals[key] = make(map[string]Signal)
		}
		s.signals[key][strings.TrimSpace(row[1])] = Signal{
			Score:     score,
			Action:    Action(strings.ToUpper(strings.TrimSpace(row[3]))),
			RiskLevel: RiskLevel(strings.ToLower(strings.TrimSpace(row[4]))),
		}
	}
}

func (s *CSVSignals) Signal(_ context.Context, symbol string, date time.Time) (Signal, error) {
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
