package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`
		SELECT trade_id, symbol, side, quantity, price, commission, time, status, reason
		FROM trades
		WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesBetween returns trades with fill time in [start, end), oldest
// first.
func (j *SQLite) ListTradesBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, symbol, side, quantity, price, commission, time, status, reason
		FROM trades
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityBetween returns equity points with time in [start, end), oldest
// first.
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, cash, total_value
		FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var (
			rec        EquitySnapshot
			cash       string
			totalValue string
		)
		if err := rows.Scan(&rec.Time, &cash, &totalValue); err != nil {
			return nil, err
		}
		if rec.Cash, err = decimal.NewFromString(cash); err != nil {
			return nil, fmt.Errorf("bad cash %q: %w", cash, err)
		}
		if rec.TotalValue, err = decimal.NewFromString(totalValue); err != nil {
			return nil, fmt.Errorf("bad total_value %q: %w", totalValue, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(row scanner) (TradeRecord, error) {
	var (
		rec        TradeRecord
		price      string
		commission string
	)
	if err := row.Scan(
		&rec.TradeID,
		&rec.Symbol,
		&rec.Side,
		&rec.Quantity,
		&price,
		&commission,
		&rec.Time,
		&rec.Status,
		&rec.Reason,
	); err != nil {
		return TradeRecord{}, err
	}

	var err error
	if rec.Price, err = decimal.NewFromString(price); err != nil {
		return TradeRecord{}, fmt.Errorf("bad price %q: %w", price, err)
	}
	if rec.Commission, err = decimal.NewFromString(commission); err != nil {
		return TradeRecord{}, fmt.Errorf("bad commission %q: %w", commission, err)
	}
	return rec, nil
}
