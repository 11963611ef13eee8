// Package sqlitestore implements the execution Ledger on SQLite.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/app"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/business/arbitrage/domain"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/apperror"
)

const schema = `
CREATE TABLE IF NOT EXISTS executions (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	pair               TEXT NOT NULL,
	buy_venue          TEXT NOT NULL,
	sell_venue         TEXT NOT NULL,
	buy_price          TEXT NOT NULL,
	sell_price         TEXT NOT NULL,
	trade_amount       TEXT NOT NULL,
	net_profit_percent TEXT NOT NULL,
	profit_amount      TEXT NOT NULL,
	profit_percent     TEXT NOT NULL,
	success            INTEGER NOT NULL,
	reason             TEXT NOT NULL DEFAULT '',
	buy_tx_ref         TEXT NOT NULL DEFAULT '',
	sell_tx_ref        TEXT NOT NULL DEFAULT '',
	mode               TEXT NOT NULL,
	executed_at        INTEGER NOT NULL,
	duration_ms        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_executions_pair ON executions(pair);
CREATE INDEX IF NOT EXISTS idx_executions_executed_at ON executions(executed_at);
`

// Ledger persists execution results in a SQLite database.
type Ledger struct {
	db *sql.DB
}

// Ensure Ledger implements the port.
var _ app.Ledger = (*Ledger)(nil)

// New opens (and if needed creates) the ledger database at dbPath.
// Use ":memory:" for an ephemeral ledger.
func New(dbPath string) (*Ledger, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create ledger dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger db: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialise schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Append inserts one execution result.
func (l *Ledger) Append(ctx context.Context, result *domain.ExecutionResult) error {
	opp := result.Opportunity

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO executions (
			pair, buy_venue, sell_venue, buy_price, sell_price, trade_amount,
			net_profit_percent, profit_amount, profit_percent,
			success, reason, buy_tx_ref, sell_tx_ref, mode, executed_at, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		opp.Pair.String(), opp.BuyVenue, opp.SellVenue,
		opp.BuyPrice.String(), opp.SellPrice.String(), opp.TradeAmountIn.String(),
		opp.NetProfitPercent.String(),
		result.ActualProfitAmount.String(), result.ActualProfitPercent.String(),
		boolToInt(result.Success), string(result.Reason),
		result.BuyTxRef, result.SellTxRef, string(result.Mode),
		result.ExecutedAt.Unix(), result.DurationMs,
	)
	if err != nil {
		return apperror.New(apperror.CodeLedgerAppendFailed, apperror.WithCause(err))
	}
	return nil
}

// Query returns the newest records matching the filter, newest first.
// A limit <= 0 means no limit.
func (l *Ledger) Query(ctx context.Context, filter app.LedgerFilter, limit int) ([]*app.LedgerRecord, error) {
	var conds []string
	var args []any

	if filter.Pair != "" {
		conds = append(conds, "pair = ?")
		args = append(args, filter.Pair)
	}
	if filter.Venue != "" {
		conds = append(conds, "(buy_venue = ? OR sell_venue = ?)")
		args = append(args, filter.Venue, filter.Venue)
	}
	if filter.OnlySuccess {
		conds = append(conds, "success = 1")
	}
	if filter.Mode != "" {
		conds = append(conds, "mode = ?")
		args = append(args, filter.Mode)
	}
	if !filter.Since.IsZero() {
		conds = append(conds, "executed_at >= ?")
		args = append(args, filter.Since.Unix())
	}

	query := `SELECT id, pair, buy_venue, sell_venue, buy_price, sell_price, trade_amount,
		net_profit_percent, profit_amount, profit_percent,
		success, reason, buy_tx_ref, sell_tx_ref, mode, executed_at, duration_ms
		FROM executions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY executed_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperror.New(apperror.CodeLedgerQueryFailed, apperror.WithCause(err))
	}
	defer rows.Close()

	var records []*app.LedgerRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, apperror.New(apperror.CodeLedgerQueryFailed, apperror.WithCause(err))
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.New(apperror.CodeLedgerQueryFailed, apperror.WithCause(err))
	}

	return records, nil
}

// PurgeOlderThan deletes records older than age and returns the count.
func (l *Ledger) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age).Unix()

	res, err := l.db.ExecContext(ctx, "DELETE FROM executions WHERE executed_at < ?", cutoff)
	if err != nil {
		return 0, apperror.New(apperror.CodeLedgerQueryFailed, apperror.WithCause(err))
	}
	return res.RowsAffected()
}

func scanRecord(rows *sql.Rows) (*app.LedgerRecord, error) {
	var rec app.LedgerRecord
	var buyPrice, sellPrice, tradeAmount, netPct, profitAmt, profitPct string
	var success int
	var executedAt int64

	err := rows.Scan(
		&rec.ID, &rec.Pair, &rec.BuyVenue, &rec.SellVenue,
		&buyPrice, &sellPrice, &tradeAmount,
		&netPct, &profitAmt, &profitPct,
		&success, &rec.Reason, &rec.BuyTxRef, &rec.SellTxRef, &rec.Mode,
		&executedAt, &rec.DurationMs,
	)
	if err != nil {
		return nil, err
	}

	rec.BuyPrice = mustDecimal(buyPrice)
	rec.SellPrice = mustDecimal(sellPrice)
	rec.TradeAmount = mustDecimal(tradeAmount)
	rec.NetProfitPercent = mustDecimal(netPct)
	rec.ProfitAmount = mustDecimal(profitAmt)
	rec.ProfitPercent = mustDecimal(profitPct)
	rec.Success = success == 1
	rec.ExecutedAt = time.Unix(executedAt, 0)

	return &rec, nil
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
