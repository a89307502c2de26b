package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"VolEdge/internal/domain/models"
	pkgch "VolEdge/pkg/clickhouse"
	applogger "VolEdge/pkg/logger"
	"VolEdge/pkg/util"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// MovesSchema creates the earnings move table read by CHMoveStore.
func MovesSchema(table string) []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            ticker        LowCardinality(String),
            earnings_date Date,
            move_pct      Float64
        ) ENGINE = ReplacingMergeTree
        ORDER BY (ticker, earnings_date)
    `, table)}
}

// CHMoveStore reads historical earnings moves from ClickHouse.
// It implements service.HistoryProvider.
type CHMoveStore struct {
	db    *sql.DB
	table string
	limit int
	l     *applogger.Logger
}

func NewCHMoveStore(ch *pkgch.Client, table string, limit int) (*CHMoveStore, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	return &CHMoveStore{db: ch.DB(), table: table, limit: limit, l: applogger.Nop()}, nil
}

// SetLogger injects a structured logger.
func (s *CHMoveStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

// GetMoves returns the latest recorded moves for ticker, oldest first.
func (s *CHMoveStore) GetMoves(ctx context.Context, ticker string) ([]models.HistoricalMoveSample, error) {
	start := time.Now()
	ticker = util.NormalizeTicker(ticker)

	const qtpl = `
        SELECT ticker, earnings_date, move_pct
        FROM %s
        WHERE ticker = ?
        ORDER BY earnings_date DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, s.table), ticker, s.limit)
	if err != nil {
		s.l.Error("clickhouse get_moves query error",
			applogger.String("table", s.table),
			applogger.String("ticker", ticker),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get moves: %w", err)
	}
	defer rows.Close()

	out := make([]models.HistoricalMoveSample, 0, s.limit)
	for rows.Next() {
		var m models.HistoricalMoveSample
		if err := rows.Scan(&m.Ticker, &m.EarningsDate, &m.MovePct); err != nil {
			s.l.Error("clickhouse get_moves scan error",
				applogger.String("ticker", ticker),
				applogger.Error(err),
			)
			return nil, fmt.Errorf("scan move: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	// reverse to ASC
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	s.l.Debug("clickhouse get_moves ok",
		applogger.String("ticker", ticker),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}
