package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, strategy, start_time, end_time, trades, ending_balance, aborted, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Strategy, r.Start, r.End, r.Trades, r.EndingBalance, r.Aborted, r.Reason,
	)
	return err
}

func (j *SQLite) RecordOrder(o OrderRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO orders
		(run_id, position_id, instrument, side, state, size, submit_time, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.RunID, o.PositionID, o.Instrument, o.Side, o.State, o.Size, o.SubmitTime, o.Reason,
	)
	return err
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(record_id, run_id, position_id, instrument, side, size, entry_price, exit_price,
		 entry_time, exit_time, realized_pl, commission, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RecordID, t.RunID, t.PositionID, t.Instrument, t.Side, t.Size, t.EntryPrice,
		t.ExitPrice, t.EntryTime, t.ExitTime, t.RealizedPL, t.Commission, t.Reason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquityRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, time, balance, unrealized_pl, equity)
		VALUES (?, ?, ?, ?, ?)`,
		e.RunID, e.Time, e.Balance, e.UnrealizedPL, e.Equity,
	)
	return err
}

// ListTradesByRun returns a run's trades ordered by exit time.
func (j *SQLite) ListTradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT record_id, run_id, position_id, instrument, side, size, entry_price,
		       exit_price, entry_time, exit_time, realized_pl, commission, reason
		FROM trades WHERE run_id = ? ORDER BY exit_time, record_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.RecordID, &t.RunID, &t.PositionID, &t.Instrument, &t.Side,
			&t.Size, &t.EntryPrice, &t.ExitPrice, &t.EntryTime, &t.ExitTime,
			&t.RealizedPL, &t.Commission, &t.Reason); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListEquityByRun returns a run's equity curve in time order.
func (j *SQLite) ListEquityByRun(runID string) ([]EquityRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, balance, unrealized_pl, equity
		FROM equity WHERE run_id = ? ORDER BY time`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityRecord
	for rows.Next() {
		var e EquityRecord
		if err := rows.Scan(&e.RunID, &e.Time, &e.Balance, &e.UnrealizedPL, &e.Equity); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
