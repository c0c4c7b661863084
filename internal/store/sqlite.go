package store

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sql.DB
}

func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Create events table
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS events(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts REAL,
		level TEXT,
		code TEXT,
		msg TEXT,
		meta TEXT
	)`); err != nil {
		return nil, err
	}

	// Create runs table with full training run metadata
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts REAL,
		run_id TEXT,
		trace_id TEXT,
		worker_id TEXT,
		source TEXT,
		method TEXT,
		model_name TEXT,
		dataset TEXT,
		params_json TEXT,
		steps INTEGER,
		final_loss REAL,
		mean_reward REAL,
		dur_ms REAL,
		status TEXT,
		error TEXT
	)`); err != nil {
		return nil, err
	}

	// Create steps table, one row per optimizer/policy-update step
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS steps(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts REAL,
		run_id TEXT,
		step INTEGER,
		epoch INTEGER,
		loss REAL,
		mean_reward REAL,
		reward_std REAL,
		max_reward REAL,
		tokens_in INTEGER,
		tokens_out INTEGER,
		dur_ms REAL
	)`); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

func (db *DB) Event(level, code, msg string, meta map[string]interface{}) {
	m := ""
	if meta != nil {
		b, _ := json.Marshal(meta)
		m = string(b)
	}
	_, _ = db.Exec(`INSERT INTO events(ts,level,code,msg,meta) VALUES(?,?,?,?,?)`,
		float64(time.Now().UnixNano())/1e9, level, code, msg, m)
}

func (db *DB) Run(start time.Time, runID, traceID, workerID, source, method, modelName, dataset, params string,
	steps int, finalLoss, meanReward float64, dur time.Duration, status, errStr string) {
	_, _ = db.Exec(`INSERT INTO runs(
		ts, run_id, trace_id, worker_id, source, method, model_name, dataset, params_json, steps, final_loss, mean_reward, dur_ms, status, error)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		float64(start.UnixNano())/1e9, runID, traceID, workerID, source, method, modelName, dataset, params, steps, finalLoss, meanReward, float64(dur.Milliseconds()), status, errStr)
}

func (db *DB) Step(ts time.Time, runID string, step, epoch int, loss, meanReward, rewardStd, maxReward float64,
	tokensIn, tokensOut int, dur time.Duration) {
	_, _ = db.Exec(`INSERT INTO steps(
		ts, run_id, step, epoch, loss, mean_reward, reward_std, max_reward, tokens_in, tokens_out, dur_ms)
		VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		float64(ts.UnixNano())/1e9, runID, step, epoch, loss, meanReward, rewardStd, maxReward, tokensIn, tokensOut, float64(dur.Milliseconds()))
}
