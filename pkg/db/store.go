package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS tracked_handles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    handle TEXT NOT NULL UNIQUE,
    added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS handle_tweets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    handle TEXT NOT NULL,
    tweet_id TEXT NOT NULL,
    content TEXT NOT NULL,
    token_mentions TEXT DEFAULT '[]',
    posted_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(handle, tweet_id)
);

CREATE TABLE IF NOT EXISTS analysis_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    address TEXT NOT NULL,
    trading_style TEXT,
    win_rate INTEGER,
    total_tx_count INTEGER,
    source TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tweets_handle ON handle_tweets(handle);
CREATE INDEX IF NOT EXISTS idx_history_addr ON analysis_history(address);
`

type Store struct {
	db *sql.DB
}

func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ── Tracked handles ─────────────────────────────────────────

func (s *Store) AddTrackedHandle(handle string) (int64, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return 0, fmt.Errorf("empty handle")
	}
	res, err := s.db.Exec(`INSERT INTO tracked_handles (handle) VALUES (?)
		ON CONFLICT(handle) DO NOTHING`, handle)
	if err != nil {
		return 0, err
	}
	if id, _ := res.LastInsertId(); id > 0 {
		return id, nil
	}
	var id int64
	err = s.db.QueryRow(`SELECT id FROM tracked_handles WHERE handle = ?`, handle).Scan(&id)
	return id, err
}

func (s *Store) RemoveTrackedHandle(handle string) error {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	_, err := s.db.Exec(`DELETE FROM tracked_handles WHERE handle = ?`, handle)
	return err
}

func (s *Store) GetTrackedHandles() ([]TrackedHandle, error) {
	rows, err := s.db.Query(`SELECT id, handle, added_at FROM tracked_handles ORDER BY added_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var handles []TrackedHandle
	for rows.Next() {
		var h TrackedHandle
		if err := rows.Scan(&h.ID, &h.Handle, &h.AddedAt); err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}
	return handles, rows.Err()
}

// ── Handle tweets ───────────────────────────────────────────

// InsertHandleTweet stores one polled tweet; duplicates (same handle+tweet id)
// are silently skipped so the poller can be naive about overlap.
func (s *Store) InsertHandleTweet(handle, tweetID, content string, tokenMentions []string, postedAt string) error {
	mentions, _ := json.Marshal(tokenMentions)
	_, err := s.db.Exec(`INSERT INTO handle_tweets (handle, tweet_id, content, token_mentions, posted_at)
		VALUES (?, ?, ?, ?, ?) ON CONFLICT(handle, tweet_id) DO NOTHING`,
		handle, tweetID, content, string(mentions), postedAt)
	return err
}

func (s *Store) GetTweetsForHandle(handle string, limit int) ([]HandleTweet, error) {
	rows, err := s.db.Query(`SELECT id, handle, tweet_id, content, token_mentions, posted_at, created_at
		FROM handle_tweets WHERE handle = ? ORDER BY posted_at DESC LIMIT ?`, handle, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tweets []HandleTweet
	for rows.Next() {
		var t HandleTweet
		var postedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.Handle, &t.TweetID, &t.Content, &t.TokenMentions, &postedAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		if postedAt.Valid {
			t.PostedAt = postedAt.Time
		}
		tweets = append(tweets, t)
	}
	return tweets, rows.Err()
}

// ── Analysis history ────────────────────────────────────────

func (s *Store) InsertAnalysis(address, tradingStyle string, winRate, totalTxCount int, source string) error {
	_, err := s.db.Exec(`INSERT INTO analysis_history (address, trading_style, win_rate, total_tx_count, source)
		VALUES (?, ?, ?, ?, ?)`, address, tradingStyle, winRate, totalTxCount, source)
	return err
}

func (s *Store) RecentAnalyses(limit int) ([]AnalysisRecord, error) {
	rows, err := s.db.Query(`SELECT id, address, trading_style, win_rate, total_tx_count, source, created_at
		FROM analysis_history ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []AnalysisRecord
	for rows.Next() {
		var r AnalysisRecord
		if err := rows.Scan(&r.ID, &r.Address, &r.TradingStyle, &r.WinRate, &r.TotalTxCount, &r.Source, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) GetStats() (map[string]int, error) {
	stats := map[string]int{}
	for _, table := range []string{"tracked_handles", "handle_tweets", "analysis_history"} {
		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			return nil, err
		}
		stats[table] = count
	}
	return stats, nil
}
