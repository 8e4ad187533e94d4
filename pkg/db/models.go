package db

import "time"

type TrackedHandle struct {
	ID      int64     `json:"id"`
	Handle  string    `json:"handle"`
	AddedAt time.Time `json:"added_at"`
}

type HandleTweet struct {
	ID            int64     `json:"id"`
	Handle        string    `json:"handle"`
	TweetID       string    `json:"tweet_id"`
	Content       string    `json:"content"`
	TokenMentions string    `json:"token_mentions"` // JSON array
	PostedAt      time.Time `json:"posted_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// AnalysisRecord is one row of wallet-analysis history, enough for the
// dashboard's "recently analyzed" list without re-running the pipeline.
type AnalysisRecord struct {
	ID           int64     `json:"id"`
	Address      string    `json:"address"`
	TradingStyle string    `json:"trading_style"`
	WinRate      int       `json:"win_rate"`
	TotalTxCount int       `json:"total_tx_count"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
}
