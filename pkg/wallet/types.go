package wallet

// SourceLive / SourceFallback tag every analysis so callers can tell real
// upstream data from synthesized placeholder data. The response shape is
// identical in both cases; the tag is the only honest signal.
const (
	SourceLive     = "live"
	SourceFallback = "fallback"
)

// RawTransaction is the upstream transaction record, normalized across the
// Solscan response variants. Consumed once to derive metrics and daily stats,
// then discarded.
type RawTransaction struct {
	Signature      string          `json:"txHash"`
	BlockTime      int64           `json:"blockTime"`
	Fee            int64           `json:"fee"` // lamports
	Status         string          `json:"status"`
	TokenTransfers []TokenTransfer `json:"tokenTransfers"`
}

type TokenTransfer struct {
	Sender       string  `json:"sender"`
	Receiver     string  `json:"receiver"`
	TokenAddress string  `json:"tokenAddress"`
	TokenSymbol  string  `json:"tokenSymbol"`
	TokenAmount  float64 `json:"tokenAmount"`
}

type TokenHolding struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	USDValue float64 `json:"usdValue"`
}

type Metrics struct {
	TotalTxCount    int    `json:"totalTxCount"`
	BuyCount        int    `json:"buyCount"`
	SellCount       int    `json:"sellCount"`
	AverageHoldTime string `json:"averageHoldTime"`
	WinRate         int    `json:"winRate"`
	Volume          string `json:"volume"` // SOL, 2 decimals
	Synthesized     bool   `json:"synthesized"`
}

type DailyTradeStat struct {
	Date       string  `json:"date"` // UTC, 2006-01-02
	Trades     int     `json:"trades"`
	Volume     float64 `json:"volume"`
	ProfitLoss float64 `json:"profitLoss"` // simulated, see DeriveMetrics
	Tokens     int     `json:"tokens"`
}

type RiskMetrics struct {
	RiskScore       int     `json:"riskScore"` // 0-100
	Diversification string  `json:"diversification"`
	LargestPosition float64 `json:"largestPositionPct"`
	RugExposure     string  `json:"rugExposure"`
}

type TradingBehavior struct {
	Frequency    string           `json:"tradingFrequency"`
	PreferredDex string           `json:"preferredDex"`
	AvgTradeSize float64          `json:"avgTradeSizeSol"`
	ActiveHours  string           `json:"activeHours"`
	DailyStats   []DailyTradeStat `json:"dailyTradeStats"`
}

type CopyTradingSafety struct {
	Score   int      `json:"score"` // 0-100
	Rating  string   `json:"rating"`
	Reasons []string `json:"reasons"`
}

type Profile struct {
	TradingStyle      string            `json:"tradingStyle"`
	Description       string            `json:"description"`
	Strengths         []string          `json:"strengths"`
	Weaknesses        []string          `json:"weaknesses"`
	Tips              []string          `json:"tips"`
	CopyTradingSafety CopyTradingSafety `json:"copyTradingSafety"`
	NewWallet         bool              `json:"newWallet"`
}

type Overview struct {
	Address    string  `json:"address"`
	SolBalance float64 `json:"solBalance"`
	TokenCount int     `json:"tokenCount"`
	FirstSeen  string  `json:"firstSeen"`
	LastActive string  `json:"lastActive"`
}

// ActivityRecord is the normalized recent-transaction shape returned to the UI.
type ActivityRecord struct {
	Type      string  `json:"type"` // Receive | Send | Transaction
	Token     string  `json:"token"`
	Amount    float64 `json:"amount"`
	Timestamp int64   `json:"timestamp"`
	Status    string  `json:"status"`
	Fee       float64 `json:"fee"` // SOL
}

// Analysis is the aggregate payload for POST /analyze-wallet.
type Analysis struct {
	WalletOverview     Overview         `json:"walletOverview"`
	TokenHoldings      []TokenHolding   `json:"tokenHoldings"`
	RecentTransactions []ActivityRecord `json:"recentTransactions"`
	Metrics            Metrics          `json:"metrics"`
	RiskMetrics        RiskMetrics      `json:"riskMetrics"`
	TradingBehavior    TradingBehavior  `json:"tradingBehavior"`
	Profile            Profile          `json:"profile"`
	Source             string           `json:"source"` // live | fallback
}
