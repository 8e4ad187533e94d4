package wallet

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/meme-pulse/pkg/config"
)

const previewLimit = 10

// Hardcoded USD estimates for the symbols the dashboard sees most. Unknown
// symbols get a small random price — the UI needs a number, not accuracy.
var knownPrices = map[string]float64{
	"SOL":    150.0,
	"USDC":   1.0,
	"USDT":   1.0,
	"BONK":   0.000025,
	"WIF":    2.5,
	"JUP":    0.9,
	"RAY":    4.2,
	"PYTH":   0.4,
	"JTO":    3.1,
	"POPCAT": 0.8,
	"MEW":    0.004,
	"PNUT":   0.6,
	"GOAT":   0.5,
}

// Analyzer runs the whole analyze-wallet pipeline: validate, fetch the three
// resources sequentially, derive or synthesize metrics, classify, assemble.
// All state is request-scoped; the Analyzer itself only holds clients.
type Analyzer struct {
	cfg     *config.Config
	fetcher *Fetcher
	now     func() time.Time
}

func NewAnalyzer(cfg *config.Config, httpClient *http.Client) *Analyzer {
	return &Analyzer{
		cfg:     cfg,
		fetcher: NewFetcher(cfg, httpClient),
		now:     time.Now,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, address string) (*Analysis, error) {
	address = strings.TrimSpace(address)
	if !ValidAddress(address) {
		return nil, ErrInvalidAddress
	}

	// Three resources, fetched one after another. A failed resource comes
	// back empty and the synthesizer covers for it.
	account, haveAccount := a.fetcher.FetchAccount(ctx, address)
	txs := a.fetcher.FetchTransactions(ctx, address)
	raw := a.fetcher.FetchHoldings(ctx, address)

	res := &Analysis{Source: SourceFallback}

	if len(txs) > 0 {
		res.Source = SourceLive
		metrics, daily := DeriveMetrics(address, txs)
		res.Metrics = metrics
		res.RecentTransactions = normalizeTransactions(address, txs)
		res.TradingBehavior = deriveBehavior(address, metrics, daily)
	} else {
		metrics, records, daily := SynthesizeMetrics(address, a.now())
		res.Metrics = metrics
		res.RecentTransactions = records
		res.TradingBehavior = deriveBehavior(address, metrics, daily)
	}

	res.TokenHoldings = enrichHoldings(address, raw)
	res.RiskMetrics = deriveRisk(address, res.TokenHoldings)
	res.Profile = Classify(address, res.Metrics)
	res.WalletOverview = buildOverview(address, account, haveAccount, txs, res.TokenHoldings)

	log.Info().
		Str("addr", abbrev(address)).
		Str("source", res.Source).
		Int("txs", res.Metrics.TotalTxCount).
		Str("style", res.Profile.TradingStyle).
		Msg("wallet analyzed")

	return res, nil
}

// normalizeTransactions maps upstream records to the UI activity shape,
// keeping only the most recent previewLimit items. In this path the metrics
// tx count may exceed the preview length; that is intentional.
func normalizeTransactions(address string, txs []RawTransaction) []ActivityRecord {
	records := make([]ActivityRecord, 0, len(txs))
	for _, tx := range txs {
		rec := ActivityRecord{
			Type:      "Transaction",
			Timestamp: tx.BlockTime,
			Status:    "Success",
			Fee:       float64(tx.Fee) / 1e9,
		}
		if tx.Status != "" {
			rec.Status = tx.Status
		}
		for _, tt := range tx.TokenTransfers {
			if tt.Receiver == address {
				rec.Type = "Receive"
			} else if tt.Sender == address {
				rec.Type = "Send"
			}
			if tt.TokenSymbol != "" {
				rec.Token = tt.TokenSymbol
			}
			rec.Amount = tt.TokenAmount
			if rec.Type != "Transaction" {
				break
			}
		}
		if rec.Token == "" {
			rec.Token = "SOL"
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Timestamp > records[j].Timestamp })
	if len(records) > previewLimit {
		records = records[:previewLimit]
	}
	return records
}

// enrichHoldings attaches a USD value to each raw holding, synthesizing a
// small deterministic set when the holdings fetch came back empty.
func enrichHoldings(address string, raw []rawHolding) []TokenHolding {
	if len(raw) == 0 {
		sum := addressSum(address)
		symbols := []string{"SOL", "BONK", "WIF", "POPCAT"}
		holdings := make([]TokenHolding, 0, 3)
		for i := 0; i < 3; i++ {
			sym := symbols[(sum+i)%len(symbols)]
			amount := round2(float64(1+(sum+i*31)%500) * 10)
			holdings = append(holdings, TokenHolding{
				Symbol:   sym,
				Name:     sym,
				Amount:   amount,
				USDValue: round2(amount * priceFor(sym)),
			})
		}
		return holdings
	}

	holdings := make([]TokenHolding, 0, len(raw))
	for _, h := range raw {
		name := h.Name
		if name == "" {
			name = h.Symbol
		}
		holdings = append(holdings, TokenHolding{
			Symbol:   h.Symbol,
			Name:     name,
			Amount:   h.Amount,
			USDValue: round2(h.Amount * priceFor(h.Symbol)),
		})
	}
	return holdings
}

func priceFor(symbol string) float64 {
	if p, ok := knownPrices[strings.ToUpper(symbol)]; ok {
		return p
	}
	return 0.0001 + rand.Float64()*0.01
}

func buildOverview(address string, account accountInfo, haveAccount bool, txs []RawTransaction, holdings []TokenHolding) Overview {
	ov := Overview{Address: address, TokenCount: len(holdings)}

	if haveAccount {
		ov.SolBalance = round2(float64(account.Lamports) / 1e9)
	} else {
		sum := addressSum(address)
		ov.SolBalance = round2(float64(1+sum%200) / 10)
	}

	if len(txs) > 0 {
		minBT, maxBT := txs[0].BlockTime, txs[0].BlockTime
		for _, tx := range txs {
			if tx.BlockTime > 0 && tx.BlockTime < minBT {
				minBT = tx.BlockTime
			}
			if tx.BlockTime > maxBT {
				maxBT = tx.BlockTime
			}
		}
		ov.FirstSeen = time.Unix(minBT, 0).UTC().Format("2006-01-02")
		ov.LastActive = time.Unix(maxBT, 0).UTC().Format("2006-01-02")
	} else {
		sum := addressSum(address)
		now := time.Now().UTC()
		ov.FirstSeen = now.AddDate(0, 0, -(30 + sum%300)).Format("2006-01-02")
		ov.LastActive = now.AddDate(0, 0, -(sum % 7)).Format("2006-01-02")
	}
	return ov
}

func parseVolume(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func hourRange(start, end int) string {
	return fmt.Sprintf("%02d:00-%02d:00 UTC", start%24, end%24)
}
