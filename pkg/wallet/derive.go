package wallet

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"
)

// DeriveMetrics computes aggregate stats from a non-empty transaction list.
// Buy/sell direction comes from token transfer endpoints; volume is the fee
// sum in SOL with a hash-derived floor when fees round to zero. Win rate is a
// hash-seeded placeholder capped at 95 — there is no realized-PnL source, so
// the number is decorative and stable per address.
func DeriveMetrics(address string, txs []RawTransaction) (Metrics, []DailyTradeStat) {
	sum := addressSum(address)

	buyCount, sellCount := 0, 0
	volume := 0.0
	minBT, maxBT := int64(math.MaxInt64), int64(0)

	for _, tx := range txs {
		volume += float64(tx.Fee) / 1e9
		if tx.BlockTime > 0 {
			if tx.BlockTime < minBT {
				minBT = tx.BlockTime
			}
			if tx.BlockTime > maxBT {
				maxBT = tx.BlockTime
			}
		}
		for _, tt := range tx.TokenTransfers {
			if tt.Receiver == address {
				buyCount++
				break
			}
		}
		for _, tt := range tx.TokenTransfers {
			if tt.Sender == address {
				sellCount++
				break
			}
		}
	}

	if volume == 0 {
		volume = float64(5 + sum%45)
	}

	ageDays := 1
	if maxBT > minBT {
		ageDays = int(math.Ceil(float64(maxBT-minBT) / 86400))
		if ageDays < 1 {
			ageDays = 1
		}
	}
	holdDays := clamp(float64(ageDays)/3, 0.5, 7)

	winRate := 45 + sum%30 + len(txs)%10
	if winRate > 95 {
		winRate = 95
	}

	m := Metrics{
		TotalTxCount:    len(txs),
		BuyCount:        buyCount,
		SellCount:       sellCount,
		AverageHoldTime: fmt.Sprintf("%.1f days", holdDays),
		WinRate:         winRate,
		Volume:          fmt.Sprintf("%.2f", volume),
	}
	return m, dailyStats(txs)
}

// dailyStats groups transactions by UTC date and keeps the 7 most recent days
// with activity. Per-day profit/loss is simulated (random in [-1,1] times a
// tenth of the day's volume) — there is no cost-basis data to do better.
func dailyStats(txs []RawTransaction) []DailyTradeStat {
	type bucket struct {
		trades int
		volume float64
		tokens map[string]bool
	}
	byDay := map[string]*bucket{}
	for _, tx := range txs {
		if tx.BlockTime <= 0 {
			continue
		}
		day := time.Unix(tx.BlockTime, 0).UTC().Format("2006-01-02")
		b := byDay[day]
		if b == nil {
			b = &bucket{tokens: map[string]bool{}}
			byDay[day] = b
		}
		b.trades++
		b.volume += float64(tx.Fee) / 1e9
		for _, tt := range tx.TokenTransfers {
			if tt.TokenAddress != "" {
				b.tokens[tt.TokenAddress] = true
			}
		}
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	if len(days) > 7 {
		days = days[:7]
	}

	stats := make([]DailyTradeStat, 0, len(days))
	for _, d := range days {
		b := byDay[d]
		stats = append(stats, DailyTradeStat{
			Date:       d,
			Trades:     b.trades,
			Volume:     round2(b.volume),
			ProfitLoss: round2((rand.Float64()*2 - 1) * b.volume * 0.1),
			Tokens:     len(b.tokens),
		})
	}
	return stats
}

// SynthesizeMetrics covers the no-data path: both transaction providers
// failed, or the wallet is brand new. Every value is derived from the address
// sum so repeated calls agree, and the activity list length always equals
// TotalTxCount so the preview never contradicts the headline number.
func SynthesizeMetrics(address string, now time.Time) (Metrics, []ActivityRecord, []DailyTradeStat) {
	sum := addressSum(address)

	txCount := 3 + sum%8 // 3..10
	winRate := 45 + sum%30
	if winRate > 95 {
		winRate = 95
	}
	volume := float64(10+sum%90) + float64(sum%100)/100
	holdDays := clamp(0.5+float64(sum%65)/10, 0.5, 7)

	m := Metrics{
		TotalTxCount:    txCount,
		BuyCount:        txCount / 2,
		SellCount:       txCount - txCount/2,
		AverageHoldTime: fmt.Sprintf("%.1f days", holdDays),
		WinRate:         winRate,
		Volume:          fmt.Sprintf("%.2f", volume),
		Synthesized:     true,
	}

	tokens := []string{"BONK", "WIF", "POPCAT", "MEW", "PNUT", "GOAT"}
	records := make([]ActivityRecord, 0, txCount)
	for i := 0; i < txCount; i++ {
		typ := "Receive"
		if (sum+i)%2 == 1 {
			typ = "Send"
		}
		records = append(records, ActivityRecord{
			Type:      typ,
			Token:     tokens[(sum+i)%len(tokens)],
			Amount:    round2(volume / float64(txCount) * (0.5 + float64((sum+i*13)%100)/100)),
			Timestamp: now.Add(-time.Duration(i*7+sum%5) * time.Hour).Unix(),
			Status:    "Success",
			Fee:       0.000005,
		})
	}

	stats := []DailyTradeStat{}
	for i := 0; i < 3; i++ {
		dayVol := round2(volume / 3)
		stats = append(stats, DailyTradeStat{
			Date:       now.AddDate(0, 0, -i).UTC().Format("2006-01-02"),
			Trades:     1 + (sum+i)%3,
			Volume:     dayVol,
			ProfitLoss: round2((rand.Float64()*2 - 1) * dayVol * 0.1),
			Tokens:     1 + (sum+i)%2,
		})
	}

	return m, records, stats
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
