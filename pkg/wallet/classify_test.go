package wallet

import (
	"reflect"
	"testing"
)

func TestClassifyDeterministic(t *testing.T) {
	m := Metrics{TotalTxCount: 25, WinRate: 60}
	p1 := Classify(testAddr, m)
	p2 := Classify(testAddr, m)
	if !reflect.DeepEqual(p1, p2) {
		t.Errorf("profiles differ across calls:\n%+v\n%+v", p1, p2)
	}
	if p1.TradingStyle == "" {
		t.Error("empty trading style")
	}
	if len(p1.Tips) != 3 {
		t.Errorf("got %d tips, want 3", len(p1.Tips))
	}
}

func TestClassifySafetyBounds(t *testing.T) {
	addrs := []string{
		"So11111111111111111111111111111111111111112",
		"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		"4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T",
		"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
	}
	for _, addr := range addrs {
		for _, txCount := range []int{0, 5, 10, 100} {
			p := Classify(addr, Metrics{TotalTxCount: txCount})
			s := p.CopyTradingSafety
			if s.Score < 0 || s.Score > 100 {
				t.Errorf("addr %s txs %d: score %d out of [0,100]", addr, txCount, s.Score)
			}
			switch {
			case s.Score >= 70 && s.Rating != "Safe":
				t.Errorf("score %d rated %q, want Safe", s.Score, s.Rating)
			case s.Score >= 40 && s.Score < 70 && s.Rating != "Medium":
				t.Errorf("score %d rated %q, want Medium", s.Score, s.Rating)
			case s.Score < 40 && s.Rating != "Risky":
				t.Errorf("score %d rated %q, want Risky", s.Score, s.Rating)
			}
			if len(s.Reasons) == 0 {
				t.Error("safety must always carry reasons")
			}
		}
	}
}

func TestClassifyNewWalletPenalty(t *testing.T) {
	established := Classify(testAddr, Metrics{TotalTxCount: 50})
	fresh := Classify(testAddr, Metrics{TotalTxCount: 5})

	if fresh.CopyTradingSafety.Score > established.CopyTradingSafety.Score {
		t.Errorf("new wallet score %d exceeds established %d",
			fresh.CopyTradingSafety.Score, established.CopyTradingSafety.Score)
	}
	if !fresh.NewWallet {
		t.Error("wallet with <10 txs must be flagged as new")
	}
	if established.NewWallet {
		t.Error("wallet with 50 txs flagged as new")
	}

	found := false
	for _, r := range fresh.CopyTradingSafety.Reasons {
		if r == "Limited history — new or low-activity wallet" {
			found = true
		}
	}
	if !found {
		t.Errorf("new wallet reasons missing limited-history note: %v", fresh.CopyTradingSafety.Reasons)
	}
}

func TestDeriveRiskDiversification(t *testing.T) {
	tests := []struct {
		name     string
		holdings []TokenHolding
		want     string
	}{
		{"empty", nil, "Low"},
		{"two holdings", make([]TokenHolding, 2), "Low"},
		{"three holdings", make([]TokenHolding, 3), "Medium"},
		{"five holdings", make([]TokenHolding, 5), "High"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := deriveRisk(testAddr, tt.holdings)
			if r.Diversification != tt.want {
				t.Errorf("Diversification = %q, want %q", r.Diversification, tt.want)
			}
			if r.RiskScore < 20 || r.RiskScore > 80 {
				t.Errorf("RiskScore = %d, want 20..80", r.RiskScore)
			}
		})
	}
}

func TestDeriveBehaviorFrequency(t *testing.T) {
	tests := []struct {
		txCount int
		want    string
	}{
		{5, "Occasional"},
		{15, "Active"},
		{40, "Very active"},
	}
	for _, tt := range tests {
		b := deriveBehavior(testAddr, Metrics{TotalTxCount: tt.txCount, Volume: "100.00"}, nil)
		if b.Frequency != tt.want {
			t.Errorf("txCount %d: Frequency = %q, want %q", tt.txCount, b.Frequency, tt.want)
		}
		if b.PreferredDex == "" {
			t.Error("empty preferred dex")
		}
	}
}
