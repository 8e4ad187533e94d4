package wallet

// Archetype templates. Selection hashes the address, not the derived metrics:
// the profile is stable per wallet even when upstream data is unavailable,
// which matters more for this dashboard than behavioral accuracy.
type archetype struct {
	Name        string
	Description string
	Strengths   []string
	Weaknesses  []string
}

var archetypes = []archetype{
	{
		Name:        "The Strategist",
		Description: "Plans entries and exits in advance and rarely chases pumps.",
		Strengths:   []string{"Disciplined position sizing", "Waits for confirmation before entering", "Takes profit on a schedule"},
		Weaknesses:  []string{"Misses fast movers while waiting for setups", "Can be slow to cut a thesis that stopped working"},
	},
	{
		Name:        "The Sniper",
		Description: "Hunts fresh launches and takes quick, surgical profits.",
		Strengths:   []string{"Fast execution on new pairs", "Small losses, quick exits", "Reads early volume well"},
		Weaknesses:  []string{"High fee burn from churn", "Exposed to honeypots and soft rugs"},
	},
	{
		Name:        "The Diamond Hand",
		Description: "Accumulates conviction plays and holds through drawdowns.",
		Strengths:   []string{"Unshakeable through volatility", "Catches full trend moves", "Low fee overhead"},
		Weaknesses:  []string{"Rides losers to zero", "Slow to realize profits"},
	},
	{
		Name:        "The Degen",
		Description: "Max risk, max velocity. Every launch is a lottery ticket.",
		Strengths:   []string{"First into new narratives", "Occasional outsized winners", "High market awareness"},
		Weaknesses:  []string{"No risk management to speak of", "Portfolio concentration in illiquid tokens"},
	},
	{
		Name:        "The Oracle",
		Description: "Positions before the crowd and exits into their arrival.",
		Strengths:   []string{"Strong narrative timing", "Sells into strength", "Rarely buys local tops"},
		Weaknesses:  []string{"Early entries can bleed for weeks", "Thin activity between convictions"},
	},
	{
		Name:        "The Newcomer",
		Description: "Recently active wallet still finding its style.",
		Strengths:   []string{"No bags from past cycles", "Small, cautious position sizes"},
		Weaknesses:  []string{"Unproven track record", "Susceptible to influencer calls"},
	},
	{
		Name:        "The Observer",
		Description: "Watches far more than it trades; moves only on strong signals.",
		Strengths:   []string{"Very low churn", "Avoids obvious traps", "Patient capital"},
		Weaknesses:  []string{"Long idle stretches", "Undersized winners"},
	},
	{
		Name:        "The Swing Trader",
		Description: "Trades multi-day ranges, buying fear and selling greed.",
		Strengths:   []string{"Consistent range discipline", "Balanced buy/sell ratio", "Decent hold times"},
		Weaknesses:  []string{"Breakouts leave it behind", "Range breaks hit hard"},
	},
}

var tipTable = []string{
	"Set a hard stop before entering, not after the drawdown starts.",
	"Size positions so a single rug costs under 5% of the stack.",
	"Take initial capital off the table at 2x, let the rest ride.",
	"Check liquidity depth before buying — thin books exit badly.",
	"Avoid entries in the first 10 minutes of a launch unless you're set up for it.",
	"Track your fee burn weekly; churn quietly eats small accounts.",
	"Cross-check the deployer wallet before aping a fresh contract.",
	"Don't average down on memecoins; momentum rarely comes back twice.",
	"Keep a stable reserve so a flush day is a buying day.",
	"Review your last 20 trades monthly and cut what isn't working.",
	"Mute the influencers whose calls you keep losing on.",
	"If the thesis was 'number go up', the exit plan is 'before everyone else'.",
}

// Classify picks the archetype and builds copy-trading safety for an address.
// Pure and deterministic: same address in, same profile out. The safety score
// is its own hash formula and is not reconciled with the metrics' win rate.
func Classify(address string, m Metrics) Profile {
	sum := addressSum(address)
	a := archetypes[sum%len(archetypes)]

	tips := []string{
		tipTable[sum%len(tipTable)],
		tipTable[(sum+3)%len(tipTable)],
		tipTable[(sum+7)%len(tipTable)],
	}

	score := 35 + (sum*7)%61 // 35..95
	newWallet := m.TotalTxCount < 10
	if newWallet {
		score -= 30
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	rating := "Risky"
	reasons := []string{"Erratic trade pattern", "Heavy exposure to illiquid tokens"}
	switch {
	case score >= 70:
		rating = "Safe"
		reasons = []string{"Consistent trade history", "Reasonable position sizing"}
	case score >= 40:
		rating = "Medium"
		reasons = []string{"Mixed results across recent trades", "Moderate concentration risk"}
	}
	if newWallet {
		reasons = append(reasons, "Limited history — new or low-activity wallet")
	}

	return Profile{
		TradingStyle:      a.Name,
		Description:       a.Description,
		Strengths:         a.Strengths,
		Weaknesses:        a.Weaknesses,
		Tips:              tips,
		CopyTradingSafety: CopyTradingSafety{Score: score, Rating: rating, Reasons: reasons},
		NewWallet:         newWallet,
	}
}

// deriveRisk and deriveBehavior fill the remaining heuristic sections from the
// same seed. Not validated against on-chain data; the response source field
// tells the caller how much to trust them.
func deriveRisk(address string, holdings []TokenHolding) RiskMetrics {
	sum := addressSum(address)

	diversification := "Low"
	if len(holdings) >= 5 {
		diversification = "High"
	} else if len(holdings) >= 3 {
		diversification = "Medium"
	}

	largest := 0.0
	total := 0.0
	for _, h := range holdings {
		total += h.USDValue
		if h.USDValue > largest {
			largest = h.USDValue
		}
	}
	largestPct := 100.0
	if total > 0 {
		largestPct = round2(largest / total * 100)
	}

	rug := "Low"
	if sum%3 == 1 {
		rug = "Medium"
	} else if sum%3 == 2 {
		rug = "High"
	}

	return RiskMetrics{
		RiskScore:       20 + sum%61, // 20..80
		Diversification: diversification,
		LargestPosition: largestPct,
		RugExposure:     rug,
	}
}

var dexes = []string{"Raydium", "Jupiter", "Orca", "Pump.fun", "Meteora"}

func deriveBehavior(address string, m Metrics, daily []DailyTradeStat) TradingBehavior {
	sum := addressSum(address)

	freq := "Occasional"
	switch {
	case m.TotalTxCount >= 40:
		freq = "Very active"
	case m.TotalTxCount >= 15:
		freq = "Active"
	}

	avgSize := 0.0
	if m.TotalTxCount > 0 {
		avgSize = round2(parseVolume(m.Volume) / float64(m.TotalTxCount))
	}

	startHour := sum % 18
	activeHours := hourRange(startHour, startHour+6)

	return TradingBehavior{
		Frequency:    freq,
		PreferredDex: dexes[sum%len(dexes)],
		AvgTradeSize: avgSize,
		ActiveHours:  activeHours,
		DailyStats:   daily,
	}
}
