package extractor

import (
	"regexp"
	"strings"
)

var (
	solanaAddrRe = regexp.MustCompile(`\b([1-9A-HJ-NP-Za-km-z]{32,44})\b`)
	tickerRe     = regexp.MustCompile(`\$([A-Za-z][A-Za-z0-9]{1,10})\b`)

	dexscreenerRe = regexp.MustCompile(`https?://(?:www\.)?dexscreener\.com/[^\s\)\]]+`)
	birdeyeRe     = regexp.MustCompile(`https?://(?:www\.)?birdeye\.so/[^\s\)\]]+`)
	pumpfunRe     = regexp.MustCompile(`https?://(?:www\.)?pump\.fun/[^\s\)\]]+`)
	genericURLRe  = regexp.MustCompile(`https?://[^\s\)\]]+`)

	// Tickers that show up constantly but aren't memecoin calls.
	noiseTickers = map[string]bool{
		"USD": true, "EUR": true, "BTC": true, "ETH": true, "SOL": true,
		"NFT": true, "DM": true, "RT": true, "DYOR": true, "NFA": true,
		"ATH": true, "ATL": true, "APY": true, "TVL": true, "DEX": true,
		"CEX": true, "DCA": true, "FUD": true, "HODL": true, "FOMO": true,
	}

	// Words the base58 pattern catches that are never addresses.
	falsePositives = map[string]bool{
		"Twitter": true, "Telegram": true, "Discord": true,
		"https": true, "http": true, "pump": true, "solana": true,
	}
)

// Result holds everything worth keeping from one tweet's text.
type Result struct {
	Addresses    []string `json:"addresses"`     // Solana addresses (wallets or CAs)
	TokenSymbols []string `json:"token_symbols"` // $TICKER mentions
	DexLinks     []string `json:"dex_links"`
	OtherLinks   []string `json:"other_links"`
}

func (r *Result) HasContent() bool {
	return len(r.Addresses) > 0 || len(r.TokenSymbols) > 0 || len(r.DexLinks) > 0
}

// Extract pulls Solana addresses, $TICKER mentions, and dex links out of
// tweet text. Links are stripped before address matching so URL path segments
// don't turn into phantom wallets.
func Extract(text string) *Result {
	r := &Result{}

	dexLinks := concat(
		dexscreenerRe.FindAllString(text, -1),
		birdeyeRe.FindAllString(text, -1),
		pumpfunRe.FindAllString(text, -1),
	)
	r.DexLinks = dexLinks

	cleanText := text
	for _, link := range dexLinks {
		cleanText = strings.Replace(cleanText, link, " ", 1)
		// CAs embedded in dex links are worth keeping.
		if ca := addressFromLink(link); ca != "" {
			r.Addresses = appendUnique(r.Addresses, ca)
		}
	}
	for _, u := range genericURLRe.FindAllString(cleanText, -1) {
		cleanText = strings.Replace(cleanText, u, " ", 1)
		r.OtherLinks = append(r.OtherLinks, u)
	}

	for _, addr := range solanaAddrRe.FindAllString(cleanText, -1) {
		if plausibleAddress(addr) {
			r.Addresses = appendUnique(r.Addresses, addr)
		}
	}

	for _, m := range tickerRe.FindAllStringSubmatch(text, -1) {
		ticker := strings.ToUpper(m[1])
		if !noiseTickers[ticker] {
			r.TokenSymbols = appendUnique(r.TokenSymbols, ticker)
		}
	}

	return r
}

// plausibleAddress filters out all-letter words the base58 regex matches.
// Real Solana keys virtually always mix cases and digits.
func plausibleAddress(addr string) bool {
	if falsePositives[addr] {
		return false
	}
	hasUpper, hasLower, hasDigit := false, false, false
	for _, c := range addr {
		switch {
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= '0' && c <= '9':
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

func addressFromLink(url string) string {
	url = strings.TrimRight(url, "/")
	if idx := strings.Index(url, "?"); idx > 0 {
		url = url[:idx]
	}
	parts := strings.Split(url, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		seg := strings.TrimSpace(parts[i])
		if seg != "" && solanaAddrRe.MatchString(seg) && plausibleAddress(seg) {
			return seg
		}
	}
	return ""
}

func appendUnique(slice []string, val string) []string {
	for _, v := range slice {
		if v == val {
			return slice
		}
	}
	return append(slice, val)
}

func concat(slices ...[]string) []string {
	var result []string
	for _, s := range slices {
		result = append(result, s...)
	}
	return result
}
