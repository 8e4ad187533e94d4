package extractor

import (
	"reflect"
	"testing"
)

func TestExtractTickers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single ticker", "just aped $BONK", []string{"BONK"}},
		{"lowercase normalized", "loading up on $wif here", []string{"WIF"}},
		{"multiple", "$BONK and $POPCAT both running", []string{"BONK", "POPCAT"}},
		{"noise filtered", "swapped $SOL for $USD, also $BTC", nil},
		{"dedup", "$MEW $MEW $MEW", []string{"MEW"}},
		{"no tickers", "gm everyone", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text).TokenSymbols
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TokenSymbols = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractAddresses(t *testing.T) {
	ca := "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"

	r := Extract("new gem " + ca + " send it")
	if len(r.Addresses) != 1 || r.Addresses[0] != ca {
		t.Errorf("Addresses = %v, want [%s]", r.Addresses, ca)
	}

	// All-letter words that happen to match the base58 shape are dropped.
	r = Extract("check ThequickBrownfoxJumpsandrunsawayfast for info")
	if len(r.Addresses) != 0 {
		t.Errorf("phantom address extracted: %v", r.Addresses)
	}
}

func TestExtractAddressFromDexLink(t *testing.T) {
	ca := "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	text := "chart: https://dexscreener.com/solana/" + ca + " 🚀"

	r := Extract(text)
	if len(r.DexLinks) != 1 {
		t.Fatalf("DexLinks = %v", r.DexLinks)
	}
	if len(r.Addresses) != 1 || r.Addresses[0] != ca {
		t.Errorf("CA not recovered from dex link: %v", r.Addresses)
	}
}

func TestExtractLinksStrippedBeforeAddressMatch(t *testing.T) {
	// A URL path segment must not become a phantom address on its own.
	r := Extract("read https://example.com/DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263 thread")
	if len(r.Addresses) != 0 {
		t.Errorf("address leaked from generic URL: %v", r.Addresses)
	}
	if len(r.OtherLinks) != 1 {
		t.Errorf("OtherLinks = %v", r.OtherLinks)
	}
}

func TestExtractPumpFunLink(t *testing.T) {
	r := Extract("live now https://pump.fun/DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263")
	if len(r.DexLinks) != 1 {
		t.Errorf("pump.fun link missed: %v", r.DexLinks)
	}
	if !r.HasContent() {
		t.Error("HasContent = false for a tweet with a dex link")
	}
}

func TestHasContentEmpty(t *testing.T) {
	if Extract("nothing to see here").HasContent() {
		t.Error("HasContent = true for plain text")
	}
}
