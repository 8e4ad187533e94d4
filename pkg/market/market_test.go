package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/meme-pulse/pkg/cache"
	"github.com/meme-pulse/pkg/config"
)

var perfRe = regexp.MustCompile(`^[+-]\d+\.\d%$`)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// newTestService backs the service with a counting CoinGecko stub and a
// steppable clock shared by the service and its cache.
func newTestService(t *testing.T, ttl time.Duration) (*Service, *fakeClock, *int64) {
	t.Helper()
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		fmt.Fprint(w, `{"solana":{"usd":150.25,"usd_24h_change":3.2}}`)
	}))
	t.Cleanup(srv.Close)

	clock := newFakeClock()
	cfg := &config.Config{CoinGeckoURL: srv.URL}
	s := New(cfg, cache.NewWithClock(cache.NewMemoryStore(), ttl, clock.Now), nil)
	s.now = clock.Now
	return s, clock, &calls
}

func TestQuerySentimentCached(t *testing.T) {
	s, _, calls := newTestService(t, 5*time.Minute)
	req := Request{QueryType: QuerySentiment}

	first, err := s.Query(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Query(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	if n := atomic.LoadInt64(calls); n != 1 {
		t.Errorf("upstream called %d times for two identical queries, want 1", n)
	}
	sent, ok := first.(Sentiment)
	if !ok {
		t.Fatalf("unexpected result type %T", first)
	}
	if sent.Source != "live" {
		t.Errorf("Source = %q, want live", sent.Source)
	}
	if sent.SolPrice != 150.25 {
		t.Errorf("SolPrice = %v", sent.SolPrice)
	}
	if !reflect.DeepEqual(second, first) {
		t.Error("cached value differs from original")
	}
}

func TestQueryRefetchesAfterTTL(t *testing.T) {
	s, clock, calls := newTestService(t, 5*time.Minute)
	req := Request{QueryType: QuerySentiment}

	s.Query(context.Background(), req)
	clock.Advance(6 * time.Minute)
	s.Query(context.Background(), req)

	if n := atomic.LoadInt64(calls); n != 2 {
		t.Errorf("upstream called %d times across the TTL boundary, want 2", n)
	}
}

func TestQueryKeySeparatesTickers(t *testing.T) {
	s, _, _ := newTestService(t, 5*time.Minute)

	a, _ := s.Query(context.Background(), Request{QueryType: QueryPumpFun, TokenTicker: "bonk"})
	b, _ := s.Query(context.Background(), Request{QueryType: QueryPumpFun, TokenTicker: "wif"})

	ca := a.(PumpFunChart)
	cb := b.(PumpFunChart)
	if ca.Ticker == cb.Ticker {
		t.Error("different tickers collided in the cache")
	}
	if ca.Ticker != "BONK" {
		t.Errorf("ticker not uppercased: %q", ca.Ticker)
	}
}

func TestSentimentFallbackOnUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	cfg := &config.Config{CoinGeckoURL: srv.URL}
	s := New(cfg, cache.New(cache.NewMemoryStore(), time.Minute), nil)

	res, err := s.Query(context.Background(), Request{QueryType: QuerySentiment})
	if err != nil {
		t.Fatal(err)
	}
	sent := res.(Sentiment)
	if sent.Source != "fallback" {
		t.Errorf("Source = %q, want fallback", sent.Source)
	}
	if sent.SentimentScore < 0 || sent.SentimentScore > 100 {
		t.Errorf("SentimentScore = %d out of range", sent.SentimentScore)
	}
	if sent.OverallSentiment == "" {
		t.Error("empty sentiment label")
	}
}

func TestFallbackMoversShape(t *testing.T) {
	for i := 0; i < 20; i++ {
		movers := fallbackMovers()
		if len(movers) < 5 || len(movers) > 10 {
			t.Fatalf("got %d movers, want 5..10", len(movers))
		}
		seen := map[string]bool{}
		for _, m := range movers {
			if !perfRe.MatchString(m.Performance24h) {
				t.Errorf("performance %q does not match %s", m.Performance24h, perfRe)
			}
			if seen[m.Symbol] {
				t.Errorf("duplicate symbol %q", m.Symbol)
			}
			seen[m.Symbol] = true
			if m.Price <= 0 || m.VolumeUSD <= 0 {
				t.Errorf("non-positive price/volume: %+v", m)
			}
		}
	}
}

func TestMoversWrappedInEnvelope(t *testing.T) {
	s, _, _ := newTestService(t, time.Minute)
	res, err := s.Query(context.Background(), Request{QueryType: QueryMovers})
	if err != nil {
		t.Fatal(err)
	}
	wrapped, ok := res.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected type %T", res)
	}
	if _, ok := wrapped["marketMovers"]; !ok {
		t.Error("movers response missing marketMovers key")
	}
}

func TestPumpFunChartDeterministic(t *testing.T) {
	s, _, _ := newTestService(t, time.Minute)

	a := s.pumpFunChart("BONK", "24h")
	b := s.pumpFunChart("BONK", "24h")

	if len(a.Candles) != 48 {
		t.Fatalf("got %d candles, want 48", len(a.Candles))
	}
	for i := range a.Candles {
		if a.Candles[i] != b.Candles[i] {
			t.Fatalf("candle %d differs for the same ticker", i)
		}
	}
	for _, c := range a.Candles {
		if c.High < c.Low {
			t.Errorf("candle high %v below low %v", c.High, c.Low)
		}
		if c.High < c.Open || c.High < c.Close {
			t.Errorf("high %v below open/close %v/%v", c.High, c.Open, c.Close)
		}
	}

	other := s.pumpFunChart("WIF", "24h")
	if other.Candles[0] == a.Candles[0] {
		t.Error("different tickers produced identical first candles")
	}
}

func TestPumpFunChartDefaults(t *testing.T) {
	s, _, _ := newTestService(t, time.Minute)
	c := s.pumpFunChart("", "")
	if c.Ticker != "PUMP" {
		t.Errorf("default ticker = %q", c.Ticker)
	}
	if c.Timeframe != "24h" {
		t.Errorf("default timeframe = %q", c.Timeframe)
	}
	if c.Source != "fallback" {
		t.Errorf("Source = %q, want fallback", c.Source)
	}
}
