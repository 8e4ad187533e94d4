package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/meme-pulse/pkg/cache"
	"github.com/meme-pulse/pkg/config"
	"github.com/meme-pulse/pkg/market"
	"github.com/meme-pulse/pkg/twitter"
)

type deadTransport struct{}

func (deadTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, fmt.Errorf("transport down")
}

func newTestEngine(cfg *config.Config, httpClient *http.Client) *Engine {
	m := market.New(cfg, cache.New(cache.NewMemoryStore(), time.Minute), httpClient)
	tw := twitter.NewClient(cfg, httpClient)
	return NewEngine(cfg, httpClient, m, tw)
}

func TestChatNotConfigured(t *testing.T) {
	e := newTestEngine(&config.Config{}, &http.Client{Transport: deadTransport{}})

	_, err := e.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
	if e.IsEnabled() {
		t.Error("IsEnabled() = true without a key")
	}
}

func TestChatRequiresMessages(t *testing.T) {
	e := newTestEngine(&config.Config{OpenAIAPIKey: "sk-test"}, &http.Client{Transport: deadTransport{}})

	if _, err := e.Chat(context.Background(), ChatRequest{}); err == nil {
		t.Error("expected error for empty messages")
	}
}

func TestChatPrependsContextSystemMessage(t *testing.T) {
	var captured struct {
		Model    string    `json:"model"`
		Messages []Message `json:"messages"`
	}
	openai := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&captured)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"market looks frothy"}}]}`)
	}))
	defer openai.Close()

	cfg := &config.Config{
		OpenAIAPIKey: "sk-test",
		OpenAIModel:  "gpt-4o-mini",
		OpenAIURL:    openai.URL,
		AIMaxTokens:  512,
		CoinGeckoURL: "http://127.0.0.1:1", // unreachable; context sources fall back
	}
	e := newTestEngine(cfg, nil)

	msg, err := e.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "how is the market?"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if msg.Role != "assistant" || msg.Content != "market looks frothy" {
		t.Errorf("reply = %+v", msg)
	}
	if captured.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", captured.Model)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("got %d messages upstream, want system + user", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" {
		t.Errorf("first message role = %q, want system", captured.Messages[0].Role)
	}
	if !strings.Contains(captured.Messages[0].Content, "Solana memecoin trading assistant") {
		t.Errorf("system prompt missing persona: %q", captured.Messages[0].Content)
	}
	// With no live tweet source the prompt must flag the placeholder data.
	if !strings.Contains(captured.Messages[0].Content, "placeholder data") {
		t.Error("system prompt missing placeholder-data note for fallback tweets")
	}
	if captured.Messages[1].Content != "how is the market?" {
		t.Errorf("user message = %q", captured.Messages[1].Content)
	}
}

func TestChatUpstreamError(t *testing.T) {
	openai := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(429)
	}))
	defer openai.Close()

	cfg := &config.Config{
		OpenAIAPIKey: "sk-test",
		OpenAIURL:    openai.URL,
		CoinGeckoURL: "http://127.0.0.1:1",
	}
	e := newTestEngine(cfg, nil)

	_, err := e.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Error("expected error when the completion endpoint fails")
	}
	if errors.Is(err, ErrNotConfigured) {
		t.Error("upstream failure misreported as missing key")
	}
}

func TestRecentTweetsDelegates(t *testing.T) {
	e := newTestEngine(&config.Config{}, &http.Client{Transport: deadTransport{}})

	resp := e.RecentTweets(context.Background(), 4)
	if len(resp.Tweets) != 4 {
		t.Errorf("got %d tweets, want 4", len(resp.Tweets))
	}
	if !resp.UsingFallbackData {
		t.Error("expected fallback flag with no twitter credentials")
	}
}
