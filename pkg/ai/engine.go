package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/meme-pulse/pkg/config"
	"github.com/meme-pulse/pkg/market"
	"github.com/meme-pulse/pkg/twitter"
	"github.com/meme-pulse/pkg/upstream"
)

// ErrNotConfigured surfaces as a 500: unlike the data endpoints there is no
// sensible fabricated fallback for a chat completion.
var ErrNotConfigured = errors.New("OPENAI_API_KEY not configured")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages []Message `json:"messages"`
	Type     string    `json:"type"`
	Action   string    `json:"action"`
	Count    int       `json:"count"`
}

// Engine answers /ai-chat. Before each completion it fans out to four context
// sources concurrently — sentiment, trending, movers, recent tweets — and
// folds whatever succeeded into the system prompt. A failed source just means
// less context, never a failed chat.
type Engine struct {
	cfg     *config.Config
	client  *upstream.Client
	market  *market.Service
	twitter *twitter.Client
}

func NewEngine(cfg *config.Config, httpClient *http.Client, m *market.Service, tw *twitter.Client) *Engine {
	return &Engine{
		cfg:     cfg,
		client:  upstream.NewClient(httpClient),
		market:  m,
		twitter: tw,
	}
}

func (e *Engine) IsEnabled() bool {
	return e.cfg.OpenAIAPIKey != ""
}

// RecentTweets serves the action=getRecentTweets branch of /ai-chat.
func (e *Engine) RecentTweets(ctx context.Context, count int) twitter.Response {
	return e.twitter.Handle(ctx, twitter.Request{Action: twitter.ActionRecentTweets, Count: count})
}

func (e *Engine) Chat(ctx context.Context, req ChatRequest) (Message, error) {
	if !e.IsEnabled() {
		return Message{}, ErrNotConfigured
	}
	if len(req.Messages) == 0 {
		return Message{}, fmt.Errorf("messages required")
	}

	system := Message{Role: "system", Content: e.buildContext(ctx)}
	messages := append([]Message{system}, req.Messages...)

	content, err := e.complete(ctx, messages)
	if err != nil {
		return Message{}, err
	}
	return Message{Role: "assistant", Content: content}, nil
}

// buildContext gathers the four sources concurrently. The market calls go
// through the shared cache, so most chats pay for at most the tweet fetch.
func (e *Engine) buildContext(ctx context.Context) string {
	var sentiment, trending, movers, tweets string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if v, err := e.market.Query(gctx, market.Request{QueryType: market.QuerySentiment}); err == nil {
			sentiment = compact(v)
		}
		return nil
	})
	g.Go(func() error {
		if v, err := e.market.Query(gctx, market.Request{QueryType: market.QueryTrending}); err == nil {
			trending = compact(v)
		}
		return nil
	})
	g.Go(func() error {
		if v, err := e.market.Query(gctx, market.Request{QueryType: market.QueryMovers}); err == nil {
			movers = compact(v)
		}
		return nil
	})
	g.Go(func() error {
		resp := e.twitter.Handle(gctx, twitter.Request{Action: twitter.ActionRecentTweets, Count: 5})
		var lines []string
		for _, t := range resp.Tweets {
			lines = append(lines, fmt.Sprintf("@%s: %s", t.Username, t.Text))
		}
		tweets = strings.Join(lines, "\n")
		if resp.UsingFallbackData {
			tweets += "\n(note: tweets above are placeholder data)"
		}
		return nil
	})
	_ = g.Wait()

	var b strings.Builder
	b.WriteString("You are a Solana memecoin trading assistant for a market dashboard. ")
	b.WriteString("Answer concisely. Never present the data below as financial advice.\n")
	if sentiment != "" {
		b.WriteString("\nMARKET SENTIMENT:\n" + sentiment + "\n")
	}
	if trending != "" {
		b.WriteString("\nTRENDING TOKENS:\n" + trending + "\n")
	}
	if movers != "" {
		b.WriteString("\nTOP MOVERS:\n" + movers + "\n")
	}
	if tweets != "" {
		b.WriteString("\nRECENT TWEETS:\n" + tweets + "\n")
	}
	return b.String()
}

func (e *Engine) complete(ctx context.Context, messages []Message) (string, error) {
	payload := map[string]interface{}{
		"model":      e.cfg.OpenAIModel,
		"messages":   messages,
		"max_tokens": e.cfg.AIMaxTokens,
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	err := e.client.PostJSON(ctx, e.cfg.OpenAIURL, map[string]string{
		"Authorization": "Bearer " + e.cfg.OpenAIAPIKey,
	}, payload, &result)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}

	log.Debug().Str("model", e.cfg.OpenAIModel).Msg("chat completion done")
	return result.Choices[0].Message.Content, nil
}

// compact renders a context value as terse key:value text; JSON braces waste
// prompt tokens.
func compact(v interface{}) string {
	return strings.TrimSpace(fmt.Sprintf("%+v", v))
}
