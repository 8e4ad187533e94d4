package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	twitterscraper "github.com/imperatrona/twitter-scraper"
	"github.com/rs/zerolog/log"

	"github.com/meme-pulse/pkg/config"
	"github.com/meme-pulse/pkg/extractor"
	"github.com/meme-pulse/pkg/upstream"
)

// Actions accepted by POST /twitter-api.
const (
	ActionSearch       = "searchTweets"
	ActionUserTweets   = "getUserTweets"
	ActionRecentTweets = "getRecentTweets"
)

const defaultCount = 10

type Request struct {
	Action    string   `json:"action"`
	Query     string   `json:"query"`
	Count     int      `json:"count"`
	MaxID     string   `json:"maxId"`
	Usernames []string `json:"usernames"`
}

type Tweet struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Username      string   `json:"username"`
	CreatedAt     string   `json:"createdAt"`
	Likes         int      `json:"likes"`
	Retweets      int      `json:"retweets"`
	TokenMentions []string `json:"tokenMentions"`
}

type Response struct {
	Tweets            []Tweet `json:"tweets"`
	UsingFallbackData bool    `json:"usingFallbackData"`
	Error             string  `json:"error,omitempty"`
}

// Client fetches tweets through an ordered provider chain: the official v2
// API when a bearer token is configured, the cookie-auth scraper as the
// second hop, and generated placeholder tweets when both are out. The caller
// always gets a populated response; UsingFallbackData is the honesty bit.
type Client struct {
	cfg      *config.Config
	client   *upstream.Client
	scraper  *twitterscraper.Scraper
	now      func() time.Time
	disabled bool // set when no scraper credentials exist
}

func NewClient(cfg *config.Config, httpClient *http.Client) *Client {
	c := &Client{
		cfg:    cfg,
		client: upstream.NewClient(httpClient),
		now:    time.Now,
	}
	if cfg.TwitterAuthToken != "" && cfg.TwitterCSRFToken != "" {
		c.scraper = twitterscraper.New()
		c.scraper.SetAuthToken(twitterscraper.AuthToken{
			Token:     cfg.TwitterAuthToken,
			CSRFToken: cfg.TwitterCSRFToken,
		})
	} else {
		c.disabled = true
	}
	return c
}

func (c *Client) Handle(ctx context.Context, req Request) Response {
	count := req.Count
	if count <= 0 || count > 100 {
		count = defaultCount
	}

	switch req.Action {
	case ActionUserTweets:
		users := req.Usernames
		if len(users) == 0 && req.Query != "" {
			users = []string{req.Query}
		}
		return c.userTweets(ctx, users, count)
	case ActionSearch:
		query := req.Query
		if query == "" {
			query = "solana memecoin"
		}
		return c.search(ctx, query, count, req.MaxID)
	case ActionRecentTweets, "":
		return c.search(ctx, "solana memecoin", count, "")
	default:
		return Response{
			Tweets:            fallbackTweets(count, c.now()),
			UsingFallbackData: true,
			Error:             fmt.Sprintf("unknown action %q", req.Action),
		}
	}
}

func (c *Client) search(ctx context.Context, query string, count int, maxID string) Response {
	providers := []upstream.Provider{}
	if c.cfg.TwitterBearerToken != "" {
		providers = append(providers, upstream.Provider{
			Name: "twitter-api-v2",
			Fetch: func(ctx context.Context) (json.RawMessage, error) {
				return c.searchViaAPI(ctx, query, count, maxID)
			},
		})
	}
	if !c.disabled {
		providers = append(providers, upstream.Provider{
			Name: "twitter-scraper",
			Fetch: func(ctx context.Context) (json.RawMessage, error) {
				return c.searchViaScraper(ctx, query, count)
			},
		})
	}

	if len(providers) > 0 {
		raw, via, err := upstream.TryInOrder(ctx, "tweets", providers)
		if err == nil {
			var tweets []Tweet
			if json.Unmarshal(raw, &tweets) == nil && len(tweets) > 0 {
				log.Debug().Str("provider", via).Int("count", len(tweets)).Msg("tweets fetched")
				return Response{Tweets: tweets}
			}
		}
	}

	return Response{Tweets: fallbackTweets(count, c.now()), UsingFallbackData: true}
}

func (c *Client) userTweets(ctx context.Context, usernames []string, count int) Response {
	if len(usernames) == 0 {
		return Response{
			Tweets:            fallbackTweets(count, c.now()),
			UsingFallbackData: true,
			Error:             "no usernames provided",
		}
	}

	var all []Tweet
	perUser := count/len(usernames) + 1
	for _, u := range usernames {
		u = strings.TrimPrefix(strings.TrimSpace(u), "@")
		resp := c.search(ctx, "from:"+u, perUser, "")
		if resp.UsingFallbackData {
			continue
		}
		all = append(all, resp.Tweets...)
	}

	if len(all) == 0 {
		return Response{Tweets: fallbackTweets(count, c.now()), UsingFallbackData: true}
	}
	if len(all) > count {
		all = all[:count]
	}
	return Response{Tweets: all}
}

// FetchUser is the tracked-handle poller's entry point: real providers only,
// never fabricated tweets, so nothing synthetic lands in the store.
func (c *Client) FetchUser(ctx context.Context, username string, count int) ([]Tweet, error) {
	resp := c.search(ctx, "from:"+strings.TrimPrefix(username, "@"), count, "")
	if resp.UsingFallbackData {
		return nil, fmt.Errorf("no live tweet source available for @%s", username)
	}
	return resp.Tweets, nil
}

// ── Providers ───────────────────────────────────────────────

func (c *Client) searchViaAPI(ctx context.Context, query string, count int, maxID string) (json.RawMessage, error) {
	if count < 10 {
		count = 10 // API v2 minimum
	}
	u := fmt.Sprintf("https://api.twitter.com/2/tweets/search/recent?query=%s&max_results=%d&tweet.fields=created_at,public_metrics&expansions=author_id&user.fields=username",
		url.QueryEscape(query), count)
	if maxID != "" {
		u += "&until_id=" + url.QueryEscape(maxID)
	}

	raw, err := c.client.GetJSON(ctx, u, map[string]string{
		"Authorization": "Bearer " + c.cfg.TwitterBearerToken,
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			ID            string `json:"id"`
			Text          string `json:"text"`
			AuthorID      string `json:"author_id"`
			CreatedAt     string `json:"created_at"`
			PublicMetrics struct {
				Likes    int `json:"like_count"`
				Retweets int `json:"retweet_count"`
			} `json:"public_metrics"`
		} `json:"data"`
		Includes struct {
			Users []struct {
				ID       string `json:"id"`
				Username string `json:"username"`
			} `json:"users"`
		} `json:"includes"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no tweets returned for %q", query)
	}

	users := map[string]string{}
	for _, u := range resp.Includes.Users {
		users[u.ID] = u.Username
	}

	tweets := make([]Tweet, 0, len(resp.Data))
	for _, t := range resp.Data {
		tweets = append(tweets, annotate(Tweet{
			ID:        t.ID,
			Text:      t.Text,
			Username:  users[t.AuthorID],
			CreatedAt: t.CreatedAt,
			Likes:     t.PublicMetrics.Likes,
			Retweets:  t.PublicMetrics.Retweets,
		}))
	}
	return json.Marshal(tweets)
}

func (c *Client) searchViaScraper(ctx context.Context, query string, count int) (json.RawMessage, error) {
	var tweets []Tweet
	for result := range c.scraper.SearchTweets(ctx, query, count) {
		if result.Error != nil {
			return nil, result.Error
		}
		tweets = append(tweets, annotate(Tweet{
			ID:        result.ID,
			Text:      result.Text,
			Username:  result.Username,
			CreatedAt: result.TimeParsed.UTC().Format(time.RFC3339),
			Likes:     result.Likes,
			Retweets:  result.Retweets,
		}))
	}
	if len(tweets) == 0 {
		return nil, fmt.Errorf("scraper returned no tweets for %q", query)
	}
	return json.Marshal(tweets)
}

// annotate runs the extractor over tweet text so callers get token mentions
// without re-parsing.
func annotate(t Tweet) Tweet {
	res := extractor.Extract(t.Text)
	t.TokenMentions = append(res.TokenSymbols, res.Addresses...)
	return t
}

// ── Fallback ────────────────────────────────────────────────

var fallbackTemplates = []string{
	"$%s looking ready for another leg up, volume doubling on the hour",
	"just aped a small bag of $%s, chart is coiling",
	"whales quietly accumulating $%s, watch the top holders",
	"$%s holding the range while everything else bleeds. relative strength",
	"new ATH for $%s holders count. community doing the heavy lifting",
	"took profit on $%s, will rebuy the next flush",
	"$%s dev wallet untouched for 30 days. good sign",
	"liquidity just migrated for $%s, floor is in imo",
}

var fallbackHandles = []string{"solwhaleping", "memecoinflow", "degenradar", "pumpwatcher", "solalphacalls"}
var fallbackSymbols = []string{"BONK", "WIF", "POPCAT", "MEW", "PNUT", "GOAT", "FWOG", "MOODENG"}

func fallbackTweets(count int, now time.Time) []Tweet {
	tweets := make([]Tweet, 0, count)
	for i := 0; i < count; i++ {
		sym := fallbackSymbols[rand.Intn(len(fallbackSymbols))]
		text := fmt.Sprintf(fallbackTemplates[rand.Intn(len(fallbackTemplates))], sym)
		tweets = append(tweets, Tweet{
			ID:            fmt.Sprintf("fallback-%d-%d", now.Unix(), i),
			Text:          text,
			Username:      fallbackHandles[rand.Intn(len(fallbackHandles))],
			CreatedAt:     now.Add(-time.Duration(i*11) * time.Minute).UTC().Format(time.RFC3339),
			Likes:         rand.Intn(2000),
			Retweets:      rand.Intn(400),
			TokenMentions: []string{sym},
		})
	}
	return tweets
}
