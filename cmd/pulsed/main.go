package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/meme-pulse/pkg/ai"
	"github.com/meme-pulse/pkg/cache"
	"github.com/meme-pulse/pkg/config"
	"github.com/meme-pulse/pkg/dashboard"
	"github.com/meme-pulse/pkg/db"
	"github.com/meme-pulse/pkg/market"
	"github.com/meme-pulse/pkg/twitter"
	"github.com/meme-pulse/pkg/wallet"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	log.Info().Msg("📈 Meme Pulse dashboard backend starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := cfg.Validate(); err != nil {
		log.Warn().Msg(err.Error())
	}

	store, err := db.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("database init failed")
	}
	defer store.Close()

	responseCache := cache.New(cache.NewMemoryStore(), cfg.CacheTTL)

	analyzer := wallet.NewAnalyzer(cfg, nil)
	marketSvc := market.New(cfg, responseCache, nil)
	twitterClient := twitter.NewClient(cfg, nil)
	engine := ai.NewEngine(cfg, nil, marketSvc, twitterClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigCh; log.Info().Msg("shutting down..."); cancel() }()

	// Background jobs: keep the hot market keys warm, poll tracked handles,
	// and sweep expired cache entries.
	jobs := cron.New()
	jobs.AddFunc("@every 5m", func() { marketSvc.Warm(ctx) })
	jobs.AddFunc("@every 10m", func() { pollTrackedHandles(ctx, cfg, store, twitterClient) })
	jobs.AddFunc("@every 1h", func() {
		if n := responseCache.Sweep(); n > 0 {
			log.Debug().Int("removed", n).Msg("🧹 cache swept")
		}
	})
	jobs.Start()
	defer jobs.Stop()

	// Warm once at boot so the first dashboard load doesn't pay for it.
	go marketSvc.Warm(ctx)

	errCh := make(chan error, 1)
	srv := dashboard.New(cfg, store, analyzer, marketSvc, engine, twitterClient)
	go func() { errCh <- srv.Run() }()

	printSummary(cfg, store, engine)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server error")
		}
	}
	log.Info().Msg("goodbye 👋")
}

// pollTrackedHandles pulls fresh tweets for every tracked handle and stores
// them with extracted token mentions. Live providers only; when none is
// configured the poll is a no-op.
func pollTrackedHandles(ctx context.Context, cfg *config.Config, store *db.Store, tw *twitter.Client) {
	handles, err := store.GetTrackedHandles()
	if err != nil {
		log.Warn().Err(err).Msg("tracked handle list failed")
		return
	}
	for _, h := range handles {
		if ctx.Err() != nil {
			return
		}
		tweets, err := tw.FetchUser(ctx, h.Handle, cfg.TrackedTweetCount)
		if err != nil {
			log.Debug().Str("handle", h.Handle).Err(err).Msg("poll skipped")
			continue
		}
		stored := 0
		for _, t := range tweets {
			if err := store.InsertHandleTweet(h.Handle, t.ID, t.Text, t.TokenMentions, t.CreatedAt); err == nil {
				stored++
			}
		}
		if stored > 0 {
			log.Info().Str("handle", h.Handle).Int("tweets", stored).Msg("🐦 handle polled")
		}
	}
}

func printSummary(cfg *config.Config, store *db.Store, engine *ai.Engine) {
	bold := color.New(color.Bold, color.FgCyan).SprintFunc()
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()

	fmt.Println("\n" + strings.Repeat("═", 60))
	fmt.Println("  " + bold("📈 MEME PULSE — RUNNING"))
	fmt.Println(strings.Repeat("═", 60))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Setting", "Value"})
	table.SetBorder(false)
	table.Append([]string{"API", fmt.Sprintf("http://localhost:%d", cfg.Port)})
	table.Append([]string{"Cache TTL", cfg.CacheTTL.String()})
	table.Append([]string{"DB", cfg.DBPath})
	if engine.IsEnabled() {
		table.Append([]string{"AI Chat", ok("enabled (" + cfg.OpenAIModel + ")")})
	} else {
		table.Append([]string{"AI Chat", bad("disabled (set OPENAI_API_KEY)")})
	}
	for _, k := range cfg.ConfiguredKeys() {
		table.Append([]string{k, ok("configured")})
	}
	for _, k := range cfg.MissingKeys() {
		table.Append([]string{k, bad("missing — fallback data")})
	}
	if stats, err := store.GetStats(); err == nil {
		table.Append([]string{"Tracked handles", fmt.Sprintf("%d", stats["tracked_handles"])})
		table.Append([]string{"Analyses stored", fmt.Sprintf("%d", stats["analysis_history"])})
	}
	table.Render()
	fmt.Println(strings.Repeat("═", 60) + "\n")
}
