package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/meme-pulse/pkg/ai"
	"github.com/meme-pulse/pkg/config"
	"github.com/meme-pulse/pkg/db"
	"github.com/meme-pulse/pkg/market"
	"github.com/meme-pulse/pkg/twitter"
	"github.com/meme-pulse/pkg/wallet"
)

type Server struct {
	cfg      *config.Config
	store    *db.Store
	analyzer *wallet.Analyzer
	market   *market.Service
	engine   *ai.Engine
	twitter  *twitter.Client
	port     int
}

func New(cfg *config.Config, store *db.Store, analyzer *wallet.Analyzer, m *market.Service, engine *ai.Engine, tw *twitter.Client) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		analyzer: analyzer,
		market:   m,
		engine:   engine,
		twitter:  tw,
		port:     cfg.Port,
	}
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Info().Str("addr", addr).Msg("🌐 dashboard API started")
	return http.ListenAndServe(addr, s.Routes())
}

// Routes is split out so tests can mount the mux on httptest.Server.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/analyze-wallet", cors(s.handleAnalyzeWallet))
	mux.HandleFunc("/analyze-market", cors(s.handleAnalyzeMarket))
	mux.HandleFunc("/ai-chat", cors(s.handleAIChat))
	mux.HandleFunc("/twitter-api", cors(s.handleTwitter))
	mux.HandleFunc("/check-api-keys", cors(s.handleCheckKeys))

	// Tracked-handle CRUD + analysis history
	mux.HandleFunc("/api/tracked", cors(s.handleTracked))
	mux.HandleFunc("/api/tracked/add", cors(s.handleTrackedAdd))
	mux.HandleFunc("/api/tracked/remove", cors(s.handleTrackedRemove))
	mux.HandleFunc("/api/history", cors(s.handleHistory))

	return mux
}

// Every endpoint carries permissive CORS and answers OPTIONS preflight with
// an empty 200 — the SPA may be served from anywhere.
func cors(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// ── Core endpoints ──────────────────────────────────────────

func (s *Server) handleAnalyzeWallet(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		writeError(w, 405, "POST only")
		return
	}

	var req struct {
		WalletAddress string `json:"walletAddress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.WalletAddress == "" {
		writeError(w, 400, wallet.ErrInvalidAddress.Error())
		return
	}

	analysis, err := s.analyzer.Analyze(r.Context(), req.WalletAddress)
	if err != nil {
		if errors.Is(err, wallet.ErrInvalidAddress) {
			writeError(w, 400, err.Error())
			return
		}
		log.Error().Err(err).Msg("wallet analysis failed")
		writeError(w, 500, "analysis failed")
		return
	}

	if s.store != nil {
		if err := s.store.InsertAnalysis(req.WalletAddress, analysis.Profile.TradingStyle,
			analysis.Metrics.WinRate, analysis.Metrics.TotalTxCount, analysis.Source); err != nil {
			log.Warn().Err(err).Msg("history insert failed")
		}
	}

	writeJSON(w, analysis)
}

func (s *Server) handleAnalyzeMarket(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		writeError(w, 405, "POST only")
		return
	}

	var req market.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}

	result, err := s.market.Query(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("queryType", req.QueryType).Msg("market query failed")
		writeError(w, 500, "market query failed")
		return
	}
	writeJSON(w, result)
}

func (s *Server) handleAIChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		writeError(w, 405, "POST only")
		return
	}

	var req ai.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}

	if req.Action == "getRecentTweets" {
		writeJSON(w, s.engine.RecentTweets(r.Context(), req.Count))
		return
	}

	msg, err := s.engine.Chat(r.Context(), req)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			writeError(w, 500, err.Error())
			return
		}
		log.Error().Err(err).Msg("chat completion failed")
		writeError(w, 500, "chat failed")
		return
	}
	writeJSON(w, msg)
}

func (s *Server) handleTwitter(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		writeError(w, 405, "POST only")
		return
	}

	var req twitter.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	writeJSON(w, s.twitter.Handle(r.Context(), req))
}

func (s *Server) handleCheckKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"missingKeys":    s.cfg.MissingKeys(),
		"configuredKeys": s.cfg.ConfiguredKeys(),
		"allConfigured":  s.cfg.AllConfigured(),
	})
}

// ── Tracked handles / history ───────────────────────────────

func (s *Server) handleTracked(w http.ResponseWriter, r *http.Request) {
	handles, err := s.store.GetTrackedHandles()
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	if handles == nil {
		handles = []db.TrackedHandle{}
	}
	writeJSON(w, handles)
}

func (s *Server) handleTrackedAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		writeError(w, 405, "POST only")
		return
	}
	var req struct {
		Handle string `json:"handle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Handle == "" {
		writeError(w, 400, "handle required")
		return
	}
	id, err := s.store.AddTrackedHandle(req.Handle)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	log.Info().Str("handle", req.Handle).Int64("id", id).Msg("➕ handle tracked")
	writeJSON(w, map[string]interface{}{"id": id, "handle": req.Handle, "status": "ok"})
}

func (s *Server) handleTrackedRemove(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		writeError(w, 405, "POST only")
		return
	}
	var req struct {
		Handle string `json:"handle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Handle == "" {
		writeError(w, 400, "handle required")
		return
	}
	if err := s.store.RemoveTrackedHandle(req.Handle); err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.RecentAnalyses(50)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	if records == nil {
		records = []db.AnalysisRecord{}
	}
	writeJSON(w, records)
}
