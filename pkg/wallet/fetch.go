package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gagliardetto/solana-go"
	solrpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog/log"

	"github.com/meme-pulse/pkg/config"
	"github.com/meme-pulse/pkg/upstream"
)

const txFetchLimit = 50

// Fetcher pulls the three wallet resources — account info, transaction
// history, token holdings — each through its own ordered provider chain.
// A resource whose whole chain fails comes back empty; the deriver
// synthesizes from the address instead.
type Fetcher struct {
	cfg    *config.Config
	client *upstream.Client
	rpc    *solrpc.Client
}

func NewFetcher(cfg *config.Config, httpClient *http.Client) *Fetcher {
	return &Fetcher{
		cfg:    cfg,
		client: upstream.NewClient(httpClient),
		rpc:    solrpc.New(cfg.SolanaRPCURL),
	}
}

type accountInfo struct {
	Lamports   uint64 `json:"lamports"`
	TokenCount int    `json:"tokenCount"`
	FirstTx    int64  `json:"firstTx"`
	LastTx     int64  `json:"lastTx"`
}

// FetchAccount tries Solscan pro, then the public Solscan host, then a plain
// balance lookup on the configured Solana RPC. ok is false when everything
// failed and the caller should synthesize an overview.
func (f *Fetcher) FetchAccount(ctx context.Context, address string) (accountInfo, bool) {
	providers := []upstream.Provider{}
	if f.cfg.SolscanAPIKey != "" {
		providers = append(providers, upstream.Provider{
			Name: "solscan-pro",
			Fetch: func(ctx context.Context) (json.RawMessage, error) {
				url := fmt.Sprintf("https://pro-api.solscan.io/v2.0/account/%s", address)
				return f.client.GetJSON(ctx, url, map[string]string{"token": f.cfg.SolscanAPIKey})
			},
		})
	}
	providers = append(providers,
		upstream.Provider{
			Name: "solscan-public",
			Fetch: func(ctx context.Context) (json.RawMessage, error) {
				url := fmt.Sprintf("https://public-api.solscan.io/account/%s", address)
				return f.client.GetJSON(ctx, url, nil)
			},
		},
		upstream.Provider{
			Name: "solana-rpc",
			Fetch: func(ctx context.Context) (json.RawMessage, error) {
				pk, err := solana.PublicKeyFromBase58(address)
				if err != nil {
					return nil, err
				}
				bal, err := f.rpc.GetBalance(ctx, pk, solrpc.CommitmentFinalized)
				if err != nil {
					return nil, err
				}
				return json.Marshal(map[string]interface{}{"lamports": bal.Value})
			},
		},
	)

	raw, via, err := upstream.TryInOrder(ctx, "account", providers)
	if err != nil {
		return accountInfo{}, false
	}

	var info accountInfo
	// Solscan wraps payloads in {"data": ...}; the RPC provider does not.
	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(raw, &wrapped) == nil && len(wrapped.Data) > 0 {
		raw = wrapped.Data
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		log.Warn().Err(err).Str("provider", via).Msg("account payload unparseable")
		return accountInfo{}, false
	}
	log.Debug().Str("provider", via).Str("addr", abbrev(address)).Msg("account fetched")
	return info, true
}

// FetchTransactions returns up to txFetchLimit recent transactions, or nil
// when both Solscan hosts fail.
func (f *Fetcher) FetchTransactions(ctx context.Context, address string) []RawTransaction {
	providers := []upstream.Provider{}
	if f.cfg.SolscanAPIKey != "" {
		providers = append(providers, upstream.Provider{
			Name: "solscan-pro",
			Fetch: func(ctx context.Context) (json.RawMessage, error) {
				url := fmt.Sprintf("https://pro-api.solscan.io/v2.0/account/transactions?address=%s&limit=%d", address, txFetchLimit)
				return f.client.GetJSON(ctx, url, map[string]string{"token": f.cfg.SolscanAPIKey})
			},
		})
	}
	providers = append(providers, upstream.Provider{
		Name: "solscan-public",
		Fetch: func(ctx context.Context) (json.RawMessage, error) {
			url := fmt.Sprintf("https://public-api.solscan.io/account/transactions?account=%s&limit=%d", address, txFetchLimit)
			return f.client.GetJSON(ctx, url, nil)
		},
	})

	raw, via, err := upstream.TryInOrder(ctx, "transactions", providers)
	if err != nil {
		return nil
	}

	txs := parseTransactions(raw)
	log.Debug().Str("provider", via).Int("count", len(txs)).Msg("transactions fetched")
	return txs
}

// parseTransactions accepts both a bare array and the {"data": [...]} wrapper.
func parseTransactions(raw json.RawMessage) []RawTransaction {
	var txs []RawTransaction
	if json.Unmarshal(raw, &txs) == nil && len(txs) > 0 {
		return txs
	}
	var wrapped struct {
		Data []RawTransaction `json:"data"`
	}
	if json.Unmarshal(raw, &wrapped) == nil {
		return wrapped.Data
	}
	return nil
}

type rawHolding struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// FetchHoldings tries Birdeye first (richer token metadata), then Solscan.
func (f *Fetcher) FetchHoldings(ctx context.Context, address string) []rawHolding {
	providers := []upstream.Provider{}
	if f.cfg.BirdeyeAPIKey != "" {
		providers = append(providers, upstream.Provider{
			Name: "birdeye",
			Fetch: func(ctx context.Context) (json.RawMessage, error) {
				url := fmt.Sprintf("https://public-api.birdeye.so/v1/wallet/token_list?wallet=%s", address)
				return f.client.GetJSON(ctx, url, map[string]string{
					"X-API-KEY": f.cfg.BirdeyeAPIKey,
					"x-chain":   "solana",
				})
			},
		})
	}
	if f.cfg.SolscanAPIKey != "" {
		providers = append(providers, upstream.Provider{
			Name: "solscan-pro",
			Fetch: func(ctx context.Context) (json.RawMessage, error) {
				url := fmt.Sprintf("https://pro-api.solscan.io/v2.0/account/token-accounts?address=%s", address)
				return f.client.GetJSON(ctx, url, map[string]string{"token": f.cfg.SolscanAPIKey})
			},
		})
	}
	if len(providers) == 0 {
		return nil
	}

	raw, via, err := upstream.TryInOrder(ctx, "holdings", providers)
	if err != nil {
		return nil
	}

	var holdings []rawHolding
	var birdeye struct {
		Data struct {
			Items []struct {
				Symbol   string  `json:"symbol"`
				Name     string  `json:"name"`
				UIAmount float64 `json:"uiAmount"`
			} `json:"items"`
		} `json:"data"`
	}
	if json.Unmarshal(raw, &birdeye) == nil && len(birdeye.Data.Items) > 0 {
		for _, it := range birdeye.Data.Items {
			holdings = append(holdings, rawHolding{Symbol: it.Symbol, Name: it.Name, Amount: it.UIAmount})
		}
	} else {
		var wrapped struct {
			Data []rawHolding `json:"data"`
		}
		json.Unmarshal(raw, &wrapped)
		holdings = wrapped.Data
	}
	log.Debug().Str("provider", via).Int("count", len(holdings)).Msg("holdings fetched")
	return holdings
}

func abbrev(addr string) string {
	if len(addr) > 12 {
		return addr[:6] + "..." + addr[len(addr)-4:]
	}
	return addr
}
