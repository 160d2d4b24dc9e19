// Package main provides a one-shot wallet analysis CLI: reconstruct the
// wallet's recent trades, print realized PnL and open positions, and
// optionally enrich closed trades with ATH estimates and archive them.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"

	"wallet-trade-lab/internal/analyzer"
	"wallet-trade-lab/internal/ath"
	"wallet-trade-lab/internal/cache"
	"wallet-trade-lab/internal/config"
	"wallet-trade-lab/internal/domain"
	"wallet-trade-lab/internal/market"
	"wallet-trade-lab/internal/solana"
	"wallet-trade-lab/internal/storage"
	"wallet-trade-lab/internal/storage/memory"
	"wallet-trade-lab/internal/storage/migrations"
	pgstore "wallet-trade-lab/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	// Flags override env-derived defaults.
	wallet := flag.String("wallet", "", "Wallet address to analyze (required)")
	txWindow := flag.Int("tx-window", cfg.TxWindow, "Number of most recent transactions to inspect")
	enrich := flag.Bool("enrich", false, "Enrich sell trades with ATH estimates and archive them")
	asJSON := flag.Bool("json", false, "Print the full report as JSON instead of text")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of the configured databases")
	flag.Parse()

	if *wallet == "" {
		fmt.Fprintln(os.Stderr, "Error: --wallet is required")
		flag.Usage()
		os.Exit(1)
	}

	logger := log.New(os.Stderr, "[analyze] ", log.LstdFlags)
	ctx := context.Background()

	rpc := solana.NewHTTPClient(cfg.RPCURL,
		solana.WithTimeout(cfg.RPCTimeout),
		solana.WithMaxRetries(cfg.RPCMaxRetries),
	)

	var marketOpts []market.Option
	if cfg.MarketBaseURL != "" {
		marketOpts = append(marketOpts, market.WithBaseURL(cfg.MarketBaseURL))
	}
	mkt := market.NewClient(marketOpts...)

	opts := []analyzer.Option{analyzer.WithLogger(logger)}

	if *enrich {
		store, err := athCache(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to redis: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, analyzer.WithEstimator(ath.NewEstimator(mkt, store, ath.WithLogger(logger))))

		archive, cleanup, err := tradeArchive(ctx, cfg, *useMemory)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()
		opts = append(opts, analyzer.WithArchive(archive))
	}

	a := analyzer.New(rpc, rpc, mkt, mkt, opts...)

	report, err := a.AnalyzeWallet(ctx, *wallet, *txWindow)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error analyzing wallet: %v\n", err)
		os.Exit(1)
	}

	if *enrich {
		if err := a.EnrichWithATH(ctx, *wallet, report.Trades); err != nil {
			fmt.Fprintf(os.Stderr, "Error enriching trades: %v\n", err)
			os.Exit(1)
		}
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printReport(report)
}

// athCache returns the estimate cache: Redis when configured, else in-memory.
func athCache(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	if cfg.RedisAddr == "" {
		return cache.NewMemory(), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return cache.NewRedis(client, "wallet-trade-lab:"), nil
}

// tradeArchive returns the trade journal: Postgres when configured, else
// in-memory (the run's archive is then discarded on exit).
func tradeArchive(ctx context.Context, cfg *config.Config, useMemory bool) (storage.TradeArchive, func(), error) {
	if useMemory || cfg.PostgresDSN == "" {
		return memory.NewTradeArchive(), func() {}, nil
	}
	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	return pgstore.NewTradeArchive(pool), pool.Close, nil
}

func printReport(report *domain.WalletReport) {
	fmt.Printf("Wallet: %s\n", report.Wallet)
	fmt.Printf("Trades: %d (%d buys, %d sells)\n", report.Stats.TotalTrades, report.Stats.Buys, report.Stats.Sells)
	fmt.Printf("Realized PnL: %+.3f SOL  (win rate %s, %d wins / %d losses)\n",
		report.Stats.TotalPnLNative, report.Stats.WinRate, report.Stats.Wins, report.Stats.Losses)
	if report.Stats.Wins > 0 {
		fmt.Printf("Avg win: %+.1f%%\n", report.Stats.AvgWinPercent)
	}
	if report.Stats.Losses > 0 {
		fmt.Printf("Avg loss: %+.1f%%\n", report.Stats.AvgLossPercent)
	}

	fmt.Printf("\nOpen positions: %d  ($%.2f total, %d diamond hands, %d bagholding)\n",
		report.Summary.TotalPositions, report.Summary.TotalValueUSD,
		report.Summary.DiamondHandCount, report.Summary.BagholdingCount)
	for _, pos := range report.OpenPositions {
		entry := "entry unknown"
		if pos.AvgEntryPriceNative != nil {
			entry = fmt.Sprintf("entry %.9f SOL", *pos.AvgEntryPriceNative)
		}
		held := ""
		if pos.HoldingDays != nil {
			held = fmt.Sprintf(", held %dd", *pos.HoldingDays)
		}
		fmt.Printf("  %-12s $%10.2f  %+6.1f%% 24h  [%s]  %s%s\n",
			pos.Symbol, pos.CurrentValueUSD, pos.PriceChange24hPercent, pos.Category, entry, held)
	}

	sells := enrichedSells(report.Trades)
	if len(sells) == 0 {
		return
	}
	fmt.Printf("\nExits vs ATH:\n")
	for _, s := range sells {
		fmt.Printf("  %s  %+6.1f%% vs ATH  [%s]\n",
			shortSig(s.Signature), *s.ExitVsATHPercent, s.ATHTiming)
	}
}

func enrichedSells(trades []*domain.Swap) []*domain.Swap {
	var out []*domain.Swap
	for _, s := range trades {
		if s.Direction == domain.SwapDirectionSell && s.ExitVsATHPercent != nil {
			out = append(out, s)
		}
	}
	return out
}

func shortSig(sig string) string {
	if len(sig) <= 16 {
		return sig
	}
	return sig[:8] + "..." + sig[len(sig)-8:]
}
