// Package main provides the wallet analysis HTTP service: on-demand wallet
// reports over REST, Prometheus metrics, and optional persistence of enriched
// trades and position snapshots.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"wallet-trade-lab/internal/analyzer"
	"wallet-trade-lab/internal/ath"
	"wallet-trade-lab/internal/cache"
	"wallet-trade-lab/internal/config"
	"wallet-trade-lab/internal/market"
	"wallet-trade-lab/internal/observability"
	"wallet-trade-lab/internal/solana"
	"wallet-trade-lab/internal/storage"
	chstore "wallet-trade-lab/internal/storage/clickhouse"
	"wallet-trade-lab/internal/storage/memory"
	"wallet-trade-lab/internal/storage/migrations"
	pgstore "wallet-trade-lab/internal/storage/postgres"
)

const shutdownTimeout = 15 * time.Second

// Server serves wallet analyses over HTTP.
type Server struct {
	analyzer *analyzer.Analyzer
	txWindow int
	logger   *log.Logger

	mu        sync.Mutex
	started   time.Time
	analyses  int
	lastRun   time.Time
	lastError string
}

func main() {
	cfg := config.Load()

	// Flags override env-derived defaults.
	addr := flag.String("addr", cfg.HTTPAddr, "HTTP listen address")
	txWindow := flag.Int("tx-window", cfg.TxWindow, "Default number of transactions per analysis")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of the configured databases")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rpc := solana.NewHTTPClient(cfg.RPCURL,
		solana.WithTimeout(cfg.RPCTimeout),
		solana.WithMaxRetries(cfg.RPCMaxRetries),
	)

	var marketOpts []market.Option
	if cfg.MarketBaseURL != "" {
		marketOpts = append(marketOpts, market.WithBaseURL(cfg.MarketBaseURL))
	}
	mkt := market.NewClient(marketOpts...)

	store, err := athCache(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to redis: %v", err)
	}

	archive, snapshots, cleanup, err := createStores(ctx, cfg, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	a := analyzer.New(rpc, rpc, mkt, mkt,
		analyzer.WithLogger(logger),
		analyzer.WithEstimator(ath.NewEstimator(mkt, store, ath.WithLogger(logger))),
		analyzer.WithArchive(archive),
		analyzer.WithSnapshotStore(snapshots),
	)

	server := &Server{
		analyzer: a,
		txWindow: *txWindow,
		logger:   logger,
		started:  time.Now(),
	}

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: server.routes(),
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}
		cancel()
	}()

	logger.Printf("Listening on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("HTTP server error: %v", err)
	}
	logger.Println("Shutdown complete")
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

// createStores wires the trade archive and snapshot history. Memory mode, or
// an unset DSN, swaps the corresponding store for its in-memory version.
func createStores(ctx context.Context, cfg *config.Config, useMemory bool) (storage.TradeArchive, storage.PositionSnapshotStore, func(), error) {
	var (
		archive   storage.TradeArchive          = memory.NewTradeArchive()
		snapshots storage.PositionSnapshotStore = memory.NewPositionSnapshotStore()
		cleanups  []func()
	)
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if !useMemory && cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		cleanups = append(cleanups, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("run postgres migrations: %w", err)
		}
		archive = pgstore.NewTradeArchive(pool)
	}

	if !useMemory && cfg.ClickHouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
		}
		cleanups = append(cleanups, func() { conn.Close() })
		snapshots = chstore.NewPositionSnapshotStore(conn)
	}

	return archive, snapshots, cleanup, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/analyze", s.handleAnalyze)
	return mux
}

// handleAnalyze runs one wallet analysis. Query parameters: wallet (required),
// tx_window (optional override), enrich=true to attach ATH estimates to sells
// and archive them.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	wallet := r.URL.Query().Get("wallet")
	if wallet == "" {
		writeError(w, http.StatusBadRequest, "wallet parameter is required")
		return
	}

	txWindow := s.txWindow
	if raw := r.URL.Query().Get("tx_window"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "tx_window must be a positive integer")
			return
		}
		txWindow = n
	}

	report, err := s.analyzer.AnalyzeWallet(r.Context(), wallet, txWindow)
	if err != nil {
		s.recordRun(err)
		status := http.StatusBadGateway
		if errors.Is(err, solana.ErrInvalidAddress) || errors.Is(err, analyzer.ErrEmptyWindow) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	if r.URL.Query().Get("enrich") == "true" {
		if err := s.analyzer.EnrichWithATH(r.Context(), wallet, report.Trades); err != nil {
			s.logger.Printf("enrich %s: %v", wallet, err)
		}
	}

	s.recordRun(nil)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		s.logger.Printf("encode report for %s: %v", wallet, err)
	}
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status    string    `json:"status"`
	Uptime    string    `json:"uptime"`
	Analyses  int       `json:"analyses"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:    "running",
		Uptime:    time.Since(s.started).String(),
		Analyses:  s.analyses,
		LastRun:   s.lastRun,
		LastError: s.lastError,
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) recordRun(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses++
	s.lastRun = time.Now()
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
