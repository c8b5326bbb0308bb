package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abhij1306/algotrading-sub001/internal/backend"
	"github.com/abhij1306/algotrading-sub001/internal/config"
	"github.com/abhij1306/algotrading-sub001/internal/feed"
	"github.com/abhij1306/algotrading-sub001/internal/httpapi"
	"github.com/abhij1306/algotrading-sub001/internal/quote"
	"github.com/abhij1306/algotrading-sub001/internal/store"
	"github.com/abhij1306/algotrading-sub001/internal/util"
)

func main() {
	cfgPath := "config/feed.yaml"
	if p := os.Getenv("FEED_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	board := quote.NewBoard()
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.AccessToken, cfg.Backend.RateLimitPerMin)

	f := feed.New(feed.Options{
		Backend:      client,
		StreamURL:    cfg.Backend.StreamURL,
		StreamToken:  cfg.Backend.AccessToken,
		Board:        board,
		PollInterval: time.Duration(cfg.Feed.PollIntervalSec) * time.Second,
		Debounce:     time.Duration(cfg.Feed.DebounceMs) * time.Millisecond,
		MaxVisible:   cfg.Feed.MaxVisible,
		Logger:       logger,
	})

	// Watchlist store seeds the initial visible set when configured.
	var watchlist store.WatchlistStore
	if cfg.Storage.SQLitePath != "" {
		sqlStore, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open watchlist store: %v", err)
		}
		defer sqlStore.Close()
		watchlist = sqlStore

		if syms, err := sqlStore.List(ctx); err != nil {
			logger.Warn("loading watchlist", "err", err)
		} else if len(syms) > 0 {
			f.SetVisible(syms)
			logger.Info("visible set seeded from watchlist", "symbols", len(syms))
		}
	}

	// Session tick recorder is on only when a data dir is configured.
	if cfg.Storage.DataDir != "" {
		recorder := store.NewRecorder(
			store.NewParquetStore(cfg.Storage.DataDir),
			board,
			30*time.Second,
			logger.With("component", "recorder"),
		)
		go recorder.Run(ctx)
	}

	api := httpapi.NewServer(f, watchlist, logger)
	go api.Hub().Run(ctx)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{Addr: addr, Handler: api.Handler()}

	go func() {
		logger.Info("terminal-feed listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "err", err)
			cancel()
		}
	}()

	if err := f.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("feed stopped", "err", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "err", err)
	}

	slog.Info("terminal-feed stopped")
}
