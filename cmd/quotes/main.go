package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/abhij1306/algotrading-sub001/internal/backend"
	"github.com/abhij1306/algotrading-sub001/internal/config"
	"github.com/abhij1306/algotrading-sub001/internal/symbols"
	"github.com/abhij1306/algotrading-sub001/internal/util"
)

// quotes prints a one-shot REST snapshot for the given tickers:
//
//	quotes TCS INFY RELIANCE
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: quotes SYMBOL [SYMBOL...]")
		os.Exit(1)
	}

	cfgPath := "config/feed.yaml"
	if p := os.Getenv("FEED_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.AccessToken, cfg.Backend.RateLimitPerMin)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ids := symbols.QualifyAll(os.Args[1:])

	var rows map[string]backend.LiveQuote
	err = util.Retry(ctx, 3, time.Second, func() error {
		var ferr error
		rows, ferr = client.LiveQuotes(ctx, ids)
		return ferr
	})
	if err != nil {
		log.Fatalf("fetching quotes: %v", err)
	}

	for sym, row := range rows {
		fmt.Printf("%-12s %10.2f  %+6.2f%%\n", symbols.Normalize(sym), row.Ltp, row.ChangePct)
	}
}
