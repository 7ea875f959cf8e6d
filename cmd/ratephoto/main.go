// Command ratephoto submits one rating to the ratings API and prints the
// updated summary the way a page would show it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Clark-Hu/photo-ratings/internal/config"
	"github.com/Clark-Hu/photo-ratings/internal/logging"
	"github.com/Clark-Hu/photo-ratings/internal/ratingclient"
	"github.com/Clark-Hu/photo-ratings/internal/view"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	var (
		baseURL = flag.String("url", cfg.RatingsURL, "ratings API base URL (RATINGS_URL)")
		rater   = flag.String("rater", cfg.RaterID, "rater identity sent as X-Rater-Id (RATER_ID)")
		photoID = flag.String("photo", "", "photo id to rate")
		value   = flag.Int("value", 0, "rating value")
		timeout = flag.Duration("timeout", time.Duration(cfg.RatingsTimeoutSecs)*time.Second, "request timeout")
	)
	flag.Parse()

	if *baseURL == "" || *rater == "" || *photoID == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "ratephoto")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	page := view.NewPage()
	page.RegisterPhoto(*photoID)

	client, err := ratingclient.NewHTTPClient(ratingclient.Options{
		BaseURL: *baseURL,
		RaterID: *rater,
		Timeout: *timeout,
		Logger:  logger,
	}, view.NewPageRenderer(page), view.NewWriterNotifier(os.Stderr))
	if err != nil {
		logger.Fatal("init rating client", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := client.Submit(ctx, *photoID, *value); err != nil {
		// Server rejections were already shown through the notifier.
		var statusErr *ratingclient.StatusError
		if !errors.As(err, &statusErr) {
			logger.Error("submit rating", zap.Error(err))
		}
		_ = logger.Sync()
		os.Exit(1)
	}

	if _, err := page.WriteTo(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
