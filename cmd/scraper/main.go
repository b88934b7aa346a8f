// Command scraper runs train-state scrape passes: it discovers trains on
// every region's departure boards, fetches and reconciles their detail,
// and persists the result under the data directory.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MarcoBuster/railway-opendata/internal/config"
	"github.com/MarcoBuster/railway-opendata/internal/scraper"
	"github.com/MarcoBuster/railway-opendata/internal/store"
	"github.com/MarcoBuster/railway-opendata/internal/trenord"
	"github.com/MarcoBuster/railway-opendata/internal/viaggiatreno"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	debug := flag.Bool("debug", false, "log at debug level")
	loop := flag.Duration("loop", 0, "re-run every interval instead of exiting after one pass")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("cannot load configuration", "err", err)
		os.Exit(1)
	}

	level := cfg.SlogLevel()
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	loc, err := cfg.Location()
	if err != nil {
		log.Error("cannot load timezone", "timezone", cfg.Timezone, "err", err)
		os.Exit(1)
	}

	primary := viaggiatreno.NewClient(cfg.ViaggiaTreno.BaseURL, cfg.ViaggiaTreno.Timeout(), cfg.ViaggiaTreno.MaxRetries)
	secondary := trenord.NewClient(cfg.Trenord.BaseURL, cfg.Trenord.Timeout(), cfg.Trenord.MaxRetries)

	driver := &scraper.Driver{
		Engine: &scraper.Engine{
			Primary:   primary,
			Secondary: secondary,
			Stations:  scraper.NewDirectory(primary, log),
			Location:  loc,
			SplitHour: cfg.IntradaySplitHour,
			Log:       log,
		},
		Store:     store.New(cfg.DataDir),
		RegionMin: cfg.Regions.Min,
		RegionMax: cfg.Regions.Max,
		Log:       log,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		cancel()
	}()

	if _, err := driver.Run(ctx); err != nil {
		log.Error("scrape run failed", "err", err)
		os.Exit(1)
	}

	if *loop <= 0 {
		return
	}

	ticker := time.NewTicker(*loop)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := driver.Run(ctx); err != nil {
				log.Error("scrape run failed", "err", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
