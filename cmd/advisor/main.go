package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/marketdata"
	"stock-advisor/internal/news"
	"stock-advisor/internal/pipeline"
	"stock-advisor/internal/reclog"
	"stock-advisor/internal/schedule"
	"stock-advisor/internal/store"
	"stock-advisor/internal/telemetry"
	"stock-advisor/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()
	must(logger.Init())
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	configPath := "config.yaml"
	if v := os.Getenv("ADVISOR_CONFIG"); v != "" {
		configPath = v
	}
	cfg, err := store.LoadConfig(configPath)
	must(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer logger.Shutdown(context.Background())
	defer trace.Shutdown(context.Background())

	if cfg.Journal.Enabled {
		_ = reclog.CompressOlder(cfg.Journal.RetentionDays)
	}

	if cfg.Telemetry.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", telemetry.Handler())
			if err := http.ListenAndServe(cfg.Telemetry.ListenAddr, mux); err != nil {
				log.Printf("metrics listener: %v", err)
			}
		}()
	}

	prices := marketdata.NewCSVProvider(cfg.PriceDataDir)
	var newsSvc *news.Service
	if cfg.News.Enabled {
		svcCfg := news.DefaultServiceConfig()
		svcCfg.MaxHeadlines = cfg.News.MaxHeadlines
		svcCfg.ScraperTimeout = time.Duration(cfg.News.TimeoutSeconds) * time.Second
		svcCfg.Enabled = true
		newsSvc = news.NewService(nil, svcCfg)
	}

	pipe, err := pipeline.New(cfg, prices, newsSvc, nil)
	must(err)

	runAll := func() {
		for _, sym := range cfg.Symbols {
			rec, err := pipe.Recommend(ctx, sym)
			if err != nil {
				log.Printf("[%s] recommendation error: %v", sym, err)
				continue
			}
			if cfg.Journal.Enabled {
				if err := reclog.Append(ctx, *rec); err != nil {
					log.Printf("[%s] journal error: %v", sym, err)
				}
			}
			b, _ := json.MarshalIndent(rec, "", "  ")
			fmt.Println(string(b))
			if rec.Schedule != nil {
				fmt.Println(schedule.Suggestion(rec.Schedule))
			}
		}
	}

	if cfg.Cron == "" {
		runAll()
		return
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	sched := cron.New()
	if _, err := sched.AddFunc(cfg.Cron, runAll); err != nil {
		log.Fatalf("bad cron expression %q: %v", cfg.Cron, err)
	}
	sched.Start()
	log.Println("Advisor started on schedule:", cfg.Cron)

	<-sigc
	log.Println("Shutting down...")
	stopCtx := sched.Stop()
	<-stopCtx.Done()
}
