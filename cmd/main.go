package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"chatmate/internal/bot"
	"chatmate/internal/config"
	"chatmate/internal/extractor"
	"chatmate/internal/pipeline"
	"chatmate/internal/summarizer"
	"chatmate/internal/web"
)

func main() {
	start := time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("Failed to load config",
			"error", err)

		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.PageFetchInsecureTLS {
		log.WarnContext(ctx, "TLS certificate verification is disabled for page fetches",
			"envVar", "PAGE_FETCH_INSECURE_TLS")
	}

	p := pipeline.New(pipelineConfig(cfg), log)
	log.InfoContext(ctx, "Pipeline is initialized",
		"model", cfg.HFModel,
		"baseURL", cfg.HFBaseURL,
		"maxTokens", cfg.SummaryMaxTokens)

	server, err := web.New(p, cfg.RequestTimeout, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize web server",
			"error", err)

		return
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		if runErr := server.Run(ctx, cfg.HTTPAddr); runErr != nil {
			log.ErrorContext(ctx, "HTTP server failed",
				"error", runErr,
				"addr", cfg.HTTPAddr)
			stop()
		}
	}()

	var botInst *bot.Bot
	if cfg.BotEnabled() {
		botInst = startBot(ctx, cfg, p, &wg, log)
	} else {
		log.InfoContext(ctx, "TELEGRAM_TOKEN is missing so bot is disabled",
			"envVar", "TELEGRAM_TOKEN")
	}

	<-ctx.Done()
	log.InfoContext(ctx, "Shutdown signal is received",
		"uptimeSeconds", time.Since(start).Seconds())

	if botInst != nil {
		botInst.Stop()
	}

	wg.Wait()

	log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())
}

func pipelineConfig(cfg config.Config) pipeline.Config {
	return pipeline.Config{
		Extractor: extractor.Config{
			InsecureTLS: cfg.PageFetchInsecureTLS,
			Timeout:     cfg.FetchTimeout,
		},
		Summarizer: summarizer.Config{
			BaseURL:        cfg.HFBaseURL,
			Model:          cfg.HFModel,
			MaxTokens:      cfg.SummaryMaxTokens,
			Temperature:    cfg.SummaryTemperature,
			PromptTemplate: summarizer.DefaultPromptTemplate,
		},
	}
}

func startBot(
	ctx context.Context,
	cfg config.Config,
	runner bot.Runner,
	wg *sync.WaitGroup,
	log *slog.Logger,
) *bot.Bot {
	if cfg.HFToken == "" {
		log.WarnContext(ctx, "HF_TOKEN is missing so bot requests will be rejected",
			"envVar", "HF_TOKEN")
	}

	botInst, err := bot.New(bot.Config{
		Token:          cfg.TelegramToken,
		HFToken:        cfg.HFToken,
		AllowedUsers:   cfg.AllowedUsers,
		RequestTimeout: cfg.RequestTimeout,
	}, runner, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize bot",
			"error", err,
			"allowedUsersCount", len(cfg.AllowedUsers))

		return nil
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		botInst.Start(ctx)
	}()

	log.InfoContext(ctx, "Bot is started",
		"allowedUsersCount", len(cfg.AllowedUsers),
		"updateTimeoutSeconds", bot.BotUpdateTimeout)

	return botInst
}
