// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/0x0BSoD/insightdash/internal/analysis"
	"github.com/0x0BSoD/insightdash/internal/config"
	"github.com/0x0BSoD/insightdash/internal/dashboard"
	"github.com/0x0BSoD/insightdash/internal/httpx"
	"github.com/0x0BSoD/insightdash/internal/model"
	"github.com/0x0BSoD/insightdash/internal/notifier"
	"github.com/0x0BSoD/insightdash/internal/pipeline"
	"github.com/0x0BSoD/insightdash/internal/reporter"
	"github.com/0x0BSoD/insightdash/internal/server"
	"github.com/0x0BSoD/insightdash/internal/source"
	"github.com/0x0BSoD/insightdash/internal/storage"
)

func main() {
	cfg := config.Get()

	db, err := sqlx.Connect("postgres", cfg.DatabaseDSN)
	if err != nil {
		log.Printf("[ERROR] failed to connect to db: %v", err)
		return
	}
	defer db.Close()

	var (
		searchStorage = storage.NewSavedSearchStorage(db)
		modelStorage  = storage.NewModelConfigStorage(db)
		client        = httpx.New(cfg.HTTPTimeout, cfg.UpstreamRPS, cfg.UpstreamBurst)
	)

	var backend analysis.Backend
	switch cfg.AIType {
	case "ollama":
		if cfg.AIBaseURL == "" {
			log.Printf("[ERROR] ai_base_url is required when ai_type is \"ollama\"")
			return
		}
		backend = analysis.NewOllamaBackend(cfg.AIBaseURL, cfg.AITemperature, cfg.AITimeout)
		log.Printf("[INFO] using Ollama completion backend (model: %s)", cfg.AIModel)
	default:
		if cfg.AIKey == "" {
			log.Printf("[ERROR] ai_key is required when ai_type is \"openai\"")
			return
		}
		backend = analysis.NewOpenAIBackend(
			cfg.AIBaseURL,
			cfg.AIKey,
			cfg.AITemperature,
			cfg.AIMaxTokens,
			cfg.AITimeout,
		)
		log.Printf("[INFO] using OpenAI-compatible completion backend (model: %s)", cfg.AIModel)
	}

	analyzer := analysis.NewAnalyzer(backend, modelStorage, cfg.AIModel)

	var (
		forumPipeline = &pipeline.Pipeline[analysis.PainPointReport]{
			Source:          source.NewForumSource(client, cfg.ForumAPIURL, cfg.ForumAPIKey),
			Analyzer:        analyzer,
			SystemPrompt:    analysis.PainPointPrompt,
			ModelKey:        "forum",
			FilterRelevance: true,
		}
		socialPipeline = &pipeline.Pipeline[analysis.SentimentReport]{
			Source: source.NewSocialSource(
				client,
				cfg.SocialAPIURL,
				cfg.SocialTokenURL,
				cfg.SocialClientID,
				cfg.SocialClientSecret,
				cfg.SocialUserAgent,
				cfg.SocialCommunities,
			),
			Analyzer:        analyzer,
			SystemPrompt:    analysis.SentimentPrompt,
			FilterRelevance: true,
			ItemLimit:       500,
		}
		appStorePipeline = &pipeline.Pipeline[analysis.ReviewReport]{
			Source:       source.NewAppStoreSource(client, cfg.AppStoreAPIURL, cfg.AppStoreAPIKey),
			Analyzer:     analyzer,
			SystemPrompt: analysis.ReviewPrompt,
			ItemLimit:    500,
		}
		videoPipeline = &pipeline.Pipeline[analysis.TrendReport]{
			Source:          source.NewVideoSource(client, cfg.VideoAPIURL, cfg.VideoAPIKey),
			Analyzer:        analyzer,
			SystemPrompt:    analysis.TrendPrompt,
			FilterRelevance: true,
			ItemLimit:       300,
		}
		newsPipeline = &pipeline.Pipeline[analysis.CompetitorReport]{
			Source:       source.NewNewsSource(client, cfg.NewsAPIURL, cfg.NewsAPIToken),
			Analyzer:     analyzer,
			SystemPrompt: analysis.CompetitorPrompt,
		}
		feedPipeline = &pipeline.Pipeline[analysis.DigestReport]{
			Source:       source.NewFeedSource(cfg.FeedURL, cfg.HTTPTimeout),
			Analyzer:     analyzer,
			SystemPrompt: analysis.DigestPrompt,
		}
	)

	runners := map[string]server.ReportRunner{
		"forum":    makeRunner(forumPipeline),
		"social":   makeRunner(socialPipeline),
		"appstore": makeRunner(appStorePipeline),
		"video":    makeRunner(videoPipeline),
		"news":     makeRunner(newsPipeline),
		"feed":     makeRunner(feedPipeline),
	}

	widgets := map[string]*server.Widget{
		"forum":    makeWidget(forumPipeline),
		"social":   makeWidget(socialPipeline),
		"appstore": makeWidget(appStorePipeline),
		"video":    makeWidget(videoPipeline),
		"news":     makeWidget(newsPipeline),
		"feed":     makeWidget(feedPipeline),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var (
		botAPI *tgbotapi.BotAPI
		errRep *reporter.Reporter
	)
	if cfg.TelegramBotToken != "" {
		botAPI, err = tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			log.Printf("[ERROR] failed to create botAPI: %v", err)
			return
		}
		errRep = reporter.New(botAPI, cfg.TelegramAdminChatID)

		if cfg.TelegramChannelID != 0 {
			digestNotifier := notifier.New(
				searchStorage,
				func(ctx context.Context, query string) (string, error) {
					res := feedPipeline.Aggregate(ctx, query)
					if !res.Success {
						return "", errors.New(res.Error)
					}
					return res.Data.Analysis.Summary, nil
				},
				botAPI,
				cfg.DigestInterval,
				cfg.TelegramChannelID,
			)

			go func(ctx context.Context) {
				if err := digestNotifier.Start(ctx); err != nil {
					if !errors.Is(err, context.Canceled) {
						log.Printf("[ERROR] failed to run notifier: %v", err)
						return
					}

					log.Printf("[INFO] notifier stopped")
				}
			}(ctx)
		}
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(runners, widgets, searchStorage, errRep).Handler(),
	}

	go func(ctx context.Context) {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[ERROR] failed to shut down http server: %v", err)
		}
	}(ctx)

	log.Printf("[INFO] listening on %s", cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[ERROR] failed to run http server: %v", err)
	}
}

func makeRunner[T analysis.Validator](p *pipeline.Pipeline[T]) server.ReportRunner {
	return func(ctx context.Context, query string) any {
		return p.Aggregate(ctx, query)
	}
}

// makeWidget adapts a typed pipeline to the raw-JSON widget the server
// tracks state for.
func makeWidget[T analysis.Validator](p *pipeline.Pipeline[T]) *server.Widget {
	return dashboard.NewWidget(func(ctx context.Context, query string) model.FetchResult[json.RawMessage] {
		res := p.Aggregate(ctx, query)
		if !res.Success {
			return model.Fail[json.RawMessage](res.Error)
		}

		payload, err := json.Marshal(res.Data)
		if err != nil {
			return model.Fail[json.RawMessage](err.Error())
		}
		return model.Ok(json.RawMessage(payload))
	})
}
