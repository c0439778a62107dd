// Package notifier periodically posts a short market digest to a Telegram
// channel: it picks the most recently saved searches, runs the news pipeline
// for each, and sends the synthesized summary.
package notifier

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/0x0BSoD/insightdash/internal/model"
)

const digestSearchLimit = 3

// SearchProvider yields the saved searches worth digesting.
type SearchProvider interface {
	Recent(ctx context.Context, limit int) ([]model.SavedSearch, error)
}

// DigestFunc produces a one-paragraph digest for a query.
type DigestFunc func(ctx context.Context, query string) (string, error)

type Notifier struct {
	searches  SearchProvider
	digest    DigestFunc
	bot       *tgbotapi.BotAPI
	interval  time.Duration
	channelID int64
}

func New(
	searches SearchProvider,
	digest DigestFunc,
	bot *tgbotapi.BotAPI,
	interval time.Duration,
	channelID int64,
) *Notifier {
	return &Notifier{
		searches:  searches,
		digest:    digest,
		bot:       bot,
		interval:  interval,
		channelID: channelID,
	}
}

func (n *Notifier) Start(ctx context.Context) error {
	log.Printf("[INFO] Notifier started")

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	if err := n.SendDigest(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ticker.C:
			if err := n.SendDigest(ctx); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// SendDigest runs the digest for the most recent saved searches and posts one
// message per query. A failed query loses its section but does not stop the
// digest.
func (n *Notifier) SendDigest(ctx context.Context) error {
	searches, err := n.searches.Recent(ctx, digestSearchLimit)
	if err != nil {
		return fmt.Errorf("load recent searches: %w", err)
	}
	if len(searches) == 0 {
		return nil
	}

	for _, search := range searches {
		summary, err := n.digest(ctx, search.Query)
		if err != nil {
			log.Printf("[ERROR] failed to build digest for %q: %v", search.Query, err)
			continue
		}

		if err := n.sendDigest(search.Query, summary); err != nil {
			return err
		}
	}

	return nil
}

func (n *Notifier) sendDigest(query, summary string) error {
	msg := tgbotapi.NewMessage(n.channelID, fmt.Sprintf(
		"*%s*\n\n%s",
		escapeMarkdown(query),
		escapeMarkdown(summary),
	))
	msg.ParseMode = "MarkdownV2"

	if _, err := n.bot.Send(msg); err != nil {
		return err
	}
	return nil
}

var markdownEscaper = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(", ")", "\\)",
	"~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
	"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}", ".", "\\.", "!", "\\!",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
