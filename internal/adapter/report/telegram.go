package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/semmidev/custodia/internal/config"
	"github.com/semmidev/custodia/internal/domain"
)

// TelegramSink sends a human-readable run summary to a chat.
type TelegramSink struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramSink(cfg *config.ReportTarget) (*TelegramSink, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	var chatID int64
	fmt.Sscanf(cfg.ChatID, "%d", &chatID)

	return &TelegramSink{bot: bot, chatID: chatID}, nil
}

func (t *TelegramSink) Publish(ctx context.Context, report *domain.RunReport) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatSummary(report))
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}
	return nil
}

// FormatSummary renders a run report as a short notification message.
func FormatSummary(report *domain.RunReport) string {
	var b strings.Builder

	if report.Succeeded() {
		fmt.Fprintf(&b, "✅ Backup Completed\n\n")
	} else {
		fmt.Fprintf(&b, "❌ Backup Failed (step: %s)\n\n", report.FailedStep)
	}

	fmt.Fprintf(&b, "📁 Source: %s\n", report.Source)
	fmt.Fprintf(&b, "🕐 Started: %s\n", report.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "⏱ Duration: %s\n", report.Duration.Round(time.Second))

	if report.Backup != nil {
		fmt.Fprintf(&b, "\n🆕 Files new: %d\n", report.Backup.FilesNew)
		fmt.Fprintf(&b, "✏️ Files changed: %d\n", report.Backup.FilesChanged)
		fmt.Fprintf(&b, "📊 Bytes added: %.2f MB\n",
			float64(report.Backup.DataAdded)/(1024*1024))
		fmt.Fprintf(&b, "🔖 Snapshot: %s\n", report.Backup.SnapshotID)
	}

	if report.Stats != nil {
		fmt.Fprintf(&b, "\n💾 Repository size: %.2f MB (%d files)\n",
			float64(report.Stats.TotalSize)/(1024*1024), report.Stats.TotalFileCount)
	}

	if report.Err != "" {
		fmt.Fprintf(&b, "\n⚠️ Error: %s\n", report.Err)
	}
	for _, warning := range report.Warnings {
		fmt.Fprintf(&b, "⚠️ Warning: %s\n", warning)
	}

	return b.String()
}
