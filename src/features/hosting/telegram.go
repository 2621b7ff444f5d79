package hosting

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pressplay/src/features/config"
)

// TelegramNotifier pushes operator notifications to the configured chats.
// Send-only: the kiosk takes no commands over Telegram.
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
}

// NewTelegramNotifier creates a new Telegram notifier instance.
func NewTelegramNotifier(cfg *config.Manager) (*TelegramNotifier, error) {
	telegramConfig := cfg.Get().Telegram

	if !telegramConfig.Enabled {
		return nil, fmt.Errorf("telegram notifications are disabled in configuration")
	}
	if telegramConfig.Token == "" {
		return nil, fmt.Errorf("telegram bot token is not configured")
	}
	if len(telegramConfig.ChatIDs) == 0 {
		return nil, fmt.Errorf("no telegram chat IDs configured")
	}

	bot, err := tgbotapi.NewBotAPI(telegramConfig.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	slog.Info("Telegram notifier initialized", "username", bot.Self.UserName, "chats", len(telegramConfig.ChatIDs))
	return &TelegramNotifier{bot: bot, chatIDs: telegramConfig.ChatIDs}, nil
}

// ImportCompleted notifies that removable media delivered new files.
func (t *TelegramNotifier) ImportCompleted(filesCopied int, newest string) {
	t.send(fmt.Sprintf("📼 Imported %d file(s) from USB. Now playing: %s", filesCopied, newest))
}

// PlayerCrashed notifies that the playback process died mid-playback.
func (t *TelegramNotifier) PlayerCrashed(file string) {
	t.send(fmt.Sprintf("⚠️ Player crashed while playing %s, restarting session", file))
}

func (t *TelegramNotifier) send(text string) {
	for _, chatID := range t.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := t.bot.Send(msg); err != nil {
			slog.Error("Failed to send Telegram notification", "chat", chatID, "error", err)
		}
	}
}
