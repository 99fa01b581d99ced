package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"mvdan.cc/xurls/v2"
)

//nolint:gochecknoglobals // Compiled once, read-only.
var urlRe = xurls.Strict()

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	text := strings.TrimSpace(message.Text)
	if text == "" {
		text = strings.TrimSpace(message.Caption)
	}

	switch {
	case strings.HasPrefix(text, "/start"), strings.HasPrefix(text, "/help"):
		return b.handleStartCommand(ctx, message.Chat.ID)
	default:
		return b.handleRandomText(ctx, text, message)
	}
}

// handleRandomText asks for a language when the message carries a URL. The
// URL itself is read back from the replied-to message once a language is
// picked, so nothing is kept between updates.
func (b *Bot) handleRandomText(ctx context.Context, text string, message *tgbotapi.Message) error {
	if findURL(text) == "" {
		return b.sendMessage(ctx, message.Chat.ID, message.MessageID, noURLText, nil)
	}

	keyboard := getLanguageKeyboard()

	return b.sendMessage(ctx, message.Chat.ID, message.MessageID, chooseLanguageText, &keyboard)
}

func findURL(text string) string {
	return urlRe.FindString(text)
}
