package bot

import (
	"context"
	"strings"

	"chatmate/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const languageCallbackPrefix = "lang_"

func getLanguageKeyboard() tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(domain.Languages))
	for _, l := range domain.Languages {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(l.Label, languageCallbackPrefix+l.Code))
	}

	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func (b *Bot) sendMessage(
	ctx context.Context,
	chatID int64,
	replyToMessageID int,
	text string,
	keyboard *tgbotapi.InlineKeyboardMarkup,
) error {
	normalizedText := strings.ToValidUTF8(text, "?")
	if normalizedText != text {
		b.log.WarnContext(ctx, "Message text had invalid UTF-8 and was normalized",
			"chatID", chatID,
			"originalLen", len(text),
			"normalizedLen", len(normalizedText))
	}

	message := tgbotapi.NewMessage(chatID, normalizedText)

	// See https://core.telegram.org/bots/api#markdownv2-style.
	message.ParseMode = tgbotapi.ModeMarkdownV2

	message.DisableWebPagePreview = true
	message.ReplyToMessageID = replyToMessageID
	if keyboard != nil {
		message.ReplyMarkup = *keyboard
	}

	_, err := b.rateLimiter.Send(ctx, message)
	return err
}
