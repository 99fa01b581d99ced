package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chatmate/internal/domain"
	"chatmate/internal/markdown"
	"chatmate/internal/pipeline"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	previewMaxRunes   = 1000
	messageChunkRunes = 1800

	previewHeader = "📄 *Extracted content*\n\n"
	summaryHeader = "📝 *Summary*\n\n"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback.Message == nil || callback.Message.Chat == nil {
		return b.errorCallbackAnswer(callback, errors.New("callback message is missing"))
	}

	data := strings.TrimSpace(callback.Data)

	if code, ok := strings.CutPrefix(data, languageCallbackPrefix); ok {
		return b.handleLanguageQuery(ctx, domain.ParseLanguage(code), callback)
	}

	return b.withEmptyCallbackAnswer(callback, func() error { return nil })
}

func (b *Bot) handleLanguageQuery(
	ctx context.Context,
	language domain.Language,
	callback *tgbotapi.CallbackQuery,
) error {
	chatID := callback.Message.Chat.ID

	original := callback.Message.ReplyToMessage
	if original == nil {
		return b.errorCallbackAnswer(callback, errors.New("replied-to message is missing"))
	}

	rawURL := findURL(original.Text)
	if rawURL == "" {
		rawURL = findURL(original.Caption)
	}
	if rawURL == "" {
		return b.errorCallbackAnswer(callback, errors.New("replied-to message has no URL"))
	}

	var errs []error

	if _, err := b.rateLimiter.Request(tgbotapi.NewCallback(callback.ID, "⏳ Summarizing...")); err != nil {
		errs = append(errs, fmt.Errorf("send request: %w", err))
	}

	edit := tgbotapi.NewEditMessageText(
		chatID,
		callback.Message.MessageID,
		"🌐 "+markdown.EscapeV2(language.Label),
	)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := b.rateLimiter.Send(ctx, edit); err != nil {
		errs = append(errs, fmt.Errorf("edit message text: %w", err))
	}

	err := b.withChatStatus(ctx, chatID, func(status *chatStatus) error {
		return b.summarize(ctx, status, original.MessageID, domain.Request{
			Token:    b.hfToken,
			URL:      rawURL,
			Language: language,
		})
	})
	if err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (b *Bot) summarize(
	ctx context.Context,
	status *chatStatus,
	replyToMessageID int,
	req domain.Request,
) error {
	chatID := status.chatID
	res, runErr := b.runner.Run(ctx, req)

	var errs []error

	if preview := res.Content.Preview(); preview != "" {
		text := previewHeader + markdown.EscapeV2(markdown.Truncate(preview, previewMaxRunes))
		if err := b.sendMessage(ctx, chatID, replyToMessageID, text, nil); err != nil {
			errs = append(errs, fmt.Errorf("send preview: %w", err))
		}
	}

	if runErr != nil {
		b.log.WarnContext(ctx, "Failed to summarize",
			"error", runErr,
			"kind", domain.KindOf(runErr),
			"chatID", chatID,
			"url", req.URL)

		text := "❌ " + markdown.EscapeV2(domain.UserMessage(runErr))
		if err := b.sendMessage(ctx, chatID, replyToMessageID, text, nil); err != nil {
			errs = append(errs, fmt.Errorf("send error message: %w", err))
		}

		return errors.Join(errs...)
	}

	if err := b.sendSummary(ctx, status, replyToMessageID, res); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (b *Bot) sendSummary(
	ctx context.Context,
	status *chatStatus,
	replyToMessageID int,
	res pipeline.Result,
) error {
	chatID := status.chatID

	for i, chunk := range markdown.Split(res.Summary.Text, messageChunkRunes) {
		text := markdown.EscapeV2(chunk)
		if i == 0 {
			text = summaryHeader + text
		}

		if err := b.sendMessage(ctx, chatID, replyToMessageID, text, nil); err != nil {
			return fmt.Errorf("send summary: %w", err)
		}
	}

	status.switchTo(ctx, tgbotapi.ChatUploadDocument)

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  domain.SummaryFileName,
		Bytes: []byte(res.Summary.Text),
	})
	doc.ReplyToMessageID = replyToMessageID

	if _, err := b.rateLimiter.Send(ctx, doc); err != nil {
		return fmt.Errorf("send summary file: %w", err)
	}

	return nil
}

func (b *Bot) withEmptyCallbackAnswer(
	callback *tgbotapi.CallbackQuery,
	fn func() error,
) error {
	var errs []error

	if _, err := b.rateLimiter.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		errs = append(errs, b.errorCallbackAnswer(callback, fmt.Errorf("send request: %w", err)))
	}

	err := fn()
	if err != nil {
		errs = append(errs, fmt.Errorf("call fn: %w", err))
	}

	return errors.Join(errs...)
}

func (b *Bot) errorCallbackAnswer(
	callback *tgbotapi.CallbackQuery,
	err error,
) error {
	if _, sendErr := b.rateLimiter.Request(tgbotapi.NewCallback(callback.ID, "❌ Failed.")); sendErr != nil {
		return errors.Join(err, fmt.Errorf("send request: %w", sendErr))
	}
	return err
}
