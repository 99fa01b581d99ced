package bot

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram clears a chat action after about five seconds.
const chatActionRefreshInterval = 4 * time.Second

// chatStatus keeps a chat action visible while a long request runs. The
// action follows the request: "typing" while the summary is produced, then
// "sending a file" while summary.txt goes out.
type chatStatus struct {
	b      *Bot
	chatID int64

	mu     sync.Mutex
	action string
}

func (s *chatStatus) current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.action
}

// switchTo shows action right away and keeps refreshing it from now on.
func (s *chatStatus) switchTo(ctx context.Context, action string) {
	s.mu.Lock()
	changed := s.action != action
	s.action = action
	s.mu.Unlock()

	if changed {
		s.b.sendChatAction(ctx, s.chatID, action)
	}
}

func (b *Bot) sendChatAction(ctx context.Context, chatID int64, action string) {
	_, err := b.rateLimiter.Request(tgbotapi.NewChatAction(chatID, action))
	if err != nil {
		b.log.ErrorContext(ctx, "Failed to send chat action",
			"error", err,
			"chatID", chatID,
			"action", action)
	}
}

// withChatStatus starts with the "typing" action and refreshes whichever
// action fn last switched to until fn returns.
func (b *Bot) withChatStatus(
	ctx context.Context,
	chatID int64,
	fn func(status *chatStatus) error,
) error {
	statusCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	status := &chatStatus{b: b, chatID: chatID}
	status.switchTo(statusCtx, tgbotapi.ChatTyping)

	go func() {
		t := time.NewTicker(chatActionRefreshInterval)
		defer t.Stop()

		for {
			select {
			case <-statusCtx.Done():
				return
			case <-t.C:
				b.sendChatAction(statusCtx, chatID, status.current())
			}
		}
	}()

	return fn(status)
}
