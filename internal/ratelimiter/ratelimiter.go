package ratelimiter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Telegram allows about one message per second in a private chat and
// twenty per minute in a group.
const (
	privateChatRate = time.Second
	groupChatRate   = 3 * time.Second
)

// API is the part of *tgbotapi.BotAPI the limiter needs.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type RateLimiter struct {
	api         API
	privateRate time.Duration
	groupRate   time.Duration
	limiters    map[int64]*rate.Limiter
	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	log         *slog.Logger
}

func New(api API, log *slog.Logger) *RateLimiter {
	return NewWithRates(api, privateChatRate, groupChatRate, log)
}

// NewWithRates uses custom per-chat intervals. A non-positive interval means
// no limit.
func NewWithRates(api API, privateRate, groupRate time.Duration, log *slog.Logger) *RateLimiter {
	ctx, cancel := context.WithCancel(context.Background())

	return &RateLimiter{
		api:         api,
		privateRate: privateRate,
		groupRate:   groupRate,
		limiters:    make(map[int64]*rate.Limiter),
		ctx:         ctx,
		cancel:      cancel,
		log:         log,
	}
}

// Send waits for the chat's slot and sends the message. It returns early when
// ctx is done or the limiter is stopped.
func (rl *RateLimiter) Send(
	ctx context.Context,
	message tgbotapi.Chattable,
) (tgbotapi.Message, error) {
	if err := rl.ctx.Err(); err != nil {
		return tgbotapi.Message{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(rl.ctx, cancel)
	defer stop()

	chatID := getChatID(message)
	limiter := rl.limiterFor(chatID)

	if limiter.Tokens() < 1 {
		rl.log.DebugContext(ctx, "Rate limiting message",
			"chatID", chatID,
			"chattableType", fmt.Sprintf("%T", message))
	}

	if err := limiter.Wait(ctx); err != nil {
		return tgbotapi.Message{}, fmt.Errorf("wait for rate limiter: %w", err)
	}

	return rl.api.Send(message)
}

// Request is not rate limited. It is used for callback answers and chat
// actions.
func (rl *RateLimiter) Request(
	c tgbotapi.Chattable,
) (*tgbotapi.APIResponse, error) {
	return rl.api.Request(c)
}

func (rl *RateLimiter) Stop() {
	rl.cancel()
}

func (rl *RateLimiter) limiterFor(chatID int64) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters[chatID]
	if !ok {
		limiter = rate.NewLimiter(limitFor(rl.getRate(chatID)), 1)
		rl.limiters[chatID] = limiter
	}

	return limiter
}

func (rl *RateLimiter) getRate(chatID int64) time.Duration {
	if chatID < 0 {
		return rl.groupRate
	}
	return rl.privateRate
}

func limitFor(interval time.Duration) rate.Limit {
	if interval <= 0 {
		return rate.Inf
	}
	return rate.Every(interval)
}

func getChatID(message tgbotapi.Chattable) int64 {
	switch m := message.(type) {
	case tgbotapi.MessageConfig:
		return m.ChatID
	case tgbotapi.DocumentConfig:
		return m.ChatID
	case tgbotapi.EditMessageTextConfig:
		return m.ChatID
	case tgbotapi.DeleteMessageConfig:
		return m.ChatID
	case tgbotapi.ChatActionConfig:
		return m.ChatID
	default:
		return 0
	}
}
