package ratelimiter

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeAPI struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, c)

	return tgbotapi.Message{MessageID: len(f.sent)}, f.err
}

func (f *fakeAPI) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func TestGetChatID(t *testing.T) {
	tests := []struct {
		name    string
		message tgbotapi.Chattable
		want    int64
	}{
		{
			"MessageConfig",
			tgbotapi.NewMessage(12345, "test"),
			12345,
		},
		{
			"ChatActionConfig",
			tgbotapi.NewChatAction(67890, tgbotapi.ChatTyping),
			67890,
		},
		{
			"DocumentConfig",
			tgbotapi.NewDocument(-100500, tgbotapi.FileBytes{Name: "summary.txt", Bytes: []byte("x")}),
			-100500,
		},
		{
			"EditMessageTextConfig",
			tgbotapi.NewEditMessageText(42, 7, "edited"),
			42,
		},
		{
			"CallbackConfig",
			tgbotapi.NewCallback("id", ""),
			0,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := getChatID(test.message)

			if got != test.want {
				t.Errorf("Expected %v chatID, got %v", test.want, got)
			}
		})
	}
}

func TestGetRate(t *testing.T) {
	rl := New(&fakeAPI{}, slog.New(slog.DiscardHandler))
	defer rl.Stop()

	tests := []struct {
		name   string
		chatID int64
		want   time.Duration
	}{
		{
			"PrivateChatRate",
			1,
			privateChatRate,
		},
		{
			"GroupChatRate",
			-1,
			groupChatRate,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := rl.getRate(test.chatID)

			if got != test.want {
				t.Errorf("Expected %v rate, got %v", test.want, got)
			}
		})
	}
}

func TestSendSpacesMessagesInSameChat(t *testing.T) {
	api := &fakeAPI{}
	rl := NewWithRates(api, 50*time.Millisecond, time.Hour, slog.New(slog.DiscardHandler))
	defer rl.Stop()

	ctx := context.Background()
	start := time.Now()

	for range 2 {
		if _, err := rl.Send(ctx, tgbotapi.NewMessage(1, "hi")); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Expected second message to wait, elapsed %v", elapsed)
	}

	if tokens := rl.limiterFor(2).Tokens(); tokens < 1 {
		t.Errorf("Expected other chat to have a free slot, got %v tokens", tokens)
	}

	if len(api.sent) != 2 {
		t.Errorf("Expected 2 sent messages, got %d", len(api.sent))
	}
}

func TestSendWithoutLimit(t *testing.T) {
	api := &fakeAPI{}
	rl := NewWithRates(api, 0, 0, slog.New(slog.DiscardHandler))
	defer rl.Stop()

	for range 10 {
		if _, err := rl.Send(context.Background(), tgbotapi.NewMessage(-1, "hi")); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	if len(api.sent) != 10 {
		t.Errorf("Expected 10 sent messages, got %d", len(api.sent))
	}
}

func TestSendAfterStop(t *testing.T) {
	api := &fakeAPI{}
	rl := NewWithRates(api, time.Hour, time.Hour, slog.New(slog.DiscardHandler))

	if _, err := rl.Send(context.Background(), tgbotapi.NewMessage(1, "first")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := rl.Send(context.Background(), tgbotapi.NewMessage(1, "second"))
		done <- err
	}()

	rl.Stop()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Expected error after stop, got nil")
		}
	case <-time.After(time.Second):
		t.Fatal("Send did not return after stop")
	}

	if len(api.sent) != 1 {
		t.Errorf("Expected 1 sent message, got %d", len(api.sent))
	}
}

func TestSendReturnsAPIError(t *testing.T) {
	wantErr := errors.New("bad request")
	rl := NewWithRates(&fakeAPI{err: wantErr}, 0, 0, slog.New(slog.DiscardHandler))
	defer rl.Stop()

	_, err := rl.Send(context.Background(), tgbotapi.NewMessage(1, "hi"))
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected %v, got %v", wantErr, err)
	}
}
