package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/session"
)

// DefaultPollTimeout is the long-polling timeout in seconds
const DefaultPollTimeout = 60

// Handler consumes converted updates
type Handler interface {
	HandleMessage(ctx context.Context, msg session.Message)
	HandleSelection(ctx context.Context, sel session.Selection)
}

// Bot sends messages through the Bot API and runs the update loop
type Bot struct {
	api    botAPI
	logger *slog.Logger
}

// NewBot wraps an authorized API client
func NewBot(api *tgbotapi.BotAPI, logger *slog.Logger) *Bot {
	return newBot(api, logger)
}

func newBot(api botAPI, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:    api,
		logger: logger.With("component", "telegram"),
	}
}

// Run polls updates and dispatches each one on its own goroutine until ctx
// ends. It returns after all in-flight handlers have finished.
func (b *Bot) Run(ctx context.Context, handler Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = DefaultPollTimeout
	updates := b.api.GetUpdatesChan(u)

	var wg sync.WaitGroup
	defer wg.Wait()

	b.logger.Info("listening for updates")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("update loop stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.dispatch(ctx, handler, update)
			}()
		}
	}
}

// dispatch routes one update. Updates without a sender are dropped.
func (b *Bot) dispatch(ctx context.Context, handler Handler, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("update handler panicked", "update_id", update.UpdateID, "panic", r, "stack", string(debug.Stack()))
		}
	}()

	if update.CallbackQuery != nil {
		if sel, ok := toSelection(update.CallbackQuery); ok {
			handler.HandleSelection(ctx, sel)
		}
		return
	}
	if msg, ok := toMessage(update.Message); ok {
		handler.HandleMessage(ctx, msg)
	}
}

// SendText sends a plain text message
func (b *Bot) SendText(ctx context.Context, chatID int64, text string) (session.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return session.MessageRef{}, err
	}
	sent, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return session.MessageRef{}, fmt.Errorf("failed to send message: %w", err)
	}
	return session.MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

// SendPicker sends text with one inline button per row
func (b *Bot) SendPicker(ctx context.Context, chatID int64, text string, buttons []session.Button) (session.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return session.MessageRef{}, err
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, button := range buttons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(button.Text, button.Data),
		))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	sent, err := b.api.Send(msg)
	if err != nil {
		return session.MessageRef{}, fmt.Errorf("failed to send picker: %w", err)
	}
	return session.MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

// EditText replaces the text of a message and drops its inline keyboard
func (b *Bot) EditText(ctx context.Context, ref session.MessageRef, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.api.Request(tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)); err != nil {
		return fmt.Errorf("failed to edit message %d: %w", ref.MessageID, err)
	}
	return nil
}

// DeleteMessage deletes a message
func (b *Bot) DeleteMessage(ctx context.Context, ref session.MessageRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(ref.ChatID, ref.MessageID)); err != nil {
		return fmt.Errorf("failed to delete message %d: %w", ref.MessageID, err)
	}
	return nil
}

// AnswerSelection acknowledges a button tap, optionally as an alert
func (b *Bot) AnswerSelection(ctx context.Context, selectionID, text string, alert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	answer := tgbotapi.NewCallback(selectionID, text)
	answer.ShowAlert = alert
	if _, err := b.api.Request(answer); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

// SendMedia uploads a local file as a video or audio attachment
func (b *Bot) SendMedia(ctx context.Context, chatID int64, media session.Media) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := os.Open(media.Path)
	if err != nil {
		return fmt.Errorf("failed to open media: %w", err)
	}
	defer file.Close()

	upload := tgbotapi.FileReader{Name: media.FileName, Reader: file}

	var config tgbotapi.Chattable
	switch media.Kind {
	case session.MediaAudio:
		audio := tgbotapi.NewAudio(chatID, upload)
		audio.Caption = media.Caption
		config = audio
	default:
		video := tgbotapi.NewVideo(chatID, upload)
		video.Caption = media.Caption
		video.SupportsStreaming = true
		config = video
	}

	if _, err := b.api.Send(config); err != nil {
		return fmt.Errorf("failed to send media: %w", err)
	}
	return nil
}
