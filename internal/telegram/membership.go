package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrNoChannel is returned when no channel reference is configured
var ErrNoChannel = errors.New("no channel configured")

// Channel identifies the gating channel by numeric id or by @username
type Channel struct {
	ID       int64
	Username string // with leading '@'
}

// IsZero reports whether neither id nor username is set
func (c Channel) IsZero() bool {
	return c.ID == 0 && c.Username == ""
}

// String returns the id when known, otherwise the username
func (c Channel) String() string {
	if c.ID != 0 {
		return fmt.Sprintf("%d", c.ID)
	}
	return c.Username
}

// ChannelHolder keeps the resolved channel reference. It has a single writer
// (resolution) and many readers (membership checks).
type ChannelHolder struct {
	mu      sync.RWMutex
	channel Channel
}

// NewChannelHolder creates a holder with the configured reference
func NewChannelHolder(channel Channel) *ChannelHolder {
	return &ChannelHolder{channel: channel}
}

// Get returns the current reference
func (h *ChannelHolder) Get() Channel {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.channel
}

// SetID records the numeric id resolved for the channel
func (h *ChannelHolder) SetID(id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.channel.ID = id
}

// Membership checks whether users belong to the gating channel
type Membership struct {
	api     botAPI
	channel *ChannelHolder
	logger  *slog.Logger
}

// NewMembership creates a membership checker
func NewMembership(api *tgbotapi.BotAPI, channel *ChannelHolder, logger *slog.Logger) *Membership {
	return newMembership(api, channel, logger)
}

func newMembership(api botAPI, channel *ChannelHolder, logger *slog.Logger) *Membership {
	if logger == nil {
		logger = slog.Default()
	}
	return &Membership{
		api:     api,
		channel: channel,
		logger:  logger.With("component", "membership"),
	}
}

// ResolveChannel looks up the numeric id of a channel configured by username
// and stores it in the holder.
func (m *Membership) ResolveChannel(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	ch := m.channel.Get()
	if ch.ID != 0 {
		return ch.ID, nil
	}
	if ch.Username == "" {
		return 0, ErrNoChannel
	}

	chat, err := m.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{SuperGroupUsername: ch.Username},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to resolve channel %s: %w", ch.Username, err)
	}

	m.channel.SetID(chat.ID)
	m.logger.Info("channel resolved", "username", ch.Username, "id", chat.ID)
	return chat.ID, nil
}

// IsMember reports whether userID belongs to the channel. A channel that is
// still unresolved is resolved first; when that fails the lookup falls back
// to the username.
func (m *Membership) IsMember(ctx context.Context, userID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	ch := m.channel.Get()
	if ch.IsZero() {
		return false, ErrNoChannel
	}
	if ch.ID == 0 {
		if id, err := m.ResolveChannel(ctx); err != nil {
			m.logger.Warn("channel still unresolved", "error", err)
		} else {
			ch.ID = id
		}
	}

	config := tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{UserID: userID},
	}
	if ch.ID != 0 {
		config.ChatConfigWithUser.ChatID = ch.ID
	} else {
		config.ChatConfigWithUser.SuperGroupUsername = ch.Username
	}

	member, err := m.api.GetChatMember(config)
	if err != nil {
		return false, fmt.Errorf("failed to check membership of %d in %s: %w", userID, ch, err)
	}
	return isMemberStatus(member), nil
}

// isMemberStatus maps a chat member status to channel membership
func isMemberStatus(member tgbotapi.ChatMember) bool {
	switch strings.ToLower(member.Status) {
	case "creator", "administrator", "member":
		return true
	case "restricted":
		return member.IsMember
	default:
		return false
	}
}
