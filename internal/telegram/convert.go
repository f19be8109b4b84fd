package telegram

import (
	"strings"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/session"
)

// toMessage converts an inbound message. Messages without a sender or chat
// are rejected.
func toMessage(m *tgbotapi.Message) (session.Message, bool) {
	if m == nil || m.From == nil || m.Chat == nil {
		return session.Message{}, false
	}

	text, entities := m.Text, m.Entities
	if text == "" {
		text, entities = m.Caption, m.CaptionEntities
	}

	msg := session.Message{
		ID:     m.MessageID,
		ChatID: m.Chat.ID,
		UserID: m.From.ID,
		Text:   text,
		Links:  entityLinks(text, entities),
	}
	if m.IsCommand() {
		msg.Command = strings.ToLower(m.Command())
		msg.Args = strings.TrimSpace(m.CommandArguments())
	}
	return msg, true
}

// toSelection converts a callback query carrying a picker payload. Queries
// from other keyboards are rejected.
func toSelection(q *tgbotapi.CallbackQuery) (session.Selection, bool) {
	if q == nil || q.From == nil || !session.IsSelectionPayload(q.Data) {
		return session.Selection{}, false
	}

	sel := session.Selection{
		ID:     q.ID,
		UserID: q.From.ID,
		Data:   q.Data,
	}
	if q.Message != nil && q.Message.Chat != nil {
		sel.Message = session.MessageRef{ChatID: q.Message.Chat.ID, MessageID: q.Message.MessageID}
	}
	return sel, true
}

// entityLinks returns the links annotated in text, in order. Entity offsets
// count UTF-16 code units.
func entityLinks(text string, entities []tgbotapi.MessageEntity) []string {
	if len(entities) == 0 {
		return nil
	}

	units := utf16.Encode([]rune(text))
	var links []string
	for _, e := range entities {
		switch e.Type {
		case "text_link":
			if e.URL != "" {
				links = append(links, e.URL)
			}
		case "url":
			if e.Offset < 0 || e.Length <= 0 || e.Offset+e.Length > len(units) {
				continue
			}
			links = append(links, string(utf16.Decode(units[e.Offset:e.Offset+e.Length])))
		}
	}
	return links
}
