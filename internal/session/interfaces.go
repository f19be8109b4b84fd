package session

import "context"

// MessageRef identifies a sent message so it can be edited or deleted
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Button is one entry of an inline picker
type Button struct {
	Text string
	Data string
}

// MediaKind selects how a file is attached
type MediaKind int

const (
	MediaVideo MediaKind = iota
	MediaAudio
)

// Media is a file to be delivered as an attachment
type Media struct {
	Kind     MediaKind
	Path     string
	FileName string
	Caption  string
}

// Message is an inbound text message or command
type Message struct {
	ID      int
	ChatID  int64
	UserID  int64
	Text    string
	Command string   // command name without the slash, empty for plain text
	Args    string   // text after the command
	Links   []string // links taken from structured annotations, in order
}

// Ref returns a reference to the message
func (m Message) Ref() MessageRef {
	return MessageRef{ChatID: m.ChatID, MessageID: m.ID}
}

// Selection is a tap on a picker button
type Selection struct {
	ID      string
	UserID  int64
	Message MessageRef // the picker message
	Data    string
}

// Messenger is the outbound side of the chat transport
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) (MessageRef, error)
	SendPicker(ctx context.Context, chatID int64, text string, buttons []Button) (MessageRef, error)
	EditText(ctx context.Context, ref MessageRef, text string) error
	DeleteMessage(ctx context.Context, ref MessageRef) error
	AnswerSelection(ctx context.Context, selectionID, text string, alert bool) error
	SendMedia(ctx context.Context, chatID int64, media Media) error
}

// MembershipChecker reports whether a user belongs to the gating channel
type MembershipChecker interface {
	IsMember(ctx context.Context, userID int64) (bool, error)
}
