package session

import (
	"context"
	"sync"

	"github.com/abdullayevmuhammad/mblog-video-saver-bot/internal/model"
)

type sentText struct {
	ref  MessageRef
	text string
}

type sentPicker struct {
	ref     MessageRef
	text    string
	buttons []Button
}

type editedText struct {
	ref  MessageRef
	text string
}

type answer struct {
	id    string
	text  string
	alert bool
}

type sentMedia struct {
	chatID int64
	media  Media
}

// fakeMessenger records every outbound call
type fakeMessenger struct {
	mu       sync.Mutex
	nextID   int
	texts    []sentText
	pickers  []sentPicker
	edits    []editedText
	deletes  []MessageRef
	answers  []answer
	media    []sentMedia
	mediaErr error
	editErr  error
}

func (f *fakeMessenger) ref(chatID int64) MessageRef {
	f.nextID++
	return MessageRef{ChatID: chatID, MessageID: 1000 + f.nextID}
}

func (f *fakeMessenger) SendText(ctx context.Context, chatID int64, text string) (MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ref := f.ref(chatID)
	f.texts = append(f.texts, sentText{ref: ref, text: text})
	return ref, nil
}

func (f *fakeMessenger) SendPicker(ctx context.Context, chatID int64, text string, buttons []Button) (MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ref := f.ref(chatID)
	f.pickers = append(f.pickers, sentPicker{ref: ref, text: text, buttons: buttons})
	return ref, nil
}

func (f *fakeMessenger) EditText(ctx context.Context, ref MessageRef, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, editedText{ref: ref, text: text})
	return f.editErr
}

func (f *fakeMessenger) DeleteMessage(ctx context.Context, ref MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, ref)
	return nil
}

func (f *fakeMessenger) AnswerSelection(ctx context.Context, selectionID, text string, alert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, answer{id: selectionID, text: text, alert: alert})
	return nil
}

func (f *fakeMessenger) SendMedia(ctx context.Context, chatID int64, media Media) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mediaErr != nil {
		return f.mediaErr
	}
	f.media = append(f.media, sentMedia{chatID: chatID, media: media})
	return nil
}

// lastEdit returns the last text set on ref
func (f *fakeMessenger) lastEdit(ref MessageRef) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.edits) - 1; i >= 0; i-- {
		if f.edits[i].ref == ref {
			return f.edits[i].text, true
		}
	}
	return "", false
}

// textsTo returns texts sent to a chat, in order
func (f *fakeMessenger) textsTo(chatID int64) []sentText {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentText
	for _, t := range f.texts {
		if t.ref.ChatID == chatID {
			out = append(out, t)
		}
	}
	return out
}

func (f *fakeMessenger) deleted(ref MessageRef) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.deletes {
		if d == ref {
			return true
		}
	}
	return false
}

// fakeMembers answers membership checks
type fakeMembers struct {
	mu     sync.Mutex
	member bool
	err    error
	calls  int
}

func (f *fakeMembers) IsMember(ctx context.Context, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.member, f.err
}

// fakeFetcher runs a scripted fetch
type fakeFetcher struct {
	mu    sync.Mutex
	fetch func(ctx context.Context, req model.Request) (*model.Result, error)
	reqs  []model.Request
}

func (f *fakeFetcher) Fetch(ctx context.Context, req model.Request) (*model.Result, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	return f.fetch(ctx, req)
}

func (f *fakeFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}
