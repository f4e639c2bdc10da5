package conversation

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/zhouzirui/alex-chat/backend/internal/model/chat"
)

// Completer produces one assistant reply for the full transcript.
type Completer interface {
	Complete(ctx context.Context, transcript []chat.Message) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, transcript []chat.Message) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, transcript []chat.Message) (string, error) {
	return f(ctx, transcript)
}

// Controller owns one conversation transcript. The transcript only grows:
// index 0 is the persona message, index 1 the greeting, then user turns
// each followed by exactly one assistant entry (reply or fallback).
type Controller struct {
	completer Completer
	fallback  string
	label     string
	ordering  Ordering

	mu         sync.Mutex
	transcript []chat.Message
	pending    string
	turns      int
	tail       chan struct{}
	failures   []RequestFailure

	notifyMu     sync.Mutex
	listeners    map[int]func([]chat.Message)
	nextListener int
}

// Option customises a Controller.
type Option func(*Controller)

// WithOrdering selects how overlapping submits are resolved.
func WithOrdering(o Ordering) Option {
	return func(c *Controller) {
		c.ordering = o
	}
}

// WithAssistantLabel sets the speaker label used by Display.
func WithAssistantLabel(label string) Option {
	return func(c *Controller) {
		c.label = label
	}
}

// New builds a controller whose transcript starts with the persona prompt and greeting.
func New(prompt, greeting, fallback string, completer Completer, opts ...Option) *Controller {
	c := &Controller{
		completer: completer,
		fallback:  fallback,
		ordering:  Serialized,
		transcript: []chat.Message{
			{Role: chat.RoleSystem, Content: prompt},
			{Role: chat.RoleAssistant, Content: greeting},
		},
		listeners: make(map[int]func([]chat.Message)),
	}
	for _, opt := range opts {
		opt(c)
	}

	// Seed the queue with a closed channel so the first turn never waits.
	c.tail = make(chan struct{})
	close(c.tail)
	return c
}

// SetPendingInput stores the draft the renderer is editing.
func (c *Controller) SetPendingInput(text string) {
	c.mu.Lock()
	c.pending = text
	c.mu.Unlock()
}

// PendingInput returns the current draft.
func (c *Controller) PendingInput() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// SubmitPending submits the current draft.
func (c *Controller) SubmitPending(ctx context.Context) bool {
	return c.Submit(ctx, c.PendingInput())
}

// Submit appends a user turn and blocks until the matching assistant entry is
// appended. In Serialized mode the request is sent with the transcript as it
// stands after the previous reply; Unordered sends the submit-time snapshot. Blank input is ignored and reports false. The user entry is visible
// to Transcript, Display and subscribers before the provider is called.
func (c *Controller) Submit(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	c.mu.Lock()
	c.transcript = append(c.transcript, chat.Message{Role: chat.RoleUser, Content: text})
	c.pending = ""
	c.turns++
	turn := c.turns

	var payload []chat.Message
	var prev chan struct{}
	done := make(chan struct{})
	if c.ordering == Serialized {
		prev = c.tail
		c.tail = done
	} else {
		payload = c.snapshotLocked()
	}
	c.mu.Unlock()

	c.notify()
	c.requestCompletion(ctx, turn, payload, prev, done)
	return true
}

func (c *Controller) requestCompletion(ctx context.Context, turn int, payload []chat.Message, prev, done chan struct{}) {
	defer close(done)

	// Serialized turns read the transcript once the previous reply has
	// landed, so the payload carries every earlier reply.
	if prev != nil {
		<-prev
		c.mu.Lock()
		payload = c.snapshotLocked()
		c.mu.Unlock()
	}

	reply, err := c.complete(ctx, payload)
	if err != nil {
		failure := RequestFailure{Turn: turn, Cause: err, At: time.Now().UTC()}
		log.Printf("[conversation] %v", &failure)
		c.appendAssistant(c.fallback, &failure)
		return
	}

	c.appendAssistant(reply, nil)
}

func (c *Controller) complete(ctx context.Context, payload []chat.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.completer == nil {
		return "", ErrNoCompleter
	}

	reply, err := c.completer.Complete(ctx, payload)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}

func (c *Controller) appendAssistant(content string, failure *RequestFailure) {
	c.mu.Lock()
	c.transcript = append(c.transcript, chat.Message{Role: chat.RoleAssistant, Content: content})
	if failure != nil {
		c.failures = append(c.failures, *failure)
	}
	c.mu.Unlock()

	c.notify()
}

// Transcript returns a copy of the full transcript, persona message included.
func (c *Controller) Transcript() []chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Display returns the renderer projection of the transcript.
func (c *Controller) Display() []chat.DisplayEntry {
	return Render(c.Transcript(), c.label)
}

// Failures returns the diagnostics recorded for failed completions.
func (c *Controller) Failures() []RequestFailure {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]RequestFailure(nil), c.failures...)
}

// Subscribe registers fn to receive the transcript after every append.
// Calls are serialised and each snapshot is at least as long as the last one.
// fn runs on the goroutine that appended and must not block; hand slow work
// such as network writes to another goroutine.
func (c *Controller) Subscribe(fn func([]chat.Message)) (unsubscribe func()) {
	c.notifyMu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.notifyMu.Unlock()

	return func() {
		c.notifyMu.Lock()
		delete(c.listeners, id)
		c.notifyMu.Unlock()
	}
}

func (c *Controller) notify() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	if len(c.listeners) == 0 {
		return
	}
	snapshot := c.Transcript()
	for _, fn := range c.listeners {
		fn(snapshot)
	}
}

func (c *Controller) snapshotLocked() []chat.Message {
	copied := make([]chat.Message, len(c.transcript))
	copy(copied, c.transcript)
	return copied
}
