package tabs

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/richinex/studio/api"
	"github.com/richinex/studio/lifecycle"
	"github.com/richinex/studio/model"
	"github.com/richinex/studio/storage"
)

// Greeting seeds every new transcript.
const Greeting = "Hello! I am your AI assistant. I can help you download YouTube videos, transcribe audio, generate PDF summaries, and even create quizzes. What can I do for you today?"

// ChatFailed is shown when the assistant fails without a message.
const ChatFailed = "Something went wrong"

// ChatTab is a conversation with the backend assistant. The transcript is
// append-only; every turn resends it whole.
type ChatTab struct {
	deps      Deps
	store     storage.ConversationStorage
	sessionID string
	modelName string
	provider  string

	send lifecycle.Action

	mu      sync.Mutex
	entries []model.ChatEntry
}

// ChatConfig selects the assistant model and the session to persist to.
type ChatConfig struct {
	Model    string
	Provider string
	// Store persists the transcript after each turn. Nil keeps it in memory.
	Store storage.ConversationStorage
	// SessionID names the persisted session. Empty starts a new one.
	SessionID string
}

// NewChatTab creates the chat view.
func NewChatTab(d Deps, cfg ChatConfig) *ChatTab {
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.New().String()
	}
	return &ChatTab{
		deps:      d.withDefaults(),
		store:     cfg.Store,
		sessionID: cfg.SessionID,
		modelName: cfg.Model,
		provider:  cfg.Provider,
		entries:   []model.ChatEntry{model.AssistantEntry(Greeting, nil)},
	}
}

// SessionID returns the session the transcript is saved under.
func (c *ChatTab) SessionID() string {
	return c.sessionID
}

// Resume replaces the transcript with the stored one, if any.
func (c *ChatTab) Resume(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	exists, err := c.store.Exists(ctx, c.sessionID)
	if err != nil || !exists {
		return err
	}
	entries, err := c.store.Load(ctx, c.sessionID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()
	return nil
}

// Send appends msg to the transcript, sends the transcript and appends the
// assistant's reply. A failed call appends one "Error: ..." entry instead
// and returns the error alongside it. A cancelled send removes msg again.
func (c *ChatTab) Send(ctx context.Context, msg string) (model.ChatEntry, error) {
	if strings.TrimSpace(msg) == "" {
		return model.ChatEntry{}, c.send.Reject(api.Validation("Please enter a message"))
	}
	ticket, err := c.send.Begin(ctx)
	if err != nil {
		return model.ChatEntry{}, err
	}

	c.mu.Lock()
	sent := len(c.entries)
	c.entries = append(c.entries, model.UserEntry(msg))
	req := api.ChatRequest{
		Messages:  api.ChatMessages(c.entries),
		ModelName: c.modelName,
		Provider:  c.provider,
	}
	c.mu.Unlock()

	reply, err := c.deps.Backend.Chat(ticket.Context(), req)
	if !ticket.Finish(err) {
		c.mu.Lock()
		if len(c.entries) == sent+1 {
			c.entries = c.entries[:sent]
		}
		c.mu.Unlock()
		return model.ChatEntry{}, lifecycle.ErrSuperseded
	}

	var entry model.ChatEntry
	if err != nil {
		entry = model.AssistantEntry("Error: "+api.Message(err, ChatFailed), nil)
	} else {
		entry = model.AssistantEntry(reply.Message, reply.ToolResults)
		for _, r := range reply.ToolResults {
			if a, ok := r.Artifact(); ok && r.Succeeded() {
				c.deps.History.Record(ctx, storage.KindForPath(a.Path), a)
			}
		}
	}

	c.mu.Lock()
	c.entries = append(c.entries, entry)
	snapshot := append([]model.ChatEntry(nil), c.entries...)
	c.mu.Unlock()
	c.persist(ctx, snapshot)
	return entry, err
}

func (c *ChatTab) persist(ctx context.Context, entries []model.ChatEntry) {
	if c.store == nil {
		return
	}
	if err := c.store.Save(ctx, c.sessionID, entries); err != nil {
		c.deps.Logger.Warn("failed to save chat transcript", "session", c.sessionID, "error", err)
	}
}

// Transcript returns a copy of the transcript.
func (c *ChatTab) Transcript() []model.ChatEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.ChatEntry(nil), c.entries...)
}

// Typing reports whether a reply is pending.
func (c *ChatTab) Typing() bool {
	return c.send.State().InFlight()
}

// Clear starts the conversation over and deletes the stored session.
func (c *ChatTab) Clear(ctx context.Context) error {
	c.send.Reset()
	c.mu.Lock()
	c.entries = []model.ChatEntry{model.AssistantEntry(Greeting, nil)}
	c.mu.Unlock()
	if c.store == nil {
		return nil
	}
	return c.store.Delete(ctx, c.sessionID)
}

// Close aborts a pending reply.
func (c *ChatTab) Close() {
	c.send.Cancel()
}
