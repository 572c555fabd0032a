package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/igolaizola/igobot/internal/keylock"
	"github.com/igolaizola/igobot/internal/memory"
	"github.com/igolaizola/igobot/internal/memory/fixed"
	"github.com/igolaizola/igobot/pkg/openai"
	"github.com/rs/zerolog"
)

// Event is an inbound message.
type Event struct {
	ConversationID string
	Text           string
}

// Reply is an outbound message.
type Reply struct {
	Text string
	// Keyboard asks the messenger to show the new query button.
	Keyboard bool
}

// Replier sends the reply to the conversation that originated the event.
type Replier interface {
	Reply(ctx context.Context, reply Reply) error
}

// Completer generates the assistant reply.
type Completer interface {
	Complete(ctx context.Context, req *openai.Request) (string, error)
}

type Config struct {
	Model       string
	MaxTokens   int
	Temperature float32
	// Timeout bounds the wait for the conversation lock plus the completion.
	Timeout time.Duration
	// ContextTokens limits the request size, zero disables the limit.
	ContextTokens int
	Replies       Replies
}

type Relay struct {
	cfg       Config
	memory    memory.Memory
	completer Completer
	lock      keylock.Lock
	window    fitter
	log       zerolog.Logger
}

type fitter interface {
	Fit(first memory.Message, history []memory.Message, last memory.Message) ([]memory.Message, error)
}

// New returns a relay that owns the given memory.
func New(cfg Config, mem memory.Memory, completer Completer, log zerolog.Logger) *Relay {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Relay{
		cfg:       cfg,
		memory:    mem,
		completer: completer,
		lock:      keylock.New(),
		window:    fixed.NewWindow(cfg.ContextTokens, cfg.MaxTokens),
		log:       log,
	}
}

// Handle processes an inbound event and sends exactly one reply. Completion
// errors are answered with the failed reply, the returned error only reports
// that the reply couldn't be sent.
func (r *Relay) Handle(ctx context.Context, ev Event, replier Replier) error {
	log := r.log.With().
		Str("conversation", ev.ConversationID).
		Str("event", uuid.NewString()).
		Logger()

	intent := ParseIntent(ev.Text, r.cfg.Replies.NewQuery)
	log.Debug().Stringer("intent", intent.Kind).Msg("relay: event received")

	var reply Reply
	switch intent.Kind {
	case Reset:
		reply = Reply{Text: r.cfg.Replies.Cleared}
		if intent.Command {
			reply = Reply{Text: r.cfg.Replies.Welcome, Keyboard: true}
		}
		if err := r.clear(ctx, ev.ConversationID); err != nil {
			log.Error().Err(err).Msg("relay: couldn't clear context")
			reply = Reply{Text: r.cfg.Replies.ResetFailed}
		}
	case Help:
		reply = Reply{Text: r.cfg.Replies.Help}
	default:
		text, err := r.turn(ctx, log, ev)
		if err != nil {
			log.Error().Err(err).Msg("relay: couldn't generate reply")
			text = r.cfg.Replies.Failed
		}
		reply = Reply{Text: text}
	}

	if err := replier.Reply(ctx, reply); err != nil {
		log.Error().Err(err).Msg("relay: couldn't send reply")
		return fmt.Errorf("relay: couldn't send reply: %w", err)
	}
	return nil
}

func (r *Relay) clear(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()
	unlock, err := r.lock.Lock(ctx, id)
	if err != nil {
		return fmt.Errorf("relay: couldn't lock conversation: %w", err)
	}
	defer unlock()
	r.memory.Clear(id)
	return nil
}

// turn runs a completion with the conversation history and commits the
// user/assistant pair only if it succeeds.
func (r *Relay) turn(ctx context.Context, log zerolog.Logger, ev Event) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	// Turns of the same conversation are serialized, so each one sees the
	// previous pair.
	unlock, err := r.lock.Lock(ctx, ev.ConversationID)
	if err != nil {
		return "", fmt.Errorf("relay: couldn't lock conversation: %w", err)
	}
	defer unlock()

	history := r.memory.Get(ev.ConversationID)
	messages, err := r.window.Fit(
		memory.Message{Role: memory.RoleSystem, Content: r.cfg.Replies.System},
		history,
		memory.Message{Role: memory.RoleUser, Content: ev.Text},
	)
	if err != nil {
		return "", fmt.Errorf("relay: couldn't build request: %w", err)
	}
	if dropped := len(history) + 2 - len(messages); dropped > 0 {
		log.Debug().Int("dropped", dropped).Msg("relay: history trimmed")
	}

	start := time.Now()
	text, err := r.completer.Complete(ctx, &openai.Request{
		Model:       r.cfg.Model,
		Messages:    messages,
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
	})
	if err != nil {
		return "", err
	}
	r.memory.Append(ev.ConversationID, ev.Text, text)

	log.Info().
		Int("history", len(history)).
		Dur("elapsed", time.Since(start)).
		Msg("relay: reply generated")
	return text, nil
}
