package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/igolaizola/igobot/internal/relay"
	"github.com/rs/zerolog"
)

type Handler interface {
	Handle(ctx context.Context, ev relay.Event, replier relay.Replier) error
}

type Config struct {
	Token string
	// NewQuery is the label of the reset button of the reply keyboard.
	NewQuery string
	// Workers is the maximum number of messages handled at the same time.
	Workers int
	Debug   bool
}

type Bot struct {
	api      *tgbotapi.BotAPI
	handler  Handler
	newQuery string
	workers  int
	log      zerolog.Logger
}

// New connects to the bot api and returns a bot that passes text messages to
// the handler.
func New(cfg *Config, h Handler, log zerolog.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram: token is required")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram: couldn't create bot: %w", err)
	}
	api.Debug = cfg.Debug
	workers := cfg.Workers
	if workers <= 0 {
		workers = 16
	}
	log.Info().Str("bot", api.Self.UserName).Msg("telegram: authorized")
	return &Bot{
		api:      api,
		handler:  h,
		newQuery: cfg.NewQuery,
		workers:  workers,
		log:      log,
	}, nil
}

// Run polls updates until the context is done. Messages of a conversation are
// handled in order, different conversations are handled concurrently. In
// flight messages are awaited before returning.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()
	return b.serve(ctx, updates)
}

func (b *Bot) serve(ctx context.Context, updates <-chan tgbotapi.Update) error {
	q := newQueue(b.workers)
	defer q.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			ev, rp, ok := b.event(update)
			if !ok {
				continue
			}
			q.Go(ev.ConversationID, func() {
				// Errors are already logged by the handler
				_ = b.handler.Handle(ctx, ev, rp)
			})
		}
	}
}

// event converts an update into a relay event. Only text messages with a
// sender are accepted.
func (b *Bot) event(update tgbotapi.Update) (relay.Event, *replier, bool) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return relay.Event{}, nil, false
	}
	ev := relay.Event{
		ConversationID: strconv.FormatInt(msg.From.ID, 10),
		Text:           msg.Text,
	}
	rp := &replier{
		sender:    b.api,
		chatID:    msg.Chat.ID,
		messageID: msg.MessageID,
		newQuery:  b.newQuery,
	}
	return ev, rp, true
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type replier struct {
	sender    sender
	chatID    int64
	messageID int
	newQuery  string
}

// Reply answers the inbound message in its chat.
func (r *replier) Reply(ctx context.Context, reply relay.Reply) error {
	msg := tgbotapi.NewMessage(r.chatID, reply.Text)
	msg.ReplyToMessageID = r.messageID
	if reply.Keyboard && r.newQuery != "" {
		keyboard := tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(r.newQuery)),
		)
		keyboard.ResizeKeyboard = true
		msg.ReplyMarkup = keyboard
	}
	if _, err := r.sender.Send(msg); err != nil {
		return fmt.Errorf("telegram: couldn't send message: %w", err)
	}
	return nil
}
