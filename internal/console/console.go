package console

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/igolaizola/igobot/internal/relay"
)

// ConversationID is the id used for the only console conversation.
const ConversationID = "console"

type Handler interface {
	Handle(ctx context.Context, ev relay.Event, replier relay.Replier) error
}

// Run reads one message per line and writes the replies until the input ends
// or the context is done.
func Run(ctx context.Context, h Handler, r io.Reader, w io.Writer, newQuery string) error {
	lines := make(chan string)
	errC := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errC <- fmt.Errorf("console: couldn't read input: %w", err)
		}
	}()

	rp := &replier{w: w, newQuery: newQuery}
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errC:
					return err
				default:
					return nil
				}
			}
			if line == "" {
				continue
			}
			if err := h.Handle(ctx, relay.Event{ConversationID: ConversationID, Text: line}, rp); err != nil {
				return err
			}
		}
	}
}

type replier struct {
	w        io.Writer
	newQuery string
}

func (r *replier) Reply(ctx context.Context, reply relay.Reply) error {
	text := reply.Text
	if reply.Keyboard && r.newQuery != "" {
		text = fmt.Sprintf("%s\n[%s]", text, r.newQuery)
	}
	if _, err := fmt.Fprintln(r.w, text); err != nil {
		return fmt.Errorf("console: couldn't write reply: %w", err)
	}
	return nil
}
