package fixed

import (
	"errors"
	"fmt"
	"sync"

	"github.com/igolaizola/igobot/internal/memory"
	"github.com/tiktoken-go/tokenizer"
)

// ErrTooLong is returned when the fixed messages alone exceed the token budget.
var ErrTooLong = errors.New("fixed: prompt too long")

// messageOverhead is added to every message for the role and separators.
const messageOverhead = 8

var (
	encOnce sync.Once
	encFn   func(string) int
	encErr  error
)

// encoder returns the cl100k token counter, loaded once per process.
func encoder() (func(string) int, error) {
	encOnce.Do(func() {
		enc, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err != nil {
			encErr = fmt.Errorf("fixed: couldn't get tokenizer: %w", err)
			return
		}
		encFn = func(s string) int {
			ids, _, _ := enc.Encode(s)
			return len(ids)
		}
	})
	return encFn, encErr
}

// Window trims conversation histories to a token budget.
type Window struct {
	maxTokens int
	reserve   int
	count     func(string) int
}

// NewWindow returns a window that keeps requests within maxTokens, leaving
// reserve tokens for the response. A zero maxTokens disables the window.
func NewWindow(maxTokens, reserve int) *Window {
	return &Window{
		maxTokens: maxTokens,
		reserve:   reserve,
	}
}

// Fit builds the request messages: the first message, the history and the
// last message. Oldest history pairs are removed until the request fits.
// Each message is counted once.
func (w *Window) Fit(first memory.Message, history []memory.Message, last memory.Message) ([]memory.Message, error) {
	if w.maxTokens <= 0 {
		return build(first, history, last), nil
	}
	count := w.count
	if count == nil {
		var err error
		if count, err = encoder(); err != nil {
			return nil, err
		}
	}
	size := func(m memory.Message) int {
		return count(m.Content+"\n") + messageOverhead
	}

	total := size(first) + size(last)
	sizes := make([]int, len(history))
	for i, m := range history {
		sizes[i] = size(m)
		total += sizes[i]
	}

	start := 0
	for total+w.reserve > w.maxTokens {
		if start == len(history) {
			return nil, fmt.Errorf("%w (%d tokens)", ErrTooLong, total)
		}
		// Remove a whole user/assistant pair
		end := start + 2
		if end > len(history) {
			end = len(history)
		}
		for _, n := range sizes[start:end] {
			total -= n
		}
		start = end
	}
	return build(first, history[start:], last), nil
}

func build(first memory.Message, history []memory.Message, last memory.Message) []memory.Message {
	msgs := make([]memory.Message, 0, len(history)+2)
	msgs = append(msgs, first)
	msgs = append(msgs, history...)
	return append(msgs, last)
}

// Tokens estimates the prompt size of the messages, the same way Fit does.
func Tokens(messages []memory.Message) (int, error) {
	count, err := encoder()
	if err != nil {
		return 0, err
	}
	var total int
	for _, m := range messages {
		total += count(m.Content+"\n") + messageOverhead
	}
	return total, nil
}
