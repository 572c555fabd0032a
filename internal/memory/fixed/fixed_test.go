package fixed

import (
	"errors"
	"strings"
	"testing"

	"github.com/igolaizola/igobot/internal/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairs(n int, content string) []memory.Message {
	var msgs []memory.Message
	for i := 0; i < n; i++ {
		msgs = append(msgs,
			memory.Message{Role: memory.RoleUser, Content: content},
			memory.Message{Role: memory.RoleAssistant, Content: content},
		)
	}
	return msgs
}

func TestTokens(t *testing.T) {
	n, err := Tokens(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	one, err := Tokens([]memory.Message{{Role: memory.RoleUser, Content: "hello"}})
	require.NoError(t, err)
	two, err := Tokens([]memory.Message{{Role: memory.RoleUser, Content: "hello"}, {Role: memory.RoleUser, Content: "hello"}})
	require.NoError(t, err)
	assert.Greater(t, one, 8)
	assert.Greater(t, two, one)
}

func TestFitDisabled(t *testing.T) {
	system := memory.Message{Role: memory.RoleSystem, Content: "system"}
	input := memory.Message{Role: memory.RoleUser, Content: "input"}
	history := pairs(100, strings.Repeat("word ", 50))

	got, err := NewWindow(0, 1000).Fit(system, history, input)
	require.NoError(t, err)
	require.Len(t, got, 202)
	assert.Equal(t, system, got[0])
	assert.Equal(t, history, got[1:201])
	assert.Equal(t, input, got[201])
}

func TestFitTrimsOldestPairs(t *testing.T) {
	system := memory.Message{Role: memory.RoleSystem, Content: "system"}
	input := memory.Message{Role: memory.RoleUser, Content: "input"}
	history := pairs(20, strings.Repeat("word ", 20))
	history[len(history)-2].Content = "latest question"
	history[len(history)-1].Content = "latest answer"

	full, err := Tokens(append(append([]memory.Message{system}, history...), input))
	require.NoError(t, err)

	got, err := NewWindow(full/2, 0).Fit(system, history, input)
	require.NoError(t, err)

	assert.Less(t, len(got), 42)
	assert.Equal(t, 0, len(got)%2)
	assert.Equal(t, system, got[0])
	assert.Equal(t, input, got[len(got)-1])
	assert.Equal(t, memory.RoleUser, got[1].Role)
	assert.Equal(t, "latest question", got[len(got)-3].Content)
	assert.Equal(t, "latest answer", got[len(got)-2].Content)

	tokens, err := Tokens(got)
	require.NoError(t, err)
	assert.LessOrEqual(t, tokens, full/2)
}

func TestFitTooLong(t *testing.T) {
	system := memory.Message{Role: memory.RoleSystem, Content: "system"}
	input := memory.Message{Role: memory.RoleUser, Content: strings.Repeat("word ", 500)}

	_, err := NewWindow(100, 0).Fit(system, pairs(2, "a"), input)
	assert.True(t, errors.Is(err, ErrTooLong))
}

func TestFitCountsEachMessageOnce(t *testing.T) {
	calls := 0
	w := NewWindow(1000, 100)
	w.count = func(s string) int {
		calls++
		return 10
	}
	system := memory.Message{Role: memory.RoleSystem, Content: "system"}
	input := memory.Message{Role: memory.RoleUser, Content: "input"}

	// Each message weighs 18 tokens, 900 are available: 50 messages fit
	got, err := w.Fit(system, pairs(500, "x"), input)
	require.NoError(t, err)
	assert.Len(t, got, 50)
	assert.Equal(t, 1002, calls)
}

func TestFitOddHistory(t *testing.T) {
	w := NewWindow(60, 0)
	w.count = func(string) int { return 2 }
	system := memory.Message{Role: memory.RoleSystem, Content: "system"}
	input := memory.Message{Role: memory.RoleUser, Content: "input"}
	history := append(pairs(2, "x"), memory.Message{Role: memory.RoleUser, Content: "dangling"})

	// 10 tokens per message, the oldest pair is dropped
	got, err := w.Fit(system, history, input)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "dangling", got[3].Content)

	w.maxTokens = 20
	got, err = w.Fit(system, history, input)
	require.NoError(t, err)
	assert.Equal(t, []memory.Message{system, input}, got)
}
