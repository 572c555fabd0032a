package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Intent
	}{
		{name: "start", input: "/start", want: Intent{Kind: Reset, Command: true}},
		{name: "start-botname", input: "/start@igobot", want: Intent{Kind: Reset, Command: true}},
		{name: "start-args", input: "/start ref123", want: Intent{Kind: Reset, Command: true}},
		{name: "label", input: "Новый запрос", want: Intent{Kind: Reset}},
		{name: "label-prefix", input: "Новый запрос!", want: Intent{Kind: FreeText}},
		{name: "help", input: "/help", want: Intent{Kind: Help, Command: true}},
		{name: "help-upper", input: "/HELP", want: Intent{Kind: Help, Command: true}},
		{name: "unknown-command", input: "/foo", want: Intent{Kind: FreeText}},
		{name: "text", input: "Hello", want: Intent{Kind: FreeText}},
		{name: "text-with-start", input: "please /start", want: Intent{Kind: FreeText}},
		{name: "whitespace", input: "   ", want: Intent{Kind: FreeText}},
		{name: "empty", input: "", want: Intent{Kind: FreeText}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseIntent(tt.input, "Новый запрос"))
		})
	}
}

func TestParseIntentNoLabel(t *testing.T) {
	assert.Equal(t, Intent{Kind: FreeText}, ParseIntent("", ""))
}
