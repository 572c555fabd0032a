package relay

import "strings"

// Kind of an inbound message.
type Kind int

const (
	FreeText Kind = iota
	Reset
	Help
)

func (k Kind) String() string {
	switch k {
	case Reset:
		return "reset"
	case Help:
		return "help"
	default:
		return "text"
	}
}

// Intent is the meaning of an inbound message, resolved once when it arrives.
type Intent struct {
	Kind Kind
	// Command is set when the intent came from a slash command instead of the
	// new query label.
	Command bool
}

// ParseIntent resolves the intent of the text. The reset intent is triggered by
// /start or by text equal to the new query label, /help triggers the help
// intent and everything else is free text.
func ParseIntent(text, newQuery string) Intent {
	if newQuery != "" && text == newQuery {
		return Intent{Kind: Reset}
	}
	switch command(text) {
	case "start":
		return Intent{Kind: Reset, Command: true}
	case "help":
		return Intent{Kind: Help, Command: true}
	}
	return Intent{Kind: FreeText}
}

// command returns the name of the slash command in the text, without the
// @botname suffix and the arguments.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	name := strings.TrimPrefix(text, "/")
	if i := strings.IndexAny(name, " \t\n"); i >= 0 {
		name = name[:i]
	}
	if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}
