package relay

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Replies contains the static texts of the bot.
type Replies struct {
	// System is the instruction sent before the conversation history.
	System string `yaml:"system"`
	// NewQuery is the label of the keyboard button that resets the conversation.
	NewQuery string `yaml:"new-query"`
	Welcome  string `yaml:"welcome"`
	Help     string `yaml:"help"`
	Cleared  string `yaml:"cleared"`
	Failed   string `yaml:"failed"`
	// ResetFailed is sent when the context couldn't be cleared.
	ResetFailed string `yaml:"reset-failed"`
}

// DefaultReplies returns the built-in texts.
func DefaultReplies() Replies {
	return Replies{
		System:   "Ты — полезный ассистент. Отвечай кратко и по делу.",
		NewQuery: "Новый запрос",
		Welcome: "Привет! Я бот с ChatGPT.\n" +
			"Отправь мне текст — я сгенерирую ответ.\n\n" +
			"Команды:\n" +
			"/start — начать новый диалог\n" +
			"/help — помощь\n\n" +
			"Для нового диалога нажмите кнопку ниже:",
		Help: "Я использую ChatGPT для генерации ответов.\n" +
			"Все сообщения сохраняются в контексте диалога.\n" +
			"Чтобы начать заново — /start или кнопка «Новый запрос».",
		Cleared:     "Контекст диалога очищен. Отправьте новый запрос.",
		Failed:      "Произошла ошибка при генерации ответа. Попробуйте ещё раз.",
		ResetFailed: "Не удалось очистить контекст диалога. Попробуйте ещё раз.",
	}
}

// LoadReplies reads a yaml file with replies. Texts missing in the file keep
// their default value.
func LoadReplies(file string) (Replies, error) {
	replies := DefaultReplies()
	if file == "" {
		return replies, nil
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return Replies{}, fmt.Errorf("relay: couldn't read replies: %w", err)
	}
	if err := yaml.Unmarshal(b, &replies); err != nil {
		return Replies{}, fmt.Errorf("relay: couldn't parse replies: %w", err)
	}
	return replies, nil
}
