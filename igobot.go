package igobot

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/igolaizola/igobot/internal/console"
	"github.com/igolaizola/igobot/internal/logging"
	"github.com/igolaizola/igobot/internal/memory/inmem"
	"github.com/igolaizola/igobot/internal/relay"
	"github.com/igolaizola/igobot/internal/telegram"
	"github.com/igolaizola/igobot/pkg/openai"
	"github.com/rs/zerolog"
)

type Config struct {
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
	Replies string        `yaml:"replies"`

	// Context parameters
	HistoryPairs  int `yaml:"history-pairs"`
	ContextTokens int `yaml:"context-tokens"`

	// Log parameters
	LogLevel  string `yaml:"log-level"`
	LogFormat string `yaml:"log-format"`
	LogDir    string `yaml:"log-dir"`

	// Openai parameters
	OpenaiKey         string  `yaml:"openai-key"`
	OpenaiBaseURL     string  `yaml:"openai-base-url"`
	OpenaiMaxTokens   int     `yaml:"openai-max-tokens"`
	OpenaiTemperature float64 `yaml:"openai-temperature"`

	// Telegram parameters
	TelegramToken   string `yaml:"telegram-token"`
	TelegramWorkers int    `yaml:"telegram-workers"`
	TelegramDebug   bool   `yaml:"telegram-debug"`
}

func Run(ctx context.Context, action string, cfg *Config) error {
	switch action {
	case "telegram":
		return Telegram(ctx, cfg)
	case "console":
		return Console(ctx, cfg, os.Stdin, os.Stdout)
	default:
		return fmt.Errorf("igobot: unknown action: %s", action)
	}
}

// Telegram runs the bot on telegram
func Telegram(ctx context.Context, cfg *Config) error {
	if cfg.TelegramToken == "" {
		return fmt.Errorf("igobot: telegram token is required")
	}
	log, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog.Close()

	rly, replies, err := newRelay(cfg, log)
	if err != nil {
		return err
	}
	bot, err := telegram.New(&telegram.Config{
		Token:    cfg.TelegramToken,
		NewQuery: replies.NewQuery,
		Workers:  cfg.TelegramWorkers,
		Debug:    cfg.TelegramDebug,
	}, rly, log)
	if err != nil {
		return fmt.Errorf("igobot: couldn't create telegram bot: %w", err)
	}
	log.Info().Str("model", cfg.Model).Msg("igobot: telegram bot started")
	defer log.Info().Msg("igobot: telegram bot stopped")
	return bot.Run(ctx)
}

// Console runs a single conversation on the terminal
func Console(ctx context.Context, cfg *Config, r io.Reader, w io.Writer) error {
	log, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog.Close()

	rly, replies, err := newRelay(cfg, log)
	if err != nil {
		return err
	}
	return console.Run(ctx, rly, r, w, replies.NewQuery)
}

func newLogger(cfg *Config) (zerolog.Logger, io.Closer, error) {
	log, c, err := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Dir:    cfg.LogDir,
	}, os.Stderr)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("igobot: couldn't create logger: %w", err)
	}
	return log, c, nil
}

func newRelay(cfg *Config, log zerolog.Logger) (*relay.Relay, relay.Replies, error) {
	if err := validate(cfg); err != nil {
		return nil, relay.Replies{}, err
	}
	replies, err := relay.LoadReplies(cfg.Replies)
	if err != nil {
		return nil, relay.Replies{}, fmt.Errorf("igobot: couldn't load replies: %w", err)
	}

	var opts []openai.Option
	if cfg.OpenaiBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.OpenaiBaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, openai.WithTimeout(cfg.Timeout))
	}
	client := openai.New(cfg.OpenaiKey, opts...)

	rly := relay.New(relay.Config{
		Model:         cfg.Model,
		MaxTokens:     cfg.OpenaiMaxTokens,
		Temperature:   float32(cfg.OpenaiTemperature),
		Timeout:       cfg.Timeout,
		ContextTokens: cfg.ContextTokens,
		Replies:       replies,
	}, inmem.New(cfg.HistoryPairs), client, log)
	return rly, replies, nil
}

// validate checks the relay parameters, so a bad config fails at startup
// instead of on every message.
func validate(cfg *Config) error {
	switch {
	case cfg.OpenaiKey == "":
		return fmt.Errorf("igobot: openai key is required")
	case cfg.Model == "":
		return fmt.Errorf("igobot: model is required")
	case cfg.OpenaiMaxTokens < 0:
		return fmt.Errorf("igobot: openai max tokens can't be negative")
	case cfg.HistoryPairs < 0:
		return fmt.Errorf("igobot: history pairs can't be negative")
	case cfg.ContextTokens < 0:
		return fmt.Errorf("igobot: context tokens can't be negative")
	case cfg.ContextTokens > 0 && cfg.ContextTokens <= cfg.OpenaiMaxTokens:
		return fmt.Errorf("igobot: context tokens (%d) must be greater than openai max tokens (%d)", cfg.ContextTokens, cfg.OpenaiMaxTokens)
	}
	return nil
}
