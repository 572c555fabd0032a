package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/igolaizola/igobot"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/peterbourgon/ff/v3/ffyaml"
)

// Build flags
var Version = ""
var Commit = ""
var Date = ""

func main() {
	// Create signal based context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Launch command
	cmd := newCommand()
	if err := cmd.ParseAndRun(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *ffcli.Command {
	fs := flag.NewFlagSet("igobot", flag.ExitOnError)

	return &ffcli.Command{
		ShortUsage: "igobot [flags] <subcommand>",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
		},
		Subcommands: []*ffcli.Command{
			newRunCommand("telegram", "run the bot on telegram"),
			newRunCommand("console", "chat with the bot on the terminal"),
			newVersionCommand(),
		},
	}
}

func newRunCommand(action, help string) *ffcli.Command {
	fs := flag.NewFlagSet(action, flag.ExitOnError)
	_ = fs.String("config", "igobot.yaml", "config file (optional)")

	cfg := &igobot.Config{}
	fs.StringVar(&cfg.Model, "model", "gpt-4o", "model (gpt-4o, gpt-3.5-turbo)")
	fs.DurationVar(&cfg.Timeout, "timeout", 2*time.Minute, "timeout for each reply generation")
	fs.StringVar(&cfg.Replies, "replies", "", "yaml file with custom replies (optional)")

	// Context
	fs.IntVar(&cfg.HistoryPairs, "history-pairs", 0, "max user/assistant pairs kept per conversation, 0 keeps all (optional)")
	fs.IntVar(&cfg.ContextTokens, "context-tokens", 0, "max tokens per request including the reply, oldest messages are dropped, 0 disables it (optional)")

	// Log
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", "console", "log format (console, json)")
	fs.StringVar(&cfg.LogDir, "log-dir", "", "log path, if empty, only logs to stderr (optional)")

	// OpenAI
	fs.StringVar(&cfg.OpenaiKey, "openai-key", "", "openai key")
	fs.StringVar(&cfg.OpenaiBaseURL, "openai-base-url", "", "openai api base url (optional)")
	fs.IntVar(&cfg.OpenaiMaxTokens, "openai-max-tokens", 1000, "openai max tokens per reply")
	fs.Float64Var(&cfg.OpenaiTemperature, "openai-temperature", 0.7, "openai sampling temperature")

	// Telegram
	if action == "telegram" {
		fs.StringVar(&cfg.TelegramToken, "telegram-token", "", "telegram bot token")
		fs.IntVar(&cfg.TelegramWorkers, "telegram-workers", 16, "max messages handled at the same time (optional)")
		fs.BoolVar(&cfg.TelegramDebug, "telegram-debug", false, "log telegram api calls (optional)")
	}

	return &ffcli.Command{
		Name:       action,
		ShortUsage: fmt.Sprintf("igobot %s [flags] <key> <value data...>", action),
		Options: []ff.Option{
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ffyaml.Parser),
			ff.WithAllowMissingConfigFile(true),
			ff.WithEnvVarPrefix("IGOBOT"),
		},
		ShortHelp: help,
		FlagSet:   fs,
		Exec: func(ctx context.Context, args []string) error {
			return igobot.Run(ctx, action, cfg)
		},
	}
}

func newVersionCommand() *ffcli.Command {
	return &ffcli.Command{
		Name:       "version",
		ShortUsage: "igobot version",
		ShortHelp:  "print version",
		Exec: func(ctx context.Context, args []string) error {
			v := Version
			if v == "" {
				if buildInfo, ok := debug.ReadBuildInfo(); ok {
					v = buildInfo.Main.Version
				}
			}
			if v == "" {
				v = "dev"
			}
			versionFields := []string{v}
			if Commit != "" {
				versionFields = append(versionFields, Commit)
			}
			if Date != "" {
				versionFields = append(versionFields, Date)
			}
			fmt.Println(strings.Join(versionFields, " "))
			return nil
		},
	}
}
