package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PullRequestInc/go-gpt3"
	"github.com/igolaizola/igobot/internal/memory"
)

// ErrNoChoices is returned when the completion response has no choices.
var ErrNoChoices = errors.New("openai: no choices")

type Client struct {
	gpt3.Client
}

// Request is a chat completion request.
type Request struct {
	Model       string
	Messages    []memory.Message
	MaxTokens   int
	Temperature float32
}

type Option func(*options)

type options struct {
	baseURL string
	timeout time.Duration
}

// WithBaseURL sets the api base url, e.g. for an openai compatible server.
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

// WithTimeout sets the http client timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// New returns a new Client.
func New(key string, opts ...Option) *Client {
	o := &options{
		timeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(o)
	}
	gptOpts := []gpt3.ClientOption{gpt3.WithTimeout(o.timeout)}
	if o.baseURL != "" {
		gptOpts = append(gptOpts, gpt3.WithBaseURL(o.baseURL))
	}
	return &Client{
		Client: gpt3.NewClient(key, gptOpts...),
	}
}

// Complete sends the request and returns the content of the first choice.
func (c *Client) Complete(ctx context.Context, req *Request) (string, error) {
	completion, err := c.ChatCompletion(ctx, gpt3.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    chatMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: gpt3.Float32Ptr(req.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai: couldn't generate completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", ErrNoChoices
	}
	return completion.Choices[0].Message.Content, nil
}

// chatMessages converts the conversation messages to the api format.
func chatMessages(msgs []memory.Message) []gpt3.ChatCompletionRequestMessage {
	out := make([]gpt3.ChatCompletionRequestMessage, len(msgs))
	for i, m := range msgs {
		out[i] = gpt3.ChatCompletionRequestMessage{Role: m.Role, Content: m.Content}
	}
	return out
}
