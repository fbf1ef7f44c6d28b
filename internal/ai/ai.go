// Package ai answers free-form questions through the OpenAI chat API.
package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const systemPrompt = `You are Harken, a helpful voice assistant running in ` +
	`the background. Provide concise, helpful responses suitable for being ` +
	`read aloud. If the user asks you to perform a system action, clearly ` +
	`state what action should be taken. Keep responses under 50 words ` +
	`unless specifically asked for more detail.`

type Client struct {
	api openai.Client
}

// New builds a chat client. httpClient may carry a SOCKS transport; nil
// uses the default transport.
func New(apiKey string, httpClient *http.Client) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &Client{api: openai.NewClient(opts...)}
}

// Ask sends one utterance and returns the assistant's answer.
func (c *Client) Ask(ctx context.Context, query string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(query),
		},
		Model:               openai.ChatModelGPT5Nano,
		MaxCompletionTokens: openai.Int(150),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty message content")
	}
	return content, nil
}
