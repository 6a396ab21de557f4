package azopenai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/support-rag-bot/internal/core/domain"
	"github.com/kirillkom/support-rag-bot/internal/infrastructure/resilience"
)

const apiVersion = "2024-02-01"

// Client talks to an Azure OpenAI chat completions deployment.
type Client struct {
	endpoint   string
	apiKey     string
	deployment string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	HTTPTimeout        time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(endpoint, apiKey, deployment string, options Options) *Client {
	httpTimeout := options.HTTPTimeout
	if httpTimeout <= 0 {
		httpTimeout = 120 * time.Second
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		deployment: deployment,
		httpClient: &http.Client{Timeout: httpTimeout},
		executor:   options.ResilienceExecutor,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) Complete(ctx context.Context, turns []domain.ConversationTurn, maxTokens int, temperature float64) (string, error) {
	messages := make([]chatMessage, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, chatMessage{Role: string(turn.Role), Content: turn.Content})
	}

	request := chatRequest{
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	path := fmt.Sprintf("/openai/deployments/%s/chat/completions?api-version=%s", c.deployment, apiVersion)

	var response chatResponse
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, path, request, &response, "chat_completions")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "azopenai.chat_completions", call, resilience.ClassifyHTTPError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("chat completions", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("chat completions: empty choices")
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
