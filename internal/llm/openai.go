package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/reqsift/internal/model"
	"github.com/ppiankov/reqsift/internal/util"
)

// LocalOptions configures the OpenAI-compatible local client
type LocalOptions struct {
	// APIKey is sent as a bearer token; local servers usually ignore it
	APIKey string

	// Timeout for a single request
	Timeout time.Duration

	// PlainText ignores Request.JSON; some servers reject response_format
	PlainText bool

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// LocalClient talks to a single OpenAI-compatible endpoint such as Ollama or
// llama.cpp. It makes exactly one attempt per request.
type LocalClient struct {
	client    *openai.Client
	model     string
	baseURL   string
	timeout   time.Duration
	plainText bool
}

// NewLocalClient creates a client for baseURL serving modelName
func NewLocalClient(baseURL, modelName string, opts LocalOptions) (*LocalClient, error) {
	if baseURL == "" || modelName == "" {
		return nil, fmt.Errorf("%w: local provider needs a base URL and a model", ErrConfig)
	}

	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = "local"
	}

	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = strings.TrimRight(baseURL, "/")
	clientConfig.HTTPClient = &http.Client{
		Transport: util.NewTransport(opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy),
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}

	return &LocalClient{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     modelName,
		baseURL:   clientConfig.BaseURL,
		timeout:   timeout,
		plainText: opts.PlainText,
	}, nil
}

// Name returns the provider name
func (p *LocalClient) Name() string {
	return "local"
}

// Complete posts the request to {baseURL}/chat/completions
func (p *LocalClient) Complete(ctx context.Context, req Request) (*Response, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, turn := range req.History {
		role := openai.ChatMessageRoleUser
		if turn.Role == model.RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.User,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	}
	if req.JSON && !p.plainText {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, p.classify(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, &ProviderError{Provider: p.Name(), Model: p.model, Err: ErrEmptyResponse}
	}

	return &Response{
		Text:     resp.Choices[0].Message.Content,
		Model:    p.model,
		Provider: p.Name(),
	}, nil
}

func (p *LocalClient) classify(err error) error {
	pe := &ProviderError{Provider: p.Name(), Model: p.model, Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		pe.StatusCode = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		pe.StatusCode = reqErr.HTTPStatusCode
	default:
		pe.Err = fmt.Errorf("connection to %s failed (is the local server running?): %w", p.baseURL, err)
	}
	pe.Transient = transientStatus(pe.StatusCode)
	return pe
}
