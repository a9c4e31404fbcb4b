package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/ppiankov/reqsift/internal/model"
	"github.com/ppiankov/reqsift/internal/util"
)

// GeminiOptions configures the cloud caller
type GeminiOptions struct {
	// BaseURL overrides the API endpoint (tests, gateways)
	BaseURL string

	// Timeout bounds a single model call
	Timeout time.Duration

	// PlainText ignores Request.JSON and never asks for a JSON response type
	PlainText bool

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// GeminiCaller calls one Gemini model per request
type GeminiCaller struct {
	client    *genai.Client
	timeout   time.Duration
	plainText bool
}

// NewGeminiCaller creates a cloud caller authenticated with apiKey
func NewGeminiCaller(ctx context.Context, apiKey string, opts GeminiOptions) (*GeminiCaller, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: cloud API key is required", ErrConfig)
	}

	cfg := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Transport: util.NewTransport(opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy),
		},
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiCaller{client: client, timeout: opts.Timeout, plainText: opts.PlainText}, nil
}

// Name returns the provider name
func (g *GeminiCaller) Name() string {
	return "gemini"
}

// Call sends req to the named model
func (g *GeminiCaller) Call(ctx context.Context, modelName string, req Request) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := genai.Role(genai.RoleUser)
		if turn.Role == model.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(req.User, genai.RoleUser))

	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON && !g.plainText {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, modelName, contents, config)
	if err != nil {
		return "", classifyGeminiError(modelName, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &ProviderError{Provider: g.Name(), Model: modelName, Err: ErrEmptyResponse}
	}
	return text, nil
}

// classifyGeminiError marks quota and overload failures as transient
func classifyGeminiError(modelName string, err error) error {
	pe := &ProviderError{Provider: "gemini", Model: modelName, Err: err}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		pe.StatusCode = apiErr.Code
		pe.Transient = transientStatus(apiErr.Code) || transientGeminiStatus(apiErr.Status)
	case errors.As(err, &apiErrPtr):
		pe.StatusCode = apiErrPtr.Code
		pe.Transient = transientStatus(apiErrPtr.Code) || transientGeminiStatus(apiErrPtr.Status)
	}
	return pe
}

func transientGeminiStatus(status string) bool {
	return status == "RESOURCE_EXHAUSTED" || status == "UNAVAILABLE"
}
