package llm

import (
	"context"

	"github.com/ppiankov/reqsift/internal/model"
)

// Task identifies the logical operation a request belongs to
type Task string

const (
	TaskExtract Task = "extract"
	TaskChat    Task = "chat"
	TaskSummary Task = "summary"
	TaskAudit   Task = "audit"
)

// Client executes one logical model request. Cloud clients may try several
// models behind a single call; local and demo clients make one attempt.
type Client interface {
	// Name returns the provider name
	Name() string

	// Complete sends the request and returns the response text
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Request is a single model call
type Request struct {
	// Task labels the call for logging, caching and demo answers
	Task Task

	// System is the system instruction
	System string

	// User is the user message for this turn
	User string

	// History holds prior chat turns, oldest first
	History []model.ChatTurn

	// JSON asks the provider for JSON-formatted output.
	// The response is still plain text and must go through extraction.
	JSON bool
}

// Response is the text returned by a model
type Response struct {
	// Text is the raw response text
	Text string

	// Model is the model that produced the response
	Model string

	// Provider is the name of the client that answered
	Provider string

	// Cached is true when the response came from the response cache
	Cached bool
}
