package model

// AuditType selects what an audit run looks for
type AuditType string

const (
	AuditDuplicate   AuditType = "DUPLICATE"   // Redundant requirements
	AuditVague       AuditType = "VAGUE"       // Vague wording
	AuditSpelling    AuditType = "SPELLING"    // Typos and casing
	AuditConsistency AuditType = "CONSISTENCY" // Terminology drift
)

// AuditTypes lists all audit modes in display order
var AuditTypes = []AuditType{AuditDuplicate, AuditVague, AuditSpelling, AuditConsistency}

// SuggestionType is the edit an audit suggestion proposes
type SuggestionType string

const (
	SuggestionUpdate SuggestionType = "UPDATE"
	SuggestionDelete SuggestionType = "DELETE"
)

// Confidence levels reported by the audit model
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// AuditSuggestion is one proposed edit against a corpus snapshot
type AuditSuggestion struct {
	ID            string         `json:"id" yaml:"id" validate:"required"`
	Type          SuggestionType `json:"type" yaml:"type" validate:"oneof=UPDATE DELETE"`
	Issue         string         `json:"issue" yaml:"issue"`
	SuggestedText string         `json:"suggested_text,omitempty" yaml:"suggested_text,omitempty"`
	Confidence    string         `json:"confidence" yaml:"confidence" validate:"omitempty,oneof=HIGH MEDIUM LOW"`
}

// ChatRole identifies the author of a chat turn
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatTurn is one prior message of a chat conversation
type ChatTurn struct {
	Role ChatRole `json:"role" yaml:"role"`
	Text string   `json:"text" yaml:"text"`
}
