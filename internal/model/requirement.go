package model

// Requirement is the canonical record of an imported corpus
type Requirement struct {
	ReqID        string `json:"req_id" yaml:"req_id"`
	SourceDoc    string `json:"source_doc" yaml:"source_doc"`
	Section      string `json:"section" yaml:"section"`
	Category     string `json:"category" yaml:"category"`
	Subcategory  string `json:"subcategory" yaml:"subcategory"`
	Criticality  string `json:"criticality" yaml:"criticality"` // MUST, SHOULD, MAY or whatever the source used
	TextOriginal string `json:"text_original" yaml:"text_original"`
	CTONote      string `json:"ctonote,omitempty" yaml:"ctonote,omitempty"`
}

// Criticality levels recognized by the analysis views
const (
	CriticalityMust   = "MUST"
	CriticalityShould = "SHOULD"
	CriticalityMay    = "MAY"
)

// Defaults applied when a raw record omits a field
const (
	DefaultSourceDoc   = "Unknown Source"
	DefaultSection     = ""
	DefaultCategory    = "Uncategorized"
	DefaultSubcategory = ""
	DefaultCriticality = CriticalityMay
)

// RequirementFields lists the recognized raw record fields in export column order
var RequirementFields = []string{
	"req_id",
	"category",
	"subcategory",
	"criticality",
	"source_doc",
	"section",
	"text_original",
	"ctonote",
}

// Field returns the value of a field by its JSON name
func (r Requirement) Field(name string) string {
	switch name {
	case "req_id":
		return r.ReqID
	case "source_doc":
		return r.SourceDoc
	case "section":
		return r.Section
	case "category":
		return r.Category
	case "subcategory":
		return r.Subcategory
	case "criticality":
		return r.Criticality
	case "text_original":
		return r.TextOriginal
	case "ctonote":
		return r.CTONote
	default:
		return ""
	}
}

// ShortCriticality abbreviates the criticality for compact model context (M, S, O)
func (r Requirement) ShortCriticality() string {
	switch r.Criticality {
	case CriticalityMust:
		return "M"
	case CriticalityShould:
		return "S"
	default:
		return "O"
	}
}

// Clone returns a copy of the corpus slice; Requirement values are immutable so a shallow copy suffices
func Clone(corpus []Requirement) []Requirement {
	if corpus == nil {
		return nil
	}
	out := make([]Requirement, len(corpus))
	copy(out, corpus)
	return out
}
