package model

// ImportStats holds the diagnostics computed for one import call
type ImportStats struct {
	Total           int          `json:"total" yaml:"total"`
	DuplicatesFixed int          `json:"duplicatesFixed" yaml:"duplicates_fixed"`
	SequenceGap     *SequenceGap `json:"sequenceGap,omitempty" yaml:"sequence_gap,omitempty"`
}

// SequenceGap describes a numeric id span that holds fewer records than it implies
type SequenceGap struct {
	Min      int `json:"min" yaml:"min"`
	Max      int `json:"max" yaml:"max"`
	Expected int `json:"expected" yaml:"expected"`
	Actual   int `json:"actual" yaml:"actual"`
}

// Missing returns how many records the span implies are absent
func (g SequenceGap) Missing() int {
	return g.Expected - g.Actual
}
