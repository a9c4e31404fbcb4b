package importer

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/ppiankov/reqsift/internal/model"
)

const base36Upper = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Options tunes the normalizer heuristics
type Options struct {
	// NumericMajority is the share of records that must carry a numeric id
	// suffix before sequence-gap detection engages (strictly greater than)
	NumericMajority float64

	// DuplicateSeparator joins a colliding id and its counter (R-1_1)
	DuplicateSeparator string

	// GenerateID synthesizes an id for records without one
	GenerateID func() string
}

// DefaultOptions returns the standard heuristics
func DefaultOptions() Options {
	return Options{
		NumericMajority:    0.5,
		DuplicateSeparator: "_",
		GenerateID:         RandomID,
	}
}

// RandomID returns UNK- followed by five random upper-case base-36 characters
func RandomID() string {
	b := make([]byte, 5)
	for i := range b {
		b[i] = base36Upper[rand.IntN(len(base36Upper))]
	}
	return "UNK-" + string(b)
}

// Normalizer turns raw parsed records into a uniquely keyed corpus
type Normalizer struct {
	opts Options
}

// NewNormalizer creates a normalizer; zero-valued options take their defaults
func NewNormalizer(opts Options) *Normalizer {
	def := DefaultOptions()
	if opts.NumericMajority <= 0 {
		opts.NumericMajority = def.NumericMajority
	}
	if opts.DuplicateSeparator == "" {
		opts.DuplicateSeparator = def.DuplicateSeparator
	}
	if opts.GenerateID == nil {
		opts.GenerateID = def.GenerateID
	}
	return &Normalizer{opts: opts}
}

// Normalize validates and repairs raw records. Non-object entries are skipped.
// It fails with ErrEmptyImport when no object survives.
func (n *Normalizer) Normalize(raw []any) ([]model.Requirement, model.ImportStats, error) {
	var (
		out       []model.Requirement
		seen      = make(map[string]bool)
		collided  = make(map[string]bool)
		next      = make(map[string]int)
		dupsFixed int
		minID     = math.MaxInt
		maxID     = math.MinInt
		numeric   int
	)

	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}

		base := strings.TrimSpace(text(obj["req_id"]))
		if base == "" {
			base = n.opts.GenerateID()
		}

		if num, ok := trailingNumber(base); ok {
			minID = min(minID, num)
			maxID = max(maxID, num)
			numeric++
		}

		id := base
		if seen[id] {
			if !collided[base] {
				collided[base] = true
				dupsFixed++
			}
			counter := max(next[base], 1)
			for {
				id = base + n.opts.DuplicateSeparator + strconv.Itoa(counter)
				counter++
				if !seen[id] {
					break
				}
			}
			next[base] = counter
		}
		seen[id] = true

		out = append(out, model.Requirement{
			ReqID:        id,
			SourceDoc:    orDefault(obj["source_doc"], model.DefaultSourceDoc),
			Section:      orDefault(obj["section"], model.DefaultSection),
			Category:     orDefault(obj["category"], model.DefaultCategory),
			Subcategory:  orDefault(obj["subcategory"], model.DefaultSubcategory),
			Criticality:  orDefault(obj["criticality"], model.DefaultCriticality),
			TextOriginal: orDefault(obj["text_original"], ""),
			CTONote:      orDefault(obj["ctonote"], ""),
		})
	}

	if len(out) == 0 {
		return nil, model.ImportStats{}, ErrEmptyImport
	}

	stats := model.ImportStats{
		Total:           len(out),
		DuplicatesFixed: dupsFixed,
	}

	if float64(numeric) > float64(len(out))*n.opts.NumericMajority && maxID > minID && maxID-minID < math.MaxInt {
		expected := maxID - minID + 1
		if len(out) < expected {
			stats.SequenceGap = &model.SequenceGap{
				Min:      minID,
				Max:      maxID,
				Expected: expected,
				Actual:   len(out),
			}
		}
	}

	return out, stats, nil
}

// trailingNumber parses the run of digits ending id
func trailingNumber(id string) (int, bool) {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	if i == len(id) {
		return 0, false
	}
	num, err := strconv.Atoi(id[i:])
	if err != nil {
		return 0, false
	}
	return num, true
}

func orDefault(v any, def string) string {
	if s := text(v); s != "" {
		return s
	}
	return def
}

// text renders a raw JSON value as a string. Empty strings, zero, false and
// null render as "" so that the field default applies.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if !t {
			return ""
		}
		return "true"
	case json.Number:
		if i, err := t.Int64(); err == nil {
			if i == 0 {
				return ""
			}
			return strconv.FormatInt(i, 10)
		}
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return formatFloat(f)
	case float64:
		return formatFloat(t)
	case int:
		if t == 0 {
			return ""
		}
		return strconv.Itoa(t)
	case int64:
		if t == 0 {
			return ""
		}
		return strconv.FormatInt(t, 10)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func formatFloat(f float64) string {
	if f == 0 || math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
