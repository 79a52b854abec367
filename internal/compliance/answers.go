package compliance

// answers.go: ordered answer sets and their YAML/JSON codec.
//
// Answers are stored in the order the questions were asked; that order is
// the order items appear in a report, so the codec decodes YAML through
// yaml.Node and JSON through json.Decoder tokens instead of a Go map.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"ethixguard/internal/policy"
)

// ErrInvalidInput reports structurally malformed answers, e.g. a section
// that is not a label→value mapping.
var ErrInvalidInput = errors.New("invalid input")

// ErrIncomplete reports a submission missing one of its sections.
var ErrIncomplete = errors.New("incomplete submission")

// Answer is one recorded response.
type Answer struct {
	Question string `json:"question"`
	Value    string `json:"value"`
}

// AnswerSet is an insertion-ordered mapping from question label to raw
// answer value. The zero value is an empty set ready to use.
type AnswerSet struct {
	answers []Answer
}

// NewAnswerSet builds a set from pairs in order. A repeated label keeps its
// first position and its last value.
func NewAnswerSet(pairs ...Answer) AnswerSet {
	var s AnswerSet
	for _, p := range pairs {
		s.Set(p.Question, p.Value)
	}
	return s
}

// Set records value under label, replacing an existing value in place.
func (s *AnswerSet) Set(label, value string) {
	for i := range s.answers {
		if s.answers[i].Question == label {
			s.answers[i].Value = value
			return
		}
	}
	s.answers = append(s.answers, Answer{Question: label, Value: value})
}

// Get returns the value recorded under label.
func (s AnswerSet) Get(label string) (string, bool) {
	for _, a := range s.answers {
		if a.Question == label {
			return a.Value, true
		}
	}
	return "", false
}

func (s AnswerSet) Len() int { return len(s.answers) }

// Answers returns a copy of the answers in order.
func (s AnswerSet) Answers() []Answer {
	return append([]Answer(nil), s.answers...)
}

func (s AnswerSet) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, a := range s.answers {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: a.Question},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: a.Value, Style: yaml.DoubleQuotedStyle},
		)
	}
	return node, nil
}

func (s *AnswerSet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	switch {
	case node.Kind == yaml.ScalarNode && node.Tag == "!!null":
		*s = AnswerSet{}
		return nil
	case node.Kind != yaml.MappingNode:
		return fmt.Errorf("%w: line %d: answers must be a mapping of question to answer", ErrInvalidInput, node.Line)
	}
	var out AnswerSet
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return fmt.Errorf("%w: line %d: question label must be a string", ErrInvalidInput, k.Line)
		}
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("%w: line %d: answer to %q must be a single value", ErrInvalidInput, v.Line, k.Value)
		}
		out.Set(k.Value, v.Value)
	}
	*s = out
	return nil
}

func (s AnswerSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range s.answers {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(a.Question)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(a.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON walks the object token by token so labels keep their order.
// Numbers and booleans are kept as their literal text; null reads as "".
func (s *AnswerSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if tok == nil {
		*s = AnswerSet{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: answers must be a mapping of question to answer", ErrInvalidInput)
	}
	var out AnswerSet
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		label, _ := kt.(string)
		vt, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		switch v := vt.(type) {
		case string:
			out.Set(label, v)
		case json.Number:
			out.Set(label, v.String())
		case bool:
			out.Set(label, strconv.FormatBool(v))
		case nil:
			out.Set(label, "")
		default:
			return fmt.Errorf("%w: answer to %q must be a single value", ErrInvalidInput, label)
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	*s = out
	return nil
}

// ---------------------------------------------------------------------------
// Submission
// ---------------------------------------------------------------------------

// Submission is the complete questionnaire for one project: the biosafety
// checklist and the ethics evaluation. The ethics set also carries the
// research-type selector and optional free-text notes.
type Submission struct {
	Biosafety AnswerSet `yaml:"biosafety" json:"biosafety"`
	Ethics    AnswerSet `yaml:"ethics" json:"ethics"`
}

// DecodeSubmission parses a YAML or JSON document. Unknown top-level keys
// and non-mapping sections are rejected with ErrInvalidInput.
func DecodeSubmission(data []byte) (Submission, error) {
	var sub Submission
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return sub, fmt.Errorf("%w: empty document", ErrInvalidInput)
	}
	// A YAML flow mapping also starts with '{', so only valid JSON takes the
	// JSON path. The YAML scanner rejects escapes such as \/ that JSON allows.
	if trimmed[0] == '{' && json.Valid(trimmed) {
		return decodeJSONSubmission(trimmed)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sub); err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return Submission{}, err
		}
		if errors.Is(err, io.EOF) {
			return Submission{}, fmt.Errorf("%w: empty document", ErrInvalidInput)
		}
		return Submission{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return sub, nil
}

func decodeJSONSubmission(data []byte) (Submission, error) {
	var sub Submission
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sub); err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return Submission{}, err
		}
		return Submission{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return sub, nil
}

// Encode serialises the submission as YAML.
func (s Submission) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}
	return buf.Bytes(), nil
}

// Complete returns ErrIncomplete unless both sections have answers.
func (s Submission) Complete() error {
	var missing []string
	if s.Biosafety.Len() == 0 {
		missing = append(missing, "biosafety")
	}
	if s.Ethics.Len() == 0 {
		missing = append(missing, "ethics")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s answers", ErrIncomplete, strings.Join(missing, " and "))
	}
	return nil
}

// Category returns the research category selected in the ethics section.
func (s Submission) Category() policy.ResearchCategory {
	raw, _ := s.Ethics.Get(policy.LabelResearchType)
	return policy.ParseResearchCategory(raw)
}
