// Package policy holds the static reference data ethixguard evaluates
// answers against: the answer domains, the per-answer classification rule,
// the containment-level scale and the minimum containment level per research
// category.
//
// Everything here is read-only after package initialisation. Boundary
// strings are converted into closed enums by the Parse* functions; unknown
// input maps to an explicit "unrecognized" or zero variant rather than an
// error.
package policy

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Status
// ---------------------------------------------------------------------------

// Status is the outcome of classifying a single answer.
type Status int

const (
	Pass Status = iota
	Warning
	Violation
)

var statusNames = [...]string{
	Pass:      "Pass",
	Warning:   "Warning",
	Violation: "Violation",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// Tag returns the decorated label used in rendered reports.
func (s Status) Tag() string {
	switch s {
	case Pass:
		return "✅ Pass"
	case Violation:
		return "❌ Violation"
	default:
		return "⚠️ Warning"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if strings.EqualFold(name, string(text)) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("policy: unknown status %q", text)
}

// ---------------------------------------------------------------------------
// Answer values
// ---------------------------------------------------------------------------

// AnswerValue is one value from a question's closed answer domain.
type AnswerValue int

const (
	AnswerUnrecognized AnswerValue = iota
	AnswerYes
	AnswerNo
	AnswerPartially
	AnswerNotApplicable
	AnswerNotRequired
	AnswerPending
	AnswerNoConflictsExist
	AnswerNotDetermined
)

var answerNames = map[AnswerValue]string{
	AnswerYes:              "Yes",
	AnswerNo:               "No",
	AnswerPartially:        "Partially",
	AnswerNotApplicable:    "Not Applicable",
	AnswerNotRequired:      "Not Required",
	AnswerPending:          "Pending",
	AnswerNoConflictsExist: "No Conflicts Exist",
	AnswerNotDetermined:    "Not determined yet",
}

var answersByName = func() map[string]AnswerValue {
	m := make(map[string]AnswerValue, len(answerNames))
	for v, name := range answerNames {
		m[name] = v
	}
	return m
}()

func (v AnswerValue) String() string {
	if name, ok := answerNames[v]; ok {
		return name
	}
	return "Unrecognized"
}

// ParseAnswer converts a raw answer into its enum value. Surrounding
// whitespace is ignored; spelling must otherwise match exactly. Anything else
// yields AnswerUnrecognized.
func ParseAnswer(raw string) AnswerValue {
	if v, ok := answersByName[strings.TrimSpace(raw)]; ok {
		return v
	}
	return AnswerUnrecognized
}

// answerStatus is the classification rule. Values absent from the table,
// AnswerUnrecognized included, classify as Warning.
var answerStatus = map[AnswerValue]Status{
	AnswerYes:              Pass,
	AnswerNoConflictsExist: Pass,
	AnswerNo:               Violation,
}

// StatusOf returns the status the classification rule assigns to v.
func StatusOf(v AnswerValue) Status {
	if s, ok := answerStatus[v]; ok {
		return s
	}
	return Warning
}

// ---------------------------------------------------------------------------
// Containment levels
// ---------------------------------------------------------------------------

// ContainmentLevel is the ordinal biosafety containment tier. The zero value
// is Undetermined; comparisons are by ordinal only.
type ContainmentLevel int

const (
	Undetermined ContainmentLevel = iota
	BSL1
	BSL2
	BSL3
	BSL4
)

var levelNames = [...]string{
	Undetermined: "Not determined yet",
	BSL1:         "BSL-1",
	BSL2:         "BSL-2",
	BSL3:         "BSL-3",
	BSL4:         "BSL-4",
}

func (l ContainmentLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return levelNames[Undetermined]
	}
	return levelNames[l]
}

// Meets reports whether l is at least as strict as required.
func (l ContainmentLevel) Meets(required ContainmentLevel) bool {
	return l >= required
}

func (l ContainmentLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *ContainmentLevel) UnmarshalText(text []byte) error {
	*l, _ = ParseContainmentLevel(string(text))
	return nil
}

// ParseContainmentLevel maps a level name to its ordinal. Unknown names map
// to Undetermined with ok=false.
func ParseContainmentLevel(raw string) (level ContainmentLevel, ok bool) {
	s := strings.TrimSpace(raw)
	for i, name := range levelNames {
		if name == s {
			return ContainmentLevel(i), true
		}
	}
	return Undetermined, false
}

// ContainmentLevels lists the declarable levels in prompt order.
func ContainmentLevels() []string {
	return []string{"BSL-1", "BSL-2", "BSL-3", "BSL-4", levelNames[Undetermined]}
}

// ---------------------------------------------------------------------------
// Research categories
// ---------------------------------------------------------------------------

// ResearchCategory selects the ethics questions that apply and the minimum
// containment level.
type ResearchCategory int

const (
	CategoryUnrecognized ResearchCategory = iota
	CategoryClinical
	CategoryAnimal
	CategoryFood
	CategoryAcademic
)

var categoryNames = [...]string{
	CategoryUnrecognized: "Unrecognized",
	CategoryClinical:     "Clinical/Human Subjects",
	CategoryAnimal:       "Animal Research",
	CategoryFood:         "Food Production/Safety",
	CategoryAcademic:     "Academic Research/Publication",
}

func (c ResearchCategory) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return categoryNames[CategoryUnrecognized]
	}
	return categoryNames[c]
}

func (c ResearchCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ResearchCategory) UnmarshalText(text []byte) error {
	*c = ParseResearchCategory(string(text))
	return nil
}

// ParseResearchCategory maps a category name to its enum value, or
// CategoryUnrecognized.
func ParseResearchCategory(raw string) ResearchCategory {
	s := strings.TrimSpace(raw)
	for i, name := range categoryNames {
		if i != int(CategoryUnrecognized) && name == s {
			return ResearchCategory(i)
		}
	}
	return CategoryUnrecognized
}

// ResearchCategories lists the selectable categories in prompt order.
func ResearchCategories() []ResearchCategory {
	return []ResearchCategory{CategoryClinical, CategoryAnimal, CategoryFood, CategoryAcademic}
}

// minimumContainment is the minimum declared containment level per category.
// Animal research follows the stricter ABSL-2 requirement.
var minimumContainment = map[ResearchCategory]ContainmentLevel{
	CategoryClinical: BSL2,
	CategoryAnimal:   BSL2,
	CategoryFood:     BSL1,
	CategoryAcademic: Undetermined,
}

// MinimumContainment returns the required level for c. Categories absent
// from the table require Undetermined.
func MinimumContainment(c ResearchCategory) ContainmentLevel {
	return minimumContainment[c]
}
