// Package compliance classifies questionnaire answers against the policy
// tables and tallies them per section.
//
// Every function in this package is pure: inputs are values, results are
// new values, and nothing is retained between calls. Malformed answers
// never fail evaluation; they classify as Warning.
package compliance

import (
	"ethixguard/internal/policy"
)

// Classify maps a raw answer to its status: "Yes" and "No Conflicts Exist"
// pass, "No" is a violation, and anything else, including values outside
// the question's domain, is a warning.
func Classify(value string) policy.Status {
	return policy.StatusOf(policy.ParseAnswer(value))
}

// ContainmentAssessment is the result of comparing a declared containment
// level with the minimum its research category requires.
type ContainmentAssessment struct {
	DeclaredRaw string                  `json:"declared"`
	Declared    policy.ContainmentLevel `json:"declared_level"`
	CategoryRaw string                  `json:"research_type"`
	Category    policy.ResearchCategory `json:"category"`
	Required    policy.ContainmentLevel `json:"required_level"`
	Status      policy.Status           `json:"status"`
}

// Insufficient reports whether the declared level fell short.
func (a ContainmentAssessment) Insufficient() bool {
	return a.Status != policy.Pass
}

// EvaluateContainment compares the declared level against the category's
// minimum. The result is Pass or Warning, never Violation; unknown levels
// and categories count as Undetermined.
func EvaluateContainment(category, declared string) ContainmentAssessment {
	cat := policy.ParseResearchCategory(category)
	level, _ := policy.ParseContainmentLevel(declared)
	required := policy.MinimumContainment(cat)

	status := policy.Warning
	if level.Meets(required) {
		status = policy.Pass
	}
	return ContainmentAssessment{
		DeclaredRaw: declared,
		Declared:    level,
		CategoryRaw: category,
		Category:    cat,
		Required:    required,
		Status:      status,
	}
}
