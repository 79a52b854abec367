package compliance

import (
	"ethixguard/internal/policy"
)

// Section identifies which half of the questionnaire an item belongs to.
type Section string

const (
	SectionBiosafety Section = "biosafety"
	SectionEthics    Section = "ethics"
)

// ClassifiedItem is one evaluated answer.
type ClassifiedItem struct {
	Question string        `json:"question"`
	Section  Section       `json:"section"`
	Value    string        `json:"value"`
	Status   policy.Status `json:"status"`
}

// Summary tallies statuses over a section.
type Summary struct {
	Pass      int `json:"pass" yaml:"pass"`
	Warning   int `json:"warning" yaml:"warning"`
	Violation int `json:"violation" yaml:"violation"`
}

func (s *Summary) add(st policy.Status) {
	switch st {
	case policy.Pass:
		s.Pass++
	case policy.Violation:
		s.Violation++
	default:
		s.Warning++
	}
}

func (s Summary) Total() int { return s.Pass + s.Warning + s.Violation }

// Clean reports whether the section has neither warnings nor violations.
func (s Summary) Clean() bool { return s.Warning == 0 && s.Violation == 0 }

// SectionResult is the ordered item list and tally for one section.
type SectionResult struct {
	Section Section          `json:"section"`
	Items   []ClassifiedItem `json:"items"`
	Summary Summary          `json:"summary"`
}

func (r *SectionResult) record(question, value string, st policy.Status) {
	r.Items = append(r.Items, ClassifiedItem{
		Question: question,
		Section:  r.Section,
		Value:    value,
		Status:   st,
	})
	r.Summary.add(st)
}

// AggregateBiosafety classifies every biosafety answer in order.
func AggregateBiosafety(set AnswerSet) SectionResult {
	res := SectionResult{Section: SectionBiosafety, Items: []ClassifiedItem{}}
	for _, a := range set.answers {
		res.record(a.Question, a.Value, Classify(a.Value))
	}
	return res
}

// metadata labels are carried in the ethics set but never classified.
var metadata = map[string]bool{
	policy.LabelResearchType:     true,
	policy.LabelAdditionalNotes:  true,
	policy.LabelContainmentLevel: true,
}

// AggregateEthics evaluates the containment level first, recording it as
// its own item, then classifies the remaining answers in order. The research
// type and notes fields are skipped. An empty set yields an empty result and
// a nil assessment; a missing containment answer counts as undetermined.
func AggregateEthics(set AnswerSet) (SectionResult, *ContainmentAssessment) {
	res := SectionResult{Section: SectionEthics, Items: []ClassifiedItem{}}
	if set.Len() == 0 {
		return res, nil
	}

	category, _ := set.Get(policy.LabelResearchType)
	declared, ok := set.Get(policy.LabelContainmentLevel)
	if !ok {
		declared = policy.Undetermined.String()
	}
	ca := EvaluateContainment(category, declared)
	res.record(policy.LabelContainmentLevel, declared, ca.Status)

	for _, a := range set.answers {
		if metadata[a.Question] {
			continue
		}
		res.record(a.Question, a.Value, Classify(a.Value))
	}
	return res, &ca
}
