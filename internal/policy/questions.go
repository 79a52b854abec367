package policy

// questions.go: the questionnaire catalog.
//
// Biosafety questions are asked of every project. Ethics questions depend on
// the research category; every category starts with the containment level.
// Labels are the keys answers are stored under.

// Labels with special meaning to the evaluator.
const (
	LabelResearchType     = "Research Type"
	LabelContainmentLevel = "Containment Level"
	LabelAdditionalNotes  = "Additional Notes"
)

// QuestionKind distinguishes how a question is asked.
type QuestionKind string

const (
	KindChoice      QuestionKind = "choice"
	KindContainment QuestionKind = "containment"
	KindCategory    QuestionKind = "category"
	KindText        QuestionKind = "text"
)

// Condition gates a question on an earlier answer.
type Condition struct {
	Label string
	Value string
}

// Question is one entry of the questionnaire.
type Question struct {
	Label   string       `json:"label"`
	Prompt  string       `json:"prompt"`
	Kind    QuestionKind `json:"kind"`
	Choices []string     `json:"choices,omitempty"`

	// When set, the question is asked only if the condition holds;
	// otherwise Otherwise is recorded as its answer.
	When      *Condition `json:"when,omitempty"`
	Otherwise string     `json:"otherwise,omitempty"`
}

// Applies reports whether q should be asked given the answers so far.
// lookup returns the answer recorded under a label.
func (q Question) Applies(lookup func(label string) (string, bool)) bool {
	if q.When == nil {
		return true
	}
	v, ok := lookup(q.When.Label)
	return ok && v == q.When.Value
}

// Allows reports whether value is in the question's declared domain. Text
// questions accept anything.
func (q Question) Allows(value string) bool {
	if q.Kind == KindText {
		return true
	}
	for _, c := range q.Choices {
		if c == value {
			return true
		}
	}
	return false
}

func choices(vs ...AnswerValue) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

var biosafetyQuestions = []Question{
	{Label: "GMO Involvement", Prompt: "Does your research/process involve GMOs (Genetically Modified Organisms)?", Kind: KindChoice, Choices: choices(AnswerYes, AnswerNo, AnswerNotApplicable)},
	{Label: "IBSC Approval", Prompt: "Has your Institutional Biosafety Committee (IBSC) approved the project?", Kind: KindChoice, Choices: choices(AnswerYes, AnswerNo, AnswerNotApplicable)},
	{Label: "Containment Measures", Prompt: "Have appropriate containment measures been implemented?", Kind: KindChoice, Choices: choices(AnswerYes, AnswerNo, AnswerPartially)},
	{Label: "RCGM Approval", Prompt: "For high-risk category work, has RCGM approval been obtained?", Kind: KindChoice, Choices: choices(AnswerYes, AnswerNo, AnswerNotRequired)},
	{Label: "GEAC Approval", Prompt: "For environmental release or large-scale work, has GEAC approval been obtained?", Kind: KindChoice, Choices: choices(AnswerYes, AnswerNo, AnswerNotRequired)},
	{Label: "Staff Training", Prompt: "Have all staff received appropriate biosafety training?", Kind: KindChoice, Choices: choices(AnswerYes, AnswerNo, AnswerPartially)},
	{Label: "Documentation", Prompt: "Is all necessary biosafety documentation maintained?", Kind: KindChoice, Choices: choices(AnswerYes, AnswerNo, AnswerPartially)},
}

var containmentQuestion = Question{
	Label:   LabelContainmentLevel,
	Prompt:  "What containment level is required for your work?",
	Kind:    KindContainment,
	Choices: ContainmentLevels(),
}

var ethicsQuestions = map[ResearchCategory][]Question{
	CategoryClinical: {
		{Label: "Informed Consent", Prompt: "Has informed consent been obtained from all participants?", Kind: KindChoice, Choices: choices(AnswerYes, AnswerNo, AnswerPartially, AnswerNotApplicable)},
		{Label: "Vulnerable Populations", Prompt: "Does the research involve vulnerable populations (children, pregnant women, etc.)?", Kind: KindChoice, Choices: choices(AnswerYes, AnswerNo)},
		{
			Label:     "Special Protections",
			Prompt:    "Have special protections been implemented for vulnerable populations?",
			Kind:      KindChoice,
			Choices:   choices(AnswerYes, AnswerNo, AnswerPartially),
			When:      &Condition{Label: "Vulnerable Populations", Value: AnswerYes.String()},
			Otherwise: AnswerNotApplicable.String(),
		},
		{Label: "Privacy Measures", Prompt: "Are adequate privacy and confidentiality measures in place?", Kind: KindChoice, Choices: choices(AnswerYes, AnswerNo, AnswerPartially)},
	},
	CategoryAnimal: {
		{Label: "CPCSEA Approval", Prompt: "Has CPCSEA approval been obtained for animal research?", Kind: KindChoice, Choices: choices(AnswerYes, AnswerNo, AnswerPending)},
		{Label: "3Rs Principle", Prompt: "Does your protocol follow the 3Rs principle (Replacement, Reduction, Refinement)?", Kind: KindChoice, Choices: choices(AnswerYes, AnswerNo, AnswerPartially)},
		{Label: "Pain Management", Prompt: "Are adequate pain management protocols in place?", Kind: KindChoice, Choices: choices(AnswerYes, AnswerNo, AnswerPartially, AnswerNotRequired)},
	},
	CategoryFood: {
		{Label: "Ingredient Transparency", Prompt: "Is there full transparency regarding ingredients and additives?", Kind: KindChoice, Choices: choices(AnswerYes, AnswerNo, AnswerPartially)},
		{Label: "Safety Data Availability", Prompt: "Is all safety data publicly available?", Kind: KindChoice, Choices: choices(AnswerYes, AnswerNo, AnswerPartially)},
		{Label: "Environmental Impact Assessment", Prompt: "Has environmental impact been assessed?", Kind: KindChoice, Choices: choices(AnswerYes, AnswerNo, AnswerPartially)},
	},
	CategoryAcademic: {
		{Label: "Data Integrity", Prompt: "Is there assurance of data integrity and availability?", Kind: KindChoice, Choices: choices(AnswerYes, AnswerNo, AnswerPartially)},
		{Label: "Conflict of Interest Declaration", Prompt: "Have all conflicts of interest been declared?", Kind: KindChoice, Choices: choices(AnswerYes, AnswerNo, AnswerPartially, AnswerNoConflictsExist)},
		{Label: "Proper Attribution", Prompt: "Is proper attribution and citation provided for all sources?", Kind: KindChoice, Choices: choices(AnswerYes, AnswerNo, AnswerPartially)},
	},
}

var notesQuestion = Question{
	Label:  LabelAdditionalNotes,
	Prompt: "Additional ethical considerations or notes",
	Kind:   KindText,
}

// BiosafetyQuestions returns the biosafety checklist in asking order.
func BiosafetyQuestions() []Question {
	return append([]Question(nil), biosafetyQuestions...)
}

// CategoryQuestion returns the research-type selector.
func CategoryQuestion() Question {
	names := make([]string, 0, 4)
	for _, c := range ResearchCategories() {
		names = append(names, c.String())
	}
	return Question{
		Label:   LabelResearchType,
		Prompt:  "Select the type of research applicable to your project",
		Kind:    KindCategory,
		Choices: names,
	}
}

// EthicsQuestions returns the questions asked for category c, in order:
// containment level, the category's own questions, then the free-text notes.
// An unrecognized category gets only containment and notes.
func EthicsQuestions(c ResearchCategory) []Question {
	qs := []Question{containmentQuestion}
	qs = append(qs, ethicsQuestions[c]...)
	return append(qs, notesQuestion)
}
