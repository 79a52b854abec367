// Package report composes compliance reports from aggregated answers and
// renders them.
//
// Compose is deterministic for a given clock: the only time-dependent field
// is GeneratedAt, and the report ID is derived from everything else.
package report

import (
	"time"

	"github.com/google/uuid"

	"ethixguard/internal/compliance"
	"ethixguard/internal/policy"
)

// reportNamespace scopes the name-based report IDs.
var reportNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://ethixguard.dev/report"))

// RecommendationKind names which recommendation block a report carries.
type RecommendationKind string

const (
	RecommendCompliant   RecommendationKind = "compliant"
	RecommendCritical    RecommendationKind = "critical"
	RecommendImprovement RecommendationKind = "improvement"
)

// Recommendation is the closing block of a report.
type Recommendation struct {
	Kind    RecommendationKind `json:"kind"`
	Heading string             `json:"heading"`
	Actions []string           `json:"actions,omitempty"`
}

const (
	headingCompliant   = "Congratulations! Your project is compliant with all biosafety and ethics guidelines."
	headingCritical    = "Critical Action Items"
	headingImprovement = "Areas for Improvement"

	actionReviewViolations = "Review all items marked as violations and take corrective action before proceeding."
	actionBiosafety        = "Ensure all biosafety compliance requirements are met before proceeding."
	actionEthics           = "Address ethical violations identified in this report."
	actionReviewWarnings   = "Review warning items and consider addressing them."
	actionConsult          = "Consult with relevant committees for guidance."
)

// Report is a composed compliance report. It is never modified after
// Compose returns; regenerate instead.
type Report struct {
	ID             string                            `json:"id"`
	GeneratedAt    time.Time                         `json:"generated_at"`
	ResearchType   string                            `json:"research_type,omitempty"`
	Biosafety      compliance.SectionResult          `json:"biosafety"`
	Ethics         compliance.SectionResult          `json:"ethics"`
	Containment    *compliance.ContainmentAssessment `json:"containment,omitempty"`
	Notes          string                            `json:"notes,omitempty"`
	Recommendation Recommendation                    `json:"recommendation"`
}

// Option configures a Composer.
type Option func(*Composer)

// WithClock replaces the clock used to stamp GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) { c.now = now }
}

// Composer builds reports. A Composer holds no per-report state and is safe
// for concurrent use.
type Composer struct {
	now func() time.Time
}

func NewComposer(opts ...Option) *Composer {
	c := &Composer{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose evaluates both answer sets and assembles the report. Callers are
// expected to check that both sections were answered first
// (compliance.Submission.Complete); empty sets still compose.
func (c *Composer) Compose(biosafety, ethics compliance.AnswerSet) *Report {
	r := &Report{
		GeneratedAt: c.now().UTC().Truncate(time.Second),
		Biosafety:   compliance.AggregateBiosafety(biosafety),
	}
	r.Ethics, r.Containment = compliance.AggregateEthics(ethics)
	r.ResearchType, _ = ethics.Get(policy.LabelResearchType)
	r.Notes, _ = ethics.Get(policy.LabelAdditionalNotes)
	r.Recommendation = recommend(r.Biosafety.Summary, r.Ethics.Summary, r.Containment)
	r.ID = uuid.NewSHA1(reportNamespace, []byte(body(r))).String()
	return r
}

// ComposeSubmission is Compose over a decoded submission.
func (c *Composer) ComposeSubmission(sub compliance.Submission) *Report {
	return c.Compose(sub.Biosafety, sub.Ethics)
}

// recommend applies the recommendation priority: fully clean, then any
// violation, then warnings only.
func recommend(bio, eth compliance.Summary, ca *compliance.ContainmentAssessment) Recommendation {
	if bio.Clean() && eth.Clean() {
		return Recommendation{Kind: RecommendCompliant, Heading: headingCompliant}
	}

	if bio.Violation > 0 || eth.Violation > 0 {
		rec := Recommendation{
			Kind:    RecommendCritical,
			Heading: headingCritical,
			Actions: []string{actionReviewViolations},
		}
		if bio.Violation > 0 {
			rec.Actions = append(rec.Actions, actionBiosafety)
		}
		if eth.Violation > 0 {
			rec.Actions = append(rec.Actions, actionEthics)
		}
		return rec
	}

	rec := Recommendation{Kind: RecommendImprovement, Heading: headingImprovement}
	if ca != nil && ca.Insufficient() {
		rec.Actions = append(rec.Actions, containmentAction(ca))
	}
	rec.Actions = append(rec.Actions, actionReviewWarnings, actionConsult)
	return rec
}

func containmentAction(ca *compliance.ContainmentAssessment) string {
	return ca.DeclaredRaw + " is below the recommended level " + ca.Required.String() +
		" for " + ca.CategoryRaw +
		". Make sure to conduct experiments in suitable lab environments to ensure safety and compliance."
}
