package report

// export.go: stored reports.
//
// A stored report is report.md: the markdown rendering behind a YAML header
// carrying the ID, timestamp and tallies, so listings never re-parse the
// markdown.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ethixguard/internal/compliance"
	"ethixguard/internal/frontmatter"
)

// FileName is the name of a stored report inside its directory.
const FileName = "report.md"

// Meta is the header of a stored report.
type Meta struct {
	ID             string             `yaml:"id"`
	GeneratedAt    time.Time          `yaml:"generated_at"`
	ResearchType   string             `yaml:"research_type,omitempty"`
	Biosafety      compliance.Summary `yaml:"biosafety"`
	Ethics         compliance.Summary `yaml:"ethics"`
	Recommendation RecommendationKind `yaml:"recommendation"`
}

// MetaOf extracts the stored header for r.
func MetaOf(r *Report) Meta {
	return Meta{
		ID:             r.ID,
		GeneratedAt:    r.GeneratedAt,
		ResearchType:   r.ResearchType,
		Biosafety:      r.Biosafety.Summary,
		Ethics:         r.Ethics.Summary,
		Recommendation: r.Recommendation.Kind,
	}
}

// Encode returns the stored form of r.
func Encode(r *Report) ([]byte, error) {
	return frontmatter.Marshal(MetaOf(r), Markdown(r))
}

// WriteFile stores r as dir/report.md, creating dir, and returns the path.
func WriteFile(dir string, r *Report) (string, error) {
	data, err := Encode(r)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// ReadMeta reads the header of a stored report.
func ReadMeta(path string) (*Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var m Meta
	if _, err := frontmatter.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return &m, nil
}
