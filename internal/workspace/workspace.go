// Package workspace manages the <root>/ directory hierarchy where
// submissions and their reports are kept.
//
// Directory layout:
//
//	<root>/<workspace>/
//	    <project>.yaml           # submission: biosafety and ethics answers
//	    <project>/report.md      # latest report, YAML frontmatter + markdown
package workspace

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"ethixguard/internal/compliance"
	"ethixguard/internal/report"
)

// PacketDir is the directory Packet creates under dst/.tmp/.
const PacketDir = "committee-packet"

// ErrNotFound is returned when a workspace or project does not exist.
var ErrNotFound = errors.New("not found")

// Workspace is a named directory (<root>/<name>/) of projects.
type Workspace struct {
	Name string
	Dir  string
}

// ValidName reports whether name can be used for a workspace or project.
func ValidName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("name must not be empty: %w", compliance.ErrInvalidInput)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("name %q must not start with '.': %w", name, compliance.ErrInvalidInput)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("name %q must not contain path separators: %w", name, compliance.ErrInvalidInput)
	}
	return nil
}

// Init creates <root>/<name>/ and errors if it already exists.
func Init(root, name string) error {
	if err := ValidName(name); err != nil {
		return err
	}
	dir := filepath.Join(root, name)
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("workspace %q already exists at %s", name, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	return nil
}

// Open opens an existing workspace directory.
func Open(root, name string) (*Workspace, error) {
	if err := ValidName(name); err != nil {
		return nil, err
	}
	dir := filepath.Join(root, name)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("workspace %q %w (run 'ethixguard init %s' first)", name, ErrNotFound, name)
	}
	return &Workspace{Name: name, Dir: dir}, nil
}

// List returns the names of all workspaces under root.
func List(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read root dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Remove deletes a workspace and all its contents.
func Remove(root, name string) error {
	if err := ValidName(name); err != nil {
		return err
	}
	dir := filepath.Join(root, name)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("workspace %q %w", name, ErrNotFound)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove workspace: %w", err)
	}
	return nil
}

// ProjectPath returns the path to <project>.yaml inside the workspace.
func (w *Workspace) ProjectPath(name string) string {
	return filepath.Join(w.Dir, name+".yaml")
}

// ReportDir returns the directory holding a project's report.
func (w *Workspace) ReportDir(name string) string {
	return filepath.Join(w.Dir, name)
}

// AddProject writes a new submission. Errors if the project already exists.
func (w *Workspace) AddProject(name string, sub compliance.Submission) error {
	if err := ValidName(name); err != nil {
		return err
	}
	if _, err := os.Stat(w.ProjectPath(name)); err == nil {
		return fmt.Errorf("project %q already exists in workspace %q", name, w.Name)
	}
	return w.SaveProject(name, sub)
}

// SaveProject writes a submission, replacing any existing one.
func (w *Workspace) SaveProject(name string, sub compliance.Submission) error {
	if err := ValidName(name); err != nil {
		return err
	}
	data, err := sub.Encode()
	if err != nil {
		return fmt.Errorf("marshal project %q: %w", name, err)
	}
	if err := os.WriteFile(w.ProjectPath(name), data, 0o644); err != nil {
		return fmt.Errorf("write project %q: %w", name, err)
	}
	return nil
}

// LoadProject reads and parses a project's submission.
func (w *Workspace) LoadProject(name string) (compliance.Submission, error) {
	if err := ValidName(name); err != nil {
		return compliance.Submission{}, err
	}
	data, err := os.ReadFile(w.ProjectPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return compliance.Submission{}, fmt.Errorf("project %q %w in workspace %q", name, ErrNotFound, w.Name)
		}
		return compliance.Submission{}, fmt.Errorf("read project %q: %w", name, err)
	}
	sub, err := compliance.DecodeSubmission(data)
	if err != nil {
		return compliance.Submission{}, fmt.Errorf("parse project %q: %w", name, err)
	}
	return sub, nil
}

// ListProjects returns project names derived from *.yaml files in the
// workspace, in directory order.
func (w *Workspace) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return nil, fmt.Errorf("read workspace dir: %w", err)
	}
	var projects []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := ProjectName(e.Name()); ok {
			projects = append(projects, name)
		}
	}
	return projects, nil
}

// ProjectName maps a file name inside a workspace to its project name.
func ProjectName(file string) (string, bool) {
	base := filepath.Base(file)
	if !strings.HasSuffix(base, ".yaml") || strings.HasPrefix(base, ".") {
		return "", false
	}
	name := strings.TrimSuffix(base, ".yaml")
	return name, name != ""
}

// RemoveProject removes a project's submission and report directory.
func (w *Workspace) RemoveProject(name string) error {
	if err := ValidName(name); err != nil {
		return err
	}
	path := w.ProjectPath(name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("project %q %w in workspace %q", name, ErrNotFound, w.Name)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove project: %w", err)
	}
	if err := os.RemoveAll(w.ReportDir(name)); err != nil {
		return fmt.Errorf("remove project report: %w", err)
	}
	return nil
}

// WriteReport stores r as the project's latest report and returns its path.
func (w *Workspace) WriteReport(name string, r *report.Report) (string, error) {
	if err := ValidName(name); err != nil {
		return "", err
	}
	return report.WriteFile(w.ReportDir(name), r)
}

// ReadReportMeta reads the header of the project's latest report.
func (w *Workspace) ReadReportMeta(name string) (*report.Meta, error) {
	if err := ValidName(name); err != nil {
		return nil, err
	}
	path := filepath.Join(w.ReportDir(name), report.FileName)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("report for project %q %w", name, ErrNotFound)
	}
	return report.ReadMeta(path)
}

// Packet writes a copy of every project's report directory into
// dst/.tmp/committee-packet/<project>/ and an index.md holding note followed
// by a table of project, report ID and counts. Projects without a report
// are listed with no ID and not copied.
//
// Creates dst/.tmp/ if it doesn't exist. Errors if the target directory
// already exists. Returns the target directory.
func (w *Workspace) Packet(dst, note string) (string, error) {
	tmpDir := filepath.Join(dst, ".tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create .tmp dir: %w", err)
	}
	target := filepath.Join(tmpDir, PacketDir)
	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("packet target %q already exists", target)
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create packet dir: %w", err)
	}

	projects, err := w.ListProjects()
	if err != nil {
		return "", err
	}

	var index strings.Builder
	if note = strings.TrimSpace(note); note != "" {
		index.WriteString(note)
		index.WriteString("\n\n")
	}
	fmt.Fprintf(&index, "## Workspace %s\n\n", w.Name)
	index.WriteString("| Project | Report ID | Biosafety (pass/warn/violation) | Ethics (pass/warn/violation) |\n")
	index.WriteString("|---|---|---|---|\n")

	for _, proj := range projects {
		meta, err := w.ReadReportMeta(proj)
		if errors.Is(err, ErrNotFound) {
			fmt.Fprintf(&index, "| %s | (no report) | | |\n", proj)
			continue
		}
		if err != nil {
			return "", err
		}
		if err := copyDir(w.ReportDir(proj), filepath.Join(target, proj)); err != nil {
			return "", fmt.Errorf("copy %s: %w", proj, err)
		}
		fmt.Fprintf(&index, "| [%s](%s/%s) | `%s` | %s | %s |\n",
			proj, proj, report.FileName, meta.ID, counts(meta.Biosafety), counts(meta.Ethics))
	}

	if err := os.WriteFile(filepath.Join(target, "index.md"), []byte(index.String()), 0o644); err != nil {
		return "", fmt.Errorf("write index.md: %w", err)
	}
	return target, nil
}

func counts(s compliance.Summary) string {
	return fmt.Sprintf("%d/%d/%d", s.Pass, s.Warning, s.Violation)
}

// copyDir recursively copies src to dst.
func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
