package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"ethixguard/internal/compliance"
	"ethixguard/internal/policy"
	"ethixguard/internal/report"
	"ethixguard/internal/server"
	"ethixguard/internal/watch"
	"ethixguard/internal/workspace"
)

// Flag values, bound by the command table.
var (
	questionsJSON bool
	reportFormat  = "terminal"
	reportOut     string
	packetNote    string
	serveAddr     string
)

// ---------------------------------------------------------------------------
// init
// ---------------------------------------------------------------------------

func runInit(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ethixguard init <workspace>")
	}
	name := args[0]
	if err := workspace.Init(cfg.Root, name); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "created workspace %q at %s\n", name, filepath.Join(cfg.Root, name))
	return nil
}

// ---------------------------------------------------------------------------
// add
// ---------------------------------------------------------------------------

func runAdd(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: ethixguard add <workspace> <project>")
	}
	wsName, project := args[0], args[1]

	w, err := workspace.Open(cfg.Root, wsName)
	if err != nil {
		return err
	}
	if _, err := os.Stat(w.ProjectPath(project)); err == nil {
		return fmt.Errorf("project %q already exists in workspace %q", project, wsName)
	}

	sub, err := askSubmission()
	if err != nil {
		return fmt.Errorf("prompt: %w", err)
	}
	if err := w.AddProject(project, sub); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "added project %q to workspace %q\n", project, wsName)
	fmt.Fprintf(stdout, "run 'ethixguard report %s %s' to evaluate it\n", wsName, project)
	return nil
}

// askSubmission runs the questionnaire: the biosafety checklist, the
// research-type selector, then that type's ethics questions.
func askSubmission() (compliance.Submission, error) {
	var sub compliance.Submission

	bio, err := promptQuestions("Biosafety Compliance Checklist", policy.BiosafetyQuestions())
	if err != nil {
		return sub, err
	}
	category, err := promptQuestions("Research Ethics Evaluation", []policy.Question{policy.CategoryQuestion()})
	if err != nil {
		return sub, err
	}
	raw, _ := category.Get(policy.LabelResearchType)
	ethics, err := promptQuestions(raw, policy.EthicsQuestions(policy.ParseResearchCategory(raw)))
	if err != nil {
		return sub, err
	}

	sub.Biosafety = bio
	sub.Ethics = category
	for _, a := range ethics.Answers() {
		sub.Ethics.Set(a.Question, a.Value)
	}
	return sub, nil
}

// ---------------------------------------------------------------------------
// import
// ---------------------------------------------------------------------------

func runImport(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: ethixguard import <workspace> <project> <file|->")
	}
	wsName, project, src := args[0], args[1], args[2]

	w, err := workspace.Open(cfg.Root, wsName)
	if err != nil {
		return err
	}

	var data []byte
	if src == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	sub, err := compliance.DecodeSubmission(data)
	if err != nil {
		return fmt.Errorf("import %s: %w", src, err)
	}
	for _, issue := range reviewAnswers(sub) {
		logger.Warn("unexpected answer", zap.String("project", project), zap.String("issue", issue))
	}
	if err := w.SaveProject(project, sub); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "imported %d biosafety and %d ethics answers into %s/%s\n",
		sub.Biosafety.Len(), sub.Ethics.Len(), wsName, project)
	return nil
}

// reviewAnswers lists answers outside their question's domain. They are
// still stored; unrecognised values evaluate as warnings.
func reviewAnswers(sub compliance.Submission) []string {
	var issues []string
	check := func(qs []policy.Question, set compliance.AnswerSet) {
		for _, q := range qs {
			v, ok := set.Get(q.Label)
			if ok && !q.Allows(v) {
				issues = append(issues, fmt.Sprintf("%s: %q is not one of %s", q.Label, v, strings.Join(q.Choices, ", ")))
			}
		}
	}
	check(policy.BiosafetyQuestions(), sub.Biosafety)
	check([]policy.Question{policy.CategoryQuestion()}, sub.Ethics)
	check(policy.EthicsQuestions(sub.Category()), sub.Ethics)
	return issues
}

// ---------------------------------------------------------------------------
// questions
// ---------------------------------------------------------------------------

type catalog struct {
	Biosafety []policy.Question `json:"biosafety"`
	Category  policy.Question   `json:"category"`
	Ethics    []policy.Question `json:"ethics,omitempty"`
}

func runQuestions(args []string) error {
	cat := catalog{
		Biosafety: policy.BiosafetyQuestions(),
		Category:  policy.CategoryQuestion(),
	}
	raw := strings.Join(args, " ")
	if raw != "" {
		c := policy.ParseResearchCategory(raw)
		if c == policy.CategoryUnrecognized {
			return fmt.Errorf("unknown research type %q (want one of: %s)", raw, strings.Join(cat.Category.Choices, ", "))
		}
		cat.Ethics = policy.EthicsQuestions(c)
	}

	if questionsJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cat)
	}

	printSection := func(title string, qs []policy.Question) {
		fmt.Fprintln(stdout, titleStyle.Render(title))
		for i, q := range qs {
			fmt.Fprintf(stdout, "%2d. %s: %s\n", i+1, q.Label, q.Prompt)
			if len(q.Choices) > 0 {
				fmt.Fprintf(stdout, "    %s\n", mutedStyle.Render(strings.Join(q.Choices, " | ")))
			}
			if q.When != nil {
				fmt.Fprintf(stdout, "    %s\n", mutedStyle.Render(fmt.Sprintf("only when %s is %s, otherwise %s", q.When.Label, q.When.Value, q.Otherwise)))
			}
		}
		fmt.Fprintln(stdout)
	}
	printSection("Biosafety", cat.Biosafety)
	printSection("Research Type", []policy.Question{cat.Category})
	if cat.Ethics != nil {
		printSection("Ethics: "+raw, cat.Ethics)
	}
	return nil
}

// ---------------------------------------------------------------------------
// report
// ---------------------------------------------------------------------------

func runReport(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: ethixguard report <workspace> <project>")
	}
	wsName, project := args[0], args[1]

	format, err := report.ParseFormat(reportFormat)
	if err != nil {
		return err
	}
	w, err := workspace.Open(cfg.Root, wsName)
	if err != nil {
		return err
	}
	rep, path, err := generate(w, project)
	if err != nil {
		return err
	}
	logger.Info("report stored", zap.String("project", project), zap.String("id", rep.ID), zap.String("path", path))

	out, err := report.Render(rep, format, cfg.Report.Style, cfg.Report.Width)
	if err != nil {
		return err
	}
	if reportOut != "" {
		if err := os.WriteFile(reportOut, out, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", reportOut, err)
		}
		fmt.Fprintf(stdout, "wrote %s report to %s\n", format, reportOut)
		return nil
	}
	_, err = stdout.Write(out)
	return err
}

// generate evaluates a stored project and writes its report.
func generate(w *workspace.Workspace, project string) (*report.Report, string, error) {
	sub, err := w.LoadProject(project)
	if err != nil {
		return nil, "", err
	}
	if err := sub.Complete(); err != nil {
		return nil, "", fmt.Errorf("project %q: %w", project, err)
	}
	rep := report.NewComposer().ComposeSubmission(sub)
	path, err := w.WriteReport(project, rep)
	if err != nil {
		return nil, "", err
	}
	return rep, path, nil
}

// ---------------------------------------------------------------------------
// analyze
// ---------------------------------------------------------------------------

func runAnalyze(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ethixguard analyze <workspace>")
	}
	wsName := args[0]

	w, err := workspace.Open(cfg.Root, wsName)
	if err != nil {
		return err
	}
	projects, err := w.ListProjects()
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Fprintf(stdout, "no projects in workspace %q\n", wsName)
		return nil
	}

	var anyErr bool
	for _, proj := range projects {
		if cfg.Skipped(proj) {
			logger.Debug("skipping project", zap.String("project", proj))
			continue
		}
		rep, _, err := generate(w, proj)
		if err != nil {
			logger.Error("analyze", zap.String("project", proj), zap.Error(err))
			fmt.Fprintf(stdout, "%-24s %s\n", proj, violationStyle.Render("error: "+err.Error()))
			anyErr = true
			continue
		}
		fmt.Fprintf(stdout, "%-24s %s\n", proj, summaryLine(rep))
	}
	if anyErr {
		return fmt.Errorf("one or more errors during analysis")
	}
	return nil
}

// summaryLine renders a report's tallies and recommendation on one line.
func summaryLine(r *report.Report) string {
	counts := func(s compliance.Summary) string {
		return fmt.Sprintf("%s %s %s",
			passStyle.Render(fmt.Sprintf("%d pass", s.Pass)),
			warningStyle.Render(fmt.Sprintf("%d warn", s.Warning)),
			violationStyle.Render(fmt.Sprintf("%d violation", s.Violation)))
	}
	return fmt.Sprintf("biosafety: %s  ethics: %s  => %s", counts(r.Biosafety.Summary), counts(r.Ethics.Summary), r.Recommendation.Kind)
}

// ---------------------------------------------------------------------------
// packet
// ---------------------------------------------------------------------------

func runPacket(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ethixguard packet <workspace> [dst]")
	}
	dst := "."
	if len(args) > 1 {
		dst = args[1]
	}
	w, err := workspace.Open(cfg.Root, args[0])
	if err != nil {
		return err
	}
	target, err := w.Packet(dst, packetNote)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote committee packet to %s\n", target)
	return nil
}

// ---------------------------------------------------------------------------
// ask / chat
// ---------------------------------------------------------------------------

func runAsk(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ethixguard ask <question...>")
	}
	kb, err := loadKnowledge()
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, kb.Respond(strings.Join(args, " ")))
	return nil
}

func runChat(args []string) error {
	kb, err := loadKnowledge()
	if err != nil {
		return err
	}
	return chat(kb)
}

// ---------------------------------------------------------------------------
// watch / serve
// ---------------------------------------------------------------------------

func runWatch(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ethixguard watch <workspace>")
	}
	w, err := workspace.Open(cfg.Root, args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchWorkspace(ctx, w)
}

// watchWorkspace regenerates reports until ctx is done.
func watchWorkspace(ctx context.Context, w *workspace.Workspace) error {
	watcher, err := watch.New(logger)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	events, err := watcher.Watch(ctx, w.Dir)
	if err != nil {
		return err
	}
	logger.Info("watching workspace", zap.String("workspace", w.Name), zap.String("dir", w.Dir))

	for ev := range events {
		if cfg.Skipped(ev.Project) {
			continue
		}
		rep, path, err := generate(w, ev.Project)
		if err != nil {
			// Editors often write partial files; the next write retries.
			logger.Warn("regenerate report", zap.String("project", ev.Project), zap.Stringer("op", ev.Op), zap.Error(err))
			continue
		}
		logger.Info("report regenerated", zap.String("project", ev.Project), zap.String("id", rep.ID), zap.String("path", path))
		fmt.Fprintf(stdout, "%-24s %s\n", ev.Project, summaryLine(rep))
	}
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServe(args []string) error {
	kb, err := loadKnowledge()
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(addr, kb, nil, logger).Start(ctx)
}
