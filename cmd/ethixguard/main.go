package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ethixguard/internal/config"
	"ethixguard/internal/knowledge"
	"ethixguard/internal/logging"
)

// command describes a CLI subcommand. The commands slice is the single
// source of truth for dispatch and help; newRootCmd mounts it on cobra.
type command struct {
	name  string
	short string
	usage string
	long  string
	// flags registers command flags; optional.
	flags func(c *cobra.Command)
	run   func(args []string) error
}

var commands = []command{
	{
		name:  "init",
		short: "Create a new workspace",
		usage: "ethixguard init <workspace>",
		long: `Create a new workspace at <root>/<workspace>/.

<root> is $ETHIXGUARD_HOME, or ~/.ethixguard when unset.
Errors if the workspace already exists.
`,
		run: runInit,
	},
	{
		name:  "add",
		short: "Answer the questionnaire for a new project",
		usage: "ethixguard add <workspace> <project>",
		long: `Interactively answer the biosafety checklist, pick a research type,
then answer that type's ethics questions. Writes
<root>/<workspace>/<project>.yaml.

Errors if the project already exists.
`,
		run: runAdd,
	},
	{
		name:  "import",
		short: "Store a submission from a YAML or JSON file",
		usage: "ethixguard import <workspace> <project> <file|->",
		long: `Read a submission document ("-" for stdin) and store it as the
project's answers, replacing any earlier ones. The document has two
mappings, biosafety and ethics, from question label to answer. Answer
order is kept.
`,
		run: runImport,
	},
	{
		name:  "questions",
		short: "Print the questionnaire",
		usage: "ethixguard questions [research type]",
		long: `Print the biosafety checklist and the research-type choices. With a
research type, also print that type's ethics questions.

Flags:
  --json   print the catalog as JSON
`,
		flags: func(c *cobra.Command) {
			c.Flags().BoolVar(&questionsJSON, "json", false, "print the catalog as JSON")
		},
		run: runQuestions,
	},
	{
		name:  "report",
		short: "Generate a project's compliance report",
		usage: "ethixguard report <workspace> <project>",
		long: `Evaluate a project's answers, store the report as
<root>/<workspace>/<project>/report.md and print it.

Flags:
  --format   terminal (default), markdown, html or json
  --out      write the rendering to a file instead of stdout
`,
		flags: func(c *cobra.Command) {
			c.Flags().StringVarP(&reportFormat, "format", "f", "terminal", "terminal, markdown, html or json")
			c.Flags().StringVarP(&reportOut, "out", "o", "", "write to file instead of stdout")
		},
		run: runReport,
	},
	{
		name:  "analyze",
		short: "Generate reports for every project in a workspace",
		usage: "ethixguard analyze <workspace>",
		long: `Generate and store a report for every project in the workspace and
print a one-line summary per project. Projects matching analyze.skip in
settings.yaml are left alone.
`,
		run: runAnalyze,
	},
	{
		name:  "packet",
		short: "Bundle a workspace's reports for committee review",
		usage: "ethixguard packet <workspace> [dst]",
		long: `Copy every stored report into <dst>/.tmp/committee-packet/ (dst
defaults to the current directory) and write an index.md listing each
project's report ID and counts.

Flags:
  --note   cover note placed at the top of index.md
`,
		flags: func(c *cobra.Command) {
			c.Flags().StringVar(&packetNote, "note", "", "cover note for index.md")
		},
		run: runPacket,
	},
	{
		name:  "ask",
		short: "Ask a guidance question",
		usage: "ethixguard ask <question...>",
		long: `Answer a biosafety or ethics question from the guidance table.
Set knowledge.file in settings.yaml to use a custom table.
`,
		run: runAsk,
	},
	{
		name:  "chat",
		short: "Interactive guidance chat",
		usage: "ethixguard chat",
		long: `Open an interactive chat over the guidance table. Esc or Ctrl+C quits.
`,
		run: runChat,
	},
	{
		name:  "watch",
		short: "Regenerate reports when submissions change",
		usage: "ethixguard watch <workspace>",
		long: `Watch the workspace and regenerate a project's report whenever its
<project>.yaml is created or written. Runs until interrupted.
`,
		run: runWatch,
	},
	{
		name:  "serve",
		short: "Serve the HTTP API",
		usage: "ethixguard serve",
		long: `Serve the compliance and guidance API:

  GET  /api/health
  GET  /api/questions?category=<research type>
  POST /api/report?format=json|markdown|html
  POST /api/ask

Flags:
  --addr   listen address (default from settings, then :8080)
`,
		flags: func(c *cobra.Command) {
			c.Flags().StringVar(&serveAddr, "addr", "", "listen address")
		},
		run: runServe,
	},
}

var (
	verbose bool

	cfg    *config.Config
	logger = zap.NewNop()

	stdout io.Writer = os.Stdout
)

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "ethixguard: biosafety and research ethics compliance\n\n")
	fmt.Fprintf(w, "Usage:\n  ethixguard <command> [arguments]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.short)
	}
	fmt.Fprintf(w, "\nGlobal flags:\n  -v, --verbose   debug logging\n")
	fmt.Fprintf(w, "\nRun 'ethixguard help <command>' for details on a specific command.\n")
}

func printCommandHelp(w io.Writer, name string) {
	for _, cmd := range commands {
		if cmd.name == name {
			fmt.Fprintf(w, "Usage: %s\n\n%s", cmd.usage, cmd.long)
			return
		}
	}
	fmt.Fprintf(w, "ethixguard: unknown command %q\n\nRun 'ethixguard help' for usage.\n", name)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ethixguard",
		Short:         "Biosafety and research ethics compliance",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			level := loaded.Log.Level
			if verbose {
				level = "debug"
			}
			l, err := logging.New(level, true)
			if err != nil {
				return err
			}
			cfg, logger = loaded, l
			logger.Debug("config loaded", zap.String("root", cfg.Root), zap.String("command", cmd.Name()))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.SetHelpFunc(func(c *cobra.Command, _ []string) {
		if c == root {
			printUsage(c.OutOrStdout())
			return
		}
		printCommandHelp(c.OutOrStdout(), c.Name())
	})
	root.CompletionOptions.DisableDefaultCmd = true

	for _, cmd := range commands {
		run := cmd.run
		sub := &cobra.Command{
			Use:   strings.TrimPrefix(cmd.usage, "ethixguard "),
			Short: cmd.short,
			Long:  cmd.long,
			Args:  cobra.ArbitraryArgs,
			RunE: func(_ *cobra.Command, args []string) error {
				return run(args)
			},
		}
		if cmd.flags != nil {
			cmd.flags(sub)
		}
		root.AddCommand(sub)
	}
	return root
}

func dispatch(args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	return root.Execute()
}

// loadKnowledge returns the configured guidance table.
func loadKnowledge() (*knowledge.Base, error) {
	if cfg == nil || cfg.Knowledge.File == "" {
		return knowledge.Default(), nil
	}
	kb, err := knowledge.LoadBase(cfg.Knowledge.File)
	if err != nil {
		return nil, err
	}
	logger.Debug("custom knowledge base", zap.String("file", cfg.Knowledge.File), zap.Int("entries", len(kb.Entries())))
	return kb, nil
}

func main() {
	if err := dispatch(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "ethixguard: %v\n", err)
		os.Exit(1)
	}
}
