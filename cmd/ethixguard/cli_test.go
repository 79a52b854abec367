package main

import (
	"bytes"
	"strings"
	"testing"
)

// CLI dispatch behaviour:
//
//   - a known subcommand name runs it with the remaining args
//   - ethixguard / --help / -h print the same usage listing; help <cmd> prints long help
//   - an unknown subcommand is an error
//   - a subcommand given too few args returns its usage line
//   - the commands slice is the single source of truth for dispatch and help

// withTestEnv points the root at a temp dir and captures stdout.
func withTestEnv(t *testing.T) *bytes.Buffer {
	t.Helper()
	t.Setenv("ETHIXGUARD_HOME", t.TempDir())
	t.Setenv("ETHIXGUARD_LOG_LEVEL", "error")
	t.Setenv("ETHIXGUARD_KNOWLEDGE_FILE", "")
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

// helpText calls the help function and returns the output as a string.
func helpText() string {
	var sb strings.Builder
	printUsage(&sb)
	return sb.String()
}

// longHelpText returns the long help for a named command.
func longHelpText(name string) string {
	var sb strings.Builder
	printCommandHelp(&sb, name)
	return sb.String()
}

// TestHelpContainsAllCommands checks that every registered command name and
// short description appears in the overall help output.
func TestHelpContainsAllCommands(t *testing.T) {
	help := helpText()
	for _, cmd := range commands {
		if !strings.Contains(help, cmd.name) {
			t.Errorf("help output missing command %q", cmd.name)
		}
		if !strings.Contains(help, cmd.short) {
			t.Errorf("help output missing short description for %q", cmd.short)
		}
	}
}

// TestHelpContainsUsageHeader verifies the overall help has a usage header.
func TestHelpContainsUsageHeader(t *testing.T) {
	help := helpText()
	if !strings.Contains(help, "Usage:") {
		t.Error("help output missing 'Usage:' header")
	}
	if !strings.Contains(help, "ethixguard") {
		t.Error("help output missing program name 'ethixguard'")
	}
}

// TestLongHelpForKnownCommands verifies that each registered command has
// a long help section containing its usage line.
func TestLongHelpForKnownCommands(t *testing.T) {
	for _, cmd := range commands {
		t.Run(cmd.name, func(t *testing.T) {
			out := longHelpText(cmd.name)
			if out == "" {
				t.Fatalf("printCommandHelp(%q) returned empty output", cmd.name)
			}
			if !strings.Contains(out, cmd.usage) {
				t.Errorf("long help for %q missing usage line %q\ngot: %s", cmd.name, cmd.usage, out)
			}
		})
	}
}

func TestLongHelpUnknownCommand(t *testing.T) {
	out := longHelpText("no-such-command")
	if !strings.Contains(out, "unknown") || !strings.Contains(out, "no-such-command") {
		t.Errorf("expected unknown-command message, got: %s", out)
	}
}

// TestDispatchKnownSubcommand checks that dispatch routes known names to
// their run func.
func TestDispatchKnownSubcommand(t *testing.T) {
	withTestEnv(t)
	// analyze with no args returns its own usage error, which confirms
	// dispatch reached it.
	err := dispatch([]string{"analyze"})
	if err == nil {
		t.Fatal("expected error for analyze with no workspace, got nil")
	}
	if !strings.Contains(err.Error(), "usage: ethixguard analyze") {
		t.Errorf("expected analyze usage error, got: %v", err)
	}
}

func TestDispatchHelpFlag(t *testing.T) {
	for _, flag := range []string{"--help", "-h"} {
		t.Run(flag, func(t *testing.T) {
			out := withTestEnv(t)
			if err := dispatch([]string{flag}); err != nil {
				t.Errorf("dispatch(%q) returned error: %v", flag, err)
			}
			if out.String() != helpText() {
				t.Errorf("dispatch(%q) output differs from usage listing:\n%s", flag, out.String())
			}
		})
	}
}

// TestDispatchNoArgs checks that no args prints help and is not an error.
func TestDispatchNoArgs(t *testing.T) {
	out := withTestEnv(t)
	if err := dispatch([]string{}); err != nil {
		t.Errorf("dispatch() with no args returned error: %v", err)
	}
	if !strings.Contains(out.String(), "Commands:") {
		t.Errorf("expected usage listing, got: %s", out.String())
	}
}

func TestDispatchHelpSubcommand(t *testing.T) {
	for _, cmd := range commands {
		t.Run(cmd.name, func(t *testing.T) {
			out := withTestEnv(t)
			if err := dispatch([]string{"help", cmd.name}); err != nil {
				t.Errorf("dispatch(help %q) returned error: %v", cmd.name, err)
			}
			if !strings.Contains(out.String(), cmd.usage) {
				t.Errorf("help %s missing usage line, got: %s", cmd.name, out.String())
			}
		})
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	withTestEnv(t)
	err := dispatch([]string{"no-such-command-xyz-abc"})
	if err == nil {
		t.Fatal("expected error for unknown command, got nil")
	}
	if !strings.Contains(err.Error(), "unknown") {
		t.Errorf("expected 'unknown' in error, got: %s", err)
	}
}

// TestSubcommandBadArgsGivesUsage checks that each subcommand given too few
// args returns its usage line rather than panicking.
func TestSubcommandBadArgsGivesUsage(t *testing.T) {
	requireArgs := []string{"init", "add", "import", "report", "analyze", "packet", "ask", "watch"}
	for _, name := range requireArgs {
		t.Run(name, func(t *testing.T) {
			withTestEnv(t)
			err := dispatch([]string{name})
			if err == nil {
				t.Fatalf("dispatch(%q) with no args should return error", name)
			}
			if !strings.Contains(err.Error(), "usage: ethixguard "+name) {
				t.Errorf("dispatch(%q) = %v, expected usage error", name, err)
			}
		})
	}
}

func TestCommandsSliceNotEmpty(t *testing.T) {
	if len(commands) == 0 {
		t.Fatal("commands slice is empty, no subcommands registered")
	}
}

// TestCommandsHaveRequiredFields verifies every command has name, short, usage set.
func TestCommandsHaveRequiredFields(t *testing.T) {
	seen := map[string]bool{}
	for _, cmd := range commands {
		if cmd.name == "" {
			t.Error("command with empty name found")
		}
		if seen[cmd.name] {
			t.Errorf("command %q registered twice", cmd.name)
		}
		seen[cmd.name] = true
		if cmd.short == "" {
			t.Errorf("command %q has empty short description", cmd.name)
		}
		if !strings.HasPrefix(cmd.usage, "ethixguard "+cmd.name) {
			t.Errorf("command %q has usage line %q", cmd.name, cmd.usage)
		}
		if cmd.run == nil {
			t.Errorf("command %q has nil run func", cmd.name)
		}
	}
}

// TestRootMountsEveryCommand checks the cobra tree mirrors the table.
func TestRootMountsEveryCommand(t *testing.T) {
	root := newRootCmd()
	for _, cmd := range commands {
		sub, _, err := root.Find([]string{cmd.name})
		if err != nil || sub == root {
			t.Errorf("command %q not mounted: %v", cmd.name, err)
			continue
		}
		if sub.Short != cmd.short {
			t.Errorf("command %q short = %q", cmd.name, sub.Short)
		}
	}
}
