package cli

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/alexanderramin/roadmap/internal/cli/formatter"
)

// activeProjectToken expands to the active project in command bar input.
const activeProjectToken = "@"

// captureCobraOutput runs a command through the Cobra tree and captures
// everything it writes. The tree runs non-interactively: a nested TUI or a
// form would fight the running program for the terminal.
func captureCobraOutput(app *App, args []string, activeShortID string) string {
	if slices.Contains(args, "-i") || slices.Contains(args, "--interactive") {
		return shellError(fmt.Errorf("interactive forms are not available from the command bar"))
	}
	args, err := expandActiveProject(args, activeShortID)
	if err != nil {
		return shellError(err)
	}

	captured := *app
	captured.IsInteractive = false

	var buf bytes.Buffer
	root := NewRootCmd(&captured)
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	root.SilenceUsage = true
	root.SilenceErrors = true

	if execErr := root.Execute(); execErr != nil {
		if buf.Len() > 0 && !strings.HasSuffix(buf.String(), "\n") {
			buf.WriteString("\n")
		}
		buf.WriteString(shellError(execErr))
		if hint := hintForMissingProject(execErr.Error(), activeShortID); hint != "" {
			buf.WriteString("\n" + hint)
		}
	}
	return buf.String()
}

// expandActiveProject replaces every standalone @ argument with the active
// project's short ID.
func expandActiveProject(args []string, activeShortID string) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		if a != activeProjectToken {
			out[i] = a
			continue
		}
		if activeShortID == "" {
			return nil, fmt.Errorf("no active project for %s; set one with 'use <id>'", activeProjectToken)
		}
		out[i] = activeShortID
	}
	return out, nil
}

// hintForMissingProject points at the active project when a command failed
// for want of positional arguments.
func hintForMissingProject(errMsg, activeShortID string) string {
	if !strings.Contains(errMsg, "arg(s)") {
		return ""
	}
	if activeShortID != "" {
		return formatter.Dim(fmt.Sprintf("Hint: active project is %s; pass %s to use it", activeShortID, activeProjectToken))
	}
	return formatter.Dim("Hint: set an active project with 'use <id>'")
}
