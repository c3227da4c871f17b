package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/roadmap/internal/cli/formatter"
	tea "github.com/charmbracelet/bubbletea"
)

// executeCommand dispatches a command bar line. Navigation commands are
// handled here; anything else runs through the cobra tree with captured
// output.
func (c *commandBar) executeCommand(input string) tea.Cmd {
	parts, err := splitShellArgs(input)
	if err != nil {
		return outputCmd(shellError(err))
	}
	if len(parts) == 0 {
		return nil
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "projects":
		c.Blur()
		return replaceView(newProjectListView(c.state))
	case "timeline":
		return c.cmdTimeline(args)
	case "use":
		return c.cmdUse(args)
	case "inspect":
		return c.cmdInspect(args)
	case "help":
		return outputCmd(commandHelp())
	case "clear":
		c.state.ClearProjectContext()
		c.state.ClearNotice()
		return nil
	case "exit", "quit":
		return func() tea.Msg { return quitMsg{} }
	default:
		c.cache.invalidate()
		state := c.state
		return func() tea.Msg {
			out := captureCobraOutput(state.App, parts, state.ActiveShortID)
			return cmdOutputMsg{output: out, refresh: true}
		}
	}
}

func (c *commandBar) cmdTimeline(args []string) tea.Cmd {
	var ids []string
	for _, ref := range args {
		p, err := resolveProject(context.Background(), c.state.App, ref)
		if err != nil {
			return outputCmd(shellError(err))
		}
		ids = append(ids, p.ID)
		if len(args) == 1 {
			c.state.SetActiveProjectFrom(p)
		}
	}
	c.Blur()
	return pushView(newTimelineView(c.state, ids))
}

func (c *commandBar) cmdUse(args []string) tea.Cmd {
	if len(args) == 0 {
		return outputCmd(formatter.StyleYellow.Render("Usage: use <project-id>"))
	}
	p, err := resolveProject(context.Background(), c.state.App, args[0])
	if err != nil {
		return outputCmd(shellError(err))
	}
	c.state.SetActiveProjectFrom(p)
	return outputCmd(fmt.Sprintf("Active project: %s %s", formatter.StyleGreen.Render(p.DisplayID()), p.Name))
}

func (c *commandBar) cmdInspect(args []string) tea.Cmd {
	ref := c.state.ActiveShortID
	if len(args) > 0 {
		ref = args[0]
	}
	if ref == "" {
		return outputCmd(formatter.StyleYellow.Render("Usage: inspect <project-id>"))
	}
	app := c.state.App
	return asyncOutputCmd(func() string {
		out, err := buildInspectView(context.Background(), app, ref)
		if err != nil {
			return shellError(err)
		}
		return out
	})
}

func commandHelp() string {
	rows := [][]string{
		{"projects", "show the project list"},
		{"timeline [ID...]", "open the timeline, optionally for some projects"},
		{"use ID", "set the active project; @ in commands expands to it"},
		{"inspect [ID]", "show a project with its phases and tasks"},
		{"project|phase|task ...", "run any CLI command, e.g. phase move @ 2 --days 7"},
		{"export svg [ID...] -o FILE", "write the timeline as SVG"},
		{"clear", "drop the active project and status message"},
		{"quit", "leave"},
	}
	return formatter.RenderBox("COMMANDS", formatter.RenderTable([]string{"COMMAND", "DESCRIPTION"}, rows))
}

// outputCmd returns a tea.Cmd that sends a cmdOutputMsg.
func outputCmd(s string) tea.Cmd {
	if s == "" {
		return nil
	}
	return func() tea.Msg { return cmdOutputMsg{output: s} }
}

// asyncOutputCmd wraps a blocking function in a tea.Cmd. The function's
// string result is delivered as a cmdOutputMsg.
func asyncOutputCmd(fn func() string) tea.Cmd {
	return func() tea.Msg {
		result := fn()
		if result == "" {
			return nil
		}
		return cmdOutputMsg{output: result}
	}
}

func shellError(err error) string {
	return formatter.StyleRed.Render("Error: " + err.Error())
}

func splitShellArgs(input string) ([]string, error) {
	var parts []string
	var cur strings.Builder

	inSingle := false
	inDouble := false
	escaped := false
	tokenStarted := false

	flush := func() {
		parts = append(parts, cur.String())
		cur.Reset()
		tokenStarted = false
	}

	for _, r := range input {
		if escaped {
			cur.WriteRune(r)
			tokenStarted = true
			escaped = false
			continue
		}

		if inSingle {
			if r == '\'' {
				inSingle = false
			} else {
				cur.WriteRune(r)
			}
			tokenStarted = true
			continue
		}

		if inDouble {
			switch r {
			case '"':
				inDouble = false
			case '\\':
				escaped = true
			default:
				cur.WriteRune(r)
			}
			tokenStarted = true
			continue
		}

		switch r {
		case '\\':
			escaped = true
			tokenStarted = true
		case '\'':
			inSingle = true
			tokenStarted = true
		case '"':
			inDouble = true
			tokenStarted = true
		case ' ', '\t', '\n', '\r':
			if tokenStarted {
				flush()
			}
		default:
			cur.WriteRune(r)
			tokenStarted = true
		}
	}

	if escaped {
		return nil, fmt.Errorf("unterminated escape sequence")
	}
	if inSingle || inDouble {
		return nil, fmt.Errorf("unterminated quoted string")
	}
	if tokenStarted {
		flush()
	}

	return parts, nil
}
