package cli

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/roadmap/internal/domain"
)

// projectCache caches the project list for autocomplete,
// refreshing at most every 5 seconds.
type projectCache struct {
	mu        sync.Mutex
	projects  []*domain.Project
	fetchedAt time.Time
	ttl       time.Duration
}

func newProjectCache() *projectCache {
	return &projectCache{ttl: 5 * time.Second}
}

func (c *projectCache) get(app *App) []*domain.Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(c.fetchedAt) < c.ttl && c.projects != nil {
		return c.projects
	}
	projects, err := app.Projects.List(context.Background(), false)
	if err != nil {
		return c.projects // stale data on error
	}
	c.projects = projects
	c.fetchedAt = time.Now()
	return c.projects
}

// invalidate forces the next get to reload.
func (c *projectCache) invalidate() {
	c.mu.Lock()
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

// allCommandNames returns the command bar vocabulary for autocomplete.
func allCommandNames() []string {
	return []string{
		"projects", "timeline", "use", "inspect",
		"project", "phase", "task", "export",
		"clear", "help", "exit", "quit",
	}
}

// subcommandNames returns subcommand lists by parent command.
func subcommandNames() map[string][]string {
	return map[string][]string{
		"project": {"add", "list", "inspect", "update", "archive", "unarchive", "remove", "import", "export"},
		"phase":   {"add", "list", "update", "move", "remove", "refresh-status"},
		"task":    {"add", "list", "toggle", "done", "reorder", "remove"},
		"export":  {"svg"},
	}
}

// filterSuggestions returns items from pool that start with prefix (case-insensitive).
func filterSuggestions(pool []string, prefix string) []string {
	if prefix == "" {
		return pool
	}
	lp := strings.ToLower(prefix)
	var result []string
	for _, s := range pool {
		if strings.HasPrefix(strings.ToLower(s), lp) {
			result = append(result, s)
		}
	}
	return result
}

// withPrefix turns word completions into full-line suggestions for the
// text input, which matches suggestions against its whole value.
func withPrefix(line string, words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = line + w
	}
	return out
}
