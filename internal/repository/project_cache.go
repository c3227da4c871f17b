package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/roadmap/internal/domain"
)

// ErrCacheMiss is returned by ProjectCache.Load when nothing is stored under a key.
var ErrCacheMiss = errors.New("project cache miss")

// ProjectCache keeps the last successfully read project lists so reads can be
// served when the backing store is unavailable.
type ProjectCache interface {
	Load(ctx context.Context, key string) ([]*domain.Project, error)
	Store(ctx context.Context, key string, projects []*domain.Project) error
	Invalidate(ctx context.Context) error
}

func cloneProjects(in []*domain.Project) []*domain.Project {
	out := make([]*domain.Project, len(in))
	for i, p := range in {
		cp := *p
		out[i] = &cp
	}
	return out
}

// MemoryProjectCache is a process-local ProjectCache.
type MemoryProjectCache struct {
	mu      sync.RWMutex
	entries map[string][]*domain.Project
}

func NewMemoryProjectCache() *MemoryProjectCache {
	return &MemoryProjectCache{entries: make(map[string][]*domain.Project)}
}

func (c *MemoryProjectCache) Load(_ context.Context, key string) ([]*domain.Project, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	projects, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return cloneProjects(projects), nil
}

func (c *MemoryProjectCache) Store(_ context.Context, key string, projects []*domain.Project) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cloneProjects(projects)
	return nil
}

func (c *MemoryProjectCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]*domain.Project)
	return nil
}

// FileProjectCache persists snapshots as YAML so the last known project list
// survives restarts. Writes replace the file atomically.
type FileProjectCache struct {
	path string
	mu   sync.Mutex
}

func NewFileProjectCache(path string) *FileProjectCache {
	return &FileProjectCache{path: path}
}

type cacheFile struct {
	SavedAt time.Time                  `yaml:"saved_at"`
	Lists   map[string][]cachedProject `yaml:"lists"`
}

type cachedProject struct {
	ID          string     `yaml:"id"`
	ShortID     string     `yaml:"short_id,omitempty"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	OwnerID     string     `yaml:"owner_id,omitempty"`
	Color       string     `yaml:"color,omitempty"`
	StartDate   time.Time  `yaml:"start_date"`
	TargetDate  *time.Time `yaml:"target_date,omitempty"`
	Status      string     `yaml:"status"`
	ArchivedAt  *time.Time `yaml:"archived_at,omitempty"`
	CreatedAt   time.Time  `yaml:"created_at"`
	UpdatedAt   time.Time  `yaml:"updated_at"`
}

func toCached(p *domain.Project) cachedProject {
	return cachedProject{
		ID: p.ID, ShortID: p.ShortID, Name: p.Name, Description: p.Description,
		OwnerID: p.OwnerID, Color: p.Color, StartDate: p.StartDate, TargetDate: p.TargetDate,
		Status: string(p.Status), ArchivedAt: p.ArchivedAt, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func (c cachedProject) toDomain() *domain.Project {
	return &domain.Project{
		ID: c.ID, ShortID: c.ShortID, Name: c.Name, Description: c.Description,
		OwnerID: c.OwnerID, Color: c.Color, StartDate: c.StartDate, TargetDate: c.TargetDate,
		Status: domain.ProjectStatus(c.Status), ArchivedAt: c.ArchivedAt, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

func (c *FileProjectCache) read() (*cacheFile, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return &cacheFile{Lists: map[string][]cachedProject{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading project cache: %w", err)
	}
	var f cacheFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding project cache %s: %w", c.path, err)
	}
	if f.Lists == nil {
		f.Lists = map[string][]cachedProject{}
	}
	return &f, nil
}

func (c *FileProjectCache) write(f *cacheFile) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding project cache: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing project cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replacing project cache: %w", err)
	}
	return nil
}

func (c *FileProjectCache) Load(_ context.Context, key string) ([]*domain.Project, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, err := c.read()
	if err != nil {
		return nil, err
	}
	list, ok := f.Lists[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	out := make([]*domain.Project, len(list))
	for i, cp := range list {
		out[i] = cp.toDomain()
	}
	return out, nil
}

func (c *FileProjectCache) Store(_ context.Context, key string, projects []*domain.Project) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, err := c.read()
	if err != nil {
		// A corrupt snapshot is replaced rather than blocking writes.
		f = &cacheFile{Lists: map[string][]cachedProject{}}
	}
	list := make([]cachedProject, len(projects))
	for i, p := range projects {
		list[i] = toCached(p)
	}
	f.Lists[key] = list
	f.SavedAt = time.Now().UTC()
	return c.write(f)
}

func (c *FileProjectCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing project cache: %w", err)
	}
	return nil
}
