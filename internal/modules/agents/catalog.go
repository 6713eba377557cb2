package agents

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/pathforge-backend/internal/data/repos"
	types "github.com/yungbote/pathforge-backend/internal/domain/agents"
	"github.com/yungbote/pathforge-backend/internal/platform/dbctx"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

//go:embed personas.yaml
var defaultCatalog []byte

type Persona struct {
	Key          string          `yaml:"key"`
	Label        string          `yaml:"label"`
	SystemPrompt string          `yaml:"system_prompt"`
	OutputFormat *types.ToolSpec `yaml:"output_format"`
}

type catalogFile struct {
	Personas []Persona `yaml:"personas"`
}

// Parse decodes a persona catalog. Keys must be present and unique.
func Parse(data []byte) ([]Persona, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode persona catalog: %w", err)
	}
	seen := map[string]bool{}
	for i, p := range f.Personas {
		key := strings.TrimSpace(p.Key)
		if key == "" {
			return nil, fmt.Errorf("persona %d has no key", i)
		}
		if seen[key] {
			return nil, fmt.Errorf("persona %q declared twice", key)
		}
		seen[key] = true
		if p.OutputFormat != nil && p.OutputFormat.Name == "" {
			return nil, fmt.Errorf("persona %q output format has no name", key)
		}
		f.Personas[i].Key = key
	}
	return f.Personas, nil
}

// Load reads path, or the built-in catalog when path is empty.
func Load(path string) ([]Persona, error) {
	if strings.TrimSpace(path) == "" {
		return Parse(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona catalog: %w", err)
	}
	return Parse(data)
}

func (p Persona) Agent() (*types.Agent, error) {
	a := &types.Agent{Key: p.Key, Label: p.Label, SystemPrompt: strings.TrimSpace(p.SystemPrompt)}
	if a.Label == "" {
		a.Label = p.Key
	}
	if p.OutputFormat != nil {
		raw, err := json.Marshal(p.OutputFormat)
		if err != nil {
			return nil, fmt.Errorf("encode output format of %s: %w", p.Key, err)
		}
		a.OutputFormat = raw
	}
	return a, nil
}

type Catalog struct {
	log    *logger.Logger
	agents repos.AgentRepo
}

func NewCatalog(log *logger.Logger, agents repos.AgentRepo) *Catalog {
	return &Catalog{log: log.With("service", "PersonaCatalog"), agents: agents}
}

// Seed upserts every persona by key.
func (c *Catalog) Seed(ctx context.Context, personas []Persona) error {
	for _, p := range personas {
		a, err := p.Agent()
		if err != nil {
			return err
		}
		if err := c.agents.Upsert(dbctx.New(ctx), a); err != nil {
			return fmt.Errorf("upsert persona %s: %w", p.Key, err)
		}
	}
	c.log.Info("personas seeded", "count", len(personas))
	return nil
}

func (c *Catalog) Resolve(ctx context.Context, key string) (*types.Agent, error) {
	a, err := c.agents.GetByKey(dbctx.New(ctx), key)
	if err != nil {
		return nil, fmt.Errorf("persona %s: %w", key, err)
	}
	return a, nil
}

func (c *Catalog) List(ctx context.Context) ([]*types.Agent, error) {
	return c.agents.List(dbctx.New(ctx))
}
