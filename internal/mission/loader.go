package mission

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/errors"
	"github.com/felixgeelhaar/taskplan/internal/planner"
	"github.com/felixgeelhaar/taskplan/internal/resource"
	"github.com/felixgeelhaar/taskplan/internal/tree"
)

// Load reads and decodes the mission at path. JSON documents are read by the
// same decoder since JSON is valid YAML.
func Load(path string) (*Mission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewFileNotFoundError(path)
		}
		return nil, errors.NewFileReadError(path, err)
	}

	m, err := Parse(data)
	if err != nil {
		var te *errors.TaskplanError
		if stderrors.As(err, &te) {
			return nil, err
		}
		return nil, errors.NewFileUnmarshalError(path, formatOf(path), err)
	}
	m.Path = path
	return m, nil
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "JSON"
	}
	return "YAML"
}

// Parse decodes a mission document. References between tasks are checked;
// acyclicity is left to Validate so the document can still be rendered.
func Parse(data []byte) (*Mission, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc.Build()
}

// Build converts the document into a Mission
func (d *Document) Build() (*Mission, error) {
	if d.Root == "" {
		return nil, errors.NewMissionInvalidError("root is required", nil)
	}
	if len(d.Tasks) == 0 {
		return nil, errors.NewMissionInvalidError("at least one task is required", nil)
	}
	if d.Accounting != "" {
		if _, err := planner.ParseAccounting(d.Accounting); err != nil {
			return nil, errors.NewMissionInvalidError("accounting", err)
		}
	}

	pool, err := d.decodePool()
	if err != nil {
		return nil, err
	}

	nodes := make([]tree.Node, 0, len(d.Tasks))
	for i, td := range d.Tasks {
		n, err := td.node()
		if err != nil {
			return nil, errors.NewMissionInvalidError(fmt.Sprintf("tasks[%d] (%s)", i, td.ID), err)
		}
		nodes = append(nodes, n)
	}

	t, err := tree.FromNodes(nodes)
	if err != nil {
		return nil, errors.NewMissionInvalidError("task graph", err)
	}

	root := domain.NodeID(d.Root)
	if _, ok := t.Node(root); !ok {
		return nil, errors.NewMissionInvalidError("root", &tree.UnknownNodeError{ID: root})
	}

	return &Mission{
		Name:        d.Name,
		Description: d.Description,
		Root:        root,
		Pool:        pool,
		Tree:        t,
		RiskCeiling: d.RiskCeiling,
		Accounting:  d.Accounting,
	}, nil
}

func (d *Document) decodePool() (resource.Pool, error) {
	pool := make(resource.Pool, len(d.Pool))
	for name, node := range d.Pool {
		if node.Kind != yaml.ScalarNode || node.Tag != "!!int" {
			return nil, errors.NewMissionInvalidError(
				fmt.Sprintf("pool.%s (line %d) must be an integer capacity, got %q", name, node.Line, node.Value), nil)
		}
		var capacity int
		if err := node.Decode(&capacity); err != nil {
			return nil, errors.NewMissionInvalidError(fmt.Sprintf("pool.%s", name), err)
		}
		pool[name] = capacity
	}
	return pool, nil
}

func (s TaskSpec) node() (tree.Node, error) {
	kind, err := domain.ParseKind(s.Kind)
	if err != nil {
		return tree.Node{}, err
	}
	status, err := domain.ParseStatus(s.Status)
	if err != nil {
		return tree.Node{}, err
	}
	return tree.Node{
		ID:            domain.NodeID(s.ID),
		Kind:          kind,
		Preconditions: toIDs(s.Preconditions),
		Resources:     s.Resources,
		Cost:          s.Cost,
		Risk:          s.Risk,
		Status:        status,
		Children:      toIDs(s.Children),
	}, nil
}

func toIDs(values []string) []domain.NodeID {
	if len(values) == 0 {
		return nil
	}
	out := make([]domain.NodeID, len(values))
	for i, v := range values {
		out[i] = domain.NodeID(v)
	}
	return out
}

// Validate runs the pre-flight checks a planning run would: pool capacities
// and acyclicity of everything reachable from the root.
func (m *Mission) Validate() error {
	if err := m.Pool.Validate(); err != nil {
		return err
	}
	return m.Tree.ValidateAcyclic(m.Root)
}

// PlannerConfig applies the mission's overrides to base
func (m *Mission) PlannerConfig(base planner.Config) (planner.Config, error) {
	cfg := base
	if m.RiskCeiling != nil {
		cfg.RiskCeiling = *m.RiskCeiling
	}
	if m.Accounting != "" {
		a, err := planner.ParseAccounting(m.Accounting)
		if err != nil {
			return base, err
		}
		cfg.Accounting = a
	}
	return cfg, cfg.Validate()
}
