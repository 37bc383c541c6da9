// Package mission reads mission documents: a task tree, its root, the resource
// pool and optional planner overrides, in YAML or JSON.
package mission

import (
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/resource"
	"github.com/felixgeelhaar/taskplan/internal/tree"
)

// Document is the on-disk shape of a mission
type Document struct {
	Name        string   `yaml:"name,omitempty" json:"name,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Root        string   `yaml:"root" json:"root"`
	RiskCeiling *float64 `yaml:"risk_ceiling,omitempty" json:"risk_ceiling,omitempty"`
	Accounting  string   `yaml:"accounting,omitempty" json:"accounting,omitempty"`

	// Pool is kept as raw nodes so non-integer capacities can be rejected with
	// their line numbers
	Pool map[string]yaml.Node `yaml:"pool" json:"pool"`

	Tasks []TaskSpec `yaml:"tasks" json:"tasks"`
}

// TaskSpec is one task entry of a Document
type TaskSpec struct {
	ID            string         `yaml:"id" json:"id"`
	Kind          string         `yaml:"kind" json:"kind"`
	Resources     map[string]int `yaml:"resources,omitempty" json:"resources,omitempty"`
	Cost          float64        `yaml:"cost,omitempty" json:"cost,omitempty"`
	Risk          float64        `yaml:"risk,omitempty" json:"risk,omitempty"`
	Status        string         `yaml:"status,omitempty" json:"status,omitempty"`
	Preconditions []string       `yaml:"preconditions,omitempty" json:"preconditions,omitempty"`
	Children      []string       `yaml:"children,omitempty" json:"children,omitempty"`
}

// Mission is a decoded, structurally checked Document
type Mission struct {
	Name        string
	Description string
	Root        domain.NodeID
	Pool        resource.Pool
	Tree        *tree.Tree

	// RiskCeiling and Accounting override planner settings when set
	RiskCeiling *float64
	Accounting  string

	// Path is the file the mission was loaded from, if any
	Path string
}
