package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Layout is a hand-written node placement. When a Simulation is given a
// layout, the generator and selfish assignment are skipped and the layout
// is used as-is.
type Layout struct {
	Nodes []LayoutNode `yaml:"nodes" json:"nodes"`

	// Source and Destination pin the packet endpoints. Unset endpoints are
	// drawn at random like in a generated run.
	Source      *int `yaml:"source,omitempty" json:"source,omitempty"`
	Destination *int `yaml:"destination,omitempty" json:"destination,omitempty"`
}

// LayoutNode describes one node of a Layout. Power defaults to
// MaxInitialPower. Trust defaults to InitialTrust, or MaxSelfishTrust for
// selfish nodes.
type LayoutNode struct {
	ID      int  `yaml:"id" json:"id"`
	X       int  `yaml:"x" json:"x"`
	Y       int  `yaml:"y" json:"y"`
	Power   *int `yaml:"power,omitempty" json:"power,omitempty"`
	Trust   *int `yaml:"trust,omitempty" json:"trust,omitempty"`
	Selfish bool `yaml:"selfish,omitempty" json:"selfish,omitempty"`
}

// LoadLayoutFile reads a layout from path. Files ending in .json are
// decoded as JSON, everything else as YAML.
func LoadLayoutFile(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open layout %q: %w", path, err)
	}
	defer f.Close()

	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	return LoadLayout(f, format)
}

// LoadLayout decodes a layout in the given format ("yaml" or "json") and
// validates it.
func LoadLayout(r io.Reader, format string) (*Layout, error) {
	var layout Layout
	switch strings.ToLower(format) {
	case "yaml", "yml", "":
		if err := yaml.NewDecoder(r).Decode(&layout); err != nil {
			return nil, fmt.Errorf("LoadLayout: decode yaml: %w", err)
		}
	case "json":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&layout); err != nil {
			return nil, fmt.Errorf("LoadLayout: decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("LoadLayout: unsupported format %q", format)
	}

	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &layout, nil
}

// Validate checks that node ids are exactly 0..n-1 and that pinned
// endpoints refer to nodes of the layout.
func (l *Layout) Validate() error {
	n := len(l.Nodes)
	if n == 0 {
		return fmt.Errorf("%w: no nodes", ErrLayoutInvalid)
	}
	if n > MaxNodes {
		return fmt.Errorf("%w: %d nodes exceeds limit of %d", ErrLayoutInvalid, n, MaxNodes)
	}
	seen := make(map[int]bool, n)
	for _, ln := range l.Nodes {
		if ln.ID < 0 || ln.ID >= n {
			return fmt.Errorf("%w: node id %d outside [0, %d)", ErrLayoutInvalid, ln.ID, n)
		}
		if seen[ln.ID] {
			return fmt.Errorf("%w: duplicate node id %d", ErrLayoutInvalid, ln.ID)
		}
		seen[ln.ID] = true
	}
	if err := checkEndpoint("source", l.Source, n); err != nil {
		return err
	}
	return checkEndpoint("destination", l.Destination, n)
}

func checkEndpoint(name string, ep *int, n int) error {
	if ep != nil && (*ep < 0 || *ep >= n) {
		return fmt.Errorf("%w: %s %d outside [0, %d)", ErrLayoutInvalid, name, *ep, n)
	}
	return nil
}

// NodeSet materialises a fresh node set from the layout.
func (l *Layout) NodeSet() NodeSet {
	nodes := make(NodeSet, len(l.Nodes))
	for _, ln := range l.Nodes {
		node := &Node{
			ID:      ln.ID,
			X:       ln.X,
			Y:       ln.Y,
			Power:   MaxInitialPower,
			Trust:   InitialTrust,
			Selfish: ln.Selfish,
		}
		if ln.Power != nil {
			node.Power = *ln.Power
		}
		switch {
		case ln.Trust != nil:
			node.Trust = *ln.Trust
		case ln.Selfish:
			node.Trust = MaxSelfishTrust
		}
		nodes[ln.ID] = node
	}
	return nodes
}
