// Package diagram consumes the rendered state-machine layout and resolves
// state highlighting.
//
// Layout computation happens in an external graph-rendering engine; this
// package only reads its output document (node rectangles, labels, edges),
// builds a label index once per load, and repaints node fills as the saga
// moves between states.
package diagram

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"sagaview/internal/transform"
)

// Fill is the highlight color class of a node rectangle.
type Fill int

const (
	// FillNeutral is the resting fill of every node.
	FillNeutral Fill = iota
	// FillSuccess marks the active state of a healthy saga.
	FillSuccess
	// FillError marks the active state when the saga carries a fault.
	FillError
)

// Node is one rendered state rectangle.
type Node struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`

	// Fill is mutated by Highlight only.
	Fill Fill `json:"-"`
}

// Waypoint is an intermediate edge point in content coordinates.
type Waypoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is a rendered transition between two nodes.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`

	// Points are optional waypoints. When empty, the edge runs between
	// the node centers.
	Points []Waypoint `json:"points,omitempty"`
}

// Diagram is a parsed layout document plus its label index.
type Diagram struct {
	Name  string  `json:"name"`
	Nodes []*Node `json:"nodes"`
	Edges []Edge  `json:"edges"`

	// index maps trimmed label text to the node, built once at parse
	// time instead of scanning labels per highlight. byID serves edge
	// endpoint lookups the same way.
	index map[string]*Node
	byID  map[string]*Node
}

// Parse validates and decodes a layout document and builds the node index.
func Parse(data []byte) (*Diagram, error) {
	if err := validateLayout(data); err != nil {
		return nil, fmt.Errorf("validate layout: %w", err)
	}

	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}

	d.index = make(map[string]*Node, len(d.Nodes))
	d.byID = make(map[string]*Node, len(d.Nodes))
	for _, n := range d.Nodes {
		label := strings.TrimSpace(n.Label)
		if _, dup := d.index[label]; !dup {
			d.index[label] = n
		}
		d.byID[n.ID] = n
	}
	return &d, nil
}

// Load reads and parses the layout document at path.
func Load(path string) (*Diagram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	return Parse(data)
}

// Bounds returns the smallest rectangle covering every node, in content
// coordinates. A diagram without nodes has zero bounds, which keeps the
// interaction engine waiting for a measurable diagram.
func (d *Diagram) Bounds() transform.Rect {
	if len(d.Nodes) == 0 {
		return transform.Rect{}
	}
	r := transform.Rect{
		Min: transform.Pt(d.Nodes[0].X, d.Nodes[0].Y),
		Max: transform.Pt(d.Nodes[0].X+d.Nodes[0].W, d.Nodes[0].Y+d.Nodes[0].H),
	}
	for _, n := range d.Nodes[1:] {
		r.Min.X = min(r.Min.X, n.X)
		r.Min.Y = min(r.Min.Y, n.Y)
		r.Max.X = max(r.Max.X, n.X+n.W)
		r.Max.Y = max(r.Max.Y, n.Y+n.H)
	}
	return r
}

// NodeByID returns the node with the given id, or nil.
func (d *Diagram) NodeByID(id string) *Node {
	return d.byID[id]
}

// Node returns the node whose label equals the given state name after
// trimming surrounding whitespace, or nil. Matching is case-sensitive.
func (d *Diagram) Node(state string) *Node {
	return d.index[strings.TrimSpace(state)]
}

// Highlight repaints the node fills for the given saga state: every node
// is reset to neutral, then the node matching currentState is filled with
// the error color when lastError is set, the success color otherwise. An
// empty state or an unmatched name leaves the whole diagram neutral. The
// function is idempotent in (currentState, lastError).
func (d *Diagram) Highlight(currentState, lastError string) {
	for _, n := range d.Nodes {
		n.Fill = FillNeutral
	}
	if currentState == "" {
		return
	}
	n := d.Node(currentState)
	if n == nil {
		return
	}
	if lastError != "" {
		n.Fill = FillError
	} else {
		n.Fill = FillSuccess
	}
}
