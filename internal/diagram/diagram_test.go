package diagram

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderLayout = `{
	"name": "OrderSaga",
	"nodes": [
		{"id": "n1", "label": "Submitted",  "x": 0,   "y": 0,  "w": 120, "h": 40},
		{"id": "n2", "label": " Processing ", "x": 180, "y": 0,  "w": 120, "h": 40},
		{"id": "n3", "label": "Failed",     "x": 90,  "y": 90, "w": 120, "h": 40}
	],
	"edges": [
		{"from": "n1", "to": "n2"},
		{"from": "n2", "to": "n3", "points": [{"x": 240, "y": 70}]}
	]
}`

func parseOrderLayout(t *testing.T) *Diagram {
	t.Helper()
	d, err := Parse([]byte(orderLayout))
	require.NoError(t, err)
	return d
}

func TestParse(t *testing.T) {
	d := parseOrderLayout(t)

	assert.Equal(t, "OrderSaga", d.Name)
	require.Len(t, d.Nodes, 3)
	require.Len(t, d.Edges, 2)
	require.Len(t, d.Edges[1].Points, 1)
	assert.Equal(t, 240.0, d.Edges[1].Points[0].X)
}

func TestParseRejectsInvalidDocument(t *testing.T) {
	cases := map[string]string{
		"not json":       `{"nodes": [`,
		"missing nodes":  `{"name": "x"}`,
		"zero width":     `{"nodes": [{"id": "n", "label": "A", "x": 0, "y": 0, "w": 0, "h": 10}]}`,
		"missing id":     `{"nodes": [{"label": "A", "x": 0, "y": 0, "w": 10, "h": 10}]}`,
		"edge without to": `{"nodes": [], "edges": [{"from": "a"}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	require.NoError(t, os.WriteFile(path, []byte(orderLayout), 0644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, d.Nodes, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestBounds(t *testing.T) {
	d := parseOrderLayout(t)
	b := d.Bounds()

	assert.Equal(t, 0.0, b.Min.X)
	assert.Equal(t, 0.0, b.Min.Y)
	assert.Equal(t, 300.0, b.Max.X)
	assert.Equal(t, 130.0, b.Max.Y)

	empty := &Diagram{}
	assert.Zero(t, empty.Bounds().Width())
}

func TestNodeLookupTrimsLabels(t *testing.T) {
	d := parseOrderLayout(t)

	// Both the stored label and the query are trimmed.
	require.NotNil(t, d.Node("Processing"))
	require.NotNil(t, d.Node("  Submitted "))
	assert.Nil(t, d.Node("processing"), "lookup must stay case-sensitive")
	assert.Nil(t, d.Node("Unknown"))
}

func TestNodeByID(t *testing.T) {
	d := parseOrderLayout(t)

	n := d.NodeByID("n2")
	require.NotNil(t, n)
	assert.Equal(t, " Processing ", n.Label)
	assert.Nil(t, d.NodeByID("n9"))
}

func TestHighlightSuccess(t *testing.T) {
	d := parseOrderLayout(t)
	d.Highlight("Processing", "")

	assert.Equal(t, FillSuccess, d.Node("Processing").Fill)
	assert.Equal(t, FillNeutral, d.Node("Submitted").Fill)
	assert.Equal(t, FillNeutral, d.Node("Failed").Fill)
}

func TestHighlightError(t *testing.T) {
	d := parseOrderLayout(t)
	d.Highlight("Processing", "")
	d.Highlight("Failed", "timeout")

	assert.Equal(t, FillError, d.Node("Failed").Fill)
	// The previously active node is reset.
	assert.Equal(t, FillNeutral, d.Node("Processing").Fill)
}

func TestHighlightNoMatchResets(t *testing.T) {
	d := parseOrderLayout(t)
	d.Highlight("Processing", "")

	d.Highlight("NotAState", "")
	for _, n := range d.Nodes {
		assert.Equal(t, FillNeutral, n.Fill)
	}

	d.Highlight("Processing", "")
	d.Highlight("", "")
	for _, n := range d.Nodes {
		assert.Equal(t, FillNeutral, n.Fill)
	}
}

func TestHighlightIdempotent(t *testing.T) {
	d := parseOrderLayout(t)

	d.Highlight("Failed", "timeout")
	first := make([]Fill, len(d.Nodes))
	for i, n := range d.Nodes {
		first[i] = n.Fill
	}

	d.Highlight("Failed", "timeout")
	for i, n := range d.Nodes {
		assert.Equal(t, first[i], n.Fill)
	}
}
