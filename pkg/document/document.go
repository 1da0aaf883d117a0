// Package document is a file-backed design document that implements host.Host.
//
// A document is a JSON file holding shared styles, local variables, a tree of
// pages and layers, and the current selection:
//
//	{
//	  "name": "App",
//	  "styles":    [{"id": "S:1", "name": "M3/sys/light/primary", "type": "PAINT"}],
//	  "variables": [{"id": "V:1", "name": "Schemes/Primary", "resolvedType": "COLOR"}],
//	  "pages": [{"id": "0:1", "name": "Page 1", "type": "PAGE", "children": [...]}],
//	  "selection": ["1:2"]
//	}
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gnana997/stylebind/pkg/host"
)

// ErrNodeNotFound is returned when a node id is not in the document.
var ErrNodeNotFound = errors.New("node not found")

// Document is the on-disk representation of a design file.
type Document struct {
	Name      string          `json:"name"`
	Styles    []host.Style    `json:"styles"`
	Variables []host.Variable `json:"variables"`
	Pages     []*NodeData     `json:"pages"`
	Selection []string        `json:"selection,omitempty"`

	Extra host.Extra `json:"-"`
}

type documentFields Document

// UnmarshalJSON decodes a document and keeps unmodeled members in Extra.
func (d *Document) UnmarshalJSON(data []byte) error {
	var f documentFields
	extra, err := host.DecodeObject(data, &f)
	if err != nil {
		return err
	}
	*d = Document(f)
	d.Extra = extra
	return nil
}

// MarshalJSON encodes a document including its Extra members.
func (d Document) MarshalJSON() ([]byte, error) {
	return host.EncodeObject(documentFields(d), d.Extra)
}

// NodeData is one layer in the document tree.
type NodeData struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Type          string       `json:"type"`
	FillStyleID   string       `json:"fillStyleId,omitempty"`
	StrokeStyleID string       `json:"strokeStyleId,omitempty"`
	Fills         []host.Paint `json:"fills,omitempty"`
	Strokes       []host.Paint `json:"strokes,omitempty"`
	Children      []*NodeData  `json:"children,omitempty"`

	// Extra keeps every layer property stylebind does not touch
	// (geometry, effects, text, constraints).
	Extra host.Extra `json:"-"`
}

type nodeFields NodeData

func (n *NodeData) UnmarshalJSON(data []byte) error {
	var f nodeFields
	extra, err := host.DecodeObject(data, &f)
	if err != nil {
		return err
	}
	*n = NodeData(f)
	n.Extra = extra
	return nil
}

func (n NodeData) MarshalJSON() ([]byte, error) {
	return host.EncodeObject(nodeFields(n), n.Extra)
}

// noPaints lists node types without fills or strokes.
var noPaints = map[string]bool{
	"DOCUMENT": true,
	"PAGE":     true,
	"GROUP":    true,
	"SLICE":    true,
}

// HasPaints reports whether nodes of this type carry fills and strokes.
// Unknown types are assumed to.
func HasPaints(nodeType string) bool {
	return !noPaints[nodeType]
}

// Load reads and validates a document file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document JSON: %w", err)
	}
	if errs := doc.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("document validation failed: %w", errors.Join(errs...))
	}
	return &doc, nil
}

// Validate checks ids for presence and uniqueness and that the selection
// references existing nodes. Returns an empty slice when valid.
func (d *Document) Validate() []error {
	var errs []error

	styleIDs := make(map[string]bool, len(d.Styles))
	for i, s := range d.Styles {
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("styles[%d]: id is required", i))
			continue
		}
		if styleIDs[s.ID] {
			errs = append(errs, fmt.Errorf("styles[%d]: duplicate style id %q", i, s.ID))
		}
		styleIDs[s.ID] = true
	}

	varNames := make(map[string]bool, len(d.Variables))
	for i, v := range d.Variables {
		if v.ID == "" || v.Name == "" {
			errs = append(errs, fmt.Errorf("variables[%d]: id and name are required", i))
			continue
		}
		if varNames[v.Name] {
			errs = append(errs, fmt.Errorf("variables[%d]: duplicate variable name %q", i, v.Name))
		}
		varNames[v.Name] = true
	}

	nodeIDs := make(map[string]bool)
	var check func(n *NodeData, where string)
	check = func(n *NodeData, where string) {
		if n == nil {
			errs = append(errs, fmt.Errorf("%s: null node", where))
			return
		}
		if n.ID == "" {
			errs = append(errs, fmt.Errorf("%s: id is required", where))
		} else if nodeIDs[n.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate node id %q", where, n.ID))
		}
		nodeIDs[n.ID] = true
		for i, c := range n.Children {
			check(c, fmt.Sprintf("%s.children[%d]", where, i))
		}
	}
	for i, p := range d.Pages {
		check(p, fmt.Sprintf("pages[%d]", i))
	}

	for _, id := range d.Selection {
		if !nodeIDs[id] {
			errs = append(errs, fmt.Errorf("selection: %w: %q", ErrNodeNotFound, id))
		}
	}

	return errs
}

// Save writes d to path as indented JSON. The file is replaced atomically.
// Members the document model does not know are written back as they were read.
func Save(d *Document, path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ".stylebind-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}
