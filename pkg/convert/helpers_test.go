package convert

import (
	"context"
	"errors"

	"github.com/gnana997/stylebind/pkg/host"
)

// --- helpers ---

type shape struct {
	id, name      string
	fillStyleID   string
	strokeStyleID string
	fills         []host.Paint
	strokes       []host.Paint
	children      []host.Node

	setErr     error
	fillSets   int
	strokeSets int
}

func (s *shape) ID() string { return s.id }
func (s *shape) Name() string { return s.name }
func (s *shape) Type() string { return "RECTANGLE" }
func (s *shape) Children() []host.Node { return s.children }
func (s *shape) FillStyleID() string { return s.fillStyleID }
func (s *shape) StrokeStyleID() string { return s.strokeStyleID }
func (s *shape) Fills() []host.Paint { return s.fills }
func (s *shape) Strokes() []host.Paint { return s.strokes }
func (s *shape) SetFills(p []host.Paint) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.fillSets++
	s.fills = p
	return nil
}
func (s *shape) SetStrokes(p []host.Paint) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.strokeSets++
	s.strokes = p
	return nil
}

type group struct {
	id       string
	children []host.Node
}

func (g *group) ID() string { return g.id }
func (g *group) Name() string { return g.id }
func (g *group) Type() string { return "GROUP" }
func (g *group) Children() []host.Node { return g.children }

type styleTable map[string]*host.Style

func (t styleTable) StyleByID(ctx context.Context, id string) (*host.Style, error) {
	if id == "S:broken" {
		return nil, errHost
	}
	return t[id], nil
}

type varTable map[string]*host.Variable

func (t varTable) Lookup(ctx context.Context, name string) (*host.Variable, bool, error) {
	v, ok := t[name]
	return v, ok, nil
}

type failingVars struct{}

func (failingVars) Lookup(ctx context.Context, name string) (*host.Variable, bool, error) {
	return nil, false, errHost
}

var errHost = errors.New("host call failed")

func testStyles() styleTable {
	return styleTable{
		"S:primary":   {ID: "S:primary", Name: "M3/sys/light/primary", Type: host.StylePaint},
		"S:container": {ID: "S:container", Name: "M3/sys/light/primary-container", Type: host.StylePaint},
		"S:outline":   {ID: "S:outline", Name: "M3/sys/light/outline", Type: host.StylePaint},
		"S:missing":   {ID: "S:missing", Name: "M3/sys/light/tertiary", Type: host.StylePaint},
		"S:brand":     {ID: "S:brand", Name: "Brand/accent", Type: host.StylePaint},
		"S:text":      {ID: "S:text", Name: "M3/sys/light/body", Type: host.StyleText},
	}
}

func testVars() varTable {
	return varTable{
		"Schemes/Primary":           {ID: "V:1", Name: "Schemes/Primary", ResolvedType: host.VariableColor},
		"Schemes/Primary Container": {ID: "V:2", Name: "Schemes/Primary Container", ResolvedType: host.VariableColor},
		"Schemes/Outline":           {ID: "V:3", Name: "Schemes/Outline", ResolvedType: host.VariableColor},
	}
}

func solid() []host.Paint {
	return []host.Paint{{Type: host.PaintSolid, Color: &host.RGBA{R: 0.2, G: 0.4, B: 0.6, A: 1}}}
}

// recorder logs the order in which nodes are visited by a resolver.
type recorder struct {
	styleTable
	order []string
}

func (r *recorder) StyleByID(ctx context.Context, id string) (*host.Style, error) {
	r.order = append(r.order, id)
	return r.styleTable.StyleByID(ctx, id)
}
