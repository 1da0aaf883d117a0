package document

import "github.com/gnana997/stylebind/pkg/host"

// node adapts a NodeData without paint capability.
type node struct {
	d *NodeData
	s *Session
}

func (n *node) ID() string   { return n.d.ID }
func (n *node) Name() string { return n.d.Name }
func (n *node) Type() string { return n.d.Type }

func (n *node) Children() []host.Node {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()
	return n.s.wrapAll(n.d.Children)
}

// paintNode adds fills and strokes on top of node.
type paintNode struct {
	node
}

func (n *paintNode) FillStyleID() string {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()
	return n.d.FillStyleID
}

func (n *paintNode) StrokeStyleID() string {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()
	return n.d.StrokeStyleID
}

func (n *paintNode) Fills() []host.Paint {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()
	return host.ClonePaints(n.d.Fills)
}

func (n *paintNode) Strokes() []host.Paint {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()
	return host.ClonePaints(n.d.Strokes)
}

func (n *paintNode) SetFills(paints []host.Paint) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.d.Fills = host.ClonePaints(paints)
	n.s.dirty = true
	return nil
}

func (n *paintNode) SetStrokes(paints []host.Paint) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.d.Strokes = host.ClonePaints(paints)
	n.s.dirty = true
	return nil
}

// wrap returns the host view of d. Callers hold s.mu.
func (s *Session) wrap(d *NodeData) host.Node {
	base := node{d: d, s: s}
	if HasPaints(d.Type) {
		return &paintNode{node: base}
	}
	return &base
}

func (s *Session) wrapAll(ds []*NodeData) []host.Node {
	out := make([]host.Node, 0, len(ds))
	for _, d := range ds {
		if d != nil {
			out = append(out, s.wrap(d))
		}
	}
	return out
}
