package convert

import (
	"context"
	"fmt"

	"github.com/gnana997/stylebind/pkg/host"
	"github.com/gnana997/stylebind/pkg/naming"
)

// Channel names the paint list a style binding applies to.
type Channel string

const (
	ChannelFill   Channel = "fill"
	ChannelStroke Channel = "stroke"
)

// binding is one style reference on one node.
type binding struct {
	node    host.Node
	channel Channel
	styleID string
}

// walk visits every node under roots depth-first, pre-order, roots in order.
// It uses an explicit stack so arbitrarily deep trees cannot overflow.
func walk(roots []host.Node, visit func(host.Node) error) error {
	stack := make([]host.Node, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}

		if err := visit(n); err != nil {
			return err
		}

		children := n.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return nil
}

// bindingsOf returns the node's style bindings, fill before stroke.
func bindingsOf(n host.Node) []binding {
	var out []binding
	if f, ok := n.(host.FillNode); ok {
		if id := f.FillStyleID(); id != "" {
			out = append(out, binding{node: n, channel: ChannelFill, styleID: id})
		}
	}
	if s, ok := n.(host.StrokeNode); ok {
		if id := s.StrokeStyleID(); id != "" {
			out = append(out, binding{node: n, channel: ChannelStroke, styleID: id})
		}
	}
	return out
}

func paintsOf(n host.Node, ch Channel) []host.Paint {
	switch ch {
	case ChannelFill:
		if f, ok := n.(host.FillNode); ok {
			return f.Fills()
		}
	case ChannelStroke:
		if s, ok := n.(host.StrokeNode); ok {
			return s.Strokes()
		}
	}
	return nil
}

func setPaints(n host.Node, ch Channel, paints []host.Paint) error {
	switch ch {
	case ChannelFill:
		if f, ok := n.(host.FillNode); ok {
			return f.SetFills(paints)
		}
	case ChannelStroke:
		if s, ok := n.(host.StrokeNode); ok {
			return s.SetStrokes(paints)
		}
	}
	return fmt.Errorf("node %s has no %s paints", n.ID(), ch)
}

// matchingStyle resolves styleID and reports whether it is a paint style
// under the convention's style prefix. Host errors propagate.
func matchingStyle(ctx context.Context, styles host.StyleResolver, conv naming.Convention, styleID string) (*host.Style, bool, error) {
	style, err := styles.StyleByID(ctx, styleID)
	if err != nil {
		return nil, false, err
	}
	if style == nil || style.Type != host.StylePaint || !conv.Matches(style.Name) {
		return style, false, nil
	}
	return style, true, nil
}
