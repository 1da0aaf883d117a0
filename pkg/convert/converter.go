// Package convert counts and rewrites paint-style bindings into variable bindings.
//
// Both operations walk the selected subtrees depth-first, pre-order, visiting
// a node's fill binding before its stroke binding and the node before its
// children. Per-binding problems are collected in a Result; only host
// failures (style or variable lookups) abort a run.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gnana997/stylebind/pkg/host"
	"github.com/gnana997/stylebind/pkg/naming"
)

// VariableLookup resolves a variable by name.
type VariableLookup interface {
	Lookup(ctx context.Context, name string) (*host.Variable, bool, error)
}

// Options tunes a conversion run.
type Options struct {
	// DryRun resolves and counts every binding but leaves paints untouched.
	DryRun bool
}

// Converter rebinds matching paint styles to their variables.
type Converter struct {
	styles host.StyleResolver
	vars   VariableLookup
	conv   naming.Convention
	logger *slog.Logger
}

// NewConverter creates a Converter. A nil logger uses slog.Default().
func NewConverter(styles host.StyleResolver, vars VariableLookup, conv naming.Convention, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{styles: styles, vars: vars, conv: conv, logger: logger}
}

// Count counts matching bindings under nodes with the converter's resolver and convention.
func (c *Converter) Count(ctx context.Context, nodes []host.Node) (int, error) {
	return Count(ctx, c.styles, c.conv, nodes)
}

// Convert visits every node under nodes and rebinds each matching fill or
// stroke. Already-converted nodes are not detected: as long as the style id
// still points at a matching style, the binding is processed again.
func (c *Converter) Convert(ctx context.Context, nodes []host.Node, opts Options) (*Result, error) {
	start := time.Now()
	res := NewResult()

	err := walk(nodes, func(n host.Node) error {
		for _, b := range bindingsOf(n) {
			if err := c.convertBinding(ctx, b, res, opts); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("conversion complete",
		"converted", res.Converted,
		"failed", res.Failed,
		"dryRun", opts.DryRun,
		"ms", time.Since(start).Milliseconds())

	return res, nil
}

func (c *Converter) convertBinding(ctx context.Context, b binding, res *Result, opts Options) error {
	style, ok, err := matchingStyle(ctx, c.styles, c.conv, b.styleID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	varName := c.conv.VariableName(style.Name)
	v, found, err := c.vars.Lookup(ctx, varName)
	if err != nil {
		return err
	}
	if !found {
		c.logger.Debug("variable not found", "node", b.node.ID(), "style", style.Name, "variable", varName)
		res.fail("Variable not found: " + varName)
		return nil
	}

	if err := rebind(b, v, opts.DryRun); err != nil {
		c.logger.Warn("rebind failed",
			"node", b.node.ID(),
			"channel", b.channel,
			"style", style.Name,
			"error", err)
		res.fail(fmt.Sprintf("Failed to convert %s: %s", b.channel, style.Name))
		return nil
	}

	res.convert(Binding{
		NodeID:   b.node.ID(),
		NodeName: b.node.Name(),
		Channel:  b.channel,
		Style:    style.Name,
		Variable: v.Name,
	})
	return nil
}

// rebind binds the color of the first paint on b's channel to v.
// The paint list is copied, edited and written back; extra layers are untouched.
func rebind(b binding, v *host.Variable, dryRun bool) error {
	paints := host.ClonePaints(paintsOf(b.node, b.channel))
	if len(paints) > 0 {
		bound, err := host.BindPaintVariable(paints[0], "color", v)
		if err != nil {
			return err
		}
		paints[0] = bound
	}
	if dryRun {
		return nil
	}
	return setPaints(b.node, b.channel, paints)
}
