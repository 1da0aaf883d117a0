package convert

import (
	"context"

	"github.com/gnana997/stylebind/pkg/host"
	"github.com/gnana997/stylebind/pkg/naming"
)

// Count returns how many fill and stroke bindings under nodes point at a
// matching paint style. A node with a matching fill and a matching stroke
// counts twice. Nothing is modified.
func Count(ctx context.Context, styles host.StyleResolver, conv naming.Convention, nodes []host.Node) (int, error) {
	count := 0
	err := walk(nodes, func(n host.Node) error {
		for _, b := range bindingsOf(n) {
			_, ok, err := matchingStyle(ctx, styles, conv, b.styleID)
			if err != nil {
				return err
			}
			if ok {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
