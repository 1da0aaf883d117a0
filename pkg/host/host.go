package host

import (
	"context"
	"time"
)

// Node is a scene graph node. Paint capabilities are exposed through
// FillNode and StrokeNode; callers check for them with a type assertion.
type Node interface {
	ID() string
	Name() string
	Type() string
	Children() []Node
}

// FillNode is a node that carries fills and an optional fill style.
type FillNode interface {
	Node
	// FillStyleID returns "" when no style is bound.
	FillStyleID() string
	Fills() []Paint
	SetFills(paints []Paint) error
}

// StrokeNode is a node that carries strokes and an optional stroke style.
type StrokeNode interface {
	Node
	// StrokeStyleID returns "" when no style is bound.
	StrokeStyleID() string
	Strokes() []Paint
	SetStrokes(paints []Paint) error
}

// StyleResolver resolves style handles by id.
// A missing style is reported as (nil, nil).
type StyleResolver interface {
	StyleByID(ctx context.Context, id string) (*Style, error)
}

// VariableSource lists the document's local variables.
type VariableSource interface {
	LocalVariables(ctx context.Context) ([]*Variable, error)
}

// NotifyOptions controls a transient host notification.
type NotifyOptions struct {
	Error   bool
	Timeout time.Duration
}

// Host is the full collaborator surface used by the UI bridge.
type Host interface {
	StyleResolver
	VariableSource

	// Selection returns the currently selected nodes in selection order.
	Selection(ctx context.Context) ([]Node, error)

	// OnSelectionChange registers fn to run after every selection change.
	// The returned func removes the subscription.
	OnSelectionChange(fn func()) (unsubscribe func())

	// Notify shows a transient message to the user.
	Notify(ctx context.Context, message string, opts NotifyOptions)

	// Close ends the plugin session.
	Close(ctx context.Context) error
}
