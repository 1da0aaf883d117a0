package host

import (
	"errors"
	"fmt"
)

// PaintSolid is the only paint type whose color can be bound to a variable.
const PaintSolid = "SOLID"

// ErrUnsupportedPaint is returned when a paint cannot carry a variable binding.
var ErrUnsupportedPaint = errors.New("paint does not support variable binding")

// Paint is one layer of a node's fills or strokes.
type Paint struct {
	Type           string                   `json:"type"`
	Color          *RGBA                    `json:"color,omitempty"`
	Opacity        *float64                 `json:"opacity,omitempty"`
	Visible        *bool                    `json:"visible,omitempty"`
	BoundVariables map[string]VariableAlias `json:"boundVariables,omitempty"`

	// Extra keeps members such as blendMode or gradientStops.
	Extra Extra `json:"-"`
}

type paintFields Paint

// UnmarshalJSON decodes a paint and keeps unmodeled members in Extra.
func (p *Paint) UnmarshalJSON(data []byte) error {
	var f paintFields
	extra, err := DecodeObject(data, &f)
	if err != nil {
		return err
	}
	*p = Paint(f)
	p.Extra = extra
	return nil
}

// MarshalJSON encodes a paint including its Extra members.
func (p Paint) MarshalJSON() ([]byte, error) {
	return EncodeObject(paintFields(p), p.Extra)
}

// Clone returns a deep copy of p.
func (p Paint) Clone() Paint {
	out := Paint{Type: p.Type, Extra: p.Extra.Clone()}
	if p.Color != nil {
		c := *p.Color
		out.Color = &c
	}
	if p.Opacity != nil {
		o := *p.Opacity
		out.Opacity = &o
	}
	if p.Visible != nil {
		v := *p.Visible
		out.Visible = &v
	}
	if p.BoundVariables != nil {
		out.BoundVariables = make(map[string]VariableAlias, len(p.BoundVariables))
		for k, v := range p.BoundVariables {
			out.BoundVariables[k] = v
		}
	}
	return out
}

// ClonePaints deep-copies a paint list. A nil list stays nil.
func ClonePaints(paints []Paint) []Paint {
	if paints == nil {
		return nil
	}
	out := make([]Paint, len(paints))
	for i, p := range paints {
		out[i] = p.Clone()
	}
	return out
}

// BindPaintVariable returns a copy of p whose field is bound to v.
// Only the "color" field of a SOLID paint can be bound, and only to a COLOR variable.
func BindPaintVariable(p Paint, field string, v *Variable) (Paint, error) {
	if v == nil {
		return Paint{}, fmt.Errorf("bind %s: nil variable", field)
	}
	if field != "color" {
		return Paint{}, fmt.Errorf("bind %s: %w", field, ErrUnsupportedPaint)
	}
	if p.Type != PaintSolid {
		return Paint{}, fmt.Errorf("bind %s on %s paint: %w", field, p.Type, ErrUnsupportedPaint)
	}
	if v.ResolvedType != VariableColor {
		return Paint{}, fmt.Errorf("bind %s to %s variable %q: type mismatch", field, v.ResolvedType, v.Name)
	}

	out := p.Clone()
	if out.BoundVariables == nil {
		out.BoundVariables = make(map[string]VariableAlias, 1)
	}
	out.BoundVariables[field] = VariableAlias{Type: VariableAliasType, ID: v.ID}
	return out, nil
}
