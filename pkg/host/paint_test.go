package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(r, g, b float64) Paint {
	return Paint{Type: PaintSolid, Color: &RGBA{R: r, G: g, B: b, A: 1}}
}

func TestPaintClone_Deep(t *testing.T) {
	op := 0.5
	p := solid(1, 0, 0)
	p.Opacity = &op
	p.BoundVariables = map[string]VariableAlias{"color": {Type: VariableAliasType, ID: "V:1"}}

	c := p.Clone()
	c.Color.R = 0
	*c.Opacity = 1
	c.BoundVariables["color"] = VariableAlias{Type: VariableAliasType, ID: "V:2"}

	assert.Equal(t, 1.0, p.Color.R)
	assert.Equal(t, 0.5, *p.Opacity)
	assert.Equal(t, "V:1", p.BoundVariables["color"].ID)
}

func TestClonePaints_NilStaysNil(t *testing.T) {
	assert.Nil(t, ClonePaints(nil))
	assert.Empty(t, ClonePaints([]Paint{}))
	assert.NotNil(t, ClonePaints([]Paint{}))
}

func TestBindPaintVariable(t *testing.T) {
	v := &Variable{ID: "V:1", Name: "Schemes/Primary", ResolvedType: VariableColor}

	bound, err := BindPaintVariable(solid(1, 1, 1), "color", v)
	require.NoError(t, err)
	assert.Equal(t, VariableAlias{Type: VariableAliasType, ID: "V:1"}, bound.BoundVariables["color"])
	assert.Equal(t, 1.0, bound.Color.R, "color value is kept")
}

func TestBindPaintVariable_DoesNotMutateInput(t *testing.T) {
	v := &Variable{ID: "V:1", Name: "Schemes/Primary", ResolvedType: VariableColor}
	p := solid(1, 1, 1)

	_, err := BindPaintVariable(p, "color", v)
	require.NoError(t, err)
	assert.Nil(t, p.BoundVariables)
}

func TestBindPaintVariable_Errors(t *testing.T) {
	color := &Variable{ID: "V:1", Name: "Schemes/Primary", ResolvedType: VariableColor}
	float := &Variable{ID: "V:2", Name: "Schemes/Radius", ResolvedType: VariableFloat}

	tests := []struct {
		name        string
		paint       Paint
		field       string
		v           *Variable
		unsupported bool
	}{
		{name: "gradient paint", paint: Paint{Type: "GRADIENT_LINEAR"}, field: "color", v: color, unsupported: true},
		{name: "image paint", paint: Paint{Type: "IMAGE"}, field: "color", v: color, unsupported: true},
		{name: "other field", paint: solid(0, 0, 0), field: "opacity", v: color, unsupported: true},
		{name: "non-color variable", paint: solid(0, 0, 0), field: "color", v: float},
		{name: "nil variable", paint: solid(0, 0, 0), field: "color", v: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BindPaintVariable(tc.paint, tc.field, tc.v)
			require.Error(t, err)
			if tc.unsupported {
				assert.ErrorIs(t, err, ErrUnsupportedPaint)
			}
		})
	}
}
