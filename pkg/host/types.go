// Package host describes the design-tool surface stylebind consumes: styles,
// variables, scene nodes and their paints, selection, and notifications.
//
// The host owns all of these objects. stylebind only reads styles and
// variables and rewrites the paint lists of nodes it was handed.
package host

// StyleType is the kind of a shared style.
type StyleType string

const (
	StylePaint  StyleType = "PAINT"
	StyleText   StyleType = "TEXT"
	StyleEffect StyleType = "EFFECT"
	StyleGrid   StyleType = "GRID"
)

// Style is a legacy shared style.
type Style struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Type StyleType `json:"type"`

	Extra Extra `json:"-"`
}

type styleFields Style

func (s *Style) UnmarshalJSON(data []byte) error {
	var f styleFields
	extra, err := DecodeObject(data, &f)
	if err != nil {
		return err
	}
	*s = Style(f)
	s.Extra = extra
	return nil
}

func (s Style) MarshalJSON() ([]byte, error) {
	return EncodeObject(styleFields(s), s.Extra)
}

// VariableType is the resolved value type of a variable.
type VariableType string

const (
	VariableColor   VariableType = "COLOR"
	VariableFloat   VariableType = "FLOAT"
	VariableString  VariableType = "STRING"
	VariableBoolean VariableType = "BOOLEAN"
)

// Variable is a design token. Name is unique within a document.
type Variable struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	ResolvedType VariableType `json:"resolvedType"`
	CollectionID string       `json:"collectionId,omitempty"`

	// Extra keeps members such as valuesByMode.
	Extra Extra `json:"-"`
}

type variableFields Variable

func (v *Variable) UnmarshalJSON(data []byte) error {
	var f variableFields
	extra, err := DecodeObject(data, &f)
	if err != nil {
		return err
	}
	*v = Variable(f)
	v.Extra = extra
	return nil
}

func (v Variable) MarshalJSON() ([]byte, error) {
	return EncodeObject(variableFields(v), v.Extra)
}

// VariableAliasType is the only alias kind a paint can carry.
const VariableAliasType = "VARIABLE_ALIAS"

// VariableAlias points a paint field at a variable.
type VariableAlias struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// RGBA is a color with channels in [0, 1].
type RGBA struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}
