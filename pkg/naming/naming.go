// Package naming maps legacy paint style names onto design-token variable names.
//
// A style named "M3/sys/light/primary-container" maps to the variable
// "Schemes/Primary Container": the style prefix is dropped, hyphen-separated
// words get an upper-cased first letter and are joined with spaces, and the
// variable prefix is prepended. No other characters change case.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// StylePrefix marks the styles that take part in the conversion.
	StylePrefix = "M3/sys/light/"

	// VariablePrefix is the namespace of the target color variables.
	VariablePrefix = "Schemes/"
)

// Convention is a style-prefix/variable-prefix pair.
// Changing either prefix breaks every binding made under the old pair.
type Convention struct {
	StylePrefix    string `yaml:"style_prefix" json:"style_prefix"`
	VariablePrefix string `yaml:"variable_prefix" json:"variable_prefix"`
}

// Default is the fixed convention.
var Default = Convention{StylePrefix: StylePrefix, VariablePrefix: VariablePrefix}

// Matches reports whether styleName carries the style prefix.
func (c Convention) Matches(styleName string) bool {
	return strings.HasPrefix(styleName, c.StylePrefix)
}

// OwnsVariable reports whether variableName lives in the variable namespace.
func (c Convention) OwnsVariable(variableName string) bool {
	return strings.HasPrefix(variableName, c.VariablePrefix)
}

// VariableName returns the variable name for styleName, or "" when the
// style does not carry the style prefix.
func (c Convention) VariableName(styleName string) string {
	rest, ok := strings.CutPrefix(styleName, c.StylePrefix)
	if !ok {
		return ""
	}

	words := strings.Split(rest, "-")
	for i, w := range words {
		words[i] = upperFirst(w)
	}
	return c.VariablePrefix + strings.Join(words, " ")
}

// Matches reports whether styleName carries the default style prefix.
func Matches(styleName string) bool { return Default.Matches(styleName) }

// VariableName maps styleName under the default convention.
func VariableName(styleName string) string { return Default.VariableName(styleName) }

func upperFirst(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if size == 0 || r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + w[size:]
}
