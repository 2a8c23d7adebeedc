// Package emit is the sink side of the conversion: named, typed
// aggregate records and generated integer constants, rendered as C
// source and header text. The pipeline only supplies values, ordering
// and symbolic cross-references; this package owns spelling and
// uniqueness of the emitted symbols.
package emit

import (
	"strconv"
	"strings"
)

// NameContext hands out unique C identifiers for one output file. It
// is an explicit object rather than package state so a conversion run
// stays a pure function of its inputs.
type NameContext struct {
	used map[string]int
}

// NewNameContext returns an empty naming context.
func NewNameContext() *NameContext {
	return &NameContext{used: make(map[string]int)}
}

// Unique sanitizes base into a C identifier and suffixes it with a
// counter if the name was already handed out.
func (c *NameContext) Unique(base string) string {
	name := Sanitize(base)
	count := c.used[name]
	c.used[name] = count + 1
	if count == 0 {
		return name
	}
	return name + "_" + strconv.Itoa(count)
}

// MacroName sanitizes base and upper-cases it for use as a #define.
func (c *NameContext) MacroName(base string) string {
	return strings.ToUpper(Sanitize(base))
}

// Sanitize replaces every character that cannot appear in a C
// identifier with an underscore and prefixes a leading digit.
func Sanitize(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
