package emit

import (
	"fmt"
	"io"
	"strings"
)

// Macro is one generated integer constant.
type Macro struct {
	Name  string
	Value string
}

// Definition is one named data record: a typed C variable with an
// aggregate initializer. Array definitions render one top-level element
// per line so large frame tables stay diffable.
type Definition struct {
	Type    string // e.g. "struct BPAnimationClip" or "unsigned short"
	Name    string
	IsArray bool
	Data    *Struct
}

// File accumulates the records and constants of one conversion run and
// renders them as a C source file plus header.
type File struct {
	Names *NameContext

	includes    []string
	definitions []*Definition
	macros      []Macro
}

// NewFile returns an empty output file with a fresh naming context.
func NewFile() *File {
	return &File{Names: NewNameContext()}
}

// AddInclude records a header the emitted source depends on. Duplicate
// includes are kept once.
func (f *File) AddInclude(path string) {
	for _, inc := range f.includes {
		if inc == path {
			return
		}
	}
	f.includes = append(f.includes, path)
}

// AddDefinition appends a data record. Records render in insertion
// order, so callers control forward references.
func (f *File) AddDefinition(def *Definition) {
	f.definitions = append(f.definitions, def)
}

// AddMacro appends a generated constant.
func (f *File) AddMacro(name, value string) {
	f.macros = append(f.macros, Macro{Name: name, Value: value})
}

// Macros returns the constants added so far.
func (f *File) Macros() []Macro {
	return f.macros
}

// WriteSource renders every definition as C.
func (f *File) WriteSource(w io.Writer) error {
	var b strings.Builder

	for _, inc := range f.includes {
		fmt.Fprintf(&b, "#include %s\n", inc)
	}
	if len(f.includes) > 0 {
		b.WriteByte('\n')
	}

	for _, def := range f.definitions {
		if def.IsArray {
			fmt.Fprintf(&b, "%s %s[] = {\n", def.Type, def.Name)
			for i, elem := range def.Data.elems {
				b.WriteString("    ")
				elem.render(&b)
				if i != len(def.Data.elems)-1 {
					b.WriteByte(',')
				}
				b.WriteByte('\n')
			}
			b.WriteString("};\n\n")
			continue
		}

		fmt.Fprintf(&b, "%s %s = ", def.Type, def.Name)
		def.Data.render(&b)
		b.WriteString(";\n\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteHeader renders the include guard, the generated constants and an
// extern declaration per record.
func (f *File) WriteHeader(w io.Writer, guard string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "#ifndef %s\n#define %s\n\n", guard, guard)

	for _, m := range f.macros {
		fmt.Fprintf(&b, "#define %s %s\n", m.Name, m.Value)
	}
	if len(f.macros) > 0 {
		b.WriteByte('\n')
	}

	for _, def := range f.definitions {
		if def.IsArray {
			fmt.Fprintf(&b, "extern %s %s[];\n", def.Type, def.Name)
		} else {
			fmt.Fprintf(&b, "extern %s %s;\n", def.Type, def.Name)
		}
	}

	fmt.Fprintf(&b, "\n#endif\n")

	_, err := io.WriteString(w, b.String())
	return err
}
