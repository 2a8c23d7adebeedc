package emit

import (
	"strconv"
	"strings"
)

// Chunk is one element of an aggregate initializer: a primitive value,
// a symbolic reference to another definition, or a nested aggregate.
type Chunk interface {
	render(b *strings.Builder)
}

// Int is a signed integer primitive.
type Int int64

func (v Int) render(b *strings.Builder) {
	b.WriteString(strconv.FormatInt(int64(v), 10))
}

// Uint is an unsigned integer primitive.
type Uint uint64

func (v Uint) render(b *strings.Builder) {
	b.WriteString(strconv.FormatUint(uint64(v), 10))
}

// Symbol is a reference to another emitted definition by name,
// optionally through a cast.
type Symbol string

func (v Symbol) render(b *strings.Builder) {
	b.WriteString(string(v))
}

// Struct is a nested aggregate. Elements render in insertion order.
type Struct struct {
	elems []Chunk
}

// NewStruct returns an empty aggregate.
func NewStruct() *Struct {
	return &Struct{}
}

// Add appends a nested chunk and returns the aggregate for chaining.
func (s *Struct) Add(c Chunk) *Struct {
	s.elems = append(s.elems, c)
	return s
}

// AddInt appends a signed integer element.
func (s *Struct) AddInt(v int64) *Struct {
	return s.Add(Int(v))
}

// AddUint appends an unsigned integer element.
func (s *Struct) AddUint(v uint64) *Struct {
	return s.Add(Uint(v))
}

// AddSymbol appends a symbolic reference element.
func (s *Struct) AddSymbol(name string) *Struct {
	return s.Add(Symbol(name))
}

// Len returns the number of elements.
func (s *Struct) Len() int {
	return len(s.elems)
}

func (s *Struct) render(b *strings.Builder) {
	b.WriteByte('{')
	for i, e := range s.elems {
		if i > 0 {
			b.WriteString(", ")
		}
		e.render(b)
	}
	b.WriteByte('}')
}
