// Package symtab holds the symbol table shared between the layout and
// encode passes: label addresses and .equ constants, keyed by name.
package symtab

import "strings"

// Table maps a symbol name to its resolved value: an absolute address for a
// label, or a literal constant for a .equ. It is written only by the layout
// pass; the encoder and the output dumps read it.
type Table struct {
	values map[string]int64
}

// New returns an empty symbol table.
func New() *Table {
	return &Table{values: make(map[string]int64)}
}

// Define records name -> value. It reports false if name is already defined
// (the caller should raise a redefinition diagnostic in that case).
func (t *Table) Define(name string, value int64) bool {
	if _, exists := t.values[name]; exists {
		return false
	}
	t.values[name] = value
	return true
}

// Lookup returns the value for name and whether it was found.
func (t *Table) Lookup(name string) (int64, bool) {
	v, ok := t.values[name]
	return v, ok
}

// HasReservedSuffix reports whether name ends in a reserved relocation
// suffix (@pcrel_hi/@pcrel_lo); defining such a name is a warning, not an
// error, so callers decide what to do with this.
func HasReservedSuffix(name string) bool {
	return strings.HasSuffix(name, "@pcrel_hi") || strings.HasSuffix(name, "@pcrel_lo")
}

// Names returns the defined symbol names in unspecified order; useful for
// diagnostic dumps (e.g. the CLI's --dump-symtab).
func (t *Table) Names() []string {
	out := make([]string, 0, len(t.values))
	for name := range t.values {
		out = append(out, name)
	}
	return out
}

// Len reports the number of defined symbols.
func (t *Table) Len() int {
	return len(t.values)
}
