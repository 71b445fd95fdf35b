// Package ast holds the node and operand types produced by the parser and
// consumed by every later pipeline stage.
package ast

// NodeType identifies which variant a Node carries.
type NodeType int

const (
	// NodeInstruction is a mnemonic plus its operands.
	NodeInstruction NodeType = iota
	// NodeLabel marks the current location counter of the current section.
	NodeLabel
	// NodeDirective is a dot-prefixed assembler directive.
	NodeDirective
)

// Node is the tagged union produced by the parser. Only the fields relevant
// to Type are meaningful; the zero value of the others is ignored.
type Node struct {
	Type NodeType

	// Label holds the identifier for NodeLabel.
	Label string

	// Mnemonic and Operands are set for NodeInstruction. Mnemonic is
	// already normalized to lower case.
	Mnemonic string
	Operands []Operand

	// Name and Args are set for NodeDirective. Name is normalized to
	// lower case and includes the leading dot.
	Name string
	Args []string

	// Line and Col give the 1-indexed source position of the node.
	Line int
	Col  int
	// Section is the section in effect when the node was parsed, if any.
	Section string
}

// OperandKind identifies which variant an Operand carries.
type OperandKind int

const (
	// OperandRegister is a canonical register reference (x0..x31).
	OperandRegister OperandKind = iota
	// OperandImmediate is a signed integer constant or a resolved placeholder.
	OperandImmediate
	// OperandSymbol is a reference to a label or constant by name.
	OperandSymbol
	// OperandMemory is a base register plus an immediate offset.
	OperandMemory
)

// ImmOrigin distinguishes an immediate that was written literally from one
// that stands in for a value resolved later in the pipeline.
type ImmOrigin int

const (
	// ImmNumeric immediates were written literally in the source.
	ImmNumeric ImmOrigin = iota
	// ImmSymbolic immediates are placeholders pending resolution.
	ImmSymbolic
)

// Reloc names the PC-relative relocation suffix attached to a Symbol operand.
type Reloc int

const (
	// RelocNone means no @pcrel_hi/@pcrel_lo suffix is present.
	RelocNone Reloc = iota
	// RelocPCRelHi marks the high-20 half of a PC-relative pair.
	RelocPCRelHi
	// RelocPCRelLo marks the low-12 half of a PC-relative pair.
	RelocPCRelLo
)

// Operand is the tagged union of operand forms accepted by instructions.
type Operand struct {
	Kind OperandKind

	// Register/RegNum are set for OperandRegister.
	Register string
	RegNum   int

	// Value/Origin are set for OperandImmediate.
	Value  int64
	Origin ImmOrigin

	// Name/Reloc are set for OperandSymbol.
	Name  string
	Reloc Reloc

	// MemBase/MemOffset are set for OperandMemory.
	MemBase   string
	MemRegNum int
	MemOffset *Operand

	// Raw preserves the original source text for diagnostics.
	Raw string
}

// IsImmediate reports whether this operand is a literal numeric immediate.
func (o Operand) IsImmediate() bool {
	return o.Kind == OperandImmediate && o.Origin == ImmNumeric
}

// BaseName returns the symbol name with any @pcrel_hi/@pcrel_lo suffix
// stripped. It is only meaningful for OperandSymbol.
func (o Operand) BaseName() string {
	return o.Name
}
