// Package encode implements pass two: packing each expanded instruction
// into its 32-bit RV32I word. Grounded on the teacher's per-instruction
// encode switches, generalized to RV32I's eight format packers.
package encode

import (
	"github.com/sebas1705sanchez/riscv32i/ast"
	"github.com/sebas1705sanchez/riscv32i/diag"
	"github.com/sebas1705sanchez/riscv32i/isa"
	"github.com/sebas1705sanchez/riscv32i/layout"
	"github.com/sebas1705sanchez/riscv32i/symtab"
)

// Word is one encoded instruction, tagged with its address and source
// position for --dump-json and diagnostic formatting.
type Word struct {
	PC       uint32
	Bits     uint32
	Mnemonic string
	Line     int
	Col      int
}

// auipcKey identifies a pending PC-relative pair: the destination register
// and the symbol whose high half was just computed into it.
type auipcKey struct {
	rd  int
	sym string
}

type auipcEntry struct {
	pc   uint32
	hi20 int64
}

// Run walks the expanded node list, encoding every .text instruction.
// Directives other than section changes and all labels are ignored; the
// PC counter starts at lay.TextBase and advances by 4 per emitted word.
func Run(nodes []*ast.Node, lay layout.Result) ([]Word, diag.List) {
	var words []Word
	var diags diag.List

	section := ""
	pc := lay.TextBase
	lastAuipc := make(map[auipcKey]auipcEntry)

	for _, n := range nodes {
		switch n.Type {
		case ast.NodeDirective:
			if n.Name == ".text" || n.Name == ".data" {
				section = n.Name
			}
		case ast.NodeLabel:
			// already placed by the layout pass
		case ast.NodeInstruction:
			eff := section
			if eff == "" {
				eff = ".text"
			}
			if eff != ".text" {
				continue
			}
			word, ok, d := encodeOne(n, pc, lay.Symtab, lastAuipc)
			diags = append(diags, d...)
			if ok {
				words = append(words, Word{PC: pc, Bits: word, Mnemonic: n.Mnemonic, Line: n.Line, Col: n.Col})
				pc += 4
			}
		}
	}
	return words, diags
}

func encodeOne(n *ast.Node, pc uint32, syms *symtab.Table, lastAuipc map[auipcKey]auipcEntry) (uint32, bool, diag.List) {
	spec, ok := isa.Lookup(n.Mnemonic)
	if !ok {
		return 0, false, diag.List{diag.Errorf(n.Line, n.Col, "unknown mnemonic %q (did you forget to expand a pseudo?)", n.Mnemonic)}
	}

	switch spec.Format {
	case isa.FormatR:
		return encodeR(n, spec)
	case isa.FormatI:
		return encodeI(n, spec, pc, syms, lastAuipc)
	case isa.FormatS:
		return encodeS(n, spec, pc, syms, lastAuipc)
	case isa.FormatB:
		return encodeB(n, spec, pc, syms)
	case isa.FormatU:
		return encodeU(n, spec, pc, syms, lastAuipc)
	case isa.FormatJ:
		return encodeJ(n, spec, pc, syms)
	case isa.FormatSystem:
		return encodeSystem(n, spec)
	case isa.FormatFence:
		return encodeFence(n, spec)
	default:
		return 0, false, diag.List{diag.Errorf(n.Line, n.Col, "internal: unhandled format for %q", n.Mnemonic)}
	}
}

func errAt(n *ast.Node, format string, args ...any) diag.List {
	return diag.List{diag.Errorf(n.Line, n.Col, format, args...)}
}

func wantOperands(n *ast.Node, want int) diag.List {
	if len(n.Operands) != want {
		return errAt(n, "%s expects %d operand(s), got %d", n.Mnemonic, want, len(n.Operands))
	}
	return nil
}

func wantRegister(n *ast.Node, op ast.Operand, which string) (int, diag.List) {
	if op.Kind != ast.OperandRegister {
		return 0, errAt(n, "%s: %s must be a register", n.Mnemonic, which)
	}
	return op.RegNum, nil
}

// ---- R-type: funct7 | rs2 | rs1 | funct3 | rd | opcode ----

func encodeR(n *ast.Node, spec isa.Spec) (uint32, bool, diag.List) {
	if d := wantOperands(n, 3); d != nil {
		return 0, false, d
	}
	rd, d := wantRegister(n, n.Operands[0], "rd")
	if d != nil {
		return 0, false, d
	}
	rs1, d := wantRegister(n, n.Operands[1], "rs1")
	if d != nil {
		return 0, false, d
	}
	rs2, d := wantRegister(n, n.Operands[2], "rs2")
	if d != nil {
		return 0, false, d
	}
	word := spec.Funct7<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | spec.Funct3<<12 | uint32(rd)<<7 | spec.Opcode
	return word, true, nil
}

// ---- I-type: imm12 | rs1 | funct3 | rd | opcode ----
// Covers ALU-immediate, shift, load, and jalr mnemonics, each with a
// slightly different operand shape.

func encodeI(n *ast.Node, spec isa.Spec, pc uint32, syms *symtab.Table, lastAuipc map[auipcKey]auipcEntry) (uint32, bool, diag.List) {
	switch {
	case isa.Loads[n.Mnemonic]:
		return encodeILoad(n, spec, pc, syms, lastAuipc)
	case isa.Shifts[n.Mnemonic]:
		return encodeIShift(n, spec)
	case n.Mnemonic == "jalr":
		return encodeIJalr(n, spec, pc, syms, lastAuipc)
	default:
		return encodeIAlu(n, spec, pc, syms, lastAuipc)
	}
}

func encodeIAlu(n *ast.Node, spec isa.Spec, pc uint32, syms *symtab.Table, lastAuipc map[auipcKey]auipcEntry) (uint32, bool, diag.List) {
	if d := wantOperands(n, 3); d != nil {
		return 0, false, d
	}
	rd, d := wantRegister(n, n.Operands[0], "rd")
	if d != nil {
		return 0, false, d
	}
	rs1, d := wantRegister(n, n.Operands[1], "rs1")
	if d != nil {
		return 0, false, d
	}
	imm, d := resolveI12(n, n.Operands[2], pc, rd, syms, lastAuipc)
	if d.HasErrors() {
		return 0, false, d
	}
	word := (uint32(imm)&0xFFF)<<20 | uint32(rs1)<<15 | spec.Funct3<<12 | uint32(rd)<<7 | spec.Opcode
	return word, true, d
}

func encodeIShift(n *ast.Node, spec isa.Spec) (uint32, bool, diag.List) {
	if d := wantOperands(n, 3); d != nil {
		return 0, false, d
	}
	rd, d := wantRegister(n, n.Operands[0], "rd")
	if d != nil {
		return 0, false, d
	}
	rs1, d := wantRegister(n, n.Operands[1], "rs1")
	if d != nil {
		return 0, false, d
	}
	shOp := n.Operands[2]
	if !shOp.IsImmediate() {
		return 0, false, errAt(n, "%s: shift amount must be a numeric immediate", n.Mnemonic)
	}
	if !isa.IsUnsignedNBit(shOp.Value, 5) {
		return 0, false, errAt(n, "%s: shift amount %d does not fit 5 unsigned bits", n.Mnemonic, shOp.Value)
	}
	imm12 := spec.Funct7<<5 | uint32(shOp.Value)
	word := (imm12&0xFFF)<<20 | uint32(rs1)<<15 | spec.Funct3<<12 | uint32(rd)<<7 | spec.Opcode
	return word, true, nil
}

func encodeILoad(n *ast.Node, spec isa.Spec, pc uint32, syms *symtab.Table, lastAuipc map[auipcKey]auipcEntry) (uint32, bool, diag.List) {
	if d := wantOperands(n, 2); d != nil {
		return 0, false, d
	}
	rd, d := wantRegister(n, n.Operands[0], "rd")
	if d != nil {
		return 0, false, d
	}
	mem := n.Operands[1]
	if mem.Kind != ast.OperandMemory {
		return 0, false, errAt(n, "%s: second operand must be off(reg)", n.Mnemonic)
	}
	imm, d := resolveMemOffset(n, mem, pc, rd, syms, lastAuipc)
	if d != nil {
		return 0, false, d
	}
	word := (uint32(imm)&0xFFF)<<20 | uint32(mem.MemRegNum)<<15 | spec.Funct3<<12 | uint32(rd)<<7 | spec.Opcode
	return word, true, nil
}

// jalr accepts "rd, rs1, imm" and "rd, imm(rs1)".
func encodeIJalr(n *ast.Node, spec isa.Spec, pc uint32, syms *symtab.Table, lastAuipc map[auipcKey]auipcEntry) (uint32, bool, diag.List) {
	if len(n.Operands) == 2 && n.Operands[1].Kind == ast.OperandMemory {
		return encodeILoad(n, spec, pc, syms, lastAuipc)
	}
	return encodeIAlu(n, spec, pc, syms, lastAuipc)
}

// resolveI12 resolves operand op (immediate or symbol) to a signed 12-bit
// value for an I-type instruction whose destination register is rd.
func resolveI12(n *ast.Node, op ast.Operand, pc uint32, rd int, syms *symtab.Table, lastAuipc map[auipcKey]auipcEntry) (int64, diag.List) {
	switch op.Kind {
	case ast.OperandImmediate:
		if !isa.IsSignedNBit(op.Value, 12) {
			return 0, errAt(n, "%s: immediate %d does not fit signed 12 bits", n.Mnemonic, op.Value)
		}
		return op.Value, nil

	case ast.OperandSymbol:
		switch op.Reloc {
		case ast.RelocPCRelLo:
			lo, ok, warn := resolvePcrelLo(op.Name, rd, pc, syms, lastAuipc)
			if warn != nil {
				return lo, diag.List{*warn}
			}
			if !ok {
				return 0, errAt(n, "undefined symbol %q", op.Name)
			}
			if !isa.IsSignedNBit(lo, 12) {
				return 0, errAt(n, "%s: %%pcrel_lo(%s) = %d does not fit signed 12 bits", n.Mnemonic, op.Name, lo)
			}
			return lo, nil
		case ast.RelocPCRelHi:
			return 0, errAt(n, "%s: %%pcrel_hi is only valid on auipc", n.Mnemonic)
		default:
			v, ok := syms.Lookup(op.Name)
			if !ok {
				return 0, errAt(n, "undefined symbol %q", op.Name)
			}
			if !isa.IsSignedNBit(v, 12) {
				return 0, errAt(n, "%s: symbol %q = %d does not fit signed 12 bits", n.Mnemonic, op.Name, v)
			}
			return v, nil
		}

	default:
		return 0, errAt(n, "%s: operand must be an immediate or a symbol", n.Mnemonic)
	}
}

// resolveMemOffset resolves a Memory operand's offset the same way as an
// I-type immediate; a symbolic (bare-name) offset left over from the parser
// is reported as an invalid-offset error, since the pseudo-expander should
// already have rewritten any bare-symbol memory access via `la`.
func resolveMemOffset(n *ast.Node, mem ast.Operand, pc uint32, rd int, syms *symtab.Table, lastAuipc map[auipcKey]auipcEntry) (int64, diag.List) {
	off := mem.MemOffset
	if off == nil {
		return 0, errAt(n, "%s: malformed memory operand", n.Mnemonic)
	}
	if off.Origin == ast.ImmSymbolic && off.Kind == ast.OperandImmediate {
		return 0, errAt(n, "%s: invalid offset %q — bare symbol offsets are not resolvable in a memory operand", n.Mnemonic, off.Raw)
	}
	return resolveI12(n, *off, pc, rd, syms, lastAuipc)
}

func resolvePcrelLo(sym string, rd int, pc uint32, syms *symtab.Table, lastAuipc map[auipcKey]auipcEntry) (int64, bool, *diag.Diagnostic) {
	if entry, ok := lastAuipc[auipcKey{rd: rd, sym: sym}]; ok {
		val, ok := syms.Lookup(sym)
		if !ok {
			return 0, false, nil
		}
		lo := (val - int64(entry.pc)) - (entry.hi20 << 12)
		return lo, true, nil
	}
	// No matching auipc: warn and fall back to resolving relative to the
	// current PC, per spec's best-effort fallback.
	val, ok := syms.Lookup(sym)
	if !ok {
		return 0, false, nil
	}
	w := diag.WithHint(diag.Warningf(0, 0, "%%pcrel_lo(%s) has no matching preceding auipc into x%d; falling back to pc-relative", sym, rd), "check operand order")
	return val - int64(pc), true, &w
}

// ---- S-type: imm[11:5] | rs2 | rs1 | funct3 | imm[4:0] | opcode ----

func encodeS(n *ast.Node, spec isa.Spec, pc uint32, syms *symtab.Table, lastAuipc map[auipcKey]auipcEntry) (uint32, bool, diag.List) {
	if d := wantOperands(n, 2); d != nil {
		return 0, false, d
	}
	rs2, d := wantRegister(n, n.Operands[0], "rs2")
	if d != nil {
		return 0, false, d
	}
	mem := n.Operands[1]
	if mem.Kind != ast.OperandMemory {
		return 0, false, errAt(n, "%s: second operand must be off(reg)", n.Mnemonic)
	}
	imm, d := resolveMemOffset(n, mem, pc, mem.MemRegNum, syms, lastAuipc)
	if d != nil {
		return 0, false, d
	}
	u := uint32(imm) & 0xFFF
	hi := (u >> 5) & 0x7F
	lo := u & 0x1F
	word := hi<<25 | uint32(rs2)<<20 | uint32(mem.MemRegNum)<<15 | spec.Funct3<<12 | lo<<7 | spec.Opcode
	return word, true, nil
}

// ---- B-type ----

func encodeB(n *ast.Node, spec isa.Spec, pc uint32, syms *symtab.Table) (uint32, bool, diag.List) {
	if d := wantOperands(n, 3); d != nil {
		return 0, false, d
	}
	rs1, d := wantRegister(n, n.Operands[0], "rs1")
	if d != nil {
		return 0, false, d
	}
	rs2, d := wantRegister(n, n.Operands[1], "rs2")
	if d != nil {
		return 0, false, d
	}
	off, d := resolveBranchTarget(n, n.Operands[2], pc, syms)
	if d != nil {
		return 0, false, d
	}
	if off%2 != 0 {
		return 0, false, errAt(n, "%s: branch offset %d is not even", n.Mnemonic, off)
	}
	s := off / 2
	if !isa.IsSignedNBit(s, 12) {
		return 0, false, errAt(n, "%s: branch offset %d out of range", n.Mnemonic, off)
	}
	u := uint32(off)
	bit12 := (u >> 12) & 1
	bits10_5 := (u >> 5) & 0x3F
	bits4_1 := (u >> 1) & 0xF
	bit11 := (u >> 11) & 1
	word := bit12<<31 | bits10_5<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | spec.Funct3<<12 | bits4_1<<8 | bit11<<7 | spec.Opcode
	return word, true, nil
}

// resolveBranchTarget and resolveJumpTarget share the same symbol-or-literal
// rule: a bare Symbol resolves to (address - pc); a numeric Immediate is
// used verbatim as the byte offset.
func resolveBranchTarget(n *ast.Node, op ast.Operand, pc uint32, syms *symtab.Table) (int64, diag.List) {
	switch op.Kind {
	case ast.OperandImmediate:
		return op.Value, nil
	case ast.OperandSymbol:
		v, ok := syms.Lookup(op.Name)
		if !ok {
			return 0, errAt(n, "undefined symbol %q", op.Name)
		}
		return v - int64(pc), nil
	default:
		return 0, errAt(n, "%s: target must be an immediate or a symbol", n.Mnemonic)
	}
}

// ---- U-type ----

func encodeU(n *ast.Node, spec isa.Spec, pc uint32, syms *symtab.Table, lastAuipc map[auipcKey]auipcEntry) (uint32, bool, diag.List) {
	if d := wantOperands(n, 2); d != nil {
		return 0, false, d
	}
	rd, d := wantRegister(n, n.Operands[0], "rd")
	if d != nil {
		return 0, false, d
	}
	op := n.Operands[1]

	var imm int64
	switch op.Kind {
	case ast.OperandImmediate:
		imm = op.Value
	case ast.OperandSymbol:
		if n.Mnemonic != "auipc" {
			return 0, false, errAt(n, "%s: symbol operands are only valid on auipc", n.Mnemonic)
		}
		if op.Reloc != ast.RelocPCRelHi {
			return 0, false, errAt(n, "auipc: symbol operand must carry @pcrel_hi")
		}
		v, ok := syms.Lookup(op.Name)
		if !ok {
			return 0, false, errAt(n, "undefined symbol %q", op.Name)
		}
		rel := v - int64(pc)
		hi20 := (rel + 0x800) >> 12
		if lastAuipc != nil {
			lastAuipc[auipcKey{rd: rd, sym: op.Name}] = auipcEntry{pc: pc, hi20: hi20}
		}
		imm = hi20
	default:
		return 0, false, errAt(n, "%s: operand must be an immediate or a symbol", n.Mnemonic)
	}

	if !isa.IsSignedNBit(imm, 20) {
		return 0, false, errAt(n, "%s: immediate %d does not fit signed 20 bits", n.Mnemonic, imm)
	}
	word := (uint32(imm)&0xFFFFF)<<12 | uint32(rd)<<7 | spec.Opcode
	return word, true, nil
}

// ---- J-type ----

func encodeJ(n *ast.Node, spec isa.Spec, pc uint32, syms *symtab.Table) (uint32, bool, diag.List) {
	if d := wantOperands(n, 2); d != nil {
		return 0, false, d
	}
	rd, d := wantRegister(n, n.Operands[0], "rd")
	if d != nil {
		return 0, false, d
	}
	off, d := resolveBranchTarget(n, n.Operands[1], pc, syms)
	if d != nil {
		return 0, false, d
	}
	if off%2 != 0 {
		return 0, false, errAt(n, "%s: jump offset %d is not even", n.Mnemonic, off)
	}
	s := off / 2
	if !isa.IsSignedNBit(s, 20) {
		return 0, false, errAt(n, "%s: jump offset %d out of range", n.Mnemonic, off)
	}
	u := uint32(off)
	bit20 := (u >> 20) & 1
	bits10_1 := (u >> 1) & 0x3FF
	bit11 := (u >> 11) & 1
	bits19_12 := (u >> 12) & 0xFF
	word := bit20<<31 | bits10_1<<21 | bit11<<20 | bits19_12<<12 | uint32(rd)<<7 | spec.Opcode
	return word, true, nil
}

// ---- SYSTEM ----

func encodeSystem(n *ast.Node, spec isa.Spec) (uint32, bool, diag.List) {
	if d := wantOperands(n, 0); d != nil {
		return 0, false, d
	}
	var imm uint32
	if n.Mnemonic == "ebreak" {
		imm = 1
	}
	word := imm<<20 | spec.Funct3<<12 | spec.Opcode
	return word, true, nil
}

// ---- FENCE ----

func encodeFence(n *ast.Node, spec isa.Spec) (uint32, bool, diag.List) {
	if n.Mnemonic == "fence.i" {
		if d := wantOperands(n, 0); d != nil {
			return 0, false, d
		}
		return spec.Funct3<<12 | spec.Opcode, true, nil
	}

	// fence: default pred=succ=iorw (0xF each) when no operands are given;
	// two iorw-letter-combination operands pack pred/succ explicitly; a
	// single numeric immediate is used verbatim as the packed field.
	var imm uint32 = 0xFF
	switch len(n.Operands) {
	case 0:
		// default
	case 1:
		if !n.Operands[0].IsImmediate() {
			return 0, false, errAt(n, "fence: a single operand must be a numeric immediate")
		}
		imm = uint32(n.Operands[0].Value) & 0xFFF
	case 2:
		pred, d := fenceBits(n, n.Operands[0])
		if d != nil {
			return 0, false, d
		}
		succ, d := fenceBits(n, n.Operands[1])
		if d != nil {
			return 0, false, d
		}
		imm = pred<<4 | succ
	default:
		return 0, false, errAt(n, "fence expects 0, 1, or 2 operands")
	}
	word := (imm&0xFFF)<<20 | spec.Funct3<<12 | spec.Opcode
	return word, true, nil
}

func fenceBits(n *ast.Node, op ast.Operand) (uint32, diag.List) {
	if op.Kind != ast.OperandSymbol {
		return 0, errAt(n, "fence: pred/succ must be an iorw letter combination")
	}
	var bits uint32
	for _, c := range op.Name {
		switch c {
		case 'i':
			bits |= 0x8
		case 'o':
			bits |= 0x4
		case 'r':
			bits |= 0x2
		case 'w':
			bits |= 0x1
		default:
			return 0, errAt(n, "fence: invalid pred/succ letter %q", string(c))
		}
	}
	return bits, nil
}
