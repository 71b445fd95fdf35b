// Package pseudo rewrites convenience mnemonics into one or two base
// RV32I instructions. Expand is a pure node-list-to-node-list function so
// that layout and encoding never need to know pseudos exist — the same
// shape as the teacher's sizing/generation passes over Node, applied here
// as a rewrite stage ahead of them.
package pseudo

import "github.com/sebas1705sanchez/riscv32i/ast"

func fixedReg(n int) ast.Operand {
	names := [...]string{"x0", "x1", "x2", "x3", "x4", "x5", "x6"}
	name := names[n]
	return ast.Operand{Kind: ast.OperandRegister, Register: name, RegNum: n}
}

var x0 = fixedReg(0)
var ra = fixedReg(1) // x1
var t0 = fixedReg(5) // x5, store scratch
var t1 = fixedReg(6) // x6, tail scratch

func imm(v int64) ast.Operand {
	return ast.Operand{Kind: ast.OperandImmediate, Value: v, Origin: ast.ImmNumeric}
}

func symSuffixed(s ast.Operand, reloc ast.Reloc) ast.Operand {
	return ast.Operand{Kind: ast.OperandSymbol, Name: s.Name, Reloc: reloc}
}

// rewrite produces a new Instruction node with the same source position and
// section as the original, but a different mnemonic/operands.
func rewrite(n *ast.Node, mnemonic string, operands []ast.Operand) *ast.Node {
	return &ast.Node{
		Type: ast.NodeInstruction, Mnemonic: mnemonic, Operands: operands,
		Line: n.Line, Col: n.Col, Section: n.Section,
	}
}

const fitsI12Lo, fitsI12Hi = -2048, 2047

func fitsI12(v int64) bool { return v >= fitsI12Lo && v <= fitsI12Hi }

// Expand rewrites a Node list, replacing pseudo-instructions with their
// base-ISA expansion. Non-Instruction nodes pass through unchanged.
func Expand(nodes []*ast.Node) []*ast.Node {
	out := make([]*ast.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Type != ast.NodeInstruction {
			out = append(out, n)
			continue
		}
		out = append(out, expandOne(n)...)
	}
	return out
}

func expandOne(n *ast.Node) []*ast.Node {
	m := n.Mnemonic
	ops := n.Operands

	switch {
	case m == "nop" && len(ops) == 0:
		return []*ast.Node{rewrite(n, "addi", []ast.Operand{x0, x0, imm(0)})}
	case m == "mv" && len(ops) == 2:
		return []*ast.Node{rewrite(n, "addi", []ast.Operand{ops[0], ops[1], imm(0)})}
	case m == "not" && len(ops) == 2:
		return []*ast.Node{rewrite(n, "xori", []ast.Operand{ops[0], ops[1], imm(-1)})}
	case m == "neg" && len(ops) == 2:
		return []*ast.Node{rewrite(n, "sub", []ast.Operand{ops[0], x0, ops[1]})}
	case m == "seqz" && len(ops) == 2:
		return []*ast.Node{rewrite(n, "sltiu", []ast.Operand{ops[0], ops[1], imm(1)})}
	case m == "snez" && len(ops) == 2:
		return []*ast.Node{rewrite(n, "sltu", []ast.Operand{ops[0], x0, ops[1]})}
	case m == "sltz" && len(ops) == 2:
		return []*ast.Node{rewrite(n, "slt", []ast.Operand{ops[0], ops[1], x0})}
	case m == "sgtz" && len(ops) == 2:
		return []*ast.Node{rewrite(n, "slt", []ast.Operand{ops[0], x0, ops[1]})}

	case m == "beqz" && len(ops) == 2:
		return []*ast.Node{rewrite(n, "beq", []ast.Operand{ops[0], x0, ops[1]})}
	case m == "bnez" && len(ops) == 2:
		return []*ast.Node{rewrite(n, "bne", []ast.Operand{ops[0], x0, ops[1]})}
	case m == "blez" && len(ops) == 2:
		return []*ast.Node{rewrite(n, "bge", []ast.Operand{x0, ops[0], ops[1]})}
	case m == "bgez" && len(ops) == 2:
		return []*ast.Node{rewrite(n, "bge", []ast.Operand{ops[0], x0, ops[1]})}
	case m == "bltz" && len(ops) == 2:
		return []*ast.Node{rewrite(n, "blt", []ast.Operand{ops[0], x0, ops[1]})}
	case m == "bgtz" && len(ops) == 2:
		return []*ast.Node{rewrite(n, "blt", []ast.Operand{x0, ops[0], ops[1]})}

	case m == "bgt" && len(ops) == 3:
		return []*ast.Node{rewrite(n, "blt", []ast.Operand{ops[1], ops[0], ops[2]})}
	case m == "ble" && len(ops) == 3:
		return []*ast.Node{rewrite(n, "bge", []ast.Operand{ops[1], ops[0], ops[2]})}
	case m == "bgtu" && len(ops) == 3:
		return []*ast.Node{rewrite(n, "bltu", []ast.Operand{ops[1], ops[0], ops[2]})}
	case m == "bleu" && len(ops) == 3:
		return []*ast.Node{rewrite(n, "bgeu", []ast.Operand{ops[1], ops[0], ops[2]})}

	case m == "j" && len(ops) == 1:
		return []*ast.Node{rewrite(n, "jal", []ast.Operand{x0, ops[0]})}
	case m == "jal" && len(ops) == 1:
		return []*ast.Node{rewrite(n, "jal", []ast.Operand{ra, ops[0]})}
	case m == "jr" && len(ops) == 1:
		return []*ast.Node{rewrite(n, "jalr", []ast.Operand{x0, ops[0], imm(0)})}
	case m == "jalr" && len(ops) == 1:
		return []*ast.Node{rewrite(n, "jalr", []ast.Operand{ra, ops[0], imm(0)})}
	case m == "ret" && len(ops) == 0:
		return []*ast.Node{rewrite(n, "jalr", []ast.Operand{x0, ra, imm(0)})}

	case m == "li" && len(ops) == 2:
		return expandLi(n, ops[0], ops[1])
	case m == "la" && len(ops) == 2:
		return expandLa(n, ops[0], ops[1])
	case m == "call" && len(ops) == 1:
		return expandCall(n, ops[0])
	case m == "tail" && len(ops) == 1:
		return expandTail(n, ops[0])
	}

	if (isLoad(m) || isStore(m)) && len(ops) == 2 && ops[1].Kind == ast.OperandSymbol {
		return expandMemSymbol(n, m, ops[0], ops[1])
	}

	return []*ast.Node{n}
}

func isLoad(m string) bool {
	switch m {
	case "lb", "lh", "lw", "lbu", "lhu":
		return true
	}
	return false
}

func isStore(m string) bool {
	switch m {
	case "sb", "sh", "sw":
		return true
	}
	return false
}

// expandLi expands "li rd, V". A numeric V that fits signed 12 bits becomes
// a single addi; otherwise a lui/addi pair with the +0x800 rounding bias so
// the low half sign-extends correctly. A symbolic V expands as la.
func expandLi(n *ast.Node, rd, v ast.Operand) []*ast.Node {
	if v.Kind == ast.OperandSymbol {
		return expandLa(n, rd, v)
	}
	val := v.Value
	if fitsI12(val) {
		return []*ast.Node{rewrite(n, "addi", []ast.Operand{rd, x0, imm(val)})}
	}
	upper := (val + 0x800) >> 12
	low := val - (upper << 12)
	return []*ast.Node{
		rewrite(n, "lui", []ast.Operand{rd, imm(upper)}),
		rewrite(n, "addi", []ast.Operand{rd, rd, imm(low)}),
	}
}

func expandLa(n *ast.Node, rd, sym ast.Operand) []*ast.Node {
	return []*ast.Node{
		rewrite(n, "auipc", []ast.Operand{rd, symSuffixed(sym, ast.RelocPCRelHi)}),
		rewrite(n, "addi", []ast.Operand{rd, rd, symSuffixed(sym, ast.RelocPCRelLo)}),
	}
}

func expandCall(n *ast.Node, target ast.Operand) []*ast.Node {
	if target.Kind == ast.OperandSymbol {
		return []*ast.Node{
			rewrite(n, "auipc", []ast.Operand{ra, symSuffixed(target, ast.RelocPCRelHi)}),
			rewrite(n, "jalr", []ast.Operand{ra, ra, symSuffixed(target, ast.RelocPCRelLo)}),
		}
	}
	return []*ast.Node{rewrite(n, "jal", []ast.Operand{ra, target})}
}

func expandTail(n *ast.Node, target ast.Operand) []*ast.Node {
	if target.Kind == ast.OperandSymbol {
		return []*ast.Node{
			rewrite(n, "auipc", []ast.Operand{t1, symSuffixed(target, ast.RelocPCRelHi)}),
			rewrite(n, "jalr", []ast.Operand{x0, t1, symSuffixed(target, ast.RelocPCRelLo)}),
		}
	}
	return []*ast.Node{rewrite(n, "jal", []ast.Operand{x0, target})}
}

// expandMemSymbol expands "L rd, S" (a load, or a store whose data register
// is rd) where S is a bare symbol: an la sequence computes the address (into
// rd for loads, into the t0 scratch register for stores) followed by the
// load/store with a zero offset.
func expandMemSymbol(n *ast.Node, mnemonic string, rd, sym ast.Operand) []*ast.Node {
	addrReg := rd
	if isStore(mnemonic) {
		addrReg = t0
	}
	out := expandLa(n, addrReg, sym)
	zero := imm(0)
	mem := ast.Operand{Kind: ast.OperandMemory, MemBase: addrReg.Register, MemRegNum: addrReg.RegNum, MemOffset: &zero}
	out = append(out, rewrite(n, mnemonic, []ast.Operand{rd, mem}))
	return out
}
