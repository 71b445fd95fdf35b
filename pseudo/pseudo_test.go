package pseudo

import (
	"testing"

	"github.com/sebas1705sanchez/riscv32i/ast"
)

func reg(name string, num int) ast.Operand {
	return ast.Operand{Kind: ast.OperandRegister, Register: name, RegNum: num}
}

func single(mnemonic string, ops ...ast.Operand) []*ast.Node {
	return []*ast.Node{{Type: ast.NodeInstruction, Mnemonic: mnemonic, Operands: ops, Line: 1}}
}

func TestExpandNop(t *testing.T) {
	out := Expand(single("nop"))
	if len(out) != 1 || out[0].Mnemonic != "addi" {
		t.Fatalf("nop expansion = %+v", out)
	}
	if out[0].Operands[0].RegNum != 0 || out[0].Operands[1].RegNum != 0 || out[0].Operands[2].Value != 0 {
		t.Errorf("nop should expand to addi x0, x0, 0, got %+v", out[0].Operands)
	}
}

func TestExpandMv(t *testing.T) {
	out := Expand(single("mv", reg("x5", 5), reg("x6", 6)))
	if len(out) != 1 || out[0].Mnemonic != "addi" {
		t.Fatalf("mv expansion = %+v", out)
	}
	if out[0].Operands[1].RegNum != 6 || out[0].Operands[2].Value != 0 {
		t.Errorf("mv should expand to addi rd, rs, 0, got %+v", out[0].Operands)
	}
}

func TestExpandRet(t *testing.T) {
	out := Expand(single("ret"))
	if len(out) != 1 || out[0].Mnemonic != "jalr" {
		t.Fatalf("ret expansion = %+v", out)
	}
	if out[0].Operands[0].RegNum != 0 || out[0].Operands[1].RegNum != 1 {
		t.Errorf("ret should expand to jalr x0, x1, 0, got %+v", out[0].Operands)
	}
}

func TestExpandBgt(t *testing.T) {
	rs, rt := reg("x5", 5), reg("x6", 6)
	out := Expand(single("bgt", rs, rt, ast.Operand{Kind: ast.OperandImmediate, Value: 8}))
	if len(out) != 1 || out[0].Mnemonic != "blt" {
		t.Fatalf("bgt expansion = %+v", out)
	}
	if out[0].Operands[0].RegNum != 6 || out[0].Operands[1].RegNum != 5 {
		t.Errorf("bgt should swap operands into blt, got %+v", out[0].Operands)
	}
}

func TestExpandLiSmallFitsSingleAddi(t *testing.T) {
	out := Expand(single("li", reg("x5", 5), ast.Operand{Kind: ast.OperandImmediate, Value: 100}))
	if len(out) != 1 || out[0].Mnemonic != "addi" {
		t.Fatalf("li 100 expansion = %+v", out)
	}
}

func TestExpandLiLargeNeedsLuiAddiPair(t *testing.T) {
	out := Expand(single("li", reg("x5", 5), ast.Operand{Kind: ast.OperandImmediate, Value: 0x12345678}))
	if len(out) != 2 || out[0].Mnemonic != "lui" || out[1].Mnemonic != "addi" {
		t.Fatalf("li 0x12345678 expansion = %+v", out)
	}
	upper := out[0].Operands[1].Value
	low := out[1].Operands[2].Value
	if upper<<12+low != 0x12345678 {
		t.Errorf("lui/addi pair does not reconstruct the original value: upper=%d low=%d", upper, low)
	}
	if low < -2048 || low > 2047 {
		t.Errorf("low half %d does not fit signed 12 bits", low)
	}
}

func TestExpandLaProducesAuipcAddiPcrelPair(t *testing.T) {
	out := Expand(single("la", reg("x5", 5), ast.Operand{Kind: ast.OperandSymbol, Name: "glob"}))
	if len(out) != 2 || out[0].Mnemonic != "auipc" || out[1].Mnemonic != "addi" {
		t.Fatalf("la expansion = %+v", out)
	}
	if out[0].Operands[1].Reloc != ast.RelocPCRelHi || out[0].Operands[1].Name != "glob" {
		t.Errorf("auipc operand should carry glob@pcrel_hi, got %+v", out[0].Operands[1])
	}
	if out[1].Operands[2].Reloc != ast.RelocPCRelLo || out[1].Operands[2].Name != "glob" {
		t.Errorf("addi operand should carry glob@pcrel_lo, got %+v", out[1].Operands[2])
	}
}

func TestExpandCallWithSymbolUsesRA(t *testing.T) {
	out := Expand(single("call", ast.Operand{Kind: ast.OperandSymbol, Name: "fn"}))
	if len(out) != 2 || out[0].Mnemonic != "auipc" || out[1].Mnemonic != "jalr" {
		t.Fatalf("call expansion = %+v", out)
	}
	if out[0].Operands[0].RegNum != 1 || out[1].Operands[0].RegNum != 1 {
		t.Errorf("call should route through x1 (ra), got %+v / %+v", out[0].Operands[0], out[1].Operands[0])
	}
}

func TestExpandCallWithImmediateIsJal(t *testing.T) {
	out := Expand(single("call", ast.Operand{Kind: ast.OperandImmediate, Value: 64}))
	if len(out) != 1 || out[0].Mnemonic != "jal" || out[0].Operands[0].RegNum != 1 {
		t.Fatalf("call imm expansion = %+v", out)
	}
}

func TestExpandTailWithSymbolUsesX0Link(t *testing.T) {
	out := Expand(single("tail", ast.Operand{Kind: ast.OperandSymbol, Name: "fn"}))
	if len(out) != 2 || out[1].Mnemonic != "jalr" || out[1].Operands[0].RegNum != 0 {
		t.Fatalf("tail expansion = %+v", out)
	}
}

func TestExpandLoadWithBareSymbol(t *testing.T) {
	out := Expand(single("lw", reg("x10", 10), ast.Operand{Kind: ast.OperandSymbol, Name: "buf"}))
	if len(out) != 3 {
		t.Fatalf("lw rd, sym expansion should yield 3 instructions, got %+v", out)
	}
	if out[0].Mnemonic != "auipc" || out[1].Mnemonic != "addi" || out[2].Mnemonic != "lw" {
		t.Fatalf("lw rd, sym expansion shape = %+v", out)
	}
	// the address lands in rd itself for a load
	if out[0].Operands[0].RegNum != 10 || out[2].Operands[0].RegNum != 10 {
		t.Errorf("load address should accumulate in rd, got %+v", out)
	}
	mem := out[2].Operands[1]
	if mem.Kind != ast.OperandMemory || mem.MemRegNum != 10 || mem.MemOffset.Value != 0 {
		t.Errorf("final load should address off(rd) with a zero offset, got %+v", mem)
	}
}

func TestExpandStoreWithBareSymbolUsesScratch(t *testing.T) {
	out := Expand(single("sw", reg("x10", 10), ast.Operand{Kind: ast.OperandSymbol, Name: "buf"}))
	if len(out) != 3 || out[2].Mnemonic != "sw" {
		t.Fatalf("sw rd, sym expansion = %+v", out)
	}
	// address accumulates in the x5 scratch register, not the data register
	if out[0].Operands[0].RegNum != 5 {
		t.Errorf("store address should accumulate in x5, got %+v", out[0].Operands[0])
	}
	if out[2].Operands[0].RegNum != 10 {
		t.Errorf("stored data register should remain rd=x10, got %+v", out[2].Operands[0])
	}
	mem := out[2].Operands[1]
	if mem.MemRegNum != 5 {
		t.Errorf("store should address off(x5), got %+v", mem)
	}
}

func TestExpandPassesThroughBaseInstructions(t *testing.T) {
	out := Expand(single("add", reg("x1", 1), reg("x2", 2), reg("x3", 3)))
	if len(out) != 1 || out[0].Mnemonic != "add" {
		t.Fatalf("base instruction should pass through unchanged, got %+v", out)
	}
}

func TestExpandNonInstructionNodesPassThrough(t *testing.T) {
	dir := &ast.Node{Type: ast.NodeDirective, Name: ".text"}
	out := Expand([]*ast.Node{dir})
	if len(out) != 1 || out[0] != dir {
		t.Errorf("non-instruction nodes should pass through unchanged")
	}
}
