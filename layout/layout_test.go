package layout

import (
	"testing"

	"github.com/sebas1705sanchez/riscv32i/parser"
	"github.com/sebas1705sanchez/riscv32i/pseudo"
)

func build(src string) (Result, int) {
	nodes, _ := parser.Parse(src)
	expanded := pseudo.Expand(nodes)
	res, diags := Run(expanded, DefaultConfig())
	return res, len(diags)
}

func TestLabelAddressesSequentialInText(t *testing.T) {
	res, nDiags := build(".text\nstart: addi a0,x0,1\n addi a1,a0,41\nagain: add a0,a0,a1\n")
	if nDiags != 0 {
		t.Fatalf("unexpected diagnostics count %d", nDiags)
	}
	start, ok := res.Symtab.Lookup("start")
	if !ok || start != 0 {
		t.Errorf("start = (%d, %v), want (0, true)", start, ok)
	}
	again, ok := res.Symtab.Lookup("again")
	if !ok || again != 8 {
		t.Errorf("again = (%d, %v), want (8, true)", again, ok)
	}
	if res.TextSize != 12 {
		t.Errorf("TextSize = %d, want 12", res.TextSize)
	}
}

func TestLabelRedefinitionIsError(t *testing.T) {
	_, nDiags := build(".text\nL: addi x1,x0,1\nL: addi x2,x0,2\n")
	if nDiags == 0 {
		t.Fatal("expected a redefinition diagnostic")
	}
}

func TestDataDirectiveSizing(t *testing.T) {
	res, nDiags := build(".data\nA: .word 1,2,3\n.ascii \"hi\",\"!\"\nB: .half 0,1\n.asciz \"Z\"\n.text\naddi x0,x0,0\n")
	if nDiags != 0 {
		t.Fatalf("unexpected diagnostics count %d", nDiags)
	}
	a, ok := res.Symtab.Lookup("A")
	if !ok || a != 0x10000000 {
		t.Errorf("A = (%#x, %v), want (0x10000000, true)", a, ok)
	}
	if res.DataSize != 24 {
		t.Errorf("DataSize = %d, want 24 (3*4 word + 3 ascii + 1 pad + 2*2 half + 2 asciz + 2 pad to 4-byte alignment)", res.DataSize)
	}
	if res.TextSize != 4 {
		t.Errorf("TextSize = %d, want 4", res.TextSize)
	}
}

func TestInstructionOutsideTextIsError(t *testing.T) {
	_, nDiags := build(".data\naddi x0,x0,0\n")
	if nDiags == 0 {
		t.Fatal("expected a diagnostic for an instruction outside .text")
	}
}

func TestEquDefinesConstant(t *testing.T) {
	res, nDiags := build(".equ LIMIT, 100\n.text\naddi x0,x0,0\n")
	if nDiags != 0 {
		t.Fatalf("unexpected diagnostics count %d", nDiags)
	}
	v, ok := res.Symtab.Lookup("LIMIT")
	if !ok || v != 100 {
		t.Errorf("LIMIT = (%d, %v), want (100, true)", v, ok)
	}
}

func TestAlignDirective(t *testing.T) {
	res, nDiags := build(".data\n.byte 1\n.align 2\nW: .word 7\n")
	if nDiags != 0 {
		t.Fatalf("unexpected diagnostics count %d", nDiags)
	}
	w, ok := res.Symtab.Lookup("W")
	if !ok || w != 0x10000004 {
		t.Errorf("W = (%#x, %v), want (0x10000004, true) — aligned up to a 4-byte boundary", w, ok)
	}
}

func TestTextLCIsCumulativeAcrossReentry(t *testing.T) {
	res, nDiags := build(".text\naddi x0,x0,0\n.data\n.byte 1\n.text\nL: addi x0,x0,0\n")
	if nDiags != 0 {
		t.Fatalf("unexpected diagnostics count %d", nDiags)
	}
	l, ok := res.Symtab.Lookup("L")
	if !ok || l != 4 {
		t.Errorf("L = (%d, %v), want (4, true) — .text LC picks up where it left off", l, ok)
	}
}
