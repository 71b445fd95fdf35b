package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sebas1705sanchez/riscv32i/ast"
	"github.com/sebas1705sanchez/riscv32i/isa"
	"github.com/sebas1705sanchez/riscv32i/numlit"
)

var (
	identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	memoryRE     = regexp.MustCompile(`^([^()]*)\(([^()]+)\)$`)
)

// classifyOperand parses one operand token into its tagged-union form,
// trying memory, then register, then numeric immediate, then symbol, in
// that order — the order spec.md fixes to avoid ambiguity between "1(x0)"
// and a bare "x0" style token.
func classifyOperand(tok string) (ast.Operand, error) {
	tok = strings.TrimSpace(tok)

	if strings.Contains(tok, "(") && strings.HasSuffix(tok, ")") {
		return parseMemoryOperand(tok)
	}

	if canon, ok := isa.NormalizeRegister(tok); ok {
		n, _ := isa.RegisterNumber(tok)
		return ast.Operand{Kind: ast.OperandRegister, Register: canon, RegNum: n, Raw: tok}, nil
	}

	if numlit.LooksLikeInt(tok) {
		v, err := numlit.ParseInt(tok)
		if err != nil {
			return ast.Operand{}, err
		}
		return ast.Operand{Kind: ast.OperandImmediate, Value: v, Origin: ast.ImmNumeric, Raw: tok}, nil
	}

	if name, reloc, ok := parseSymbolToken(tok); ok {
		return ast.Operand{Kind: ast.OperandSymbol, Name: name, Reloc: reloc, Raw: tok}, nil
	}

	return ast.Operand{}, fmt.Errorf("invalid operand: %q", tok)
}

// parseSymbolToken recognizes NAME, NAME@pcrel_hi, NAME@pcrel_lo.
func parseSymbolToken(tok string) (string, ast.Reloc, bool) {
	name := tok
	reloc := ast.RelocNone
	if strings.HasSuffix(tok, "@pcrel_hi") {
		name = strings.TrimSuffix(tok, "@pcrel_hi")
		reloc = ast.RelocPCRelHi
	} else if strings.HasSuffix(tok, "@pcrel_lo") {
		name = strings.TrimSuffix(tok, "@pcrel_lo")
		reloc = ast.RelocPCRelLo
	}
	if !identifierRE.MatchString(name) {
		return "", ast.RelocNone, false
	}
	return name, reloc, true
}

// parseMemoryOperand parses "imm(reg)" or "(reg)" (implicit zero offset).
// The offset may be a numeric literal or a bare symbol name, in which case
// resolution is deferred and the offset is recorded as a zero-valued
// symbolic immediate — this is display-only at parse time per spec.md §4.1.
func parseMemoryOperand(tok string) (ast.Operand, error) {
	m := memoryRE.FindStringSubmatch(tok)
	if m == nil {
		return ast.Operand{}, fmt.Errorf("malformed memory operand: %q", tok)
	}
	offTok := strings.TrimSpace(m[1])
	regTok := strings.TrimSpace(m[2])

	canon, ok := isa.NormalizeRegister(regTok)
	if !ok {
		return ast.Operand{}, fmt.Errorf("invalid register in memory operand: %q", regTok)
	}
	regNum, _ := isa.RegisterNumber(regTok)

	var off ast.Operand
	switch {
	case offTok == "":
		off = ast.Operand{Kind: ast.OperandImmediate, Value: 0, Origin: ast.ImmNumeric}
	case numlit.LooksLikeInt(offTok):
		v, err := numlit.ParseInt(offTok)
		if err != nil {
			return ast.Operand{}, err
		}
		off = ast.Operand{Kind: ast.OperandImmediate, Value: v, Origin: ast.ImmNumeric, Raw: offTok}
	case identifierRE.MatchString(offTok):
		off = ast.Operand{Kind: ast.OperandImmediate, Value: 0, Origin: ast.ImmSymbolic, Raw: offTok}
	default:
		return ast.Operand{}, fmt.Errorf("invalid offset in memory operand: %q", offTok)
	}

	return ast.Operand{
		Kind:      ast.OperandMemory,
		MemBase:   canon,
		MemRegNum: regNum,
		MemOffset: &off,
		Raw:       tok,
	}, nil
}
