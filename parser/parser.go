// Package parser turns assembly source text into a flat Node stream.
// Grounded on the teacher's line-oriented assembler.parseLines, generalized
// to RV32I's directive/label/instruction grammar.
package parser

import (
	"regexp"
	"strings"

	"github.com/sebas1705sanchez/riscv32i/ast"
	"github.com/sebas1705sanchez/riscv32i/diag"
	"github.com/sebas1705sanchez/riscv32i/numlit"
)

var labelRE = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*):\s*(.*)$`)

// Parse lexes and classifies the source into a Node list plus accumulated
// diagnostics. Parsing never aborts: a malformed token yields an error
// diagnostic and the line is continued best-effort.
func Parse(src string) ([]*ast.Node, diag.List) {
	var nodes []*ast.Node
	var diags diag.List

	section := ""
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	for i, raw := range lines {
		lineno := i + 1
		core := stripComment(raw)
		if core == "" {
			continue
		}
		parseLine(core, lineno, &section, &nodes, &diags)
	}
	return nodes, diags
}

// parseLine handles one already-comment-stripped, non-empty line. After a
// label it recurses on whatever remains of the line (a directive, an
// instruction, or another label), so a label followed by a directive on the
// same line is supported (the resolved Open Question from spec.md §9).
func parseLine(core string, lineno int, section *string, nodes *[]*ast.Node, diags *diag.List) {
	if strings.HasPrefix(core, ".") {
		parseDirective(core, lineno, section, nodes, diags)
		return
	}

	if m := labelRE.FindStringSubmatch(core); m != nil {
		name := m[1]
		*nodes = append(*nodes, &ast.Node{
			Type: ast.NodeLabel, Label: name, Line: lineno, Col: 1, Section: *section,
		})
		rest := strings.TrimSpace(m[2])
		if rest == "" {
			return
		}
		parseLine(rest, lineno, section, nodes, diags)
		return
	}

	parseInstruction(core, lineno, section, nodes, diags)
}

// parseDirective handles a dot-prefixed line. .text/.data update the
// current section; .equ gets structured [name, value] args; everything
// else keeps its raw token list for the layout pass to interpret.
func parseDirective(core string, lineno int, section *string, nodes *[]*ast.Node, diags *diag.List) {
	fields := strings.Fields(core)
	name := strings.ToLower(fields[0])
	rawArgs := fields[1:]

	switch name {
	case ".text", ".data":
		*section = name
		*nodes = append(*nodes, &ast.Node{Type: ast.NodeDirective, Name: name, Line: lineno, Col: 1, Section: *section})
		return
	case ".equ":
		parseEqu(core, name, rawArgs, lineno, *section, nodes, diags)
		return
	default:
		*nodes = append(*nodes, &ast.Node{Type: ast.NodeDirective, Name: name, Args: rawArgs, Line: lineno, Col: 1, Section: *section})
	}
}

var equIdentRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// parseEqu validates ".equ NAME, VALUE" or ".equ NAME VALUE" and emits a
// Directive node carrying the structured [NAME, VALUE] args.
func parseEqu(core, name string, rawArgs []string, lineno int, section string, nodes *[]*ast.Node, diags *diag.List) {
	// Reconstruct the remainder after ".equ" and split on an optional comma.
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(core), ".equ"))
	var parts []string
	if idx := strings.Index(rest, ","); idx >= 0 {
		parts = []string{strings.TrimSpace(rest[:idx]), strings.TrimSpace(rest[idx+1:])}
	} else {
		parts = strings.Fields(rest)
	}
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		*diags = append(*diags, diag.Errorf(lineno, 1, "malformed .equ: expected NAME, VALUE"))
		return
	}
	symName := parts[0]
	if !equIdentRE.MatchString(symName) {
		*diags = append(*diags, diag.Errorf(lineno, 1, "malformed .equ: invalid name %q", symName))
		return
	}
	if !numlit.LooksLikeInt(parts[1]) {
		*diags = append(*diags, diag.Errorf(lineno, 1, "malformed .equ: invalid value %q", parts[1]))
		return
	}
	*nodes = append(*nodes, &ast.Node{
		Type: ast.NodeDirective, Name: ".equ", Args: []string{symName, parts[1]},
		Line: lineno, Col: 1, Section: section,
	})
}

// parseInstruction splits mnemonic from operand tail and classifies each
// operand, recording a diagnostic and skipping any token it can't classify.
func parseInstruction(core string, lineno int, section *string, nodes *[]*ast.Node, diags *diag.List) {
	mnemonic, tail := splitMnemonicOperands(core)
	mnemonic = strings.ToLower(mnemonic)

	var operands []ast.Operand
	for _, tok := range splitOperands(tail) {
		if tok == "" {
			continue
		}
		op, err := classifyOperand(tok)
		if err != nil {
			*diags = append(*diags, diag.Errorf(lineno, 1, "%s", err.Error()))
			continue
		}
		operands = append(operands, op)
	}

	*nodes = append(*nodes, &ast.Node{
		Type: ast.NodeInstruction, Mnemonic: mnemonic, Operands: operands,
		Line: lineno, Col: 1, Section: *section,
	})
}
