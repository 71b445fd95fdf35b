// Package asmpipe wires the four pipeline stages together: parse, expand,
// layout, encode. Mirrors the teacher's top-level Assembler.Assemble, which
// runs its own stages in sequence and concatenates their diagnostics.
package asmpipe

import (
	"github.com/sebas1705sanchez/riscv32i/ast"
	"github.com/sebas1705sanchez/riscv32i/diag"
	"github.com/sebas1705sanchez/riscv32i/encode"
	"github.com/sebas1705sanchez/riscv32i/layout"
	"github.com/sebas1705sanchez/riscv32i/parser"
	"github.com/sebas1705sanchez/riscv32i/pseudo"
)

// Result is the full pipeline's output: encoded words, the resolved symbol
// table and section sizes, and the per-stage node counts a caller can log as
// stage transitions. Assemble returns every diagnostic raised across all
// stages alongside it.
type Result struct {
	Words  []encode.Word
	Layout layout.Result

	// ParsedNodes is the node count straight out of the parser, before
	// pseudo-expansion.
	ParsedNodes int
	// ExpandedInstructions is the number of NodeInstruction nodes after
	// pseudo-expansion (pseudo-instructions expand to one or more of
	// these; labels and directives are not counted).
	ExpandedInstructions int
}

// Assemble runs the full pipeline over src and returns the result and the
// concatenated diagnostics from every stage. Any error-severity diagnostic
// means the caller should suppress output emission; Words and Layout are
// still populated best-effort so --dump-symtab/--dump-json can still report
// partial state.
func Assemble(src string, cfg layout.Config) (Result, diag.List) {
	var diags diag.List

	nodes, d := parser.Parse(src)
	diags = append(diags, d...)

	expanded := pseudo.Expand(nodes)

	layoutResult, d := layout.Run(expanded, cfg)
	diags = append(diags, d...)

	words, d := encode.Run(expanded, layoutResult)
	diags = append(diags, d...)

	instrCount := 0
	for _, n := range expanded {
		if n.Type == ast.NodeInstruction {
			instrCount++
		}
	}

	return Result{
		Words:                words,
		Layout:               layoutResult,
		ParsedNodes:          len(nodes),
		ExpandedInstructions: instrCount,
	}, diags
}
