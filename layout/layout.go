// Package layout implements pass one: section-aware address assignment.
// Section state is threaded explicitly through the walk (per spec.md §9's
// design note) rather than held in package-level mutable state, the way the
// teacher threads pc explicitly through its own sizing pass.
package layout

import (
	"strings"

	"github.com/sebas1705sanchez/riscv32i/ast"
	"github.com/sebas1705sanchez/riscv32i/diag"
	"github.com/sebas1705sanchez/riscv32i/numlit"
	"github.com/sebas1705sanchez/riscv32i/symtab"
)

// Config carries the bases and default alignments the CLI can override.
type Config struct {
	TextBase  uint32
	DataBase  uint32
	AlignText uint32
	AlignData uint32
}

// DefaultConfig matches spec.md §6's defaults.
func DefaultConfig() Config {
	return Config{TextBase: 0x00000000, DataBase: 0x10000000, AlignText: 4, AlignData: 4}
}

// Result is pass one's output: the symbol table and section sizes. Run
// returns the accumulated diagnostics alongside it.
type Result struct {
	Symtab   *symtab.Table
	TextBase uint32
	DataBase uint32
	TextSize uint32
	DataSize uint32
}

var sizedDataDirs = map[string]uint32{
	".byte": 1, ".2byte": 2, ".half": 2, ".short": 2,
	".4byte": 4, ".word": 4,
	".8byte": 8, ".dword": 8, ".quad": 8,
}

var textDataDirs = map[string]bool{".ascii": true, ".asciz": true}
var spaceDataDirs = map[string]bool{".space": true, ".skip": true}
var alignDirs = map[string]bool{".align": true, ".p2align": true, ".balign": true}
var ignoredDirs = map[string]bool{".globl": true, ".global": true, ".type": true, ".size": true, ".section": true}

func alignUp(x, a uint32) uint32 {
	if a <= 1 {
		return x
	}
	return (x + a - 1) &^ (a - 1)
}

// Run walks the expanded node list, assigning label addresses and sizing
// data directives. It returns the symbol table, section sizes, and
// diagnostics; labels redefined or instructions found outside .text produce
// error diagnostics and are otherwise skipped.
func Run(nodes []*ast.Node, cfg Config) (Result, diag.List) {
	syms := symtab.New()
	var diags diag.List

	section := ""
	var lcText, lcData uint32

	ensureSection := func() {
		if section == "" {
			section = ".text"
		}
	}

	for _, n := range nodes {
		switch n.Type {
		case ast.NodeDirective:
			switch {
			case n.Name == ".text" || n.Name == ".data":
				// .text's LC is cumulative across re-entries and is never
				// re-aligned on entry; only .data aligns when entered.
				section = n.Name
				if section == ".data" && cfg.AlignData > 1 {
					lcData = alignUp(lcData, cfg.AlignData)
				}
			case n.Name == ".equ":
				handleEqu(n, syms, &diags)
			case ignoredDirs[n.Name]:
				// no layout effect
			case alignDirs[n.Name]:
				ensureSection()
				handleAlign(n, section, &lcText, &lcData, &diags)
			case spaceDataDirs[n.Name]:
				ensureSection()
				handleSpace(n, section, &lcData, &diags)
			case sizedDataDirs[n.Name] != 0:
				ensureSection()
				handleSizedData(n, section, sizedDataDirs[n.Name], cfg.AlignData, &lcData, &diags)
			case textDataDirs[n.Name]:
				ensureSection()
				handleTextData(n, section, &lcData, &diags)
			default:
				// unknown directive: no effect, not an error
			}

		case ast.NodeLabel:
			ensureSection()
			addr := currentBase(section, cfg)
			if section == ".text" {
				addr += int64(lcText)
			} else {
				addr += int64(lcData)
			}
			if symtab.HasReservedSuffix(n.Label) {
				diags = append(diags, diag.Warningf(n.Line, n.Col, "label %q uses a reserved relocation suffix", n.Label))
			}
			if !syms.Define(n.Label, addr) {
				diags = append(diags, diag.Errorf(n.Line, n.Col, "label redefined: %s", n.Label))
			}

		case ast.NodeInstruction:
			ensureSection()
			if section != ".text" {
				diags = append(diags, diag.Errorf(n.Line, n.Col, "instruction outside .text section"))
				continue
			}
			lcText += 4
		}
	}

	return Result{
		Symtab:   syms,
		TextBase: cfg.TextBase,
		DataBase: cfg.DataBase,
		TextSize: alignUp(lcText, cfg.AlignText),
		DataSize: alignUp(lcData, cfg.AlignData),
	}, diags
}

func currentBase(section string, cfg Config) int64 {
	if section == ".text" {
		return int64(cfg.TextBase)
	}
	return int64(cfg.DataBase)
}

func handleEqu(n *ast.Node, syms *symtab.Table, diags *diag.List) {
	if len(n.Args) < 2 {
		*diags = append(*diags, diag.Errorf(n.Line, n.Col, ".equ requires a name and a value"))
		return
	}
	name := n.Args[0]
	val, err := numlit.ParseInt(n.Args[1])
	if err != nil {
		*diags = append(*diags, diag.Errorf(n.Line, n.Col, ".equ has an invalid value: %s", n.Args[1]))
		return
	}
	if !syms.Define(name, val) {
		*diags = append(*diags, diag.Errorf(n.Line, n.Col, ".equ redefined: %s", name))
	}
}

func handleAlign(n *ast.Node, section string, lcText, lcData *uint32, diags *diag.List) {
	items := splitArgs(n.Args)
	if len(items) == 0 {
		*diags = append(*diags, diag.Errorf(n.Line, n.Col, "%s requires an argument", n.Name))
		return
	}
	val, err := numlit.ParseInt(items[0])
	if err != nil {
		*diags = append(*diags, diag.Errorf(n.Line, n.Col, "%s has an invalid alignment argument", n.Name))
		return
	}
	var a uint32
	switch n.Name {
	case ".balign":
		if val < 1 {
			val = 1
		}
		a = uint32(val)
	default: // .align, .p2align: power-of-two exponent
		if val < 0 {
			val = 0
		}
		a = uint32(1) << uint(val)
	}
	if section == ".text" {
		*lcText = alignUp(*lcText, a)
	} else {
		*lcData = alignUp(*lcData, a)
	}
}

func handleSpace(n *ast.Node, section string, lcData *uint32, diags *diag.List) {
	items := splitArgs(n.Args)
	if len(items) == 0 {
		*diags = append(*diags, diag.Errorf(n.Line, n.Col, "%s requires a byte count", n.Name))
		return
	}
	sz, err := numlit.ParseInt(items[0])
	if err != nil {
		*diags = append(*diags, diag.Errorf(n.Line, n.Col, "%s has an invalid size", n.Name))
		return
	}
	if section == ".text" {
		*diags = append(*diags, diag.Errorf(n.Line, n.Col, "%s not permitted in .text", n.Name))
		return
	}
	if sz > 0 {
		*lcData += uint32(sz)
	}
}

func handleSizedData(n *ast.Node, section string, elemSize, alignData uint32, lcData *uint32, diags *diag.List) {
	if section != ".data" {
		*diags = append(*diags, diag.Errorf(n.Line, n.Col, "%s only permitted in .data", n.Name))
		return
	}
	items := splitArgs(n.Args)
	*lcData = alignUp(*lcData, elemSize)
	*lcData += elemSize * uint32(len(items))
	_ = alignData
}

func handleTextData(n *ast.Node, section string, lcData *uint32, diags *diag.List) {
	if section != ".data" {
		*diags = append(*diags, diag.Errorf(n.Line, n.Col, "%s only permitted in .data", n.Name))
		return
	}
	items := splitArgs(n.Args)
	var total uint32
	for _, tok := range items {
		if strings.HasPrefix(tok, "\"") {
			b, err := numlit.DecodeQuoted(tok)
			if err != nil {
				*diags = append(*diags, diag.Errorf(n.Line, n.Col, "%s has an invalid string literal", n.Name))
				continue
			}
			total += uint32(len(b))
		} else {
			total++ // a bare numeric byte value
		}
	}
	if n.Name == ".asciz" {
		total++
	}
	*lcData += total
}

// splitArgs joins the raw whitespace-split tokens back into a single
// string and splits it on commas, honoring double-quoted segments — the
// layout pass's own comma-separated argument grammar (spec.md §4.3).
func splitArgs(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	joined := strings.Join(tokens, " ")
	var out []string
	var cur strings.Builder
	inQuote := false
	for _, r := range joined {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case r == ',' && !inQuote:
			if s := strings.TrimSpace(cur.String()); s != "" {
				out = append(out, s)
			}
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		out = append(out, s)
	}
	return out
}
