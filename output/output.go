// Package output renders a pipeline result as the hex/bin artifacts and the
// optional symbol-table/diagnostic dumps described in the CLI surface.
package output

import (
	"encoding/json"
	"io"

	"github.com/sebas1705sanchez/riscv32i/diag"
	"github.com/sebas1705sanchez/riscv32i/encode"
	"github.com/sebas1705sanchez/riscv32i/isa"
	"github.com/sebas1705sanchez/riscv32i/symtab"
)

// WriteHex writes one "0x" + 8 lowercase hex digits line per word.
func WriteHex(w io.Writer, words []encode.Word) error {
	for _, wd := range words {
		if _, err := io.WriteString(w, isa.ToHex32(wd.Bits)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// WriteBin writes one 32-character '0'/'1' line per word.
func WriteBin(w io.Writer, words []encode.Word) error {
	for _, wd := range words {
		if _, err := io.WriteString(w, isa.ToBin32(wd.Bits)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// symtabEntry and jsonDump give --dump-symtab/--dump-json a stable shape;
// field names are lowerCamelCase to match typical Go JSON API conventions.
type symtabEntry struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type wordEntry struct {
	PC       string `json:"pc"`
	Hex      string `json:"hex"`
	Mnemonic string `json:"mnemonic"`
	Line     int    `json:"line"`
}

type diagEntry struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Line     int     `json:"line"`
	Col      int     `json:"col"`
	Hint     string `json:"hint,omitempty"`
}

type jsonDump struct {
	Words       []wordEntry    `json:"words"`
	Symbols     []symtabEntry  `json:"symbols"`
	Diagnostics []diagEntry    `json:"diagnostics"`
	TextBase    string         `json:"textBase"`
	DataBase    string         `json:"dataBase"`
	TextSize    uint32         `json:"textSize"`
	DataSize    uint32         `json:"dataSize"`
}

// WriteSymtab writes one "name = 0xXXXXXXXX" line per defined symbol.
func WriteSymtab(w io.Writer, syms *symtab.Table) error {
	for _, name := range syms.Names() {
		v, _ := syms.Lookup(name)
		if _, err := io.WriteString(w, name+" = "+isa.ToHex32(uint32(v))+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON renders the full pipeline result (words, symbols, diagnostics,
// section sizes) as a single JSON document for tooling consumption.
func WriteJSON(w io.Writer, words []encode.Word, syms *symtab.Table, textBase, dataBase, textSize, dataSize uint32, diags diag.List) error {
	dump := jsonDump{
		TextBase: isa.ToHex32(textBase),
		DataBase: isa.ToHex32(dataBase),
		TextSize: textSize,
		DataSize: dataSize,
	}
	for _, wd := range words {
		dump.Words = append(dump.Words, wordEntry{
			PC: isa.ToHex32(wd.PC), Hex: isa.ToHex32(wd.Bits), Mnemonic: wd.Mnemonic, Line: wd.Line,
		})
	}
	for _, name := range syms.Names() {
		v, _ := syms.Lookup(name)
		dump.Symbols = append(dump.Symbols, symtabEntry{Name: name, Value: v})
	}
	for _, d := range diags {
		dump.Diagnostics = append(dump.Diagnostics, diagEntry{
			Severity: d.Severity.String(), Message: d.Message, Line: d.Line, Col: d.Col, Hint: d.Hint,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dump)
}
