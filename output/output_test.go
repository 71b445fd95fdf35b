package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sebas1705sanchez/riscv32i/diag"
	"github.com/sebas1705sanchez/riscv32i/encode"
	"github.com/sebas1705sanchez/riscv32i/symtab"
)

func TestWriteHexFormat(t *testing.T) {
	var buf bytes.Buffer
	words := []encode.Word{{Bits: 0x13}, {Bits: 0xFFFFFFFF}}
	if err := WriteHex(&buf, words); err != nil {
		t.Fatalf("WriteHex: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0] != "0x00000013" {
		t.Errorf("line 0 = %q, want 0x00000013", lines[0])
	}
	if lines[1] != "0xffffffff" {
		t.Errorf("line 1 = %q, want 0xffffffff", lines[1])
	}
}

func TestWriteBinFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBin(&buf, []encode.Word{{Bits: 1}}); err != nil {
		t.Fatalf("WriteBin: %v", err)
	}
	line := strings.TrimRight(buf.String(), "\n")
	if len(line) != 32 {
		t.Fatalf("line length = %d, want 32", len(line))
	}
	if !strings.HasSuffix(line, "1") {
		t.Errorf("line = %q, want to end in 1", line)
	}
}

func TestWriteSymtab(t *testing.T) {
	tab := symtab.New()
	tab.Define("start", 0x1000)
	var buf bytes.Buffer
	if err := WriteSymtab(&buf, tab); err != nil {
		t.Fatalf("WriteSymtab: %v", err)
	}
	if !strings.Contains(buf.String(), "start = 0x00001000") {
		t.Errorf("symtab dump = %q, want it to contain start = 0x00001000", buf.String())
	}
}

func TestWriteJSONIncludesWordsAndDiagnostics(t *testing.T) {
	tab := symtab.New()
	tab.Define("L", 4)
	var buf bytes.Buffer
	words := []encode.Word{{PC: 0, Bits: 0x13, Mnemonic: "addi", Line: 1}}
	diags := diag.List{diag.Warningf(2, 0, "reserved suffix")}
	if err := WriteJSON(&buf, words, tab, 0, 0x10000000, 4, 0, diags); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"mnemonic": "addi"`, `"name": "L"`, `"severity": "warning"`} {
		if !strings.Contains(out, want) {
			t.Errorf("json output missing %q; got:\n%s", want, out)
		}
	}
}
