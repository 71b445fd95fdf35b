package isa

import (
	"strings"
	"testing"
)

func TestLookupKnownMnemonics(t *testing.T) {
	tests := []struct {
		mnemonic string
		format   Format
		opcode   uint32
	}{
		{"add", FormatR, OpR},
		{"addi", FormatI, OpIALU},
		{"lw", FormatI, OpLoad},
		{"jalr", FormatI, OpJALR},
		{"sw", FormatS, OpStore},
		{"beq", FormatB, OpBranch},
		{"lui", FormatU, OpLUI},
		{"auipc", FormatU, OpAUIPC},
		{"jal", FormatJ, OpJAL},
		{"ecall", FormatSystem, OpSystem},
		{"fence", FormatFence, OpFence},
	}
	for _, tc := range tests {
		sp, ok := Lookup(tc.mnemonic)
		if !ok {
			t.Fatalf("Lookup(%q) not found", tc.mnemonic)
		}
		if sp.Format != tc.format || sp.Opcode != tc.opcode {
			t.Errorf("Lookup(%q) = %+v, want format %v opcode %#o", tc.mnemonic, sp, tc.format, tc.opcode)
		}
	}
}

func TestLookupUnknownMnemonic(t *testing.T) {
	if _, ok := Lookup("li"); ok {
		t.Error("Lookup(\"li\") should miss: li is a pseudo, never reaches the ISA table")
	}
}

func TestSubAndAddShareOpcodeDifferByFunct7(t *testing.T) {
	add, _ := Lookup("add")
	sub, _ := Lookup("sub")
	if add.Opcode != sub.Opcode || add.Funct3 != sub.Funct3 {
		t.Fatal("add/sub should share opcode and funct3")
	}
	if add.Funct7 == sub.Funct7 {
		t.Fatal("add/sub must differ in funct7")
	}
}

func TestBitWidthHelpers(t *testing.T) {
	if !IsSignedNBit(2047, 12) || IsSignedNBit(2048, 12) {
		t.Error("signed 12-bit boundary check failed for +2047/+2048")
	}
	if !IsSignedNBit(-2048, 12) || IsSignedNBit(-2049, 12) {
		t.Error("signed 12-bit boundary check failed for -2048/-2049")
	}
	if !IsUnsignedNBit(31, 5) || IsUnsignedNBit(32, 5) || IsUnsignedNBit(-1, 5) {
		t.Error("unsigned 5-bit boundary check failed")
	}
}

func TestHexAndBinFormatting(t *testing.T) {
	if got := ToHex32(0x13); got != "0x00000013" {
		t.Errorf("ToHex32(0x13) = %q, want 0x00000013", got)
	}
	want := strings.Repeat("0", 31) + "1"
	if got := ToBin32(1); got != want {
		t.Errorf("ToBin32(1) = %q, want %q", got, want)
	}
	if got := ToBin32(0xFFFFFFFF); got != strings.Repeat("1", 32) {
		t.Errorf("ToBin32(all-ones) = %q", got)
	}
}
