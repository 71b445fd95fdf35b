package isa

import "fmt"

// Format selects the bit packer a mnemonic's encoding dispatches to.
type Format int

const (
	FormatR Format = iota
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
	FormatSystem
	FormatFence
)

// Opcodes for each RV32I major format, per the standard encoding.
const (
	OpR      = 0b0110011
	OpIALU   = 0b0010011
	OpJALR   = 0b1100111
	OpLoad   = 0b0000011
	OpStore  = 0b0100011
	OpBranch = 0b1100011
	OpLUI    = 0b0110111
	OpAUIPC  = 0b0010111
	OpJAL    = 0b1101111
	OpSystem = 0b1110011
	OpFence  = 0b0001111
)

// Spec is the static record of a mnemonic's encoding shape: its format
// (which selects the packer), opcode, and optional funct3/funct7.
type Spec struct {
	Format  Format
	Opcode  uint32
	Funct3  uint32
	HasF3   bool
	Funct7  uint32
	HasF7   bool
}

var table = map[string]Spec{
	// R-type
	"add":  {Format: FormatR, Opcode: OpR, Funct3: 0b000, HasF3: true, Funct7: 0b0000000, HasF7: true},
	"sub":  {Format: FormatR, Opcode: OpR, Funct3: 0b000, HasF3: true, Funct7: 0b0100000, HasF7: true},
	"sll":  {Format: FormatR, Opcode: OpR, Funct3: 0b001, HasF3: true, Funct7: 0b0000000, HasF7: true},
	"slt":  {Format: FormatR, Opcode: OpR, Funct3: 0b010, HasF3: true, Funct7: 0b0000000, HasF7: true},
	"sltu": {Format: FormatR, Opcode: OpR, Funct3: 0b011, HasF3: true, Funct7: 0b0000000, HasF7: true},
	"xor":  {Format: FormatR, Opcode: OpR, Funct3: 0b100, HasF3: true, Funct7: 0b0000000, HasF7: true},
	"srl":  {Format: FormatR, Opcode: OpR, Funct3: 0b101, HasF3: true, Funct7: 0b0000000, HasF7: true},
	"sra":  {Format: FormatR, Opcode: OpR, Funct3: 0b101, HasF3: true, Funct7: 0b0100000, HasF7: true},
	"or":   {Format: FormatR, Opcode: OpR, Funct3: 0b110, HasF3: true, Funct7: 0b0000000, HasF7: true},
	"and":  {Format: FormatR, Opcode: OpR, Funct3: 0b111, HasF3: true, Funct7: 0b0000000, HasF7: true},

	// I-type ALU immediates
	"addi":  {Format: FormatI, Opcode: OpIALU, Funct3: 0b000, HasF3: true},
	"slti":  {Format: FormatI, Opcode: OpIALU, Funct3: 0b010, HasF3: true},
	"sltiu": {Format: FormatI, Opcode: OpIALU, Funct3: 0b011, HasF3: true},
	"xori":  {Format: FormatI, Opcode: OpIALU, Funct3: 0b100, HasF3: true},
	"ori":   {Format: FormatI, Opcode: OpIALU, Funct3: 0b110, HasF3: true},
	"andi":  {Format: FormatI, Opcode: OpIALU, Funct3: 0b111, HasF3: true},

	// Shifts: I-type, funct7 distinguishes logical/arithmetic right shift.
	"slli": {Format: FormatI, Opcode: OpIALU, Funct3: 0b001, HasF3: true, Funct7: 0b0000000, HasF7: true},
	"srli": {Format: FormatI, Opcode: OpIALU, Funct3: 0b101, HasF3: true, Funct7: 0b0000000, HasF7: true},
	"srai": {Format: FormatI, Opcode: OpIALU, Funct3: 0b101, HasF3: true, Funct7: 0b0100000, HasF7: true},

	// Loads
	"lb":  {Format: FormatI, Opcode: OpLoad, Funct3: 0b000, HasF3: true},
	"lh":  {Format: FormatI, Opcode: OpLoad, Funct3: 0b001, HasF3: true},
	"lw":  {Format: FormatI, Opcode: OpLoad, Funct3: 0b010, HasF3: true},
	"lbu": {Format: FormatI, Opcode: OpLoad, Funct3: 0b100, HasF3: true},
	"lhu": {Format: FormatI, Opcode: OpLoad, Funct3: 0b101, HasF3: true},

	"jalr": {Format: FormatI, Opcode: OpJALR, Funct3: 0b000, HasF3: true},

	// Stores (S-type)
	"sb": {Format: FormatS, Opcode: OpStore, Funct3: 0b000, HasF3: true},
	"sh": {Format: FormatS, Opcode: OpStore, Funct3: 0b001, HasF3: true},
	"sw": {Format: FormatS, Opcode: OpStore, Funct3: 0b010, HasF3: true},

	// Branches (B-type)
	"beq":  {Format: FormatB, Opcode: OpBranch, Funct3: 0b000, HasF3: true},
	"bne":  {Format: FormatB, Opcode: OpBranch, Funct3: 0b001, HasF3: true},
	"blt":  {Format: FormatB, Opcode: OpBranch, Funct3: 0b100, HasF3: true},
	"bge":  {Format: FormatB, Opcode: OpBranch, Funct3: 0b101, HasF3: true},
	"bltu": {Format: FormatB, Opcode: OpBranch, Funct3: 0b110, HasF3: true},
	"bgeu": {Format: FormatB, Opcode: OpBranch, Funct3: 0b111, HasF3: true},

	// U-type
	"lui":   {Format: FormatU, Opcode: OpLUI},
	"auipc": {Format: FormatU, Opcode: OpAUIPC},

	// J-type
	"jal": {Format: FormatJ, Opcode: OpJAL},

	// SYSTEM
	"ecall":  {Format: FormatSystem, Opcode: OpSystem, Funct3: 0b000, HasF3: true},
	"ebreak": {Format: FormatSystem, Opcode: OpSystem, Funct3: 0b000, HasF3: true},

	// FENCE
	"fence":   {Format: FormatFence, Opcode: OpFence, Funct3: 0b000, HasF3: true},
	"fence.i": {Format: FormatFence, Opcode: OpFence, Funct3: 0b001, HasF3: true},
}

// Lookup returns the spec for a base-ISA mnemonic. ok is false if mnemonic
// isn't in the table — either a typo or a pseudo-instruction that wasn't
// expanded.
func Lookup(mnemonic string) (Spec, bool) {
	sp, ok := table[mnemonic]
	return sp, ok
}

// MustLookup is Lookup but panics on miss; only safe where mnemonic is
// already known-good (e.g. internal pseudo-expansion targets).
func MustLookup(mnemonic string) Spec {
	sp, ok := table[mnemonic]
	if !ok {
		panic(fmt.Sprintf("isa: no spec for mnemonic %q", mnemonic))
	}
	return sp
}

// Loads is the set of mnemonics using the LOAD (I-type, memory) form.
var Loads = map[string]bool{"lb": true, "lh": true, "lw": true, "lbu": true, "lhu": true}

// Stores is the set of mnemonics using the STORE (S-type, memory) form.
var Stores = map[string]bool{"sb": true, "sh": true, "sw": true}

// Shifts is the set of mnemonics whose I-type immediate is a 5-bit shamt.
var Shifts = map[string]bool{"slli": true, "srli": true, "srai": true}
