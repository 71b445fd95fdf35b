// Package isa holds the static RV32I tables: the ABI register name map and
// the per-mnemonic instruction specification used by the parser and encode
// stages.
package isa

import (
	"strconv"
	"strings"
)

// abiToCanonical maps ABI register names to their canonical xN form.
var abiToCanonical = map[string]string{
	"zero": "x0", "ra": "x1", "sp": "x2", "gp": "x3", "tp": "x4",
	"t0": "x5", "t1": "x6", "t2": "x7",
	"s0": "x8", "fp": "x8", "s1": "x9",
	"a0": "x10", "a1": "x11", "a2": "x12", "a3": "x13", "a4": "x14", "a5": "x15", "a6": "x16", "a7": "x17",
	"s2": "x18", "s3": "x19", "s4": "x20", "s5": "x21", "s6": "x22", "s7": "x23", "s8": "x24", "s9": "x25", "s10": "x26", "s11": "x27",
	"t3": "x28", "t4": "x29", "t5": "x30", "t6": "x31",
}

// IsRegister reports whether token names a valid register (ABI or xN).
func IsRegister(token string) bool {
	_, ok := NormalizeRegister(token)
	return ok
}

// NormalizeRegister returns the canonical "xN" form of an ABI or xN token.
func NormalizeRegister(token string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(token))
	if canon, ok := abiToCanonical[t]; ok {
		return canon, true
	}
	if strings.HasPrefix(t, "x") && len(t) > 1 {
		if n, err := strconv.Atoi(t[1:]); err == nil && n >= 0 && n <= 31 {
			return "x" + strconv.Itoa(n), true
		}
	}
	return "", false
}

// RegisterNumber returns the canonical index 0..31 for an ABI or xN token.
func RegisterNumber(token string) (int, bool) {
	canon, ok := NormalizeRegister(token)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(canon[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}
