// Command rv32asm assembles RV32I source text into parallel hex and binary
// artifacts. Positional arguments: source path, plus optionally a hex
// output path and a binary output path. When only the source path is
// given, the assembled words are hex-dumped to stdout for inspection
// instead of being written to files.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sebas1705sanchez/riscv32i/asmpipe"
	"github.com/sebas1705sanchez/riscv32i/diag"
	"github.com/sebas1705sanchez/riscv32i/layout"
	"github.com/sebas1705sanchez/riscv32i/output"
)

// Exit codes per the command-line surface: 0 success, 1 compilation errors,
// 2 source unreadable, 3 output write failure.
const (
	exitOK        = 0
	exitCompile   = 1
	exitReadFail  = 2
	exitWriteFail = 3
)

var log = logrus.New()

func main() {
	os.Exit(run())
}

func run() int {
	var (
		textBase   uint32
		dataBase   uint32
		align      uint32
		verbose    bool
		dumpSymtab bool
		dumpJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "rv32asm <source> [hex-out] [bin-out]",
		Short: "Two-pass assembler for the RV32I base integer instruction set",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
			cfg := layout.Config{
				TextBase:  textBase,
				DataBase:  dataBase,
				AlignText: align,
				AlignData: align,
			}
			if len(args) == 1 {
				return assembleToStdout(args[0], cfg, dumpSymtab, dumpJSON)
			}
			if len(args) != 3 {
				return errors.New("hex and binary output paths must both be given, or neither")
			}
			return assembleFiles(args[0], args[1], args[2], cfg, dumpSymtab, dumpJSON)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	def := layout.DefaultConfig()
	cmd.Flags().Uint32Var(&textBase, "text-base", def.TextBase, "base address of the .text section")
	cmd.Flags().Uint32Var(&dataBase, "data-base", def.DataBase, "base address of the .data section")
	cmd.Flags().Uint32Var(&align, "align", def.AlignText, "section alignment in bytes")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also log each encoded word (PC and mnemonic) at debug level")
	cmd.Flags().BoolVar(&dumpSymtab, "dump-symtab", false, "print the resolved symbol table to stderr")
	cmd.Flags().BoolVar(&dumpJSON, "dump-json", false, "print a JSON dump of words/symbols/diagnostics to stderr")

	if err := cmd.Execute(); err != nil {
		if code, ok := exitCodeOf(err); ok {
			return code
		}
		fmt.Fprintln(os.Stderr, err)
		return exitCompile
	}
	return exitOK
}

// exitStatusError carries the exit code a failure should produce through
// cobra's plain error-return RunE signature.
type exitStatusError struct {
	code int
	err  error
}

func (e *exitStatusError) Error() string { return e.err.Error() }
func (e *exitStatusError) Unwrap() error { return e.err }

func exitCodeOf(err error) (int, bool) {
	var ese *exitStatusError
	if errors.As(err, &ese) {
		return ese.code, true
	}
	return 0, false
}

// readAndAssemble reads srcPath, runs the pipeline, prints diagnostic
// lines and the stage-transition/summary log entries, and optionally
// prints the symtab/JSON dumps. It returns the pipeline result so the
// caller can decide how to emit the assembled words.
func readAndAssemble(srcPath string, cfg layout.Config, dumpSymtab, dumpJSON bool) (asmpipe.Result, error) {
	raw, err := os.ReadFile(srcPath)
	if err != nil {
		return asmpipe.Result{}, &exitStatusError{code: exitReadFail, err: errors.Wrapf(err, "reading %s", srcPath)}
	}

	result, diags := asmpipe.Assemble(string(raw), cfg)
	diags = diags.WithFile(srcPath)

	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.String())
	}

	log.Infof("parsed %d nodes", result.ParsedNodes)
	log.Infof("expanded to %d instructions", result.ExpandedInstructions)
	log.Infof("assigned %d bytes of .text, %d bytes of .data", result.Layout.TextSize, result.Layout.DataSize)
	log.Infof("encoded %d words", len(result.Words))
	for _, w := range result.Words {
		log.WithFields(logrus.Fields{"pc": fmt.Sprintf("0x%08x", w.PC), "mnemonic": w.Mnemonic}).Debug("encoded word")
	}
	logDiagnosticSummary(diags)

	if dumpSymtab {
		if err := output.WriteSymtab(os.Stderr, result.Layout.Symtab); err != nil {
			return result, &exitStatusError{code: exitWriteFail, err: errors.Wrap(err, "writing symtab dump")}
		}
	}
	if dumpJSON {
		if err := output.WriteJSON(os.Stderr, result.Words, result.Layout.Symtab,
			result.Layout.TextBase, result.Layout.DataBase, result.Layout.TextSize, result.Layout.DataSize, diags); err != nil {
			return result, &exitStatusError{code: exitWriteFail, err: errors.Wrap(err, "writing json dump")}
		}
	}

	if diag.List(diags).HasErrors() {
		return result, &exitStatusError{code: exitCompile, err: errors.New("compilation errors reported")}
	}
	return result, nil
}

func logDiagnosticSummary(diags diag.List) {
	var errCount, warnCount int
	for _, d := range diags {
		switch d.Severity {
		case diag.Error:
			errCount++
		case diag.Warning:
			warnCount++
		}
	}
	switch {
	case errCount > 0:
		log.WithFields(logrus.Fields{"errors": errCount, "warnings": warnCount}).Error("compilation finished with errors")
	case warnCount > 0:
		log.WithFields(logrus.Fields{"warnings": warnCount}).Warn("compilation finished with warnings")
	default:
		log.Info("compilation finished cleanly")
	}
}

// assembleToStdout implements the hex-dump fallback: when no output paths
// are given beyond the source, the assembled words are printed to stdout
// for inspection, mirroring the teacher's asm68 hexdump-to-stdout branch.
func assembleToStdout(srcPath string, cfg layout.Config, dumpSymtab, dumpJSON bool) error {
	result, err := readAndAssemble(srcPath, cfg, dumpSymtab, dumpJSON)
	if err != nil {
		return err
	}
	if err := output.WriteHex(os.Stdout, result.Words); err != nil {
		return &exitStatusError{code: exitWriteFail, err: errors.Wrap(err, "writing hex dump to stdout")}
	}
	return nil
}

func assembleFiles(srcPath, hexPath, binPath string, cfg layout.Config, dumpSymtab, dumpJSON bool) error {
	result, err := readAndAssemble(srcPath, cfg, dumpSymtab, dumpJSON)
	if err != nil {
		return err
	}

	hexFile, err := os.Create(hexPath)
	if err != nil {
		return &exitStatusError{code: exitWriteFail, err: errors.Wrapf(err, "creating %s", hexPath)}
	}
	defer hexFile.Close()
	if err := output.WriteHex(hexFile, result.Words); err != nil {
		return &exitStatusError{code: exitWriteFail, err: errors.Wrapf(err, "writing %s", hexPath)}
	}

	binFile, err := os.Create(binPath)
	if err != nil {
		return &exitStatusError{code: exitWriteFail, err: errors.Wrapf(err, "creating %s", binPath)}
	}
	defer binFile.Close()
	if err := output.WriteBin(binFile, result.Words); err != nil {
		return &exitStatusError{code: exitWriteFail, err: errors.Wrapf(err, "writing %s", binPath)}
	}

	return nil
}
