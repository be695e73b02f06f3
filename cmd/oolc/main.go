// oolc reads a type-checked-or-not Language AST as JSON, runs the type
// checker, and emits AT&T-syntax x86 assembly for it.
//
// Usage: oolc [flags] file.json
//
// Flags:
//   -o file          write assembly to file (default: stdout)
//   --print-symbols  dump the class table built by the type checker
//   --no-color       disable ANSI color in --print-symbols output
//   -v, --verbose    log each pipeline stage's duration
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gmofishsauce/ool/internal/ast"
	"github.com/gmofishsauce/ool/internal/codegen"
	"github.com/gmofishsauce/ool/internal/diag"
	"github.com/gmofishsauce/ool/internal/sem"
)

var (
	outputFile   string
	printSymbols bool
	noColor      bool
	verbose      bool
)

var command = &cobra.Command{
	Use:           "oolc file.json",
	Short:         "Language type checker and x86 code generator",
	Args:          cobra.ExactArgs(1),
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	command.Flags().StringVarP(&outputFile, "output", "o", "", "write assembly to file (default: stdout)")
	command.Flags().BoolVar(&printSymbols, "print-symbols", false, "dump the class table built by the type checker")
	command.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI color in --print-symbols output")
	command.Flags().BoolVarP(&verbose, "verbose", "v", false, "log each pipeline stage's duration")
}

func run(cmd *cobra.Command, args []string) error {
	logger := newLogger(verbose)
	defer logger.Sync()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("oolc: %w", err)
	}

	start := time.Now()
	prog, err := ast.DecodeProgram(data)
	if err != nil {
		return fmt.Errorf("oolc: %w", err)
	}
	logger.Debug("decoded AST", zap.Duration("elapsed", time.Since(start)), zap.Int("classes", len(prog.Classes)))

	start = time.Now()
	classes, err := sem.Check(prog)
	if err != nil {
		logger.Debug("type check failed", zap.Duration("elapsed", time.Since(start)))
		// The diagnostic text is the external contract (spec.md's single
		// fixed line on stderr) — write it verbatim, not through the zap
		// dev-console formatter used for internal pipeline timing.
		fmt.Fprintln(os.Stderr, err.Error())
		return err
	}
	logger.Debug("type checked", zap.Duration("elapsed", time.Since(start)))

	if printSymbols {
		diag.NewPrinter(os.Stderr, noColor).PrintClassTable(classes)
	}

	out := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("oolc: %w", err)
		}
		defer f.Close()
		out = f
	}

	start = time.Now()
	if err := codegen.Generate(prog, classes, out); err != nil {
		return fmt.Errorf("oolc: %w", err)
	}
	logger.Debug("generated assembly", zap.Duration("elapsed", time.Since(start)))
	return nil
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		// zap itself failed to build; fall back to a no-op logger rather
		// than aborting compilation over a logging problem.
		return zap.NewNop()
	}
	return logger
}

func main() {
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
