package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bspt628/minc-aarch64/pkg/ast"
	"github.com/bspt628/minc-aarch64/pkg/codegen"
	"github.com/bspt628/minc-aarch64/pkg/lexer"
	"github.com/bspt628/minc-aarch64/pkg/parser"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	dParse  bool
	dTokens bool
	outPath string
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "minccc [file]",
		Short: "minccc compiles a MinC source file to AArch64 assembly",
		Long: `minccc is a MinC-to-AArch64 assembly compiler. It reads a single
source file, parses it, and writes GNU-assembler text for the target
function set to stdout or to the file named by -o.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return compileFile(args[0], out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().BoolVar(&dParse, "dparse", false, "dump the parsed AST instead of compiling")
	rootCmd.Flags().BoolVar(&dTokens, "dtokens", false, "dump the lexer token stream instead of compiling")
	rootCmd.Flags().StringVarP(&outPath, "output", "o", "", "write output to this file instead of stdout")

	return rootCmd
}

func compileFile(filename string, out, errOut io.Writer) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(errOut, "minccc: error reading %s: %v\n", filename, err)
		return err
	}
	source := string(content)

	if dTokens {
		return writeOutput(dumpTokens(source), out)
	}

	prog, err := parseSource(filename, source, errOut)
	if err != nil {
		return err
	}

	if dParse {
		w, closeFn, err := outputWriter(out)
		if err != nil {
			fmt.Fprintf(errOut, "minccc: %v\n", err)
			return err
		}
		defer closeFn()
		ast.NewPrinter(w).PrintProgram(prog)
		return nil
	}

	asmText, err := codegen.TranslateProgram(prog)
	if err != nil {
		fmt.Fprintf(errOut, "minccc: %v\n", err)
		return err
	}
	return writeOutput(asmText, out)
}

func parseSource(filename, source string, errOut io.Writer) (*ast.Program, error) {
	l := lexer.New(source)
	p := parser.New(l)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(errOut, "%s: %s\n", filename, e)
		}
		return nil, fmt.Errorf("minccc: parsing failed with %d errors", len(errs))
	}
	return prog, nil
}

func dumpTokens(source string) string {
	l := lexer.New(source)
	var sb strings.Builder
	for {
		tok := l.NextToken()
		fmt.Fprintf(&sb, "%d:%d\t%s\t%q\n", tok.Line, tok.Column, tok.Type, tok.Literal)
		if tok.Type == lexer.TokenEOF {
			break
		}
	}
	return sb.String()
}

func writeOutput(text string, out io.Writer) error {
	w, closeFn, err := outputWriter(out)
	if err != nil {
		return err
	}
	defer closeFn()
	_, err = io.WriteString(w, text)
	return err
}

// outputWriter returns out itself unless -o was given, in which case it
// opens the named file and returns a close func that closes it.
func outputWriter(out io.Writer) (io.Writer, func(), error) {
	if outPath == "" {
		return out, func() {}, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating %s: %w", outPath, err)
	}
	return f, func() { f.Close() }, nil
}
