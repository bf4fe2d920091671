package codegen

import (
	"bytes"
	"fmt"

	"github.com/bspt628/minc-aarch64/pkg/ast"
	"github.com/bspt628/minc-aarch64/pkg/asm"
)

// TranslateProgram lowers a complete MinC program into AArch64
// GNU-assembler text: the file header, one labeled procedure per
// definition in source order, and the trailing GNU-stack note section.
func TranslateProgram(prog *ast.Program) (string, error) {
	out := &asm.Program{}

	for _, def := range prog.Defs {
		fn, ok := def.(*ast.DefFun)
		if !ok {
			return "", fmt.Errorf("%w: definition node %T", ErrUnsupportedOperator, def)
		}
		asmFn, err := TranslateFunction(fn)
		if err != nil {
			return "", err
		}
		out.Functions = append(out.Functions, asmFn)
	}

	var buf bytes.Buffer
	asm.NewPrinter(&buf).PrintProgram(out)
	return buf.String(), nil
}
