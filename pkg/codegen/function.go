package codegen

import (
	"fmt"

	"github.com/bspt628/minc-aarch64/pkg/ast"
	"github.com/bspt628/minc-aarch64/pkg/asm"
	"github.com/bspt628/minc-aarch64/pkg/env"
)

// maxStackParams is the count of incoming parameters the AAPCS64 passes
// in registers (x0..x7); the rest arrive on the caller's stack.
const maxStackParams = 8

// funcCtx carries the state shared by every lowering call within a single
// function: its environment, frame size, epilogue label, and the emitter
// threading the label counter and loop-label stack.
type funcCtx struct {
	name        string
	env         *env.Env
	overflow    map[string]int64 // params beyond the 8th: positive offsets above the frame
	frameSize   int64
	returnLabel string
	emit        *Emitter
}

// resolve finds name's frame-pointer-relative offset, whether it is a
// spilled parameter/local (negative, from env) or a parameter passed on
// the caller's stack beyond the 8th (positive, from overflow).
func (fc *funcCtx) resolve(name string) (int64, bool) {
	if off, ok := fc.env.Lookup(name); ok {
		return off, true
	}
	off, ok := fc.overflow[name]
	return off, ok
}

// TranslateFunction lowers one function definition into an assembly
// Function: frame setup, parameter spill, body, epilogue.
func TranslateFunction(def *ast.DefFun) (*asm.Function, error) {
	regParams := def.Params
	if len(regParams) > maxStackParams {
		regParams = regParams[:maxStackParams]
	}
	e := env.Build(regParams, def.Body)
	frameSize := e.StackSize
	if frameSize < 16 {
		frameSize = 16
	}

	overflow := make(map[string]int64)
	for i := maxStackParams; i < len(def.Params); i++ {
		// Parameters beyond the 8th never arrive in registers; they
		// stay in the caller's stack-argument area, which sits just
		// above this function's own frame once x29 is pinned to sp.
		overflow[def.Params[i].Name] = frameSize + int64(16*(i-maxStackParams))
	}

	fc := &funcCtx{
		name:        def.Name,
		env:         e,
		overflow:    overflow,
		frameSize:   frameSize,
		returnLabel: ".L_epilogue_" + def.Name,
		emit:        NewEmitter(),
	}

	fn := asm.NewFunction(def.Name)

	fn.Append(asm.SUBi{Rd: asm.SP, Rn: asm.SP, Imm: frameSize})
	fn.Append(asm.MOV{Rd: asm.X29, Rm: asm.SP})

	for i, p := range def.Params {
		if i >= maxStackParams {
			break
		}
		off, ok := e.Lookup(p.Name)
		if !ok {
			return nil, fmt.Errorf("codegen: %w: parameter %q in function %q", ErrUnresolvedIdentifier, p.Name, def.Name)
		}
		fn.Append(asm.STR{Rt: asm.MReg(i), Rn: asm.X29, Ofs: off})
	}

	body, err := fc.lowerStmt(def.Body)
	if err != nil {
		return nil, fmt.Errorf("codegen: in function %q: %w", def.Name, err)
	}
	fn.Append(body...)

	fn.AppendLabel(fc.returnLabel)
	fn.Append(asm.ADDi{Rd: asm.SP, Rn: asm.SP, Imm: frameSize})
	fn.Append(asm.RET{})

	return fn, nil
}
