package codegen

import (
	"fmt"

	"github.com/bspt628/minc-aarch64/pkg/ast"
	"github.com/bspt628/minc-aarch64/pkg/asm"
)

// scratchForDepth returns the depth-indexed scratch register: x9 at depth
// 0, x10 at depth 1, ..., saturating at x15 for depth 6 and beyond. x8 is
// never selected; it is reserved by the AAPCS64 as the indirect-result
// register.
func scratchForDepth(depth int) asm.MReg {
	idx := 9 + depth
	if idx > 15 {
		idx = 15
	}
	return asm.MReg(idx)
}

// lowerExpr emits the instructions evaluating e, leaving its 64-bit result
// in x0. depth is the current nesting depth, incremented on every
// recursive descent into an operand.
func (fc *funcCtx) lowerExpr(e ast.Expr, depth int) ([]asm.Instruction, error) {
	switch x := e.(type) {
	case *ast.ExprIntLiteral:
		return []asm.Instruction{asm.MOVi{Rd: asm.X0, Imm: x.Value}}, nil

	case *ast.ExprId:
		off, ok := fc.resolve(x.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnresolvedIdentifier, x.Name)
		}
		return []asm.Instruction{asm.LDR{Rt: asm.X0, Rn: asm.X29, Ofs: off}}, nil

	case *ast.ExprAssign:
		rhs, err := fc.lowerExpr(x.RHS, depth+1)
		if err != nil {
			return nil, err
		}
		off, ok := fc.resolve(x.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnresolvedIdentifier, x.Name)
		}
		out := append(rhs, asm.STR{Rt: asm.X0, Rn: asm.X29, Ofs: off})
		return out, nil

	case *ast.ExprUnary:
		return fc.lowerUnary(x, depth)

	case *ast.ExprBinary:
		return fc.lowerBinary(x, depth)

	case *ast.ExprCall:
		return fc.lowerCall(x, depth)

	default:
		return nil, fmt.Errorf("%w: expression node %T", ErrUnsupportedOperator, e)
	}
}

func (fc *funcCtx) lowerUnary(x *ast.ExprUnary, depth int) ([]asm.Instruction, error) {
	operand, err := fc.lowerExpr(x.Operand, depth+1)
	if err != nil {
		return nil, err
	}
	switch x.Op {
	case ast.OpNeg:
		return append(operand, asm.NEG{Rd: asm.X0, Rn: asm.X0}), nil
	case ast.OpNot:
		return append(operand, asm.CMPi{Rn: asm.X0, Imm: 0}, asm.CSET{Rd: asm.X0, Cond: asm.CondEQ}), nil
	default:
		return nil, fmt.Errorf("%w: unary %v", ErrUnsupportedOperator, x.Op)
	}
}

func (fc *funcCtx) lowerBinary(x *ast.ExprBinary, depth int) ([]asm.Instruction, error) {
	switch x.Op {
	case ast.OpAnd:
		return fc.lowerShortCircuit(x, depth, true)
	case ast.OpOr:
		return fc.lowerShortCircuit(x, depth, false)
	}

	if x.Op.IsComparison() {
		return fc.lowerComparison(x, depth)
	}

	if lit, ok := x.Right.(*ast.ExprIntLiteral); ok {
		switch x.Op {
		case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
			return fc.lowerBinaryLiteralPeephole(x.Op, x.Left, lit, depth)
		}
	}

	return fc.lowerArithmetic(x.Op, x.Left, x.Right, depth)
}

// lowerBinaryLiteralPeephole handles a binary operator whose right operand
// is a literal, skipping the save-to-scratch move that the general scheme
// needs: +/- fold directly into an immediate-form instruction, */÷ load
// the literal into the depth's scratch register first.
func (fc *funcCtx) lowerBinaryLiteralPeephole(op ast.BinaryOp, left ast.Expr, lit *ast.ExprIntLiteral, depth int) ([]asm.Instruction, error) {
	out, err := fc.lowerExpr(left, depth+1)
	if err != nil {
		return nil, err
	}

	switch op {
	case ast.OpAdd:
		return append(out, asm.ADDi{Rd: asm.X0, Rn: asm.X0, Imm: lit.Value}), nil
	case ast.OpSub:
		return append(out, asm.SUBi{Rd: asm.X0, Rn: asm.X0, Imm: lit.Value}), nil
	case ast.OpMul, ast.OpDiv:
		scratch := scratchForDepth(depth)
		out = append(out, asm.MOVi{Rd: scratch, Imm: lit.Value})
		if op == ast.OpMul {
			out = append(out, asm.MUL{Rd: asm.X0, Rn: asm.X0, Rm: scratch})
		} else {
			out = append(out, asm.SDIV{Rd: asm.X0, Rn: asm.X0, Rm: scratch})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: binary %v", ErrUnsupportedOperator, op)
	}
}

// lowerArithmetic implements the general depth-indexed scratch-register
// scheme: evaluate the left operand, save it to the depth's scratch
// register, evaluate the right operand (which may use scratch registers
// at greater depths without disturbing the save), then combine.
func (fc *funcCtx) lowerArithmetic(op ast.BinaryOp, left, right ast.Expr, depth int) ([]asm.Instruction, error) {
	scratch := scratchForDepth(depth)

	out, err := fc.lowerExpr(left, depth+1)
	if err != nil {
		return nil, err
	}
	out = append(out, asm.MOV{Rd: scratch, Rm: asm.X0})

	rhs, err := fc.lowerExpr(right, depth+1)
	if err != nil {
		return nil, err
	}
	out = append(out, rhs...)

	switch op {
	case ast.OpAdd:
		out = append(out, asm.ADD{Rd: asm.X0, Rn: scratch, Rm: asm.X0})
	case ast.OpSub:
		out = append(out, asm.SUB{Rd: asm.X0, Rn: scratch, Rm: asm.X0})
	case ast.OpMul:
		out = append(out, asm.MUL{Rd: asm.X0, Rn: scratch, Rm: asm.X0})
	case ast.OpDiv:
		out = append(out, asm.SDIV{Rd: asm.X0, Rn: scratch, Rm: asm.X0})
	case ast.OpMod:
		divisor := scratchForDepth(depth + 1)
		out = append(out,
			asm.MOV{Rd: divisor, Rm: asm.X0},
			asm.SDIV{Rd: asm.X0, Rn: scratch, Rm: divisor},
			asm.MUL{Rd: asm.X0, Rn: asm.X0, Rm: divisor},
			asm.SUB{Rd: asm.X0, Rn: scratch, Rm: asm.X0},
		)
	default:
		return nil, fmt.Errorf("%w: binary %v", ErrUnsupportedOperator, op)
	}
	return out, nil
}

func (fc *funcCtx) lowerComparison(x *ast.ExprBinary, depth int) ([]asm.Instruction, error) {
	scratch := scratchForDepth(depth)

	out, err := fc.lowerExpr(x.Left, depth+1)
	if err != nil {
		return nil, err
	}
	out = append(out, asm.MOV{Rd: scratch, Rm: asm.X0})

	rhs, err := fc.lowerExpr(x.Right, depth+1)
	if err != nil {
		return nil, err
	}
	out = append(out, rhs...)

	cc, err := condCodeFor(x.Op)
	if err != nil {
		return nil, err
	}
	out = append(out, asm.CMP{Rn: scratch, Rm: asm.X0}, asm.CSET{Rd: asm.X0, Cond: cc})
	return out, nil
}

// condCodeFor maps a comparison BinaryOp to its direct AArch64 condition
// code (the sense used by cset when the left operand was compared first).
func condCodeFor(op ast.BinaryOp) (asm.CondCode, error) {
	switch op {
	case ast.OpEq:
		return asm.CondEQ, nil
	case ast.OpNe:
		return asm.CondNE, nil
	case ast.OpLt:
		return asm.CondLT, nil
	case ast.OpLe:
		return asm.CondLE, nil
	case ast.OpGt:
		return asm.CondGT, nil
	case ast.OpGe:
		return asm.CondGE, nil
	default:
		return 0, fmt.Errorf("%w: comparison %v", ErrUnsupportedOperator, op)
	}
}

// invertedCondCodeFor maps a comparison BinaryOp to the condition code that
// branches when the comparison is FALSE, used by the while-loop
// compare-branch peephole to jump straight to the loop's end label.
func invertedCondCodeFor(op ast.BinaryOp) (asm.CondCode, error) {
	switch op {
	case ast.OpEq:
		return asm.CondNE, nil
	case ast.OpNe:
		return asm.CondEQ, nil
	case ast.OpLt:
		return asm.CondGE, nil
	case ast.OpLe:
		return asm.CondGT, nil
	case ast.OpGt:
		return asm.CondLE, nil
	case ast.OpGe:
		return asm.CondLT, nil
	default:
		return 0, fmt.Errorf("%w: comparison %v", ErrUnsupportedOperator, op)
	}
}

// lowerShortCircuit implements && (isAnd true) and || (isAnd false).
func (fc *funcCtx) lowerShortCircuit(x *ast.ExprBinary, depth int, isAnd bool) ([]asm.Instruction, error) {
	left, err := fc.lowerExpr(x.Left, depth+1)
	if err != nil {
		return nil, err
	}
	right, err := fc.lowerExpr(x.Right, depth+1)
	if err != nil {
		return nil, err
	}

	var out []asm.Instruction
	if isAnd {
		falseLabel := fc.emit.fresh("and_false")
		endLabel := fc.emit.fresh("and_end")
		out = append(out, left...)
		out = append(out, asm.CMPi{Rn: asm.X0, Imm: 0}, asm.Bcond{Cond: asm.CondEQ, Target: falseLabel})
		out = append(out, right...)
		out = append(out, asm.CMPi{Rn: asm.X0, Imm: 0}, asm.Bcond{Cond: asm.CondEQ, Target: falseLabel})
		out = append(out, asm.MOVi{Rd: asm.X0, Imm: 1}, asm.B{Target: endLabel})
		out = append(out, asm.LabelDef{Name: falseLabel})
		out = append(out, asm.MOVi{Rd: asm.X0, Imm: 0})
		out = append(out, asm.LabelDef{Name: endLabel})
		return out, nil
	}

	trueLabel := fc.emit.fresh("or_true")
	endLabel := fc.emit.fresh("or_end")
	out = append(out, left...)
	out = append(out, asm.CMPi{Rn: asm.X0, Imm: 0}, asm.Bcond{Cond: asm.CondNE, Target: trueLabel})
	out = append(out, right...)
	out = append(out, asm.CMPi{Rn: asm.X0, Imm: 0}, asm.Bcond{Cond: asm.CondNE, Target: trueLabel})
	out = append(out, asm.MOVi{Rd: asm.X0, Imm: 0}, asm.B{Target: endLabel})
	out = append(out, asm.LabelDef{Name: trueLabel})
	out = append(out, asm.MOVi{Rd: asm.X0, Imm: 1})
	out = append(out, asm.LabelDef{Name: endLabel})
	return out, nil
}

// lowerCall lowers a function call: arguments right-to-left onto a
// 16-byte-aligned push stack, then popped into x0..x7 for the first eight,
// with any surplus left resident on the stack (padded to 16 bytes each)
// for the callee to find above sp at the point of the call.
func (fc *funcCtx) lowerCall(x *ast.ExprCall, depth int) ([]asm.Instruction, error) {
	var out []asm.Instruction

	for i := len(x.Args) - 1; i >= 0; i-- {
		arg, err := fc.lowerExpr(x.Args[i], depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, arg...)
		out = append(out, asm.STRpre{Rt: asm.X0, Rn: asm.SP, Ofs: -16})
	}

	regArgs := len(x.Args)
	if regArgs > maxStackParams {
		regArgs = maxStackParams
	}
	for k := 0; k < regArgs; k++ {
		out = append(out, asm.LDRpost{Rt: asm.MReg(k), Rn: asm.SP, Ofs: 16})
	}

	surplus := len(x.Args) - maxStackParams
	if surplus > 0 {
		out = append(out, asm.SUBi{Rd: asm.SP, Rn: asm.SP, Imm: int64(16 * surplus)})
	}

	out = append(out, fc.callInstruction(x.Callee)...)

	if surplus > 0 {
		out = append(out, asm.ADDi{Rd: asm.SP, Rn: asm.SP, Imm: int64(16 * surplus)})
	}

	return out, nil
}

func (fc *funcCtx) callInstruction(callee string) []asm.Instruction {
	return []asm.Instruction{asm.BL{Target: callee}}
}
