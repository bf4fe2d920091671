package codegen

import (
	"fmt"

	"github.com/bspt628/minc-aarch64/pkg/ast"
	"github.com/bspt628/minc-aarch64/pkg/asm"
)

// lowerStmt emits the instructions for one statement. It never leaves a
// meaningful value in x0 except as the incidental side effect of an
// expression statement's subtree.
func (fc *funcCtx) lowerStmt(s ast.Stmt) ([]asm.Instruction, error) {
	switch st := s.(type) {
	case *ast.StmtEmpty:
		return nil, nil

	case *ast.StmtExpr:
		return fc.lowerExpr(st.Expr, 0)

	case *ast.StmtReturn:
		out, err := fc.lowerExpr(st.Expr, 0)
		if err != nil {
			return nil, err
		}
		return append(out, asm.B{Target: fc.returnLabel}), nil

	case *ast.StmtBreak:
		target, err := fc.emit.currentBreak()
		if err != nil {
			return nil, err
		}
		return []asm.Instruction{asm.B{Target: target}}, nil

	case *ast.StmtContinue:
		target, err := fc.emit.currentContinue()
		if err != nil {
			return nil, err
		}
		return []asm.Instruction{asm.B{Target: target}}, nil

	case *ast.StmtCompound:
		var out []asm.Instruction
		for _, sub := range st.Stmts {
			instrs, err := fc.lowerStmt(sub)
			if err != nil {
				return nil, err
			}
			out = append(out, instrs...)
		}
		return out, nil

	case *ast.StmtIf:
		return fc.lowerIf(st)

	case *ast.StmtWhile:
		return fc.lowerWhile(st)

	default:
		return nil, fmt.Errorf("%w: statement node %T", ErrUnsupportedOperator, s)
	}
}

func (fc *funcCtx) lowerIf(st *ast.StmtIf) ([]asm.Instruction, error) {
	elseLabel := fc.emit.fresh("else")
	endLabel := fc.emit.fresh("endif")

	cond, err := fc.lowerExpr(st.Cond, 0)
	if err != nil {
		return nil, err
	}
	then, err := fc.lowerStmt(st.Then)
	if err != nil {
		return nil, err
	}

	var els []asm.Instruction
	if st.Else != nil {
		els, err = fc.lowerStmt(st.Else)
		if err != nil {
			return nil, err
		}
	}

	var out []asm.Instruction
	out = append(out, cond...)
	out = append(out, asm.CMPi{Rn: asm.X0, Imm: 0}, asm.Bcond{Cond: asm.CondEQ, Target: elseLabel})
	out = append(out, then...)
	out = append(out, asm.B{Target: endLabel})
	out = append(out, asm.LabelDef{Name: elseLabel})
	out = append(out, els...)
	out = append(out, asm.LabelDef{Name: endLabel})
	return out, nil
}

func (fc *funcCtx) lowerWhile(st *ast.StmtWhile) ([]asm.Instruction, error) {
	loopLabel := fc.emit.fresh("while")
	endLabel := fc.emit.fresh("while_end")

	fc.emit.pushLoop(endLabel, loopLabel)
	body, err := fc.lowerStmt(st.Body)
	fc.emit.popLoop()
	if err != nil {
		return nil, err
	}

	cond, err := fc.lowerWhileCond(st.Cond, endLabel)
	if err != nil {
		return nil, err
	}

	var out []asm.Instruction
	out = append(out, asm.LabelDef{Name: loopLabel})
	out = append(out, cond...)
	out = append(out, body...)
	out = append(out, asm.B{Target: loopLabel})
	out = append(out, asm.LabelDef{Name: endLabel})
	return out, nil
}

// lowerWhileCond applies the compare-branch peephole: a top-level
// comparison condition is lowered straight to flags and an inverted
// conditional branch to endLabel, skipping the cset+cmp-against-zero
// round trip a general expression would need.
func (fc *funcCtx) lowerWhileCond(cond ast.Expr, endLabel string) ([]asm.Instruction, error) {
	if bin, ok := cond.(*ast.ExprBinary); ok && bin.Op.IsComparison() {
		scratch := scratchForDepth(0)

		left, err := fc.lowerExpr(bin.Left, 1)
		if err != nil {
			return nil, err
		}
		right, err := fc.lowerExpr(bin.Right, 1)
		if err != nil {
			return nil, err
		}
		inverted, err := invertedCondCodeFor(bin.Op)
		if err != nil {
			return nil, err
		}

		var out []asm.Instruction
		out = append(out, left...)
		out = append(out, asm.MOV{Rd: scratch, Rm: asm.X0})
		out = append(out, right...)
		out = append(out, asm.CMP{Rn: scratch, Rm: asm.X0}, asm.Bcond{Cond: inverted, Target: endLabel})
		return out, nil
	}

	general, err := fc.lowerExpr(cond, 0)
	if err != nil {
		return nil, err
	}
	return append(general, asm.CMPi{Rn: asm.X0, Imm: 0}, asm.Bcond{Cond: asm.CondEQ, Target: endLabel}), nil
}
