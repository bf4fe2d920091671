package asm

import (
	"fmt"
	"io"
)

// Printer renders a Program as GNU-assembler text for the AArch64 Linux
// target.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a new assembly printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintProgram outputs the full translation unit: the GNU-as file header,
// every function block in order, and the trailing GNU-stack note section.
func (p *Printer) PrintProgram(prog *Program) {
	fmt.Fprintf(p.w, "\t.arch\tarmv8-a\n")
	fmt.Fprintf(p.w, "\t.text\n")
	fmt.Fprintf(p.w, "\t.align\t2\n")
	for _, f := range prog.Functions {
		p.PrintFunction(f)
	}
	fmt.Fprintf(p.w, "\t.section\t.note.GNU-stack,\"\",@progbits\n")
}

// PrintFunction outputs one function's symbol declaration, CFI markers,
// body, and size directive.
func (p *Printer) PrintFunction(f *Function) {
	fmt.Fprintf(p.w, "\t.global\t%s\n", f.Name)
	fmt.Fprintf(p.w, "\t.type\t%s, %%function\n", f.Name)
	fmt.Fprintf(p.w, "%s:\n", f.Name)
	fmt.Fprintf(p.w, "\t.cfi_startproc\n")

	for _, inst := range f.Code {
		p.PrintInstruction(inst)
	}

	fmt.Fprintf(p.w, "\t.cfi_endproc\n")
	fmt.Fprintf(p.w, "\t.size\t%s, .-%s\n", f.Name, f.Name)
	fmt.Fprintf(p.w, "\n")
}

// PrintInstruction outputs a single instruction's GNU-as text form.
func (p *Printer) PrintInstruction(inst Instruction) {
	switch i := inst.(type) {
	case LabelDef:
		fmt.Fprintf(p.w, "%s:\n", i.Name)

	case ADD:
		fmt.Fprintf(p.w, "\tadd\t%s, %s, %s\n", i.Rd, i.Rn, i.Rm)
	case ADDi:
		fmt.Fprintf(p.w, "\tadd\t%s, %s, #%d\n", i.Rd, i.Rn, i.Imm)
	case SUB:
		fmt.Fprintf(p.w, "\tsub\t%s, %s, %s\n", i.Rd, i.Rn, i.Rm)
	case SUBi:
		fmt.Fprintf(p.w, "\tsub\t%s, %s, #%d\n", i.Rd, i.Rn, i.Imm)
	case MUL:
		fmt.Fprintf(p.w, "\tmul\t%s, %s, %s\n", i.Rd, i.Rn, i.Rm)
	case SDIV:
		fmt.Fprintf(p.w, "\tsdiv\t%s, %s, %s\n", i.Rd, i.Rn, i.Rm)
	case NEG:
		fmt.Fprintf(p.w, "\tneg\t%s, %s\n", i.Rd, i.Rn)

	case LDR:
		if i.Ofs == 0 {
			fmt.Fprintf(p.w, "\tldr\t%s, [%s]\n", i.Rt, i.Rn)
		} else {
			fmt.Fprintf(p.w, "\tldr\t%s, [%s, #%d]\n", i.Rt, i.Rn, i.Ofs)
		}
	case STR:
		if i.Ofs == 0 {
			fmt.Fprintf(p.w, "\tstr\t%s, [%s]\n", i.Rt, i.Rn)
		} else {
			fmt.Fprintf(p.w, "\tstr\t%s, [%s, #%d]\n", i.Rt, i.Rn, i.Ofs)
		}
	case STRpre:
		fmt.Fprintf(p.w, "\tstr\t%s, [%s, #%d]!\n", i.Rt, i.Rn, i.Ofs)
	case LDRpost:
		fmt.Fprintf(p.w, "\tldr\t%s, [%s], #%d\n", i.Rt, i.Rn, i.Ofs)

	case B:
		fmt.Fprintf(p.w, "\tb\t%s\n", i.Target)
	case BL:
		fmt.Fprintf(p.w, "\tbl\t%s\n", i.Target)
	case BLR:
		fmt.Fprintf(p.w, "\tblr\t%s\n", i.Rn)
	case RET:
		fmt.Fprintf(p.w, "\tret\n")
	case Bcond:
		fmt.Fprintf(p.w, "\tb.%s\t%s\n", i.Cond, i.Target)

	case CMP:
		fmt.Fprintf(p.w, "\tcmp\t%s, %s\n", i.Rn, i.Rm)
	case CMPi:
		fmt.Fprintf(p.w, "\tcmp\t%s, #%d\n", i.Rn, i.Imm)
	case CSET:
		fmt.Fprintf(p.w, "\tcset\t%s, %s\n", i.Rd, i.Cond)

	case MOV:
		fmt.Fprintf(p.w, "\tmov\t%s, %s\n", i.Rd, i.Rm)
	case MOVi:
		fmt.Fprintf(p.w, "\tmov\t%s, #%d\n", i.Rd, i.Imm)
	case MOVZ:
		if i.Shift == 0 {
			fmt.Fprintf(p.w, "\tmovz\t%s, #%d\n", i.Rd, i.Imm)
		} else {
			fmt.Fprintf(p.w, "\tmovz\t%s, #%d, lsl #%d\n", i.Rd, i.Imm, i.Shift)
		}
	case MOVK:
		if i.Shift == 0 {
			fmt.Fprintf(p.w, "\tmovk\t%s, #%d\n", i.Rd, i.Imm)
		} else {
			fmt.Fprintf(p.w, "\tmovk\t%s, #%d, lsl #%d\n", i.Rd, i.Imm, i.Shift)
		}
	case MOVN:
		if i.Shift == 0 {
			fmt.Fprintf(p.w, "\tmovn\t%s, #%d\n", i.Rd, i.Imm)
		} else {
			fmt.Fprintf(p.w, "\tmovn\t%s, #%d, lsl #%d\n", i.Rd, i.Imm, i.Shift)
		}

	default:
		fmt.Fprintf(p.w, "\t// unknown instruction: %T\n", inst)
	}
}
