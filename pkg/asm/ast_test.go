package asm

import "testing"

func TestCondCodeString(t *testing.T) {
	tests := []struct {
		cond CondCode
		want string
	}{
		{CondEQ, "eq"},
		{CondNE, "ne"},
		{CondLT, "lt"},
		{CondLE, "le"},
		{CondGT, "gt"},
		{CondGE, "ge"},
		{CondCode(100), "?"},
	}
	for _, tt := range tests {
		if got := tt.cond.String(); got != tt.want {
			t.Errorf("CondCode(%d).String() = %q, want %q", tt.cond, got, tt.want)
		}
	}
}

func TestRegisterString(t *testing.T) {
	tests := []struct {
		reg  MReg
		want string
	}{
		{X0, "x0"},
		{X9, "x9"},
		{X29, "x29"},
		{X30, "x30"},
		{SP, "sp"},
	}
	for _, tt := range tests {
		if got := tt.reg.String(); got != tt.want {
			t.Errorf("MReg(%d).String() = %q, want %q", tt.reg, got, tt.want)
		}
	}
}

func TestInstructionInterface(t *testing.T) {
	var _ Instruction = ADD{}
	var _ Instruction = ADDi{}
	var _ Instruction = SUB{}
	var _ Instruction = SUBi{}
	var _ Instruction = MUL{}
	var _ Instruction = SDIV{}
	var _ Instruction = NEG{}
	var _ Instruction = CMP{}
	var _ Instruction = CMPi{}
	var _ Instruction = CSET{}
	var _ Instruction = MOV{}
	var _ Instruction = MOVi{}
	var _ Instruction = MOVZ{}
	var _ Instruction = MOVK{}
	var _ Instruction = MOVN{}
	var _ Instruction = LDR{}
	var _ Instruction = STR{}
	var _ Instruction = STRpre{}
	var _ Instruction = LDRpost{}
	var _ Instruction = B{}
	var _ Instruction = BL{}
	var _ Instruction = BLR{}
	var _ Instruction = RET{}
	var _ Instruction = Bcond{}
	var _ Instruction = LabelDef{}
}

func TestFunctionAppend(t *testing.T) {
	f := NewFunction("add")
	f.Append(ADDi{Rd: X0, Rn: X0, Imm: 1})
	f.AppendLabel(".L0")
	f.Append(RET{})

	if len(f.Code) != 3 {
		t.Fatalf("len(f.Code) = %d, want 3", len(f.Code))
	}
	if _, ok := f.Code[1].(LabelDef); !ok {
		t.Errorf("f.Code[1] = %T, want LabelDef", f.Code[1])
	}
}
