package codegen

import (
	"strings"
	"testing"

	"github.com/bspt628/minc-aarch64/pkg/lexer"
	"github.com/bspt628/minc-aarch64/pkg/parser"
)

func compile(t *testing.T, src string) string {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	out, err := TranslateProgram(prog)
	if err != nil {
		t.Fatalf("TranslateProgram: %v", err)
	}
	return out
}

func mustContain(t *testing.T, got string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("output missing %q\nfull output:\n%s", w, got)
		}
	}
}

func TestReturnParameter(t *testing.T) {
	out := compile(t, "long f(long x){ return x; }")
	mustContain(t, out,
		"\tsub\tsp, sp, #16\n",
		"\tstr\tx0, [x29, #-8]\n",
		"\tldr\tx0, [x29, #-8]\n",
		"\tb\t.L_epilogue_f\n",
	)
}

func TestReturnSumOfTwoParams(t *testing.T) {
	out := compile(t, "long f(long a, long b){ return a+b; }")
	mustContain(t, out,
		"\tldr\tx0, [x29, #-8]\n",
		"\tmov\tx9, x0\n",
		"\tldr\tx0, [x29, #-16]\n",
		"\tadd\tx0, x9, x0\n",
	)
}

func TestReturnModOfTwoParams(t *testing.T) {
	out := compile(t, "long f(long a, long b){ return a%b; }")
	mustContain(t, out,
		"\tsdiv\tx0, x9, x10\n",
		"\tmul\tx0, x0, x10\n",
		"\tsub\tx0, x9, x0\n",
	)
}

func TestIfElse(t *testing.T) {
	out := compile(t, "long f(long x){ if (x) return 1; else return 2; }")
	mustContain(t, out,
		"\tcmp\tx0, #0\n",
		"\tmov\tx0, #1\n",
		"\tmov\tx0, #2\n",
	)
	if !strings.Contains(out, "b.eq\t.Lelse_1") {
		t.Errorf("expected a b.eq to the else label, got:\n%s", out)
	}
}

func TestWhileUsesCompareBranchPeephole(t *testing.T) {
	out := compile(t, "long f(long n){ long s; s=0; while (s<n) s=s+1; return s; }")
	mustContain(t, out,
		"\tcmp\tx9, x0\n",
		"\tb.ge\t",
	)
	if strings.Contains(out, "\tcset\tx0, lt\n") {
		t.Errorf("while condition should use the compare-branch peephole, not cset:\n%s", out)
	}
}

func TestNineArgumentCall(t *testing.T) {
	out := compile(t, "long f(){ return g(1,2,3,4,5,6,7,8,9); }")
	mustContain(t, out,
		"\tldr\tx0, [sp], #16\n",
		"\tldr\tx7, [sp], #16\n",
		"\tsub\tsp, sp, #16\n",
		"\tbl\tg\n",
		"\tadd\tsp, sp, #16\n",
	)
}
