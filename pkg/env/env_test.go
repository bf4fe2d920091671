package env

import (
	"testing"

	"github.com/bspt628/minc-aarch64/pkg/ast"
)

func TestCollectDeclsFlat(t *testing.T) {
	body := &ast.StmtCompound{
		Decls: []ast.Decl{{Name: "a"}, {Name: "b"}},
	}

	got := CollectDecls(body)
	want := []string{"a", "b"}

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestCollectDeclsNested(t *testing.T) {
	inner := &ast.StmtCompound{Decls: []ast.Decl{{Name: "c"}}}
	body := &ast.StmtCompound{
		Decls: []ast.Decl{{Name: "a"}},
		Stmts: []ast.Stmt{
			&ast.StmtIf{
				Then: inner,
				Else: &ast.StmtCompound{Decls: []ast.Decl{{Name: "d"}}},
			},
			&ast.StmtWhile{
				Body: &ast.StmtCompound{Decls: []ast.Decl{{Name: "e"}}},
			},
		},
	}

	got := CollectDecls(body)
	want := []string{"a", "c", "d", "e"}

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBuildAssignsDescendingOffsets(t *testing.T) {
	params := []ast.Param{{Name: "a"}, {Name: "b"}}
	body := &ast.StmtCompound{Decls: []ast.Decl{{Name: "x"}}}

	e := Build(params, body)

	cases := []struct {
		name string
		want int64
	}{
		{"a", -8},
		{"b", -16},
		{"x", -24},
	}
	for _, c := range cases {
		off, ok := e.Lookup(c.name)
		if !ok {
			t.Fatalf("%s not found in environment", c.name)
		}
		if off != c.want {
			t.Errorf("%s: got offset %d, want %d", c.name, off, c.want)
		}
	}

	if e.StackSize != 32 {
		t.Errorf("StackSize = %d, want 32", e.StackSize)
	}
}

func TestBuildStackSizeRoundsUpTo16(t *testing.T) {
	params := []ast.Param{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	body := &ast.StmtCompound{}

	e := Build(params, body)

	if e.StackSize != 32 {
		t.Errorf("StackSize = %d, want 32", e.StackSize)
	}
}

func TestBuildShadowingOverwritesSlot(t *testing.T) {
	params := []ast.Param{{Name: "x"}}
	body := &ast.StmtCompound{Decls: []ast.Decl{{Name: "x"}}}

	e := Build(params, body)

	off, ok := e.Lookup("x")
	if !ok {
		t.Fatalf("x not found")
	}
	if off != -16 {
		t.Errorf("got offset %d, want -16 (later declaration wins)", off)
	}
}

func TestLookupMissing(t *testing.T) {
	e := Build(nil, &ast.StmtCompound{})
	if _, ok := e.Lookup("nope"); ok {
		t.Errorf("expected missing lookup to fail")
	}
}
