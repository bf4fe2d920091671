// Package env builds the per-function symbol environment that maps
// parameter and local-variable names to frame-pointer-relative offsets.
package env

import "github.com/bspt628/minc-aarch64/pkg/ast"

// SlotSize is the byte size of every frame slot. MinC has a single
// scalar type (long, 8 bytes), so all slots are uniform.
const SlotSize = 8

// Env is an immutable per-function mapping from variable name to a signed
// byte offset relative to the frame pointer (x29). Built once per function
// before any emission; codegen never mutates it.
type Env struct {
	offsets   map[string]int64
	StackSize int64 // 16-byte-aligned total frame size for locals+params
}

// Lookup returns the frame offset for name and whether it was found.
func (e *Env) Lookup(name string) (int64, bool) {
	off, ok := e.offsets[name]
	return off, ok
}

// CollectDecls walks a statement tree and returns the ordered, depth-first,
// left-to-right sequence of locally declared variable names reachable
// without crossing a function boundary. Compound contributes its own
// declarations followed by the recursive union of its substatements'; If
// unions the then-branch with the optional else-branch; While recurses into
// the body; every other variant contributes nothing.
//
// Shadowing is not modeled: if the same name is declared twice, later
// occurrences simply overwrite the earlier slot assignment in Build.
func CollectDecls(stmt ast.Stmt) []string {
	var names []string
	collectDeclsInto(stmt, &names)
	return names
}

func collectDeclsInto(stmt ast.Stmt, names *[]string) {
	switch s := stmt.(type) {
	case *ast.StmtCompound:
		for _, d := range s.Decls {
			*names = append(*names, d.Name)
		}
		for _, sub := range s.Stmts {
			collectDeclsInto(sub, names)
		}
	case *ast.StmtIf:
		collectDeclsInto(s.Then, names)
		if s.Else != nil {
			collectDeclsInto(s.Else, names)
		}
	case *ast.StmtWhile:
		collectDeclsInto(s.Body, names)
	}
}

// Build constructs the environment for a function: parameter names first,
// in declaration order, then local names in CollectDecls order. Starting at
// offset 0, each name decrements the offset by 8 before binding, so slots
// land at -8, -16, -24, ... and the frame size is rounded up to 16 bytes.
func Build(params []ast.Param, body *ast.StmtCompound) *Env {
	e := &Env{offsets: make(map[string]int64)}

	var offset int64
	assign := func(name string) {
		offset -= SlotSize
		e.offsets[name] = offset
	}

	for _, p := range params {
		assign(p.Name)
	}
	for _, name := range CollectDecls(body) {
		assign(name)
	}

	e.StackSize = alignUp(-offset, 16)
	return e
}

func alignUp(n, align int64) int64 {
	if n%align == 0 {
		return n
	}
	return n + (align - n%align)
}
