package codegen

import "testing"

func TestFreshLabelsAreUnique(t *testing.T) {
	e := NewEmitter()
	a := e.fresh("if")
	b := e.fresh("if")
	if a == b {
		t.Fatalf("fresh labels collided: %q == %q", a, b)
	}
	if a != ".Lif_1" {
		t.Errorf("got %q, want %q", a, ".Lif_1")
	}
	if b != ".Lif_2" {
		t.Errorf("got %q, want %q", b, ".Lif_2")
	}
}

func TestLoopStackPushPop(t *testing.T) {
	e := NewEmitter()
	if _, err := e.currentBreak(); err != ErrUnboundLoopControl {
		t.Fatalf("expected ErrUnboundLoopControl, got %v", err)
	}

	e.pushLoop(".Lend", ".Lloop")
	brk, err := e.currentBreak()
	if err != nil || brk != ".Lend" {
		t.Fatalf("currentBreak() = %q, %v", brk, err)
	}
	cont, err := e.currentContinue()
	if err != nil || cont != ".Lloop" {
		t.Fatalf("currentContinue() = %q, %v", cont, err)
	}

	e.popLoop()
	if _, err := e.currentBreak(); err != ErrUnboundLoopControl {
		t.Fatalf("expected ErrUnboundLoopControl after pop, got %v", err)
	}
}

func TestPopLoopUnderflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected popLoop on empty stack to panic")
		}
	}()
	NewEmitter().popLoop()
}

func TestNestedLoopsRestorePreviousTargets(t *testing.T) {
	e := NewEmitter()
	e.pushLoop(".Louter_end", ".Louter_loop")
	e.pushLoop(".Linner_end", ".Linner_loop")

	brk, _ := e.currentBreak()
	if brk != ".Linner_end" {
		t.Errorf("innermost break = %q, want %q", brk, ".Linner_end")
	}

	e.popLoop()
	brk, _ = e.currentBreak()
	if brk != ".Louter_end" {
		t.Errorf("after pop, break = %q, want %q", brk, ".Louter_end")
	}
}
