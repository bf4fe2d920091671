// Package codegen lowers a MinC AST (pkg/ast) into AArch64 assembly
// (pkg/asm), the translator's core: frame layout, expression and
// statement lowering, and the call sequence. Calls follow AAPCS64 for the
// first eight integer arguments (x0..x7) and the x0 return value, with two
// departures: the prologue does not save the link register x30, and each
// call argument beyond the eighth occupies a 16-byte stack slot rather
// than 8 bytes.
package codegen

import (
	"errors"
	"strconv"
)

// ErrUnboundLoopControl is returned when a break or continue statement
// appears outside any enclosing while loop.
var ErrUnboundLoopControl = errors.New("codegen: break or continue outside of loop")

// ErrUnresolvedIdentifier is returned when an Id expression or assignment
// target names a variable not found among the function's parameters or
// declared locals.
var ErrUnresolvedIdentifier = errors.New("codegen: unresolved identifier")

// ErrUnsupportedOperator is returned for operator nodes outside the closed
// set the emitter knows how to lower. With the ast package's closed enums
// this should be unreachable for a well-formed tree; it exists as a
// defensive boundary against malformed input.
var ErrUnsupportedOperator = errors.New("codegen: unsupported operator")

// loopLabels is one entry in the loop-label stack: the targets that a
// break or continue inside the loop body should branch to.
type loopLabels struct {
	breakLabel    string
	continueLabel string
}

// Emitter holds the per-translation state threaded through lowering: the
// label counter and the loop-label stack. A fresh Emitter is created for
// every function, keeping a translation re-entrant and free of global
// mutable state.
type Emitter struct {
	labelCount int
	loops      []loopLabels
}

// NewEmitter returns an Emitter with its label counter at zero and an
// empty loop stack.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// fresh returns a new label of the form .L<prefix>_<k>, unique within this
// Emitter's lifetime.
func (e *Emitter) fresh(prefix string) string {
	e.labelCount++
	return ".L" + prefix + "_" + strconv.Itoa(e.labelCount)
}

// pushLoop enters a new loop scope, recording the labels that break and
// continue should target while lowering its body.
func (e *Emitter) pushLoop(breakLabel, continueLabel string) {
	e.loops = append(e.loops, loopLabels{breakLabel: breakLabel, continueLabel: continueLabel})
}

// popLoop exits the innermost loop scope. Calling popLoop without a
// matching pushLoop is an internal invariant violation and panics.
func (e *Emitter) popLoop() {
	if len(e.loops) == 0 {
		panic("codegen: loop-label stack underflow")
	}
	e.loops = e.loops[:len(e.loops)-1]
}

// currentBreak returns the innermost loop's break target, or
// ErrUnboundLoopControl if no loop is active.
func (e *Emitter) currentBreak() (string, error) {
	if len(e.loops) == 0 {
		return "", ErrUnboundLoopControl
	}
	return e.loops[len(e.loops)-1].breakLabel, nil
}

// currentContinue returns the innermost loop's continue target, or
// ErrUnboundLoopControl if no loop is active.
func (e *Emitter) currentContinue() (string, error) {
	if len(e.loops) == 0 {
		return "", ErrUnboundLoopControl
	}
	return e.loops[len(e.loops)-1].continueLabel, nil
}
