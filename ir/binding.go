// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ir

import (
	"fmt"
	"slices"

	"github.com/gx-org/tensorir/fmterr"
)

type (
	// Binding defines a variable from the value of an expression.
	// It is either a *VarBinding or a *MatchShape.
	Binding interface {
		SourceNode

		// Target returns the variable defined by the binding, or nil for
		// a MatchShape introducing dimension symbols only.
		Target() VarNode

		// String representation of the binding.
		String() string

		binding()
	}

	// VarBinding binds a variable to the value of an expression.
	VarBinding struct {
		srcNode
		v     VarNode
		value Expr
	}

	// MatchShape evaluates an expression, matches its run-time shape
	// against a pattern of dimension terms, and binds a variable to the
	// value. The first occurrence of a free symbol in the pattern binds
	// the symbol for the rest of the pattern and of the function; any
	// other term must evaluate equal to the corresponding axis, checked
	// at run time. The variable may be nil when the binding introduces
	// dimension symbols only.
	MatchShape struct {
		srcNode
		value   Expr
		pattern []DimExpr
		v       VarNode
	}
)

var (
	_ Binding = (*VarBinding)(nil)
	_ Binding = (*MatchShape)(nil)
)

// NewVarBinding binds a variable to the value of an expression.
func NewVarBinding(v VarNode, value Expr, span fmterr.Span) *VarBinding {
	b := &VarBinding{v: v, value: value}
	b.span = span
	return b
}

func (*VarBinding) binding() {}

// Target returns the variable defined by the binding.
func (b *VarBinding) Target() VarNode { return b.v }

// Value returns the expression bound to the variable.
func (b *VarBinding) Value() Expr { return b.value }

// String representation of the binding.
func (b *VarBinding) String() string {
	target := "<nil>"
	if b.v != nil {
		target = b.v.NameHint()
	}
	return target + " = " + exprString(b.value)
}

// NewMatchShape matches the run-time shape of value against a pattern of
// dimension terms, binding v to the value. v may be nil.
func NewMatchShape(value Expr, pattern []DimExpr, v VarNode, span fmterr.Span) *MatchShape {
	b := &MatchShape{value: value, pattern: slices.Clone(pattern), v: v}
	b.span = span
	return b
}

func (*MatchShape) binding() {}

// Target returns the variable defined by the binding, nil if the binding
// introduces dimension symbols only.
func (b *MatchShape) Target() VarNode { return b.v }

// Value returns the expression whose shape is matched.
func (b *MatchShape) Value() Expr { return b.value }

// Pattern returns the dimension terms matched against the shape of the
// value. The returned slice is shared: callers must not modify it.
func (b *MatchShape) Pattern() []DimExpr { return b.pattern }

// String representation of the binding.
func (b *MatchShape) String() string {
	match := "match " + exprString(b.value) + " " + dimsString(b.pattern)
	if b.v == nil {
		return match
	}
	return b.v.NameHint() + " = " + match
}

type (
	// Block is an ordered sequence of bindings: a binding may only
	// reference variables defined by a strictly earlier binding, an
	// earlier block of the same sequence expression, an enclosing scope,
	// or the function parameters. It is either a *BindingBlock or a
	// *DataflowBlock.
	Block interface {
		SourceNode

		// Bindings returns the bindings of the block in program order.
		Bindings() []Binding

		block()
	}

	// BindingBlock is a block whose bindings may contain side effects and
	// control flow.
	BindingBlock struct {
		srcNode
		bindings []Binding
	}

	// DataflowBlock is a block whose bindings are free of side effects
	// and control flow, so that passes may reorder or fuse them.
	DataflowBlock struct {
		BindingBlock
	}
)

var (
	_ Block = (*BindingBlock)(nil)
	_ Block = (*DataflowBlock)(nil)
)

// NewBindingBlock returns a block of bindings evaluated in order.
func NewBindingBlock(bindings []Binding, span fmterr.Span) *BindingBlock {
	b := &BindingBlock{bindings: slices.Clone(bindings)}
	b.span = span
	return b
}

func (*BindingBlock) block() {}

// Bindings returns the bindings of the block in program order.
// The returned slice is shared: callers must not modify it.
func (b *BindingBlock) Bindings() []Binding { return b.bindings }

// NewDataflowBlock returns a block of side-effect free bindings evaluated
// in order.
func NewDataflowBlock(bindings []Binding, span fmterr.Span) *DataflowBlock {
	b := &DataflowBlock{}
	b.bindings = slices.Clone(bindings)
	b.span = span
	return b
}

// SeqExpr evaluates blocks of bindings in order, all extending the same
// scope, then evaluates a trailing expression in the accumulated scope.
// An empty block list is legal: the sequence is then a transparent wrapper
// around its body.
type SeqExpr struct {
	exprNode
	blocks []Block
	body   Expr
}

var _ Expr = (*SeqExpr)(nil)

// NewSeqExpr returns a sequence of binding blocks followed by a result
// expression.
func NewSeqExpr(blocks []Block, body Expr, span fmterr.Span) *SeqExpr {
	s := &SeqExpr{blocks: slices.Clone(blocks), body: body}
	s.span = span
	return s
}

// Blocks returns the binding blocks in evaluation order. The returned
// slice is shared: callers must not modify it.
func (s *SeqExpr) Blocks() []Block { return s.blocks }

// Body returns the result expression of the sequence.
func (s *SeqExpr) Body() Expr { return s.body }

// String representation of the sequence.
func (s *SeqExpr) String() string {
	return fmt.Sprintf("seq(%d blocks; %s)", len(s.blocks), exprString(s.body))
}
