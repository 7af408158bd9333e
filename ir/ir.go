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

// Package ir is the Intermediate Representation (IR) tree for tensor
// computation graphs.
//
// The tree is a static single assignment dataflow form: a function body is
// a sequence of binding blocks, each binding defining a variable consumed
// by later bindings or by the trailing result expression. Blocks marked as
// dataflow blocks are guaranteed free of side effects and control flow, so
// that passes may reorder or fuse their bindings. Tensor shapes are
// symbolic: a shape is a sequence of dimension expressions whose symbols
// are resolved at run time by shape matching.
//
// The tree is built by an external front-end, one constructor at a time,
// and consumed by printers, lowering passes, and execution engines. Nodes
// are immutable once built, except for the type and shape of an expression
// which the inference pass may resolve exactly once.
package ir

import (
	"github.com/pkg/errors"

	"github.com/gx-org/tensorir/fmterr"
)

type (
	// Node in the tree.
	Node interface {
		// node marks a structure as a node structure.
		// It prevents external implementations of the interface.
		// It prevents using arbitrary structure in this package to be used as nodes.
		node()
	}

	// SourceNode is a node with a position in the source processed by the
	// front-end. The zero span means the position is unknown.
	SourceNode interface {
		Node
		Span() fmterr.Span
	}

	// Expr is an expression node producing a value.
	Expr interface {
		SourceNode

		// CheckedType returns the static type of the expression,
		// or nil if it has not been resolved yet.
		CheckedType() Type

		// Shape returns the shape of the expression value,
		// or nil if it has not been resolved yet.
		Shape() Expr

		// String representation of the expression.
		String() string

		expr()
	}
)

// srcNode is the state shared by nodes that are not expressions:
// the source span reported by the front-end.
type srcNode struct {
	span fmterr.Span
}

func (n *srcNode) node() {}

// Span returns the source position of the node.
func (n *srcNode) Span() fmterr.Span { return n.span }

// exprNode is the state shared by all expressions: the source span and the
// type and shape slots resolved by the inference pass.
type exprNode struct {
	span fmterr.Span
	typ  Type
	shp  Expr
}

func (n *exprNode) node() {}
func (n *exprNode) expr() {}

// Span returns the source position of the expression.
func (n *exprNode) Span() fmterr.Span { return n.span }

// CheckedType returns the resolved type of the expression, nil before inference.
func (n *exprNode) CheckedType() Type { return n.typ }

// Shape returns the resolved shape of the expression, nil before inference.
func (n *exprNode) Shape() Expr { return n.shp }

func (n *exprNode) backfillType(t Type) error {
	if t == nil {
		return fmterr.Errorf(n.span, "cannot resolve an expression type to nil")
	}
	if n.typ == nil {
		n.typ = t
		return nil
	}
	if n.typ.Equal(t) {
		return nil
	}
	return fmterr.Errorf(n.span, "type already resolved to %s: cannot resolve it to %s", n.typ, t)
}

func (n *exprNode) backfillShape(s Expr) error {
	if s == nil {
		return fmterr.Errorf(n.span, "cannot resolve an expression shape to nil")
	}
	if n.shp == nil {
		n.shp = s
		return nil
	}
	if n.shp.String() == s.String() {
		return nil
	}
	return fmterr.Errorf(n.span, "shape already resolved to %s: cannot resolve it to %s", n.shp, s)
}

type backfiller interface {
	backfillType(Type) error
	backfillShape(Expr) error
}

// UpdateType resolves the static type of an expression. It is reserved to
// the inference pass: a type is resolved at most once. Resolving to an
// equal type again is a no-op; resolving to a different type is an error.
func UpdateType(x Expr, t Type) error {
	if x == nil {
		return errors.Errorf("cannot update the type of a nil expression")
	}
	bf, ok := x.(backfiller)
	if !ok {
		return fmterr.Internal(errors.Errorf("expression %T does not support type resolution", x))
	}
	return bf.backfillType(t)
}

// UpdateShape resolves the shape of an expression. It is reserved to the
// inference pass: a shape is resolved at most once. Resolving to an
// equivalent shape again is a no-op; resolving to a different shape is an
// error.
func UpdateShape(x Expr, s Expr) error {
	if x == nil {
		return errors.Errorf("cannot update the shape of a nil expression")
	}
	bf, ok := x.(backfiller)
	if !ok {
		return fmterr.Internal(errors.Errorf("expression %T does not support shape resolution", x))
	}
	return bf.backfillShape(s)
}
