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
	"slices"
	"strconv"

	"github.com/pkg/errors"

	"github.com/gx-org/tensorir/base/stringseq"
	"github.com/gx-org/tensorir/fmterr"
)

type (
	// DimExpr is a symbolic integer term of a tensor shape, one per axis.
	DimExpr interface {
		Node

		// String representation of the term.
		String() string

		dim()
	}

	// DimConst is a constant axis length.
	DimConst struct {
		val int64
	}

	// DimVar is a named integer symbol, such as a batch size, resolved at
	// run time by shape matching.
	DimVar struct {
		name string
	}

	// DimBinary combines two terms with an arithmetic operator.
	DimBinary struct {
		op   DimOp
		x, y DimExpr
	}
)

var (
	_ DimExpr = (*DimConst)(nil)
	_ DimExpr = (*DimVar)(nil)
	_ DimExpr = (*DimBinary)(nil)
)

// DimOp is an arithmetic operator over dimension terms.
type DimOp int

const (
	// DimAdd adds two terms.
	DimAdd DimOp = iota
	// DimSub subtracts the right term from the left term.
	DimSub
	// DimMul multiplies two terms.
	DimMul
	// DimDiv divides the left term by the right term.
	DimDiv
)

// String representation of the operator.
func (op DimOp) String() string {
	switch op {
	case DimAdd:
		return "+"
	case DimSub:
		return "-"
	case DimMul:
		return "*"
	case DimDiv:
		return "/"
	default:
		return "?"
	}
}

// NewDimConst returns a constant dimension term.
func NewDimConst(v int64) (*DimConst, error) {
	if v < 0 {
		return nil, errors.Errorf("invalid axis length %d: must not be negative", v)
	}
	return &DimConst{val: v}, nil
}

func (*DimConst) node() {}
func (*DimConst) dim()  {}

// Value of the axis length.
func (d *DimConst) Value() int64 { return d.val }

// String representation of the term.
func (d *DimConst) String() string { return strconv.FormatInt(d.val, 10) }

// NewDimVar returns a symbolic dimension term.
func NewDimVar(name string) (*DimVar, error) {
	if name == "" {
		return nil, errors.Errorf("dimension symbol requires a name")
	}
	return &DimVar{name: name}, nil
}

func (*DimVar) node() {}
func (*DimVar) dim()  {}

// Name of the symbol.
func (d *DimVar) Name() string { return d.name }

// String representation of the term.
func (d *DimVar) String() string { return d.name }

// NewDimBinary combines two dimension terms with an operator.
func NewDimBinary(op DimOp, x, y DimExpr) (*DimBinary, error) {
	if x == nil || y == nil {
		return nil, errors.Errorf("binary dimension term requires two operands")
	}
	return &DimBinary{op: op, x: x, y: y}, nil
}

func (*DimBinary) node() {}
func (*DimBinary) dim()  {}

// Op is the operator combining the two terms.
func (d *DimBinary) Op() DimOp { return d.op }

// X is the left term.
func (d *DimBinary) X() DimExpr { return d.x }

// Y is the right term.
func (d *DimBinary) Y() DimExpr { return d.y }

// String representation of the term. Composite terms are always
// parenthesized so that distinct trees never share a representation.
func (d *DimBinary) String() string {
	return "(" + d.x.String() + d.op.String() + d.y.String() + ")"
}

// ShapeExpr is a symbolic tensor shape: one dimension term per axis.
// The rank is fixed at construction and the terms cannot be modified.
type ShapeExpr struct {
	exprNode
	dims []DimExpr
}

var _ Expr = (*ShapeExpr)(nil)

// NewShapeExpr returns a shape expression for the given axis terms.
func NewShapeExpr(dims []DimExpr, span fmterr.Span) *ShapeExpr {
	s := &ShapeExpr{dims: slices.Clone(dims)}
	s.span = span
	s.typ = &ShapeType{}
	return s
}

// Rank returns the number of axes.
func (s *ShapeExpr) Rank() int { return len(s.dims) }

// Dims returns all the axis terms. The returned slice is shared:
// callers must not modify it.
func (s *ShapeExpr) Dims() []DimExpr { return s.dims }

// Dim returns the i-th axis term.
// An index outside of [0, Rank()) is an error.
func (s *ShapeExpr) Dim(i int) (DimExpr, error) {
	if i < 0 || i >= len(s.dims) {
		return nil, fmterr.Errorf(s.span, "axis index %d out of range for shape %s of rank %d", i, s, len(s.dims))
	}
	return s.dims[i], nil
}

// String representation of the shape.
func (s *ShapeExpr) String() string {
	return dimsString(s.dims)
}

func dimsString(dims []DimExpr) string {
	return "(" + stringseq.JoinFunc(dims, ", ", dimString) + ")"
}

func dimString(dim DimExpr) string {
	if dim == nil {
		return "<nil>"
	}
	return dim.String()
}

// RuntimeDepShape marks a shape that is only known at run time.
// It carries no terms: consumers must branch on the node variant and
// never assume a rank.
type RuntimeDepShape struct {
	exprNode
}

var _ Expr = (*RuntimeDepShape)(nil)

// NewRuntimeDepShape returns a marker for a shape resolved at run time.
func NewRuntimeDepShape(span fmterr.Span) *RuntimeDepShape {
	s := &RuntimeDepShape{}
	s.span = span
	s.typ = &ShapeType{}
	return s
}

// String representation of the shape.
func (s *RuntimeDepShape) String() string { return "?" }

type (
	// ShapeAnnot is a shape annotation accepted by constructors:
	// a *ShapeExpr, a *RuntimeDepShape, or a plain Dims list,
	// which is promoted to a *ShapeExpr.
	ShapeAnnot interface {
		annotExpr(span fmterr.Span) Expr
	}

	// Dims is a plain ordered list of dimension terms. Used as a shape
	// annotation, it is promoted to a ShapeExpr.
	Dims []DimExpr
)

func (d Dims) annotExpr(span fmterr.Span) Expr { return NewShapeExpr(d, span) }

func (s *ShapeExpr) annotExpr(fmterr.Span) Expr { return s }

func (s *RuntimeDepShape) annotExpr(fmterr.Span) Expr { return s }

func shapeAnnot(annot ShapeAnnot, span fmterr.Span) Expr {
	if annot == nil {
		return nil
	}
	return annot.annotExpr(span)
}
