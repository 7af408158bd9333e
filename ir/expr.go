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

	"github.com/pkg/errors"
	"github.com/gx-org/backend/shape"

	"github.com/gx-org/tensorir/base/stringseq"
	"github.com/gx-org/tensorir/fmterr"
)

var (
	_ Expr = (*Constant)(nil)
	_ Expr = (*TupleExpr)(nil)
	_ Expr = (*TupleGetExpr)(nil)
	_ Expr = (*CallExpr)(nil)
	_ Expr = (*IfExpr)(nil)
	_ Expr = (*ExternFunc)(nil)
	_ Expr = (*GlobalVar)(nil)
)

// Constant is a literal tensor value.
type Constant struct {
	exprNode
	sh   *shape.Shape
	data []byte
}

// NewConstant returns a literal tensor value. The data is the raw host
// representation of the value in row-major order: its size must match the
// byte size of the shape.
func NewConstant(sh *shape.Shape, data []byte, span fmterr.Span) (*Constant, error) {
	if sh == nil {
		return nil, errors.Errorf("constant requires a shape")
	}
	dims := make([]DimExpr, len(sh.AxisLengths))
	for i, axis := range sh.AxisLengths {
		dim, err := NewDimConst(int64(axis))
		if err != nil {
			return nil, fmterr.Errorf(span, "invalid constant axis %d: %v", i, err)
		}
		dims[i] = dim
	}
	if len(data) != sh.ByteSize() {
		return nil, fmterr.Errorf(span, "buffer size is %d but the shape specifies a buffer size of %d", len(data), sh.ByteSize())
	}
	c := &Constant{sh: sh, data: data}
	c.span = span
	c.typ = &DynTensorType{NDim: len(sh.AxisLengths), DType: sh.DType}
	c.shp = NewShapeExpr(dims, span)
	return c, nil
}

// ArrayShape returns the concrete array shape of the constant.
func (c *Constant) ArrayShape() *shape.Shape { return c.sh }

// Data returns the raw host representation of the constant value.
// The returned slice is shared: callers must not modify it.
func (c *Constant) Data() []byte { return c.data }

// String representation of the constant.
func (c *Constant) String() string {
	return "const " + DTypeString(c.sh.DType) + c.shp.String()
}

// TupleExpr groups a fixed number of expressions into one value.
type TupleExpr struct {
	exprNode
	elems []Expr
}

// NewTuple groups expressions into a tuple. If the type of every element
// has already been resolved, the tuple type is resolved as well.
func NewTuple(elems []Expr, span fmterr.Span) *TupleExpr {
	t := &TupleExpr{elems: slices.Clone(elems)}
	t.span = span
	fields := make([]Type, len(elems))
	for i, elem := range elems {
		if elem == nil || elem.CheckedType() == nil {
			return t
		}
		fields[i] = elem.CheckedType()
	}
	t.typ = &TupleType{Fields: fields}
	return t
}

// Elements returns the expressions grouped by the tuple. The returned
// slice is shared: callers must not modify it.
func (t *TupleExpr) Elements() []Expr { return t.elems }

// String representation of the tuple.
func (t *TupleExpr) String() string {
	return "(" + stringseq.JoinFunc(t.elems, ", ", exprString) + ")"
}

// TupleGetExpr projects one element out of a tuple value.
type TupleGetExpr struct {
	exprNode
	tuple Expr
	index int
}

// NewTupleGet projects the index-th element of a tuple value.
// If the tuple type is already resolved, the index is checked against the
// number of fields immediately.
func NewTupleGet(tuple Expr, index int, span fmterr.Span) (*TupleGetExpr, error) {
	if tuple == nil {
		return nil, errors.Errorf("tuple projection requires a tuple expression")
	}
	if index < 0 {
		return nil, fmterr.Errorf(span, "tuple index %d must not be negative", index)
	}
	t := &TupleGetExpr{tuple: tuple, index: index}
	t.span = span
	if tupleT, ok := tuple.CheckedType().(*TupleType); ok {
		if index >= len(tupleT.Fields) {
			return nil, fmterr.Errorf(span, "tuple index %d out of range for type %s", index, tupleT)
		}
		t.typ = tupleT.Fields[index]
	}
	return t, nil
}

// Tuple returns the expression being projected.
func (t *TupleGetExpr) Tuple() Expr { return t.tuple }

// Index returns the projected element index.
func (t *TupleGetExpr) Index() int { return t.index }

// String representation of the projection.
func (t *TupleGetExpr) String() string {
	return fmt.Sprintf("%s.%d", exprString(t.tuple), t.index)
}

// CallExpr applies a callable value to arguments.
type CallExpr struct {
	exprNode
	callee    Expr
	args      []Expr
	effectful bool
}

// NewCall returns a call with no observable side effects.
func NewCall(callee Expr, args []Expr, span fmterr.Span) *CallExpr {
	c := &CallExpr{callee: callee, args: slices.Clone(args)}
	c.span = span
	return c
}

// NewEffectfulCall returns a call flagged by the producer as having
// observable side effects. Such a call cannot appear inside a dataflow
// block.
func NewEffectfulCall(callee Expr, args []Expr, span fmterr.Span) *CallExpr {
	c := NewCall(callee, args, span)
	c.effectful = true
	return c
}

// Callee returns the expression being called.
func (c *CallExpr) Callee() Expr { return c.callee }

// Args returns the call arguments. The returned slice is shared:
// callers must not modify it.
func (c *CallExpr) Args() []Expr { return c.args }

// Effectful returns true if the producer flagged the call as having
// observable side effects.
func (c *CallExpr) Effectful() bool { return c.effectful }

// String representation of the call.
func (c *CallExpr) String() string {
	return exprString(c.callee) + "(" + stringseq.JoinFunc(c.args, ", ", exprString) + ")"
}

// IfExpr evaluates one of two branches depending on a condition.
// It is the only control flow construct of the tree and cannot appear
// inside a dataflow block.
type IfExpr struct {
	exprNode
	cond Expr
	then Expr
	els  Expr
}

// NewIf returns a conditional expression.
func NewIf(cond, then, els Expr, span fmterr.Span) *IfExpr {
	x := &IfExpr{cond: cond, then: then, els: els}
	x.span = span
	return x
}

// Cond returns the condition of the branch.
func (x *IfExpr) Cond() Expr { return x.cond }

// Then returns the expression evaluated when the condition holds.
func (x *IfExpr) Then() Expr { return x.then }

// Else returns the expression evaluated when the condition does not hold.
func (x *IfExpr) Else() Expr { return x.els }

// String representation of the conditional.
func (x *IfExpr) String() string {
	return fmt.Sprintf("if %s { %s } else { %s }", exprString(x.cond), exprString(x.then), exprString(x.els))
}

// ExternFunc is an opaque function implemented outside of the IR,
// identified only by a global symbol. It has no body to validate: arity
// and effects are a contract established by whatever registers the symbol.
type ExternFunc struct {
	exprNode
	symbol string
}

// NewExternFunc returns a reference to an external function.
func NewExternFunc(symbol string, span fmterr.Span) (*ExternFunc, error) {
	if symbol == "" {
		return nil, errors.Errorf("external function requires a global symbol")
	}
	f := &ExternFunc{symbol: symbol}
	f.span = span
	f.typ = &PackedFuncType{}
	return f, nil
}

// GlobalSymbol returns the symbol resolving to the implementation.
func (f *ExternFunc) GlobalSymbol() string { return f.symbol }

// Call builds a call to the external function. The call has no observable
// side effects: use NewEffectfulCall for symbols known to have some.
func (f *ExternFunc) Call(args []Expr, span fmterr.Span) *CallExpr {
	return NewCall(f, args, span)
}

// String representation of the reference.
func (f *ExternFunc) String() string {
	return fmt.Sprintf("extern(%q)", f.symbol)
}

// GlobalVar is a reference to a module-level function by its global
// symbol. It resolves against the enclosing Module.
type GlobalVar struct {
	exprNode
	symbol string
}

// NewGlobalVar returns a reference to a module-level function.
func NewGlobalVar(symbol string, span fmterr.Span) (*GlobalVar, error) {
	if symbol == "" {
		return nil, errors.Errorf("global reference requires a symbol")
	}
	v := &GlobalVar{symbol: symbol}
	v.span = span
	return v, nil
}

// Symbol returns the name of the referenced function.
func (v *GlobalVar) Symbol() string { return v.symbol }

// String representation of the reference.
func (v *GlobalVar) String() string { return "@" + v.symbol }

func exprString(x Expr) string {
	if x == nil {
		return "<nil>"
	}
	return x.String()
}
