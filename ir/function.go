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

	"github.com/gx-org/tensorir/base/stringseq"
	"github.com/gx-org/tensorir/fmterr"
)

// Function is a callable unit of the tree: parameters, a body sequence
// expression, and the declared result type and shape. The declared result
// is the contract of the function, independent of whatever the body
// infers.
type Function struct {
	exprNode
	params   []*Var
	body     *SeqExpr
	retType  Type
	retShape Expr
	attrs    *Attrs
}

var _ Expr = (*Function)(nil)

// NewFunc returns a function after validating its body: see Validate.
// Construction fails atomically, so no ill-formed function is observable.
func NewFunc(params []*Var, body *SeqExpr, retType Type, retShape ShapeAnnot, attrs *Attrs, span fmterr.Span) (*Function, error) {
	fn := NewFuncUnchecked(params, body, retType, retShape, attrs, span)
	if err := Validate(fn); err != nil {
		return nil, err
	}
	return fn, nil
}

// NewFuncUnchecked returns a function without validating its body.
// It is meant for staged construction by a builder: call Validate once
// the graph is complete.
func NewFuncUnchecked(params []*Var, body *SeqExpr, retType Type, retShape ShapeAnnot, attrs *Attrs, span fmterr.Span) *Function {
	fn := &Function{
		params:   slices.Clone(params),
		body:     body,
		retType:  retType,
		retShape: shapeAnnot(retShape, span),
		attrs:    attrs.Clone(),
	}
	fn.span = span
	fn.typ = funcTypeOf(fn.params, retType)
	return fn
}

// funcTypeOf derives the function type from the signature, or nil if a
// parameter type has not been resolved.
func funcTypeOf(params []*Var, retType Type) Type {
	if retType == nil {
		return nil
	}
	args := make([]Type, len(params))
	for i, param := range params {
		if param == nil || param.CheckedType() == nil {
			return nil
		}
		args[i] = param.CheckedType()
	}
	return &FuncType{ArgTypes: args, RetType: retType}
}

// Params returns the parameters of the function. The returned slice is
// shared: callers must not modify it.
func (f *Function) Params() []*Var { return f.params }

// Body returns the body of the function.
func (f *Function) Body() *SeqExpr { return f.body }

// RetType returns the declared result type, nil when unspecified.
func (f *Function) RetType() Type { return f.retType }

// RetShape returns the declared result shape, nil when unspecified.
func (f *Function) RetShape() Expr { return f.retShape }

// Attrs returns the attributes of the function, nil when it has none.
func (f *Function) Attrs() *Attrs { return f.attrs }

// GlobalSymbol returns the linkage name of the function.
func (f *Function) GlobalSymbol() (string, bool) {
	value, ok := f.attrs.Get(AttrGlobalSymbol)
	if !ok {
		return "", false
	}
	name, ok := value.(string)
	return name, ok
}

// WithAttr returns a copy of the function with an attribute set.
// The function itself is left unchanged.
func (f *Function) WithAttr(key string, value any) *Function {
	nw := *f
	nw.attrs = f.attrs.Clone()
	if nw.attrs == nil {
		nw.attrs = &Attrs{}
	}
	nw.attrs.Append(key, value)
	return &nw
}

// Call builds a call to the function.
func (f *Function) Call(args []Expr, span fmterr.Span) *CallExpr {
	return NewCall(f, args, span)
}

// String representation of the function signature.
func (f *Function) String() string {
	out := "func"
	if name, ok := f.GlobalSymbol(); ok {
		out += " " + name
	}
	out += "(" + stringseq.JoinFunc(f.params, ", ", func(param *Var) string {
		if param == nil {
			return "<nil>"
		}
		return param.String()
	}) + ")"
	if f.retType != nil {
		out += " " + f.retType.String()
	}
	return out
}
