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
	"sync/atomic"

	"github.com/gx-org/tensorir/fmterr"
)

// varIDCount mints process-wide unique variable identities.
var varIDCount atomic.Uint64

type (
	// VarID is the identity of a variable. An identity is minted once per
	// binding site: two variables denote the same binding site if and
	// only if they share an identity, never because they share a name.
	VarID struct {
		num  uint64
		name string
	}

	// VarNode is implemented by both variable kinds, *Var and *DataflowVar.
	VarNode interface {
		Expr

		// ID returns the identity of the variable.
		ID() *VarID

		// NameHint returns the display name of the variable.
		NameHint() string

		varNode()
	}

	// Var is a variable defined by a binding or a function parameter.
	Var struct {
		exprNode
		vid *VarID
	}

	// DataflowVar is a variable defined inside a dataflow block.
	// It is visible until the end of its block and in the trailing body of
	// the enclosing sequence expression, never from sibling blocks or from
	// outside that sequence expression.
	DataflowVar struct {
		Var
	}
)

var (
	_ VarNode = (*Var)(nil)
	_ VarNode = (*DataflowVar)(nil)
)

// NewVarID mints a fresh variable identity with a display name.
func NewVarID(name string) *VarID {
	return &VarID{num: varIDCount.Add(1), name: name}
}

// Name of the variable, for display only.
func (vid *VarID) Name() string { return vid.name }

// Same returns true if both identities denote the same binding site.
func (vid *VarID) Same(other *VarID) bool {
	return vid != nil && other != nil && vid.num == other.num
}

// String representation of the identity.
func (vid *VarID) String() string { return vid.name }

// NewVar returns a variable with a freshly minted identity.
// The type and shape annotations may both be nil when unknown.
func NewVar(name string, typ Type, shape ShapeAnnot, span fmterr.Span) *Var {
	return NewVarWithID(NewVarID(name), typ, shape, span)
}

// NewVarWithID returns a variable aliasing an existing identity.
// Aliasing re-binds a value under new annotations while preserving the
// binding site, for example to refine a shape after matching it.
func NewVarWithID(vid *VarID, typ Type, shape ShapeAnnot, span fmterr.Span) *Var {
	v := &Var{vid: vid}
	v.span = span
	v.typ = typ
	v.shp = shapeAnnot(shape, span)
	return v
}

func (v *Var) varNode() {}

// ID returns the identity of the variable.
func (v *Var) ID() *VarID { return v.vid }

// NameHint returns the display name carried by the identity.
func (v *Var) NameHint() string { return v.vid.Name() }

// String representation of the variable.
func (v *Var) String() string { return v.vid.Name() }

// Call builds a call expression with the variable as the callee.
// Only a variable whose resolved type is a function type can be called:
// anything else is an immediate error, not deferred to validation.
func (v *Var) Call(args []Expr, span fmterr.Span) (*CallExpr, error) {
	if err := checkCallable(v); err != nil {
		return nil, err
	}
	return NewCall(v, args, span), nil
}

// NewDataflowVar returns a dataflow variable with a freshly minted identity.
func NewDataflowVar(name string, typ Type, shape ShapeAnnot, span fmterr.Span) *DataflowVar {
	return NewDataflowVarWithID(NewVarID(name), typ, shape, span)
}

// NewDataflowVarWithID returns a dataflow variable aliasing an existing
// identity.
func NewDataflowVarWithID(vid *VarID, typ Type, shape ShapeAnnot, span fmterr.Span) *DataflowVar {
	v := &DataflowVar{}
	v.vid = vid
	v.span = span
	v.typ = typ
	v.shp = shapeAnnot(shape, span)
	return v
}

// Call builds a call expression with the variable as the callee.
// Only a variable whose resolved type is a function type can be called.
func (v *DataflowVar) Call(args []Expr, span fmterr.Span) (*CallExpr, error) {
	if err := checkCallable(v); err != nil {
		return nil, err
	}
	return NewCall(v, args, span), nil
}

func checkCallable(v VarNode) error {
	typ := v.CheckedType()
	if typ == nil {
		return fmterr.Errorf(v.Span(), "cannot call %s: variable type has not been resolved", v.NameHint())
	}
	if typ.Kind() != FuncKind {
		return fmterr.Errorf(v.Span(), "cannot call %s: type %s is not a function type", v.NameHint(), typ)
	}
	return nil
}
