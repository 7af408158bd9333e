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
	"maps"

	"github.com/pkg/errors"
	"github.com/gx-org/tensorir/fmterr"
	"go.uber.org/multierr"
)

// ViolationKind classifies a well-formedness violation.
type ViolationKind int

const (
	// RedefinedVar reports a variable identity bound more than once.
	RedefinedVar ViolationKind = iota
	// UndefinedVar reports the use of a variable with no visible binding.
	UndefinedVar
	// EscapedVar reports a dataflow variable observed outside its block.
	EscapedVar
	// ImpureExpr reports an effect or control flow inside a dataflow block.
	ImpureExpr
	// UnboundDim reports a dimension symbol that no shape has bound.
	UnboundDim
)

// String representation of the kind.
func (k ViolationKind) String() string {
	switch k {
	case RedefinedVar:
		return "redefined variable"
	case UndefinedVar:
		return "undefined variable"
	case EscapedVar:
		return "escaped dataflow variable"
	case ImpureExpr:
		return "impure expression"
	case UnboundDim:
		return "unbound dimension"
	}
	return "invalid violation"
}

// Violation is a single well-formedness failure found by Validate.
type Violation struct {
	kind ViolationKind
	node SourceNode
	err  error
}

var _ error = (*Violation)(nil)

// Kind of the violation.
func (v *Violation) Kind() ViolationKind { return v.kind }

// Node is the node on which the violation has been reported.
func (v *Violation) Node() SourceNode { return v.node }

// Error returns the message of the violation, located at its node.
func (v *Violation) Error() string { return v.err.Error() }

// Unwrap returns the underlying positioned error.
func (v *Violation) Unwrap() error { return v.err }

// ViolationsOf extracts the violations combined into a validation error.
// Errors that are not violations, such as internal errors on malformed
// trees, are skipped.
func ViolationsOf(err error) []*Violation {
	var violations []*Violation
	for _, sub := range multierr.Errors(err) {
		var violation *Violation
		if errors.As(sub, &violation) {
			violations = append(violations, violation)
		}
	}
	return violations
}

// Validate checks the well-formedness of a function:
//
//   - a variable identity is bound at most once;
//   - a variable is used only where a binding of it is visible;
//   - dataflow blocks contain neither effectful calls nor control flow,
//     at any depth of the values they bind;
//   - dataflow variables do not escape their block, other than into the
//     trailing body of the enclosing sequence expression;
//   - a dimension symbol is bound by a parameter annotation or a shape
//     match pattern before any other shape mentions it.
//
// All violations are collected before reporting: the returned error
// combines one *Violation per failure (see ViolationsOf), so a single
// pass reports everything there is to fix. Nil nodes in the tree are
// reported as internal errors alongside the violations.
func Validate(fn *Function) error {
	if fn == nil {
		return errors.Errorf("cannot validate a nil function")
	}
	v := &validator{
		errs:    &fmterr.Errors{},
		all:     make(map[uint64]*defSite),
		defined: make(map[uint64]VarNode),
		dims:    make(map[string]bool),
		impure:  make(map[Node]bool),
	}
	v.collect(fn)
	v.function(fn, nil)
	return v.errs.ToError()
}

type validator struct {
	errs *fmterr.Errors
	// all indexes every binding site of the tree, also the ones the
	// in-order pass has not reached yet, to tell a use of an out-of-scope
	// variable apart from a use of an unknown one.
	all map[uint64]*defSite
	// defined indexes the binding sites processed so far.
	defined map[uint64]VarNode
	// dims is the set of dimension symbols bound so far.
	dims map[string]bool
	// impure records the nodes already reported as impure, since a value
	// nested in dataflow blocks is inspected once per enclosing block.
	impure map[Node]bool
}

type defSite struct {
	dataflow bool
}

// scope is a chain of sets of visible variable identities.
type scope struct {
	parent *scope
	vids   map[uint64]bool
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vids: make(map[uint64]bool)}
}

func (s *scope) add(num uint64) {
	s.vids[num] = true
}

func (s *scope) has(num uint64) bool {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.vids[num] {
			return true
		}
	}
	return false
}

func (v *validator) violation(kind ViolationKind, node SourceNode, format string, a ...any) {
	v.errs.Append(&Violation{
		kind: kind,
		node: node,
		err:  fmterr.Errorf(spanOf(node), format, a...),
	})
}

func spanOf(n SourceNode) fmterr.Span {
	if n == nil {
		return fmterr.Span{}
	}
	return n.Span()
}

// collect records every binding site of the tree before the in-order pass.
func (v *validator) collect(fn *Function) {
	Walk(fn, func(n Node) bool {
		switch nT := n.(type) {
		case *Function:
			for _, param := range nT.params {
				v.record(param)
			}
		case *VarBinding:
			v.record(nT.v)
		case *MatchShape:
			v.record(nT.v)
		}
		return true
	})
}

func (v *validator) record(target VarNode) {
	if nilVarNode(target) {
		return
	}
	vid := target.ID()
	if vid == nil {
		return
	}
	if _, seen := v.all[vid.num]; seen {
		return
	}
	_, dataflow := target.(*DataflowVar)
	v.all[vid.num] = &defSite{dataflow: dataflow}
}

func nilVarNode(target VarNode) bool {
	switch vT := target.(type) {
	case nil:
		return true
	case *Var:
		return vT == nil
	case *DataflowVar:
		return vT == nil
	}
	return false
}

func (v *validator) function(fn *Function, outer *scope) {
	fnScope := newScope(outer)
	for i, param := range fn.params {
		if param == nil {
			v.errs.AppendInternalf(fn.Span(), "parameter %d of %s is nil", i, fn.String())
			continue
		}
		vid := param.ID()
		if vid == nil {
			v.errs.AppendInternalf(param.Span(), "parameter %d of %s has no identity", i, fn.String())
			continue
		}
		v.define(param, vid)
		fnScope.add(vid.num)
		if annot, ok := param.Shape().(*ShapeExpr); ok && annot != nil {
			v.checkDims(annot.dims, true, param)
		}
	}
	if fn.body == nil {
		v.errs.AppendInternalf(fn.Span(), "%s has no body", fn.String())
	} else {
		v.seq(fn.body, fnScope)
	}
	if annot, ok := fn.retShape.(*ShapeExpr); ok && annot != nil {
		v.checkDims(annot.dims, false, annot)
	}
}

func (v *validator) define(target VarNode, vid *VarID) {
	if v.defined[vid.num] != nil {
		v.violation(RedefinedVar, target, "variable %q is bound more than once", vid.name)
		return
	}
	v.defined[vid.num] = target
}

func (v *validator) seq(seq *SeqExpr, parent *scope) {
	// seqScope holds the bindings exported from block to block. Dataflow
	// variables never enter it: they live in a per-block scope, then
	// become visible again to the trailing body only.
	seqScope := newScope(parent)
	var dfNums []uint64
	for _, block := range seq.blocks {
		if nilNode(block) {
			v.errs.AppendInternalf(seq.Span(), "nil block in sequence expression")
			continue
		}
		blockScope := newScope(seqScope)
		_, dataflow := block.(*DataflowBlock)
		for _, binding := range block.Bindings() {
			if nilNode(binding) {
				v.errs.AppendInternalf(seq.Span(), "nil binding in block")
				continue
			}
			switch b := binding.(type) {
			case *VarBinding:
				v.bindingValue(b.value, b, blockScope, dataflow)
				v.target(b, b.v, blockScope, seqScope, dataflow, false)
			case *MatchShape:
				v.bindingValue(b.value, b, blockScope, dataflow)
				v.checkDims(b.pattern, true, b)
				v.target(b, b.v, blockScope, seqScope, dataflow, true)
			}
		}
		if dataflow {
			for num := range blockScope.vids {
				dfNums = append(dfNums, num)
			}
		}
	}
	bodyScope := newScope(seqScope)
	for _, num := range dfNums {
		bodyScope.add(num)
	}
	if seq.body == nil {
		v.errs.AppendInternalf(seq.Span(), "sequence expression has no body")
	} else {
		v.uses(seq.body, bodyScope, seq)
	}
}

func (v *validator) bindingValue(value Expr, at SourceNode, sc *scope, dataflow bool) {
	if nilNode(value) {
		v.errs.AppendInternalf(spanOf(at), "binding has no value")
		return
	}
	v.uses(value, sc, at)
	if dataflow {
		v.pure(value)
	}
}

// target processes the variable a binding defines. The target of a shape
// match is optional: a match without a target only asserts a shape.
func (v *validator) target(at SourceNode, target VarNode, blockScope, seqScope *scope, dataflow, optional bool) {
	if nilVarNode(target) {
		if !optional {
			v.errs.AppendInternalf(spanOf(at), "binding has no target variable")
		}
		return
	}
	vid := target.ID()
	if vid == nil {
		v.errs.AppendInternalf(target.Span(), "variable has no identity")
		return
	}
	_, dfVar := target.(*DataflowVar)
	if dfVar && !dataflow {
		v.violation(EscapedVar, target, "dataflow variable %q bound outside a dataflow block", vid.name)
	}
	v.define(target, vid)
	if annot, ok := target.Shape().(*ShapeExpr); ok && annot != nil {
		v.checkDims(annot.dims, false, target)
	}
	if dfVar {
		blockScope.add(vid.num)
	} else {
		seqScope.add(vid.num)
	}
}

// uses checks that every variable in a value expression is visible, that
// every shape in it only mentions bound dimension symbols, and recurses
// into nested sequence expressions and function literals.
func (v *validator) uses(e Expr, sc *scope, at SourceNode) {
	if nilNode(e) {
		v.errs.AppendInternalf(spanOf(at), "nil expression")
		return
	}
	switch eT := e.(type) {
	case VarNode:
		v.resolve(eT, sc)
	case *ShapeExpr:
		v.checkDims(eT.dims, false, eT)
	case *TupleExpr:
		for _, elem := range eT.elems {
			v.uses(elem, sc, eT)
		}
	case *TupleGetExpr:
		v.uses(eT.tuple, sc, eT)
	case *CallExpr:
		v.uses(eT.callee, sc, eT)
		for _, arg := range eT.args {
			v.uses(arg, sc, eT)
		}
	case *IfExpr:
		v.uses(eT.cond, sc, eT)
		v.uses(eT.then, sc, eT)
		v.uses(eT.els, sc, eT)
	case *SeqExpr:
		v.seq(eT, sc)
	case *Function:
		// A nested function sees the symbols bound so far but binds its
		// own without leaking them to the enclosing function.
		saved := v.dims
		v.dims = maps.Clone(saved)
		v.function(eT, sc)
		v.dims = saved
	}
}

func (v *validator) resolve(use VarNode, sc *scope) {
	vid := use.ID()
	if vid == nil {
		v.errs.AppendInternalf(use.Span(), "variable has no identity")
		return
	}
	if sc.has(vid.num) {
		return
	}
	site := v.all[vid.num]
	switch {
	case site == nil:
		v.violation(UndefinedVar, use, "undefined variable %q", vid.name)
	case site.dataflow:
		v.violation(EscapedVar, use, "dataflow variable %q used outside its dataflow block", vid.name)
	default:
		v.violation(UndefinedVar, use, "variable %q is not in scope", vid.name)
	}
}

// pure reports effectful calls and control flow at any depth of a value
// bound in a dataflow block. Function literals are opaque: defining one
// runs nothing, so their bodies are not inspected.
func (v *validator) pure(value Expr) {
	Walk(value, func(n Node) bool {
		switch nT := n.(type) {
		case *Function:
			return false
		case *CallExpr:
			if nT.effectful && !v.impure[nT] {
				v.impure[nT] = true
				v.violation(ImpureExpr, nT, "effectful call to %s in a dataflow block", exprString(nT.callee))
			}
		case *IfExpr:
			if !v.impure[nT] {
				v.impure[nT] = true
				v.violation(ImpureExpr, nT, "control flow in a dataflow block")
			}
		}
		return true
	})
}

// checkDims checks the dimension symbols of a shape. In a binding
// position, a symbol standing alone as a dimension is bound on its first
// occurrence, left to right. Symbols inside composite dimensions never
// bind: a composite cannot be inverted, so its symbols must have been
// bound before.
func (v *validator) checkDims(dims []DimExpr, binds bool, at SourceNode) {
	for _, dim := range dims {
		v.checkDim(dim, binds, at)
	}
}

func (v *validator) checkDim(dim DimExpr, binds bool, at SourceNode) {
	if nilNode(dim) {
		v.errs.AppendInternalf(spanOf(at), "nil dimension in shape")
		return
	}
	switch d := dim.(type) {
	case *DimVar:
		if v.dims[d.name] {
			return
		}
		if binds {
			v.dims[d.name] = true
			return
		}
		v.violation(UnboundDim, at, "unbound dimension symbol %q", d.name)
	case *DimBinary:
		v.checkDim(d.x, false, at)
		v.checkDim(d.y, false, at)
	}
}
