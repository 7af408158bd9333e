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

// Package shapematch resolves symbolic shapes against runtime values.
//
// A shape pattern is a list of dimension expressions. Matching the
// pattern against the concrete axis lengths of a runtime tensor binds
// each symbol on its first occurrence and asserts every other dimension.
// The bindings accumulate in an environment shared by all the matches of
// one function execution, so that a symbol bound by one shape constrains
// the next.
package shapematch

import (
	"fmt"
	"slices"

	"github.com/pkg/errors"
	"github.com/gx-org/backend/shape"
	"github.com/gx-org/tensorir/base/stringseq"
	"github.com/gx-org/tensorir/fmterr"
	"github.com/gx-org/tensorir/ir"
	"golang.org/x/exp/maps"
)

// Env binds dimension symbols to concrete axis lengths.
type Env struct {
	vals map[string]int64
}

// NewEnv returns an empty environment.
func NewEnv() *Env {
	return &Env{vals: make(map[string]int64)}
}

// Bind binds a symbol to a concrete axis length. A symbol is bound once:
// binding it again to the same value is a no-op, to a different value an
// error.
func (env *Env) Bind(name string, val int64) error {
	if val < 0 {
		return errors.Errorf("cannot bind dimension symbol %q to negative length %d", name, val)
	}
	if prev, bound := env.vals[name]; bound && prev != val {
		return errors.Errorf("dimension symbol %q already bound to %d: cannot bind it to %d", name, prev, val)
	}
	env.vals[name] = val
	return nil
}

// Lookup returns the value bound to a symbol.
func (env *Env) Lookup(name string) (int64, bool) {
	val, bound := env.vals[name]
	return val, bound
}

// Symbols returns the bound symbols in lexical order.
func (env *Env) Symbols() []string {
	symbols := maps.Keys(env.vals)
	slices.Sort(symbols)
	return symbols
}

// Clone returns a copy of the environment, for speculative matches.
func (env *Env) Clone() *Env {
	return &Env{vals: maps.Clone(env.vals)}
}

// String representation of the environment.
func (env *Env) String() string {
	bindings := stringseq.JoinFunc(env.Symbols(), ", ", func(symbol string) string {
		return fmt.Sprintf("%s=%d", symbol, env.vals[symbol])
	})
	return "{" + bindings + "}"
}

// MismatchError reports a runtime shape contradicting a matched pattern.
type MismatchError struct {
	// Axis on which the mismatch has been observed.
	Axis int
	// Dim is the pattern dimension on that axis.
	Dim ir.DimExpr
	// Want is the value the pattern dimension evaluates to.
	Want int64
	// Got is the runtime axis length.
	Got int64
}

// Error message of the mismatch.
func (e *MismatchError) Error() string {
	return fmt.Sprintf("shape mismatch on axis %d: pattern dimension %s requires %d, got %d", e.Axis, e.Dim, e.Want, e.Got)
}

// Eval computes the concrete value of a dimension expression. Every
// symbol of the expression must be bound in the environment.
func Eval(dim ir.DimExpr, env *Env) (int64, error) {
	switch d := dim.(type) {
	case *ir.DimConst:
		return d.Value(), nil
	case *ir.DimVar:
		val, bound := env.Lookup(d.Name())
		if !bound {
			return 0, errors.Errorf("unbound dimension symbol %q", d.Name())
		}
		return val, nil
	case *ir.DimBinary:
		x, err := Eval(d.X(), env)
		if err != nil {
			return 0, err
		}
		y, err := Eval(d.Y(), env)
		if err != nil {
			return 0, err
		}
		switch d.Op() {
		case ir.DimAdd:
			return x + y, nil
		case ir.DimSub:
			return x - y, nil
		case ir.DimMul:
			return x * y, nil
		case ir.DimDiv:
			if y == 0 {
				return 0, errors.Errorf("division by zero evaluating dimension %s", d)
			}
			return x / y, nil
		}
		return 0, errors.Errorf("dimension operator %s not supported", d.Op())
	}
	return 0, errors.Errorf("dimension %T not supported", dim)
}

// Match matches concrete axis lengths against a shape pattern. A symbol
// standing alone as a dimension is bound to the runtime length on its
// first occurrence; every other dimension is evaluated and compared to
// the runtime length, returning a *MismatchError when they disagree.
//
// The ranks must agree: a pattern never matches a runtime shape with a
// different number of axes.
func Match(pattern []ir.DimExpr, lengths []int64, env *Env) error {
	if len(pattern) != len(lengths) {
		return errors.Errorf("rank mismatch: pattern %s has %d dimensions, runtime shape has %d", patternString(pattern), len(pattern), len(lengths))
	}
	for i, dim := range pattern {
		if dim == nil {
			return errors.Errorf("nil dimension on axis %d of pattern", i)
		}
		if sym, ok := dim.(*ir.DimVar); ok {
			if _, bound := env.Lookup(sym.Name()); !bound {
				if err := env.Bind(sym.Name(), lengths[i]); err != nil {
					return err
				}
				continue
			}
		}
		want, err := Eval(dim, env)
		if err != nil {
			return err
		}
		if want != lengths[i] {
			return &MismatchError{Axis: i, Dim: dim, Want: want, Got: lengths[i]}
		}
	}
	return nil
}

// MatchArray matches a pattern against the shape of a concrete array,
// such as the shape of a constant or of a tensor held by an execution
// engine.
func MatchArray(pattern []ir.DimExpr, sh *shape.Shape, env *Env) error {
	if sh == nil {
		return errors.Errorf("cannot match pattern %s: array shape is nil", patternString(pattern))
	}
	lengths := make([]int64, len(sh.AxisLengths))
	for i, axis := range sh.AxisLengths {
		lengths[i] = int64(axis)
	}
	return Match(pattern, lengths, env)
}

// MatchBinding executes a shape match binding against the concrete axis
// lengths of its value. Errors are located at the binding.
func MatchBinding(b *ir.MatchShape, lengths []int64, env *Env) error {
	if err := Match(b.Pattern(), lengths, env); err != nil {
		return fmterr.Position(b.Span(), err)
	}
	return nil
}

func patternString(pattern []ir.DimExpr) string {
	return "(" + stringseq.JoinFunc(pattern, ", ", func(dim ir.DimExpr) string {
		if dim == nil {
			return "<nil>"
		}
		return dim.String()
	}) + ")"
}
