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

package shapematch_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
	"github.com/gx-org/tensorir/fmterr"
	"github.com/gx-org/tensorir/ir"
	"github.com/gx-org/tensorir/ir/irhelper"
	"github.com/gx-org/tensorir/shapematch"
)

func TestEnvBind(t *testing.T) {
	env := shapematch.NewEnv()
	if err := env.Bind("m", 7); err != nil {
		t.Fatalf("cannot bind m: %v", err)
	}
	if err := env.Bind("m", 7); err != nil {
		t.Errorf("rebinding m to the same value: got error %v but want none", err)
	}
	err := env.Bind("m", 8)
	if err == nil {
		t.Fatalf("rebinding m to a different value: got no error")
	}
	const wantConflict = `dimension symbol "m" already bound to 7: cannot bind it to 8`
	if err.Error() != wantConflict {
		t.Errorf("incorrect conflict error: got %q but want %q", err.Error(), wantConflict)
	}
	if err := env.Bind("n", -1); err == nil {
		t.Errorf("binding a negative length: got no error")
	}
	val, bound := env.Lookup("m")
	if !bound || val != 7 {
		t.Errorf("incorrect lookup of m: got (%d, %v) but want (7, true)", val, bound)
	}
	if _, bound := env.Lookup("q"); bound {
		t.Errorf("lookup of an unbound symbol: got bound")
	}
}

func TestEnvSymbolsString(t *testing.T) {
	env := shapematch.NewEnv()
	env.Bind("n", 3)
	env.Bind("m", 7)
	if diff := cmp.Diff([]string{"m", "n"}, env.Symbols()); diff != "" {
		t.Errorf("incorrect symbols:\n%s", diff)
	}
	const want = "{m=7, n=3}"
	if got := env.String(); got != want {
		t.Errorf("incorrect environment string: got %q but want %q", got, want)
	}
}

func TestEnvClone(t *testing.T) {
	env := shapematch.NewEnv()
	env.Bind("m", 7)
	clone := env.Clone()
	if err := clone.Bind("m", 8); err == nil {
		t.Errorf("clone lost the binding of m")
	}
	clone.Bind("n", 3)
	if _, bound := env.Lookup("n"); bound {
		t.Errorf("binding n in the clone leaked into the original")
	}
}

func TestEval(t *testing.T) {
	env := shapematch.NewEnv()
	env.Bind("m", 7)
	tests := []struct {
		dim     ir.DimExpr
		want    int64
		wantErr string
	}{
		{dim: irhelper.Dim(4), want: 4},
		{dim: irhelper.Dim("m"), want: 7},
		{dim: irhelper.BinaryDim(ir.DimAdd, "m", 1), want: 8},
		{dim: irhelper.BinaryDim(ir.DimSub, "m", 2), want: 5},
		{dim: irhelper.BinaryDim(ir.DimMul, "m", 2), want: 14},
		{dim: irhelper.BinaryDim(ir.DimDiv, "m", 2), want: 3},
		{dim: irhelper.BinaryDim(ir.DimAdd, irhelper.BinaryDim(ir.DimMul, "m", 2), 1), want: 15},
		{
			dim:     irhelper.Dim("q"),
			wantErr: `unbound dimension symbol "q"`,
		},
		{
			dim:     irhelper.BinaryDim(ir.DimDiv, "m", 0),
			wantErr: `division by zero evaluating dimension (m/0)`,
		},
	}
	for i, test := range tests {
		got, err := shapematch.Eval(test.dim, env)
		if test.wantErr != "" {
			if err == nil {
				t.Errorf("test %d: evaluating %s: got no error but want %q", i, test.dim, test.wantErr)
			} else if err.Error() != test.wantErr {
				t.Errorf("test %d: incorrect error: got %q but want %q", i, err.Error(), test.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("test %d: cannot evaluate %s: %v", i, test.dim, err)
			continue
		}
		if got != test.want {
			t.Errorf("test %d: incorrect value of %s: got %d but want %d", i, test.dim, got, test.want)
		}
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern ir.Dims
		lengths []int64
		bound   map[string]int64
		wantErr string
	}{
		{
			name:    "bare symbol binds on first occurrence",
			pattern: irhelper.Dims("m", 4),
			lengths: []int64{7, 4},
			bound:   map[string]int64{"m": 7},
		},
		{
			name:    "repeated symbol asserts",
			pattern: irhelper.Dims("m", "m"),
			lengths: []int64{7, 7},
			bound:   map[string]int64{"m": 7},
		},
		{
			name:    "repeated symbol contradiction",
			pattern: irhelper.Dims("m", "m"),
			lengths: []int64{7, 8},
			wantErr: "shape mismatch on axis 1: pattern dimension m requires 7, got 8",
		},
		{
			name:    "constant contradiction",
			pattern: irhelper.Dims("m", 4),
			lengths: []int64{7, 5},
			wantErr: "shape mismatch on axis 1: pattern dimension 4 requires 4, got 5",
		},
		{
			name:    "composite evaluates from earlier bindings",
			pattern: ir.Dims{irhelper.Dim("m"), irhelper.BinaryDim(ir.DimMul, "m", 2)},
			lengths: []int64{3, 6},
			bound:   map[string]int64{"m": 3},
		},
		{
			name:    "composite contradiction",
			pattern: ir.Dims{irhelper.Dim("m"), irhelper.BinaryDim(ir.DimMul, "m", 2)},
			lengths: []int64{3, 7},
			wantErr: "shape mismatch on axis 1: pattern dimension (m*2) requires 6, got 7",
		},
		{
			name:    "composite never binds",
			pattern: ir.Dims{irhelper.BinaryDim(ir.DimMul, "n", 2)},
			lengths: []int64{8},
			wantErr: `unbound dimension symbol "n"`,
		},
		{
			name:    "rank mismatch",
			pattern: irhelper.Dims("m", 4),
			lengths: []int64{7},
			wantErr: "rank mismatch: pattern (m, 4) has 2 dimensions, runtime shape has 1",
		},
		{
			name:    "scalar pattern",
			pattern: nil,
			lengths: nil,
			bound:   map[string]int64{},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			env := shapematch.NewEnv()
			err := shapematch.Match(test.pattern, test.lengths, env)
			if test.wantErr != "" {
				if err == nil {
					t.Fatalf("got no error but want %q", test.wantErr)
				}
				if err.Error() != test.wantErr {
					t.Errorf("incorrect error: got %q but want %q", err.Error(), test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("cannot match: %v", err)
			}
			for symbol, want := range test.bound {
				got, bound := env.Lookup(symbol)
				if !bound {
					t.Errorf("symbol %q has not been bound", symbol)
					continue
				}
				if got != want {
					t.Errorf("incorrect binding of %q: got %d but want %d", symbol, got, want)
				}
			}
		})
	}
}

func TestMatchSharedEnv(t *testing.T) {
	env := shapematch.NewEnv()
	if err := shapematch.Match(irhelper.Dims("m", "n"), []int64{7, 3}, env); err != nil {
		t.Fatalf("cannot match first shape: %v", err)
	}
	err := shapematch.Match(irhelper.Dims("m"), []int64{8}, env)
	if err == nil {
		t.Fatalf("matching m against a new length: got no error")
	}
	var mismatch *shapematch.MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("incorrect error type: got %T but want *shapematch.MismatchError", err)
	}
	if mismatch.Axis != 0 || mismatch.Want != 7 || mismatch.Got != 8 {
		t.Errorf("incorrect mismatch: got axis=%d want=%d got=%d but want axis=0 want=7 got=8", mismatch.Axis, mismatch.Want, mismatch.Got)
	}
}

func TestMatchArray(t *testing.T) {
	cst := irhelper.Const(dtype.Float32, 7, 4)
	env := shapematch.NewEnv()
	if err := shapematch.MatchArray(irhelper.Dims("m", 4), cst.ArrayShape(), env); err != nil {
		t.Fatalf("cannot match the constant shape: %v", err)
	}
	if val, bound := env.Lookup("m"); !bound || val != 7 {
		t.Errorf("incorrect binding of m: got (%d, %v) but want (7, true)", val, bound)
	}
	err := shapematch.MatchArray(irhelper.Dims("m"), &shape.Shape{DType: dtype.Float32, AxisLengths: []int{8}}, env)
	var mismatch *shapematch.MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("incorrect error: got %v but want a *shapematch.MismatchError", err)
	}
	if err := shapematch.MatchArray(irhelper.Dims("m"), nil, env); err == nil {
		t.Errorf("matching against a nil shape: got no error")
	}
}

func TestMatchBinding(t *testing.T) {
	x := irhelper.Var("x")
	binding := ir.NewMatchShape(x, irhelper.Dims("m", "m"), irhelper.Var("y"), fmterr.Span{
		Filename: "f.tir", Line: 5, Column: 3,
	})
	env := shapematch.NewEnv()
	if err := shapematch.MatchBinding(binding, []int64{7, 7}, env); err != nil {
		t.Fatalf("cannot match: %v", err)
	}
	err := shapematch.MatchBinding(binding, []int64{7, 8}, env)
	if err == nil {
		t.Fatalf("got no error")
	}
	const wantPrefix = "f.tir:5:3: shape mismatch on axis 1"
	if !strings.HasPrefix(err.Error(), wantPrefix) {
		t.Errorf("incorrect error: got %q but want prefix %q", err.Error(), wantPrefix)
	}
	var mismatch *shapematch.MismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("incorrect error type: %T does not wrap a *shapematch.MismatchError", err)
	}
}
