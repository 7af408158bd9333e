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

package ir_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/tensorir/ir"
	"github.com/gx-org/tensorir/ir/irhelper"
)

func TestUpdateType(t *testing.T) {
	x := irhelper.Var("x")
	if err := ir.UpdateType(x, tensor2()); err != nil {
		t.Fatal(err)
	}
	if !x.CheckedType().Equal(tensor2()) {
		t.Errorf("incorrect type after resolution: got %s but want %s", x.CheckedType(), tensor2())
	}
	if err := ir.UpdateType(x, tensor2()); err != nil {
		t.Errorf("resolving to an equal type must be a no-op, got %v", err)
	}
	err := ir.UpdateType(x, irhelper.TensorType(3, dtype.Float32))
	if err == nil {
		t.Fatalf("expected an error when resolving to a different type")
	}
	if !strings.Contains(err.Error(), "already resolved") {
		t.Errorf("incorrect error: %v", err)
	}
	if err := ir.UpdateType(x, nil); err == nil {
		t.Errorf("expected an error when resolving a type to nil")
	}
	if err := ir.UpdateType(nil, tensor2()); err == nil {
		t.Errorf("expected an error when resolving a nil expression")
	}
}

func TestUpdateTypeOnPrefilledNode(t *testing.T) {
	sh := irhelper.Shape("m", 4)
	if err := ir.UpdateType(sh, &ir.ShapeType{}); err != nil {
		t.Errorf("resolving a shape expression to the shape type must be a no-op, got %v", err)
	}
	if err := ir.UpdateType(sh, tensor2()); err == nil {
		t.Errorf("expected an error when resolving a shape expression to a tensor type")
	}
}

func TestUpdateShape(t *testing.T) {
	x := irhelper.Var("x")
	if err := ir.UpdateShape(x, irhelper.Shape("m", 4)); err != nil {
		t.Fatal(err)
	}
	if got, want := x.Shape().String(), "(m, 4)"; got != want {
		t.Errorf("incorrect shape after resolution: got %s but want %s", got, want)
	}
	if err := ir.UpdateShape(x, irhelper.Shape("m", 4)); err != nil {
		t.Errorf("resolving to an equivalent shape must be a no-op, got %v", err)
	}
	err := ir.UpdateShape(x, irhelper.Shape("m", 5))
	if err == nil {
		t.Fatalf("expected an error when resolving to a different shape")
	}
	if !strings.Contains(err.Error(), "already resolved") {
		t.Errorf("incorrect error: %v", err)
	}
	if err := ir.UpdateShape(x, nil); err == nil {
		t.Errorf("expected an error when resolving a shape to nil")
	}
}

func TestWalkOrder(t *testing.T) {
	x := irhelper.Var("x")
	y := irhelper.Var("y")
	fn := irhelper.Func("main", []*ir.Var{x}, irhelper.Seq(y, irhelper.Block(
		irhelper.Bind(y, irhelper.Call(irhelper.Extern("tensor.exp"), x)),
	)), nil)
	var got []string
	ir.Walk(fn, func(n ir.Node) bool {
		got = append(got, fmt.Sprintf("%T", n))
		return true
	})
	want := []string{
		"*ir.Function",
		"*ir.Var",
		"*ir.SeqExpr",
		"*ir.BindingBlock",
		"*ir.VarBinding",
		"*ir.CallExpr",
		"*ir.ExternFunc",
		"*ir.Var",
		"*ir.Var",
		"*ir.Var",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("incorrect traversal order:\n%s", diff)
	}
}

func TestWalkPrune(t *testing.T) {
	x := irhelper.Var("x")
	y := irhelper.Var("y")
	fn := irhelper.Func("main", []*ir.Var{x}, irhelper.Seq(y, irhelper.Block(
		irhelper.Bind(y, x),
	)), nil)
	var got []string
	ir.Walk(fn, func(n ir.Node) bool {
		got = append(got, fmt.Sprintf("%T", n))
		_, isSeq := n.(*ir.SeqExpr)
		return !isSeq
	})
	want := []string{"*ir.Function", "*ir.Var", "*ir.SeqExpr"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("incorrect pruned traversal:\n%s", diff)
	}
}

func TestWalkMatchShape(t *testing.T) {
	x := irhelper.Var("x")
	y := irhelper.Var("y")
	fn := irhelper.Func("main", []*ir.Var{x}, irhelper.Seq(y, irhelper.Block(
		irhelper.Match(x, y, "m", 4),
	)), nil)
	var got []string
	ir.Walk(fn, func(n ir.Node) bool {
		got = append(got, fmt.Sprintf("%T", n))
		return true
	})
	want := []string{
		"*ir.Function",
		"*ir.Var",
		"*ir.SeqExpr",
		"*ir.BindingBlock",
		"*ir.MatchShape",
		"*ir.Var",
		"*ir.DimVar",
		"*ir.DimConst",
		"*ir.Var",
		"*ir.Var",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("incorrect traversal order:\n%s", diff)
	}
}
