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

import "reflect"

// nilNode reports whether a node interface holds no value or a typed nil
// pointer, which a malformed producer can leave in a tree.
func nilNode(n Node) bool {
	if n == nil {
		return true
	}
	value := reflect.ValueOf(n)
	return value.Kind() == reflect.Pointer && value.IsNil()
}

// Walk traverses a tree in depth-first pre-order, calling f on every node.
// If f returns false, the children of the node are skipped. The order is
// total and stable: parameters, then blocks in list order, bindings in
// list order within each block, then the trailing body, so that consumers
// can render a tree deterministically.
//
// Walk visits the structure of the tree only: it does not descend into
// types nor into variable annotations.
func Walk(n Node, f func(Node) bool) {
	if nilNode(n) {
		return
	}
	if !f(n) {
		return
	}
	switch nT := n.(type) {
	case *ShapeExpr:
		for _, dim := range nT.dims {
			Walk(dim, f)
		}
	case *DimBinary:
		Walk(nT.x, f)
		Walk(nT.y, f)
	case *TupleExpr:
		for _, elem := range nT.elems {
			Walk(elem, f)
		}
	case *TupleGetExpr:
		Walk(nT.tuple, f)
	case *CallExpr:
		Walk(nT.callee, f)
		for _, arg := range nT.args {
			Walk(arg, f)
		}
	case *IfExpr:
		Walk(nT.cond, f)
		Walk(nT.then, f)
		Walk(nT.els, f)
	case *SeqExpr:
		for _, block := range nT.blocks {
			Walk(block, f)
		}
		Walk(nT.body, f)
	case *BindingBlock:
		walkBindings(nT, f)
	case *DataflowBlock:
		walkBindings(&nT.BindingBlock, f)
	case *VarBinding:
		Walk(nT.value, f)
		Walk(nT.v, f)
	case *MatchShape:
		Walk(nT.value, f)
		for _, dim := range nT.pattern {
			Walk(dim, f)
		}
		Walk(nT.v, f)
	case *Function:
		for _, param := range nT.params {
			Walk(param, f)
		}
		Walk(nT.body, f)
		Walk(nT.retShape, f)
	}
}

func walkBindings(block *BindingBlock, f func(Node) bool) {
	for _, binding := range block.bindings {
		Walk(binding, f)
	}
}
