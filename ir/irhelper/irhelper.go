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

// Package irhelper provides helper functions to build IR trees
// programmatically, mostly for tests. The helpers trade error handling for
// brevity: an argument the IR constructors reject is a panic.
package irhelper

import (
	"fmt"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
	"github.com/gx-org/tensorir/fmterr"
	"github.com/gx-org/tensorir/ir"
)

// Dim coerces a value into a dimension expression. An int becomes a
// constant dimension, a string a symbolic one.
func Dim(val any) ir.DimExpr {
	switch valT := val.(type) {
	case int:
		return Dim(int64(valT))
	case int64:
		dim, err := ir.NewDimConst(valT)
		if err != nil {
			panic(err)
		}
		return dim
	case string:
		dim, err := ir.NewDimVar(valT)
		if err != nil {
			panic(err)
		}
		return dim
	case ir.DimExpr:
		return valT
	}
	panic(fmt.Sprintf("dimension type %T not supported", val))
}

// Dims coerces a list of values into dimension expressions.
func Dims(vals ...any) ir.Dims {
	dims := make([]ir.DimExpr, len(vals))
	for i, val := range vals {
		dims[i] = Dim(val)
	}
	return dims
}

// BinaryDim builds a composite dimension from two coerced operands.
func BinaryDim(op ir.DimOp, x, y any) *ir.DimBinary {
	dim, err := ir.NewDimBinary(op, Dim(x), Dim(y))
	if err != nil {
		panic(err)
	}
	return dim
}

// Shape builds a shape expression from coerced dimensions.
func Shape(dims ...any) *ir.ShapeExpr {
	return ir.NewShapeExpr(Dims(dims...), fmterr.Span{})
}

// RuntimeShape builds a shape only known at run time.
func RuntimeShape() *ir.RuntimeDepShape {
	return ir.NewRuntimeDepShape(fmterr.Span{})
}

// TensorType builds a tensor type. Pass ir.UnknownNDim for a tensor of
// unknown rank.
func TensorType(ndim int, dt dtype.DataType) *ir.DynTensorType {
	return &ir.DynTensorType{NDim: ndim, DType: dt}
}

// FuncType builds a function type.
func FuncType(ret ir.Type, args ...ir.Type) *ir.FuncType {
	return &ir.FuncType{ArgTypes: args, RetType: ret}
}

// TupleType builds a tuple type.
func TupleType(fields ...ir.Type) *ir.TupleType {
	return &ir.TupleType{Fields: fields}
}

// annotations splits optional variable annotations into a type and a shape.
func annotations(name string, annots []any) (ir.Type, ir.ShapeAnnot) {
	var typ ir.Type
	var shp ir.ShapeAnnot
	for _, annot := range annots {
		switch annotT := annot.(type) {
		case ir.Type:
			typ = annotT
		case ir.ShapeAnnot:
			shp = annotT
		default:
			panic(fmt.Sprintf("annotation type %T not supported for variable %s", annot, name))
		}
	}
	return typ, shp
}

// Var builds a variable with a fresh identity. Annotations may be a
// ir.Type, a shape annotation, or both.
func Var(name string, annots ...any) *ir.Var {
	typ, shp := annotations(name, annots)
	return ir.NewVar(name, typ, shp, fmterr.Span{})
}

// DataflowVar builds a dataflow variable with a fresh identity.
func DataflowVar(name string, annots ...any) *ir.DataflowVar {
	typ, shp := annotations(name, annots)
	return ir.NewDataflowVar(name, typ, shp, fmterr.Span{})
}

// Bind builds a binding of a value to a variable.
func Bind(v ir.VarNode, value ir.Expr) *ir.VarBinding {
	return ir.NewVarBinding(v, value, fmterr.Span{})
}

// Match builds a shape match of a value against a pattern of coerced
// dimensions. Pass a nil variable to only assert the shape.
func Match(value ir.Expr, v ir.VarNode, pattern ...any) *ir.MatchShape {
	return ir.NewMatchShape(value, Dims(pattern...), v, fmterr.Span{})
}

// Block builds a binding block.
func Block(bindings ...ir.Binding) *ir.BindingBlock {
	return ir.NewBindingBlock(bindings, fmterr.Span{})
}

// DataflowBlock builds a dataflow block.
func DataflowBlock(bindings ...ir.Binding) *ir.DataflowBlock {
	return ir.NewDataflowBlock(bindings, fmterr.Span{})
}

// Seq builds a sequence expression from its trailing body and its blocks.
func Seq(body ir.Expr, blocks ...ir.Block) *ir.SeqExpr {
	return ir.NewSeqExpr(blocks, body, fmterr.Span{})
}

// Func builds a function without validating it. A non-empty name is set
// as the global symbol of the function.
func Func(name string, params []*ir.Var, body *ir.SeqExpr, ret ir.Type) *ir.Function {
	var attrs *ir.Attrs
	if name != "" {
		attrs = ir.NewAttrs(ir.NewAttr(ir.AttrGlobalSymbol, name))
	}
	return ir.NewFuncUnchecked(params, body, ret, nil, attrs, fmterr.Span{})
}

// Call builds a call with no side effect.
func Call(callee ir.Expr, args ...ir.Expr) *ir.CallExpr {
	return ir.NewCall(callee, args, fmterr.Span{})
}

// EffectfulCall builds a call with side effects.
func EffectfulCall(callee ir.Expr, args ...ir.Expr) *ir.CallExpr {
	return ir.NewEffectfulCall(callee, args, fmterr.Span{})
}

// Extern builds a reference to an external function.
func Extern(symbol string) *ir.ExternFunc {
	fn, err := ir.NewExternFunc(symbol, fmterr.Span{})
	if err != nil {
		panic(err)
	}
	return fn
}

// Global builds a reference to a function of the module.
func Global(symbol string) *ir.GlobalVar {
	gv, err := ir.NewGlobalVar(symbol, fmterr.Span{})
	if err != nil {
		panic(err)
	}
	return gv
}

// Tuple builds a tuple expression.
func Tuple(elems ...ir.Expr) *ir.TupleExpr {
	return ir.NewTuple(elems, fmterr.Span{})
}

// TupleGet builds the extraction of a tuple field.
func TupleGet(tuple ir.Expr, index int) *ir.TupleGetExpr {
	get, err := ir.NewTupleGet(tuple, index, fmterr.Span{})
	if err != nil {
		panic(err)
	}
	return get
}

// Const builds a constant tensor of the given data type and axis lengths,
// filled with zeros.
func Const(dt dtype.DataType, axes ...int) *ir.Constant {
	sh := &shape.Shape{DType: dt, AxisLengths: axes}
	cst, err := ir.NewConstant(sh, make([]byte, sh.ByteSize()), fmterr.Span{})
	if err != nil {
		panic(err)
	}
	return cst
}

// Module builds a validated module.
func Module(name string, fns ...*ir.Function) *ir.Module {
	mod, err := ir.NewModule(name, fns, fmterr.Span{})
	if err != nil {
		panic(err)
	}
	return mod
}
