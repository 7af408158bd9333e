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
	"strconv"

	"github.com/gx-org/backend/dtype"

	"github.com/gx-org/tensorir/base/stringseq"
)

type (
	// Type of an expression value.
	Type interface {
		Node

		// Kind of the type.
		Kind() Kind

		// Equal returns true if other is the same type.
		Equal(Type) bool

		// String representation of the type.
		String() string
	}

	// ObjectType is the most general type: nothing is known statically
	// about the value.
	ObjectType struct{}

	// ShapeType is the type of shape values.
	ShapeType struct{}

	// DynTensorType is the type of a tensor whose rank and element type
	// may each be unknown.
	DynTensorType struct {
		// NDim is the number of axes, or UnknownNDim if the rank is not
		// statically known.
		NDim int
		// DType is the element type, dtype.Invalid if not statically known.
		DType dtype.DataType
	}

	// TupleType groups a fixed number of field types.
	TupleType struct {
		Fields []Type
	}

	// FuncType is the signature of a callable value.
	FuncType struct {
		ArgTypes []Type
		RetType  Type
	}

	// PackedFuncType is the type of an opaque external function.
	PackedFuncType struct{}
)

// UnknownNDim marks a tensor rank that is not statically known.
const UnknownNDim = -1

var (
	_ Type = (*ObjectType)(nil)
	_ Type = (*ShapeType)(nil)
	_ Type = (*DynTensorType)(nil)
	_ Type = (*TupleType)(nil)
	_ Type = (*FuncType)(nil)
	_ Type = (*PackedFuncType)(nil)
)

func (*ObjectType) node() {}

// Kind of the type.
func (*ObjectType) Kind() Kind { return ObjectKind }

// Equal returns true if other is the object type.
func (*ObjectType) Equal(other Type) bool {
	return other != nil && other.Kind() == ObjectKind
}

// String representation of the type.
func (*ObjectType) String() string { return "object" }

func (*ShapeType) node() {}

// Kind of the type.
func (*ShapeType) Kind() Kind { return ShapeKind }

// Equal returns true if other is the shape type.
func (*ShapeType) Equal(other Type) bool {
	return other != nil && other.Kind() == ShapeKind
}

// String representation of the type.
func (*ShapeType) String() string { return "shape" }

func (*DynTensorType) node() {}

// Kind of the type.
func (*DynTensorType) Kind() Kind { return TensorKind }

// Equal returns true if other is a tensor type with the same rank and
// element type.
func (s *DynTensorType) Equal(other Type) bool {
	otherT, ok := other.(*DynTensorType)
	if !ok {
		return false
	}
	return s.NDim == otherT.NDim && s.DType == otherT.DType
}

// String representation of the type.
func (s *DynTensorType) String() string {
	ndim := "*"
	if s.NDim != UnknownNDim {
		ndim = strconv.Itoa(s.NDim)
	}
	dt := "*"
	if s.DType != dtype.Invalid {
		dt = DTypeString(s.DType)
	}
	return "Tensor(" + ndim + ", " + dt + ")"
}

func (*TupleType) node() {}

// Kind of the type.
func (*TupleType) Kind() Kind { return TupleKind }

// Equal returns true if other is a tuple type with equal fields.
func (s *TupleType) Equal(other Type) bool {
	otherT, ok := other.(*TupleType)
	if !ok || len(s.Fields) != len(otherT.Fields) {
		return false
	}
	for i, field := range s.Fields {
		if !typeEqual(field, otherT.Fields[i]) {
			return false
		}
	}
	return true
}

// String representation of the type.
func (s *TupleType) String() string {
	return "(" + stringseq.JoinFunc(s.Fields, ", ", typeString) + ")"
}

func (*FuncType) node() {}

// Kind of the type.
func (*FuncType) Kind() Kind { return FuncKind }

// Equal returns true if other is a function type with equal arguments and
// result.
func (s *FuncType) Equal(other Type) bool {
	otherT, ok := other.(*FuncType)
	if !ok || len(s.ArgTypes) != len(otherT.ArgTypes) {
		return false
	}
	for i, arg := range s.ArgTypes {
		if !typeEqual(arg, otherT.ArgTypes[i]) {
			return false
		}
	}
	return typeEqual(s.RetType, otherT.RetType)
}

// String representation of the type.
func (s *FuncType) String() string {
	out := "func(" + stringseq.JoinFunc(s.ArgTypes, ", ", typeString) + ")"
	if s.RetType != nil {
		out += " " + s.RetType.String()
	}
	return out
}

func (*PackedFuncType) node() {}

// Kind of the type.
func (*PackedFuncType) Kind() Kind { return PackedFuncKind }

// Equal returns true if other is the packed function type.
func (*PackedFuncType) Equal(other Type) bool {
	return other != nil && other.Kind() == PackedFuncKind
}

// String representation of the type.
func (*PackedFuncType) String() string { return "packedfunc" }

func typeEqual(x, y Type) bool {
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	return x.Equal(y)
}

func typeString(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
