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

	"github.com/gx-org/backend/dtype"
)

// Kind discriminates the variants of Type, so that consumers can branch
// exhaustively without type assertions.
type Kind int

const (
	// InvalidKind marks a missing type.
	InvalidKind Kind = iota
	// ObjectKind is the kind of ObjectType.
	ObjectKind
	// ShapeKind is the kind of ShapeType.
	ShapeKind
	// TensorKind is the kind of DynTensorType.
	TensorKind
	// TupleKind is the kind of TupleType.
	TupleKind
	// FuncKind is the kind of FuncType.
	FuncKind
	// PackedFuncKind is the kind of PackedFuncType.
	PackedFuncKind
)

// String representation of the kind.
func (k Kind) String() string {
	switch k {
	case ObjectKind:
		return "object"
	case ShapeKind:
		return "shape"
	case TensorKind:
		return "tensor"
	case TupleKind:
		return "tuple"
	case FuncKind:
		return "func"
	case PackedFuncKind:
		return "packedfunc"
	default:
		return "invalid"
	}
}

// DTypeString returns the name of a tensor element type.
func DTypeString(dt dtype.DataType) string {
	switch dt {
	case dtype.Bool:
		return "bool"
	case dtype.Int32:
		return "int32"
	case dtype.Int64:
		return "int64"
	case dtype.Uint32:
		return "uint32"
	case dtype.Uint64:
		return "uint64"
	case dtype.Bfloat16:
		return "bfloat16"
	case dtype.Float32:
		return "float32"
	case dtype.Float64:
		return "float64"
	default:
		return fmt.Sprintf("invalid(%d)", dt)
	}
}
