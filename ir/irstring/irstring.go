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

// Package irstring builds a string representation of an IR tree.
//
// The representation is meant for tests and debugging: variables are
// expanded with their annotations at their binding site and referenced by
// name at their uses, structural nodes span multiple indented lines, and
// leaf expressions print on one line.
package irstring

import (
	"fmt"
	"slices"
	"strings"

	irfmt "github.com/gx-org/tensorir/base/fmt"
	"github.com/gx-org/tensorir/base/stringseq"
	"github.com/gx-org/tensorir/ir"
)

// String builds a human readable string representation of a tree.
func String(n ir.Node) string {
	switch nT := n.(type) {
	case nil:
		return "nil"
	case *ir.Module:
		return moduleString(nT)
	case *ir.Function:
		return funcString(nT)
	case *ir.SeqExpr:
		return seqString(nT)
	case *ir.DataflowBlock:
		return blockString("DataflowBlock", nT)
	case *ir.BindingBlock:
		return blockString("BindingBlock", nT)
	case *ir.VarBinding:
		return varBindingString(nT)
	case *ir.MatchShape:
		return matchShapeString(nT)
	case ir.VarNode:
		return varString(nT)
	case ir.Expr:
		return valueString(nT)
	}
	return irfmt.String(n)
}

type field struct {
	name  string
	value string
}

func structString(name string, fields []field) string {
	s := strings.Builder{}
	fmt.Fprintf(&s, "%s {", name)
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		s.WriteString("\n\t")
		s.WriteString(f.name)
		s.WriteString(": ")
		s.WriteString(irfmt.IndentSkip(1, f.value))
	}
	s.WriteString("\n}")
	return s.String()
}

func listString(elems []string) string {
	if len(elems) == 0 {
		return ""
	}
	s := strings.Builder{}
	s.WriteString("[\n")
	for _, elem := range elems {
		s.WriteString(irfmt.Indent(elem))
		s.WriteString("\n")
	}
	s.WriteString("]")
	return s.String()
}

func moduleString(mod *ir.Module) string {
	var funcs []string
	for _, fn := range mod.Funcs() {
		funcs = append(funcs, funcString(fn))
	}
	return structString("Module", []field{
		{"Name", mod.Name()},
		{"Funcs", listString(funcs)},
	})
}

func funcString(fn *ir.Function) string {
	fields := []field{}
	if symbol, ok := fn.GlobalSymbol(); ok {
		fields = append(fields, field{"Name", symbol})
	}
	params := make([]string, len(fn.Params()))
	for i, param := range fn.Params() {
		params[i] = varString(param)
	}
	fields = append(fields, field{"Params", listString(params)})
	if body := fn.Body(); body != nil {
		fields = append(fields, field{"Body", seqString(body)})
	}
	if ret := fn.RetType(); ret != nil {
		fields = append(fields, field{"RetType", ret.String()})
	}
	if shp := fn.RetShape(); shp != nil {
		fields = append(fields, field{"RetShape", shp.String()})
	}
	fields = append(fields, field{"Attrs", attrsString(fn.Attrs())})
	return structString("Function", fields)
}

// attrsString renders the attributes other than the global symbol, which
// funcString reports as the name of the function.
func attrsString(attrs *ir.Attrs) string {
	var parts []string
	for key, value := range attrs.All() {
		if key == ir.AttrGlobalSymbol {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", key, value))
	}
	if len(parts) == 0 {
		return ""
	}
	return "{" + stringseq.Join(slices.Values(parts), ", ") + "}"
}

func seqString(seq *ir.SeqExpr) string {
	blocks := make([]string, len(seq.Blocks()))
	for i, block := range seq.Blocks() {
		blocks[i] = String(block)
	}
	return structString("SeqExpr", []field{
		{"Blocks", listString(blocks)},
		{"Body", valueString(seq.Body())},
	})
}

func blockString(name string, block ir.Block) string {
	bindings := make([]string, len(block.Bindings()))
	for i, binding := range block.Bindings() {
		bindings[i] = String(binding)
	}
	return structString(name, []field{
		{"Bindings", listString(bindings)},
	})
}

func varBindingString(b *ir.VarBinding) string {
	return structString("VarBinding", []field{
		{"Var", varString(b.Target())},
		{"Value", valueString(b.Value())},
	})
}

func matchShapeString(b *ir.MatchShape) string {
	fields := []field{
		{"Value", valueString(b.Value())},
		{"Pattern", patternString(b.Pattern())},
	}
	if target := b.Target(); target != nil {
		fields = append(fields, field{"Var", varString(target)})
	}
	return structString("MatchShape", fields)
}

func patternString(pattern []ir.DimExpr) string {
	return "(" + stringseq.JoinFunc(pattern, ", ", func(dim ir.DimExpr) string {
		if dim == nil {
			return "<nil>"
		}
		return dim.String()
	}) + ")"
}

func varString(v ir.VarNode) string {
	if v == nil {
		return "nil"
	}
	name := "Var"
	if _, ok := v.(*ir.DataflowVar); ok {
		name = "DataflowVar"
	}
	fields := []field{{"Name", v.NameHint()}}
	if typ := v.CheckedType(); typ != nil {
		fields = append(fields, field{"Type", typ.String()})
	}
	if shp := v.Shape(); shp != nil {
		fields = append(fields, field{"Shape", shp.String()})
	}
	return structString(name, fields)
}

// valueString renders an expression in use position. Control and scoping
// constructs expand over multiple lines, everything else prints inline.
func valueString(e ir.Expr) string {
	switch eT := e.(type) {
	case nil:
		return "nil"
	case *ir.SeqExpr:
		return seqString(eT)
	case *ir.IfExpr:
		return structString("IfExpr", []field{
			{"Cond", valueString(eT.Cond())},
			{"Then", valueString(eT.Then())},
			{"Else", valueString(eT.Else())},
		})
	case *ir.Function:
		return funcString(eT)
	}
	return e.String()
}
