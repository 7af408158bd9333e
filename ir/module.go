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
	"iter"

	"github.com/pkg/errors"
	"github.com/gx-org/tensorir/base/ordered"
	"github.com/gx-org/tensorir/fmterr"
	"go.uber.org/multierr"
)

// Module is a named collection of functions, the unit handed to lowering
// passes. Each function is registered under its global symbol and can be
// referenced from any function body with a GlobalVar.
type Module struct {
	srcNode
	name  string
	funcs *ordered.Map[string, *Function]
}

var _ SourceNode = (*Module)(nil)

// NewModule builds a module from a list of functions. All the functions
// are validated, with their errors accumulated, and every global variable
// in their bodies has to resolve to a registered symbol. On failure, no
// module is returned.
func NewModule(name string, funcs []*Function, span fmterr.Span) (*Module, error) {
	mod := &Module{
		srcNode: srcNode{span: span},
		name:    name,
		funcs:   ordered.NewMap[string, *Function](),
	}
	errs := &fmterr.Errors{}
	for i, fn := range funcs {
		if fn == nil {
			errs.Appendf(span, "module %s: function %d is nil", name, i)
			continue
		}
		symbol, ok := fn.GlobalSymbol()
		if !ok {
			errs.AppendAt(fn.Span(), errors.Errorf("cannot register %s: missing %q attribute", fn.String(), AttrGlobalSymbol))
			continue
		}
		if _, registered := mod.funcs.Load(symbol); registered {
			errs.AppendAt(fn.Span(), errors.Errorf("duplicate global symbol %q", symbol))
			continue
		}
		mod.funcs.Store(symbol, fn)
	}
	for symbol, fn := range mod.funcs.Iter() {
		for _, err := range multierr.Errors(Validate(fn)) {
			errs.Append(fmterr.PrefixWith("function %q: ", symbol)(err))
		}
		mod.checkGlobalRefs(symbol, fn, errs)
	}
	if err := errs.ToError(); err != nil {
		return nil, err
	}
	return mod, nil
}

func (m *Module) checkGlobalRefs(symbol string, fn *Function, errs *fmterr.Errors) {
	Walk(fn, func(n Node) bool {
		gv, ok := n.(*GlobalVar)
		if !ok {
			return true
		}
		if _, found := m.funcs.Load(gv.symbol); !found {
			errs.Appendf(gv.Span(), "function %q: undefined global symbol %q", symbol, gv.symbol)
		}
		return true
	})
}

// Name of the module.
func (m *Module) Name() string {
	return m.name
}

// Func returns the function registered under a global symbol,
// or nil if the symbol is not defined in the module.
func (m *Module) Func(symbol string) *Function {
	fn, _ := m.funcs.Load(symbol)
	return fn
}

// Funcs iterates over the functions of the module in registration order.
func (m *Module) Funcs() iter.Seq2[string, *Function] {
	return iter.Seq2[string, *Function](m.funcs.Iter())
}

// NumFuncs returns the number of functions in the module.
func (m *Module) NumFuncs() int {
	return m.funcs.Size()
}

// String returns the module name and its size.
func (m *Module) String() string {
	return "module " + m.name
}
