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

import "iter"

// AttrGlobalSymbol names a function for linkage across modules and native
// symbol tables.
const AttrGlobalSymbol = "global_symbol"

type (
	// Attrs is an ordered set of function attributes.
	// A nil *Attrs behaves as an empty set.
	Attrs struct {
		attrs []*Attr
	}

	// Attr is a key pointing to some metadata.
	Attr struct {
		// key used to identify the attribute.
		key string
		// value of the attribute.
		value any
	}
)

// NewAttr creates a new attribute.
func NewAttr(key string, value any) *Attr {
	return &Attr{key: key, value: value}
}

// Key of the attribute.
func (a *Attr) Key() string { return a.key }

// Value of the attribute.
func (a *Attr) Value() any { return a.value }

// NewAttrs returns a set with the given attributes appended in order.
func NewAttrs(attrs ...*Attr) *Attrs {
	set := &Attrs{}
	for _, attr := range attrs {
		set.Append(attr.key, attr.value)
	}
	return set
}

// Append an attribute to the set. Appending a key already in the set
// replaces its value.
func (attrs *Attrs) Append(key string, value any) {
	for _, attr := range attrs.attrs {
		if attr.key == key {
			attr.value = value
			return
		}
	}
	attrs.attrs = append(attrs.attrs, NewAttr(key, value))
}

// Get returns the value of an attribute.
func (attrs *Attrs) Get(key string) (any, bool) {
	if attrs == nil {
		return nil, false
	}
	for _, attr := range attrs.attrs {
		if attr.key == key {
			return attr.value, true
		}
	}
	return nil, false
}

// Len returns the number of attributes in the set.
func (attrs *Attrs) Len() int {
	if attrs == nil {
		return 0
	}
	return len(attrs.attrs)
}

// All ranges over the attributes in insertion order.
func (attrs *Attrs) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if attrs == nil {
			return
		}
		for _, attr := range attrs.attrs {
			if !yield(attr.key, attr.value) {
				return
			}
		}
	}
}

// Clone creates a new set with the same attributes. Values are shared.
func (attrs *Attrs) Clone() *Attrs {
	if attrs == nil {
		return nil
	}
	nw := &Attrs{attrs: make([]*Attr, len(attrs.attrs))}
	for i, attr := range attrs.attrs {
		nw.attrs[i] = NewAttr(attr.key, attr.value)
	}
	return nw
}
