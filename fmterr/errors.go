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

package fmterr

import (
	"go.uber.org/multierr"
)

// Errors is a set of errors collected while building or validating a tree.
// The zero value is an empty set ready for use.
type Errors struct {
	errs []error
}

// Append an error to the set. Appending nil is a no-op.
// Always returns false so that callers can report and abort a traversal
// in one statement.
func (errs *Errors) Append(err error) bool {
	if err == nil {
		return false
	}
	errs.errs = append(errs.errs, err)
	return false
}

// Appendf appends an error located at a span.
func (errs *Errors) Appendf(span Span, format string, a ...any) bool {
	return errs.Append(Errorf(span, format, a...))
}

// AppendAt appends an existing error at a given span.
func (errs *Errors) AppendAt(span Span, err error) bool {
	return errs.Append(Position(span, err))
}

// AppendInternalf appends an internal error located at a span.
func (errs *Errors) AppendInternalf(span Span, format string, a ...any) bool {
	return errs.Append(Internalf(span, format, a...))
}

// Empty returns true if no error has been appended.
func (errs *Errors) Empty() bool {
	return len(errs.errs) == 0
}

// Errors returns the list of all collected errors.
func (errs *Errors) Errors() []error {
	return append([]error{}, errs.errs...)
}

// ToError combines the collected errors into a single error,
// or returns nil if the set is empty.
func (errs *Errors) ToError() error {
	if errs == nil || errs.Empty() {
		return nil
	}
	return multierr.Combine(errs.errs...)
}
