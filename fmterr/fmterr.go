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

// Package fmterr provides helpers to accumulate errors while building or
// validating an IR tree and to format errors given a source span.
//
// The IR has no source representation of its own: spans are plain values
// reported by whatever front-end produced the tree.
package fmterr

import (
	"fmt"
	"io"
	"runtime/debug"
	"strconv"

	"github.com/pkg/errors"
)

// Span is a source location reported by a front-end.
// The zero value means the location is unknown.
type Span struct {
	// Filename of the source, empty if unknown.
	Filename string
	// Line number, starting at 1. Zero if unknown.
	Line int
	// Column number, starting at 1. Zero if unknown.
	Column int
}

// Valid returns true if the span carries any location information.
func (s Span) Valid() bool {
	return s.Filename != "" || s.Line > 0
}

// String returns the span as file:line:column, omitting unknown parts.
func (s Span) String() string {
	out := s.Filename
	if s.Line > 0 {
		if out != "" {
			out += ":"
		}
		out += strconv.Itoa(s.Line)
		if s.Column > 0 {
			out += ":" + strconv.Itoa(s.Column)
		}
	}
	if out == "" {
		return "-"
	}
	return out
}

type (
	// ErrorWithSpan is an error attached to a location in front-end source.
	ErrorWithSpan interface {
		error
		Span() Span
		Err() error
	}

	errorWithSpan struct {
		span Span
		err  error
	}
)

// Position adds source location information to an error.
func Position(span Span, err error) ErrorWithSpan {
	return errorWithSpan{span: span, err: err}
}

// Errorf returns a formatted error for the user, located at span.
func Errorf(span Span, format string, a ...any) error {
	return Position(span, errors.Errorf(format, a...))
}

// Internal marks an error as internal, potentially adding additional information.
func Internal(err error) error {
	return fmt.Errorf("internal IR error. This is a bug. Please report it. Error:\n%+v", err)
}

// Internalf returns a formatted internal error located at span.
func Internalf(span Span, format string, a ...any) error {
	return Internal(Errorf(span, format, a...))
}

// Error returns a string description of the error.
func (err errorWithSpan) Error() (s string) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		s = fmt.Sprintf("recovered from panic when building error message: %T:\n%v", err.err, string(debug.Stack()))
	}()
	if !err.span.Valid() {
		return err.err.Error()
	}
	return err.span.String() + ": " + err.err.Error()
}

// Unwrap the error.
func (err errorWithSpan) Unwrap() error {
	return err.err
}

// Format writes the error into the state of the formatter.
func (err errorWithSpan) Format(s fmt.State, verb rune) {
	format(err, s, verb)
}

func (err errorWithSpan) Span() Span {
	return err.span
}

func (err errorWithSpan) Err() error {
	return err.err
}

// PrefixWith returns a function to prefix errors with a formatted string.
func PrefixWith(s string, o ...any) func(err error) error {
	return func(err error) error {
		return fmt.Errorf("%s%w", fmt.Sprintf(s, o...), err)
	}
}

func formatVerbose(err error, s fmt.State) {
	fmt.Fprintf(s, "%s", err.Error())
	var withSt interface {
		StackTrace() errors.StackTrace
	}
	if !errors.As(err, &withSt) {
		return
	}
	fmt.Fprintf(s, "\nError generated at:%+v\n", withSt.StackTrace())
}

func format(err error, s fmt.State, verb rune) {
	switch verb {
	case 'w':
		fallthrough
	case 'v':
		if s.Flag('+') {
			formatVerbose(err, s)
			return
		}
		fallthrough
	case 's':
		io.WriteString(s, err.Error())
	case 'q':
		fmt.Fprintf(s, "%q", err.Error())
	}
}
