package fmt_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	irfmt "github.com/gx-org/tensorir/base/fmt"
)

func TestIndent(t *testing.T) {
	tests := []struct {
		skip int
		txt  string
		want string
	}{
		{
			txt: `
Hello
World
`,
			want: `
	Hello
	World
`,
		},
		{
			skip: 1,
			txt: `
Block{
Content
`,
			want: `
Block{
	Content
`,
		},
	}
	for _, test := range tests {
		got := irfmt.IndentSkip(test.skip, strings.TrimPrefix(test.txt, "\n"))
		want := strings.TrimPrefix(test.want, "\n")
		if got != want {
			t.Errorf("got:\n%s\nbut want:\n%s\ndiff:\n%s", got, want, cmp.Diff(got, want))
		}
	}
}

type stringerTest struct{}

func (stringerTest) String() string { return "stringer" }

func TestString(t *testing.T) {
	var nilSlice []int
	tests := []struct {
		x    any
		want string
	}{
		{x: nil, want: "nil"},
		{x: nilSlice, want: "[]int(nil)"},
		{x: 42, want: "int"},
		{x: stringerTest{}, want: "stringer"},
		{x: []stringerTest{{}, {}}, want: "[]fmt_test.stringerTest{\n\t0: stringer,\n\t1: stringer,\n}"},
	}
	for _, test := range tests {
		got := irfmt.String(test.x)
		if got != test.want {
			t.Errorf("String(%v): got %q but want %q", test.x, got, test.want)
		}
	}
}
