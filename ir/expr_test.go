package ir_test

import (
	"strings"
	"testing"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
	"github.com/gx-org/tensorir/fmterr"
	"github.com/gx-org/tensorir/ir"
	"github.com/gx-org/tensorir/ir/irhelper"
)

func TestConstant(t *testing.T) {
	cst := irhelper.Const(dtype.Float32, 2, 3)
	if got, want := cst.String(), "const float32(2, 3)"; got != want {
		t.Errorf("incorrect constant string: got %s but want %s", got, want)
	}
	if got, want := cst.CheckedType().String(), "Tensor(2, float32)"; got != want {
		t.Errorf("incorrect constant type: got %s but want %s", got, want)
	}
	if got, want := cst.Shape().String(), "(2, 3)"; got != want {
		t.Errorf("incorrect constant shape: got %s but want %s", got, want)
	}
	if got, want := len(cst.Data()), cst.ArrayShape().ByteSize(); got != want {
		t.Errorf("incorrect buffer size: got %d but want %d", got, want)
	}
}

func TestConstantBufferSize(t *testing.T) {
	sh := &shape.Shape{DType: dtype.Float32, AxisLengths: []int{2, 3}}
	_, err := ir.NewConstant(sh, make([]byte, 5), fmterr.Span{})
	if err == nil {
		t.Fatalf("expected an error for a buffer of the wrong size")
	}
	const want = "buffer size is 5 but the shape specifies a buffer size of 24"
	if !strings.Contains(err.Error(), want) {
		t.Errorf("incorrect error: got %v but want a message containing %q", err, want)
	}
	if _, err := ir.NewConstant(nil, nil, fmterr.Span{}); err == nil {
		t.Errorf("expected an error for a constant without a shape")
	}
}

func TestTuple(t *testing.T) {
	typed := irhelper.Tuple(
		irhelper.Const(dtype.Float32, 2),
		irhelper.Const(dtype.Int64, 3),
	)
	if got, want := typed.CheckedType().String(), "(Tensor(1, float32), Tensor(1, int64))"; got != want {
		t.Errorf("incorrect tuple type: got %s but want %s", got, want)
	}
	untyped := irhelper.Tuple(irhelper.Var("x"), irhelper.Const(dtype.Float32, 2))
	if untyped.CheckedType() != nil {
		t.Errorf("a tuple with an untyped element must not resolve its type, got %s", untyped.CheckedType())
	}
	if got, want := untyped.String(), "(x, const float32(2))"; got != want {
		t.Errorf("incorrect tuple string: got %s but want %s", got, want)
	}
}

func TestTupleGet(t *testing.T) {
	tuple := irhelper.Tuple(
		irhelper.Const(dtype.Float32, 2),
		irhelper.Const(dtype.Int64, 3),
	)
	get := irhelper.TupleGet(tuple, 1)
	if got, want := get.CheckedType().String(), "Tensor(1, int64)"; got != want {
		t.Errorf("incorrect projection type: got %s but want %s", got, want)
	}
	if got, want := get.Index(), 1; got != want {
		t.Errorf("incorrect projection index: got %d but want %d", got, want)
	}
	if _, err := ir.NewTupleGet(tuple, 2, fmterr.Span{}); err == nil {
		t.Errorf("expected an error for an index beyond the tuple fields")
	}
	if _, err := ir.NewTupleGet(tuple, -1, fmterr.Span{}); err == nil {
		t.Errorf("expected an error for a negative index")
	}
	unresolved, err := ir.NewTupleGet(irhelper.Var("t"), 5, fmterr.Span{})
	if err != nil {
		t.Fatalf("projection of an unresolved tuple cannot be checked eagerly: %v", err)
	}
	if unresolved.CheckedType() != nil {
		t.Errorf("expected a nil type on an unresolved projection, got %s", unresolved.CheckedType())
	}
}

func TestCallString(t *testing.T) {
	extern := irhelper.Extern("tensor.matmul")
	call := irhelper.Call(extern, irhelper.Var("x"), irhelper.Var("y"))
	if got, want := call.String(), `extern("tensor.matmul")(x, y)`; got != want {
		t.Errorf("incorrect call string: got %s but want %s", got, want)
	}
	if call.Effectful() {
		t.Errorf("calls have no side effect unless flagged")
	}
	effectful := irhelper.EffectfulCall(extern, irhelper.Var("x"))
	if !effectful.Effectful() {
		t.Errorf("expected an effectful call")
	}
}

func TestExternFunc(t *testing.T) {
	if _, err := ir.NewExternFunc("", fmterr.Span{}); err == nil {
		t.Errorf("expected an error for an empty external symbol")
	}
	extern := irhelper.Extern("tensor.print")
	if got, want := extern.CheckedType().Kind(), ir.PackedFuncKind; got != want {
		t.Errorf("incorrect type kind: got %s but want %s", got, want)
	}
	if got, want := extern.GlobalSymbol(), "tensor.print"; got != want {
		t.Errorf("incorrect symbol: got %s but want %s", got, want)
	}
}

func TestGlobalVar(t *testing.T) {
	if _, err := ir.NewGlobalVar("", fmterr.Span{}); err == nil {
		t.Errorf("expected an error for an empty global symbol")
	}
	gv := irhelper.Global("main")
	if got, want := gv.String(), "@main"; got != want {
		t.Errorf("incorrect reference string: got %s but want %s", got, want)
	}
}

func TestIfString(t *testing.T) {
	x := ir.NewIf(irhelper.Var("c"), irhelper.Var("a"), irhelper.Var("b"), fmterr.Span{})
	if got, want := x.String(), "if c { a } else { b }"; got != want {
		t.Errorf("incorrect conditional string: got %s but want %s", got, want)
	}
}
