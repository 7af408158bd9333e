package shapematch_test

import (
	"fmt"

	"github.com/gx-org/tensorir/ir"
	"github.com/gx-org/tensorir/ir/irhelper"
	"github.com/gx-org/tensorir/shapematch"
)

// ExampleMatch binds the symbol m on its first occurrence, then uses it
// to check a derived dimension of a second shape.
func ExampleMatch() {
	env := shapematch.NewEnv()
	if err := shapematch.Match(irhelper.Dims("m", 4), []int64{7, 4}, env); err != nil {
		fmt.Println(err)
		return
	}
	grown := irhelper.Dims(irhelper.BinaryDim(ir.DimAdd, "m", 2))
	if err := shapematch.Match(grown, []int64{9}, env); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(env)
	// Output: {m=7}
}
