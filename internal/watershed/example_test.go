package watershed_test

import (
	"fmt"

	"github.com/ironsheep/ctseg/internal/grid"
	"github.com/ironsheep/ctseg/internal/watershed"
)

// ExampleSegment floods a one-row profile with three minima.
func ExampleSegment() {
	field, err := grid.FromRows([][]float64{{1, 3, 1, 3, 1, 10}}, grid.KindFloat)
	if err != nil {
		panic(err)
	}

	res, err := watershed.Segment(field, watershed.Params{})
	if err != nil {
		panic(err)
	}
	fmt.Println("basins:", res.Basins)
	fmt.Println(res.Labels.Labels())
	// Output:
	// basins: 3
	// [1 1 2 2 3 3]
}
