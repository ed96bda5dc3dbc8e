package feedback_test

import (
	"fmt"

	"github.com/cwbudde/algo-afx/dsp/feedback"
)

func ExampleNetwork() {
	n, err := feedback.New(1000, 0.01,
		feedback.WithDelay(0.004),
		feedback.WithFeedback(0.5),
		feedback.WithFeedforward(0),
		feedback.WithWet(1),
	)
	if err != nil {
		panic(err)
	}

	buf := make([]float64, 13)
	buf[0] = 1
	n.ProcessInPlace(buf)
	fmt.Println(buf)
	// Output: [0 0 0 0 1 0 0 0 0.5 0 0 0 0.25]
}
