// Package feedback implements the recursive comb filter that echo, reverb,
// and flanger-style effects are built from.
//
// A Network reads a Delay Line D samples back, mixes that tap with the
// input, and writes input plus feedback times the tap into the line:
//
//	y[n] = feedforward*x[n] + wet*w[n-D]
//	w[n] = x[n] + feedback*w[n-D]
//
// The recursion is only guaranteed bounded for |feedback| < 1, so larger
// gains are rejected unless the network was built with
// WithUnstableFeedback.
package feedback
