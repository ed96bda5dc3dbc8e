// Package buffer provides the planar multichannel Block that effects
// process in place, a pool for reusing blocks in hot paths, and
// conversion to and from interleaved go-audio buffers at the I/O boundary.
package buffer
