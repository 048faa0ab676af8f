// Package heaptrace sizes heap pools from observed allocation behavior.
//
// A Histogram folds a device's allocation events into per-size peak
// concurrency counts. Optimize groups the histogram into a small number of
// fixed-block-size pools that minimize wasted memory (fragmentation) while
// exactly filling the heap budget, via a branch-and-bound partition search.
// Bootstrap synthesizes a pool layout for a new project before any trace
// exists.
//
// Wire-level trace parsing is out of scope: callers feed decoded allocation
// events (or ready peak counts) into a Histogram, and the optimizer treats
// it as opaque, already-validated input.
package heaptrace
