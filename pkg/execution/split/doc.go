// Package split runs one aligner over several disjoint key ranges at once.
// Each range gets its own fork, so strategies and cursors are never shared
// between goroutines.
package split
