// Package logging holds the structured logger shared by cursors, strategies
// and aligners.
//
// There is one logger per process. The CLI installs it from the [logging]
// section of the join definition; library code only asks for it, usually
// through a helper that attaches the fields it cares about:
//
//	logging.WithMode("aligner", "ROW").Debug("skip reseek", "side", "B")
//	logging.WithTable("left").Warn("ignoring unrecognized cursor option")
//	logging.WithTask(id, rng).Debug("split task started")
//
// Until Init runs, messages at INFO and above go to stderr as text.
package logging
