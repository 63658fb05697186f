// Package progress decouples retrieval progress reporting from any
// particular presentation. The core packages report through the Reporter
// interface; the CLI decides how (or whether) to render it. Cancellation is
// carried separately by the context.Context threaded through every
// operation.
package progress

// Reporter observes file-level retrieval progress.
//
// Step is invoked once per file after it has been written to disk, with the
// number of completed files so far, the total number of files, and the
// repo-relative path of the file that finished. Calls are delivered one at
// a time with completed increasing by one per call; which file finishes at
// a given count is unspecified. Successive calls may come from different
// goroutines, so implementations must synchronize any shared state.
type Reporter interface {
	Step(completed, total int, path string)
}

// Func adapts a plain function to a Reporter.
type Func func(completed, total int, path string)

// Step implements Reporter.
func (f Func) Step(completed, total int, path string) {
	f(completed, total, path)
}

// Nop returns a Reporter that discards all progress.
func Nop() Reporter {
	return nopReporter{}
}

type nopReporter struct{}

func (nopReporter) Step(int, int, string) {}
