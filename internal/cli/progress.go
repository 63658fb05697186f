package cli

import (
	"sync"

	"github.com/cheggaaa/pb/v3"
)

// progressBar adapts retrieval progress callbacks to a terminal bar. The
// bar starts lazily on the first step because the total file count is only
// known once the remote listing completes, and the git strategy reports no
// steps at all.
type progressBar struct {
	mu  sync.Mutex
	bar *pb.ProgressBar
}

func newProgressBar() *progressBar { return &progressBar{} }

// Step implements progress.Reporter. Steps arrive concurrently from the
// download workers.
func (p *progressBar) Step(completed, total int, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		p.bar = pb.Full.Start(total)
	}
	p.bar.SetCurrent(int64(completed))
	if completed >= total {
		p.bar.Finish()
	}
}

// Finish stops the bar if it ever started. Safe to call more than once.
func (p *progressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		p.bar.Finish()
	}
}
