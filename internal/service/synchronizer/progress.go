package synchronizer

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Progress receives per-release progress of a merge.
// Step may be called from several goroutines at once.
type Progress interface {
	Start(total int)
	Step(description string)
	Done()
}

// noopProgress discards progress updates.
type noopProgress struct{}

func (noopProgress) Start(int)   {}
func (noopProgress) Step(string) {}
func (noopProgress) Done()       {}

// barProgress renders progress as a terminal progress bar.
type barProgress struct {
	// out is where the bar is drawn.
	out io.Writer
	// bar is created by Start.
	bar *progressbar.ProgressBar
	// mu serializes updates coming from concurrent release tasks.
	mu sync.Mutex
}

// NewBarProgress returns a Progress drawing a bar to out.
func NewBarProgress(out io.Writer) Progress {
	return &barProgress{out: out}
}

// Start creates a bar for total releases.
func (p *barProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("releases"),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(200*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// Step advances the bar by one release.
func (p *barProgress) Step(description string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		return
	}

	p.bar.Describe(description)
	_ = p.bar.Add(1)
}

// Done completes the bar.
func (p *barProgress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		return
	}

	_ = p.bar.Finish()
}
