package pipeline

import (
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// DefaultMilestone is how many files pass between progress log lines.
const DefaultMilestone = 10000

// BatchThreshold is how many ticks a worker collects before reporting them,
// keeping the number of channel sends per milestone independent of the
// worker count.
func BatchThreshold(milestone, workers int) int {
	if workers < 1 {
		workers = 1
	}
	return max(1, milestone/workers)
}

// ProgressSummary is the final state of a Progress.
type ProgressSummary struct {
	Total          int
	Messages       int
	Elapsed        time.Duration
	FilesPerSecond float64
}

// Progress sums batched completion counts from many workers on a single
// goroutine and logs whenever the total crosses a milestone.
type Progress struct {
	ch        chan int
	milestone int
	logger    *slog.Logger
	start     time.Time
	done      chan struct{}
	closeOnce sync.Once

	// owned by the aggregator goroutine until done is closed
	total    int
	messages int
	summary  ProgressSummary
}

// NewProgress starts the aggregator goroutine.
func NewProgress(milestone int, logger *slog.Logger) *Progress {
	if milestone <= 0 {
		milestone = DefaultMilestone
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Progress{
		ch:        make(chan int, 64),
		milestone: milestone,
		logger:    logger,
		start:     time.Now(),
		done:      make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Progress) run() {
	defer close(p.done)
	for n := range p.ch {
		p.messages++
		before := p.total
		p.total += n
		for m := (before/p.milestone + 1) * p.milestone; m <= p.total; m += p.milestone {
			p.logger.Info("Files converted", slog.Int("total", m))
		}
	}

	elapsed := time.Since(p.start)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.total) / elapsed.Seconds()
	}
	p.summary = ProgressSummary{
		Total:          p.total,
		Messages:       p.messages,
		Elapsed:        elapsed,
		FilesPerSecond: rate,
	}
	p.logger.Info("Finished conversion",
		slog.Int("total", p.total),
		slog.Duration("elapsed", elapsed),
		slog.String("files_per_second", formatRate(rate)))
}

// Batcher returns a worker-local tick counter reporting every threshold
// ticks.
func (p *Progress) Batcher(threshold int) *Batcher {
	return &Batcher{ch: p.ch, threshold: max(1, threshold)}
}

// Close waits for all reported counts to be summed and logs the summary.
// Every Batcher must be flushed before Close is called.
func (p *Progress) Close() ProgressSummary {
	p.closeOnce.Do(func() { close(p.ch) })
	<-p.done
	return p.summary
}

// Batcher collects completion ticks of one worker.
type Batcher struct {
	ch        chan<- int
	threshold int
	pending   int
}

// Tick records one completed file.
func (b *Batcher) Tick() {
	b.pending++
	if b.pending >= b.threshold {
		b.Flush()
	}
}

// Flush reports pending ticks, if any.
func (b *Batcher) Flush() {
	if b.pending == 0 {
		return
	}
	b.ch <- b.pending
	b.pending = 0
}

func formatRate(r float64) string {
	return strconv.FormatFloat(r, 'f', 2, 64)
}
