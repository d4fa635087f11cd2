package pipeline

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchThreshold(t *testing.T) {
	tests := []struct {
		milestone, workers, want int
	}{
		{10000, 8, 1250},
		{10000, 1, 10000},
		{10, 32, 1},
		{5, 0, 5},
	}
	for _, tt := range tests {
		if got := BatchThreshold(tt.milestone, tt.workers); got != tt.want {
			t.Errorf("BatchThreshold(%d, %d) = %d, want %d", tt.milestone, tt.workers, got, tt.want)
		}
	}
}

func TestProgress_Milestones(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	p := NewProgress(10, logger)
	b := p.Batcher(3)
	for range 25 {
		b.Tick()
	}
	b.Flush()
	summary := p.Close()

	assert.Equal(t, 25, summary.Total)
	assert.Equal(t, 9, summary.Messages, "eight full batches and one remainder")

	logs := buf.String()
	assert.Equal(t, 2, strings.Count(logs, `msg="Files converted"`))
	assert.Contains(t, logs, "total=10")
	assert.Contains(t, logs, "total=20")
	assert.Contains(t, logs, `msg="Finished conversion" total=25`)
}

func TestProgress_BatchCrossingSeveralMilestones(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(2, slog.New(slog.NewTextHandler(&buf, nil)))
	b := p.Batcher(7)
	for range 7 {
		b.Tick()
	}
	p.Close()

	assert.Equal(t, 3, strings.Count(buf.String(), `msg="Files converted"`))
}

func TestProgress_ManyWorkers(t *testing.T) {
	const workers, perWorker, milestone = 8, 1000, 500
	var buf bytes.Buffer
	p := NewProgress(milestone, slog.New(slog.NewTextHandler(&buf, nil)))

	var wg sync.WaitGroup
	for range workers {
		b := p.Batcher(BatchThreshold(milestone, workers))
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer b.Flush()
			for range perWorker {
				b.Tick()
			}
		}()
	}
	wg.Wait()
	summary := p.Close()

	assert.Equal(t, workers*perWorker, summary.Total)
	assert.LessOrEqual(t, summary.Messages, workers*perWorker/BatchThreshold(milestone, workers)+workers)
	assert.Equal(t, workers*perWorker/milestone, strings.Count(buf.String(), `msg="Files converted"`))
}

func TestProgress_EmptyAndCloseTwice(t *testing.T) {
	p := NewProgress(0, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	p.Batcher(5).Flush()
	first := p.Close()
	second := p.Close()

	assert.Equal(t, 0, first.Total)
	assert.Equal(t, 0, first.Messages)
	assert.Equal(t, first, second)
}
