// Package stream wraps the temporal detector's streaming mode in a
// buffered channel pipeline, the way
// pkg/intelligence/correlation/buffer.go buffers events before they are
// handed to the correlation engine.
package stream

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
	"github.com/viable-systems/vsm-pattern-engine/pkg/temporal"
	"github.com/viable-systems/vsm-pattern-engine/pkg/windowing"
)

// Processor reads samples from an input channel, accumulates them into
// sliding windows via a windowing.StreamBuffer, runs the temporal
// detector over each completed window, and writes results to an output
// channel.
type Processor struct {
	logger   *zap.Logger
	detector *temporal.Detector
	buffer   *windowing.StreamBuffer

	mu sync.Mutex
}

// NewProcessor constructs a Processor with the given window/slide sizes.
// A nil logger falls back to a no-op logger.
func NewProcessor(windowSize, slideInterval int, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		logger:   logger,
		detector: temporal.NewDetector(logger),
		buffer:   windowing.NewStreamBuffer(windowSize, slideInterval),
	}
}

// Run consumes in until it closes or ctx is done, emitting one
// PatternResult per completed window to out. Run closes out before
// returning; the caller owns in and must close it to end the pipeline
// cleanly.
func (p *Processor) Run(ctx context.Context, in <-chan float64, out chan<- domain.PatternResult) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case sample, ok := <-in:
			if !ok {
				return
			}
			p.push(ctx, sample, out)
		}
	}
}

func (p *Processor) push(ctx context.Context, sample float64, out chan<- domain.PatternResult) {
	p.mu.Lock()
	windows := p.buffer.Push(sample)
	p.mu.Unlock()

	for _, w := range windows {
		result := p.detector.DetectStream(w)
		select {
		case out <- result:
		case <-ctx.Done():
			return
		}
	}
}

// Buffered reports how many samples are currently accumulated waiting
// for their window to complete.
func (p *Processor) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer.Len()
}
