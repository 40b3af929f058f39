package stream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
)

func TestProcessorEmitsOnWindowComplete(t *testing.T) {
	p := NewProcessor(10, 5, zap.NewNop())

	in := make(chan float64)
	out := make(chan domain.PatternResult, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		p.Run(ctx, in, out)
		close(done)
	}()

	for i := 0; i < 10; i++ {
		in <- float64(i % 3)
	}
	close(in)

	select {
	case result, ok := <-out:
		require.True(t, ok)
		assert.Equal(t, 10, result.DataLength)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for pattern result")
	}

	<-done
}

func TestProcessorBufferedTracksPartialWindow(t *testing.T) {
	p := NewProcessor(10, 5, nil)
	out := make(chan domain.PatternResult, 1)

	p.push(context.Background(), 1.0, out)
	p.push(context.Background(), 2.0, out)

	assert.Equal(t, 2, p.Buffered())
}
