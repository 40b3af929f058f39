package engine

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
	"github.com/viable-systems/vsm-pattern-engine/pkg/temporal"
)

// Start launches the background scheduler loop: every config.DetectionInterval
// it pulls recent data from the vector store and runs pattern analysis over
// it, fire-and-forget. A tick that errors is logged and does not cancel
// future ticks, matching tapio-server's main run loop.
func (c *Coordinator) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.schedulerCancel = cancel
	c.schedulerDone = make(chan struct{})
	done := c.schedulerDone
	c.mu.Unlock()

	interval := c.config.DetectionInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.tick(ctx)
			}
		}
	}()
}

func (c *Coordinator) tick(ctx context.Context) {
	c.mu.Lock()
	c.lastTick = time.Now()
	c.mu.Unlock()

	if c.storage == nil {
		return
	}

	resp, err := c.storage.GetRecentData(ctx, domain.QueryRequest{
		Types: []domain.DocumentType{domain.DocumentPattern},
		Limit: 1,
	})
	if err != nil {
		c.logger.Warn("scheduler tick: failed to fetch recent data", zap.Error(err))
		return
	}
	if len(resp.Documents) == 0 {
		return
	}

	var doc domain.StoreDocument
	if err := json.Unmarshal(resp.Documents[0], &doc); err != nil {
		c.logger.Warn("scheduler tick: failed to decode recent data", zap.Error(err))
		return
	}
	if len(doc.Vector) == 0 {
		return
	}

	c.AnalyzePattern(ctx, doc.Vector, temporal.DefaultOptions())
}

// Stop cancels the scheduler loop and blocks until it has exited or ctx
// is done, whichever comes first.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.mu.Lock()
	cancel := c.schedulerCancel
	done := c.schedulerDone
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
