package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultCheckpointInterval = 30 * time.Second

// Checkpointer retries the workspace write in the background after a failed
// save, so a store outage does not wait for the next mutation to heal.
type Checkpointer struct {
	workspace *WorkspaceService
	logger    *zap.Logger

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewCheckpointer(ws *WorkspaceService, logger *zap.Logger) *Checkpointer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checkpointer{
		workspace: ws,
		logger:    logger,
		interval:  defaultCheckpointInterval,
		stopCh:    make(chan struct{}),
	}
}

func (c *Checkpointer) SetInterval(d time.Duration) {
	if d > 0 {
		c.interval = d
	}
}

// Start runs the checkpointer on a periodic schedule in a background goroutine.
func (c *Checkpointer) Start() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.logger.Info("workspace checkpointer started", zap.Duration("interval", c.interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				c.run(ctx)
				cancel()
			case <-c.stopCh:
				c.logger.Info("workspace checkpointer stopped")
				return
			}
		}
	}()
}

// Stop halts the loop and makes one last attempt to write a dirty workspace.
func (c *Checkpointer) Stop(ctx context.Context) {
	close(c.stopCh)
	c.wg.Wait()
	c.run(ctx)
}

func (c *Checkpointer) run(ctx context.Context) bool {
	if !c.workspace.Dirty() {
		return false
	}
	if err := c.workspace.Flush(ctx); err != nil {
		c.logger.Warn("workspace checkpoint failed", zap.Error(err))
		return false
	}
	c.logger.Info("workspace checkpoint recovered")
	return true
}
