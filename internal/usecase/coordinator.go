package usecase

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/banner-resolver/internal/entity"
	"github.com/user/banner-resolver/internal/repository"
)

// Coordinator runs the pipeline in the background, one run at a time.
type Coordinator struct {
	ctx    context.Context
	runner Runner
	logger *zap.Logger

	mu      sync.Mutex
	current string
	latest  *entity.RunReport
	wg      sync.WaitGroup
}

// NewCoordinator creates a Coordinator. Runs inherit ctx, so cancelling it
// stops an in-flight run.
func NewCoordinator(ctx context.Context, runner Runner, logger *zap.Logger) *Coordinator {
	return &Coordinator{ctx: ctx, runner: runner, logger: logger.Named("coordinator")}
}

// TryRun starts a run and returns its id, or ErrRunInProgress while another
// run holds the browser.
func (c *Coordinator) TryRun() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != "" {
		return "", repository.ErrRunInProgress
	}
	id := uuid.NewString()
	c.current = id

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		report, err := c.runner.Run(c.ctx, id)
		if err != nil {
			c.logger.Warn("background run ended with error", zap.String("run_id", id), zap.Error(err))
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		c.current = ""
		if report != nil {
			c.latest = report
		}
	}()
	return id, nil
}

// Running returns the id of the in-flight run, if any.
func (c *Coordinator) Running() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.current != ""
}

// Latest returns the report of the last finished run, or nil.
func (c *Coordinator) Latest() *entity.RunReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// Wait blocks until the in-flight run, if any, has finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}
