package consumer

import (
	"context"
	"sync"
	"time"

	"golang-stock-watchlist/internal/analyzer/service"
	"golang-stock-watchlist/pkg/common"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/utils"
)

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// TaskFunc handles one poll of a stream. A returned error means the stream
// itself could not be read.
type TaskFunc func(ctx context.Context) error

// RedisConsumer runs analysis requests published to the trigger stream.
type RedisConsumer struct {
	taskService service.AnalysisTaskService
	timeout     time.Duration
	logger      *logger.Logger
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// NewRedisConsumer creates a consumer whose every poll, including the analysis
// run it may start, is bounded by timeout.
func NewRedisConsumer(taskService service.AnalysisTaskService, timeout time.Duration, log *logger.Logger) *RedisConsumer {
	return &RedisConsumer{
		taskService: taskService,
		timeout:     timeout,
		logger:      log,
		stopChan:    make(chan struct{}),
	}
}

func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started")
	c.RegisterStreamHandler(ctx, c.taskService.ProcessTask, common.RedisStreamAnalysisTrigger, c.timeout)
}

// RegisterStreamHandler polls fn until ctx ends or Stop is called. Consecutive
// read failures back off exponentially.
func (c *RedisConsumer) RegisterStreamHandler(ctx context.Context, fn TaskFunc, streamName string, timeout time.Duration) {
	c.logger.Info("Registering stream handler", logger.StringField("stream", streamName))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		backoff := time.Duration(0)
		for {
			if backoff > 0 && !c.sleep(ctx, backoff) {
				return
			}
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping")
				return
			default:
			}

			pollCtx, cancel := context.WithTimeout(ctx, timeout)
			err := fn(pollCtx)
			cancel()

			if err == nil {
				backoff = 0
				continue
			}
			backoff = nextBackoff(backoff)
			c.logger.Warn("Stream poll failed",
				logger.StringField("stream", streamName),
				logger.DurationField("backoff", backoff),
				logger.ErrorField(err),
			)
		}
	})
}

// Stop gracefully shuts down the consumer. It is safe to call more than once.
func (c *RedisConsumer) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}

func (c *RedisConsumer) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-c.stopChan:
		return false
	case <-timer.C:
		return true
	}
}

func nextBackoff(current time.Duration) time.Duration {
	if current <= 0 {
		return minBackoff
	}
	if current*2 > maxBackoff {
		return maxBackoff
	}
	return current * 2
}
