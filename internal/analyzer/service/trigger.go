package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/pkg/common"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// AnalysisTrigger starts an analysis run without waiting for it.
type AnalysisTrigger interface {
	Trigger(ctx context.Context, requestedBy string) error
}

type localTrigger struct {
	log     *logger.Logger
	job     AnalysisJob
	timeout time.Duration
}

// NewLocalTrigger runs the job in a background goroutine of this process.
func NewLocalTrigger(log *logger.Logger, job AnalysisJob, timeout time.Duration) AnalysisTrigger {
	return &localTrigger{log: log, job: job, timeout: timeout}
}

func (t *localTrigger) Trigger(ctx context.Context, requestedBy string) error {
	t.log.InfoContext(ctx, "Analysis run requested", logger.StringField("requested_by", requestedBy))
	utils.GoSafe(func() {
		runCtx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		t.job.Run(runCtx)
	})
	return nil
}

type streamTrigger struct {
	log         *logger.Logger
	redisClient *redis.Client
	maxLen      int64
	now         Clock
}

// NewStreamTrigger publishes run requests to the trigger stream, to be picked
// up by an AnalysisTaskService consumer.
func NewStreamTrigger(log *logger.Logger, redisClient *redis.Client, maxLen int64, now Clock) AnalysisTrigger {
	return &streamTrigger{log: log, redisClient: redisClient, maxLen: maxLen, now: now}
}

func (t *streamTrigger) Trigger(ctx context.Context, requestedBy string) error {
	payload, err := json.Marshal(dto.TriggerMessage{
		RequestedAt: t.now().Format(time.RFC3339),
		RequestedBy: requestedBy,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal trigger message: %w", err)
	}

	id, err := t.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamAnalysisTrigger,
		MaxLen: t.maxLen,
		Approx: t.maxLen > 0,
		Values: map[string]interface{}{"payload": string(payload)},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish trigger message: %w", err)
	}

	t.log.InfoContext(ctx, "Analysis run published",
		logger.StringField("message_id", id),
		logger.StringField("requested_by", requestedBy),
	)
	return nil
}

// AnalysisTaskService consumes the trigger stream.
type AnalysisTaskService interface {
	ProcessTask(ctx context.Context) error
}

type analysisTaskService struct {
	log         *logger.Logger
	redisClient *redis.Client
	job         AnalysisJob
}

func NewAnalysisTaskService(log *logger.Logger, redisClient *redis.Client, job AnalysisJob) AnalysisTaskService {
	return &analysisTaskService{log: log, redisClient: redisClient, job: job}
}

// ProcessTask reads at most one trigger message and runs the job for it.
// Only stream read failures are returned; an idle poll is not an error.
func (s *analysisTaskService) ProcessTask(ctx context.Context) error {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamAnalysisTrigger, ">"},
		Count:    1,
		Block:    2 * time.Second,
	}).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to read trigger stream: %w", err)
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil
	}

	message := streams[0].Messages[0]
	defer func() {
		if err := s.redisClient.XAck(context.Background(), common.RedisStreamAnalysisTrigger, common.RedisStreamGroup, message.ID).Err(); err != nil {
			s.log.Error("Failed to ack trigger message", logger.StringField("message_id", message.ID), logger.ErrorField(err))
		}
	}()

	var msg dto.TriggerMessage
	if raw, ok := message.Values["payload"].(string); ok {
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			s.log.Warn("Invalid trigger payload", logger.StringField("message_id", message.ID), logger.ErrorField(err))
		}
	}

	s.log.Info("Processing analysis trigger",
		logger.StringField("message_id", message.ID),
		logger.StringField("requested_by", msg.RequestedBy),
		logger.StringField("requested_at", msg.RequestedAt),
	)
	summary := s.job.Run(ctx)
	s.log.Info("Analysis trigger processed",
		logger.StringField("message_id", message.ID),
		logger.IntField("reports", len(summary.Reports)),
	)
	return nil
}
