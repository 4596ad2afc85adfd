package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/roadcast/roadcast/internal/observability"
)

// Job types accepted on the subscription.
const (
	JobCacheRefresh = "cache_refresh"
	JobCacheClear   = "cache_clear"
)

// ErrMalformedJob is returned for messages that are not a JSON job.
var ErrMalformedJob = errors.New("malformed job message")

// JobMessage is the body of a job message.
type JobMessage struct {
	JobType string `json:"job_type"`
}

// CacheClearer drops every cached weather result. *travel.Service implements it.
type CacheClearer interface {
	ClearCache()
}

// JobProcessor executes job messages independently of how they arrive.
type JobProcessor struct {
	refreshJob *RefreshJob
	cache      CacheClearer
	metrics    *observability.Metrics
	clock      clockwork.Clock
	logger     zerolog.Logger
}

// JobProcessorConfig holds configuration for a JobProcessor.
type JobProcessorConfig struct {
	RefreshJob *RefreshJob
	Cache      CacheClearer
	Metrics    *observability.Metrics
	Clock      clockwork.Clock
	Logger     zerolog.Logger
}

// NewJobProcessor creates a new job processor.
func NewJobProcessor(cfg JobProcessorConfig) *JobProcessor {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &JobProcessor{
		refreshJob: cfg.RefreshJob,
		cache:      cfg.Cache,
		metrics:    cfg.Metrics,
		clock:      clock,
		logger:     cfg.Logger,
	}
}

// Process runs the job encoded in data. Unknown job types are logged and
// ignored so they are not redelivered; a nil error means the message can be
// acknowledged.
func (p *JobProcessor) Process(ctx context.Context, data []byte) error {
	var msg JobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		p.count("unparsed", "nack")
		return fmt.Errorf("%w: %w", ErrMalformedJob, err)
	}

	start := p.clock.Now()
	var err error
	switch msg.JobType {
	case JobCacheRefresh:
		err = p.handleCacheRefresh(ctx)
	case JobCacheClear:
		p.cache.ClearCache()
	default:
		p.logger.Warn().Str("job_type", msg.JobType).Msg("unknown job type")
		p.count(msg.JobType, "ack")
		return nil
	}

	if err != nil {
		p.count(msg.JobType, "nack")
		return err
	}

	p.logger.Info().
		Str("job_type", msg.JobType).
		Dur("duration", p.clock.Since(start)).
		Msg("job completed successfully")
	p.count(msg.JobType, "ack")
	return nil
}

// handleCacheRefresh fails the job when more locations failed than succeeded,
// so the message is redelivered.
func (p *JobProcessor) handleCacheRefresh(ctx context.Context) error {
	result := p.refreshJob.Run(ctx)
	if result.Failed > result.Successful {
		return fmt.Errorf("too many refresh failures: %d/%d", result.Failed, result.TotalLocations)
	}
	return nil
}

func (p *JobProcessor) count(jobType, outcome string) {
	if p.metrics != nil {
		p.metrics.JobsProcessed.WithLabelValues(jobType, outcome).Inc()
	}
}

// PubSubHandler receives job messages from a Pub/Sub subscription.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	processor        *JobProcessor
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Processor        *JobProcessor
	Logger           zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// A refresh sweep can take a while; keep few messages outstanding.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 4
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		processor:        cfg.Processor,
		logger:           cfg.Logger,
	}, nil
}

// Start receives messages until ctx is cancelled or the subscription fails.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Run calls Start and restarts it with exponential backoff whenever the
// subscription fails, until ctx is cancelled.
func (h *PubSubHandler) Run(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = time.Minute
	bo.MaxElapsedTime = 0

	operation := func() error {
		err := h.Start(ctx)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if err == nil {
			err = errors.New("subscription receive returned")
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		h.logger.Warn().Err(err).Dur("retry_in", wait).Msg("pubsub receive failed, restarting")
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(bo, ctx), notify)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	if err := h.processor.Process(ctx, msg.Data); err != nil {
		logger.Error().Err(err).Msg("job failed")
		msg.Nack()
		return
	}
	msg.Ack()
}
