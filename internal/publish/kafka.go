// Package publish writes derived transport impact assessments to Kafka so
// downstream planners can react without polling the HTTP API.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/roadcast/roadcast/internal/config"
	"github.com/roadcast/roadcast/internal/impact"
	"github.com/roadcast/roadcast/internal/observability"
	"github.com/roadcast/roadcast/internal/travel"
	"github.com/roadcast/roadcast/internal/weather"
)

// ImpactEvent is the message value written for one location.
type ImpactEvent struct {
	Location    string            `json:"location"`
	District    string            `json:"district"`
	Province    string            `json:"province"`
	Condition   weather.Condition `json:"condition,omitempty"`
	Impact      impact.Assessment `json:"impact"`
	LastUpdated time.Time         `json:"lastUpdated"`
	PublishedAt time.Time         `json:"publishedAt"`
}

// messageWriter is the subset of *kafkago.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces impact events to the configured topic.
type Writer struct {
	writer  messageWriter
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  zerolog.Logger
}

// NewWriter creates a Kafka producer for the impact topic.
func NewWriter(cfg config.KafkaConfig, metrics *observability.Metrics, logger zerolog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.ImpactTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return newWriter(w, clockwork.NewRealClock(), metrics, logger)
}

func newWriter(w messageWriter, clock clockwork.Clock, metrics *observability.Metrics, logger zerolog.Logger) *Writer {
	return &Writer{
		writer:  w,
		clock:   clock,
		metrics: metrics,
		logger:  logger.With().Str("component", "impact-publisher").Logger(),
	}
}

// Publish writes one event per result in a single batch. Nil results are skipped.
func (w *Writer) Publish(ctx context.Context, results []*travel.Comprehensive) error {
	now := w.clock.Now().UTC()

	msgs := make([]kafkago.Message, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		msg, err := serializeToMessage(newImpactEvent(r, now))
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil
	}

	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		if w.metrics != nil {
			w.metrics.PublishErrors.Inc()
		}
		w.logger.Error().Err(err).Int("events", len(msgs)).Msg("failed to publish impact events")
		return fmt.Errorf("publish impact events: %w", err)
	}

	if w.metrics != nil {
		w.metrics.ImpactsPublished.Add(float64(len(msgs)))
	}
	w.logger.Debug().Int("events", len(msgs)).Msg("published impact events")
	return nil
}

// Close flushes pending writes and releases the connection.
func (w *Writer) Close() error {
	return w.writer.Close()
}

func newImpactEvent(r *travel.Comprehensive, publishedAt time.Time) ImpactEvent {
	e := ImpactEvent{
		Location:    r.Location.Name,
		District:    r.Location.District,
		Province:    r.Location.Province,
		Impact:      r.Impact,
		LastUpdated: r.LastUpdated.UTC(),
		PublishedAt: publishedAt,
	}
	if r.Current != nil {
		e.Condition = r.Current.Condition
	}
	return e
}

// serializeToMessage marshals an event keyed by location so every update for
// a place lands on the same partition.
func serializeToMessage(event ImpactEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize impact event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Location),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "overall", Value: []byte(event.Impact.Overall.String())},
			{Key: "published_at", Value: []byte(event.PublishedAt.Format(time.RFC3339))},
		},
	}, nil
}
