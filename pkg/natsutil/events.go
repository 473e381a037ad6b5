/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package natsutil publishes engine events to NATS JetStream as CloudEvents.
package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/centraldanone/pkg/logger"
	"github.com/carverauto/centraldanone/pkg/models"
)

const (
	eventSource     = "centraldanone/engine"
	eventTypePrefix = "com.carverauto.centraldanone."
	defaultPrefix   = "danone"
)

var errNoConnection = errors.New("nats connection is required")

// EventPublisher provides methods for publishing CloudEvents to NATS JetStream.
// It serves both as an alert notifier and as an engine event sink.
type EventPublisher struct {
	js     jetstream.JetStream
	stream string
	prefix string
	logger logger.Logger
	now    func() time.Time
}

// NewEventPublisher wraps an existing JetStream context. The stream is not
// checked; use CreateEventPublisher to ensure it exists.
func NewEventPublisher(js jetstream.JetStream, streamName, subjectPrefix string, log logger.Logger) *EventPublisher {
	if subjectPrefix == "" {
		subjectPrefix = defaultPrefix
	}

	return &EventPublisher{
		js:     js,
		stream: streamName,
		prefix: strings.TrimSuffix(subjectPrefix, "."),
		logger: log,
		now:    time.Now,
	}
}

// Subject returns the subject an event type is published on.
func (p *EventPublisher) Subject(typ models.EngineEventType) string {
	return p.prefix + "." + string(typ)
}

// Publish sends one engine event.
func (p *EventPublisher) Publish(ctx context.Context, evt models.EngineEvent) error {
	ts := evt.Timestamp
	if ts.IsZero() {
		ts = p.now()
	}

	event := models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            eventTypePrefix + string(evt.Type),
		DataContentType: "application/json",
		Subject:         p.Subject(evt.Type),
		Time:            &ts,
		Data:            evt.Data,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", evt.Type, err)
	}

	ack, err := p.js.Publish(ctx, event.Subject, eventBytes)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", evt.Type, err)
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("subject", event.Subject).
		Uint64("seq", ack.Sequence).
		Msg("Published event")

	return nil
}

// Notify publishes alert.opened or alert.resolved for every change.
func (p *EventPublisher) Notify(ctx context.Context, changes []models.AlertChange) error {
	var errs []error

	for i := range changes {
		typ := models.EventAlertOpened
		if changes[i].Resolved {
			typ = models.EventAlertResolved
		}

		ts := changes[i].Alert.CreatedAt
		if changes[i].Alert.ResolvedAt != nil {
			ts = *changes[i].Alert.ResolvedAt
		}

		if err := p.Publish(ctx, models.EngineEvent{Type: typ, Timestamp: ts, Data: changes[i]}); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Connect dials NATS with the engine's connection handlers and optional mTLS.
func Connect(cfg *models.EventsConfig, log logger.Logger, extraOpts ...nats.Option) (*nats.Conn, error) {
	opts := []nats.Option{nats.Name("centraldanone")}

	if cfg.TLS != nil {
		tlsConf, err := TLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to build NATS TLS config: %w", err)
		}

		opts = append(opts, nats.Secure(tlsConf))
	}

	opts = append(opts,
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
		nats.ConnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("Connected to NATS")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)

	opts = append(opts, extraOpts...)

	nc, err := nats.Connect(cfg.NATSURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return nc, nil
}

// CreateEventPublisher creates an EventPublisher for an existing NATS
// connection and makes sure the stream captures every engine subject.
func CreateEventPublisher(ctx context.Context, nc *nats.Conn, cfg *models.EventsConfig, log logger.Logger) (*EventPublisher, error) {
	if nc == nil {
		return nil, errNoConnection
	}

	var (
		js  jetstream.JetStream
		err error
	)

	if cfg.Domain != "" {
		js, err = jetstream.NewWithDomain(nc, cfg.Domain)
	} else {
		js, err = jetstream.New(nc)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	publisher := NewEventPublisher(js, cfg.StreamName, cfg.SubjectPrefix, log)

	if err := publisher.ensureStream(ctx); err != nil {
		return nil, err
	}

	return publisher, nil
}

func (p *EventPublisher) ensureStream(ctx context.Context) error {
	wildcard := p.prefix + ".>"

	stream, err := p.js.Stream(ctx, p.stream)
	if err != nil {
		if !isStreamMissingErr(err) {
			return fmt.Errorf("failed to look up stream %s: %w", p.stream, err)
		}

		if _, err := p.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:     p.stream,
			Subjects: []string{wildcard},
		}); err != nil {
			return fmt.Errorf("failed to create stream %s: %w", p.stream, err)
		}

		p.logger.Info().Str("stream", p.stream).Str("subjects", wildcard).Msg("Created NATS JetStream stream")

		return nil
	}

	cfg := stream.CachedInfo().Config
	subjects := ensureSubjectList(cfg.Subjects, wildcard)

	if len(subjects) == len(cfg.Subjects) {
		return nil
	}

	cfg.Subjects = subjects

	if _, err := p.js.UpdateStream(ctx, cfg); err != nil {
		return fmt.Errorf("failed to add %s to stream %s: %w", wildcard, p.stream, err)
	}

	return nil
}

// ensureSubjectList appends subject unless an existing pattern covers it.
func ensureSubjectList(subjects []string, subject string) []string {
	for _, s := range subjects {
		if matchesSubject(s, subject) {
			return subjects
		}
	}

	return append(subjects, subject)
}

// matchesSubject reports whether pattern matches subject using NATS token
// wildcards. A ">" subject is only covered by a ">" at the same position.
func matchesSubject(pattern, subject string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")

	for i, tok := range pt {
		if tok == ">" {
			return i < len(st)
		}

		if i >= len(st) {
			return false
		}

		if st[i] == ">" {
			return false
		}

		if tok != "*" && tok != st[i] {
			return false
		}
	}

	return len(pt) == len(st)
}

func isStreamMissingErr(err error) bool {
	return errors.Is(err, jetstream.ErrStreamNotFound) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrStreamNotFound) ||
		errors.Is(err, nats.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrNoResponders)
}
