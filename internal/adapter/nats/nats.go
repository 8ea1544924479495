// Package nats implements the message queue port using NATS JetStream.
package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/Strob0t/ClientForge/internal/logger"
	"github.com/Strob0t/ClientForge/internal/port/messagequeue"
)

const (
	streamName = "CLIENTFORGE"

	headerRequestID  = "X-Request-ID"
	headerRetryCount = "Retry-Count"
	maxRetries       = 3
	dlqSuffix        = ".dlq"
)

// Queue implements messagequeue.Queue using NATS JetStream.
type Queue struct {
	nc *nats.Conn
	js jetstream.JetStream
}

var _ messagequeue.Queue = (*Queue)(nil)

// Connect establishes a connection to NATS and ensures the JetStream stream exists.
func Connect(ctx context.Context, url string) (*Queue, error) {
	nc, err := nats.Connect(url,
		nats.Name("clientforge"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"clients.>", "timeline.>"},
		MaxAge:   7 * 24 * time.Hour,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream stream create: %w", err)
	}

	slog.Info("nats connected", "url", url, "stream", streamName)
	return &Queue{nc: nc, js: js}, nil
}

// Publish sends a message to the given subject. The request ID from ctx
// travels as a header.
func (q *Queue) Publish(ctx context.Context, subject string, data []byte) error {
	msg := &nats.Msg{Subject: subject, Data: data, Header: nats.Header{}}
	if id := logger.RequestID(ctx); id != "" {
		msg.Header.Set(headerRequestID, id)
	}
	if _, err := q.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

// Subscribe registers a handler for messages on the given subject. Messages
// failing schema validation go straight to <subject>.dlq; handler failures
// are redelivered up to maxRetries times before the same.
func (q *Queue) Subscribe(ctx context.Context, subject string, handler messagequeue.Handler) (func(), error) {
	consumer, err := q.js.CreateOrUpdateConsumer(ctx, streamName, jetstream.ConsumerConfig{
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("nats consumer create: %w", err)
	}

	cons, err := consumer.Consume(func(msg jetstream.Msg) {
		q.handle(msg, handler)
	})
	if err != nil {
		return nil, fmt.Errorf("nats consume: %w", err)
	}
	return cons.Stop, nil
}

func (q *Queue) handle(msg jetstream.Msg, handler messagequeue.Handler) {
	ctx := context.Background()
	hdrs := msg.Headers()
	if id := hdrs.Get(headerRequestID); id != "" {
		ctx = logger.WithRequestID(ctx, id)
	}
	log := slog.With("subject", msg.Subject(), "request_id", hdrs.Get(headerRequestID))

	if err := messagequeue.Validate(msg.Subject(), msg.Data()); err != nil {
		log.Warn("invalid message, moving to dlq", "error", err)
		q.moveToDLQ(ctx, msg)
		return
	}

	if err := handler(ctx, msg.Subject(), msg.Data()); err != nil {
		n := retryCount(hdrs)
		if n >= maxRetries {
			log.Error("message handler failed, retries exhausted", "error", err, "retries", n)
			q.moveToDLQ(ctx, msg)
			return
		}
		log.Error("message handler failed, retrying", "error", err, "retries", n)
		q.retry(ctx, msg, n+1)
		return
	}
	if ackErr := msg.Ack(); ackErr != nil {
		log.Error("nats ack failed", "error", ackErr)
	}
}

// retry republishes msg with an incremented retry header and acks the original.
func (q *Queue) retry(ctx context.Context, msg jetstream.Msg, attempt int) {
	out := &nats.Msg{Subject: msg.Subject(), Data: msg.Data(), Header: copyHeader(msg.Headers())}
	out.Header.Set(headerRetryCount, strconv.Itoa(attempt))
	if _, err := q.js.PublishMsg(ctx, out); err != nil {
		slog.Error("nats retry publish failed", "subject", msg.Subject(), "error", err)
		_ = msg.Nak()
		return
	}
	_ = msg.Ack()
}

func (q *Queue) moveToDLQ(ctx context.Context, msg jetstream.Msg) {
	out := &nats.Msg{Subject: msg.Subject() + dlqSuffix, Data: msg.Data(), Header: copyHeader(msg.Headers())}
	if _, err := q.js.PublishMsg(ctx, out); err != nil {
		slog.Error("nats dlq publish failed", "subject", out.Subject, "error", err)
		_ = msg.Nak()
		return
	}
	_ = msg.Ack()
}

func retryCount(h nats.Header) int {
	n, err := strconv.Atoi(h.Get(headerRetryCount))
	if err != nil {
		return 0
	}
	return n
}

func copyHeader(h nats.Header) nats.Header {
	out := nats.Header{}
	for k, v := range h {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// KeyValue returns the named KV bucket, creating it with the given TTL if needed.
func (q *Queue) KeyValue(ctx context.Context, bucket string, ttl time.Duration) (jetstream.KeyValue, error) {
	kv, err := q.js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: bucket,
		TTL:    ttl,
	})
	if err != nil {
		return nil, fmt.Errorf("nats kv %s: %w", bucket, err)
	}
	return kv, nil
}

// Drain gracefully drains all subscriptions before closing.
func (q *Queue) Drain() error {
	if err := q.nc.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		return fmt.Errorf("nats drain: %w", err)
	}
	return nil
}

// Close shuts down the NATS connection.
func (q *Queue) Close() error {
	q.nc.Close()
	return nil
}

// IsConnected reports whether the NATS connection is up.
func (q *Queue) IsConnected() bool {
	return q.nc.IsConnected()
}
