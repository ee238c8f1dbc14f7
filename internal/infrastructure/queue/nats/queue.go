package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/infrastructure/resilience"
)

// Queue carries catalog-updated events from the loader to the index
// worker over a single NATS subject.
type Queue struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("intelligent-recommendation-system"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("nats reconnected: %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:     conn,
		subject:  subject,
		executor: options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// catalogEvent is the wire payload for catalog-updated notifications. The
// event id exists only for log correlation; the publish timestamp lets the
// worker report how long the event waited in the queue.
type catalogEvent struct {
	EventID     string    `json:"event_id"`
	PublishedAt time.Time `json:"published_at"`
}

func encodeCatalogEvent(event catalogEvent) ([]byte, error) {
	return json.Marshal(event)
}

// decodeCatalogEvent tolerates payloads from older publishers: a malformed
// body yields an empty event, never an error, so the rebuild still runs.
func decodeCatalogEvent(data []byte) catalogEvent {
	var event catalogEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return catalogEvent{}
	}
	return event
}

// PublishCatalogUpdated signals that the assessment catalog changed and
// the vector index should be rebuilt.
func (q *Queue) PublishCatalogUpdated(ctx context.Context) error {
	payload, err := encodeCatalogEvent(catalogEvent{
		EventID:     uuid.NewString(),
		PublishedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode catalog event: %w", err)
	}
	call := func(_ context.Context) error {
		if err := q.conn.Publish(q.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

func (q *Queue) SubscribeCatalogUpdated(ctx context.Context, handler func(ctx context.Context, published time.Time) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, "indexers", func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		event := decodeCatalogEvent(msg.Data)
		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, event.PublishedAt); err != nil {
			log.Printf("index rebuild handler error for event=%s: %v", event.EventID, err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
