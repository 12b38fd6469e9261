package queue

import (
	"context"
	"encoding/json"
	"quizlive/internal/model"
	"sync"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// CompletedQueue receives one message per completed live
const CompletedQueue = "live.completed"

type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// LiveEvents publishes completed lives to RabbitMQ for downstream reporting
type LiveEvents struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	pub     amqpPublisher
	queue   string
	timeout time.Duration
	mu      sync.Mutex
}

// Dial connects to the broker and declares the durable completion queue
func Dial(url string) (*LiveEvents, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "connect to RabbitMQ")
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}
	q, err := ch.QueueDeclare(
		CompletedQueue, // name
		true,           // durable
		false,          // delete when unused
		false,          // exclusive
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, errors.Wrap(err, "declare queue")
	}
	return &LiveEvents{conn: conn, ch: ch, pub: ch, queue: q.Name, timeout: 5 * time.Second}, nil
}

// LiveCompleted sends the final snapshot as a persistent JSON message
func (e *LiveEvents) LiveCompleted(ctx context.Context, live *model.Live) error {
	body, err := json.Marshal(live)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	e.mu.Lock()
	defer e.mu.Unlock()
	err = e.pub.PublishWithContext(ctx,
		"",
		e.queue,
		false,
		false, amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    live.Key,
			Timestamp:    time.Now(),
			Body:         body,
		})
	return errors.Wrapf(err, "publish completion of %s", live.Key)
}

func (e *LiveEvents) Close() error {
	if e.ch != nil {
		e.ch.Close()
	}
	if e.conn != nil {
		return e.conn.Close()
	}
	return nil
}
