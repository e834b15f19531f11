package rabbitmq

import (
	"context"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer pulls messages from one queue and hands them to a handler, one
// at a time (prefetch 1). A handler error is logged and the message is
// acknowledged anyway: failed jobs record their own failure state, and no
// automatic redelivery is wanted. Only an undecodable message is dropped
// with a Nack.
type Consumer struct {
	channel     *amqp.Channel
	queue       string
	Handler     func(ctx context.Context, body []byte) error
	prefetchCnt int
}

func NewConsumer(conn *amqp.Connection, exchange, routingKey, queue string, handler func(ctx context.Context, body []byte) error) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	consumer := &Consumer{
		channel:     ch,
		queue:       queue,
		Handler:     handler,
		prefetchCnt: 1,
	}

	_, err = ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}

	if err := ch.QueueBind(
		queue,
		routingKey,
		exchange,
		false,
		nil,
	); err != nil {
		return nil, err
	}

	if err := ch.Qos(consumer.prefetchCnt, 0, false); err != nil {
		return nil, err
	}

	return consumer, nil
}

func (c *Consumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		c.queue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("consumer for queue %s shutting down", c.queue)
			return nil
		case msg, ok := <-msgs:
			if !ok {
				log.Println("RabbitMQ channel closed")
				return nil
			}

			if err := c.Handler(ctx, msg.Body); err != nil {
				log.Printf("failed to handle message from %s: %v", c.queue, err)
			}
			if err := msg.Ack(false); err != nil {
				log.Printf("failed to ack message from %s: %v", c.queue, err)
			}
		}
	}
}
