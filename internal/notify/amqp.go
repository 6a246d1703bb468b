package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EmailJob is the queue payload consumed by the email worker.
type EmailJob struct {
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	From       string   `json:"from"`
	Recipients []string `json:"recipients"`
}

// NewAMQPConnection dials the broker.
func NewAMQPConnection(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq failed: %w", err)
	}
	return conn, nil
}

// AMQPMailer publishes email jobs onto a durable queue.
type AMQPMailer struct {
	conn      *amqp.Connection
	queueName string
	from      string
}

// NewAMQPMailer creates a mailer publishing to the named queue.
func NewAMQPMailer(conn *amqp.Connection, queueName, from string) *AMQPMailer {
	return &AMQPMailer{
		conn:      conn,
		queueName: queueName,
		from:      from,
	}
}

// Enqueue publishes one email job as a persistent JSON delivery.
func (m *AMQPMailer) Enqueue(ctx context.Context, subject, body string, recipients []string) error {
	ch, err := m.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		m.queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(EmailJob{
		Subject:    subject,
		Body:       body,
		From:       m.from,
		Recipients: recipients,
	})
	if err != nil {
		return fmt.Errorf("marshal email job failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		m.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish email job failed: %w", err)
	}
	return nil
}

// Close closes the broker connection.
func (m *AMQPMailer) Close() error {
	return m.conn.Close()
}
