package main

import (
	"encoding/json"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"
)

// BudgetAlert is published when an expense pushes a category's
// month-to-date spend near or past its monthly budget.
type BudgetAlert struct {
	UserID   int             `json:"user_id"`
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
	Spent    decimal.Decimal `json:"spent"`
	Message  string          `json:"message"`
}

type AlertPublisher interface {
	Publish(alert BudgetAlert) error
}

// NoopPublisher discards alerts; used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(BudgetAlert) error { return nil }

// RabbitMQPublisher is an implementation of AlertPublisher using RabbitMQ.
type RabbitMQPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

func NewRabbitMQPublisher(rabbitMQURL string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(rabbitMQURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	queue, err := ch.QueueDeclare(
		"budget_alerts", // queue name
		true,            // durable
		false,           // auto-delete when unused
		false,           // not exclusive
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitMQPublisher{
		conn:    conn,
		channel: ch,
		queue:   queue,
	}, nil
}

func (p *RabbitMQPublisher) Publish(alert BudgetAlert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return err
	}

	err = p.channel.Publish(
		"",           // default exchange
		p.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return err
	}

	slog.Info("budget alert published", "user_id", alert.UserID, "category", alert.Category)
	return nil
}

func (p *RabbitMQPublisher) Close() {
	p.channel.Close()
	p.conn.Close()
}
