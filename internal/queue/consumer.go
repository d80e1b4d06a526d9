package queue

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// StartOrderConsumer connects to RabbitMQ, declares the order.confirmed
// queue (durable), and consumes confirmations for operational visibility:
// each event becomes one structured log line an operator can grep against
// the payment audit trail.  The function runs a reconnect loop with
// exponential backoff and keeps running across broker restarts; a message
// that cannot be decoded is rejected without requeue so a poison payload
// cannot wedge the queue.
func StartOrderConsumer() error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(brokerURL())
        if err != nil {
            log.Printf("order-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(conn); err != nil {
            log.Printf("order-consumer: consume loop ended: %v; reconnecting", err)
            time.Sleep(2 * time.Second)
            continue
        }
    }
}

func consumeLoop(conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("order-consumer: set QoS failed: %v", err)
    }

    if _, err := ch.QueueDeclare(orderQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.Consume(orderQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := handleMessage(d.Body); err != nil {
            log.Printf("order-consumer: handle message failed: %v", err)
            _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

func handleMessage(body []byte) error {
    var ev OrderConfirmedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    seats := "[]"
    if len(ev.Seats) > 0 {
        seats = "[" + strings.Join(ev.Seats, ",") + "]"
    }
    log.Printf("order confirmed | order_id=%d | reference_no=%s | cinema=%q | hall=%q | movie=%q | total=%s | seats=%s | at=%s",
        ev.OrderID, ev.ReferenceNo, ev.CinemaName, ev.HallName, ev.MovieTitle, ev.TotalAmount, seats, ev.ConfirmedAt)
    return nil
}
