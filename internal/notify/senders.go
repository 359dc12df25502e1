package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	gobreaker "github.com/sony/gobreaker/v2"
	"gopkg.in/gomail.v2"

	"eventease/internal/config"
	"eventease/internal/logging"
)

// LogSender writes notifications to the log instead of delivering them.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	logging.Ctx(ctx).Info().
		Uint64("outbox_id", msg.ID).
		Str("kind", msg.Kind).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("notification")
	return nil
}

// SMTPSender delivers notifications as plain-text e-mail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates an SMTP sender.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	d := gomail.NewDialer(host, port, username, password)
	d.TLSConfig = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
	return &SMTPSender{dialer: d, from: from}
}

func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	return s.dialer.DialAndSend(m)
}

// KafkaSender publishes notifications to a topic for a downstream mailer.
type KafkaSender struct {
	writer *kafka.Writer
}

// NewKafkaSender creates a synchronous producer keyed by RSVP id, so every
// notification for one RSVP lands on the same partition.
func NewKafkaSender(brokers []string, topic string) *KafkaSender {
	return &KafkaSender{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}}
}

type kafkaEnvelope struct {
	Kind    string          `json:"kind"`
	To      string          `json:"to"`
	Subject string          `json:"subject"`
	Body    string          `json:"body"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (k *KafkaSender) Send(ctx context.Context, msg Message) error {
	value, err := json.Marshal(kafkaEnvelope{
		Kind:    msg.Kind,
		To:      msg.To,
		Subject: msg.Subject,
		Body:    msg.Body,
		Payload: json.RawMessage(msg.Payload),
	})
	if err != nil {
		return fmt.Errorf("encode kafka message: %w", err)
	}
	return k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(msg.Key), Value: value})
}

// Close flushes and closes the writer.
func (k *KafkaSender) Close() error {
	if k == nil || k.writer == nil {
		return nil
	}
	return k.writer.Close()
}

// BreakerSender stops calling a failing transport until it recovers. While
// open, Send fails fast with gobreaker.ErrOpenState and the relayer leaves the
// rows for a later pass without counting an attempt.
type BreakerSender struct {
	next Sender
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerSender wraps next. The breaker opens after failureThreshold
// consecutive failures and probes again after timeout.
func NewBreakerSender(name string, next Sender, failureThreshold uint32, timeout time.Duration) *BreakerSender {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("notification breaker state changed")
		},
	}
	return &BreakerSender{next: next, cb: gobreaker.NewCircuitBreaker[struct{}](settings)}
}

func (b *BreakerSender) Send(ctx context.Context, msg Message) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Send(ctx, msg)
	})
	return err
}

// State reports the breaker state for diagnostics.
func (b *BreakerSender) State() string {
	return b.cb.State().String()
}

// NewSender builds the transport selected by cfg.Transport, wrapped in a
// circuit breaker. The returned close func releases transport resources.
func NewSender(cfg config.NotifyConfig) (Sender, func() error, error) {
	noop := func() error { return nil }

	var (
		base    Sender
		closeFn = noop
	)
	switch cfg.Transport {
	case "", "log":
		return LogSender{}, noop, nil
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, nil, fmt.Errorf("smtp transport requires SMTP_HOST")
		}
		base = NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return nil, nil, fmt.Errorf("kafka transport requires KAFKA_BROKERS")
		}
		ks := NewKafkaSender(cfg.KafkaBrokers, cfg.KafkaTopic)
		base, closeFn = ks, ks.Close
	default:
		return nil, nil, fmt.Errorf("unknown notify transport %q", cfg.Transport)
	}

	return NewBreakerSender("notify-"+cfg.Transport, base, 5, cfg.BreakerTimeout), closeFn, nil
}
