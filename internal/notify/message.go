// Package notify turns RSVP changes into outbox rows and delivers them.
//
// Rows are written in the same transaction as the RSVP change. The Relayer
// then delivers them at least once through a Sender, so a transport outage
// never rolls back or fails the RSVP itself.
package notify

import (
	"context"

	"eventease/internal/model"
)

// Message is one outbound notification.
type Message struct {
	ID      uint64
	Kind    string
	Key     string
	To      string
	Subject string
	Body    string
	Payload []byte
}

// Sender delivers a Message. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// MessageFromOutbox converts a stored row into a Message.
func MessageFromOutbox(row *model.NotificationOutbox) Message {
	return Message{
		ID:      row.ID,
		Kind:    row.Kind,
		Key:     row.AggregateID,
		To:      row.Recipient,
		Subject: row.Subject,
		Body:    row.Body,
		Payload: []byte(row.Payload),
	}
}
