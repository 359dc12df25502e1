package notify

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"eventease/internal/model"
)

const signature = "\n\nBest regards,\nEventEase Team"

// Payload is the machine-readable part of an RSVP notification.
type Payload struct {
	RSVPID        string           `json:"rsvpId"`
	EventID       string           `json:"eventId"`
	EventTitle    string           `json:"eventTitle"`
	EventDate     time.Time        `json:"eventDate"`
	Location      string           `json:"location"`
	Status        model.RSVPStatus `json:"status"`
	AttendeeName  string           `json:"attendeeName"`
	AttendeeEmail string           `json:"attendeeEmail"`
}

// DecodePayload parses a stored payload.
func DecodePayload(raw []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode notification payload: %w", err)
	}
	return &p, nil
}

func newPayload(event *model.Event, rsvp *model.RSVP) (string, error) {
	raw, err := json.Marshal(Payload{
		RSVPID:        rsvp.ID.String(),
		EventID:       event.ID.String(),
		EventTitle:    event.Title,
		EventDate:     event.Date,
		Location:      event.Location,
		Status:        rsvp.Status,
		AttendeeName:  rsvp.Name,
		AttendeeEmail: rsvp.Email,
	})
	if err != nil {
		return "", fmt.Errorf("encode notification payload: %w", err)
	}
	return string(raw), nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format("Mon Jan 2 2006 15:04 MST")
}

// RSVPCreated builds the attendee confirmation and the owner alert for a new RSVP.
func RSVPCreated(event *model.Event, owner *model.User, rsvp *model.RSVP) ([]model.NotificationOutbox, error) {
	payload, err := newPayload(event, rsvp)
	if err != nil {
		return nil, err
	}
	aggregate := rsvp.ID.String()

	attendee := model.NotificationOutbox{
		Kind:        model.NotificationRSVPCreatedAttendee,
		AggregateID: aggregate,
		Recipient:   rsvp.Email,
		Subject:     fmt.Sprintf("RSVP Confirmation - %s", event.Title),
		Body: fmt.Sprintf("Hi %s,\n\nYour RSVP for %q has been confirmed.\n\nEvent Details:\nDate: %s\nLocation: %s\n\nWe look forward to seeing you there!",
			rsvp.Name, event.Title, formatDate(event.Date), event.Location) + signature,
		Payload: payload,
	}
	ownerRow := model.NotificationOutbox{
		Kind:        model.NotificationRSVPCreatedOwner,
		AggregateID: aggregate,
		Recipient:   owner.Email,
		Subject:     fmt.Sprintf("New RSVP - %s", event.Title),
		Body: fmt.Sprintf("Hi %s,\n\nA new attendee has RSVP'd to your event %q.\n\nAttendee Details:\nName: %s\nEmail: %s",
			owner.Name, event.Title, rsvp.Name, rsvp.Email) + signature,
		Payload: payload,
	}
	return []model.NotificationOutbox{attendee, ownerRow}, nil
}

// RSVPStatusChanged builds the attendee and owner notices for a status change.
// Any status other than confirmed is announced as cancelled.
func RSVPStatusChanged(event *model.Event, owner *model.User, rsvp *model.RSVP) ([]model.NotificationOutbox, error) {
	payload, err := newPayload(event, rsvp)
	if err != nil {
		return nil, err
	}
	aggregate := rsvp.ID.String()

	word := "cancelled"
	detail := "Thank you for your interest in the event."
	if rsvp.Status == model.RSVPStatusConfirmed {
		word = "confirmed"
		detail = fmt.Sprintf("Event Details:\nDate: %s\nLocation: %s\n\nWe look forward to seeing you there!",
			formatDate(event.Date), event.Location)
	}
	subject := fmt.Sprintf("RSVP %s - %s", word, event.Title)

	attendee := model.NotificationOutbox{
		Kind:        model.NotificationRSVPStatusAttendee,
		AggregateID: aggregate,
		Recipient:   rsvp.Email,
		Subject:     subject,
		Body:        fmt.Sprintf("Hi %s,\n\nYour RSVP for %q has been %s.\n\n%s", rsvp.Name, event.Title, word, detail) + signature,
		Payload:     payload,
	}
	ownerRow := model.NotificationOutbox{
		Kind:        model.NotificationRSVPStatusOwner,
		AggregateID: aggregate,
		Recipient:   owner.Email,
		Subject:     subject,
		Body: fmt.Sprintf("Hi %s,\n\nAn RSVP for your event %q has been %s.\n\nAttendee Details:\nName: %s\nEmail: %s",
			owner.Name, event.Title, word, rsvp.Name, rsvp.Email) + signature,
		Payload: payload,
	}
	return []model.NotificationOutbox{attendee, ownerRow}, nil
}
